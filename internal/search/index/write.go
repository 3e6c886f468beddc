package index

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vavi-recipes/vavi/internal/artifact"
)

const manifestFile = "index_manifest.json"

// Write writes index artifacts to dir.
func Write(dir string, idx *Index) error {
	manifest := idx.Manifest
	if manifest.Dim <= 0 {
		return fmt.Errorf("invalid dim: %d", manifest.Dim)
	}
	if len(idx.Entries) == 0 {
		return fmt.Errorf("no recipes to write")
	}
	if err := idx.Validate(len(idx.Entries)); err != nil {
		return err
	}
	if manifest.VectorFile == "" {
		manifest.VectorFile = "vectors.f32"
	}
	if manifest.RecipesFile == "" {
		manifest.RecipesFile = "recipes.jsonl"
	}
	if manifest.CreatedAt == "" {
		manifest.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
	manifest.Count = len(idx.Entries)

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create index dir %s: %w", dir, err)
	}
	if err := artifact.WriteJSONL(filepath.Join(dir, manifest.RecipesFile), idx.Entries); err != nil {
		return err
	}
	if err := artifact.WriteVectors(filepath.Join(dir, manifest.VectorFile), idx.Vectors); err != nil {
		return err
	}
	return artifact.WriteManifest(filepath.Join(dir, manifestFile), manifest)
}
