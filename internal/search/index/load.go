package index

import (
	"fmt"
	"path/filepath"

	"github.com/vavi-recipes/vavi/internal/artifact"
)

// Load reads an index from dir containing manifest + recipes + vectors.
func Load(dir string) (*Index, error) {
	var m Manifest
	if err := artifact.ReadManifest(filepath.Join(dir, manifestFile), &m); err != nil {
		return nil, err
	}
	if m.Dim <= 0 {
		return nil, fmt.Errorf("%w: invalid dim in manifest: %d", artifact.ErrInvalid, m.Dim)
	}
	if m.Metric != Metric {
		return nil, fmt.Errorf("%w: index metric %q, want %q", artifact.ErrInvalid, m.Metric, Metric)
	}
	if m.VectorFile == "" {
		m.VectorFile = "vectors.f32"
	}
	if m.RecipesFile == "" {
		m.RecipesFile = "recipes.jsonl"
	}

	entries, err := artifact.ReadJSONL[Entry](filepath.Join(dir, m.RecipesFile))
	if err != nil {
		return nil, err
	}
	if len(entries) != m.Count {
		return nil, fmt.Errorf("%w: %d recipes, manifest says %d", artifact.ErrInvalid, len(entries), m.Count)
	}
	vectors, err := artifact.ReadVectors(filepath.Join(dir, m.VectorFile), len(entries), m.Dim)
	if err != nil {
		return nil, err
	}

	idx := &Index{Manifest: m, Entries: entries, Vectors: vectors}
	if err := idx.Validate(len(entries)); err != nil {
		return nil, err
	}
	return idx, nil
}
