package index

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/vavi-recipes/vavi/internal/artifact"
)

func TestLoad_IndexHappyPath(t *testing.T) {
	dir := t.TempDir()
	m := Manifest{
		IndexVersion:     1,
		CreatedAt:        "2026-01-01T00:00:00Z",
		CatalogHash:      "cat",
		SpaceFingerprint: "space",
		Metric:           Metric,
		Dim:              2,
		Count:            2,
		VectorFile:       "vectors.f32",
		RecipesFile:      "recipes.jsonl",
	}
	mb, _ := json.Marshal(m)
	if err := os.WriteFile(filepath.Join(dir, "index_manifest.json"), mb, 0o644); err != nil {
		t.Fatal(err)
	}

	entries := []Entry{
		{Position: 0, Name: "Vada", TextHash: "a", Resolved: 5},
		{Position: 1, Name: "Upma", TextHash: "b", Resolved: 6},
	}
	var lines []byte
	for _, e := range entries {
		b, _ := json.Marshal(e)
		lines = append(lines, b...)
		lines = append(lines, '\n')
	}
	if err := os.WriteFile(filepath.Join(dir, "recipes.jsonl"), lines, 0o644); err != nil {
		t.Fatal(err)
	}

	vecFile, err := os.Create(filepath.Join(dir, "vectors.f32"))
	if err != nil {
		t.Fatal(err)
	}
	vectors := []float32{1, 0, 0, 1}
	if err := binary.Write(vecFile, binary.LittleEndian, vectors); err != nil {
		_ = vecFile.Close()
		t.Fatal(err)
	}
	_ = vecFile.Close()

	idx, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if idx.Manifest.Dim != 2 {
		t.Fatalf("dim mismatch")
	}
	if len(idx.Entries) != 2 {
		t.Fatalf("entries mismatch")
	}
	if len(idx.Vectors) != 4 {
		t.Fatalf("vectors mismatch")
	}
}

func TestWriteLoad_RoundTrip(t *testing.T) {
	idx, err := Build(
		[]Entry{{Name: "a"}, {Name: "b"}, {Name: "c"}},
		[][]float32{{1, 0}, {0, 1}, {1, 1}},
	)
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	if err := Write(dir, idx); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Len() != 3 || got.Entries[2].Name != "c" || got.Entries[2].Position != 2 {
		t.Fatalf("unexpected entries: %+v", got.Entries)
	}
	if v := got.Vector(2); v[0] != 1 || v[1] != 1 {
		t.Fatalf("unexpected vector: %v", v)
	}
}

func TestLoad_TruncatedVectors(t *testing.T) {
	idx, err := Build([]Entry{{Name: "a"}, {Name: "b"}}, [][]float32{{1, 0}, {0, 1}})
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	if err := Write(dir, idx); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "vectors.f32"), []byte{0, 0, 0, 0}, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(dir); !errors.Is(err, artifact.ErrInvalid) {
		t.Fatalf("expected ErrInvalid, got %v", err)
	}
}

func TestLoad_Missing(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
