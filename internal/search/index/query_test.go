package index

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/vavi-recipes/vavi/internal/catalog"
	"github.com/vavi-recipes/vavi/internal/embeddings"
)

func mustBuild(t *testing.T, vectors ...[]float32) *Index {
	t.Helper()
	entries := make([]Entry, len(vectors))
	for i := range entries {
		entries[i] = Entry{Name: string(rune('a' + i))}
	}
	idx, err := Build(entries, vectors)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return idx
}

func TestQuery_OrdersByDistance(t *testing.T) {
	idx := mustBuild(t, []float32{0, 1}, []float32{1, 0}, []float32{1, 1})
	got, err := idx.Query([]float32{1, 0.1}, 3)
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if got[0].Position != 1 || got[1].Position != 2 || got[2].Position != 0 {
		t.Fatalf("unexpected order: %+v", got)
	}
	for i := 1; i < len(got); i++ {
		if got[i].Distance < got[i-1].Distance {
			t.Fatalf("distances not ascending: %+v", got)
		}
	}
}

func TestQuery_TiesKeepCatalogOrder(t *testing.T) {
	idx := mustBuild(t, []float32{0, 1}, []float32{2, 0}, []float32{1, 0}, []float32{3, 0})
	got, err := idx.Query([]float32{1, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Position != 1 || got[1].Position != 2 || got[2].Position != 3 {
		t.Fatalf("ties should resolve by position: %+v", got)
	}
}

func TestQuery_CapsK(t *testing.T) {
	idx := mustBuild(t, []float32{1, 0}, []float32{0, 1})
	got, err := idx.Query([]float32{1, 0}, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("k should be capped at index size, got %d", len(got))
	}
	got, err = idx.Query([]float32{1, 0}, 0)
	if err != nil || len(got) != 0 {
		t.Fatalf("k=0 should return nothing, got %v %v", got, err)
	}
}

func TestQuery_Errors(t *testing.T) {
	idx := mustBuild(t, []float32{1, 0}, []float32{0, 1})
	if _, err := idx.Query([]float32{1, 0, 0}, 1); !errors.Is(err, ErrVectorLengthMismatch) {
		t.Fatalf("expected ErrVectorLengthMismatch, got %v", err)
	}
	if _, err := idx.Query([]float32{float32(math.NaN()), 0}, 1); !errors.Is(err, ErrInvalidVector) {
		t.Fatalf("expected ErrInvalidVector, got %v", err)
	}
	var empty *Index
	if _, err := empty.Query([]float32{1}, 1); !errors.Is(err, ErrEmptyIndex) {
		t.Fatalf("expected ErrEmptyIndex, got %v", err)
	}
	idx.Vectors = idx.Vectors[:2]
	if _, err := idx.Query([]float32{1, 0}, 1); !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("expected ErrSizeMismatch, got %v", err)
	}
}

func TestQuery_ZeroVectorHasUnitDistance(t *testing.T) {
	idx := mustBuild(t, []float32{0, 0}, []float32{1, 0})
	got, err := idx.Query([]float32{1, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Position != 1 || got[1].Distance != 1 {
		t.Fatalf("unexpected neighbors: %+v", got)
	}
}

func TestBuild_Errors(t *testing.T) {
	if _, err := Build(nil, nil); !errors.Is(err, ErrEmptyIndex) {
		t.Fatalf("expected ErrEmptyIndex, got %v", err)
	}
	if _, err := Build([]Entry{{Name: "a"}}, [][]float32{{1}, {2}}); !errors.Is(err, ErrSizeMismatch) {
		t.Fatalf("expected ErrSizeMismatch, got %v", err)
	}
	if _, err := Build([]Entry{{Name: "a"}, {Name: "b"}}, [][]float32{{1, 0}, {2}}); !errors.Is(err, ErrVectorLengthMismatch) {
		t.Fatalf("expected ErrVectorLengthMismatch, got %v", err)
	}
}

func testSpace(t *testing.T, cat *catalog.Catalog) *embeddings.Space {
	t.Helper()
	opts := embeddings.DefaultTrainOptions()
	opts.Dim = 24
	opts.Epochs = 2
	s, err := embeddings.Train(context.Background(), cat.Corpus(), opts)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestBuildForCatalog_SelfMatch(t *testing.T) {
	cat, err := catalog.Load()
	if err != nil {
		t.Fatal(err)
	}
	space := testSpace(t, cat)
	idx, reused, err := BuildForCatalog(context.Background(), cat, space, BuildOptions{}, nil)
	if err != nil {
		t.Fatalf("BuildForCatalog: %v", err)
	}
	if reused {
		t.Fatal("nothing to reuse without an out dir")
	}
	if err := idx.Validate(cat.Len()); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	for _, name := range []string{"Vada", "Spaghetti Carbonara", "Greek Salad"} {
		r, _ := cat.ByName(name)
		v, _ := embeddings.Vectorize(r.Ingredients, space)
		got, err := idx.Query(v, 5)
		if err != nil {
			t.Fatal(err)
		}
		top, _ := cat.At(got[0].Position)
		if got[0].Distance > 1e-6 {
			t.Fatalf("%s: self distance %g", name, got[0].Distance)
		}
		// Another recipe with an identical ingredient profile could tie; it would sort first only if earlier.
		if top.Name != name && got[1].Distance > 1e-6 {
			t.Fatalf("%s: top match is %s", name, top.Name)
		}
	}
}

func TestBuildForCatalog_Cache(t *testing.T) {
	cat, err := catalog.Load()
	if err != nil {
		t.Fatal(err)
	}
	space := testSpace(t, cat)
	dir := filepath.Join(t.TempDir(), "index")
	ctx := context.Background()

	first, reused, err := BuildForCatalog(ctx, cat, space, BuildOptions{OutDir: dir}, nil)
	if err != nil || reused {
		t.Fatalf("first build: reused=%v err=%v", reused, err)
	}
	second, reused, err := BuildForCatalog(ctx, cat, space, BuildOptions{OutDir: dir}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !reused {
		t.Fatal("second build should reuse the cache")
	}
	if second.Manifest.CatalogHash != first.Manifest.CatalogHash || len(second.Vectors) != len(first.Vectors) {
		t.Fatal("cached index differs")
	}
	_, reused, err = BuildForCatalog(ctx, cat, space, BuildOptions{OutDir: dir, Force: true}, nil)
	if err != nil || reused {
		t.Fatalf("forced build: reused=%v err=%v", reused, err)
	}

	opts := embeddings.DefaultTrainOptions()
	opts.Dim = 24
	opts.Epochs = 2
	opts.Seed = 99
	retrained, err := embeddings.Train(ctx, cat.Corpus(), opts)
	if err != nil {
		t.Fatal(err)
	}
	_, reused, err = BuildForCatalog(ctx, cat, retrained, BuildOptions{OutDir: dir}, nil)
	if err != nil || reused {
		t.Fatalf("new space must invalidate the cache: reused=%v err=%v", reused, err)
	}
}
