package embeddings

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/vavi-recipes/vavi/internal/catalog"
	"github.com/vavi-recipes/vavi/internal/ingredient"
)

var tinyCorpus = [][]ingredient.Token{
	{"rice", "toor_dal", "tamarind", "vegetables"},
	{"rice", "moong_dal", "pepper", "cumin", "ginger"},
	{"spaghetti", "eggs", "pancetta", "parmesan_cheese"},
	{"saffron"},
}

func smallOptions() TrainOptions {
	o := DefaultTrainOptions()
	o.Dim = 16
	o.Epochs = 3
	return o
}

func TestTrain_VocabularyComplete(t *testing.T) {
	cat, err := catalog.Load()
	if err != nil {
		t.Fatal(err)
	}
	s, err := Train(context.Background(), cat.Corpus(), DefaultTrainOptions())
	if err != nil {
		t.Fatalf("Train: %v", err)
	}
	if s.Dim() != 100 {
		t.Fatalf("expected dim 100, got %d", s.Dim())
	}
	for _, r := range cat.All() {
		for _, tok := range r.Ingredients {
			v, ok := s.VectorOf(tok)
			if !ok {
				t.Fatalf("%s: token %q missing from space", r.Name, tok)
			}
			if len(v) != 100 {
				t.Fatalf("token %q has dim %d", tok, len(v))
			}
		}
	}
	if s.Len() != len(cat.Ingredients()) {
		t.Fatalf("vocab size %d, catalog has %d unique ingredients", s.Len(), len(cat.Ingredients()))
	}
}

func TestTrain_SingleTokenDocumentStillEmbedded(t *testing.T) {
	s, err := Train(context.Background(), tinyCorpus, smallOptions())
	if err != nil {
		t.Fatal(err)
	}
	if !s.Has("saffron") {
		t.Fatal("saffron should have a vector even without context")
	}
	if _, ok := s.VectorOf("unobtainium"); ok {
		t.Fatal("unseen token must be absent")
	}
}

func TestTrain_DeterministicWithSeed(t *testing.T) {
	for _, arch := range []Architecture{CBOW, SkipGram} {
		t.Run(string(arch), func(t *testing.T) {
			opts := smallOptions()
			opts.Architecture = arch
			a, err := Train(context.Background(), tinyCorpus, opts)
			if err != nil {
				t.Fatal(err)
			}
			b, err := Train(context.Background(), tinyCorpus, opts)
			if err != nil {
				t.Fatal(err)
			}
			if a.Fingerprint() != b.Fingerprint() {
				t.Fatal("same seed must reproduce the same vectors")
			}
			opts.Seed = 42
			c, err := Train(context.Background(), tinyCorpus, opts)
			if err != nil {
				t.Fatal(err)
			}
			if a.Fingerprint() == c.Fingerprint() {
				t.Fatal("different seeds should give different vectors")
			}
		})
	}
}

func TestTrain_VocabOrder(t *testing.T) {
	s, err := Train(context.Background(), tinyCorpus, smallOptions())
	if err != nil {
		t.Fatal(err)
	}
	toks := s.Tokens()
	if toks[0] != "rice" || s.Count("rice") != 2 {
		t.Fatalf("most frequent token should come first, got %v", toks)
	}
	if !slices.IsSorted(toks[1:]) {
		t.Fatalf("equal-frequency tokens should be sorted: %v", toks[1:])
	}
}

func TestTrain_Errors(t *testing.T) {
	if _, err := Train(context.Background(), nil, smallOptions()); err != ErrEmptyCorpus {
		t.Fatalf("expected ErrEmptyCorpus, got %v", err)
	}
	bad := smallOptions()
	bad.Window = 0
	if _, err := Train(context.Background(), tinyCorpus, bad); err == nil {
		t.Fatal("expected validation error")
	}
	for _, mc := range []int{0, 2} {
		bad = smallOptions()
		bad.MinCount = mc
		if _, err := Train(context.Background(), tinyCorpus, bad); err == nil {
			t.Fatalf("expected min_count %d to be rejected", mc)
		}
	}
	bad = smallOptions()
	bad.Architecture = "glove"
	if _, err := Train(context.Background(), tinyCorpus, bad); err == nil {
		t.Fatal("expected architecture error")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Train(ctx, tinyCorpus, smallOptions()); err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestVectorize_Mean(t *testing.T) {
	s := newSpace(2, []ingredient.Token{"a", "b"}, []int{1, 1}, []float32{1, 0, 0, 3})
	v, n := Vectorize([]ingredient.Token{"a", "b", "zzz"}, s)
	if n != 2 {
		t.Fatalf("expected 2 resolved, got %d", n)
	}
	if v[0] != 0.5 || v[1] != 1.5 {
		t.Fatalf("unexpected mean %v", v)
	}

	// Duplicates count twice.
	v, n = Vectorize([]ingredient.Token{"a", "a", "b"}, s)
	if n != 3 || math.Abs(float64(v[1])-1) > 1e-6 {
		t.Fatalf("unexpected weighted mean %v (n=%d)", v, n)
	}
}

func TestVectorize_NoneResolved(t *testing.T) {
	s := newSpace(3, []ingredient.Token{"a"}, []int{1}, []float32{1, 2, 3})
	v, n := Vectorize([]ingredient.Token{"x", "y"}, s)
	if n != 0 {
		t.Fatalf("expected 0 resolved, got %d", n)
	}
	if len(v) != 3 || v[0] != 0 || v[1] != 0 || v[2] != 0 {
		t.Fatalf("expected zero vector of dim 3, got %v", v)
	}
	un := Unresolved([]ingredient.Token{"x", "a", "y"}, s)
	if len(un) != 2 || un[0] != "x" || un[1] != "y" {
		t.Fatalf("unexpected unresolved: %v", un)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	s, err := Train(context.Background(), tinyCorpus, smallOptions())
	if err != nil {
		t.Fatal(err)
	}
	dir := t.TempDir()
	if err := s.Save(dir, "hash-1", smallOptions()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, m, err := Load(dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if m.CatalogHash != "hash-1" || m.Options != smallOptions() {
		t.Fatalf("unexpected manifest: %+v", m)
	}
	if got.Fingerprint() != s.Fingerprint() {
		t.Fatal("loaded space differs from saved space")
	}
	if got.Count("rice") != 2 {
		t.Fatalf("counts not restored: %d", got.Count("rice"))
	}
}

func TestLoadOrTrain_ReusesAndInvalidates(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "embeddings")
	ctx := context.Background()

	first, reused, err := LoadOrTrain(ctx, dir, "hash-1", tinyCorpus, smallOptions(), nil)
	if err != nil {
		t.Fatalf("LoadOrTrain: %v", err)
	}
	if reused {
		t.Fatal("cold start must train")
	}

	second, reused, err := LoadOrTrain(ctx, dir, "hash-1", tinyCorpus, smallOptions(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !reused || second.Fingerprint() != first.Fingerprint() {
		t.Fatal("warm start should reuse the cached space")
	}

	_, reused, err = LoadOrTrain(ctx, dir, "hash-2", tinyCorpus, smallOptions(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if reused {
		t.Fatal("a different catalog hash must invalidate the cache")
	}

	opts := smallOptions()
	opts.Seed = 7
	_, reused, err = LoadOrTrain(ctx, dir, "hash-2", tinyCorpus, opts, nil)
	if err != nil {
		t.Fatal(err)
	}
	if reused {
		t.Fatal("different training options must invalidate the cache")
	}
}

func TestLoadOrTrain_CorruptCache(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "embeddings")
	ctx := context.Background()
	if _, _, err := LoadOrTrain(ctx, dir, "h", tinyCorpus, smallOptions(), nil); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "vectors.f32"), []byte{1, 2, 3}, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, _, err := Load(dir); err == nil {
		t.Fatal("expected corrupted cache to fail loading")
	}
	s, reused, err := LoadOrTrain(ctx, dir, "h", tinyCorpus, smallOptions(), nil)
	if err != nil {
		t.Fatalf("LoadOrTrain: %v", err)
	}
	if reused || s == nil {
		t.Fatal("corrupted cache should be retrained")
	}
	if _, _, err := Load(dir); err != nil {
		t.Fatalf("cache should be rewritten: %v", err)
	}
}
