package recommend

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/vavi-recipes/vavi/internal/artifact"
	"github.com/vavi-recipes/vavi/internal/config"
	"github.com/vavi-recipes/vavi/internal/embeddings"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	cfg, err := config.DefaultConfig()
	if err != nil {
		t.Fatal(err)
	}
	cfg.ModelDir = filepath.Join(t.TempDir(), "models")
	cfg.Embedding.Dim = 16
	cfg.Embedding.Epochs = 1
	return cfg
}

func TestTrainOptions(t *testing.T) {
	opts := TrainOptions(config.Embedding{Dim: 8, Window: 2, MinCount: 1, Negative: 3, Epochs: 4, Seed: 9, Architecture: "skipgram"})
	if opts.Dim != 8 || opts.Window != 2 || opts.Negative != 3 || opts.Epochs != 4 || opts.Seed != 9 {
		t.Fatalf("unexpected options: %+v", opts)
	}
	if opts.Architecture != embeddings.SkipGram {
		t.Fatalf("architecture %q", opts.Architecture)
	}
	if opts.Alpha != embeddings.DefaultTrainOptions().Alpha {
		t.Fatalf("alpha should keep its default, got %g", opts.Alpha)
	}
	if TrainOptions(config.Embedding{Dim: 8}).Architecture != embeddings.CBOW {
		t.Fatal("empty architecture should default to cbow")
	}
}

func TestPrepare_CachesArtifacts(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	first, err := Prepare(ctx, cfg, false, nil)
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if first.CachedSpace || first.CachedIndex {
		t.Fatal("first run cannot hit the cache")
	}
	for _, p := range []string{EmbeddingsDir, IndexDir, artifact.LockFile} {
		if _, err := os.Stat(filepath.Join(cfg.ModelDir, p)); err != nil {
			t.Fatalf("expected %s in model dir: %v", p, err)
		}
	}

	second, err := Prepare(ctx, cfg, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CachedSpace || !second.CachedIndex {
		t.Fatalf("second run should reuse both artifacts: %+v", second)
	}
	if second.Space.Fingerprint() != first.Space.Fingerprint() {
		t.Fatal("cached space differs")
	}

	forced, err := Prepare(ctx, cfg, true, nil)
	if err != nil {
		t.Fatal(err)
	}
	if forced.CachedSpace || forced.CachedIndex {
		t.Fatal("force must rebuild")
	}
	if forced.Space.Fingerprint() != first.Space.Fingerprint() {
		t.Fatal("retraining with the same seed should reproduce the space")
	}

	cfg.Embedding.Seed = 2
	reseeded, err := Prepare(ctx, cfg, false, nil)
	if err != nil {
		t.Fatal(err)
	}
	if reseeded.CachedSpace || reseeded.CachedIndex {
		t.Fatal("changed training options must invalidate the cache")
	}
}

func TestPrepare_InvalidCatalogIsFatal(t *testing.T) {
	cfg := testConfig(t)
	cfg.CatalogPath = filepath.Join(t.TempDir(), "recipes.yaml")
	if err := os.WriteFile(cfg.CatalogPath, []byte("- name: \"\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Prepare(context.Background(), cfg, false, nil); err == nil {
		t.Fatal("expected catalog error")
	}
	if _, err := Setup(context.Background(), cfg, nil); err == nil {
		t.Fatal("expected catalog error from Setup")
	}
}

func TestSetup_AppliesConfig(t *testing.T) {
	cfg := testConfig(t)
	cfg.Recommend.K = 2
	cfg.Recommend.SampleSize = 1

	svc, err := Setup(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if res := svc.Recommend("garlic, olive oil", Unfiltered()); res.Status != StatusOK || len(res.Matches) != 2 {
		t.Fatalf("expected 2 ranked matches, got %q with %d", res.Status, len(res.Matches))
	}
	if res := svc.Recommend("unobtainium", Unfiltered()); len(res.Matches) != 1 {
		t.Fatalf("expected a 1-recipe sample, got %d", len(res.Matches))
	}
}
