package recommend

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vavi-recipes/vavi/internal/artifact"
	"github.com/vavi-recipes/vavi/internal/catalog"
	"github.com/vavi-recipes/vavi/internal/config"
	"github.com/vavi-recipes/vavi/internal/embeddings"
	"github.com/vavi-recipes/vavi/internal/search/index"
	"go.uber.org/zap"
)

const lockTimeout = 2 * time.Minute

// Artifact directories inside the model dir.
const (
	EmbeddingsDir = "embeddings"
	IndexDir      = "index"
)

// TrainOptions maps the embedding config onto training options.
func TrainOptions(e config.Embedding) embeddings.TrainOptions {
	opts := embeddings.DefaultTrainOptions()
	opts.Dim = e.Dim
	opts.Window = e.Window
	opts.MinCount = e.MinCount
	opts.Negative = e.Negative
	opts.Epochs = e.Epochs
	opts.Seed = e.Seed
	if e.Architecture != "" {
		opts.Architecture = embeddings.Architecture(e.Architecture)
	}
	return opts
}

// LoadCatalog loads cfg.CatalogPath, or the built-in catalog when it is unset.
func LoadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.CatalogPath == "" {
		return catalog.Load()
	}
	return catalog.LoadFile(cfg.CatalogPath)
}

// Artifacts is what Prepare produced and whether each part came from cache.
type Artifacts struct {
	Catalog     *catalog.Catalog
	Space       *embeddings.Space
	Index       *index.Index
	CachedSpace bool
	CachedIndex bool
	ModelDir    string
}

// Prepare loads the catalog and then loads or builds the embedding space and
// index under cfg.ModelDir. With force, cached artifacts are discarded first.
// Artifact writes are serialized across processes by a lock on the model dir.
func Prepare(ctx context.Context, cfg *config.Config, force bool, log *zap.Logger) (*Artifacts, error) {
	if log == nil {
		log = zap.NewNop()
	}
	cat, err := LoadCatalog(cfg)
	if err != nil {
		return nil, fmt.Errorf("cannot load catalog: %w", err)
	}

	unlock, err := artifact.Lock(ctx, cfg.ModelDir, lockTimeout)
	if err != nil {
		return nil, err
	}
	defer unlock()

	embDir := filepath.Join(cfg.ModelDir, EmbeddingsDir)
	idxDir := filepath.Join(cfg.ModelDir, IndexDir)
	if force {
		for _, d := range []string{embDir, idxDir} {
			if err := os.RemoveAll(d); err != nil {
				return nil, fmt.Errorf("cannot remove %s: %w", d, err)
			}
		}
		log.Info("discarded cached artifacts", zap.String("model_dir", cfg.ModelDir))
	}

	space, cachedSpace, err := embeddings.LoadOrTrain(ctx, embDir, cat.Hash(), cat.Corpus(), TrainOptions(cfg.Embedding), log)
	if err != nil {
		return nil, err
	}
	idx, cachedIndex, err := index.BuildForCatalog(ctx, cat, space, index.BuildOptions{OutDir: idxDir}, log)
	if err != nil {
		return nil, fmt.Errorf("cannot build index: %w", err)
	}
	return &Artifacts{
		Catalog:     cat,
		Space:       space,
		Index:       idx,
		CachedSpace: cachedSpace,
		CachedIndex: cachedIndex,
		ModelDir:    cfg.ModelDir,
	}, nil
}

// Setup prepares artifacts and returns a Service configured from cfg.
func Setup(ctx context.Context, cfg *config.Config, log *zap.Logger, opts ...Option) (*Service, error) {
	if log == nil {
		log = zap.NewNop()
	}
	a, err := Prepare(ctx, cfg, false, log)
	if err != nil {
		return nil, err
	}
	log.Debug("recommender ready",
		zap.Int("recipes", a.Catalog.Len()),
		zap.Int("vocab", a.Space.Len()),
		zap.Bool("cached_embeddings", a.CachedSpace),
		zap.Bool("cached_index", a.CachedIndex))

	base := []Option{
		WithLogger(log),
		WithK(cfg.Recommend.K),
		WithSampleSize(cfg.Recommend.SampleSize),
	}
	return New(a.Catalog, a.Space, a.Index, append(base, opts...)...)
}
