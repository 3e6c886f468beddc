package embeddings

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/vavi-recipes/vavi/internal/artifact"
	"github.com/vavi-recipes/vavi/internal/ingredient"
	"go.uber.org/zap"
)

const (
	manifestFile  = "embeddings_manifest.json"
	formatVersion = 1
)

// ErrInvalidArtifact indicates a cached space exists but is unusable.
var ErrInvalidArtifact = artifact.ErrInvalid

// Manifest describes a persisted embedding space and what it was trained from.
type Manifest struct {
	FormatVersion int          `json:"format_version"`
	CreatedAt     string       `json:"created_at"`
	CatalogHash   string       `json:"catalog_hash"`
	Fingerprint   string       `json:"fingerprint"`
	Dim           int          `json:"dim"`
	VocabSize     int          `json:"vocab_size"`
	Options       TrainOptions `json:"options"`
	VocabFile     string       `json:"vocab_file"`
	VectorFile    string       `json:"vector_file"`
}

type vocabEntry struct {
	Token string `json:"token"`
	Count int    `json:"count"`
}

// Save writes s to dir. catalogHash and opts are recorded so a later LoadOrTrain
// can tell whether the cache still matches.
func (s *Space) Save(dir, catalogHash string, opts TrainOptions) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cannot create embeddings dir %s: %w", dir, err)
	}
	m := Manifest{
		FormatVersion: formatVersion,
		CreatedAt:     time.Now().UTC().Format(time.RFC3339),
		CatalogHash:   catalogHash,
		Fingerprint:   s.Fingerprint(),
		Dim:           s.dim,
		VocabSize:     len(s.tokens),
		Options:       opts,
		VocabFile:     "vocab.jsonl",
		VectorFile:    "vectors.f32",
	}

	vocab := make([]vocabEntry, len(s.tokens))
	for i, t := range s.tokens {
		vocab[i] = vocabEntry{Token: string(t), Count: s.counts[i]}
	}
	if err := artifact.WriteJSONL(filepath.Join(dir, m.VocabFile), vocab); err != nil {
		return err
	}
	if err := artifact.WriteVectors(filepath.Join(dir, m.VectorFile), s.vectors); err != nil {
		return err
	}
	// Manifest last: a directory without one is never loaded.
	return artifact.WriteManifest(filepath.Join(dir, manifestFile), m)
}

// Load reads a space previously written by Save.
func Load(dir string) (*Space, Manifest, error) {
	var m Manifest
	if err := artifact.ReadManifest(filepath.Join(dir, manifestFile), &m); err != nil {
		return nil, m, err
	}
	if m.FormatVersion != formatVersion {
		return nil, m, fmt.Errorf("%w: unsupported embeddings format %d", ErrInvalidArtifact, m.FormatVersion)
	}
	if m.Dim <= 0 || m.VocabSize <= 0 {
		return nil, m, fmt.Errorf("%w: dim=%d vocab_size=%d", ErrInvalidArtifact, m.Dim, m.VocabSize)
	}

	vocab, err := artifact.ReadJSONL[vocabEntry](filepath.Join(dir, m.VocabFile))
	if err != nil {
		return nil, m, err
	}
	if len(vocab) != m.VocabSize {
		return nil, m, fmt.Errorf("%w: vocab has %d entries, manifest says %d", ErrInvalidArtifact, len(vocab), m.VocabSize)
	}
	vectors, err := artifact.ReadVectors(filepath.Join(dir, m.VectorFile), len(vocab), m.Dim)
	if err != nil {
		return nil, m, err
	}

	tokens := make([]ingredient.Token, len(vocab))
	counts := make([]int, len(vocab))
	for i, v := range vocab {
		tokens[i] = ingredient.Token(v.Token)
		counts[i] = v.Count
	}
	s := newSpace(m.Dim, tokens, counts, vectors)
	if len(s.pos) != len(tokens) {
		return nil, m, fmt.Errorf("%w: duplicate tokens in vocab", ErrInvalidArtifact)
	}
	if fp := s.Fingerprint(); fp != m.Fingerprint {
		return nil, m, fmt.Errorf("%w: fingerprint mismatch: got %s want %s", ErrInvalidArtifact, fp, m.Fingerprint)
	}
	return s, m, nil
}

// LoadOrTrain returns the space cached in dir when it was trained from the same
// catalog with the same options; otherwise it trains from corpus and replaces the
// cache. The bool reports whether the cache was reused. Failing to write the cache
// is logged, not returned: the trained space is still valid.
func LoadOrTrain(ctx context.Context, dir, catalogHash string, corpus [][]ingredient.Token, opts TrainOptions, log *zap.Logger) (*Space, bool, error) {
	if log == nil {
		log = zap.NewNop()
	}

	s, m, err := Load(dir)
	switch {
	case err == nil && m.CatalogHash == catalogHash && m.Options == opts:
		log.Debug("embedding cache hit", zap.String("dir", dir), zap.String("fingerprint", m.Fingerprint))
		return s, true, nil
	case err == nil:
		log.Info("embedding cache is stale, retraining",
			zap.String("dir", dir),
			zap.String("cached_catalog", m.CatalogHash),
			zap.String("catalog", catalogHash))
	case errors.Is(err, os.ErrNotExist):
		log.Debug("no embedding cache", zap.String("dir", dir))
	default:
		log.Warn("discarding unreadable embedding cache", zap.String("dir", dir), zap.Error(err))
	}

	start := time.Now()
	s, err = Train(ctx, corpus, opts)
	if err != nil {
		return nil, false, fmt.Errorf("embedding training failed: %w", err)
	}
	log.Info("trained embeddings",
		zap.Int("vocab", s.Len()),
		zap.Int("dim", s.Dim()),
		zap.String("architecture", string(opts.Architecture)),
		zap.Duration("took", time.Since(start)))

	if err := saveAtomic(s, dir, catalogHash, opts); err != nil {
		log.Warn("cannot cache embeddings", zap.String("dir", dir), zap.Error(err))
	}
	return s, false, nil
}

func saveAtomic(s *Space, dir, catalogHash string, opts TrainOptions) error {
	stage, err := artifact.StageDir(dir)
	if err != nil {
		return err
	}
	defer os.RemoveAll(stage)
	if err := s.Save(stage, catalogHash, opts); err != nil {
		return err
	}
	return artifact.AtomicSwap(stage, dir)
}
