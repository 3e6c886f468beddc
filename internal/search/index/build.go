package index

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/vavi-recipes/vavi/internal/artifact"
	"github.com/vavi-recipes/vavi/internal/catalog"
	"github.com/vavi-recipes/vavi/internal/embeddings"
	"go.uber.org/zap"
)

// Build creates an in-memory index from one vector per entry, in order.
// Entry positions are reassigned to match their order.
func Build(entries []Entry, vectors [][]float32) (*Index, error) {
	if len(entries) == 0 {
		return nil, ErrEmptyIndex
	}
	if len(entries) != len(vectors) {
		return nil, fmt.Errorf("%w: %d entries, %d vectors", ErrSizeMismatch, len(entries), len(vectors))
	}
	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("%w: zero-length vectors", ErrVectorLengthMismatch)
	}

	flat := make([]float32, 0, len(vectors)*dim)
	out := make([]Entry, len(entries))
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("%w: vector %d has dim %d, want %d", ErrVectorLengthMismatch, i, len(v), dim)
		}
		flat = append(flat, v...)
		out[i] = entries[i]
		out[i].Position = i
	}

	return &Index{
		Manifest: Manifest{
			IndexVersion: 1,
			CreatedAt:    time.Now().UTC().Format(time.RFC3339),
			Metric:       Metric,
			Dim:          dim,
			Count:        len(out),
			VectorFile:   "vectors.f32",
			RecipesFile:  "recipes.jsonl",
		},
		Entries: out,
		Vectors: flat,
	}, nil
}

// BuildOptions controls catalog index building.
type BuildOptions struct {
	OutDir string
	Force  bool
}

// BuildForCatalog returns the index for cat under space. A cached index in
// opts.OutDir is reused as-is when it was built from the same catalog and space.
// When only the catalog changed, vectors of recipes whose ingredients are
// unchanged are reused. The bool reports whether the cache was reused whole.
func BuildForCatalog(ctx context.Context, cat *catalog.Catalog, space *embeddings.Space, opts BuildOptions, log *zap.Logger) (*Index, bool, error) {
	if log == nil {
		log = zap.NewNop()
	}
	fp := space.Fingerprint()

	var old *Index
	if opts.OutDir != "" && !opts.Force {
		prev, err := Load(opts.OutDir)
		switch {
		case err == nil:
			old = prev
		case errors.Is(err, os.ErrNotExist):
			log.Debug("no index cache", zap.String("dir", opts.OutDir))
		default:
			log.Warn("discarding unreadable index cache", zap.String("dir", opts.OutDir), zap.Error(err))
		}
	}
	if old != nil && old.Manifest.SpaceFingerprint == fp && old.Manifest.CatalogHash == cat.Hash() &&
		old.Manifest.Dim == space.Dim() && old.Validate(cat.Len()) == nil {
		log.Debug("index cache hit", zap.String("dir", opts.OutDir))
		return old, true, nil
	}

	// Reuse per-recipe vectors only if they came from this exact space.
	reuse := map[string]int{}
	if old != nil && old.Manifest.SpaceFingerprint == fp && old.Manifest.Dim == space.Dim() {
		for i, e := range old.Entries {
			reuse[e.Name] = i
		}
	}

	recipes := cat.All()
	entries := make([]Entry, len(recipes))
	vectors := make([][]float32, len(recipes))
	reused := 0
	for i, r := range recipes {
		if err := ctx.Err(); err != nil {
			return nil, false, err
		}
		h := TextHash(CanonicalText(r))
		if j, ok := reuse[r.Name]; ok && old.Entries[j].TextHash == h {
			entries[i] = old.Entries[j]
			vectors[i] = append([]float32(nil), old.Vector(j)...)
			reused++
			continue
		}
		v, n := embeddings.Vectorize(r.Ingredients, space)
		if n == 0 {
			log.Warn("recipe has no embedded ingredients", zap.String("recipe", r.Name))
		}
		entries[i] = Entry{Name: r.Name, TextHash: h, Resolved: n}
		vectors[i] = v
	}

	idx, err := Build(entries, vectors)
	if err != nil {
		return nil, false, err
	}
	idx.Manifest.CatalogHash = cat.Hash()
	idx.Manifest.SpaceFingerprint = fp
	log.Info("built similarity index",
		zap.Int("recipes", idx.Len()),
		zap.Int("dim", idx.Manifest.Dim),
		zap.Int("reused_vectors", reused))

	if opts.OutDir != "" {
		if err := writeAtomic(opts.OutDir, idx); err != nil {
			log.Warn("cannot cache index", zap.String("dir", opts.OutDir), zap.Error(err))
		}
	}
	return idx, false, nil
}

func writeAtomic(dir string, idx *Index) error {
	stage, err := artifact.StageDir(dir)
	if err != nil {
		return err
	}
	defer os.RemoveAll(stage)
	if err := Write(stage, idx); err != nil {
		return err
	}
	return artifact.AtomicSwap(stage, dir)
}
