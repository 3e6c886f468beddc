// Package recommend ranks catalog recipes against a list of ingredients on hand.
package recommend

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vavi-recipes/vavi/internal/catalog"
	"github.com/vavi-recipes/vavi/internal/embeddings"
	"github.com/vavi-recipes/vavi/internal/ingredient"
	"github.com/vavi-recipes/vavi/internal/search"
	"github.com/vavi-recipes/vavi/internal/search/index"
	"go.uber.org/zap"
)

const (
	DefaultK          = 5
	DefaultSampleSize = 3
)

// ErrIndexMismatch is reported when the index does not describe the catalog.
var ErrIndexMismatch = errors.New("index does not match catalog")

// Service answers recommendation queries. Catalog, space and index are read-only
// after construction; the sampler is the only mutable state.
type Service struct {
	cat   *catalog.Catalog
	space *embeddings.Space
	idx   *index.Index

	log        *zap.Logger
	k          int
	sampleSize int

	mu  sync.Mutex
	rng *rand.Rand
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used for degraded results.
func WithLogger(log *zap.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// WithK sets how many neighbors are retrieved before filtering.
func WithK(k int) Option {
	return func(s *Service) {
		if k > 0 {
			s.k = k
		}
	}
}

// WithSampleSize sets the size of fallback samples.
func WithSampleSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.sampleSize = n
		}
	}
}

// WithRand sets the random source for fallback samples and suggestions.
func WithRand(r *rand.Rand) Option {
	return func(s *Service) {
		if r != nil {
			s.rng = r
		}
	}
}

// New assembles a Service. The index is not checked against the catalog here;
// a mismatch surfaces as a degraded Result on every call.
func New(cat *catalog.Catalog, space *embeddings.Space, idx *index.Index, opts ...Option) (*Service, error) {
	if cat == nil || cat.Len() == 0 {
		return nil, errors.New("recommend: empty catalog")
	}
	if space == nil {
		return nil, errors.New("recommend: nil embedding space")
	}
	if idx == nil {
		return nil, errors.New("recommend: nil index")
	}
	seed := uint64(time.Now().UnixNano())
	s := &Service{
		cat:        cat,
		space:      space,
		idx:        idx,
		log:        zap.NewNop(),
		k:          DefaultK,
		sampleSize: DefaultSampleSize,
		rng:        rand.New(rand.NewPCG(seed, seed>>1)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Recommend ranks catalog recipes by similarity to the ingredients in raw, a
// comma-separated list, and then applies f.
func (s *Service) Recommend(raw string, f Filters) (res Result) {
	res.RequestID = uuid.NewString()
	log := s.log.With(zap.String("request_id", res.RequestID))

	defer func() {
		if p := recover(); p != nil {
			err := fmt.Errorf("recommend: panic: %v", p)
			log.Error("recommendation failed, returning sample", zap.Error(err))
			res = s.fallback(res.RequestID, FallbackInternalError, err)
		}
	}()

	tokens := ingredient.Split(raw)
	if len(tokens) == 0 {
		res.Status = StatusNoIngredients
		return res
	}

	unresolved := embeddings.Unresolved(tokens, s.space)
	v, n := embeddings.Vectorize(tokens, s.space)
	if n == 0 {
		log.Info("no known ingredients, returning sample",
			zap.Strings("unresolved", ingredient.Strings(unresolved)))
		res = s.fallback(res.RequestID, FallbackVocabularyMiss, nil)
		res.Unresolved = unresolved
		return res
	}
	res.Unresolved = unresolved

	ranked, err := s.rank(v)
	if err != nil {
		log.Error("recommendation failed, returning sample", zap.Error(err))
		return s.fallback(res.RequestID, FallbackInternalError, err)
	}

	for _, m := range ranked {
		if f.Allows(m.Recipe) {
			res.Matches = append(res.Matches, m)
		}
	}
	if len(res.Matches) == 0 {
		log.Debug("all matches filtered out",
			zap.Int("retrieved", len(ranked)),
			zap.Strings("cuisines", f.Cuisines),
			zap.Int("max_cooking_time", f.MaxCookingTime))
		res.Status = StatusNoMatches
		return res
	}
	res.Status = StatusOK
	return res
}

func (s *Service) rank(v []float32) ([]Match, error) {
	if err := s.idx.Validate(s.cat.Len()); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrIndexMismatch, err)
	}
	neighbors, err := s.idx.Query(v, s.k)
	if err != nil {
		return nil, fmt.Errorf("index query: %w", err)
	}

	scored := make([]search.Scored, len(neighbors))
	for i, nb := range neighbors {
		scored[i] = search.Scored{
			Position:   nb.Position,
			Similarity: math.Max(-1, math.Min(1, 1-nb.Distance)),
		}
	}
	search.SortResults(scored)

	out := make([]Match, 0, len(scored))
	for _, sc := range scored {
		r, ok := s.cat.At(sc.Position)
		if !ok {
			return nil, fmt.Errorf("%w: position %d outside catalog of %d", ErrIndexMismatch, sc.Position, s.cat.Len())
		}
		if name := s.idx.Entries[sc.Position].Name; name != r.Name {
			return nil, fmt.Errorf("%w: position %d is %q in the index, %q in the catalog", ErrIndexMismatch, sc.Position, name, r.Name)
		}
		out = append(out, Match{Recipe: r, Similarity: sc.Similarity, Scored: true})
	}
	return out, nil
}

func (s *Service) fallback(requestID string, reason FallbackReason, err error) Result {
	recipes := s.Sample(s.sampleSize)
	matches := make([]Match, len(recipes))
	for i, r := range recipes {
		matches[i] = Match{Recipe: r}
	}
	return Result{
		RequestID: requestID,
		Status:    StatusFallback,
		Fallback:  reason,
		Matches:   matches,
		Err:       err,
	}
}

// Sample returns min(n, catalog size) distinct recipes chosen uniformly at random.
func (s *Service) Sample(n int) []catalog.Recipe {
	perm := s.perm(s.cat.Len())

	n = min(max(n, 0), len(perm))
	out := make([]catalog.Recipe, 0, n)
	for _, i := range perm[:n] {
		r, _ := s.cat.At(i)
		out = append(out, r)
	}
	return out
}

// RecipeByName looks a recipe up by name, ignoring case.
func (s *Service) RecipeByName(name string) (catalog.Recipe, bool) {
	return s.cat.ByName(name)
}

// AllRecipes returns the whole catalog in definition order.
func (s *Service) AllRecipes() []catalog.Recipe {
	return s.cat.All()
}

// SearchByName returns recipes whose names contain every word of query.
func (s *Service) SearchByName(query string, limit int) []catalog.Recipe {
	return s.cat.Search(query, limit)
}

// Cuisines returns the distinct cuisines, sorted.
func (s *Service) Cuisines() []string {
	return s.cat.Cuisines()
}

// SuggestIngredients returns up to n distinct catalog ingredients chosen at random.
func (s *Service) SuggestIngredients(n int) []ingredient.Token {
	all := s.cat.Ingredients()
	perm := s.perm(len(all))
	out := make([]ingredient.Token, min(max(n, 0), len(all)))
	for i := range out {
		out[i] = all[perm[i]]
	}
	return out
}

// perm draws a permutation of [0, n). The lock is released even if the
// random source panics, so a recovered Recommend can still sample.
func (s *Service) perm(n int) []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Perm(n)
}

// Index returns the similarity index the service queries.
func (s *Service) Index() *index.Index { return s.idx }

// Space returns the embedding space the service vectorizes with.
func (s *Service) Space() *embeddings.Space { return s.space }
