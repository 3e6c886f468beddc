package embeddings

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/vavi-recipes/vavi/internal/ingredient"
)

// Architecture selects the word2vec training objective.
type Architecture string

const (
	// CBOW predicts a token from the mean of its context.
	CBOW Architecture = "cbow"
	// SkipGram predicts each context token from the centre token.
	SkipGram Architecture = "skipgram"
)

// TrainOptions configures word2vec training with negative sampling.
type TrainOptions struct {
	Dim          int          `json:"dim" yaml:"dim"`
	Window       int          `json:"window" yaml:"window"`
	MinCount     int          `json:"min_count" yaml:"min_count"`
	Negative     int          `json:"negative" yaml:"negative"`
	Epochs       int          `json:"epochs" yaml:"epochs"`
	Alpha        float64      `json:"alpha" yaml:"alpha"`
	MinAlpha     float64      `json:"min_alpha" yaml:"min_alpha"`
	Seed         uint64       `json:"seed" yaml:"seed"`
	Architecture Architecture `json:"architecture" yaml:"architecture"`
}

// DefaultTrainOptions returns dim 100, window 5, min-count 1 CBOW training.
func DefaultTrainOptions() TrainOptions {
	return TrainOptions{
		Dim:          100,
		Window:       5,
		MinCount:     1,
		Negative:     5,
		Epochs:       5,
		Alpha:        0.025,
		MinAlpha:     0.0001,
		Seed:         1,
		Architecture: CBOW,
	}
}

// Validate reports the first invalid option.
func (o TrainOptions) Validate() error {
	switch {
	case o.Dim <= 0:
		return fmt.Errorf("dim must be positive, got %d", o.Dim)
	case o.Window <= 0:
		return fmt.Errorf("window must be positive, got %d", o.Window)
	case o.MinCount != 1:
		// Every catalog ingredient must have a vector.
		return fmt.Errorf("min_count must be 1, got %d", o.MinCount)
	case o.Negative < 1:
		return fmt.Errorf("negative must be at least 1, got %d", o.Negative)
	case o.Epochs < 1:
		return fmt.Errorf("epochs must be at least 1, got %d", o.Epochs)
	case o.Alpha <= 0 || o.MinAlpha < 0 || o.MinAlpha > o.Alpha:
		return fmt.Errorf("invalid learning rate alpha=%g min_alpha=%g", o.Alpha, o.MinAlpha)
	}
	switch o.Architecture {
	case CBOW, SkipGram:
		return nil
	default:
		return fmt.Errorf("unknown architecture %q (want %q or %q)", o.Architecture, CBOW, SkipGram)
	}
}

// Train learns an embedding for every token in corpus. Each corpus entry is one recipe's ingredient list; context windows never
// cross entries. Training is single-threaded, so a fixed Seed reproduces the same
// vectors bit for bit.
func Train(ctx context.Context, corpus [][]ingredient.Token, opts TrainOptions) (*Space, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	tokens, counts := buildVocab(corpus, opts.MinCount)
	if len(tokens) == 0 {
		return nil, ErrEmptyCorpus
	}
	pos := make(map[ingredient.Token]int, len(tokens))
	for i, t := range tokens {
		pos[t] = i
	}

	sentences := make([][]int, 0, len(corpus))
	total := 0
	for _, doc := range corpus {
		s := make([]int, 0, len(doc))
		for _, t := range doc {
			if i, ok := pos[t]; ok {
				s = append(s, i)
			}
		}
		if len(s) > 0 {
			sentences = append(sentences, s)
			total += len(s)
		}
	}

	t := &trainer{
		opts:  opts,
		dim:   opts.Dim,
		rng:   rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
		syn0:  make([]float32, len(tokens)*opts.Dim),
		syn1:  make([]float32, len(tokens)*opts.Dim),
		noise: noiseTable(counts),
		neu1:  make([]float32, opts.Dim),
		neu1e: make([]float32, opts.Dim),
	}
	for i := range t.syn0 {
		t.syn0[i] = (t.rng.Float32() - 0.5) / float32(opts.Dim)
	}

	planned := float64(total * opts.Epochs)
	done := 0
	for epoch := 0; epoch < opts.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, s := range sentences {
			for i := range s {
				alpha := opts.Alpha - (opts.Alpha-opts.MinAlpha)*float64(done)/planned
				t.step(s, i, float32(alpha))
				done++
			}
		}
	}

	return newSpace(opts.Dim, tokens, counts, t.syn0), nil
}

// buildVocab counts tokens and orders them by frequency desc, then token asc.
func buildVocab(corpus [][]ingredient.Token, minCount int) ([]ingredient.Token, []int) {
	freq := make(map[ingredient.Token]int)
	for _, doc := range corpus {
		for _, t := range doc {
			if t == "" {
				continue
			}
			freq[t]++
		}
	}
	tokens := make([]ingredient.Token, 0, len(freq))
	for t, n := range freq {
		if n >= minCount {
			tokens = append(tokens, t)
		}
	}
	sort.Slice(tokens, func(i, j int) bool {
		if freq[tokens[i]] == freq[tokens[j]] {
			return tokens[i] < tokens[j]
		}
		return freq[tokens[i]] > freq[tokens[j]]
	})
	counts := make([]int, len(tokens))
	for i, t := range tokens {
		counts[i] = freq[t]
	}
	return tokens, counts
}

// noiseTable returns the cumulative unigram^0.75 distribution.
func noiseTable(counts []int) []float64 {
	cum := make([]float64, len(counts))
	var sum float64
	for i, c := range counts {
		sum += math.Pow(float64(c), 0.75)
		cum[i] = sum
	}
	return cum
}

type trainer struct {
	opts  TrainOptions
	dim   int
	rng   *rand.Rand
	syn0  []float32 // input vectors, the embeddings
	syn1  []float32 // output vectors for negative sampling
	noise []float64
	neu1  []float32
	neu1e []float32
}

func (t *trainer) vec(m []float32, i int) []float32 {
	return m[i*t.dim : (i+1)*t.dim]
}

// sample draws a token index from the noise distribution.
func (t *trainer) sample() int {
	r := t.rng.Float64() * t.noise[len(t.noise)-1]
	i := sort.SearchFloat64s(t.noise, r)
	if i >= len(t.noise) {
		i = len(t.noise) - 1
	}
	return i
}

// step trains on the token at position i of sentence s.
func (t *trainer) step(s []int, i int, alpha float32) {
	// Shrink the window randomly, as word2vec does, so nearer tokens weigh more.
	win := t.opts.Window - t.rng.IntN(t.opts.Window)
	lo, hi := max(0, i-win), min(len(s)-1, i+win)
	word := s[i]

	switch t.opts.Architecture {
	case SkipGram:
		for j := lo; j <= hi; j++ {
			if j == i {
				continue
			}
			in := t.vec(t.syn0, s[j])
			clear(t.neu1e)
			t.negative(in, word, alpha)
			axpy(1, t.neu1e, in)
		}
	default:
		clear(t.neu1)
		n := 0
		for j := lo; j <= hi; j++ {
			if j == i {
				continue
			}
			axpy(1, t.vec(t.syn0, s[j]), t.neu1)
			n++
		}
		if n == 0 {
			return
		}
		scale(1/float32(n), t.neu1)
		clear(t.neu1e)
		t.negative(t.neu1, word, alpha)
		for j := lo; j <= hi; j++ {
			if j == i {
				continue
			}
			axpy(1, t.neu1e, t.vec(t.syn0, s[j]))
		}
	}
}

// negative runs one positive and opts.Negative negative updates for hidden layer h
// predicting word, accumulating the input gradient into neu1e.
func (t *trainer) negative(h []float32, word int, alpha float32) {
	for d := 0; d <= t.opts.Negative; d++ {
		target, label := word, float32(1)
		if d > 0 {
			target, label = t.sample(), 0
			if target == word {
				continue
			}
		}
		out := t.vec(t.syn1, target)
		g := (label - sigmoid(dot(h, out))) * alpha
		axpy(g, out, t.neu1e)
		axpy(g, h, out)
	}
}

func sigmoid(x float32) float32 {
	switch {
	case x > 6:
		return 1
	case x < -6:
		return 0
	}
	return float32(1 / (1 + math.Exp(-float64(x))))
}

func dot(a, b []float32) float32 {
	var s float32
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// axpy computes y += a*x.
func axpy(a float32, x, y []float32) {
	for i := range x {
		y[i] += a * x[i]
	}
}

func scale(a float32, x []float32) {
	for i := range x {
		x[i] *= a
	}
}
