// Package embeddings trains, stores and queries the ingredient embedding space.
package embeddings

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"math"
	"slices"

	"github.com/vavi-recipes/vavi/internal/ingredient"
)

// ErrEmptyCorpus indicates there was nothing to train on.
var ErrEmptyCorpus = errors.New("embedding corpus has no tokens")

// Space maps ingredient tokens to fixed-length vectors. It is immutable and safe
// for concurrent readers.
type Space struct {
	dim     int
	tokens  []ingredient.Token
	counts  []int
	pos     map[ingredient.Token]int
	vectors []float32 // len(tokens) * dim, row-major
}

func newSpace(dim int, tokens []ingredient.Token, counts []int, vectors []float32) *Space {
	pos := make(map[ingredient.Token]int, len(tokens))
	for i, t := range tokens {
		pos[t] = i
	}
	return &Space{dim: dim, tokens: tokens, counts: counts, pos: pos, vectors: vectors}
}

// Dim returns the vector dimensionality.
func (s *Space) Dim() int { return s.dim }

// Len returns the vocabulary size.
func (s *Space) Len() int { return len(s.tokens) }

// Has reports whether t has an embedding.
func (s *Space) Has(t ingredient.Token) bool {
	_, ok := s.pos[t]
	return ok
}

// VectorOf returns a copy of t's embedding, or false if t was never seen in training.
func (s *Space) VectorOf(t ingredient.Token) ([]float32, bool) {
	i, ok := s.pos[t]
	if !ok {
		return nil, false
	}
	return slices.Clone(s.row(i)), true
}

// Count returns how often t occurred in the training corpus.
func (s *Space) Count(t ingredient.Token) int {
	i, ok := s.pos[t]
	if !ok {
		return 0
	}
	return s.counts[i]
}

// Tokens returns the vocabulary in training order (frequency desc, then token asc).
func (s *Space) Tokens() []ingredient.Token {
	return slices.Clone(s.tokens)
}

// Fingerprint identifies the exact vocabulary and vectors (16 hex chars).
func (s *Space) Fingerprint() string {
	h := sha256.New()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(s.dim))
	h.Write(buf[:])
	for _, t := range s.tokens {
		h.Write([]byte(t))
		h.Write([]byte{0})
	}
	for _, v := range s.vectors {
		binary.LittleEndian.PutUint32(buf[:4], math.Float32bits(v))
		h.Write(buf[:4])
	}
	return hex.EncodeToString(h.Sum(nil))[:16]
}

func (s *Space) row(i int) []float32 {
	return s.vectors[i*s.dim : (i+1)*s.dim]
}
