package embeddings

import "github.com/vavi-recipes/vavi/internal/ingredient"

// Vectorize returns the component-wise mean of the embeddings of the tokens present
// in s, and how many tokens resolved. When none resolve it returns the zero vector
// of s.Dim() and 0; callers must treat that as "no resolvable ingredients" rather
// than a real vector.
func Vectorize(tokens []ingredient.Token, s *Space) ([]float32, int) {
	out := make([]float32, s.dim)
	n := 0
	for _, t := range tokens {
		i, ok := s.pos[t]
		if !ok {
			continue
		}
		axpy(1, s.row(i), out)
		n++
	}
	if n > 0 {
		scale(1/float32(n), out)
	}
	return out, n
}

// Unresolved returns the tokens that have no embedding in s, in input order.
func Unresolved(tokens []ingredient.Token, s *Space) []ingredient.Token {
	var out []ingredient.Token
	for _, t := range tokens {
		if !s.Has(t) {
			out = append(out, t)
		}
	}
	return out
}
