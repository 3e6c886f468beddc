package index

import "math"

// Cosine computes cosine similarity between two vectors of equal length.
// A zero-norm vector has similarity 0 with everything.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrVectorLengthMismatch
	}
	var dot float64
	var na float64
	var nb float64
	for i := 0; i < len(a); i++ {
		x := float64(a[i])
		y := float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	den := math.Sqrt(na) * math.Sqrt(nb)
	if den == 0 {
		return 0, nil
	}
	return dot / den, nil
}

// CosineDistance returns 1 - cosine similarity, in [0, 2]. Rounding noise that
// would push the similarity outside [-1, 1] is clamped.
func CosineDistance(a, b []float32) (float64, error) {
	sim, err := Cosine(a, b)
	if err != nil {
		return 0, err
	}
	return 1 - max(-1, min(1, sim)), nil
}

func finite(v []float32) bool {
	for _, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
