package index

import (
	"fmt"
	"math"
	"sort"
)

// Validate checks that the index holds exactly n vectors of Manifest.Dim.
func (idx *Index) Validate(n int) error {
	if idx == nil {
		return fmt.Errorf("%w: nil index", ErrSizeMismatch)
	}
	if len(idx.Entries) != n {
		return fmt.Errorf("%w: %d entries for %d recipes", ErrSizeMismatch, len(idx.Entries), n)
	}
	if idx.Manifest.Dim <= 0 || len(idx.Vectors) != n*idx.Manifest.Dim {
		return fmt.Errorf("%w: %d floats for %d rows of dim %d", ErrSizeMismatch, len(idx.Vectors), n, idx.Manifest.Dim)
	}
	for i, e := range idx.Entries {
		if e.Position != i {
			return fmt.Errorf("%w: entry %q at %d claims position %d", ErrSizeMismatch, e.Name, i, e.Position)
		}
	}
	return nil
}

// Query returns the min(k, Len()) nearest vectors to v by cosine distance,
// nearest first. Equal distances keep catalog order.
func (idx *Index) Query(v []float32, k int) ([]Neighbor, error) {
	n := idx.Len()
	if n == 0 {
		return nil, ErrEmptyIndex
	}
	if err := idx.Validate(n); err != nil {
		return nil, err
	}
	if len(v) != idx.Manifest.Dim {
		return nil, fmt.Errorf("%w: query dim %d, index dim %d", ErrVectorLengthMismatch, len(v), idx.Manifest.Dim)
	}
	if !finite(v) {
		return nil, ErrInvalidVector
	}
	k = min(k, n)
	if k <= 0 {
		return []Neighbor{}, nil
	}

	all := make([]Neighbor, n)
	for i := 0; i < n; i++ {
		d, err := CosineDistance(v, idx.Vector(i))
		if err != nil {
			return nil, err
		}
		if math.IsNaN(d) {
			return nil, fmt.Errorf("%w: stored vector %d", ErrInvalidVector, i)
		}
		all[i] = Neighbor{Position: i, Distance: d}
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Distance < all[j].Distance
	})
	return all[:k], nil
}
