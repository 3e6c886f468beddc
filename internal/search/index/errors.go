package index

import "errors"

var (
	// ErrVectorLengthMismatch indicates two vectors have different dimensions.
	ErrVectorLengthMismatch = errors.New("vector length mismatch")
	// ErrSizeMismatch indicates the index does not hold one vector per recipe.
	ErrSizeMismatch = errors.New("index size mismatch")
	// ErrEmptyIndex indicates a query against an index with no vectors.
	ErrEmptyIndex = errors.New("index is empty")
	// ErrInvalidVector indicates a query vector containing NaN or Inf.
	ErrInvalidVector = errors.New("query vector is not finite")
)
