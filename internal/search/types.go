package search

// Scored is one ranked candidate: a catalog position and its similarity to the
// query (1 = same direction, -1 = opposite).
type Scored struct {
	Position   int
	Similarity float64
}
