package index

// Metric names the distance function an index was built for.
const Metric = "cosine"

// Manifest describes a similarity index and what it was built from.
type Manifest struct {
	IndexVersion     int    `json:"index_version"`
	CreatedAt        string `json:"created_at"`
	CatalogHash      string `json:"catalog_hash"`
	SpaceFingerprint string `json:"space_fingerprint"`
	Metric           string `json:"metric"`
	Dim              int    `json:"dim"`
	Count            int    `json:"count"`
	VectorFile       string `json:"vector_file"`
	RecipesFile      string `json:"recipes_file"`
}

// Entry represents one recipe row in recipes.jsonl. Position is the recipe's
// catalog position and equals the entry's own position in the index.
type Entry struct {
	Position int    `json:"position"`
	Name     string `json:"name"`
	TextHash string `json:"text_hash"`
	Resolved int    `json:"resolved"`
}

// Index is a read-only set of recipe vectors, one per catalog recipe, in
// catalog order. Vectors is row-major with Manifest.Dim columns.
type Index struct {
	Manifest Manifest
	Entries  []Entry
	Vectors  []float32
}

// Neighbor is one query result: a catalog position and its cosine distance.
type Neighbor struct {
	Position int
	Distance float64
}

// Len returns the number of indexed recipes.
func (idx *Index) Len() int {
	if idx == nil {
		return 0
	}
	return len(idx.Entries)
}

// Vector returns the stored vector at position i.
func (idx *Index) Vector(i int) []float32 {
	d := idx.Manifest.Dim
	return idx.Vectors[i*d : (i+1)*d]
}
