package search

import "sort"

// SortResults sorts results by similarity (descending), then by catalog position (ascending).
func SortResults(results []Scored) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Similarity == results[j].Similarity {
			return results[i].Position < results[j].Position
		}
		return results[i].Similarity > results[j].Similarity
	})
}
