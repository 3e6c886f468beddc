package recommend

import (
	"math"
	"strings"

	"github.com/vavi-recipes/vavi/internal/catalog"
	"github.com/vavi-recipes/vavi/internal/ingredient"
)

// Status is the outcome of a Recommend call.
type Status string

const (
	// StatusOK means at least one ranked match survived the filters.
	StatusOK Status = "ok"
	// StatusNoIngredients means the input held no usable ingredient.
	StatusNoIngredients Status = "no_ingredients"
	// StatusNoMatches means neighbors were found but the filters removed all of them.
	StatusNoMatches Status = "no_matches"
	// StatusFallback means the matches are a random sample, not a ranking.
	StatusFallback Status = "fallback"
)

// FallbackReason says why a result degraded to a random sample.
type FallbackReason string

const (
	FallbackNone           FallbackReason = ""
	FallbackVocabularyMiss FallbackReason = "vocabulary_miss"
	FallbackInternalError  FallbackReason = "internal_error"
)

// AnyCuisine disables the cuisine filter.
const AnyCuisine = "Any"

// NoTimeLimit as MaxCookingTime keeps recipes of any cooking time.
const NoTimeLimit = math.MaxInt

// Filters narrows ranked results. They are applied after the neighbors are
// retrieved and never change which neighbors are retrieved.
//
// The zero value keeps nothing: callers that want every recipe pass
// Unfiltered or spell out AnyCuisine and NoTimeLimit.
type Filters struct {
	// Cuisines to keep, compared case-insensitively. AnyCuisine keeps every
	// cuisine; an empty list keeps none.
	Cuisines []string
	// MaxCookingTime in minutes. A recipe is kept only if its cooking time is
	// at most this value, so zero or negative keeps nothing.
	MaxCookingTime int
}

// Unfiltered returns filters that keep every recipe.
func Unfiltered() Filters {
	return Filters{Cuisines: []string{AnyCuisine}, MaxCookingTime: NoTimeLimit}
}

// Allows reports whether r passes f.
func (f Filters) Allows(r catalog.Recipe) bool {
	if r.CookingTime > f.MaxCookingTime {
		return false
	}
	for _, c := range f.Cuisines {
		c = strings.TrimSpace(c)
		if strings.EqualFold(c, AnyCuisine) || strings.EqualFold(c, r.Cuisine) {
			return true
		}
	}
	return false
}

// Match is one recommended recipe. Similarity is only meaningful when Scored.
type Match struct {
	Recipe     catalog.Recipe
	Similarity float64
	Scored     bool
}

// Result is what Recommend returns. It never carries a raw failure in place of
// matches: internal faults degrade to StatusFallback and are kept in Err.
type Result struct {
	RequestID  string
	Status     Status
	Fallback   FallbackReason
	Matches    []Match
	Unresolved []ingredient.Token
	Err        error
}

// Degraded reports whether the matches are a sample rather than a ranking.
func (r Result) Degraded() bool { return r.Status == StatusFallback }
