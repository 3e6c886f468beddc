package index

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/vavi-recipes/vavi/internal/catalog"
	"github.com/vavi-recipes/vavi/internal/ingredient"
)

// CanonicalText returns the text a recipe vector is derived from: its ordered
// ingredient tokens.
func CanonicalText(r catalog.Recipe) string {
	return strings.Join(ingredient.Strings(r.Ingredients), ",")
}

// TextHash returns a sha256 hash (hex) of the canonical text.
func TextHash(text string) string {
	h := sha256.Sum256([]byte(text))
	return hex.EncodeToString(h[:])
}
