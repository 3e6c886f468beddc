// Package ingredient canonicalizes free-text ingredient names into vocabulary keys.
package ingredient

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"
)

// Token is a normalized ingredient key: lowercase, underscore-separated, trimmed.
type Token string

// Separator joins the words of a multi-word token.
const Separator = '_'

// Normalize maps raw to its canonical token.
//
// Input is NFKC-normalized and lowercased, then every run of whitespace, '-' or '_'
// becomes a single '_'. Leading and trailing separators are dropped, so
// "  OLIVE   OIL ", "Olive-Oil" and "olive_oil" all yield "olive_oil".
// Normalize(Normalize(s)) == Normalize(s) for every s.
func Normalize(raw string) Token {
	// cases.Caser is stateful, so one per call.
	s := norm.NFKC.String(cases.Lower(language.Und).String(norm.NFKC.String(raw)))

	var b strings.Builder
	b.Grow(len(s))
	pending := false
	for _, r := range s {
		if isSeparator(r) {
			pending = b.Len() > 0
			continue
		}
		if pending {
			b.WriteRune(Separator)
			pending = false
		}
		b.WriteRune(r)
	}
	return Token(b.String())
}

// Split splits raw on commas, normalizes every piece and drops empty tokens.
// Order and duplicates are preserved.
func Split(raw string) []Token {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]Token, 0, len(parts))
	for _, p := range parts {
		t := Normalize(p)
		if t == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}

// Strings converts tokens to plain strings.
func Strings(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = string(t)
	}
	return out
}

// Display renders a token for humans, e.g. "olive_oil" -> "Olive Oil".
func Display(t Token) string {
	words := strings.Split(string(t), string(Separator))
	for i, w := range words {
		words[i] = cases.Title(language.Und).String(w)
	}
	return strings.Join(words, " ")
}

func isSeparator(r rune) bool {
	return unicode.IsSpace(r) || r == '_' || r == '-'
}
