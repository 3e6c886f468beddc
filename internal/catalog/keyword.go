package catalog

import (
	"strings"

	"github.com/vavi-recipes/vavi/internal/ingredient"
)

// Search matches recipe names by case-insensitive substring. All query words must
// match (AND semantics). Results keep definition order.
func (c *Catalog) Search(query string, limit int) []Recipe {
	words := tokenize(query)
	if len(words) == 0 {
		return []Recipe{}
	}

	out := []Recipe{}
	for _, r := range c.recipes {
		name := strings.ToLower(r.Name)
		ok := true
		for _, w := range words {
			if !strings.Contains(name, w) {
				ok = false
				break
			}
		}
		if !ok {
			continue
		}
		out = append(out, r.clone())
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// WithAnyIngredient returns the recipes that use at least one of tokens.
func (c *Catalog) WithAnyIngredient(tokens []ingredient.Token) []Recipe {
	want := make(map[ingredient.Token]struct{}, len(tokens))
	for _, t := range tokens {
		if t = ingredient.Normalize(string(t)); t != "" {
			want[t] = struct{}{}
		}
	}
	out := []Recipe{}
	if len(want) == 0 {
		return out
	}
	for _, r := range c.recipes {
		for _, t := range r.Ingredients {
			if _, ok := want[t]; ok {
				out = append(out, r.clone())
				break
			}
		}
	}
	return out
}

func tokenize(q string) []string {
	parts := strings.Fields(q)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		out = append(out, strings.ToLower(p))
	}
	return out
}
