// Package catalog holds the fixed, in-memory set of recipes.
package catalog

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/vavi-recipes/vavi/internal/ingredient"
	"gopkg.in/yaml.v3"
)

// DefaultImage is used for recipes that do not name an image.
const DefaultImage = "default.jpg"

//go:embed recipes.yaml
var builtin []byte

// ErrInvalidCatalog indicates the recipe definitions could not be parsed.
var ErrInvalidCatalog = errors.New("invalid recipe catalog")

// Recipe is one catalog entry. Recipes are never mutated after load.
type Recipe struct {
	Name        string             `json:"name"`
	Ingredients []ingredient.Token `json:"ingredients"`
	Steps       []string           `json:"steps"`
	Cuisine     string             `json:"cuisine"`
	CookingTime int                `json:"cooking_time"`
	Serves      int                `json:"serves"`
	Image       string             `json:"image"`
}

func (r Recipe) clone() Recipe {
	r.Ingredients = slices.Clone(r.Ingredients)
	r.Steps = slices.Clone(r.Steps)
	return r
}

// definition is one row of the YAML source.
type definition struct {
	Name        string `yaml:"name"`
	Ingredients string `yaml:"ingredients"`
	Steps       string `yaml:"steps"`
	Cuisine     string `yaml:"cuisine"`
	CookingTime int    `yaml:"cooking_time"`
	Serves      int    `yaml:"serves"`
	Image       string `yaml:"image"`
}

// Catalog is an ordered, read-only collection of recipes.
type Catalog struct {
	recipes []Recipe
	byName  map[string]int
	hash    string
}

// Load parses the built-in recipe definitions.
func Load() (*Catalog, error) {
	return Parse(builtin)
}

// Builtin returns a copy of the built-in recipe definitions, e.g. as a starting
// point for a custom catalog file.
func Builtin() []byte {
	return slices.Clone(builtin)
}

// LoadFile parses recipe definitions from a YAML file.
func LoadFile(path string) (*Catalog, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read catalog %s: %w", path, err)
	}
	c, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Parse builds a catalog from YAML recipe definitions. Ingredients and steps are
// comma-delimited strings; every ingredient is normalized.
func Parse(data []byte) (*Catalog, error) {
	var defs []definition
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("%w: no recipes defined", ErrInvalidCatalog)
	}

	c := &Catalog{
		recipes: make([]Recipe, 0, len(defs)),
		byName:  make(map[string]int, len(defs)),
	}
	for i, d := range defs {
		r, err := d.recipe()
		if err != nil {
			return nil, fmt.Errorf("%w: recipe #%d: %v", ErrInvalidCatalog, i+1, err)
		}
		key := nameKey(r.Name)
		if prev, ok := c.byName[key]; ok {
			return nil, fmt.Errorf("%w: recipe #%d: duplicate name %q (first defined as #%d)", ErrInvalidCatalog, i+1, r.Name, prev+1)
		}
		c.byName[key] = len(c.recipes)
		c.recipes = append(c.recipes, r)
	}
	c.hash = contentHash(c.recipes)
	return c, nil
}

func (d definition) recipe() (Recipe, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return Recipe{}, errors.New("name is required")
	}
	ings := ingredient.Split(d.Ingredients)
	if len(ings) == 0 {
		return Recipe{}, fmt.Errorf("%q has no ingredients", name)
	}
	cuisine := strings.TrimSpace(d.Cuisine)
	if cuisine == "" {
		return Recipe{}, fmt.Errorf("%q has no cuisine", name)
	}
	if d.CookingTime <= 0 {
		return Recipe{}, fmt.Errorf("%q has invalid cooking_time %d", name, d.CookingTime)
	}
	if d.Serves <= 0 {
		return Recipe{}, fmt.Errorf("%q has invalid serves %d", name, d.Serves)
	}
	image := strings.TrimSpace(d.Image)
	if image == "" {
		image = DefaultImage
	}

	var steps []string
	for _, s := range strings.Split(d.Steps, ",") {
		if s = strings.TrimSpace(s); s != "" {
			steps = append(steps, s)
		}
	}

	return Recipe{
		Name:        name,
		Ingredients: ings,
		Steps:       steps,
		Cuisine:     cuisine,
		CookingTime: d.CookingTime,
		Serves:      d.Serves,
		Image:       image,
	}, nil
}

// Len returns the number of recipes.
func (c *Catalog) Len() int { return len(c.recipes) }

// At returns the recipe at position i in definition order.
func (c *Catalog) At(i int) (Recipe, bool) {
	if i < 0 || i >= len(c.recipes) {
		return Recipe{}, false
	}
	return c.recipes[i].clone(), true
}

// All returns every recipe in definition order.
func (c *Catalog) All() []Recipe {
	out := make([]Recipe, len(c.recipes))
	for i, r := range c.recipes {
		out[i] = r.clone()
	}
	return out
}

// ByName looks a recipe up by exact name, ignoring case and surrounding whitespace.
func (c *Catalog) ByName(name string) (Recipe, bool) {
	i, ok := c.byName[nameKey(name)]
	if !ok {
		return Recipe{}, false
	}
	return c.recipes[i].clone(), true
}

// Corpus returns each recipe's ingredient list, in definition order, for embedding training.
func (c *Catalog) Corpus() [][]ingredient.Token {
	out := make([][]ingredient.Token, len(c.recipes))
	for i, r := range c.recipes {
		out[i] = slices.Clone(r.Ingredients)
	}
	return out
}

// Cuisines returns the sorted set of cuisine labels.
func (c *Catalog) Cuisines() []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range c.recipes {
		if _, ok := seen[r.Cuisine]; ok {
			continue
		}
		seen[r.Cuisine] = struct{}{}
		out = append(out, r.Cuisine)
	}
	sort.Strings(out)
	return out
}

// Ingredients returns the sorted set of ingredient tokens used by any recipe.
func (c *Catalog) Ingredients() []ingredient.Token {
	seen := make(map[ingredient.Token]struct{})
	var out []ingredient.Token
	for _, r := range c.recipes {
		for _, t := range r.Ingredients {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	slices.Sort(out)
	return out
}

// MissingImages lists recipe image files that do not exist in dir.
func (c *Catalog) MissingImages(dir string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, r := range c.recipes {
		if _, ok := seen[r.Image]; ok {
			continue
		}
		seen[r.Image] = struct{}{}
		if _, err := os.Stat(filepath.Join(dir, r.Image)); err != nil {
			out = append(out, r.Image)
		}
	}
	return out
}

// Hash returns a sha256 (hex) of the normalized catalog content.
// Cached artifacts built from a different catalog have a different hash.
func (c *Catalog) Hash() string { return c.hash }

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func contentHash(recipes []Recipe) string {
	h := sha256.New()
	for _, r := range recipes {
		fields := []string{
			r.Name,
			strings.Join(ingredient.Strings(r.Ingredients), ","),
			strings.Join(r.Steps, ","),
			r.Cuisine,
			strconv.Itoa(r.CookingTime),
			strconv.Itoa(r.Serves),
			r.Image,
		}
		h.Write([]byte(strings.Join(fields, "\x1f")))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
