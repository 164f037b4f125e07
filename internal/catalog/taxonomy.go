// Package catalog holds the product rules shared by every write path: the
// category taxonomy, the final price rule, struct validation, listing query
// parsing and the dangling reference guard.
package catalog

import (
	_ "embed"
	"fmt"
	"os"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"gopkg.in/yaml.v3"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

//go:embed taxonomy.yaml
var defaultSeed []byte

type SeedCategory struct {
	Name          string   `yaml:"name"`
	Description   string   `yaml:"description"`
	SubCategories []string `yaml:"subCategories"`
}

type Seed struct {
	Categories []SeedCategory `yaml:"categories"`
}

// ParseSeed decodes a YAML category table. Names must be unique ignoring case.
func ParseSeed(data []byte) (Seed, error) {
	var seed Seed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return Seed{}, fmt.Errorf("parse taxonomy: %w", err)
	}

	seen := make(map[string]bool, len(seed.Categories))
	for i, c := range seed.Categories {
		name := strings.TrimSpace(c.Name)
		if name == "" {
			return Seed{}, fmt.Errorf("parse taxonomy: category %d has no name", i)
		}
		key := strings.ToLower(name)
		if seen[key] {
			return Seed{}, fmt.Errorf("parse taxonomy: duplicate category %q", name)
		}
		seen[key] = true

		subs, err := NormalizeSubCategories(c.SubCategories)
		if err != nil {
			return Seed{}, fmt.Errorf("parse taxonomy: category %q: %w", name, err)
		}
		seed.Categories[i].Name = name
		seed.Categories[i].SubCategories = subs
	}
	return seed, nil
}

// LoadSeed reads the table at path, or the embedded default when path is empty.
func LoadSeed(path string) (Seed, error) {
	if path == "" {
		return DefaultSeed()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Seed{}, fmt.Errorf("read taxonomy: %w", err)
	}
	return ParseSeed(data)
}

func DefaultSeed() (Seed, error) {
	return ParseSeed(defaultSeed)
}

// NormalizeSubCategories trims an allow-list and drops repeats that differ
// only by case. The first spelling wins.
func NormalizeSubCategories(list []string) ([]string, error) {
	out := make([]string, 0, len(list))
	seen := make(map[string]bool, len(list))
	for _, s := range list {
		s = strings.Join(strings.Fields(s), " ")
		if s == "" {
			return nil, apperr.Invalid("subCategories", "subCategories cannot contain empty values")
		}
		key := strings.ToLower(s)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out, nil
}

// NormalizeLabel rewrites a free-form label to "Capitalized, rest lowercased"
// with inner whitespace collapsed.
func NormalizeLabel(s string) string {
	s = strings.ToLower(strings.Join(strings.Fields(s), " "))
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + s[size:]
}

// Taxonomy is a read-only view over the category documents.
type Taxonomy struct {
	byID   map[primitive.ObjectID]models.Category
	byName map[string]primitive.ObjectID
	order  []primitive.ObjectID
}

func NewTaxonomy(categories []models.Category) *Taxonomy {
	t := &Taxonomy{
		byID:   make(map[primitive.ObjectID]models.Category, len(categories)),
		byName: make(map[string]primitive.ObjectID, len(categories)),
	}
	for _, c := range categories {
		if _, dup := t.byID[c.ID]; dup {
			continue
		}
		t.byID[c.ID] = c
		t.byName[strings.ToLower(strings.TrimSpace(c.Name))] = c.ID
		t.order = append(t.order, c.ID)
	}
	sort.SliceStable(t.order, func(i, j int) bool {
		return t.byID[t.order[i]].Name < t.byID[t.order[j]].Name
	})
	return t
}

// Lookup finds a category by name, ignoring case.
func (t *Taxonomy) Lookup(name string) (models.Category, bool) {
	id, ok := t.byName[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return models.Category{}, false
	}
	return t.byID[id], true
}

func (t *Taxonomy) ByID(id primitive.ObjectID) (models.Category, bool) {
	c, ok := t.byID[id]
	return c, ok
}

// Resolve accepts either a category id in hex or a category name.
func (t *Taxonomy) Resolve(input string) (models.Category, bool) {
	input = strings.TrimSpace(input)
	if id, err := primitive.ObjectIDFromHex(input); err == nil {
		if c, ok := t.byID[id]; ok {
			return c, true
		}
	}
	return t.Lookup(input)
}

// Name returns the display name of the referenced category.
func (t *Taxonomy) Name(ref models.CategoryRef) string {
	if c, ok := t.byID[ref.ID]; ok {
		return c.Name
	}
	return ref.Legacy
}

// Categories lists categories ordered by name. Inactive ones are included
// only when requested.
func (t *Taxonomy) Categories(includeInactive bool) []models.Category {
	out := make([]models.Category, 0, len(t.order))
	for _, id := range t.order {
		c := t.byID[id]
		if c.IsActive || includeInactive {
			out = append(out, c)
		}
	}
	return out
}

func (t *Taxonomy) SubCategories(category string) ([]string, error) {
	c, ok := t.Resolve(category)
	if !ok {
		return nil, apperr.NotFound("category")
	}
	return append([]string{}, c.SubCategories...), nil
}

// Check normalizes a candidate pair and validates it for a write. It returns
// the resolved category and the canonical subcategory spelling.
func (t *Taxonomy) Check(categoryInput, subInput string) (models.Category, string, error) {
	c, sub, err := t.Normalize(categoryInput, subInput)
	if err != nil {
		return models.Category{}, "", err
	}
	if !c.IsActive {
		return models.Category{}, "", apperr.Invalid("category", "category %s is inactive", c.Name)
	}
	return c, sub, nil
}

// Normalize is Check without the active requirement.
func (t *Taxonomy) Normalize(categoryInput, subInput string) (models.Category, string, error) {
	if strings.TrimSpace(categoryInput) == "" {
		return models.Category{}, "", apperr.Invalid("category", "category is required")
	}
	c, ok := t.Resolve(categoryInput)
	if !ok {
		return models.Category{}, "", apperr.Invalid("category", "unknown category %q", strings.TrimSpace(categoryInput))
	}
	sub, err := canonicalSub(c, subInput)
	if err != nil {
		return models.Category{}, "", err
	}
	return c, sub, nil
}

// Validate checks a stored pair without normalizing it. The reference must
// resolve and the subcategory must already be in canonical form.
func (t *Taxonomy) Validate(ref models.CategoryRef, sub string) error {
	if ref.ID.IsZero() {
		return apperr.Invalid("category", "category reference is missing")
	}
	c, ok := t.byID[ref.ID]
	if !ok {
		return apperr.Invalid("category", "category %s does not exist", ref.ID.Hex())
	}
	canonical, err := canonicalSub(c, sub)
	if err != nil {
		return err
	}
	if canonical != sub {
		return apperr.Invalid("subCategory", "subCategory %q should be stored as %q", sub, canonical)
	}
	return nil
}

func canonicalSub(c models.Category, input string) (string, error) {
	input = strings.Join(strings.Fields(input), " ")
	if input == "" {
		return "", apperr.Invalid("subCategory", "subCategory is required")
	}
	if len(c.SubCategories) == 0 {
		return NormalizeLabel(input), nil
	}
	for _, allowed := range c.SubCategories {
		if strings.EqualFold(allowed, input) {
			return allowed, nil
		}
	}
	return "", apperr.Invalid("subCategory", "subCategory %q is not allowed for %s (allowed: %s)",
		input, c.Name, strings.Join(c.SubCategories, ", "))
}
