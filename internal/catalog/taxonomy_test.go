package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

func seededTaxonomy(t *testing.T) *Taxonomy {
	t.Helper()
	seed, err := DefaultSeed()
	require.NoError(t, err)

	categories := make([]models.Category, 0, len(seed.Categories))
	for _, c := range seed.Categories {
		categories = append(categories, models.Category{
			ID:            primitive.NewObjectID(),
			Name:          c.Name,
			SubCategories: c.SubCategories,
			IsActive:      true,
		})
	}
	categories = append(categories,
		models.Category{ID: primitive.NewObjectID(), Name: "Garden", IsActive: true},
		models.Category{ID: primitive.NewObjectID(), Name: "Retired", SubCategories: []string{"Old"}},
	)
	return NewTaxonomy(categories)
}

func TestDefaultSeed(t *testing.T) {
	seed, err := DefaultSeed()
	require.NoError(t, err)
	require.Len(t, seed.Categories, 7)
	assert.Equal(t, "Clothing", seed.Categories[0].Name)
	assert.Equal(t, []string{"Men", "Women", "Kids"}, seed.Categories[0].SubCategories)
}

func TestParseSeedRejectsDuplicates(t *testing.T) {
	_, err := ParseSeed([]byte("categories:\n  - name: Books\n  - name: books\n"))
	assert.Error(t, err)

	_, err = ParseSeed([]byte("categories:\n  - name: ''\n"))
	assert.Error(t, err)
}

func TestCheckNormalizesThenValidates(t *testing.T) {
	tax := seededTaxonomy(t)

	c, sub, err := tax.Check("CLOTHING", "men")
	require.NoError(t, err)
	assert.Equal(t, "Clothing", c.Name)
	assert.Equal(t, "Men", sub)

	c, sub, err = tax.Check(" books ", "non-fiction")
	require.NoError(t, err)
	assert.Equal(t, "Books", c.Name)
	assert.Equal(t, "Non-Fiction", sub)

	byID, sub, err := tax.Check(c.ID.Hex(), "FICTION")
	require.NoError(t, err)
	assert.Equal(t, c.ID, byID.ID)
	assert.Equal(t, "Fiction", sub)
}

func TestCheckRejectsBadPairs(t *testing.T) {
	tax := seededTaxonomy(t)

	cases := []struct {
		category, sub, field string
	}{
		{"Clothing", "Formal", "subCategory"},
		{"Clothing", "", "subCategory"},
		{"", "Men", "category"},
		{"Vehicles", "Cars", "category"},
		{"Retired", "Old", "category"},
	}
	for _, tc := range cases {
		_, _, err := tax.Check(tc.category, tc.sub)
		require.Error(t, err, "%s/%s", tc.category, tc.sub)
		var verr *apperr.ValidationError
		require.ErrorAs(t, err, &verr)
		assert.Equal(t, tc.field, verr.Field)
	}
}

func TestCheckOpenCategory(t *testing.T) {
	tax := seededTaxonomy(t)

	_, sub, err := tax.Check("garden", "  POTTED   plants ")
	require.NoError(t, err)
	assert.Equal(t, "Potted plants", sub)
}

func TestValidateIsStrict(t *testing.T) {
	tax := seededTaxonomy(t)
	clothing, ok := tax.Lookup("clothing")
	require.True(t, ok)
	garden, _ := tax.Lookup("Garden")
	retired, _ := tax.Lookup("Retired")

	assert.NoError(t, tax.Validate(models.RefTo(clothing.ID), "Women"))
	assert.NoError(t, tax.Validate(models.RefTo(retired.ID), "Old"))
	assert.NoError(t, tax.Validate(models.RefTo(garden.ID), "Tools"))
	assert.Error(t, tax.Validate(models.RefTo(clothing.ID), "women"))
	assert.Error(t, tax.Validate(models.RefTo(garden.ID), "TOOLS"))
	assert.Error(t, tax.Validate(models.CategoryRef{Legacy: "Clothing"}, "Men"))
	assert.Error(t, tax.Validate(models.RefTo(primitive.NewObjectID()), "Men"))
}

func TestCheckOutputPassesValidate(t *testing.T) {
	tax := seededTaxonomy(t)
	for _, pair := range [][2]string{{"clothing", "KIDS"}, {"garden", "seeds and BULBS"}, {"toys", "board games"}} {
		c, sub, err := tax.Check(pair[0], pair[1])
		require.NoError(t, err)
		assert.NoError(t, tax.Validate(models.RefTo(c.ID), sub))
	}
}

func TestCategoriesAndSubCategories(t *testing.T) {
	tax := seededTaxonomy(t)

	active := tax.Categories(false)
	assert.Len(t, active, 8)
	assert.Equal(t, "Beauty", active[0].Name)
	assert.Len(t, tax.Categories(true), 9)

	subs, err := tax.SubCategories("sports")
	require.NoError(t, err)
	assert.Equal(t, []string{"Fitness", "Outdoor", "Team Sports"}, subs)

	_, err = tax.SubCategories("nope")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestNormalizeLabel(t *testing.T) {
	assert.Equal(t, "Men", NormalizeLabel("MEN"))
	assert.Equal(t, "Team sports", NormalizeLabel(" team   SPORTS "))
	assert.Equal(t, "", NormalizeLabel("   "))
	assert.Equal(t, NormalizeLabel("Écharpes"), NormalizeLabel(NormalizeLabel("ÉCHARPES")))
}

func TestNormalizeAcceptsInactive(t *testing.T) {
	tax := seededTaxonomy(t)
	c, sub, err := tax.Normalize("retired", "OLD")
	require.NoError(t, err)
	assert.Equal(t, "Retired", c.Name)
	assert.Equal(t, "Old", sub)
}
