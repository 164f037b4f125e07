package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIndexPlanCoversStores(t *testing.T) {
	byCollection := map[string][]string{}
	for _, plan := range indexPlan() {
		for _, model := range plan.models {
			byCollection[plan.collection] = append(byCollection[plan.collection], *model.Options.Name)
		}
	}

	assert.Contains(t, byCollection["users"], "email_unique")
	assert.Contains(t, byCollection["categories"], "name_unique")
	assert.Contains(t, byCollection["carts"], "userId_unique")
	assert.Contains(t, byCollection["wishlists"], "userId_unique")
	assert.Contains(t, byCollection["refresh_tokens"], "expiresAt_ttl")
	assert.Contains(t, byCollection["products"], "category_subCategory")
	assert.Contains(t, byCollection["orders"], "userId_createdAt")
}

func TestCategoryNameIndexIgnoresCase(t *testing.T) {
	for _, plan := range indexPlan() {
		if plan.collection != "categories" {
			continue
		}
		opts := plan.models[0].Options
		assert.True(t, *opts.Unique)
		assert.Equal(t, 2, opts.Collation.Strength)
	}
}
