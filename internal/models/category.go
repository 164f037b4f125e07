package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category is an admin-managed product category. SubCategories is its
// allow-list; an empty list accepts any subcategory.
type Category struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name          string              `bson:"name" json:"name"`
	Description   string              `bson:"description,omitempty" json:"description,omitempty"`
	SubCategories []string            `bson:"subCategories" json:"subCategories"`
	IsActive      bool                `bson:"isActive" json:"isActive"`
	CreatedBy     *primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt     time.Time           `bson:"createdAt" json:"createdAt"`
}
