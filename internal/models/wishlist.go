package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Wishlist struct {
	ID         primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID     primitive.ObjectID   `bson:"userId" json:"userId"`
	ProductIDs []primitive.ObjectID `bson:"products" json:"productIds"`
	Products   []Product            `bson:"-" json:"products"`
	UpdatedAt  time.Time            `bson:"updatedAt" json:"updatedAt"`
}
