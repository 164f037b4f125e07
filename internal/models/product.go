package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Tags a product may carry.
var ProductTags = []string{"hot", "trending", "offer", "new", "bestseller"}

type Ratings struct {
	Average float64 `bson:"average" json:"average" validate:"gte=0,lte=5"`
	Count   int     `bson:"count" json:"count" validate:"gte=0"`
}

// Product is the persisted catalog document. FinalPrice and CategoryName are
// filled on read and never stored.
type Product struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name" validate:"required"`
	Description  string             `bson:"description" json:"description" validate:"required"`
	Price        float64            `bson:"price" json:"price" validate:"gte=0"`
	Discount     float64            `bson:"discount" json:"discount" validate:"gte=0,lte=100"`
	FinalPrice   float64            `bson:"-" json:"finalPrice"`
	Stock        int                `bson:"stock" json:"stock" validate:"gte=0"`
	Images       []string           `bson:"images" json:"images" validate:"required,min=1,dive,required"`
	Category     CategoryRef        `bson:"category" json:"category"`
	CategoryName string             `bson:"-" json:"categoryName,omitempty"`
	SubCategory  string             `bson:"subCategory" json:"subCategory"`
	Tags         []string           `bson:"tags" json:"tags" validate:"dive,oneof=hot trending offer new bestseller"`
	Brand        string             `bson:"brand" json:"brand" validate:"required"`
	Ratings      Ratings            `bson:"ratings" json:"ratings"`
	IsFeatured   bool               `bson:"isFeatured" json:"isFeatured"`
	IsDeleted    bool               `bson:"isDeleted" json:"-"`
	DeletedAt    *time.Time         `bson:"deletedAt,omitempty" json:"-"`
	CreatedBy    primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}
