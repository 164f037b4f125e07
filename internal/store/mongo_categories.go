package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

type mongoCategories struct {
	coll *mongo.Collection
}

func (m mongoCategories) Insert(ctx context.Context, c *models.Category) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	_, err := m.coll.InsertOne(ctx, c)
	return insertErr(err, "category "+c.Name)
}

func (m mongoCategories) Get(ctx context.Context, id primitive.ObjectID) (models.Category, error) {
	var c models.Category
	err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	return c, findErr(err, "category")
}

func (m mongoCategories) List(ctx context.Context) ([]models.Category, error) {
	cursor, err := m.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Category](ctx, cursor)
}

func (m mongoCategories) Update(ctx context.Context, c models.Category) error {
	set := bson.M{
		"name":          c.Name,
		"description":   c.Description,
		"subCategories": c.SubCategories,
		"isActive":      c.IsActive,
	}
	res, err := m.coll.UpdateOne(ctx, bson.M{"_id": c.ID}, bson.M{"$set": set})
	if err != nil {
		return insertErr(err, "category "+c.Name)
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("category")
	}
	return nil
}
