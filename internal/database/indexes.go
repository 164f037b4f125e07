package database

import (
	"context"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type collectionIndexes struct {
	collection string
	models     []mongo.IndexModel
}

func indexPlan() []collectionIndexes {
	caseInsensitive := &options.Collation{Locale: "en", Strength: 2}

	return []collectionIndexes{
		{"products", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "category", Value: 1}, {Key: "subCategory", Value: 1}},
				Options: options.Index().SetName("category_subCategory"),
			},
			{
				Keys:    bson.D{{Key: "tags", Value: 1}},
				Options: options.Index().SetName("tags"),
			},
			{
				Keys:    bson.D{{Key: "createdAt", Value: -1}},
				Options: options.Index().SetName("createdAt_desc"),
			},
		}},
		{"categories", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "name", Value: 1}},
				Options: options.Index().SetName("name_unique").SetUnique(true).SetCollation(caseInsensitive),
			},
		}},
		{"users", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetName("email_unique").SetUnique(true),
			},
		}},
		{"carts", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "userId", Value: 1}},
				Options: options.Index().SetName("userId_unique").SetUnique(true),
			},
		}},
		{"wishlists", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "userId", Value: 1}},
				Options: options.Index().SetName("userId_unique").SetUnique(true),
			},
		}},
		{"orders", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}},
				Options: options.Index().SetName("userId_createdAt"),
			},
			{
				Keys:    bson.D{{Key: "status", Value: 1}},
				Options: options.Index().SetName("status"),
			},
		}},
		{"refresh_tokens", []mongo.IndexModel{
			{
				Keys:    bson.D{{Key: "tokenHash", Value: 1}},
				Options: options.Index().SetName("tokenHash_unique").SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "expiresAt", Value: 1}},
				Options: options.Index().SetName("expiresAt_ttl").SetExpireAfterSeconds(0),
			},
		}},
	}
}

// EnsureIndexes creates every index the stores rely on. Existing indexes with
// the same definition are left alone.
func EnsureIndexes(db *mongo.Database) error {
	for _, plan := range indexPlan() {
		if err := ensureCollectionIndexes(db, plan); err != nil {
			return err
		}
	}
	return nil
}

func ensureCollectionIndexes(db *mongo.Database, plan collectionIndexes) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	log.Printf("EnsureIndexes: creating %d index(es) on %s", len(plan.models), plan.collection)
	names, err := db.Collection(plan.collection).Indexes().CreateMany(ctx, plan.models)
	if err != nil {
		log.Printf("EnsureIndexes: %s index error: %v", plan.collection, err)
		return err
	}
	log.Printf("EnsureIndexes: %s indexes ready: %v", plan.collection, names)
	return nil
}
