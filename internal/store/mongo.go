package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/apperr"
)

const (
	productsCollection      = "products"
	categoriesCollection    = "categories"
	cartsCollection         = "carts"
	ordersCollection        = "orders"
	wishlistsCollection     = "wishlists"
	usersCollection         = "users"
	refreshTokensCollection = "refresh_tokens"
)

var notDeleted = bson.M{"$ne": true}

// NewMongo wires every collection of db. Transactions need a replica set.
func NewMongo(db *mongo.Database) *Store {
	return &Store{
		Products:      mongoProducts{coll: db.Collection(productsCollection)},
		Categories:    mongoCategories{coll: db.Collection(categoriesCollection)},
		Carts:         mongoCarts{coll: db.Collection(cartsCollection)},
		Orders:        mongoOrders{coll: db.Collection(ordersCollection)},
		Wishlists:     mongoWishlists{coll: db.Collection(wishlistsCollection)},
		Users:         mongoUsers{coll: db.Collection(usersCollection)},
		RefreshTokens: mongoRefreshTokens{coll: db.Collection(refreshTokensCollection)},
		Tx:            mongoTx{client: db.Client()},
	}
}

type mongoTx struct {
	client *mongo.Client
}

func (m mongoTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := m.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sessCtx mongo.SessionContext) (interface{}, error) {
		return nil, fn(sessCtx)
	})
	return err
}

func findErr(err error, what string) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound(what)
	}
	return err
}

func insertErr(err error, what string) error {
	if mongo.IsDuplicateKeyError(err) {
		return conflict(what)
	}
	return err
}

func conflict(what string) error {
	return fmt.Errorf("%s already exists: %w", what, apperr.ErrConflict)
}

func decodeAll[T any](ctx context.Context, cursor *mongo.Cursor) ([]T, error) {
	defer cursor.Close(ctx)
	out := make([]T, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
