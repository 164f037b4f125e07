package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

type mongoUsers struct {
	coll *mongo.Collection
}

func (m mongoUsers) Insert(ctx context.Context, u *models.User) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	_, err := m.coll.InsertOne(ctx, u)
	return insertErr(err, "email")
}

func (m mongoUsers) Get(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	return u, findErr(err, "user")
}

func (m mongoUsers) GetByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := m.coll.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	return u, findErr(err, "user")
}

type mongoRefreshTokens struct {
	coll *mongo.Collection
}

func (m mongoRefreshTokens) Insert(ctx context.Context, t *models.RefreshToken) error {
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	_, err := m.coll.InsertOne(ctx, t)
	return err
}

func (m mongoRefreshTokens) GetByHash(ctx context.Context, hash string) (models.RefreshToken, error) {
	var t models.RefreshToken
	err := m.coll.FindOne(ctx, bson.M{"tokenHash": hash}).Decode(&t)
	return t, findErr(err, "refresh token")
}

func (m mongoRefreshTokens) Revoke(ctx context.Context, id primitive.ObjectID, replacedBy *primitive.ObjectID) error {
	set := bson.M{"revoked": true}
	if replacedBy != nil {
		set["replacedBy"] = *replacedBy
	}
	res, err := m.coll.UpdateOne(ctx, bson.M{"_id": id, "revoked": false}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.ErrConflict
	}
	return nil
}
