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

type mongoCarts struct {
	coll *mongo.Collection
}

func (m mongoCarts) Get(ctx context.Context, userID primitive.ObjectID) (models.Cart, error) {
	var cart models.Cart
	err := m.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&cart)
	return cart, findErr(err, "cart")
}

func (m mongoCarts) Save(ctx context.Context, cart *models.Cart) error {
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	res, err := m.coll.UpdateOne(ctx,
		bson.M{"userId": cart.UserID},
		bson.M{"$set": bson.M{"items": cart.Items, "updatedAt": cart.UpdatedAt}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return err
	}
	if id, ok := res.UpsertedID.(primitive.ObjectID); ok {
		cart.ID = id
	}
	return nil
}

type mongoOrders struct {
	coll *mongo.Collection
}

func (m mongoOrders) Insert(ctx context.Context, o *models.Order) error {
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	_, err := m.coll.InsertOne(ctx, o)
	return err
}

func (m mongoOrders) Get(ctx context.Context, id primitive.ObjectID) (models.Order, error) {
	var o models.Order
	err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&o)
	return o, findErr(err, "order")
}

func (m mongoOrders) list(ctx context.Context, filter bson.M) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}})
	cursor, err := m.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Order](ctx, cursor)
}

func (m mongoOrders) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	return m.list(ctx, bson.M{"userId": userID})
}

func (m mongoOrders) ListAll(ctx context.Context, status models.OrderStatus) ([]models.Order, error) {
	filter := bson.M{}
	if status != "" {
		filter["status"] = status
	}
	return m.list(ctx, filter)
}

func (m mongoOrders) SetStatus(ctx context.Context, id primitive.ObjectID, from, to models.OrderStatus, at time.Time) (models.Order, error) {
	var updated models.Order
	err := m.coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to, "updatedAt": at}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&updated)
	if err == nil {
		return updated, nil
	}
	if err != mongo.ErrNoDocuments {
		return models.Order{}, err
	}

	n, err := m.coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return models.Order{}, err
	}
	if n == 0 {
		return models.Order{}, apperr.NotFound("order")
	}
	return models.Order{}, apperr.ErrConflict
}

type mongoWishlists struct {
	coll *mongo.Collection
}

func (m mongoWishlists) Get(ctx context.Context, userID primitive.ObjectID) (models.Wishlist, error) {
	var w models.Wishlist
	err := m.coll.FindOne(ctx, bson.M{"userId": userID}).Decode(&w)
	return w, findErr(err, "wishlist")
}

func (m mongoWishlists) Add(ctx context.Context, userID, productID primitive.ObjectID) error {
	_, err := m.coll.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{
			"$addToSet": bson.M{"products": productID},
			"$set":      bson.M{"updatedAt": time.Now().UTC()},
		},
		options.Update().SetUpsert(true),
	)
	return err
}

func (m mongoWishlists) Remove(ctx context.Context, userID, productID primitive.ObjectID) error {
	res, err := m.coll.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{
			"$pull": bson.M{"products": productID},
			"$set":  bson.M{"updatedAt": time.Now().UTC()},
		},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("wishlist")
	}
	return nil
}

func (m mongoWishlists) SetProducts(ctx context.Context, userID primitive.ObjectID, ids []primitive.ObjectID) error {
	if ids == nil {
		ids = []primitive.ObjectID{}
	}
	_, err := m.coll.UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"products": ids, "updatedAt": time.Now().UTC()}},
	)
	return err
}
