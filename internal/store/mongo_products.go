package store

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"storefront/internal/apperr"
	"storefront/internal/models"
)

// finalPriceExpr mirrors catalog.FinalPrice so price filters and sorting run
// on the server.
var finalPriceExpr = bson.M{
	"$subtract": bson.A{
		"$price",
		bson.M{"$divide": bson.A{bson.M{"$multiply": bson.A{"$price", "$discount"}}, 100}},
	},
}

type mongoProducts struct {
	coll *mongo.Collection
}

func (m mongoProducts) Insert(ctx context.Context, p *models.Product) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	_, err := m.coll.InsertOne(ctx, p)
	return err
}

func (m mongoProducts) Get(ctx context.Context, id primitive.ObjectID) (models.Product, error) {
	var p models.Product
	err := m.coll.FindOne(ctx, bson.M{"_id": id, "isDeleted": notDeleted}).Decode(&p)
	return p, findErr(err, "product")
}

func (m mongoProducts) Live(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error) {
	live := make(map[primitive.ObjectID]models.Product, len(ids))
	if len(ids) == 0 {
		return live, nil
	}
	cursor, err := m.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}, "isDeleted": notDeleted})
	if err != nil {
		return nil, err
	}
	products, err := decodeAll[models.Product](ctx, cursor)
	if err != nil {
		return nil, err
	}
	for _, p := range products {
		live[p.ID] = p
	}
	return live, nil
}

func exactFold(s string) bson.M {
	return bson.M{"$regex": "^" + regexp.QuoteMeta(s) + "$", "$options": "i"}
}

func (m mongoProducts) List(ctx context.Context, f ProductFilter) (ProductPage, error) {
	match := bson.M{"isDeleted": notDeleted}
	if f.CategoryID != nil {
		match["category"] = *f.CategoryID
	}
	if f.SubCategory != "" {
		match["subCategory"] = exactFold(f.SubCategory)
	}
	if f.Search != "" {
		rx := bson.M{"$regex": regexp.QuoteMeta(f.Search), "$options": "i"}
		match["$or"] = bson.A{bson.M{"name": rx}, bson.M{"description": rx}, bson.M{"brand": rx}}
	}
	if len(f.Tags) > 0 {
		match["tags"] = bson.M{"$in": f.Tags}
	}
	if f.Brand != "" {
		match["brand"] = exactFold(f.Brand)
	}
	if f.Featured != nil {
		match["isFeatured"] = *f.Featured
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$addFields", Value: bson.M{"finalPrice": finalPriceExpr}}},
	}

	priceRange := bson.M{}
	if f.MinPrice != nil {
		priceRange["$gte"] = *f.MinPrice
	}
	if f.MaxPrice != nil {
		priceRange["$lte"] = *f.MaxPrice
	}
	if len(priceRange) > 0 {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{"finalPrice": priceRange}}})
	}

	sortField := f.SortField
	if sortField == "" {
		sortField = "createdAt"
	}
	dir := 1
	if f.SortDesc {
		dir = -1
	}
	page := bson.A{
		bson.M{"$sort": bson.D{{Key: sortField, Value: dir}, {Key: "_id", Value: dir}}},
		bson.M{"$skip": f.Skip},
	}
	if f.Limit > 0 {
		page = append(page, bson.M{"$limit": f.Limit})
	}
	pipeline = append(pipeline, bson.D{{Key: "$facet", Value: bson.M{
		"items": page,
		"total": bson.A{bson.M{"$count": "n"}},
	}}})

	cursor, err := m.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return ProductPage{}, err
	}
	type facet struct {
		Items []models.Product `bson:"items"`
		Total []struct {
			N int64 `bson:"n"`
		} `bson:"total"`
	}
	results, err := decodeAll[facet](ctx, cursor)
	if err != nil {
		return ProductPage{}, err
	}

	out := ProductPage{Items: []models.Product{}}
	if len(results) == 0 {
		return out, nil
	}
	if results[0].Items != nil {
		out.Items = results[0].Items
	}
	if len(results[0].Total) > 0 {
		out.Total = results[0].Total[0].N
	}
	return out, nil
}

func (m mongoProducts) All(ctx context.Context) ([]models.Product, error) {
	cursor, err := m.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Product](ctx, cursor)
}

func (m mongoProducts) Update(ctx context.Context, p *models.Product) error {
	set := bson.M{
		"name":        p.Name,
		"description": p.Description,
		"price":       p.Price,
		"discount":    p.Discount,
		"stock":       p.Stock,
		"images":      p.Images,
		"category":    p.Category,
		"subCategory": p.SubCategory,
		"tags":        p.Tags,
		"brand":       p.Brand,
		"ratings":     p.Ratings,
		"isFeatured":  p.IsFeatured,
		"updatedAt":   p.UpdatedAt,
	}
	res, err := m.coll.UpdateOne(ctx, bson.M{"_id": p.ID, "isDeleted": notDeleted}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("product")
	}
	return nil
}

func (m mongoProducts) SetCategory(ctx context.Context, id primitive.ObjectID, ref models.CategoryRef, subCategory string, at time.Time) error {
	res, err := m.coll.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"category": ref, "subCategory": subCategory, "updatedAt": at}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("product")
	}
	return nil
}

func (m mongoProducts) SoftDelete(ctx context.Context, id primitive.ObjectID, at time.Time) error {
	res, err := m.coll.UpdateOne(ctx,
		bson.M{"_id": id, "isDeleted": notDeleted},
		bson.M{"$set": bson.M{"isDeleted": true, "deletedAt": at, "updatedAt": at}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return apperr.NotFound("product")
	}
	return nil
}

func (m mongoProducts) DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) error {
	filter := bson.M{
		"_id":       id,
		"isDeleted": notDeleted,
		"stock":     bson.M{"$gte": qty},
	}
	res, err := m.coll.UpdateOne(ctx, filter, bson.M{"$inc": bson.M{"stock": -qty}})
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}

	p, err := m.Get(ctx, id)
	if err != nil {
		return err
	}
	return OutOfStockError{ProductID: id, Name: p.Name, Available: p.Stock, Requested: qty}
}
