// Package store persists the storefront documents. The Mongo implementation
// backs production; the memory implementation backs local development and
// tests with the same semantics.
package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

// OutOfStockError reports a checkout line that asks for more than is left.
type OutOfStockError struct {
	ProductID primitive.ObjectID
	Name      string
	Available int
	Requested int
}

func (e OutOfStockError) Error() string {
	label := e.Name
	if label == "" {
		label = e.ProductID.Hex()
	}
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", label, e.Requested, e.Available)
}

// ProductFilter selects a page of live products. SortField is a stored field
// name or "finalPrice".
type ProductFilter struct {
	CategoryID  *primitive.ObjectID
	SubCategory string
	Search      string
	MinPrice    *float64
	MaxPrice    *float64
	Tags        []string
	Brand       string
	Featured    *bool
	SortField   string
	SortDesc    bool
	Skip        int64
	Limit       int64
}

type ProductPage struct {
	Items []models.Product
	Total int64
}

type Products interface {
	Insert(ctx context.Context, p *models.Product) error
	// Get returns a live product; deleted products are not found.
	Get(ctx context.Context, id primitive.ObjectID) (models.Product, error)
	// Live returns the subset of ids that still resolve to live products.
	Live(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]models.Product, error)
	List(ctx context.Context, f ProductFilter) (ProductPage, error)
	// All returns every stored product, deleted ones included.
	All(ctx context.Context) ([]models.Product, error)
	Update(ctx context.Context, p *models.Product) error
	SetCategory(ctx context.Context, id primitive.ObjectID, ref models.CategoryRef, subCategory string, at time.Time) error
	SoftDelete(ctx context.Context, id primitive.ObjectID, at time.Time) error
	// DecrementStock takes qty units only if at least qty are left.
	DecrementStock(ctx context.Context, id primitive.ObjectID, qty int) error
}

type Categories interface {
	Insert(ctx context.Context, c *models.Category) error
	Get(ctx context.Context, id primitive.ObjectID) (models.Category, error)
	List(ctx context.Context) ([]models.Category, error)
	Update(ctx context.Context, c models.Category) error
}

type Carts interface {
	Get(ctx context.Context, userID primitive.ObjectID) (models.Cart, error)
	// Save upserts the cart owned by cart.UserID.
	Save(ctx context.Context, cart *models.Cart) error
}

type Orders interface {
	Insert(ctx context.Context, o *models.Order) error
	Get(ctx context.Context, id primitive.ObjectID) (models.Order, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error)
	// ListAll returns every order, newest first. An empty status matches all.
	ListAll(ctx context.Context, status models.OrderStatus) ([]models.Order, error)
	// SetStatus moves an order from one status to another and fails with
	// apperr.ErrConflict when the stored status is no longer from.
	SetStatus(ctx context.Context, id primitive.ObjectID, from, to models.OrderStatus, at time.Time) (models.Order, error)
}

type Wishlists interface {
	Get(ctx context.Context, userID primitive.ObjectID) (models.Wishlist, error)
	Add(ctx context.Context, userID, productID primitive.ObjectID) error
	Remove(ctx context.Context, userID, productID primitive.ObjectID) error
	SetProducts(ctx context.Context, userID primitive.ObjectID, ids []primitive.ObjectID) error
}

type Users interface {
	Insert(ctx context.Context, u *models.User) error
	Get(ctx context.Context, id primitive.ObjectID) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
}

type RefreshTokens interface {
	Insert(ctx context.Context, t *models.RefreshToken) error
	GetByHash(ctx context.Context, hash string) (models.RefreshToken, error)
	// Revoke marks a usable token revoked. A token that is already revoked
	// yields apperr.ErrConflict.
	Revoke(ctx context.Context, id primitive.ObjectID, replacedBy *primitive.ObjectID) error
}

// TxRunner runs fn so that its writes commit or roll back together. fn must
// use the context it is given.
type TxRunner interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Store struct {
	Products      Products
	Categories    Categories
	Carts         Carts
	Orders        Orders
	Wishlists     Wishlists
	Users         Users
	RefreshTokens RefreshTokens
	Tx            TxRunner
}
