package shop

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/apperr"
)

func TestAddToCartMergesLines(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Vase", 1000, 20, 10)

	_, err := f.svc.AddToCart(ctx, f.user, p.ID, 2)
	require.NoError(t, err)
	view, err := f.svc.AddToCart(ctx, f.user, p.ID, 3)
	require.NoError(t, err)

	require.Len(t, view.Items, 1)
	assert.Equal(t, 5, view.Items[0].Quantity)
	assert.Equal(t, 800.0, view.Items[0].Product.FinalPrice)
	assert.Equal(t, 4000.0, view.TotalAmount)
	assert.Equal(t, 5, view.ItemCount)
}

func TestAddToCartValidates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Vase", 10, 0, 3)

	_, err := f.svc.AddToCart(ctx, f.user, p.ID, 0)
	assert.Equal(t, "quantity", validationField(t, err))

	_, err = f.svc.AddToCart(ctx, f.user, primitive.NewObjectID(), 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.svc.AddToCart(ctx, f.user, p.ID, 2)
	require.NoError(t, err)
	_, err = f.svc.AddToCart(ctx, f.user, p.ID, 2)
	assert.Equal(t, "quantity", validationField(t, err))

	view, err := f.svc.GetCart(ctx, f.user)
	require.NoError(t, err)
	assert.Equal(t, 2, view.Items[0].Quantity)
}

func TestUpdateCartItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "Vase", 10, 0, 5)
	b := f.product(t, "Lamp", 20, 0, 5)

	_, err := f.svc.UpdateCartItem(ctx, f.user, a.ID, 1)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.svc.AddToCart(ctx, f.user, a.ID, 1)
	require.NoError(t, err)
	_, err = f.svc.AddToCart(ctx, f.user, b.ID, 1)
	require.NoError(t, err)

	view, err := f.svc.UpdateCartItem(ctx, f.user, a.ID, 4)
	require.NoError(t, err)
	assert.Equal(t, 4, view.Items[0].Quantity)

	_, err = f.svc.UpdateCartItem(ctx, f.user, a.ID, 6)
	assert.Equal(t, "quantity", validationField(t, err))

	view, err = f.svc.UpdateCartItem(ctx, f.user, a.ID, 0)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, b.ID, view.Items[0].ProductID)

	_, err = f.svc.UpdateCartItem(ctx, f.user, a.ID, 2)
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestRemoveAndClearCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "Vase", 10, 0, 5)

	_, err := f.svc.RemoveFromCart(ctx, f.user, a.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = f.svc.AddToCart(ctx, f.user, a.ID, 2)
	require.NoError(t, err)
	view, err := f.svc.RemoveFromCart(ctx, f.user, a.ID)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	_, err = f.svc.AddToCart(ctx, f.user, a.ID, 2)
	require.NoError(t, err)
	view, err = f.svc.ClearCart(ctx, f.user)
	require.NoError(t, err)
	assert.Empty(t, view.Items)

	cart, err := f.store.Carts.Get(ctx, f.user)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	view, err = f.svc.ClearCart(ctx, primitive.NewObjectID())
	require.NoError(t, err)
	assert.Empty(t, view.Items)
}

func TestGetCartPrunesDeletedProductsOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	keep := f.product(t, "Vase", 10, 0, 5)
	gone := f.product(t, "Lamp", 20, 0, 5)

	_, err := f.svc.AddToCart(ctx, f.user, keep.ID, 1)
	require.NoError(t, err)
	_, err = f.svc.AddToCart(ctx, f.user, gone.ID, 1)
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteProduct(ctx, gone.ID))

	view, err := f.svc.GetCart(ctx, f.user)
	require.NoError(t, err)
	require.Len(t, view.Items, 1)
	assert.Equal(t, keep.ID, view.Items[0].ProductID)
	assert.Equal(t, 10.0, view.TotalAmount)

	stored, err := f.store.Carts.Get(ctx, f.user)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, keep.ID, stored.Items[0].ProductID)
}

func TestGetCartWithoutCart(t *testing.T) {
	f := newFixture(t)
	view, err := f.svc.GetCart(context.Background(), f.user)
	require.NoError(t, err)
	assert.Empty(t, view.Items)
	assert.Zero(t, view.TotalAmount)
}
