package shop

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/apperr"
	"storefront/internal/events"
	"storefront/internal/models"
	"storefront/internal/store"
)

func address() models.ShippingAddress {
	return models.ShippingAddress{
		Name:    "Ada",
		Phone:   "555-0100",
		Address: "1 Main St",
		City:    "Springfield",
		State:   "IL",
		Pincode: "62701",
	}
}

func TestCheckoutPlacesOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "Vase", 1000, 20, 5)
	b := f.product(t, "Lamp", 99.99, 0, 5)

	_, err := f.svc.AddToCart(ctx, f.user, a.ID, 2)
	require.NoError(t, err)
	_, err = f.svc.AddToCart(ctx, f.user, b.ID, 1)
	require.NoError(t, err)

	order, err := f.svc.Checkout(ctx, f.user, address())
	require.NoError(t, err)
	assert.Equal(t, models.OrderPending, order.Status)
	require.Len(t, order.Items, 2)
	assert.Equal(t, 800.0, order.Items[0].Price)
	assert.Equal(t, 1699.99, order.TotalAmount)

	stock, err := f.store.Products.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, stock.Stock)

	cart, err := f.store.Carts.Get(ctx, f.user)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)

	require.Equal(t, []string{events.EventOrderPlaced}, f.pub.types())
	payload, err := events.DecodePayload[events.OrderPlacedPayload](f.pub.events[0])
	require.NoError(t, err)
	assert.Equal(t, order.ID.Hex(), payload.OrderID)
	assert.Len(t, payload.Items, 2)
}

func TestCheckoutRequiresAddress(t *testing.T) {
	f := newFixture(t)
	addr := address()
	addr.City = "   "
	_, err := f.svc.Checkout(context.Background(), f.user, addr)
	assert.Equal(t, "city", validationField(t, err))
}

func TestCheckoutRejectsEmptyCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Checkout(ctx, f.user, address())
	assert.Equal(t, "cart", validationField(t, err))

	p := f.product(t, "Vase", 10, 0, 5)
	_, err = f.svc.AddToCart(ctx, f.user, p.ID, 1)
	require.NoError(t, err)
	require.NoError(t, f.svc.DeleteProduct(ctx, p.ID))

	_, err = f.svc.Checkout(ctx, f.user, address())
	assert.Equal(t, "cart", validationField(t, err))
	assert.Empty(t, f.pub.types())
}

func TestCheckoutChecksStockBeforeWriting(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "Vase", 10, 0, 5)
	b := f.product(t, "Lamp", 20, 0, 5)

	_, err := f.svc.AddToCart(ctx, f.user, a.ID, 2)
	require.NoError(t, err)
	_, err = f.svc.AddToCart(ctx, f.user, b.ID, 4)
	require.NoError(t, err)
	_, err = f.svc.UpdateProduct(ctx, b.ID, ProductInput{Stock: intPtr(1)})
	require.NoError(t, err)

	_, err = f.svc.Checkout(ctx, f.user, address())
	var stockErr store.OutOfStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, b.ID, stockErr.ProductID)
	assert.Equal(t, 1, stockErr.Available)

	got, err := f.store.Products.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.Stock)
	orders, err := f.store.Orders.ListAll(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, orders)
	cart, err := f.store.Carts.Get(ctx, f.user)
	require.NoError(t, err)
	assert.Len(t, cart.Items, 2)
}

func TestOrderReadsHideDeletedProducts(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "Vase", 10, 0, 5)
	b := f.product(t, "Lamp", 20, 0, 5)
	_, err := f.svc.AddToCart(ctx, f.user, a.ID, 1)
	require.NoError(t, err)
	_, err = f.svc.AddToCart(ctx, f.user, b.ID, 2)
	require.NoError(t, err)
	order, err := f.svc.Checkout(ctx, f.user, address())
	require.NoError(t, err)
	require.Equal(t, 50.0, order.TotalAmount)

	require.NoError(t, f.svc.DeleteProduct(ctx, b.ID))

	got, err := f.svc.GetOrder(ctx, f.user, false, order.ID)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, a.ID, got.Items[0].ProductID)
	assert.Equal(t, 50.0, got.TotalAmount)

	stored, err := f.store.Orders.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Items, 2)

	list, err := f.svc.ListOrders(ctx, f.user)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Len(t, list[0].Items, 1)
}

func TestGetOrderOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Vase", 10, 0, 5)
	_, err := f.svc.AddToCart(ctx, f.user, p.ID, 1)
	require.NoError(t, err)
	order, err := f.svc.Checkout(ctx, f.user, address())
	require.NoError(t, err)

	stranger := primitive.NewObjectID()
	_, err = f.svc.GetOrder(ctx, stranger, false, order.ID)
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	_, err = f.svc.GetOrder(ctx, stranger, true, order.ID)
	assert.NoError(t, err)

	_, err = f.svc.GetOrder(ctx, f.user, false, primitive.NewObjectID())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateOrderStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Vase", 10, 0, 5)
	_, err := f.svc.AddToCart(ctx, f.user, p.ID, 1)
	require.NoError(t, err)
	order, err := f.svc.Checkout(ctx, f.user, address())
	require.NoError(t, err)

	_, err = f.svc.UpdateOrderStatus(ctx, order.ID, "lost")
	assert.Equal(t, "status", validationField(t, err))

	_, err = f.svc.UpdateOrderStatus(ctx, order.ID, "delivered")
	assert.ErrorIs(t, err, apperr.ErrConflict)

	updated, err := f.svc.UpdateOrderStatus(ctx, order.ID, "Confirmed")
	require.NoError(t, err)
	assert.Equal(t, models.OrderConfirmed, updated.Status)

	for _, next := range []string{"shipped", "delivered"} {
		_, err = f.svc.UpdateOrderStatus(ctx, order.ID, next)
		require.NoError(t, err)
	}
	_, err = f.svc.UpdateOrderStatus(ctx, order.ID, "cancelled")
	assert.ErrorIs(t, err, apperr.ErrConflict)

	assert.Equal(t, []string{
		events.EventOrderPlaced,
		events.EventOrderStatusChanged,
		events.EventOrderStatusChanged,
		events.EventOrderStatusChanged,
	}, f.pub.types())

	all, err := f.svc.ListAllOrders(ctx, "delivered")
	require.NoError(t, err)
	assert.Len(t, all, 1)
	_, err = f.svc.ListAllOrders(ctx, "bogus")
	assert.Equal(t, "status", validationField(t, err))
}
