package shop

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/apperr"
	"storefront/internal/catalog"
	"storefront/internal/events"
	"storefront/internal/models"
	"storefront/internal/store"
)

func trimAddress(a models.ShippingAddress) models.ShippingAddress {
	a.Name = strings.TrimSpace(a.Name)
	a.Phone = strings.TrimSpace(a.Phone)
	a.Address = strings.TrimSpace(a.Address)
	a.City = strings.TrimSpace(a.City)
	a.State = strings.TrimSpace(a.State)
	a.Pincode = strings.TrimSpace(a.Pincode)
	return a
}

// Checkout turns the user's cart into an order. Stock for every line is
// checked before anything is written; the decrements, the order insert and
// emptying the cart commit together.
func (s *Service) Checkout(ctx context.Context, userID primitive.ObjectID, address models.ShippingAddress) (models.Order, error) {
	address = trimAddress(address)
	if err := catalog.ValidateStruct(address); err != nil {
		return models.Order{}, err
	}

	var order models.Order
	var touched []primitive.ObjectID
	err := s.store.Tx.WithinTx(ctx, func(ctx context.Context) error {
		cart, err := s.store.Carts.Get(ctx, userID)
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.Invalid("cart", "cart is empty")
		}
		if err != nil {
			return err
		}

		live, err := s.store.Products.Live(ctx, cartProductIDs(cart.Items))
		if err != nil {
			return err
		}
		items, _ := catalog.PruneCartItems(cart.Items, live)
		if len(items) == 0 {
			return apperr.Invalid("cart", "cart is empty")
		}

		for _, item := range items {
			p := live[item.ProductID]
			if item.Quantity > p.Stock {
				return store.OutOfStockError{ProductID: p.ID, Name: p.Name, Available: p.Stock, Requested: item.Quantity}
			}
		}

		now := s.clock()
		lines := make([]models.OrderItem, 0, len(items))
		touched = touched[:0]
		for _, item := range items {
			if err := s.store.Products.DecrementStock(ctx, item.ProductID, item.Quantity); err != nil {
				return err
			}
			p := live[item.ProductID]
			lines = append(lines, models.OrderItem{
				ProductID: p.ID,
				Name:      p.Name,
				Quantity:  item.Quantity,
				Price:     catalog.FinalPrice(p.Price, p.Discount),
			})
			touched = append(touched, p.ID)
		}

		order = models.Order{
			UserID:          userID,
			Items:           lines,
			TotalAmount:     catalog.OrderTotal(lines),
			ShippingAddress: address,
			Status:          models.OrderPending,
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.store.Orders.Insert(ctx, &order); err != nil {
			return err
		}

		cart.Items = []models.CartItem{}
		cart.UpdatedAt = now
		return s.store.Carts.Save(ctx, &cart)
	})
	if err != nil {
		return models.Order{}, err
	}

	s.cache.Invalidate(ctx, touched...)
	log.Printf("[ORDER] [INFO] order %s placed by %s total=%.2f", order.ID.Hex(), userID.Hex(), order.TotalAmount)

	payload := events.OrderPlacedPayload{
		OrderID:     order.ID.Hex(),
		UserID:      userID.Hex(),
		TotalAmount: order.TotalAmount,
	}
	for _, line := range order.Items {
		payload.Items = append(payload.Items, events.OrderLine{
			ProductID: line.ProductID.Hex(),
			Quantity:  line.Quantity,
			Price:     line.Price,
		})
	}
	s.publish(ctx, events.EventOrderPlaced, order.ID.Hex(), payload)
	return order, nil
}

// withVisibleItems hides lines whose product has been deleted. The stored
// order and its total are left as they are.
func (s *Service) withVisibleItems(ctx context.Context, orders []models.Order) error {
	seen := map[primitive.ObjectID]bool{}
	var ids []primitive.ObjectID
	for _, o := range orders {
		for _, item := range o.Items {
			if !seen[item.ProductID] {
				seen[item.ProductID] = true
				ids = append(ids, item.ProductID)
			}
		}
	}
	live, err := s.store.Products.Live(ctx, ids)
	if err != nil {
		return err
	}
	tax, err := s.Taxonomy(ctx)
	if err != nil {
		return err
	}
	for i := range orders {
		orders[i].Items = catalog.VisibleOrderItems(orders[i].Items, live)
		for j := range orders[i].Items {
			decorate(tax, orders[i].Items[j].Product)
		}
	}
	return nil
}

func (s *Service) ListOrders(ctx context.Context, userID primitive.ObjectID) ([]models.Order, error) {
	orders, err := s.store.Orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.withVisibleItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// GetOrder returns an order to its owner or to an admin.
func (s *Service) GetOrder(ctx context.Context, userID primitive.ObjectID, isAdmin bool, orderID primitive.ObjectID) (models.Order, error) {
	o, err := s.store.Orders.Get(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}
	if o.UserID != userID && !isAdmin {
		return models.Order{}, fmt.Errorf("order belongs to another user: %w", apperr.ErrForbidden)
	}
	orders := []models.Order{o}
	if err := s.withVisibleItems(ctx, orders); err != nil {
		return models.Order{}, err
	}
	return orders[0], nil
}

func (s *Service) ListAllOrders(ctx context.Context, status string) ([]models.Order, error) {
	st := models.OrderStatus(strings.ToLower(strings.TrimSpace(status)))
	if st != "" && !st.Valid() {
		return nil, apperr.Invalid("status", "unknown status %q", status)
	}
	orders, err := s.store.Orders.ListAll(ctx, st)
	if err != nil {
		return nil, err
	}
	if err := s.withVisibleItems(ctx, orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateOrderStatus applies a legal status transition. A concurrent change
// between the read and the write surfaces as apperr.ErrConflict.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID primitive.ObjectID, status string) (models.Order, error) {
	to := models.OrderStatus(strings.ToLower(strings.TrimSpace(status)))
	if !to.Valid() {
		return models.Order{}, apperr.Invalid("status", "status must be one of: pending, confirmed, processing, shipped, delivered, cancelled")
	}
	current, err := s.store.Orders.Get(ctx, orderID)
	if err != nil {
		return models.Order{}, err
	}
	if !models.CanTransition(current.Status, to) {
		return models.Order{}, fmt.Errorf("cannot move order from %s to %s: %w", current.Status, to, apperr.ErrConflict)
	}

	updated, err := s.store.Orders.SetStatus(ctx, orderID, current.Status, to, s.clock())
	if err != nil {
		return models.Order{}, err
	}
	log.Printf("[ORDER] [INFO] order %s %s -> %s", orderID.Hex(), current.Status, to)
	s.publish(ctx, events.EventOrderStatusChanged, orderID.Hex(), events.OrderStatusChangedPayload{
		OrderID: orderID.Hex(),
		UserID:  updated.UserID.Hex(),
		From:    string(current.Status),
		To:      string(to),
	})

	orders := []models.Order{updated}
	if err := s.withVisibleItems(ctx, orders); err != nil {
		return models.Order{}, err
	}
	return orders[0], nil
}
