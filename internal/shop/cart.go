package shop

import (
	"context"
	"errors"
	"log"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/apperr"
	"storefront/internal/catalog"
	"storefront/internal/models"
)

// CartView is a cart with live products attached and its running total at
// current final prices.
type CartView struct {
	models.Cart
	TotalAmount float64 `json:"totalAmount"`
	ItemCount   int     `json:"itemCount"`
}

func cartProductIDs(items []models.CartItem) []primitive.ObjectID {
	ids := make([]primitive.ObjectID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

func (s *Service) loadCart(ctx context.Context, userID primitive.ObjectID) (models.Cart, bool, error) {
	cart, err := s.store.Carts.Get(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return models.Cart{UserID: userID, Items: []models.CartItem{}}, false, nil
	}
	if err != nil {
		return models.Cart{}, false, err
	}
	return cart, true, nil
}

// GetCart returns the cart with dangling lines removed. Removed lines are
// written back so the next read finds nothing to prune.
func (s *Service) GetCart(ctx context.Context, userID primitive.ObjectID) (CartView, error) {
	cart, exists, err := s.loadCart(ctx, userID)
	if err != nil {
		return CartView{}, err
	}

	live, err := s.store.Products.Live(ctx, cartProductIDs(cart.Items))
	if err != nil {
		return CartView{}, err
	}
	kept, changed := catalog.PruneCartItems(cart.Items, live)
	if changed && exists {
		log.Printf("[CART] [INFO] pruning %d dangling item(s) for user %s", len(cart.Items)-len(kept), userID.Hex())
		cart.Items = kept
		cart.UpdatedAt = s.clock()
		if err := s.store.Carts.Save(ctx, &cart); err != nil {
			return CartView{}, err
		}
	}
	cart.Items = kept

	tax, err := s.Taxonomy(ctx)
	if err != nil {
		return CartView{}, err
	}
	return buildCartView(tax, cart), nil
}

func buildCartView(tax *catalog.Taxonomy, cart models.Cart) CartView {
	total := decimal.Zero
	count := 0
	for i := range cart.Items {
		item := &cart.Items[i]
		if item.Product != nil {
			decorate(tax, item.Product)
			total = total.Add(decimal.NewFromFloat(item.Product.FinalPrice).Mul(decimal.NewFromInt(int64(item.Quantity))))
		}
		count += item.Quantity
	}
	amount, _ := total.Float64()
	return CartView{Cart: cart, TotalAmount: amount, ItemCount: count}
}

func findLine(items []models.CartItem, productID primitive.ObjectID) int {
	for i, item := range items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func stockError(p models.Product, requested int) error {
	return apperr.Invalid("quantity", "only %d of %s left in stock, requested %d", p.Stock, p.Name, requested)
}

// AddToCart adds quantity units, creating the cart on first use. Adding a
// product already in the cart increases its line.
func (s *Service) AddToCart(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (CartView, error) {
	if quantity <= 0 {
		return CartView{}, apperr.Invalid("quantity", "quantity must be at least 1")
	}
	p, err := s.store.Products.Get(ctx, productID)
	if err != nil {
		return CartView{}, err
	}
	cart, _, err := s.loadCart(ctx, userID)
	if err != nil {
		return CartView{}, err
	}

	i := findLine(cart.Items, productID)
	combined := quantity
	if i >= 0 {
		combined += cart.Items[i].Quantity
	}
	if combined > p.Stock {
		return CartView{}, stockError(p, combined)
	}
	if i >= 0 {
		cart.Items[i].Quantity = combined
	} else {
		cart.Items = append(cart.Items, models.CartItem{ProductID: productID, Quantity: quantity})
	}

	cart.UpdatedAt = s.clock()
	if err := s.store.Carts.Save(ctx, &cart); err != nil {
		return CartView{}, err
	}
	return s.GetCart(ctx, userID)
}

// UpdateCartItem sets a line's quantity; zero or less removes the line.
func (s *Service) UpdateCartItem(ctx context.Context, userID, productID primitive.ObjectID, quantity int) (CartView, error) {
	cart, err := s.store.Carts.Get(ctx, userID)
	if err != nil {
		return CartView{}, err
	}
	i := findLine(cart.Items, productID)
	if i < 0 {
		return CartView{}, apperr.NotFound("cart item")
	}

	if quantity <= 0 {
		cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
	} else {
		p, err := s.store.Products.Get(ctx, productID)
		if err != nil {
			return CartView{}, err
		}
		if quantity > p.Stock {
			return CartView{}, stockError(p, quantity)
		}
		cart.Items[i].Quantity = quantity
	}

	cart.UpdatedAt = s.clock()
	if err := s.store.Carts.Save(ctx, &cart); err != nil {
		return CartView{}, err
	}
	return s.GetCart(ctx, userID)
}

func (s *Service) RemoveFromCart(ctx context.Context, userID, productID primitive.ObjectID) (CartView, error) {
	cart, err := s.store.Carts.Get(ctx, userID)
	if err != nil {
		return CartView{}, err
	}
	if i := findLine(cart.Items, productID); i >= 0 {
		cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
		cart.UpdatedAt = s.clock()
		if err := s.store.Carts.Save(ctx, &cart); err != nil {
			return CartView{}, err
		}
	}
	return s.GetCart(ctx, userID)
}

// ClearCart empties the cart but keeps the document.
func (s *Service) ClearCart(ctx context.Context, userID primitive.ObjectID) (CartView, error) {
	cart, exists, err := s.loadCart(ctx, userID)
	if err != nil {
		return CartView{}, err
	}
	if exists && len(cart.Items) > 0 {
		cart.Items = []models.CartItem{}
		cart.UpdatedAt = s.clock()
		if err := s.store.Carts.Save(ctx, &cart); err != nil {
			return CartView{}, err
		}
	}
	return CartView{Cart: models.Cart{ID: cart.ID, UserID: userID, Items: []models.CartItem{}, UpdatedAt: cart.UpdatedAt}}, nil
}
