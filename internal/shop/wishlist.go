package shop

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/apperr"
	"storefront/internal/catalog"
	"storefront/internal/models"
)

// GetWishlist returns the wishlist with its live products. Ids of deleted
// products are removed and written back.
func (s *Service) GetWishlist(ctx context.Context, userID primitive.ObjectID) (models.Wishlist, error) {
	w, err := s.store.Wishlists.Get(ctx, userID)
	if errors.Is(err, apperr.ErrNotFound) {
		return models.Wishlist{UserID: userID, ProductIDs: []primitive.ObjectID{}, Products: []models.Product{}}, nil
	}
	if err != nil {
		return models.Wishlist{}, err
	}

	live, err := s.store.Products.Live(ctx, w.ProductIDs)
	if err != nil {
		return models.Wishlist{}, err
	}
	kept, changed := catalog.PruneProductIDs(w.ProductIDs, live)
	if changed {
		if err := s.store.Wishlists.SetProducts(ctx, userID, kept); err != nil {
			return models.Wishlist{}, err
		}
	}

	tax, err := s.Taxonomy(ctx)
	if err != nil {
		return models.Wishlist{}, err
	}
	w.ProductIDs = kept
	w.Products = make([]models.Product, 0, len(kept))
	for _, id := range kept {
		p := live[id]
		decorate(tax, &p)
		w.Products = append(w.Products, p)
	}
	return w, nil
}

func (s *Service) AddToWishlist(ctx context.Context, userID, productID primitive.ObjectID) (models.Wishlist, error) {
	if _, err := s.store.Products.Get(ctx, productID); err != nil {
		return models.Wishlist{}, err
	}
	if err := s.store.Wishlists.Add(ctx, userID, productID); err != nil {
		return models.Wishlist{}, err
	}
	return s.GetWishlist(ctx, userID)
}

func (s *Service) RemoveFromWishlist(ctx context.Context, userID, productID primitive.ObjectID) (models.Wishlist, error) {
	if err := s.store.Wishlists.Remove(ctx, userID, productID); err != nil {
		return models.Wishlist{}, err
	}
	return s.GetWishlist(ctx, userID)
}
