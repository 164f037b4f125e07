package catalog

import (
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/models"
)

// Live maps product ids to products that still exist and are not deleted.
type Live map[primitive.ObjectID]models.Product

// PruneCartItems drops lines whose product is gone and attaches the live
// product to the rest. changed reports whether anything was dropped.
func PruneCartItems(items []models.CartItem, live Live) (kept []models.CartItem, changed bool) {
	kept = make([]models.CartItem, 0, len(items))
	for _, item := range items {
		p, ok := live[item.ProductID]
		if !ok {
			changed = true
			continue
		}
		item.Product = &p
		kept = append(kept, item)
	}
	return kept, changed
}

// VisibleOrderItems hides lines whose product is gone. The snapshot price and
// quantity are never touched.
func VisibleOrderItems(items []models.OrderItem, live Live) []models.OrderItem {
	visible := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		p, ok := live[item.ProductID]
		if !ok {
			continue
		}
		item.Product = &p
		visible = append(visible, item)
	}
	return visible
}

// PruneProductIDs keeps ids that still resolve, preserving order.
func PruneProductIDs(ids []primitive.ObjectID, live Live) (kept []primitive.ObjectID, changed bool) {
	kept = make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if _, ok := live[id]; !ok {
			changed = true
			continue
		}
		kept = append(kept, id)
	}
	return kept, changed
}
