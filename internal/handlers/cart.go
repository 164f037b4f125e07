package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/shop"
)

type cartItemRequest struct {
	ProductID primitive.ObjectID `json:"productId"`
	Quantity  *int               `json:"quantity"`
}

func GetCart(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/cart"
		defer handlePanic(c, route)

		userID, _ := currentUser(c)
		ctx, cancel := requestContext(c)
		defer cancel()

		cart, err := svc.GetCart(ctx, userID)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "cart": cart})
	}
}

// AddToCart defaults quantity to 1.
func AddToCart(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/cart/add"
		defer handlePanic(c, route)

		var req cartItemRequest
		if !bindJSON(c, route, &req) || !requireProductID(c, route, req.ProductID) {
			return
		}
		quantity := 1
		if req.Quantity != nil {
			quantity = *req.Quantity
		}

		userID, _ := currentUser(c)
		ctx, cancel := requestContext(c)
		defer cancel()

		cart, err := svc.AddToCart(ctx, userID, req.ProductID, quantity)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "cart": cart})
	}
}

func UpdateCartItem(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/cart/update"
		defer handlePanic(c, route)

		var req cartItemRequest
		if !bindJSON(c, route, &req) || !requireProductID(c, route, req.ProductID) {
			return
		}
		if req.Quantity == nil {
			respondWithError(c, http.StatusBadRequest, route, "quantity is required")
			return
		}

		userID, _ := currentUser(c)
		ctx, cancel := requestContext(c)
		defer cancel()

		cart, err := svc.UpdateCartItem(ctx, userID, req.ProductID, *req.Quantity)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "cart": cart})
	}
}

func RemoveFromCart(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/cart/remove/:productId"
		defer handlePanic(c, route)

		productID, ok := objectIDParam(c, route, "productId")
		if !ok {
			return
		}

		userID, _ := currentUser(c)
		ctx, cancel := requestContext(c)
		defer cancel()

		cart, err := svc.RemoveFromCart(ctx, userID, productID)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "cart": cart})
	}
}

func ClearCart(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/cart/clear"
		defer handlePanic(c, route)

		userID, _ := currentUser(c)
		ctx, cancel := requestContext(c)
		defer cancel()

		cart, err := svc.ClearCart(ctx, userID)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Cart cleared successfully", "cart": cart})
	}
}
