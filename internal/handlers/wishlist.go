package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/shop"
)

type wishlistRequest struct {
	ProductID primitive.ObjectID `json:"productId"`
}

func GetWishlist(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/wishlist"
		defer handlePanic(c, route)

		userID, _ := currentUser(c)
		ctx, cancel := requestContext(c)
		defer cancel()

		wishlist, err := svc.GetWishlist(ctx, userID)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "wishlist": wishlist})
	}
}

func AddToWishlist(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/wishlist/add"
		defer handlePanic(c, route)

		var req wishlistRequest
		if !bindJSON(c, route, &req) || !requireProductID(c, route, req.ProductID) {
			return
		}

		userID, _ := currentUser(c)
		ctx, cancel := requestContext(c)
		defer cancel()

		wishlist, err := svc.AddToWishlist(ctx, userID, req.ProductID)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "wishlist": wishlist})
	}
}

func RemoveFromWishlist(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/wishlist/remove/:productId"
		defer handlePanic(c, route)

		productID, ok := objectIDParam(c, route, "productId")
		if !ok {
			return
		}

		userID, _ := currentUser(c)
		ctx, cancel := requestContext(c)
		defer cancel()

		wishlist, err := svc.RemoveFromWishlist(ctx, userID, productID)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "wishlist": wishlist})
	}
}
