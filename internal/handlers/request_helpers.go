package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"storefront/internal/apperr"
	"storefront/internal/models"
	"storefront/internal/store"
)

const requestTimeout = 5 * time.Second

func handlePanic(c *gin.Context, route string) {
	if r := recover(); r != nil {
		log.Printf("[%s] panic recovered: %v", route, r)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
	}
}

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

func respondWithError(c *gin.Context, status int, route string, message string) {
	log.Printf("[%s] returning error %d: %s", route, status, message)
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}

// respondError maps domain errors onto status codes. Anything unrecognised is
// logged and reported as a 500 without details.
func respondError(c *gin.Context, route string, err error) {
	var stock store.OutOfStockError
	var invalid *apperr.ValidationError
	switch {
	case errors.As(err, &stock):
		log.Printf("[%s] returning error 400: %v", route, err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"success":   false,
			"message":   stock.Error(),
			"productId": stock.ProductID.Hex(),
			"available": stock.Available,
			"requested": stock.Requested,
		})
	case errors.As(err, &invalid):
		log.Printf("[%s] returning error 400: %v", route, err)
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": invalid.Message,
			"field":   invalid.Field,
		})
	case errors.Is(err, apperr.ErrNotFound):
		respondWithError(c, http.StatusNotFound, route, err.Error())
	case errors.Is(err, apperr.ErrUnauthorized):
		respondWithError(c, http.StatusUnauthorized, route, err.Error())
	case errors.Is(err, apperr.ErrForbidden):
		respondWithError(c, http.StatusForbidden, route, err.Error())
	case errors.Is(err, apperr.ErrConflict):
		respondWithError(c, http.StatusConflict, route, err.Error())
	default:
		log.Printf("[%s] [ERROR] %v", route, err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Server error"})
	}
}

func bindJSON(c *gin.Context, route string, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondWithError(c, http.StatusBadRequest, route, "invalid body")
		return false
	}
	return true
}

func objectIDParam(c *gin.Context, route, name string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.Param(name))
	if err != nil {
		respondWithError(c, http.StatusBadRequest, route, "invalid "+name)
		return primitive.NilObjectID, false
	}
	return id, true
}

// requireProductID rejects a body that left productId out.
func requireProductID(c *gin.Context, route string, id primitive.ObjectID) bool {
	if id.IsZero() {
		respondError(c, route, apperr.Invalid("productId", "productId is required"))
		return false
	}
	return true
}

// currentUser reads what AuthGuard stored on the context.
func currentUser(c *gin.Context) (primitive.ObjectID, bool) {
	id, _ := c.Get("userId")
	userID, _ := id.(primitive.ObjectID)
	return userID, c.GetString("role") == models.RoleAdmin
}
