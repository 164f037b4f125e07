package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/events"
	"storefront/internal/models"
	"storefront/internal/shop"
)

type checkoutRequest struct {
	ShippingAddress models.ShippingAddress `json:"shippingAddress"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func PlaceOrder(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/orders"
		defer handlePanic(c, route)

		var req checkoutRequest
		if !bindJSON(c, route, &req) {
			return
		}

		userID, _ := currentUser(c)
		ctx, cancel := requestContext(c)
		defer cancel()

		order, err := svc.Checkout(ctx, userID, req.ShippingAddress)
		if err != nil {
			respondError(c, route, err)
			return
		}
		log.Printf("[%s] order %s placed total=%.2f", route, order.ID.Hex(), order.TotalAmount)
		c.JSON(http.StatusCreated, gin.H{"success": true, "order": order})
	}
}

func ListOrders(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders"
		defer handlePanic(c, route)

		userID, _ := currentUser(c)
		ctx, cancel := requestContext(c)
		defer cancel()

		orders, err := svc.ListOrders(ctx, userID)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
	}
}

func GetOrder(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders/:id"
		defer handlePanic(c, route)

		id, ok := objectIDParam(c, route, "id")
		if !ok {
			return
		}

		userID, isAdmin := currentUser(c)
		ctx, cancel := requestContext(c)
		defer cancel()

		order, err := svc.GetOrder(ctx, userID, isAdmin, id)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
	}
}

// ListAllOrders accepts an optional ?status= filter.
func ListAllOrders(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders/all"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		orders, err := svc.ListAllOrders(ctx, c.Query("status"))
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
	}
}

func UpdateOrderStatus(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/orders/:id/status"
		defer handlePanic(c, route)

		id, ok := objectIDParam(c, route, "id")
		if !ok {
			return
		}
		var req statusRequest
		if !bindJSON(c, route, &req) {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		order, err := svc.UpdateOrderStatus(ctx, id, req.Status)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
	}
}

// OrderStream upgrades to a websocket that receives order events until the
// client disconnects.
func OrderStream(hub *events.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/orders/stream"
		defer handlePanic(c, route)

		log.Printf("[%s] client connected (%d open)", route, hub.Clients()+1)
		if err := hub.ServeWS(c.Writer, c.Request); err != nil {
			log.Printf("[%s] [ERROR] upgrade failed: %v", route, err)
		}
	}
}
