package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/shop"
)

// ListAllCategories includes inactive categories.
func ListAllCategories(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/categories"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		categories, err := svc.ListCategories(ctx)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "categories": categories})
	}
}

func CreateCategory(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/admin/categories"
		defer handlePanic(c, route)

		var in shop.CategoryInput
		if !bindJSON(c, route, &in) {
			return
		}

		adminID, _ := currentUser(c)
		ctx, cancel := requestContext(c)
		defer cancel()

		category, err := svc.CreateCategory(ctx, in, adminID)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "category": category})
	}
}

func UpdateCategory(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/categories/:id"
		defer handlePanic(c, route)

		id, ok := objectIDParam(c, route, "id")
		if !ok {
			return
		}
		var in shop.CategoryInput
		if !bindJSON(c, route, &in) {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		category, err := svc.UpdateCategory(ctx, id, in)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "category": category})
	}
}

// DeleteCategory deactivates; products keep their reference.
func DeleteCategory(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/admin/categories/:id"
		defer handlePanic(c, route)

		id, ok := objectIDParam(c, route, "id")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		if err := svc.DeleteCategory(ctx, id); err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Category deactivated"})
	}
}
