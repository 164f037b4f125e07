package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/catalog"
	"storefront/internal/models"
	"storefront/internal/shop"
)

func productListResponse(list shop.ProductList) gin.H {
	return gin.H{
		"success":  true,
		"products": list.Products,
		"pagination": gin.H{
			"current": list.Page,
			"pages":   list.Pages,
			"total":   list.Total,
			"limit":   list.Limit,
		},
	}
}

/*
GET /api/products
category, subCategory, search, minPrice, maxPrice, tags, brand, featured,
sortBy, sortOrder, page, limit
*/
func ListProducts(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products"
		defer handlePanic(c, route)

		q, err := catalog.ParseProductQuery(c.Request.URL.Query())
		if err != nil {
			respondError(c, route, err)
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		list, err := svc.ListProducts(ctx, q)
		if err != nil {
			respondError(c, route, err)
			return
		}

		log.Printf("[%s] returning %d of %d products", route, len(list.Products), list.Total)
		c.JSON(http.StatusOK, productListResponse(list))
	}
}

func GetProduct(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products/:id"
		defer handlePanic(c, route)

		id, ok := objectIDParam(c, route, "id")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		product, err := svc.GetProduct(ctx, id)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "product": product})
	}
}

func ListCategories(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products/categories"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		categories, err := svc.Categories(ctx)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "categories": categories})
	}
}

func ListSubCategories(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/products/categories/:category/subcategories"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		subs, err := svc.SubCategories(ctx, c.Param("category"))
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "subCategories": subs})
	}
}

func productsResponse(products []models.Product) gin.H {
	return gin.H{"success": true, "products": products, "count": len(products)}
}

// ListClothing serves both /api/clothing and /api/clothing/:subCategory.
func ListClothing(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/clothing"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		products, err := svc.ClothingProducts(ctx, c.Param("subCategory"))
		if err != nil {
			respondError(c, route, err)
			return
		}
		log.Printf("[%s] returning %d products sub=%q", route, len(products), c.Param("subCategory"))
		c.JSON(http.StatusOK, productsResponse(products))
	}
}
