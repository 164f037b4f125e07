package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/tealeg/xlsx"

	"storefront/internal/shop"
)

/* =======================
   PRODUCTS
======================= */

func CreateProduct(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/admin/products"
		defer handlePanic(c, route)

		var in shop.ProductInput
		if !bindJSON(c, route, &in) {
			return
		}

		adminID, _ := currentUser(c)
		ctx, cancel := requestContext(c)
		defer cancel()

		product, err := svc.CreateProduct(ctx, in, adminID)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "product": product})
	}
}

// UpdateProduct is a patch: fields missing from the body keep their value.
func UpdateProduct(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/products/:id"
		defer handlePanic(c, route)

		id, ok := objectIDParam(c, route, "id")
		if !ok {
			return
		}
		var in shop.ProductInput
		if !bindJSON(c, route, &in) {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		product, err := svc.UpdateProduct(ctx, id, in)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "product": product})
	}
}

func DeleteProduct(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/admin/products/:id"
		defer handlePanic(c, route)

		id, ok := objectIDParam(c, route, "id")
		if !ok {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		if err := svc.DeleteProduct(ctx, id); err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product deleted successfully"})
	}
}

/* =======================
   EXPORT
======================= */

var exportHeaders = []string{
	"ID", "Name", "Brand", "Category", "SubCategory", "Price", "Discount",
	"FinalPrice", "Stock", "Tags", "Featured", "CreatedAt", "UpdatedAt",
}

func ExportProducts(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/products/export"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		products, err := svc.ExportProducts(ctx)
		if err != nil {
			respondError(c, route, err)
			return
		}

		file := xlsx.NewFile()
		sheet, err := file.AddSheet("Products")
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "failed to create sheet")
			return
		}

		header := sheet.AddRow()
		for _, h := range exportHeaders {
			header.AddCell().SetValue(h)
		}
		for _, p := range products {
			row := sheet.AddRow()
			row.AddCell().SetValue(p.ID.Hex())
			row.AddCell().SetValue(p.Name)
			row.AddCell().SetValue(p.Brand)
			row.AddCell().SetValue(p.CategoryName)
			row.AddCell().SetValue(p.SubCategory)
			row.AddCell().SetFloat(p.Price)
			row.AddCell().SetFloat(p.Discount)
			row.AddCell().SetFloat(p.FinalPrice)
			row.AddCell().SetInt(p.Stock)
			row.AddCell().SetValue(strings.Join(p.Tags, ","))
			row.AddCell().SetBool(p.IsFeatured)
			row.AddCell().SetValue(p.CreatedAt.Format("2006-01-02 15:04:05"))
			row.AddCell().SetValue(p.UpdatedAt.Format("2006-01-02 15:04:05"))
		}

		c.Header("Content-Disposition", "attachment; filename=products.xlsx")
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		if err := file.Write(c.Writer); err != nil {
			log.Printf("[%s] [ERROR] write workbook: %v", route, err)
			return
		}
		log.Printf("[%s] exported %d products", route, len(products))
	}
}

/* =======================
   CLOTHING
======================= */

type clothingRequest struct {
	shop.ProductInput
	Gender string `json:"gender"`
}

func ListClothingAdmin(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/clothing"
		defer handlePanic(c, route)

		ctx, cancel := requestContext(c)
		defer cancel()

		products, err := svc.ClothingProducts(ctx, "")
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, productsResponse(products))
	}
}

func CreateClothing(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/admin/clothing"
		defer handlePanic(c, route)

		var req clothingRequest
		if !bindJSON(c, route, &req) {
			return
		}

		adminID, _ := currentUser(c)
		ctx, cancel := requestContext(c)
		defer cancel()

		product, err := svc.CreateClothingProduct(ctx, req.Gender, req.ProductInput, adminID)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Clothing product created successfully", "product": product})
	}
}

func UpdateClothing(svc *shop.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/clothing/:id"
		defer handlePanic(c, route)

		id, ok := objectIDParam(c, route, "id")
		if !ok {
			return
		}
		var req clothingRequest
		if !bindJSON(c, route, &req) {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		product, err := svc.UpdateClothingProduct(ctx, id, req.Gender, req.ProductInput)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Clothing product updated successfully", "product": product})
	}
}
