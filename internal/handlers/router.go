package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"storefront/internal/auth"
	"storefront/internal/events"
	"storefront/internal/middleware"
	"storefront/internal/shop"
)

type Deps struct {
	Shop        *shop.Service
	Auth        *auth.Service
	Hub         *events.Hub
	Images      ImageStore
	CORSOrigins []string
	// Ping reports storage health. Nil means always healthy.
	Ping func(ctx context.Context) error
}

func corsConfig(origins []string) cors.Config {
	config := cors.DefaultConfig()
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	config.ExposeHeaders = []string{"Content-Disposition"}
	config.MaxAge = 12 * time.Hour

	if len(origins) == 0 {
		config.AllowAllOrigins = true
		return config
	}
	for _, o := range origins {
		if o == "*" {
			config.AllowAllOrigins = true
			return config
		}
	}
	config.AllowOrigins = origins
	config.AllowCredentials = true
	return config
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(cors.New(corsConfig(d.CORSOrigins)))
	r.Static("/uploads", d.Images.Root)

	requireUser := middleware.AuthGuard(d.Auth)
	requireAdmin := middleware.AdminOnly()

	api := r.Group("/api")
	api.GET("/health", Health(d.Ping))

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", Register(d.Auth))
		authGroup.POST("/login", Login(d.Auth))
		authGroup.POST("/refresh", Refresh(d.Auth))
		authGroup.POST("/logout", Logout(d.Auth))
		authGroup.GET("/profile", requireUser, Profile(d.Auth))
	}

	products := api.Group("/products")
	{
		products.GET("", ListProducts(d.Shop))
		products.GET("/categories", ListCategories(d.Shop))
		products.GET("/categories/:category/subcategories", ListSubCategories(d.Shop))
		products.GET("/:id", GetProduct(d.Shop))
	}

	api.GET("/clothing", ListClothing(d.Shop))
	api.GET("/clothing/:subCategory", ListClothing(d.Shop))

	cart := api.Group("/cart", requireUser)
	{
		cart.GET("", GetCart(d.Shop))
		cart.POST("/add", AddToCart(d.Shop))
		cart.PUT("/update", UpdateCartItem(d.Shop))
		cart.DELETE("/remove/:productId", RemoveFromCart(d.Shop))
		cart.DELETE("/clear", ClearCart(d.Shop))
	}

	orders := api.Group("/orders", requireUser)
	{
		orders.POST("", PlaceOrder(d.Shop))
		orders.GET("", ListOrders(d.Shop))
		orders.GET("/all", requireAdmin, ListAllOrders(d.Shop))
		orders.GET("/:id", GetOrder(d.Shop))
		orders.PUT("/:id/status", requireAdmin, UpdateOrderStatus(d.Shop))
	}

	wishlist := api.Group("/wishlist", requireUser)
	{
		wishlist.GET("", GetWishlist(d.Shop))
		wishlist.POST("/add", AddToWishlist(d.Shop))
		wishlist.DELETE("/remove/:productId", RemoveFromWishlist(d.Shop))
	}

	admin := api.Group("/admin", requireUser, requireAdmin)
	{
		admin.GET("/products", ListProducts(d.Shop))
		admin.POST("/products", CreateProduct(d.Shop))
		admin.GET("/products/export", ExportProducts(d.Shop))
		admin.PUT("/products/:id", UpdateProduct(d.Shop))
		admin.DELETE("/products/:id", DeleteProduct(d.Shop))

		admin.POST("/uploads", UploadProductImage(d.Images))
		admin.DELETE("/uploads", DeleteProductImage(d.Images))

		admin.GET("/categories", ListAllCategories(d.Shop))
		admin.POST("/categories", CreateCategory(d.Shop))
		admin.PUT("/categories/:id", UpdateCategory(d.Shop))
		admin.DELETE("/categories/:id", DeleteCategory(d.Shop))

		admin.GET("/orders", ListAllOrders(d.Shop))
		admin.GET("/orders/stream", OrderStream(d.Hub))
		admin.PUT("/orders/:id", UpdateOrderStatus(d.Shop))

		admin.GET("/clothing", ListClothingAdmin(d.Shop))
		admin.POST("/clothing", CreateClothing(d.Shop))
		admin.PUT("/clothing/:id", UpdateClothing(d.Shop))
	}

	return r
}

func Health(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/health"
		if ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "status": "ok"})
	}
}
