package middleware

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"storefront/internal/models"
)

// Authenticator resolves a bearer token to the user it was issued for.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.User, error)
}

// AuthGuard requires a valid bearer token whose user still exists. It sets
// "userId" (primitive.ObjectID) and "role" on the context. Browsers cannot set
// headers on websocket upgrades, so those may pass ?token= instead.
func AuthGuard(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := strings.TrimSpace(c.GetHeader("Authorization"))
		if raw == "" && c.IsWebsocket() {
			if token := strings.TrimSpace(c.Query("token")); token != "" {
				raw = "Bearer " + token
			}
		}
		if raw == "" {
			log.Println("[AUTH] [ERROR] missing token")
			abort(c, http.StatusUnauthorized, "No token, authorization denied")
			return
		}

		parts := strings.Fields(raw)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			log.Println("[AUTH] [ERROR] invalid token format")
			abort(c, http.StatusUnauthorized, "Token is not valid")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		user, err := auth.Authenticate(ctx, parts[1])
		if err != nil {
			log.Println("[AUTH] [ERROR] token validation failed:", err)
			abort(c, http.StatusUnauthorized, "Token is not valid")
			return
		}

		c.Set("userId", user.ID)
		c.Set("role", user.Role)
		c.Next()
	}
}

// AdminOnly must run after AuthGuard.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != models.RoleAdmin {
			abort(c, http.StatusForbidden, "Admin access required")
			return
		}
		c.Next()
	}
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
}
