package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/internal/auth"
)

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

func sessionResponse(sess auth.Session) gin.H {
	return gin.H{
		"success":      true,
		"user":         sess.User,
		"accessToken":  sess.AccessToken,
		"refreshToken": sess.RefreshToken,
		"expiresIn":    sess.ExpiresIn,
	}
}

func Register(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/auth/register"
		defer handlePanic(c, route)

		var in auth.RegisterInput
		if !bindJSON(c, route, &in) {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		sess, err := svc.Register(ctx, in)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusCreated, sessionResponse(sess))
	}
}

func Login(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/auth/login"
		defer handlePanic(c, route)

		var in auth.LoginInput
		if !bindJSON(c, route, &in) {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		sess, err := svc.Login(ctx, in)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, sessionResponse(sess))
	}
}

func Refresh(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/auth/refresh"
		defer handlePanic(c, route)

		var req refreshRequest
		if !bindJSON(c, route, &req) {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		sess, err := svc.Refresh(ctx, req.RefreshToken)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, sessionResponse(sess))
	}
}

func Logout(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/auth/logout"
		defer handlePanic(c, route)

		var req refreshRequest
		if !bindJSON(c, route, &req) {
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		if err := svc.Logout(ctx, req.RefreshToken); err != nil {
			respondError(c, route, err)
			return
		}
		log.Printf("[%s] refresh token revoked", route)
		c.JSON(http.StatusOK, gin.H{"success": true, "message": "Logged out"})
	}
}

func Profile(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/auth/profile"
		defer handlePanic(c, route)

		userID, _ := currentUser(c)
		ctx, cancel := requestContext(c)
		defer cancel()

		user, err := svc.Profile(ctx, userID)
		if err != nil {
			respondError(c, route, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
	}
}
