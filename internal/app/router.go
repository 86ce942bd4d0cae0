// internal/app/router.go
package app

import (
	authHandler "yadawity-service/internal/handlers/auth"
	"yadawity-service/internal/middleware"

	"github.com/gin-gonic/gin"
)

type Handlers struct {
	AuthHandler    *authHandler.AuthHandler
	AuthMiddleware *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ==================== Public Auth Routes ====================
	authPublic := api.Group("/auth")
	{
		authPublic.POST("/login", h.AuthHandler.Login)
		authPublic.POST("/forgot-password", h.AuthHandler.ForgotPassword)
		authPublic.POST("/reset-password", h.AuthHandler.ResetPassword)
	}

	// ==================== Authenticated Auth Routes ====================
	authProtected := api.Group("/auth")
	authProtected.Use(h.AuthMiddleware.Auth())
	{
		authProtected.POST("/logout", h.AuthHandler.Logout)
		authProtected.POST("/logout-others", h.AuthHandler.LogoutOthers)
		authProtected.POST("/logout-all", h.AuthHandler.LogoutAll)
		authProtected.GET("/me", h.AuthHandler.Me)
		authProtected.GET("/sessions", h.AuthHandler.Sessions)
		authProtected.POST("/change-password", h.AuthHandler.ChangePassword)
		authProtected.POST("/email-change/request", h.AuthHandler.RequestEmailChange)
		authProtected.POST("/email-change/confirm", h.AuthHandler.ConfirmEmailChange)
	}
}
