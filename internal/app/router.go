// internal/app/router.go
package app

import (
	authHandler "github.com/basharmd94/orderapp-sub000/internal/handlers/auth"
	orderHandler "github.com/basharmd94/orderapp-sub000/internal/handlers/order"
	rbacHandler "github.com/basharmd94/orderapp-sub000/internal/handlers/rbac"
	userHandler "github.com/basharmd94/orderapp-sub000/internal/handlers/user"
	wsHandler "github.com/basharmd94/orderapp-sub000/internal/handlers/websocket"
	"github.com/basharmd94/orderapp-sub000/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	AuthHandler    *authHandler.AuthHandler
	UserHandler    *userHandler.UserHandler
	OrderHandler   *orderHandler.OrderHandler
	RBACHandler    *rbacHandler.RBACHandler
	WSHandler      *wsHandler.WebSocketHandler
	AuthMiddleware *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== WebSocket ====================
	r.GET("/ws", h.AuthMiddleware.Auth(), h.WSHandler.HandleConnection)

	// ==================== Public User Routes ====================
	usersPublic := api.Group("/users")
	{
		usersPublic.POST("/login", h.AuthHandler.Login)
		usersPublic.POST("/register", h.UserHandler.Register)
	}

	// ==================== Authenticated User Routes ====================
	users := api.Group("/users")
	users.Use(h.AuthMiddleware.Auth())
	{
		users.POST("/logout", h.AuthHandler.Logout)
		users.POST("/logout-all", h.AuthHandler.LogoutAll)
		users.GET("/sessions", h.AuthHandler.Sessions)
	}

	// ==================== Admin User Management ====================
	usersAdmin := api.Group("/users")
	usersAdmin.Use(h.AuthMiddleware.AdminOnly()...)
	{
		usersAdmin.PUT("/:username/status", h.UserHandler.UpdateStatus)
		usersAdmin.DELETE("/:username", h.UserHandler.Delete)
	}

	// ==================== Orders ====================
	orders := api.Group("/orders")
	orders.Use(h.AuthMiddleware.Auth(), h.AuthMiddleware.RequirePermission("order.create"))
	{
		orders.POST("/bulk/:zid", h.OrderHandler.SubmitBulk)
		orders.POST("/:zid", h.OrderHandler.SubmitOne)
		orders.GET("/:zid", h.OrderHandler.Recent)
		orders.GET("/:zid/invoice/:invoiceno", h.OrderHandler.Invoice)
	}

	// ==================== RBAC Management ====================
	rbac := api.Group("/rbac")
	rbac.Use(h.AuthMiddleware.AdminOnly()...)
	{
		rbac.POST("/permissions", h.RBACHandler.CreatePermission)
		rbac.POST("/roles", h.RBACHandler.CreateRole)
		rbac.POST("/roles/:id/permissions/:pid", h.RBACHandler.AssignPermissionToRole)
		rbac.POST("/users/:username/roles/:id", h.RBACHandler.AssignRoleToUser)
		rbac.GET("/users/:username/permissions", h.RBACHandler.UserPermissions)
	}
}
