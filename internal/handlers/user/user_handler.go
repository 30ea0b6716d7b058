// internal/handlers/user/user_handler.go
package user

import (
	"net/http"

	"github.com/basharmd94/orderapp-sub000/internal/domain/auth"
	"github.com/basharmd94/orderapp-sub000/internal/pkg/response"
	userService "github.com/basharmd94/orderapp-sub000/internal/service/user"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type UserHandler struct {
	userService *userService.Service
	logger      *zap.Logger
}

func NewUserHandler(svc *userService.Service, logger *zap.Logger) *UserHandler {
	return &UserHandler{userService: svc, logger: logger}
}

// Register creates a new account bound to an active employee record.
func (h *UserHandler) Register(c *gin.Context) {
	var req auth.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	ident, err := h.userService.Register(c.Request.Context(), &req)
	if err != nil {
		h.logger.Warn("registration failed",
			zap.String("username", req.Username),
			zap.Error(err),
		)
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, "registration successful", gin.H{
		"username": ident.Username,
		"terminal": ident.Terminal,
		"email":    ident.Email,
	})
}

// UpdateStatus activates or deactivates a user. Deactivation also ends any
// live session.
func (h *UserHandler) UpdateStatus(c *gin.Context) {
	var req auth.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	username := c.Param("username")
	if err := h.userService.UpdateStatus(c.Request.Context(), username, req.Status); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "status updated", gin.H{
		"username": username,
		"status":   req.Status,
	})
}

// Delete removes a user account after ending its sessions.
func (h *UserHandler) Delete(c *gin.Context) {
	username := c.Param("username")
	if err := h.userService.Delete(c.Request.Context(), username); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "user deleted", nil)
}
