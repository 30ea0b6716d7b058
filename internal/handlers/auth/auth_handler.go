// internal/handlers/auth/auth_handler.go
package auth

import (
	"net/http"

	"github.com/basharmd94/orderapp-sub000/internal/domain/auth"
	"github.com/basharmd94/orderapp-sub000/internal/middleware"
	"github.com/basharmd94/orderapp-sub000/internal/pkg/response"
	authService "github.com/basharmd94/orderapp-sub000/internal/service/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *authService.Service
	logger      *zap.Logger
}

func NewAuthHandler(svc *authService.Service, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{authService: svc, logger: logger}
}

// Login authenticates a user and returns the token pair.
func (h *AuthHandler) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	req.IPAddress = c.ClientIP()
	req.UserAgent = c.GetHeader("User-Agent")
	req.DeviceID = c.GetHeader("X-Device-ID")

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		h.logger.Warn("login failed",
			zap.String("username", req.Username),
			zap.String("ip", req.IPAddress),
			zap.Error(err),
		)
		response.FromError(c, err)
		return
	}

	response.Success(c, http.StatusOK, "login successful", resp)
}

// Logout ends the caller's current session.
func (h *AuthHandler) Logout(c *gin.Context) {
	claims, _ := middleware.GetClaims(c)
	token, _ := middleware.GetToken(c)

	if err := h.authService.Logout(c.Request.Context(), claims.Username, token); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "logged out", nil)
}

// LogoutAll ends every other session of the caller.
func (h *AuthHandler) LogoutAll(c *gin.Context) {
	claims, _ := middleware.GetClaims(c)
	token, _ := middleware.GetToken(c)

	closed, err := h.authService.LogoutAll(c.Request.Context(), claims.Username, token)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "logged out of all other sessions", gin.H{
		"sessions_closed": closed,
	})
}

// Sessions lists the caller's active sessions.
func (h *AuthHandler) Sessions(c *gin.Context) {
	claims, _ := middleware.GetClaims(c)

	infos, err := h.authService.Sessions(c.Request.Context(), claims.Username)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "active sessions", infos)
}
