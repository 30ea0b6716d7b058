// internal/middleware/auth_middleware.go
package middleware

import (
	"net/http"
	"strings"

	appjwt "github.com/basharmd94/orderapp-sub000/internal/pkg/jwt"
	"github.com/basharmd94/orderapp-sub000/internal/pkg/response"
	"github.com/basharmd94/orderapp-sub000/internal/service/auth"
	"github.com/basharmd94/orderapp-sub000/internal/service/rbac"

	"github.com/gin-gonic/gin"
)

const (
	ctxClaims = "claims"
	ctxToken  = "access_token"
)

type AuthMiddleware struct {
	authService *auth.Service
	rbacService *rbac.Service
}

func NewAuthMiddleware(authService *auth.Service, rbacService *rbac.Service) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
		rbacService: rbacService,
	}
}

// Auth validates the bearer token and stores the claims in the request
// context.
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "missing authorization token", nil)
			return
		}

		claims, err := m.authService.ValidateToken(c.Request.Context(), token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid or expired token", nil)
			return
		}

		c.Set(ctxClaims, claims)
		c.Set(ctxToken, token)
		c.Next()
	}
}

// RequirePermission checks the caller holds every listed permission. MUST be
// used after Auth().
func (m *AuthMiddleware) RequirePermission(permissions ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			response.Error(c, http.StatusForbidden, "authentication required", nil)
			return
		}

		if err := m.rbacService.Authorize(c.Request.Context(), claims, permissions...); err != nil {
			response.FromError(c, err)
			return
		}
		c.Next()
	}
}

// RequireAdmin restricts the route to admin-tier identities. MUST be used
// after Auth().
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok || !claims.IsAdmin() {
			response.Error(c, http.StatusForbidden, "admin access required", nil)
			return
		}
		c.Next()
	}
}

// AdminOnly is the composed Auth + RequireAdmin chain.
func (m *AuthMiddleware) AdminOnly() []gin.HandlerFunc {
	return []gin.HandlerFunc{m.Auth(), m.RequireAdmin()}
}

// WithPermission is the composed Auth + RequirePermission chain.
func (m *AuthMiddleware) WithPermission(permissions ...string) []gin.HandlerFunc {
	return []gin.HandlerFunc{m.Auth(), m.RequirePermission(permissions...)}
}

// extractToken pulls the bearer token from the Authorization header, falling
// back to the token query param for websocket upgrades.
func extractToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}
	return c.Query("token")
}

// GetClaims returns the verified claims set by Auth().
func GetClaims(c *gin.Context) (*appjwt.Claims, bool) {
	v, exists := c.Get(ctxClaims)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*appjwt.Claims)
	return claims, ok
}

// GetToken returns the raw access token set by Auth().
func GetToken(c *gin.Context) (string, bool) {
	v, exists := c.Get(ctxToken)
	if !exists {
		return "", false
	}
	token, ok := v.(string)
	return token, ok
}
