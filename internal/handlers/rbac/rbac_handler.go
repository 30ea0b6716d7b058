// internal/handlers/rbac/rbac_handler.go
package rbac

import (
	"net/http"
	"strconv"

	"github.com/basharmd94/orderapp-sub000/internal/domain/rbac"
	"github.com/basharmd94/orderapp-sub000/internal/pkg/response"
	rbacService "github.com/basharmd94/orderapp-sub000/internal/service/rbac"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RBACHandler struct {
	rbacService *rbacService.Service
	logger      *zap.Logger
}

func NewRBACHandler(svc *rbacService.Service, logger *zap.Logger) *RBACHandler {
	return &RBACHandler{rbacService: svc, logger: logger}
}

func (h *RBACHandler) CreatePermission(c *gin.Context) {
	var req rbac.CreatePermissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	p, err := h.rbacService.CreatePermission(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "permission created", p)
}

func (h *RBACHandler) CreateRole(c *gin.Context) {
	var req rbac.CreateRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	role, err := h.rbacService.CreateRole(c.Request.Context(), &req)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, "role created", role)
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "invalid "+name, err)
		return 0, false
	}
	return id, true
}

func (h *RBACHandler) AssignPermissionToRole(c *gin.Context) {
	roleID, ok := pathID(c, "id")
	if !ok {
		return
	}
	permID, ok := pathID(c, "pid")
	if !ok {
		return
	}

	if err := h.rbacService.AssignPermissionToRole(c.Request.Context(), roleID, permID); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "permission assigned", nil)
}

func (h *RBACHandler) AssignRoleToUser(c *gin.Context) {
	roleID, ok := pathID(c, "id")
	if !ok {
		return
	}
	username := c.Param("username")

	if err := h.rbacService.AssignRoleToUser(c.Request.Context(), username, roleID); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "role assigned", nil)
}

// UserPermissions lists the role-derived permission codenames of a user.
func (h *RBACHandler) UserPermissions(c *gin.Context) {
	username := c.Param("username")

	codenames, err := h.rbacService.UserPermissions(c.Request.Context(), username)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, http.StatusOK, "user permissions", gin.H{
		"username":    username,
		"permissions": codenames,
	})
}
