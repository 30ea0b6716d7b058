// internal/domain/rbac/dto.go
package rbac

type CreatePermissionRequest struct {
	Name        string `json:"name" binding:"required"`
	Codename    string `json:"codename" binding:"required"`
	Resource    string `json:"resource" binding:"required"`
	Action      string `json:"action" binding:"required"`
	Description string `json:"description"`
}

type CreateRoleRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	IsDefault   bool   `json:"is_default"`
}
