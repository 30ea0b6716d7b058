// internal/service/rbac/rbac.go
package rbac

import (
	"context"
	"fmt"
	"strings"

	"github.com/basharmd94/orderapp-sub000/internal/domain/rbac"
	xerrors "github.com/basharmd94/orderapp-sub000/internal/pkg/errors"
	appjwt "github.com/basharmd94/orderapp-sub000/internal/pkg/jwt"

	"go.uber.org/zap"
)

// Store is the repository surface the authorization gate needs.
type Store interface {
	CreatePermission(ctx context.Context, p *rbac.Permission) error
	CreateRole(ctx context.Context, role *rbac.Role) error
	AssignPermissionToRole(ctx context.Context, roleID, permissionID int64) error
	AssignRoleToUser(ctx context.Context, username string, roleID int64) error
	PermissionsForUser(ctx context.Context, username string) ([]string, error)
	AllCodenames(ctx context.Context) ([]string, error)
	TierOf(ctx context.Context, username string) (string, error)
}

type Service struct {
	store  Store
	logger *zap.Logger
}

func NewService(store Store, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// ResolvePermissions returns the effective permission set for the token
// holder. Admin-tier identities get every known codename without consulting
// role assignments; everyone else gets the union of their roles' grants.
// A user with no roles resolves to an empty set, not an error.
func (s *Service) ResolvePermissions(ctx context.Context, claims *appjwt.Claims) ([]string, error) {
	if claims.IsAdmin() {
		return s.store.AllCodenames(ctx)
	}
	return s.store.PermissionsForUser(ctx, claims.Username)
}

// Authorize checks that the token holder has every required codename.
// The error names the missing ones so a 403 is actionable.
func (s *Service) Authorize(ctx context.Context, claims *appjwt.Claims, required ...string) error {
	if len(required) == 0 {
		return nil
	}

	granted, err := s.ResolvePermissions(ctx, claims)
	if err != nil {
		return fmt.Errorf("failed to resolve permissions: %w", err)
	}

	held := make(map[string]struct{}, len(granted))
	for _, g := range granted {
		held[g] = struct{}{}
	}

	var missing []string
	for _, r := range required {
		if _, ok := held[r]; !ok {
			missing = append(missing, r)
		}
	}
	if len(missing) > 0 {
		s.logger.Warn("authorization denied",
			zap.String("username", claims.Username),
			zap.Strings("missing", missing))
		return fmt.Errorf("missing permissions: %s: %w", strings.Join(missing, ", "), xerrors.ErrForbidden)
	}
	return nil
}

func (s *Service) CreatePermission(ctx context.Context, req *rbac.CreatePermissionRequest) (*rbac.Permission, error) {
	p := &rbac.Permission{
		Name:        req.Name,
		Codename:    req.Codename,
		Description: req.Description,
		Resource:    req.Resource,
		Action:      req.Action,
	}
	if err := s.store.CreatePermission(ctx, p); err != nil {
		if xerrors.Is(err, xerrors.ErrConflict) {
			return nil, fmt.Errorf("permission %q already exists: %w", req.Codename, xerrors.ErrConflict)
		}
		return nil, err
	}
	return p, nil
}

func (s *Service) CreateRole(ctx context.Context, req *rbac.CreateRoleRequest) (*rbac.Role, error) {
	role := &rbac.Role{
		Name:        req.Name,
		Description: req.Description,
		IsDefault:   req.IsDefault,
	}
	if err := s.store.CreateRole(ctx, role); err != nil {
		if xerrors.Is(err, xerrors.ErrConflict) {
			return nil, fmt.Errorf("role %q already exists: %w", req.Name, xerrors.ErrConflict)
		}
		return nil, err
	}
	return role, nil
}

func (s *Service) AssignPermissionToRole(ctx context.Context, roleID, permissionID int64) error {
	return s.store.AssignPermissionToRole(ctx, roleID, permissionID)
}

func (s *Service) AssignRoleToUser(ctx context.Context, username string, roleID int64) error {
	return s.store.AssignRoleToUser(ctx, username, roleID)
}

// UserPermissions is the introspection endpoint backing: the effective
// codename set for an arbitrary username. Resolution mirrors
// ResolvePermissions, so an admin-tier user reports the full set here too.
// Unknown usernames are ErrNotFound.
func (s *Service) UserPermissions(ctx context.Context, username string) ([]string, error) {
	tier, err := s.store.TierOf(ctx, username)
	if err != nil {
		return nil, err
	}
	if tier == appjwt.TierAdmin {
		return s.store.AllCodenames(ctx)
	}
	return s.store.PermissionsForUser(ctx, username)
}
