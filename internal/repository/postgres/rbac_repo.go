// internal/repository/postgres/rbac_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/basharmd94/orderapp-sub000/internal/domain/rbac"
	xerrors "github.com/basharmd94/orderapp-sub000/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RBACRepository struct {
	pool *pgxpool.Pool
}

func NewRBACRepository(pool *pgxpool.Pool) *RBACRepository {
	return &RBACRepository{pool: pool}
}

// CreatePermission inserts a permission; duplicate codename is ErrConflict.
func (r *RBACRepository) CreatePermission(ctx context.Context, p *rbac.Permission) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO permissions (name, codename, description, resource, action)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, p.Name, p.Codename, p.Description, p.Resource, p.Action).Scan(&p.ID)

	if isUniqueViolation(err) {
		return xerrors.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to create permission: %w", err)
	}
	return nil
}

// CreateRole inserts a role; duplicate name is ErrConflict.
func (r *RBACRepository) CreateRole(ctx context.Context, role *rbac.Role) error {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO roles (name, description, is_default)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, role.Name, role.Description, role.IsDefault).Scan(&role.ID, &role.CreatedAt)

	if isUniqueViolation(err) {
		return xerrors.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to create role: %w", err)
	}
	return nil
}

// AssignPermissionToRole links a permission to a role. Unknown ids are
// ErrNotFound; an existing link is a no-op.
func (r *RBACRepository) AssignPermissionToRole(ctx context.Context, roleID, permissionID int64) error {
	var roleExists, permExists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM roles WHERE id = $1),
		       EXISTS (SELECT 1 FROM permissions WHERE id = $2)
	`, roleID, permissionID).Scan(&roleExists, &permExists)
	if err != nil {
		return fmt.Errorf("failed to check role/permission: %w", err)
	}
	if !roleExists || !permExists {
		return xerrors.ErrNotFound
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO role_permission (role_id, permission_id)
		VALUES ($1, $2) ON CONFLICT DO NOTHING
	`, roleID, permissionID)
	if err != nil {
		return fmt.Errorf("failed to assign permission: %w", err)
	}
	return nil
}

// AssignRoleToUser links a role to a username.
func (r *RBACRepository) AssignRoleToUser(ctx context.Context, username string, roleID int64) error {
	var userExists, roleExists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM api_users WHERE username = $1),
		       EXISTS (SELECT 1 FROM roles WHERE id = $2)
	`, username, roleID).Scan(&userExists, &roleExists)
	if err != nil {
		return fmt.Errorf("failed to check user/role: %w", err)
	}
	if !userExists || !roleExists {
		return xerrors.ErrNotFound
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO user_role (username, role_id)
		VALUES ($1, $2) ON CONFLICT DO NOTHING
	`, username, roleID)
	if err != nil {
		return fmt.Errorf("failed to assign role: %w", err)
	}
	return nil
}

// PermissionsForUser resolves the distinct permission codenames a user holds
// through role membership.
func (r *RBACRepository) PermissionsForUser(ctx context.Context, username string) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT DISTINCT p.codename
		FROM permissions p
		JOIN role_permission rp ON rp.permission_id = p.id
		JOIN user_role ur ON ur.role_id = rp.role_id
		WHERE ur.username = $1
		ORDER BY p.codename
	`, username)
	if err != nil {
		return nil, fmt.Errorf("failed to query user permissions: %w", err)
	}
	defer rows.Close()

	return scanCodenames(rows)
}

// AllCodenames lists every known permission codename, the universal set
// granted to admin-tier identities.
func (r *RBACRepository) AllCodenames(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT codename FROM permissions ORDER BY codename`)
	if err != nil {
		return nil, fmt.Errorf("failed to query permissions: %w", err)
	}
	defer rows.Close()

	return scanCodenames(rows)
}

func scanCodenames(rows pgx.Rows) ([]string, error) {
	codenames := []string{}
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, fmt.Errorf("failed to scan codename: %w", err)
		}
		codenames = append(codenames, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return codenames, nil
}

// TierOf returns the authorization tier of a username.
func (r *RBACRepository) TierOf(ctx context.Context, username string) (string, error) {
	var tier string
	err := r.pool.QueryRow(ctx,
		`SELECT tier FROM api_users WHERE username = $1`, username).Scan(&tier)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", xerrors.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to find user tier: %w", err)
	}
	return tier, nil
}
