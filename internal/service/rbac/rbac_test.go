// internal/service/rbac/rbac_test.go
package rbac

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/basharmd94/orderapp-sub000/internal/domain/rbac"
	xerrors "github.com/basharmd94/orderapp-sub000/internal/pkg/errors"
	appjwt "github.com/basharmd94/orderapp-sub000/internal/pkg/jwt"

	"go.uber.org/zap"
)

type memStore struct {
	nextPermID  int64
	nextRoleID  int64
	permissions map[int64]*rbac.Permission
	roles       map[int64]*rbac.Role
	rolePerms   map[int64][]int64  // role -> permission ids
	userRoles   map[string][]int64 // username -> role ids
	tiers       map[string]string  // username -> tier
}

func newMemStore() *memStore {
	return &memStore{
		permissions: map[int64]*rbac.Permission{},
		roles:       map[int64]*rbac.Role{},
		rolePerms:   map[int64][]int64{},
		userRoles:   map[string][]int64{},
		tiers: map[string]string{
			"alice": appjwt.TierUser,
			"root":  appjwt.TierAdmin,
		},
	}
}

func (m *memStore) CreatePermission(_ context.Context, p *rbac.Permission) error {
	for _, existing := range m.permissions {
		if existing.Codename == p.Codename {
			return xerrors.ErrConflict
		}
	}
	m.nextPermID++
	p.ID = m.nextPermID
	m.permissions[p.ID] = p
	return nil
}

func (m *memStore) CreateRole(_ context.Context, role *rbac.Role) error {
	for _, existing := range m.roles {
		if existing.Name == role.Name {
			return xerrors.ErrConflict
		}
	}
	m.nextRoleID++
	role.ID = m.nextRoleID
	m.roles[role.ID] = role
	return nil
}

func (m *memStore) AssignPermissionToRole(_ context.Context, roleID, permissionID int64) error {
	if _, ok := m.roles[roleID]; !ok {
		return xerrors.ErrNotFound
	}
	if _, ok := m.permissions[permissionID]; !ok {
		return xerrors.ErrNotFound
	}
	m.rolePerms[roleID] = append(m.rolePerms[roleID], permissionID)
	return nil
}

func (m *memStore) AssignRoleToUser(_ context.Context, username string, roleID int64) error {
	if _, ok := m.roles[roleID]; !ok {
		return xerrors.ErrNotFound
	}
	m.userRoles[username] = append(m.userRoles[username], roleID)
	return nil
}

func (m *memStore) PermissionsForUser(_ context.Context, username string) ([]string, error) {
	seen := map[string]struct{}{}
	for _, roleID := range m.userRoles[username] {
		for _, permID := range m.rolePerms[roleID] {
			seen[m.permissions[permID].Codename] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for c := range seen {
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}

func (m *memStore) TierOf(_ context.Context, username string) (string, error) {
	tier, ok := m.tiers[username]
	if !ok {
		return "", xerrors.ErrNotFound
	}
	return tier, nil
}

func (m *memStore) AllCodenames(_ context.Context) ([]string, error) {
	out := make([]string, 0, len(m.permissions))
	for _, p := range m.permissions {
		out = append(out, p.Codename)
	}
	sort.Strings(out)
	return out, nil
}

func seed(t *testing.T) (*Service, *memStore) {
	t.Helper()
	store := newMemStore()
	svc := NewService(store, zap.NewNop())
	ctx := context.Background()

	for _, codename := range []string{"orders.create", "orders.read", "users.manage"} {
		_, err := svc.CreatePermission(ctx, &rbac.CreatePermissionRequest{
			Name: codename, Codename: codename,
			Resource: strings.Split(codename, ".")[0],
			Action:   strings.Split(codename, ".")[1],
		})
		if err != nil {
			t.Fatalf("CreatePermission(%s): %v", codename, err)
		}
	}
	return svc, store
}

func userClaims(username string) *appjwt.Claims {
	return &appjwt.Claims{Username: username, Tier: appjwt.TierUser}
}

func TestAdminResolvesToFullSetWithoutRoles(t *testing.T) {
	svc, _ := seed(t)

	claims := &appjwt.Claims{Username: "root", Tier: appjwt.TierAdmin}
	granted, err := svc.ResolvePermissions(context.Background(), claims)
	if err != nil {
		t.Fatalf("ResolvePermissions: %v", err)
	}
	want := []string{"orders.create", "orders.read", "users.manage"}
	if len(granted) != len(want) {
		t.Fatalf("granted = %v, want %v", granted, want)
	}
	for i := range want {
		if granted[i] != want[i] {
			t.Fatalf("granted = %v, want %v", granted, want)
		}
	}

	if err := svc.Authorize(context.Background(), claims, "users.manage", "orders.create"); err != nil {
		t.Errorf("admin denied: %v", err)
	}
}

func TestRoleUnionDeduplicates(t *testing.T) {
	svc, _ := seed(t)
	ctx := context.Background()

	sales, err := svc.CreateRole(ctx, &rbac.CreateRoleRequest{Name: "sales"})
	if err != nil {
		t.Fatalf("CreateRole: %v", err)
	}
	auditor, err := svc.CreateRole(ctx, &rbac.CreateRoleRequest{Name: "auditor"})
	if err != nil {
		t.Fatalf("CreateRole: %v", err)
	}

	// orders.read granted through both roles; the union must hold it once.
	svc.AssignPermissionToRole(ctx, sales.ID, 1)   // orders.create
	svc.AssignPermissionToRole(ctx, sales.ID, 2)   // orders.read
	svc.AssignPermissionToRole(ctx, auditor.ID, 2) // orders.read
	svc.AssignRoleToUser(ctx, "alice", sales.ID)
	svc.AssignRoleToUser(ctx, "alice", auditor.ID)

	granted, err := svc.ResolvePermissions(ctx, userClaims("alice"))
	if err != nil {
		t.Fatalf("ResolvePermissions: %v", err)
	}
	if len(granted) != 2 || granted[0] != "orders.create" || granted[1] != "orders.read" {
		t.Fatalf("granted = %v", granted)
	}
}

func TestUserWithoutRolesHasEmptySet(t *testing.T) {
	svc, _ := seed(t)

	granted, err := svc.ResolvePermissions(context.Background(), userClaims("nobody"))
	if err != nil {
		t.Fatalf("ResolvePermissions: %v", err)
	}
	if len(granted) != 0 {
		t.Fatalf("granted = %v, want empty", granted)
	}

	err = svc.Authorize(context.Background(), userClaims("nobody"), "orders.create")
	if !xerrors.Is(err, xerrors.ErrForbidden) {
		t.Fatalf("want ErrForbidden, got %v", err)
	}
}

func TestAuthorizeNamesMissingPermissions(t *testing.T) {
	svc, _ := seed(t)
	ctx := context.Background()

	role, _ := svc.CreateRole(ctx, &rbac.CreateRoleRequest{Name: "sales"})
	svc.AssignPermissionToRole(ctx, role.ID, 1) // orders.create
	svc.AssignRoleToUser(ctx, "alice", role.ID)

	err := svc.Authorize(ctx, userClaims("alice"), "orders.create", "users.manage")
	if !xerrors.Is(err, xerrors.ErrForbidden) {
		t.Fatalf("want ErrForbidden, got %v", err)
	}
	if !strings.Contains(err.Error(), "users.manage") {
		t.Errorf("error should name the missing codename: %q", err)
	}
	if strings.Contains(err.Error(), "orders.create") {
		t.Errorf("error names a held codename: %q", err)
	}
}

func TestAuthorizeWithNoRequirementsPasses(t *testing.T) {
	svc, _ := seed(t)
	if err := svc.Authorize(context.Background(), userClaims("anyone")); err != nil {
		t.Fatalf("empty requirement denied: %v", err)
	}
}

func TestDuplicatePermissionAndRoleConflict(t *testing.T) {
	svc, _ := seed(t)
	ctx := context.Background()

	_, err := svc.CreatePermission(ctx, &rbac.CreatePermissionRequest{
		Name: "dup", Codename: "orders.create", Resource: "orders", Action: "create",
	})
	if !xerrors.Is(err, xerrors.ErrConflict) {
		t.Fatalf("want ErrConflict, got %v", err)
	}

	if _, err := svc.CreateRole(ctx, &rbac.CreateRoleRequest{Name: "sales"}); err != nil {
		t.Fatalf("CreateRole: %v", err)
	}
	if _, err := svc.CreateRole(ctx, &rbac.CreateRoleRequest{Name: "sales"}); !xerrors.Is(err, xerrors.ErrConflict) {
		t.Fatalf("want ErrConflict, got %v", err)
	}
}

func TestUserPermissionsAdminGetsFullSet(t *testing.T) {
	svc, _ := seed(t)

	// "root" holds no roles; the admin tier alone grants everything, and the
	// introspection path must agree with claims-based resolution.
	granted, err := svc.UserPermissions(context.Background(), "root")
	if err != nil {
		t.Fatalf("UserPermissions: %v", err)
	}
	want := []string{"orders.create", "orders.read", "users.manage"}
	if len(granted) != len(want) {
		t.Fatalf("granted = %v, want %v", granted, want)
	}
	for i := range want {
		if granted[i] != want[i] {
			t.Fatalf("granted = %v, want %v", granted, want)
		}
	}
}

func TestUserPermissionsRoleDerived(t *testing.T) {
	svc, _ := seed(t)
	ctx := context.Background()

	role, _ := svc.CreateRole(ctx, &rbac.CreateRoleRequest{Name: "sales"})
	svc.AssignPermissionToRole(ctx, role.ID, 1) // orders.create
	svc.AssignRoleToUser(ctx, "alice", role.ID)

	granted, err := svc.UserPermissions(ctx, "alice")
	if err != nil {
		t.Fatalf("UserPermissions: %v", err)
	}
	if len(granted) != 1 || granted[0] != "orders.create" {
		t.Fatalf("granted = %v", granted)
	}
}

func TestUserPermissionsUnknownUser(t *testing.T) {
	svc, _ := seed(t)

	if _, err := svc.UserPermissions(context.Background(), "ghost"); !xerrors.Is(err, xerrors.ErrNotFound) {
		t.Fatalf("want ErrNotFound for unknown username, got %v", err)
	}
}

func TestAssignToUnknownRoleIsNotFound(t *testing.T) {
	svc, _ := seed(t)
	ctx := context.Background()

	if err := svc.AssignPermissionToRole(ctx, 99, 1); !xerrors.Is(err, xerrors.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if err := svc.AssignRoleToUser(ctx, "alice", 99); !xerrors.Is(err, xerrors.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}
