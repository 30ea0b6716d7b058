// internal/service/user/user_test.go
package user

import (
	"context"
	"strings"
	"testing"

	"github.com/basharmd94/orderapp-sub000/internal/domain/auth"
	xerrors "github.com/basharmd94/orderapp-sub000/internal/pkg/errors"
	appjwt "github.com/basharmd94/orderapp-sub000/internal/pkg/jwt"
	"github.com/basharmd94/orderapp-sub000/internal/pkg/password"

	"go.uber.org/zap"
)

type memIdentities struct {
	nextID     int64
	byUsername map[string]*auth.Identity
	employees  map[string]*auth.Employee
}

func newMemIdentities() *memIdentities {
	return &memIdentities{
		byUsername: map[string]*auth.Identity{},
		employees: map[string]*auth.Employee{
			"E0001": {BusinessID: 100001, Code: "E0001", Name: "Alice A", Status: "A-Active"},
			"E0002": {BusinessID: 100001, Code: "E0002", Name: "Bob B", Status: "R-Resigned"},
		},
	}
}

func (m *memIdentities) FindByUsername(_ context.Context, username string) (*auth.Identity, error) {
	if ident, ok := m.byUsername[username]; ok {
		return ident, nil
	}
	return nil, xerrors.ErrNotFound
}

func (m *memIdentities) Create(_ context.Context, ident *auth.Identity) error {
	if _, ok := m.byUsername[ident.Username]; ok {
		return xerrors.ErrConflict
	}
	m.nextID++
	ident.ID = m.nextID
	m.byUsername[ident.Username] = ident
	return nil
}

func (m *memIdentities) UpdateStatus(_ context.Context, username, status string) error {
	ident, ok := m.byUsername[username]
	if !ok {
		return xerrors.ErrNotFound
	}
	ident.Status = status
	return nil
}

func (m *memIdentities) Delete(_ context.Context, username string) error {
	if _, ok := m.byUsername[username]; !ok {
		return xerrors.ErrNotFound
	}
	delete(m.byUsername, username)
	return nil
}

func (m *memIdentities) UsernameExists(_ context.Context, username string) (bool, error) {
	_, ok := m.byUsername[username]
	return ok, nil
}

func (m *memIdentities) EmailExists(_ context.Context, email string) (bool, error) {
	for _, ident := range m.byUsername {
		if strings.EqualFold(ident.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (m *memIdentities) EmployeeCodeExists(_ context.Context, code string) (bool, error) {
	for _, ident := range m.byUsername {
		if ident.EmployeeCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (m *memIdentities) EmployeeByCode(_ context.Context, code string) (*auth.Employee, error) {
	if emp, ok := m.employees[code]; ok {
		return emp, nil
	}
	return nil, xerrors.ErrNotFound
}

func (m *memIdentities) NextTerminal(_ context.Context) (string, error) {
	return "T0042", nil
}

type recordingEnder struct {
	calls []string // "username/reason"
}

func (r *recordingEnder) ForcedLogout(_ context.Context, username, reason string) error {
	r.calls = append(r.calls, username+"/"+reason)
	return nil
}

const testAdminCode = "let-me-in"

func newTestService() (*Service, *memIdentities, *recordingEnder) {
	identities := newMemIdentities()
	ender := &recordingEnder{}
	return NewService(identities, ender, testAdminCode, zap.NewNop()), identities, ender
}

func registerReq() *auth.RegisterRequest {
	return &auth.RegisterRequest{
		Username:   "Alice",
		Password:   "secret-pass",
		Email:      "Alice@example.com",
		BusinessID: 100001,
		EmployeeID: "E0001",
	}
}

func TestRegister(t *testing.T) {
	svc, _, _ := newTestService()

	ident, err := svc.Register(context.Background(), registerReq())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if ident.Username != "alice" || ident.Email != "alice@example.com" {
		t.Errorf("identifiers not lowercased: %q %q", ident.Username, ident.Email)
	}
	if ident.Terminal != "T0042" {
		t.Errorf("terminal = %q", ident.Terminal)
	}
	if ident.Tier != appjwt.TierUser {
		t.Errorf("tier = %q, want user", ident.Tier)
	}
	if ident.Status != auth.StatusActive {
		t.Errorf("status = %q", ident.Status)
	}
	if ident.EmployeeName != "Alice A" {
		t.Errorf("employee name = %q", ident.EmployeeName)
	}
	if !password.Verify("secret-pass", ident.Password) {
		t.Error("stored hash does not verify")
	}
	if ident.Password == "secret-pass" {
		t.Error("password stored in plaintext")
	}
}

func TestRegisterAdminCode(t *testing.T) {
	svc, _, _ := newTestService()

	req := registerReq()
	req.AdminCode = testAdminCode
	ident, err := svc.Register(context.Background(), req)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if ident.Tier != appjwt.TierAdmin {
		t.Errorf("tier = %q, want admin", ident.Tier)
	}

	// A wrong code silently degrades to user tier.
	req2 := registerReq()
	req2.Username = "alice2"
	req2.Email = "alice2@example.com"
	req2.EmployeeID = "E0001"
	svc2, _, _ := newTestService()
	req2.AdminCode = "guess"
	ident2, err := svc2.Register(context.Background(), req2)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if ident2.Tier != appjwt.TierUser {
		t.Errorf("tier = %q, want user for wrong code", ident2.Tier)
	}
}

func TestRegisterRejectsUnknownOrInactiveEmployee(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	req := registerReq()
	req.EmployeeID = "E9999"
	if _, err := svc.Register(ctx, req); !xerrors.Is(err, xerrors.ErrInvalidInput) {
		t.Fatalf("unknown employee: want ErrInvalidInput, got %v", err)
	}

	req = registerReq()
	req.EmployeeID = "E0002" // resigned
	if _, err := svc.Register(ctx, req); !xerrors.Is(err, xerrors.ErrInvalidInput) {
		t.Fatalf("inactive employee: want ErrInvalidInput, got %v", err)
	}
}

func TestRegisterDuplicateChecks(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerReq()); err != nil {
		t.Fatalf("first Register: %v", err)
	}

	dup := registerReq()
	if _, err := svc.Register(ctx, dup); !xerrors.Is(err, xerrors.ErrConflict) {
		t.Fatalf("duplicate username: want ErrConflict, got %v", err)
	}

	dup = registerReq()
	dup.Username = "someone-else"
	if _, err := svc.Register(ctx, dup); !xerrors.Is(err, xerrors.ErrConflict) {
		t.Fatalf("duplicate email: want ErrConflict, got %v", err)
	}
}

func TestDeactivationForcesLogout(t *testing.T) {
	svc, _, ender := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerReq()); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := svc.UpdateStatus(ctx, "alice", auth.StatusInactive); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if len(ender.calls) != 1 || ender.calls[0] != "alice/"+auth.ReasonStatusInactive {
		t.Errorf("forced logout calls = %v", ender.calls)
	}

	// Reactivation does not touch sessions.
	if err := svc.UpdateStatus(ctx, "alice", auth.StatusActive); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if len(ender.calls) != 1 {
		t.Errorf("reactivation forced a logout: %v", ender.calls)
	}
}

func TestUpdateStatusValidation(t *testing.T) {
	svc, _, _ := newTestService()

	if err := svc.UpdateStatus(context.Background(), "alice", "suspended"); !xerrors.Is(err, xerrors.ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput, got %v", err)
	}
	if err := svc.UpdateStatus(context.Background(), "ghost", auth.StatusInactive); !xerrors.Is(err, xerrors.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestDeleteForcesLogoutFirst(t *testing.T) {
	svc, identities, ender := newTestService()
	ctx := context.Background()

	if _, err := svc.Register(ctx, registerReq()); err != nil {
		t.Fatalf("Register: %v", err)
	}

	if err := svc.Delete(ctx, "alice"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if len(ender.calls) != 1 || ender.calls[0] != "alice/"+auth.ReasonUserDeleted {
		t.Errorf("forced logout calls = %v", ender.calls)
	}
	if _, ok := identities.byUsername["alice"]; ok {
		t.Error("identity still present after delete")
	}

	if err := svc.Delete(ctx, "alice"); !xerrors.Is(err, xerrors.ErrNotFound) {
		t.Fatalf("second delete: want ErrNotFound, got %v", err)
	}
}
