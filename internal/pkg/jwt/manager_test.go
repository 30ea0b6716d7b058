package jwt

import (
	"errors"
	"strings"
	"testing"
	"time"

	xerrors "github.com/basharmd94/orderapp-sub000/internal/pkg/errors"
)

func testManager(accessTTL, refreshTTL time.Duration) *Manager {
	return NewManager(Config{
		Secret:     "test-signing-secret",
		Issuer:     "orderapp",
		AccessTTL:  accessTTL,
		RefreshTTL: refreshTTL,
	})
}

func baseClaims() Claims {
	return Claims{
		Username:     "alice",
		Status:       "active",
		EmployeeCode: "EMP001",
		Tier:         TierUser,
		Terminal:     "T001",
		BusinessID:   100,
	}
}

func TestIssueAndVerifyAccess(t *testing.T) {
	m := testManager(30*time.Minute, 7*24*time.Hour)

	token, err := m.IssueAccess(baseClaims())
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}

	claims, err := m.Verify(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.Username != "alice" || claims.BusinessID != 100 || claims.Terminal != "T001" {
		t.Fatalf("claims did not round-trip: %+v", claims)
	}
	if claims.Purpose != PurposeAccess {
		t.Fatalf("expected purpose %q, got %q", PurposeAccess, claims.Purpose)
	}
	if claims.ID == "" {
		t.Fatal("expected a jti")
	}
}

func TestRefreshOutlivesAccess(t *testing.T) {
	m := testManager(30*time.Minute, 7*24*time.Hour)

	access, err := m.IssueAccess(baseClaims())
	if err != nil {
		t.Fatalf("issue access: %v", err)
	}
	refresh, err := m.IssueRefresh(baseClaims())
	if err != nil {
		t.Fatalf("issue refresh: %v", err)
	}

	ac, err := m.Verify(access)
	if err != nil {
		t.Fatalf("verify access: %v", err)
	}
	rc, err := m.Verify(refresh)
	if err != nil {
		t.Fatalf("verify refresh: %v", err)
	}
	if rc.Purpose != PurposeRefresh {
		t.Fatalf("expected refresh purpose, got %q", rc.Purpose)
	}
	if !rc.ExpiresAt.After(ac.ExpiresAt.Time) {
		t.Fatal("refresh token should expire after access token")
	}
}

func TestVerifyExpired(t *testing.T) {
	m := testManager(-1*time.Minute, 7*24*time.Hour)

	token, err := m.IssueAccess(baseClaims())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(token); !errors.Is(err, xerrors.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestVerifyTampered(t *testing.T) {
	m := testManager(30*time.Minute, 7*24*time.Hour)

	token, err := m.IssueAccess(baseClaims())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	parts := strings.Split(token, ".")
	parts[1] = parts[1][:len(parts[1])-2] + "xx"
	tampered := strings.Join(parts, ".")

	if _, err := m.Verify(tampered); !errors.Is(err, xerrors.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for tampered token, got %v", err)
	}
}

func TestVerifyWrongSecret(t *testing.T) {
	m := testManager(30*time.Minute, 7*24*time.Hour)
	other := NewManager(Config{Secret: "a-different-secret", Issuer: "orderapp", AccessTTL: 30 * time.Minute, RefreshTTL: 7 * 24 * time.Hour})

	token, err := other.IssueAccess(baseClaims())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := m.Verify(token); !errors.Is(err, xerrors.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken for foreign signature, got %v", err)
	}
}

func TestVerifyGarbage(t *testing.T) {
	m := testManager(30*time.Minute, 7*24*time.Hour)
	for _, tok := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := m.Verify(tok); !errors.Is(err, xerrors.ErrInvalidToken) {
			t.Fatalf("expected ErrInvalidToken for %q, got %v", tok, err)
		}
	}
}
