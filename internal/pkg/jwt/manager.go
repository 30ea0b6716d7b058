// internal/pkg/jwt/manager.go
package jwt

import (
	"time"

	xerrors "github.com/basharmd94/orderapp-sub000/internal/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"
)

type Config struct {
	Secret     string
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Manager signs and verifies HS256 tokens with a shared secret.
type Manager struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

func NewManager(cfg Config) *Manager {
	return &Manager{
		secret:     []byte(cfg.Secret),
		issuer:     cfg.Issuer,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
	}
}

func (m *Manager) AccessTTL() time.Duration  { return m.accessTTL }
func (m *Manager) RefreshTTL() time.Duration { return m.refreshTTL }

func (m *Manager) issue(c Claims, purpose string, ttl time.Duration) (string, error) {
	now := time.Now()
	c.Purpose = purpose
	c.RegisteredClaims = jwt.RegisteredClaims{
		Issuer:    m.issuer,
		Subject:   c.Username,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ID:        ulid.Make().String(),
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, &c)
	return tok.SignedString(m.secret)
}

// IssueAccess mints a short-lived access token.
func (m *Manager) IssueAccess(c Claims) (string, error) {
	return m.issue(c, PurposeAccess, m.accessTTL)
}

// IssueRefresh mints a long-lived refresh token.
func (m *Manager) IssueRefresh(c Claims) (string, error) {
	return m.issue(c, PurposeRefresh, m.refreshTTL)
}

// Verify parses and validates a token. Expiry, tampering, a wrong signing
// method and garbage input all collapse into the same ErrInvalidToken so
// callers cannot tell them apart.
func (m *Manager) Verify(token string) (*Claims, error) {
	var claims Claims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, xerrors.ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil || !parsed.Valid {
		return nil, xerrors.ErrInvalidToken
	}
	return &claims, nil
}
