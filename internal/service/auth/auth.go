// internal/service/auth/auth.go
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/basharmd94/orderapp-sub000/internal/domain/auth"
	xerrors "github.com/basharmd94/orderapp-sub000/internal/pkg/errors"
	appjwt "github.com/basharmd94/orderapp-sub000/internal/pkg/jwt"
	"github.com/basharmd94/orderapp-sub000/internal/pkg/password"

	"go.uber.org/zap"
)

// IdentityStore is the slice of the identity repository the auth flow needs.
type IdentityStore interface {
	FindByUsername(ctx context.Context, username string) (*auth.Identity, error)
}

// AttemptStore tracks consecutive login failures per username.
type AttemptStore interface {
	Find(ctx context.Context, username string) (*auth.LoginAttempt, error)
	ClearLock(ctx context.Context, username string) error
	RecordFailure(ctx context.Context, username, ip string, maxAttempts int, lockout time.Duration) (*auth.LoginAttempt, error)
	Reset(ctx context.Context, username string) error
}

// SessionStore manages the single live session per identity.
type SessionStore interface {
	ReplaceActive(ctx context.Context, s *auth.Session) (*auth.Session, error)
	FindByUsernameAndToken(ctx context.Context, username, accessToken string) (*auth.Session, error)
	ListByUsername(ctx context.Context, username string) ([]*auth.Session, error)
	Close(ctx context.Context, sessionID int64, reason string) error
	CloseAll(ctx context.Context, username, reason, exceptToken string) ([]*auth.Session, error)
	TouchActivity(ctx context.Context, sessionID int64) error
}

// TokenRevoker is the blacklist facade.
type TokenRevoker interface {
	Revoke(ctx context.Context, tokens ...string) error
	IsRevoked(ctx context.Context, token string) (bool, error)
}

// Notifier pushes session events to connected clients. Optional.
type Notifier interface {
	SessionRevoked(username, reason string)
}

type Service struct {
	identities IdentityStore
	attempts   AttemptStore
	sessions   SessionStore
	blacklist  TokenRevoker
	tokens     *appjwt.Manager
	notifier   Notifier
	logger     *zap.Logger

	maxAttempts int
	lockout     time.Duration
}

func NewService(
	identities IdentityStore,
	attempts AttemptStore,
	sessions SessionStore,
	blacklist TokenRevoker,
	tokens *appjwt.Manager,
	notifier Notifier,
	logger *zap.Logger,
	maxAttempts int,
	lockout time.Duration,
) *Service {
	return &Service{
		identities:  identities,
		attempts:    attempts,
		sessions:    sessions,
		blacklist:   blacklist,
		tokens:      tokens,
		notifier:    notifier,
		logger:      logger,
		maxAttempts: maxAttempts,
		lockout:     lockout,
	}
}

// failedLoginMessage never distinguishes a wrong password from an unknown
// username.
const failedLoginMessage = "incorrect username or password"

// checkGuard enforces the lockout window before credentials are even looked
// at. Expired locks are cleared in passing.
func (s *Service) checkGuard(ctx context.Context, username string) error {
	rec, err := s.attempts.Find(ctx, username)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil
		}
		return err
	}

	now := time.Now()
	if rec.Locked(now) {
		remaining := int(rec.LockedUntil.Sub(now).Seconds()) + 1
		return fmt.Errorf("account locked, try again in %d seconds: %w", remaining, xerrors.ErrLocked)
	}
	if rec.LockedUntil != nil {
		// Lock has expired; the user gets a fresh set of attempts.
		if err := s.attempts.ClearLock(ctx, username); err != nil {
			return err
		}
	}
	return nil
}

// recordFailure bumps the counter and maps the result back to a uniform
// credentials error, or a lockout error when this failure tripped the lock.
func (s *Service) recordFailure(ctx context.Context, username, ip string) error {
	rec, err := s.attempts.RecordFailure(ctx, username, ip, s.maxAttempts, s.lockout)
	if err != nil {
		s.logger.Error("failed to record login failure", zap.String("username", username), zap.Error(err))
		return fmt.Errorf("%s: %w", failedLoginMessage, xerrors.ErrUnauthorized)
	}
	if rec.Locked(time.Now()) {
		s.logger.Warn("account locked after repeated failures",
			zap.String("username", username),
			zap.Int("attempts", rec.AttemptCount),
			zap.String("ip", ip))
		remaining := int(s.lockout.Seconds())
		return fmt.Errorf("account locked, try again in %d seconds: %w", remaining, xerrors.ErrLocked)
	}
	return fmt.Errorf("%s: %w", failedLoginMessage, xerrors.ErrUnauthorized)
}

// Login runs the full authentication flow: lockout guard, credential check,
// status check, token issuance and single-session replacement.
func (s *Service) Login(ctx context.Context, req *auth.LoginRequest) (*auth.LoginResponse, error) {
	if err := s.checkGuard(ctx, req.Username); err != nil {
		return nil, err
	}

	ident, err := s.identities.FindByUsername(ctx, req.Username)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, s.recordFailure(ctx, req.Username, req.IPAddress)
		}
		return nil, err
	}

	if !password.Verify(req.Password, ident.Password) {
		return nil, s.recordFailure(ctx, req.Username, req.IPAddress)
	}

	if ident.Status != auth.StatusActive {
		return nil, fmt.Errorf("user is not active: %w", xerrors.ErrUnauthorized)
	}

	if err := s.attempts.Reset(ctx, req.Username); err != nil {
		s.logger.Error("failed to reset login attempts", zap.String("username", req.Username), zap.Error(err))
	}

	claims := appjwt.Claims{
		Username:     ident.Username,
		AcCode:       ident.AcCode,
		Status:       ident.Status,
		EmployeeCode: ident.EmployeeCode,
		Tier:         ident.Tier,
		Terminal:     ident.Terminal,
		BusinessID:   ident.BusinessID,
	}

	accessToken, err := s.tokens.IssueAccess(claims)
	if err != nil {
		return nil, fmt.Errorf("failed to issue access token: %w", err)
	}
	refreshToken, err := s.tokens.IssueRefresh(claims)
	if err != nil {
		return nil, fmt.Errorf("failed to issue refresh token: %w", err)
	}

	session := &auth.Session{
		Username:     ident.Username,
		BusinessID:   ident.BusinessID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Status:       auth.StatusActive,
		DeviceInfo:   deviceInfoJSON(req),
		Tier:         ident.Tier,
	}

	evicted, err := s.sessions.ReplaceActive(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("failed to register session: %w", err)
	}

	if evicted != nil {
		// The repository already blacklisted the evicted tokens inside its
		// transaction; Revoke here is an idempotent cache warm.
		if err := s.blacklist.Revoke(ctx, evicted.AccessToken, evicted.RefreshToken); err != nil {
			s.logger.Error("failed to warm blacklist cache", zap.String("username", ident.Username), zap.Error(err))
		}
		if s.notifier != nil {
			s.notifier.SessionRevoked(ident.Username, auth.ReasonForcedLogout)
		}
		s.logger.Info("evicted previous session on login", zap.String("username", ident.Username))
	}

	s.logger.Info("login succeeded",
		zap.String("username", ident.Username),
		zap.String("terminal", ident.Terminal))

	return &auth.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int(s.tokens.AccessTTL().Seconds()),
	}, nil
}

func deviceInfoJSON(req *auth.LoginRequest) string {
	info := map[string]string{
		"ip_address": req.IPAddress,
		"user_agent": req.UserAgent,
		"device_id":  req.DeviceID,
	}
	b, _ := json.Marshal(info)
	return string(b)
}

// Logout ends the session identified by the presented access token.
// ErrNotFound when no session matches, e.g. when it was already evicted.
func (s *Service) Logout(ctx context.Context, username, accessToken string) error {
	session, err := s.sessions.FindByUsernameAndToken(ctx, username, accessToken)
	if err != nil {
		return err
	}
	if err := s.sessions.Close(ctx, session.ID, auth.ReasonCompleted); err != nil {
		return err
	}
	if err := s.blacklist.Revoke(ctx, session.AccessToken, session.RefreshToken); err != nil {
		s.logger.Error("failed to warm blacklist cache", zap.String("username", username), zap.Error(err))
	}
	s.logger.Info("logout", zap.String("username", username))
	return nil
}

// LogoutAll ends every session of the user except the one holding the
// presented token.
func (s *Service) LogoutAll(ctx context.Context, username, exceptToken string) (int, error) {
	closed, err := s.sessions.CloseAll(ctx, username, auth.ReasonAllSessions, exceptToken)
	if err != nil {
		return 0, err
	}
	for _, c := range closed {
		if err := s.blacklist.Revoke(ctx, c.AccessToken, c.RefreshToken); err != nil {
			s.logger.Error("failed to warm blacklist cache", zap.String("username", username), zap.Error(err))
		}
	}
	if len(closed) > 0 && s.notifier != nil {
		s.notifier.SessionRevoked(username, auth.ReasonAllSessions)
	}
	return len(closed), nil
}

// ForcedLogout destroys every session of the user with the given reason.
// Used by administrative flows (deactivation, deletion). Absence of sessions
// is not an error.
func (s *Service) ForcedLogout(ctx context.Context, username, reason string) error {
	closed, err := s.sessions.CloseAll(ctx, username, reason, "")
	if err != nil {
		return err
	}
	for _, c := range closed {
		if err := s.blacklist.Revoke(ctx, c.AccessToken, c.RefreshToken); err != nil {
			s.logger.Error("failed to warm blacklist cache", zap.String("username", username), zap.Error(err))
		}
	}
	if len(closed) > 0 {
		if s.notifier != nil {
			s.notifier.SessionRevoked(username, reason)
		}
		s.logger.Info("forced logout",
			zap.String("username", username),
			zap.String("reason", reason),
			zap.Int("sessions", len(closed)))
	}
	return nil
}

// ValidateToken checks an access token end to end: signature and expiry,
// purpose, and revocation. Valid tokens bump the session's activity stamp.
func (s *Service) ValidateToken(ctx context.Context, token string) (*appjwt.Claims, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}
	if claims.Purpose != appjwt.PurposeAccess {
		return nil, xerrors.ErrInvalidToken
	}

	revoked, err := s.blacklist.IsRevoked(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to check revocation: %w", err)
	}
	if revoked {
		return nil, xerrors.ErrInvalidToken
	}

	if session, err := s.sessions.FindByUsernameAndToken(ctx, claims.Username, token); err == nil {
		if err := s.sessions.TouchActivity(ctx, session.ID); err != nil {
			s.logger.Warn("failed to touch session activity", zap.Error(err))
		}
	}
	return claims, nil
}

// Sessions lists the caller's active sessions without exposing tokens.
func (s *Service) Sessions(ctx context.Context, username string) ([]*auth.SessionInfo, error) {
	sessions, err := s.sessions.ListByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	infos := make([]*auth.SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		var device map[string]interface{}
		if sess.DeviceInfo != "" {
			_ = json.Unmarshal([]byte(sess.DeviceInfo), &device)
		}
		infos = append(infos, &auth.SessionInfo{
			LoginTime:    sess.CreatedAt.Format(time.RFC3339),
			LastActivity: sess.UpdatedAt.Format(time.RFC3339),
			DeviceInfo:   device,
			Status:       sess.Status,
		})
	}
	return infos, nil
}
