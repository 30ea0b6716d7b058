// internal/service/user/user.go
package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/basharmd94/orderapp-sub000/internal/domain/auth"
	xerrors "github.com/basharmd94/orderapp-sub000/internal/pkg/errors"
	appjwt "github.com/basharmd94/orderapp-sub000/internal/pkg/jwt"
	"github.com/basharmd94/orderapp-sub000/internal/pkg/password"

	"go.uber.org/zap"
)

// employeeActive is the employable status in the employee master table.
const employeeActive = "A-Active"

// IdentityStore is the identity repository surface for account management.
type IdentityStore interface {
	FindByUsername(ctx context.Context, username string) (*auth.Identity, error)
	Create(ctx context.Context, ident *auth.Identity) error
	UpdateStatus(ctx context.Context, username, status string) error
	Delete(ctx context.Context, username string) error
	UsernameExists(ctx context.Context, username string) (bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	EmployeeCodeExists(ctx context.Context, code string) (bool, error)
	EmployeeByCode(ctx context.Context, code string) (*auth.Employee, error)
	NextTerminal(ctx context.Context) (string, error)
}

// SessionEnder force-closes a user's sessions with an audit reason.
type SessionEnder interface {
	ForcedLogout(ctx context.Context, username, reason string) error
}

type Service struct {
	identities IdentityStore
	sessions   SessionEnder
	adminCode  string
	logger     *zap.Logger
}

func NewService(identities IdentityStore, sessions SessionEnder, adminCode string, logger *zap.Logger) *Service {
	return &Service{
		identities: identities,
		sessions:   sessions,
		adminCode:  adminCode,
		logger:     logger,
	}
}

// Register creates a new identity. The employee code must exist and be
// active in the employee master; username, email and employee code must be
// unused. Admin tier is granted only when the registration code matches.
func (s *Service) Register(ctx context.Context, req *auth.RegisterRequest) (*auth.Identity, error) {
	emp, err := s.identities.EmployeeByCode(ctx, req.EmployeeID)
	if err != nil {
		if xerrors.Is(err, xerrors.ErrNotFound) {
			return nil, fmt.Errorf("employee %q not found: %w", req.EmployeeID, xerrors.ErrInvalidInput)
		}
		return nil, err
	}
	if emp.Status != employeeActive {
		return nil, fmt.Errorf("employee %q is not active: %w", req.EmployeeID, xerrors.ErrInvalidInput)
	}

	if taken, err := s.identities.UsernameExists(ctx, req.Username); err != nil {
		return nil, err
	} else if taken {
		return nil, fmt.Errorf("username already registered: %w", xerrors.ErrConflict)
	}
	if taken, err := s.identities.EmailExists(ctx, req.Email); err != nil {
		return nil, err
	} else if taken {
		return nil, fmt.Errorf("email already registered: %w", xerrors.ErrConflict)
	}
	if taken, err := s.identities.EmployeeCodeExists(ctx, req.EmployeeID); err != nil {
		return nil, err
	} else if taken {
		return nil, fmt.Errorf("employee already registered: %w", xerrors.ErrConflict)
	}

	hash, err := password.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	terminal, err := s.identities.NextTerminal(ctx)
	if err != nil {
		return nil, err
	}

	tier := appjwt.TierUser
	if s.adminCode != "" && req.AdminCode == s.adminCode {
		tier = appjwt.TierAdmin
	}

	ident := &auth.Identity{
		Username:     strings.ToLower(req.Username),
		Password:     hash,
		EmployeeName: emp.Name,
		Email:        strings.ToLower(req.Email),
		Mobile:       req.Mobile,
		BusinessID:   req.BusinessID,
		EmployeeCode: req.EmployeeID,
		Terminal:     terminal,
		Tier:         tier,
		Status:       auth.StatusActive,
		AcCode:       req.AcCode,
	}

	if err := s.identities.Create(ctx, ident); err != nil {
		return nil, err
	}

	s.logger.Info("user registered",
		zap.String("username", ident.Username),
		zap.String("terminal", ident.Terminal),
		zap.String("tier", ident.Tier))
	return ident, nil
}

// UpdateStatus flips an identity's status. Deactivation force-closes any
// live session so the change takes effect immediately, not at token expiry.
func (s *Service) UpdateStatus(ctx context.Context, username, status string) error {
	if status != auth.StatusActive && status != auth.StatusInactive {
		return fmt.Errorf("invalid status %q: %w", status, xerrors.ErrInvalidInput)
	}

	if err := s.identities.UpdateStatus(ctx, username, status); err != nil {
		return err
	}

	if status == auth.StatusInactive {
		if err := s.sessions.ForcedLogout(ctx, username, auth.ReasonStatusInactive); err != nil {
			s.logger.Error("failed to close sessions on deactivation",
				zap.String("username", username), zap.Error(err))
		}
	}

	s.logger.Info("user status updated", zap.String("username", username), zap.String("status", status))
	return nil
}

// Delete removes the identity after force-closing its sessions, so the
// audit trail records why the session ended before the user row disappears.
func (s *Service) Delete(ctx context.Context, username string) error {
	if _, err := s.identities.FindByUsername(ctx, username); err != nil {
		return err
	}

	if err := s.sessions.ForcedLogout(ctx, username, auth.ReasonUserDeleted); err != nil {
		s.logger.Error("failed to close sessions on deletion",
			zap.String("username", username), zap.Error(err))
	}

	if err := s.identities.Delete(ctx, username); err != nil {
		return err
	}

	s.logger.Info("user deleted", zap.String("username", username))
	return nil
}
