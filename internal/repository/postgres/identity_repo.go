// internal/repository/postgres/identity_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/basharmd94/orderapp-sub000/internal/domain/auth"
	xerrors "github.com/basharmd94/orderapp-sub000/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the PostgreSQL error code for duplicate keys.
const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

type IdentityRepository struct {
	pool *pgxpool.Pool
}

func NewIdentityRepository(pool *pgxpool.Pool) *IdentityRepository {
	return &IdentityRepository{pool: pool}
}

const identityColumns = `
	id, username, password, employee_name, email, mobile,
	business_id, employee_code, terminal, tier, status, accode`

func scanIdentity(row pgx.Row) (*auth.Identity, error) {
	var ident auth.Identity
	err := row.Scan(
		&ident.ID, &ident.Username, &ident.Password, &ident.EmployeeName,
		&ident.Email, &ident.Mobile, &ident.BusinessID, &ident.EmployeeCode,
		&ident.Terminal, &ident.Tier, &ident.Status, &ident.AcCode,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan identity: %w", err)
	}
	return &ident, nil
}

// FindByUsername retrieves an identity by its unique handle.
func (r *IdentityRepository) FindByUsername(ctx context.Context, username string) (*auth.Identity, error) {
	query := `SELECT ` + identityColumns + ` FROM api_users WHERE username = $1`
	return scanIdentity(r.pool.QueryRow(ctx, query, username))
}

// Create inserts a new identity. Duplicate username, email or employee code
// surfaces as ErrConflict.
func (r *IdentityRepository) Create(ctx context.Context, ident *auth.Identity) error {
	query := `
		INSERT INTO api_users (
			username, password, employee_name, email, mobile,
			business_id, employee_code, terminal, tier, status, accode
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		ident.Username, ident.Password, ident.EmployeeName, ident.Email,
		ident.Mobile, ident.BusinessID, ident.EmployeeCode, ident.Terminal,
		ident.Tier, ident.Status, ident.AcCode,
	).Scan(&ident.ID)

	if isUniqueViolation(err) {
		return xerrors.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to create identity: %w", err)
	}
	return nil
}

// UpdateStatus flips the identity's status.
func (r *IdentityRepository) UpdateStatus(ctx context.Context, username, status string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE api_users SET status = $1 WHERE username = $2`, status, username)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// Delete removes the identity row. Role assignments cascade via the
// user_role foreign key.
func (r *IdentityRepository) Delete(ctx context.Context, username string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM api_users WHERE username = $1`, username)
	if err != nil {
		return fmt.Errorf("failed to delete identity: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// UsernameExists reports whether the handle is already taken.
func (r *IdentityRepository) UsernameExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM api_users WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check username: %w", err)
	}
	return exists, nil
}

func (r *IdentityRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM api_users WHERE LOWER(email) = LOWER($1))`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

func (r *IdentityRepository) EmployeeCodeExists(ctx context.Context, code string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM api_users WHERE employee_code = $1)`, code).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check employee code: %w", err)
	}
	return exists, nil
}

// EmployeeByCode looks up the employee master row backing a registration.
func (r *IdentityRepository) EmployeeByCode(ctx context.Context, code string) (*auth.Employee, error) {
	var emp auth.Employee
	err := r.pool.QueryRow(ctx,
		`SELECT zid, xemp, xname, xstatusemp FROM prmst WHERE xemp = $1`, code).
		Scan(&emp.BusinessID, &emp.Code, &emp.Name, &emp.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find employee: %w", err)
	}
	return &emp, nil
}

// NextTerminal allocates the next terminal number in the T<number> sequence.
func (r *IdentityRepository) NextTerminal(ctx context.Context) (string, error) {
	var max int64
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(NULLIF(regexp_replace(terminal, '\D', '', 'g'), '')::bigint), 0) FROM api_users`).
		Scan(&max)
	if err != nil {
		return "", fmt.Errorf("failed to compute next terminal: %w", err)
	}
	return fmt.Sprintf("T%04d", max+1), nil
}
