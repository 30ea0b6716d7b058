// internal/repository/postgres/attempt_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/basharmd94/orderapp-sub000/internal/domain/auth"
	xerrors "github.com/basharmd94/orderapp-sub000/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LoginAttemptRepository struct {
	pool *pgxpool.Pool
}

func NewLoginAttemptRepository(pool *pgxpool.Pool) *LoginAttemptRepository {
	return &LoginAttemptRepository{pool: pool}
}

// Find returns the attempt record for a username, or ErrNotFound.
func (r *LoginAttemptRepository) Find(ctx context.Context, username string) (*auth.LoginAttempt, error) {
	var rec auth.LoginAttempt
	err := r.pool.QueryRow(ctx, `
		SELECT username, attempt_count, attempt_time, locked_until, ip_address
		FROM login_attempts WHERE username = $1
	`, username).Scan(&rec.Username, &rec.AttemptCount, &rec.AttemptTime, &rec.LockedUntil, &rec.IPAddress)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find login attempts: %w", err)
	}
	return &rec, nil
}

// ClearLock zeroes the counter and removes the lock after the lockout window
// has elapsed.
func (r *LoginAttemptRepository) ClearLock(ctx context.Context, username string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE login_attempts SET attempt_count = 0, locked_until = NULL
		WHERE username = $1
	`, username)
	if err != nil {
		return fmt.Errorf("failed to clear lock: %w", err)
	}
	return nil
}

// RecordFailure bumps the failure counter in a single atomic upsert so
// concurrent failed logins cannot race the read-modify-write. The lock
// engages in the same statement once the counter reaches maxAttempts.
func (r *LoginAttemptRepository) RecordFailure(ctx context.Context, username, ip string, maxAttempts int, lockout time.Duration) (*auth.LoginAttempt, error) {
	lockUntil := time.Now().Add(lockout)

	var rec auth.LoginAttempt
	err := r.pool.QueryRow(ctx, `
		INSERT INTO login_attempts (username, attempt_count, attempt_time, ip_address, locked_until)
		VALUES ($1, 1, now(), $2, CASE WHEN 1 >= $3 THEN $4::timestamptz ELSE NULL END)
		ON CONFLICT (username) DO UPDATE SET
			attempt_count = login_attempts.attempt_count + 1,
			attempt_time  = now(),
			ip_address    = EXCLUDED.ip_address,
			locked_until  = CASE WHEN login_attempts.attempt_count + 1 >= $3
			                     THEN $4::timestamptz
			                     ELSE login_attempts.locked_until END
		RETURNING username, attempt_count, attempt_time, locked_until, ip_address
	`, username, ip, maxAttempts, lockUntil).
		Scan(&rec.Username, &rec.AttemptCount, &rec.AttemptTime, &rec.LockedUntil, &rec.IPAddress)

	if err != nil {
		return nil, fmt.Errorf("failed to record login failure: %w", err)
	}
	return &rec, nil
}

// Reset deletes the record entirely; called only after a verified login.
func (r *LoginAttemptRepository) Reset(ctx context.Context, username string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM login_attempts WHERE username = $1`, username)
	if err != nil {
		return fmt.Errorf("failed to reset login attempts: %w", err)
	}
	return nil
}
