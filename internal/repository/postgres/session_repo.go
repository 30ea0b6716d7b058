// internal/repository/postgres/session_repo.go
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

type SessionRepository struct {
	pool *pgxpool.Pool
}

func NewSessionRepository(pool *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{pool: pool}
}

const sessionColumns = `
	id, ztime, zutime, username, business_id, access_token,
	refresh_token, status, device_info, tier`

func scanSession(row pgx.Row) (*auth.Session, error) {
	var s auth.Session
	err := row.Scan(
		&s.ID, &s.CreatedAt, &s.UpdatedAt, &s.Username, &s.BusinessID,
		&s.AccessToken, &s.RefreshToken, &s.Status, &s.DeviceInfo, &s.Tier,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan session: %w", err)
	}
	return &s, nil
}

// closeLocked moves an already-locked session to history with the given
// reason, blacklists its tokens and deletes the row. Runs inside the
// caller's transaction; rollback on any failure keeps the at-most-one
// invariant intact (never zero and two sessions at once).
func closeLocked(ctx context.Context, tx pgx.Tx, s *auth.Session, reason string) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO session_history (
			username, business_id, login_time, logout_time,
			device_info, status, access_token, refresh_token, tier
		) VALUES ($1, $2, $3, now(), $4, $5, $6, $7, $8)
	`, s.Username, s.BusinessID, s.CreatedAt, s.DeviceInfo, reason, s.AccessToken, s.RefreshToken, s.Tier)
	if err != nil {
		return fmt.Errorf("failed to write session history: %w", err)
	}

	for _, token := range []string{s.AccessToken, s.RefreshToken} {
		if token == "" {
			continue
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO token_blacklist (token, blacklisted_at)
			VALUES ($1, now()) ON CONFLICT (token) DO NOTHING
		`, token)
		if err != nil {
			return fmt.Errorf("failed to blacklist token: %w", err)
		}
	}

	if _, err = tx.Exec(ctx, `DELETE FROM logged WHERE id = $1`, s.ID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// ReplaceActive atomically evicts any existing session for the username and
// creates the new one. The identity row is locked FOR UPDATE first, which
// linearizes concurrent logins for the same user: the second login waits,
// then sees the first login's session and evicts it. Returns the evicted
// session, if there was one.
func (r *SessionRepository) ReplaceActive(ctx context.Context, s *auth.Session) (*auth.Session, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var identityID int64
	err = tx.QueryRow(ctx,
		`SELECT id FROM api_users WHERE username = $1 FOR UPDATE`, s.Username).Scan(&identityID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock identity: %w", err)
	}

	evicted, err := scanSession(tx.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM logged WHERE username = $1 FOR UPDATE`, s.Username))
	if err != nil && !errors.Is(err, xerrors.ErrNotFound) {
		return nil, err
	}

	if evicted != nil {
		if err := closeLocked(ctx, tx, evicted, auth.ReasonForcedLogout); err != nil {
			return nil, err
		}
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO logged (username, business_id, access_token, refresh_token, status, device_info, tier)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, ztime, zutime
	`, s.Username, s.BusinessID, s.AccessToken, s.RefreshToken, s.Status, s.DeviceInfo, s.Tier).
		Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit session replace: %w", err)
	}
	return evicted, nil
}

// FindByUsernameAndToken locates the session matching both the username and
// the presented access token.
func (r *SessionRepository) FindByUsernameAndToken(ctx context.Context, username, accessToken string) (*auth.Session, error) {
	return scanSession(r.pool.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM logged WHERE username = $1 AND access_token = $2`,
		username, accessToken))
}

// ListByUsername returns the active sessions for a user. With the
// at-most-one invariant this is zero or one row, but the audit endpoint
// keeps the list shape.
func (r *SessionRepository) ListByUsername(ctx context.Context, username string) ([]*auth.Session, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+sessionColumns+` FROM logged WHERE username = $1 ORDER BY ztime`, username)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*auth.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// Close destroys one session by id, writing its history row with the given
// reason. ErrNotFound when the session is already gone.
func (r *SessionRepository) Close(ctx context.Context, sessionID int64, reason string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	s, err := scanSession(tx.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM logged WHERE id = $1 FOR UPDATE`, sessionID))
	if err != nil {
		return err
	}

	if err := closeLocked(ctx, tx, s, reason); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit session close: %w", err)
	}
	return nil
}

// CloseAll destroys every session for a username (except the one holding
// exceptToken when non-empty) and returns the closed sessions. Absence of
// sessions is not an error.
func (r *SessionRepository) CloseAll(ctx context.Context, username, reason, exceptToken string) ([]*auth.Session, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `SELECT ` + sessionColumns + ` FROM logged WHERE username = $1`
	args := []interface{}{username}
	if exceptToken != "" {
		query += ` AND access_token <> $2`
		args = append(args, exceptToken)
	}
	query += ` FOR UPDATE`

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select sessions: %w", err)
	}

	var sessions []*auth.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		sessions = append(sessions, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sessions: %w", err)
	}

	for _, s := range sessions {
		if err := closeLocked(ctx, tx, s, reason); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit close all: %w", err)
	}
	return sessions, nil
}

// touchActivity bumps zutime; used by the validation path to keep the
// session's last-activity current.
func (r *SessionRepository) TouchActivity(ctx context.Context, sessionID int64) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE logged SET zutime = $1 WHERE id = $2`, time.Now(), sessionID)
	return err
}
