// internal/repository/postgres/blacklist_repo.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type BlacklistRepository struct {
	pool *pgxpool.Pool
}

func NewBlacklistRepository(pool *pgxpool.Pool) *BlacklistRepository {
	return &BlacklistRepository{pool: pool}
}

// Insert records a revoked token. Idempotent: revoking an already-revoked
// token is a no-op, not an error.
func (r *BlacklistRepository) Insert(ctx context.Context, token string, at time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO token_blacklist (token, blacklisted_at)
		VALUES ($1, $2) ON CONFLICT (token) DO NOTHING
	`, token, at)
	if err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	return nil
}

func (r *BlacklistRepository) Exists(ctx context.Context, token string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM token_blacklist WHERE token = $1)`, token).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check blacklist: %w", err)
	}
	return exists, nil
}

// PurgeBefore drops entries revoked before the cutoff. Housekeeping only:
// tokens that old have expired by signature anyway.
func (r *BlacklistRepository) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM token_blacklist WHERE blacklisted_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to purge blacklist: %w", err)
	}
	return tag.RowsAffected(), nil
}
