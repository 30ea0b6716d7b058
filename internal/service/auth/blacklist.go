// internal/service/auth/blacklist.go
package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// BlacklistStore is the durable side of the token blacklist.
type BlacklistStore interface {
	Insert(ctx context.Context, token string, at time.Time) error
	Exists(ctx context.Context, token string) (bool, error)
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Blacklist fronts the database blacklist with a redis cache. The database
// is the source of truth; cache failures degrade to database-only lookups
// and are logged, never surfaced.
type Blacklist struct {
	store     BlacklistStore
	cache     *redis.Client
	retention time.Duration
	logger    *zap.Logger
}

// NewBlacklist builds the facade. retention should cover the refresh token
// lifetime: entries older than that gate nothing, since the token has
// expired by signature.
func NewBlacklist(store BlacklistStore, cache *redis.Client, retention time.Duration, logger *zap.Logger) *Blacklist {
	return &Blacklist{store: store, cache: cache, retention: retention, logger: logger}
}

func cacheKey(token string) string {
	return "blacklist:" + token
}

// Revoke records the tokens as revoked. Idempotent; empty tokens are
// skipped.
func (b *Blacklist) Revoke(ctx context.Context, tokens ...string) error {
	now := time.Now()
	for _, token := range tokens {
		if token == "" {
			continue
		}
		if err := b.store.Insert(ctx, token, now); err != nil {
			return fmt.Errorf("failed to revoke token: %w", err)
		}
		if b.cache != nil {
			if err := b.cache.Set(ctx, cacheKey(token), "1", b.retention).Err(); err != nil {
				b.logger.Warn("blacklist cache set failed", zap.Error(err))
			}
		}
	}
	return nil
}

// IsRevoked checks the cache first and falls back to the database,
// backfilling the cache on a hit. Each database check opportunistically
// sweeps entries past the retention window; housekeeping only, so a failed
// sweep never fails the check.
func (b *Blacklist) IsRevoked(ctx context.Context, token string) (bool, error) {
	if b.cache != nil {
		n, err := b.cache.Exists(ctx, cacheKey(token)).Result()
		if err != nil {
			b.logger.Warn("blacklist cache lookup failed", zap.Error(err))
		} else if n > 0 {
			return true, nil
		}
	}

	if _, err := b.Purge(ctx); err != nil {
		b.logger.Warn("blacklist purge failed", zap.Error(err))
	}

	revoked, err := b.store.Exists(ctx, token)
	if err != nil {
		return false, err
	}
	if revoked && b.cache != nil {
		if err := b.cache.Set(ctx, cacheKey(token), "1", b.retention).Err(); err != nil {
			b.logger.Warn("blacklist cache backfill failed", zap.Error(err))
		}
	}
	return revoked, nil
}

// Purge drops database entries past the retention window.
func (b *Blacklist) Purge(ctx context.Context) (int64, error) {
	n, err := b.store.PurgeBefore(ctx, time.Now().Add(-b.retention))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		b.logger.Info("purged expired blacklist entries", zap.Int64("count", n))
	}
	return n, nil
}
