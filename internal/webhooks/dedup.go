package webhooks

import (
	"context"
	"time"

	"ringr-platform/pkg/utils"

	"github.com/redis/go-redis/v9"
)

// Guard is a fast-path dedup for webhook deliveries, keyed per
// (organization, external call id, event type). It short-circuits identical
// replays before they reach persistence; the authoritative at-most-once
// guarantees live in the database (status-guarded updates, the usage
// ledger's conflict target).
type Guard interface {
	Claim(ctx context.Context, key string) (bool, error)
	// Release undoes a claim when downstream processing failed, so the
	// provider's retry is not rejected as a duplicate.
	Release(ctx context.Context, key string)
}

// RedisGuard claims delivery keys in Redis with a TTL. A crashed process
// leaks the claim for at most the TTL, after which the provider retry goes
// through.
type RedisGuard struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisGuard(rdb *redis.Client, ttl time.Duration) *RedisGuard {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisGuard{rdb: rdb, ttl: ttl}
}

func (g *RedisGuard) Claim(ctx context.Context, key string) (bool, error) {
	return utils.ClaimOnce(ctx, g.rdb, "webhook:dedup:"+key, g.ttl)
}

func (g *RedisGuard) Release(ctx context.Context, key string) {
	// Best-effort: a failed release only delays the retry by the TTL.
	_ = utils.ReleaseClaim(ctx, g.rdb, "webhook:dedup:"+key)
}

// NoopGuard accepts every delivery. Used when Redis is not configured and in
// tests; the database guards still hold.
type NoopGuard struct{}

func (NoopGuard) Claim(ctx context.Context, key string) (bool, error) { return true, nil }
func (NoopGuard) Release(ctx context.Context, key string)             {}
