package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pscheid92/founderswall/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

// DefaultIdempotencyTTL is how long a claimed request key is remembered.
const DefaultIdempotencyTTL = 10 * time.Minute

// IdempotencyGuard remembers request keys with SET NX so that a retried
// request is applied at most once per TTL.
type IdempotencyGuard struct {
	rdb *goredis.Client
	ttl time.Duration
}

var _ domain.IdempotencyGuard = (*IdempotencyGuard)(nil)

func NewIdempotencyGuard(rdb *goredis.Client, ttl time.Duration) *IdempotencyGuard {
	if ttl <= 0 {
		ttl = DefaultIdempotencyTTL
	}
	return &IdempotencyGuard{rdb: rdb, ttl: ttl}
}

// Claim returns true for the first caller of key and false for every repeat
// until the key expires.
func (g *IdempotencyGuard) Claim(ctx context.Context, key string) (bool, error) {
	args := goredis.SetArgs{TTL: g.ttl, Mode: "NX"}
	_, err := g.rdb.SetArgs(ctx, idempotencyKey(key), "1", args).Result()
	if errors.Is(err, goredis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to claim idempotency key: %w", err)
	}
	return true, nil
}

// Release deletes a claimed key. Releasing an unknown key is not an error.
func (g *IdempotencyGuard) Release(ctx context.Context, key string) error {
	if err := g.rdb.Del(ctx, idempotencyKey(key)).Err(); err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}

func idempotencyKey(key string) string {
	return "idem:" + key
}
