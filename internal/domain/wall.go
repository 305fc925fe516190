package domain

import "context"

// WallStats are the headline counters on the wall page.
type WallStats struct {
	Makers         int `json:"makers"`
	Products       int `json:"products"`
	Launches       int `json:"launches"`
	Stories        int `json:"stories"`
	PeriodLaunches int `json:"period_launches"`
}

type StatsRepository interface {
	WallStats(ctx context.Context, periodKey string) (WallStats, error)
}

// Cache keys shared between the application and the invalidation subscriber.
const (
	CacheKeyStats        = "wall:stats"
	CacheKeyLaunchPrefix = "launches:"
)

func LaunchBoardKey(periodKey string) string {
	return CacheKeyLaunchPrefix + periodKey
}

// CacheInvalidator broadcasts invalidated cache keys to every instance.
type CacheInvalidator interface {
	Publish(ctx context.Context, keys ...string) error
}

// IdempotencyGuard claims request keys. Claim reports false when the key was seen before.
// Release forgets a claim so a failed request can be retried with the same key.
type IdempotencyGuard interface {
	Claim(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}
