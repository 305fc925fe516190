package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pscheid92/founderswall/internal/domain"
)

// WallStats serves the headline counters, cached for the cache TTL.
func (s *Service) WallStats(ctx context.Context) (domain.WallStats, error) {
	periodKey := s.CurrentPeriod().Key()

	stats, err := s.statsCache.GetOrLoad(ctx, domain.CacheKeyStats, func(ctx context.Context) (domain.WallStats, error) {
		return s.stats.WallStats(ctx, periodKey)
	})
	if err != nil {
		return domain.WallStats{}, fmt.Errorf("failed to load wall stats: %w", err)
	}
	return stats, nil
}

// invalidate drops keys locally and tells the other instances to do the same.
// Publishing is best effort; the TTL bounds staleness on instances that miss it.
func (s *Service) invalidate(ctx context.Context, keys ...string) {
	for _, key := range keys {
		s.InvalidateLocal(key)
	}

	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Publish(ctx, keys...); err != nil {
		slog.WarnContext(ctx, "Failed to publish cache invalidation", "keys", keys, "error", err)
	}
}

// InvalidateLocal drops a cache key on this instance only. The invalidation
// subscriber calls it for keys published by other instances.
func (s *Service) InvalidateLocal(key string) {
	switch {
	case key == domain.CacheKeyStats:
		s.statsCache.Invalidate(key)
	case strings.HasPrefix(key, domain.CacheKeyLaunchPrefix):
		s.boardCache.Invalidate(key)
	default:
		slog.Debug("Ignoring unknown cache key", "key", key)
	}
}
