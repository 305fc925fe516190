package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"

	"github.com/pscheid92/founderswall/internal/adapter/redis"
	"github.com/pscheid92/founderswall/internal/domain"
	"github.com/pscheid92/founderswall/internal/period"
)

const redisTimeout = 10 * time.Second

// Invalidator broadcasts cache keys to every running server.
type Invalidator interface {
	Invalidate(ctx context.Context, redisURL string, keys ...string) error
}

type redisInvalidator struct{}

func (redisInvalidator) Invalidate(ctx context.Context, redisURL string, keys ...string) error {
	client, err := redis.NewClient(ctx, redisURL)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()
	return redis.NewInvalidationPublisher(client).Publish(ctx, keys...)
}

func newCacheCommand(clock clockwork.Clock, inv Invalidator) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the servers' in-process read caches",
	}

	var (
		redisURL string
		dryRun   bool
	)
	invalidate := &cobra.Command{
		Use:   "invalidate [key]...",
		Short: "Drop cached entries on every server",
		Long: "Publish cache keys on the invalidation channel. Without keys, the current\n" +
			"launch board and the wall stats are invalidated.",
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := args
			if len(keys) == 0 {
				keys = []string{
					domain.LaunchBoardKey(period.Current(clock.Now()).Key()),
					domain.CacheKeyStats,
				}
			}

			if dryRun {
				for _, k := range keys {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "would invalidate %s\n", k)
				}
				return nil
			}
			if redisURL == "" {
				return errors.New("redis URL required (--redis-url or REDIS_URL)")
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), redisTimeout)
			defer cancel()
			if err := inv.Invalidate(ctx, redisURL, keys...); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "invalidated %d key(s)\n", len(keys))
			return nil
		},
	}
	invalidate.Flags().StringVar(&redisURL, "redis-url", envOr("REDIS_URL", ""), "Redis connection URL")
	invalidate.Flags().BoolVar(&dryRun, "dry-run", false, "Print the keys without publishing")

	cmd.AddCommand(invalidate)
	return cmd
}
