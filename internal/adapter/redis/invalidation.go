package redis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pscheid92/founderswall/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

const invalidationChannel = "cache:invalidate"

// InvalidationPublisher broadcasts cache keys to every instance.
type InvalidationPublisher struct {
	rdb *goredis.Client
}

var _ domain.CacheInvalidator = (*InvalidationPublisher)(nil)

func NewInvalidationPublisher(rdb *goredis.Client) *InvalidationPublisher {
	return &InvalidationPublisher{rdb: rdb}
}

// Publish sends one message per key in a single pipeline.
func (p *InvalidationPublisher) Publish(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	_, err := p.rdb.Pipelined(ctx, func(pipe goredis.Pipeliner) error {
		for _, key := range keys {
			pipe.Publish(ctx, invalidationChannel, key)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to publish cache invalidation: %w", err)
	}
	return nil
}

// InvalidationSubscriber applies keys published by any instance to the local caches.
type InvalidationSubscriber struct {
	rdb        *goredis.Client
	invalidate func(key string)
}

func NewInvalidationSubscriber(rdb *goredis.Client, invalidate func(key string)) *InvalidationSubscriber {
	return &InvalidationSubscriber{rdb: rdb, invalidate: invalidate}
}

// Start blocks until ctx is cancelled or the subscription channel closes.
// The ready channel, when non-nil, is closed once the subscription is confirmed.
func (s *InvalidationSubscriber) Start(ctx context.Context, ready chan<- struct{}) {
	pubsub := s.rdb.Subscribe(ctx, invalidationChannel)
	defer func() { _ = pubsub.Close() }()

	if _, err := pubsub.Receive(ctx); err != nil {
		slog.Error("Failed to subscribe to cache invalidations", "error", err)
		return
	}
	if ready != nil {
		close(ready)
	}

	ch := pubsub.Channel()
	for {
		select {
		case msg, ok := <-ch:
			if !ok || msg == nil {
				return
			}
			s.handleInvalidation(msg.Payload)
		case <-ctx.Done():
			return
		}
	}
}

func (s *InvalidationSubscriber) handleInvalidation(key string) {
	if key == "" {
		slog.Warn("Empty cache invalidation message")
		return
	}
	s.invalidate(key)
	slog.Debug("Cache invalidated via pub/sub", "key", key)
}
