// Package cache provides a small in-memory TTL cache for read paths that are safe to
// serve slightly stale. It is never a source of truth: an empty cache is always valid.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/singleflight"
)

// DefaultTTL is how long an entry is served before it counts as a miss.
const DefaultTTL = 30 * time.Second

// Recorder observes cache traffic. Implementations must be safe for concurrent use.
type Recorder interface {
	CacheHit(name string)
	CacheMiss(name string)
	CacheInvalidated(name string)
}

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// TTL is a concurrency-safe key/value cache with a fixed time-to-live.
// Expired entries are ignored on Get and replaced by the next Set; nothing is evicted
// in the background.
type TTL[V any] struct {
	mu      sync.RWMutex
	entries map[string]entry[V]
	ttl     time.Duration
	clock   clockwork.Clock

	// gen advances on every Invalidate and Clear. A load that overlaps a
	// change is returned to its callers but not stored.
	gen uint64

	name     string
	recorder Recorder
	group    singleflight.Group
}

func New[V any](ttl time.Duration, clock clockwork.Clock) *TTL[V] {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &TTL[V]{
		entries: make(map[string]entry[V]),
		ttl:     ttl,
		clock:   clock,
	}
}

// WithRecorder attaches a metrics recorder under name. Call before first use.
func (c *TTL[V]) WithRecorder(name string, r Recorder) *TTL[V] {
	c.name = name
	c.recorder = r
	return c
}

// Get returns the value for key if it was set less than TTL ago.
func (c *TTL[V]) Get(key string) (V, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok || c.clock.Since(e.storedAt) > c.ttl {
		c.observe(Recorder.CacheMiss)
		var zero V
		return zero, false
	}

	c.observe(Recorder.CacheHit)
	return e.value, true
}

func (c *TTL[V]) Set(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, storedAt: c.clock.Now()}
}

func (c *TTL[V]) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.gen++
	c.mu.Unlock()
	c.group.Forget(key)

	c.observe(Recorder.CacheInvalidated)
}

func (c *TTL[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[V])
	c.gen++
}

// Size counts entries including expired ones.
func (c *TTL[V]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// GetOrLoad serves key from the cache or calls load and stores its result.
// Concurrent misses for the same key share one load. Load errors are not cached,
// and neither is a result whose load was overtaken by an invalidation.
func (c *TTL[V]) GetOrLoad(ctx context.Context, key string, load func(ctx context.Context) (V, error)) (V, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	res, err, _ := c.group.Do(key, func() (any, error) {
		c.mu.RLock()
		gen := c.gen
		c.mu.RUnlock()

		v, err := load(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		if c.gen == gen {
			c.entries[key] = entry[V]{value: v, storedAt: c.clock.Now()}
		}
		c.mu.Unlock()
		return v, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return res.(V), nil
}

func (c *TTL[V]) observe(fn func(Recorder, string)) {
	if c.recorder != nil {
		fn(c.recorder, c.name)
	}
}
