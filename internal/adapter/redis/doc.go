// Package redis holds the Redis-backed pieces shared by every instance:
// the idempotency guard, cache invalidation pub/sub and the client hooks
// for metrics and circuit breaking.
package redis
