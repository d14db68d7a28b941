package storage

import (
	"context"
	"time"

	"github.com/hireflow/onboarding/internal/redisclient"
)

// RedisLocker hands out short-lived per-candidate leases so overlapping
// ticks skip a candidate whose pipeline is still running. The lease is
// advisory: the reminder claim in the record store stays the real
// serialization point.
type RedisLocker struct {
	redis *redisclient.Client
}

// NewRedisLocker creates a locker over the traced Redis client.
func NewRedisLocker(redis *redisclient.Client) *RedisLocker {
	return &RedisLocker{redis: redis}
}

// Acquire takes the lease if it is free. The TTL bounds how long a
// crashed pipeline can block its candidate.
func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return l.redis.SetNX(ctx, key, "1", ttl).Result()
}

// Release frees the lease.
func (l *RedisLocker) Release(ctx context.Context, key string) error {
	return l.redis.Del(ctx, key).Err()
}
