package storage

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hireflow/onboarding/internal/redisclient"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupLeaseTest connects to a real Redis instance. Tests are skipped
// when REDIS_ADDR is not set.
func setupLeaseTest(t *testing.T) *RedisLocker {
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		t.Skip("Skipping lease tests: REDIS_ADDR not set")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: os.Getenv("REDIS_PASSWORD"),
	})
	require.NoError(t, client.Ping(context.Background()).Err())

	return NewRedisLocker(redisclient.NewClient(client))
}

func TestRedisLocker_AcquireRelease(t *testing.T) {
	locker := setupLeaseTest(t)
	ctx := context.Background()
	key := "onboarding:tick:" + uuid.NewString()

	acquired, err := locker.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired)

	// A second acquisition while held is refused.
	acquired, err = locker.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.False(t, acquired)

	require.NoError(t, locker.Release(ctx, key))

	acquired, err = locker.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired)

	require.NoError(t, locker.Release(ctx, key))
}

func TestRedisLocker_TTLExpiry(t *testing.T) {
	locker := setupLeaseTest(t)
	ctx := context.Background()
	key := "onboarding:tick:" + uuid.NewString()

	acquired, err := locker.Acquire(ctx, key, 100*time.Millisecond)
	require.NoError(t, err)
	require.True(t, acquired)

	time.Sleep(200 * time.Millisecond)

	// A crashed pipeline cannot hold its candidate past the TTL.
	acquired, err = locker.Acquire(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, acquired)

	require.NoError(t, locker.Release(ctx, key))
}
