package lock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLocker(t *testing.T) (*RedisLocker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisLocker(client, Options{TTL: 5 * time.Second}), mr
}

func TestRedisLocker_WithContractorLock(t *testing.T) {
	locker, mr := setupLocker(t)

	called := false
	err := locker.WithContractorLock(context.Background(), 7, func(ctx context.Context) error {
		called = true
		assert.True(t, mr.Exists("lock:contractor:7"))
		return nil
	})

	require.NoError(t, err)
	assert.True(t, called)
	assert.False(t, mr.Exists("lock:contractor:7"))
}

func TestRedisLocker_HeldLockIsNotAcquired(t *testing.T) {
	locker, mr := setupLocker(t)
	require.NoError(t, mr.Set("lock:contractor:7", "other-token"))

	err := locker.WithContractorLock(context.Background(), 7, func(ctx context.Context) error {
		t.Fatal("fn must not run without the lock")
		return nil
	})

	assert.ErrorIs(t, err, ErrLockNotAcquired)

	// чужой токен не снимается
	val, getErr := mr.Get("lock:contractor:7")
	require.NoError(t, getErr)
	assert.Equal(t, "other-token", val)
}

func TestRedisLocker_ReleasesOnError(t *testing.T) {
	locker, mr := setupLocker(t)
	boom := errors.New("boom")

	err := locker.WithContractorLock(context.Background(), 3, func(ctx context.Context) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("lock:contractor:3"))
}

func TestRedisLocker_WithContractorsLock(t *testing.T) {
	locker, mr := setupLocker(t)

	err := locker.WithContractorsLock(context.Background(), []int64{9, 2, 9, 5}, func(ctx context.Context) error {
		assert.True(t, mr.Exists("lock:contractor:2"))
		assert.True(t, mr.Exists("lock:contractor:5"))
		assert.True(t, mr.Exists("lock:contractor:9"))
		return nil
	})

	require.NoError(t, err)
	assert.Empty(t, mr.Keys())
}
