package lock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLocker(t *testing.T, wait, lease time.Duration) (*Locker, *redis.Client) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewLocker(rdb, wait, lease), rdb
}

func TestWithLock_MutualExclusion(t *testing.T) {
	locker, _ := setupLocker(t, 5*time.Second, 30*time.Second)
	ctx := context.Background()

	var inside, maxInside int
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := locker.WithLock(ctx, StatusKey(1), func() error {
				mu.Lock()
				inside++
				if inside > maxInside {
					maxInside = inside
				}
				mu.Unlock()

				time.Sleep(10 * time.Millisecond)

				mu.Lock()
				inside--
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInside, "lock holders must serialize")
}

func TestWithLock_DifferentKeysDoNotContend(t *testing.T) {
	locker, _ := setupLocker(t, 100*time.Millisecond, time.Second)
	ctx := context.Background()

	err := locker.WithLock(ctx, StatusKey(1), func() error {
		// A different status acquires immediately while we hold ours.
		return locker.WithLock(ctx, StatusKey(2), func() error { return nil })
	})
	require.NoError(t, err)
}

func TestWithLock_AcquireTimeout(t *testing.T) {
	locker, rdb := setupLocker(t, 150*time.Millisecond, 30*time.Second)
	ctx := context.Background()

	require.NoError(t, rdb.Set(ctx, StatusKey(7), "someone-else", time.Minute).Err())

	err := locker.WithLock(ctx, StatusKey(7), func() error {
		t.Fatal("must not run while the lock is held elsewhere")
		return nil
	})
	assert.ErrorIs(t, err, ErrAcquireTimeout)
}

func TestWithLock_ReleasedOnError(t *testing.T) {
	locker, _ := setupLocker(t, 100*time.Millisecond, 30*time.Second)
	ctx := context.Background()

	boom := errors.New("boom")
	err := locker.WithLock(ctx, StatusKey(3), func() error { return boom })
	assert.ErrorIs(t, err, boom)

	// The failed attempt must not leave the lock behind.
	err = locker.WithLock(ctx, StatusKey(3), func() error { return nil })
	assert.NoError(t, err)
}

func TestWithLock_DoesNotReleaseForeignToken(t *testing.T) {
	locker, rdb := setupLocker(t, 100*time.Millisecond, 30*time.Second)
	ctx := context.Background()

	require.NoError(t, locker.WithLock(ctx, StatusKey(4), func() error { return nil }))

	// Simulate another holder acquiring after our release; our stale release
	// path must not delete their token.
	require.NoError(t, rdb.Set(ctx, StatusKey(4), "other-holder", time.Minute).Err())
	locker.release(StatusKey(4), "our-old-token")

	val, err := rdb.Get(ctx, StatusKey(4)).Result()
	require.NoError(t, err)
	assert.Equal(t, "other-holder", val)
}
