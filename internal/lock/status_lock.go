package lock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrAcquireTimeout is returned when the lock could not be acquired within
// the configured wait window.
var ErrAcquireTimeout = errors.New("lock: acquire timed out")

// releaseScript deletes the key only when it still holds our token, so an
// expired lease re-acquired by someone else is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Locker provides named mutual exclusion over Redis. The lease bounds how
// long a crashed holder can starve others; the wait bounds how long one
// acquire blocks.
type Locker struct {
	rdb   *redis.Client
	wait  time.Duration
	lease time.Duration
	poll  time.Duration
}

func NewLocker(rdb *redis.Client, wait, lease time.Duration) *Locker {
	if wait <= 0 {
		wait = 5 * time.Second
	}
	if lease <= 0 {
		lease = 30 * time.Second
	}
	return &Locker{rdb: rdb, wait: wait, lease: lease, poll: 50 * time.Millisecond}
}

// StatusKey names the mutual-exclusion scope for reaction writes on one status
func StatusKey(statusID uint) string {
	return fmt.Sprintf("emoji_reaction:%d", statusID)
}

// WithLock runs fn while holding the named lock, releasing it on every exit
// path. fn's error is passed through unchanged.
func (l *Locker) WithLock(ctx context.Context, key string, fn func() error) error {
	token := uuid.New().String()
	if err := l.acquire(ctx, key, token); err != nil {
		return err
	}
	defer l.release(key, token)
	return fn()
}

func (l *Locker) acquire(ctx context.Context, key, token string) error {
	deadline := time.Now().Add(l.wait)
	for {
		ok, err := l.rdb.SetNX(ctx, key, token, l.lease).Result()
		if err != nil {
			return fmt.Errorf("lock: acquire %s: %w", key, err)
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrAcquireTimeout
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(l.poll):
		}
	}
}

func (l *Locker) release(key, token string) {
	// Release must not inherit a cancelled request context.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = releaseScript.Run(ctx, l.rdb, []string{key}, token).Err()
}
