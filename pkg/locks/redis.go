package locks

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	lockKeyPrefix = "dealflow:lock:deal:"
	lockLease     = 30 * time.Second
	retryInterval = 100 * time.Millisecond
)

// releaseScript deletes the lock only when the stored token matches, so
// a holder whose lease expired cannot release a lock re-acquired by
// someone else.
const releaseScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

// RedisLocker serializes deal mutations across processes using a
// SET NX lease per deal id.
type RedisLocker struct {
	client *redis.Client
}

// NewRedisLocker creates a Redis-backed deal locker from a redis:// URL.
func NewRedisLocker(redisURL string) (*RedisLocker, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	return &RedisLocker{client: redis.NewClient(opts)}, nil
}

// Acquire polls SET NX until the lock is obtained or the context ends.
func (l *RedisLocker) Acquire(ctx context.Context, dealID string) (func(), error) {
	key := lockKeyPrefix + dealID
	token := uuid.New().String()

	for {
		ok, err := l.client.SetNX(ctx, key, token, lockLease).Result()
		if err != nil {
			return nil, fmt.Errorf("failed to acquire lock for deal %s: %w", dealID, err)
		}

		if ok {
			return func() {
				// Release with a fresh context: the caller's context may
				// already be cancelled when the deferred release runs.
				releaseCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()

				l.client.Eval(releaseCtx, releaseScript, []string{key}, token)
			}, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: deal %s: %w", ErrLockNotAcquired, dealID, ctx.Err())
		case <-time.After(retryInterval):
		}
	}
}

// Close releases the underlying Redis connection.
func (l *RedisLocker) Close() error {
	return l.client.Close()
}
