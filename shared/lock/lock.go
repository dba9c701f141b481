package lock

//go:generate go run go.uber.org/mock/mockgen -source=./lock.go -destination=./mocks/lock_mock.go -package=mocks

import (
	"context"
	"courtpay/infras/otel"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	otelScopeName        = "lock"
	otelLockKeyAttribute = "lock.key"
	keyPrefix            = "lock:"
	retryInterval        = 50 * time.Millisecond
)

var ErrLockNotAcquired = errors.New("lock not acquired")

// releaseScript deletes the key only while it still holds our token, so an
// expired lock taken over by another holder is never released by us.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type ReleaseFunc func(ctx context.Context) error

type Locker interface {
	// Acquire blocks until the lock is held, ctx is done or the wait budget is spent.
	Acquire(ctx context.Context, key string) (ReleaseFunc, error)
}

type redisLocker struct {
	client *redis.Client
	otel   otel.Otel
	ttl    time.Duration
	wait   time.Duration
}

func NewRedisLocker(client *redis.Client, ot otel.Otel, ttl, wait time.Duration) Locker {
	return &redisLocker{
		client: client,
		otel:   ot,
		ttl:    ttl,
		wait:   wait,
	}
}

func (l *redisLocker) Acquire(ctx context.Context, key string) (release ReleaseFunc, err error) {
	ctx, scope := l.otel.NewScope(ctx, otelScopeName, otelScopeName+".Acquire")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	key = keyPrefix + key
	token := uuid.NewString()
	deadline := time.Now().Add(l.wait)

	scope.SetAttribute(otelLockKeyAttribute, key)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			log.Error().Err(err).Str("key", key).Msg("failed to acquire lock")

			return nil, fmt.Errorf("failed to acquire lock %s: %w", key, err)
		}

		if ok {
			return l.releaser(key, token), nil
		}

		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s", ErrLockNotAcquired, key)
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %s: %w", ErrLockNotAcquired, key, ctx.Err())
		case <-time.After(retryInterval):
		}
	}
}

func (l *redisLocker) releaser(key, token string) ReleaseFunc {
	return func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			log.Error().Err(err).Str("key", key).Msg("failed to release lock")

			return fmt.Errorf("failed to release lock %s: %w", key, err)
		}

		return nil
	}
}
