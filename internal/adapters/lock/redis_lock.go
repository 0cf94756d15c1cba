package lock

import (
	"context"
	"errors"

	"github.com/go-redsync/redsync/v4"
	"github.com/go-redsync/redsync/v4/redis/goredis/v9"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "fxconvert:lock:"

// RedisLock serializes callers per key across every process sharing the
// Redis instance.
type RedisLock struct {
	rs   *redsync.Redsync
	opts Options
}

func NewRedisLock(client redis.UniversalClient, opts Options) *RedisLock {
	return &RedisLock{rs: redsync.New(goredis.NewPool(client)), opts: opts}
}

func (l *RedisLock) Lock(ctx context.Context, key string) (func(context.Context) error, error) {
	if key == "" {
		return nil, ErrInvalidLockKey
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	mutex := l.rs.NewMutex(keyPrefix+key,
		redsync.WithExpiry(l.opts.Expiry),
		redsync.WithRetryDelay(l.opts.RetryDelay),
		redsync.WithTries(l.opts.Retries),
	)
	if err := mutex.LockContext(ctx); err != nil {
		var errTaken *redsync.ErrTaken
		if errors.As(err, &errTaken) || errors.Is(err, redsync.ErrFailed) {
			return nil, ErrLockNotAcquired
		}
		return nil, err
	}

	return unlockFunc(mutex), nil
}

func unlockFunc(mutex *redsync.Mutex) func(context.Context) error {
	return func(ctx context.Context) error {
		ok, err := mutex.UnlockContext(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("failed to unlock " + mutex.Name())
		}
		return nil
	}
}
