package lock

import (
	"errors"
	"time"
)

var (
	ErrInvalidLockKey  = errors.New("invalid lock key")
	ErrLockNotAcquired = errors.New("lock not acquired")
)

type Options struct {
	Expiry     time.Duration
	RetryDelay time.Duration
	Retries    int
}

func DefaultOptions() Options {
	return Options{
		Expiry:     8 * time.Second,
		RetryDelay: 50 * time.Millisecond,
		Retries:    32,
	}
}
