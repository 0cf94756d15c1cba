package lock

import (
	"context"
	"sync"
)

type slot struct {
	ch   chan struct{}
	refs int
}

// LocalLock serializes callers per key inside one process. Slots are
// dropped once nobody holds or waits on them.
type LocalLock struct {
	mu    sync.Mutex
	slots map[string]*slot
}

func NewLocalLock() *LocalLock {
	return &LocalLock{slots: make(map[string]*slot)}
}

func (l *LocalLock) Lock(ctx context.Context, key string) (func(context.Context) error, error) {
	if key == "" {
		return nil, ErrInvalidLockKey
	}

	s := l.acquireSlot(key)
	select {
	case s.ch <- struct{}{}:
	case <-ctx.Done():
		l.releaseSlot(key, s)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func(context.Context) error {
		once.Do(func() {
			<-s.ch
			l.releaseSlot(key, s)
		})
		return nil
	}, nil
}

func (l *LocalLock) acquireSlot(key string) *slot {
	l.mu.Lock()
	defer l.mu.Unlock()
	s, ok := l.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		l.slots[key] = s
	}
	s.refs++
	return s
}

func (l *LocalLock) releaseSlot(key string, s *slot) {
	l.mu.Lock()
	defer l.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(l.slots, key)
	}
}
