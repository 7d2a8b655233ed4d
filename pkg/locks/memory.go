package locks

import (
	"context"
	"sync"
)

// MemoryLocker serializes deal mutations within a single process. It is
// the default when no Redis URL is configured and the right choice for
// single-instance deployments and tests.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewMemoryLocker creates an in-process deal locker.
func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[string]*sync.Mutex)}
}

// Acquire blocks until the deal's lock is free or the context ends.
func (l *MemoryLocker) Acquire(ctx context.Context, dealID string) (func(), error) {
	l.mu.Lock()
	lock, ok := l.locks[dealID]

	if !ok {
		lock = &sync.Mutex{}
		l.locks[dealID] = lock
	}
	l.mu.Unlock()

	acquired := make(chan struct{})

	go func() {
		lock.Lock()
		close(acquired)
	}()

	select {
	case <-acquired:
		return lock.Unlock, nil
	case <-ctx.Done():
		// The goroutine may still grab the lock later; release it so
		// other waiters are not blocked forever.
		go func() {
			<-acquired
			lock.Unlock()
		}()

		return nil, ctx.Err()
	}
}
