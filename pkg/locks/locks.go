// Package locks serializes mutations per deal id. Stage and status
// transitions must run one at a time for a given deal: validation and
// apply happen inside the same critical section so the state checked is
// the state mutated.
package locks

import (
	"context"
	"errors"
)

// ErrLockNotAcquired indicates another mutation currently holds the
// deal's lock; the caller should retry.
var ErrLockNotAcquired = errors.New("deal lock not acquired")

// DealLocker acquires an exclusive lock for a deal id. The returned
// release function must be called exactly once, typically deferred.
type DealLocker interface {
	Acquire(ctx context.Context, dealID string) (release func(), err error)
}
