package locks_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/paddockhq/dealflow/pkg/locks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLocker_SerializesSameDeal(t *testing.T) {
	locker := locks.NewMemoryLocker()
	ctx := context.Background()

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		active  int
		maxSeen int
	)

	for range 10 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			release, err := locker.Acquire(ctx, "deal-1")
			require.NoError(t, err)

			mu.Lock()
			active++
			if active > maxSeen {
				maxSeen = active
			}
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			active--
			mu.Unlock()

			release()
		}()
	}

	wg.Wait()
	assert.Equal(t, 1, maxSeen, "only one holder at a time per deal")
}

func TestMemoryLocker_IndependentDeals(t *testing.T) {
	locker := locks.NewMemoryLocker()
	ctx := context.Background()

	releaseA, err := locker.Acquire(ctx, "deal-a")
	require.NoError(t, err)

	defer releaseA()

	// A held lock on another deal must not block this one.
	done := make(chan struct{})

	go func() {
		releaseB, err := locker.Acquire(ctx, "deal-b")
		assert.NoError(t, err)
		releaseB()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on deal-b blocked by lock on deal-a")
	}
}

func TestMemoryLocker_ContextCancelled(t *testing.T) {
	locker := locks.NewMemoryLocker()

	release, err := locker.Acquire(context.Background(), "deal-1")
	require.NoError(t, err)

	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = locker.Acquire(ctx, "deal-1")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
