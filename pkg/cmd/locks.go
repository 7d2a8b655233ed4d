package cmd

import (
	"fmt"

	"github.com/paddockhq/dealflow/pkg/locks"
)

// NewDealLocker creates the per-deal lock guard. With a Redis URL the
// lock is shared across processes; without one, mutations are only
// serialized within this process, which is correct for single-instance
// deployments.
func NewDealLocker(redisURL string) (locks.DealLocker, error) {
	if redisURL == "" {
		return locks.NewMemoryLocker(), nil
	}

	locker, err := locks.NewRedisLocker(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create redis deal locker: %w", err)
	}

	return locker, nil
}
