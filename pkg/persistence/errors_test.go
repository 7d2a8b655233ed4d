package persistence_test

import (
	"errors"
	"testing"

	"github.com/paddockhq/dealflow/pkg/persistence"
	"github.com/stretchr/testify/assert"
)

func TestStandardizedErrors(t *testing.T) {
	t.Parallel()

	t.Run("error constants are available", func(t *testing.T) {
		assert.NotNil(t, persistence.ErrDealNotFound)
		assert.NotNil(t, persistence.ErrDealAlreadyExists)
		assert.NotNil(t, persistence.ErrConcurrentModification)
		assert.NotNil(t, persistence.ErrInvalidDealStatus)
	})

	t.Run("error checking functions work correctly", func(t *testing.T) {
		notFoundErr := persistence.NewDealError("GetByID", "deal-123", persistence.ErrDealNotFound)
		conflictErr := persistence.NewDealError("Save", "deal-456", persistence.ErrConcurrentModification)

		assert.True(t, persistence.IsDealNotFound(notFoundErr))
		assert.True(t, persistence.IsConcurrentModification(conflictErr))

		// Test error unwrapping
		assert.True(t, errors.Is(notFoundErr, persistence.ErrDealNotFound))
		assert.True(t, errors.Is(conflictErr, persistence.ErrConcurrentModification))
	})

	t.Run("deal error contains context", func(t *testing.T) {
		err := persistence.NewDealError("SaveDeal", "deal-123", persistence.ErrConcurrentModification)

		assert.Contains(t, err.Error(), "SaveDeal")
		assert.Contains(t, err.Error(), "deal-123")
		assert.Contains(t, err.Error(), "deal modified concurrently")
	})
}
