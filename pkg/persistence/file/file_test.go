package file

import (
	"context"
	"testing"
	"time"

	"github.com/paddockhq/dealflow/pkg/models"
	"github.com/paddockhq/dealflow/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDeal(id string) *models.Deal {
	return &models.Deal{
		ID:     id,
		Type:   models.DealTypeFullSale,
		Stage:  models.StageInitiation,
		Status: models.StatusActive,
		Horse:  "horse-1",
		Owner:  "owner-1",
		Timeline: []models.TimelineEntry{
			{ID: "t-1", Type: models.EntrySystem, Date: time.Now().UTC(), Description: "Deal created"},
		},
	}
}

func TestDealRepository_SaveAndGetByID(t *testing.T) {
	tempDir := t.TempDir()
	p := NewPersistence(tempDir)
	ctx := context.Background()

	deal := newTestDeal("deal-save")
	require.NoError(t, p.SaveDeal(ctx, deal))

	loaded, err := p.DealByID(ctx, "deal-save")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, models.DealTypeFullSale, loaded.Type)
	assert.Equal(t, models.StageInitiation, loaded.Stage)
	assert.Len(t, loaded.Timeline, 1)
	assert.Equal(t, int64(1), loaded.Version, "first save bumps version to 1")
}

func TestDealRepository_GetByID_Missing(t *testing.T) {
	p := NewPersistence(t.TempDir())

	deal, err := p.DealByID(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, deal)
}

func TestDealRepository_Save_ConcurrentModification(t *testing.T) {
	p := NewPersistence(t.TempDir())
	ctx := context.Background()

	deal := newTestDeal("deal-conflict")
	require.NoError(t, p.SaveDeal(ctx, deal))

	first, err := p.DealByID(ctx, "deal-conflict")
	require.NoError(t, err)

	second, err := p.DealByID(ctx, "deal-conflict")
	require.NoError(t, err)

	first.Stage = models.StageDiscussion
	require.NoError(t, p.SaveDeal(ctx, first))

	second.Stage = models.StageDiscussion
	err = p.SaveDeal(ctx, second)
	require.Error(t, err)
	assert.True(t, persistence.IsConcurrentModification(err))
}

func TestDealRepository_List_FilterAndPaginate(t *testing.T) {
	p := NewPersistence(t.TempDir())
	ctx := context.Background()

	for _, spec := range []struct {
		id     string
		status models.DealStatus
		owner  string
	}{
		{"deal-a", models.StatusActive, "owner-1"},
		{"deal-b", models.StatusActive, "owner-2"},
		{"deal-c", models.StatusCancelled, "owner-1"},
	} {
		deal := newTestDeal(spec.id)
		deal.Status = spec.status
		deal.Owner = spec.owner
		require.NoError(t, p.SaveDeal(ctx, deal))
	}

	active := models.StatusActive

	result, err := p.ListDeals(ctx, persistence.ListDealsOptions{Status: &active})
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.TotalCount)

	result, err = p.ListDeals(ctx, persistence.ListDealsOptions{OwnerID: "owner-1"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), result.TotalCount)

	result, err = p.ListDeals(ctx, persistence.ListDealsOptions{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, result.Deals, 2)
	assert.True(t, result.HasNextPage)
}

func TestDealRepository_List_InvalidSortField(t *testing.T) {
	p := NewPersistence(t.TempDir())

	_, err := p.ListDeals(context.Background(), persistence.ListDealsOptions{SortBy: "horse; DROP TABLE deals"})
	require.Error(t, err)
	assert.True(t, persistence.IsInvalidSortField(err))
}

func TestDealRepository_Delete(t *testing.T) {
	p := NewPersistence(t.TempDir())
	ctx := context.Background()

	deal := newTestDeal("deal-del")
	require.NoError(t, p.SaveDeal(ctx, deal))
	require.NoError(t, p.DeleteDeal(ctx, "deal-del"))

	loaded, err := p.DealByID(ctx, "deal-del")
	require.NoError(t, err)
	assert.Nil(t, loaded)

	// Deleting again is a no-op.
	assert.NoError(t, p.DeleteDeal(ctx, "deal-del"))
}
