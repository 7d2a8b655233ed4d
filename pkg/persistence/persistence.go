// Package persistence provides the data storage abstraction for deals.
package persistence

import (
	"context"

	"github.com/paddockhq/dealflow/pkg/models"
)

// ListDealsOptions controls filtering, sorting, and pagination for
// ListDeals.
type ListDealsOptions struct {
	Limit  int
	Offset int

	OwnerID string
	Status  *models.DealStatus
	Type    *models.DealType

	SortBy    string
	SortOrder string
}

// DealListResult is a page of deals plus pagination metadata.
type DealListResult struct {
	Deals       []*models.Deal
	TotalCount  int64
	HasNextPage bool
}

// Persistence is the storage contract the engine depends on. SaveDeal
// is atomic per call and enforces optimistic concurrency: it fails with
// ErrConcurrentModification when the stored version no longer matches
// the version the caller loaded.
type Persistence interface {
	Deals(ctx context.Context) ([]*models.Deal, error)
	ListDeals(ctx context.Context, opts ListDealsOptions) (*DealListResult, error)
	DealByID(ctx context.Context, id string) (*models.Deal, error)
	SaveDeal(ctx context.Context, deal *models.Deal) error
	DeleteDeal(ctx context.Context, id string) error
	HealthCheck(ctx context.Context) error

	Close(ctx context.Context) error
}
