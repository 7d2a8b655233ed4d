// Package file provides file-based persistence for deals. Each deal is
// stored as one JSON document under <root>/deals; list operations load
// and filter in memory. Suitable for development and tests.
package file

import (
	"context"
	"os"
	"strings"

	"github.com/paddockhq/dealflow/pkg/models"
	"github.com/paddockhq/dealflow/pkg/persistence"
)

// Persistence implements the persistence.Persistence interface using
// the file system.
type Persistence struct {
	root     string
	dealRepo *DealRepository
}

// NewPersistence creates a new instance rooted at the given directory.
func NewPersistence(root string) *Persistence {
	cleanRoot := strings.Replace(root, "file://", "", 1)

	return &Persistence{
		root:     cleanRoot,
		dealRepo: NewDealRepository(cleanRoot),
	}
}

// Close performs any necessary cleanup. For file-based persistence,
// there is nothing to clean up.
func (fp *Persistence) Close(_ context.Context) error {
	return nil
}

// HealthCheck verifies the root directory exists.
func (fp *Persistence) HealthCheck(_ context.Context) error {
	if _, err := os.Stat(fp.root); os.IsNotExist(err) {
		return os.ErrNotExist
	}

	return nil
}

func (fp *Persistence) Deals(ctx context.Context) ([]*models.Deal, error) {
	return fp.dealRepo.GetAll(ctx)
}

func (fp *Persistence) ListDeals(ctx context.Context, opts persistence.ListDealsOptions) (*persistence.DealListResult, error) {
	return fp.dealRepo.List(ctx, opts)
}

func (fp *Persistence) DealByID(ctx context.Context, id string) (*models.Deal, error) {
	return fp.dealRepo.GetByID(ctx, id)
}

func (fp *Persistence) SaveDeal(ctx context.Context, deal *models.Deal) error {
	return fp.dealRepo.Save(ctx, deal)
}

func (fp *Persistence) DeleteDeal(ctx context.Context, id string) error {
	return fp.dealRepo.Delete(ctx, id)
}
