package file

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/paddockhq/dealflow/pkg/models"
	"github.com/paddockhq/dealflow/pkg/persistence"
)

// DealRepository handles deal-related file operations. Saves are
// serialized by a process-wide mutex so the version check and the
// write happen atomically within one process; cross-process callers
// need the distributed deal lock.
type DealRepository struct {
	root string
	mu   sync.Mutex
}

// NewDealRepository creates a new deal repository.
func NewDealRepository(root string) *DealRepository {
	return &DealRepository{root: root}
}

// GetAll loads every deal stored under the root.
func (dr *DealRepository) GetAll(ctx context.Context) ([]*models.Deal, error) {
	root := os.DirFS(dr.root + "/deals")

	jsonFiles, err := fs.Glob(root, "*.json")
	if err != nil {
		return nil, fmt.Errorf("failed to list deal files: %w", err)
	}

	deals := make([]*models.Deal, 0, len(jsonFiles))

	for _, file := range jsonFiles {
		dealID := file[:len(file)-5] // Remove .json extension

		deal, err := dr.GetByID(ctx, dealID)
		if err != nil {
			return nil, fmt.Errorf("failed to load deal %s: %w", dealID, err)
		}

		if deal != nil {
			deals = append(deals, deal)
		}
	}

	return deals, nil
}

// List returns paginated and filtered deals with in-memory operations.
func (dr *DealRepository) List(ctx context.Context, opts persistence.ListDealsOptions) (*persistence.DealListResult, error) {
	if opts.Limit <= 0 || opts.Limit > 100 {
		opts.Limit = 20
	}

	if opts.SortBy == "" {
		opts.SortBy = "created_at"
	}

	if opts.SortOrder == "" {
		opts.SortOrder = "desc"
	}

	allowedSorts := map[string]bool{
		"created_at": true,
		"updated_at": true,
		"stage":      true,
	}
	if !allowedSorts[opts.SortBy] {
		return nil, fmt.Errorf("%w: %s", persistence.ErrInvalidSortField, opts.SortBy)
	}

	allDeals, err := dr.GetAll(ctx)
	if err != nil {
		return nil, err
	}

	filtered := make([]*models.Deal, 0, len(allDeals))

	for _, deal := range allDeals {
		if opts.OwnerID != "" && deal.Owner != opts.OwnerID {
			continue
		}

		if opts.Status != nil && deal.Status != *opts.Status {
			continue
		}

		if opts.Type != nil && deal.Type != *opts.Type {
			continue
		}

		filtered = append(filtered, deal)
	}

	dr.sortDeals(filtered, opts.SortBy, opts.SortOrder)

	totalCount := int64(len(filtered))
	startIdx := opts.Offset
	endIdx := opts.Offset + opts.Limit

	if startIdx >= len(filtered) {
		return &persistence.DealListResult{
			Deals:       make([]*models.Deal, 0),
			TotalCount:  totalCount,
			HasNextPage: false,
		}, nil
	}

	if endIdx > len(filtered) {
		endIdx = len(filtered)
	}

	return &persistence.DealListResult{
		Deals:       filtered[startIdx:endIdx],
		TotalCount:  totalCount,
		HasNextPage: endIdx < len(filtered),
	}, nil
}

func (dr *DealRepository) sortDeals(deals []*models.Deal, sortBy, sortOrder string) {
	sort.Slice(deals, func(i, j int) bool {
		var less bool

		switch sortBy {
		case "created_at":
			less = deals[i].CreatedAt.Before(deals[j].CreatedAt)
		case "updated_at":
			less = deals[i].UpdatedAt.Before(deals[j].UpdatedAt)
		case "stage":
			less = deals[i].Stage < deals[j].Stage
		default:
			less = deals[i].CreatedAt.Before(deals[j].CreatedAt)
		}

		if sortOrder == "desc" {
			return !less
		}

		return less
	})
}

// GetByID retrieves a deal by its ID from the file system. A missing
// file is not an error; callers receive nil.
func (dr *DealRepository) GetByID(_ context.Context, dealID string) (*models.Deal, error) {
	filePath := filepath.Clean(path.Join(dr.root, "deals", dealID+".json"))

	body, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to fetch deal %s: %w", dealID, err)
	}

	var deal models.Deal

	err = json.Unmarshal(body, &deal)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal deal %s: %w", dealID, err)
	}

	return &deal, nil
}

// Save writes a deal to the file system after checking the optimistic
// concurrency version against the stored copy.
func (dr *DealRepository) Save(ctx context.Context, deal *models.Deal) error {
	dr.mu.Lock()
	defer dr.mu.Unlock()

	err := os.MkdirAll(dr.root+"/deals", 0750)
	if err != nil {
		return fmt.Errorf("failed to create deals directory: %w", err)
	}

	stored, err := dr.GetByID(ctx, deal.ID)
	if err != nil {
		return err
	}

	if stored != nil && stored.Version != deal.Version {
		return persistence.NewDealError("Save", deal.ID, persistence.ErrConcurrentModification)
	}

	now := time.Now().UTC()
	if deal.CreatedAt.IsZero() {
		deal.CreatedAt = now
	}

	deal.UpdatedAt = now
	deal.Version++

	data, err := json.MarshalIndent(deal, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal deal %s: %w", deal.ID, err)
	}

	filePath := path.Join(dr.root+"/deals", deal.ID+".json")

	return os.WriteFile(filePath, data, 0600)
}

// Delete removes a deal by its ID. Deleting a missing deal is a no-op.
func (dr *DealRepository) Delete(_ context.Context, id string) error {
	filePath := path.Join(dr.root+"/deals", id+".json")

	err := os.Remove(filePath)

	if err != nil && os.IsNotExist(err) {
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to delete deal %s: %w", id, err)
	}

	return nil
}
