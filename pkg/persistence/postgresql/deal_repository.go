package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/paddockhq/dealflow/pkg/models"
	"github.com/paddockhq/dealflow/pkg/persistence"
)

// DealRepository handles deal-related database operations.
type DealRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewDealRepository creates a new deal repository.
func NewDealRepository(db *sql.DB, logger *slog.Logger) *DealRepository {
	return &DealRepository{db: db, logger: logger}
}

const dealColumns = `
	id
  , type
  , stage
  , status
  , horse
  , participants
  , documents
  , terms
  , timeline
  , owner
  , version
  , created_at
  , updated_at
`

// GetAll returns all deals from the database.
func (r *DealRepository) GetAll(ctx context.Context) ([]*models.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query deals: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	deals := make([]*models.Deal, 0)

	for rows.Next() {
		deal, err := r.scanDeal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deal: %w", err)
		}

		deals = append(deals, deal)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating deals: %w", err)
	}

	return deals, nil
}

// List returns paginated and filtered deals.
func (r *DealRepository) List(ctx context.Context, opts persistence.ListDealsOptions) (*persistence.DealListResult, error) {
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

	order := "ASC"
	if opts.SortOrder == "desc" {
		order = "DESC"
	}

	where := " WHERE 1=1"
	args := make([]any, 0, 5)

	if opts.OwnerID != "" {
		args = append(args, opts.OwnerID)
		where += fmt.Sprintf(" AND owner = $%d", len(args))
	}

	if opts.Status != nil {
		args = append(args, string(*opts.Status))
		where += fmt.Sprintf(" AND status = $%d", len(args))
	}

	if opts.Type != nil {
		args = append(args, string(*opts.Type))
		where += fmt.Sprintf(" AND type = $%d", len(args))
	}

	var totalCount int64

	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM deals"+where, args...).Scan(&totalCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count deals: %w", err)
	}

	args = append(args, opts.Limit, opts.Offset)
	query := fmt.Sprintf(
		"SELECT %s FROM deals%s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		dealColumns, where, opts.SortBy, order, len(args)-1, len(args),
	)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query deals: %w", err)
	}

	defer func() {
		err := rows.Close()
		if err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	deals := make([]*models.Deal, 0, opts.Limit)

	for rows.Next() {
		deal, err := r.scanDeal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan deal: %w", err)
		}

		deals = append(deals, deal)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("error iterating deals: %w", err)
	}

	return &persistence.DealListResult{
		Deals:       deals,
		TotalCount:  totalCount,
		HasNextPage: int64(opts.Offset+len(deals)) < totalCount,
	}, nil
}

// GetByID returns a deal by its ID, or nil when no row exists.
func (r *DealRepository) GetByID(ctx context.Context, id string) (*models.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals WHERE id = $1`

	row := r.db.QueryRowContext(ctx, query, id)

	deal, err := r.scanDeal(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}

		return nil, fmt.Errorf("failed to scan deal: %w", err)
	}

	return deal, nil
}

// Save inserts or updates a deal. Updates carry an optimistic
// concurrency check on the version column: zero rows affected means
// the deal changed under the caller.
func (r *DealRepository) Save(ctx context.Context, deal *models.Deal) error {
	now := time.Now().UTC()
	if deal.CreatedAt.IsZero() {
		deal.CreatedAt = now
	}

	deal.UpdatedAt = now

	participants, documents, terms, timeline, err := marshalDealColumns(deal)
	if err != nil {
		return err
	}

	if deal.Version == 0 {
		insert := `
			INSERT INTO deals (id, type, stage, status, horse, participants, documents, terms, timeline, owner, version, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, 1, $11, $12)
			ON CONFLICT (id) DO NOTHING
		`

		result, err := r.db.ExecContext(ctx, insert,
			deal.ID, string(deal.Type), string(deal.Stage), string(deal.Status), deal.Horse,
			participants, documents, terms, timeline, deal.Owner, deal.CreatedAt, deal.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert deal %s: %w", deal.ID, err)
		}

		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to read insert result for deal %s: %w", deal.ID, err)
		}

		if affected == 0 {
			return persistence.NewDealError("Save", deal.ID, persistence.ErrConcurrentModification)
		}

		deal.Version = 1

		return nil
	}

	update := `
		UPDATE deals
		SET stage = $2, status = $3, participants = $4, documents = $5,
			terms = $6, timeline = $7, version = version + 1, updated_at = $8
		WHERE id = $1 AND version = $9
	`

	result, err := r.db.ExecContext(ctx, update,
		deal.ID, string(deal.Stage), string(deal.Status),
		participants, documents, terms, timeline, deal.UpdatedAt, deal.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update deal %s: %w", deal.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result for deal %s: %w", deal.ID, err)
	}

	if affected == 0 {
		return persistence.NewDealError("Save", deal.ID, persistence.ErrConcurrentModification)
	}

	deal.Version++

	return nil
}

// Delete removes a deal by its ID. Deleting a missing deal is a no-op.
func (r *DealRepository) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM deals WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete deal %s: %w", id, err)
	}

	return nil
}

func marshalDealColumns(deal *models.Deal) (participants, documents, terms, timeline []byte, err error) {
	participants, err = json.Marshal(deal.Participants)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to marshal participants for deal %s: %w", deal.ID, err)
	}

	documents, err = json.Marshal(deal.Documents)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to marshal documents for deal %s: %w", deal.ID, err)
	}

	if deal.Terms != nil {
		terms, err = json.Marshal(deal.Terms)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("failed to marshal terms for deal %s: %w", deal.ID, err)
		}
	}

	timeline, err = json.Marshal(deal.Timeline)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("failed to marshal timeline for deal %s: %w", deal.ID, err)
	}

	return participants, documents, terms, timeline, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *DealRepository) scanDeal(row rowScanner) (*models.Deal, error) {
	var (
		deal         models.Deal
		dealType     string
		stage        string
		status       string
		participants []byte
		documents    []byte
		terms        []byte
		timeline     []byte
	)

	err := row.Scan(
		&deal.ID, &dealType, &stage, &status, &deal.Horse,
		&participants, &documents, &terms, &timeline,
		&deal.Owner, &deal.Version, &deal.CreatedAt, &deal.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	deal.Type = models.DealType(dealType)
	deal.Stage = models.DealStage(stage)
	deal.Status = models.DealStatus(status)

	if err := json.Unmarshal(participants, &deal.Participants); err != nil {
		return nil, fmt.Errorf("failed to unmarshal participants: %w", err)
	}

	if err := json.Unmarshal(documents, &deal.Documents); err != nil {
		return nil, fmt.Errorf("failed to unmarshal documents: %w", err)
	}

	if terms != nil {
		if err := json.Unmarshal(terms, &deal.Terms); err != nil {
			return nil, fmt.Errorf("failed to unmarshal terms: %w", err)
		}
	}

	if err := json.Unmarshal(timeline, &deal.Timeline); err != nil {
		return nil, fmt.Errorf("failed to unmarshal timeline: %w", err)
	}

	return &deal, nil
}
