package services

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/paddockhq/dealflow/pkg/locks"
	"github.com/paddockhq/dealflow/pkg/models"
	"github.com/paddockhq/dealflow/pkg/persistence"
	"github.com/paddockhq/dealflow/pkg/registry"
)

// ErrDealNotFound is returned when a deal is not found.
var ErrDealNotFound = persistence.ErrDealNotFound

// Deal is the CRUD service for deals: creation, listing, participants,
// documents, terms, and comments. Every mutation appends its matching
// timeline entry and runs under the per-deal lock, the same discipline
// the workflow engine uses for transitions.
type Deal struct {
	persistence persistence.Persistence
	registry    *registry.Registry
	locker      locks.DealLocker
}

// NewDeal creates a new deal service.
func NewDeal(store persistence.Persistence, reg *registry.Registry, locker locks.DealLocker) *Deal {
	return &Deal{
		persistence: store,
		registry:    reg,
		locker:      locker,
	}
}

// HealthCheck checks the health of the persistence layer.
func (s *Deal) HealthCheck(ctx context.Context) (string, bool) {
	if s.persistence == nil {
		return "Persistence layer not initialized", false
	}

	err := s.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// CreateDealRequest contains the fields needed to open a deal.
type CreateDealRequest struct {
	Type  models.DealType `validate:"required"`
	Horse string          `validate:"required"`
	Owner string          `validate:"required"`
	Terms map[string]any
	Actor string
}

// Create opens a new deal at the first stage of its type's workflow
// with an initial timeline entry. Terms are checked against the type's
// schema before anything is stored.
func (s *Deal) Create(ctx context.Context, req CreateDealRequest) (*models.Deal, error) {
	if !req.Type.IsValid() {
		return nil, NewValidationError("Create", "INVALID_DEAL_TYPE",
			fmt.Sprintf("unknown deal type '%s'", req.Type), ErrInvalidDealType)
	}

	if strings.TrimSpace(req.Horse) == "" {
		return nil, NewValidationError("Create", "HORSE_REQUIRED", "horse is required", ErrInvalidRequest)
	}

	if strings.TrimSpace(req.Owner) == "" {
		return nil, NewValidationError("Create", "OWNER_REQUIRED", "owner is required", ErrEmptyOwnerID)
	}

	if err := s.checkTerms("Create", req.Type, req.Terms); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	firstStage := s.registry.FirstStage(req.Type)

	deal := &models.Deal{
		ID:     uuid.New().String(),
		Type:   req.Type,
		Stage:  firstStage,
		Status: models.StatusActive,
		Horse:  req.Horse,
		Owner:  req.Owner,
		Terms:  req.Terms,
		Timeline: []models.TimelineEntry{
			{
				ID:          uuid.New().String(),
				Type:        models.EntrySystem,
				Stage:       firstStage,
				Status:      models.StatusActive,
				Date:        now,
				Description: fmt.Sprintf("%s deal created", req.Type),
				Actor:       req.Actor,
				Metadata:    models.TimelineMetadata{Automatic: true},
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.persistence.SaveDeal(ctx, deal); err != nil {
		return nil, fmt.Errorf("failed to create deal: %w", err)
	}

	return deal, nil
}

// ListDealsRequest contains options for listing deals.
type ListDealsRequest struct {
	// Pagination
	Limit  int
	Offset int

	// Filtering
	OwnerID string
	Status  *models.DealStatus
	Type    *models.DealType

	// Sorting
	SortBy    string
	SortOrder string
}

// ListDealsResponse contains the result of listing deals.
type ListDealsResponse struct {
	Deals       []*models.Deal `json:"deals"`
	TotalCount  int64          `json:"total_count"`
	HasNextPage bool           `json:"has_next_page"`
}

// List retrieves deals with filtering, sorting, and pagination.
func (s *Deal) List(ctx context.Context, req ListDealsRequest) (*ListDealsResponse, error) {
	if err := s.validateListRequest(&req); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	result, err := s.persistence.ListDeals(ctx, persistence.ListDealsOptions{
		Limit:     req.Limit,
		Offset:    req.Offset,
		OwnerID:   req.OwnerID,
		Status:    req.Status,
		Type:      req.Type,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		if persistence.IsInvalidSortField(err) {
			return nil, ErrInvalidSortField
		}

		return nil, fmt.Errorf("failed to list deals: %w", err)
	}

	return &ListDealsResponse{
		Deals:       result.Deals,
		TotalCount:  result.TotalCount,
		HasNextPage: result.HasNextPage,
	}, nil
}

func (s *Deal) validateListRequest(req *ListDealsRequest) error {
	if req.Limit <= 0 {
		req.Limit = 20
	}

	if req.Limit > 100 {
		req.Limit = 100
	}

	if req.Offset < 0 {
		req.Offset = 0
	}

	if req.SortBy == "" {
		req.SortBy = "created_at"
	}

	if req.SortOrder == "" {
		req.SortOrder = "desc"
	}

	allowedSorts := []string{"created_at", "updated_at", "stage"}
	if !slices.Contains(allowedSorts, req.SortBy) {
		return NewValidationError(
			"validateListRequest",
			"INVALID_SORT_FIELD",
			fmt.Sprintf("invalid sort field '%s', allowed: %s", req.SortBy, strings.Join(allowedSorts, ", ")),
			ErrInvalidSortField,
		)
	}

	if req.SortOrder != "asc" && req.SortOrder != "desc" {
		return NewValidationError(
			"validateListRequest",
			"INVALID_SORT_ORDER",
			fmt.Sprintf("invalid sort order '%s', allowed: asc, desc", req.SortOrder),
			ErrInvalidSortOrder,
		)
	}

	if req.Status != nil && !req.Status.IsValid() {
		return NewValidationError(
			"validateListRequest",
			"INVALID_STATUS",
			fmt.Sprintf("invalid status '%s'", *req.Status),
			ErrInvalidStatus,
		)
	}

	if req.Type != nil && !req.Type.IsValid() {
		return NewValidationError(
			"validateListRequest",
			"INVALID_DEAL_TYPE",
			fmt.Sprintf("invalid deal type '%s'", *req.Type),
			ErrInvalidDealType,
		)
	}

	if req.OwnerID != "" {
		req.OwnerID = strings.TrimSpace(req.OwnerID)
		if req.OwnerID == "" {
			return ErrEmptyOwnerID
		}
	}

	return nil
}

// FetchByID retrieves a deal by its ID.
func (s *Deal) FetchByID(ctx context.Context, id string) (*models.Deal, error) {
	deal, err := s.persistence.DealByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if deal == nil {
		return nil, ErrDealNotFound
	}

	return deal, nil
}

// UpdateTerms replaces the deal's terms after validating them against
// the type's schema.
func (s *Deal) UpdateTerms(ctx context.Context, dealID string, terms map[string]any, actor string) (*models.Deal, error) {
	return s.mutate(ctx, "UpdateTerms", dealID, func(deal *models.Deal) error {
		if err := s.checkTerms("UpdateTerms", deal.Type, terms); err != nil {
			return err
		}

		deal.Terms = terms
		deal.AppendTimeline(models.TimelineEntry{
			ID:          uuid.New().String(),
			Type:        models.EntrySystem,
			Stage:       deal.Stage,
			Status:      deal.Status,
			Date:        time.Now().UTC(),
			Description: "Deal terms updated",
			Actor:       actor,
		})

		return nil
	})
}

// AddParticipant attaches a user to the deal in the given role.
func (s *Deal) AddParticipant(ctx context.Context, dealID, userID string, role models.ParticipantRole, actor string) (*models.Deal, error) {
	if !role.IsValid() {
		return nil, NewValidationError("AddParticipant", "INVALID_ROLE",
			fmt.Sprintf("unknown role '%s'", role), ErrInvalidRole)
	}

	return s.mutate(ctx, "AddParticipant", dealID, func(deal *models.Deal) error {
		for _, p := range deal.Participants {
			if p.UserID == userID && p.Role == role {
				return &ServiceError{
					Op:      "AddParticipant",
					Code:    "DUPLICATE_PARTICIPANT",
					Message: fmt.Sprintf("user %s already holds role %s", userID, role),
					Err:     ErrDuplicateParticipant,
				}
			}
		}

		deal.Participants = append(deal.Participants, models.Participant{
			ID:     uuid.New().String(),
			UserID: userID,
			Role:   role,
		})

		deal.AppendTimeline(models.TimelineEntry{
			ID:          uuid.New().String(),
			Type:        models.EntryParticipantChange,
			Stage:       deal.Stage,
			Status:      deal.Status,
			Date:        time.Now().UTC(),
			Description: fmt.Sprintf("Added %s participant", role),
			Actor:       actor,
		})

		return nil
	})
}

// AddDocument registers a document of the given type in pending review
// status. Document bytes live in external file storage; only the type
// and review status matter here.
func (s *Deal) AddDocument(ctx context.Context, dealID, documentType, actor string) (*models.Deal, error) {
	if strings.TrimSpace(documentType) == "" {
		return nil, NewValidationError("AddDocument", "DOCUMENT_TYPE_REQUIRED",
			"document type is required", ErrInvalidRequest)
	}

	return s.mutate(ctx, "AddDocument", dealID, func(deal *models.Deal) error {
		deal.Documents = append(deal.Documents, models.Document{
			ID:           uuid.New().String(),
			DocumentType: documentType,
			Status:       models.DocumentPending,
		})

		deal.AppendTimeline(models.TimelineEntry{
			ID:          uuid.New().String(),
			Type:        models.EntryDocumentChange,
			Stage:       deal.Stage,
			Status:      deal.Status,
			Date:        time.Now().UTC(),
			Description: fmt.Sprintf("Document added: %s", documentType),
			Actor:       actor,
		})

		return nil
	})
}

// SetDocumentStatus moves a document through review. Only approved
// documents satisfy stage requirements.
func (s *Deal) SetDocumentStatus(ctx context.Context, dealID, documentID string, status models.DocumentStatus, actor string) (*models.Deal, error) {
	if status != models.DocumentApproved && status != models.DocumentRejected && status != models.DocumentPending {
		return nil, NewValidationError("SetDocumentStatus", "INVALID_DOCUMENT_STATUS",
			fmt.Sprintf("unknown document status '%s'", status), ErrInvalidDocumentStatus)
	}

	return s.mutate(ctx, "SetDocumentStatus", dealID, func(deal *models.Deal) error {
		index := -1

		for i, doc := range deal.Documents {
			if doc.ID == documentID {
				index = i

				break
			}
		}

		if index < 0 {
			return &ServiceError{
				Op:      "SetDocumentStatus",
				Code:    "DOCUMENT_NOT_FOUND",
				Message: fmt.Sprintf("document %s not found on deal %s", documentID, dealID),
				Err:     ErrDocumentNotFound,
			}
		}

		deal.Documents[index].Status = status

		deal.AppendTimeline(models.TimelineEntry{
			ID:          uuid.New().String(),
			Type:        models.EntryDocumentChange,
			Stage:       deal.Stage,
			Status:      deal.Status,
			Date:        time.Now().UTC(),
			Description: fmt.Sprintf("Document %s: %s", status, deal.Documents[index].DocumentType),
			Actor:       actor,
		})

		return nil
	})
}

// AddComment appends a free-form comment to the deal's timeline.
func (s *Deal) AddComment(ctx context.Context, dealID, text, actor string) (*models.Deal, error) {
	if strings.TrimSpace(text) == "" {
		return nil, NewValidationError("AddComment", "COMMENT_REQUIRED",
			"comment text is required", ErrCommentRequired)
	}

	return s.mutate(ctx, "AddComment", dealID, func(deal *models.Deal) error {
		deal.AppendTimeline(models.TimelineEntry{
			ID:          uuid.New().String(),
			Type:        models.EntryComment,
			Stage:       deal.Stage,
			Status:      deal.Status,
			Date:        time.Now().UTC(),
			Description: text,
			Actor:       actor,
		})

		return nil
	})
}

// Delete removes a deal by its ID.
func (s *Deal) Delete(ctx context.Context, dealID string) error {
	existing, err := s.persistence.DealByID(ctx, dealID)
	if err != nil {
		return err
	}

	if existing == nil {
		return ErrDealNotFound
	}

	if err := s.persistence.DeleteDeal(ctx, dealID); err != nil {
		return fmt.Errorf("failed to delete deal: %w", err)
	}

	return nil
}

// mutate runs a deal modification inside the per-deal critical section:
// lock, reload, apply, save with the version check. Terminal deals
// reject all modifications.
func (s *Deal) mutate(ctx context.Context, op, dealID string, apply func(*models.Deal) error) (*models.Deal, error) {
	release, err := s.locker.Acquire(ctx, dealID)
	if err != nil {
		return nil, err
	}

	defer release()

	deal, err := s.FetchByID(ctx, dealID)
	if err != nil {
		return nil, err
	}

	if deal.Status.IsTerminal() {
		return nil, &ServiceError{
			Op:      op,
			Code:    "DEAL_TERMINAL",
			Message: fmt.Sprintf("deal %s is %s", dealID, deal.Status),
			Err:     ErrDealTerminal,
		}
	}

	updated := deal.Clone()

	if err := apply(updated); err != nil {
		return nil, err
	}

	if err := s.persistence.SaveDeal(ctx, updated); err != nil {
		return nil, fmt.Errorf("failed to save deal: %w", err)
	}

	return updated, nil
}

func (s *Deal) checkTerms(op string, dealType models.DealType, terms map[string]any) error {
	violations, err := s.registry.ValidateTerms(dealType, terms)
	if err != nil {
		return fmt.Errorf("failed to validate terms: %w", err)
	}

	if len(violations) > 0 {
		return NewValidationError(op, "TERMS_SCHEMA_VIOLATION",
			strings.Join(violations, "; "), ErrInvalidTerms)
	}

	return nil
}
