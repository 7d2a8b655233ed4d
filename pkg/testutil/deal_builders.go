// Package testutil provides builders for deal fixtures used across
// test suites.
package testutil

import (
	"time"

	"github.com/google/uuid"
	"github.com/paddockhq/dealflow/pkg/models"
)

// DealOption mutates a deal under construction.
type DealOption func(*models.Deal)

// NewDeal builds an active deal of the given type at the initiation
// stage with a creation entry on its timeline.
func NewDeal(dealType models.DealType, opts ...DealOption) *models.Deal {
	now := time.Now().UTC()

	deal := &models.Deal{
		ID:     uuid.New().String(),
		Type:   dealType,
		Stage:  models.StageInitiation,
		Status: models.StatusActive,
		Horse:  "horse-" + uuid.New().String(),
		Owner:  "owner-" + uuid.New().String(),
		Timeline: []models.TimelineEntry{
			{
				ID:          uuid.New().String(),
				Type:        models.EntrySystem,
				Stage:       models.StageInitiation,
				Status:      models.StatusActive,
				Date:        now,
				Description: "Deal created",
			},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	for _, opt := range opts {
		opt(deal)
	}

	return deal
}

// WithStage sets the current stage.
func WithStage(stage models.DealStage) DealOption {
	return func(d *models.Deal) { d.Stage = stage }
}

// WithStatus sets the current status.
func WithStatus(status models.DealStatus) DealOption {
	return func(d *models.Deal) { d.Status = status }
}

// WithParticipant adds a participant holding the given role.
func WithParticipant(role models.ParticipantRole) DealOption {
	return func(d *models.Deal) {
		d.Participants = append(d.Participants, models.Participant{
			ID:     uuid.New().String(),
			UserID: "user-" + uuid.New().String(),
			Role:   role,
		})
	}
}

// WithDocument adds a document of the given type and status.
func WithDocument(documentType string, status models.DocumentStatus) DealOption {
	return func(d *models.Deal) {
		d.Documents = append(d.Documents, models.Document{
			ID:           uuid.New().String(),
			DocumentType: documentType,
			Status:       status,
		})
	}
}

// WithTerms sets the free-form terms.
func WithTerms(terms map[string]any) DealOption {
	return func(d *models.Deal) { d.Terms = terms }
}

// WithTimelineEntry appends a timeline entry.
func WithTimelineEntry(entry models.TimelineEntry) DealOption {
	return func(d *models.Deal) { d.Timeline = append(d.Timeline, entry) }
}
