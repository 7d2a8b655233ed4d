package models

import (
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const requiredTag = "required"

func TestDeal_Validation_ValidDeal(t *testing.T) {
	deal := &Deal{
		ID:     "deal-123",
		Type:   DealTypeFullSale,
		Stage:  StageInitiation,
		Status: StatusActive,
		Horse:  "horse-789",
		Owner:  "user-456",
	}

	validate := validator.New()
	err := validate.Struct(deal)
	assert.NoError(t, err)
}

func TestDeal_Validation_MissingHorse(t *testing.T) {
	deal := &Deal{
		ID:     "deal-123",
		Type:   DealTypeFullSale,
		Stage:  StageInitiation,
		Status: StatusActive,
		Owner:  "user-456",
	}

	validate := validator.New()
	err := validate.Struct(deal)
	assert.Error(t, err)

	var validationErrors validator.ValidationErrors

	require.True(t, errors.As(err, &validationErrors))

	found := false

	for _, fieldErr := range validationErrors {
		if fieldErr.Field() == "Horse" && fieldErr.Tag() == requiredTag {
			found = true

			break
		}
	}

	assert.True(t, found, "Should have validation error for required Horse field")
}

func TestDealType_IsValid(t *testing.T) {
	for _, dealType := range AllDealTypes {
		assert.True(t, dealType.IsValid(), "expected %s to be valid", dealType)
	}

	assert.False(t, DealType("auction").IsValid())
	assert.False(t, DealType("").IsValid())
}

func TestDealStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status   DealStatus
		terminal bool
	}{
		{StatusActive, false},
		{StatusPending, false},
		{StatusOnHold, false},
		{StatusCancelled, true},
		{StatusCompleted, true},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.terminal, tc.status.IsTerminal(), "status %s", tc.status)
	}
}

func TestDeal_HasApprovedDocument(t *testing.T) {
	deal := &Deal{
		Documents: []Document{
			{ID: "doc-1", DocumentType: "Intent to purchase", Status: DocumentApproved},
			{ID: "doc-2", DocumentType: "Veterinary examination report", Status: DocumentPending},
			{ID: "doc-3", DocumentType: "Bill of sale", Status: DocumentRejected},
		},
	}

	assert.True(t, deal.HasApprovedDocument("Intent to purchase"))
	assert.False(t, deal.HasApprovedDocument("Veterinary examination report"), "pending documents do not satisfy")
	assert.False(t, deal.HasApprovedDocument("Bill of sale"), "rejected documents do not satisfy")
	assert.False(t, deal.HasApprovedDocument("Transport agreement"))
}

func TestDeal_HasParticipantRole(t *testing.T) {
	deal := &Deal{
		Participants: []Participant{
			{ID: "p-1", UserID: "u-1", Role: RoleSeller},
			{ID: "p-2", UserID: "u-2", Role: RoleBuyer},
		},
	}

	assert.True(t, deal.HasParticipantRole(RoleSeller))
	assert.True(t, deal.HasParticipantRole(RoleBuyer))
	assert.False(t, deal.HasParticipantRole(RoleVeterinarian))
}

func TestDeal_AppendTimeline_KeepsDatesMonotonic(t *testing.T) {
	now := time.Now().UTC()
	deal := &Deal{
		Timeline: []TimelineEntry{
			{ID: "t-1", Type: EntrySystem, Date: now},
		},
	}

	deal.AppendTimeline(TimelineEntry{ID: "t-2", Type: EntryComment, Date: now.Add(-time.Hour)})
	deal.AppendTimeline(TimelineEntry{ID: "t-3", Type: EntryComment, Date: now.Add(time.Hour)})

	require.Len(t, deal.Timeline, 3)
	assert.Equal(t, now, deal.Timeline[1].Date, "backdated entry is clamped to the previous entry's date")
	assert.True(t, deal.Timeline[2].Date.After(deal.Timeline[1].Date))
}

func TestDeal_Clone_IsIndependent(t *testing.T) {
	deal := &Deal{
		ID:     "deal-123",
		Type:   DealTypeLease,
		Stage:  StageDiscussion,
		Status: StatusActive,
		Participants: []Participant{
			{ID: "p-1", UserID: "u-1", Role: RoleLessor},
		},
		Documents: []Document{
			{ID: "doc-1", DocumentType: "Lease agreement", Status: DocumentPending},
		},
		Terms: map[string]any{"monthly_rate": 1500.0},
		Timeline: []TimelineEntry{
			{ID: "t-1", Type: EntrySystem, Date: time.Now().UTC()},
		},
	}

	clone := deal.Clone()
	clone.Stage = StageClosing
	clone.Participants[0].Role = RoleLessee
	clone.Terms["monthly_rate"] = 2000.0
	clone.Timeline = append(clone.Timeline, TimelineEntry{ID: "t-2"})

	assert.Equal(t, StageDiscussion, deal.Stage)
	assert.Equal(t, RoleLessor, deal.Participants[0].Role)
	assert.Equal(t, 1500.0, deal.Terms["monthly_rate"])
	assert.Len(t, deal.Timeline, 1)
}
