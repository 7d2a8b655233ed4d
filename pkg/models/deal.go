// Package models defines the core domain models for horse-transaction
// deal management.
package models

import "time"

// Deal is the aggregate root for a single horse transaction. It is
// owned by the workflow engine: stage and status change only through
// validated transitions, and all history is recorded in the append-only
// Timeline. Direct writes to Stage or Status bypass requirement checks
// and are not supported.
type Deal struct {
	ID           string         `json:"id"`
	Type         DealType       `json:"type"      validate:"required"`
	Stage        DealStage      `json:"stage"     validate:"required"`
	Status       DealStatus     `json:"status"    validate:"required"`
	Horse        string         `json:"horse"     validate:"required"`
	Participants []Participant  `json:"participants"`
	Documents    []Document     `json:"documents"`
	Terms        map[string]any `json:"terms,omitempty"`
	Timeline     []TimelineEntry `json:"timeline"`
	Owner        string         `json:"owner"     validate:"required"`

	// Version supports optimistic concurrency: SaveDeal fails with
	// ErrConcurrentModification when the stored version differs.
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasApprovedDocument reports whether the deal holds an approved
// document of the given type. Pending and rejected documents do not
// count.
func (d *Deal) HasApprovedDocument(documentType string) bool {
	for _, doc := range d.Documents {
		if doc.DocumentType == documentType && doc.Status == DocumentApproved {
			return true
		}
	}

	return false
}

// HasParticipantRole reports whether any participant holds the given
// role.
func (d *Deal) HasParticipantRole(role ParticipantRole) bool {
	for _, p := range d.Participants {
		if p.Role == role {
			return true
		}
	}

	return false
}

// AppendTimeline appends an entry to the deal's timeline, clamping its
// date forward when it would break the non-decreasing date invariant.
func (d *Deal) AppendTimeline(entry TimelineEntry) {
	if n := len(d.Timeline); n > 0 && entry.Date.Before(d.Timeline[n-1].Date) {
		entry.Date = d.Timeline[n-1].Date
	}

	d.Timeline = append(d.Timeline, entry)
}

// Clone returns a deep copy of the deal. Executors mutate the copy so
// a failed save never leaves a half-applied transition visible to the
// caller.
func (d *Deal) Clone() *Deal {
	clone := *d

	clone.Participants = make([]Participant, len(d.Participants))
	copy(clone.Participants, d.Participants)

	clone.Documents = make([]Document, len(d.Documents))
	copy(clone.Documents, d.Documents)

	clone.Timeline = make([]TimelineEntry, len(d.Timeline))
	copy(clone.Timeline, d.Timeline)

	if d.Terms != nil {
		clone.Terms = make(map[string]any, len(d.Terms))
		for k, v := range d.Terms {
			clone.Terms[k] = v
		}
	}

	return &clone
}
