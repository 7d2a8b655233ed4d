package models

import "time"

// TimelineEntryType identifies the nature of a timeline entry.
type TimelineEntryType string

const (
	EntryStageChange       TimelineEntryType = "stage_change"
	EntryStatusChange      TimelineEntryType = "status_change"
	EntryParticipantChange TimelineEntryType = "participant_change"
	EntryDocumentChange    TimelineEntryType = "document_change"
	EntryComment           TimelineEntryType = "comment"
	EntrySystem            TimelineEntryType = "system"
)

// TimelineMetadata carries the structured before/after detail of a
// transition entry. Stage fields are set on stage_change entries,
// status fields on status_change entries.
type TimelineMetadata struct {
	PreviousStage  DealStage  `json:"previous_stage,omitempty"`
	NewStage       DealStage  `json:"new_stage,omitempty"`
	PreviousStatus DealStatus `json:"previous_status,omitempty"`
	NewStatus      DealStatus `json:"new_status,omitempty"`
	IsRollback     bool       `json:"is_rollback,omitempty"`
	Automatic      bool       `json:"automatic,omitempty"`
}

// TimelineEntry is one record in a deal's append-only audit trail.
// Entries are never mutated or deleted after being appended; every
// derived statistic is recomputed from the log on read.
type TimelineEntry struct {
	ID          string            `json:"id"          validate:"required"`
	Type        TimelineEntryType `json:"type"        validate:"required"`
	Stage       DealStage         `json:"stage"`
	Status      DealStatus        `json:"status"`
	Date        time.Time         `json:"date"        validate:"required"`
	Description string            `json:"description"`
	Actor       string            `json:"actor"`
	Metadata    TimelineMetadata  `json:"metadata"`
}
