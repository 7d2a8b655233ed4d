// Package events defines the transition event contracts published to
// the notification consumer after successful deal mutations.
package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/paddockhq/dealflow/pkg/models"
)

type EventType string

// Topic is the bus topic all deal events are published to.
const Topic = "dealflow.events"

const EventMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

const (
	DealStageChangedEvent        EventType = "deal.stage.changed"
	DealStatusChangedEvent       EventType = "deal.status.changed"
	DealStageRolledBackEvent     EventType = "deal.stage.rolledback"
	DealRequirementsPendingEvent EventType = "deal.requirements.pending"
)

type BaseEvent struct {
	ID        string         `json:"id"`
	Type      EventType      `json:"type"`
	Timestamp time.Time      `json:"timestamp"`
	DealID    string         `json:"deal_id"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// DealStageChanged is emitted after a forward stage transition commits.
type DealStageChanged struct {
	BaseEvent

	DealType      models.DealType  `json:"deal_type"`
	PreviousStage models.DealStage `json:"previous_stage"`
	NewStage      models.DealStage `json:"new_stage"`
	Actor         string           `json:"actor"`
	Reason        string           `json:"reason,omitempty"`
}

func (e DealStageChanged) GetType() EventType {
	return DealStageChangedEvent
}

// DealStatusChanged is emitted after a status transition commits.
type DealStatusChanged struct {
	BaseEvent

	DealType       models.DealType   `json:"deal_type"`
	PreviousStatus models.DealStatus `json:"previous_status"`
	NewStatus      models.DealStatus `json:"new_status"`
	Actor          string            `json:"actor"`
	Reason         string            `json:"reason,omitempty"`
}

func (e DealStatusChanged) GetType() EventType {
	return DealStatusChangedEvent
}

// DealStageRolledBack is emitted after a rollback commits. It is a
// distinct type so downstream consumers never mistake a rollback for
// forward progress.
type DealStageRolledBack struct {
	BaseEvent

	DealType      models.DealType  `json:"deal_type"`
	PreviousStage models.DealStage `json:"previous_stage"`
	NewStage      models.DealStage `json:"new_stage"`
	Actor         string           `json:"actor"`
}

func (e DealStageRolledBack) GetType() EventType {
	return DealStageRolledBackEvent
}

// DealRequirementsPending is emitted by the reminder sweep for active
// deals whose next stage still has unsatisfied requirements.
type DealRequirementsPending struct {
	BaseEvent

	DealType     models.DealType           `json:"deal_type"`
	CurrentStage models.DealStage          `json:"current_stage"`
	NextStage    models.DealStage          `json:"next_stage"`
	Missing      []models.StageRequirement `json:"missing"`
}

func (e DealRequirementsPending) GetType() EventType {
	return DealRequirementsPendingEvent
}

func NewBaseEvent(eventType EventType, dealID string) BaseEvent {
	return BaseEvent{
		ID:        uuid.New().String(),
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		DealID:    dealID,
		Metadata:  make(map[string]any),
	}
}
