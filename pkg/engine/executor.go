package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/paddockhq/dealflow/pkg/eventbus"
	"github.com/paddockhq/dealflow/pkg/events"
	"github.com/paddockhq/dealflow/pkg/models"
	"github.com/paddockhq/dealflow/pkg/persistence"
	"github.com/paddockhq/dealflow/pkg/registry"
)

const publishTimeout = 10 * time.Second

// Executor applies validated transitions. Every method re-validates
// against the deal snapshot it is given, mutates a clone, saves it with
// the optimistic concurrency check, and only then publishes the
// transition event. A failed save surfaces the persistence error and
// leaves the caller's deal untouched; a failed publish is logged and
// never fails the committed transition.
type Executor struct {
	logger      *slog.Logger
	registry    *registry.Registry
	validator   *Validator
	persistence persistence.Persistence
	eventBus    eventbus.EventPublisher
}

// NewExecutor creates a transition executor.
func NewExecutor(logger *slog.Logger, reg *registry.Registry, store persistence.Persistence, bus eventbus.EventPublisher) *Executor {
	return &Executor{
		logger:      logger,
		registry:    reg,
		validator:   NewValidator(reg),
		persistence: store,
		eventBus:    bus,
	}
}

// ApplyStage moves the deal to an adjacent stage. Entering the final
// stage also marks the deal completed; that is the only way a deal
// reaches Completed status.
func (e *Executor) ApplyStage(ctx context.Context, deal *models.Deal, targetStage models.DealStage, actor, reason string, progress float64) (*models.Deal, error) {
	const op = "ApplyStage"

	if err := e.requireActive(op, deal); err != nil {
		return nil, err
	}

	result := e.validator.Validate(deal, targetStage, progress)
	if !result.CanProgress {
		return nil, rejectTransition(op, deal.ID, result)
	}

	updated := deal.Clone()
	previousStage := updated.Stage
	updated.Stage = targetStage

	if targetStage == models.StageComplete {
		updated.Status = models.StatusCompleted
	}

	description := reason
	if description == "" {
		description = fmt.Sprintf("Stage changed from %s to %s", previousStage, targetStage)
	}

	updated.AppendTimeline(models.TimelineEntry{
		ID:          uuid.New().String(),
		Type:        models.EntryStageChange,
		Stage:       updated.Stage,
		Status:      updated.Status,
		Date:        time.Now().UTC(),
		Description: description,
		Actor:       actor,
		Metadata: models.TimelineMetadata{
			PreviousStage: previousStage,
			NewStage:      targetStage,
		},
	})

	if err := e.persistence.SaveDeal(ctx, updated); err != nil {
		return nil, err
	}

	e.publish(updated.ID, events.DealStageChanged{
		BaseEvent:     events.NewBaseEvent(events.DealStageChangedEvent, updated.ID),
		DealType:      updated.Type,
		PreviousStage: previousStage,
		NewStage:      targetStage,
		Actor:         actor,
		Reason:        reason,
	})

	return updated, nil
}

// ApplyStatus moves the deal between lifecycle statuses. Completed is
// never a valid target here: it is derived from reaching the final
// stage. Terminal deals reject any status change.
func (e *Executor) ApplyStatus(ctx context.Context, deal *models.Deal, targetStatus models.DealStatus, actor, reason string) (*models.Deal, error) {
	const op = "ApplyStatus"

	if deal.Status.IsTerminal() {
		return nil, NewTransitionError(op, deal.ID, ErrTerminalState)
	}

	if !targetStatus.IsValid() {
		return nil, &TransitionError{
			Op:      op,
			DealID:  deal.ID,
			Err:     ErrInvalidStatusChange,
			Message: fmt.Sprintf("unknown status %s", targetStatus),
		}
	}

	if targetStatus == models.StatusCompleted {
		return nil, &TransitionError{
			Op:      op,
			DealID:  deal.ID,
			Err:     ErrInvalidStatusChange,
			Message: "completed is reached through the final stage, not set directly",
		}
	}

	if targetStatus == deal.Status {
		return nil, &TransitionError{
			Op:      op,
			DealID:  deal.ID,
			Err:     ErrInvalidStatusChange,
			Message: fmt.Sprintf("deal is already %s", targetStatus),
		}
	}

	updated := deal.Clone()
	previousStatus := updated.Status
	updated.Status = targetStatus

	description := reason
	if description == "" {
		description = fmt.Sprintf("Status changed from %s to %s", previousStatus, targetStatus)
	}

	updated.AppendTimeline(models.TimelineEntry{
		ID:          uuid.New().String(),
		Type:        models.EntryStatusChange,
		Stage:       updated.Stage,
		Status:      updated.Status,
		Date:        time.Now().UTC(),
		Description: description,
		Actor:       actor,
		Metadata: models.TimelineMetadata{
			PreviousStatus: previousStatus,
			NewStatus:      targetStatus,
		},
	})

	if err := e.persistence.SaveDeal(ctx, updated); err != nil {
		return nil, err
	}

	e.publish(updated.ID, events.DealStatusChanged{
		BaseEvent:      events.NewBaseEvent(events.DealStatusChangedEvent, updated.ID),
		DealType:       updated.Type,
		PreviousStatus: previousStatus,
		NewStatus:      targetStatus,
		Actor:          actor,
		Reason:         reason,
	})

	return updated, nil
}

// Rollback moves the deal to the stage immediately preceding the
// current one. The stage being left is not re-validated, but the deal
// must be active, and the target must be exactly the preceding stage.
// The timeline entry is tagged as a rollback so projections never count
// it as forward progress.
func (e *Executor) Rollback(ctx context.Context, deal *models.Deal, targetStage models.DealStage, actor string) (*models.Deal, error) {
	const op = "Rollback"

	if err := e.requireActive(op, deal); err != nil {
		return nil, err
	}

	previous, ok := e.registry.PreviousStage(deal.Type, deal.Stage)
	if !ok {
		return nil, NewTransitionError(op, deal.ID, ErrNoPreviousStage)
	}

	if targetStage != previous {
		return nil, &TransitionError{
			Op:      op,
			DealID:  deal.ID,
			Err:     ErrInvalidTransition,
			Message: fmt.Sprintf("rollback from %s may only target %s, not %s", deal.Stage, previous, targetStage),
		}
	}

	updated := deal.Clone()
	currentStage := updated.Stage
	updated.Stage = previous

	updated.AppendTimeline(models.TimelineEntry{
		ID:          uuid.New().String(),
		Type:        models.EntryStageChange,
		Stage:       updated.Stage,
		Status:      updated.Status,
		Date:        time.Now().UTC(),
		Description: fmt.Sprintf("Stage rolled back from %s to %s", currentStage, previous),
		Actor:       actor,
		Metadata: models.TimelineMetadata{
			PreviousStage: currentStage,
			NewStage:      previous,
			IsRollback:    true,
		},
	})

	if err := e.persistence.SaveDeal(ctx, updated); err != nil {
		return nil, err
	}

	e.publish(updated.ID, events.DealStageRolledBack{
		BaseEvent:     events.NewBaseEvent(events.DealStageRolledBackEvent, updated.ID),
		DealType:      updated.Type,
		PreviousStage: currentStage,
		NewStage:      previous,
		Actor:         actor,
	})

	return updated, nil
}

func (e *Executor) requireActive(op string, deal *models.Deal) error {
	if deal.Status.IsTerminal() {
		return NewTransitionError(op, deal.ID, ErrTerminalState)
	}

	if deal.Status != models.StatusActive {
		return &TransitionError{
			Op:      op,
			DealID:  deal.ID,
			Err:     ErrDealNotActive,
			Message: fmt.Sprintf("status is %s", deal.Status),
		}
	}

	return nil
}

func rejectTransition(op, dealID string, result ValidationResult) error {
	if result.unreachable {
		return &TransitionError{
			Op:      op,
			DealID:  dealID,
			Err:     ErrInvalidTransition,
			Message: strings.Join(result.ValidationErrors, "; "),
		}
	}

	return &ValidationFailedError{
		DealID:           dealID,
		ValidationErrors: result.ValidationErrors,
		Warnings:         result.Warnings,
	}
}

// publish delivers the event off the transition path. The detached
// context keeps delivery alive after the request that triggered the
// transition returns.
func (e *Executor) publish(dealID string, event eventbus.Event) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		if err := e.eventBus.Publish(ctx, dealID, event); err != nil {
			e.logger.Error("failed to publish deal event",
				"deal_id", dealID,
				"event_type", event.GetType(),
				"error", err)
		}
	}()
}
