// Package engine is the deal workflow engine: the per-deal-type
// stage/status state machine governing how a horse transaction moves
// through its ordered stages, what must hold before each transition,
// how transitions are recorded and rolled back, and how audit
// statistics are derived from the timeline.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/paddockhq/dealflow/pkg/eventbus"
	"github.com/paddockhq/dealflow/pkg/locks"
	"github.com/paddockhq/dealflow/pkg/models"
	"github.com/paddockhq/dealflow/pkg/persistence"
	"github.com/paddockhq/dealflow/pkg/registry"
	"github.com/paddockhq/dealflow/pkg/timeline"
)

// StageMetrics is the read-side summary for one deal, recomputed from
// the timeline on every call and never persisted.
type StageMetrics struct {
	AverageDwell        time.Duration             `json:"average_dwell"`
	ForwardTransitions  int                       `json:"forward_transitions"`
	Rollbacks           int                       `json:"rollbacks"`
	CompletionRate      float64                   `json:"completion_rate"`
	Blockers            []models.StageRequirement `json:"blockers"`
	PendingActions      []string                  `json:"pending_actions"`
	ProjectedCompletion *time.Time                `json:"projected_completion,omitempty"`
}

// Engine is the facade collaborators call. Each mutation acquires the
// deal's lock, reloads the deal, re-validates inside the critical
// section, and saves with the optimistic version check, closing the
// gap between a standalone Validate call and the actual apply.
type Engine struct {
	logger      *slog.Logger
	registry    *registry.Registry
	persistence persistence.Persistence
	locker      locks.DealLocker
	validator   *Validator
	evaluator   *Evaluator
	executor    *Executor
}

// New creates a workflow engine.
func New(logger *slog.Logger, reg *registry.Registry, store persistence.Persistence, locker locks.DealLocker, bus eventbus.EventPublisher) *Engine {
	return &Engine{
		logger:      logger,
		registry:    reg,
		persistence: store,
		locker:      locker,
		validator:   NewValidator(reg),
		evaluator:   NewEvaluator(reg),
		executor:    NewExecutor(logger, reg, store, bus),
	}
}

// ValidateTransition checks whether the deal may move to targetStage.
// Pure read: it takes no lock and changes nothing, so its answer can go
// stale; mutations re-validate internally.
func (e *Engine) ValidateTransition(ctx context.Context, dealID string, targetStage models.DealStage, progress float64) (*ValidationResult, error) {
	deal, err := e.loadDeal(ctx, "ValidateTransition", dealID)
	if err != nil {
		return nil, err
	}

	result := e.validator.Validate(deal, targetStage, progress)

	return &result, nil
}

// TransitionStage moves the deal to an adjacent stage.
func (e *Engine) TransitionStage(ctx context.Context, dealID string, targetStage models.DealStage, actor, reason string, progress float64) (*models.Deal, error) {
	release, err := e.locker.Acquire(ctx, dealID)
	if err != nil {
		return nil, err
	}

	defer release()

	deal, err := e.loadDeal(ctx, "TransitionStage", dealID)
	if err != nil {
		return nil, err
	}

	updated, err := e.executor.ApplyStage(ctx, deal, targetStage, actor, reason, progress)
	if err != nil {
		return nil, err
	}

	e.logger.Info("deal stage transitioned",
		"deal_id", dealID,
		"deal_type", updated.Type,
		"previous_stage", deal.Stage,
		"new_stage", updated.Stage,
		"actor", actor)

	return updated, nil
}

// TransitionStatus moves the deal between lifecycle statuses.
func (e *Engine) TransitionStatus(ctx context.Context, dealID string, targetStatus models.DealStatus, actor, reason string) (*models.Deal, error) {
	release, err := e.locker.Acquire(ctx, dealID)
	if err != nil {
		return nil, err
	}

	defer release()

	deal, err := e.loadDeal(ctx, "TransitionStatus", dealID)
	if err != nil {
		return nil, err
	}

	updated, err := e.executor.ApplyStatus(ctx, deal, targetStatus, actor, reason)
	if err != nil {
		return nil, err
	}

	e.logger.Info("deal status transitioned",
		"deal_id", dealID,
		"deal_type", updated.Type,
		"previous_status", deal.Status,
		"new_status", updated.Status,
		"actor", actor)

	return updated, nil
}

// RollbackStage moves the deal back to the immediately preceding stage.
func (e *Engine) RollbackStage(ctx context.Context, dealID string, targetStage models.DealStage, actor string) (*models.Deal, error) {
	release, err := e.locker.Acquire(ctx, dealID)
	if err != nil {
		return nil, err
	}

	defer release()

	deal, err := e.loadDeal(ctx, "RollbackStage", dealID)
	if err != nil {
		return nil, err
	}

	updated, err := e.executor.Rollback(ctx, deal, targetStage, actor)
	if err != nil {
		return nil, err
	}

	e.logger.Info("deal stage rolled back",
		"deal_id", dealID,
		"deal_type", updated.Type,
		"previous_stage", deal.Stage,
		"new_stage", updated.Stage,
		"actor", actor)

	return updated, nil
}

// GetTimeline returns a copy of the deal's timeline in append order,
// which is also chronological order.
func (e *Engine) GetTimeline(ctx context.Context, dealID string) ([]models.TimelineEntry, error) {
	deal, err := e.loadDeal(ctx, "GetTimeline", dealID)
	if err != nil {
		return nil, err
	}

	entries := make([]models.TimelineEntry, len(deal.Timeline))
	copy(entries, deal.Timeline)

	return entries, nil
}

// GetStageMetrics derives dwell, rollback, and projection statistics
// from the deal's timeline, plus the unsatisfied requirements blocking
// entry to the next stage.
func (e *Engine) GetStageMetrics(ctx context.Context, dealID string, progress float64) (*StageMetrics, error) {
	deal, err := e.loadDeal(ctx, "GetStageMetrics", dealID)
	if err != nil {
		return nil, err
	}

	stats := timeline.ComputeStats(deal.Timeline)
	completionRate := e.completionRate(deal)

	metrics := &StageMetrics{
		AverageDwell:        stats.AverageDwell,
		ForwardTransitions:  stats.ForwardTransitions,
		Rollbacks:           stats.Rollbacks,
		CompletionRate:      completionRate,
		Blockers:            make([]models.StageRequirement, 0),
		PendingActions:      make([]string, 0),
		ProjectedCompletion: timeline.ProjectCompletion(time.Now().UTC(), stats, completionRate),
	}

	if next, ok := e.registry.NextStage(deal.Type, deal.Stage); ok {
		evaluation := e.evaluator.Evaluate(deal, next, progress)
		metrics.Blockers = evaluation.Missing
		metrics.PendingActions = timeline.PendingActions(evaluation.Missing)
	}

	return metrics, nil
}

// completionRate is how far along the ordered stage list the deal sits,
// as a percentage: 0 at the first stage, 100 at the last.
func (e *Engine) completionRate(deal *models.Deal) float64 {
	stages := e.registry.GetConfig(deal.Type).Stages

	index, ok := e.registry.StageIndex(deal.Type, deal.Stage)
	if !ok || len(stages) < 2 {
		return 0
	}

	return float64(index) / float64(len(stages)-1) * 100
}

// loadDeal normalizes the store's not-found convention into
// ErrDealNotFound so callers never see a nil deal with a nil error.
func (e *Engine) loadDeal(ctx context.Context, op, dealID string) (*models.Deal, error) {
	deal, err := e.persistence.DealByID(ctx, dealID)
	if err != nil {
		return nil, err
	}

	if deal == nil {
		return nil, persistence.NewDealError(op, dealID, persistence.ErrDealNotFound)
	}

	return deal, nil
}
