// Package main provides the Dealflow reminder service: a periodic
// sweep over active deals that publishes a pending-requirements event
// for every deal whose next stage still has unsatisfied requirements.
// Notification delivery is a downstream consumer concern; this service
// only emits.
package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/paddockhq/dealflow/pkg/engine"
	"github.com/paddockhq/dealflow/pkg/eventbus"
	"github.com/paddockhq/dealflow/pkg/events"
	"github.com/paddockhq/dealflow/pkg/models"
	"github.com/paddockhq/dealflow/pkg/otelhelper"
	"github.com/paddockhq/dealflow/pkg/persistence"
	"github.com/paddockhq/dealflow/pkg/registry"
	"github.com/robfig/cron/v3"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const sweepPageSize = 100

type Reminders struct {
	id          string
	logger      *slog.Logger
	persistence persistence.Persistence
	eventBus    eventbus.EventPublisher
	registry    *registry.Registry
	evaluator   *engine.Evaluator
	tracer      trace.Tracer
}

func NewReminders(
	id string,
	logger *slog.Logger,
	store persistence.Persistence,
	eventBus eventbus.EventPublisher,
	tracer trace.Tracer,
) *Reminders {
	reg := registry.NewRegistry()

	return &Reminders{
		id:          id,
		logger:      logger,
		persistence: store,
		eventBus:    eventBus,
		registry:    reg,
		evaluator:   engine.NewEvaluator(reg),
		tracer:      tracer,
	}
}

// Start runs the sweep on the given cron schedule until the context is
// cancelled.
func (r *Reminders) Start(ctx context.Context, schedule string) error {
	scheduler := cron.New()

	_, err := scheduler.AddFunc(schedule, func() {
		if err := r.Sweep(ctx); err != nil {
			r.logger.ErrorContext(ctx, "reminder sweep failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule reminder sweep: %w", err)
	}

	r.logger.InfoContext(ctx, "reminder service started", "schedule", schedule)
	scheduler.Start()

	<-ctx.Done()

	stopCtx := scheduler.Stop()
	<-stopCtx.Done()

	return nil
}

// Sweep pages through active deals and publishes a reminder event for
// each one whose next stage still has missing requirements. Deals at
// their final stage have no next stage and are skipped.
func (r *Reminders) Sweep(ctx context.Context) error {
	ctx, span := otelhelper.StartSpan(ctx, r.tracer, "reminders.sweep",
		attribute.String(otelhelper.ServiceIDKey, r.id))
	defer span.End()

	active := models.StatusActive
	offset := 0
	reminded := 0

	for {
		result, err := r.persistence.ListDeals(ctx, persistence.ListDealsOptions{
			Limit:  sweepPageSize,
			Offset: offset,
			Status: &active,
		})
		if err != nil {
			otelhelper.SetError(span, err)

			return fmt.Errorf("failed to list active deals: %w", err)
		}

		for _, deal := range result.Deals {
			if r.remind(ctx, deal) {
				reminded++
			}
		}

		if !result.HasNextPage {
			break
		}

		offset += sweepPageSize
	}

	r.logger.InfoContext(ctx, "reminder sweep complete", "reminded", reminded)
	span.SetAttributes(attribute.Int("dealflow.reminders.emitted", reminded))

	return nil
}

func (r *Reminders) remind(ctx context.Context, deal *models.Deal) bool {
	next, ok := r.registry.NextStage(deal.Type, deal.Stage)
	if !ok {
		return false
	}

	// No progress signal is available offline, so approval and
	// condition requirements always count as missing here. That is the
	// desired reminder behavior: nudge until somebody acts.
	evaluation := r.evaluator.Evaluate(deal, next, 0)
	if len(evaluation.Missing) == 0 {
		return false
	}

	event := events.DealRequirementsPending{
		BaseEvent:    events.NewBaseEvent(events.DealRequirementsPendingEvent, deal.ID),
		DealType:     deal.Type,
		CurrentStage: deal.Stage,
		NextStage:    next,
		Missing:      evaluation.Missing,
	}

	if err := r.eventBus.Publish(ctx, deal.ID, event); err != nil {
		r.logger.ErrorContext(ctx, "failed to publish reminder event",
			"deal_id", deal.ID, "error", err)

		return false
	}

	return true
}

func generateRemindersID() string {
	return fmt.Sprintf("reminders-%s", uuid.New().String()[:8])
}
