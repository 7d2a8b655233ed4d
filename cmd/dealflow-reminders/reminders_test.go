package main

import (
	"context"
	"sync"
	"testing"

	"github.com/paddockhq/dealflow/pkg/eventbus"
	"github.com/paddockhq/dealflow/pkg/events"
	"github.com/paddockhq/dealflow/pkg/log"
	"github.com/paddockhq/dealflow/pkg/models"
	"github.com/paddockhq/dealflow/pkg/persistence/file"
	"github.com/paddockhq/dealflow/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []eventbus.Event
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, event eventbus.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.events = append(p.events, event)

	return nil
}

func (p *recordingPublisher) published() []eventbus.Event {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]eventbus.Event, len(p.events))
	copy(out, p.events)

	return out
}

func newTestReminders(t *testing.T) (*Reminders, *file.Persistence, *recordingPublisher) {
	t.Helper()

	store := file.NewPersistence("file://" + t.TempDir())
	publisher := &recordingPublisher{}
	tracer := noop.NewTracerProvider().Tracer("test")

	reminders := NewReminders("reminders-test", log.WithModule("reminders-test"), store, publisher, tracer)

	return reminders, store, publisher
}

func TestSweep_EmitsForDealsWithMissingRequirements(t *testing.T) {
	reminders, store, publisher := newTestReminders(t)
	ctx := context.Background()

	// A lease at initiation needs a lessee before discussion.
	deal := testutil.NewDeal(models.DealTypeLease)
	require.NoError(t, store.SaveDeal(ctx, deal))

	require.NoError(t, reminders.Sweep(ctx))

	published := publisher.published()
	require.Len(t, published, 1)

	event, ok := published[0].(events.DealRequirementsPending)
	require.True(t, ok)

	assert.Equal(t, events.DealRequirementsPendingEvent, event.GetType())
	assert.Equal(t, deal.ID, event.DealID)
	assert.Equal(t, models.DealTypeLease, event.DealType)
	assert.Equal(t, models.StageInitiation, event.CurrentStage)
	assert.Equal(t, models.StageDiscussion, event.NextStage)
	require.Len(t, event.Missing, 1)
	assert.Equal(t, models.RequirementParticipant, event.Missing[0].Type)
	assert.Equal(t, string(models.RoleLessee), event.Missing[0].Description)
}

func TestSweep_SkipsDealsWithSatisfiedRequirements(t *testing.T) {
	reminders, store, publisher := newTestReminders(t)
	ctx := context.Background()

	deal := testutil.NewDeal(models.DealTypeLease,
		testutil.WithParticipant(models.RoleLessee),
	)
	require.NoError(t, store.SaveDeal(ctx, deal))

	require.NoError(t, reminders.Sweep(ctx))

	assert.Empty(t, publisher.published())
}

func TestSweep_SkipsInactiveDeals(t *testing.T) {
	reminders, store, publisher := newTestReminders(t)
	ctx := context.Background()

	cancelled := testutil.NewDeal(models.DealTypeFullSale,
		testutil.WithStatus(models.StatusCancelled),
	)
	require.NoError(t, store.SaveDeal(ctx, cancelled))

	onHold := testutil.NewDeal(models.DealTypeFullSale,
		testutil.WithStatus(models.StatusOnHold),
	)
	require.NoError(t, store.SaveDeal(ctx, onHold))

	require.NoError(t, reminders.Sweep(ctx))

	assert.Empty(t, publisher.published())
}

func TestSweep_ApprovalRequirementsAlwaysPending(t *testing.T) {
	reminders, store, publisher := newTestReminders(t)
	ctx := context.Background()

	// Entering the final stage demands a confirmed approval; the sweep
	// has no progress signal, so the deal keeps getting nudged.
	deal := testutil.NewDeal(models.DealTypeFullSale,
		testutil.WithStage(models.StageClosing),
	)
	require.NoError(t, store.SaveDeal(ctx, deal))

	require.NoError(t, reminders.Sweep(ctx))

	published := publisher.published()
	require.Len(t, published, 1)

	event, ok := published[0].(events.DealRequirementsPending)
	require.True(t, ok)
	assert.Equal(t, models.StageComplete, event.NextStage)
	require.Len(t, event.Missing, 1)
	assert.Equal(t, models.RequirementApproval, event.Missing[0].Type)
}
