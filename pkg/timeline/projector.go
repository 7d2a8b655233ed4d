// Package timeline derives read-side statistics from a deal's
// append-only timeline log. Nothing here mutates a deal or is ever
// persisted: dwell times, rollback counts, and completion projections
// are recomputed from the log on every read so they cannot drift from
// the audit trail.
package timeline

import (
	"fmt"
	"time"

	"github.com/paddockhq/dealflow/pkg/models"
)

// Stats summarizes stage movement derived from a timeline.
type Stats struct {
	// AverageDwell is the mean time between consecutive forward stage
	// changes. Zero when fewer than two forward entries exist.
	AverageDwell time.Duration `json:"average_dwell"`

	ForwardTransitions int `json:"forward_transitions"`
	Rollbacks          int `json:"rollbacks"`
}

// ComputeStats walks the timeline once. Rollback entries count toward
// Rollbacks but are excluded from the forward series, so a deal that
// bounced between two stages does not look fast.
func ComputeStats(entries []models.TimelineEntry) Stats {
	var (
		stats        Stats
		forwardDates []time.Time
	)

	for _, entry := range entries {
		if entry.Type != models.EntryStageChange {
			continue
		}

		if entry.Metadata.IsRollback {
			stats.Rollbacks++

			continue
		}

		stats.ForwardTransitions++

		forwardDates = append(forwardDates, entry.Date)
	}

	if len(forwardDates) < 2 {
		return stats
	}

	var total time.Duration

	for i := 1; i < len(forwardDates); i++ {
		total += forwardDates[i].Sub(forwardDates[i-1])
	}

	stats.AverageDwell = total / time.Duration(len(forwardDates)-1)

	return stats
}

// ProjectCompletion estimates when the deal completes as
// now + averageDwell * (1 - completionRate/100). It is a heuristic, not
// a promise. Returns nil when no dwell history exists to extrapolate
// from, or when the deal already reached its final stage.
func ProjectCompletion(now time.Time, stats Stats, completionRate float64) *time.Time {
	if stats.AverageDwell <= 0 || completionRate >= 100 {
		return nil
	}

	projected := now.Add(time.Duration(float64(stats.AverageDwell) * (1 - completionRate/100)))

	return &projected
}

// PendingActions renders unsatisfied requirements for the next stage as
// human-readable action items.
func PendingActions(missing []models.StageRequirement) []string {
	actions := make([]string, 0, len(missing))

	for _, requirement := range missing {
		switch requirement.Type {
		case models.RequirementDocument:
			actions = append(actions, fmt.Sprintf("Provide document: %s", requirement.Description))
		case models.RequirementParticipant:
			actions = append(actions, fmt.Sprintf("Add participant: %s", requirement.Description))
		case models.RequirementApproval:
			actions = append(actions, fmt.Sprintf("Obtain approval: %s", requirement.Description))
		case models.RequirementCondition:
			actions = append(actions, fmt.Sprintf("Confirm condition: %s", requirement.Description))
		}
	}

	return actions
}
