package engine

import (
	"fmt"
	"strings"

	"github.com/paddockhq/dealflow/pkg/models"
	"github.com/paddockhq/dealflow/pkg/registry"
)

// ValidationResult is the full outcome of checking one transition.
// Warnings and ValidationErrors are reported together so a caller can
// render the advisory and the blocking classes distinctly.
type ValidationResult struct {
	CanProgress      bool                      `json:"can_progress"`
	Requirements     []models.StageRequirement `json:"requirements"`
	Warnings         []string                  `json:"warnings"`
	ValidationErrors []string                  `json:"validation_errors"`

	// unreachable marks adjacency or stage-membership violations, which
	// surface as ErrInvalidTransition rather than ValidationFailedError.
	unreachable bool
}

// Validator decides whether a deal may move to a target stage. It is a
// pure read over the deal snapshot and the registry; the executor
// re-runs it inside the per-deal critical section so the state checked
// is the state mutated.
type Validator struct {
	registry  *registry.Registry
	evaluator *Evaluator
}

// NewValidator creates a transition validator.
func NewValidator(reg *registry.Registry) *Validator {
	return &Validator{
		registry:  reg,
		evaluator: NewEvaluator(reg),
	}
}

// Validate applies, in order: stage adjacency within the deal type's
// ordered list; requirement satisfaction; and the per-stage field
// rules. Missing requirements are advisory warnings unless the
// requirement is marked blocking. Field rules are always hard errors.
// Status is not consulted here; the executor enforces it.
func (v *Validator) Validate(deal *models.Deal, targetStage models.DealStage, progress float64) ValidationResult {
	result := ValidationResult{
		Requirements:     v.registry.GetConfig(deal.Type).StageRequirements[targetStage],
		Warnings:         make([]string, 0),
		ValidationErrors: make([]string, 0),
	}

	targetIndex, ok := v.registry.StageIndex(deal.Type, targetStage)
	if !ok {
		result.ValidationErrors = append(result.ValidationErrors,
			fmt.Sprintf("stage %s is not part of the %s workflow", targetStage, deal.Type))
		result.unreachable = true

		return result
	}

	currentIndex, ok := v.registry.StageIndex(deal.Type, deal.Stage)
	if !ok {
		result.ValidationErrors = append(result.ValidationErrors,
			fmt.Sprintf("current stage %s is not part of the %s workflow", deal.Stage, deal.Type))
		result.unreachable = true

		return result
	}

	if distance := targetIndex - currentIndex; distance != 1 && distance != -1 {
		result.ValidationErrors = append(result.ValidationErrors,
			fmt.Sprintf("cannot move from %s to %s: stages must be adjacent", deal.Stage, targetStage))
		result.unreachable = true

		return result
	}

	evaluation := v.evaluator.Evaluate(deal, targetStage, progress)

	for _, requirement := range evaluation.Missing {
		message := fmt.Sprintf("missing %s: %s", requirement.Type, requirement.Description)

		if requirement.Blocking {
			result.ValidationErrors = append(result.ValidationErrors, message)
		} else {
			result.Warnings = append(result.Warnings, message)
		}
	}

	for _, rule := range v.registry.GetConfig(deal.Type).Validations[targetStage] {
		value, found := registry.LookupField(map[string]any{"terms": deal.Terms}, rule.Field)
		if !found || !rule.Check(value) {
			result.ValidationErrors = append(result.ValidationErrors,
				fmt.Sprintf("%s requirement not met", fieldName(rule.Field)))
		}
	}

	result.CanProgress = len(result.ValidationErrors) == 0

	return result
}

// fieldName strips the path prefix from a dotted field path, so
// "terms.price" reports as "price".
func fieldName(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		return path[i+1:]
	}

	return path
}
