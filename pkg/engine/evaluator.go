package engine

import (
	"github.com/paddockhq/dealflow/pkg/models"
	"github.com/paddockhq/dealflow/pkg/registry"
)

// Evaluation partitions a target stage's declared requirements by
// whether the deal snapshot satisfies them.
type Evaluation struct {
	Satisfied []models.StageRequirement `json:"satisfied"`
	Missing   []models.StageRequirement `json:"missing"`
}

// Evaluator checks a deal snapshot against the registry's declared
// requirements for a stage. Evaluation is a pure read: it never errors
// and never mutates the deal.
type Evaluator struct {
	registry *registry.Registry
}

// NewEvaluator creates a requirement evaluator.
func NewEvaluator(reg *registry.Registry) *Evaluator {
	return &Evaluator{registry: reg}
}

// Evaluate partitions the requirements of targetStage for the deal's
// type. Document requirements need an approved document of the named
// type, participant requirements need a participant holding the named
// role. Approval and condition requirements compare the caller-supplied
// progress signal (percent of stage work complete) against a threshold
// that grows with how deep the target stage sits in the workflow:
// close-enough progress counts as met, existence checks do not bend.
func (e *Evaluator) Evaluate(deal *models.Deal, targetStage models.DealStage, progress float64) Evaluation {
	config := e.registry.GetConfig(deal.Type)
	requirements := config.StageRequirements[targetStage]

	evaluation := Evaluation{
		Satisfied: make([]models.StageRequirement, 0, len(requirements)),
		Missing:   make([]models.StageRequirement, 0),
	}

	threshold := completionThreshold(e.registry, deal.Type, targetStage)

	for _, requirement := range requirements {
		if e.satisfied(deal, requirement, progress, threshold) {
			evaluation.Satisfied = append(evaluation.Satisfied, requirement)
		} else {
			evaluation.Missing = append(evaluation.Missing, requirement)
		}
	}

	return evaluation
}

func (e *Evaluator) satisfied(deal *models.Deal, requirement models.StageRequirement, progress, threshold float64) bool {
	switch requirement.Type {
	case models.RequirementDocument:
		return deal.HasApprovedDocument(requirement.Description)
	case models.RequirementParticipant:
		return deal.HasParticipantRole(models.ParticipantRole(requirement.Description))
	case models.RequirementApproval, models.RequirementCondition:
		return progress >= threshold
	default:
		return false
	}
}

// completionThreshold is (stageIndex+1)/totalStages*100 for the target
// stage within its type's ordered list: entering the last stage demands
// full progress, early stages accept partial progress.
func completionThreshold(reg *registry.Registry, dealType models.DealType, stage models.DealStage) float64 {
	config := reg.GetConfig(dealType)

	index, ok := reg.StageIndex(dealType, stage)
	if !ok {
		return 100
	}

	return float64(index+1) / float64(len(config.Stages)) * 100
}
