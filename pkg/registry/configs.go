package registry

import (
	"strings"

	"github.com/paddockhq/dealflow/pkg/models"
)

// LookupField resolves a dotted field path (for example "terms.price")
// against nested map data.
func LookupField(data map[string]any, path string) (any, bool) {
	parts := strings.Split(path, ".")

	var current any = data

	for _, part := range parts {
		asMap, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}

		current, ok = asMap[part]
		if !ok {
			return nil, false
		}
	}

	return current, true
}

func positiveNumber(value any) bool {
	switch v := value.(type) {
	case float64:
		return v > 0
	case float32:
		return v > 0
	case int:
		return v > 0
	case int64:
		return v > 0
	default:
		return false
	}
}

func atLeastOne(value any) bool {
	switch v := value.(type) {
	case float64:
		return v >= 1
	case int:
		return v >= 1
	case int64:
		return v >= 1
	default:
		return false
	}
}

func nonEmptyString(value any) bool {
	s, ok := value.(string)

	return ok && strings.TrimSpace(s) != ""
}

func defaultConfigs() map[models.DealType]DealTypeConfig {
	return map[models.DealType]DealTypeConfig{
		models.DealTypeFullSale:    fullSaleConfig(),
		models.DealTypeLease:       leaseConfig(),
		models.DealTypePartnership: partnershipConfig(),
		models.DealTypeBreeding:    breedingConfig(),
		models.DealTypeTraining:    trainingConfig(),
	}
}

func fullSaleConfig() DealTypeConfig {
	return DealTypeConfig{
		Stages: []models.DealStage{
			models.StageInitiation,
			models.StageDiscussion,
			models.StageEvaluation,
			models.StageDocumentation,
			models.StageClosing,
			models.StageComplete,
		},
		RequiredRoles:        []models.ParticipantRole{models.RoleSeller, models.RoleBuyer},
		RecommendedRoles:     []models.ParticipantRole{models.RoleAgent, models.RoleVeterinarian},
		RequiredDocuments:    []string{"Intent to purchase", "Bill of sale", "Transfer of ownership"},
		RecommendedDocuments: []string{"Veterinary examination report", "Insurance certificate"},
		StageRequirements: map[models.DealStage][]models.StageRequirement{
			models.StageDiscussion: {
				{Type: models.RequirementParticipant, Description: string(models.RoleBuyer)},
				{Type: models.RequirementDocument, Description: "Intent to purchase"},
			},
			models.StageEvaluation: {
				{Type: models.RequirementParticipant, Description: string(models.RoleVeterinarian)},
				{Type: models.RequirementDocument, Description: "Veterinary examination report"},
				{Type: models.RequirementCondition, Description: "Pre-purchase examination scheduled"},
			},
			models.StageDocumentation: {
				{Type: models.RequirementDocument, Description: "Bill of sale"},
				{Type: models.RequirementApproval, Description: "Sale terms approved by both parties"},
			},
			models.StageClosing: {
				{Type: models.RequirementDocument, Description: "Transfer of ownership"},
				{Type: models.RequirementCondition, Description: "Payment arrangements confirmed"},
			},
			models.StageComplete: {
				{Type: models.RequirementApproval, Description: "Final walkthrough confirmed"},
			},
		},
		Validations: map[models.DealStage][]FieldRule{
			models.StageDocumentation: {
				{Field: "terms.price", Description: "sale price must be positive", Check: positiveNumber},
			},
			models.StageClosing: {
				{Field: "terms.price", Description: "sale price must be positive", Check: positiveNumber},
				{Field: "terms.payment_method", Description: "payment method must be agreed", Check: nonEmptyString},
			},
		},
		TermsSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"price":          map[string]any{"type": "number", "exclusiveMinimum": 0},
				"currency":       map[string]any{"type": "string", "minLength": 3, "maxLength": 3},
				"payment_method": map[string]any{"type": "string"},
				"trial_period_days": map[string]any{
					"type": "integer", "minimum": 0, "maximum": 90,
				},
			},
			"additionalProperties": true,
		},
	}
}

func leaseConfig() DealTypeConfig {
	return DealTypeConfig{
		// Leases skip the formal evaluation phase: condition checks are
		// folded into discussion between lessor and lessee.
		Stages: []models.DealStage{
			models.StageInitiation,
			models.StageDiscussion,
			models.StageDocumentation,
			models.StageClosing,
			models.StageComplete,
		},
		RequiredRoles:        []models.ParticipantRole{models.RoleLessor, models.RoleLessee},
		RecommendedRoles:     []models.ParticipantRole{models.RoleAgent},
		RequiredDocuments:    []string{"Lease agreement"},
		RecommendedDocuments: []string{"Insurance certificate", "Care instructions"},
		StageRequirements: map[models.DealStage][]models.StageRequirement{
			models.StageDiscussion: {
				{Type: models.RequirementParticipant, Description: string(models.RoleLessee)},
			},
			models.StageDocumentation: {
				{Type: models.RequirementDocument, Description: "Lease agreement"},
				{Type: models.RequirementApproval, Description: "Lease terms approved by both parties"},
			},
			models.StageClosing: {
				{Type: models.RequirementDocument, Description: "Insurance certificate"},
				{Type: models.RequirementCondition, Description: "First payment confirmed"},
			},
		},
		Validations: map[models.DealStage][]FieldRule{
			models.StageDocumentation: {
				{Field: "terms.monthly_rate", Description: "monthly rate must be positive", Check: positiveNumber},
				{Field: "terms.duration_months", Description: "lease duration must be at least one month", Check: atLeastOne},
			},
		},
		TermsSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"monthly_rate":    map[string]any{"type": "number", "exclusiveMinimum": 0},
				"duration_months": map[string]any{"type": "integer", "minimum": 1},
				"currency":        map[string]any{"type": "string", "minLength": 3, "maxLength": 3},
				"purchase_option": map[string]any{"type": "boolean"},
			},
			"additionalProperties": true,
		},
	}
}

func partnershipConfig() DealTypeConfig {
	return DealTypeConfig{
		Stages: []models.DealStage{
			models.StageInitiation,
			models.StageDiscussion,
			models.StageEvaluation,
			models.StageDocumentation,
			models.StageClosing,
			models.StageComplete,
		},
		RequiredRoles:        []models.ParticipantRole{models.RoleSeller, models.RoleBuyer},
		RecommendedRoles:     []models.ParticipantRole{models.RoleAgent, models.RoleTrainer},
		RequiredDocuments:    []string{"Partnership agreement"},
		RecommendedDocuments: []string{"Valuation report"},
		StageRequirements: map[models.DealStage][]models.StageRequirement{
			models.StageDiscussion: {
				{Type: models.RequirementParticipant, Description: string(models.RoleBuyer)},
			},
			models.StageEvaluation: {
				{Type: models.RequirementDocument, Description: "Valuation report"},
				{Type: models.RequirementCondition, Description: "Ownership split negotiated"},
			},
			models.StageDocumentation: {
				{Type: models.RequirementDocument, Description: "Partnership agreement"},
				{Type: models.RequirementApproval, Description: "Partnership terms approved by all partners"},
			},
			models.StageClosing: {
				{Type: models.RequirementCondition, Description: "Capital contributions confirmed"},
			},
		},
		Validations: map[models.DealStage][]FieldRule{
			models.StageDocumentation: {
				{Field: "terms.share_percentage", Description: "share percentage must be positive", Check: positiveNumber},
			},
		},
		TermsSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"share_percentage": map[string]any{"type": "number", "exclusiveMinimum": 0, "maximum": 100},
				"valuation":        map[string]any{"type": "number", "exclusiveMinimum": 0},
				"currency":         map[string]any{"type": "string", "minLength": 3, "maxLength": 3},
			},
			"additionalProperties": true,
		},
	}
}

func breedingConfig() DealTypeConfig {
	return DealTypeConfig{
		// Breeding deals go straight from initiation to suitability
		// evaluation: there is no open discussion phase, the stud terms
		// are largely fixed by the stud owner.
		Stages: []models.DealStage{
			models.StageInitiation,
			models.StageEvaluation,
			models.StageDocumentation,
			models.StageClosing,
			models.StageComplete,
		},
		RequiredRoles:        []models.ParticipantRole{models.RoleStudOwner, models.RoleMareOwner},
		RecommendedRoles:     []models.ParticipantRole{models.RoleVeterinarian},
		RequiredDocuments:    []string{"Breeding contract"},
		RecommendedDocuments: []string{"Mare health certificate", "Stud health certificate"},
		StageRequirements: map[models.DealStage][]models.StageRequirement{
			models.StageEvaluation: {
				{Type: models.RequirementParticipant, Description: string(models.RoleVeterinarian)},
				{Type: models.RequirementDocument, Description: "Mare health certificate"},
			},
			models.StageDocumentation: {
				{Type: models.RequirementDocument, Description: "Breeding contract"},
				{Type: models.RequirementApproval, Description: "Breeding terms approved by both owners"},
			},
			models.StageClosing: {
				{Type: models.RequirementCondition, Description: "Stud fee payment confirmed"},
			},
		},
		Validations: map[models.DealStage][]FieldRule{
			models.StageDocumentation: {
				{Field: "terms.stud_fee", Description: "stud fee must be positive", Check: positiveNumber},
			},
		},
		TermsSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"stud_fee":             map[string]any{"type": "number", "exclusiveMinimum": 0},
				"live_foal_guarantee":  map[string]any{"type": "boolean"},
				"breeding_method":      map[string]any{"type": "string"},
				"currency":             map[string]any{"type": "string", "minLength": 3, "maxLength": 3},
			},
			"additionalProperties": true,
		},
	}
}

func trainingConfig() DealTypeConfig {
	return DealTypeConfig{
		// Training engagements skip evaluation as well: the trainer's
		// assessment happens inside discussion before terms are drawn.
		Stages: []models.DealStage{
			models.StageInitiation,
			models.StageDiscussion,
			models.StageDocumentation,
			models.StageClosing,
			models.StageComplete,
		},
		RequiredRoles:        []models.ParticipantRole{models.RoleTrainer},
		RecommendedRoles:     []models.ParticipantRole{models.RoleAgent},
		RequiredDocuments:    []string{"Training agreement"},
		RecommendedDocuments: []string{"Training plan"},
		StageRequirements: map[models.DealStage][]models.StageRequirement{
			models.StageDiscussion: {
				{Type: models.RequirementParticipant, Description: string(models.RoleTrainer)},
			},
			models.StageDocumentation: {
				{Type: models.RequirementDocument, Description: "Training agreement"},
				{Type: models.RequirementApproval, Description: "Training plan approved by owner"},
			},
			models.StageClosing: {
				{Type: models.RequirementCondition, Description: "First month payment confirmed"},
			},
		},
		Validations: map[models.DealStage][]FieldRule{
			models.StageDocumentation: {
				{Field: "terms.monthly_fee", Description: "monthly fee must be positive", Check: positiveNumber},
				{Field: "terms.duration_months", Description: "training duration must be at least one month", Check: atLeastOne},
			},
		},
		TermsSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"monthly_fee":     map[string]any{"type": "number", "exclusiveMinimum": 0},
				"duration_months": map[string]any{"type": "integer", "minimum": 1},
				"discipline":      map[string]any{"type": "string"},
				"currency":        map[string]any{"type": "string", "minLength": 3, "maxLength": 3},
			},
			"additionalProperties": true,
		},
	}
}
