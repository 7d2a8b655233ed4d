// Package registry holds the static per-deal-type configuration: the
// ordered stage list, participant and document expectations, per-stage
// requirement sets, per-stage field rules, and the JSON Schema for the
// type's terms. Deal-type variability is data in this one table, not a
// type hierarchy, so the validator and executor stay uniform across
// types.
package registry

import (
	"fmt"

	"github.com/paddockhq/dealflow/pkg/models"
)

// FieldRule is a custom validator for a single field path (for example
// "terms.price") run when a transition targets its stage. A failing
// rule is a hard validation error, unlike missing stage requirements
// which are advisory.
type FieldRule struct {
	Field       string
	Description string
	Check       func(value any) bool
}

// DealTypeConfig is the full static configuration for one deal type.
type DealTypeConfig struct {
	// Stages is the ordered list the deal moves through. Adjacency for
	// transition validation is defined over this slice.
	Stages []models.DealStage

	RequiredRoles    []models.ParticipantRole
	RecommendedRoles []models.ParticipantRole

	RequiredDocuments    []string
	RecommendedDocuments []string

	// StageRequirements declares what should be true before entering
	// each stage.
	StageRequirements map[models.DealStage][]models.StageRequirement

	// Validations are the hard per-stage field rules.
	Validations map[models.DealStage][]FieldRule

	// TermsSchema is a JSON Schema document constraining the free-form
	// terms of this deal type, enforced at the CRUD boundary.
	TermsSchema map[string]any
}

// Registry is the immutable lookup table of deal type configurations.
type Registry struct {
	configs map[models.DealType]DealTypeConfig
}

// NewRegistry builds the registry with the built-in configuration for
// every deal type.
func NewRegistry() *Registry {
	return &Registry{configs: defaultConfigs()}
}

// GetConfig returns the configuration for a deal type. Every deal type
// has a configuration; asking for an unknown one is a programming
// error, not a runtime condition, and panics.
func (r *Registry) GetConfig(dealType models.DealType) DealTypeConfig {
	config, ok := r.configs[dealType]
	if !ok {
		panic(fmt.Sprintf("deal type %q is not configured", dealType))
	}

	return config
}

// StageIndex returns the position of a stage within the type's ordered
// stage list, and whether the stage belongs to the list at all.
func (r *Registry) StageIndex(dealType models.DealType, stage models.DealStage) (int, bool) {
	for i, s := range r.GetConfig(dealType).Stages {
		if s == stage {
			return i, true
		}
	}

	return 0, false
}

// NextStage returns the stage after the given one in the type's ordered
// list, or false when the stage is last or unknown.
func (r *Registry) NextStage(dealType models.DealType, stage models.DealStage) (models.DealStage, bool) {
	stages := r.GetConfig(dealType).Stages

	index, ok := r.StageIndex(dealType, stage)
	if !ok || index+1 >= len(stages) {
		return "", false
	}

	return stages[index+1], true
}

// PreviousStage returns the stage before the given one in the type's
// ordered list, or false when the stage is first or unknown.
func (r *Registry) PreviousStage(dealType models.DealType, stage models.DealStage) (models.DealStage, bool) {
	stages := r.GetConfig(dealType).Stages

	index, ok := r.StageIndex(dealType, stage)
	if !ok || index == 0 {
		return "", false
	}

	return stages[index-1], true
}

// FirstStage returns the initial stage for a deal type.
func (r *Registry) FirstStage(dealType models.DealType) models.DealStage {
	return r.GetConfig(dealType).Stages[0]
}
