package models

// RequirementType categorizes a stage requirement.
type RequirementType string

const (
	RequirementDocument    RequirementType = "document"
	RequirementParticipant RequirementType = "participant"
	RequirementApproval    RequirementType = "approval"
	RequirementCondition   RequirementType = "condition"
)

// StageRequirement is a declarative predicate attached to a
// (deal type, stage) pair in the registry. Requirements are
// configuration, not stored state: whether one is satisfied is computed
// from the deal snapshot at validation time.
//
// Blocking controls enforcement. A missing non-blocking requirement is
// reported as a warning and does not stop a transition; a missing
// blocking one is a hard validation error. All shipped configurations
// leave Blocking false: document and participant requirements are
// advisory, and only the per-stage field rules are enforced. That split
// is a product decision, kept configurable here per requirement.
type StageRequirement struct {
	Type        RequirementType `json:"type"        validate:"required,oneof=document participant approval condition"`
	Description string          `json:"description" validate:"required"`
	Blocking    bool            `json:"blocking,omitempty"`
}
