// Package web provides HTTP request and response types for the deal
// workflow API.
package web

import "github.com/paddockhq/dealflow/pkg/models"

// CreateDealRequest represents the request body for opening a deal.
type CreateDealRequest struct {
	Type  models.DealType `json:"type"            validate:"required"`
	Horse string          `json:"horse"           validate:"required"`
	Owner string          `json:"owner"           validate:"required"`
	Terms map[string]any  `json:"terms,omitempty"`
	Actor string          `json:"actor"           validate:"required"`
}

// UpdateTermsRequest represents the request body for replacing a deal's
// terms.
type UpdateTermsRequest struct {
	Terms map[string]any `json:"terms" validate:"required"`
	Actor string         `json:"actor" validate:"required"`
}

// AddParticipantRequest represents the request body for attaching a
// participant.
type AddParticipantRequest struct {
	UserID string                 `json:"user_id" validate:"required"`
	Role   models.ParticipantRole `json:"role"    validate:"required"`
	Actor  string                 `json:"actor"   validate:"required"`
}

// AddDocumentRequest represents the request body for registering a
// document.
type AddDocumentRequest struct {
	DocumentType string `json:"document_type" validate:"required"`
	Actor        string `json:"actor"         validate:"required"`
}

// SetDocumentStatusRequest represents the request body for moving a
// document through review.
type SetDocumentStatusRequest struct {
	Status models.DocumentStatus `json:"status" validate:"required,oneof=pending approved rejected"`
	Actor  string                `json:"actor"  validate:"required"`
}

// AddCommentRequest represents the request body for a timeline comment.
type AddCommentRequest struct {
	Text  string `json:"text"  validate:"required"`
	Actor string `json:"actor" validate:"required"`
}

// ValidateTransitionRequest represents the request body for a dry-run
// transition check.
type ValidateTransitionRequest struct {
	TargetStage models.DealStage `json:"target_stage" validate:"required"`
	Progress    float64          `json:"progress"     validate:"min=0,max=100"`
}

// TransitionStageRequest represents the request body for a forward
// stage transition.
type TransitionStageRequest struct {
	TargetStage models.DealStage `json:"target_stage"     validate:"required"`
	Actor       string           `json:"actor"            validate:"required"`
	Reason      string           `json:"reason,omitempty"`
	Progress    float64          `json:"progress"         validate:"min=0,max=100"`
}

// TransitionStatusRequest represents the request body for a status
// transition.
type TransitionStatusRequest struct {
	TargetStatus models.DealStatus `json:"target_status"    validate:"required"`
	Actor        string            `json:"actor"            validate:"required"`
	Reason       string            `json:"reason,omitempty"`
}

// RollbackRequest represents the request body for a stage rollback.
type RollbackRequest struct {
	TargetStage models.DealStage `json:"target_stage" validate:"required"`
	Actor       string           `json:"actor"        validate:"required"`
}
