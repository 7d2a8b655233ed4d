package models

// ParticipantRole identifies the part a user plays in a deal.
type ParticipantRole string

const (
	RoleSeller       ParticipantRole = "seller"
	RoleBuyer        ParticipantRole = "buyer"
	RoleAgent        ParticipantRole = "agent"
	RoleVeterinarian ParticipantRole = "veterinarian"
	RoleTrainer      ParticipantRole = "trainer"
	RoleLessor       ParticipantRole = "lessor"
	RoleLessee       ParticipantRole = "lessee"
	RoleStudOwner    ParticipantRole = "stud_owner"
	RoleMareOwner    ParticipantRole = "mare_owner"
)

// IsValid returns true if the role is a known value.
func (r ParticipantRole) IsValid() bool {
	switch r {
	case RoleSeller, RoleBuyer, RoleAgent, RoleVeterinarian, RoleTrainer,
		RoleLessor, RoleLessee, RoleStudOwner, RoleMareOwner:
		return true
	default:
		return false
	}
}

// Participant links a user to a deal in a given role.
type Participant struct {
	ID          string          `json:"id"           validate:"required"`
	UserID      string          `json:"user_id"      validate:"required"`
	Role        ParticipantRole `json:"role"         validate:"required"`
	Permissions []string        `json:"permissions,omitempty"`
}

// DocumentStatus is the review state of an uploaded document.
type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "pending"
	DocumentApproved DocumentStatus = "approved"
	DocumentRejected DocumentStatus = "rejected"
)

// Document records an uploaded document's type and review status. The
// engine only reads these fields; document content lives in external
// file storage.
type Document struct {
	ID           string         `json:"id"            validate:"required"`
	DocumentType string         `json:"document_type" validate:"required"`
	Status       DocumentStatus `json:"status"        validate:"required,oneof=pending approved rejected"`
}
