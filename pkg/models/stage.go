package models

// DealStage is a named phase of a deal's progress. The enum only names
// stages; the order a deal moves through them is defined per deal type
// by the registry, and adjacency is always computed against that
// per-type ordered list, never against this declaration order.
type DealStage string

const (
	StageInitiation    DealStage = "initiation"
	StageDiscussion    DealStage = "discussion"
	StageEvaluation    DealStage = "evaluation"
	StageDocumentation DealStage = "documentation"
	StageClosing       DealStage = "closing"
	StageComplete      DealStage = "complete"
)

// String returns the string representation of the stage.
func (s DealStage) String() string {
	return string(s)
}

// IsValid returns true if the stage is a known value.
func (s DealStage) IsValid() bool {
	switch s {
	case StageInitiation, StageDiscussion, StageEvaluation, StageDocumentation, StageClosing, StageComplete:
		return true
	default:
		return false
	}
}
