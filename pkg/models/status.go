package models

// DealStatus is the lifecycle flag of a deal, orthogonal to stage
// progress. Invariant: a deal has status completed if and only if its
// stage is complete; cancelled and on_hold freeze the stage but remain
// legal combined with any stage.
type DealStatus string

const (
	StatusActive    DealStatus = "active"
	StatusPending   DealStatus = "pending"
	StatusOnHold    DealStatus = "on_hold"
	StatusCancelled DealStatus = "cancelled"
	StatusCompleted DealStatus = "completed"
)

// String returns the string representation of the status.
func (s DealStatus) String() string {
	return string(s)
}

// IsValid returns true if the status is a known value.
func (s DealStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusPending, StatusOnHold, StatusCancelled, StatusCompleted:
		return true
	default:
		return false
	}
}

// IsTerminal returns true if no further transitions are permitted out
// of this status.
func (s DealStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}
