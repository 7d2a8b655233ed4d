package models

// DealType categorizes a horse transaction. It is chosen at deal
// creation and never changes for the lifetime of the deal.
type DealType string

const (
	DealTypeFullSale    DealType = "full_sale"
	DealTypeLease       DealType = "lease"
	DealTypePartnership DealType = "partnership"
	DealTypeBreeding    DealType = "breeding"
	DealTypeTraining    DealType = "training"
)

// AllDealTypes lists every supported deal type.
var AllDealTypes = []DealType{
	DealTypeFullSale,
	DealTypeLease,
	DealTypePartnership,
	DealTypeBreeding,
	DealTypeTraining,
}

// String returns the string representation of the deal type.
func (t DealType) String() string {
	return string(t)
}

// IsValid returns true if the deal type is a known value.
func (t DealType) IsValid() bool {
	switch t {
	case DealTypeFullSale, DealTypeLease, DealTypePartnership, DealTypeBreeding, DealTypeTraining:
		return true
	default:
		return false
	}
}
