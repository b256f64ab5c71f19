package enums

import "fmt"

// RFPStatus maps to the rfp_status enum in Postgres. Status only ever moves
// forward through the lifecycle; nothing transitions an RFP backward.
type RFPStatus string

const (
	RFPStatusDraft      RFPStatus = "DRAFT"
	RFPStatusSent       RFPStatus = "SENT"
	RFPStatusEvaluating RFPStatus = "EVALUATING"
	RFPStatusAwarded    RFPStatus = "AWARDED"
	RFPStatusClosed     RFPStatus = "CLOSED"
)

var rfpStatusOrder = map[RFPStatus]int{
	RFPStatusDraft:      0,
	RFPStatusSent:       1,
	RFPStatusEvaluating: 2,
	RFPStatusAwarded:    3,
	RFPStatusClosed:     4,
}

// IsValid checks whether the given status matches the canonical enum.
func (s RFPStatus) IsValid() bool {
	_, ok := rfpStatusOrder[s]
	return ok
}

// CanAdvanceTo reports whether moving from s to target keeps the lifecycle
// strictly forward.
func (s RFPStatus) CanAdvanceTo(target RFPStatus) bool {
	from, ok := rfpStatusOrder[s]
	if !ok {
		return false
	}
	to, ok := rfpStatusOrder[target]
	if !ok {
		return false
	}
	return to > from
}

// ParseRFPStatus converts raw strings into RFPStatus.
func ParseRFPStatus(value string) (RFPStatus, error) {
	candidate := RFPStatus(value)
	if !candidate.IsValid() {
		return "", fmt.Errorf("invalid rfp status %q", value)
	}
	return candidate, nil
}
