package enums

import "fmt"

// DispatchStatus records the outcome of sending an RFP to one vendor.
type DispatchStatus string

const (
	DispatchStatusSent   DispatchStatus = "SENT"
	DispatchStatusFailed DispatchStatus = "FAILED"
)

var validDispatchStatuses = []DispatchStatus{
	DispatchStatusSent,
	DispatchStatusFailed,
}

// IsValid checks whether the given status matches the canonical enum.
func (d DispatchStatus) IsValid() bool {
	for _, candidate := range validDispatchStatuses {
		if candidate == d {
			return true
		}
	}
	return false
}

// ParseDispatchStatus converts raw strings into DispatchStatus.
func ParseDispatchStatus(value string) (DispatchStatus, error) {
	for _, candidate := range validDispatchStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid dispatch status %q", value)
}
