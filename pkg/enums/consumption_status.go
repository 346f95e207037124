package enums

import "fmt"

// ConsumptionStatus labels a consumed product record.
type ConsumptionStatus string

const (
	ConsumptionStatusOnHold   ConsumptionStatus = "On Hold"
	ConsumptionStatusUtilized ConsumptionStatus = "Utilized"
)

var validConsumptionStatuses = []ConsumptionStatus{
	ConsumptionStatusOnHold,
	ConsumptionStatusUtilized,
}

// String implements fmt.Stringer.
func (c ConsumptionStatus) String() string {
	return string(c)
}

// IsValid reports whether the value is a known ConsumptionStatus.
func (c ConsumptionStatus) IsValid() bool {
	for _, candidate := range validConsumptionStatuses {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseConsumptionStatus converts raw input into a ConsumptionStatus.
func ParseConsumptionStatus(value string) (ConsumptionStatus, error) {
	for _, candidate := range validConsumptionStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid consumption status %q", value)
}
