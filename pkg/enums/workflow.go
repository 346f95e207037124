package enums

import "fmt"

// WorkflowScreen is the screen a reservation workflow is currently on.
type WorkflowScreen string

const (
	ScreenSelect    WorkflowScreen = "SELECT"
	ScreenValidate  WorkflowScreen = "VALIDATE"
	ScreenConfirmed WorkflowScreen = "CONFIRMED"
)

var validWorkflowScreens = []WorkflowScreen{
	ScreenSelect,
	ScreenValidate,
	ScreenConfirmed,
}

// String implements fmt.Stringer.
func (s WorkflowScreen) String() string {
	return string(s)
}

// IsValid reports whether the value is a known WorkflowScreen.
func (s WorkflowScreen) IsValid() bool {
	for _, candidate := range validWorkflowScreens {
		if candidate == s {
			return true
		}
	}
	return false
}

// WorkflowMode selects which state transition a workflow submits.
type WorkflowMode string

const (
	// WorkflowModeHold reserves available stock against a quote.
	WorkflowModeHold WorkflowMode = "hold"
	// WorkflowModeConsume deducts held stock against a work order.
	WorkflowModeConsume WorkflowMode = "consume"
)

var validWorkflowModes = []WorkflowMode{
	WorkflowModeHold,
	WorkflowModeConsume,
}

// String implements fmt.Stringer.
func (m WorkflowMode) String() string {
	return string(m)
}

// IsValid reports whether the value is a known WorkflowMode.
func (m WorkflowMode) IsValid() bool {
	for _, candidate := range validWorkflowModes {
		if candidate == m {
			return true
		}
	}
	return false
}

// ParseWorkflowMode converts raw input into a WorkflowMode.
func ParseWorkflowMode(value string) (WorkflowMode, error) {
	for _, candidate := range validWorkflowModes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid workflow mode %q", value)
}
