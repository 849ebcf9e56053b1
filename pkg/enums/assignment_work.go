package enums

import "fmt"

// AssignmentWork classifies the task handed to the courier.
type AssignmentWork string

const (
	AssignmentWorkPickup   AssignmentWork = "pickup"
	AssignmentWorkDelivery AssignmentWork = "delivery"
	AssignmentWorkBoth     AssignmentWork = "both"
)

var validAssignmentWorks = []AssignmentWork{
	AssignmentWorkPickup,
	AssignmentWorkDelivery,
	AssignmentWorkBoth,
}

// String implements fmt.Stringer.
func (w AssignmentWork) String() string {
	return string(w)
}

// IsValid reports whether the value is a known AssignmentWork.
func (w AssignmentWork) IsValid() bool {
	for _, candidate := range validAssignmentWorks {
		if candidate == w {
			return true
		}
	}
	return false
}

// ParseAssignmentWork converts raw input into an AssignmentWork.
func ParseAssignmentWork(value string) (AssignmentWork, error) {
	for _, candidate := range validAssignmentWorks {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid assignment work %q", value)
}
