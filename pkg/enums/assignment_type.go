package enums

import "fmt"

// AssignmentType identifies which order source populated an assignment entry.
type AssignmentType string

const (
	AssignmentTypeCorporate  AssignmentType = "corporate"
	AssignmentTypeOfficeUser AssignmentType = "office_user"
	AssignmentTypeCourierBoy AssignmentType = "courier_boy"
	AssignmentTypeMedicine   AssignmentType = "medicine"
)

var validAssignmentTypes = []AssignmentType{
	AssignmentTypeCorporate,
	AssignmentTypeOfficeUser,
	AssignmentTypeCourierBoy,
	AssignmentTypeMedicine,
}

// String implements fmt.Stringer.
func (t AssignmentType) String() string {
	return string(t)
}

// IsValid reports whether the value is a known AssignmentType.
func (t AssignmentType) IsValid() bool {
	for _, candidate := range validAssignmentTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// UsesMedicineBookings reports whether entries of this type carry medicine bookings
// instead of freight shipments.
func (t AssignmentType) UsesMedicineBookings() bool {
	return t == AssignmentTypeMedicine
}

// ParseAssignmentType converts raw input into an AssignmentType.
func ParseAssignmentType(value string) (AssignmentType, error) {
	for _, candidate := range validAssignmentTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid assignment type %q", value)
}
