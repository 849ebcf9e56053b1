package enums

import "fmt"

// ActorRole is the role carried in access tokens.
type ActorRole string

const (
	ActorRoleAdmin     ActorRole = "admin"
	ActorRoleCorporate ActorRole = "corporate"
	ActorRoleMedicine  ActorRole = "medicine"
	ActorRoleCourier   ActorRole = "courier"
)

var validActorRoles = []ActorRole{
	ActorRoleAdmin,
	ActorRoleCorporate,
	ActorRoleMedicine,
	ActorRoleCourier,
}

// String implements fmt.Stringer.
func (r ActorRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ActorRole.
func (r ActorRole) IsValid() bool {
	for _, candidate := range validActorRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// RequiresEntity reports whether tokens for this role must name a billing entity or courier.
func (r ActorRole) RequiresEntity() bool {
	return r != ActorRoleAdmin
}

// ParseActorRole converts raw input into an ActorRole.
func ParseActorRole(value string) (ActorRole, error) {
	for _, candidate := range validActorRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid actor role %q", value)
}
