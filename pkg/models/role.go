package models

import "fmt"

// Role identifies the capability class of a subagent.
// Tasks declare the role they require and are only assigned to
// workers of that role.
type Role string

const (
	// RoleCoder is an implementation specialist with full write access.
	RoleCoder Role = "coder"
	// RoleExplorer is a read-only investigation specialist.
	RoleExplorer Role = "explorer"
)

// Valid returns true if the role is a known value.
func (r Role) Valid() bool {
	switch r {
	case RoleCoder, RoleExplorer:
		return true
	default:
		return false
	}
}

// ParseRole converts a string into a Role.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}
