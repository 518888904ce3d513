package models

import "fmt"

// Role identifies the actor performing an operation. The caller declares
// the role on every request; authorization is a pure function of
// (declared role, record state).
type Role string

const (
	RoleRequestor  Role = "Requestor"
	RoleTeamLeader Role = "Team Leader"
	RoleDirector   Role = "Director"
)

var validRoles = map[Role]bool{
	RoleRequestor:  true,
	RoleTeamLeader: true,
	RoleDirector:   true,
}

// IsValid returns true if the role is one of the three workflow roles
func (r Role) IsValid() bool {
	return validRoles[r]
}

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// ParseRole converts a declared role string into a Role
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.IsValid() {
		return "", fmt.Errorf("unknown role: %q", s)
	}
	return r, nil
}
