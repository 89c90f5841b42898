package models

import "fmt"

// Role is the closed set of user roles in the system. Every protected
// operation is gated on a fixed allow-list of these values.
type Role string

// All roles known to the system
const (
	RoleCitizen    Role = "citizen"
	RolePolice     Role = "police"
	RoleCourt      Role = "court"
	RoleLawyer     Role = "lawyer"
	RoleFinance    Role = "finance"
	RoleSuperAdmin Role = "superadmin"
)

// Roles lists every valid role
var Roles = []Role{RoleCitizen, RolePolice, RoleCourt, RoleLawyer, RoleFinance, RoleSuperAdmin}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// ParseRole converts a raw string into a Role, rejecting anything outside the
// closed set
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return r, nil
}
