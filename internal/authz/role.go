// Package authz implements the role hierarchy and the per-resource
// authorization policies gating every User and Task operation.
package authz

import (
	"fmt"
	"strconv"
)

// Role is an ordinal role in the hierarchy. Higher rank dominates lower.
type Role int

const (
	RoleUser Role = iota
	RoleAdmin
	RoleSuperAdmin
)

const (
	roleUserName       = "user"
	roleAdminName      = "admin"
	roleSuperAdminName = "superadmin"
)

// Status marks whether an account may authenticate. It never participates
// in authorization decisions, only in listing filters.
type Status string

const (
	StatusEnabled  Status = "enabled"
	StatusDisabled Status = "disabled"
)

// String returns the wire form of the role.
func (r Role) String() string {
	switch r {
	case RoleSuperAdmin:
		return roleSuperAdminName
	case RoleAdmin:
		return roleAdminName
	default:
		return roleUserName
	}
}

// Rank returns the ordinal used by Dominates.
func (r Role) Rank() int {
	return int(r)
}

// MarshalJSON emits the wire form of the role.
func (r Role) MarshalJSON() ([]byte, error) {
	return []byte(`"` + r.String() + `"`), nil
}

// UnmarshalJSON parses the wire form of the role.
func (r *Role) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return fmt.Errorf("authz: role must be a string: %w", err)
	}
	parsed, err := ParseRole(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseRole converts a wire string into a Role.
func ParseRole(s string) (Role, error) {
	switch s {
	case roleUserName:
		return RoleUser, nil
	case roleAdminName:
		return RoleAdmin, nil
	case roleSuperAdminName:
		return RoleSuperAdmin, nil
	default:
		return RoleUser, fmt.Errorf("authz: invalid role %q", s)
	}
}

// ParseStatus converts a wire string into a Status.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusEnabled, StatusDisabled:
		return Status(s), nil
	default:
		return StatusDisabled, fmt.Errorf("authz: invalid status %q", s)
	}
}

// IsValidRole reports whether s names a known role. Single source of truth
// for the enumeration; input validation binds to this.
func IsValidRole(s string) bool {
	_, err := ParseRole(s)
	return err == nil
}

// IsValidStatus reports whether s names a known status.
func IsValidStatus(s string) bool {
	_, err := ParseStatus(s)
	return err == nil
}

// Dominates reports whether a outranks b strictly.
func Dominates(a, b Role) bool {
	return a.Rank() > b.Rank()
}

// LowerRoles returns every role strictly below r.
func LowerRoles(r Role) []Role {
	switch r {
	case RoleSuperAdmin:
		return []Role{RoleAdmin, RoleUser}
	case RoleAdmin:
		return []Role{RoleUser}
	default:
		return nil
	}
}

// RoleAmong reports whether r is contained in roles.
func RoleAmong(r Role, roles []Role) bool {
	for _, candidate := range roles {
		if candidate == r {
			return true
		}
	}
	return false
}
