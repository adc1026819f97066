package domain

import dErrors "fintrack/pkg/domain-errors"

// Role is a user's access role. Closed enumeration; construct via ParseRole
// at trust boundaries.
type Role string

// Supported roles.
const (
	RoleOwner    Role = "owner"
	RoleMember   Role = "member"
	RoleReadOnly Role = "readonly"
)

// validRoles is the single source of truth for supported roles.
var validRoles = map[Role]bool{
	RoleOwner:    true,
	RoleMember:   true,
	RoleReadOnly: true,
}

// ParseRole validates a role from external input.
func ParseRole(s string) (Role, error) {
	if s == "" {
		return "", dErrors.New(dErrors.CodeValidation, "role cannot be empty")
	}
	r := Role(s)
	if !r.IsValid() {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown role %q", s)
	}
	return r, nil
}

// IsValid checks membership in the supported set.
func (r Role) IsValid() bool { return validRoles[r] }

func (r Role) String() string { return string(r) }

// CanWrite reports whether the role permits mutating operations.
func (r Role) CanWrite() bool { return r == RoleOwner || r == RoleMember }
