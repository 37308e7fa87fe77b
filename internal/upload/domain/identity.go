package domain

import "strings"

// Role of an authenticated caller.
type Role string

const (
	RoleStudent     Role = "student"
	RoleCompany     Role = "company"
	RoleCoordinator Role = "coordinator"
)

// ParseRole accepts the roles issued by the identity provider.
func ParseRole(value string) (Role, bool) {
	switch role := Role(strings.ToLower(strings.TrimSpace(value))); role {
	case RoleStudent, RoleCompany, RoleCoordinator:
		return role, true
	}
	return "", false
}

// Identity is the caller as supplied by the authentication middleware. For
// company callers ID is the company id.
type Identity struct {
	ID    string
	Role  Role
	Email string
}

func (i Identity) Is(role Role) bool {
	return i.Role == role
}
