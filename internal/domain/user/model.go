package user

import "slices"

const RoleAdmin = "admin"

// Principal is the authenticated caller as supplied by the token verifier.
type Principal struct {
	UserID string
	Email  string
	Roles  []string
}

func (p Principal) HasRole(role string) bool {
	return slices.Contains(p.Roles, role)
}
