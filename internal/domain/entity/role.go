// Package entity contains the core business objects of the project.
package entity

import "slices"

// Role represents the type of role a user can have in the system.
type Role string

const (
	// RoleClient indicates a borrower account that owns credit requests.
	RoleClient Role = "CLIENT"
	// RoleAgent indicates a credit agent who reviews requests.
	RoleAgent Role = "AGENT"
	// RoleAdmin indicates an administrator.
	RoleAdmin Role = "ADMIN"
)

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a valid value.
func (r Role) IsValid() bool {
	switch r {
	case RoleClient, RoleAgent, RoleAdmin:
		return true
	default:
		return false
	}
}

// CanReview reports whether the role is allowed to act on other users' requests.
// Admin passes every agent gate.
func (r Role) CanReview() bool {
	switch r {
	case RoleAgent, RoleAdmin:
		return true
	case RoleClient:
		return false
	default:
		return false
	}
}

// HomeRoute returns the front-end landing route for the role. Unauthorized
// access is answered with this route so clients redirect instead of erroring.
func (r Role) HomeRoute() string {
	switch r {
	case RoleAdmin:
		return "/admin/dashboard"
	case RoleAgent:
		return "/agent/dashboard"
	case RoleClient:
		return "/dashboard"
	default:
		return "/login"
	}
}

// Roles is a slice of Role for convenience.
type Roles []Role

// Contains checks if the roles slice contains a specific role.
func (rs Roles) Contains(role Role) bool {
	return slices.Contains(rs, role)
}

// HomeRoute returns the landing route of the strongest role held.
func (rs Roles) HomeRoute() string {
	for _, role := range []Role{RoleAdmin, RoleAgent, RoleClient} {
		if rs.Contains(role) {
			return role.HomeRoute()
		}
	}

	return Role("").HomeRoute()
}

// ToStrings converts Roles to []string for JWT compatibility.
func (rs Roles) ToStrings() []string {
	result := make([]string, len(rs))
	for i, r := range rs {
		result[i] = r.String()
	}

	return result
}

// RolesFromStrings converts []string to Roles, filtering out invalid role strings.
func RolesFromStrings(ss []string) Roles {
	result := make(Roles, 0, len(ss))
	for _, s := range ss {
		role := Role(s)
		if role.IsValid() {
			result = append(result, role)
		}
	}

	return result
}
