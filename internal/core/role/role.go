// Package role defines the closed set of caller roles.
// All role comparisons in the platform go through this type; raw string
// comparisons against role literals are forbidden outside this package.
package role

import (
	"fmt"
)

// Role is the caller's role within the platform.
type Role string

const (
	// SuperAdmin is the platform operator. Bypasses tenant scoping.
	SuperAdmin Role = "super-admin"

	// Entrepreneur is a top-level tenant owner.
	Entrepreneur Role = "entrepreneur"

	// Collaborator works under an entrepreneur's tenant.
	Collaborator Role = "collaborator"

	// Customer is an end customer belonging to an entrepreneur's tenant.
	Customer Role = "customer"
)

// All returns every valid role. Order is stable (privilege descending).
func All() []Role {
	return []Role{SuperAdmin, Entrepreneur, Collaborator, Customer}
}

// Parse converts a string to Role with validation.
func Parse(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("unknown role: %q", s)
	}
	return r, nil
}

// Valid reports whether the role is one of the closed set.
func (r Role) Valid() bool {
	switch r {
	case SuperAdmin, Entrepreneur, Collaborator, Customer:
		return true
	}
	return false
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// In reports whether the role is in the given allow-list.
func (r Role) In(allowed ...Role) bool {
	for _, a := range allowed {
		if r == a {
			return true
		}
	}
	return false
}

// IsSuperAdmin reports whether the role bypasses tenant scoping entirely.
func (r Role) IsSuperAdmin() bool {
	return r == SuperAdmin
}

// OwnsTenant reports whether a caller with this role roots its own tenant.
// Entrepreneurs own the tenant identified by their own user id; collaborators
// and customers belong to the tenant of their entrepreneur claim.
func (r Role) OwnsTenant() bool {
	return r == Entrepreneur
}
