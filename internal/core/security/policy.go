// Package security provides authorization policy predicates.
//
// The policy is two-layered by design: coarse role gates run as route
// middleware (the middleware cannot know a target row's tenant before the
// handler loads it), and fine-grained ownership checks run in services once
// the row is in hand.
package security

import (
	"planora/internal/core/apperror"
	appctx "planora/internal/core/context"
	"planora/internal/core/id"
	"planora/internal/core/role"
	"planora/internal/core/tenant"
)

// RequireRoles denies unless the caller's role is in the allow-list.
func RequireRoles(ident *appctx.Identity, allowed ...role.Role) error {
	if ident == nil {
		return apperror.NewUnauthorized("authentication required")
	}
	if ident.Role.In(allowed...) {
		return nil
	}
	return apperror.NewForbidden("insufficient permissions").
		WithDetail("required_roles", roleStrings(allowed))
}

// RequireEntrepreneurOrAdmin is the named shorthand for the two-role
// allow-list used by most management endpoints.
func RequireEntrepreneurOrAdmin(ident *appctx.Identity) error {
	return RequireRoles(ident, role.Entrepreneur, role.SuperAdmin)
}

// OwnsResource reports whether the caller may touch a row owned by
// ownerTenant. Super-admin always passes.
func OwnsResource(ident *appctx.Identity, ownerTenant id.ID) bool {
	scope, err := tenant.ScopeFor(ident)
	if err != nil {
		return false
	}
	return scope.Allows(ownerTenant)
}

// RequireOwnership verifies the target row's tenant against the caller.
// Denials are reported as NotFound, identical to true absence, so that
// existence of foreign-tenant rows never leaks.
func RequireOwnership(ident *appctx.Identity, ownerTenant id.ID, entity string, entityID any) error {
	if OwnsResource(ident, ownerTenant) {
		return nil
	}
	return apperror.NewNotFound(entity, entityID)
}

// RequireSelfOrAdmin passes when the caller is the subject user or a
// super-admin. Used for customer-plan visibility.
func RequireSelfOrAdmin(ident *appctx.Identity, subjectID id.ID, entity string, entityID any) error {
	if ident == nil {
		return apperror.NewUnauthorized("authentication required")
	}
	if ident.Role.IsSuperAdmin() || ident.UserID == subjectID {
		return nil
	}
	return apperror.NewNotFound(entity, entityID)
}

func roleStrings(roles []role.Role) []string {
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = r.String()
	}
	return out
}
