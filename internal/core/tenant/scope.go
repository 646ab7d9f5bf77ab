// Package tenant implements the entrepreneur-rooted ownership boundary.
// Every tenant-scoped row carries an entrepreneur_id; a non-super-admin
// caller only ever sees rows whose entrepreneur_id matches its resolved
// tenant. The scope is derived from the verified Identity, never from
// client-supplied parameters.
package tenant

import (
	"context"

	"planora/internal/core/apperror"
	appctx "planora/internal/core/context"
	"planora/internal/core/id"
)

// Scope is the data-visibility boundary resolved for one request.
type Scope struct {
	// Unbounded is true for super-admins: no tenant filter is applied.
	Unbounded bool

	// EntrepreneurID is the tenant root for bounded scopes.
	EntrepreneurID id.ID
}

// ScopeFor resolves the tenant scope from the caller's identity.
//
// Resolution rules:
//   - super-admin: unbounded, sees everything
//   - entrepreneur: bounded to its own user id
//   - collaborator / customer: bounded to the EntrepreneurID claim
//
// A collaborator or customer without an EntrepreneurID claim is a broken
// token and is rejected.
func ScopeFor(ident *appctx.Identity) (Scope, error) {
	if ident == nil {
		return Scope{}, apperror.NewUnauthorized("authentication required")
	}

	if ident.Role.IsSuperAdmin() {
		return Scope{Unbounded: true}, nil
	}

	if ident.Role.OwnsTenant() {
		return Scope{EntrepreneurID: ident.UserID}, nil
	}

	if ident.EntrepreneurID == nil || id.IsNil(*ident.EntrepreneurID) {
		return Scope{}, apperror.NewForbidden("identity has no tenant").
			WithDetail("role", ident.Role.String())
	}
	return Scope{EntrepreneurID: *ident.EntrepreneurID}, nil
}

// Allows reports whether a row owned by ownerID is visible inside the scope.
func (s Scope) Allows(ownerID id.ID) bool {
	if s.Unbounded {
		return true
	}
	return s.EntrepreneurID == ownerID
}

// Narrow intersects the scope with a client-requested entrepreneur filter.
// The request filter is an advisory refinement: for bounded scopes it can
// never widen visibility. A bounded scope narrowed to a foreign tenant
// resolves to the empty scope (matches nothing).
func (s Scope) Narrow(requested *id.ID) (Scope, bool) {
	if requested == nil || id.IsNil(*requested) {
		return s, true
	}
	if s.Unbounded {
		return Scope{EntrepreneurID: *requested}, true
	}
	if s.EntrepreneurID == *requested {
		return s, true
	}
	return s, false
}

type scopeKey struct{}

// WithScope adds Scope to context.
func WithScope(ctx context.Context, scope Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

// GetScope returns Scope from context. The second result is false when no
// scope was resolved (unauthenticated paths).
func GetScope(ctx context.Context) (Scope, bool) {
	if v, ok := ctx.Value(scopeKey{}).(Scope); ok {
		return v, true
	}
	return Scope{}, false
}

// MustGetScope returns Scope from context or an error suitable for handlers.
func MustGetScope(ctx context.Context) (Scope, error) {
	if s, ok := GetScope(ctx); ok {
		return s, nil
	}
	return Scope{}, apperror.NewUnauthorized("authentication required")
}
