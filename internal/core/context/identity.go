// Package context provides request-scoped values extraction.
package context

import (
	"context"

	"planora/internal/core/id"
	"planora/internal/core/role"
)

// Identity contains the authenticated caller's resolved claims.
// It is reconstructed from the session token on every request and never
// persisted server-side.
type Identity struct {
	UserID id.ID
	Email  string
	Role   role.Role

	// EntrepreneurID is the tenant the caller belongs to. Nil for
	// super-admins and top-level entrepreneurs.
	EntrepreneurID *id.ID
}

type identityKey struct{}

// WithIdentity adds Identity to context.
func WithIdentity(ctx context.Context, ident *Identity) context.Context {
	return context.WithValue(ctx, identityKey{}, ident)
}

// GetIdentity returns Identity from context, or nil for unauthenticated requests.
func GetIdentity(ctx context.Context) *Identity {
	if v, ok := ctx.Value(identityKey{}).(*Identity); ok {
		return v
	}
	return nil
}

// GetUserID returns caller's user ID from context or the nil UUID.
func GetUserID(ctx context.Context) id.ID {
	if ident := GetIdentity(ctx); ident != nil {
		return ident.UserID
	}
	return id.Nil()
}

// HasRole checks if the caller has one of the given roles.
func HasRole(ctx context.Context, roles ...role.Role) bool {
	ident := GetIdentity(ctx)
	if ident == nil {
		return false
	}
	return ident.Role.In(roles...)
}
