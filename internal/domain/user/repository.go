package user

import (
	"context"

	"planora/internal/core/id"
	"planora/internal/core/tenant"
	"planora/internal/domain"
)

// Repository defines user storage operations.
//
// Scoped reads treat a user row as inside a tenant when its
// entrepreneur_id matches the scope root, or when the row is the tenant
// root itself (the entrepreneur's own user record).
type Repository interface {
	// Create creates a new user.
	Create(ctx context.Context, u *User) error

	// GetByID retrieves user by ID without tenant filtering.
	// Used by auth flows; callers enforce visibility themselves.
	GetByID(ctx context.Context, userID id.ID) (*User, error)

	// GetScoped retrieves user by ID within the caller's tenant scope.
	GetScoped(ctx context.Context, scope tenant.Scope, userID id.ID) (*User, error)

	// GetByEmail retrieves user by exact email match.
	GetByEmail(ctx context.Context, email string) (*User, error)

	// Update updates user data (optimistic locking).
	Update(ctx context.Context, u *User) error

	// Delete removes a user.
	Delete(ctx context.Context, userID id.ID) error

	// List retrieves users within scope with filtering.
	List(ctx context.Context, scope tenant.Scope, filter domain.ListFilter) (domain.ListResult[*User], error)

	// ExistsByEmail checks if email is taken.
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
