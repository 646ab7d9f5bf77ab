package collaborator

import (
	"context"

	"planora/internal/core/id"
	"planora/internal/core/tenant"
	"planora/internal/domain"
)

// Repository defines the interface for Collaborator persistence.
type Repository interface {
	domain.TenantRepository[*Collaborator]

	// FindByUserID retrieves the profile linked to a user account.
	FindByUserID(ctx context.Context, scope tenant.Scope, userID id.ID) (*Collaborator, error)
}
