package gateway

import (
	"context"

	"planora/internal/core/tenant"
	"planora/internal/domain"
)

// Repository defines the interface for Gateway persistence.
type Repository interface {
	domain.TenantRepository[*Gateway]

	// FindByName retrieves a gateway by name within scope (unique per tenant).
	FindByName(ctx context.Context, scope tenant.Scope, name string) (*Gateway, error)
}
