package ticket

import (
	"context"

	"planora/internal/core/tenant"
	"planora/internal/domain"
)

// Repository defines the interface for Ticket persistence.
type Repository interface {
	domain.TenantRepository[*Ticket]

	// FindByNumber retrieves a ticket by its human-readable number.
	FindByNumber(ctx context.Context, scope tenant.Scope, number string) (*Ticket, error)
}
