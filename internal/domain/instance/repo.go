package instance

import (
	"planora/internal/domain"
)

// Repository defines the interface for Instance persistence.
type Repository interface {
	domain.TenantRepository[*Instance]
}
