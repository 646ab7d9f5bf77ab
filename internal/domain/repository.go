// Package domain provides core business logic interfaces and types.
package domain

import (
	"context"

	"planora/internal/core/entity"
	"planora/internal/core/id"
	"planora/internal/core/role"
	"planora/internal/core/tenant"
)

// --- Filter & Pagination ---

// ListFilter contains common filtering options for list operations.
//
// EntrepreneurID and Role are advisory client refinements; the mandatory
// visibility boundary is the identity-derived tenant.Scope, which the
// service layer resolves and passes to the repository independently.
type ListFilter struct {
	// Search performs substring search on searchable fields
	Search string

	// Role filters user-like resources by role
	Role *role.Role

	// EntrepreneurID narrows to one tenant (advisory, intersected with scope)
	EntrepreneurID *id.ID

	// IsActive filters by activity flag
	IsActive *bool

	// OrderBy specifies sorting (e.g., "name", "-created_at")
	OrderBy string

	// Pagination
	Limit  int
	Offset int
}

// DefaultListFilter returns sensible defaults.
func DefaultListFilter() ListFilter {
	return ListFilter{
		Limit:   50,
		OrderBy: "-created_at",
	}
}

// ListResult contains paginated results.
type ListResult[T any] struct {
	Items      []T   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// --- Entity constraint ---

// TenantEntity is the constraint for tenant-scoped resources.
type TenantEntity interface {
	entity.Validatable
	entity.TenantScoped

	// EntityID returns the primary key (provided by entity.Base).
	EntityID() id.ID

	// Touch refreshes the updated_at timestamp (provided by entity.Base).
	Touch()
}

// --- Repository interface ---

// TenantRepository defines CRUD operations for tenant-scoped resources.
// Every read takes the caller's resolved Scope; rows outside the scope are
// reported as not found, identical to true absence.
type TenantRepository[T TenantEntity] interface {
	// Create inserts a new entity
	Create(ctx context.Context, ent T) error

	// GetByID retrieves entity by ID within scope
	GetByID(ctx context.Context, scope tenant.Scope, entityID id.ID) (T, error)

	// Update modifies existing entity (with optimistic locking)
	Update(ctx context.Context, ent T) error

	// Delete removes the row. Resources with soft-retire semantics model
	// that in the service layer; Delete is the physical removal.
	Delete(ctx context.Context, entityID id.ID) error

	// List retrieves entities within scope, with filtering and pagination
	List(ctx context.Context, scope tenant.Scope, filter ListFilter) (ListResult[T], error)
}
