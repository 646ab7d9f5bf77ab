package plan

import (
	"context"
	"time"

	"planora/internal/core/id"
)

// Visibility is the plan-specific access boundary. Unlike other resources,
// plans are visible to their own customer only: an entrepreneur is not
// implicitly granted visibility into their customers' plans.
type Visibility struct {
	// All disables filtering (super-admin)
	All bool

	// CustomerID restricts to one customer's plans
	CustomerID id.ID
}

// ListFilter narrows plan listings within a visibility boundary.
type ListFilter struct {
	PayStatus *PayStatus
	IsActive  *bool
	Limit     int
	Offset    int
}

// Repository defines the interface for Plan persistence.
type Repository interface {
	// Create inserts a new plan.
	Create(ctx context.Context, p *Plan) error

	// GetByID retrieves a plan within the visibility boundary.
	// Out-of-boundary rows are reported as not found.
	GetByID(ctx context.Context, vis Visibility, planID id.ID) (*Plan, error)

	// GetByPayHash retrieves a plan by its gateway transaction reference.
	// Gateway callbacks have no identity, so no boundary applies.
	GetByPayHash(ctx context.Context, payHash string) (*Plan, error)

	// Update modifies a plan (optimistic locking).
	Update(ctx context.Context, p *Plan) error

	// Purge physically removes a plan.
	Purge(ctx context.Context, planID id.ID) error

	// List retrieves plans within the visibility boundary.
	List(ctx context.Context, vis Visibility, filter ListFilter) ([]*Plan, int64, error)

	// ListDue returns active plans whose pending payment or paid
	// subscription deadline has passed as of now.
	ListDue(ctx context.Context, now time.Time, limit int) ([]*Plan, error)

	// CountActiveByPriceTable reports active plans referencing a table.
	// Satisfies pricetable.PlanCounter.
	CountActiveByPriceTable(ctx context.Context, tableID id.ID) (int, error)
}
