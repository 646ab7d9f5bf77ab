package pricetable

import (
	"context"

	"planora/internal/core/id"
)

// ListFilter narrows price table listings.
type ListFilter struct {
	// ActiveOnly hides inactive tables (always set for public listings)
	ActiveOnly bool

	Limit  int
	Offset int
}

// Repository defines the interface for PriceTable persistence.
// Tables are platform-global; no tenant scope applies.
type Repository interface {
	// Create inserts a new price table.
	Create(ctx context.Context, table *PriceTable) error

	// GetByID retrieves a table by ID.
	GetByID(ctx context.Context, tableID id.ID) (*PriceTable, error)

	// Update modifies a table (optimistic locking).
	Update(ctx context.Context, table *PriceTable) error

	// Delete removes a table.
	Delete(ctx context.Context, tableID id.ID) error

	// List retrieves tables ordered by display_order ascending.
	List(ctx context.Context, filter ListFilter) ([]*PriceTable, error)
}

// PlanCounter reports how many active customer plans reference a table.
// Implemented by the plan repository; declared here to keep the dependency
// pointing from plans to price tables, not both ways.
type PlanCounter interface {
	CountActiveByPriceTable(ctx context.Context, tableID id.ID) (int, error)
}
