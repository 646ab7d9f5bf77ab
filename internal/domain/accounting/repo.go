package accounting

import (
	"context"
	"time"

	"planora/internal/core/tenant"
	"planora/internal/core/types"
	"planora/internal/domain"
)

// Summary aggregates entries over a period.
type Summary struct {
	Income  types.Money `json:"income"`
	Expense types.Money `json:"expense"`
	Balance types.Money `json:"balance"`
}

// Repository defines the interface for accounting Entry persistence.
type Repository interface {
	domain.TenantRepository[*Entry]

	// Summarize totals income and expense between from and to (inclusive).
	Summarize(ctx context.Context, scope tenant.Scope, from, to time.Time) (Summary, error)
}
