package tenant_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"planora/internal/core/tenant"
	"planora/internal/domain/ticket"
	"planora/internal/infrastructure/storage/postgres"
)

const ticketTable = "tickets"

// TicketRepo implements ticket.Repository.
type TicketRepo struct {
	*BaseTenantRepo[*ticket.Ticket]
}

// NewTicketRepo creates a new ticket repository.
func NewTicketRepo(txManager *postgres.TxManager) *TicketRepo {
	return &TicketRepo{
		BaseTenantRepo: NewBaseTenantRepo[*ticket.Ticket](
			txManager,
			ticketTable,
			postgres.ExtractDBColumns[ticket.Ticket](),
			func() *ticket.Ticket { return &ticket.Ticket{} },
		),
	}
}

// FindByNumber retrieves a ticket by its human-readable number.
func (r *TicketRepo) FindByNumber(ctx context.Context, scope tenant.Scope, number string) (*ticket.Ticket, error) {
	q := r.ScopedSelect(scope).
		Where(squirrel.Eq{"number": number}).
		Limit(1)

	return r.FindOne(ctx, q)
}

// Ensure interface compliance
var _ ticket.Repository = (*TicketRepo)(nil)
