package tenant_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"planora/internal/core/tenant"
	"planora/internal/domain/gateway"
	"planora/internal/infrastructure/storage/postgres"
)

const gatewayTable = "gateways"

// GatewayRepo implements gateway.Repository.
type GatewayRepo struct {
	*BaseTenantRepo[*gateway.Gateway]
}

// NewGatewayRepo creates a new gateway repository.
func NewGatewayRepo(txManager *postgres.TxManager) *GatewayRepo {
	return &GatewayRepo{
		BaseTenantRepo: NewBaseTenantRepo[*gateway.Gateway](
			txManager,
			gatewayTable,
			postgres.ExtractDBColumns[gateway.Gateway](),
			func() *gateway.Gateway { return &gateway.Gateway{} },
		),
	}
}

// FindByName retrieves a gateway by name within scope.
func (r *GatewayRepo) FindByName(ctx context.Context, scope tenant.Scope, name string) (*gateway.Gateway, error) {
	q := r.ScopedSelect(scope).
		Where(squirrel.Eq{"name": name}).
		Limit(1)

	return r.FindOne(ctx, q)
}

// Ensure interface compliance
var _ gateway.Repository = (*GatewayRepo)(nil)
