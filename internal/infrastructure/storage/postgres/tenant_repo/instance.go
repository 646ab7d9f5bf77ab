package tenant_repo

import (
	"planora/internal/domain/instance"
	"planora/internal/infrastructure/storage/postgres"
)

const instanceTable = "instances"

// InstanceRepo implements instance.Repository.
type InstanceRepo struct {
	*BaseTenantRepo[*instance.Instance]
}

// NewInstanceRepo creates a new instance repository.
func NewInstanceRepo(txManager *postgres.TxManager) *InstanceRepo {
	return &InstanceRepo{
		BaseTenantRepo: NewBaseTenantRepo[*instance.Instance](
			txManager,
			instanceTable,
			postgres.ExtractDBColumns[instance.Instance](),
			func() *instance.Instance { return &instance.Instance{} },
		),
	}
}

// Ensure interface compliance
var _ instance.Repository = (*InstanceRepo)(nil)
