package tenant_repo

import (
	"context"

	"github.com/Masterminds/squirrel"

	"planora/internal/core/id"
	"planora/internal/core/tenant"
	"planora/internal/domain/collaborator"
	"planora/internal/infrastructure/storage/postgres"
)

const collaboratorTable = "collaborators"

// CollaboratorRepo implements collaborator.Repository.
type CollaboratorRepo struct {
	*BaseTenantRepo[*collaborator.Collaborator]
}

// NewCollaboratorRepo creates a new collaborator repository.
func NewCollaboratorRepo(txManager *postgres.TxManager) *CollaboratorRepo {
	return &CollaboratorRepo{
		BaseTenantRepo: NewBaseTenantRepo[*collaborator.Collaborator](
			txManager,
			collaboratorTable,
			postgres.ExtractDBColumns[collaborator.Collaborator](),
			func() *collaborator.Collaborator { return &collaborator.Collaborator{} },
		),
	}
}

// FindByUserID retrieves the profile linked to a user account.
func (r *CollaboratorRepo) FindByUserID(ctx context.Context, scope tenant.Scope, userID id.ID) (*collaborator.Collaborator, error) {
	q := r.ScopedSelect(scope).
		Where(squirrel.Eq{"user_id": userID}).
		Limit(1)

	return r.FindOne(ctx, q)
}

// Ensure interface compliance
var _ collaborator.Repository = (*CollaboratorRepo)(nil)
