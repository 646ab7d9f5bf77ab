package accounting

import (
	"context"
	"time"

	"planora/internal/core/apperror"
	appctx "planora/internal/core/context"
	"planora/internal/core/security"
	"planora/internal/core/tx"
	"planora/internal/domain"
)

// Service provides business logic for accounting entries.
// Accounting is entrepreneur bookkeeping; customers never see it.
type Service struct {
	*domain.TenantService[*Entry]
	repo Repository
}

// NewService creates a new accounting service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	base := domain.NewTenantService(domain.TenantServiceConfig[*Entry]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "accounting_entry",
	})

	svc := &Service{
		TenantService: base,
		repo:          repo,
	}

	base.Hooks().OnBeforeCreate(svc.requireBookkeeper)
	base.Hooks().OnBeforeUpdate(svc.requireBookkeeper)
	base.Hooks().OnBeforeDelete(svc.requireBookkeeper)

	return svc
}

func (s *Service) requireBookkeeper(ctx context.Context, _ *Entry) error {
	return security.RequireEntrepreneurOrAdmin(appctx.GetIdentity(ctx))
}

// Summarize totals income and expense for the caller's tenant.
func (s *Service) Summarize(ctx context.Context, from, to time.Time) (Summary, error) {
	ident := appctx.GetIdentity(ctx)
	if err := security.RequireEntrepreneurOrAdmin(ident); err != nil {
		return Summary{}, err
	}
	if to.Before(from) {
		return Summary{}, apperror.NewValidation("to must not precede from").
			WithDetail("from", from).
			WithDetail("to", to)
	}

	scope, err := s.Scope(ctx)
	if err != nil {
		return Summary{}, err
	}
	return s.repo.Summarize(ctx, scope, from, to)
}
