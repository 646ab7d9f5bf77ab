package gateway

import (
	"context"

	"planora/internal/core/apperror"
	"planora/internal/core/tx"
	"planora/internal/domain"
)

// Service provides business logic for payment gateways.
// Composes domain.TenantService for common CRUD operations.
type Service struct {
	*domain.TenantService[*Gateway]
	repo Repository
}

// NewService creates a new gateway service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	base := domain.NewTenantService(domain.TenantServiceConfig[*Gateway]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "payment_gateway",
	})

	svc := &Service{
		TenantService: base,
		repo:          repo,
	}

	base.Hooks().OnBeforeCreate(svc.checkNameUnique)
	base.Hooks().OnBeforeUpdate(svc.checkNameUnique)

	return svc
}

// checkNameUnique enforces per-tenant gateway name uniqueness.
func (s *Service) checkNameUnique(ctx context.Context, g *Gateway) error {
	scope, err := s.Scope(ctx)
	if err != nil {
		return err
	}

	existing, err := s.repo.FindByName(ctx, scope, g.Name)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != g.ID {
		return apperror.NewConflict("gateway with this name already exists").
			WithDetail("name", g.Name)
	}
	return nil
}
