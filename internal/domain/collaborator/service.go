package collaborator

import (
	"context"

	"planora/internal/core/apperror"
	"planora/internal/core/role"
	"planora/internal/core/tx"
	"planora/internal/domain"
	"planora/internal/domain/user"
)

// Service provides business logic for collaborator profiles.
type Service struct {
	*domain.TenantService[*Collaborator]
	repo     Repository
	userRepo user.Repository
}

// NewService creates a new collaborator service.
func NewService(repo Repository, userRepo user.Repository, txManager tx.Manager) *Service {
	base := domain.NewTenantService(domain.TenantServiceConfig[*Collaborator]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "collaborator",
	})

	svc := &Service{
		TenantService: base,
		repo:          repo,
		userRepo:      userRepo,
	}

	base.Hooks().OnBeforeCreate(svc.checkLinkedUser)

	return svc
}

// checkLinkedUser verifies the profile points at a collaborator account
// inside the same tenant and does not duplicate an existing profile.
func (s *Service) checkLinkedUser(ctx context.Context, c *Collaborator) error {
	scope, err := s.Scope(ctx)
	if err != nil {
		return err
	}

	u, err := s.userRepo.GetScoped(ctx, scope, c.UserID)
	if err != nil {
		return apperror.NewNotFound("user", c.UserID.String())
	}
	if u.Role != role.Collaborator {
		return apperror.NewValidation("linked user is not a collaborator account").
			WithDetail("field", "userId").
			WithDetail("role", u.Role.String())
	}

	existing, err := s.repo.FindByUserID(ctx, scope, c.UserID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil
		}
		return err
	}
	if existing.ID != c.ID {
		return apperror.NewConflict("collaborator profile already exists for this user").
			WithDetail("userId", c.UserID)
	}
	return nil
}
