package instance

import (
	"context"

	"planora/internal/core/apperror"
	"planora/internal/core/id"
	"planora/internal/core/tx"
	"planora/internal/domain"
	"planora/pkg/logger"
)

// Service provides business logic for messaging instances.
type Service struct {
	*domain.TenantService[*Instance]
	repo Repository
}

// NewService creates a new instance service.
func NewService(repo Repository, txManager tx.Manager) *Service {
	base := domain.NewTenantService(domain.TenantServiceConfig[*Instance]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "whatsapp_instance",
	})

	return &Service{
		TenantService: base,
		repo:          repo,
	}
}

// SetStatus updates the connection state of an instance.
// Provider callbacks land here, so the transition is logged.
func (s *Service) SetStatus(ctx context.Context, instanceID id.ID, status Status) (*Instance, error) {
	if !status.Valid() {
		return nil, apperror.NewValidation("invalid status").
			WithDetail("field", "status").
			WithDetail("value", string(status))
	}

	inst, err := s.GetByID(ctx, instanceID)
	if err != nil {
		return nil, err
	}

	prev := inst.Status
	switch status {
	case StatusConnected:
		inst.MarkConnected()
	case StatusDisconnected:
		inst.MarkDisconnected()
	default:
		inst.Status = status
	}

	if err := s.Update(ctx, inst); err != nil {
		return nil, err
	}

	logger.Info(ctx, "instance status changed",
		"instance_id", instanceID,
		"from", prev,
		"to", status)

	return inst, nil
}
