package ticket

import (
	"context"
	"fmt"
	"time"

	"planora/internal/core/apperror"
	appctx "planora/internal/core/context"
	"planora/internal/core/id"
	"planora/internal/core/numerator"
	"planora/internal/core/role"
	"planora/internal/core/tx"
	"planora/internal/domain"
	"planora/pkg/logger"
)

// Service provides business logic for support tickets.
type Service struct {
	*domain.TenantService[*Ticket]
	repo      Repository
	numerator numerator.Generator
}

// NewService creates a new ticket service.
func NewService(repo Repository, gen numerator.Generator, txManager tx.Manager) *Service {
	base := domain.NewTenantService(domain.TenantServiceConfig[*Ticket]{
		Repo:       repo,
		TxManager:  txManager,
		EntityName: "ticket",
	})

	svc := &Service{
		TenantService: base,
		repo:          repo,
		numerator:     gen,
	}

	base.Hooks().OnBeforeCreate(svc.prepareForCreate)

	return svc
}

// prepareForCreate assigns the sequential number and pins customer tickets
// to the caller's own account.
func (s *Service) prepareForCreate(ctx context.Context, t *Ticket) error {
	ident := appctx.GetIdentity(ctx)
	if ident != nil && ident.Role == role.Customer {
		// Customers open tickets for themselves only.
		t.CustomerID = ident.UserID
	}

	if t.Number == "" {
		cfg := numerator.DefaultConfig("TKT")
		number, err := s.numerator.GetNextNumber(ctx, cfg, nil, time.Now())
		if err != nil {
			return fmt.Errorf("generate ticket number: %w", err)
		}
		t.Number = number
	}
	return nil
}

// Assign hands the ticket to a collaborator and moves it in progress.
func (s *Service) Assign(ctx context.Context, ticketID, assigneeID id.ID) (*Ticket, error) {
	ident := appctx.GetIdentity(ctx)
	if err := roleCheck(ident); err != nil {
		return nil, err
	}

	t, err := s.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	t.AssigneeID = &assigneeID
	if t.Status == StatusOpen {
		t.Status = StatusInProgress
	}

	if err := s.Update(ctx, t); err != nil {
		return nil, err
	}

	logger.Info(ctx, "ticket assigned",
		"ticket", t.Number,
		"assignee_id", assigneeID)

	return t, nil
}

// Resolve closes out a ticket.
func (s *Service) Resolve(ctx context.Context, ticketID id.ID) (*Ticket, error) {
	ident := appctx.GetIdentity(ctx)
	if err := roleCheck(ident); err != nil {
		return nil, err
	}

	t, err := s.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if t.Status == StatusClosed {
		return nil, apperror.NewConflict("ticket is already closed").
			WithDetail("number", t.Number)
	}

	t.Resolve()
	if err := s.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func roleCheck(ident *appctx.Identity) error {
	if ident == nil {
		return apperror.NewUnauthorized("authentication required")
	}
	if !ident.Role.In(role.SuperAdmin, role.Entrepreneur, role.Collaborator) {
		return apperror.NewForbidden("insufficient permissions")
	}
	return nil
}
