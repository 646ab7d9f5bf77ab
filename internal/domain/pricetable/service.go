package pricetable

import (
	"context"
	"fmt"

	"planora/internal/core/apperror"
	appctx "planora/internal/core/context"
	"planora/internal/core/id"
	"planora/internal/core/role"
	"planora/internal/core/security"
	"planora/internal/core/tx"
	"planora/pkg/logger"
)

// Service provides business logic for price tables.
type Service struct {
	repo        Repository
	planCounter PlanCounter
	txManager   tx.Manager
}

// NewService creates a new price table service.
func NewService(repo Repository, planCounter PlanCounter, txManager tx.Manager) *Service {
	return &Service{
		repo:        repo,
		planCounter: planCounter,
		txManager:   txManager,
	}
}

// ListPublic returns active tables for unauthenticated display,
// ordered by display_order.
func (s *Service) ListPublic(ctx context.Context, limit, offset int) ([]*PriceTable, error) {
	return s.repo.List(ctx, ListFilter{
		ActiveOnly: true,
		Limit:      limit,
		Offset:     offset,
	})
}

// GetPublic retrieves one table for unauthenticated display.
// Inactive tables are hidden, identical to absence.
func (s *Service) GetPublic(ctx context.Context, tableID id.ID) (*PriceTable, error) {
	table, err := s.repo.GetByID(ctx, tableID)
	if err != nil {
		return nil, apperror.NewNotFound("price_table", tableID.String())
	}
	if !table.IsActive {
		return nil, apperror.NewNotFound("price_table", tableID.String())
	}
	return table, nil
}

// ListAll returns every table, inactive included. Super-admin only.
func (s *Service) ListAll(ctx context.Context, limit, offset int) ([]*PriceTable, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, ListFilter{Limit: limit, Offset: offset})
}

// Get retrieves one table regardless of activity. Super-admin only.
func (s *Service) Get(ctx context.Context, tableID id.ID) (*PriceTable, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}
	table, err := s.repo.GetByID(ctx, tableID)
	if err != nil {
		return nil, apperror.NewNotFound("price_table", tableID.String())
	}
	return table, nil
}

// Create adds a new price table. Super-admin only.
func (s *Service) Create(ctx context.Context, table *PriceTable) error {
	if err := s.requireAdmin(ctx); err != nil {
		return err
	}
	if err := table.Validate(ctx); err != nil {
		return err
	}

	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, table)
	})
	if err != nil {
		return fmt.Errorf("create price table: %w", err)
	}

	logger.Info(ctx, "price table created",
		"price_table_id", table.ID,
		"name", table.Name)
	return nil
}

// Update modifies a price table. Super-admin only.
// Existing plans keep their copied amounts; price edits affect new plans only.
func (s *Service) Update(ctx context.Context, table *PriceTable) error {
	if err := s.requireAdmin(ctx); err != nil {
		return err
	}
	if err := table.Validate(ctx); err != nil {
		return err
	}

	table.Touch()
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, table)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "price table updated",
		"price_table_id", table.ID,
		"name", table.Name)
	return nil
}

// Delete removes a price table. Super-admin only. Tables referenced by
// active customer plans cannot be deleted.
func (s *Service) Delete(ctx context.Context, tableID id.ID) error {
	if err := s.requireAdmin(ctx); err != nil {
		return err
	}

	if _, err := s.repo.GetByID(ctx, tableID); err != nil {
		return apperror.NewNotFound("price_table", tableID.String())
	}

	activePlans, err := s.planCounter.CountActiveByPriceTable(ctx, tableID)
	if err != nil {
		return fmt.Errorf("count active plans: %w", err)
	}
	if activePlans > 0 {
		return apperror.NewPriceTableInUse(tableID, activePlans)
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Delete(ctx, tableID)
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "price table deleted", "price_table_id", tableID)
	return nil
}

func (s *Service) requireAdmin(ctx context.Context) error {
	return security.RequireRoles(appctx.GetIdentity(ctx), role.SuperAdmin)
}
