package domain

import (
	"context"
	"fmt"

	"planora/internal/core/apperror"
	appctx "planora/internal/core/context"
	"planora/internal/core/id"
	"planora/internal/core/tenant"
	"planora/internal/core/tx"
)

// TenantService provides business logic shared by tenant-scoped resources.
// It resolves the caller's tenant scope from the request identity and
// enforces it on every operation; concrete services embed it and add
// resource-specific rules through hooks or method overrides.
type TenantService[T TenantEntity] struct {
	repo      TenantRepository[T]
	txManager tx.Manager
	hooks     *HookRegistry[T]

	// entityName for error messages
	entityName string
}

// TenantServiceConfig configures the tenant service.
type TenantServiceConfig[T TenantEntity] struct {
	Repo       TenantRepository[T]
	TxManager  tx.Manager
	EntityName string
}

// NewTenantService creates a new tenant-scoped service.
func NewTenantService[T TenantEntity](cfg TenantServiceConfig[T]) *TenantService[T] {
	return &TenantService[T]{
		repo:       cfg.Repo,
		txManager:  cfg.TxManager,
		hooks:      NewHookRegistry[T](),
		entityName: cfg.EntityName,
	}
}

// Hooks returns the hook registry for external registration.
func (s *TenantService[T]) Hooks() *HookRegistry[T] {
	return s.hooks
}

// Repo exposes the repository to embedding services.
func (s *TenantService[T]) Repo() TenantRepository[T] {
	return s.repo
}

// Tx exposes the transaction manager to embedding services.
func (s *TenantService[T]) Tx() tx.Manager {
	return s.txManager
}

// EntityName returns the resource name used in errors.
func (s *TenantService[T]) EntityName() string {
	return s.entityName
}

// Scope resolves the caller's tenant scope from ctx.
func (s *TenantService[T]) Scope(ctx context.Context) (tenant.Scope, error) {
	return tenant.ScopeFor(appctx.GetIdentity(ctx))
}

func (s *TenantService[T]) normalizeValidationErr(err error) error {
	if err == nil {
		return nil
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewValidation(err.Error())
}

// Create creates a new entity inside the caller's tenant.
// For bounded scopes the owner tenant is always the scope root: whatever the
// client sent is overwritten. Super-admins must name the target tenant.
func (s *TenantService[T]) Create(ctx context.Context, ent T) error {
	scope, err := s.Scope(ctx)
	if err != nil {
		return err
	}

	if scope.Unbounded {
		if id.IsNil(ent.OwnerTenant()) {
			return apperror.NewValidation("entrepreneurId is required").
				WithDetail("field", "entrepreneurId")
		}
	} else {
		ent.SetOwnerTenant(scope.EntrepreneurID)
	}

	if err := ent.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}

	if err := s.hooks.Run(ctx, BeforeCreate, ent); err != nil {
		return err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, ent); err != nil {
			return fmt.Errorf("create %s: %w", s.entityName, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	// After-create hooks run outside the transaction; failures are the
	// hook's problem, the entity is already persisted.
	_ = s.hooks.Run(ctx, AfterCreate, ent)

	return nil
}

// GetByID retrieves an entity by ID within the caller's scope.
func (s *TenantService[T]) GetByID(ctx context.Context, entityID id.ID) (T, error) {
	var zero T
	scope, err := s.Scope(ctx)
	if err != nil {
		return zero, err
	}

	ent, err := s.repo.GetByID(ctx, scope, entityID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return zero, apperror.NewNotFound(s.entityName, entityID.String())
		}
		if apperror.IsAppError(err) {
			return zero, err
		}
		return zero, apperror.NewInternal(err).WithDetail("entity", s.entityName)
	}
	return ent, nil
}

// Update modifies an existing entity. Ownership of the loaded row is
// re-verified against the caller's scope independently of the list filter.
func (s *TenantService[T]) Update(ctx context.Context, ent T) error {
	scope, err := s.Scope(ctx)
	if err != nil {
		return err
	}
	if !scope.Allows(ent.OwnerTenant()) {
		return apperror.NewNotFound(s.entityName, ent.EntityID().String())
	}

	if err := ent.Validate(ctx); err != nil {
		return s.normalizeValidationErr(err)
	}

	if err := s.hooks.Run(ctx, BeforeUpdate, ent); err != nil {
		return err
	}

	ent.Touch()
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, ent); err != nil {
			return fmt.Errorf("update %s: %w", s.entityName, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	_ = s.hooks.Run(ctx, AfterUpdate, ent)

	return nil
}

// Delete removes an entity after re-verifying tenant ownership.
func (s *TenantService[T]) Delete(ctx context.Context, entityID id.ID) error {
	ent, err := s.GetByID(ctx, entityID)
	if err != nil {
		return err
	}

	if err := s.hooks.Run(ctx, BeforeDelete, ent); err != nil {
		return err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Delete(ctx, entityID); err != nil {
			return fmt.Errorf("delete %s: %w", s.entityName, err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	_ = s.hooks.Run(ctx, AfterDelete, ent)

	return nil
}

// List retrieves entities visible to the caller. A client-supplied
// entrepreneurId narrows the scope but can never widen it; a refinement
// pointing at a foreign tenant yields an empty result.
func (s *TenantService[T]) List(ctx context.Context, filter ListFilter) (ListResult[T], error) {
	scope, err := s.Scope(ctx)
	if err != nil {
		return ListResult[T]{}, err
	}

	narrowed, ok := scope.Narrow(filter.EntrepreneurID)
	if !ok {
		return ListResult[T]{Items: []T{}, Limit: filter.Limit, Offset: filter.Offset}, nil
	}
	filter.EntrepreneurID = nil // scope carries the tenant bound now

	return s.repo.List(ctx, narrowed, filter)
}
