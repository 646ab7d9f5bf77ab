package user

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"planora/internal/core/apperror"
	appctx "planora/internal/core/context"
	"planora/internal/core/id"
	"planora/internal/core/role"
	"planora/internal/core/security"
	"planora/internal/core/tenant"
	"planora/internal/core/tx"
	"planora/internal/domain"
	"planora/internal/domain/audit"
	"planora/pkg/logger"
)

// CreateRequest carries the fields for creating a user.
type CreateRequest struct {
	Name           string
	Email          string
	Password       string
	Role           role.Role
	EntrepreneurID *id.ID
}

// UpdateRequest carries the mutable fields of a user.
// Role is handled separately: it is immutable except for super-admins.
type UpdateRequest struct {
	Name     *string
	Email    *string
	Password *string
	IsActive *bool
	Role     *role.Role
}

// Service provides tenant-scoped user management.
type Service struct {
	repo      Repository
	txManager tx.Manager
	auditor   audit.Recorder

	passwordMinLength int
}

// NewService creates a new user service.
func NewService(repo Repository, txManager tx.Manager, auditor audit.Recorder) *Service {
	return &Service{
		repo:              repo,
		txManager:         txManager,
		auditor:           auditor,
		passwordMinLength: 8,
	}
}

func (s *Service) scope(ctx context.Context) (tenant.Scope, error) {
	return tenant.ScopeFor(appctx.GetIdentity(ctx))
}

// Create creates a user. Entrepreneurs may only create collaborators and
// customers inside their own tenant; super-admins may create anyone.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*User, error) {
	ident := appctx.GetIdentity(ctx)
	if err := security.RequireEntrepreneurOrAdmin(ident); err != nil {
		return nil, err
	}

	if len(req.Password) < s.passwordMinLength {
		return nil, apperror.NewValidation(
			fmt.Sprintf("password must be at least %d characters", s.passwordMinLength),
		).WithDetail("field", "password")
	}

	u := NewUser(req.Name, req.Email, "", req.Role)
	u.EntrepreneurID = req.EntrepreneurID

	if !ident.Role.IsSuperAdmin() {
		if !req.Role.In(role.Collaborator, role.Customer) {
			return nil, apperror.NewForbidden("entrepreneurs may only create collaborators and customers").
				WithDetail("role", req.Role.String())
		}
		// Tenant pointer is identity-derived, never client-supplied.
		tenantRoot := ident.UserID
		u.EntrepreneurID = &tenantRoot
	}

	if err := u.Validate(ctx); err != nil {
		return nil, err
	}

	taken, err := s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("check email exists: %w", err)
	}
	if taken {
		return nil, apperror.NewDuplicate("user", "email", req.Email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u.PasswordHash = string(hash)

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Create(ctx, u)
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	logger.Info(ctx, "user created",
		"target_user_id", u.ID,
		"target_role", u.Role.String())

	return u, nil
}

// GetByID retrieves a user within the caller's scope.
func (s *Service) GetByID(ctx context.Context, userID id.ID) (*User, error) {
	scope, err := s.scope(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.GetScoped(ctx, scope, userID)
}

// List retrieves users visible to the caller. Role and entrepreneurId
// query filters are advisory refinements on top of the scope.
func (s *Service) List(ctx context.Context, filter domain.ListFilter) (domain.ListResult[*User], error) {
	scope, err := s.scope(ctx)
	if err != nil {
		return domain.ListResult[*User]{}, err
	}

	narrowed, ok := scope.Narrow(filter.EntrepreneurID)
	if !ok {
		return domain.ListResult[*User]{Items: []*User{}, Limit: filter.Limit, Offset: filter.Offset}, nil
	}
	filter.EntrepreneurID = nil

	return s.repo.List(ctx, narrowed, filter)
}

// Update applies mutable fields. Role changes are restricted to
// super-admins and audited; for everyone else role is immutable.
func (s *Service) Update(ctx context.Context, userID id.ID, req UpdateRequest) (*User, error) {
	ident := appctx.GetIdentity(ctx)

	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Role != nil && *req.Role != u.Role {
		if ident == nil || !ident.Role.IsSuperAdmin() {
			return nil, apperror.NewForbidden("role changes require super-admin")
		}
		oldRole := u.Role
		u.Role = *req.Role
		if err := s.auditor.Record(ctx, audit.NewEntry(ctx, "user", u.ID, "role_change", map[string]any{
			"from": oldRole.String(),
			"to":   req.Role.String(),
		})); err != nil {
			logger.Warn(ctx, "audit record failed", "error", err)
		}
	}

	if req.Name != nil {
		u.Name = *req.Name
	}
	if req.Email != nil && *req.Email != u.Email {
		taken, err := s.repo.ExistsByEmail(ctx, *req.Email)
		if err != nil {
			return nil, fmt.Errorf("check email exists: %w", err)
		}
		if taken {
			return nil, apperror.NewDuplicate("user", "email", *req.Email)
		}
		u.Email = *req.Email
	}
	if req.Password != nil {
		if len(*req.Password) < s.passwordMinLength {
			return nil, apperror.NewValidation(
				fmt.Sprintf("password must be at least %d characters", s.passwordMinLength),
			).WithDetail("field", "password")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		u.PasswordHash = string(hash)
	}
	if req.IsActive != nil {
		u.IsActive = *req.IsActive
	}

	if err := u.Validate(ctx); err != nil {
		return nil, err
	}

	u.Touch()
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Update(ctx, u)
	})
	if err != nil {
		return nil, err
	}

	return u, nil
}

// Delete removes a user within the caller's scope.
func (s *Service) Delete(ctx context.Context, userID id.ID) error {
	ident := appctx.GetIdentity(ctx)
	if err := security.RequireEntrepreneurOrAdmin(ident); err != nil {
		return err
	}

	u, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	// Entrepreneurs cannot delete themselves through the tenant endpoint.
	if !ident.Role.IsSuperAdmin() && u.ID == ident.UserID {
		return apperror.NewForbidden("cannot delete own account")
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		return s.repo.Delete(ctx, u.ID)
	})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	logger.Info(ctx, "user deleted", "target_user_id", u.ID)
	return nil
}
