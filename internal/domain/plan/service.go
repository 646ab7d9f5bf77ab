package plan

import (
	"context"
	"fmt"
	"time"

	"planora/internal/core/apperror"
	appctx "planora/internal/core/context"
	"planora/internal/core/id"
	"planora/internal/core/role"
	"planora/internal/core/security"
	"planora/internal/core/tenant"
	"planora/internal/core/tx"
	"planora/internal/core/types"
	"planora/internal/domain/audit"
	"planora/internal/domain/pricetable"
	"planora/internal/domain/user"
	"planora/pkg/logger"
)

// CreateRequest subscribes a customer to a price table.
type CreateRequest struct {
	CustomerID   id.ID               `json:"customerId"`
	PriceTableID id.ID               `json:"priceTableId"`
	PlanType     pricetable.PlanType `json:"planType"`

	// Amount, when set, overrides the table-derived value (custom discount).
	// The override is audited.
	Amount *string `json:"amount,omitempty"`

	PayExpiration      *time.Time `json:"payExpiration,omitempty"`
	PlanExpirationDate *time.Time `json:"planExpirationDate,omitempty"`
	PayLink            string     `json:"payLink,omitempty"`
}

// UpdateRequest modifies mutable plan fields. Payment status is changed
// through the dedicated transition methods, never here.
type UpdateRequest struct {
	PayExpiration      *time.Time `json:"payExpiration,omitempty"`
	PlanExpirationDate *time.Time `json:"planExpirationDate,omitempty"`
	PayLink            *string    `json:"payLink,omitempty"`
}

// Service provides the plan lifecycle engine.
type Service struct {
	repo      Repository
	tableRepo pricetable.Repository
	userRepo  user.Repository
	txManager tx.Manager
	auditor   audit.Recorder
	flags     security.FeatureFlagProvider
}

// NewService creates a new plan service. flags may be nil to disable
// feature gating.
func NewService(
	repo Repository,
	tableRepo pricetable.Repository,
	userRepo user.Repository,
	txManager tx.Manager,
	auditor audit.Recorder,
	flags security.FeatureFlagProvider,
) *Service {
	return &Service{
		repo:      repo,
		tableRepo: tableRepo,
		userRepo:  userRepo,
		txManager: txManager,
		auditor:   auditor,
		flags:     flags,
	}
}

// VisibilityFor resolves the plan access boundary for an identity.
// Only super-admins see other people's plans; an entrepreneur is not
// implicitly granted visibility into their customers' subscriptions.
func VisibilityFor(ident *appctx.Identity) (Visibility, error) {
	if ident == nil {
		return Visibility{}, apperror.NewUnauthorized("authentication required")
	}
	if ident.Role.IsSuperAdmin() {
		return Visibility{All: true}, nil
	}
	return Visibility{CustomerID: ident.UserID}, nil
}

// Create subscribes a customer to a price table. Entrepreneurs subscribe
// customers of their own tenant; super-admins subscribe anyone.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Plan, error) {
	ident := appctx.GetIdentity(ctx)
	if err := security.RequireEntrepreneurOrAdmin(ident); err != nil {
		return nil, err
	}
	if !req.PlanType.Valid() {
		return nil, apperror.NewValidation("invalid plan type").
			WithDetail("field", "planType").
			WithDetail("value", string(req.PlanType))
	}

	customer, err := s.resolveCustomer(ctx, ident, req.CustomerID)
	if err != nil {
		return nil, err
	}

	table, err := s.tableRepo.GetByID(ctx, req.PriceTableID)
	if err != nil {
		return nil, apperror.NewNotFound("price_table", req.PriceTableID.String())
	}
	if !table.IsActive {
		return nil, apperror.NewConflict("price table is not active").
			WithDetail("priceTableId", req.PriceTableID)
	}

	derived, err := table.PriceFor(req.PlanType)
	if err != nil {
		return nil, err
	}

	p := NewPlan(customer.ID, table.ID, req.PlanType)
	p.SetOwnerTenant(customer.TenantRoot())
	p.Amount = derived
	p.PayExpiration = req.PayExpiration
	p.PlanExpirationDate = req.PlanExpirationDate
	p.PayLink = req.PayLink

	overridden := false
	if req.Amount != nil && *req.Amount != derived {
		if s.flags != nil && !s.flags.IsEnabled(ctx, security.FlagAmountOverride) {
			return nil, apperror.NewForbidden("amount override is disabled")
		}
		if !types.ValidAmount(*req.Amount) {
			return nil, apperror.NewValidation("invalid decimal amount").
				WithDetail("field", "amount").
				WithDetail("value", *req.Amount)
		}
		p.Amount = *req.Amount
		overridden = true
	}

	if err := p.Validate(ctx); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Create(ctx, p); err != nil {
			return fmt.Errorf("create plan: %w", err)
		}
		if overridden {
			return s.auditor.Record(ctx, audit.NewEntry(ctx, "plan", p.ID, "amount_override", map[string]any{
				"derived":  derived,
				"explicit": p.Amount,
			}))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "plan created",
		"plan_id", p.ID,
		"customer_id", p.CustomerID,
		"plan_type", p.PlanType,
		"amount", p.Amount,
		"overridden", overridden)

	return p, nil
}

// GetByID retrieves a plan within the caller's visibility.
func (s *Service) GetByID(ctx context.Context, planID id.ID) (*Plan, error) {
	vis, err := VisibilityFor(appctx.GetIdentity(ctx))
	if err != nil {
		return nil, err
	}
	p, err := s.repo.GetByID(ctx, vis, planID)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewNotFound("plan", planID.String())
		}
		return nil, err
	}
	return p, nil
}

// List retrieves plans within the caller's visibility.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]*Plan, int64, error) {
	vis, err := VisibilityFor(appctx.GetIdentity(ctx))
	if err != nil {
		return nil, 0, err
	}
	return s.repo.List(ctx, vis, filter)
}

// Update applies mutable field changes. Repeating an identical request
// changes nothing except updatedAt.
func (s *Service) Update(ctx context.Context, planID id.ID, req UpdateRequest) (*Plan, error) {
	p, err := s.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	changed := false
	if req.PayExpiration != nil && !timePtrEqual(p.PayExpiration, req.PayExpiration) {
		p.PayExpiration = req.PayExpiration
		changed = true
	}
	if req.PlanExpirationDate != nil && !timePtrEqual(p.PlanExpirationDate, req.PlanExpirationDate) {
		p.PlanExpirationDate = req.PlanExpirationDate
		changed = true
	}
	if req.PayLink != nil && p.PayLink != *req.PayLink {
		p.PayLink = *req.PayLink
		changed = true
	}

	p.Touch()
	if err := s.persist(ctx, p); err != nil {
		return nil, err
	}
	if changed {
		logger.Info(ctx, "plan updated", "plan_id", p.ID)
	}
	return p, nil
}

// MarkPaid confirms a pending payment by manual admin edit. Gateway
// confirmations go through HandleGatewayCallback.
func (s *Service) MarkPaid(ctx context.Context, planID id.ID, payDate time.Time, payHash string) (*Plan, error) {
	if err := security.RequireRoles(appctx.GetIdentity(ctx), role.SuperAdmin); err != nil {
		return nil, err
	}
	p, err := s.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if err := p.MarkPaid(payDate, payHash); err != nil {
		return nil, err
	}
	p.Touch()
	if err := s.persist(ctx, p); err != nil {
		return nil, err
	}
	logger.Info(ctx, "plan paid", "plan_id", p.ID, "pay_hash", p.PayHash)
	return p, nil
}

// MarkFailed records a failed pending payment by manual admin edit.
func (s *Service) MarkFailed(ctx context.Context, planID id.ID) (*Plan, error) {
	if err := security.RequireRoles(appctx.GetIdentity(ctx), role.SuperAdmin); err != nil {
		return nil, err
	}
	p, err := s.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}
	if err := p.MarkFailed(); err != nil {
		return nil, err
	}
	p.Touch()
	if err := s.persist(ctx, p); err != nil {
		return nil, err
	}
	logger.Info(ctx, "plan payment failed", "plan_id", p.ID)
	return p, nil
}

// HandleGatewayCallback applies a payment processor callback addressed by
// transaction reference.
func (s *Service) HandleGatewayCallback(ctx context.Context, payHash string, succeeded bool, payDate time.Time) (*Plan, error) {
	p, err := s.repo.GetByPayHash(ctx, payHash)
	if err != nil {
		return nil, apperror.NewNotFound("plan", payHash)
	}

	if succeeded {
		err = p.MarkPaid(payDate, payHash)
	} else {
		err = p.MarkFailed()
	}
	if err != nil {
		return nil, err
	}

	p.Touch()
	if err := s.persist(ctx, p); err != nil {
		return nil, err
	}

	logger.Info(ctx, "gateway callback applied",
		"plan_id", p.ID,
		"pay_hash", payHash,
		"succeeded", succeeded)
	return p, nil
}

// CorrectStatus applies an admin backward transition. Super-admin only;
// every correction is audited.
func (s *Service) CorrectStatus(ctx context.Context, planID id.ID, to PayStatus, payDate *time.Time) (*Plan, error) {
	ident := appctx.GetIdentity(ctx)
	if err := security.RequireRoles(ident, role.SuperAdmin); err != nil {
		return nil, err
	}

	p, err := s.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	from := p.PayStatus
	if err := p.ForceStatus(to, payDate); err != nil {
		return nil, err
	}
	p.Touch()

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, p); err != nil {
			return fmt.Errorf("update plan: %w", err)
		}
		return s.auditor.Record(ctx, audit.NewEntry(ctx, "plan", p.ID, "status_correction", map[string]any{
			"from": string(from),
			"to":   string(to),
		}))
	})
	if err != nil {
		return nil, err
	}

	logger.Info(ctx, "plan status corrected",
		"plan_id", p.ID,
		"from", from,
		"to", to)
	return p, nil
}

// Retire soft-deletes a plan: isActive goes false, payStatus is kept.
func (s *Service) Retire(ctx context.Context, planID id.ID) error {
	p, err := s.GetByID(ctx, planID)
	if err != nil {
		return err
	}
	if p.Lifecycle == LifecycleRetired {
		return nil
	}

	p.Retire()
	p.Touch()
	if err := s.persist(ctx, p); err != nil {
		return err
	}

	logger.Info(ctx, "plan retired", "plan_id", p.ID)
	return nil
}

// Purge physically removes a plan. Super-admin only; audited.
func (s *Service) Purge(ctx context.Context, planID id.ID) error {
	ident := appctx.GetIdentity(ctx)
	if err := security.RequireRoles(ident, role.SuperAdmin); err != nil {
		return err
	}

	p, err := s.GetByID(ctx, planID)
	if err != nil {
		return err
	}

	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Purge(ctx, planID); err != nil {
			return fmt.Errorf("purge plan: %w", err)
		}
		return s.auditor.Record(ctx, audit.NewEntry(ctx, "plan", planID, "purge", map[string]any{
			"lifecycle":  string(LifecyclePurged),
			"payStatus":  string(p.PayStatus),
			"customerId": p.CustomerID.String(),
		}))
	})
	if err != nil {
		return err
	}

	logger.Info(ctx, "plan purged", "plan_id", planID)
	return nil
}

// SweepResult summarizes one expiration sweep pass.
type SweepResult struct {
	Expired int
	Failed  int
	Skipped int
}

// ExpireSweep drives the time-based transitions: paid plans past their
// subscription end become expired, pending plans past their payment
// deadline become failed. The sweep honors the expiration_sweep flag per
// tenant so rollouts can be staged.
func (s *Service) ExpireSweep(ctx context.Context, now time.Time, batchSize int) (SweepResult, error) {
	var res SweepResult

	due, err := s.repo.ListDue(ctx, now, batchSize)
	if err != nil {
		return res, fmt.Errorf("list due plans: %w", err)
	}

	for _, p := range due {
		if !s.sweepEnabled(ctx, p) {
			res.Skipped++
			continue
		}

		var action string
		switch {
		case p.SubscriptionOverdue(now):
			if err := p.MarkExpired(); err != nil {
				continue
			}
			action = "expired"
			res.Expired++
		case p.PaymentOverdue(now):
			if err := p.MarkFailed(); err != nil {
				continue
			}
			action = "payment_failed"
			res.Failed++
		default:
			continue
		}

		p.Touch()
		err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
			if err := s.repo.Update(ctx, p); err != nil {
				return fmt.Errorf("update plan: %w", err)
			}
			return s.auditor.Record(ctx, audit.NewEntry(ctx, "plan", p.ID, "sweep_"+action, map[string]any{
				"payStatus": string(p.PayStatus),
				"sweptAt":   now.UTC(),
			}))
		})
		if err != nil {
			logger.Error(ctx, "sweep update failed", "plan_id", p.ID, "error", err)
		}
	}

	if res.Expired > 0 || res.Failed > 0 || res.Skipped > 0 {
		logger.Info(ctx, "expiration sweep finished",
			"expired", res.Expired,
			"failed", res.Failed,
			"skipped", res.Skipped)
	}
	return res, nil
}

// sweepEnabled evaluates the sweep flag with the plan's tenant as the
// acting identity, so CEL conditions can stage the rollout per tenant.
func (s *Service) sweepEnabled(ctx context.Context, p *Plan) bool {
	if s.flags == nil {
		return true
	}
	tenantCtx := appctx.WithIdentity(ctx, &appctx.Identity{
		UserID: p.OwnerTenant(),
		Role:   role.Entrepreneur,
	})
	return s.flags.IsEnabled(tenantCtx, security.FlagExpirationSweep)
}

// resolveCustomer loads the target customer and checks the caller may
// subscribe them: super-admins anyone, entrepreneurs their own tenant only.
func (s *Service) resolveCustomer(ctx context.Context, ident *appctx.Identity, customerID id.ID) (*user.User, error) {
	scope, err := tenant.ScopeFor(ident)
	if err != nil {
		return nil, err
	}

	customer, err := s.userRepo.GetScoped(ctx, scope, customerID)
	if err != nil {
		return nil, apperror.NewNotFound("customer", customerID.String())
	}
	if customer.Role != role.Customer {
		return nil, apperror.NewValidation("target user is not a customer").
			WithDetail("field", "customerId").
			WithDetail("role", customer.Role.String())
	}
	return customer, nil
}

func (s *Service) persist(ctx context.Context, p *Plan) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := s.repo.Update(ctx, p); err != nil {
			return fmt.Errorf("update plan: %w", err)
		}
		return nil
	})
}

func timePtrEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}
