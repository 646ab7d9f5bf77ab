// Package plan provides the customer subscription plan lifecycle: payment
// status transitions, amount derivation from price tables, and expiration.
package plan

import (
	"context"
	"time"

	"planora/internal/core/apperror"
	"planora/internal/core/entity"
	"planora/internal/core/id"
	"planora/internal/core/types"
	"planora/internal/domain/pricetable"
)

// PayStatus is the payment state of a customer plan.
type PayStatus string

const (
	StatusPending PayStatus = "pending"
	StatusPaid    PayStatus = "paid"
	StatusFailed  PayStatus = "failed"
	StatusExpired PayStatus = "expired"
)

// Valid reports whether s is a known status.
func (s PayStatus) Valid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusFailed, StatusExpired:
		return true
	}
	return false
}

// Lifecycle tags a plan's retention state. Purged plans are physically
// removed; the constant exists for audit records only.
type Lifecycle string

const (
	LifecycleActive  Lifecycle = "active"
	LifecycleRetired Lifecycle = "retired"
	LifecyclePurged  Lifecycle = "purged"
)

// Plan links a customer to a price table with payment-state tracking.
type Plan struct {
	entity.Base
	entity.TenantOwned

	// CustomerID is the subscribing user (role=customer)
	CustomerID id.ID `db:"customer_id" json:"customerId"`

	// PriceTableID references the sellable plan definition
	PriceTableID id.ID `db:"price_table_id" json:"priceTableId"`

	// PlanType selects the installment cadence (3x or 12x)
	PlanType pricetable.PlanType `db:"plan_type" json:"planType"`

	// Amount is copied from the price table at creation time as a decimal
	// string and never recomputed at read time
	Amount string `db:"amount" json:"amount"`

	PayStatus PayStatus `db:"pay_status" json:"payStatus"`

	// PayDate is set when the plan reaches paid
	PayDate *time.Time `db:"pay_date" json:"payDate,omitempty"`

	// PayExpiration is the deadline for a pending payment
	PayExpiration *time.Time `db:"pay_expiration" json:"payExpiration,omitempty"`

	// PlanExpirationDate is when a paid subscription runs out
	PlanExpirationDate *time.Time `db:"plan_expiration_date" json:"planExpirationDate,omitempty"`

	// PayHash is the payment-gateway transaction reference
	PayHash string `db:"pay_hash" json:"payHash,omitempty"`

	// PayLink is the checkout URL handed to the customer
	PayLink string `db:"pay_link" json:"payLink,omitempty"`

	Lifecycle Lifecycle `db:"lifecycle" json:"lifecycle"`

	IsActive bool `db:"is_active" json:"isActive"`
}

// NewPlan creates a pending, active plan. Amount is assigned by the service.
func NewPlan(customerID, priceTableID id.ID, planType pricetable.PlanType) *Plan {
	return &Plan{
		Base:         entity.NewBase(),
		CustomerID:   customerID,
		PriceTableID: priceTableID,
		PlanType:     planType,
		PayStatus:    StatusPending,
		Lifecycle:    LifecycleActive,
		IsActive:     true,
	}
}

// Validate implements entity.Validatable.
func (p *Plan) Validate(ctx context.Context) error {
	if id.IsNil(p.CustomerID) {
		return apperror.NewValidation("customerId is required").WithDetail("field", "customerId")
	}
	if id.IsNil(p.PriceTableID) {
		return apperror.NewValidation("priceTableId is required").WithDetail("field", "priceTableId")
	}
	if !p.PlanType.Valid() {
		return apperror.NewValidation("invalid plan type").
			WithDetail("field", "planType").
			WithDetail("value", string(p.PlanType))
	}
	if p.Amount == "" || !types.ValidAmount(p.Amount) {
		return apperror.NewValidation("invalid decimal amount").
			WithDetail("field", "amount").
			WithDetail("value", p.Amount)
	}
	if !p.PayStatus.Valid() {
		return apperror.NewValidation("invalid pay status").
			WithDetail("field", "payStatus").
			WithDetail("value", string(p.PayStatus))
	}
	// paid implies a payment date
	if p.PayStatus == StatusPaid && p.PayDate == nil {
		return apperror.NewValidation("payDate is required when payStatus is paid").
			WithDetail("field", "payDate")
	}
	return nil
}

// CanTransition reports whether from→to is a regular lifecycle transition.
// Admin corrections bypass this through ForceStatus.
func CanTransition(from, to PayStatus) bool {
	switch from {
	case StatusPending:
		return to == StatusPaid || to == StatusFailed
	case StatusPaid:
		return to == StatusExpired
	default:
		// failed and expired are terminal for billing purposes
		return false
	}
}

// MarkPaid transitions pending→paid. payDate defaults to now when zero.
func (p *Plan) MarkPaid(payDate time.Time, payHash string) error {
	if !CanTransition(p.PayStatus, StatusPaid) {
		return apperror.NewPlanTransition(string(p.PayStatus), string(StatusPaid))
	}
	if payDate.IsZero() {
		payDate = time.Now().UTC()
	}
	p.PayStatus = StatusPaid
	p.PayDate = &payDate
	if payHash != "" {
		p.PayHash = payHash
	}
	return nil
}

// MarkFailed transitions pending→failed.
func (p *Plan) MarkFailed() error {
	if !CanTransition(p.PayStatus, StatusFailed) {
		return apperror.NewPlanTransition(string(p.PayStatus), string(StatusFailed))
	}
	p.PayStatus = StatusFailed
	return nil
}

// MarkExpired transitions paid→expired and deactivates the plan.
func (p *Plan) MarkExpired() error {
	if !CanTransition(p.PayStatus, StatusExpired) {
		return apperror.NewPlanTransition(string(p.PayStatus), string(StatusExpired))
	}
	p.PayStatus = StatusExpired
	p.IsActive = false
	return nil
}

// ForceStatus applies an admin correction, permitting backward transitions.
// expired cannot be forced directly; it is always time-driven.
func (p *Plan) ForceStatus(to PayStatus, payDate *time.Time) error {
	switch to {
	case StatusPending, StatusFailed:
		p.PayStatus = to
	case StatusPaid:
		if payDate == nil {
			now := time.Now().UTC()
			payDate = &now
		}
		p.PayStatus = StatusPaid
		p.PayDate = payDate
	default:
		return apperror.NewPlanTransition(string(p.PayStatus), string(to))
	}
	return nil
}

// Retire soft-deletes the plan: it stays queryable, payStatus unchanged.
func (p *Plan) Retire() {
	p.Lifecycle = LifecycleRetired
	p.IsActive = false
}

// PaymentOverdue reports whether a pending payment missed its deadline.
func (p *Plan) PaymentOverdue(now time.Time) bool {
	return p.PayStatus == StatusPending &&
		p.PayExpiration != nil &&
		now.After(*p.PayExpiration)
}

// SubscriptionOverdue reports whether a paid subscription has run out.
func (p *Plan) SubscriptionOverdue(now time.Time) bool {
	return p.PayStatus == StatusPaid &&
		p.PlanExpirationDate != nil &&
		now.After(*p.PlanExpirationDate)
}
