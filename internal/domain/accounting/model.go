// Package accounting provides tenant-scoped income and expense entries.
package accounting

import (
	"context"
	"time"

	"planora/internal/core/apperror"
	"planora/internal/core/entity"
	"planora/internal/core/types"
)

// Kind separates money coming in from money going out.
type Kind string

const (
	KindIncome  Kind = "income"
	KindExpense Kind = "expense"
)

// Entry represents a single accounting record within a tenant.
type Entry struct {
	entity.Base
	entity.TenantOwned

	Kind Kind `db:"kind" json:"kind"`

	Description string `db:"description" json:"description"`

	// Category is a free-form grouping label (subscriptions, payroll, ...)
	Category string `db:"category" json:"category,omitempty"`

	// Amount is decimal-precise, always positive; Kind carries the sign
	Amount types.Money `db:"amount" json:"amount"`

	// EntryDate is the accounting date, not the record creation time
	EntryDate time.Time `db:"entry_date" json:"entryDate"`
}

// NewEntry creates an accounting entry dated now.
func NewEntry(kind Kind, description string, amount types.Money) *Entry {
	return &Entry{
		Base:        entity.NewBase(),
		Kind:        kind,
		Description: description,
		Amount:      amount,
		EntryDate:   time.Now().UTC(),
	}
}

// Validate implements entity.Validatable.
func (e *Entry) Validate(ctx context.Context) error {
	if !e.Kind.Valid() {
		return apperror.NewValidation("invalid kind").
			WithDetail("field", "kind").
			WithDetail("value", string(e.Kind))
	}
	if e.Description == "" {
		return apperror.NewValidation("description is required").WithDetail("field", "description")
	}
	if !e.Amount.IsPositive() {
		return apperror.NewValidation("amount must be positive").WithDetail("field", "amount")
	}
	if e.EntryDate.IsZero() {
		return apperror.NewValidation("entryDate is required").WithDetail("field", "entryDate")
	}
	return nil
}

// Signed returns the amount with expense entries negated.
func (e *Entry) Signed() types.Money {
	if e.Kind == KindExpense {
		return e.Amount.Neg()
	}
	return e.Amount
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	switch k {
	case KindIncome, KindExpense:
		return true
	}
	return false
}
