package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"planora/internal/core/apperror"
	"planora/internal/domain/accounting"
)

// CreateEntryRequest records an income or expense entry. Amount travels as
// a decimal string and is parsed exactly.
type CreateEntryRequest struct {
	Kind           string     `json:"kind" binding:"required"`
	Description    string     `json:"description" binding:"required"`
	Category       string     `json:"category,omitempty"`
	Amount         string     `json:"amount" binding:"required"`
	EntryDate      *time.Time `json:"entryDate,omitempty"`
	EntrepreneurID string     `json:"entrepreneurId,omitempty"`
}

// ToEntity converts to domain entity.
func (r *CreateEntryRequest) ToEntity() (*accounting.Entry, error) {
	amount, err := decimal.NewFromString(r.Amount)
	if err != nil {
		return nil, apperror.NewValidation("invalid amount").WithDetail("amount", r.Amount)
	}

	e := accounting.NewEntry(accounting.Kind(r.Kind), r.Description, amount)
	e.Category = r.Category
	if r.EntryDate != nil {
		e.EntryDate = *r.EntryDate
	}
	if err := applyOwner(e, r.EntrepreneurID); err != nil {
		return nil, err
	}
	return e, nil
}

// UpdateEntryRequest for modifying an entry.
type UpdateEntryRequest struct {
	Description *string    `json:"description,omitempty"`
	Category    *string    `json:"category,omitempty"`
	Amount      *string    `json:"amount,omitempty"`
	EntryDate   *time.Time `json:"entryDate,omitempty"`
}

// ApplyTo merges the request onto an existing entity.
func (r *UpdateEntryRequest) ApplyTo(e *accounting.Entry) error {
	if r.Description != nil {
		e.Description = *r.Description
	}
	if r.Category != nil {
		e.Category = *r.Category
	}
	if r.Amount != nil {
		amount, err := decimal.NewFromString(*r.Amount)
		if err != nil {
			return apperror.NewValidation("invalid amount").WithDetail("amount", *r.Amount)
		}
		e.Amount = amount
	}
	if r.EntryDate != nil {
		e.EntryDate = *r.EntryDate
	}
	return nil
}

// SummaryResponse reports aggregated totals for a period.
type SummaryResponse struct {
	From    time.Time `json:"from"`
	To      time.Time `json:"to"`
	Income  string    `json:"income"`
	Expense string    `json:"expense"`
	Balance string    `json:"balance"`
}

// FromSummary creates response from domain summary.
func FromSummary(s accounting.Summary, from, to time.Time) SummaryResponse {
	return SummaryResponse{
		From:    from,
		To:      to,
		Income:  s.Income.String(),
		Expense: s.Expense.String(),
		Balance: s.Balance.String(),
	}
}
