// Package ticket provides the support ticket catalog.
package ticket

import (
	"context"
	"time"

	"planora/internal/core/apperror"
	"planora/internal/core/entity"
	"planora/internal/core/id"
)

// Status is the handling state of a support ticket.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusClosed     Status = "closed"
)

// Priority ranks tickets for triage.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Ticket represents a customer support request within a tenant.
type Ticket struct {
	entity.Base
	entity.TenantOwned

	// Number is the sequential human-readable identifier (TKT-2026-00001)
	Number string `db:"number" json:"number"`

	// CustomerID is the user who raised the ticket
	CustomerID id.ID `db:"customer_id" json:"customerId"`

	Subject     string `db:"subject" json:"subject"`
	Description string `db:"description" json:"description,omitempty"`

	Status   Status   `db:"status" json:"status"`
	Priority Priority `db:"priority" json:"priority"`

	// AssigneeID is the collaborator handling the ticket
	AssigneeID *id.ID `db:"assignee_id" json:"assigneeId,omitempty"`

	// ResolvedAt is set when the ticket reaches resolved state
	ResolvedAt *time.Time `db:"resolved_at" json:"resolvedAt,omitempty"`
}

// NewTicket creates an open ticket. Number is assigned on create.
func NewTicket(customerID id.ID, subject string) *Ticket {
	return &Ticket{
		Base:       entity.NewBase(),
		CustomerID: customerID,
		Subject:    subject,
		Status:     StatusOpen,
		Priority:   PriorityMedium,
	}
}

// Validate implements entity.Validatable.
func (t *Ticket) Validate(ctx context.Context) error {
	if id.IsNil(t.CustomerID) {
		return apperror.NewValidation("customerId is required").WithDetail("field", "customerId")
	}
	if t.Subject == "" {
		return apperror.NewValidation("subject is required").WithDetail("field", "subject")
	}
	if !t.Status.Valid() {
		return apperror.NewValidation("invalid status").
			WithDetail("field", "status").
			WithDetail("value", string(t.Status))
	}
	if !t.Priority.Valid() {
		return apperror.NewValidation("invalid priority").
			WithDetail("field", "priority").
			WithDetail("value", string(t.Priority))
	}
	return nil
}

// Resolve marks the ticket resolved.
func (t *Ticket) Resolve() {
	now := time.Now().UTC()
	t.Status = StatusResolved
	t.ResolvedAt = &now
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}
