package dto

import (
	"planora/internal/core/apperror"
	"planora/internal/core/id"
	"planora/internal/domain/ticket"
)

// CreateTicketRequest opens a support ticket. CustomerID is optional for
// customer callers: their own account is used regardless of what is sent.
type CreateTicketRequest struct {
	CustomerID     string `json:"customerId,omitempty"`
	Subject        string `json:"subject" binding:"required"`
	Description    string `json:"description,omitempty"`
	Priority       string `json:"priority,omitempty"`
	EntrepreneurID string `json:"entrepreneurId,omitempty"`
}

// ToEntity converts to domain entity.
func (r *CreateTicketRequest) ToEntity() (*ticket.Ticket, error) {
	var customerID id.ID
	if r.CustomerID != "" {
		parsed, err := id.Parse(r.CustomerID)
		if err != nil {
			return nil, apperror.NewValidation("invalid customerId").WithDetail("customerId", r.CustomerID)
		}
		customerID = parsed
	}

	t := ticket.NewTicket(customerID, r.Subject)
	t.Description = r.Description
	if r.Priority != "" {
		t.Priority = ticket.Priority(r.Priority)
	}
	if err := applyOwner(t, r.EntrepreneurID); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateTicketRequest for modifying a ticket.
type UpdateTicketRequest struct {
	Subject     *string `json:"subject,omitempty"`
	Description *string `json:"description,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	Status      *string `json:"status,omitempty"`
}

// ApplyTo merges the request onto an existing entity.
func (r *UpdateTicketRequest) ApplyTo(t *ticket.Ticket) {
	if r.Subject != nil {
		t.Subject = *r.Subject
	}
	if r.Description != nil {
		t.Description = *r.Description
	}
	if r.Priority != nil {
		t.Priority = ticket.Priority(*r.Priority)
	}
	if r.Status != nil {
		t.Status = ticket.Status(*r.Status)
	}
}

// AssignTicketRequest hands a ticket to a collaborator.
type AssignTicketRequest struct {
	AssigneeID string `json:"assigneeId" binding:"required,uuid"`
}
