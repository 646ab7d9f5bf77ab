// Package instance provides the WhatsApp messaging instance catalog.
// An instance is a connected WhatsApp session entrepreneurs message
// customers through.
package instance

import (
	"context"
	"regexp"
	"time"

	"planora/internal/core/apperror"
	"planora/internal/core/entity"
)

var phoneRE = regexp.MustCompile(`^\+?[0-9]{8,15}$`)

// Status is the connection state of a messaging instance.
type Status string

const (
	StatusDisconnected Status = "disconnected"
	StatusPairing      Status = "pairing"
	StatusConnected    Status = "connected"
)

// Instance represents a WhatsApp session bound to a tenant.
type Instance struct {
	entity.Base
	entity.TenantOwned

	Name string `db:"name" json:"name"`

	// PhoneNumber is the WhatsApp account number in E.164-ish form
	PhoneNumber string `db:"phone_number" json:"phoneNumber"`

	// InstanceKey authenticates against the messaging provider; never serialized
	InstanceKey string `db:"instance_key" json:"-"`

	Status Status `db:"status" json:"status"`

	// ConnectedAt is set when the session last reached connected state
	ConnectedAt *time.Time `db:"connected_at" json:"connectedAt,omitempty"`

	IsActive bool `db:"is_active" json:"isActive"`
}

// NewInstance creates an instance in disconnected state.
func NewInstance(name, phoneNumber string) *Instance {
	return &Instance{
		Base:        entity.NewBase(),
		Name:        name,
		PhoneNumber: phoneNumber,
		Status:      StatusDisconnected,
		IsActive:    true,
	}
}

// Validate implements entity.Validatable.
func (i *Instance) Validate(ctx context.Context) error {
	if i.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if i.PhoneNumber == "" {
		return apperror.NewValidation("phoneNumber is required").WithDetail("field", "phoneNumber")
	}
	if !phoneRE.MatchString(i.PhoneNumber) {
		return apperror.NewValidation("invalid phone format").WithDetail("field", "phoneNumber")
	}
	if !i.Status.Valid() {
		return apperror.NewValidation("invalid status").
			WithDetail("field", "status").
			WithDetail("value", string(i.Status))
	}
	return nil
}

// MarkConnected transitions the instance to connected state.
func (i *Instance) MarkConnected() {
	now := time.Now().UTC()
	i.Status = StatusConnected
	i.ConnectedAt = &now
}

// MarkDisconnected transitions the instance to disconnected state.
func (i *Instance) MarkDisconnected() {
	i.Status = StatusDisconnected
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusDisconnected, StatusPairing, StatusConnected:
		return true
	}
	return false
}
