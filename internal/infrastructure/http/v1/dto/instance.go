package dto

import (
	"planora/internal/domain/instance"
)

// CreateInstanceRequest registers a messaging instance. EntrepreneurID is
// only honored for super-admin callers.
type CreateInstanceRequest struct {
	Name           string `json:"name" binding:"required"`
	PhoneNumber    string `json:"phoneNumber" binding:"required"`
	InstanceKey    string `json:"instanceKey,omitempty"`
	EntrepreneurID string `json:"entrepreneurId,omitempty"`
}

// ToEntity converts to domain entity.
func (r *CreateInstanceRequest) ToEntity() (*instance.Instance, error) {
	i := instance.NewInstance(r.Name, r.PhoneNumber)
	i.InstanceKey = r.InstanceKey
	if err := applyOwner(i, r.EntrepreneurID); err != nil {
		return nil, err
	}
	return i, nil
}

// UpdateInstanceRequest for modifying an instance.
type UpdateInstanceRequest struct {
	Name        *string `json:"name,omitempty"`
	PhoneNumber *string `json:"phoneNumber,omitempty"`
	InstanceKey *string `json:"instanceKey,omitempty"`
	IsActive    *bool   `json:"isActive,omitempty"`
}

// ApplyTo merges the request onto an existing entity.
func (r *UpdateInstanceRequest) ApplyTo(i *instance.Instance) {
	if r.Name != nil {
		i.Name = *r.Name
	}
	if r.PhoneNumber != nil {
		i.PhoneNumber = *r.PhoneNumber
	}
	if r.InstanceKey != nil {
		i.InstanceKey = *r.InstanceKey
	}
	if r.IsActive != nil {
		i.IsActive = *r.IsActive
	}
}

// SetInstanceStatusRequest drives connection state transitions.
type SetInstanceStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
