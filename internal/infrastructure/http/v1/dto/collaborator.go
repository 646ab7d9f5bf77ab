package dto

import (
	"planora/internal/core/apperror"
	"planora/internal/core/id"
	"planora/internal/domain/collaborator"
)

// CreateCollaboratorRequest creates a collaborator profile linked to an
// existing user account with the collaborator role.
type CreateCollaboratorRequest struct {
	UserID         string `json:"userId" binding:"required,uuid"`
	Name           string `json:"name" binding:"required"`
	JobTitle       string `json:"jobTitle,omitempty"`
	Phone          string `json:"phone,omitempty"`
	EntrepreneurID string `json:"entrepreneurId,omitempty"`
}

// ToEntity converts to domain entity.
func (r *CreateCollaboratorRequest) ToEntity() (*collaborator.Collaborator, error) {
	userID, err := id.Parse(r.UserID)
	if err != nil {
		return nil, apperror.NewValidation("invalid userId").WithDetail("userId", r.UserID)
	}
	c := collaborator.NewCollaborator(userID, r.Name)
	c.JobTitle = r.JobTitle
	c.Phone = r.Phone
	if err := applyOwner(c, r.EntrepreneurID); err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateCollaboratorRequest for modifying a profile. The linked user
// account cannot be changed.
type UpdateCollaboratorRequest struct {
	Name     *string `json:"name,omitempty"`
	JobTitle *string `json:"jobTitle,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	IsActive *bool   `json:"isActive,omitempty"`
}

// ApplyTo merges the request onto an existing entity.
func (r *UpdateCollaboratorRequest) ApplyTo(c *collaborator.Collaborator) {
	if r.Name != nil {
		c.Name = *r.Name
	}
	if r.JobTitle != nil {
		c.JobTitle = *r.JobTitle
	}
	if r.Phone != nil {
		c.Phone = *r.Phone
	}
	if r.IsActive != nil {
		c.IsActive = *r.IsActive
	}
}
