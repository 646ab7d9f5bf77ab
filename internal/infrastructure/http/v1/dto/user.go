package dto

import (
	"planora/internal/core/apperror"
	"planora/internal/core/id"
	"planora/internal/core/role"
	"planora/internal/domain/user"
)

// CreateUserRequest creates a user inside the caller's tenant.
type CreateUserRequest struct {
	Name           string  `json:"name" binding:"required"`
	Email          string  `json:"email" binding:"required,email"`
	Password       string  `json:"password" binding:"required,min=8"`
	Role           string  `json:"role" binding:"required"`
	EntrepreneurID *string `json:"entrepreneurId,omitempty"`
}

// ToServiceRequest converts to the domain request.
func (r *CreateUserRequest) ToServiceRequest() (user.CreateRequest, error) {
	req := user.CreateRequest{
		Name:     r.Name,
		Email:    r.Email,
		Password: r.Password,
		Role:     role.Role(r.Role),
	}
	if r.EntrepreneurID != nil {
		eid, err := id.Parse(*r.EntrepreneurID)
		if err != nil {
			return req, apperror.NewValidation("invalid entrepreneurId").WithDetail("entrepreneurId", *r.EntrepreneurID)
		}
		req.EntrepreneurID = &eid
	}
	return req, nil
}

// UpdateUserRequest modifies mutable user fields.
type UpdateUserRequest struct {
	Name     *string `json:"name,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
	IsActive *bool   `json:"isActive,omitempty"`
	Role     *string `json:"role,omitempty"`
}

// ToServiceRequest converts to the domain request.
func (r *UpdateUserRequest) ToServiceRequest() user.UpdateRequest {
	req := user.UpdateRequest{
		Name:     r.Name,
		Email:    r.Email,
		Password: r.Password,
		IsActive: r.IsActive,
	}
	if r.Role != nil {
		rv := role.Role(*r.Role)
		req.Role = &rv
	}
	return req
}
