// Package collaborator provides the collaborator profile catalog. A
// collaborator profile extends a user account with team metadata inside
// the entrepreneur's tenant.
package collaborator

import (
	"context"
	"regexp"

	"planora/internal/core/apperror"
	"planora/internal/core/entity"
	"planora/internal/core/id"
)

var phoneRE = regexp.MustCompile(`^\+?[0-9]{8,15}$`)

// Collaborator represents a team member's profile within a tenant.
type Collaborator struct {
	entity.Base
	entity.TenantOwned

	// UserID links the profile to the collaborator's user account
	UserID id.ID `db:"user_id" json:"userId"`

	Name string `db:"name" json:"name"`

	// JobTitle is a free-form position label
	JobTitle string `db:"job_title" json:"jobTitle,omitempty"`

	Phone string `db:"phone" json:"phone,omitempty"`

	IsActive bool `db:"is_active" json:"isActive"`
}

// NewCollaborator creates a profile for the given user account.
func NewCollaborator(userID id.ID, name string) *Collaborator {
	return &Collaborator{
		Base:     entity.NewBase(),
		UserID:   userID,
		Name:     name,
		IsActive: true,
	}
}

// Validate implements entity.Validatable.
func (c *Collaborator) Validate(ctx context.Context) error {
	if id.IsNil(c.UserID) {
		return apperror.NewValidation("userId is required").WithDetail("field", "userId")
	}
	if c.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if c.Phone != "" && !phoneRE.MatchString(c.Phone) {
		return apperror.NewValidation("invalid phone format").WithDetail("field", "phone")
	}
	return nil
}
