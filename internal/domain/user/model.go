// Package user provides the platform user model and tenant-scoped user management.
package user

import (
	"context"
	"regexp"
	"time"

	"planora/internal/core/apperror"
	"planora/internal/core/entity"
	"planora/internal/core/id"
	"planora/internal/core/role"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// User represents a platform user.
//
// Tenancy is role-dependent: super-admins and entrepreneurs carry a nil
// EntrepreneurID (they are above or at the tenant root), collaborators and
// customers point at their entrepreneur.
type User struct {
	entity.Base

	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         role.Role `db:"role" json:"role"`

	// EntrepreneurID is the tenant pointer; nil for super-admins and
	// entrepreneurs.
	EntrepreneurID *id.ID `db:"entrepreneur_id" json:"entrepreneurId,omitempty"`

	IsActive bool `db:"is_active" json:"isActive"`

	LastLoginAt         *time.Time `db:"last_login_at" json:"lastLoginAt,omitempty"`
	FailedLoginAttempts int        `db:"failed_login_attempts" json:"-"`
	LockedUntil         *time.Time `db:"locked_until" json:"-"`
}

// NewUser creates a new user.
func NewUser(name, email, passwordHash string, r role.Role) *User {
	return &User{
		Base:         entity.NewBase(),
		Name:         name,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         r,
		IsActive:     true,
	}
}

// Validate implements entity.Validatable.
func (u *User) Validate(ctx context.Context) error {
	if u.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if !emailPattern.MatchString(u.Email) {
		return apperror.NewValidation("invalid email").WithDetail("field", "email")
	}
	if !u.Role.Valid() {
		return apperror.NewValidation("invalid role").
			WithDetail("field", "role").
			WithDetail("value", u.Role.String())
	}
	// Collaborators and customers must hang off a tenant.
	if u.Role.In(role.Collaborator, role.Customer) {
		if u.EntrepreneurID == nil || id.IsNil(*u.EntrepreneurID) {
			return apperror.NewValidation("entrepreneurId is required for this role").
				WithDetail("field", "entrepreneurId")
		}
	}
	return nil
}

// TenantRoot resolves the tenant the user belongs to: entrepreneurs root
// their own tenant, collaborators and customers inherit their claim.
// Returns the nil ID for super-admins.
func (u *User) TenantRoot() id.ID {
	if u.Role.OwnsTenant() {
		return u.ID
	}
	if u.EntrepreneurID != nil {
		return *u.EntrepreneurID
	}
	return id.Nil()
}

// IsLocked returns true if account is locked.
func (u *User) IsLocked() bool {
	if u.LockedUntil == nil {
		return false
	}
	return time.Now().Before(*u.LockedUntil)
}

// CanLogin checks if user can login.
func (u *User) CanLogin() error {
	if !u.IsActive {
		return apperror.NewForbidden("account is disabled")
	}
	if u.IsLocked() {
		return apperror.NewForbidden("account is temporarily locked")
	}
	return nil
}

// RecordFailedLogin increments failed login counter.
func (u *User) RecordFailedLogin(maxAttempts int, lockDuration time.Duration) {
	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= maxAttempts {
		lockUntil := time.Now().Add(lockDuration)
		u.LockedUntil = &lockUntil
	}
}

// RecordSuccessfulLogin resets failed login counter.
func (u *User) RecordSuccessfulLogin() {
	u.FailedLoginAttempts = 0
	u.LockedUntil = nil
	now := time.Now()
	u.LastLoginAt = &now
}
