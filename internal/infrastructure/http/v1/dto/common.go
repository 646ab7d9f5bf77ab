// Package dto provides data transfer objects for the HTTP API.
package dto

import (
	"planora/internal/core/apperror"
	"planora/internal/core/entity"
	"planora/internal/core/id"
)

// applyOwner pins a new entity to the tenant named in the request. The
// value only matters for super-admin callers; for everyone else the
// service overwrites it with the caller's own tenant.
func applyOwner(ent entity.TenantScoped, raw string) error {
	if raw == "" {
		return nil
	}
	ownerID, err := id.Parse(raw)
	if err != nil {
		return apperror.NewValidation("invalid entrepreneurId").WithDetail("entrepreneurId", raw)
	}
	ent.SetOwnerTenant(ownerID)
	return nil
}

// ListResponse wraps list results with pagination.
type ListResponse struct {
	Items      any   `json:"items"`
	TotalCount int64 `json:"totalCount"`
	Limit      int   `json:"limit"`
	Offset     int   `json:"offset"`
}

// IDResponse for create operations.
type IDResponse struct {
	ID string `json:"id"`
}

// NewIDResponse creates ID response.
func NewIDResponse(i id.ID) IDResponse {
	return IDResponse{ID: i.String()}
}

// SuccessResponse for operations without data.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse for error details.
type ErrorResponse struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}
