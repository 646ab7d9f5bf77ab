package dto

import (
	"planora/internal/domain/gateway"
)

// CreateGatewayRequest for registering a payment gateway. EntrepreneurID
// names the target tenant for super-admin callers; tenant users always
// create inside their own tenant.
type CreateGatewayRequest struct {
	Name           string `json:"name" binding:"required"`
	Provider       string `json:"provider" binding:"required"`
	APIKey         string `json:"apiKey,omitempty"`
	WebhookSecret  string `json:"webhookSecret,omitempty"`
	CallbackURL    string `json:"callbackUrl,omitempty"`
	EntrepreneurID string `json:"entrepreneurId,omitempty"`
}

// ToEntity converts to domain entity.
func (r *CreateGatewayRequest) ToEntity() (*gateway.Gateway, error) {
	g := gateway.NewGateway(r.Name, gateway.Provider(r.Provider))
	g.APIKey = r.APIKey
	g.WebhookSecret = r.WebhookSecret
	g.CallbackURL = r.CallbackURL
	if err := applyOwner(g, r.EntrepreneurID); err != nil {
		return nil, err
	}
	return g, nil
}

// UpdateGatewayRequest for modifying a gateway. Credentials are only
// replaced when sent; an absent field keeps the stored secret.
type UpdateGatewayRequest struct {
	Name          *string `json:"name,omitempty"`
	APIKey        *string `json:"apiKey,omitempty"`
	WebhookSecret *string `json:"webhookSecret,omitempty"`
	CallbackURL   *string `json:"callbackUrl,omitempty"`
	IsActive      *bool   `json:"isActive,omitempty"`
}

// ApplyTo merges the request onto an existing entity.
func (r *UpdateGatewayRequest) ApplyTo(g *gateway.Gateway) {
	if r.Name != nil {
		g.Name = *r.Name
	}
	if r.APIKey != nil {
		g.APIKey = *r.APIKey
	}
	if r.WebhookSecret != nil {
		g.WebhookSecret = *r.WebhookSecret
	}
	if r.CallbackURL != nil {
		g.CallbackURL = *r.CallbackURL
	}
	if r.IsActive != nil {
		g.IsActive = *r.IsActive
	}
}
