// Package gateway provides the payment gateway catalog. Each entrepreneur
// configures the gateways their customer plans are charged through.
package gateway

import (
	"context"

	"planora/internal/core/apperror"
	"planora/internal/core/entity"
)

// Provider identifies the payment processor behind a gateway.
type Provider string

const (
	ProviderStripe      Provider = "stripe"
	ProviderMercadoPago Provider = "mercadopago"
	ProviderAsaas       Provider = "asaas"
	ProviderManual      Provider = "manual"
)

// Gateway represents a configured payment gateway inside a tenant.
type Gateway struct {
	entity.Base
	entity.TenantOwned

	// Name is the entrepreneur-facing label
	Name string `db:"name" json:"name"`

	// Provider selects the payment processor
	Provider Provider `db:"provider" json:"provider"`

	// APIKey is the processor credential; never serialized
	APIKey string `db:"api_key" json:"-"`

	// WebhookSecret verifies callback signatures; never serialized
	WebhookSecret string `db:"webhook_secret" json:"-"`

	// CallbackURL receives payment status callbacks
	CallbackURL string `db:"callback_url" json:"callbackUrl,omitempty"`

	IsActive bool `db:"is_active" json:"isActive"`
}

// NewGateway creates a gateway with required fields.
func NewGateway(name string, provider Provider) *Gateway {
	return &Gateway{
		Base:     entity.NewBase(),
		Name:     name,
		Provider: provider,
		IsActive: true,
	}
}

// Validate implements entity.Validatable.
func (g *Gateway) Validate(ctx context.Context) error {
	if g.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if !g.Provider.Valid() {
		return apperror.NewValidation("invalid provider").
			WithDetail("field", "provider").
			WithDetail("value", string(g.Provider))
	}
	if g.Provider != ProviderManual && g.APIKey == "" {
		return apperror.NewValidation("apiKey is required for this provider").
			WithDetail("field", "apiKey")
	}
	return nil
}

// Valid reports whether p is a known provider.
func (p Provider) Valid() bool {
	switch p {
	case ProviderStripe, ProviderMercadoPago, ProviderAsaas, ProviderManual:
		return true
	}
	return false
}
