// Package pricetable provides the sellable plan definitions. A price table
// carries two independent price points, one per installment cadence, both
// kept as decimal strings end to end.
package pricetable

import (
	"context"

	"planora/internal/core/apperror"
	"planora/internal/core/entity"
	"planora/internal/core/types"
)

// PlanType selects which price point of a table applies.
type PlanType string

const (
	// Plan3x is the short-term, 3-installment cadence.
	Plan3x PlanType = "3x"

	// Plan12x is the long-term, 12-installment cadence.
	Plan12x PlanType = "12x"
)

// Valid reports whether t is a known plan type.
func (t PlanType) Valid() bool {
	return t == Plan3x || t == Plan12x
}

// PriceTable represents a sellable plan definition. Tables are platform-wide:
// super-admins manage them, everyone may read the active ones.
type PriceTable struct {
	entity.Base

	Name string `db:"name" json:"name"`

	// CurrentPrice3x is the price for the 3x cadence, as a decimal string
	CurrentPrice3x string `db:"current_price_3x" json:"currentPrice3x"`

	// OldPrice3x is the optional struck-through price for discount display
	OldPrice3x *string `db:"old_price_3x" json:"oldPrice3x,omitempty"`

	// CurrentPrice12x is the price for the 12x cadence, as a decimal string
	CurrentPrice12x string `db:"current_price_12x" json:"currentPrice12x"`

	// OldPrice12x is the optional struck-through price for discount display
	OldPrice12x *string `db:"old_price_12x" json:"oldPrice12x,omitempty"`

	// DisplayOrder ranks tables in public listings, ascending
	DisplayOrder int `db:"display_order" json:"displayOrder"`

	// Advantages are the feature bullet points shown to buyers
	Advantages []string `db:"advantages" json:"advantages"`

	// IsActive=false hides the table from public listings
	IsActive bool `db:"is_active" json:"isActive"`
}

// NewPriceTable creates an active price table.
func NewPriceTable(name, price3x, price12x string) *PriceTable {
	return &PriceTable{
		Base:            entity.NewBase(),
		Name:            name,
		CurrentPrice3x:  price3x,
		CurrentPrice12x: price12x,
		IsActive:        true,
	}
}

// Validate implements entity.Validatable.
func (p *PriceTable) Validate(ctx context.Context) error {
	if p.Name == "" {
		return apperror.NewValidation("name is required").WithDetail("field", "name")
	}
	if err := validatePrice("currentPrice3x", p.CurrentPrice3x); err != nil {
		return err
	}
	if err := validatePrice("currentPrice12x", p.CurrentPrice12x); err != nil {
		return err
	}
	if p.OldPrice3x != nil {
		if err := validatePrice("oldPrice3x", *p.OldPrice3x); err != nil {
			return err
		}
	}
	if p.OldPrice12x != nil {
		if err := validatePrice("oldPrice12x", *p.OldPrice12x); err != nil {
			return err
		}
	}
	if p.DisplayOrder < 0 {
		return apperror.NewValidation("displayOrder must not be negative").
			WithDetail("field", "displayOrder")
	}
	return nil
}

// PriceFor returns the decimal-string price point selected by planType.
// The string is returned as stored; callers copy it, never recompute it.
func (p *PriceTable) PriceFor(planType PlanType) (string, error) {
	switch planType {
	case Plan3x:
		return p.CurrentPrice3x, nil
	case Plan12x:
		return p.CurrentPrice12x, nil
	default:
		return "", apperror.NewValidation("invalid plan type").
			WithDetail("field", "planType").
			WithDetail("value", string(planType))
	}
}

func validatePrice(field, value string) error {
	if value == "" {
		return apperror.NewValidation(field + " is required").WithDetail("field", field)
	}
	if !types.ValidAmount(value) {
		return apperror.NewValidation("invalid decimal amount").
			WithDetail("field", field).
			WithDetail("value", value)
	}
	return nil
}
