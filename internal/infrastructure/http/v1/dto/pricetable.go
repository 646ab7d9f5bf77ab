package dto

import (
	"planora/internal/domain/pricetable"
)

// CreatePriceTableRequest defines a sellable plan.
type CreatePriceTableRequest struct {
	Name            string   `json:"name" binding:"required"`
	CurrentPrice3x  string   `json:"currentPrice3x" binding:"required"`
	OldPrice3x      *string  `json:"oldPrice3x,omitempty"`
	CurrentPrice12x string   `json:"currentPrice12x" binding:"required"`
	OldPrice12x     *string  `json:"oldPrice12x,omitempty"`
	DisplayOrder    int      `json:"displayOrder,omitempty"`
	Advantages      []string `json:"advantages,omitempty"`
}

// ToEntity converts to domain entity.
func (r *CreatePriceTableRequest) ToEntity() *pricetable.PriceTable {
	t := pricetable.NewPriceTable(r.Name, r.CurrentPrice3x, r.CurrentPrice12x)
	t.OldPrice3x = r.OldPrice3x
	t.OldPrice12x = r.OldPrice12x
	t.DisplayOrder = r.DisplayOrder
	t.Advantages = r.Advantages
	return t
}

// UpdatePriceTableRequest modifies a price table. Price changes only
// affect plans created afterwards; existing plans keep their amount.
type UpdatePriceTableRequest struct {
	Name            *string  `json:"name,omitempty"`
	CurrentPrice3x  *string  `json:"currentPrice3x,omitempty"`
	OldPrice3x      *string  `json:"oldPrice3x,omitempty"`
	CurrentPrice12x *string  `json:"currentPrice12x,omitempty"`
	OldPrice12x     *string  `json:"oldPrice12x,omitempty"`
	DisplayOrder    *int     `json:"displayOrder,omitempty"`
	Advantages      []string `json:"advantages,omitempty"`
	IsActive        *bool    `json:"isActive,omitempty"`
}

// ApplyTo merges the request onto an existing entity.
func (r *UpdatePriceTableRequest) ApplyTo(t *pricetable.PriceTable) {
	if r.Name != nil {
		t.Name = *r.Name
	}
	if r.CurrentPrice3x != nil {
		t.CurrentPrice3x = *r.CurrentPrice3x
	}
	if r.OldPrice3x != nil {
		t.OldPrice3x = r.OldPrice3x
	}
	if r.CurrentPrice12x != nil {
		t.CurrentPrice12x = *r.CurrentPrice12x
	}
	if r.OldPrice12x != nil {
		t.OldPrice12x = r.OldPrice12x
	}
	if r.DisplayOrder != nil {
		t.DisplayOrder = *r.DisplayOrder
	}
	if r.Advantages != nil {
		t.Advantages = r.Advantages
	}
	if r.IsActive != nil {
		t.IsActive = *r.IsActive
	}
}
