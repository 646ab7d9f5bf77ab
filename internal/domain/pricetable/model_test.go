package pricetable

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceTable_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*PriceTable)
		wantErr bool
	}{
		{
			name:   "valid table",
			mutate: func(p *PriceTable) {},
		},
		{
			name:    "missing name",
			mutate:  func(p *PriceTable) { p.Name = "" },
			wantErr: true,
		},
		{
			name:    "empty price",
			mutate:  func(p *PriceTable) { p.CurrentPrice3x = "" },
			wantErr: true,
		},
		{
			name:    "non-decimal price",
			mutate:  func(p *PriceTable) { p.CurrentPrice12x = "abc" },
			wantErr: true,
		},
		{
			name:    "negative price",
			mutate:  func(p *PriceTable) { p.CurrentPrice3x = "-1.00" },
			wantErr: true,
		},
		{
			name:    "scientific notation rejected",
			mutate:  func(p *PriceTable) { p.CurrentPrice3x = "1e2" },
			wantErr: true,
		},
		{
			name: "bad old price",
			mutate: func(p *PriceTable) {
				bad := "x"
				p.OldPrice12x = &bad
			},
			wantErr: true,
		},
		{
			name:    "negative display order",
			mutate:  func(p *PriceTable) { p.DisplayOrder = -1 },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table := NewPriceTable("Premium", "99.99", "899.88")
			tt.mutate(table)
			err := table.Validate(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPriceTable_PriceFor(t *testing.T) {
	table := NewPriceTable("Premium", "99.99", "899.88")

	got, err := table.PriceFor(Plan3x)
	require.NoError(t, err)
	assert.Equal(t, "99.99", got)

	got, err = table.PriceFor(Plan12x)
	require.NoError(t, err)
	assert.Equal(t, "899.88", got)

	_, err = table.PriceFor(PlanType("6x"))
	assert.Error(t, err)
}
