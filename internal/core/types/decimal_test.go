package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidAmount(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"99.99", true},
		{"899.88", true},
		{"0", true},
		{"0.00", true},
		{"1000000.0001", true},
		{"-1", false},
		{"", false},
		{"1e3", false},
		{"9,99", false},
		{"abc", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidAmount(tt.in))
		})
	}
}

func TestNormalizeAmount(t *testing.T) {
	assert.Equal(t, "99.9", NormalizeAmount("99.90"))
	assert.Equal(t, "99.9", NormalizeAmount("99.900"))
	assert.Equal(t, "100", NormalizeAmount("100.00"))
	// unparseable input passes through untouched
	assert.Equal(t, "n/a", NormalizeAmount("n/a"))
}

func TestAmountEqual(t *testing.T) {
	assert.True(t, AmountEqual("99.90", "99.9"))
	assert.True(t, AmountEqual("899.88", "899.880"))
	assert.False(t, AmountEqual("99.90", "99.91"))
	assert.False(t, AmountEqual("x", "99.9"))
}
