package role

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"super-admin", SuperAdmin, false},
		{"entrepreneur", Entrepreneur, false},
		{"collaborator", Collaborator, false},
		{"customer", Customer, false},
		{"admin", "", true},
		{"SUPER-ADMIN", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAllValid(t *testing.T) {
	for _, r := range All() {
		assert.True(t, r.Valid(), "role %s must be valid", r)
	}
	assert.Len(t, All(), 4)
}

func TestIn(t *testing.T) {
	assert.True(t, Entrepreneur.In(Entrepreneur, SuperAdmin))
	assert.True(t, SuperAdmin.In(Entrepreneur, SuperAdmin))
	assert.False(t, Customer.In(Entrepreneur, SuperAdmin))
	assert.False(t, Collaborator.In())
}

func TestTenantTraits(t *testing.T) {
	assert.True(t, SuperAdmin.IsSuperAdmin())
	assert.False(t, Entrepreneur.IsSuperAdmin())
	assert.True(t, Entrepreneur.OwnsTenant())
	assert.False(t, Collaborator.OwnsTenant())
	assert.False(t, Customer.OwnsTenant())
}
