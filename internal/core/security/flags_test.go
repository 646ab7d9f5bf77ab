package security

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appctx "planora/internal/core/context"
	"planora/internal/core/id"
	"planora/internal/core/role"
)

func flagCtx(r role.Role, entrepreneurID *id.ID) context.Context {
	return appctx.WithIdentity(context.Background(), &appctx.Identity{
		UserID:         id.New(),
		Email:          "owner@acme.io",
		Role:           r,
		EntrepreneurID: entrepreneurID,
	})
}

func TestCELFlags_Unconditional(t *testing.T) {
	flags, err := NewCELFlags()
	require.NoError(t, err)
	require.NoError(t, flags.Replace([]Flag{
		{Name: FlagExpirationSweep, Enabled: true},
		{Name: FlagAmountOverride, Enabled: false},
	}))

	ctx := flagCtx(role.Customer, nil)
	assert.True(t, flags.IsEnabled(ctx, FlagExpirationSweep))
	assert.False(t, flags.IsEnabled(ctx, FlagAmountOverride))
	assert.False(t, flags.IsEnabled(ctx, "unknown"))
}

func TestCELFlags_DefaultsWithoutRows(t *testing.T) {
	flags, err := NewCELFlags()
	require.NoError(t, err)

	ctx := flagCtx(role.Entrepreneur, nil)
	assert.True(t, flags.IsEnabled(ctx, FlagExpirationSweep))
	assert.True(t, flags.IsEnabled(ctx, FlagAmountOverride))
	assert.False(t, flags.IsEnabled(ctx, FlagPublicPriceCache))
	assert.False(t, flags.IsEnabled(ctx, "unknown"))
}

func TestCELFlags_StoredRowOverridesDefault(t *testing.T) {
	flags, err := NewCELFlags()
	require.NoError(t, err)
	require.NoError(t, flags.Replace([]Flag{
		{Name: FlagExpirationSweep, Enabled: false},
	}))

	ctx := flagCtx(role.Entrepreneur, nil)
	assert.False(t, flags.IsEnabled(ctx, FlagExpirationSweep))
	// flags without a row keep their default
	assert.True(t, flags.IsEnabled(ctx, FlagAmountOverride))
}

func TestCELFlags_RoleCondition(t *testing.T) {
	flags, err := NewCELFlags()
	require.NoError(t, err)
	require.NoError(t, flags.Replace([]Flag{
		{Name: FlagAmountOverride, Enabled: true, Condition: `role == 'entrepreneur' || role == 'super-admin'`},
	}))

	assert.True(t, flags.IsEnabled(flagCtx(role.Entrepreneur, nil), FlagAmountOverride))
	assert.True(t, flags.IsEnabled(flagCtx(role.SuperAdmin, nil), FlagAmountOverride))
	assert.False(t, flags.IsEnabled(flagCtx(role.Customer, nil), FlagAmountOverride))
}

func TestCELFlags_TenantCondition(t *testing.T) {
	tenantID := id.New()
	other := id.New()

	flags, err := NewCELFlags()
	require.NoError(t, err)
	require.NoError(t, flags.Replace([]Flag{
		{Name: FlagExpirationSweep, Enabled: true, Condition: `entrepreneur_id == '` + tenantID.String() + `'`},
	}))

	assert.True(t, flags.IsEnabled(flagCtx(role.Collaborator, &tenantID), FlagExpirationSweep))
	assert.False(t, flags.IsEnabled(flagCtx(role.Collaborator, &other), FlagExpirationSweep))
	// anonymous request: identity attributes are empty, condition fails closed
	assert.False(t, flags.IsEnabled(context.Background(), FlagExpirationSweep))
}

func TestCELFlags_RejectsBadConditions(t *testing.T) {
	flags, err := NewCELFlags()
	require.NoError(t, err)

	assert.Error(t, flags.Replace([]Flag{
		{Name: "broken", Enabled: true, Condition: `role ==`},
	}))
	assert.Error(t, flags.Replace([]Flag{
		{Name: "non_bool", Enabled: true, Condition: `role`},
	}))
}
