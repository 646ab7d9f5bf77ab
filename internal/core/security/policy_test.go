package security

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planora/internal/core/apperror"
	appctx "planora/internal/core/context"
	"planora/internal/core/id"
	"planora/internal/core/role"
)

func ident(r role.Role, entrepreneurID *id.ID) *appctx.Identity {
	return &appctx.Identity{UserID: id.New(), Email: "a@b.c", Role: r, EntrepreneurID: entrepreneurID}
}

func TestRequireRoles(t *testing.T) {
	assert.NoError(t, RequireRoles(ident(role.Entrepreneur, nil), role.Entrepreneur, role.SuperAdmin))
	assert.NoError(t, RequireRoles(ident(role.SuperAdmin, nil), role.SuperAdmin))

	err := RequireRoles(ident(role.Customer, nil), role.Entrepreneur, role.SuperAdmin)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)

	err = RequireRoles(nil, role.SuperAdmin)
	appErr, ok = apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)
}

func TestRequireEntrepreneurOrAdmin(t *testing.T) {
	assert.NoError(t, RequireEntrepreneurOrAdmin(ident(role.Entrepreneur, nil)))
	assert.NoError(t, RequireEntrepreneurOrAdmin(ident(role.SuperAdmin, nil)))
	assert.Error(t, RequireEntrepreneurOrAdmin(ident(role.Collaborator, nil)))
	assert.Error(t, RequireEntrepreneurOrAdmin(ident(role.Customer, nil)))
}

func TestOwnsResource(t *testing.T) {
	tenantID := id.New()
	other := id.New()

	t.Run("super-admin owns everything", func(t *testing.T) {
		assert.True(t, OwnsResource(ident(role.SuperAdmin, nil), other))
	})

	t.Run("entrepreneur owns its tenant rows", func(t *testing.T) {
		e := ident(role.Entrepreneur, nil)
		assert.True(t, OwnsResource(e, e.UserID))
		assert.False(t, OwnsResource(e, other))
	})

	t.Run("collaborator owns tenant rows via claim", func(t *testing.T) {
		c := ident(role.Collaborator, &tenantID)
		assert.True(t, OwnsResource(c, tenantID))
		assert.False(t, OwnsResource(c, other))
	})
}

func TestRequireOwnershipReportsNotFound(t *testing.T) {
	e := ident(role.Entrepreneur, nil)
	err := RequireOwnership(e, id.New(), "payment gateway", "x")
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	// Out-of-tenant rows must be indistinguishable from absent rows.
	assert.Equal(t, apperror.CodeNotFound, appErr.Code)
}

func TestRequireSelfOrAdmin(t *testing.T) {
	c := ident(role.Customer, nil)
	assert.NoError(t, RequireSelfOrAdmin(c, c.UserID, "customer plan", "x"))
	assert.NoError(t, RequireSelfOrAdmin(ident(role.SuperAdmin, nil), id.New(), "customer plan", "x"))

	err := RequireSelfOrAdmin(c, id.New(), "customer plan", "x")
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeNotFound, appErr.Code)
}
