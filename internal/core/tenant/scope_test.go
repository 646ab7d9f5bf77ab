package tenant

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planora/internal/core/apperror"
	appctx "planora/internal/core/context"
	"planora/internal/core/id"
	"planora/internal/core/role"
)

func TestScopeFor(t *testing.T) {
	entID := id.New()
	userID := id.New()

	tests := []struct {
		name      string
		ident     *appctx.Identity
		wantErr   string
		unbounded bool
		wantRoot  id.ID
	}{
		{
			name:      "super-admin is unbounded",
			ident:     &appctx.Identity{UserID: userID, Role: role.SuperAdmin},
			unbounded: true,
		},
		{
			name:     "entrepreneur roots own tenant",
			ident:    &appctx.Identity{UserID: userID, Role: role.Entrepreneur},
			wantRoot: userID,
		},
		{
			name:     "collaborator uses entrepreneur claim",
			ident:    &appctx.Identity{UserID: userID, Role: role.Collaborator, EntrepreneurID: &entID},
			wantRoot: entID,
		},
		{
			name:     "customer uses entrepreneur claim",
			ident:    &appctx.Identity{UserID: userID, Role: role.Customer, EntrepreneurID: &entID},
			wantRoot: entID,
		},
		{
			name:    "collaborator without claim is rejected",
			ident:   &appctx.Identity{UserID: userID, Role: role.Collaborator},
			wantErr: apperror.CodeForbidden,
		},
		{
			name:    "nil identity is rejected",
			ident:   nil,
			wantErr: apperror.CodeUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scope, err := ScopeFor(tt.ident)
			if tt.wantErr != "" {
				appErr, ok := apperror.AsAppError(err)
				require.True(t, ok)
				assert.Equal(t, tt.wantErr, appErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.unbounded, scope.Unbounded)
			if !tt.unbounded {
				assert.Equal(t, tt.wantRoot, scope.EntrepreneurID)
			}
		})
	}
}

func TestScopeAllows(t *testing.T) {
	own := id.New()
	other := id.New()

	bounded := Scope{EntrepreneurID: own}
	assert.True(t, bounded.Allows(own))
	assert.False(t, bounded.Allows(other))

	unbounded := Scope{Unbounded: true}
	assert.True(t, unbounded.Allows(own))
	assert.True(t, unbounded.Allows(other))
}

func TestScopeNarrow(t *testing.T) {
	own := id.New()
	other := id.New()

	t.Run("nil filter keeps scope", func(t *testing.T) {
		s, ok := Scope{EntrepreneurID: own}.Narrow(nil)
		assert.True(t, ok)
		assert.Equal(t, own, s.EntrepreneurID)
	})

	t.Run("unbounded scope adopts filter", func(t *testing.T) {
		s, ok := Scope{Unbounded: true}.Narrow(&other)
		assert.True(t, ok)
		assert.False(t, s.Unbounded)
		assert.Equal(t, other, s.EntrepreneurID)
	})

	t.Run("matching filter is a no-op", func(t *testing.T) {
		s, ok := Scope{EntrepreneurID: own}.Narrow(&own)
		assert.True(t, ok)
		assert.Equal(t, own, s.EntrepreneurID)
	})

	t.Run("foreign filter cannot widen bounded scope", func(t *testing.T) {
		_, ok := Scope{EntrepreneurID: own}.Narrow(&other)
		assert.False(t, ok)
	})
}
