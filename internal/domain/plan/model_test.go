package plan

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planora/internal/core/id"
	"planora/internal/domain/pricetable"
)

func newTestPlan() *Plan {
	p := NewPlan(id.New(), id.New(), pricetable.Plan3x)
	p.SetOwnerTenant(id.New())
	p.Amount = "99.99"
	return p
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to PayStatus
		want     bool
	}{
		{StatusPending, StatusPaid, true},
		{StatusPending, StatusFailed, true},
		{StatusPending, StatusExpired, false},
		{StatusPaid, StatusExpired, true},
		{StatusPaid, StatusPending, false},
		{StatusPaid, StatusFailed, false},
		{StatusFailed, StatusPaid, false},
		{StatusExpired, StatusPending, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestPlan_MarkPaid(t *testing.T) {
	p := newTestPlan()

	require.NoError(t, p.MarkPaid(time.Time{}, "tx-123"))
	assert.Equal(t, StatusPaid, p.PayStatus)
	require.NotNil(t, p.PayDate)
	assert.WithinDuration(t, time.Now(), *p.PayDate, time.Minute)
	assert.Equal(t, "tx-123", p.PayHash)

	// paid plans cannot be paid again
	assert.Error(t, p.MarkPaid(time.Now(), "tx-456"))
}

func TestPlan_MarkFailed(t *testing.T) {
	p := newTestPlan()

	require.NoError(t, p.MarkFailed())
	assert.Equal(t, StatusFailed, p.PayStatus)
	assert.Nil(t, p.PayDate)

	// failed is terminal for regular transitions
	assert.Error(t, p.MarkFailed())
	assert.Error(t, p.MarkExpired())
}

func TestPlan_MarkExpired(t *testing.T) {
	p := newTestPlan()

	// pending plans do not expire, they fail
	assert.Error(t, p.MarkExpired())

	require.NoError(t, p.MarkPaid(time.Now(), ""))
	require.NoError(t, p.MarkExpired())
	assert.Equal(t, StatusExpired, p.PayStatus)
	assert.False(t, p.IsActive)
}

func TestPlan_ForceStatus(t *testing.T) {
	p := newTestPlan()
	require.NoError(t, p.MarkFailed())

	// admin corrections permit backward transitions
	require.NoError(t, p.ForceStatus(StatusPending, nil))
	assert.Equal(t, StatusPending, p.PayStatus)

	require.NoError(t, p.ForceStatus(StatusPaid, nil))
	assert.Equal(t, StatusPaid, p.PayStatus)
	assert.NotNil(t, p.PayDate)

	// expired is always time-driven
	assert.Error(t, p.ForceStatus(StatusExpired, nil))
}

func TestPlan_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, newTestPlan().Validate(context.Background()))
	})

	t.Run("paid requires payDate", func(t *testing.T) {
		p := newTestPlan()
		p.PayStatus = StatusPaid
		assert.Error(t, p.Validate(context.Background()))
	})

	t.Run("amount must be decimal string", func(t *testing.T) {
		p := newTestPlan()
		p.Amount = "99,99"
		assert.Error(t, p.Validate(context.Background()))
	})

	t.Run("missing customer", func(t *testing.T) {
		p := newTestPlan()
		p.CustomerID = id.Nil()
		assert.Error(t, p.Validate(context.Background()))
	})

	t.Run("unknown plan type", func(t *testing.T) {
		p := newTestPlan()
		p.PlanType = "6x"
		assert.Error(t, p.Validate(context.Background()))
	})
}

func TestPlan_Retire(t *testing.T) {
	p := newTestPlan()
	require.NoError(t, p.MarkPaid(time.Now(), ""))

	p.Retire()
	assert.Equal(t, LifecycleRetired, p.Lifecycle)
	assert.False(t, p.IsActive)
	// payStatus is kept on soft delete
	assert.Equal(t, StatusPaid, p.PayStatus)
}

func TestPlan_OverdueChecks(t *testing.T) {
	now := time.Now()
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	p := newTestPlan()
	p.PayExpiration = &past
	assert.True(t, p.PaymentOverdue(now))
	assert.False(t, p.SubscriptionOverdue(now))

	p.PayExpiration = &future
	assert.False(t, p.PaymentOverdue(now))

	require.NoError(t, p.MarkPaid(now, ""))
	p.PlanExpirationDate = &past
	assert.True(t, p.SubscriptionOverdue(now))
	assert.False(t, p.PaymentOverdue(now))

	p.PlanExpirationDate = &future
	assert.False(t, p.SubscriptionOverdue(now))

	// no deadline set means never overdue
	p.PlanExpirationDate = nil
	assert.False(t, p.SubscriptionOverdue(now))
}
