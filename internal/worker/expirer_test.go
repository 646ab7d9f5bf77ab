package worker

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"planora/internal/domain/plan"
)

type countingSweeper struct {
	calls     atomic.Int32
	lastBatch atomic.Int32
}

func (s *countingSweeper) ExpireSweep(_ context.Context, _ time.Time, batchSize int) (plan.SweepResult, error) {
	s.calls.Add(1)
	s.lastBatch.Store(int32(batchSize))
	return plan.SweepResult{}, nil
}

func TestExpirer_SweepsImmediatelyThenOnTicks(t *testing.T) {
	sweeper := &countingSweeper{}
	exp := NewExpirer(sweeper, ExpirerConfig{
		Interval:  10 * time.Millisecond,
		BatchSize: 25,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	err := exp.Run(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)

	// immediate pass plus at least one tick
	assert.GreaterOrEqual(t, sweeper.calls.Load(), int32(2))
	assert.Equal(t, int32(25), sweeper.lastBatch.Load())
}

func TestExpirer_StopsOnCancel(t *testing.T) {
	sweeper := &countingSweeper{}
	exp := NewExpirer(sweeper, ExpirerConfig{Interval: time.Hour})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- exp.Run(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on cancel")
	}

	assert.Equal(t, int32(1), sweeper.calls.Load())
}

func TestNewExpirer_Defaults(t *testing.T) {
	exp := NewExpirer(&countingSweeper{}, ExpirerConfig{})
	assert.Equal(t, time.Minute, exp.config.Interval)
	assert.Equal(t, 500, exp.config.BatchSize)
}
