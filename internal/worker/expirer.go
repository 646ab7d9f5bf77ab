// Package worker provides the background expiration sweeper. It drives the
// time-based plan transitions the request path cannot: paid subscriptions
// running out and pending payments missing their deadline.
package worker

import (
	"context"
	"time"

	"planora/internal/domain/plan"
	"planora/pkg/logger"
)

// Sweeper is the minimal plan-service surface the expirer needs.
type Sweeper interface {
	ExpireSweep(ctx context.Context, now time.Time, batchSize int) (plan.SweepResult, error)
}

// ExpirerConfig configures the expiration loop.
type ExpirerConfig struct {
	// Interval between sweep passes
	Interval time.Duration

	// BatchSize caps plans processed per pass
	BatchSize int
}

// DefaultExpirerConfig returns production defaults.
func DefaultExpirerConfig() ExpirerConfig {
	return ExpirerConfig{
		Interval:  time.Minute,
		BatchSize: 500,
	}
}

// Expirer periodically re-evaluates plan deadlines against the clock.
type Expirer struct {
	sweeper Sweeper
	config  ExpirerConfig

	// now is swappable for tests
	now func() time.Time
}

// NewExpirer creates an expiration worker.
func NewExpirer(sweeper Sweeper, config ExpirerConfig) *Expirer {
	if config.Interval <= 0 {
		config.Interval = DefaultExpirerConfig().Interval
	}
	if config.BatchSize <= 0 {
		config.BatchSize = DefaultExpirerConfig().BatchSize
	}
	return &Expirer{
		sweeper: sweeper,
		config:  config,
		now:     time.Now,
	}
}

// Run sweeps until ctx is cancelled. An immediate pass happens on start so
// restarts do not delay overdue transitions by a full interval.
func (e *Expirer) Run(ctx context.Context) error {
	logger.Info(ctx, "expiration worker started",
		"interval", e.config.Interval,
		"batch_size", e.config.BatchSize)

	e.sweep(ctx)

	ticker := time.NewTicker(e.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "expiration worker stopped")
			return ctx.Err()
		case <-ticker.C:
			e.sweep(ctx)
		}
	}
}

func (e *Expirer) sweep(ctx context.Context) {
	if _, err := e.sweeper.ExpireSweep(ctx, e.now(), e.config.BatchSize); err != nil {
		logger.Error(ctx, "expiration sweep failed", "error", err)
	}
}
