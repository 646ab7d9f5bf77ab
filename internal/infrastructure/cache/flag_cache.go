// Package cache provides caching infrastructure with PostgreSQL
// LISTEN/NOTIFY invalidation.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"planora/internal/core/security"
	"planora/pkg/logger"
)

// FlagCache keeps the CEL flag evaluator in sync with the sys_feature_flags
// table. Flags load once at startup; NOTIFY on the feature_flags_changed
// channel triggers a full reload, so there is no TTL polling.
type FlagCache struct {
	pool  *pgxpool.Pool
	flags *security.CELFlags

	// Lifecycle
	lifecycleMu sync.Mutex
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
	started     bool
}

// NewFlagCache creates a flag cache feeding the given evaluator.
func NewFlagCache(pool *pgxpool.Pool, flags *security.CELFlags) *FlagCache {
	return &FlagCache{
		pool:  pool,
		flags: flags,
	}
}

// Start loads the initial flag set and begins listening for NOTIFY events.
func (c *FlagCache) Start(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	c.lifecycleMu.Lock()
	if c.started {
		c.lifecycleMu.Unlock()
		return nil
	}
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.started = true
	c.lifecycleMu.Unlock()

	if err := c.reload(c.ctx); err != nil {
		c.Stop()
		return fmt.Errorf("load feature flags: %w", err)
	}

	c.wg.Add(1)
	go c.listenLoop()
	logger.Info(c.ctx, "feature flag cache started")
	return nil
}

// Stop gracefully stops the cache listener.
func (c *FlagCache) Stop() {
	c.lifecycleMu.Lock()
	if !c.started {
		c.lifecycleMu.Unlock()
		return
	}
	cancel := c.cancel
	c.started = false
	c.cancel = nil
	c.lifecycleMu.Unlock()

	if cancel != nil {
		cancel()
	}
	c.wg.Wait()
	logger.Info(context.Background(), "feature flag cache stopped")
}

// listenLoop listens for PostgreSQL NOTIFY events.
func (c *FlagCache) listenLoop() {
	defer c.wg.Done()

	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		// Acquire dedicated connection for LISTEN
		conn, err := c.pool.Acquire(c.ctx)
		if err != nil {
			logger.Error(c.ctx, "failed to acquire connection for LISTEN", "error", err)
			time.Sleep(time.Second)
			continue
		}

		_, err = conn.Exec(c.ctx, "LISTEN feature_flags_changed;")
		if err != nil {
			logger.Error(c.ctx, "failed to LISTEN", "error", err)
			conn.Release()
			time.Sleep(time.Second)
			continue
		}

		logger.Info(c.ctx, "listening for feature_flags_changed notifications")

		c.waitForNotifications(conn)
		conn.Release()
	}
}

// waitForNotifications blocks waiting for NOTIFY events.
func (c *FlagCache) waitForNotifications(conn *pgxpool.Conn) {
	for {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		// Wait for notification with timeout for graceful shutdown
		ctx, cancel := context.WithTimeout(c.ctx, 30*time.Second)
		notification, err := conn.Conn().WaitForNotification(ctx)
		cancel()

		if err != nil {
			if c.ctx.Err() != nil {
				return // Shutting down
			}
			// Timeout is expected, continue listening
			continue
		}

		logger.Debug(c.ctx, "received notification",
			"channel", notification.Channel,
			"payload", notification.Payload)

		if err := c.reload(c.ctx); err != nil {
			logger.Error(c.ctx, "failed to reload feature flags", "error", err)
		}
	}
}

// reload reads the full flag set and swaps it into the evaluator. A row
// with an invalid condition poisons the whole reload; the previous flag
// set stays active in that case.
func (c *FlagCache) reload(ctx context.Context) error {
	rows, err := c.pool.Query(ctx, `
		SELECT name, is_enabled, COALESCE(condition, '')
		FROM sys_feature_flags
	`)
	if err != nil {
		return fmt.Errorf("query feature flags: %w", err)
	}
	defer rows.Close()

	var flags []security.Flag
	for rows.Next() {
		var f security.Flag
		if err := rows.Scan(&f.Name, &f.Enabled, &f.Condition); err != nil {
			return fmt.Errorf("scan feature flag: %w", err)
		}
		flags = append(flags, f)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("read feature flags: %w", err)
	}

	if err := c.flags.Replace(flags); err != nil {
		return err
	}

	logger.Debug(ctx, "feature flags reloaded", "count", len(flags))
	return nil
}
