// Package main is the entry point for the Planora background worker.
// It runs the plan expiration sweeper and periodic storage cleanup.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"planora/internal/core/security"
	"planora/internal/domain/plan"
	"planora/internal/infrastructure/cache"
	"planora/internal/infrastructure/storage/postgres"
	"planora/internal/infrastructure/storage/postgres/auth_repo"
	"planora/internal/infrastructure/storage/postgres/tenant_repo"
	"planora/internal/worker"
	"planora/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	log.Info("starting planora worker")

	dsn := mustEnv("DATABASE_URL")
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dsn))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	txManager := postgres.NewTxManager(pool)

	// Feature flags gate the sweeper per tenant.
	flags, err := security.NewCELFlags()
	if err != nil {
		log.Fatalw("failed to initialize feature flags", "error", err)
	}
	flagCache := cache.NewFlagCache(pool.Unwrap(), flags)
	if err := flagCache.Start(ctx); err != nil {
		log.Fatalw("failed to start feature flag cache", "error", err)
	}
	defer flagCache.Stop()

	userRepo := auth_repo.NewUserRepo(txManager)
	tokenRepo := auth_repo.NewTokenRepo(txManager)
	priceTableRepo := tenant_repo.NewPriceTableRepo(txManager)
	planRepo := tenant_repo.NewPlanRepo(txManager)

	auditStore, err := postgres.NewAuditStore(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit store", "error", err)
	}

	planService := plan.NewService(planRepo, priceTableRepo, userRepo, txManager, auditStore, flags)

	expirerCfg := worker.DefaultExpirerConfig()
	expirerCfg.Interval = getEnvDuration("SWEEP_INTERVAL", expirerCfg.Interval)
	if batch := getEnvInt("SWEEP_BATCH_SIZE", expirerCfg.BatchSize); batch > 0 {
		expirerCfg.BatchSize = batch
	}
	expirer := worker.NewExpirer(planService, expirerCfg)

	idempotencyStore := postgres.NewIdempotencyStore(pool, txManager, getEnvDuration("IDEMPOTENCY_TTL", 10*time.Minute))

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = expirer.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		runCleanup(ctx, log, tokenRepo, idempotencyStore)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down worker...")
	cancel()

	wg.Wait()
	log.Info("worker stopped")
}

// runCleanup hourly removes expired refresh tokens and idempotency keys.
func runCleanup(ctx context.Context, log *logger.Logger, tokenRepo *auth_repo.TokenRepo, store *postgres.IdempotencyStore) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n, err := tokenRepo.CleanupExpiredTokens(ctx); err != nil {
				log.Errorw("refresh token cleanup failed", "error", err)
			} else if n > 0 {
				log.Infow("cleaned up expired refresh tokens", "count", n)
			}

			if n, err := store.CleanupExpired(ctx); err != nil {
				log.Errorw("idempotency cleanup failed", "error", err)
			} else if n > 0 {
				log.Infow("cleaned up idempotency keys", "count", n)
			}
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		fmt.Printf("required environment variable %s not set\n", key)
		os.Exit(1)
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var result int
		if _, err := fmt.Sscanf(value, "%d", &result); err == nil {
			return result
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
