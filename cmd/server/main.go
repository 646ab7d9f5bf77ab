// Package main is the entry point for the Planora API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"planora/internal/core/security"
	"planora/internal/domain/accounting"
	"planora/internal/domain/auth"
	"planora/internal/domain/collaborator"
	"planora/internal/domain/gateway"
	"planora/internal/domain/instance"
	"planora/internal/domain/plan"
	"planora/internal/domain/pricetable"
	"planora/internal/domain/ticket"
	"planora/internal/domain/user"
	"planora/internal/infrastructure/cache"
	v1 "planora/internal/infrastructure/http/v1"
	"planora/internal/infrastructure/numerator"
	"planora/internal/infrastructure/storage/postgres"
	"planora/internal/infrastructure/storage/postgres/auth_repo"
	"planora/internal/infrastructure/storage/postgres/tenant_repo"
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

	ctx := context.Background()
	log.Info("starting planora server")

	// --- Database ---
	dsn := mustEnv("DATABASE_URL")
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dsn))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Feature flags ---
	flags, err := security.NewCELFlags()
	if err != nil {
		log.Fatalw("failed to initialize feature flags", "error", err)
	}
	flagCache := cache.NewFlagCache(pool.Unwrap(), flags)
	if err := flagCache.Start(ctx); err != nil {
		log.Fatalw("failed to start feature flag cache", "error", err)
	}
	defer flagCache.Stop()

	// --- Repositories ---
	userRepo := auth_repo.NewUserRepo(txManager)
	tokenRepo := auth_repo.NewTokenRepo(txManager)
	gatewayRepo := tenant_repo.NewGatewayRepo(txManager)
	collaboratorRepo := tenant_repo.NewCollaboratorRepo(txManager)
	instanceRepo := tenant_repo.NewInstanceRepo(txManager)
	ticketRepo := tenant_repo.NewTicketRepo(txManager)
	accountingRepo := tenant_repo.NewAccountingRepo(txManager)
	priceTableRepo := tenant_repo.NewPriceTableRepo(txManager)
	planRepo := tenant_repo.NewPlanRepo(txManager)

	auditStore, err := postgres.NewAuditStore(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit store", "error", err)
	}

	// --- Services ---
	jwtSecret := mustEnv("JWT_SECRET")
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(jwtSecret))
	authService := auth.NewService(userRepo, tokenRepo, txManager, jwtService, auth.DefaultServiceConfig())

	numeratorService := numerator.New(pool.Unwrap())

	userService := user.NewService(userRepo, txManager, auditStore)
	gatewayService := gateway.NewService(gatewayRepo, txManager)
	collaboratorService := collaborator.NewService(collaboratorRepo, userRepo, txManager)
	instanceService := instance.NewService(instanceRepo, txManager)
	ticketService := ticket.NewService(ticketRepo, numeratorService, txManager)
	accountingService := accounting.NewService(accountingRepo, txManager)
	priceTableService := pricetable.NewService(priceTableRepo, planRepo, txManager)
	planService := plan.NewService(planRepo, priceTableRepo, userRepo, txManager, auditStore, flags)

	// --- Idempotency ---
	var idempotencyStore *postgres.IdempotencyStore
	if getEnv("IDEMPOTENCY_ENABLED", "true") == "true" {
		ttl := getEnvDuration("IDEMPOTENCY_TTL", 10*time.Minute)
		idempotencyStore = postgres.NewIdempotencyStore(pool, txManager, ttl)
	}

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:             pool,
		Logger:           log,
		Verifier:         authService,
		IdempotencyStore: idempotencyStore,

		AuthService:         authService,
		UserService:         userService,
		GatewayService:      gatewayService,
		CollaboratorService: collaboratorService,
		InstanceService:     instanceService,
		TicketService:       ticketService,
		AccountingService:   accountingService,
		PriceTableService:   priceTableService,
		PlanService:         planService,
	})

	// --- HTTP server ---
	port := getEnv("APP_PORT", "8080")
	server := &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infow("server starting", "port", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
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

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
