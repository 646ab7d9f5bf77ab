// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"planora/internal/core/id"
	"planora/internal/core/role"
	"planora/internal/core/security"
	"planora/internal/infrastructure/storage/postgres"
	"planora/pkg/logger"
)

func main() {
	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dbURL))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if _, err := seedSuperAdmin(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed super-admin", "error", err)
	}

	if err := seedFeatureFlags(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed feature flags", "error", err)
	}

	if err := seedPriceTables(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed price tables", "error", err)
	}

	if os.Getenv("SEED_DEMO_DATA") == "true" {
		if err := seedDemoTenant(ctx, pool, log); err != nil {
			log.Fatalw("failed to seed demo tenant", "error", err)
		}
	}

	log.Info("seeding completed successfully")
}

func seedSuperAdmin(ctx context.Context, pool *postgres.Pool, log *logger.Logger) (id.ID, error) {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@planora.io"
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	var existingID id.ID
	err := pool.QueryRow(ctx,
		`SELECT id FROM users WHERE email = $1`,
		adminEmail,
	).Scan(&existingID)
	if err == nil {
		log.Infow("super-admin already exists", "email", adminEmail, "user_id", existingID)
		return existingID, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return id.Nil(), fmt.Errorf("check super-admin exists: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return id.Nil(), fmt.Errorf("hash password: %w", err)
	}

	userID := id.New()
	_, err = pool.Exec(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, entrepreneur_id, is_active, version)
		VALUES ($1, 'Platform Admin', $2, $3, $4, NULL, true, 1)
	`, userID, adminEmail, string(passwordHash), role.SuperAdmin)
	if err != nil {
		return id.Nil(), fmt.Errorf("insert super-admin: %w", err)
	}

	log.Infow("super-admin created", "email", adminEmail, "user_id", userID)
	return userID, nil
}

// seedFeatureFlags enables the platform flags the server and worker read on
// startup. The sweeper is a no-op for everyone until its flag exists.
func seedFeatureFlags(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	flags := []struct {
		name      string
		enabled   bool
		condition *string
	}{
		{security.FlagExpirationSweep, true, nil},
		{security.FlagAmountOverride, true, nil},
		{security.FlagPublicPriceCache, false, nil},
	}

	for _, f := range flags {
		_, err := pool.Exec(ctx, `
			INSERT INTO sys_feature_flags (name, is_enabled, condition)
			VALUES ($1, $2, $3)
			ON CONFLICT (name) DO NOTHING
		`, f.name, f.enabled, f.condition)
		if err != nil {
			return fmt.Errorf("seed flag %s: %w", f.name, err)
		}
	}

	// Wake up running flag caches.
	if _, err := pool.Exec(ctx, `NOTIFY feature_flags_changed`); err != nil {
		log.Warnw("failed to notify flag caches", "error", err)
	}

	log.Infow("feature flags seeded", "count", len(flags))
	return nil
}

func seedPriceTables(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	tables := []struct {
		name       string
		price3x    string
		price12x   string
		old3x      *string
		old12x     *string
		order      int
		advantages []string
	}{
		{
			name:       "Starter",
			price3x:    "49.90",
			price12x:   "39.90",
			order:      1,
			advantages: []string{"1 WhatsApp instance", "Email support"},
		},
		{
			name:       "Professional",
			price3x:    "99.90",
			price12x:   "79.90",
			old3x:      strPtr("129.90"),
			old12x:     strPtr("99.90"),
			order:      2,
			advantages: []string{"5 WhatsApp instances", "Collaborators", "Priority support"},
		},
		{
			name:       "Enterprise",
			price3x:    "199.90",
			price12x:   "159.90",
			order:      3,
			advantages: []string{"Unlimited instances", "Dedicated support", "Custom gateways"},
		},
	}

	for _, t := range tables {
		_, err := pool.Exec(ctx, `
			INSERT INTO price_tables (
				id, name, current_price_3x, old_price_3x,
				current_price_12x, old_price_12x,
				display_order, advantages, is_active, version
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, true, 1)
			ON CONFLICT (name) DO NOTHING
		`, id.New(), t.name, t.price3x, t.old3x, t.price12x, t.old12x, t.order, t.advantages)
		if err != nil {
			return fmt.Errorf("seed price table %s: %w", t.name, err)
		}
	}

	log.Infow("price tables seeded", "count", len(tables))
	return nil
}

// seedDemoTenant creates an entrepreneur with one customer under it, enough
// to exercise the tenant boundary locally.
func seedDemoTenant(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	demoPassword, err := bcrypt.GenerateFromPassword([]byte("Demo123!"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}

	entrepreneurID := id.New()
	tag, err := pool.Exec(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, entrepreneur_id, is_active, version)
		VALUES ($1, 'Demo Entrepreneur', 'owner@demo.planora.io', $2, $3, NULL, true, 1)
		ON CONFLICT (email) DO NOTHING
	`, entrepreneurID, string(demoPassword), role.Entrepreneur)
	if err != nil {
		return fmt.Errorf("seed demo entrepreneur: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if err := pool.QueryRow(ctx,
			`SELECT id FROM users WHERE email = 'owner@demo.planora.io'`,
		).Scan(&entrepreneurID); err != nil {
			return fmt.Errorf("fetch demo entrepreneur: %w", err)
		}
	}

	_, err = pool.Exec(ctx, `
		INSERT INTO users (id, name, email, password_hash, role, entrepreneur_id, is_active, version)
		VALUES ($1, 'Demo Customer', 'customer@demo.planora.io', $2, $3, $4, true, 1)
		ON CONFLICT (email) DO NOTHING
	`, id.New(), string(demoPassword), role.Customer, entrepreneurID)
	if err != nil {
		return fmt.Errorf("seed demo customer: %w", err)
	}

	log.Infow("demo tenant seeded", "entrepreneur_id", entrepreneurID)
	return nil
}

func strPtr(s string) *string { return &s }
