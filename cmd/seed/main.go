// Package main provides a CLI tool for seeding the database with initial data.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	appctx "shopdesk/internal/core/context"
	"shopdesk/internal/core/id"
	"shopdesk/internal/core/security"
	"shopdesk/internal/core/types"
	"shopdesk/internal/domain/billing"
	"shopdesk/internal/infrastructure/storage/postgres"
	"shopdesk/pkg/logger"
)

func main() {
	_ = godotenv.Load()

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

	if err := seedSuperAdmin(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed super admin", "error", err)
	}

	if err := seedPlans(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed plans", "error", err)
	}

	log.Info("seeding completed successfully")
}

func seedSuperAdmin(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	email := os.Getenv("SUPER_ADMIN_EMAIL")
	if email == "" {
		email = "root@shopdesk.io"
	}

	password := os.Getenv("SUPER_ADMIN_PASSWORD")
	if password == "" {
		password = "ChangeMe123!"
	}

	var existingID id.ID
	err := pool.Pool.QueryRow(ctx,
		`SELECT id FROM users WHERE email = $1 AND deleted_at IS NULL`,
		email,
	).Scan(&existingID)
	if err == nil {
		log.Infow("super admin already exists", "email", email, "user_id", existingID)
		return nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check super admin exists: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	userID := id.New()
	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO users (
			id, email, password_hash, name, role,
			is_active, failed_login_attempts, created_at, updated_at, version
		)
		VALUES ($1, $2, $3, 'Platform Root', $4, true, 0, now(), now(), 1)
	`, userID, email, string(passwordHash), appctx.RoleSuperAdmin)
	if err != nil {
		return fmt.Errorf("insert super admin: %w", err)
	}

	log.Infow("super admin created", "email", email, "user_id", userID)
	return nil
}

func seedPlans(ctx context.Context, pool *postgres.Pool, log *logger.Logger) error {
	type planSeed struct {
		name         string
		code         string
		description  string
		monthly      string
		yearly       string
		durationDays int
		isLifetime   bool
		features     billing.FeatureMatrix
	}

	full := security.FullAccess()
	view := security.ViewOnly()

	plans := []planSeed{
		{
			name:         "Starter",
			code:         "starter",
			description:  "Sales and dashboard for a single shop",
			monthly:      "9.99",
			yearly:       "99.00",
			durationDays: 30,
			features: billing.FeatureMatrix{
				security.FeatureDashboard: view,
				security.FeatureSales:     full,
				security.FeatureInventory: view,
			},
		},
		{
			name:         "Standard",
			code:         "standard",
			description:  "Everything in Starter plus inventory, credits and reports",
			monthly:      "24.99",
			yearly:       "249.00",
			durationDays: 30,
			features: billing.FeatureMatrix{
				security.FeatureDashboard: full,
				security.FeatureSales:     full,
				security.FeatureInventory: full,
				security.FeatureCredits:   full,
				security.FeatureReports:   view,
			},
		},
		{
			name:        "Premium",
			code:        "premium",
			description: "All features, lifetime access",
			monthly:     "49.99",
			yearly:      "499.00",
			isLifetime:  true,
			features: func() billing.FeatureMatrix {
				m := make(billing.FeatureMatrix)
				for _, f := range security.AllFeatures() {
					m[f] = full
				}
				return m
			}(),
		},
	}

	for _, p := range plans {
		monthly, err := types.NewMoneyFromString(p.monthly)
		if err != nil {
			return fmt.Errorf("parse monthly price for %s: %w", p.code, err)
		}
		yearly, err := types.NewMoneyFromString(p.yearly)
		if err != nil {
			return fmt.Errorf("parse yearly price for %s: %w", p.code, err)
		}

		featuresJSON, err := json.Marshal(p.features)
		if err != nil {
			return fmt.Errorf("marshal features for %s: %w", p.code, err)
		}

		planID := id.New()
		commandTag, err := pool.Pool.Exec(ctx, `
			INSERT INTO plans (
				id, name, code, description, monthly_price, yearly_price,
				duration_days, is_lifetime, features, deletion_mark,
				version, created_at, updated_at
			)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, false, 1, now(), now())
			ON CONFLICT (code) WHERE deletion_mark = FALSE DO NOTHING
		`, planID, p.name, p.code, p.description, monthly, yearly,
			p.durationDays, p.isLifetime, featuresJSON)
		if err != nil {
			log.Warnw("failed to seed plan", "code", p.code, "error", err)
			continue
		}

		if commandTag.RowsAffected() == 0 {
			log.Infow("plan already exists", "code", p.code)
			continue
		}

		log.Infow("plan created", "code", p.code, "plan_id", planID)
	}

	return nil
}
