// Package main is the entry point for the shopdesk API server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"shopdesk/internal/domain/auth"
	"shopdesk/internal/domain/billing"
	"shopdesk/internal/domain/catalogs/product"
	"shopdesk/internal/domain/reports"
	"shopdesk/internal/domain/sales"
	v1 "shopdesk/internal/infrastructure/http/v1"
	"shopdesk/internal/infrastructure/storage/postgres"
	"shopdesk/internal/infrastructure/storage/postgres/auth_repo"
	"shopdesk/internal/infrastructure/storage/postgres/billing_repo"
	"shopdesk/internal/infrastructure/storage/postgres/catalog_repo"
	"shopdesk/internal/infrastructure/storage/postgres/report_repo"
	"shopdesk/internal/infrastructure/storage/postgres/sales_repo"
	"shopdesk/pkg/logger"
)

func main() {
	// .env is optional; real deployments pass the environment directly
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       getEnv("LOG_LEVEL", "info"),
		Development: getEnv("APP_ENV", "development") == "development",
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting shopdesk server")

	// --- Database ---
	dsn := mustEnv("DATABASE_URL")
	pool, err := postgres.NewPool(ctx, postgres.DefaultPoolConfig(dsn))
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	txManager := postgres.NewTxManager(pool)

	// --- Repositories ---
	userRepo := auth_repo.NewUserRepo(txManager)
	planRepo := billing_repo.NewPlanRepo(txManager)
	subRepo := billing_repo.NewSubscriptionRepo(txManager)
	grantRepo := billing_repo.NewGrantRepo(txManager)
	workerPermRepo := billing_repo.NewWorkerPermissionRepo(txManager)
	saleRepo := sales_repo.NewSaleRepo(txManager)
	creditRepo := sales_repo.NewCreditRepo(txManager)
	productRepo := catalog_repo.NewProductRepo(txManager)
	reportRepo := report_repo.NewReportRepo(txManager)

	// --- Audit ---
	auditService, err := postgres.NewAuditService(txManager)
	if err != nil {
		log.Fatalw("failed to initialize audit service", "error", err)
	}
	defer auditService.Close()

	// --- JWT ---
	jwtSecret := mustEnv("JWT_SECRET")
	jwtService := auth.NewJWTService(auth.DefaultJWTConfig(jwtSecret))

	// --- Services ---
	authService := auth.NewService(userRepo, txManager, jwtService, auth.DefaultServiceConfig())

	billingService := billing.NewService(billing.ServiceConfig{
		Plans:       planRepo,
		Subs:        subRepo,
		Grants:      grantRepo,
		WorkerPerms: workerPermRepo,
		TxManager:   txManager,
		Auditor:     auditService,
	})

	resolver := billing.NewResolver(billing.NewRepositoryReader(subRepo, grantRepo, workerPermRepo))

	salesService := sales.NewService(saleRepo, creditRepo, txManager)
	productService := product.NewService(productRepo, txManager)
	reportsService := reports.NewService(reportRepo)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Pool:           pool,
		Logger:         log,
		JWTValidator:   jwtService,
		Resolver:       resolver,
		AuthService:    authService,
		BillingService: billingService,
		SalesService:   salesService,
		ProductService: productService,
		ReportsService: reportsService,
		CORSOrigins:    splitEnv("CORS_ORIGINS"),
	})

	// --- HTTP Server ---
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

	// Give outstanding requests 30 seconds to complete
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

func splitEnv(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
