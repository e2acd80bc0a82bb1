// Package v1 provides HTTP API version 1.
package v1

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	appctx "shopdesk/internal/core/context"
	"shopdesk/internal/core/security"
	"shopdesk/internal/domain/auth"
	"shopdesk/internal/domain/billing"
	"shopdesk/internal/domain/catalogs/product"
	"shopdesk/internal/domain/reports"
	"shopdesk/internal/domain/sales"
	"shopdesk/internal/infrastructure/http/v1/handlers"
	"shopdesk/internal/infrastructure/http/v1/middleware"
	"shopdesk/internal/infrastructure/storage/postgres"
	"shopdesk/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Pool is the database connection pool (for health checks)
	Pool *postgres.Pool

	// Logger for request logging
	Logger *logger.Logger

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// Resolver answers feature entitlement checks for shop routes
	Resolver *billing.Resolver

	AuthService    *auth.Service
	BillingService *billing.Service
	SalesService   *sales.Service
	ProductService *product.Service
	ReportsService *reports.Service

	// CORSOrigins lists allowed origins; empty allows all
	CORSOrigins []string
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.ErrorHandler())
	router.Use(corsMiddleware(cfg.CORSOrigins))

	// Health endpoints (no auth required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	base := handlers.NewBaseHandler()

	authHandler := handlers.NewAuthHandler(base, cfg.AuthService)
	billingHandler := handlers.NewBillingHandler(base, cfg.BillingService, cfg.AuthService)
	salesHandler := handlers.NewSalesHandler(base, cfg.SalesService)
	productHandler := handlers.NewProductHandler(base, cfg.ProductService)
	reportsHandler := handlers.NewReportsHandler(base, cfg.ReportsService)

	// API v1
	apiV1 := router.Group("/api/v1")
	{
		// Public auth endpoints
		public := apiV1.Group("/auth")
		{
			public.POST("/register", authHandler.Register)
			public.POST("/login", authHandler.Login)
		}

		// Everything below requires a valid JWT
		protected := apiV1.Group("")
		protected.Use(middleware.Auth(cfg.JWTValidator))

		protected.GET("/auth/me", authHandler.Me)

		registerConsoleRoutes(protected, billingHandler)
		registerShopRoutes(protected, cfg.Resolver, shopHandlers{
			auth:     authHandler,
			billing:  billingHandler,
			sales:    salesHandler,
			products: productHandler,
			reports:  reportsHandler,
		})
	}

	return router
}

func corsMiddleware(origins []string) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	if len(origins) > 0 {
		corsConfig.AllowOrigins = origins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization", "X-Request-ID")
	corsConfig.MaxAge = 12 * time.Hour
	return cors.New(corsConfig)
}

// registerConsoleRoutes registers the super-admin console: plan management,
// plan assignment and the subscription overview.
func registerConsoleRoutes(rg *gin.RouterGroup, billingHandler *handlers.BillingHandler) {
	console := rg.Group("/console")
	console.Use(middleware.RequireRole(appctx.RoleSuperAdmin))
	{
		console.POST("/plans", billingHandler.CreatePlan)
		console.GET("/plans", billingHandler.ListPlans)
		console.GET("/plans/:id", billingHandler.GetPlan)
		console.PUT("/plans/:id", billingHandler.UpdatePlan)
		console.DELETE("/plans/:id", billingHandler.DeletePlan)

		console.GET("/admins", billingHandler.ListAdmins)
		console.POST("/admins/:id/plan", billingHandler.AssignPlan)
		console.POST("/admins/:id/cancel", billingHandler.CancelSubscription)

		console.GET("/subscriptions", billingHandler.ListSubscriptions)
	}
}

type shopHandlers struct {
	auth     *handlers.AuthHandler
	billing  *handlers.BillingHandler
	sales    *handlers.SalesHandler
	products *handlers.ProductHandler
	reports  *handlers.ReportsHandler
}

// registerShopRoutes registers shop-level endpoints. Every route is gated on
// the entitlement resolver with the feature and action it exercises.
func registerShopRoutes(rg *gin.RouterGroup, resolver *billing.Resolver, h shopHandlers) {
	gate := func(feature security.Feature, action security.Action) gin.HandlerFunc {
		return middleware.RequireFeature(resolver, feature, action)
	}

	// Own subscription view (admins only)
	rg.GET("/subscription", middleware.RequireRole(appctx.RoleAdmin), h.billing.MySubscription)

	// Workers (admins manage their staff)
	workers := rg.Group("/workers")
	workers.Use(middleware.RequireRole(appctx.RoleAdmin))
	{
		workers.POST("", gate(security.FeatureWorkers, security.ActionCreate), h.auth.CreateWorker)
		workers.GET("", gate(security.FeatureWorkers, security.ActionView), h.auth.ListWorkers)
		workers.PUT("/:id/permissions", gate(security.FeatureWorkers, security.ActionEdit), h.billing.SetWorkerPermission)
		workers.DELETE("/:id/permissions/:feature", gate(security.FeatureWorkers, security.ActionEdit), h.billing.RevokeWorkerPermission)
	}

	// Sales
	salesGroup := rg.Group("/sales")
	{
		salesGroup.POST("", gate(security.FeatureSales, security.ActionCreate), h.sales.Checkout)
		salesGroup.GET("", gate(security.FeatureSales, security.ActionView), h.sales.ListSales)
		salesGroup.GET("/:id", gate(security.FeatureSales, security.ActionView), h.sales.GetSale)
		salesGroup.POST("/:id/payments", gate(security.FeatureSales, security.ActionEdit), h.sales.RecordPayment)
		salesGroup.POST("/:id/items/:itemId/return", gate(security.FeatureSales, security.ActionEdit), h.sales.ReturnLine)
		salesGroup.DELETE("/:id", gate(security.FeatureSales, security.ActionDelete), h.sales.DeleteSale)
	}

	// Cash credits
	credits := rg.Group("/credits")
	{
		credits.POST("", gate(security.FeatureCredits, security.ActionCreate), h.sales.OpenCredit)
		credits.GET("", gate(security.FeatureCredits, security.ActionView), h.sales.ListCredits)
		credits.POST("/:id/payments", gate(security.FeatureCredits, security.ActionEdit), h.sales.ReceiveCreditPayment)
	}

	// Product catalog
	products := rg.Group("/products")
	{
		products.POST("", gate(security.FeatureInventory, security.ActionCreate), h.products.Create)
		products.GET("", gate(security.FeatureInventory, security.ActionView), h.products.List)
		products.GET("/:id", gate(security.FeatureInventory, security.ActionView), h.products.Get)
		products.PUT("/:id", gate(security.FeatureInventory, security.ActionEdit), h.products.Update)
		products.POST("/:id/stock", gate(security.FeatureInventory, security.ActionEdit), h.products.AdjustStock)
		products.DELETE("/:id", gate(security.FeatureInventory, security.ActionDelete), h.products.Delete)
	}

	// Dashboard reports
	rg.GET("/reports/dashboard", gate(security.FeatureDashboard, security.ActionView), h.reports.Dashboard)
}
