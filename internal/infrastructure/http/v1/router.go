// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"planora/internal/core/role"
	"planora/internal/domain/accounting"
	"planora/internal/domain/auth"
	"planora/internal/domain/collaborator"
	"planora/internal/domain/gateway"
	"planora/internal/domain/instance"
	"planora/internal/domain/plan"
	"planora/internal/domain/pricetable"
	"planora/internal/domain/ticket"
	"planora/internal/domain/user"
	"planora/internal/infrastructure/http/v1/handlers"
	"planora/internal/infrastructure/http/v1/middleware"
	"planora/internal/infrastructure/storage/postgres"
	"planora/pkg/logger"
)

// RouterConfig holds the wired services the HTTP surface exposes.
type RouterConfig struct {
	// Pool is the database connection (health checks).
	Pool *postgres.Pool

	// Logger for request logging
	Logger *logger.Logger

	// Verifier validates bearer tokens for the auth middleware.
	Verifier middleware.TokenVerifier

	// IdempotencyStore enables idempotent mutations when non-nil.
	IdempotencyStore *postgres.IdempotencyStore

	AuthService         *auth.Service
	UserService         *user.Service
	GatewayService      *gateway.Service
	CollaboratorService *collaborator.Service
	InstanceService     *instance.Service
	TicketService       *ticket.Service
	AccountingService   *accounting.Service
	PriceTableService   *pricetable.Service
	PlanService         *plan.Service
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

	base := handlers.NewBaseHandler()

	// Health endpoints (no auth)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	api := router.Group("/api/v1")

	registerPublicRoutes(api, base, cfg)

	protected := api.Group("")
	protected.Use(middleware.Auth(cfg.Verifier))
	if cfg.IdempotencyStore != nil {
		protected.Use(middleware.Idempotency(cfg.IdempotencyStore))
	}

	registerAuthRoutes(protected, base, cfg)
	registerResourceRoutes(protected, base, cfg)
	registerPlanRoutes(protected, base, cfg)
	registerAdminRoutes(protected, base, cfg)

	return router
}

// registerPublicRoutes registers endpoints that require no bearer token:
// signup/login/refresh, the price table showcase, and the payment gateway
// callback (authenticated by pay hash).
func registerPublicRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	authHandler := handlers.NewAuthHandler(base, cfg.AuthService)
	authGroup := rg.Group("/auth")
	{
		authGroup.POST("/signup", authHandler.Signup)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
	}

	tableHandler := handlers.NewPriceTableHandler(base, cfg.PriceTableService)
	tables := rg.Group("/price-tables")
	{
		tables.GET("", tableHandler.ListPublic)
		tables.GET("/:id", tableHandler.GetPublic)
	}

	planHandler := handlers.NewPlanHandler(base, cfg.PlanService)
	rg.POST("/customer-plans/gateway-callback", planHandler.GatewayCallback)
}

// registerAuthRoutes registers session endpoints that require a valid token.
func registerAuthRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	authHandler := handlers.NewAuthHandler(base, cfg.AuthService)
	authGroup := rg.Group("/auth")
	{
		authGroup.GET("/me", authHandler.Me)
		authGroup.GET("/verify", authHandler.Me)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.POST("/logout-all", authHandler.LogoutAll)
		authGroup.POST("/change-password", authHandler.ChangePassword)
	}
}

// registerResourceRoutes registers the tenant-scoped resources. Row-level
// tenancy is enforced in the repositories; guards here gate by role only.
func registerResourceRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	manage := middleware.RequireRole(role.SuperAdmin, role.Entrepreneur)
	staff := middleware.RequireRole(role.SuperAdmin, role.Entrepreneur, role.Collaborator)

	users := rg.Group("/users")
	users.Use(manage)
	RegisterResourceRoutes(users, handlers.NewUserHandler(base, cfg.UserService))

	gateways := rg.Group("/payment-gateways")
	gateways.Use(manage)
	RegisterResourceRoutes(gateways, handlers.NewGatewayHandler(base, cfg.GatewayService))

	collaborators := rg.Group("/collaborators")
	collaborators.Use(manage)
	RegisterResourceRoutes(collaborators, handlers.NewCollaboratorHandler(base, cfg.CollaboratorService))

	instanceHandler := handlers.NewInstanceHandler(base, cfg.InstanceService)
	instances := rg.Group("/whatsapp-instances")
	instances.Use(staff)
	RegisterResourceRoutes(instances, instanceHandler)
	instances.POST("/:id/status", instanceHandler.SetStatus)

	// Tickets are open to every role; customers file them for themselves.
	ticketHandler := handlers.NewTicketHandler(base, cfg.TicketService)
	tickets := rg.Group("/tickets")
	RegisterResourceRoutes(tickets, ticketHandler)
	tickets.POST("/:id/assign", staff, ticketHandler.Assign)
	tickets.POST("/:id/resolve", staff, ticketHandler.Resolve)

	accountingHandler := handlers.NewAccountingHandler(base, cfg.AccountingService)
	entries := rg.Group("/accounting")
	entries.Use(manage)
	RegisterResourceRoutes(entries, accountingHandler)
	entries.GET("/summary", accountingHandler.Summary)
}

// registerPlanRoutes registers the plan lifecycle endpoints. Visibility is
// derived from the caller identity in the service.
func registerPlanRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	manage := middleware.RequireRole(role.SuperAdmin, role.Entrepreneur)
	admin := middleware.RequireRole(role.SuperAdmin)

	planHandler := handlers.NewPlanHandler(base, cfg.PlanService)
	plans := rg.Group("/customer-plans")
	{
		plans.GET("", planHandler.List)
		plans.GET("/:id", planHandler.Get)
		plans.POST("", manage, planHandler.Create)
		plans.PUT("/:id", planHandler.Update)
		plans.DELETE("/:id", planHandler.Retire)

		// Manual payment edits mirror the service rule: only super-admins
		// see and correct other people's plans.
		plans.POST("/:id/pay", admin, planHandler.MarkPaid)
		plans.POST("/:id/fail", admin, planHandler.MarkFailed)
		plans.POST("/:id/correct-status", admin, planHandler.CorrectStatus)
		plans.DELETE("/:id/purge", admin, planHandler.Purge)
	}
}

// registerAdminRoutes registers the super-admin management surface.
// Price table mutations live on the same path as the public showcase; the
// /admin listing additionally shows inactive tables.
func registerAdminRoutes(rg *gin.RouterGroup, base *handlers.BaseHandler, cfg RouterConfig) {
	admin := middleware.RequireRole(role.SuperAdmin)
	tableHandler := handlers.NewPriceTableHandler(base, cfg.PriceTableService)

	tables := rg.Group("/price-tables")
	tables.Use(admin)
	{
		tables.POST("", tableHandler.Create)
		tables.PUT("/:id", tableHandler.Update)
		tables.DELETE("/:id", tableHandler.Delete)
	}

	back := rg.Group("/admin/price-tables")
	back.Use(admin)
	{
		back.GET("", tableHandler.ListAll)
		back.GET("/:id", tableHandler.Get)
	}
}
