// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"datacatalog/internal/domain/audit"
	"datacatalog/internal/domain/auth"
	"datacatalog/internal/domain/idempotency"
	"datacatalog/internal/domain/product"
	"datacatalog/internal/domain/users"
	"datacatalog/internal/infrastructure/http/v1/handlers"
	"datacatalog/internal/infrastructure/http/v1/middleware"
	"datacatalog/internal/infrastructure/metrics"
	"datacatalog/pkg/logger"
)

// RouterConfig holds router dependencies. Optional fields may be nil.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// Metrics enables request instrumentation and GET /metrics (optional)
	Metrics *metrics.Metrics

	// JWTValidator for token validation
	JWTValidator middleware.JWTValidator

	// Roles refreshes the role carried by a token
	Roles middleware.RoleSource

	AuthService    *auth.Service
	ProductService *product.Service
	AuditService   *audit.Service
	UserService    *users.Service

	// Google enables federated sign-in (optional)
	Google handlers.FederatedProvider

	// Idempotency backs X-Idempotency-Key on product writes (optional)
	Idempotency idempotency.Store

	// Database and Cache feed the health probes; Cache is optional
	Database handlers.Database
	Cache    handlers.Pinger
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace(cfg.Logger))
	router.Use(middleware.Logger(cfg.Logger))
	if cfg.Metrics != nil {
		router.Use(middleware.Metrics(cfg.Metrics))
		router.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}
	router.Use(middleware.ErrorHandler())

	if cfg.Database != nil {
		healthHandler := handlers.NewHealthHandler(cfg.Database, cfg.Cache)
		health := router.Group("/health")
		{
			health.GET("/live", healthHandler.Live)
			health.GET("/ready", healthHandler.Ready)
			health.GET("/info", healthHandler.Info)
		}
	}

	// Every API route resolves the caller when a token is present; the
	// services decide what an anonymous caller may do.
	api := router.Group("/api/v1")
	api.Use(middleware.OptionalAuth(cfg.JWTValidator, cfg.Roles))

	protected := api.Group("")
	protected.Use(middleware.RequireUser())

	base := handlers.NewBaseHandler()

	if cfg.AuthService != nil {
		handlers.NewAuthHandler(base, cfg.AuthService, cfg.Google).RegisterRoutes(api, protected)
	}

	if cfg.ProductService != nil {
		required := []gin.HandlerFunc{middleware.RequireUser()}
		if cfg.Idempotency != nil {
			required = append(required, middleware.Idempotency(cfg.Idempotency))
		}
		handlers.NewProductHandler(base, cfg.ProductService).RegisterRoutes(api, required...)
	}

	if cfg.AuditService != nil {
		protected.GET("/audit", handlers.NewAuditHandler(base, cfg.AuditService).List)
	}

	if cfg.UserService != nil {
		handlers.NewUserHandler(base, cfg.UserService).RegisterRoutes(api, protected)
	}

	return router
}
