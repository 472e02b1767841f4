package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"datacatalog/internal/infrastructure/storage/postgres"
)

// Version is set at build time with -ldflags.
var Version = "dev"

// Database is the part of the pool the probes need.
type Database interface {
	Ping(ctx context.Context) error
	Stats() postgres.PoolStats
}

// Pinger is an optional dependency checked by readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler provides health check endpoints.
type HealthHandler struct {
	db    Database
	cache Pinger
}

// NewHealthHandler creates a new health handler. cache may be nil.
func NewHealthHandler(db Database, cache Pinger) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// Live handles liveness probe (is the process alive?).
// GET /health/live
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready handles readiness probe. The cache is reported but never fails readiness
// because the service works without it.
// GET /health/ready
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{}
	status := http.StatusOK

	if err := h.db.Ping(ctx); err != nil {
		checks["database"] = "unhealthy: " + err.Error()
		status = http.StatusServiceUnavailable
	} else {
		checks["database"] = "healthy"
	}

	if h.cache != nil {
		if err := h.cache.Ping(ctx); err != nil {
			checks["cache"] = "degraded: " + err.Error()
		} else {
			checks["cache"] = "healthy"
		}
	}

	body := gin.H{"status": "ok", "checks": checks}
	if status != http.StatusOK {
		body["status"] = "error"
	}
	c.JSON(status, body)
}

// Info returns application information.
// GET /health/info
func (h *HealthHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"app":      "datacatalog",
		"version":  Version,
		"database": h.db.Stats(),
	})
}
