package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/clubhouse/backend/internal/infrastructure/logger"
	"github.com/clubhouse/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// readyTimeout bounds the database ping of the readiness probe
const readyTimeout = 2 * time.Second

// Pinger checks that a dependency answers. *persistence.Database satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SystemHandler serves health probes and build information
type SystemHandler struct {
	BaseHandler
	name      string
	version   string
	dialect   string
	db        Pinger
	cache     Pinger
	startTime time.Time
}

// SystemHandlerConfig holds what the probes report on
type SystemHandlerConfig struct {
	Name    string
	Version string
	Dialect string
	DB      Pinger
	// Cache may be nil when token revocation is kept in memory
	Cache Pinger
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(cfg SystemHandlerConfig) *SystemHandler {
	return &SystemHandler{
		name:      cfg.Name,
		version:   cfg.Version,
		dialect:   cfg.Dialect,
		db:        cfg.DB,
		cache:     cfg.Cache,
		startTime: time.Now(),
	}
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// Health is the liveness probe
func (h *SystemHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, dto.HealthResponse{Status: "healthy"})
}

// Ready pings the database, and Redis when configured
func (h *SystemHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
	defer cancel()

	resp := dto.HealthResponse{Status: "healthy", Dialect: h.dialect, Checks: map[string]string{}}
	status := http.StatusOK

	check := func(name string, p Pinger) string {
		if err := p.Ping(ctx); err != nil {
			logger.L(ctx).Warn("Readiness check failed", zap.String("dependency", name), zap.Error(err))
			status = http.StatusServiceUnavailable
			resp.Status = "unhealthy"
			return "unavailable"
		}
		return "ok"
	}

	if h.db != nil {
		resp.Database = check("database", h.db)
		resp.Checks["database"] = resp.Database
	}
	if h.cache != nil {
		resp.Checks["redis"] = check("redis", h.cache)
	}
	c.JSON(status, resp)
}

// Info returns name, version and uptime
func (h *SystemHandler) Info(c *gin.Context) {
	c.JSON(http.StatusOK, SystemInfoResponse{
		Name:      h.name,
		Version:   h.version,
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}
