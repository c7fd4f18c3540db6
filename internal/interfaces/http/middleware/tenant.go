package middleware

import (
	"errors"
	"net/http"

	"github.com/clubhouse/backend/internal/domain/tenant"
	"github.com/clubhouse/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Tenant context keys and request hints
const (
	TenantKey         = "tenant"
	TenantHeader      = "X-Tenant"
	TenantQueryParam  = "tenant"
	invalidTenantBody = "Invalid tenant identifier"
)

// TenantConfig holds configuration for the tenant middleware
type TenantConfig struct {
	// Default is used when the request carries no hint; empty means none
	Default string
	Public  PublicPaths
	Logger  *zap.Logger
}

// Tenant resolves the request's tenant schema.
// Priority: token claim > X-Tenant header > tenant query parameter > default.
// A malformed hint is rejected with 400 before anything touches the database;
// on public paths it is ignored and the request stays tenant-less.
func Tenant(cfg TenantConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		sources := tenant.Sources{
			Header:  c.GetHeader(TenantHeader),
			Query:   c.Query(TenantQueryParam),
			Default: cfg.Default,
		}
		if claims := GetClaims(c); claims != nil {
			sources.Claim = claims.TenantSchema
		}

		id, err := tenant.Resolve(sources)
		if err != nil {
			if errors.Is(err, tenant.ErrInvalidTenantIdentifier) && cfg.Public.Match(c.Request.URL.Path) {
				c.Next()
				return
			}
			if cfg.Logger != nil {
				cfg.Logger.Warn("Rejected tenant hint", zap.Error(err), zap.String("path", c.Request.URL.Path))
			}
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"detail": invalidTenantBody, "code": "INVALID_TENANT"})
			return
		}
		if id == nil {
			c.Next()
			return
		}

		c.Set(TenantKey, *id)
		ctx := c.Request.Context()
		ctx, _ = logger.WithTenant(ctx, logger.FromContext(ctx), id.String())
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// GetTenant returns the resolved tenant, if any
func GetTenant(c *gin.Context) (tenant.ID, bool) {
	if v, ok := c.Get(TenantKey); ok {
		if id, ok := v.(tenant.ID); ok {
			return id, true
		}
	}
	return "", false
}
