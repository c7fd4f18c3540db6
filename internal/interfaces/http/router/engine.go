package router

import (
	"net/http"
	"slices"

	"github.com/clubhouse/backend/internal/infrastructure/i18n"
	"github.com/clubhouse/backend/internal/infrastructure/logger"
	"github.com/clubhouse/backend/internal/infrastructure/telemetry"
	"github.com/clubhouse/backend/internal/interfaces/http/handler"
	"github.com/clubhouse/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StaticPublicPaths are reachable without signing in. Routes marked Public
// are added to them.
var StaticPublicPaths = []string{
	"/",
	"/login",
	"/signup",
	"/api/token",
	"/static/",
	"/health",
	"/set-language",
	"/metrics",
}

// Handlers groups the endpoint handlers served by the engine
type Handlers struct {
	Auth     *handler.AuthHandler
	Member   *handler.MemberHandler
	Settings *handler.SettingsHandler
	Tenant   *handler.TenantHandler
	Page     *handler.PageHandler
	System   *handler.SystemHandler
}

// EngineConfig holds everything the engine is assembled from
type EngineConfig struct {
	Logger        *zap.Logger
	Catalog       *i18n.Catalog
	Authenticator middleware.Authenticator
	CookieName    string
	DefaultTenant string

	// Metrics may be nil, which disables the metrics route and middleware
	Metrics     *telemetry.Metrics
	MetricsPath string
	Tracing     middleware.TracingConfig

	CORS           middleware.CORSConfig
	Security       middleware.SecurityConfig
	MaxBodySize    int64
	TrustedProxies []string

	// LoginLimiter throttles POST /login and POST /api/token per client IP;
	// nil disables throttling
	LoginLimiter *middleware.RateLimiter
	Static       http.FileSystem

	Handlers Handlers
}

// NewEngine builds the gin engine with the full middleware chain and routes
func NewEngine(cfg EngineConfig) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	metricsPath := cfg.MetricsPath
	if metricsPath == "" {
		metricsPath = "/metrics"
	}

	r := NewRouter(engine)
	for _, group := range Routes(cfg) {
		r.Register(group)
	}
	public := r.PublicPaths(slices.Concat(StaticPublicPaths, []string{metricsPath})...)

	engine.Use(logger.Recovery(log))
	engine.Use(middleware.RequestID(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Tracing(cfg.Tracing))
	engine.Use(middleware.SpanAttributes())
	if cfg.Metrics != nil {
		engine.Use(cfg.Metrics.Middleware())
	}
	engine.Use(middleware.SecureWithConfig(cfg.Security))
	engine.Use(middleware.CORSWithConfig(cfg.CORS))
	if cfg.MaxBodySize > 0 {
		engine.Use(middleware.BodyLimit(cfg.MaxBodySize))
	}
	engine.Use(middleware.Locale(cfg.Catalog))
	engine.Use(middleware.Auth(middleware.AuthConfig{
		Authenticator: cfg.Authenticator,
		Public:        public,
		CookieName:    cfg.CookieName,
		Logger:        log,
	}))
	engine.Use(middleware.Tenant(middleware.TenantConfig{
		Default: cfg.DefaultTenant,
		Public:  public,
		Logger:  log,
	}))

	r.Setup()

	if cfg.Static != nil {
		engine.StaticFS("/static", cfg.Static)
	}
	if cfg.Metrics != nil {
		engine.GET(metricsPath, cfg.Metrics.Handler())
	}
	return engine, nil
}

// Routes declares the route table
func Routes(cfg EngineConfig) []*DomainGroup {
	h := cfg.Handlers

	var loginLimit gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if cfg.LoginLimiter != nil {
		loginLimit = middleware.RateLimit(cfg.LoginLimiter, h.Auth.LoginThrottled)
	}

	pages := NewDomainGroup("pages", "")
	pages.GET("/", h.Page.Landing).Public()
	pages.GET("/home", h.Page.Home)
	pages.GET("/placeholder", h.Page.Placeholder)
	pages.POST("/set-language", h.Page.SetLanguage).Public()

	auth := NewDomainGroup("auth", "")
	auth.GET("/login", h.Auth.LoginPage).Public()
	auth.POST("/login", loginLimit, h.Auth.Login).Public()
	auth.GET("/logout", h.Auth.Logout).Public()
	auth.POST("/logout", h.Auth.Logout).Public()
	auth.POST("/signup", h.Auth.Signup).Public()

	members := NewDomainGroup("members", "/members")
	members.GET("", h.Member.List)
	members.GET("/create", h.Member.CreateForm)
	members.POST("/create", h.Member.Create)
	members.GET("/:id/edit", h.Member.EditForm)
	members.POST("/:id/edit", h.Member.Update)
	members.POST("/:id/delete", h.Member.Delete)

	settings := NewDomainGroup("settings", "/settings")
	settings.GET("", h.Settings.Show)
	settings.POST("/update-email", h.Settings.UpdateEmail)
	settings.POST("/change-password", h.Settings.ChangePassword)
	levels := settings.Group("levels", "/levels")
	levels.POST("/create", h.Settings.CreateLevel)
	levels.POST("/:id/edit", h.Settings.UpdateLevel)
	levels.POST("/:id/delete", h.Settings.DeleteLevel)
	locations := settings.Group("locations", "/locations")
	locations.POST("/create", h.Settings.CreateLocation)
	locations.POST("/:id/edit", h.Settings.UpdateLocation)
	locations.POST("/:id/delete", h.Settings.DeleteLocation)
	prices := settings.Group("prices", "/prices")
	prices.POST("/create", h.Settings.CreatePrice)
	prices.POST("/:id/edit", h.Settings.UpdatePrice)
	prices.POST("/:id/delete", h.Settings.DeletePrice)

	admin := NewDomainGroup("admin", "/admin")
	admin.POST("/tenants", h.Tenant.Create)

	api := NewDomainGroup("api", "/api")
	api.POST("/token", loginLimit, h.Auth.Token).Public()
	api.GET("/me", h.Auth.Me)
	api.GET("/info", h.System.Info)
	apiMembers := api.Group("members", "/members")
	apiMembers.GET("", h.Member.APIList)
	apiMembers.POST("", h.Member.APICreate)
	apiMembers.GET("/:id", h.Member.APIGet)
	apiMembers.PUT("/:id", h.Member.APIUpdate)
	apiMembers.DELETE("/:id", h.Member.APIDelete)
	apiMembers.GET("/:id/payments", h.Member.ListPayments)
	apiMembers.POST("/:id/payments", h.Member.RecordPayment)

	system := NewDomainGroup("system", "/health")
	system.GET("", h.System.Health).Public()
	system.GET("/ready", h.System.Ready).Public()

	return []*DomainGroup{pages, auth, members, settings, admin, api, system}
}
