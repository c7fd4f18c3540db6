// Command server runs the club membership web application: server-rendered
// pages for browsers and a JSON API, over one PostgreSQL schema per tenant.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	identityapp "github.com/clubhouse/backend/internal/application/identity"
	membershipapp "github.com/clubhouse/backend/internal/application/membership"
	"github.com/clubhouse/backend/internal/infrastructure/auth"
	"github.com/clubhouse/backend/internal/infrastructure/config"
	"github.com/clubhouse/backend/internal/infrastructure/i18n"
	"github.com/clubhouse/backend/internal/infrastructure/logger"
	"github.com/clubhouse/backend/internal/infrastructure/migration"
	"github.com/clubhouse/backend/internal/infrastructure/persistence"
	"github.com/clubhouse/backend/internal/infrastructure/telemetry"
	"github.com/clubhouse/backend/internal/interfaces/http/handler"
	"github.com/clubhouse/backend/internal/interfaces/http/middleware"
	"github.com/clubhouse/backend/internal/interfaces/http/router"
	"github.com/clubhouse/backend/internal/interfaces/http/view"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}

	log, err := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("Starting clubhouse",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	tracer, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		ServiceVersion:    version,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		return fmt.Errorf("initialize tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracer.Shutdown(shutdownCtx); err != nil {
			log.Error("Error shutting down tracer", zap.Error(err))
		}
	}()

	db, err := persistence.NewDatabase(ctx, &cfg.Database, log, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected",
		zap.String("dialect", cfg.Database.Dialect()),
		zap.String("url", cfg.Database.Redacted()),
	)
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := telemetry.RegisterDBTracing(db.DB, false); err != nil {
			return fmt.Errorf("register database tracing: %w", err)
		}
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		return fmt.Errorf("get underlying sql.DB: %w", err)
	}
	plan, err := migration.Embedded()
	if err != nil {
		return err
	}
	runner := migration.NewRunner(sqlDB, plan, log)

	metrics := telemetry.NewMetrics()

	// Repositories
	sessions := persistence.NewSessionFactory(db.DB, persistence.NewSchemaManager(db.DB))
	userRepo := persistence.NewGormUserRepository(db.DB)
	memberRepo := persistence.NewGormMemberRepository(sessions)
	levelRepo := persistence.NewGormLevelRepository(sessions)
	locationRepo := persistence.NewGormLocationRepository(sessions)
	priceRepo := persistence.NewGormPriceRepository(sessions)
	paymentRepo := persistence.NewGormPaymentRepository(sessions)

	// Token revocation lives in Redis when enabled so logouts survive restarts
	var blacklist auth.TokenBlacklist
	var cachePinger handler.Pinger
	if cfg.Redis.Enabled {
		redisBlacklist, err := auth.NewRedisTokenBlacklist(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		defer func() {
			_ = redisBlacklist.Close()
		}()
		blacklist = redisBlacklist
		cachePinger = redisBlacklist
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
	}

	jwtService, err := auth.NewJWTService(cfg.JWT)
	if err != nil {
		return fmt.Errorf("initialize JWT service: %w", err)
	}

	// Application services
	tenantService := identityapp.NewTenantService(userRepo, runner, metrics, log)
	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, identityapp.NewAdminPolicy(cfg.Auth.AdminUsers), log)
	userService := identityapp.NewUserService(userRepo, tenantService, log)
	memberService := membershipapp.NewMemberService(memberRepo, levelRepo, locationRepo, sessions, log)
	settingsService := membershipapp.NewSettingsService(levelRepo, locationRepo, priceRepo, sessions, log)
	paymentService := membershipapp.NewPaymentService(memberRepo, priceRepo, paymentRepo, sessions, log)

	if err := bootstrap(ctx, cfg, runner, tenantService, log); err != nil {
		return err
	}

	if err := middleware.SetupValidator(); err != nil {
		return fmt.Errorf("register validators: %w", err)
	}
	catalog, err := i18n.Embedded()
	if err != nil {
		return err
	}
	renderer, err := view.New(view.WithTemplatesDir(cfg.HTTP.TemplatesDir))
	if err != nil {
		return fmt.Errorf("load templates: %w", err)
	}
	base := handler.NewBaseHandler(renderer)

	var engineMetrics *telemetry.Metrics
	if cfg.Metrics.Enabled {
		engineMetrics = metrics
	}
	engine, err := router.NewEngine(router.EngineConfig{
		Logger:        log,
		Catalog:       catalog,
		Authenticator: authService,
		CookieName:    cfg.Cookie.Name,
		DefaultTenant: cfg.Tenant.DefaultSchema,
		Metrics:       engineMetrics,
		MetricsPath:   cfg.Metrics.Path,
		Tracing: middleware.TracingConfig{
			ServiceName: cfg.Telemetry.ServiceName,
			Enabled:     cfg.Telemetry.Enabled,
		},
		CORS:           corsConfig(cfg.HTTP),
		Security:       securityConfig(cfg),
		MaxBodySize:    cfg.HTTP.MaxBodySize,
		TrustedProxies: cfg.HTTP.TrustedProxies,
		LoginLimiter:   middleware.NewRateLimiter(cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateBurst),
		Static:         view.Static(cfg.HTTP.StaticDir),
		Handlers: router.Handlers{
			Auth: handler.NewAuthHandler(base, authService, userService, handler.AuthHandlerConfig{
				Cookie:       cfg.Cookie,
				TokenTTL:     jwtService.Expiration(),
				SignupSchema: cfg.Auth.DefaultSignupSchema,
				Observer:     metrics,
			}),
			Member:   handler.NewMemberHandler(base, memberService, settingsService, paymentService),
			Settings: handler.NewSettingsHandler(base, settingsService, authService, userService),
			Tenant:   handler.NewTenantHandler(base, authService, tenantService),
			Page:     handler.NewPageHandler(base),
			System: handler.NewSystemHandler(handler.SystemHandlerConfig{
				Name:    cfg.App.Name,
				Version: version,
				Dialect: cfg.Database.Dialect(),
				DB:      db,
				Cache:   cachePinger,
			}),
		},
	})
	if err != nil {
		return fmt.Errorf("build router: %w", err)
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("Server exited gracefully")
	return nil
}

// bootstrap creates the shared credential table and brings the default
// tenant, when one is configured, to the head revision.
func bootstrap(ctx context.Context, cfg *config.Config, shared SharedSchemaEnsurer, tenants *identityapp.TenantService, log *zap.Logger) error {
	if err := shared.EnsureShared(ctx); err != nil {
		return err
	}
	schema := cfg.Tenant.DefaultSchema
	if schema == "" {
		log.Info("No default tenant configured; tenants are provisioned on first signup")
		return nil
	}
	revision, err := tenants.Provision(ctx, schema)
	if err != nil {
		return fmt.Errorf("provision default tenant %q: %w", schema, err)
	}
	log.Info("Default tenant ready", zap.String("schema", schema), zap.String("revision", revision))
	return nil
}

// SharedSchemaEnsurer creates the cross-tenant tables. *migration.Runner
// satisfies it.
type SharedSchemaEnsurer interface {
	EnsureShared(ctx context.Context) error
}

func corsConfig(cfg config.HTTPConfig) middleware.CORSConfig {
	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.CORSAllowOrigins
	if len(cfg.CORSAllowMethods) > 0 {
		cors.AllowMethods = cfg.CORSAllowMethods
	}
	if len(cfg.CORSAllowHeaders) > 0 {
		cors.AllowHeaders = cfg.CORSAllowHeaders
	}
	return cors
}

func securityConfig(cfg *config.Config) middleware.SecurityConfig {
	sec := middleware.DefaultSecurityConfig()
	sec.HSTSEnabled = cfg.IsProduction() && cfg.Cookie.Secure
	return sec
}
