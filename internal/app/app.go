package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/chefpilot/chefpilot-api/internal/http"
	"github.com/chefpilot/chefpilot-api/internal/service"
	"github.com/chefpilot/chefpilot-api/internal/store"
	"github.com/chefpilot/chefpilot-api/internal/store/drivers/sqlite"
	"github.com/chefpilot/chefpilot-api/pkg/metricsx"
	"github.com/chefpilot/chefpilot-api/pkg/slogx"
	"github.com/chefpilot/chefpilot-api/pkg/tokenx"

	"github.com/prometheus/client_golang/prometheus"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application encapsulates the API with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db      store.Store
	codec   *tokenx.Codec
	metrics *metricsx.Collector
	reg     *prometheus.Registry

	sessionService *service.SessionService
	userService    *service.UserService
	tenantService  *service.TenantService
	taskService    *service.TaskService
	templogService *service.TemperatureLogService
	featureService *service.FeatureService
	billingService *service.BillingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "chefpilot-api",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if cfg.JWTSecret == InsecureDevSecret {
		app.logger.Warn("running with the insecure default JWT secret; set JWT_SECRET in production")
	}

	app.codec = tokenx.NewCodec([]byte(cfg.JWTSecret), cfg.Issuer, cfg.AccessTTL)

	app.reg = prometheus.NewRegistry()
	app.metrics = metricsx.NewCollector(app.reg)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("chefpilot api starting",
		"port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully stops the HTTP server and closes the database.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down chefpilot api...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("chefpilot api stopped")
	return nil
}

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initServices() {
	app.sessionService = &service.SessionService{
		Store:         app.db,
		Codec:         app.codec,
		RefreshTTL:    app.cfg.RefreshTTL,
		Metrics:       app.metrics,
		TenantContext: app.cfg.TenantContext,
	}

	app.userService = &service.UserService{Store: app.db}
	app.tenantService = &service.TenantService{Store: app.db}
	app.taskService = &service.TaskService{Store: app.db}
	app.templogService = &service.TemperatureLogService{Store: app.db}
	app.featureService = &service.FeatureService{Store: app.db}
	app.billingService = &service.BillingService{Store: app.db}
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.codec,
		BuildVersion,
		app.db,
		app.logger,
		app.metrics,
		app.reg,
	)

	router.SessionService = app.sessionService
	router.UserService = app.userService
	router.TenantService = app.tenantService
	router.TaskService = app.taskService
	router.TemperatureLogService = app.templogService
	router.FeatureService = app.featureService
	router.BillingService = app.billingService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
