package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/erp/fiscalsync/internal/infrastructure/auth"
	"github.com/erp/fiscalsync/internal/infrastructure/config"
	"github.com/erp/fiscalsync/internal/infrastructure/logger"
	"github.com/erp/fiscalsync/internal/infrastructure/migration"
	"github.com/erp/fiscalsync/internal/infrastructure/persistence"
	"github.com/erp/fiscalsync/internal/infrastructure/telemetry"
	"github.com/erp/fiscalsync/internal/interfaces/http/handler"
	"github.com/erp/fiscalsync/internal/interfaces/http/middleware"
	"github.com/erp/fiscalsync/internal/interfaces/http/router"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

//	@title			Fiscal Sync API
//	@version		1.0
//	@description	Synchronizes customers, catalog and fiscal documents with the Vendus invoicing service.

//	@BasePath	/api/v1/fiscal

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	baseLog, err := logger.New(cfg.Log)
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = logger.Sync(baseLog) }()

	if err := run(cfg, baseLog); err != nil {
		baseLog.Error("Server stopped with error", zap.Error(err))
		_ = logger.Sync(baseLog)
		os.Exit(1)
	}
}

func run(cfg *config.Config, baseLog *zap.Logger) error {
	ctx := context.Background()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, cfg.Telemetry, baseLog)
	if err != nil {
		return err
	}
	meterProvider, err := telemetry.NewMeterProvider(ctx, cfg.Telemetry, baseLog)
	if err != nil {
		return err
	}
	loggerProvider, err := telemetry.NewLoggerProvider(ctx, cfg.Telemetry, baseLog)
	if err != nil {
		return err
	}
	profiler, err := telemetry.NewProfiler(cfg.Telemetry, baseLog)
	if err != nil {
		return err
	}
	if profiler.IsEnabled() {
		tracerProvider.EnableSpanProfiles()
	}
	log := loggerProvider.Bridge(baseLog, cfg.Telemetry.ServiceName, logger.ParseLevel(cfg.Log.Level))

	log.Info("Starting fiscal sync service",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	db, err := persistence.NewDatabase(&cfg.Database, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if err := migrate(db, cfg.Database.Driver, log); err != nil {
		return err
	}
	if err := telemetry.RegisterDBTracing(db.DB, cfg.Telemetry, log); err != nil {
		return err
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	meter := meterProvider.Meter("fiscalsync")
	if err := telemetry.RegisterDBPoolMetrics(meter, sqlDB); err != nil {
		return err
	}
	metrics, err := telemetry.NewSyncMetrics(meter)
	if err != nil {
		return err
	}

	app, err := wire(ctx, cfg, db, tracerProvider.Tracer("fiscalsync/vendus"), metrics, log)
	if err != nil {
		return err
	}

	middleware.SetupValidator()
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine, err := router.NewEngine(router.EngineConfig{
		ServiceName:      cfg.Telemetry.ServiceName,
		TracingEnabled:   tracerProvider.IsEnabled(),
		ProfilingEnabled: profiler.IsEnabled(),
		MaxBodySize:      cfg.HTTP.MaxBodySize,
		TrustedProxies:   cfg.HTTP.TrustedProxies,
		Verifier:         auth.NewTokenVerifier(cfg.JWT),
		Logger:           log,
	}, router.Handlers{
		Health:    handler.NewHealthHandler(cfg.App.Name, version, sqlDB, log),
		Sync:      handler.NewSyncHandler(app.registry, app.credentials),
		Documents: handler.NewDocumentHandler(app.documents, app.credentials),
		Runs:      handler.NewRunHandler(app.runs),
		Settings:  handler.NewSettingsHandler(app.settings),
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-quit:
		log.Info("Shutting down server", zap.String("signal", sig.String()))
	case err := <-serverErr:
		if err != nil {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return errors.Join(
		srv.Shutdown(shutdownCtx),
		profiler.Stop(),
		meterProvider.Shutdown(shutdownCtx),
		tracerProvider.Shutdown(shutdownCtx),
		loggerProvider.Shutdown(shutdownCtx),
	)
}

// migrate brings the schema up to date. sqlite databases are migrated from
// the models since the sqlite migration driver closes the connection it is
// given.
func migrate(db *persistence.Database, driver string, log *zap.Logger) error {
	if driver == "sqlite" {
		return db.AutoMigrate()
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	m, err := migration.New(sqlDB, driver, log)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()
	return m.Up()
}
