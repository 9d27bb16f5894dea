package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/erp/fiscalsync/internal/infrastructure/auth"
	"github.com/erp/fiscalsync/internal/infrastructure/logger"
	"github.com/erp/fiscalsync/internal/interfaces/http/handler"
	"github.com/erp/fiscalsync/internal/interfaces/http/middleware"
)

// Handlers bundles the handlers served by the engine.
type Handlers struct {
	Health    *handler.HealthHandler
	Sync      *handler.SyncHandler
	Documents *handler.DocumentHandler
	Runs      *handler.RunHandler
	Settings  *handler.SettingsHandler
}

// EngineConfig configures the middleware chain of NewEngine.
type EngineConfig struct {
	ServiceName      string
	TracingEnabled   bool
	ProfilingEnabled bool
	MaxBodySize      int64
	TrustedProxies   []string
	// Verifier checks bearer tokens. Nil trusts the identity headers.
	Verifier *auth.TokenVerifier
	Logger   *zap.Logger
}

// NewEngine builds the gin engine with the full middleware chain and the
// fiscal routes mounted under /api/v1/fiscal.
func NewEngine(cfg EngineConfig, h Handlers) (*gin.Engine, error) {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}
	engine.Use(
		logger.Recovery(log),
		middleware.RequestID(),
		middleware.Tracing(cfg.ServiceName, cfg.TracingEnabled),
		middleware.SpanEnricher(),
		logger.GinMiddleware(log),
		middleware.Secure(),
		middleware.BodyLimit(cfg.MaxBodySize),
		middleware.Profiling(cfg.ProfilingEnabled),
	)

	NewRouter(engine).Register(FiscalRoutes(h, middleware.Authenticate(cfg.Verifier))).Setup()
	return engine, nil
}

// FiscalRoutes declares the fiscal API. Everything except the health check
// runs behind authenticate.
func FiscalRoutes(h Handlers, authenticate gin.HandlerFunc) *DomainGroup {
	fiscal := NewDomainGroup("fiscal", "/fiscal")
	fiscal.GET("/health", h.Health.Health)

	api := fiscal.Group("api", "").Use(authenticate)

	api.Group("entities", "/entities").
		GET("", h.Sync.ListEntities).
		GET("/:entity/remote", h.Sync.ListRemote).
		POST("/:entity/import", h.Sync.Import).
		POST("/:entity/import/:remote_id", h.Sync.ImportOne).
		POST("/:entity/:id/push", h.Sync.Push).
		GET("/:entity/:id/remote", h.Sync.ReadRemote).
		DELETE("/:entity/:id/remote", h.Sync.DeleteRemote).
		POST("/:entity/:id/reference", h.Sync.ResolveReference)

	api.Group("documents", "/documents").
		POST("", h.Documents.Create).
		GET("/:id", h.Documents.Get).
		POST("/:id/submit", h.Documents.Submit).
		POST("/:id/backfill", h.Documents.Backfill).
		POST("/:id/cancel", h.Documents.Cancel).
		GET("/:id/pdf", h.Documents.PDF)

	api.Group("runs", "/runs").
		GET("", h.Runs.List).
		GET("/:id", h.Runs.Get)

	api.Group("settings", "").
		GET("/settings", h.Settings.Get).
		PUT("/settings", h.Settings.Update).
		PUT("/user-links/:user_id", h.Settings.LinkUser)

	return fiscal
}
