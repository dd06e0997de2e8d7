package bootstrap

import (
	"context"
	"net/http"

	"github.com/1cvibe/connectgate/internal/auth"
	"github.com/1cvibe/connectgate/internal/cache"
	"github.com/1cvibe/connectgate/internal/config"
	"github.com/1cvibe/connectgate/internal/core"
	"github.com/1cvibe/connectgate/internal/models"
	"github.com/1cvibe/connectgate/internal/services"
	"github.com/1cvibe/connectgate/internal/store"

	"github.com/appleboy/graceful"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// Application holds all initialized components
type Application struct {
	Config *config.Config

	// Core infrastructure
	DB                   *store.Store
	MetricsRecorder      core.Recorder
	StateStore           core.PendingStore[models.PendingState]
	MemoryStateStore     *cache.MemoryStore[models.PendingState] // nil when state lives in Redis
	RateLimitRedisClient *redis.Client

	// Providers
	Registry  *auth.Registry
	Exchanger *auth.Exchanger

	// Services
	AuditService       *services.AuditService
	IntegrationService *services.IntegrationService

	// HTTP
	HandlerSet handlerSet
	Router     *gin.Engine
	Server     *http.Server
}

// Run initializes and starts the application
func Run(cfg *config.Config) error {
	app := &Application{Config: cfg}
	ctx := context.Background()

	// Phase 1: Validate configuration
	if err := validateAllConfiguration(cfg); err != nil {
		return err
	}

	// Phase 2: Initialize infrastructure
	if err := app.initializeInfrastructure(ctx); err != nil {
		return err
	}

	// Phase 3: Initialize business layer
	if err := app.initializeBusinessLayer(); err != nil {
		return err
	}

	// Phase 4: Initialize HTTP layer
	if err := app.initializeHTTPLayer(); err != nil {
		return err
	}

	// Phase 5: Start server with graceful shutdown
	app.startWithGracefulShutdown()

	return nil
}

// initializeInfrastructure sets up database, metrics, state store, and Redis
func (app *Application) initializeInfrastructure(ctx context.Context) error {
	var err error

	// Database
	app.DB, err = initializeDatabase(ctx, app.Config)
	if err != nil {
		return err
	}

	// Metrics
	app.MetricsRecorder = initializeMetrics(app.Config)

	// Pending state store
	app.StateStore, app.MemoryStateStore, err = initializeStateStore(ctx, app.Config)
	if err != nil {
		return err
	}

	// Redis (for rate limiting)
	app.RateLimitRedisClient, err = initializeRateLimitRedisClient(ctx, app.Config)
	if err != nil {
		return err
	}

	return nil
}

// initializeBusinessLayer sets up providers and services
func (app *Application) initializeBusinessLayer() error {
	var err error

	app.Registry, err = initializeProviders(app.Config)
	if err != nil {
		return err
	}
	logProvidersStatus(app.Registry)

	oauthHTTPClient, err := createOAuthHTTPClient(app.Config)
	if err != nil {
		return err
	}
	app.Exchanger = auth.NewExchanger(
		app.Registry,
		oauthHTTPClient,
		app.Config.OAuthExchangeTimeout,
		app.MetricsRecorder,
	)

	// Audit service (required by the integration service)
	app.AuditService = services.NewAuditService(
		app.DB,
		app.Config.EnableAuditLogging,
		app.Config.AuditLogBufferSize,
	)

	app.IntegrationService, err = initializeServices(
		app.Config,
		app.DB,
		app.StateStore,
		app.Registry,
		app.Exchanger,
		app.AuditService,
		app.MetricsRecorder,
	)
	return err
}

// initializeHTTPLayer sets up handlers, router, and server
func (app *Application) initializeHTTPLayer() error {
	app.HandlerSet = initializeHandlers(app.Config, app.IntegrationService)

	router, err := setupRouter(
		app.Config,
		app.DB,
		app.StateStore,
		app.HandlerSet,
		app.MetricsRecorder,
		app.AuditService,
		app.RateLimitRedisClient,
	)
	if err != nil {
		return err
	}
	app.Router = router

	app.Server = createHTTPServer(app.Config, app.Router)
	return nil
}

// startWithGracefulShutdown starts the server and handles graceful shutdown
func (app *Application) startWithGracefulShutdown() {
	m := graceful.NewManager()

	// Add jobs
	addServerRunningJob(m, app.Server)
	addServerShutdownJob(m, app.Config, app.Server)
	addStateSweepJob(m, app.Config, app.MemoryStateStore)
	addMetricsGaugeUpdateJob(m, app.Config, app.DB, app.MetricsRecorder, app.Registry)
	addAuditLogCleanupJob(m, app.Config, app.AuditService)
	addAuditServiceShutdownJob(m, app.Config, app.AuditService)
	addStateStoreShutdownJob(m, app.StateStore)
	addRedisClientShutdownJob(m, app.RateLimitRedisClient)

	// Wait for graceful shutdown
	<-m.Done()
}
