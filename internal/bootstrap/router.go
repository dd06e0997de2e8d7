package bootstrap

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/1cvibe/connectgate/internal/config"
	"github.com/1cvibe/connectgate/internal/core"
	"github.com/1cvibe/connectgate/internal/metrics"
	"github.com/1cvibe/connectgate/internal/middleware"
	"github.com/1cvibe/connectgate/internal/models"
	"github.com/1cvibe/connectgate/internal/services"
	"github.com/1cvibe/connectgate/internal/util"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

const healthCheckTimeout = 3 * time.Second

// healthChecker is satisfied by the database and the state store
type healthChecker interface {
	Health(ctx context.Context) error
}

// setupRouter configures the Gin router with all routes and middleware
func setupRouter(
	cfg *config.Config,
	db healthChecker,
	stateStore core.PendingStore[models.PendingState],
	h handlerSet,
	prometheusMetrics core.Recorder,
	auditService *services.AuditService,
	rateLimitRedisClient *redis.Client,
) (*gin.Engine, error) {
	// Setup Gin mode
	setupGinMode(cfg)
	r := gin.New()

	// Setup middleware
	r.Use(metrics.HTTPMetricsMiddleware(prometheusMetrics))
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(util.IPMiddleware())

	// Setup session middleware
	setupSessionMiddleware(r, cfg)

	// Health check endpoint
	r.GET("/health", createHealthCheckHandler(db, stateStore))

	// Setup metrics endpoint
	setupMetricsEndpoint(r, cfg)

	// Setup rate limiting
	rateLimiters, err := setupRateLimiting(cfg, auditService, rateLimitRedisClient)
	if err != nil {
		return nil, err
	}

	// Setup all routes
	setupAllRoutes(r, cfg, h, rateLimiters)

	// Log server startup info
	logServerStartup(cfg)

	return r, nil
}

// setupSessionMiddleware configures session handling middleware
func setupSessionMiddleware(r *gin.Engine, cfg *config.Config) {
	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   cfg.SessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions("connectgate_session", sessionStore))
}

// setupMetricsEndpoint configures the Prometheus metrics endpoint
func setupMetricsEndpoint(r *gin.Engine, cfg *config.Config) {
	switch {
	case !cfg.MetricsEnabled:
		log.Printf("Prometheus metrics disabled")
	case cfg.MetricsToken != "":
		log.Printf("Prometheus metrics enabled at /metrics with Bearer token authentication")
		r.GET(
			"/metrics",
			middleware.MetricsAuthMiddleware(cfg.MetricsToken),
			gin.WrapH(promhttp.Handler()),
		)
	default:
		log.Printf("Prometheus metrics enabled at /metrics (no authentication)")
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}
}

// setupAllRoutes configures all application routes
func setupAllRoutes(
	r *gin.Engine,
	cfg *config.Config,
	h handlerSet,
	rateLimiters rateLimitMiddlewares,
) {
	// Provider callback (public: the browser arrives from the provider, the
	// state token identifies the user)
	public := r.Group("/oauth")
	{
		public.GET("/:provider/callback", rateLimiters.callback, h.integration.Callback)
	}

	// Integration API (requires an authenticated user + CSRF for session callers)
	api := r.Group("/oauth")
	api.Use(middleware.RequireUser(cfg.AuthJWTSecret), middleware.CSRFMiddleware())
	{
		api.GET("/providers", h.integration.ListProviders)
		api.GET("/activity", h.integration.Activity)
		api.GET("/:provider/status", h.integration.Status)
		api.POST("/:provider/connect", rateLimiters.connect, h.integration.Connect)
		api.POST("/:provider/refresh", h.integration.Refresh)
		api.DELETE("/:provider/connection", h.integration.Disconnect)
	}
}

// createHealthCheckHandler creates health check endpoint handler
func createHealthCheckHandler(db, stateStore healthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
		defer cancel()

		status := http.StatusOK
		body := gin.H{
			"status":      "healthy",
			"database":    "connected",
			"state_store": "connected",
		}

		if err := db.Health(ctx); err != nil {
			log.Printf("[Store] Health check failed: %v", err)
			status = http.StatusServiceUnavailable
			body["status"] = "unhealthy"
			body["database"] = "disconnected"
		}
		if err := stateStore.Health(ctx); err != nil {
			log.Printf("[State] Health check failed: %v", err)
			status = http.StatusServiceUnavailable
			body["status"] = "unhealthy"
			body["state_store"] = "disconnected"
		}

		c.JSON(status, body)
	}
}

// setupGinMode sets Gin mode based on environment configuration
func setupGinMode(cfg *config.Config) {
	mode := ginModeMap[cfg.IsProduction]
	gin.SetMode(mode)
	log.Printf("Gin mode: %s", ginModeLogMessage[cfg.IsProduction])
}

var ginModeMap = map[bool]string{
	true:  gin.ReleaseMode,
	false: gin.DebugMode,
}

var ginModeLogMessage = map[bool]string{
	true:  "Release (production)",
	false: "Debug (development)",
}

// logServerStartup logs server startup information
func logServerStartup(cfg *config.Config) {
	log.Printf("Integration server starting on %s", cfg.ServerAddr)
	log.Printf("Provider callback: %s", cfg.RedirectURI(":provider"))
	if cfg.CallbackRedirectURL != "" {
		log.Printf("Browser landing page after callback: %s", cfg.CallbackRedirectURL)
	}
	if cfg.AuthJWTSecret == "" {
		log.Printf("Bearer authentication disabled (AUTH_JWT_SECRET unset); session cookie only")
	}
}
