package bootstrap

import (
	"fmt"
	"log"

	"github.com/1cvibe/connectgate/internal/config"
	"github.com/1cvibe/connectgate/internal/middleware"
	"github.com/1cvibe/connectgate/internal/models"
	"github.com/1cvibe/connectgate/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

// rateLimitMiddlewares holds rate limiting middlewares for different endpoints
type rateLimitMiddlewares struct {
	connect  gin.HandlerFunc
	callback gin.HandlerFunc
}

// setupRateLimiting configures rate limiting middlewares based on configuration
// Accepts an optional go-redis client
func setupRateLimiting(
	cfg *config.Config,
	auditService *services.AuditService,
	redisClient *redis.Client,
) (rateLimitMiddlewares, error) {
	if !cfg.EnableRateLimit {
		// Return no-op middlewares when rate limiting is disabled
		noOpMiddleware := func(c *gin.Context) { c.Next() }
		return rateLimitMiddlewares{connect: noOpMiddleware, callback: noOpMiddleware}, nil
	}
	return createRateLimiters(cfg, auditService, redisClient)
}

// createRateLimiters creates rate limiting middlewares for all endpoints
func createRateLimiters(
	cfg *config.Config,
	auditService *services.AuditService,
	redisClient *redis.Client,
) (rateLimitMiddlewares, error) {
	log.Printf("Rate limiting enabled (store: %s)", cfg.RateLimitStore)

	storeType := middleware.RateLimitStoreType(cfg.RateLimitStore)
	if storeType == middleware.RateLimitStoreRedis {
		log.Printf("Using shared Redis client for rate limiting (provided externally)")
	} else {
		log.Printf("In-memory rate limiting configured (single instance only)")
	}

	createLimiter := func(requestsPerMinute int, endpoint string) (gin.HandlerFunc, error) {
		limiter, err := middleware.NewRateLimiter(middleware.RateLimitConfig{
			RequestsPerMinute: requestsPerMinute,
			StoreType:         storeType,
			Prefix:            "connectgate:ratelimit:" + endpoint + ":",
			RedisClient:       redisClient, // nil for memory store
			OnLimitReached:    auditRateLimit(auditService, endpoint),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create rate limiter for %s: %w", endpoint, err)
		}
		return limiter, nil
	}

	connect, err := createLimiter(cfg.ConnectRateLimit, "connect")
	if err != nil {
		return rateLimitMiddlewares{}, err
	}
	callback, err := createLimiter(cfg.CallbackRateLimit, "callback")
	if err != nil {
		return rateLimitMiddlewares{}, err
	}
	return rateLimitMiddlewares{connect: connect, callback: callback}, nil
}

// auditRateLimit records rejected requests in the audit log
func auditRateLimit(auditService *services.AuditService, endpoint string) func(*gin.Context) {
	return func(c *gin.Context) {
		auditService.Log(c.Request.Context(), services.AuditLogEntry{
			EventType:   models.EventRateLimitExceeded,
			Severity:    models.SeverityWarning,
			ActorUserID: c.GetString(middleware.SessionUserID),
			Provider:    c.Param("provider"),
			Action:      "rate limit exceeded on " + endpoint,
			Details:     models.AuditDetails{"endpoint": endpoint},
			Success:     false,
		})
	}
}
