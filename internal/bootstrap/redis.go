package bootstrap

import (
	"context"
	"fmt"
	"log"

	"github.com/1cvibe/connectgate/internal/config"
	"github.com/redis/go-redis/v9"
)

// usesRedisRateLimit reports whether the rate limiters need a shared Redis counter store
func usesRedisRateLimit(cfg *config.Config) bool {
	return cfg.EnableRateLimit && cfg.RateLimitStore == config.RateLimitStoreRedis
}

// initializeRateLimitRedisClient connects the go-redis client used by ulule/limiter.
// Pending states use the rueidis client instead (see initializeStateStore), so
// this returns nil unless rate limit counters live in Redis.
func initializeRateLimitRedisClient(
	ctx context.Context,
	cfg *config.Config,
) (*redis.Client, error) {
	if !usesRedisRateLimit(cfg) {
		return nil, nil //nolint:nilnil // redis client not needed in this configuration
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(ctx, cfg.RedisConnTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to rate limit Redis at %s: %w", cfg.RedisAddr, err)
	}

	log.Printf("Rate limit counters stored in Redis (addr=%s, db=%d)", cfg.RedisAddr, cfg.RedisDB)
	return client, nil
}
