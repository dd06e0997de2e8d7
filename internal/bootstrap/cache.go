package bootstrap

import (
	"context"
	"fmt"
	"log"

	"github.com/1cvibe/connectgate/internal/cache"
	"github.com/1cvibe/connectgate/internal/config"
	"github.com/1cvibe/connectgate/internal/core"
	"github.com/1cvibe/connectgate/internal/metrics"
	"github.com/1cvibe/connectgate/internal/models"
)

const stateKeyPrefix = "connectgate:state:"

// initializeMetrics initializes Prometheus metrics
func initializeMetrics(cfg *config.Config) core.Recorder {
	prometheusMetrics := metrics.Init(cfg.MetricsEnabled)
	if cfg.MetricsEnabled {
		log.Println("Prometheus metrics initialized")
	} else {
		log.Println("Metrics disabled (using noop implementation)")
	}
	return prometheusMetrics
}

// initializeStateStore creates the pending state store. The memory store is
// also returned on its own so the sweep job can purge abandoned states.
func initializeStateStore(
	ctx context.Context,
	cfg *config.Config,
) (core.PendingStore[models.PendingState], *cache.MemoryStore[models.PendingState], error) {
	switch cfg.StateStore {
	case config.StateStoreRedis:
		ctx, cancel := context.WithTimeout(ctx, cfg.RedisConnTimeout)
		defer cancel()

		s, err := cache.NewRueidisStore[models.PendingState](
			ctx,
			cfg.RedisAddr,
			cfg.RedisPassword,
			cfg.RedisDB,
			stateKeyPrefix,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize redis state store: %w", err)
		}
		log.Printf("State store: redis (addr=%s, db=%d)", cfg.RedisAddr, cfg.RedisDB)
		return s, nil, nil

	default: // memory
		s := cache.NewMemoryStore[models.PendingState]()
		log.Println("State store: memory (single instance only)")
		return s, s, nil
	}
}
