package bootstrap

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/1cvibe/connectgate/internal/auth"
	"github.com/1cvibe/connectgate/internal/cache"
	"github.com/1cvibe/connectgate/internal/config"
	"github.com/1cvibe/connectgate/internal/core"
	"github.com/1cvibe/connectgate/internal/metrics"
	"github.com/1cvibe/connectgate/internal/models"
	"github.com/1cvibe/connectgate/internal/services"
	"github.com/1cvibe/connectgate/internal/store"

	"github.com/appleboy/graceful"
	"github.com/redis/go-redis/v9"
)

// createHTTPServer creates the HTTP server instance
func createHTTPServer(cfg *config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.ServerAddr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}

// addServerRunningJob adds the HTTP server running job
func addServerRunningJob(m *graceful.Manager, srv *http.Server) {
	m.AddRunningJob(func(ctx context.Context) error {
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Fatalf("Failed to start server: %v", err)
			}
		}()
		<-ctx.Done()
		return nil
	})
}

// addServerShutdownJob adds HTTP server shutdown handler
func addServerShutdownJob(m *graceful.Manager, cfg *config.Config, srv *http.Server) {
	m.AddShutdownJob(func() error {
		log.Println("Shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("Server forced to shutdown: %v", err)
			return err
		}

		log.Println("Server exited")
		return nil
	})
}

// addStateSweepJob periodically purges expired states from the memory store.
// Redis expires keys on its own, so nothing is scheduled for it.
func addStateSweepJob(
	m *graceful.Manager,
	cfg *config.Config,
	memoryStore *cache.MemoryStore[models.PendingState],
) {
	if memoryStore == nil || cfg.StateCleanupInterval <= 0 {
		return
	}

	m.AddRunningJob(func(ctx context.Context) error {
		ticker := time.NewTicker(cfg.StateCleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if removed := memoryStore.Sweep(ctx); removed > 0 {
					log.Printf("[State] Swept %d expired states", removed)
				}
			case <-ctx.Done():
				return nil
			}
		}
	})
}

// addMetricsGaugeUpdateJob adds periodic metrics gauge update job
func addMetricsGaugeUpdateJob(
	m *graceful.Manager,
	cfg *config.Config,
	db *store.Store,
	prometheusMetrics core.Recorder,
	registry *auth.Registry,
) {
	if !cfg.MetricsEnabled || !cfg.MetricsGaugeUpdateEnabled {
		return
	}

	providers := make([]string, 0, registry.Len())
	for _, d := range registry.List() {
		providers = append(providers, string(d.ID))
	}

	m.AddRunningJob(func(ctx context.Context) error {
		ticker := time.NewTicker(cfg.MetricsGaugeUpdateInterval)
		defer ticker.Stop()

		// Update immediately on startup; failures are logged and counted inside
		_ = metrics.UpdateConnectionGauges(ctx, db, prometheusMetrics, providers)

		for {
			select {
			case <-ticker.C:
				_ = metrics.UpdateConnectionGauges(ctx, db, prometheusMetrics, providers)
			case <-ctx.Done():
				return nil
			}
		}
	})
}

// addAuditLogCleanupJob adds periodic audit log cleanup job
func addAuditLogCleanupJob(
	m *graceful.Manager,
	cfg *config.Config,
	auditService *services.AuditService,
) {
	if !cfg.EnableAuditLogging || cfg.AuditLogRetention <= 0 {
		return
	}

	cleanup := func(ctx context.Context) {
		if deleted, err := auditService.CleanupOldLogs(ctx, cfg.AuditLogRetention); err != nil {
			log.Printf("[Audit] Failed to cleanup old audit logs: %v", err)
		} else if deleted > 0 {
			log.Printf("[Audit] Cleaned up %d old audit logs", deleted)
		}
	}

	m.AddRunningJob(func(ctx context.Context) error {
		ticker := time.NewTicker(24 * time.Hour)
		defer ticker.Stop()

		// Run cleanup immediately on startup
		cleanup(ctx)

		for {
			select {
			case <-ticker.C:
				cleanup(ctx)
			case <-ctx.Done():
				return nil
			}
		}
	})
}

// addAuditServiceShutdownJob adds audit service shutdown handler
func addAuditServiceShutdownJob(
	m *graceful.Manager,
	cfg *config.Config,
	auditService *services.AuditService,
) {
	m.AddShutdownJob(func() error {
		log.Println("Shutting down audit service...")
		ctx, cancel := context.WithTimeout(context.Background(), cfg.AuditShutdownTimeout)
		defer cancel()

		if err := auditService.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down audit service: %v", err)
			return err
		}
		return nil
	})
}

// addStateStoreShutdownJob closes the pending state store
func addStateStoreShutdownJob(m *graceful.Manager, stateStore core.PendingStore[models.PendingState]) {
	m.AddShutdownJob(func() error {
		if err := stateStore.Close(); err != nil {
			log.Printf("Error closing state store: %v", err)
			return err
		}
		log.Println("State store closed")
		return nil
	})
}

// addRedisClientShutdownJob adds Redis client shutdown handler
func addRedisClientShutdownJob(m *graceful.Manager, redisClient *redis.Client) {
	if redisClient == nil {
		return
	}

	m.AddShutdownJob(func() error {
		log.Println("Closing Redis connection...")
		if err := redisClient.Close(); err != nil {
			log.Printf("Error closing Redis client: %v", err)
			return err
		}
		log.Println("Redis connection closed")
		return nil
	})
}
