package bootstrap

import (
	"fmt"

	"github.com/1cvibe/connectgate/internal/auth"
	"github.com/1cvibe/connectgate/internal/config"
	"github.com/1cvibe/connectgate/internal/core"
	"github.com/1cvibe/connectgate/internal/models"
	"github.com/1cvibe/connectgate/internal/services"
	"github.com/1cvibe/connectgate/internal/store"
	"github.com/1cvibe/connectgate/internal/util"
)

// initializeServices creates the state, connection and integration services
func initializeServices(
	cfg *config.Config,
	db *store.Store,
	stateStore core.PendingStore[models.PendingState],
	registry *auth.Registry,
	exchanger core.TokenExchanger,
	auditService *services.AuditService,
	prometheusMetrics core.Recorder,
) (*services.IntegrationService, error) {
	sealer, err := util.NewTokenSealer(cfg.TokenEncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token sealer: %w", err)
	}

	stateService := services.NewStateService(
		stateStore,
		cfg.StateTTL,
		cfg.StateGracePeriod,
		prometheusMetrics,
	)
	connectionService := services.NewConnectionService(db, sealer, prometheusMetrics)

	return services.NewIntegrationService(
		registry,
		stateService,
		connectionService,
		exchanger,
		auditService,
		prometheusMetrics,
		services.IntegrationConfig{RedirectBase: redirectBase(cfg)},
	), nil
}

// redirectBase is the origin return_to values are checked against
func redirectBase(cfg *config.Config) string {
	if cfg.CallbackRedirectURL != "" {
		return cfg.CallbackRedirectURL
	}
	return cfg.BaseURL
}
