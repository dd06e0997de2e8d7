package bootstrap

import (
	"github.com/1cvibe/connectgate/internal/config"
	"github.com/1cvibe/connectgate/internal/handlers"
	"github.com/1cvibe/connectgate/internal/services"
)

// handlerSet holds all HTTP handlers
type handlerSet struct {
	integration *handlers.IntegrationHandler
}

// initializeHandlers creates all HTTP handlers
func initializeHandlers(
	cfg *config.Config,
	integrationService *services.IntegrationService,
) handlerSet {
	return handlerSet{
		integration: handlers.NewIntegrationHandler(
			integrationService,
			cfg.CallbackRedirectURL,
		),
	}
}
