package bootstrap

import (
	"log"
	"net/http"

	"github.com/1cvibe/connectgate/internal/client"
	"github.com/1cvibe/connectgate/internal/config"
	"github.com/1cvibe/connectgate/internal/version"
)

// createOAuthHTTPClient creates the HTTP client used for provider token requests
func createOAuthHTTPClient(cfg *config.Config) (*http.Client, error) {
	if cfg.OAuthInsecureSkipVerify {
		log.Printf("WARNING: OAuth TLS verification is disabled (OAUTH_INSECURE_SKIP_VERIFY=true)")
	}
	return client.CreateProviderClient(
		cfg.OAuthExchangeTimeout,
		cfg.OAuthInsecureSkipVerify,
		version.UserAgent(),
	)
}
