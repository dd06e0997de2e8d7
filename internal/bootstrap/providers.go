package bootstrap

import (
	"fmt"
	"log"

	"github.com/1cvibe/connectgate/internal/auth"
	"github.com/1cvibe/connectgate/internal/config"
)

// initializeProviders builds the provider registry from the enabled providers
func initializeProviders(cfg *config.Config) (*auth.Registry, error) {
	var descriptors []*auth.Descriptor

	if cfg.GitHub.Enabled {
		descriptors = append(descriptors, auth.NewGitHubDescriptor(
			providerConfig(cfg, cfg.GitHub, auth.ProviderGitHub),
		))
	}
	if cfg.GitLab.Enabled {
		descriptors = append(descriptors, auth.NewGitLabDescriptor(
			providerConfig(cfg, cfg.GitLab, auth.ProviderGitLab),
			cfg.GitLabURL,
		))
		if cfg.GitLabURL != "" {
			log.Printf("GitLab OAuth using self-hosted server: %s", cfg.GitLabURL)
		}
	}
	if cfg.Jira.Enabled {
		descriptors = append(descriptors, auth.NewJiraDescriptor(
			providerConfig(cfg, cfg.Jira, auth.ProviderJira),
		))
	}

	registry, err := auth.NewRegistry(descriptors...)
	if err != nil {
		return nil, fmt.Errorf("failed to build provider registry: %w", err)
	}
	return registry, nil
}

func providerConfig(
	cfg *config.Config,
	pc config.ProviderConfig,
	id auth.ProviderID,
) auth.OAuthProviderConfig {
	return auth.OAuthProviderConfig{
		ClientID:     pc.ClientID,
		ClientSecret: pc.ClientSecret,
		RedirectURL:  cfg.RedirectURI(string(id)),
		Scopes:       pc.Scopes,
		UsePKCE:      pc.UsePKCE,
	}
}

// logProvidersStatus logs enabled providers and their redirect URIs
func logProvidersStatus(registry *auth.Registry) {
	for _, d := range registry.List() {
		log.Printf("[OAuth] %s enabled: redirect=%s pkce=%t", d.Name, d.RedirectURL, d.UsePKCE)
	}
}
