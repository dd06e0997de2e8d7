package bootstrap

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/1cvibe/connectgate/internal/config"
	"github.com/1cvibe/connectgate/internal/store"
)

// validateAllConfiguration validates all configuration settings
func validateAllConfiguration(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := validateProviderConfig(cfg); err != nil {
		return fmt.Errorf("invalid provider configuration: %w", err)
	}
	if err := validateDatabaseConfig(cfg); err != nil {
		return fmt.Errorf("invalid database configuration: %w", err)
	}
	return nil
}

// validateProviderConfig checks that every enabled provider has a client registration
func validateProviderConfig(cfg *config.Config) error {
	providers := []struct {
		name string
		pc   config.ProviderConfig
	}{
		{"GITHUB", cfg.GitHub},
		{"GITLAB", cfg.GitLab},
		{"JIRA", cfg.Jira},
	}

	enabled := 0
	for _, p := range providers {
		if !p.pc.Enabled {
			continue
		}
		enabled++
		if p.pc.ClientID == "" || p.pc.ClientSecret == "" {
			return fmt.Errorf(
				"%s_CLIENT_ID and %s_CLIENT_SECRET are required when %s_OAUTH_ENABLED=true",
				p.name, p.name, p.name,
			)
		}
	}
	if enabled == 0 {
		return errors.New(
			"no provider enabled (set GITHUB_OAUTH_ENABLED, GITLAB_OAUTH_ENABLED or JIRA_OAUTH_ENABLED)",
		)
	}
	return nil
}

// validateDatabaseConfig checks the selected database driver
func validateDatabaseConfig(cfg *config.Config) error {
	if !slices.Contains(store.SupportedDrivers(), cfg.DatabaseDriver) {
		return fmt.Errorf(
			"invalid DATABASE_DRIVER: %s (must be: %s)",
			cfg.DatabaseDriver, strings.Join(store.SupportedDrivers(), ", "),
		)
	}
	if cfg.DatabaseDSN == "" {
		return errors.New("DATABASE_DSN is required")
	}
	return nil
}
