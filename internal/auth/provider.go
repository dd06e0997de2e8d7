package auth

import (
	"fmt"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"
	"golang.org/x/oauth2/gitlab"
)

// ProviderID identifies a supported third-party provider
type ProviderID string

const (
	ProviderGitHub ProviderID = "github"
	ProviderGitLab ProviderID = "gitlab"
	ProviderJira   ProviderID = "jira"
)

// Atlassian (Jira Cloud) OAuth 2.0 (3LO) endpoints
const (
	jiraAuthURL  = "https://auth.atlassian.com/authorize"
	jiraTokenURL = "https://auth.atlassian.com/oauth/token"
)

// SupportedProviders lists every provider in display order
var SupportedProviders = []ProviderID{ProviderGitHub, ProviderGitLab, ProviderJira}

// ParseProviderID validates a raw provider id (typically a URL path segment)
// against the supported set. Matching is exact.
func ParseProviderID(raw string) (ProviderID, error) {
	for _, id := range SupportedProviders {
		if string(id) == raw {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedProvider, raw)
}

// OAuthProviderConfig contains the client registration for an OAuth provider
type OAuthProviderConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	UsePKCE      bool
}

// Descriptor is the immutable description of one configured provider.
type Descriptor struct {
	ID       ProviderID `json:"provider_id"`
	Name     string     `json:"name"`
	AuthURL  string     `json:"-"`
	TokenURL string     `json:"-"`

	ClientID     string `json:"-"`
	ClientSecret string `json:"-"`
	RedirectURL  string `json:"-"`

	Scopes         []string          `json:"-"`
	ScopeDelimiter string            `json:"-"`
	ExtraParams    map[string]string `json:"-"` // added to every authorization URL
	UsePKCE        bool              `json:"-"`
}

// String returns the provider id, keeping the client secret out of %v output.
func (d *Descriptor) String() string {
	return string(d.ID)
}

// oauth2Config builds the x/oauth2 client configuration for this provider
func (d *Descriptor) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     d.ClientID,
		ClientSecret: d.ClientSecret,
		RedirectURL:  d.RedirectURL,
		Endpoint: oauth2.Endpoint{
			AuthURL:   d.AuthURL,
			TokenURL:  d.TokenURL,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
}

func (d *Descriptor) scopeParam() string {
	delim := d.ScopeDelimiter
	if delim == "" {
		delim = " "
	}
	return strings.Join(d.Scopes, delim)
}

// NewGitHubDescriptor creates a GitHub provider descriptor
func NewGitHubDescriptor(cfg OAuthProviderConfig) *Descriptor {
	return &Descriptor{
		ID:           ProviderGitHub,
		Name:         "GitHub",
		AuthURL:      github.Endpoint.AuthURL,
		TokenURL:     github.Endpoint.TokenURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       cfg.Scopes,
		UsePKCE:      cfg.UsePKCE,
	}
}

// NewGitLabDescriptor creates a GitLab provider descriptor.
// baseURL selects a self-hosted instance; empty means gitlab.com.
func NewGitLabDescriptor(cfg OAuthProviderConfig, baseURL string) *Descriptor {
	authURL, tokenURL := gitlab.Endpoint.AuthURL, gitlab.Endpoint.TokenURL
	if baseURL != "" {
		authURL = fmt.Sprintf("%s/oauth/authorize", baseURL)
		tokenURL = fmt.Sprintf("%s/oauth/token", baseURL)
	}
	return &Descriptor{
		ID:           ProviderGitLab,
		Name:         "GitLab",
		AuthURL:      authURL,
		TokenURL:     tokenURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       cfg.Scopes,
		UsePKCE:      cfg.UsePKCE,
	}
}

// NewJiraDescriptor creates a Jira Cloud (Atlassian) provider descriptor
func NewJiraDescriptor(cfg OAuthProviderConfig) *Descriptor {
	return &Descriptor{
		ID:           ProviderJira,
		Name:         "Jira",
		AuthURL:      jiraAuthURL,
		TokenURL:     jiraTokenURL,
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RedirectURL:  cfg.RedirectURL,
		Scopes:       cfg.Scopes,
		ExtraParams: map[string]string{
			"audience": "api.atlassian.com",
			"prompt":   "consent",
		},
		UsePKCE: cfg.UsePKCE,
	}
}
