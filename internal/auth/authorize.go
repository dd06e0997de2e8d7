package auth

import (
	"golang.org/x/oauth2"
)

// AuthorizationURL composes the provider authorization URL for a connect flow.
// It has no side effects: the same inputs always produce the same URL, with
// every query parameter encoded and sorted by key. verifier is the PKCE code
// verifier and may be empty.
func AuthorizationURL(d *Descriptor, state, verifier string) string {
	opts := make([]oauth2.AuthCodeOption, 0, len(d.ExtraParams)+2)
	if len(d.Scopes) > 0 {
		opts = append(opts, oauth2.SetAuthURLParam("scope", d.scopeParam()))
	}
	for key, value := range d.ExtraParams {
		opts = append(opts, oauth2.SetAuthURLParam(key, value))
	}
	if d.UsePKCE && verifier != "" {
		opts = append(opts, oauth2.S256ChallengeOption(verifier))
	}

	// AuthCodeURL adds response_type, client_id, redirect_uri and state
	return d.oauth2Config().AuthCodeURL(state, opts...)
}

// GenerateVerifier returns a fresh PKCE code verifier when the provider uses PKCE.
func GenerateVerifier(d *Descriptor) string {
	if !d.UsePKCE {
		return ""
	}
	return oauth2.GenerateVerifier()
}
