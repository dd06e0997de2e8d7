package core

import (
	"context"
	"time"
)

// TokenSet is the token material returned by a provider's token endpoint.
type TokenSet struct {
	AccessToken  string
	RefreshToken string // empty when the provider issues none
	TokenType    string
	Scopes       string    // as granted, if the provider reports it
	ExpiresAt    time.Time // zero for non-expiring tokens
}

// TokenExchanger is the network edge of the connect flow: it trades an
// authorization code or refresh token for fresh token material.
// Implementations bound every call with their own timeout.
type TokenExchanger interface {
	Exchange(ctx context.Context, provider, code, verifier string) (*TokenSet, error)
	Refresh(ctx context.Context, provider, refreshToken string) (*TokenSet, error)
}
