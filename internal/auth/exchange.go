package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/1cvibe/connectgate/internal/core"

	"golang.org/x/oauth2"
)

// Grant types reported to metrics
const (
	GrantAuthorizationCode = "authorization_code"
	GrantRefreshToken      = "refresh_token"
)

// Compile-time interface check.
var _ core.TokenExchanger = (*Exchanger)(nil)

// Exchanger calls provider token endpoints. Every call is bounded by its own
// timeout, independent of the state token lifetime.
type Exchanger struct {
	registry   *Registry
	httpClient *http.Client
	timeout    time.Duration
	metrics    core.Recorder
}

// NewExchanger creates an Exchanger that sends requests through httpClient.
func NewExchanger(
	registry *Registry,
	httpClient *http.Client,
	timeout time.Duration,
	m core.Recorder,
) *Exchanger {
	return &Exchanger{
		registry:   registry,
		httpClient: httpClient,
		timeout:    timeout,
		metrics:    m,
	}
}

// Exchange trades an authorization code (and PKCE verifier, if any) for tokens.
func (e *Exchanger) Exchange(
	ctx context.Context,
	provider, code, verifier string,
) (*core.TokenSet, error) {
	d, err := e.registry.Describe(provider)
	if err != nil {
		return nil, err
	}

	ctx, cancel := e.withClient(ctx)
	defer cancel()

	var opts []oauth2.AuthCodeOption
	if verifier != "" {
		opts = append(opts, oauth2.VerifierOption(verifier))
	}

	start := time.Now()
	token, err := d.oauth2Config().Exchange(ctx, code, opts...)
	e.metrics.RecordTokenExchange(provider, GrantAuthorizationCode, time.Since(start), err == nil)
	if err != nil {
		return nil, classifyTokenError(ctx, provider, err)
	}
	return tokenSetFrom(token), nil
}

// Refresh trades a refresh token for a new access token.
// If the provider does not rotate refresh tokens, the old one is kept.
func (e *Exchanger) Refresh(
	ctx context.Context,
	provider, refreshToken string,
) (*core.TokenSet, error) {
	d, err := e.registry.Describe(provider)
	if err != nil {
		return nil, err
	}
	if refreshToken == "" {
		return nil, fmt.Errorf("%w: no refresh token on record", ErrTokenExchangeFailed)
	}

	ctx, cancel := e.withClient(ctx)
	defer cancel()

	start := time.Now()
	token, err := d.oauth2Config().
		TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken}).
		Token()
	e.metrics.RecordTokenExchange(provider, GrantRefreshToken, time.Since(start), err == nil)
	if err != nil {
		return nil, classifyTokenError(ctx, provider, err)
	}

	set := tokenSetFrom(token)
	if set.RefreshToken == "" {
		set.RefreshToken = refreshToken
	}
	return set, nil
}

// withClient bounds ctx by the exchange timeout and routes x/oauth2 through
// the shared HTTP client.
func (e *Exchanger) withClient(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	if e.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, e.httpClient)
	}
	return ctx, cancel
}

// classifyTokenError maps a token endpoint failure to ErrRequestCanceled,
// ErrUpstreamTimeout or ErrTokenExchangeFailed. Provider error payloads are
// logged, never returned verbatim.
func classifyTokenError(ctx context.Context, provider string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
		log.Printf("[OAuth] %s token request canceled by caller", provider)
		return fmt.Errorf("%w: %s", ErrRequestCanceled, provider)
	}

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		log.Printf("[OAuth] %s token endpoint timed out: %v", provider, err)
		return fmt.Errorf("%w: %s", ErrUpstreamTimeout, provider)
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		status := 0
		if retrieveErr.Response != nil {
			status = retrieveErr.Response.StatusCode
		}
		log.Printf("[OAuth] %s token endpoint rejected request: status=%d error=%s description=%s",
			provider, status, retrieveErr.ErrorCode, retrieveErr.ErrorDescription)
		if retrieveErr.ErrorCode != "" {
			return fmt.Errorf("%w: %s", ErrTokenExchangeFailed, retrieveErr.ErrorCode)
		}
		return fmt.Errorf("%w: status %d", ErrTokenExchangeFailed, status)
	}

	log.Printf("[OAuth] %s token exchange failed: %v", provider, err)
	return fmt.Errorf("%w: %s", ErrTokenExchangeFailed, provider)
}

func tokenSetFrom(token *oauth2.Token) *core.TokenSet {
	set := &core.TokenSet{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    token.Type(),
		ExpiresAt:    token.Expiry,
	}
	if scope, ok := token.Extra("scope").(string); ok {
		set.Scopes = scope
	}
	return set
}
