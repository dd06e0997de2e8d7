package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/1cvibe/connectgate/internal/auth"
	"github.com/1cvibe/connectgate/internal/core"
	"github.com/1cvibe/connectgate/internal/models"
	"github.com/1cvibe/connectgate/internal/store"
	"github.com/1cvibe/connectgate/internal/util"
)

// Callback outcomes reported to metrics
const callbackResultSuccess = "success"

// ProviderStatus is the user-facing state of one provider integration
type ProviderStatus struct {
	ProviderID  string     `json:"provider_id"`
	Name        string     `json:"name"`
	Connected   bool       `json:"connected"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	Expired     bool       `json:"expired"`
	Scopes      string     `json:"scopes,omitempty"`
	ConnectedAt *time.Time `json:"connected_at,omitempty"`
}

// CallbackRequest carries the query parameters a provider redirects back with
type CallbackRequest struct {
	Provider         string
	Code             string
	State            string
	Error            string
	ErrorDescription string
}

// CallbackResult is the outcome of a callback. On failure it is still
// returned once the state was consumed, so callers can honor ReturnTo.
type CallbackResult struct {
	UserID   string
	Status   ProviderStatus
	ReturnTo string
}

// IntegrationConfig holds the settings IntegrationService needs
type IntegrationConfig struct {
	// RedirectBase is the URL whose host an absolute return_to must match
	RedirectBase string
}

// IntegrationService orchestrates the connect, callback, status, refresh and
// disconnect operations for third-party providers.
type IntegrationService struct {
	registry    *auth.Registry
	states      *StateService
	connections *ConnectionService
	exchanger   core.TokenExchanger
	audit       *AuditService
	metrics     core.Recorder
	config      IntegrationConfig
	now         func() time.Time
}

func NewIntegrationService(
	registry *auth.Registry,
	states *StateService,
	connections *ConnectionService,
	exchanger core.TokenExchanger,
	audit *AuditService,
	m core.Recorder,
	cfg IntegrationConfig,
) *IntegrationService {
	return &IntegrationService{
		registry:    registry,
		states:      states,
		connections: connections,
		exchanger:   exchanger,
		audit:       audit,
		metrics:     m,
		config:      cfg,
		now:         time.Now,
	}
}

func (s *IntegrationService) describe(provider string) (*auth.Descriptor, error) {
	d, err := s.registry.Describe(provider)
	if err != nil {
		return nil, newError(KindUnsupportedProvider, "This provider is not supported", err)
	}
	return d, nil
}

func requireUser(userID string) error {
	if userID == "" {
		return newError(KindMissingParameter, "A signed-in user is required", nil)
	}
	return nil
}

func (s *IntegrationService) status(
	d *auth.Descriptor,
	conn *models.OAuthConnection,
) ProviderStatus {
	st := ProviderStatus{ProviderID: string(d.ID), Name: d.Name}
	if conn == nil {
		return st
	}
	st.Connected = true
	st.ExpiresAt = conn.ExpiresAt
	st.Expired = conn.IsExpired(s.now())
	st.Scopes = conn.Scopes
	if !conn.CreatedAt.IsZero() {
		createdAt := conn.CreatedAt
		st.ConnectedAt = &createdAt
	}
	return st
}

// ListProviders returns the status of every configured provider for userID,
// in configuration order.
func (s *IntegrationService) ListProviders(
	ctx context.Context,
	userID string,
) ([]ProviderStatus, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	conns, err := s.connections.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	byProvider := make(map[string]*models.OAuthConnection, len(conns))
	for i := range conns {
		byProvider[conns[i].Provider] = &conns[i]
	}

	descriptors := s.registry.List()
	statuses := make([]ProviderStatus, 0, len(descriptors))
	for _, d := range descriptors {
		statuses = append(statuses, s.status(d, byProvider[string(d.ID)]))
	}
	return statuses, nil
}

// GetStatus returns the status of a single provider for userID.
func (s *IntegrationService) GetStatus(
	ctx context.Context,
	userID, provider string,
) (*ProviderStatus, error) {
	d, err := s.describe(provider)
	if err != nil {
		return nil, err
	}
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	conn, err := s.connections.Get(ctx, userID, provider)
	if err != nil {
		if errors.Is(err, ErrNotConnected) {
			st := s.status(d, nil)
			return &st, nil
		}
		return nil, err
	}
	st := s.status(d, conn)
	return &st, nil
}

// StartConnect issues a state token and returns the provider authorization
// URL the browser should navigate to. returnTo is optional.
func (s *IntegrationService) StartConnect(
	ctx context.Context,
	userID, provider, returnTo string,
) (string, error) {
	d, err := s.describe(provider)
	if err != nil {
		return "", err
	}
	if err := requireUser(userID); err != nil {
		return "", err
	}
	if !util.IsRedirectSafe(returnTo, s.config.RedirectBase) {
		return "", newError(KindInvalidParameter, "return_to is not an allowed destination", nil)
	}

	verifier := auth.GenerateVerifier(d)
	state, err := s.states.Issue(ctx, userID, provider, IssueOptions{
		CodeVerifier: verifier,
		ReturnTo:     returnTo,
	})
	if err != nil {
		s.metrics.RecordConnectStarted(provider, false)
		return "", err
	}

	s.metrics.RecordConnectStarted(provider, true)
	s.audit.Log(ctx, AuditLogEntry{
		EventType:   models.EventConnectStarted,
		ActorUserID: userID,
		Provider:    provider,
		Action:      "Started connecting " + d.Name,
		Success:     true,
	})
	return auth.AuthorizationURL(d, state, verifier), nil
}

// HandleCallback completes a connect flow: it redeems the state, exchanges
// the code and stores the resulting tokens. Nothing is written unless the
// exchange succeeds.
func (s *IntegrationService) HandleCallback(
	ctx context.Context,
	req CallbackRequest,
) (*CallbackResult, error) {
	d, err := s.describe(req.Provider)
	if err != nil {
		return nil, err
	}

	result, err := s.completeCallback(ctx, d, req)
	if err != nil {
		e := AsError(err)
		s.metrics.RecordOAuthCallback(req.Provider, e.Kind.Code())
		entry := AuditLogEntry{
			EventType:   models.EventCallbackFailed,
			Severity:    models.SeverityWarning,
			Provider:    req.Provider,
			Action:      "Failed to connect " + d.Name,
			ErrorReason: e.Kind.Code(),
		}
		if result != nil {
			entry.ActorUserID = result.UserID
		}
		if e.Kind == KindStateNotFound || e.Kind == KindStateProviderMismatch {
			entry.EventType = models.EventStateReplayRejected
		}
		s.audit.Log(ctx, entry)
		return result, err
	}

	s.metrics.RecordOAuthCallback(req.Provider, callbackResultSuccess)
	s.audit.Log(ctx, AuditLogEntry{
		EventType:   models.EventConnectionCreated,
		ActorUserID: result.UserID,
		Provider:    req.Provider,
		Action:      "Connected " + d.Name,
		Success:     true,
	})
	return result, nil
}

func (s *IntegrationService) completeCallback(
	ctx context.Context,
	d *auth.Descriptor,
	req CallbackRequest,
) (*CallbackResult, error) {
	if req.State == "" {
		return nil, newError(KindMissingParameter, "The state parameter is missing", nil)
	}
	if req.Error == "" && req.Code == "" {
		return nil, newError(KindMissingParameter, "The code parameter is missing", nil)
	}

	pending, err := s.states.ValidateAndConsume(ctx, req.State, req.Provider)
	if err != nil {
		if pending == nil {
			return nil, err
		}
		return &CallbackResult{
			UserID:   pending.UserID,
			Status:   s.status(d, nil),
			ReturnTo: pending.ReturnTo,
		}, err
	}
	result := &CallbackResult{
		UserID:   pending.UserID,
		Status:   s.status(d, nil),
		ReturnTo: pending.ReturnTo,
	}

	if req.Error != "" {
		msg := req.ErrorDescription
		if msg == "" {
			msg = d.Name + " did not grant access (" + req.Error + ")"
		}
		return result, newError(KindAccessDenied, msg, nil)
	}

	tokens, err := s.exchanger.Exchange(ctx, req.Provider, req.Code, pending.CodeVerifier)
	if err != nil {
		return result, exchangeError(d, err)
	}

	conn, err := s.connections.Save(ctx, pending.UserID, req.Provider, tokens)
	if err != nil {
		return result, err
	}
	log.Printf("[OAuth] user %s connected %s", pending.UserID, req.Provider)

	result.Status = s.status(d, conn)
	return result, nil
}

// exchangeError classifies a token endpoint failure
func exchangeError(d *auth.Descriptor, err error) error {
	switch {
	case errors.Is(err, auth.ErrRequestCanceled):
		return newError(KindUpstreamTimeout, "The request was canceled before "+d.Name+" responded", err)
	case errors.Is(err, auth.ErrUpstreamTimeout):
		return newError(KindUpstreamTimeout, d.Name+" did not respond in time, please try again", err)
	case errors.Is(err, auth.ErrUnsupportedProvider):
		return newError(KindUnsupportedProvider, "This provider is not supported", err)
	default:
		return newError(KindTokenExchangeFailed, d.Name+" rejected the authorization", err)
	}
}

// Disconnect removes the user's connection. Disconnecting a provider that is
// not connected succeeds.
func (s *IntegrationService) Disconnect(ctx context.Context, userID, provider string) error {
	d, err := s.describe(provider)
	if err != nil {
		return err
	}
	if err := requireUser(userID); err != nil {
		return err
	}

	existed, err := s.connections.Delete(ctx, userID, provider)
	if err != nil {
		return err
	}
	if existed {
		s.metrics.RecordDisconnect(provider)
		s.audit.Log(ctx, AuditLogEntry{
			EventType:   models.EventConnectionRemoved,
			ActorUserID: userID,
			Provider:    provider,
			Action:      "Disconnected " + d.Name,
			Success:     true,
		})
	}
	return nil
}

// Refresh renews the access token with the stored refresh token. The token
// endpoint is called without holding any lock; the result is stored only if
// the connection was not removed or re-authorized in the meantime.
func (s *IntegrationService) Refresh(
	ctx context.Context,
	userID, provider string,
) (*ProviderStatus, error) {
	d, err := s.describe(provider)
	if err != nil {
		return nil, err
	}
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	conn, err := s.connections.Get(ctx, userID, provider)
	if err != nil {
		return nil, err
	}
	if conn.RefreshToken == "" {
		s.metrics.RecordTokenRefresh(provider, false)
		return nil, newError(
			KindTokenExchangeFailed,
			d.Name+" did not issue a refresh token, please connect again",
			nil,
		)
	}

	tokens, err := s.exchanger.Refresh(ctx, provider, conn.RefreshToken)
	if err != nil {
		classified := exchangeError(d, err)
		s.metrics.RecordTokenRefresh(provider, false)
		s.audit.Log(ctx, AuditLogEntry{
			EventType:   models.EventConnectionRefreshed,
			Severity:    models.SeverityWarning,
			ActorUserID: userID,
			Provider:    provider,
			Action:      "Failed to refresh " + d.Name + " token",
			ErrorReason: AsError(classified).Kind.Code(),
		})
		return nil, classified
	}

	updated, err := s.connections.ReplaceIfCurrent(ctx, userID, provider, conn.Version, tokens)
	if err != nil {
		s.metrics.RecordTokenRefresh(provider, false)
		return nil, err
	}

	s.metrics.RecordTokenRefresh(provider, true)
	s.audit.Log(ctx, AuditLogEntry{
		EventType:   models.EventConnectionRefreshed,
		ActorUserID: userID,
		Provider:    provider,
		Action:      "Refreshed " + d.Name + " token",
		Success:     true,
	})

	if updated.CreatedAt.IsZero() {
		updated.CreatedAt = conn.CreatedAt
	}
	st := s.status(d, updated)
	return &st, nil
}

// Activity returns one page of the user's own audit events, newest first.
func (s *IntegrationService) Activity(
	ctx context.Context,
	userID string,
	params store.PaginationParams,
	provider string,
) ([]models.AuditLog, store.PaginationResult, error) {
	if err := requireUser(userID); err != nil {
		return nil, store.PaginationResult{}, err
	}
	if provider != "" {
		if _, err := s.describe(provider); err != nil {
			return nil, store.PaginationResult{}, err
		}
	}

	logs, page, err := s.audit.GetAuditLogs(ctx, params, store.AuditLogFilters{
		ActorUserID: userID,
		Provider:    provider,
	})
	if err != nil {
		s.metrics.RecordDatabaseQueryError("list_audit_logs")
		return nil, store.PaginationResult{}, newError(
			KindStorageUnavailable,
			"Activity could not be loaded",
			err,
		)
	}
	return logs, page, nil
}
