package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/1cvibe/connectgate/internal/core"
	"github.com/1cvibe/connectgate/internal/models"
	"github.com/1cvibe/connectgate/internal/store"
	"github.com/1cvibe/connectgate/internal/util"

	"github.com/google/uuid"
)

// ConnectionService owns the Connection Store. Token material is sealed
// before it reaches the database and opened only for callers that need it.
type ConnectionService struct {
	store   *store.Store
	sealer  *util.TokenSealer
	locks   keyLocks
	metrics core.Recorder
}

func NewConnectionService(
	s *store.Store,
	sealer *util.TokenSealer,
	m core.Recorder,
) *ConnectionService {
	return &ConnectionService{
		store:   s,
		sealer:  sealer,
		metrics: m,
	}
}

func sealBinding(userID, provider, field string) string {
	return fmt.Sprintf("%s/%s/%s", userID, provider, field)
}

// Get returns the connection with its tokens opened.
func (s *ConnectionService) Get(
	ctx context.Context,
	userID, provider string,
) (*models.OAuthConnection, error) {
	conn, err := s.store.GetConnection(ctx, userID, provider)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			return nil, newError(KindNotConnected, "This provider is not connected", nil)
		}
		return nil, s.storageError("get_connection", err)
	}

	access, err := s.sealer.Open(conn.AccessToken, sealBinding(userID, provider, "access"))
	if err != nil {
		return nil, newError(KindInternal, "Stored credentials could not be read", err)
	}
	refresh, err := s.sealer.Open(conn.RefreshToken, sealBinding(userID, provider, "refresh"))
	if err != nil {
		return nil, newError(KindInternal, "Stored credentials could not be read", err)
	}

	conn.AccessToken = access
	conn.RefreshToken = refresh
	return conn, nil
}

// Save creates or replaces the connection for (userID, provider) with the
// given tokens. The newest authorization always wins.
func (s *ConnectionService) Save(
	ctx context.Context,
	userID, provider string,
	tokens *core.TokenSet,
) (*models.OAuthConnection, error) {
	conn, err := s.sealed(userID, provider, tokens)
	if err != nil {
		return nil, err
	}
	conn.ID = uuid.New().String()

	unlock := s.locks.lock(userID, provider)
	defer unlock()

	if err := s.store.UpsertConnection(ctx, conn); err != nil {
		return nil, s.storageError("upsert_connection", err)
	}

	// On conflict the existing row keeps its id, created_at and bumped version
	stored, err := s.store.GetConnection(ctx, userID, provider)
	if err != nil {
		return nil, s.storageError("get_connection", err)
	}
	return stripTokens(stored), nil
}

// ReplaceIfCurrent stores refreshed tokens only if the connection is still at
// expectedVersion. A connection deleted in the meantime yields NotConnected;
// one replaced by a newer authorization is returned unchanged.
func (s *ConnectionService) ReplaceIfCurrent(
	ctx context.Context,
	userID, provider string,
	expectedVersion int64,
	tokens *core.TokenSet,
) (*models.OAuthConnection, error) {
	conn, err := s.sealed(userID, provider, tokens)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(userID, provider)
	defer unlock()

	err = s.store.ReplaceConnectionTokens(ctx, conn, expectedVersion)
	if err == nil {
		conn.Version = expectedVersion + 1
		return stripTokens(conn), nil
	}
	if !errors.Is(err, store.ErrVersionConflict) {
		return nil, s.storageError("replace_connection", err)
	}

	current, err := s.store.GetConnection(ctx, userID, provider)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			log.Printf("[OAuth] discarding refreshed %s tokens: connection was removed", provider)
			return nil, newError(KindNotConnected, "This provider was disconnected", nil)
		}
		return nil, s.storageError("get_connection", err)
	}
	log.Printf("[OAuth] discarding refreshed %s tokens: connection was re-authorized", provider)
	return stripTokens(current), nil
}

// Delete removes the connection. Reports whether one existed.
func (s *ConnectionService) Delete(ctx context.Context, userID, provider string) (bool, error) {
	unlock := s.locks.lock(userID, provider)
	defer unlock()

	existed, err := s.store.DeleteConnection(ctx, userID, provider)
	if err != nil {
		return false, s.storageError("delete_connection", err)
	}
	return existed, nil
}

// ListByUser returns the user's connections without token material.
func (s *ConnectionService) ListByUser(
	ctx context.Context,
	userID string,
) ([]models.OAuthConnection, error) {
	conns, err := s.store.ListConnectionsByUser(ctx, userID)
	if err != nil {
		return nil, s.storageError("list_connections", err)
	}
	for i := range conns {
		conns[i].AccessToken = ""
		conns[i].RefreshToken = ""
	}
	return conns, nil
}

func (s *ConnectionService) sealed(
	userID, provider string,
	tokens *core.TokenSet,
) (*models.OAuthConnection, error) {
	if tokens == nil || tokens.AccessToken == "" {
		return nil, newError(
			KindTokenExchangeFailed,
			"The provider did not return an access token",
			nil,
		)
	}

	access, err := s.sealer.Seal(tokens.AccessToken, sealBinding(userID, provider, "access"))
	if err != nil {
		return nil, newError(KindInternal, "Credentials could not be protected", err)
	}
	refresh, err := s.sealer.Seal(tokens.RefreshToken, sealBinding(userID, provider, "refresh"))
	if err != nil {
		return nil, newError(KindInternal, "Credentials could not be protected", err)
	}

	conn := &models.OAuthConnection{
		UserID:       userID,
		Provider:     provider,
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    tokens.TokenType,
		Scopes:       tokens.Scopes,
		UpdatedAt:    time.Now(),
	}
	if !tokens.ExpiresAt.IsZero() {
		expiresAt := tokens.ExpiresAt
		conn.ExpiresAt = &expiresAt
	}
	return conn, nil
}

func (s *ConnectionService) storageError(operation string, err error) error {
	s.metrics.RecordDatabaseQueryError(operation)
	log.Printf("[Store] %s failed: %v", operation, err)
	return newError(KindStorageUnavailable, "Connection storage is unavailable", err)
}

// stripTokens drops sealed token material from a record returned to callers
func stripTokens(conn *models.OAuthConnection) *models.OAuthConnection {
	out := *conn
	out.AccessToken = ""
	out.RefreshToken = ""
	return &out
}
