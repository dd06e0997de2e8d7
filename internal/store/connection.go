package store

import (
	"context"
	"errors"
	"time"

	"github.com/1cvibe/connectgate/internal/core"
	"github.com/1cvibe/connectgate/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Compile-time interface check.
var _ core.MetricsStore = (*Store)(nil)

// tokenColumns are overwritten on every reconnect or refresh
var tokenColumns = []string{
	"access_token",
	"refresh_token",
	"token_type",
	"scopes",
	"expires_at",
	"updated_at",
}

// GetConnection finds the connection for a user and provider
func (s *Store) GetConnection(
	ctx context.Context,
	userID, provider string,
) (*models.OAuthConnection, error) {
	var conn models.OAuthConnection
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND provider = ?", userID, provider).
		First(&conn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, err
	}
	return &conn, nil
}

// UpsertConnection inserts the connection or, if one already exists for the
// same user and provider, replaces its token material in a single statement.
// The existing row keeps its ID and CreatedAt; its version is bumped.
func (s *Store) UpsertConnection(ctx context.Context, conn *models.OAuthConnection) error {
	if conn.Version == 0 {
		conn.Version = 1
	}

	updates := clause.AssignmentColumns(tokenColumns)
	updates = append(updates, clause.Assignment{
		Column: clause.Column{Name: "version"},
		Value:  gorm.Expr("oauth_connections.version + 1"),
	})

	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "provider"}},
			DoUpdates: updates,
		}).
		Create(conn).Error
}

// ReplaceConnectionTokens swaps in new token material only if the row is still
// at expectedVersion. Returns ErrVersionConflict if the row was replaced or deleted.
func (s *Store) ReplaceConnectionTokens(
	ctx context.Context,
	conn *models.OAuthConnection,
	expectedVersion int64,
) error {
	result := s.db.WithContext(ctx).
		Model(&models.OAuthConnection{}).
		Where("user_id = ? AND provider = ? AND version = ?",
			conn.UserID, conn.Provider, expectedVersion).
		Updates(map[string]any{
			"access_token":  conn.AccessToken,
			"refresh_token": conn.RefreshToken,
			"token_type":    conn.TokenType,
			"scopes":        conn.Scopes,
			"expires_at":    conn.ExpiresAt,
			"updated_at":    time.Now(),
			"version":       gorm.Expr("version + 1"),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrVersionConflict
	}
	return nil
}

// DeleteConnection removes the connection for a user and provider.
// Reports whether a row existed; deleting a missing row is not an error.
func (s *Store) DeleteConnection(ctx context.Context, userID, provider string) (bool, error) {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND provider = ?", userID, provider).
		Delete(&models.OAuthConnection{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ListConnectionsByUser returns all connections for a user
func (s *Store) ListConnectionsByUser(
	ctx context.Context,
	userID string,
) ([]models.OAuthConnection, error) {
	var conns []models.OAuthConnection
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("provider ASC").
		Find(&conns).Error
	return conns, err
}

// CountConnectionsByProvider returns the number of connections per provider
func (s *Store) CountConnectionsByProvider(ctx context.Context) (map[string]int64, error) {
	var rows []struct {
		Provider string
		Count    int64
	}
	err := s.db.WithContext(ctx).
		Model(&models.OAuthConnection{}).
		Select("provider, count(*) AS count").
		Group("provider").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Provider] = row.Count
	}
	return counts, nil
}
