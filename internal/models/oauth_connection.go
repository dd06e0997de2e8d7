package models

import (
	"time"
)

// OAuthConnection is a user's connection to one third-party provider.
// At most one row exists per (user, provider); disconnect deletes the row.
type OAuthConnection struct {
	ID       string `gorm:"primaryKey;type:varchar(36)"`
	UserID   string `gorm:"type:varchar(255);not null;uniqueIndex:idx_oauth_user_provider,priority:1"`
	Provider string `gorm:"type:varchar(32);not null;uniqueIndex:idx_oauth_user_provider,priority:2;index"` // "github", "gitlab", "jira"

	// Token material, sealed with the token encryption key
	AccessToken  string `gorm:"type:text;not null"`
	RefreshToken string `gorm:"type:text"` // empty when the provider issued none
	TokenType    string `gorm:"type:varchar(32)"`
	Scopes       string `gorm:"type:text"`

	// Nil for providers that issue non-expiring tokens
	ExpiresAt *time.Time

	// Bumped on every write; guards refresh against concurrent reconnects
	Version int64 `gorm:"not null;default:1"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the table name used by OAuthConnection to `oauth_connections`
func (OAuthConnection) TableName() string {
	return "oauth_connections"
}

// IsExpired reports whether the access token has passed its expiry.
func (c *OAuthConnection) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && !now.Before(*c.ExpiresAt)
}
