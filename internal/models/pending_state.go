package models

import "time"

// PendingState is an outstanding anti-forgery state issued by a connect request.
// It lives in the state store, never in the database.
type PendingState struct {
	UserID       string    `json:"user_id"`
	Provider     string    `json:"provider"`
	CodeVerifier string    `json:"code_verifier,omitempty"` // PKCE, only when the provider uses it
	ReturnTo     string    `json:"return_to,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	ExpiresAt    time.Time `json:"expires_at"`
}

// IsExpired reports whether the state is past its time-to-live.
func (p *PendingState) IsExpired(now time.Time) bool {
	return !now.Before(p.ExpiresAt)
}
