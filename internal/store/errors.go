package store

import "errors"

var (
	// ErrRecordNotFound wraps GORM's not found error for consistency
	ErrRecordNotFound = errors.New("record not found")

	// ErrVersionConflict is returned by ReplaceConnectionTokens when the row
	// was replaced or deleted by a concurrent request (0 rows updated).
	ErrVersionConflict = errors.New("connection was modified concurrently")
)
