package models

import (
	"context"

	"github.com/gin-gonic/gin"
)

type userIDKey struct{}

// SetUserIDContext returns a copy of ctx carrying the authenticated user id.
func SetUserIDContext(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey{}, userID)
}

// GetUserIDFromContext extracts the authenticated user id from context.
// It checks the Gin context's "user_id" key set by the RequireUser middleware
// before falling back to the request context value.
// Returns empty string if the user cannot be determined.
func GetUserIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if ginCtx, ok := ctx.(*gin.Context); ok {
		if userID := ginCtx.GetString("user_id"); userID != "" {
			return userID
		}
		if ginCtx.Request != nil {
			ctx = ginCtx.Request.Context()
		}
	}

	if userID, ok := ctx.Value(userIDKey{}).(string); ok {
		return userID
	}
	return ""
}
