package util

import (
	"context"

	"github.com/gin-gonic/gin"
)

type (
	clientIPKey  struct{}
	userAgentKey struct{}
	requestKey   struct{}
)

type requestInfo struct {
	method string
	path   string
}

// IPMiddleware copies the client IP, user agent and request line into the request context
// so that services which only see a context.Context can attribute audit events.
func IPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Gin's ClientIP() handles X-Forwarded-For and other headers
		ctx := SetIPContext(c.Request.Context(), c.ClientIP())
		ctx = SetUserAgentContext(ctx, c.Request.UserAgent())
		ctx = SetRequestContext(ctx, c.Request.Method, c.Request.URL.Path)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// SetIPContext returns a copy of ctx carrying the client IP
func SetIPContext(ctx context.Context, ip string) context.Context {
	if ip == "" {
		return ctx
	}
	return context.WithValue(ctx, clientIPKey{}, ip)
}

// GetIPFromContext extracts the client IP address from the context
func GetIPFromContext(ctx context.Context) string {
	if ginCtx, ok := ctx.(*gin.Context); ok {
		return ginCtx.ClientIP()
	}
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok {
		return ip
	}
	return ""
}

// SetUserAgentContext returns a copy of ctx carrying the client user agent
func SetUserAgentContext(ctx context.Context, userAgent string) context.Context {
	if userAgent == "" {
		return ctx
	}
	return context.WithValue(ctx, userAgentKey{}, userAgent)
}

// GetUserAgentFromContext extracts the client user agent from the context
func GetUserAgentFromContext(ctx context.Context) string {
	if ginCtx, ok := ctx.(*gin.Context); ok && ginCtx.Request != nil {
		return ginCtx.Request.UserAgent()
	}
	if ua, ok := ctx.Value(userAgentKey{}).(string); ok {
		return ua
	}
	return ""
}

// SetRequestContext returns a copy of ctx carrying the request method and path
func SetRequestContext(ctx context.Context, method, path string) context.Context {
	return context.WithValue(ctx, requestKey{}, requestInfo{method: method, path: path})
}

// GetRequestFromContext extracts the request method and path from the context
func GetRequestFromContext(ctx context.Context) (method, path string) {
	if info, ok := ctx.Value(requestKey{}).(requestInfo); ok {
		return info.method, info.path
	}
	return "", ""
}
