package metrics

import (
	"strconv"
	"time"

	"github.com/1cvibe/connectgate/internal/core"

	"github.com/gin-gonic/gin"
)

const (
	resultSuccess = "success"
	resultError   = "error"
)

// HTTPMetricsMiddleware creates a Gin middleware that records HTTP metrics
func HTTPMetricsMiddleware(m core.Recorder) gin.HandlerFunc {
	// Type assert to concrete Metrics for Prometheus access
	metrics, ok := m.(*Metrics)
	if !ok {
		// NoopMetrics or unknown implementation
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		// Skip metrics endpoint to avoid self-recording
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()

		metrics.HTTPRequestsInFlight.Inc()
		defer metrics.HTTPRequestsInFlight.Dec()

		c.Next()

		duration := time.Since(start).Seconds()
		method := c.Request.Method
		path := normalizePath(c.FullPath()) // Use route pattern, not actual path
		status := strconv.Itoa(c.Writer.Status())

		metrics.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
	}
}

// normalizePath converts the actual request path to route pattern
// Returns the route pattern (e.g., "/oauth/:provider/status") or "unknown" if no route matched
func normalizePath(fullPath string) string {
	if fullPath == "" {
		return "unknown"
	}
	return fullPath
}

func resultLabel(success bool) string {
	if success {
		return resultSuccess
	}
	return resultError
}

// RecordConnectStarted records a connect flow start
func (m *Metrics) RecordConnectStarted(provider string, success bool) {
	m.ConnectStartedTotal.WithLabelValues(provider, resultLabel(success)).Inc()
}

// RecordStateValidation records the outcome of a state token validation
func (m *Metrics) RecordStateValidation(result string) {
	m.StateValidationTotal.WithLabelValues(result).Inc()
}

// RecordOAuthCallback records a provider callback outcome
func (m *Metrics) RecordOAuthCallback(provider, result string) {
	m.OAuthCallbackTotal.WithLabelValues(provider, result).Inc()
}

// RecordTokenExchange records a token endpoint call
func (m *Metrics) RecordTokenExchange(
	provider, grantType string,
	duration time.Duration,
	success bool,
) {
	m.TokenExchangeTotal.WithLabelValues(provider, grantType, resultLabel(success)).Inc()
	m.TokenExchangeDuration.WithLabelValues(provider, grantType).Observe(duration.Seconds())
}

// RecordTokenRefresh records a connection refresh
func (m *Metrics) RecordTokenRefresh(provider string, success bool) {
	m.TokenRefreshTotal.WithLabelValues(provider, resultLabel(success)).Inc()
}

// RecordDisconnect records a disconnect request
func (m *Metrics) RecordDisconnect(provider string) {
	m.DisconnectTotal.WithLabelValues(provider).Inc()
}

// SetConnectionsCount sets the stored connection gauge for a provider
func (m *Metrics) SetConnectionsCount(provider string, count int) {
	m.ConnectionsActive.WithLabelValues(provider).Set(float64(count))
}

// RecordDatabaseQueryError records a database query error
func (m *Metrics) RecordDatabaseQueryError(operation string) {
	m.DatabaseQueryErrorsTotal.WithLabelValues(operation).Inc()
}
