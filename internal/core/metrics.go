package core

import (
	"context"
	"time"
)

// Recorder defines the interface for recording application metrics.
// Implementations include Metrics (Prometheus-based) and NoopMetrics (no-op).
type Recorder interface {
	// Connect flow
	RecordConnectStarted(provider string, success bool)
	RecordStateValidation(result string)
	RecordOAuthCallback(provider, result string)

	// Token endpoint
	RecordTokenExchange(provider, grantType string, duration time.Duration, success bool)
	RecordTokenRefresh(provider string, success bool)

	// Connection lifecycle
	RecordDisconnect(provider string)

	// Gauge Setters (for periodic updates)
	SetConnectionsCount(provider string, count int)

	// Database Operations
	RecordDatabaseQueryError(operation string)
}

// MetricsStore defines the DB operations needed by the gauge update job.
type MetricsStore interface {
	CountConnectionsByProvider(ctx context.Context) (map[string]int64, error)
}
