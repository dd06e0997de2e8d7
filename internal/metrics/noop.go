package metrics

import (
	"time"

	"github.com/1cvibe/connectgate/internal/core"
)

// NoopMetrics is a no-operation implementation of core.Recorder
// All methods are empty and do nothing, providing zero overhead when metrics are disabled
type NoopMetrics struct{}

// Ensure NoopMetrics implements core.Recorder interface at compile time
var _ core.Recorder = (*NoopMetrics)(nil)

// NewNoopMetrics creates a new no-operation metrics recorder
func NewNoopMetrics() core.Recorder {
	return &NoopMetrics{}
}

func (n *NoopMetrics) RecordConnectStarted(provider string, success bool) {}
func (n *NoopMetrics) RecordStateValidation(result string)                {}
func (n *NoopMetrics) RecordOAuthCallback(provider, result string)        {}

func (n *NoopMetrics) RecordTokenExchange(
	provider, grantType string,
	duration time.Duration,
	success bool,
) {
}

func (n *NoopMetrics) RecordTokenRefresh(provider string, success bool) {}
func (n *NoopMetrics) RecordDisconnect(provider string)                 {}
func (n *NoopMetrics) SetConnectionsCount(provider string, count int)   {}
func (n *NoopMetrics) RecordDatabaseQueryError(operation string)        {}
