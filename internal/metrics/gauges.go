package metrics

import (
	"context"
	"log"

	"github.com/1cvibe/connectgate/internal/core"
)

// UpdateConnectionGauges refreshes the per-provider connection gauge.
// Providers without stored connections are reported as zero so that a
// provider whose last user disconnected does not keep a stale value.
func UpdateConnectionGauges(
	ctx context.Context,
	store core.MetricsStore,
	m core.Recorder,
	providers []string,
) error {
	counts, err := store.CountConnectionsByProvider(ctx)
	if err != nil {
		log.Printf("[Metrics] Failed to count connections: %v", err)
		m.RecordDatabaseQueryError("count_connections")
		return err
	}

	for _, provider := range providers {
		m.SetConnectionsCount(provider, int(counts[provider]))
	}
	return nil
}
