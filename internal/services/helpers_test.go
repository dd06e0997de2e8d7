package services

import (
	"context"
	"testing"

	"github.com/1cvibe/connectgate/internal/metrics"
	"github.com/1cvibe/connectgate/internal/store"
	"github.com/1cvibe/connectgate/internal/util"

	"github.com/stretchr/testify/require"
)

const testSealingKey = "test-sealing-key-0123456789abcdef"

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func newTestConnectionService(t *testing.T, s *store.Store) *ConnectionService {
	t.Helper()
	sealer, err := util.NewTokenSealer(testSealingKey)
	require.NoError(t, err)
	return NewConnectionService(s, sealer, metrics.NewNoopMetrics())
}
