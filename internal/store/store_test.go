package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/1cvibe/connectgate/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestStoreWithSQLite tests store operations with SQLite
func TestStoreWithSQLite(t *testing.T) {
	testBasicOperations(t, "sqlite", nil)
}

// TestStoreWithPostgres tests store operations with PostgreSQL
func TestStoreWithPostgres(t *testing.T) {
	// Skip if running short tests or Docker is not available
	if testing.Short() {
		t.Skip("Skipping PostgreSQL integration test in short mode")
	}

	// Recover from panic if Docker is not available
	defer func() {
		if r := recover(); r != nil {
			t.Skipf("Skipping PostgreSQL test: Docker not available (panic: %v)", r)
		}
	}()

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		t.Skipf("Skipping PostgreSQL test: Docker not available (%v)", err)
		return
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	testBasicOperations(t, "postgres", pgContainer)
}

// createFreshStore creates a new store instance for test isolation
// For SQLite, each call creates a fresh :memory: database
// For PostgreSQL, each call creates a uniquely-named database in the container
func createFreshStore(t *testing.T, driver string, pgContainer *postgres.PostgresContainer) *Store {
	t.Helper()

	var dsn string
	switch driver {
	case "sqlite":
		dsn = ":memory:"
	case "postgres":
		dbName := "test_" + uuid.New().String()[:8]
		ctx := context.Background()

		createDBCmd := fmt.Sprintf("CREATE DATABASE %s", dbName)
		_, _, err := pgContainer.Exec(
			ctx,
			[]string{"psql", "-U", "testuser", "-d", "testdb", "-c", createDBCmd},
		)
		require.NoError(t, err)

		host, err := pgContainer.Host(ctx)
		require.NoError(t, err)
		port, err := pgContainer.MappedPort(ctx, "5432")
		require.NoError(t, err)
		dsn = fmt.Sprintf(
			"host=%s port=%s user=testuser password=testpass dbname=%s sslmode=disable",
			host, port.Port(), dbName,
		)

		t.Cleanup(func() {
			dropDBCmd := fmt.Sprintf("DROP DATABASE IF EXISTS %s WITH (FORCE)", dbName)
			_, _, _ = pgContainer.Exec(
				context.Background(),
				[]string{"psql", "-U", "testuser", "-d", "testdb", "-c", dropDBCmd},
			)
		})
	default:
		t.Fatalf("unsupported driver: %s", driver)
	}

	store, err := New(context.Background(), driver, dsn)
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func newTestConnection(userID, provider, accessToken string) *models.OAuthConnection {
	expiresAt := time.Now().Add(time.Hour).UTC()
	return &models.OAuthConnection{
		ID:           uuid.New().String(),
		UserID:       userID,
		Provider:     provider,
		AccessToken:  accessToken,
		RefreshToken: "refresh-" + accessToken,
		TokenType:    "bearer",
		Scopes:       "repo",
		ExpiresAt:    &expiresAt,
	}
}

// testBasicOperations tests basic CRUD operations on the store
// Each subtest creates a fresh store instance for isolation
func testBasicOperations(t *testing.T, driver string, pgContainer *postgres.PostgresContainer) {
	ctx := context.Background()

	t.Run("UpsertAndGetConnection", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)

		conn := newTestConnection("42", "github", "sealed-1")
		require.NoError(t, store.UpsertConnection(ctx, conn))

		retrieved, err := store.GetConnection(ctx, "42", "github")
		require.NoError(t, err)
		assert.Equal(t, conn.ID, retrieved.ID)
		assert.Equal(t, "sealed-1", retrieved.AccessToken)
		assert.Equal(t, "refresh-sealed-1", retrieved.RefreshToken)
		assert.Equal(t, int64(1), retrieved.Version)
		require.NotNil(t, retrieved.ExpiresAt)
		assert.WithinDuration(t, *conn.ExpiresAt, *retrieved.ExpiresAt, time.Second)
	})

	t.Run("GetMissingConnection", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)

		_, err := store.GetConnection(ctx, "42", "gitlab")
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("UpsertReplacesExistingRow", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)

		first := newTestConnection("42", "github", "sealed-1")
		require.NoError(t, store.UpsertConnection(ctx, first))

		second := newTestConnection("42", "github", "sealed-2")
		second.RefreshToken = ""
		second.ExpiresAt = nil
		require.NoError(t, store.UpsertConnection(ctx, second))

		retrieved, err := store.GetConnection(ctx, "42", "github")
		require.NoError(t, err)
		assert.Equal(t, first.ID, retrieved.ID, "existing row keeps its id")
		assert.Equal(t, "sealed-2", retrieved.AccessToken)
		assert.Empty(t, retrieved.RefreshToken)
		assert.Nil(t, retrieved.ExpiresAt)
		assert.Equal(t, int64(2), retrieved.Version)

		conns, err := store.ListConnectionsByUser(ctx, "42")
		require.NoError(t, err)
		assert.Len(t, conns, 1)
	})

	t.Run("ConnectionsAreKeyedByUserAndProvider", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)

		require.NoError(t, store.UpsertConnection(ctx, newTestConnection("42", "github", "a")))
		require.NoError(t, store.UpsertConnection(ctx, newTestConnection("42", "jira", "b")))
		require.NoError(t, store.UpsertConnection(ctx, newTestConnection("7", "github", "c")))

		conns, err := store.ListConnectionsByUser(ctx, "42")
		require.NoError(t, err)
		require.Len(t, conns, 2)
		assert.Equal(t, "github", conns[0].Provider)
		assert.Equal(t, "jira", conns[1].Provider)

		counts, err := store.CountConnectionsByProvider(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), counts["github"])
		assert.Equal(t, int64(1), counts["jira"])
		assert.Zero(t, counts["gitlab"])
	})

	t.Run("DeleteConnectionIsIdempotent", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)

		require.NoError(t, store.UpsertConnection(ctx, newTestConnection("42", "gitlab", "a")))

		deleted, err := store.DeleteConnection(ctx, "42", "gitlab")
		require.NoError(t, err)
		assert.True(t, deleted)

		deleted, err = store.DeleteConnection(ctx, "42", "gitlab")
		require.NoError(t, err)
		assert.False(t, deleted)

		_, err = store.GetConnection(ctx, "42", "gitlab")
		assert.ErrorIs(t, err, ErrRecordNotFound)
	})

	t.Run("ReplaceConnectionTokens", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)

		require.NoError(t, store.UpsertConnection(ctx, newTestConnection("42", "jira", "old")))
		current, err := store.GetConnection(ctx, "42", "jira")
		require.NoError(t, err)

		refreshed := newTestConnection("42", "jira", "new")
		require.NoError(t, store.ReplaceConnectionTokens(ctx, refreshed, current.Version))

		retrieved, err := store.GetConnection(ctx, "42", "jira")
		require.NoError(t, err)
		assert.Equal(t, "new", retrieved.AccessToken)
		assert.Equal(t, current.Version+1, retrieved.Version)

		// Stale version is rejected
		err = store.ReplaceConnectionTokens(ctx, newTestConnection("42", "jira", "stale"), current.Version)
		assert.ErrorIs(t, err, ErrVersionConflict)

		// Deleted row is rejected
		_, err = store.DeleteConnection(ctx, "42", "jira")
		require.NoError(t, err)
		err = store.ReplaceConnectionTokens(ctx, refreshed, retrieved.Version)
		assert.ErrorIs(t, err, ErrVersionConflict)
	})

	t.Run("AuditLogs", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)

		now := time.Now()
		var entries []*models.AuditLog
		for i := range 5 {
			entries = append(entries, &models.AuditLog{
				ID:          uuid.New().String(),
				EventType:   models.EventConnectionCreated,
				EventTime:   now.Add(time.Duration(i) * time.Second),
				Severity:    models.SeverityInfo,
				ActorUserID: "42",
				Provider:    "github",
				Action:      "Connected github",
				Details:     models.AuditDetails{"scopes": "repo"},
				Success:     true,
				CreatedAt:   now.Add(time.Duration(i) * time.Second),
			})
		}
		entries = append(entries, &models.AuditLog{
			ID:          uuid.New().String(),
			EventType:   models.EventCallbackFailed,
			EventTime:   now,
			Severity:    models.SeverityWarning,
			ActorUserID: "7",
			Provider:    "jira",
			Action:      "Callback failed",
			ErrorReason: "state_expired",
			CreatedAt:   now.Add(-48 * time.Hour),
		})
		require.NoError(t, store.CreateAuditLogBatch(ctx, entries))

		logs, page, err := store.GetAuditLogsPaginated(
			ctx,
			NewPaginationParams(1, 2),
			AuditLogFilters{ActorUserID: "42"},
		)
		require.NoError(t, err)
		assert.Len(t, logs, 2)
		assert.Equal(t, int64(5), page.Total)
		assert.Equal(t, 3, page.TotalPages)
		assert.True(t, page.HasNext)
		assert.False(t, page.HasPrev)
		assert.Equal(t, "repo", logs[0].Details["scopes"])
		assert.True(t, logs[0].EventTime.After(logs[1].EventTime), "newest first")

		failed := false
		logs, _, err = store.GetAuditLogsPaginated(
			ctx,
			NewPaginationParams(1, 10),
			AuditLogFilters{Success: &failed, Provider: "jira"},
		)
		require.NoError(t, err)
		require.Len(t, logs, 1)
		assert.Equal(t, "state_expired", logs[0].ErrorReason)

		removed, err := store.DeleteOldAuditLogs(ctx, now.Add(-24*time.Hour))
		require.NoError(t, err)
		assert.Equal(t, int64(1), removed)
	})

	t.Run("Health", func(t *testing.T) {
		store := createFreshStore(t, driver, pgContainer)
		assert.NoError(t, store.Health(ctx))
	})
}

// TestDriverFactory tests the driver factory pattern
func TestDriverFactory(t *testing.T) {
	tests := []struct {
		name        string
		driver      string
		dsn         string
		expectError bool
	}{
		{
			name:        "SQLite valid",
			driver:      "sqlite",
			dsn:         ":memory:",
			expectError: false,
		},
		{
			name:        "Unsupported driver",
			driver:      "mysql",
			dsn:         "user:pass@tcp(localhost:3306)/dbname",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dialector, err := GetDialector(tt.driver, tt.dsn)
			if tt.expectError {
				assert.Error(t, err)
				assert.Nil(t, dialector)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, dialector)
			}
		})
	}
}

func TestSupportedDrivers(t *testing.T) {
	assert.Equal(t, []string{"postgres", "sqlite"}, SupportedDrivers())

	_, err := GetDialector("mysql", "dsn")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must be: postgres, sqlite")
}

func TestIsInMemorySQLite(t *testing.T) {
	assert.True(t, isInMemorySQLite("sqlite", ":memory:"))
	assert.True(t, isInMemorySQLite("sqlite", "file::memory:?cache=shared"))
	assert.False(t, isInMemorySQLite("sqlite", "connectgate.db"))
	assert.False(t, isInMemorySQLite("postgres", ":memory:"))
}

func TestCalculatePagination(t *testing.T) {
	page := CalculatePagination(0, 1, 10)
	assert.Equal(t, 0, page.TotalPages)
	assert.False(t, page.HasNext)

	page = CalculatePagination(21, 9, 10)
	assert.Equal(t, 3, page.TotalPages)
	assert.Equal(t, 3, page.CurrentPage, "page is clamped to the last page")
	assert.True(t, page.HasPrev)

	params := NewPaginationParams(0, 500)
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 50, params.PageSize)
}

// BenchmarkStoreOperations benchmarks basic store operations
func BenchmarkStoreOperations(b *testing.B) {
	store, err := New(context.Background(), "sqlite", ":memory:")
	require.NoError(b, err)
	ctx := context.Background()

	b.Run("UpsertConnection", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			_ = store.UpsertConnection(ctx, newTestConnection(fmt.Sprintf("user%d", i%100), "github", "t"))
		}
	})

	b.Run("GetConnection", func(b *testing.B) {
		_ = store.UpsertConnection(ctx, newTestConnection("bench", "github", "t"))

		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			_, _ = store.GetConnection(ctx, "bench", "github")
		}
	})
}
