package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/1cvibe/connectgate/internal/mocks"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestInit(t *testing.T) {
	m := Init(true)
	assert.NotNil(t, m)

	metrics, ok := m.(*Metrics)
	assert.True(t, ok, "Init(true) should return *Metrics")
	assert.NotNil(t, metrics.ConnectStartedTotal)
	assert.NotNil(t, metrics.OAuthCallbackTotal)
	assert.NotNil(t, metrics.TokenExchangeTotal)
	assert.NotNil(t, metrics.HTTPRequestsTotal)

	// Second call returns the same registered instance
	assert.Same(t, metrics, Init(true))
}

func TestInitNoop(t *testing.T) {
	m := Init(false)
	assert.NotNil(t, m)

	_, ok := m.(*NoopMetrics)
	assert.True(t, ok, "Init(false) should return *NoopMetrics")
}

func TestRecordConnectFlow(t *testing.T) {
	m := Init(true).(*Metrics)

	before := testutil.ToFloat64(m.OAuthCallbackTotal.WithLabelValues("github", "state_expired"))
	m.RecordConnectStarted("github", true)
	m.RecordStateValidation("expired")
	m.RecordOAuthCallback("github", "state_expired")
	after := testutil.ToFloat64(m.OAuthCallbackTotal.WithLabelValues("github", "state_expired"))

	assert.Equal(t, before+1, after)
}

func TestRecordTokenExchange(t *testing.T) {
	m := Init(true).(*Metrics)

	before := testutil.ToFloat64(m.TokenExchangeTotal.WithLabelValues("jira", "refresh_token", "error"))
	m.RecordTokenExchange("jira", "refresh_token", 150*time.Millisecond, false)
	after := testutil.ToFloat64(m.TokenExchangeTotal.WithLabelValues("jira", "refresh_token", "error"))

	assert.Equal(t, before+1, after)
}

func TestSetConnectionsCount(t *testing.T) {
	m := Init(true).(*Metrics)

	m.SetConnectionsCount("gitlab", 7)
	assert.Equal(t, float64(7), testutil.ToFloat64(m.ConnectionsActive.WithLabelValues("gitlab")))

	m.SetConnectionsCount("gitlab", 0)
	assert.Equal(t, float64(0), testutil.ToFloat64(m.ConnectionsActive.WithLabelValues("gitlab")))
}

func TestNoopMetrics(t *testing.T) {
	m := NewNoopMetrics()

	// None of these may panic
	m.RecordConnectStarted("github", true)
	m.RecordStateValidation("success")
	m.RecordOAuthCallback("github", "success")
	m.RecordTokenExchange("github", "authorization_code", time.Second, true)
	m.RecordTokenRefresh("github", true)
	m.RecordDisconnect("github")
	m.SetConnectionsCount("github", 1)
	m.RecordDatabaseQueryError("count_connections")
}

func TestNormalizePath(t *testing.T) {
	assert.Equal(t, "unknown", normalizePath(""))
	assert.Equal(t, "/oauth/:provider/status", normalizePath("/oauth/:provider/status"))
}

func TestHTTPMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := Init(true).(*Metrics)

	r := gin.New()
	r.Use(HTTPMetricsMiddleware(m))
	r.GET("/oauth/:provider/status", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	counter := m.HTTPRequestsTotal.WithLabelValues("GET", "/oauth/:provider/status", "200")
	before := testutil.ToFloat64(counter)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/oauth/github/status", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(counter))
}

func TestUpdateConnectionGauges(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockMetricsStore(ctrl)
	recorder := mocks.NewMockRecorder(ctrl)

	store.EXPECT().
		CountConnectionsByProvider(gomock.Any()).
		Return(map[string]int64{"github": 3, "jira": 1}, nil)
	recorder.EXPECT().SetConnectionsCount("github", 3)
	recorder.EXPECT().SetConnectionsCount("gitlab", 0)
	recorder.EXPECT().SetConnectionsCount("jira", 1)

	err := UpdateConnectionGauges(
		context.Background(),
		store,
		recorder,
		[]string{"github", "gitlab", "jira"},
	)
	require.NoError(t, err)
}

func TestUpdateConnectionGauges_DBError(t *testing.T) {
	ctrl := gomock.NewController(t)
	store := mocks.NewMockMetricsStore(ctrl)
	recorder := mocks.NewMockRecorder(ctrl)

	dbErr := errors.New("database is locked")
	store.EXPECT().CountConnectionsByProvider(gomock.Any()).Return(nil, dbErr)
	recorder.EXPECT().RecordDatabaseQueryError("count_connections")

	err := UpdateConnectionGauges(context.Background(), store, recorder, []string{"github"})
	assert.ErrorIs(t, err, dbErr)
}
