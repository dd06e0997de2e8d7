package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/1cvibe/connectgate/internal/auth"
	"github.com/1cvibe/connectgate/internal/cache"
	"github.com/1cvibe/connectgate/internal/core"
	"github.com/1cvibe/connectgate/internal/metrics"
	"github.com/1cvibe/connectgate/internal/mocks"
	"github.com/1cvibe/connectgate/internal/models"
	"github.com/1cvibe/connectgate/internal/services"
	"github.com/1cvibe/connectgate/internal/store"
	"github.com/1cvibe/connectgate/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

const landingPage = "https://app.example.com/integrations"

type handlerEnv struct {
	router    *gin.Engine
	exchanger *mocks.MockTokenExchanger
}

func newHandlerEnv(t *testing.T, callbackRedirectURL string) *handlerEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registry, err := auth.NewRegistry(
		auth.NewGitHubDescriptor(auth.OAuthProviderConfig{
			ClientID:    "github-client",
			RedirectURL: "https://connect.example.com/oauth/github/callback",
			Scopes:      []string{"repo"},
		}),
		auth.NewJiraDescriptor(auth.OAuthProviderConfig{
			ClientID:    "jira-client",
			RedirectURL: "https://connect.example.com/oauth/jira/callback",
			Scopes:      []string{"read:jira-work", "offline_access"},
		}),
	)
	require.NoError(t, err)

	s, err := store.New(context.Background(), "sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	sealer, err := util.NewTokenSealer("handler-test-sealing-key-0123456789")
	require.NoError(t, err)

	m := metrics.NewNoopMetrics()
	exchanger := mocks.NewMockTokenExchanger(gomock.NewController(t))
	audit := services.NewAuditService(s, false, 10)
	integration := services.NewIntegrationService(
		registry,
		services.NewStateService(cache.NewMemoryStore[models.PendingState](), 10*time.Minute, 10*time.Minute, m),
		services.NewConnectionService(s, sealer, m),
		exchanger,
		audit,
		m,
		services.IntegrationConfig{RedirectBase: landingPage},
	)
	h := NewIntegrationHandler(integration, callbackRedirectURL)

	r := gin.New()
	api := r.Group("/oauth", func(c *gin.Context) {
		if user := c.GetHeader("X-Test-User"); user != "" {
			c.Set("user_id", user)
		}
		c.Next()
	})
	api.GET("/providers", h.ListProviders)
	api.GET("/activity", h.Activity)
	api.GET("/:provider/status", h.Status)
	api.POST("/:provider/connect", h.Connect)
	api.GET("/:provider/callback", h.Callback)
	api.DELETE("/:provider/connection", h.Disconnect)
	api.POST("/:provider/refresh", h.Refresh)

	return &handlerEnv{router: r, exchanger: exchanger}
}

func (env *handlerEnv) do(
	method, target, user string,
	body string,
	headers map[string]string,
) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

// startConnect returns the state embedded in the authorization URL
func (env *handlerEnv) startConnect(t *testing.T, provider, body string) string {
	t.Helper()
	w := env.do(http.MethodPost, "/oauth/"+provider+"/connect", "user-1", body, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		AuthorizationURL string `json:"authorization_url"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	u, err := url.Parse(resp.AuthorizationURL)
	require.NoError(t, err)
	return u.Query().Get("state")
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) (string, string) {
	t.Helper()
	var body struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error, body.ErrorDescription
}

func TestConnectAndCallback_JSON(t *testing.T) {
	env := newHandlerEnv(t, "")
	state := env.startConnect(t, "github", "")

	env.exchanger.EXPECT().
		Exchange(gomock.Any(), "github", "the-code", "").
		Return(&core.TokenSet{AccessToken: "gho_x"}, nil)

	w := env.do(http.MethodGet, "/oauth/github/callback?code=the-code&state="+state, "", "", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `"status":"success"`)
	assert.Contains(t, w.Body.String(), `"connected":true`)
	assert.NotContains(t, w.Body.String(), "gho_x")

	w = env.do(http.MethodGet, "/oauth/github/status", "user-1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"connected":true`)
}

func TestCallback_RedirectsBrowser(t *testing.T) {
	env := newHandlerEnv(t, landingPage)
	state := env.startConnect(t, "jira", "")

	env.exchanger.EXPECT().
		Exchange(gomock.Any(), "jira", "c", "").
		Return(&core.TokenSet{AccessToken: "at"}, nil)

	w := env.do(http.MethodGet, "/oauth/jira/callback?code=c&state="+state, "", "",
		map[string]string{"Accept": "text/html,application/xhtml+xml"})
	require.Equal(t, http.StatusFound, w.Code)

	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "app.example.com", loc.Host)
	assert.Equal(t, "jira", loc.Query().Get("provider"))
	assert.Equal(t, "success", loc.Query().Get("status"))
}

func TestCallback_RedirectsBrowserOnError(t *testing.T) {
	env := newHandlerEnv(t, landingPage)
	state := env.startConnect(t, "github", `{"return_to":"/settings/github"}`)

	w := env.do(http.MethodGet,
		"/oauth/github/callback?error=access_denied&error_description=User+declined&state="+state,
		"", "", map[string]string{"Accept": "text/html"})
	require.Equal(t, http.StatusFound, w.Code)

	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/settings/github", loc.Path)
	assert.Equal(t, "error", loc.Query().Get("status"))
	assert.Equal(t, "access_denied", loc.Query().Get("error"))
	assert.Equal(t, "User declined", loc.Query().Get("error_description"))
}

func TestCallback_Errors(t *testing.T) {
	env := newHandlerEnv(t, "")

	tests := []struct {
		name       string
		target     string
		wantStatus int
		wantCode   string
	}{
		{"missing state", "/oauth/github/callback?code=x", http.StatusBadRequest, "missing_parameter"},
		{"missing code", "/oauth/github/callback?state=x", http.StatusBadRequest, "missing_parameter"},
		{"unknown state", "/oauth/github/callback?code=x&state=forged", http.StatusBadRequest, "state_not_found"},
		{"unknown provider", "/oauth/bitbucket/callback?code=x&state=y", http.StatusNotFound, "unsupported_provider"},
		{"disabled provider", "/oauth/gitlab/callback?code=x&state=y", http.StatusNotFound, "unsupported_provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(http.MethodGet, tt.target, "", "", nil)
			assert.Equal(t, tt.wantStatus, w.Code)
			code, desc := decodeError(t, w)
			assert.Equal(t, tt.wantCode, code)
			assert.NotEmpty(t, desc)
		})
	}
}

func TestCallback_ExchangeTimeout(t *testing.T) {
	env := newHandlerEnv(t, "")
	state := env.startConnect(t, "github", "")

	env.exchanger.EXPECT().
		Exchange(gomock.Any(), "github", "c", "").
		Return(nil, auth.ErrUpstreamTimeout)

	w := env.do(http.MethodGet, "/oauth/github/callback?code=c&state="+state, "", "", nil)
	assert.Equal(t, http.StatusGatewayTimeout, w.Code)
	code, _ := decodeError(t, w)
	assert.Equal(t, "upstream_timeout", code)
}

func TestConnect_Errors(t *testing.T) {
	env := newHandlerEnv(t, "")

	w := env.do(http.MethodPost, "/oauth/bitbucket/connect", "user-1", "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(http.MethodPost, "/oauth/github/connect?return_to=https://evil.example.net/", "user-1", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	code, _ := decodeError(t, w)
	assert.Equal(t, "invalid_parameter", code)

	w = env.do(http.MethodPost, "/oauth/github/connect", "user-1", `not json`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListProviders(t *testing.T) {
	env := newHandlerEnv(t, "")

	w := env.do(http.MethodGet, "/oauth/providers", "user-1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var statuses []services.ProviderStatus
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &statuses))
	require.Len(t, statuses, 2)
	assert.Equal(t, "github", statuses[0].ProviderID)
	assert.Equal(t, "jira", statuses[1].ProviderID)
	assert.NotContains(t, w.Body.String(), "client")
}

func TestDisconnect_Idempotent(t *testing.T) {
	env := newHandlerEnv(t, "")

	for range 2 {
		w := env.do(http.MethodDelete, "/oauth/github/connection", "user-1", "", nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
	}
}

func TestRefresh_NotConnected(t *testing.T) {
	env := newHandlerEnv(t, "")

	w := env.do(http.MethodPost, "/oauth/jira/refresh", "user-1", "", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	code, _ := decodeError(t, w)
	assert.Equal(t, "not_connected", code)
}

func TestActivity(t *testing.T) {
	env := newHandlerEnv(t, "")

	w := env.do(http.MethodGet, "/oauth/activity?page=1&page_size=5", "user-1", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"pagination"`)
	assert.Contains(t, w.Body.String(), `"page_size":5`)
}
