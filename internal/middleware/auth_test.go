package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/1cvibe/connectgate/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "jwt-test-secret"

// setupTestRouter mounts sessions, a /login helper that signs a user in, and
// a protected /me route.
func setupTestRouter(extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))

	r.GET("/login", func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set(SessionUserID, c.Query("user"))
		_ = session.Save()
		c.Status(http.StatusNoContent)
	})

	handlers := append([]gin.HandlerFunc{RequireUser(testJWTSecret)}, extra...)
	protected := r.Group("/", handlers...)
	handler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"user_id":     c.GetString(SessionUserID),
			"ctx_user_id": models.GetUserIDFromContext(c.Request.Context()),
			"method":      c.GetString(ContextAuthMethod),
		})
	}
	protected.GET("/me", handler)
	protected.POST("/me", handler)
	return r
}

func login(t *testing.T, r *gin.Engine, user string) []*http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/login?user="+user, nil))
	require.Equal(t, http.StatusNoContent, w.Code)
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)
	return cookies
}

func signJWT(t *testing.T, secret string, method jwt.SigningMethod, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestRequireUser_NoIdentity(t *testing.T) {
	r := setupTestRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "unauthorized")
	assert.NotEmpty(t, w.Header().Get("WWW-Authenticate"))
}

func TestRequireUser_Session(t *testing.T) {
	r := setupTestRouter()
	cookies := login(t, r, "user-42")

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t,
		`{"user_id":"user-42","ctx_user_id":"user-42","method":"session"}`,
		w.Body.String())
}

func TestRequireUser_Bearer(t *testing.T) {
	tests := []struct {
		name       string
		token      string
		wantStatus int
		wantUser   string
	}{
		{
			name: "sub claim",
			token: signJWT(t, testJWTSecret, jwt.SigningMethodHS256, jwt.MapClaims{
				"sub": "user-7",
				"exp": time.Now().Add(time.Hour).Unix(),
			}),
			wantStatus: http.StatusOK,
			wantUser:   "user-7",
		},
		{
			name: "user_id claim",
			token: signJWT(t, testJWTSecret, jwt.SigningMethodHS256, jwt.MapClaims{
				"user_id": "user-8",
			}),
			wantStatus: http.StatusOK,
			wantUser:   "user-8",
		},
		{
			name: "expired",
			token: signJWT(t, testJWTSecret, jwt.SigningMethodHS256, jwt.MapClaims{
				"sub": "user-7",
				"exp": time.Now().Add(-time.Hour).Unix(),
			}),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong secret",
			token:      signJWT(t, "other-secret", jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-7"}),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "wrong algorithm",
			token:      signJWT(t, testJWTSecret, jwt.SigningMethodHS512, jwt.MapClaims{"sub": "user-7"}),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "no user claim",
			token:      signJWT(t, testJWTSecret, jwt.SigningMethodHS256, jwt.MapClaims{"scope": "x"}),
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "garbage",
			token:      "not-a-jwt",
			wantStatus: http.StatusUnauthorized,
		},
	}

	r := setupTestRouter()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			req.Header.Set("Authorization", "Bearer "+tt.token)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Contains(t, w.Body.String(), `"user_id":"`+tt.wantUser+`"`)
				assert.Contains(t, w.Body.String(), `"method":"bearer"`)
			}
		})
	}
}

func TestRequireUser_BearerDisabledWithoutSecret(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("test-secret"))))
	r.GET("/me", RequireUser(""), func(c *gin.Context) { c.Status(http.StatusOK) })

	token := signJWT(t, testJWTSecret, jwt.SigningMethodHS256, jwt.MapClaims{"sub": "user-1"})
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
