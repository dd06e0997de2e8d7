package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/1cvibe/connectgate/internal/models"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	SessionUserID = "user_id"

	// ContextAuthMethod records how the caller was identified
	ContextAuthMethod = "auth_method"
)

// Identity sources
const (
	AuthMethodSession = "session"
	AuthMethodBearer  = "bearer"
)

var errNoUserClaim = errors.New("token has no user claim")

// RequireUser identifies the caller from the session cookie issued by the
// upstream login service or, failing that, from an HS256 bearer token.
// Requests without a trusted identity are rejected with 401.
func RequireUser(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, method := "", ""

		if id, ok := sessions.Default(c).Get(SessionUserID).(string); ok && id != "" {
			userID, method = id, AuthMethodSession
		} else if jwtSecret != "" {
			if raw, ok := bearerToken(c); ok {
				id, err := userFromJWT(raw, jwtSecret)
				if err != nil {
					abortUnauthorized(c, "Invalid bearer token")
					return
				}
				userID, method = id, AuthMethodBearer
			}
		}

		if userID == "" {
			abortUnauthorized(c, "Authentication required")
			return
		}

		c.Set(SessionUserID, userID)
		c.Set(ContextAuthMethod, method)
		c.Request = c.Request.WithContext(models.SetUserIDContext(c.Request.Context(), userID))
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	return token, token != ""
}

// userFromJWT validates an HS256 token and returns its sub (or user_id) claim
func userFromJWT(raw, secret string) (string, error) {
	token, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errNoUserClaim
	}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		return sub, nil
	}
	if id, ok := claims["user_id"].(string); ok && id != "" {
		return id, nil
	}
	return "", errNoUserClaim
}

func abortUnauthorized(c *gin.Context, description string) {
	c.Header("WWW-Authenticate", `Bearer realm="connectgate"`)
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error":             "unauthorized",
		"error_description": description,
	})
}
