package middleware

import (
	"crypto/subtle"
	"log"
	"net/http"

	"github.com/1cvibe/connectgate/internal/util"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	csrfTokenKey = "csrf_token"

	// CSRFHeader carries the token in both directions
	CSRFHeader = "X-CSRF-Token"
)

// CSRFMiddleware protects state-changing requests authenticated by the
// session cookie. The token is handed out in the X-CSRF-Token response
// header and must be echoed back on POST, PUT, PATCH and DELETE.
// Bearer-authenticated requests are exempt. Must run after RequireUser.
func CSRFMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(ContextAuthMethod) != AuthMethodSession {
			c.Next()
			return
		}

		session := sessions.Default(c)
		token, _ := session.Get(csrfTokenKey).(string)
		if token == "" {
			generated, err := util.CryptoRandomURLToken(32)
			if err != nil {
				log.Printf("[CSRF] failed to generate token: %v", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":             "internal_error",
					"error_description": "Could not initialize the session",
				})
				return
			}
			token = generated
			session.Set(csrfTokenKey, token)
			if err := session.Save(); err != nil {
				log.Printf("[CSRF] failed to save session: %v", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"error":             "internal_error",
					"error_description": "Could not initialize the session",
				})
				return
			}
		}

		c.Set(csrfTokenKey, token)
		c.Header(CSRFHeader, token)

		switch c.Request.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
			submitted := c.GetHeader(CSRFHeader)
			if submitted == "" || subtle.ConstantTimeCompare([]byte(submitted), []byte(token)) != 1 {
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"error":             "csrf_token_invalid",
					"error_description": "CSRF token validation failed. Please reload and try again.",
				})
				return
			}
		}

		c.Next()
	}
}

// GetCSRFToken retrieves the CSRF token from the context
func GetCSRFToken(c *gin.Context) string {
	return c.GetString(csrfTokenKey)
}
