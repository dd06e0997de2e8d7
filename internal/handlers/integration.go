package handlers

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/1cvibe/connectgate/internal/models"
	"github.com/1cvibe/connectgate/internal/services"
	"github.com/1cvibe/connectgate/internal/store"

	"github.com/gin-gonic/gin"
)

// IntegrationHandler exposes the provider connect/status/disconnect API
type IntegrationHandler struct {
	integration         *services.IntegrationService
	callbackRedirectURL string
}

// NewIntegrationHandler creates a new integration handler.
// callbackRedirectURL is the browser landing page after a callback and may be empty.
func NewIntegrationHandler(
	integration *services.IntegrationService,
	callbackRedirectURL string,
) *IntegrationHandler {
	return &IntegrationHandler{
		integration:         integration,
		callbackRedirectURL: callbackRedirectURL,
	}
}

type connectRequest struct {
	ReturnTo string `json:"return_to"`
}

// ListProviders returns the connection status of every configured provider
//
//	GET /oauth/providers
func (h *IntegrationHandler) ListProviders(c *gin.Context) {
	statuses, err := h.integration.ListProviders(c.Request.Context(), models.GetUserIDFromContext(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, statuses)
}

// Status returns the connection status of one provider
//
//	GET /oauth/:provider/status
func (h *IntegrationHandler) Status(c *gin.Context) {
	status, err := h.integration.GetStatus(
		c.Request.Context(),
		models.GetUserIDFromContext(c),
		c.Param("provider"),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// Connect starts a connect flow and returns the provider authorization URL.
// The client navigates there itself, as a full-page redirect or a popup.
//
//	POST /oauth/:provider/connect
func (h *IntegrationHandler) Connect(c *gin.Context) {
	var req connectRequest
	if c.Request.ContentLength != 0 && strings.HasPrefix(c.ContentType(), "application/json") {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":             services.KindInvalidParameter.Code(),
				"error_description": "Request body must be a JSON object",
			})
			return
		}
	}
	if req.ReturnTo == "" {
		req.ReturnTo = c.Query("return_to")
	}

	authURL, err := h.integration.StartConnect(
		c.Request.Context(),
		models.GetUserIDFromContext(c),
		c.Param("provider"),
		req.ReturnTo,
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"authorization_url": authURL})
}

// Callback receives the provider redirect and completes the connect flow.
// Browsers are sent back to the landing page when one is known; API clients
// get JSON.
//
//	GET /oauth/:provider/callback
func (h *IntegrationHandler) Callback(c *gin.Context) {
	provider := c.Param("provider")
	result, err := h.integration.HandleCallback(c.Request.Context(), services.CallbackRequest{
		Provider:         provider,
		Code:             c.Query("code"),
		State:            c.Query("state"),
		Error:            c.Query("error"),
		ErrorDescription: c.Query("error_description"),
	})

	if target := h.landingPage(result); target != "" && acceptsHTML(c) {
		c.Redirect(http.StatusFound, callbackRedirect(target, provider, err))
		return
	}

	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"provider_id": result.Status.ProviderID,
		"name":        result.Status.Name,
		"connected":   result.Status.Connected,
		"expires_at":  result.Status.ExpiresAt,
		"expired":     result.Status.Expired,
	})
}

// landingPage picks the browser destination after a callback
func (h *IntegrationHandler) landingPage(result *services.CallbackResult) string {
	if result == nil || result.ReturnTo == "" {
		return h.callbackRedirectURL
	}
	if h.callbackRedirectURL == "" {
		return result.ReturnTo
	}

	base, err := url.Parse(h.callbackRedirectURL)
	if err != nil {
		return h.callbackRedirectURL
	}
	ref, err := url.Parse(result.ReturnTo)
	if err != nil {
		return h.callbackRedirectURL
	}
	return base.ResolveReference(ref).String()
}

// callbackRedirect appends the callback outcome to the landing page URL
func callbackRedirect(target, provider string, err error) string {
	u, parseErr := url.Parse(target)
	if parseErr != nil {
		return target
	}

	q := u.Query()
	q.Set("provider", provider)
	if err != nil {
		e := services.AsError(err)
		q.Set("status", "error")
		q.Set("error", e.Kind.Code())
		q.Set("error_description", e.Message)
	} else {
		q.Set("status", "success")
	}
	u.RawQuery = q.Encode()
	return u.String()
}

func acceptsHTML(c *gin.Context) bool {
	return strings.Contains(c.GetHeader("Accept"), "text/html")
}

// Disconnect removes the caller's connection. Idempotent.
//
//	DELETE /oauth/:provider/connection
func (h *IntegrationHandler) Disconnect(c *gin.Context) {
	err := h.integration.Disconnect(
		c.Request.Context(),
		models.GetUserIDFromContext(c),
		c.Param("provider"),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Refresh renews the provider access token
//
//	POST /oauth/:provider/refresh
func (h *IntegrationHandler) Refresh(c *gin.Context) {
	status, err := h.integration.Refresh(
		c.Request.Context(),
		models.GetUserIDFromContext(c),
		c.Param("provider"),
	)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

// Activity lists the caller's own integration events
//
//	GET /oauth/activity?page=1&page_size=10&provider=github
func (h *IntegrationHandler) Activity(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	logs, pagination, err := h.integration.Activity(
		c.Request.Context(),
		models.GetUserIDFromContext(c),
		store.NewPaginationParams(page, pageSize),
		c.Query("provider"),
	)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":       logs,
		"pagination": pagination,
	})
}
