package client

import (
	"fmt"
	"net/http"
	"time"

	httpclient "github.com/appleboy/go-httpclient"
)

// CreateProviderClient creates the HTTP client used for provider token endpoints.
// Provider requests carry no service credentials of their own; the OAuth client
// secret travels in the form body. Requests are never retried because an
// authorization code is single-use.
func CreateProviderClient(
	timeout time.Duration,
	insecureSkipVerify bool,
	userAgent string,
) (*http.Client, error) {
	client, err := httpclient.NewAuthClient(
		httpclient.AuthModeNone,
		"",
		httpclient.WithTimeout(timeout),
		httpclient.WithInsecureSkipVerify(insecureSkipVerify),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider client: %w", err)
	}

	if userAgent != "" {
		next := client.Transport
		if next == nil {
			next = http.DefaultTransport
		}
		client.Transport = &userAgentTransport{next: next, userAgent: userAgent}
	}
	return client, nil
}

// userAgentTransport identifies this service to providers; GitHub rejects
// API requests without a User-Agent.
type userAgentTransport struct {
	next      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.next.RoundTrip(req)
	}
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.userAgent)
	return t.next.RoundTrip(req)
}
