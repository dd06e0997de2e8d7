package auth

import "errors"

var (
	// ErrUnsupportedProvider is returned for provider ids outside the supported
	// set or for supported providers that are not enabled
	ErrUnsupportedProvider = errors.New("unsupported provider")

	// Token endpoint errors
	ErrTokenExchangeFailed = errors.New("token endpoint rejected the request")
	ErrUpstreamTimeout     = errors.New("token endpoint did not respond in time")

	// ErrRequestCanceled is returned when the caller gave up before the token
	// endpoint answered
	ErrRequestCanceled = errors.New("token request canceled")
)
