package services

import (
	"errors"
	"net/http"
)

// ErrorKind classifies a failed integration operation
type ErrorKind int

const (
	KindInternal ErrorKind = iota
	KindUnsupportedProvider
	KindMissingParameter
	KindInvalidParameter
	KindStateNotFound
	KindStateExpired
	KindStateProviderMismatch
	KindAccessDenied
	KindNotConnected
	KindTokenExchangeFailed
	KindUpstreamTimeout
	KindStorageUnavailable
)

var kindInfo = map[ErrorKind]struct {
	code   string
	status int
}{
	KindInternal:              {"internal_error", http.StatusInternalServerError},
	KindUnsupportedProvider:   {"unsupported_provider", http.StatusNotFound},
	KindMissingParameter:      {"missing_parameter", http.StatusBadRequest},
	KindInvalidParameter:      {"invalid_parameter", http.StatusBadRequest},
	KindStateNotFound:         {"state_not_found", http.StatusBadRequest},
	KindStateExpired:          {"state_expired", http.StatusBadRequest},
	KindStateProviderMismatch: {"state_provider_mismatch", http.StatusBadRequest},
	KindAccessDenied:          {"access_denied", http.StatusForbidden},
	KindNotConnected:          {"not_connected", http.StatusConflict},
	KindTokenExchangeFailed:   {"token_exchange_failed", http.StatusBadRequest},
	KindUpstreamTimeout:       {"upstream_timeout", http.StatusGatewayTimeout},
	KindStorageUnavailable:    {"storage_unavailable", http.StatusServiceUnavailable},
}

// Code returns the machine-readable reason code
func (k ErrorKind) Code() string {
	return kindInfo[k].code
}

// HTTPStatus returns the HTTP status a handler should answer with
func (k ErrorKind) HTTPStatus() int {
	return kindInfo[k].status
}

func (k ErrorKind) String() string {
	return k.Code()
}

// Sentinels for errors.Is; any *Error of the same kind matches.
var (
	ErrInternal              = &Error{Kind: KindInternal}
	ErrUnsupportedProvider   = &Error{Kind: KindUnsupportedProvider}
	ErrMissingParameter      = &Error{Kind: KindMissingParameter}
	ErrInvalidParameter      = &Error{Kind: KindInvalidParameter}
	ErrStateNotFound         = &Error{Kind: KindStateNotFound}
	ErrStateExpired          = &Error{Kind: KindStateExpired}
	ErrStateProviderMismatch = &Error{Kind: KindStateProviderMismatch}
	ErrAccessDenied          = &Error{Kind: KindAccessDenied}
	ErrNotConnected          = &Error{Kind: KindNotConnected}
	ErrTokenExchangeFailed   = &Error{Kind: KindTokenExchangeFailed}
	ErrUpstreamTimeout       = &Error{Kind: KindUpstreamTimeout}
	ErrStorageUnavailable    = &Error{Kind: KindStorageUnavailable}
)

// Error is a classified failure carrying a message that is safe to show to
// the end user. Err holds the underlying cause for logs.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func newError(kind ErrorKind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = e.Kind.Code()
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// AsError returns err as an *Error, classifying unknown errors as internal.
func AsError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return newError(KindInternal, "An internal error occurred", err)
}
