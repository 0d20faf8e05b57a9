package redfish

import (
	"fmt"
	"net/http"
)

// FailureKind classifies a BMC request failure. The set is closed so callers
// can match exhaustively instead of inspecting error text.
type FailureKind int

const (
	// KindAuth is a 401/403 response. Retrying with the same credentials
	// cannot succeed, so these are never retried.
	KindAuth FailureKind = iota
	// KindClient is any other non-retryable HTTP status. Unknown statuses
	// land here too: a failure we cannot classify is not assumed transient.
	KindClient
	// KindServer is a 500/502/503/504 response, retried with backoff.
	KindServer
	// KindConnection is a transport-level failure (timeout, refusal, DNS),
	// retried with backoff.
	KindConnection
	// KindDiscovery means no virtual-media capability variant was found on
	// the BMC. Never retried; the probe sequence already exhausted the
	// known paths.
	KindDiscovery
)

func (k FailureKind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindClient:
		return "client"
	case KindServer:
		return "server"
	case KindConnection:
		return "connection"
	case KindDiscovery:
		return "discovery"
	default:
		return "unknown"
	}
}

// Error is a classified failure from one BMC request (or, for KindDiscovery,
// from a capability probe sequence). Status is the HTTP status code when the
// failure is status-derived, zero otherwise.
type Error struct {
	Kind    FailureKind
	Status  int
	Path    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Status != 0 {
		return fmt.Sprintf("%s failure on %s: status %d: %s", e.Kind, e.Path, e.Status, msg)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s failure on %s: %s", e.Kind, e.Path, msg)
	}
	return fmt.Sprintf("%s failure: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether the failure is worth another attempt.
func (e *Error) Retryable() bool {
	return e.Kind == KindServer || e.Kind == KindConnection
}

// classify maps an HTTP status to a failure kind. 401/403 are authentication
// failures, the listed 5xx statuses are transient server failures, and
// everything else (including statuses this code has never seen) is a
// non-retryable client failure.
func classify(status int) FailureKind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuth
	case http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return KindServer
	default:
		return KindClient
	}
}
