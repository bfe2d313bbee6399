package remote

import (
	"errors"
	"fmt"
)

// Kind classifies a request failure so callers can react without string
// matching: auth failures redirect to login, network failures are retryable,
// protocol failures indicate a misbehaving or misconfigured server.
type Kind int

const (
	// KindNetwork covers transport-level failures: the request never
	// completed (connection refused, timeout, DNS).
	KindNetwork Kind = iota
	// KindAuth covers a missing, expired, or rejected bearer credential.
	KindAuth
	// KindServer covers completed requests the server reported as failed,
	// either via a non-2xx status or a {"status": 0} envelope.
	KindServer
	// KindProtocol covers structurally unexpected responses: non-JSON
	// bodies, undecodable payloads, or echoed identifiers that do not
	// match the request.
	KindProtocol
)

func (k Kind) String() string {
	switch k {
	case KindNetwork:
		return "network"
	case KindAuth:
		return "auth"
	case KindServer:
		return "server"
	case KindProtocol:
		return "protocol"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by Client for expected failure
// modes. HTTPStatus is zero when the failure happened before a response
// arrived.
type Error struct {
	Kind       Kind
	Op         string
	Message    string
	HTTPStatus int
	cause      error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s error: %s", e.Op, e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s error", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.cause }

// IsAuth reports whether err is a credential failure.
func IsAuth(err error) bool { return hasKind(err, KindAuth) }

// IsNetwork reports whether err is a transport failure.
func IsNetwork(err error) bool { return hasKind(err, KindNetwork) }

// IsServer reports whether err is a server-reported failure.
func IsServer(err error) bool { return hasKind(err, KindServer) }

// IsProtocol reports whether err is a malformed or inconsistent response.
func IsProtocol(err error) bool { return hasKind(err, KindProtocol) }

func hasKind(err error, kind Kind) bool {
	var re *Error
	return errors.As(err, &re) && re.Kind == kind
}

func newError(kind Kind, op, message string, status int, cause error) *Error {
	return &Error{Kind: kind, Op: op, Message: message, HTTPStatus: status, cause: cause}
}
