// Package apperrors defines the closed error taxonomy shared by the
// connector, gateway, and handler layers. Callers branch on Kind rather
// than parsing message text.
package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure. The set is closed: every connector and
// gateway failure maps to exactly one of these.
type Kind string

const (
	KindNotFound                       Kind = "not_found"
	KindMissingParameters              Kind = "missing_parameters"
	KindEmptySource                    Kind = "empty_source"
	KindAuthenticationFailed           Kind = "authentication_failed"
	KindDatabaseNotFound               Kind = "database_not_found"
	KindServerUnreachable              Kind = "server_unreachable"
	KindConnectionFailed               Kind = "connection_failed"
	KindMalformedQuery                 Kind = "malformed_query"
	KindUnsafeQueryRejected            Kind = "unsafe_query_rejected"
	KindQueryExecutionFailed           Kind = "query_execution_failed"
	KindExternalModelUnavailable       Kind = "external_model_unavailable"
	KindExternalModelMalformedResponse Kind = "external_model_malformed_response"
	KindConflict                       Kind = "conflict"
	KindBackendError                   Kind = "backend_error"
)

// Error carries a Kind, a human-readable message, and the wrapped cause.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates an error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a kind and message to an underlying error so the original
// driver message is preserved on the chain.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// KindOf extracts the Kind from err. Unclassified errors report
// KindBackendError, the catch-all.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindBackendError
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}

// Message returns the human-readable message for err. For unclassified
// errors the raw error text is the message.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return err.Error()
}

// HTTPStatus maps a kind to the status code the HTTP boundary reports.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindAuthenticationFailed:
		return http.StatusUnauthorized
	case KindMissingParameters, KindEmptySource, KindMalformedQuery,
		KindUnsafeQueryRejected, KindConnectionFailed,
		KindDatabaseNotFound, KindServerUnreachable,
		KindQueryExecutionFailed:
		return http.StatusBadRequest
	case KindExternalModelUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
