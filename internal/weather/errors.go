package weather

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidQuery is returned before any network access when the caller's
	// query is malformed (empty city/ZIP, zero or several lookup modes, ...).
	ErrInvalidQuery = errors.New("invalid query")
	// ErrNotFound means the upstream API does not know the requested location.
	ErrNotFound = errors.New("location not found")
	// ErrUnauthorized means the API key was rejected.
	ErrUnauthorized = errors.New("invalid API key or unauthorized access")
	// ErrInvalidRequest means the upstream API rejected the request parameters.
	ErrInvalidRequest = errors.New("bad request, check the request parameters")
	// ErrForbidden is reported by the climate forecast endpoint when the
	// subscription does not cover it.
	ErrForbidden = errors.New("access to endpoint forbidden")
	// ErrUnexpectedStatus covers every other non-2xx status.
	ErrUnexpectedStatus = errors.New("unexpected status code")
	// ErrTransport means no HTTP status was observed.
	ErrTransport = errors.New("transport failure")
	// ErrMalformedResponse means the body is not valid JSON of the expected shape.
	ErrMalformedResponse = errors.New("malformed response body")
	// ErrMalformedField means a single field could not be converted.
	ErrMalformedField = errors.New("malformed field")
	// ErrClosed is returned by calls issued after the client was closed.
	ErrClosed = errors.New("client closed")

	// ErrCountMismatch and ErrOutOfOrder are reported by forecast Validate.
	ErrCountMismatch = errors.New("declared count does not match entry count")
	ErrOutOfOrder    = errors.New("entries are not in chronological order")
)

// QueryError describes why a Query was rejected.
type QueryError struct {
	Field  string
	Reason string
}

func (e *QueryError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid query: %s", e.Reason)
	}
	return fmt.Sprintf("invalid query: %s: %s", e.Field, e.Reason)
}

func (e *QueryError) Unwrap() error {
	return ErrInvalidQuery
}

// StatusError is returned when the API answers with a non-success status.
// Kind is one of ErrNotFound, ErrUnauthorized, ErrInvalidRequest,
// ErrForbidden or ErrUnexpectedStatus.
type StatusError struct {
	StatusCode int
	Identifier string
	Kind       error
}

func (e *StatusError) Error() string {
	switch e.Kind {
	case ErrNotFound:
		return fmt.Sprintf("%s not found", e.Identifier)
	case ErrUnexpectedStatus:
		return fmt.Sprintf("API returned a %d status", e.StatusCode)
	default:
		return e.Kind.Error()
	}
}

func (e *StatusError) Unwrap() error {
	return e.Kind
}

// TransportError wraps a network-level failure (refused connection, DNS,
// timeout, cancellation).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("there was a problem with the HTTP request: %v", e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}

// DecodeError wraps a JSON syntax or shape error.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid JSON response received: %v", e.Err)
}

func (e *DecodeError) Unwrap() []error {
	return []error{ErrMalformedResponse, e.Err}
}

// FieldError is returned by FlexInt when a string does not hold an integer.
type FieldError struct {
	Value string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("malformed field: %q is not an integer", e.Value)
}

func (e *FieldError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrMalformedField}
	}
	return []error{ErrMalformedField, e.Err}
}
