package errors

import "errors"

// This package defines the centralized set of sentinel errors for the
// application. Services return these instead of transport-level details; the
// API layer checks them with `errors.Is()` and maps them to HTTP responses,
// so business logic never needs to know about status codes.

var (
	// ErrNotFound signifies that a requested resource could not be located.
	// Mapped to a 404 Not Found HTTP status.
	ErrNotFound = errors.New("resource not found")

	// ErrValidation signifies that input data provided by a client failed
	// validation. Mapped to a 400 Bad Request HTTP status.
	ErrValidation = errors.New("validation failed")

	// ErrUnavailable signifies that the backing store could not be reached
	// within the retry budget. Mapped to a 503 Service Unavailable HTTP
	// status so clients know to retry later.
	ErrUnavailable = errors.New("service unavailable")

	// ErrUpstream signifies that an upstream collaborator (the LLM API)
	// failed while handling an otherwise valid request. Mapped to a 502 Bad
	// Gateway HTTP status.
	ErrUpstream = errors.New("upstream service error")

	// ErrInternal signifies an unexpected error on the server. This is the
	// generic fallback used to avoid leaking implementation details to the
	// client. Mapped to a 500 Internal Server Error HTTP status.
	ErrInternal = errors.New("internal server error")
)
