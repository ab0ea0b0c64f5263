package postgres

import "errors"

// This file defines custom errors specific to the store layer. Services check
// these with `errors.Is()` and translate them into domain-level errors (like
// `app_errors.ErrNotFound`), which keeps callers decoupled from the database
// driver and lets them tell confirmed absence apart from a store failure.

var (
	// ErrChatNotFound is returned when an operation references a chat id
	// that does not exist. Read and delete paths treat this as expected
	// absence; AddMessage treats it as a caller mistake.
	ErrChatNotFound = errors.New("postgres: chat not found")

	// ErrUnavailable is returned by AwaitReady once the bounded retry
	// budget is exhausted without a successful liveness probe.
	ErrUnavailable = errors.New("postgres: database not available")
)
