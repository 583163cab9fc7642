package domain

import "errors"

// Domain errors represent error conditions in the termlink domain.
// These errors are returned by the public API and can be checked with errors.Is.
var (
	// ErrReadInFlight is returned when Read() is called while a read is already pending.
	ErrReadInFlight = errors.New("termlink: read already in flight")

	// ErrClosed is returned when an operation targets a closed endpoint.
	ErrClosed = errors.New("termlink: endpoint closed")

	// ErrUnknownEndpoint is returned when an endpoint name does not belong to the session.
	ErrUnknownEndpoint = errors.New("termlink: unknown endpoint")

	// ErrAlreadyRunning is returned when Start() is called on a running session.
	ErrAlreadyRunning = errors.New("termlink: already running")

	// ErrNotRunning is returned when an operation needs a running session.
	ErrNotRunning = errors.New("termlink: not running")

	// ErrShutdownTimeout is returned when graceful shutdown times out.
	ErrShutdownTimeout = errors.New("termlink: shutdown timeout")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("termlink: invalid configuration")
)
