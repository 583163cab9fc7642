package termlink

import "github.com/bft-labs/termlink/internal/domain"

// Errors returned by Session and Endpoint. Check them with errors.Is.
var (
	ErrReadInFlight    = domain.ErrReadInFlight
	ErrClosed          = domain.ErrClosed
	ErrUnknownEndpoint = domain.ErrUnknownEndpoint
	ErrAlreadyRunning  = domain.ErrAlreadyRunning
	ErrNotRunning      = domain.ErrNotRunning
	ErrShutdownTimeout = domain.ErrShutdownTimeout
	ErrInvalidConfig   = domain.ErrInvalidConfig
)
