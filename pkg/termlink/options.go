package termlink

import (
	"time"

	"github.com/bft-labs/termlink/internal/ports"
	"github.com/bft-labs/termlink/pkg/log"
)

// Logger is the interface for structured logging.
type Logger = log.Logger

// LogField represents a structured log field.
type LogField = log.Field

// Responder produces the replies a listening endpoint sends for each frame.
type Responder = ports.Responder

// ResponderFunc adapts a function to Responder.
type ResponderFunc = ports.ResponderFunc

// Option configures optional behavior of a Session.
type Option func(*options)

// options holds the optional configuration for a Session.
type options struct {
	logger       Logger
	eventHandler EventHandler
	plugins      []Plugin
	responders   map[string]Responder
	clock        func() time.Time
}

// defaultOptions returns options with sensible defaults.
func defaultOptions() options {
	return options{
		logger:     log.NoopLogger{},
		responders: map[string]Responder{},
		clock:      time.Now,
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithEventHandler sets a handler for session events.
// If not provided, events are only logged.
func WithEventHandler(handler EventHandler) Option {
	return func(o *options) {
		o.eventHandler = handler
	}
}

// WithPlugin registers a plugin to be initialized when the session starts.
// Plugins are initialized in registration order and shutdown in reverse order.
func WithPlugin(plugin Plugin) Option {
	return func(o *options) {
		o.plugins = append(o.plugins, plugin)
	}
}

// WithResponder sets the responder used by the server endpoint in listen
// mode.
func WithResponder(r Responder) Option {
	return WithEndpointResponder(ServerName, r)
}

// WithEndpointResponder sets the responder used by the named endpoint in
// listen mode.
func WithEndpointResponder(endpoint string, r Responder) Option {
	return func(o *options) {
		o.responders[endpoint] = r
	}
}

// WithClock sets the clock used to timestamp event envelopes.
// Read timeouts always use the wall clock.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.clock = now
		}
	}
}
