package termlink

import (
	"fmt"
	"time"

	"github.com/bft-labs/termlink/internal/app"
	"github.com/bft-labs/termlink/internal/domain"
)

// Endpoint names used by a Session.
const (
	ClientName = "client"
	ServerName = "server"
)

// EndpointConfig configures one end of the link.
type EndpointConfig struct {
	// ReadDelimiter terminates frames extracted by Read. Empty means a read
	// takes the whole buffer.
	ReadDelimiter string

	// WriteDelimiter is appended to every written payload.
	WriteDelimiter string

	// Timeout bounds how long a Read waits for a frame. Zero means a read
	// is attempted once and never waits. Negative values are treated as zero.
	Timeout time.Duration

	// Capacity caps the buffer length in characters; the oldest characters
	// are dropped beyond it. Zero means unbounded.
	Capacity int

	// Mode selects manual reads or listen mode, in which every complete
	// frame is read on arrival and answered by the session's responder.
	Mode Mode

	// AutoRetry re-issues a read that ended without a frame, waiting an
	// exponentially growing delay from RetryInitial up to RetryMax.
	AutoRetry    bool
	RetryInitial time.Duration
	RetryMax     time.Duration

	// Locks are the controls reported as disabled while a read is pending.
	// Zero means DefaultLocks.
	Locks Control
}

// Config holds the configuration of a Session.
type Config struct {
	Client EndpointConfig
	Server EndpointConfig

	// PreviewWidth is the width of the buffer preview in snapshots.
	// Default: 32
	PreviewWidth int
}

// DefaultConfig returns a Config with a manual client that waits up to two
// seconds for "\r\n"-terminated frames and writes "\n", and a server that
// reads "\n" without waiting and writes "\r\n".
func DefaultConfig() Config {
	return Config{
		Client: EndpointConfig{
			ReadDelimiter:  "\r\n",
			WriteDelimiter: "\n",
			Timeout:        app.DefaultTimeout,
		},
		Server: EndpointConfig{
			ReadDelimiter:  "\n",
			WriteDelimiter: "\r\n",
		},
		PreviewWidth: app.DefaultPreviewWidth,
	}
}

// SetDefaults fills zero values with defaults and clamps negative timeouts.
func (c *Config) SetDefaults() {
	if c.PreviewWidth <= 0 {
		c.PreviewWidth = app.DefaultPreviewWidth
	}
	for _, ep := range []*EndpointConfig{&c.Client, &c.Server} {
		if ep.Timeout < 0 {
			ep.Timeout = 0
		}
		if ep.Locks == 0 {
			ep.Locks = DefaultLocks
		}
		if ep.RetryInitial <= 0 {
			ep.RetryInitial = app.DefaultRetryInitial
		}
		if ep.RetryMax <= 0 {
			ep.RetryMax = app.DefaultRetryMax
		}
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	for name, ep := range map[string]EndpointConfig{ClientName: c.Client, ServerName: c.Server} {
		if ep.Capacity < 0 {
			return fmt.Errorf("%w: %s capacity must not be negative", domain.ErrInvalidConfig, name)
		}
		if ep.Mode != ModeManual && ep.Mode != ModeListen {
			return fmt.Errorf("%w: %s mode %d unknown", domain.ErrInvalidConfig, name, ep.Mode)
		}
		if ep.RetryMax < ep.RetryInitial {
			return fmt.Errorf("%w: %s retry max below retry initial", domain.ErrInvalidConfig, name)
		}
	}
	return nil
}

func (c EndpointConfig) internal(name string, previewWidth int) app.EndpointConfig {
	return app.EndpointConfig{
		Name:           name,
		ReadDelimiter:  c.ReadDelimiter,
		WriteDelimiter: c.WriteDelimiter,
		Timeout:        c.Timeout,
		Capacity:       c.Capacity,
		Mode:           c.Mode,
		AutoRetry:      c.AutoRetry,
		RetryInitial:   c.RetryInitial,
		RetryMax:       c.RetryMax,
		Locks:          c.Locks,
		PreviewWidth:   previewWidth,
	}
}
