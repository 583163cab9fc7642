package domain

import (
	"time"

	"github.com/bft-labs/termlink/pkg/framebuf"
)

// EndpointSnapshot is a point-in-time copy of an endpoint's configuration,
// state and buffer, for presentation layers.
type EndpointSnapshot struct {
	Name           string
	State          ReadState
	Mode           Mode
	ReadDelimiter  string
	WriteDelimiter string
	Timeout        time.Duration
	AutoRetry      bool
	Closed         bool

	Contents string
	Len      int
	Capacity int
	Fill     framebuf.Fill
	Preview  string
	Segments []framebuf.Segment
	Controls Controls
}
