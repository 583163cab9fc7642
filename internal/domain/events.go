package domain

import (
	"time"

	"github.com/bft-labs/termlink/pkg/framebuf"
)

// Event is implemented by every notification an endpoint emits.
type Event interface {
	// Source is the name of the endpoint that emitted the event.
	Source() string
}

// DataOut carries a written frame from its sender towards the link.
// Data is Payload followed by Delimiter.
type DataOut struct {
	Endpoint  string
	Payload   string
	Delimiter string
	Data      string
}

// DataIn reports raw data appended to an endpoint's buffer.
type DataIn struct {
	Endpoint string
	Data     string
}

// MessageRead reports a complete frame extracted by a read.
type MessageRead struct {
	Endpoint string
	Message  string
}

// ReadExpired reports a read that ended without a frame: either the timeout
// elapsed, or the timeout was zero and no frame was buffered.
type ReadExpired struct {
	Endpoint string
	Waited   time.Duration
	// Cancelled is set when the read was ended explicitly rather than by time.
	Cancelled bool
}

// StateChanged reports a read-state transition.
type StateChanged struct {
	Endpoint string
	Previous ReadState
	Current  ReadState
	Controls Controls
}

// BufferChanged reports new buffer content after an append, extraction or clear.
type BufferChanged struct {
	Endpoint string
	Contents string
	Len      int
	Capacity int
	Fill     framebuf.Fill
}

func (e DataOut) Source() string       { return e.Endpoint }
func (e DataIn) Source() string        { return e.Endpoint }
func (e MessageRead) Source() string   { return e.Endpoint }
func (e ReadExpired) Source() string   { return e.Endpoint }
func (e StateChanged) Source() string  { return e.Endpoint }
func (e BufferChanged) Source() string { return e.Endpoint }
