package termlink

import (
	"time"

	"github.com/bft-labs/termlink/internal/domain"
)

// Endpoint events. Every event names the endpoint that emitted it.
type (
	Event          = domain.Event
	DataOut        = domain.DataOut
	DataIn         = domain.DataIn
	MessageRead    = domain.MessageRead
	ReadExpired    = domain.ReadExpired
	ReadStateEvent = domain.StateChanged
	BufferChanged  = domain.BufferChanged
)

// Envelope wraps an endpoint event with its position in the session's
// event stream. Seq starts at 1 for every Start and increases by one per
// event.
type Envelope struct {
	Seq   uint64
	Time  time.Time
	Event Event
}

// StateChangeEvent is emitted when the session lifecycle state changes.
type StateChangeEvent struct {
	Previous State
	Current  State
	Reason   string
}

// EventHandler receives session notifications.
//
// OnEvent is called from a dedicated dispatcher goroutine, one event at a
// time in emission order, so it may call back into Session and Endpoint
// methods. OnStateChange is called synchronously from Start and Stop.
type EventHandler interface {
	OnStateChange(event StateChangeEvent)
	OnEvent(env Envelope)
}

// BaseEventHandler provides no-op implementations of all EventHandler
// methods. Embed it to implement only the methods you need.
type BaseEventHandler struct{}

// OnStateChange does nothing.
func (BaseEventHandler) OnStateChange(StateChangeEvent) {}

// OnEvent does nothing.
func (BaseEventHandler) OnEvent(Envelope) {}

// EventFunc adapts a function to EventHandler, ignoring lifecycle changes.
type EventFunc func(env Envelope)

// OnStateChange does nothing.
func (EventFunc) OnStateChange(StateChangeEvent) {}

// OnEvent calls f(env).
func (f EventFunc) OnEvent(env Envelope) { f(env) }
