package ports

import "github.com/bft-labs/termlink/internal/domain"

// EventSink receives endpoint events. Emit is called on the scheduler
// thread, in emission order, and must not block.
type EventSink interface {
	Emit(ev domain.Event)
}

// EventSinkFunc adapts a function to EventSink.
type EventSinkFunc func(ev domain.Event)

// Emit calls f(ev).
func (f EventSinkFunc) Emit(ev domain.Event) { f(ev) }
