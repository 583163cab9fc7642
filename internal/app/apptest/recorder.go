package apptest

import (
	"sync"

	"github.com/bft-labs/termlink/internal/domain"
)

// Recorder is a ports.EventSink that keeps every event it receives.
type Recorder struct {
	mu     sync.Mutex
	events []domain.Event
}

// Emit records ev.
func (r *Recorder) Emit(ev domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

// Events returns a copy of everything recorded.
func (r *Recorder) Events() []domain.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Event, len(r.events))
	copy(out, r.events)
	return out
}

// Reset drops recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = nil
}

// Of returns the recorded events of type T in emission order.
func Of[T domain.Event](r *Recorder) []T {
	var out []T
	for _, ev := range r.Events() {
		if t, ok := ev.(T); ok {
			out = append(out, t)
		}
	}
	return out
}
