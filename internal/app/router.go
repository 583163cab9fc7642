package app

import (
	"github.com/bft-labs/termlink/internal/domain"
	"github.com/bft-labs/termlink/internal/ports"
)

// Router is the EventSink endpoints emit into. It forwards every event to
// its observers and schedules DataOut for routing over the link, so the
// write completes before the peer sees the data.
type Router struct {
	sched     ports.Scheduler
	link      *Link
	observers []ports.EventSink
}

// NewRouter creates a router posting onto sched.
func NewRouter(sched ports.Scheduler, observers ...ports.EventSink) *Router {
	return &Router{sched: sched, observers: observers}
}

// Attach sets the link DataOut events are routed over.
func (r *Router) Attach(link *Link) {
	r.link = link
}

// Emit implements ports.EventSink.
func (r *Router) Emit(ev domain.Event) {
	for _, o := range r.observers {
		o.Emit(ev)
	}
	out, ok := ev.(domain.DataOut)
	if !ok || r.link == nil {
		return
	}
	link := r.link
	r.sched.Post(func() { link.Route(out) })
}
