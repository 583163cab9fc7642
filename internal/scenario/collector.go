package scenario

import (
	"context"
	"sync"
	"time"

	"github.com/bft-labs/termlink/pkg/termlink"
)

// collector keeps every envelope a session delivers so expectations can
// claim them. Each envelope satisfies at most one expectation.
type collector struct {
	termlink.BaseEventHandler

	mu       sync.Mutex
	events   []termlink.Envelope
	consumed []bool
	notify   chan struct{}
}

func newCollector() *collector {
	return &collector{notify: make(chan struct{}, 1)}
}

// OnEvent implements termlink.EventHandler.
func (c *collector) OnEvent(env termlink.Envelope) {
	c.mu.Lock()
	c.events = append(c.events, env)
	c.consumed = append(c.consumed, false)
	c.mu.Unlock()

	select {
	case c.notify <- struct{}{}:
	default:
	}
}

// claim marks and returns the oldest unclaimed envelope accepted by match.
func (c *collector) claim(match func(termlink.Envelope) bool) (termlink.Envelope, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, env := range c.events {
		if !c.consumed[i] && match(env) {
			c.consumed[i] = true
			return env, true
		}
	}
	return termlink.Envelope{}, false
}

// await waits up to within for an envelope accepted by match.
func (c *collector) await(ctx context.Context, within time.Duration, match func(termlink.Envelope) bool) (termlink.Envelope, bool) {
	timer := time.NewTimer(within)
	defer timer.Stop()

	for {
		if env, ok := c.claim(match); ok {
			return env, true
		}
		select {
		case <-c.notify:
		case <-timer.C:
			return c.claim(match)
		case <-ctx.Done():
			return termlink.Envelope{}, false
		}
	}
}

// count returns the number of envelopes received so far.
func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}
