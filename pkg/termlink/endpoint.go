package termlink

import (
	"context"
	"time"

	"github.com/bft-labs/termlink/internal/app"
	"github.com/bft-labs/termlink/internal/domain"
)

// Endpoint is a goroutine-safe handle on one end of a running session.
// Each method runs the operation on the session loop and waits for it.
// Handles stay valid across Stop and Start; between runs every method
// returns ErrNotRunning.
type Endpoint struct {
	s    *Session
	name string
}

// Name returns "client" or "server".
func (e *Endpoint) Name() string { return e.name }

// Peer returns the handle of the opposite endpoint.
func (e *Endpoint) Peer() *Endpoint {
	if e.name == ClientName {
		return e.s.server
	}
	return e.s.client
}

// Write sends payload followed by the write delimiter to the peer.
// It succeeds in any read state.
func (e *Endpoint) Write(ctx context.Context, payload string) error {
	return e.do(ctx, func(ep *app.Endpoint) error { return ep.Write(payload) })
}

// Read starts a read. A frame already buffered is reported at once as a
// MessageRead event; otherwise the endpoint waits for one until its timeout
// and reports ReadExpired if none arrives. Read returns ErrReadInFlight
// while an earlier read is pending.
func (e *Endpoint) Read(ctx context.Context) error {
	return e.do(ctx, func(ep *app.Endpoint) error { return ep.Read() })
}

// CancelRead ends a pending read without a message and stops auto-retry.
func (e *Endpoint) CancelRead(ctx context.Context) error {
	return e.do(ctx, func(ep *app.Endpoint) error { return ep.CancelRead() })
}

// Clear discards buffered data.
func (e *Endpoint) Clear(ctx context.Context) error {
	return e.do(ctx, func(ep *app.Endpoint) error {
		ep.Clear()
		return nil
	})
}

// SetReadDelimiter changes the read delimiter. A pending read is not
// re-evaluated; the delimiter applies from the next evaluation.
func (e *Endpoint) SetReadDelimiter(ctx context.Context, d string) error {
	return e.do(ctx, func(ep *app.Endpoint) error {
		ep.SetReadDelimiter(d)
		return nil
	})
}

// SetWriteDelimiter changes the delimiter appended to written payloads.
func (e *Endpoint) SetWriteDelimiter(ctx context.Context, d string) error {
	return e.do(ctx, func(ep *app.Endpoint) error {
		ep.SetWriteDelimiter(d)
		return nil
	})
}

// SetTimeout changes the read timeout for subsequent reads. Negative
// values are treated as zero.
func (e *Endpoint) SetTimeout(ctx context.Context, d time.Duration) error {
	return e.do(ctx, func(ep *app.Endpoint) error {
		ep.SetTimeout(d)
		return nil
	})
}

// SetCapacity changes the buffer capacity, dropping the oldest characters
// beyond it. Zero means unbounded.
func (e *Endpoint) SetCapacity(ctx context.Context, n int) error {
	return e.do(ctx, func(ep *app.Endpoint) error {
		ep.SetCapacity(n)
		return nil
	})
}

// Snapshot returns a copy of the endpoint's state and buffer.
func (e *Endpoint) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := e.do(ctx, func(ep *app.Endpoint) error {
		snap = ep.Snapshot()
		return nil
	})
	return snap, err
}

func (e *Endpoint) do(ctx context.Context, fn func(*app.Endpoint) error) error {
	rt := e.s.current()
	if rt == nil {
		return domain.ErrNotRunning
	}
	ep, ok := rt.endpoints[e.name]
	if !ok {
		return domain.ErrUnknownEndpoint
	}
	return rt.loop.Call(ctx, func() error { return fn(ep) })
}
