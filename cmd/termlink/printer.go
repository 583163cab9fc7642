package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/bft-labs/termlink/pkg/framebuf"
	"github.com/bft-labs/termlink/pkg/termlink"
)

// printer writes session events to a terminal, one line each.
type printer struct {
	mu      sync.Mutex
	w       io.Writer
	buffers bool
}

func newPrinter(w io.Writer, buffers bool) *printer {
	return &printer{w: w, buffers: buffers}
}

func (p *printer) OnStateChange(ev termlink.StateChangeEvent) {
	if ev.Current == termlink.StateCrashed {
		p.printf("session crashed: %s\n", ev.Reason)
	}
}

func (p *printer) OnEvent(env termlink.Envelope) {
	if line, ok := formatEvent(env.Event, p.buffers); ok {
		p.printf("%s\n", line)
	}
}

func (p *printer) printf(format string, args ...interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, format, args...)
}

// formatEvent renders ev for display. Buffer changes are only shown when
// buffers is set.
func formatEvent(ev termlink.Event, buffers bool) (string, bool) {
	switch e := ev.(type) {
	case termlink.DataOut:
		return fmt.Sprintf("%-6s >> %s", e.Endpoint, framebuf.Preview(e.Data, 0)), true
	case termlink.MessageRead:
		return fmt.Sprintf("%-6s read %q", e.Endpoint, e.Message), true
	case termlink.ReadExpired:
		switch {
		case e.Cancelled:
			return fmt.Sprintf("%-6s read cancelled after %s", e.Endpoint, e.Waited), true
		case e.Waited == 0:
			return fmt.Sprintf("%-6s nothing to read", e.Endpoint), true
		default:
			return fmt.Sprintf("%-6s read timed out after %s", e.Endpoint, e.Waited), true
		}
	case termlink.ReadStateEvent:
		return fmt.Sprintf("%-6s %s", e.Endpoint, e.Current), true
	case termlink.BufferChanged:
		if !buffers {
			return "", false
		}
		return fmt.Sprintf("%-6s buffer [%s] %s", e.Endpoint, framebuf.Preview(e.Contents, 0), fill(e.Len, e.Capacity)), true
	default:
		return "", false
	}
}

func fill(n, capacity int) string {
	if capacity <= 0 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%d/%d", n, capacity)
}
