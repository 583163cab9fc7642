package app

import (
	"fmt"

	"github.com/bft-labs/termlink/internal/domain"
	"github.com/bft-labs/termlink/internal/ports"
)

// Link is the static route between exactly two endpoints. Every frame one
// endpoint writes is delivered, unchanged, to the other's Receive.
type Link struct {
	a, b   *Endpoint
	logger ports.Logger
}

// NewLink pairs a and b. The endpoints must be distinct and differently named.
func NewLink(a, b *Endpoint, logger ports.Logger) (*Link, error) {
	if a == nil || b == nil {
		return nil, fmt.Errorf("%w: link needs two endpoints", domain.ErrInvalidConfig)
	}
	if a == b || a.Name() == b.Name() {
		return nil, fmt.Errorf("%w: link endpoints must be distinct, got %q twice", domain.ErrInvalidConfig, a.Name())
	}
	return &Link{a: a, b: b, logger: logger}, nil
}

// Route hands ev.Data to the endpoint that did not send it.
func (l *Link) Route(ev domain.DataOut) {
	peer := l.Peer(ev.Endpoint)
	if peer == nil {
		l.logger.Warn("data from endpoint outside the link dropped", ports.String("sender", ev.Endpoint))
		return
	}
	l.logger.Debug("route",
		ports.String("from", ev.Endpoint),
		ports.String("to", peer.Name()),
		ports.Quoted("data", ev.Data),
	)
	peer.Receive(ev.Data)
}

// Peer returns the endpoint opposite the one called name, or nil if name is
// not part of the link.
func (l *Link) Peer(name string) *Endpoint {
	switch name {
	case l.a.Name():
		return l.b
	case l.b.Name():
		return l.a
	default:
		return nil
	}
}

// Endpoint returns the linked endpoint called name, or nil.
func (l *Link) Endpoint(name string) *Endpoint {
	switch name {
	case l.a.Name():
		return l.a
	case l.b.Name():
		return l.b
	default:
		return nil
	}
}

// Endpoints returns both ends in construction order.
func (l *Link) Endpoints() (*Endpoint, *Endpoint) {
	return l.a, l.b
}
