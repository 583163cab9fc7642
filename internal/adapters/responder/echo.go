package responder

import (
	"strings"

	"github.com/bft-labs/termlink/internal/ports"
)

// Echo replies with the received message, optionally prefixed.
// Empty messages get no reply.
type Echo struct {
	Prefix string
	Upper  bool
}

var _ ports.Responder = Echo{}

// Respond implements ports.Responder.
func (e Echo) Respond(msg string) (string, bool) {
	if msg == "" {
		return "", false
	}
	if e.Upper {
		msg = strings.ToUpper(msg)
	}
	return e.Prefix + msg, true
}

// Silent never replies.
var Silent = ports.ResponderFunc(func(string) (string, bool) { return "", false })

// ByName returns the responder registered under name: "ack", "echo" or
// "none". The second result is false for unknown names.
func ByName(name string, seed int64) (ports.Responder, bool) {
	switch name {
	case "", "ack":
		return NewCanned(seed), true
	case "echo":
		return Echo{}, true
	case "none":
		return Silent, true
	default:
		return nil, false
	}
}
