package responder

import (
	"math/rand"
	"sync"

	"github.com/bft-labs/termlink/internal/ports"
)

// DefaultReplies are the acknowledgements a Canned responder picks from.
var DefaultReplies = []string{
	"Got it, thanks!",
	"Received, thanks!",
	"Thanks, noted.",
	"Understood, thanks!",
	"Acknowledged.",
	"Thanks, will do.",
	"Got it.",
	"Noted.",
	"Copy that.",
	"Received.",
}

// Canned answers every message with a randomly chosen reply.
type Canned struct {
	mu      sync.Mutex
	replies []string
	rnd     *rand.Rand
}

var _ ports.Responder = (*Canned)(nil)

// NewCanned creates a responder choosing from replies, or DefaultReplies
// when replies is empty. seed makes the choice sequence reproducible.
func NewCanned(seed int64, replies ...string) *Canned {
	if len(replies) == 0 {
		replies = DefaultReplies
	}
	return &Canned{
		replies: append([]string(nil), replies...),
		rnd:     rand.New(rand.NewSource(seed)),
	}
}

// Respond implements ports.Responder.
func (c *Canned) Respond(string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.replies[c.rnd.Intn(len(c.replies))], true
}
