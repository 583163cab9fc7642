package app

import (
	"math/rand"
	"time"
)

// Default auto-retry backoff values.
const (
	DefaultRetryInitial = 500 * time.Millisecond
	DefaultRetryMax     = 10 * time.Second
)

// backoff yields exponentially growing delays with ±20% jitter.
// It never sleeps; callers schedule the returned delay.
type backoff struct {
	initial time.Duration
	max     time.Duration
	current time.Duration
	jitter  float64
}

func newBackoff(initial, max time.Duration) *backoff {
	if initial <= 0 {
		initial = DefaultRetryInitial
	}
	if max <= 0 {
		max = DefaultRetryMax
	}
	if max < initial {
		max = initial
	}
	return &backoff{
		initial: initial,
		max:     max,
		current: initial,
		jitter:  0.2,
	}
}

// Next returns the delay to wait now and grows the following one.
func (b *backoff) Next() time.Duration {
	j := float64(b.current) * b.jitter * (rand.Float64()*2 - 1)
	delay := time.Duration(float64(b.current) + j)

	b.current *= 2
	if b.current > b.max {
		b.current = b.max
	}
	return delay
}

// Reset returns to the initial delay.
func (b *backoff) Reset() {
	b.current = b.initial
}

// Current returns the un-jittered delay Next would start from.
func (b *backoff) Current() time.Duration {
	return b.current
}
