package ports

import "time"

// Scheduler serializes all endpoint work onto one logical thread.
//
// Post and AfterFunc callbacks run one at a time, in the order they were
// posted or fired. Implementations must never run a callback concurrently
// with another callback of the same scheduler.
type Scheduler interface {
	// Post enqueues fn to run on the scheduler's thread. It never blocks.
	Post(fn func())

	// AfterFunc arranges for fn to be posted once d has elapsed.
	// A zero or negative d posts fn immediately.
	AfterFunc(d time.Duration, fn func()) Timer

	// Now returns the scheduler's notion of the current time.
	Now() time.Time
}

// Timer is a pending AfterFunc callback.
type Timer interface {
	// Stop prevents the callback from being posted. It returns false if the
	// timer already fired; a fired callback may still be queued, so callers
	// must guard their callbacks rather than rely on Stop.
	Stop() bool
}
