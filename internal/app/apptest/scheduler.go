// Package apptest provides deterministic doubles for the termlink
// application layer: a manually advanced scheduler and an event recorder.
package apptest

import (
	"sort"
	"time"

	"github.com/bft-labs/termlink/internal/ports"
)

// Scheduler is a ports.Scheduler driven by the test. Posted functions run
// only from RunPending, Advance or Do, and time only moves in Advance.
//
// Scheduler is not safe for concurrent use; drive it from the test goroutine.
type Scheduler struct {
	now     time.Time
	queue   []func()
	timers  []*timer
	seq     uint64
	running bool
}

var _ ports.Scheduler = (*Scheduler)(nil)

// NewScheduler creates a scheduler whose clock starts at start.
func NewScheduler(start time.Time) *Scheduler {
	return &Scheduler{now: start}
}

type timer struct {
	at      time.Time
	seq     uint64
	fn      func()
	stopped bool
	fired   bool
}

func (t *timer) Stop() bool {
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Post queues fn.
func (s *Scheduler) Post(fn func()) {
	s.queue = append(s.queue, fn)
}

// AfterFunc queues fn once the clock has been advanced by d.
func (s *Scheduler) AfterFunc(d time.Duration, fn func()) ports.Timer {
	if d <= 0 {
		s.Post(fn)
		return &timer{fired: true}
	}
	s.seq++
	t := &timer{at: s.now.Add(d), seq: s.seq, fn: fn}
	s.timers = append(s.timers, t)
	return t
}

// Now returns the manual clock.
func (s *Scheduler) Now() time.Time {
	return s.now
}

// Do posts fn and runs the queue until it is empty.
func (s *Scheduler) Do(fn func()) {
	s.Post(fn)
	s.RunPending()
}

// RunPending runs queued functions, including ones they post, until the
// queue is empty. It returns the number of functions run.
func (s *Scheduler) RunPending() int {
	if s.running {
		return 0
	}
	s.running = true
	defer func() { s.running = false }()

	n := 0
	for len(s.queue) > 0 {
		fn := s.queue[0]
		s.queue = s.queue[1:]
		fn()
		n++
	}
	return n
}

// Advance moves the clock forward by d, firing due timers in deadline order
// and running the queue after each one.
func (s *Scheduler) Advance(d time.Duration) {
	target := s.now.Add(d)
	s.RunPending()
	for {
		t := s.nextDue(target)
		if t == nil {
			break
		}
		s.now = t.at
		t.fired = true
		s.Post(t.fn)
		s.RunPending()
	}
	s.now = target
	s.RunPending()
}

// ActiveTimers returns the number of timers neither fired nor stopped.
func (s *Scheduler) ActiveTimers() int {
	n := 0
	for _, t := range s.timers {
		if !t.fired && !t.stopped {
			n++
		}
	}
	return n
}

// Pending returns the number of queued functions.
func (s *Scheduler) Pending() int {
	return len(s.queue)
}

// FireStale fires every stopped timer's callback, as a timer that fired
// just before being stopped would. It lets tests exercise stale callbacks.
func (s *Scheduler) FireStale() {
	for _, t := range s.timers {
		if t.stopped && !t.fired {
			t.fired = true
			s.Post(t.fn)
		}
	}
	s.RunPending()
}

func (s *Scheduler) nextDue(target time.Time) *timer {
	var due []*timer
	for _, t := range s.timers {
		if !t.fired && !t.stopped && !t.at.After(target) {
			due = append(due, t)
		}
	}
	if len(due) == 0 {
		return nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].at.Equal(due[j].at) {
			return due[i].seq < due[j].seq
		}
		return due[i].at.Before(due[j].at)
	})
	return due[0]
}
