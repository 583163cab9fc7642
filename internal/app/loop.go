package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bft-labs/termlink/internal/domain"
	"github.com/bft-labs/termlink/internal/ports"
)

// Loop is the single logical thread a session runs on. It executes posted
// functions one at a time in FIFO order and delivers timer expiries back
// onto the same queue. Loop implements ports.Scheduler.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	wake   chan struct{}
	done   chan struct{}
	once   sync.Once
	logger ports.Logger
}

var _ ports.Scheduler = (*Loop)(nil)

// NewLoop creates a loop. Call Run to start processing.
func NewLoop(logger ports.Logger) *Loop {
	return &Loop{
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		logger: logger,
	}
}

// Post enqueues fn. Functions posted after the loop stopped are dropped.
func (l *Loop) Post(fn func()) {
	select {
	case <-l.done:
		return
	default:
	}

	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// AfterFunc posts fn once d has elapsed.
func (l *Loop) AfterFunc(d time.Duration, fn func()) ports.Timer {
	if d <= 0 {
		l.Post(fn)
		return firedTimer{}
	}
	return time.AfterFunc(d, func() { l.Post(fn) })
}

// Now returns the wall clock time.
func (l *Loop) Now() time.Time {
	return time.Now()
}

// Run processes posted functions until ctx is cancelled. It returns
// ctx.Err(). Run must be called at most once.
func (l *Loop) Run(ctx context.Context) error {
	defer l.once.Do(func() { close(l.done) })

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fn, ok := l.next()
		if !ok {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-l.wake:
			}
			continue
		}
		l.exec(fn)
	}
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

// Call runs fn on the loop and waits for its result. It must not be called
// from a function already running on the loop.
func (l *Loop) Call(ctx context.Context, fn func() error) error {
	result := make(chan error, 1)
	l.Post(func() {
		defer func() {
			if r := recover(); r != nil {
				l.logger.Error("loop call panicked", ports.String("panic", fmt.Sprint(r)))
				result <- fmt.Errorf("termlink: call panicked: %v", r)
			}
		}()
		result <- fn()
	})

	select {
	case err := <-result:
		return err
	case <-l.done:
		// fn may have run just before the loop stopped.
		select {
		case err := <-result:
			return err
		default:
			return domain.ErrNotRunning
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Flush waits until everything posted before the call has run, together
// with anything those functions post in turn. Timers that have not fired
// are not waited for.
func (l *Loop) Flush(ctx context.Context) error {
	for {
		idle := false
		if err := l.Call(ctx, func() error {
			idle = l.Pending() == 0
			return nil
		}); err != nil {
			return err
		}
		if idle {
			return nil
		}
	}
}

// Pending returns the number of queued functions.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, true
}

func (l *Loop) exec(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("loop task panicked", ports.String("panic", fmt.Sprint(r)))
		}
	}()
	fn()
}

// firedTimer is returned for callbacks that were posted immediately.
type firedTimer struct{}

func (firedTimer) Stop() bool { return false }
