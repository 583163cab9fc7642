package scenario

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bft-labs/termlink/internal/ports"
	"github.com/bft-labs/termlink/pkg/log"
	"github.com/bft-labs/termlink/pkg/termlink"
)

// ErrExpectation is returned by Run when a step's expectation is not met.
var ErrExpectation = errors.New("expectation not met")

// StepResult is the outcome of one step.
type StepResult struct {
	Index    int
	Step     Step
	Err      error
	Duration time.Duration
}

// Report summarizes a scenario run.
type Report struct {
	Name    string
	Results []StepResult
	Events  int
}

// Passed reports whether every executed step succeeded.
func (r Report) Passed() bool {
	for _, res := range r.Results {
		if res.Err != nil {
			return false
		}
	}
	return true
}

// Runner executes scenarios.
type Runner struct {
	logger ports.Logger
	opts   []termlink.Option
}

// NewRunner returns a Runner that logs to logger and passes opts to every
// session it creates.
func NewRunner(logger ports.Logger, opts ...termlink.Option) *Runner {
	if logger == nil {
		logger = log.NoopLogger{}
	}
	return &Runner{logger: logger, opts: opts}
}

// Run executes sc against a fresh session and stops at the first failing
// step. The returned error wraps ErrExpectation when an expectation failed.
func (r *Runner) Run(ctx context.Context, sc *Scenario) (Report, error) {
	report := Report{Name: sc.Name}
	col := newCollector()

	opts := append([]termlink.Option{
		termlink.WithLogger(r.logger),
		termlink.WithEventHandler(col),
		termlink.WithResponder(sc.Responder),
	}, r.opts...)

	s, err := termlink.New(sc.Config, opts...)
	if err != nil {
		return report, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	if err := s.Start(ctx); err != nil {
		return report, fmt.Errorf("scenario %s: %w", sc.Name, err)
	}
	defer func() {
		if err := s.Stop(); err != nil {
			r.logger.Warn("scenario session stop failed", ports.Err(err))
		}
	}()

	r.logger.Info("scenario started",
		ports.String("scenario", sc.Name),
		ports.String("session", s.ID()),
		ports.Int("steps", len(sc.Steps)))

	var runErr error
	for i, step := range sc.Steps {
		start := time.Now()
		stepErr := r.execute(ctx, s, col, step)
		report.Results = append(report.Results, StepResult{
			Index:    i + 1,
			Step:     step,
			Err:      stepErr,
			Duration: time.Since(start),
		})
		if stepErr != nil {
			r.logger.Warn("scenario step failed",
				ports.Int("step", i+1),
				ports.String("action", step.Action),
				ports.Err(stepErr))
			runErr = fmt.Errorf("scenario %s step %d (%s): %w", sc.Name, i+1, step, stepErr)
			break
		}
		r.logger.Debug("scenario step passed", ports.Int("step", i+1), ports.String("action", step.Action))
	}

	if err := s.Flush(ctx); err != nil && runErr == nil {
		runErr = err
	}
	report.Events = col.count()
	return report, runErr
}

func (r *Runner) execute(ctx context.Context, s *termlink.Session, col *collector, step Step) error {
	if step.Action == ActionSleep {
		select {
		case <-time.After(step.Duration):
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	ep, err := s.Endpoint(step.Endpoint)
	if err != nil {
		return err
	}

	switch step.Action {
	case ActionWrite:
		return ep.Write(ctx, step.Data)
	case ActionRead:
		return ep.Read(ctx)
	case ActionCancel:
		return ep.CancelRead(ctx)
	case ActionClear:
		return ep.Clear(ctx)
	case ActionSetReadDelimiter:
		return ep.SetReadDelimiter(ctx, step.Data)
	case ActionSetWriteDelimiter:
		return ep.SetWriteDelimiter(ctx, step.Data)
	case ActionSetTimeout:
		return ep.SetTimeout(ctx, step.Duration)
	case ActionSetCapacity:
		return ep.SetCapacity(ctx, step.Capacity)

	case ActionExpectMessage:
		env, ok := col.await(ctx, step.Within, func(env termlink.Envelope) bool {
			m, ok := env.Event.(termlink.MessageRead)
			return ok && m.Endpoint == step.Endpoint
		})
		if !ok {
			return fmt.Errorf("%w: no message on %s within %s", ErrExpectation, step.Endpoint, step.Within)
		}
		if got := env.Event.(termlink.MessageRead).Message; got != step.Data {
			return fmt.Errorf("%w: %s read %q, want %q", ErrExpectation, step.Endpoint, got, step.Data)
		}
		return nil

	case ActionExpectExpired:
		_, ok := col.await(ctx, step.Within, func(env termlink.Envelope) bool {
			e, ok := env.Event.(termlink.ReadExpired)
			return ok && e.Endpoint == step.Endpoint
		})
		if !ok {
			return fmt.Errorf("%w: no expired read on %s within %s", ErrExpectation, step.Endpoint, step.Within)
		}
		return nil

	case ActionExpectBuffer:
		snap, err := snapshot(ctx, s, ep)
		if err != nil {
			return err
		}
		if snap.Contents != step.Data {
			return fmt.Errorf("%w: %s buffer %q, want %q", ErrExpectation, step.Endpoint, snap.Contents, step.Data)
		}
		return nil

	case ActionExpectState:
		snap, err := snapshot(ctx, s, ep)
		if err != nil {
			return err
		}
		if got := snap.State.String(); got != step.Data {
			return fmt.Errorf("%w: %s state %s, want %s", ErrExpectation, step.Endpoint, got, step.Data)
		}
		return nil
	}
	return fmt.Errorf("unknown action %q", step.Action)
}

// snapshot waits for in-flight routing before copying the endpoint state.
func snapshot(ctx context.Context, s *termlink.Session, ep *termlink.Endpoint) (termlink.Snapshot, error) {
	if err := s.Flush(ctx); err != nil {
		return termlink.Snapshot{}, err
	}
	return ep.Snapshot(ctx)
}
