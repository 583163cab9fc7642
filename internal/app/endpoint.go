package app

import (
	"time"

	"github.com/bft-labs/termlink/internal/domain"
	"github.com/bft-labs/termlink/internal/ports"
	"github.com/bft-labs/termlink/pkg/framebuf"
)

// Default endpoint values.
const (
	DefaultTimeout      = 2 * time.Second
	DefaultPreviewWidth = 32
)

// EndpointConfig holds the settings an endpoint starts with.
type EndpointConfig struct {
	Name           string
	ReadDelimiter  string
	WriteDelimiter string
	Timeout        time.Duration
	Capacity       int
	Mode           domain.Mode

	// AutoRetry re-issues a read that ended without a frame after a
	// backoff delay between RetryInitial and RetryMax.
	AutoRetry    bool
	RetryInitial time.Duration
	RetryMax     time.Duration

	// Locks are the controls reported as disabled while busy reading.
	Locks domain.Control

	PreviewWidth int
}

// Endpoint owns one frame buffer and runs the Idle/BusyReading state machine.
//
// Endpoint is not safe for concurrent use. Every method, and every timer
// callback it arms, runs on its scheduler's thread.
type Endpoint struct {
	name           string
	readDelimiter  string
	writeDelimiter string
	timeout        time.Duration
	mode           domain.Mode
	autoRetry      bool
	locks          domain.Control
	previewWidth   int

	buffer *framebuf.Buffer
	state  domain.ReadState
	closed bool

	// pending is non-nil iff state is BusyReading. gen identifies the
	// current arming so stale expiries can be told apart.
	pending   ports.Timer
	gen       uint64
	armedFor  time.Duration
	readSince time.Time

	retry    ports.Timer
	retryGen uint64
	backoff  *backoff

	responder ports.Responder
	sched     ports.Scheduler
	sink      ports.EventSink
	logger    ports.Logger
}

// NewEndpoint creates an idle endpoint with an empty buffer.
// responder may be nil.
func NewEndpoint(cfg EndpointConfig, sched ports.Scheduler, sink ports.EventSink, logger ports.Logger, responder ports.Responder) *Endpoint {
	if cfg.Timeout < 0 {
		cfg.Timeout = 0
	}
	if cfg.PreviewWidth <= 0 {
		cfg.PreviewWidth = DefaultPreviewWidth
	}
	return &Endpoint{
		name:           cfg.Name,
		readDelimiter:  cfg.ReadDelimiter,
		writeDelimiter: cfg.WriteDelimiter,
		timeout:        cfg.Timeout,
		mode:           cfg.Mode,
		autoRetry:      cfg.AutoRetry,
		locks:          cfg.Locks,
		previewWidth:   cfg.PreviewWidth,
		buffer:         framebuf.New(cfg.Capacity),
		state:          domain.StateIdle,
		backoff:        newBackoff(cfg.RetryInitial, cfg.RetryMax),
		responder:      responder,
		sched:          sched,
		sink:           sink,
		logger:         logger.With(ports.String("endpoint", cfg.Name)),
	}
}

// Name returns the endpoint name.
func (e *Endpoint) Name() string { return e.name }

// State returns the current read state.
func (e *Endpoint) State() domain.ReadState { return e.state }

// Write emits a DataOut carrying payload followed by the write delimiter.
// It is allowed in any read state.
func (e *Endpoint) Write(payload string) error {
	if e.closed {
		return domain.ErrClosed
	}
	data := payload + e.writeDelimiter
	e.logger.Debug("write", ports.Quoted("data", data))
	e.emit(domain.DataOut{
		Endpoint:  e.name,
		Payload:   payload,
		Delimiter: e.writeDelimiter,
		Data:      data,
	})
	return nil
}

// Receive appends data to the buffer. A pending read is re-evaluated after
// the append; a listening endpoint drains every complete frame.
func (e *Endpoint) Receive(data string) {
	if e.closed {
		e.logger.Debug("receive on closed endpoint dropped", ports.Quoted("data", data))
		return
	}
	e.buffer.Append(data)
	e.emit(domain.DataIn{Endpoint: e.name, Data: data})
	e.emitBuffer()

	switch {
	case e.mode == domain.ModeListen:
		e.drain()
	case e.state == domain.StateBusyReading:
		e.attempt()
	}
}

// Read tries to extract a frame. Without one it either gives up at once
// (zero timeout) or enters BusyReading until data completes a frame or the
// timeout expires. A second Read while busy is rejected.
func (e *Endpoint) Read() error {
	if e.closed {
		return domain.ErrClosed
	}
	if e.state == domain.StateBusyReading {
		e.logger.Warn("read rejected, already busy")
		return domain.ErrReadInFlight
	}
	e.cancelRetry()
	e.attempt()
	return nil
}

// CancelRead ends a pending read without a message and stops auto-retry.
func (e *Endpoint) CancelRead() error {
	if e.closed {
		return domain.ErrClosed
	}
	e.cancelRetry()
	if e.state != domain.StateBusyReading {
		return nil
	}
	waited := e.sched.Now().Sub(e.readSince)
	e.stopTimer()
	e.setState(domain.StateIdle)
	e.emit(domain.ReadExpired{Endpoint: e.name, Waited: waited, Cancelled: true})
	return nil
}

// SetReadDelimiter changes the read delimiter. A pending read keeps waiting;
// the new delimiter applies from the next evaluation.
func (e *Endpoint) SetReadDelimiter(d string) {
	e.readDelimiter = d
	e.logger.Debug("read delimiter set", ports.Quoted("delimiter", d))
}

// SetWriteDelimiter changes the delimiter appended to written payloads.
func (e *Endpoint) SetWriteDelimiter(d string) {
	e.writeDelimiter = d
	e.logger.Debug("write delimiter set", ports.Quoted("delimiter", d))
}

// SetTimeout changes the read timeout, clamping negatives to zero. An
// already armed timer keeps its original duration.
func (e *Endpoint) SetTimeout(d time.Duration) {
	if d < 0 {
		d = 0
	}
	e.timeout = d
	e.logger.Debug("timeout set", ports.Duration("timeout", d))
}

// SetCapacity changes the buffer capacity, trimming old content if needed.
func (e *Endpoint) SetCapacity(n int) {
	e.buffer.SetCapacity(n)
	e.emitBuffer()
}

// Clear discards buffered content.
func (e *Endpoint) Clear() {
	e.buffer.Clear()
	e.emitBuffer()
}

// Close cancels any pending timer and refuses further operations.
func (e *Endpoint) Close() {
	if e.closed {
		return
	}
	e.cancelRetry()
	if e.state == domain.StateBusyReading {
		e.stopTimer()
		e.setState(domain.StateIdle)
	}
	e.closed = true
	e.logger.Debug("endpoint closed")
}

// Snapshot copies the endpoint's configuration, state and buffer.
func (e *Endpoint) Snapshot() domain.EndpointSnapshot {
	return domain.EndpointSnapshot{
		Name:           e.name,
		State:          e.state,
		Mode:           e.mode,
		ReadDelimiter:  e.readDelimiter,
		WriteDelimiter: e.writeDelimiter,
		Timeout:        e.timeout,
		AutoRetry:      e.autoRetry,
		Closed:         e.closed,
		Contents:       e.buffer.String(),
		Len:            e.buffer.Len(),
		Capacity:       e.buffer.Capacity(),
		Fill:           e.buffer.Fill(),
		Preview:        e.buffer.RenderPreview(e.previewWidth),
		Segments:       e.buffer.Segments(e.readDelimiter),
		Controls:       domain.ControlsFor(e.state, e.mode, e.locks),
	}
}

// attempt evaluates the buffer against the read delimiter.
func (e *Endpoint) attempt() {
	msg, found := e.buffer.ExtractMessage(e.readDelimiter)
	if found {
		e.emitBuffer()
		e.logger.Debug("read", ports.Quoted("message", msg))
		e.emit(domain.MessageRead{Endpoint: e.name, Message: msg})
		e.backoff.Reset()
		if e.state == domain.StateBusyReading {
			e.stopTimer()
			e.setState(domain.StateIdle)
		}
		return
	}

	// Still waiting: the deadline set by the explicit read stands.
	if e.state == domain.StateBusyReading {
		return
	}

	if e.timeout == 0 {
		e.emit(domain.ReadExpired{Endpoint: e.name})
		e.scheduleRetry()
		return
	}

	e.gen++
	gen := e.gen
	e.armedFor = e.timeout
	e.readSince = e.sched.Now()
	e.pending = e.sched.AfterFunc(e.timeout, func() { e.expire(gen) })
	e.setState(domain.StateBusyReading)
}

// expire handles a timer callback. Callbacks from an earlier arming, or
// arriving after the read already completed, are ignored.
func (e *Endpoint) expire(gen uint64) {
	if e.closed || e.state != domain.StateBusyReading || gen != e.gen {
		e.logger.Debug("stale read timer ignored", ports.Uint64("gen", gen), ports.Uint64("current", e.gen))
		return
	}
	e.pending = nil
	e.setState(domain.StateIdle)
	e.logger.Debug("read timed out", ports.Duration("timeout", e.armedFor))
	e.emit(domain.ReadExpired{Endpoint: e.name, Waited: e.armedFor})
	e.scheduleRetry()
}

// drain reads every complete frame and passes each to the responder.
func (e *Endpoint) drain() {
	extracted := false
	for {
		msg, found := e.buffer.ExtractMessage(e.readDelimiter)
		if !found {
			break
		}
		extracted = true
		e.emit(domain.MessageRead{Endpoint: e.name, Message: msg})
		if e.responder == nil {
			continue
		}
		if reply, ok := e.responder.Respond(msg); ok {
			_ = e.Write(reply)
		}
	}
	if !extracted {
		return
	}
	e.emitBuffer()
	e.backoff.Reset()
	if e.state == domain.StateBusyReading {
		e.stopTimer()
		e.setState(domain.StateIdle)
	}
}

func (e *Endpoint) scheduleRetry() {
	if !e.autoRetry || e.closed {
		return
	}
	delay := e.backoff.Next()
	e.retryGen++
	gen := e.retryGen
	e.retry = e.sched.AfterFunc(delay, func() { e.retryRead(gen) })
	e.logger.Debug("read retry scheduled", ports.Duration("delay", delay))
}

func (e *Endpoint) retryRead(gen uint64) {
	if e.closed || gen != e.retryGen || e.state == domain.StateBusyReading {
		return
	}
	e.retry = nil
	e.attempt()
}

func (e *Endpoint) cancelRetry() {
	if e.retry != nil {
		e.retry.Stop()
		e.retry = nil
	}
	e.retryGen++
}

func (e *Endpoint) stopTimer() {
	if e.pending != nil {
		e.pending.Stop()
		e.pending = nil
	}
	e.gen++
}

func (e *Endpoint) setState(s domain.ReadState) {
	prev := e.state
	if prev == s {
		return
	}
	e.state = s
	e.emit(domain.StateChanged{
		Endpoint: e.name,
		Previous: prev,
		Current:  s,
		Controls: domain.ControlsFor(s, e.mode, e.locks),
	})
}

func (e *Endpoint) emitBuffer() {
	e.emit(domain.BufferChanged{
		Endpoint: e.name,
		Contents: e.buffer.String(),
		Len:      e.buffer.Len(),
		Capacity: e.buffer.Capacity(),
		Fill:     e.buffer.Fill(),
	})
}

func (e *Endpoint) emit(ev domain.Event) {
	if e.sink != nil {
		e.sink.Emit(ev)
	}
}
