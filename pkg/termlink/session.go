package termlink

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	logAdapter "github.com/bft-labs/termlink/internal/adapters/log"
	"github.com/bft-labs/termlink/internal/app"
	"github.com/bft-labs/termlink/internal/domain"
	"github.com/bft-labs/termlink/internal/ports"
)

// flushTimeout bounds how long Stop waits for pending events to be handled.
const flushTimeout = time.Second

// Session is a client and a server endpoint joined by a link, driven by a
// single event loop. Use New() to create one, then Start() to run it.
//
// All methods are safe for concurrent use, but endpoint operations must not
// be called from the loop itself, only from other goroutines such as an
// EventHandler.
type Session struct {
	id        string
	config    Config
	opts      options
	lifecycle *app.Lifecycle
	logger    ports.Logger
	plugins   []Plugin

	client *Endpoint
	server *Endpoint

	// ctl serializes Start and Stop. mu guards rt.
	ctl sync.Mutex
	mu  sync.RWMutex
	rt  *runtime
}

// runtime is everything that lives from one Start to the matching Stop.
type runtime struct {
	loop      *app.Loop
	dispatch  *app.Loop
	link      *app.Link
	endpoints map[string]*app.Endpoint
	cancel    context.CancelFunc
}

// New creates a Session with the given configuration.
// The session is created in StateStopped; call Start() to run it.
func New(cfg Config, opts ...Option) (*Session, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if err := validateModuleVersions(); err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	id := uuid.NewString()
	logger := o.logger.With(ports.String("session", id))

	emitter := &eventEmitterWrapper{handler: o.eventHandler}

	s := &Session{
		id:        id,
		config:    cfg,
		opts:      o,
		lifecycle: app.NewLifecycle(logger, emitter),
		logger:    logger,
		plugins:   o.plugins,
	}
	s.client = &Endpoint{s: s, name: ClientName}
	s.server = &Endpoint{s: s, name: ServerName}
	return s, nil
}

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Config returns the configuration the session was created with.
func (s *Session) Config() Config { return s.config }

// Client returns the handle of the client endpoint.
func (s *Session) Client() *Endpoint { return s.client }

// Server returns the handle of the server endpoint.
func (s *Session) Server() *Endpoint { return s.server }

// Endpoint returns the handle of the endpoint called name.
func (s *Session) Endpoint(name string) (*Endpoint, error) {
	switch name {
	case ClientName:
		return s.client, nil
	case ServerName:
		return s.server, nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownEndpoint, name)
	}
}

// Status returns the current lifecycle state.
// Safe to call concurrently from any goroutine.
func (s *Session) Status() State {
	return convertState(s.lifecycle.State())
}

// Start builds fresh endpoints, starts the event loop and initializes the
// plugins. Endpoints start idle with empty buffers on every Start.
// Returns ErrAlreadyRunning if the session is not stopped.
func (s *Session) Start(ctx context.Context) error {
	s.ctl.Lock()
	defer s.ctl.Unlock()

	if !s.lifecycle.CanStart() {
		return domain.ErrAlreadyRunning
	}
	if err := s.lifecycle.TransitionTo(app.StateStarting, "Start() called"); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.lifecycle.SetCancel(cancel)

	rt, err := s.build(cancel)
	if err != nil {
		cancel()
		_ = s.lifecycle.TransitionTo(app.StateCrashed, err.Error())
		return err
	}

	s.lifecycle.Go(func() { _ = rt.loop.Run(runCtx) })
	s.lifecycle.Go(func() { _ = rt.dispatch.Run(runCtx) })

	s.mu.Lock()
	s.rt = rt
	s.mu.Unlock()

	pluginCfg := PluginConfig{
		Session:   s,
		SessionID: s.id,
		Logger:    s.logger,
	}
	for i, p := range s.plugins {
		if err := safeInitialize(runCtx, p, pluginCfg); err != nil {
			s.logger.Error("plugin initialization failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
			s.shutdownPlugins(s.plugins[:i])
			s.teardown(rt)
			_ = s.lifecycle.TransitionTo(app.StateCrashed, "plugin init failed: "+p.Name())
			return fmt.Errorf("plugin %s: %w", p.Name(), err)
		}
		s.logger.Info("plugin initialized", ports.String("plugin", p.Name()))
	}

	return s.lifecycle.TransitionTo(app.StateRunning, "session started")
}

// Stop closes both endpoints, cancelling pending reads, delivers the
// remaining events and shuts plugins down.
// Returns nil on graceful shutdown, ErrShutdownTimeout if forced.
func (s *Session) Stop() error {
	s.ctl.Lock()
	defer s.ctl.Unlock()

	if !s.lifecycle.CanStop() {
		return domain.ErrNotRunning
	}
	if err := s.lifecycle.TransitionTo(app.StateStopping, "Stop() called"); err != nil {
		return err
	}

	s.shutdownPlugins(s.plugins)

	rt := s.current()
	err := s.teardown(rt)

	if err != nil {
		_ = s.lifecycle.TransitionTo(app.StateCrashed, "shutdown timeout")
	} else {
		_ = s.lifecycle.TransitionTo(app.StateStopped, "graceful shutdown")
	}
	return err
}

// Flush waits until every operation and event emitted before the call has
// been processed and delivered to the event handler. Pending read timeouts
// are not waited for.
func (s *Session) Flush(ctx context.Context) error {
	rt := s.current()
	if rt == nil {
		return domain.ErrNotRunning
	}
	if err := rt.loop.Flush(ctx); err != nil {
		return err
	}
	return rt.dispatch.Flush(ctx)
}

// build creates the loop, endpoints and link for one run.
func (s *Session) build(cancel context.CancelFunc) (*runtime, error) {
	loop := app.NewLoop(s.logger)
	dispatch := app.NewLoop(s.logger)

	observers := []ports.EventSink{logAdapter.NewEventLogger(s.logger)}
	if s.opts.eventHandler != nil {
		observers = append(observers, newSequencer(dispatch, s.opts.eventHandler, s.opts.clock))
	}
	router := app.NewRouter(loop, observers...)

	client := app.NewEndpoint(s.config.Client.internal(ClientName, s.config.PreviewWidth),
		loop, router, s.logger, s.opts.responders[ClientName])
	server := app.NewEndpoint(s.config.Server.internal(ServerName, s.config.PreviewWidth),
		loop, router, s.logger, s.opts.responders[ServerName])

	link, err := app.NewLink(client, server, s.logger)
	if err != nil {
		return nil, err
	}
	router.Attach(link)

	return &runtime{
		loop:     loop,
		dispatch: dispatch,
		link:     link,
		endpoints: map[string]*app.Endpoint{
			ClientName: client,
			ServerName: server,
		},
		cancel: cancel,
	}, nil
}

// teardown closes the endpoints, drains pending events and stops the
// goroutines of rt.
func (s *Session) teardown(rt *runtime) error {
	if rt == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	closeErr := rt.loop.Call(ctx, func() error {
		for _, ep := range rt.endpoints {
			ep.Close()
		}
		return nil
	})
	if closeErr == nil {
		closeErr = rt.loop.Flush(ctx)
	}
	if closeErr == nil {
		closeErr = rt.dispatch.Flush(ctx)
	}
	if closeErr != nil {
		s.logger.Warn("pending events dropped on stop", ports.Err(closeErr))
	}

	s.mu.Lock()
	s.rt = nil
	s.mu.Unlock()

	rt.cancel()
	return s.lifecycle.WaitWithTimeout(app.ShutdownTimeout)
}

// shutdownPlugins shuts plugins down in reverse order.
func (s *Session) shutdownPlugins(plugins []Plugin) {
	shutdownCtx := context.Background()
	for i := len(plugins) - 1; i >= 0; i-- {
		p := plugins[i]
		if err := safeShutdown(shutdownCtx, p); err != nil {
			s.logger.Error("plugin shutdown failed",
				ports.String("plugin", p.Name()),
				ports.Err(err))
		} else {
			s.logger.Info("plugin shutdown complete", ports.String("plugin", p.Name()))
		}
	}
}

func (s *Session) current() *runtime {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rt
}

// errPluginPanic is wrapped around panics raised by plugins.
var errPluginPanic = errors.New("plugin panicked")

func safeInitialize(ctx context.Context, p Plugin, cfg PluginConfig) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errPluginPanic, r)
		}
	}()
	return p.Initialize(ctx, cfg)
}

func safeShutdown(ctx context.Context, p Plugin) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", errPluginPanic, r)
		}
	}()
	return p.Shutdown(ctx)
}

// eventEmitterWrapper adapts EventHandler to the lifecycle emitter.
type eventEmitterWrapper struct {
	handler EventHandler
}

func (e *eventEmitterWrapper) OnStateChange(previous, current app.State, reason string) {
	if e.handler == nil {
		return
	}
	e.handler.OnStateChange(StateChangeEvent{
		Previous: convertState(previous),
		Current:  convertState(current),
		Reason:   reason,
	})
}

// sequencer numbers endpoint events on the loop and hands them to the
// dispatcher goroutine.
type sequencer struct {
	dispatch *app.Loop
	handler  EventHandler
	clock    func() time.Time
	seq      uint64
}

func newSequencer(dispatch *app.Loop, handler EventHandler, clock func() time.Time) *sequencer {
	return &sequencer{dispatch: dispatch, handler: handler, clock: clock}
}

// Emit implements ports.EventSink.
func (q *sequencer) Emit(ev domain.Event) {
	q.seq++
	env := Envelope{Seq: q.seq, Time: q.clock(), Event: ev}
	q.dispatch.Post(func() { q.handler.OnEvent(env) })
}

func convertState(s app.State) State {
	switch s {
	case app.StateStopped:
		return StateStopped
	case app.StateStarting:
		return StateStarting
	case app.StateRunning:
		return StateRunning
	case app.StateStopping:
		return StateStopping
	case app.StateCrashed:
		return StateCrashed
	default:
		return StateStopped
	}
}

// validateModuleVersions checks that all module versions are compatible.
// Returns an error if any module version is below its minimum compatible version.
func validateModuleVersions() error {
	versions := ModuleVersions()
	for name, minVersion := range CompatibilityMatrix() {
		if !isVersionCompatible(versions[name], minVersion) {
			return fmt.Errorf("module %s version %s is below minimum compatible version %s",
				name, versions[name], minVersion)
		}
	}
	return nil
}

// isVersionCompatible checks if version >= minVersion using semantic versioning.
// Assumes versions are in format "major.minor.patch".
func isVersionCompatible(version, minVersion string) bool {
	var vMajor, vMinor, vPatch int
	var mMajor, mMinor, mPatch int

	_, _ = fmt.Sscanf(version, "%d.%d.%d", &vMajor, &vMinor, &vPatch)
	_, _ = fmt.Sscanf(minVersion, "%d.%d.%d", &mMajor, &mMinor, &mPatch)

	if vMajor != mMajor {
		return vMajor > mMajor
	}
	if vMinor != mMinor {
		return vMinor > mMinor
	}
	return vPatch >= mPatch
}
