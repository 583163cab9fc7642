package termlink_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/bft-labs/termlink/pkg/termlink"
)

// =============================================================================
// Test Utilities
// =============================================================================

// testLogger implements termlink.Logger for capturing log output in tests.
type testLogger struct {
	mu       *sync.Mutex
	messages *[]string
}

func newTestLogger() testLogger {
	return testLogger{mu: &sync.Mutex{}, messages: &[]string{}}
}

func (l testLogger) Debug(msg string, fields ...termlink.LogField) { l.log("DEBUG", msg) }
func (l testLogger) Info(msg string, fields ...termlink.LogField)  { l.log("INFO", msg) }
func (l testLogger) Warn(msg string, fields ...termlink.LogField)  { l.log("WARN", msg) }
func (l testLogger) Error(msg string, fields ...termlink.LogField) { l.log("ERROR", msg) }
func (l testLogger) With(fields ...termlink.LogField) termlink.Logger {
	return l
}

func (l testLogger) log(level, msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	*l.messages = append(*l.messages, fmt.Sprintf("[%s] %s", level, msg))
}

func (l testLogger) Messages() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	cp := make([]string, len(*l.messages))
	copy(cp, *l.messages)
	return cp
}

// trackingPlugin tracks initialization and shutdown calls for testing.
type trackingPlugin struct {
	name          string
	order         *[]string
	orderMu       *sync.Mutex
	initError     error
	shutdownError error
	mu            sync.Mutex
	initialized   bool
	shutdown      bool
}

func newTrackingPlugin(name string, order *[]string, orderMu *sync.Mutex) *trackingPlugin {
	return &trackingPlugin{name: name, order: order, orderMu: orderMu}
}

func (p *trackingPlugin) Name() string { return p.name }

func (p *trackingPlugin) Initialize(ctx context.Context, cfg termlink.PluginConfig) error {
	if p.initError != nil {
		return p.initError
	}
	p.record("init:" + p.name)
	p.mu.Lock()
	p.initialized = true
	p.mu.Unlock()
	return nil
}

func (p *trackingPlugin) Shutdown(ctx context.Context) error {
	p.record("shutdown:" + p.name)
	p.mu.Lock()
	p.shutdown = true
	p.mu.Unlock()
	return p.shutdownError
}

func (p *trackingPlugin) record(s string) {
	p.orderMu.Lock()
	defer p.orderMu.Unlock()
	*p.order = append(*p.order, s)
}

func (p *trackingPlugin) IsInitialized() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.initialized
}

func (p *trackingPlugin) IsShutdown() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.shutdown
}

// panicPlugin panics during initialization or shutdown for testing.
type panicPlugin struct {
	termlink.BasePlugin
	panicOnInit     bool
	panicOnShutdown bool
}

func (p *panicPlugin) Initialize(ctx context.Context, cfg termlink.PluginConfig) error {
	if p.panicOnInit {
		panic("intentional panic during initialization")
	}
	return nil
}

func (p *panicPlugin) Shutdown(ctx context.Context) error {
	if p.panicOnShutdown {
		panic("intentional panic during shutdown")
	}
	return nil
}

// slowPlugin simulates a slow plugin that respects context cancellation.
type slowPlugin struct {
	termlink.BasePlugin
	initDuration time.Duration
	initStarted  chan struct{}
}

func (p *slowPlugin) Initialize(ctx context.Context, cfg termlink.PluginConfig) error {
	close(p.initStarted)
	select {
	case <-time.After(p.initDuration):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// eventTracker records lifecycle changes and endpoint events.
type eventTracker struct {
	mu           sync.Mutex
	stateChanges []termlink.StateChangeEvent
	envelopes    []termlink.Envelope
	notify       chan struct{}
}

func newEventTracker() *eventTracker {
	return &eventTracker{notify: make(chan struct{}, 1)}
}

func (e *eventTracker) OnStateChange(event termlink.StateChangeEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stateChanges = append(e.stateChanges, event)
}

func (e *eventTracker) OnEvent(env termlink.Envelope) {
	e.mu.Lock()
	e.envelopes = append(e.envelopes, env)
	e.mu.Unlock()
	select {
	case e.notify <- struct{}{}:
	default:
	}
}

func (e *eventTracker) StateChanges() []termlink.StateChangeEvent {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]termlink.StateChangeEvent(nil), e.stateChanges...)
}

func (e *eventTracker) Envelopes() []termlink.Envelope {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]termlink.Envelope(nil), e.envelopes...)
}

func (e *eventTracker) Messages(endpoint string) []string {
	var out []string
	for _, env := range e.Envelopes() {
		if m, ok := env.Event.(termlink.MessageRead); ok && m.Endpoint == endpoint {
			out = append(out, m.Message)
		}
	}
	return out
}

// waitFor polls cond until it holds or the timeout expires.
func (e *eventTracker) waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.After(timeout)
	for !cond() {
		select {
		case <-e.notify:
		case <-time.After(10 * time.Millisecond):
		case <-deadline:
			t.Fatal("condition not met before timeout")
		}
	}
}

func startSession(t *testing.T, cfg termlink.Config, opts ...termlink.Option) *termlink.Session {
	t.Helper()
	s, err := termlink.New(cfg, opts...)
	require.NoError(t, err)
	require.NoError(t, s.Start(context.Background()))
	t.Cleanup(func() {
		if s.Status().CanStop() {
			_ = s.Stop()
		}
	})
	return s
}

// =============================================================================
// Endpoint Tests
// =============================================================================

func TestSession_WriteThenRead(t *testing.T) {
	tracker := newEventTracker()
	s := startSession(t, termlink.DefaultConfig(), termlink.WithEventHandler(tracker))
	ctx := context.Background()

	require.NoError(t, s.Client().Write(ctx, "hello"))
	require.NoError(t, s.Server().Read(ctx))
	require.NoError(t, s.Flush(ctx))

	require.Equal(t, []string{"hello"}, tracker.Messages(termlink.ServerName))

	snap, err := s.Server().Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, "", snap.Contents)
	require.Equal(t, termlink.ReadIdle, snap.State)
}

func TestSession_ReadWaitsForData(t *testing.T) {
	tracker := newEventTracker()
	cfg := termlink.DefaultConfig()
	cfg.Server.Timeout = 5 * time.Second
	s := startSession(t, cfg, termlink.WithEventHandler(tracker))
	ctx := context.Background()

	require.NoError(t, s.Server().Read(ctx))
	require.ErrorIs(t, s.Server().Read(ctx), termlink.ErrReadInFlight)

	snap, err := s.Server().Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, termlink.ReadBusyReading, snap.State)
	require.False(t, snap.Controls.Write)

	require.NoError(t, s.Client().Write(ctx, "hi"))
	require.NoError(t, s.Flush(ctx))

	require.Equal(t, []string{"hi"}, tracker.Messages(termlink.ServerName))
	snap, err = s.Server().Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, termlink.ReadIdle, snap.State)
}

func TestSession_ReadTimesOut(t *testing.T) {
	tracker := newEventTracker()
	cfg := termlink.DefaultConfig()
	cfg.Client.Timeout = 50 * time.Millisecond
	s := startSession(t, cfg, termlink.WithEventHandler(tracker))
	ctx := context.Background()

	start := time.Now()
	require.NoError(t, s.Client().Read(ctx))

	var expired termlink.ReadExpired
	tracker.waitFor(t, 2*time.Second, func() bool {
		for _, env := range tracker.Envelopes() {
			if e, ok := env.Event.(termlink.ReadExpired); ok {
				expired = e
				return true
			}
		}
		return false
	})
	require.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	require.Equal(t, termlink.ClientName, expired.Endpoint)
	require.Equal(t, 50*time.Millisecond, expired.Waited)
	require.Empty(t, tracker.Messages(termlink.ClientName))
}

func TestSession_ListenModeReplies(t *testing.T) {
	tracker := newEventTracker()
	cfg := termlink.DefaultConfig()
	cfg.Server.Mode = termlink.ModeListen
	s := startSession(t, cfg,
		termlink.WithEventHandler(tracker),
		termlink.WithResponder(termlink.ResponderFunc(func(msg string) (string, bool) {
			return strings.ToUpper(msg), true
		})),
	)
	ctx := context.Background()

	require.NoError(t, s.Client().Write(ctx, "ping"))
	require.NoError(t, s.Flush(ctx))
	require.NoError(t, s.Client().Read(ctx))
	require.NoError(t, s.Flush(ctx))

	require.Equal(t, []string{"ping"}, tracker.Messages(termlink.ServerName))
	require.Equal(t, []string{"PING"}, tracker.Messages(termlink.ClientName))
}

func TestSession_HandlerMayCallBack(t *testing.T) {
	var s *termlink.Session
	replied := make(chan error, 1)
	handler := termlink.EventFunc(func(env termlink.Envelope) {
		if m, ok := env.Event.(termlink.MessageRead); ok && m.Endpoint == termlink.ServerName {
			replied <- s.Server().Write(context.Background(), "re:"+m.Message)
		}
	})
	s = startSession(t, termlink.DefaultConfig(), termlink.WithEventHandler(handler))
	ctx := context.Background()

	require.NoError(t, s.Client().Write(ctx, "x"))
	require.NoError(t, s.Server().Read(ctx))

	select {
	case err := <-replied:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("handler did not reply")
	}
	require.NoError(t, s.Flush(ctx))

	snap, err := s.Client().Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, "re:x\r\n", snap.Contents)
}

func TestSession_EventsAreSequenced(t *testing.T) {
	tracker := newEventTracker()
	s := startSession(t, termlink.DefaultConfig(), termlink.WithEventHandler(tracker))
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		require.NoError(t, s.Client().Write(ctx, fmt.Sprintf("m%d", i)))
	}
	require.NoError(t, s.Flush(ctx))

	envs := tracker.Envelopes()
	require.NotEmpty(t, envs)
	for i, env := range envs {
		require.Equal(t, uint64(i+1), env.Seq)
	}
}

func TestSession_EndpointLookup(t *testing.T) {
	s, err := termlink.New(termlink.DefaultConfig())
	require.NoError(t, err)

	ep, err := s.Endpoint("client")
	require.NoError(t, err)
	require.Same(t, s.Client(), ep)
	require.Same(t, s.Server(), ep.Peer())

	_, err = s.Endpoint("modem")
	require.ErrorIs(t, err, termlink.ErrUnknownEndpoint)
}

func TestSession_OperationsRequireRunning(t *testing.T) {
	s, err := termlink.New(termlink.DefaultConfig())
	require.NoError(t, err)
	ctx := context.Background()

	require.ErrorIs(t, s.Client().Write(ctx, "x"), termlink.ErrNotRunning)
	require.ErrorIs(t, s.Flush(ctx), termlink.ErrNotRunning)

	require.NoError(t, s.Start(ctx))
	require.NoError(t, s.Client().Write(ctx, "x"))
	require.NoError(t, s.Stop())

	_, err = s.Server().Snapshot(ctx)
	require.ErrorIs(t, err, termlink.ErrNotRunning)
}

func TestSession_RestartResetsEndpoints(t *testing.T) {
	s := startSession(t, termlink.DefaultConfig())
	ctx := context.Background()

	require.NoError(t, s.Client().Write(ctx, "left over"))
	require.NoError(t, s.Flush(ctx))
	require.NoError(t, s.Stop())
	require.NoError(t, s.Start(ctx))

	snap, err := s.Server().Snapshot(ctx)
	require.NoError(t, err)
	require.Equal(t, "", snap.Contents)
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := termlink.DefaultConfig()
	cfg.Client.Capacity = -1
	_, err := termlink.New(cfg)
	require.ErrorIs(t, err, termlink.ErrInvalidConfig)

	cfg = termlink.DefaultConfig()
	cfg.Server.Mode = termlink.Mode(7)
	_, err = termlink.New(cfg)
	require.ErrorIs(t, err, termlink.ErrInvalidConfig)
}

func TestConfig_SetDefaultsClampsTimeout(t *testing.T) {
	cfg := termlink.Config{}
	cfg.Client.Timeout = -time.Second
	cfg.SetDefaults()

	require.Equal(t, time.Duration(0), cfg.Client.Timeout)
	require.Equal(t, termlink.DefaultLocks, cfg.Client.Locks)
	require.Positive(t, cfg.PreviewWidth)
}

// =============================================================================
// Plugin Lifecycle Tests
// =============================================================================

func TestPlugin_InitializationOrder(t *testing.T) {
	var order []string
	var mu sync.Mutex

	s, err := termlink.New(termlink.DefaultConfig(),
		termlink.WithLogger(newTestLogger()),
		termlink.WithPlugin(newTrackingPlugin("plugin1", &order, &mu)),
		termlink.WithPlugin(newTrackingPlugin("plugin2", &order, &mu)),
		termlink.WithPlugin(newTrackingPlugin("plugin3", &order, &mu)),
	)
	require.NoError(t, err)

	require.NoError(t, s.Start(context.Background()))
	require.Equal(t, termlink.StateRunning, s.Status())
	require.NoError(t, s.Stop())

	require.Equal(t, []string{
		"init:plugin1", "init:plugin2", "init:plugin3",
		"shutdown:plugin3", "shutdown:plugin2", "shutdown:plugin1",
	}, order)
}

func TestPlugin_InitializationFailure_PreventsStart(t *testing.T) {
	var order []string
	var mu sync.Mutex

	plugin1 := newTrackingPlugin("plugin1", &order, &mu)
	plugin2 := newTrackingPlugin("plugin2", &order, &mu)
	plugin2.initError = errors.New("intentional init failure")
	plugin3 := newTrackingPlugin("plugin3", &order, &mu)

	s, err := termlink.New(termlink.DefaultConfig(),
		termlink.WithPlugin(plugin1),
		termlink.WithPlugin(plugin2),
		termlink.WithPlugin(plugin3),
	)
	require.NoError(t, err)

	err = s.Start(context.Background())
	require.Error(t, err)
	require.False(t, plugin3.IsInitialized())
	require.True(t, plugin1.IsShutdown(), "plugins initialized before the failure are shut down")
	require.Equal(t, termlink.StateCrashed, s.Status())

	// A crashed session can be started again.
	plugin2.initError = nil
	require.NoError(t, s.Start(context.Background()))
	require.NoError(t, s.Stop())
}

func TestPlugin_ShutdownFailure_ContinuesOtherPlugins(t *testing.T) {
	var order []string
	var mu sync.Mutex

	plugin1 := newTrackingPlugin("plugin1", &order, &mu)
	plugin2 := newTrackingPlugin("plugin2", &order, &mu)
	plugin2.shutdownError = errors.New("intentional shutdown failure")
	plugin3 := newTrackingPlugin("plugin3", &order, &mu)

	s := startSession(t, termlink.DefaultConfig(),
		termlink.WithPlugin(plugin1),
		termlink.WithPlugin(plugin2),
		termlink.WithPlugin(plugin3),
	)
	require.NoError(t, s.Stop())

	require.True(t, plugin1.IsShutdown())
	require.True(t, plugin3.IsShutdown())
}

func TestPlugin_PanicsAreRecovered(t *testing.T) {
	s, err := termlink.New(termlink.DefaultConfig(),
		termlink.WithPlugin(&panicPlugin{BasePlugin: termlink.NewBasePlugin("boom"), panicOnInit: true}),
	)
	require.NoError(t, err)
	require.Error(t, s.Start(context.Background()))
	require.Equal(t, termlink.StateCrashed, s.Status())

	s = startSession(t, termlink.DefaultConfig(),
		termlink.WithPlugin(&panicPlugin{BasePlugin: termlink.NewBasePlugin("boom"), panicOnShutdown: true}),
	)
	require.NoError(t, s.Stop())
	require.Equal(t, termlink.StateStopped, s.Status())
}

func TestPlugin_ContextCancellationDuringInit(t *testing.T) {
	initStarted := make(chan struct{})
	s, err := termlink.New(termlink.DefaultConfig(),
		termlink.WithPlugin(&slowPlugin{
			BasePlugin:   termlink.NewBasePlugin("slow-plugin"),
			initDuration: 5 * time.Second,
			initStarted:  initStarted,
		}),
	)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	startErr := make(chan error, 1)
	go func() { startErr <- s.Start(ctx) }()

	<-initStarted
	cancel()

	select {
	case err := <-startErr:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Start() did not return after context cancellation")
	}
}

func TestPlugin_StartAlreadyRunning(t *testing.T) {
	s := startSession(t, termlink.DefaultConfig())
	require.ErrorIs(t, s.Start(context.Background()), termlink.ErrAlreadyRunning)
}

func TestPlugin_StopAlreadyStopped(t *testing.T) {
	s, err := termlink.New(termlink.DefaultConfig())
	require.NoError(t, err)
	require.ErrorIs(t, s.Stop(), termlink.ErrNotRunning)
}

func TestPlugin_RapidStartStop(t *testing.T) {
	var order []string
	var mu sync.Mutex
	s, err := termlink.New(termlink.DefaultConfig(),
		termlink.WithPlugin(newTrackingPlugin("rapid-test", &order, &mu)),
	)
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Start(context.Background()), "iteration %d", i)
		require.NoError(t, s.Client().Write(context.Background(), "x"))
		require.NoError(t, s.Stop(), "iteration %d", i)
	}
	require.Equal(t, termlink.StateStopped, s.Status())
	require.Len(t, order, 10)
}

func TestPlugin_EventHandlerReceivesStateChanges(t *testing.T) {
	tracker := newEventTracker()
	s := startSession(t, termlink.DefaultConfig(), termlink.WithEventHandler(tracker))
	require.NoError(t, s.Stop())

	changes := tracker.StateChanges()
	want := []termlink.State{termlink.StateStarting, termlink.StateRunning, termlink.StateStopping, termlink.StateStopped}
	require.Len(t, changes, len(want))
	require.Equal(t, termlink.StateStopped, changes[0].Previous)
	for i, w := range want {
		require.Equal(t, w, changes[i].Current)
	}
}

func TestPlugin_PluginCanUseSession(t *testing.T) {
	ready := make(chan error, 1)
	plugin := &sessionPlugin{BasePlugin: termlink.NewBasePlugin("configure"), done: ready}

	s := startSession(t, termlink.DefaultConfig(), termlink.WithPlugin(plugin))
	require.NoError(t, <-ready)

	snap, err := s.Server().Snapshot(context.Background())
	require.NoError(t, err)
	require.Equal(t, ";", snap.ReadDelimiter)
}

type sessionPlugin struct {
	termlink.BasePlugin
	done chan error
}

func (p *sessionPlugin) Initialize(ctx context.Context, cfg termlink.PluginConfig) error {
	p.done <- cfg.Session.Server().SetReadDelimiter(ctx, ";")
	return nil
}

// =============================================================================
// Concurrency Tests
// =============================================================================

func TestSession_ConcurrentOperations(t *testing.T) {
	tracker := newEventTracker()
	cfg := termlink.DefaultConfig()
	s := startSession(t, cfg, termlink.WithEventHandler(tracker))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = s.Client().Write(ctx, fmt.Sprintf("m%d", i))
			_ = s.Status()
		}(i)
	}
	wg.Wait()
	require.NoError(t, s.Flush(ctx))

	for i := 0; i < 20; i++ {
		require.NoError(t, s.Server().Read(ctx))
	}
	require.NoError(t, s.Flush(ctx))
	require.Len(t, tracker.Messages(termlink.ServerName), 20)
}

func TestPlugin_ConcurrentStartAttempts(t *testing.T) {
	s, err := termlink.New(termlink.DefaultConfig())
	require.NoError(t, err)

	var successCount int32
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := s.Start(context.Background()); err == nil {
				atomic.AddInt32(&successCount, 1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), atomic.LoadInt32(&successCount))
	require.NoError(t, s.Stop())
}

func TestPlugin_StartStopRace(t *testing.T) {
	s := startSession(t, termlink.DefaultConfig())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = s.Stop()
	}()
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Status()
			_ = s.Client().Write(context.Background(), "x")
		}()
	}
	wg.Wait()

	status := s.Status()
	if status != termlink.StateStopped && status != termlink.StateCrashed {
		t.Errorf("Final status = %v, want Stopped or Crashed", status)
	}
}

// =============================================================================
// Base Type Tests
// =============================================================================

func TestBasePlugin_DefaultBehavior(t *testing.T) {
	bp := termlink.NewBasePlugin("test-base")

	require.Equal(t, "test-base", bp.Name())
	require.NoError(t, bp.Initialize(context.Background(), termlink.PluginConfig{}))
	require.NoError(t, bp.Shutdown(context.Background()))
}

func TestBaseEventHandler_DefaultBehavior(t *testing.T) {
	beh := termlink.BaseEventHandler{}
	beh.OnStateChange(termlink.StateChangeEvent{})
	beh.OnEvent(termlink.Envelope{})
}

func TestState_StringRepresentation(t *testing.T) {
	tests := []struct {
		state    termlink.State
		expected string
	}{
		{termlink.StateStopped, "Stopped"},
		{termlink.StateStarting, "Starting"},
		{termlink.StateRunning, "Running"},
		{termlink.StateStopping, "Stopping"},
		{termlink.StateCrashed, "Crashed"},
		{termlink.State(99), "Unknown"},
	}

	for _, tc := range tests {
		if got := tc.state.String(); got != tc.expected {
			t.Errorf("State(%d).String() = %q, want %q", tc.state, got, tc.expected)
		}
	}
}

func TestState_Predicates(t *testing.T) {
	require.True(t, termlink.StateStopped.CanStart())
	require.True(t, termlink.StateCrashed.CanStart())
	require.False(t, termlink.StateRunning.CanStart())

	require.True(t, termlink.StateRunning.CanStop())
	require.True(t, termlink.StateStarting.CanStop())
	require.False(t, termlink.StateStopped.CanStop())

	require.True(t, termlink.StateRunning.IsRunning())
	require.False(t, termlink.StateStopping.IsRunning())
}
