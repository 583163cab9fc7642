// Package configwatcher provides config file monitoring for termlink.
// When enabled, it watches the termlink config file and applies changed
// delimiters, timeouts and capacity to the running session.
package configwatcher

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/bft-labs/termlink/internal/cliconfig"
	"github.com/bft-labs/termlink/pkg/log"
	"github.com/bft-labs/termlink/pkg/termlink"
)

// Plugin implements config watching functionality.
// It watches the directory holding the config file and reloads the file
// whenever it is written or recreated.
type Plugin struct {
	mu sync.Mutex

	// Configuration
	path          string
	base          cliconfig.Config
	changed       map[string]bool
	retryInterval time.Duration
	debounceDelay time.Duration
	onReload      func(cliconfig.Config, error)

	// Runtime state
	session  *termlink.Session
	logger   termlink.Logger
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
	closed   bool
}

// Config holds configuration options for the config watcher plugin.
type Config struct {
	// Path is the config file to watch. Empty disables the plugin.
	Path string

	// Base is the configuration the file is applied on top of, normally the
	// defaults merged with the environment.
	Base cliconfig.Config

	// Changed lists flags set on the command line; the file never
	// overrides them.
	Changed map[string]bool

	// RetryInterval is the delay between attempts to watch a directory that
	// does not exist yet.
	// Default: 5 seconds
	RetryInterval time.Duration

	// DebounceDelay is the delay to wait after a file change before reloading.
	// Default: 100 milliseconds
	DebounceDelay time.Duration

	// OnReload, if set, is called after every reload attempt with the
	// merged configuration or the error that prevented applying it.
	OnReload func(cliconfig.Config, error)
}

// DefaultConfig returns a Config with sensible defaults watching the
// default config path.
func DefaultConfig() Config {
	return Config{
		Path:          cliconfig.DefaultConfigPath(),
		Base:          cliconfig.DefaultConfig(),
		RetryInterval: 5 * time.Second,
		DebounceDelay: 100 * time.Millisecond,
	}
}

// New creates a new config watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.RetryInterval <= 0 {
		cfg.RetryInterval = 5 * time.Second
	}
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}
	changed := make(map[string]bool, len(cfg.Changed))
	for k, v := range cfg.Changed {
		changed[k] = v
	}

	return &Plugin{
		path:          cfg.Path,
		base:          cfg.Base,
		changed:       changed,
		retryInterval: cfg.RetryInterval,
		debounceDelay: cfg.DebounceDelay,
		onReload:      cfg.OnReload,
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "configwatcher"
}

// Initialize sets up the plugin and starts the config watcher.
func (p *Plugin) Initialize(ctx context.Context, cfg termlink.PluginConfig) error {
	p.mu.Lock()
	p.session = cfg.Session
	p.logger = cfg.Logger
	if p.logger == nil {
		p.logger = log.NoopLogger{}
	}
	p.closed = false
	p.mu.Unlock()

	if p.path == "" || p.session == nil {
		p.logger.Warn("Config watcher disabled: no config path or session")
		return nil
	}

	// Create cancellable context for the watcher loop
	watchCtx, cancel := context.WithCancel(context.Background())
	p.cancel = cancel

	p.logger.Info("Config watcher plugin initialized", log.String("path", p.path))

	p.wg.Add(1)
	go p.watchLoop(watchCtx)

	return nil
}

// Shutdown stops the config watcher and waits for an in-flight reload.
func (p *Plugin) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	if p.debounce != nil {
		p.debounce.Stop()
		p.debounce = nil
	}
	p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()
	return nil
}

// watchLoop watches for config file changes.
func (p *Plugin) watchLoop(ctx context.Context) {
	defer p.wg.Done()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		p.logger.Error("Config watcher: failed to create watcher", log.Err(err))
		return
	}
	defer watcher.Close()

	dir := filepath.Dir(p.path)
	name := filepath.Base(p.path)

	for {
		err := watcher.Add(dir)
		if err == nil {
			break
		}
		p.logger.Warn("Config watcher: failed to watch directory, retrying",
			log.String("dir", dir),
			log.Err(err))
		select {
		case <-ctx.Done():
			return
		case <-time.After(p.retryInterval):
		}
	}

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			p.debounceReload(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("Config watcher: watcher error", log.Err(err))
		}
	}
}

func (p *Plugin) debounceReload(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}

	p.debounce = time.AfterFunc(p.debounceDelay, func() {
		p.mu.Lock()
		if p.closed {
			p.mu.Unlock()
			return
		}
		p.wg.Add(1)
		p.mu.Unlock()
		defer p.wg.Done()

		cfg, err := p.reload(ctx)
		if err != nil {
			p.logger.Error("Config watcher: reload failed", log.Err(err))
		} else {
			p.logger.Info("Config watcher: configuration applied")
		}
		if p.onReload != nil {
			p.onReload(cfg, err)
		}
	})
}

// reload reads the file, merges it over the base configuration and applies
// the endpoint settings to the session.
func (p *Plugin) reload(ctx context.Context) (cliconfig.Config, error) {
	fc, err := cliconfig.LoadFileConfig(p.path)
	if err != nil {
		return cliconfig.Config{}, fmt.Errorf("load %s: %w", p.path, err)
	}

	cfg := p.base
	if err := cliconfig.ApplyFileConfig(&cfg, fc, p.changed); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	client, err := cfg.Client()
	if err != nil {
		return cfg, err
	}
	server, err := cfg.Server()
	if err != nil {
		return cfg, err
	}

	if err := apply(ctx, p.session.Client(), client, cfg.Capacity); err != nil {
		return cfg, err
	}
	if err := apply(ctx, p.session.Server(), server, cfg.Capacity); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func apply(ctx context.Context, ep *termlink.Endpoint, s cliconfig.EndpointSettings, capacity int) error {
	if err := ep.SetReadDelimiter(ctx, s.ReadDelimiter); err != nil {
		return fmt.Errorf("%s read delimiter: %w", ep.Name(), err)
	}
	if err := ep.SetWriteDelimiter(ctx, s.WriteDelimiter); err != nil {
		return fmt.Errorf("%s write delimiter: %w", ep.Name(), err)
	}
	if err := ep.SetTimeout(ctx, s.Timeout); err != nil {
		return fmt.Errorf("%s timeout: %w", ep.Name(), err)
	}
	if err := ep.SetCapacity(ctx, capacity); err != nil {
		return fmt.Errorf("%s capacity: %w", ep.Name(), err)
	}
	return nil
}

// Ensure Plugin implements termlink.Plugin.
var _ termlink.Plugin = (*Plugin)(nil)
