package main

import (
	"fmt"
	"time"

	"github.com/bft-labs/termlink/internal/adapters/responder"
	"github.com/bft-labs/termlink/internal/cliconfig"
	"github.com/bft-labs/termlink/pkg/log"
	"github.com/bft-labs/termlink/pkg/termlink"
	"github.com/bft-labs/termlink/plugins/configwatcher"
)

// sessionConfig converts the CLI configuration to a library Config.
func sessionConfig(cfg cliconfig.Config) (termlink.Config, error) {
	client, err := cfg.Client()
	if err != nil {
		return termlink.Config{}, fmt.Errorf("client: %w", err)
	}
	server, err := cfg.Server()
	if err != nil {
		return termlink.Config{}, fmt.Errorf("server: %w", err)
	}
	mode, ok := termlink.ParseMode(cfg.ServerMode)
	if !ok {
		return termlink.Config{}, fmt.Errorf("unknown server mode %q", cfg.ServerMode)
	}

	lib := termlink.Config{
		Client: termlink.EndpointConfig{
			ReadDelimiter:  client.ReadDelimiter,
			WriteDelimiter: client.WriteDelimiter,
			Timeout:        client.Timeout,
			Capacity:       cfg.Capacity,
		},
		Server: termlink.EndpointConfig{
			ReadDelimiter:  server.ReadDelimiter,
			WriteDelimiter: server.WriteDelimiter,
			Timeout:        server.Timeout,
			Capacity:       cfg.Capacity,
			Mode:           mode,
		},
		PreviewWidth: cfg.PreviewWidth,
	}
	// Retry bounds are only validated when auto-retry is on, so they are
	// only passed on then; the library fills its defaults otherwise.
	if cfg.AutoRetry {
		lib.Client.AutoRetry = true
		lib.Client.RetryInitial = cfg.RetryInitial
		lib.Client.RetryMax = cfg.RetryMax
	}
	return lib, nil
}

// newSession builds a session from the CLI configuration. When watch is set
// and the config file exists, the config watcher plugin is enabled.
func (c *cli) newSession(handler termlink.EventHandler, watch bool, extra ...termlink.Option) (*termlink.Session, error) {
	libCfg, err := sessionConfig(c.cfg)
	if err != nil {
		return nil, err
	}

	r, ok := responder.ByName(c.cfg.Responder, time.Now().UnixNano())
	if !ok {
		return nil, fmt.Errorf("unknown responder %q", c.cfg.Responder)
	}

	opts := []termlink.Option{
		termlink.WithLogger(log.NewZerologAdapterWithLogger(c.log)),
		termlink.WithEventHandler(handler),
		termlink.WithResponder(r),
	}
	if watch && c.cfgPath != "" && cliconfig.FileExists(c.cfgPath) {
		opts = append(opts, configwatcher.WithConfigWatcher(configwatcher.Config{
			Path:    c.cfgPath,
			Base:    c.base,
			Changed: c.changed,
		}))
	}
	opts = append(opts, extra...)

	s, err := termlink.New(libCfg, opts...)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return s, nil
}
