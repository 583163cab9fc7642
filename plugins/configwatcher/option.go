package configwatcher

import "github.com/bft-labs/termlink/pkg/termlink"

// WithConfigWatcher returns a termlink Option that enables config file watching.
// When enabled, the plugin monitors the config file and applies delimiter,
// timeout and capacity changes to the running session.
//
// Usage:
//
//	s, err := termlink.New(cfg,
//	    configwatcher.WithConfigWatcher(configwatcher.Config{
//	        Path:          path,
//	        Base:          cliconfig.DefaultConfig(),
//	        DebounceDelay: 100 * time.Millisecond,
//	    }),
//	)
func WithConfigWatcher(cfg Config) termlink.Option {
	plugin := New(cfg)
	return termlink.WithPlugin(plugin)
}

// WithDefaultConfigWatcher returns a termlink Option that enables config
// watching of ~/.termlink/config.toml with default settings.
//
// Usage:
//
//	s, err := termlink.New(cfg, configwatcher.WithDefaultConfigWatcher())
func WithDefaultConfigWatcher() termlink.Option {
	return WithConfigWatcher(DefaultConfig())
}
