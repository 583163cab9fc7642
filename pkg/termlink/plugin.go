package termlink

import "context"

// Plugin extends a Session with optional behavior.
// Plugins are initialized in registration order on Start and shut down in
// reverse order on Stop.
type Plugin interface {
	// Name returns the plugin identifier used in logs.
	Name() string

	// Initialize is called during Start, after the endpoints exist. A
	// returned error aborts Start and leaves the session crashed.
	Initialize(ctx context.Context, cfg PluginConfig) error

	// Shutdown is called during Stop. Errors are logged.
	Shutdown(ctx context.Context) error
}

// PluginConfig is what a plugin receives on Initialize.
type PluginConfig struct {
	// Session is the session being started. Its endpoint handles are
	// usable from Initialize onwards.
	Session *Session

	// SessionID identifies the session in logs.
	SessionID string

	// Logger is the session logger.
	Logger Logger
}

// BasePlugin provides no-op Initialize and Shutdown. Embed it to implement
// only what a plugin needs.
type BasePlugin struct {
	name string
}

// NewBasePlugin creates a BasePlugin reporting name.
func NewBasePlugin(name string) BasePlugin {
	return BasePlugin{name: name}
}

// Name returns the plugin name.
func (p BasePlugin) Name() string { return p.name }

// Initialize does nothing.
func (BasePlugin) Initialize(context.Context, PluginConfig) error { return nil }

// Shutdown does nothing.
func (BasePlugin) Shutdown(context.Context) error { return nil }
