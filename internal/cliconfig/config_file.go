package cliconfig

import (
	"os"
	"path/filepath"

	toml "github.com/pelletier/go-toml/v2"
)

// FileEndpoint is the per-endpoint table of the config file.
// Delimiters are pointers so an explicit empty string can be told apart
// from an absent key.
type FileEndpoint struct {
	ReadDelimiter  *string `toml:"read_delimiter"`
	WriteDelimiter *string `toml:"write_delimiter"`
	Timeout        string  `toml:"timeout"`
	Mode           string  `toml:"mode"`
}

// FileConfig mirrors Config but uses strings for durations to make TOML friendly.
type FileConfig struct {
	Client       FileEndpoint `toml:"client"`
	Server       FileEndpoint `toml:"server"`
	Responder    string       `toml:"responder"`
	Capacity     int          `toml:"capacity"`
	PreviewWidth int          `toml:"preview_width"`
	AutoRetry    *bool        `toml:"auto_retry"`
	RetryInitial string       `toml:"retry_initial"`
	RetryMax     string       `toml:"retry_max"`
	LogLevel     string       `toml:"log_level"`
}

// LoadFileConfig reads and parses a TOML config file from the given path.
func LoadFileConfig(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	if err := toml.Unmarshal(b, &fc); err != nil {
		return fc, err
	}
	return fc, nil
}

// DefaultConfigPath returns the default configuration file path.
// Returns ~/.termlink/config.toml if user home directory is accessible.
func DefaultConfigPath() string {
	if h, err := os.UserHomeDir(); err == nil {
		return filepath.Join(h, ".termlink", "config.toml")
	}
	return ""
}

// ApplyFileConfig applies configuration from a file to the Config struct.
// It respects flags that have been explicitly set (changed map).
func ApplyFileConfig(cfg *Config, fc FileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setStringPtr("client-read-delim", fc.Client.ReadDelimiter, &cfg.ClientReadDelim)
	s.setStringPtr("client-write-delim", fc.Client.WriteDelimiter, &cfg.ClientWriteDelim)
	s.setStringPtr("server-read-delim", fc.Server.ReadDelimiter, &cfg.ServerReadDelim)
	s.setStringPtr("server-write-delim", fc.Server.WriteDelimiter, &cfg.ServerWriteDelim)
	s.setString("server-mode", fc.Server.Mode, &cfg.ServerMode)
	s.setString("responder", fc.Responder, &cfg.Responder)
	s.setString("log-level", fc.LogLevel, &cfg.LogLevel)

	if err := s.setDuration("client-timeout", fc.Client.Timeout, &cfg.ClientTimeout); err != nil {
		return err
	}
	if err := s.setDuration("server-timeout", fc.Server.Timeout, &cfg.ServerTimeout); err != nil {
		return err
	}
	if err := s.setDuration("retry-initial", fc.RetryInitial, &cfg.RetryInitial); err != nil {
		return err
	}
	if err := s.setDuration("retry-max", fc.RetryMax, &cfg.RetryMax); err != nil {
		return err
	}

	s.setInt("capacity", fc.Capacity, &cfg.Capacity)
	s.setInt("preview-width", fc.PreviewWidth, &cfg.PreviewWidth)

	s.setBool("auto-retry", fc.AutoRetry, &cfg.AutoRetry)

	return nil
}

// FileExists checks if a file exists at the given path.
func FileExists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}
