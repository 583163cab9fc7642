package cliconfig

import (
	"fmt"
	"strconv"
	"time"

	"github.com/bft-labs/termlink/internal/adapters/responder"
	"github.com/bft-labs/termlink/internal/domain"
	"github.com/bft-labs/termlink/pkg/log"
)

// Config holds CLI configuration for termlink.
//
// Delimiters are kept as typed, with backslash escapes such as `\r\n`
// undecoded. Client and Server return the decoded settings.
type Config struct {
	ClientReadDelim  string
	ClientWriteDelim string
	ClientTimeout    time.Duration

	ServerReadDelim  string
	ServerWriteDelim string
	ServerTimeout    time.Duration
	ServerMode       string
	Responder        string

	Capacity     int
	PreviewWidth int

	AutoRetry    bool
	RetryInitial time.Duration
	RetryMax     time.Duration

	LogLevel string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		ClientReadDelim:  `\r\n`,
		ClientWriteDelim: `\n`,
		ClientTimeout:    2 * time.Second,
		ServerReadDelim:  `\n`,
		ServerWriteDelim: `\r\n`,
		ServerTimeout:    0,
		ServerMode:       "manual",
		Responder:        "ack",
		PreviewWidth:     30,
		RetryInitial:     500 * time.Millisecond,
		RetryMax:         10 * time.Second,
		LogLevel:         "info",
	}
}

// Validate checks the configuration for errors.
// Negative timeouts are clamped to zero rather than rejected.
func (c *Config) Validate() error {
	for flag, d := range map[string]string{
		"client-read-delim":  c.ClientReadDelim,
		"client-write-delim": c.ClientWriteDelim,
		"server-read-delim":  c.ServerReadDelim,
		"server-write-delim": c.ServerWriteDelim,
	} {
		if _, err := DecodeEscapes(d); err != nil {
			return fmt.Errorf("%s: %w", flag, err)
		}
	}

	if c.ClientTimeout < 0 {
		c.ClientTimeout = 0
	}
	if c.ServerTimeout < 0 {
		c.ServerTimeout = 0
	}
	if _, ok := domain.ParseMode(c.ServerMode); !ok {
		return fmt.Errorf("unknown server mode %q (want manual or listen)", c.ServerMode)
	}
	if _, ok := responder.ByName(c.Responder, 0); !ok {
		return fmt.Errorf("unknown responder %q (want ack, echo or none)", c.Responder)
	}
	if c.Capacity < 0 {
		return fmt.Errorf("capacity must not be negative")
	}
	if c.PreviewWidth < 0 {
		return fmt.Errorf("preview width must not be negative")
	}
	if c.AutoRetry {
		if c.RetryInitial <= 0 {
			return fmt.Errorf("retry initial delay must be positive")
		}
		if c.RetryMax < c.RetryInitial {
			return fmt.Errorf("retry max delay must be at least the initial delay")
		}
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return err
	}

	return nil
}

// EndpointSettings is the decoded configuration of one endpoint.
type EndpointSettings struct {
	ReadDelimiter  string
	WriteDelimiter string
	Timeout        time.Duration
}

// Client returns the decoded client settings.
func (c Config) Client() (EndpointSettings, error) {
	return decodeEndpoint(c.ClientReadDelim, c.ClientWriteDelim, c.ClientTimeout)
}

// Server returns the decoded server settings.
func (c Config) Server() (EndpointSettings, error) {
	return decodeEndpoint(c.ServerReadDelim, c.ServerWriteDelim, c.ServerTimeout)
}

func decodeEndpoint(read, write string, timeout time.Duration) (EndpointSettings, error) {
	r, err := DecodeEscapes(read)
	if err != nil {
		return EndpointSettings{}, fmt.Errorf("read delimiter: %w", err)
	}
	w, err := DecodeEscapes(write)
	if err != nil {
		return EndpointSettings{}, fmt.Errorf("write delimiter: %w", err)
	}
	return EndpointSettings{ReadDelimiter: r, WriteDelimiter: w, Timeout: timeout}, nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setStringPtr sets a string value, empty included, if present and flag not
// changed. Delimiters use it since an empty delimiter is meaningful.
func (s *configSetter) setStringPtr(flag string, value *string, dst *string) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
