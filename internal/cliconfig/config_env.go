package cliconfig

import "os"

// EnvPrefix prefixes every environment variable termlink reads.
const EnvPrefix = "TERMLINK_"

// lookupEnv returns a pointer to the variable's value, or nil if unset.
func lookupEnv(name string) *string {
	v, ok := os.LookupEnv(EnvPrefix + name)
	if !ok {
		return nil
	}
	return &v
}

// envNames maps flag names to the environment variables that set them.
var envNames = map[string]string{
	"client-read-delim":  "CLIENT_READ_DELIM",
	"client-write-delim": "CLIENT_WRITE_DELIM",
	"client-timeout":     "CLIENT_TIMEOUT",
	"server-read-delim":  "SERVER_READ_DELIM",
	"server-write-delim": "SERVER_WRITE_DELIM",
	"server-timeout":     "SERVER_TIMEOUT",
	"server-mode":        "SERVER_MODE",
	"responder":          "RESPONDER",
	"capacity":           "CAPACITY",
	"preview-width":      "PREVIEW_WIDTH",
	"auto-retry":         "AUTO_RETRY",
	"retry-initial":      "RETRY_INITIAL",
	"retry-max":          "RETRY_MAX",
	"log-level":          "LOG_LEVEL",
}

// EnvOverrides returns the flag names whose TERMLINK_* variable is set.
func EnvOverrides() map[string]bool {
	set := map[string]bool{}
	for flag, name := range envNames {
		if _, ok := os.LookupEnv(EnvPrefix + name); ok {
			set[flag] = true
		}
	}
	return set
}

// ApplyEnvConfig applies TERMLINK_* environment variables to cfg.
// Values override the config file but never an explicitly set flag.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)
	get := func(name string) string { return os.Getenv(EnvPrefix + name) }

	s.setStringPtr("client-read-delim", lookupEnv("CLIENT_READ_DELIM"), &cfg.ClientReadDelim)
	s.setStringPtr("client-write-delim", lookupEnv("CLIENT_WRITE_DELIM"), &cfg.ClientWriteDelim)
	s.setStringPtr("server-read-delim", lookupEnv("SERVER_READ_DELIM"), &cfg.ServerReadDelim)
	s.setStringPtr("server-write-delim", lookupEnv("SERVER_WRITE_DELIM"), &cfg.ServerWriteDelim)
	s.setString("server-mode", get("SERVER_MODE"), &cfg.ServerMode)
	s.setString("responder", get("RESPONDER"), &cfg.Responder)
	s.setString("log-level", get("LOG_LEVEL"), &cfg.LogLevel)

	if err := s.setDuration("client-timeout", get("CLIENT_TIMEOUT"), &cfg.ClientTimeout); err != nil {
		return err
	}
	if err := s.setDuration("server-timeout", get("SERVER_TIMEOUT"), &cfg.ServerTimeout); err != nil {
		return err
	}
	if err := s.setDuration("retry-initial", get("RETRY_INITIAL"), &cfg.RetryInitial); err != nil {
		return err
	}
	if err := s.setDuration("retry-max", get("RETRY_MAX"), &cfg.RetryMax); err != nil {
		return err
	}

	if err := s.setIntFromString("capacity", get("CAPACITY"), &cfg.Capacity); err != nil {
		return err
	}
	if err := s.setIntFromString("preview-width", get("PREVIEW_WIDTH"), &cfg.PreviewWidth); err != nil {
		return err
	}

	s.setBoolFromString("auto-retry", get("AUTO_RETRY"), &cfg.AutoRetry)

	return nil
}
