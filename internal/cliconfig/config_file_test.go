package cliconfig

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func strPtr(s string) *string { return &s }

func TestApplyFileConfig(t *testing.T) {
	trueVal := true

	tests := []struct {
		name       string
		fileConfig FileConfig
		changed    map[string]bool
		initial    Config
		expected   Config
		wantErr    bool
	}{
		{
			name: "applies all valid config values",
			fileConfig: FileConfig{
				Client: FileEndpoint{
					ReadDelimiter:  strPtr(`\r\n`),
					WriteDelimiter: strPtr(`\n`),
					Timeout:        "3s",
				},
				Server: FileEndpoint{
					ReadDelimiter: strPtr(";"),
					Timeout:       "500ms",
					Mode:          "listen",
				},
				Responder:    "echo",
				Capacity:     64,
				PreviewWidth: 20,
				AutoRetry:    &trueVal,
				RetryInitial: "1s",
				RetryMax:     "8s",
				LogLevel:     "debug",
			},
			changed: map[string]bool{},
			initial: Config{},
			expected: Config{
				ClientReadDelim:  `\r\n`,
				ClientWriteDelim: `\n`,
				ClientTimeout:    3 * time.Second,
				ServerReadDelim:  ";",
				ServerTimeout:    500 * time.Millisecond,
				ServerMode:       "listen",
				Responder:        "echo",
				Capacity:         64,
				PreviewWidth:     20,
				AutoRetry:        true,
				RetryInitial:     time.Second,
				RetryMax:         8 * time.Second,
				LogLevel:         "debug",
			},
		},
		{
			name: "respects changed flags",
			fileConfig: FileConfig{
				Client: FileEndpoint{ReadDelimiter: strPtr("END"), Timeout: "9s"},
			},
			changed: map[string]bool{"client-read-delim": true},
			initial: Config{ClientReadDelim: `\n`},
			expected: Config{
				ClientReadDelim: `\n`, // unchanged because flag was set
				ClientTimeout:   9 * time.Second,
			},
		},
		{
			name: "explicit empty delimiter is applied",
			fileConfig: FileConfig{
				Server: FileEndpoint{WriteDelimiter: strPtr("")},
			},
			changed:  map[string]bool{},
			initial:  Config{ServerWriteDelim: `\r\n`},
			expected: Config{},
		},
		{
			name:     "absent delimiter keeps current value",
			changed:  map[string]bool{},
			initial:  Config{ServerWriteDelim: `\r\n`},
			expected: Config{ServerWriteDelim: `\r\n`},
		},
		{
			name: "returns error for invalid duration",
			fileConfig: FileConfig{
				Client: FileEndpoint{Timeout: "soon"},
			},
			changed: map[string]bool{},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.initial
			err := ApplyFileConfig(&cfg, tt.fileConfig, tt.changed)

			if tt.wantErr {
				if err == nil {
					t.Error("ApplyFileConfig() expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("ApplyFileConfig() unexpected error: %v", err)
			}
			if cfg != tt.expected {
				t.Errorf("ApplyFileConfig() = %+v, want %+v", cfg, tt.expected)
			}
		})
	}
}

func TestApplyFileConfig_NegativeTimeoutClamped(t *testing.T) {
	cfg := DefaultConfig()
	fc := FileConfig{
		Client: FileEndpoint{Timeout: "-1s"},
		Server: FileEndpoint{Timeout: "-2s"},
	}

	if err := ApplyFileConfig(&cfg, fc, map[string]bool{}); err != nil {
		t.Fatalf("ApplyFileConfig failed: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate() = %v, want nil", err)
	}
	if cfg.ClientTimeout != 0 || cfg.ServerTimeout != 0 {
		t.Errorf("timeouts = %v/%v, want 0/0", cfg.ClientTimeout, cfg.ServerTimeout)
	}
}

func TestLoadFileConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.toml")

	tomlContent := `
log_level = "debug"
capacity = 128
auto_retry = true
retry_initial = "250ms"

[client]
read_delimiter = '\r\n'
write_delimiter = "\n"
timeout = "2s"

[server]
read_delimiter = ''
mode = "listen"
`
	if err := os.WriteFile(configPath, []byte(tomlContent), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	fc, err := LoadFileConfig(configPath)
	if err != nil {
		t.Fatalf("LoadFileConfig() error = %v", err)
	}

	if fc.LogLevel != "debug" {
		t.Errorf("LogLevel = %v, want debug", fc.LogLevel)
	}
	if fc.Capacity != 128 {
		t.Errorf("Capacity = %v, want 128", fc.Capacity)
	}
	if fc.AutoRetry == nil || !*fc.AutoRetry {
		t.Errorf("AutoRetry = %v, want true", fc.AutoRetry)
	}
	// Literal strings keep the escape; basic strings decode it.
	if fc.Client.ReadDelimiter == nil || *fc.Client.ReadDelimiter != `\r\n` {
		t.Errorf("Client.ReadDelimiter = %v, want literal \\r\\n", fc.Client.ReadDelimiter)
	}
	if fc.Client.WriteDelimiter == nil || *fc.Client.WriteDelimiter != "\n" {
		t.Errorf("Client.WriteDelimiter = %v, want newline", fc.Client.WriteDelimiter)
	}
	if fc.Server.ReadDelimiter == nil || *fc.Server.ReadDelimiter != "" {
		t.Errorf("Server.ReadDelimiter = %v, want explicit empty", fc.Server.ReadDelimiter)
	}
	if fc.Server.WriteDelimiter != nil {
		t.Errorf("Server.WriteDelimiter = %v, want nil", *fc.Server.WriteDelimiter)
	}
	if fc.Server.Mode != "listen" {
		t.Errorf("Server.Mode = %v, want listen", fc.Server.Mode)
	}
}

func TestLoadFileConfig_InvalidFile(t *testing.T) {
	_, err := LoadFileConfig("/nonexistent/path/config.toml")
	if err == nil {
		t.Error("LoadFileConfig() expected error for nonexistent file")
	}
}

func TestLoadFileConfig_InvalidTOML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.toml")

	invalidContent := `
[client
timeout = "2s"
`
	if err := os.WriteFile(configPath, []byte(invalidContent), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	_, err := LoadFileConfig(configPath)
	if err == nil {
		t.Error("LoadFileConfig() expected error for invalid TOML")
	}
}

func TestDefaultConfigPath(t *testing.T) {
	path := DefaultConfigPath()
	if path == "" {
		t.Skip("home directory not available")
	}
	if !strings.HasSuffix(path, filepath.Join(".termlink", "config.toml")) {
		t.Errorf("DefaultConfigPath() = %v, want suffix .termlink/config.toml", path)
	}
}

func TestFileExists(t *testing.T) {
	tmpDir := t.TempDir()
	existingFile := filepath.Join(tmpDir, "exists.txt")
	if err := os.WriteFile(existingFile, []byte("test"), 0644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if !FileExists(existingFile) {
		t.Errorf("FileExists(%q) = false, want true", existingFile)
	}
	if FileExists(filepath.Join(tmpDir, "missing.txt")) {
		t.Error("FileExists() = true for missing file")
	}
}
