// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML loading, env var expansion, defaults, durations and validation

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const validSecret = "0123456789abcdef0123456789abcdef"

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
server:
  http_addr: "0.0.0.0:8080"

storage:
  backend: file
  path: "/var/lib/bookmarkd/bookmarks.yaml"
  format: yaml

session:
  secret: "`+validSecret+`"
  ttl: "45m"
  max_sessions: 50
  secure_cookies: true

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.HTTPAddr != "0.0.0.0:8080" {
		t.Errorf("Server.HTTPAddr = %q, want %q", cfg.Server.HTTPAddr, "0.0.0.0:8080")
	}
	if cfg.Storage.Backend != BackendFile {
		t.Errorf("Storage.Backend = %q, want %q", cfg.Storage.Backend, BackendFile)
	}
	if cfg.Storage.Path != "/var/lib/bookmarkd/bookmarks.yaml" {
		t.Errorf("Storage.Path = %q", cfg.Storage.Path)
	}
	if cfg.Storage.Format != "yaml" {
		t.Errorf("Storage.Format = %q, want yaml", cfg.Storage.Format)
	}
	if cfg.Session.TTL != 45*time.Minute {
		t.Errorf("Session.TTL = %v, want 45m", cfg.Session.TTL)
	}
	if cfg.Session.MaxSessions != 50 {
		t.Errorf("Session.MaxSessions = %d, want 50", cfg.Session.MaxSessions)
	}
	if !cfg.Session.SecureCookies {
		t.Error("Session.SecureCookies = false, want true")
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
}

func TestLoad_Defaults(t *testing.T) {
	configPath := writeConfig(t, `
server:
  http_addr: "localhost:8080"
storage:
  path: "./bookmarks.json"
session:
  secret: "`+validSecret+`"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Storage.Backend != BackendFile {
		t.Errorf("Storage.Backend = %q, want %q", cfg.Storage.Backend, BackendFile)
	}
	if cfg.Session.TTL != DefaultSessionTTL {
		t.Errorf("Session.TTL = %v, want %v", cfg.Session.TTL, DefaultSessionTTL)
	}
	if cfg.Session.MaxSessions != DefaultMaxSessions {
		t.Errorf("Session.MaxSessions = %d, want %d", cfg.Session.MaxSessions, DefaultMaxSessions)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "text" {
		t.Errorf("Logging = %+v, want info/text", cfg.Logging)
	}
}

func TestLoad_EnvVarExpansion(t *testing.T) {
	t.Setenv("TEST_BOOKMARKD_SECRET", validSecret)
	t.Setenv("TEST_BOOKMARKD_PATH", "/data/bookmarks.toml")

	configPath := writeConfig(t, `
server:
  http_addr: "localhost:8080"
storage:
  path: "${TEST_BOOKMARKD_PATH}"
session:
  secret: "${TEST_BOOKMARKD_SECRET}"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Session.Secret != validSecret {
		t.Errorf("Session.Secret = %q, want value from env", cfg.Session.Secret)
	}
	if cfg.Storage.Path != "/data/bookmarks.toml" {
		t.Errorf("Storage.Path = %q, want %q", cfg.Storage.Path, "/data/bookmarks.toml")
	}
}

func TestLoad_HomeExpansion(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}

	configPath := writeConfig(t, `
server:
  http_addr: "localhost:8080"
storage:
  path: "~/bookmarks/data.json"
session:
  secret: "`+validSecret+`"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := filepath.Join(home, "bookmarks", "data.json")
	if cfg.Storage.Path != want {
		t.Errorf("Storage.Path = %q, want %q", cfg.Storage.Path, want)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("Load() expected error for missing file, got nil")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	configPath := writeConfig(t, "server:\n  http_addr: [unclosed\n")

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("Load() expected error for invalid YAML, got nil")
	}
	if !strings.Contains(err.Error(), "parsing config file") {
		t.Errorf("error = %v, want parsing error", err)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	for _, ttl := range []string{"not-a-duration", "-5m", "0s"} {
		t.Run(ttl, func(t *testing.T) {
			_, err := Parse([]byte(`
server:
  http_addr: "localhost:8080"
storage:
  backend: memory
session:
  secret: "` + validSecret + `"
  ttl: "` + ttl + `"
`))
			if err == nil {
				t.Fatalf("Parse() expected error for ttl %q", ttl)
			}
			if !strings.Contains(err.Error(), "session.ttl") {
				t.Errorf("error = %v, want mention of session.ttl", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Server:  ServerConfig{HTTPAddr: "localhost:8080"},
			Storage: StorageConfig{Backend: BackendFile, Path: "bookmarks.json"},
			Session: SessionConfig{Secret: validSecret, TTL: time.Minute, MaxSessions: 10},
			Logging: LoggingConfig{Level: "info", Format: "text"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"memory needs no path", func(c *Config) { c.Storage = StorageConfig{Backend: BackendMemory} }, ""},
		{"sqlite", func(c *Config) { c.Storage = StorageConfig{Backend: BackendSQLite, Path: "b.db"} }, ""},
		{"missing http addr", func(c *Config) { c.Server.HTTPAddr = "" }, "server.http_addr"},
		{"missing path", func(c *Config) { c.Storage.Path = "" }, "storage.path"},
		{"sqlite missing path", func(c *Config) { c.Storage = StorageConfig{Backend: BackendSQLite} }, "storage.path"},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "postgres" }, "storage.backend"},
		{"unknown format", func(c *Config) { c.Storage.Format = "xml" }, "storage.format"},
		{"format on sqlite", func(c *Config) { c.Storage = StorageConfig{Backend: BackendSQLite, Path: "b.db", Format: "json"} }, "storage.format"},
		{"short secret", func(c *Config) { c.Session.Secret = "short" }, "session.secret"},
		{"bad log level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()

			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("FOO", "bar")
	t.Setenv("BAZ", "qux")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "single env var",
			input:    "${FOO}",
			expected: "bar",
		},
		{
			name:     "env var with surrounding text",
			input:    "prefix-${FOO}-suffix",
			expected: "prefix-bar-suffix",
		},
		{
			name:     "multiple env vars",
			input:    "${FOO}/${BAZ}",
			expected: "bar/qux",
		},
		{
			name:     "no env vars",
			input:    "no-vars-here",
			expected: "no-vars-here",
		},
		{
			name:     "unset env var",
			input:    "${UNSET_VAR}",
			expected: "",
		},
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandEnvVars(tt.input)
			if result != tt.expected {
				t.Errorf("expandEnvVars(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}
