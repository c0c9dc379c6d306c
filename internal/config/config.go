package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Runtime modes.
const (
	ModeInteractive = "interactive"
	ModeAgent       = "agent"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendBolt   = "bolt"
)

// DefaultPath is where LoadConfig looks when no path is given.
const DefaultPath = ".chkwrite/config.yaml"

// Config represents the runtime configuration from .chkwrite/config.yaml.
type Config struct {
	Mode      string         `yaml:"mode"`
	LogLevel  string         `yaml:"log_level"`
	LogFormat string         `yaml:"log_format"`
	Catalog   CatalogConfig  `yaml:"catalog"`
	Store     StoreConfig    `yaml:"store"`
	Server    ServerConfig   `yaml:"server"`
	History   HistoryConfig  `yaml:"history"`
	Evaluate  EvaluateConfig `yaml:"evaluate"`
}

// CatalogConfig points at a scenario catalog file. An empty path selects the
// built-in catalog.
type CatalogConfig struct {
	Path string            `yaml:"path"`
	Vars map[string]string `yaml:"vars"`
}

// StoreConfig selects where server sessions are kept.
type StoreConfig struct {
	Backend string `yaml:"backend"` // "memory" or "bolt"
	Path    string `yaml:"path"`
}

// ServerConfig defines the HTTP transport.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// EvaluateConfig defines grading defaults.
type EvaluateConfig struct {
	FailFast bool `yaml:"fail_fast"`
}

// HistoryConfig defines event history settings.
type HistoryConfig struct {
	MaxEntries int `yaml:"max_entries"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Mode:      ModeInteractive,
		LogLevel:  "info",
		LogFormat: "console",
		Store: StoreConfig{
			Backend: BackendMemory,
			Path:    filepath.Join(os.TempDir(), "chkwrite-sessions.db"),
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8420",
		},
		History: HistoryConfig{
			MaxEntries: 10000,
		},
	}
}

// LoadConfig reads and parses a runtime config YAML file.
// Returns default config if the file doesn't exist. Environment variables
// written as ${NAME} are expanded before parsing, and CHKWRITE_MODE
// overrides the mode.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		interpolated := interpolateEnvVars(string(data))
		if err := yaml.Unmarshal([]byte(interpolated), &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if mode, ok := os.LookupEnv("CHKWRITE_MODE"); ok && mode != "" {
		cfg.Mode = mode
	}
	if cfg.Store.Path == "" {
		cfg.Store.Path = DefaultConfig().Store.Path
	}

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	switch c.Mode {
	case ModeInteractive, ModeAgent:
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}
	switch c.Store.Backend {
	case BackendMemory, BackendBolt:
	default:
		return fmt.Errorf("unknown store backend %q", c.Store.Backend)
	}
	if c.History.MaxEntries < 0 {
		return fmt.Errorf("history.max_entries must not be negative")
	}
	return nil
}

// envVarPattern matches ${VAR_NAME} patterns.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)\}`)

// interpolateEnvVars replaces ${VAR_NAME} patterns with environment variable values.
func interpolateEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimPrefix(strings.TrimSuffix(match, "}"), "${")
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match // Leave unresolved if not set.
	})
}

// DefaultYAML is the config file written by `chkwrite init`.
const DefaultYAML = `# chkwrite runtime configuration
mode: interactive
log_level: info
log_format: console

catalog:
  # Empty path uses the built-in catalog.
  path: ""
  vars: {}

store:
  # Bolt keeps sessions in a file under the temp dir unless path is set.
  backend: memory

server:
  addr: "127.0.0.1:8420"

history:
  max_entries: 10000

evaluate:
  fail_fast: false
`
