// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the runtime configuration.
type Config struct {
	LLM       LLMConfig       `toml:"llm"`
	Storage   StorageConfig   `toml:"storage"`
	Roster    RosterConfig    `toml:"roster"`
	Events    EventsConfig    `toml:"events"`
	Telemetry TelemetryConfig `toml:"telemetry"`
	Kernel    KernelConfig    `toml:"kernel"`
}

// LLMConfig contains model provider settings.
type LLMConfig struct {
	Model        string `toml:"model"`
	APIKeyEnv    string `toml:"api_key_env"`
	MaxTokens    int    `toml:"max_tokens"`
	BaseURL      string `toml:"base_url"`      // Custom API endpoint
	MaxRetries   int    `toml:"max_retries"`   // Max attempts per call (default 3)
	RetryBackoff string `toml:"retry_backoff"` // Max backoff duration (default "30s")
}

// StorageConfig selects and configures the trace store backend.
type StorageConfig struct {
	Backend   string `toml:"backend"`    // memory | sqlite | firestore
	Path      string `toml:"path"`       // sqlite database path
	ProjectID string `toml:"project_id"` // firestore project
}

// RosterConfig locates the persona fleet definition.
type RosterConfig struct {
	Path  string `toml:"path"`
	Watch bool   `toml:"watch"` // hot-reload on file change
}

// EventsConfig configures the trace event bus.
type EventsConfig struct {
	Enabled bool   `toml:"enabled"`
	URL     string `toml:"url"` // NATS server URL
}

// TelemetryConfig contains OTLP trace export settings.
type TelemetryConfig struct {
	Enabled  bool   `toml:"enabled"`
	Endpoint string `toml:"endpoint"` // e.g. localhost:4318
	Insecure bool   `toml:"insecure"`
}

// KernelConfig tunes the dual-path execution kernel.
type KernelConfig struct {
	RecallLimit    int     `toml:"recall_limit"`    // traces fetched per recall (default 10)
	MinSimilarity  float64 `toml:"min_similarity"`  // token overlap threshold (default 0.3)
	VerifyAttempts int     `toml:"verify_attempts"` // generation attempts per verified task (default 2)
	Concurrency    int     `toml:"concurrency"`     // dispatcher parallelism (default 4)
}

// New creates a new config with defaults.
func New() *Config {
	return &Config{
		LLM: LLMConfig{
			Model:        "claude-sonnet-4-20250514",
			APIKeyEnv:    "ANTHROPIC_API_KEY",
			MaxTokens:    4096,
			MaxRetries:   3,
			RetryBackoff: "30s",
		},
		Storage: StorageConfig{
			Backend: "memory",
			Path:    "agentcore.db",
		},
		Roster: RosterConfig{
			Path: "roster.yaml",
		},
		Events: EventsConfig{
			URL: "nats://127.0.0.1:4222",
		},
		Kernel: KernelConfig{
			RecallLimit:    10,
			MinSimilarity:  0.3,
			VerifyAttempts: 2,
			Concurrency:    4,
		},
	}
}

// LoadFile loads configuration from a TOML file over the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := New()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDefault loads configuration from agentcore.toml in the current
// directory, falling back to built-in defaults when absent.
func LoadDefault() (*Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get current directory: %w", err)
	}
	path := filepath.Join(cwd, "agentcore.toml")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return New(), nil
	}
	return LoadFile(path)
}

func (c *Config) validate() error {
	switch c.Storage.Backend {
	case "memory", "sqlite", "firestore":
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}
	if c.Storage.Backend == "sqlite" && c.Storage.Path == "" {
		return fmt.Errorf("storage.path required for sqlite backend")
	}
	if c.Storage.Backend == "firestore" && c.Storage.ProjectID == "" {
		return fmt.Errorf("storage.project_id required for firestore backend")
	}
	if c.LLM.MaxRetries < 1 {
		return fmt.Errorf("llm.max_retries must be at least 1")
	}
	if _, err := c.RetryBackoff(); err != nil {
		return err
	}
	return nil
}

// GetAPIKey returns the API key from the configured environment variable.
func (c *Config) GetAPIKey() string {
	if c.LLM.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.LLM.APIKeyEnv)
}

// RetryBackoff parses the configured max backoff duration.
func (c *Config) RetryBackoff() (time.Duration, error) {
	if c.LLM.RetryBackoff == "" {
		return 30 * time.Second, nil
	}
	d, err := time.ParseDuration(c.LLM.RetryBackoff)
	if err != nil {
		return 0, fmt.Errorf("invalid llm.retry_backoff: %w", err)
	}
	return d, nil
}
