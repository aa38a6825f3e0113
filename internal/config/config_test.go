package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agentcore.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadFileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
[llm]
model = "claude-haiku-3-5"
max_tokens = 1024
max_retries = 5
retry_backoff = "10s"

[storage]
backend = "sqlite"
path = "traces.db"

[kernel]
recall_limit = 5
min_similarity = 0.5
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.LLM.Model != "claude-haiku-3-5" {
		t.Errorf("model = %q", cfg.LLM.Model)
	}
	if cfg.LLM.MaxRetries != 5 {
		t.Errorf("max_retries = %d", cfg.LLM.MaxRetries)
	}
	if cfg.Storage.Backend != "sqlite" || cfg.Storage.Path != "traces.db" {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Kernel.RecallLimit != 5 {
		t.Errorf("recall_limit = %d", cfg.Kernel.RecallLimit)
	}
	// Untouched sections keep defaults.
	if cfg.Roster.Path != "roster.yaml" {
		t.Errorf("roster.path = %q", cfg.Roster.Path)
	}
	if cfg.Kernel.Concurrency != 4 {
		t.Errorf("concurrency = %d", cfg.Kernel.Concurrency)
	}

	d, err := cfg.RetryBackoff()
	if err != nil {
		t.Fatalf("RetryBackoff: %v", err)
	}
	if d != 10*time.Second {
		t.Errorf("backoff = %v", d)
	}
}

func TestLoadFileRejectsUnknownBackend(t *testing.T) {
	path := writeConfig(t, `
[storage]
backend = "dynamo"
`)
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestLoadFileRejectsFirestoreWithoutProject(t *testing.T) {
	path := writeConfig(t, `
[storage]
backend = "firestore"
`)
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for missing project_id")
	}
}

func TestLoadFileRejectsBadBackoff(t *testing.T) {
	path := writeConfig(t, `
[llm]
retry_backoff = "soon"
`)
	if _, err := LoadFile(path); err == nil {
		t.Fatal("expected error for bad retry_backoff")
	}
}

func TestGetAPIKey(t *testing.T) {
	t.Setenv("AGENTCORE_TEST_KEY", "sk-test")
	cfg := New()
	cfg.LLM.APIKeyEnv = "AGENTCORE_TEST_KEY"
	if got := cfg.GetAPIKey(); got != "sk-test" {
		t.Errorf("GetAPIKey = %q", got)
	}
	cfg.LLM.APIKeyEnv = ""
	if got := cfg.GetAPIKey(); got != "" {
		t.Errorf("GetAPIKey with no env = %q", got)
	}
}
