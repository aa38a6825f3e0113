package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"cloud.google.com/go/firestore"

	"github.com/verdantlabs/agentcore/internal/config"
	"github.com/verdantlabs/agentcore/internal/events"
	"github.com/verdantlabs/agentcore/internal/executor"
	"github.com/verdantlabs/agentcore/internal/kernel"
	"github.com/verdantlabs/agentcore/internal/llm"
	"github.com/verdantlabs/agentcore/internal/roster"
	"github.com/verdantlabs/agentcore/internal/telemetry"
	"github.com/verdantlabs/agentcore/internal/trace"
	"github.com/verdantlabs/agentcore/internal/verify"
)

const defaultConfigPath = "agentcore.toml"

// runtime holds the assembled long-lived dependencies of a command.
type runtime struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    trace.Store
	provider llm.Provider
	fleet    *roster.Roster
	events   *events.Publisher // nil when disabled or unreachable
	shutdown telemetry.Shutdown
}

// buildRuntime assembles config, logging, telemetry, storage, the model
// provider, and the roster. A missing event bus degrades to no events.
func buildRuntime(ctx context.Context, configPath string) (*runtime, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	endpoint := ""
	if cfg.Telemetry.Enabled {
		endpoint = cfg.Telemetry.Endpoint
	}
	shutdown, err := telemetry.Init(ctx, endpoint, "agentcore", version, cfg.Telemetry.Insecure)
	if err != nil {
		return nil, err
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	provider, err := buildProvider(cfg, logger)
	if err != nil {
		store.Close()
		return nil, err
	}

	fleet, err := roster.Load(cfg.Roster.Path)
	if err != nil {
		store.Close()
		return nil, err
	}

	rt := &runtime{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		provider: provider,
		fleet:    fleet,
		shutdown: shutdown,
	}

	if cfg.Events.Enabled {
		pub, err := events.Connect(cfg.Events.URL, logger)
		if err != nil {
			logger.Warn("event bus unavailable, continuing without events", "error", err.Error())
		} else {
			rt.events = pub
		}
	}

	return rt, nil
}

// Close releases runtime resources in reverse assembly order.
func (rt *runtime) Close(ctx context.Context) {
	if rt.events != nil {
		if err := rt.events.Close(); err != nil {
			rt.logger.Warn("event bus close failed", "error", err.Error())
		}
	}
	if err := rt.store.Close(); err != nil {
		rt.logger.Warn("store close failed", "error", err.Error())
	}
	if err := rt.shutdown(ctx); err != nil {
		rt.logger.Warn("telemetry shutdown failed", "error", err.Error())
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.LoadDefault()
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if path == defaultConfigPath {
			return config.New(), nil
		}
		return nil, fmt.Errorf("config file not found: %s", path)
	}
	return config.LoadFile(path)
}

func openStore(ctx context.Context, cfg *config.Config) (trace.Store, error) {
	switch cfg.Storage.Backend {
	case "sqlite":
		return trace.NewSQLiteStore(cfg.Storage.Path)
	case "firestore":
		client, err := firestore.NewClient(ctx, cfg.Storage.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("firestore client: %w", err)
		}
		return trace.NewFirestoreStore(client), nil
	default:
		return trace.NewMemoryStore(), nil
	}
}

func buildProvider(cfg *config.Config, logger *slog.Logger) (llm.Provider, error) {
	base, err := llm.NewAnthropicProvider(llm.AnthropicConfig{
		APIKey:    cfg.GetAPIKey(),
		Model:     cfg.LLM.Model,
		MaxTokens: cfg.LLM.MaxTokens,
		BaseURL:   cfg.LLM.BaseURL,
	})
	if err != nil {
		return nil, err
	}

	maxDelay, err := cfg.RetryBackoff()
	if err != nil {
		return nil, err
	}
	rc := llm.DefaultRetryConfig()
	rc.MaxAttempts = cfg.LLM.MaxRetries
	rc.MaxDelay = maxDelay
	rc.Jitter = true
	return llm.NewRetryingProvider(base, rc, logger), nil
}

// kernelFor assembles the execution kernel for one persona. Verified
// personas get their planner wrapped in the quality gate.
func (rt *runtime) kernelFor(agent roster.Agent) (*kernel.Kernel, error) {
	loop := executor.New(rt.provider, rt.logger)
	opts := executor.Options{
		Model:     agent.Model,
		System:    agent.SystemPrompt,
		MaxTokens: rt.cfg.LLM.MaxTokens,
	}

	var planner kernel.Planner = kernel.NewLLMPlanner(rt.provider, loop, nil, nil, opts)
	if agent.Verified {
		model := agent.Model
		if model == "" {
			model = rt.cfg.LLM.Model
		}
		critic := verify.NewCritic(rt.provider, agent.Criteria, model, rt.logger)
		planner = kernel.NewVerifiedPlanner(planner, critic, rt.cfg.Kernel.VerifyAttempts, rt.logger)
	}

	var notifier kernel.Notifier
	if rt.events != nil {
		notifier = rt.events
	}

	return kernel.New(kernel.Config{
		Store:       rt.store,
		Planner:     planner,
		Scorer:      kernel.TokenOverlapScorer{MinOverlap: rt.cfg.Kernel.MinSimilarity},
		Notifier:    notifier,
		Logger:      rt.logger,
		RecallLimit: rt.cfg.Kernel.RecallLimit,
	})
}
