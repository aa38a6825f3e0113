package llm

import (
	"context"
	"log/slog"
	"math/rand"
	"time"
)

// RetryConfig holds retry settings for the resilience wrapper.
type RetryConfig struct {
	MaxAttempts int           // Total attempts, including the first call
	BaseDelay   time.Duration // Initial backoff delay
	MaxDelay    time.Duration // Backoff cap
	Jitter      bool          // Add up to 25% random jitter to each delay
}

// DefaultRetryConfig returns the defaults used across the runtime.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 3,
		BaseDelay:   1 * time.Second,
		MaxDelay:    30 * time.Second,
	}
}

func normalizeRetryConfig(cfg RetryConfig) RetryConfig {
	def := DefaultRetryConfig()
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = def.MaxAttempts
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = def.BaseDelay
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = def.MaxDelay
	}
	return cfg
}

// Backoff calculates the exponential backoff delay for a zero-based attempt.
func Backoff(base time.Duration, attempt int, max time.Duration, jitter bool) time.Duration {
	delay := base * time.Duration(1<<uint(attempt))
	if delay > max {
		delay = max
	}
	if jitter && delay > 0 {
		delay += time.Duration(rand.Int63n(int64(delay / 4)))
	}
	return delay
}

// RetryingProvider wraps a Provider with bounded exponential backoff.
// Retryable failures (rate limit, overload, transient unavailability) are
// absorbed up to the attempt cap; everything else propagates on first
// occurrence wrapped in *TerminalError.
type RetryingProvider struct {
	inner  Provider
	cfg    RetryConfig
	logger *slog.Logger

	// sleep is replaceable for tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRetryingProvider wraps inner with the given retry config.
func NewRetryingProvider(inner Provider, cfg RetryConfig, logger *slog.Logger) *RetryingProvider {
	if logger == nil {
		logger = slog.Default()
	}
	return &RetryingProvider{
		inner:  inner,
		cfg:    normalizeRetryConfig(cfg),
		logger: logger.With("component", "llm-retry"),
		sleep:  sleepCtx,
	}
}

// Name implements Provider.
func (p *RetryingProvider) Name() string { return p.inner.Name() }

// CreateCompletion implements Provider with retry semantics.
func (p *RetryingProvider) CreateCompletion(ctx context.Context, req Request) (*Response, error) {
	var lastErr error

	for attempt := 0; attempt < p.cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			delay := Backoff(p.cfg.BaseDelay, attempt-1, p.cfg.MaxDelay, p.cfg.Jitter)
			p.logger.Warn("retrying LLM call",
				"attempt", attempt+1,
				"max_attempts", p.cfg.MaxAttempts,
				"delay", delay.String(),
				"error", lastErr.Error(),
			)
			if err := p.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		resp, err := p.inner.CreateCompletion(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !IsRetryable(err) {
			return nil, &TerminalError{Attempts: attempt + 1, Err: err}
		}
	}

	return nil, &TerminalError{Attempts: p.cfg.MaxAttempts, Err: lastErr}
}

// sleepCtx sleeps for d, returning early if the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
