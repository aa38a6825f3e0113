package llm

import (
	"context"
	"errors"
	"testing"
	"time"
)

// mockProvider returns scripted errors then a success.
type mockProvider struct {
	errs      []error
	callCount int
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) CreateCompletion(ctx context.Context, req Request) (*Response, error) {
	defer func() { m.callCount++ }()
	if m.callCount < len(m.errs) && m.errs[m.callCount] != nil {
		return nil, m.errs[m.callCount]
	}
	return &Response{
		Content:    []ContentBlock{TextBlock{Text: "ok"}},
		StopReason: StopEndTurn,
	}, nil
}

// newTestRetrier returns a retrying provider with recorded (not real) sleeps.
func newTestRetrier(inner Provider, cfg RetryConfig) (*RetryingProvider, *[]time.Duration) {
	p := NewRetryingProvider(inner, cfg, nil)
	var delays []time.Duration
	p.sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return nil
	}
	return p, &delays
}

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	inner := &mockProvider{errs: []error{
		&APIError{StatusCode: 429, Message: "rate limited"},
		&APIError{StatusCode: 529, Message: "overloaded"},
	}}
	p, _ := newTestRetrier(inner, RetryConfig{MaxAttempts: 3, BaseDelay: time.Second})

	resp, err := p.CreateCompletion(context.Background(), Request{})
	if err != nil {
		t.Fatalf("CreateCompletion() error = %v", err)
	}
	if resp.Text() != "ok" {
		t.Errorf("expected success response, got %q", resp.Text())
	}
	if inner.callCount != 3 {
		t.Errorf("expected 3 calls, got %d", inner.callCount)
	}
}

func TestRetry_BackoffStrictlyIncreasing(t *testing.T) {
	inner := &mockProvider{errs: []error{
		&APIError{StatusCode: 503, Message: "unavailable"},
		&APIError{StatusCode: 503, Message: "unavailable"},
		&APIError{StatusCode: 503, Message: "unavailable"},
	}}
	p, delays := newTestRetrier(inner, RetryConfig{MaxAttempts: 3, BaseDelay: time.Second})

	_, err := p.CreateCompletion(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error after exhausting attempts")
	}

	var terminal *TerminalError
	if !errors.As(err, &terminal) {
		t.Fatalf("expected *TerminalError, got %T", err)
	}
	if terminal.Attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", terminal.Attempts)
	}

	// Two sleeps between three attempts, strictly increasing: 1s then 2s.
	if len(*delays) != 2 {
		t.Fatalf("expected 2 backoff sleeps, got %d", len(*delays))
	}
	if (*delays)[0] != time.Second || (*delays)[1] != 2*time.Second {
		t.Errorf("expected delays [1s 2s], got %v", *delays)
	}
}

func TestRetry_NonRetryablePropagatesImmediately(t *testing.T) {
	inner := &mockProvider{errs: []error{
		&APIError{StatusCode: 401, Message: "invalid api key"},
	}}
	p, delays := newTestRetrier(inner, RetryConfig{MaxAttempts: 3, BaseDelay: time.Second})

	_, err := p.CreateCompletion(context.Background(), Request{})
	if err == nil {
		t.Fatal("expected error")
	}
	if inner.callCount != 1 {
		t.Errorf("expected 1 call for terminal error, got %d", inner.callCount)
	}
	if len(*delays) != 0 {
		t.Errorf("expected no backoff sleeps, got %v", *delays)
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 401 {
		t.Errorf("expected wrapped 401 APIError, got %v", err)
	}
}

func TestRetry_ContextCancelledDuringBackoff(t *testing.T) {
	inner := &mockProvider{errs: []error{
		&APIError{StatusCode: 429, Message: "rate limited"},
		&APIError{StatusCode: 429, Message: "rate limited"},
	}}
	p := NewRetryingProvider(inner, RetryConfig{MaxAttempts: 3, BaseDelay: time.Hour}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := p.CreateCompletion(ctx, Request{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestBackoff_CapsAtMaxDelay(t *testing.T) {
	if got := Backoff(time.Second, 10, 30*time.Second, false); got != 30*time.Second {
		t.Errorf("expected cap at 30s, got %v", got)
	}
	if got := Backoff(time.Second, 2, 30*time.Second, false); got != 4*time.Second {
		t.Errorf("expected 4s for attempt 2, got %v", got)
	}
}
