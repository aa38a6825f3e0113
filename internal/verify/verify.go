// Package verify implements the quality gate around a generation step:
// generate a candidate, run it through a pluggable verifier, and on failure
// regenerate with the verifier's feedback injected into the stimulus.
package verify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// DefaultMaxAttempts bounds the generate/verify cycle when the caller
// passes no bound.
const DefaultMaxAttempts = 2

// VerificationResult is the verifier's judgment of one candidate.
type VerificationResult struct {
	Passed     bool     `json:"passed"`
	Issues     []string `json:"issues"`
	Suggestion string   `json:"suggestion,omitempty"`
}

// Verifier judges a generated candidate. Which agents require verification,
// and with which verifier, is a routing decision made elsewhere.
type Verifier interface {
	Verify(ctx context.Context, candidate string) (*VerificationResult, error)
}

// VerifierFunc adapts a function to the Verifier interface.
type VerifierFunc func(ctx context.Context, candidate string) (*VerificationResult, error)

// Verify implements Verifier.
func (f VerifierFunc) Verify(ctx context.Context, candidate string) (*VerificationResult, error) {
	return f(ctx, candidate)
}

// GenerateFunc produces a candidate from a stimulus. It may wrap anything
// from a single completion to a full tool-calling loop run.
type GenerateFunc func(ctx context.Context, stimulus string) (string, error)

// Outcome is the result of a verification-gated run.
type Outcome struct {
	// Content is the first passing candidate, or the last candidate
	// produced when every attempt failed verification.
	Content string
	// Passed reports whether Content passed verification. A false value
	// is not an error: the caller decides whether to surface or reject.
	Passed bool
	// Attempts is the number of generate calls made.
	Attempts int
	// LastResult is the verifier's judgment of Content.
	LastResult *VerificationResult
}

// Controller runs the generate → verify → retry-with-feedback cycle.
type Controller struct {
	logger *slog.Logger
}

// NewController creates a controller.
func NewController(logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{logger: logger.With("component", "verify")}
}

// RunVerified generates candidates until one passes verification or
// maxAttempts is exhausted. Every returned outcome was checked at least
// once. Exhausted attempts return the last candidate rather than an error;
// only generation or verifier infrastructure failures are errors.
func (c *Controller) RunVerified(ctx context.Context, stimulus string, generate GenerateFunc, verifier Verifier, maxAttempts int) (*Outcome, error) {
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	current := stimulus
	outcome := &Outcome{}

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		candidate, err := generate(ctx, current)
		if err != nil {
			return nil, fmt.Errorf("verify: generate attempt %d: %w", attempt, err)
		}
		outcome.Attempts = attempt
		outcome.Content = candidate

		result, err := verifier.Verify(ctx, candidate)
		if err != nil {
			return nil, fmt.Errorf("verify: verifier attempt %d: %w", attempt, err)
		}
		outcome.LastResult = result

		if result.Passed {
			outcome.Passed = true
			c.logger.Debug("candidate passed verification", "attempt", attempt)
			return outcome, nil
		}

		c.logger.Info("candidate failed verification",
			"attempt", attempt,
			"max_attempts", maxAttempts,
			"issues", len(result.Issues),
		)

		// Next attempt sees the original stimulus plus only the latest
		// feedback, so repeated failures don't grow the context.
		current = withFeedback(stimulus, result)
	}

	return outcome, nil
}

// withFeedback appends a delimited feedback block to the original stimulus
// so the generator can distinguish reviewer notes from the request itself.
func withFeedback(stimulus string, result *VerificationResult) string {
	var b strings.Builder
	b.WriteString(stimulus)
	b.WriteString("\n\n--- REVISION FEEDBACK ---\n")
	b.WriteString("A previous attempt was rejected by review. Address the following:\n")
	for _, issue := range result.Issues {
		b.WriteString("- ")
		b.WriteString(issue)
		b.WriteString("\n")
	}
	if result.Suggestion != "" {
		b.WriteString("Suggestion: ")
		b.WriteString(result.Suggestion)
		b.WriteString("\n")
	}
	b.WriteString("--- END FEEDBACK ---")
	return b.String()
}
