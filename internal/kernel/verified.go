package kernel

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/verdantlabs/agentcore/internal/trace"
	"github.com/verdantlabs/agentcore/internal/verify"
)

// VerifiedPlanner gates an inner planner's output behind a quality check.
// Rejected candidates trigger a re-plan with the reviewer's feedback folded
// into the goal. A candidate that never passes is still returned; the final
// trace records the verdict.
type VerifiedPlanner struct {
	inner       Planner
	ctrl        *verify.Controller
	verifier    verify.Verifier
	maxAttempts int
}

// NewVerifiedPlanner wraps inner so its output must pass verifier.
func NewVerifiedPlanner(inner Planner, verifier verify.Verifier, maxAttempts int, logger *slog.Logger) *VerifiedPlanner {
	return &VerifiedPlanner{
		inner:       inner,
		ctrl:        verify.NewController(logger),
		verifier:    verifier,
		maxAttempts: maxAttempts,
	}
}

// Execute implements Planner.
func (p *VerifiedPlanner) Execute(ctx context.Context, order trace.WorkOrder) (*PlanResult, error) {
	var last *PlanResult

	generate := func(ctx context.Context, stimulus string) (string, error) {
		revised := order
		revised.Goal = stimulus
		res, err := p.inner.Execute(ctx, revised)
		if err != nil {
			return "", err
		}
		last = res
		return res.Content, nil
	}

	outcome, err := p.ctrl.RunVerified(ctx, order.Goal, generate, p.verifier, p.maxAttempts)
	if err != nil {
		return nil, err
	}

	verdict := "passed"
	if !outcome.Passed {
		verdict = "rejected"
	}
	result := &PlanResult{
		Content: outcome.Content,
		Steps:   last.Steps,
	}
	result.Steps = append(result.Steps, trace.NewStep(
		"verification",
		fmt.Sprintf("attempts=%d", outcome.Attempts),
		verdict,
	))
	return result, nil
}
