// Package kernel orchestrates one work order through the dual-process task
// flow: a cheap recall-and-adapt path when episodic memory has seen similar
// work succeed, and a full planning path otherwise. Every run leaves exactly
// one trace behind, whichever path it took.
package kernel

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/verdantlabs/agentcore/internal/trace"
)

// Planner performs the System 2 pass: full planning plus execution.
type Planner interface {
	Execute(ctx context.Context, order trace.WorkOrder) (*PlanResult, error)
}

// PlanResult is what a planning pass produced.
type PlanResult struct {
	Content string
	Steps   []trace.TraceStep
}

// Notifier announces completed traces to interested systems. Best-effort;
// failures are logged by the implementation and never reach the kernel.
type Notifier interface {
	TraceCompleted(ctx context.Context, t *trace.Trace)
}

// RunResult is the outcome of one kernel run.
type RunResult struct {
	Artifact trace.Artifact
	Trace    trace.Trace
}

// Kernel executes work orders.
type Kernel struct {
	store    trace.Store
	planner  Planner
	scorer   SimilarityScorer
	notifier Notifier
	logger   *slog.Logger

	recallLimit int
}

// Config assembles a kernel. Store and Planner are required; Scorer
// defaults to TokenOverlapScorer and Notifier may be nil.
type Config struct {
	Store       trace.Store
	Planner     Planner
	Scorer      SimilarityScorer
	Notifier    Notifier
	Logger      *slog.Logger
	RecallLimit int
}

// New creates a kernel.
func New(cfg Config) (*Kernel, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("kernel: store is required")
	}
	if cfg.Planner == nil {
		return nil, fmt.Errorf("kernel: planner is required")
	}
	scorer := cfg.Scorer
	if scorer == nil {
		scorer = TokenOverlapScorer{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	limit := cfg.RecallLimit
	if limit <= 0 {
		limit = trace.DefaultRecallLimit
	}
	return &Kernel{
		store:       cfg.Store,
		planner:     cfg.Planner,
		scorer:      scorer,
		notifier:    cfg.Notifier,
		logger:      logger.With("component", "kernel"),
		recallLimit: limit,
	}, nil
}

// Execute runs one work order to completion. Exactly one trace is persisted
// per call, including when planning fails; the planning error is then
// surfaced to the caller after the save attempt.
func (k *Kernel) Execute(ctx context.Context, order trace.WorkOrder) (*RunResult, error) {
	started := time.Now()

	ctx, span := startRunSpan(ctx, order)

	tr := &trace.Trace{
		ID:          uuid.New().String(),
		WorkOrderID: order.ID,
		AgentID:     order.RequestedBy,
		Goal:        order.Goal,
		StartedAt:   started.UTC(),
	}

	var content string
	if match := k.checkMemory(ctx, order); match != nil {
		tr.Method = trace.MethodHeuristic
		content = k.heuristicExecute(order, match, tr)
	} else {
		tr.Method = trace.MethodPlanning
		result, err := k.planner.Execute(ctx, order)
		if err != nil {
			tr.AppendStep("planning_error", order.Goal, err.Error())
			k.finalizeTrace(ctx, tr, started)
			endRunSpan(span, tr.Method, err)
			return nil, fmt.Errorf("kernel: planning %s: %w", order.ID, err)
		}
		tr.Steps = append(tr.Steps, result.Steps...)
		content = result.Content
	}

	artifact := trace.Artifact{
		ID:        uuid.New().String(),
		Type:      "text",
		Content:   content,
		CreatedBy: order.RequestedBy,
		CreatedAt: time.Now().UTC(),
	}
	tr.OutputArtifactID = artifact.ID

	k.finalizeTrace(ctx, tr, started)
	endRunSpan(span, tr.Method, nil)

	k.logger.Info("work order complete",
		"work_order", order.ID,
		"agent", order.RequestedBy,
		"method", string(tr.Method),
		"duration_ms", tr.DurationMs,
		"steps", len(tr.Steps),
	)
	return &RunResult{Artifact: artifact, Trace: *tr}, nil
}

// checkMemory asks the store for recent traces and applies the similarity
// scorer, newest first. Store failures degrade to the planning path.
func (k *Kernel) checkMemory(ctx context.Context, order trace.WorkOrder) *trace.Trace {
	recent, err := k.store.FindSimilarTraces(ctx, order, k.recallLimit)
	if err != nil {
		k.logger.Warn("memory lookup failed, taking planning path",
			"work_order", order.ID,
			"error", err.Error(),
		)
		return nil
	}

	for _, candidate := range recent {
		// Failure traces carry the goal but produced no artifact; only a
		// prior success is adaptable. Without this check a retried goal
		// would match its own failure and never reach the planner.
		if candidate.OutputArtifactID == "" {
			continue
		}
		score := k.scorer.Score(order.Goal, candidate)
		if score >= k.scorer.Threshold() {
			k.logger.Debug("recall hit",
				"work_order", order.ID,
				"matched_trace", candidate.ID,
				"score", score,
			)
			return candidate
		}
	}
	return nil
}

// heuristicExecute is the System 1 path: adapt the matched trace's output
// instead of regenerating it.
func (k *Kernel) heuristicExecute(order trace.WorkOrder, match *trace.Trace, tr *trace.Trace) string {
	tr.AppendStep("system_1_recall",
		order.Goal,
		fmt.Sprintf("matched trace %s (artifact %s)", match.ID, match.OutputArtifactID),
	)
	return fmt.Sprintf(
		"Adapted from prior execution (trace %s, artifact %s) for goal: %s",
		match.ID, match.OutputArtifactID, order.Goal,
	)
}

// finalizeTrace stamps timing and persists. The save error is deliberately
// reduced to a log line: memory writes are off the critical path.
func (k *Kernel) finalizeTrace(ctx context.Context, tr *trace.Trace, started time.Time) {
	tr.CompletedAt = time.Now().UTC()
	tr.DurationMs = time.Since(started).Milliseconds()

	if err := k.store.SaveTrace(ctx, tr); err != nil {
		k.logger.Warn("trace save failed (non-fatal)",
			"trace", tr.ID,
			"error", err.Error(),
		)
		return
	}
	if k.notifier != nil {
		k.notifier.TraceCompleted(ctx, tr)
	}
}
