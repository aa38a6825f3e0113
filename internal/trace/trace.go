// Package trace defines the episodic memory model: what a work order is,
// what an execution produced, and how the run unfolded step by step.
package trace

import (
	"time"

	"github.com/google/uuid"
)

// Method identifies which kernel path produced a trace.
type Method string

const (
	MethodHeuristic Method = "system_1_heuristic"
	MethodPlanning  Method = "system_2_planning"
)

// WorkOrder is the unit of work submitted to the kernel. Immutable once
// created.
type WorkOrder struct {
	ID          string    `json:"id"`
	Goal        string    `json:"goal"`
	RequestedBy string    `json:"requestedBy"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewWorkOrder creates a work order for the given agent and goal.
func NewWorkOrder(agentID, goal string) WorkOrder {
	return WorkOrder{
		ID:          uuid.New().String(),
		Goal:        goal,
		RequestedBy: agentID,
		CreatedAt:   time.Now().UTC(),
	}
}

// Artifact is the durable output of an execution. Produced exactly once per
// kernel run and referenced, never embedded, by the trace.
type Artifact struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Content   string    `json:"content"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

// TraceStep is a single sub-action inside a trace: a recall hit, a plan
// step, a tool call. Insertion order is the order of occurrence.
type TraceStep struct {
	StepID    string    `json:"stepId" firestore:"stepId"`
	Action    string    `json:"action" firestore:"action"`
	Input     string    `json:"input" firestore:"input"`
	Output    string    `json:"output" firestore:"output"`
	Timestamp time.Time `json:"timestamp" firestore:"timestamp"`
}

// Trace is the append-only record of one kernel run. Owned by the agent
// that produced it; never mutated after save except for FeedbackScore.
type Trace struct {
	ID               string      `json:"id" firestore:"id"`
	WorkOrderID      string      `json:"workOrderId" firestore:"workOrderId"`
	AgentID          string      `json:"agentId" firestore:"agentId"`
	Goal             string      `json:"goal" firestore:"goal"`
	Method           Method      `json:"method" firestore:"method"`
	Steps            []TraceStep `json:"steps" firestore:"steps"`
	OutputArtifactID string      `json:"outputArtifactId" firestore:"outputArtifactId"`
	DurationMs       int64       `json:"durationMs" firestore:"durationMs"`
	StartedAt        time.Time   `json:"startedAt" firestore:"startedAt"`
	CompletedAt      time.Time   `json:"completedAt" firestore:"completedAt"`
	FeedbackScore    *float64    `json:"feedbackScore,omitempty" firestore:"feedbackScore,omitempty"`
}

// NewStep creates a timestamped step.
func NewStep(action, input, output string) TraceStep {
	return TraceStep{
		StepID:    uuid.New().String(),
		Action:    action,
		Input:     input,
		Output:    output,
		Timestamp: time.Now().UTC(),
	}
}

// AppendStep records a step, preserving occurrence order.
func (t *Trace) AppendStep(action, input, output string) {
	t.Steps = append(t.Steps, NewStep(action, input, output))
}
