package kernel

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/verdantlabs/agentcore/internal/executor"
	"github.com/verdantlabs/agentcore/internal/llm"
	"github.com/verdantlabs/agentcore/internal/trace"
)

const plannerSystemPrompt = "You are an operations agent on a cannabis-commerce platform. Plan briefly, use the available tools when they help, and produce the requested deliverable directly."

// LLMPlanner is the default System 2 implementation: a planning completion
// followed by a tool-calling execution pass.
type LLMPlanner struct {
	provider llm.Provider
	loop     *executor.Loop
	tools    []llm.ToolDef
	exec     executor.ToolExecutor
	opts     executor.Options
}

// NewLLMPlanner creates a planner. The tool set and executor are fixed per
// planner; personas needing different capabilities get their own planner.
func NewLLMPlanner(provider llm.Provider, loop *executor.Loop, tools []llm.ToolDef, exec executor.ToolExecutor, opts executor.Options) *LLMPlanner {
	if opts.System == "" {
		opts.System = plannerSystemPrompt
	}
	return &LLMPlanner{provider: provider, loop: loop, tools: tools, exec: exec, opts: opts}
}

// Execute implements Planner.
func (p *LLMPlanner) Execute(ctx context.Context, order trace.WorkOrder) (*PlanResult, error) {
	result := &PlanResult{}

	plan, err := p.draftPlan(ctx, order)
	if err != nil {
		return nil, err
	}
	result.Steps = append(result.Steps, trace.NewStep("plan", order.Goal, plan))

	prompt := order.Goal
	if plan != "" {
		prompt = fmt.Sprintf("%s\n\nFollow this plan:\n%s", order.Goal, plan)
	}

	run, err := p.loop.Run(ctx, prompt, p.tools, p.exec, p.opts)
	if err != nil {
		return nil, err
	}

	for _, te := range run.ToolExecutions {
		input, _ := json.Marshal(te.Input)
		result.Steps = append(result.Steps, trace.NewStep("tool_call:"+te.Name, string(input), te.Output))
	}
	result.Steps = append(result.Steps, trace.NewStep("execution", prompt, run.Content))
	result.Content = run.Content
	return result, nil
}

// draftPlan asks for a short numbered plan in a single round. A planning
// failure falls back to executing the goal directly.
func (p *LLMPlanner) draftPlan(ctx context.Context, order trace.WorkOrder) (string, error) {
	resp, err := p.provider.CreateCompletion(ctx, llm.Request{
		Model:  p.opts.Model,
		System: p.opts.System,
		Messages: []llm.Message{llm.UserText(fmt.Sprintf(
			"Write a short numbered plan (3 steps or fewer) for this task. Plan only, no execution.\n\nTASK: %s",
			order.Goal,
		))},
	})
	if err != nil {
		return "", fmt.Errorf("draft plan: %w", err)
	}
	return resp.Text(), nil
}
