// Package executor drives the bounded tool-calling conversation loop: send
// prompt and tool definitions, execute requested tools, feed results back,
// repeat until the model stops or the iteration cap is hit.
package executor

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/verdantlabs/agentcore/internal/llm"
)

// DefaultMaxIterations bounds the loop when options don't set a cap.
const DefaultMaxIterations = 10

// ToolExecutor runs one tool invocation on behalf of the model. It may have
// arbitrary side effects and must be safe for concurrent use when multiple
// work orders run in parallel.
type ToolExecutor func(ctx context.Context, name string, input map[string]any) (any, error)

// ToolStatus is the outcome of a single tool invocation.
type ToolStatus string

const (
	StatusSuccess ToolStatus = "success"
	StatusError   ToolStatus = "error"
)

// ToolExecution records one tool invocation inside a single run. Not
// persisted independently; aggregated into the run's Result.
type ToolExecution struct {
	ID         string
	Name       string
	Input      map[string]any
	Output     string
	Status     ToolStatus
	DurationMs int64
}

// Options configures one run.
type Options struct {
	// MaxIterations bounds the conversation loop; DefaultMaxIterations when 0.
	MaxIterations int
	// System is the system prompt for every round.
	System string
	// Model overrides the provider's default model.
	Model string
	// MaxTokens overrides the provider's default token budget.
	MaxTokens int
}

// SingleRound caps the loop at one round: tools are proposed and executed
// once, but the model never sees their results.
func (o Options) SingleRound() Options {
	o.MaxIterations = 1
	return o
}

// Result is the outcome of a run.
type Result struct {
	Content        string
	ToolExecutions []ToolExecution
	Usage          llm.Usage
	Iterations     int
}

// Loop executes bounded tool-calling conversations against a provider.
type Loop struct {
	provider llm.Provider
	logger   *slog.Logger
}

// New creates a loop executor on the given provider. The provider is
// expected to carry its own retry wrapper.
func New(provider llm.Provider, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		provider: provider,
		logger:   logger.With("component", "executor"),
	}
}

// Run drives the conversation until the model stops requesting tools or the
// iteration cap is reached. Hitting the cap is not an error: the best text
// accumulated so far is returned. Terminal provider errors propagate.
func (l *Loop) Run(ctx context.Context, prompt string, tools []llm.ToolDef, exec ToolExecutor, opts Options) (*Result, error) {
	maxIterations := opts.MaxIterations
	if maxIterations <= 0 {
		maxIterations = DefaultMaxIterations
	}

	messages := []llm.Message{llm.UserText(prompt)}
	result := &Result{}

	for i := 0; i < maxIterations; i++ {
		result.Iterations = i + 1

		resp, err := l.provider.CreateCompletion(ctx, llm.Request{
			Model:     opts.Model,
			MaxTokens: opts.MaxTokens,
			System:    opts.System,
			Tools:     tools,
			Messages:  messages,
		})
		if err != nil {
			return nil, err
		}
		result.Usage.Add(resp.Usage)

		if text := resp.Text(); text != "" {
			result.Content = text
		}

		toolUses := resp.ToolUses()
		if len(toolUses) == 0 || resp.StopReason != llm.StopToolUse {
			l.logger.Debug("loop complete",
				"iterations", result.Iterations,
				"tool_calls", len(result.ToolExecutions),
			)
			return result, nil
		}

		// Execute every requested invocation in request order. A failing
		// tool never aborts the loop; the error goes back to the model as
		// an error-tagged result so it can adapt.
		results := make([]llm.ContentBlock, 0, len(toolUses))
		for _, use := range toolUses {
			execution := l.executeTool(ctx, use, exec)
			result.ToolExecutions = append(result.ToolExecutions, execution)
			results = append(results, llm.ToolResultBlock{
				ToolUseID: use.ID,
				Content:   execution.Output,
				IsError:   execution.Status == StatusError,
			})
		}

		messages = append(messages,
			llm.Message{Role: llm.RoleAssistant, Content: resp.Content},
			llm.Message{Role: llm.RoleUser, Content: results},
		)
	}

	l.logger.Warn("iteration cap reached with pending tool calls",
		"max_iterations", maxIterations,
		"tool_calls", len(result.ToolExecutions),
	)
	return result, nil
}

// executeTool runs one invocation, converting a failure into an
// error-tagged execution record.
func (l *Loop) executeTool(ctx context.Context, use llm.ToolUseBlock, exec ToolExecutor) ToolExecution {
	start := time.Now()

	execution := ToolExecution{
		ID:    use.ID,
		Name:  use.Name,
		Input: use.Input,
	}

	if exec == nil {
		execution.Status = StatusError
		execution.Output = "no tool executor configured"
		return execution
	}

	out, err := exec(ctx, use.Name, use.Input)
	execution.DurationMs = time.Since(start).Milliseconds()

	if err != nil {
		execution.Status = StatusError
		execution.Output = err.Error()
		l.logger.Warn("tool failed",
			"tool", use.Name,
			"duration_ms", execution.DurationMs,
			"error", err.Error(),
		)
		return execution
	}

	execution.Status = StatusSuccess
	execution.Output = stringifyToolOutput(out)
	l.logger.Debug("tool complete",
		"tool", use.Name,
		"duration_ms", execution.DurationMs,
	)
	return execution
}

func stringifyToolOutput(out any) string {
	switch v := out.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	}
}
