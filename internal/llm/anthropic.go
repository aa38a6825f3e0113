package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicConfig configures the Anthropic-backed provider.
type AnthropicConfig struct {
	APIKey    string
	Model     string // Default model when a request doesn't name one
	MaxTokens int    // Default max tokens when a request doesn't set one
	BaseURL   string // Optional custom endpoint
}

// AnthropicProvider implements Provider on the Anthropic Messages API.
// Constructed once at process start and shared; the zero-credential case
// fails fast here instead of on the first call.
type AnthropicProvider struct {
	client    anthropic.Client
	model     string
	maxTokens int
}

// NewAnthropicProvider creates the provider, failing fast on missing credentials.
func NewAnthropicProvider(cfg AnthropicConfig) (*AnthropicProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic: API key not configured")
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("anthropic: model not configured")
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}

	return &AnthropicProvider{
		client:    anthropic.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: maxTokens,
	}, nil
}

// Name implements Provider.
func (p *AnthropicProvider) Name() string { return "anthropic" }

// CreateCompletion implements Provider.
func (p *AnthropicProvider) CreateCompletion(ctx context.Context, req Request) (*Response, error) {
	params, err := p.buildParams(req)
	if err != nil {
		return nil, err
	}

	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return nil, mapAnthropicError(err)
	}

	content := make([]ContentBlock, 0, len(msg.Content))
	for _, block := range msg.Content {
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			content = append(content, TextBlock{Text: v.Text})
		case anthropic.ToolUseBlock:
			input := map[string]any{}
			if raw, err := json.Marshal(v.Input); err == nil {
				_ = json.Unmarshal(raw, &input)
			}
			content = append(content, ToolUseBlock{ID: v.ID, Name: v.Name, Input: input})
		}
	}

	return &Response{
		Content:    content,
		StopReason: StopReason(msg.StopReason),
		Usage: Usage{
			InputTokens:  msg.Usage.InputTokens,
			OutputTokens: msg.Usage.OutputTokens,
		},
	}, nil
}

func (p *AnthropicProvider) buildParams(req Request) (anthropic.MessageNewParams, error) {
	model := req.Model
	if model == "" {
		model = p.model
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = p.maxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}

	for _, def := range req.Tools {
		params.Tools = append(params.Tools, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        def.Name,
				Description: anthropic.String(def.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: def.Properties,
					Required:   def.Required,
				},
			},
		})
	}

	for _, m := range req.Messages {
		blocks := make([]anthropic.ContentBlockParamUnion, 0, len(m.Content))
		for _, block := range m.Content {
			switch v := block.(type) {
			case TextBlock:
				blocks = append(blocks, anthropic.NewTextBlock(v.Text))
			case ToolUseBlock:
				blocks = append(blocks, anthropic.NewToolUseBlock(v.ID, v.Input, v.Name))
			case ToolResultBlock:
				blocks = append(blocks, anthropic.NewToolResultBlock(v.ToolUseID, v.Content, v.IsError))
			default:
				return anthropic.MessageNewParams{}, fmt.Errorf("anthropic: unsupported content block %T", block)
			}
		}
		switch m.Role {
		case RoleUser:
			params.Messages = append(params.Messages, anthropic.NewUserMessage(blocks...))
		case RoleAssistant:
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(blocks...))
		default:
			return anthropic.MessageNewParams{}, fmt.Errorf("anthropic: unsupported role %q", m.Role)
		}
	}

	return params, nil
}

// mapAnthropicError converts SDK errors into the typed APIError so the
// retry classifier can make status-based decisions.
func mapAnthropicError(err error) error {
	var apierr *anthropic.Error
	if errors.As(err, &apierr) {
		return &APIError{StatusCode: apierr.StatusCode, Message: apierr.Error()}
	}
	return err
}
