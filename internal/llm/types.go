// Package llm defines the LLM service boundary: request/response types,
// the Provider interface, and the retry wrapper every call goes through.
package llm

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// StopReason reports why the model stopped generating.
type StopReason string

const (
	StopEndTurn      StopReason = "end_turn"
	StopToolUse      StopReason = "tool_use"
	StopMaxTokens    StopReason = "max_tokens"
	StopStopSequence StopReason = "stop_sequence"
)

// ContentBlock is one element of a model turn. It is a closed sum over
// text and tool-use variants; consumers switch on the concrete type.
type ContentBlock interface {
	isContentBlock()
}

// TextBlock is prose emitted by the model.
type TextBlock struct {
	Text string
}

func (TextBlock) isContentBlock() {}

// ToolUseBlock is a model request to invoke a named tool.
type ToolUseBlock struct {
	ID    string
	Name  string
	Input map[string]any
}

func (ToolUseBlock) isContentBlock() {}

// ToolResultBlock carries a tool's output back to the model.
type ToolResultBlock struct {
	ToolUseID string
	Content   string
	IsError   bool
}

func (ToolResultBlock) isContentBlock() {}

// Message is one turn of the conversation.
type Message struct {
	Role    Role
	Content []ContentBlock
}

// UserText builds a single-block user message.
func UserText(text string) Message {
	return Message{Role: RoleUser, Content: []ContentBlock{TextBlock{Text: text}}}
}

// ToolDef describes a tool offered to the model.
type ToolDef struct {
	Name        string
	Description string
	// Properties is the JSON-schema "properties" object for the tool input.
	Properties map[string]any
	Required   []string
}

// Usage accumulates token counts across calls.
type Usage struct {
	InputTokens  int64
	OutputTokens int64
}

// Add folds another usage sample into u.
func (u *Usage) Add(other Usage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

// Request is a single completion request.
type Request struct {
	Model     string
	MaxTokens int
	System    string
	Tools     []ToolDef
	Messages  []Message
}

// Response is the model's reply to a Request.
type Response struct {
	Content    []ContentBlock
	StopReason StopReason
	Usage      Usage
}

// Text concatenates all text blocks in the response.
func (r *Response) Text() string {
	var out string
	for _, block := range r.Content {
		if tb, ok := block.(TextBlock); ok {
			out += tb.Text
		}
	}
	return out
}

// ToolUses returns the tool-use blocks in response order.
func (r *Response) ToolUses() []ToolUseBlock {
	var uses []ToolUseBlock
	for _, block := range r.Content {
		if tu, ok := block.(ToolUseBlock); ok {
			uses = append(uses, tu)
		}
	}
	return uses
}
