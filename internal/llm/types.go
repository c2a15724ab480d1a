package llm

import "context"

// Message roles as they appear on the wire.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Finish reasons reported by a completion.
const (
	// FinishNormal means the model produced final text.
	FinishNormal = "normal"
	// FinishToolCalls means the model is requesting tool execution.
	FinishToolCalls = "tool_calls"
)

// Message is one entry in a conversation. ToolCalls is set only on assistant
// messages; ToolCallID only on tool-role messages, where it must reference a
// ToolCall.ID from the immediately preceding assistant message.
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall is a structured request from the model to invoke a named tool.
// Arguments is the raw JSON-encoded payload exactly as the model produced it;
// decoding is the executor's job so a malformed payload can be answered
// instead of crashing the turn.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Tool declares a callable function to the model
type Tool struct {
	Type     string             `json:"type"`
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition defines a function that can be called
type FunctionDefinition struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Parameters  map[string]interface{} `json:"parameters"`
}

// Completion is the model's answer to one request: either final text
// (FinishNormal) or a batch of requested tool calls (FinishToolCalls).
type Completion struct {
	FinishReason string
	Message      Message
}

// Client is the model invocation capability the orchestrator consumes.
type Client interface {
	Complete(ctx context.Context, messages []Message, tools []Tool) (*Completion, error)
}
