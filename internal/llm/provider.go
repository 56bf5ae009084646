package llm

import "context"

// Role identifies the author of a message
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ToolCall is a model request to invoke a declared tool
type ToolCall struct {
	ID        string
	Name      string
	Arguments string // JSON-encoded arguments
}

// Message is one entry in a conversation
type Message struct {
	Role      Role
	Content   string
	ToolCalls []ToolCall // set on assistant messages requesting tool use
	ToolRef   string     // set on tool messages: the ToolCall.ID being answered
	ToolName  string     // set on tool messages: the tool that produced Content
}

// Param describes one tool parameter
type Param struct {
	Name        string
	Type        string
	Description string
	Required    bool
}

// Tool declares a capability the model may invoke
type Tool struct {
	Name        string
	Description string
	Params      []Param
}

// Request contains a chat generation request
type Request struct {
	System   string
	Messages []Message
	Tools    []Tool
}

// Response contains the model's reply. ToolCalls on the message mean the
// caller is expected to execute them and continue the conversation.
type Response struct {
	Message    Message
	Model      string
	TokensUsed int
	LatencyMs  int64
}

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// AvailableModels returns list of supported models
	AvailableModels() []string

	// DefaultModel returns the default model
	DefaultModel() string

	// IsConfigured checks if provider has valid credentials
	IsConfigured() bool

	// Chat runs one generation over the conversation
	Chat(ctx context.Context, req Request, model string) (*Response, error)
}
