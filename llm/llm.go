package llm

import (
	"context"
)

// LLM represents a chat model
type LLM interface {
	// Chat generates a response based on the conversation history
	Chat(ctx context.Context, messages []Message, opts ...Option) (*Message, error)

	// ChatStream streams the response tokens
	ChatStream(ctx context.Context, messages []Message, opts ...Option) (<-chan StreamResponse, error)

	// Complete generates a completion for the given prompt
	Complete(ctx context.Context, prompt string, opts ...Option) (string, error)
}

// StreamResponse represents a streaming response
type StreamResponse struct {
	Message Message
	Error   error
	Done    bool
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleFunction  = "function"
)

// FunctionCall represents a function call in the chat
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Function represents a function that can be called by the LLM
type Function struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Parameters  any    `json:"parameters"` // JSON Schema object
}
