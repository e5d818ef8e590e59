package llm

import "strings"

// Usage represents token usage statistics
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ImageURL points a multimodal model at an image. URL is either a remote
// URL or a data URL.
type ImageURL struct {
	URL string `json:"url"`
	// Detail is the optional resolution hint ("auto", "low", "high")
	Detail string `json:"detail,omitempty"`
}

// Message represents a chat message
type Message struct {
	Role     string                 `json:"role"`
	Content  string                 `json:"content"`
	Images   []ImageURL             `json:"images,omitempty"`
	Name     string                 `json:"name,omitempty"`
	FuncCall *FunctionCall          `json:"function_call,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// GetUsage returns the usage statistics from the message metadata
func (m *Message) GetUsage() *Usage {
	if m.Metadata == nil {
		return nil
	}
	usage, ok := m.Metadata["usage"].(Usage)
	if !ok {
		return nil
	}
	return &usage
}

// SetUsage sets the usage statistics in the message metadata
func (m *Message) SetUsage(usage *Usage) {
	if usage == nil {
		return
	}
	if m.Metadata == nil {
		m.Metadata = make(map[string]interface{})
	}
	m.Metadata["usage"] = *usage
}

// MessagesToString renders the user and assistant turns of a conversation,
// one "role: content" line each. Images are noted but not inlined.
func MessagesToString(messages []Message) string {
	var sb strings.Builder
	for _, message := range messages {
		if message.FuncCall != nil || message.Role == RoleFunction || message.Role == RoleSystem {
			continue
		}
		sb.WriteString(message.Role)
		sb.WriteString(": ")
		sb.WriteString(message.Content)
		for range message.Images {
			sb.WriteString(" [image]")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
