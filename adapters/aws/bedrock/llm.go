package bedrock

import (
	"context"
	"errors"
	"strings"

	"github.com/Abraxas-365/kbloader/llm"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go/ptr"
	"github.com/bytedance/sonic"
)

// LLMModelID represents available Bedrock models
type LLMModelID string

const (
	Claude3Sonnet  LLMModelID = "anthropic.claude-3-sonnet-20240229-v1:0"
	Claude3Haiku   LLMModelID = "anthropic.claude-3-haiku-20240307-v1:0"
	Claude35Sonnet LLMModelID = "anthropic.claude-3-5-sonnet-20240620-v1:0"
)

const anthropicVersion = "bedrock-2023-05-31"

// API is the subset of the Bedrock runtime client used by BedrockLLM.
type API interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
	InvokeModelWithResponseStream(ctx context.Context, params *bedrockruntime.InvokeModelWithResponseStreamInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelWithResponseStreamOutput, error)
}

type BedrockLLM struct {
	client API
	model  LLMModelID
}

type imageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type contentBlock struct {
	Type   string       `json:"type"`
	Text   string       `json:"text,omitempty"`
	Source *imageSource `json:"source,omitempty"`
}

type anthropicMessage struct {
	Role    string         `json:"role"`
	Content []contentBlock `json:"content"`
}

type anthropicRequest struct {
	AnthropicVersion string             `json:"anthropic_version"`
	System           string             `json:"system,omitempty"`
	Messages         []anthropicMessage `json:"messages"`
	MaxTokens        int                `json:"max_tokens"`
	Temperature      float32            `json:"temperature,omitempty"`
	TopP             float32            `json:"top_p,omitempty"`
	StopSequences    []string           `json:"stop_sequences,omitempty"`
}

type anthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type anthropicResponse struct {
	Role       string         `json:"role"`
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      anthropicUsage `json:"usage"`
}

// streamEvent covers the event payloads of the messages streaming API.
type streamEvent struct {
	Type    string            `json:"type"`
	Message anthropicResponse `json:"message"`
	Delta   struct {
		Type       string `json:"type"`
		Text       string `json:"text"`
		StopReason string `json:"stop_reason"`
	} `json:"delta"`
	Usage anthropicUsage `json:"usage"`
}

func NewBedrockLLM(client API, model LLMModelID) *BedrockLLM {
	if model == "" {
		model = Claude3Sonnet
	}
	return &BedrockLLM{
		client: client,
		model:  model,
	}
}

var defaultChatOptions = llm.ChatOptions{
	Temperature: 0.7,
	MaxTokens:   2000,
}

// buildRequest converts messages to the Anthropic messages format. System
// messages are joined into the system prompt. Images must be data URLs since
// Bedrock does not fetch remote images.
func buildRequest(op string, messages []llm.Message, options *llm.ChatOptions) ([]byte, error) {
	req := anthropicRequest{
		AnthropicVersion: anthropicVersion,
		MaxTokens:        options.MaxTokens,
		Temperature:      options.Temperature,
		TopP:             options.TopP,
		StopSequences:    options.Stop,
	}

	var system []string
	for _, msg := range messages {
		if msg.Role == llm.RoleSystem {
			system = append(system, msg.Content)
			continue
		}

		role := msg.Role
		if role == llm.RoleFunction {
			role = llm.RoleAssistant
		}

		blocks := make([]contentBlock, 0, len(msg.Images)+1)
		for _, image := range msg.Images {
			mediaType, data, ok := llm.ParseDataURL(image.URL)
			if !ok {
				return nil, llm.NewError(op, llm.ErrUnsupportedContent,
					"only base64 data URLs are supported for images", nil)
			}
			blocks = append(blocks, contentBlock{
				Type:   "image",
				Source: &imageSource{Type: "base64", MediaType: mediaType, Data: data},
			})
		}
		if msg.Content != "" || len(blocks) == 0 {
			blocks = append(blocks, contentBlock{Type: "text", Text: msg.Content})
		}

		req.Messages = append(req.Messages, anthropicMessage{Role: role, Content: blocks})
	}
	req.System = strings.Join(system, "\n")

	if len(req.Messages) == 0 {
		return nil, llm.NewError(op, llm.ErrInvalidInput, "at least one non-system message is required", nil)
	}

	body, err := sonic.Marshal(req)
	if err != nil {
		return nil, llm.NewError(op, llm.ErrInternal, "failed to marshal request", err)
	}
	return body, nil
}

func (b *BedrockLLM) Chat(ctx context.Context, messages []llm.Message, opts ...llm.Option) (*llm.Message, error) {
	body, err := buildRequest("Chat", messages, llm.Apply(defaultChatOptions, opts...))
	if err != nil {
		return nil, err
	}

	output, err := b.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     ptr.String(string(b.model)),
		Body:        body,
		ContentType: ptr.String("application/json"),
		Accept:      ptr.String("application/json"),
	})
	if err != nil {
		return nil, handleBedrockError("Chat", err)
	}

	var resp anthropicResponse
	if err := sonic.Unmarshal(output.Body, &resp); err != nil {
		return nil, llm.NewError("Chat", llm.ErrAPIError, "failed to unmarshal response", err)
	}

	var content strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			content.WriteString(block.Text)
		}
	}

	message := &llm.Message{
		Role:    llm.RoleAssistant,
		Content: content.String(),
	}
	message.SetUsage(&llm.Usage{
		PromptTokens:     resp.Usage.InputTokens,
		CompletionTokens: resp.Usage.OutputTokens,
		TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
	})
	return message, nil
}

func (b *BedrockLLM) ChatStream(ctx context.Context, messages []llm.Message, opts ...llm.Option) (<-chan llm.StreamResponse, error) {
	body, err := buildRequest("ChatStream", messages, llm.Apply(defaultChatOptions, opts...))
	if err != nil {
		return nil, err
	}

	output, err := b.client.InvokeModelWithResponseStream(ctx, &bedrockruntime.InvokeModelWithResponseStreamInput{
		ModelId:     ptr.String(string(b.model)),
		Body:        body,
		ContentType: ptr.String("application/json"),
		Accept:      ptr.String("application/json"),
	})
	if err != nil {
		return nil, handleBedrockError("ChatStream", err)
	}

	responseChan := make(chan llm.StreamResponse)

	go func() {
		defer close(responseChan)

		stream := output.GetStream()
		defer stream.Close()

		send := func(resp llm.StreamResponse) bool {
			select {
			case responseChan <- resp:
				return true
			case <-ctx.Done():
				return false
			}
		}

		usage := &llm.Usage{}
		for event := range stream.Events() {
			chunk, ok := event.(*types.ResponseStreamMemberChunk)
			if !ok {
				continue
			}

			var ev streamEvent
			if err := sonic.Unmarshal(chunk.Value.Bytes, &ev); err != nil {
				send(llm.StreamResponse{
					Error: llm.NewError("ChatStream", llm.ErrAPIError, "failed to unmarshal chunk", err),
					Done:  true,
				})
				return
			}

			switch ev.Type {
			case "message_start":
				usage.PromptTokens = ev.Message.Usage.InputTokens
			case "content_block_delta":
				if ev.Delta.Text == "" {
					continue
				}
				if !send(llm.StreamResponse{Message: llm.Message{Role: llm.RoleAssistant, Content: ev.Delta.Text}}) {
					return
				}
			case "message_delta":
				usage.CompletionTokens = ev.Usage.OutputTokens
			case "message_stop":
				usage.TotalTokens = usage.PromptTokens + usage.CompletionTokens
				final := llm.Message{Role: llm.RoleAssistant}
				final.SetUsage(usage)
				send(llm.StreamResponse{Message: final, Done: true})
				return
			}
		}

		if err := stream.Err(); err != nil {
			send(llm.StreamResponse{
				Error: handleBedrockError("ChatStream", err),
				Done:  true,
			})
			return
		}
		send(llm.StreamResponse{Done: true})
	}()

	return responseChan, nil
}

func (b *BedrockLLM) Complete(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	resp, err := b.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func handleBedrockError(op string, err error) error {
	var throttled *types.ThrottlingException
	var validation *types.ValidationException
	var notFound *types.ResourceNotFoundException

	switch {
	case errors.As(err, &throttled):
		return llm.NewError(op, llm.ErrRateLimitExceeded, "rate limit exceeded", err)
	case errors.As(err, &validation):
		return llm.NewError(op, llm.ErrInvalidInput, "invalid request", err)
	case errors.As(err, &notFound):
		return llm.NewError(op, llm.ErrModelNotAvailable, "model not available", err)
	default:
		return llm.NewError(op, llm.ErrAPIError, "Bedrock API error", err)
	}
}
