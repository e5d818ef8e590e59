package openai

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/Abraxas-365/kbloader/llm"
	"github.com/sashabaranov/go-openai"
)

type OpenAILLM struct {
	client *openai.Client
	model  string
}

func NewOpenAILLM(apiKey string, model string) *OpenAILLM {
	return NewOpenAILLMWithConfig(openai.DefaultConfig(apiKey), model)
}

// NewOpenAILLMWithConfig accepts a full client config, e.g. for a proxy or
// an OpenAI-compatible server.
func NewOpenAILLMWithConfig(config openai.ClientConfig, model string) *OpenAILLM {
	if model == "" {
		model = openai.GPT4o
	}
	return &OpenAILLM{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

var defaultChatOptions = llm.ChatOptions{Temperature: 0.1}

func (o *OpenAILLM) Chat(ctx context.Context, messages []llm.Message, opts ...llm.Option) (*llm.Message, error) {
	req := o.request(messages, llm.Apply(defaultChatOptions, opts...))

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, handleOpenAIError("Chat", err)
	}

	if len(resp.Choices) == 0 {
		return nil, llm.NewError("Chat", llm.ErrAPIError, "no response choices returned", nil)
	}

	choice := resp.Choices[0].Message
	message := &llm.Message{
		Role:    choice.Role,
		Content: choice.Content,
		Name:    choice.Name,
	}
	message.SetUsage(&llm.Usage{
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	})

	if len(choice.ToolCalls) > 0 {
		message.FuncCall = &llm.FunctionCall{
			Name:      choice.ToolCalls[0].Function.Name,
			Arguments: choice.ToolCalls[0].Function.Arguments,
		}
	}

	return message, nil
}

func (o *OpenAILLM) ChatStream(ctx context.Context, messages []llm.Message, opts ...llm.Option) (<-chan llm.StreamResponse, error) {
	req := o.request(messages, llm.Apply(defaultChatOptions, opts...))
	req.Stream = true
	req.StreamOptions = &openai.StreamOptions{IncludeUsage: true}

	stream, err := o.client.CreateChatCompletionStream(ctx, req)
	if err != nil {
		return nil, handleOpenAIError("ChatStream", err)
	}

	responseChan := make(chan llm.StreamResponse)

	go func() {
		defer close(responseChan)
		defer stream.Close()

		usage := &llm.Usage{}
		done := func() {
			final := llm.Message{}
			final.SetUsage(usage)
			responseChan <- llm.StreamResponse{Message: final, Done: true}
		}

		for {
			response, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				done()
				return
			}
			if err != nil {
				responseChan <- llm.StreamResponse{
					Error: handleOpenAIError("ChatStream", err),
					Done:  true,
				}
				return
			}

			if response.Usage != nil {
				usage.PromptTokens = response.Usage.PromptTokens
				usage.CompletionTokens = response.Usage.CompletionTokens
				usage.TotalTokens = response.Usage.TotalTokens
			}
			if len(response.Choices) == 0 {
				continue
			}

			delta := response.Choices[0].Delta
			if delta.Content != "" || delta.Role != "" {
				responseChan <- llm.StreamResponse{
					Message: llm.Message{Role: delta.Role, Content: delta.Content},
				}
			}
			if len(delta.ToolCalls) > 0 {
				responseChan <- llm.StreamResponse{
					Message: llm.Message{
						Role: delta.Role,
						FuncCall: &llm.FunctionCall{
							Name:      delta.ToolCalls[0].Function.Name,
							Arguments: delta.ToolCalls[0].Function.Arguments,
						},
					},
				}
			}
		}
	}()

	return responseChan, nil
}

func (o *OpenAILLM) Complete(ctx context.Context, prompt string, opts ...llm.Option) (string, error) {
	resp, err := o.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}}, opts...)
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

func (o *OpenAILLM) request(messages []llm.Message, options *llm.ChatOptions) openai.ChatCompletionRequest {
	req := openai.ChatCompletionRequest{
		Model:            o.model,
		Messages:         convertMessages(messages),
		Temperature:      options.Temperature,
		TopP:             options.TopP,
		MaxTokens:        options.MaxTokens,
		Stop:             options.Stop,
		PresencePenalty:  options.PresencePenalty,
		FrequencyPenalty: options.FrequencyPenalty,
	}

	if len(options.Functions) > 0 {
		tools := make([]openai.Tool, len(options.Functions))
		for i, f := range options.Functions {
			tools[i] = openai.Tool{
				Type: openai.ToolTypeFunction,
				Function: &openai.FunctionDefinition{
					Name:        f.Name,
					Description: f.Description,
					Parameters:  f.Parameters,
				},
			}
		}
		req.Tools = tools

		if options.FunctionCall != "" {
			req.ToolChoice = openai.ToolChoice{
				Type:     openai.ToolTypeFunction,
				Function: openai.ToolFunction{Name: options.FunctionCall},
			}
		} else {
			req.ToolChoice = "auto"
		}
	}

	return req
}

// convertMessages maps messages to the OpenAI format. A message with images
// is sent as multi-part content: its text first, then one part per image.
func convertMessages(messages []llm.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		out[i] = openai.ChatCompletionMessage{
			Role: msg.Role,
			Name: msg.Name,
		}
		if len(msg.Images) == 0 {
			out[i].Content = msg.Content
			continue
		}

		parts := make([]openai.ChatMessagePart, 0, len(msg.Images)+1)
		if msg.Content != "" {
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeText,
				Text: msg.Content,
			})
		}
		for _, image := range msg.Images {
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    image.URL,
					Detail: openai.ImageURLDetail(image.Detail),
				},
			})
		}
		out[i].MultiContent = parts
	}
	return out
}

func handleOpenAIError(op string, err error) error {
	if err == nil {
		return nil
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.HTTPStatusCode {
		case http.StatusBadRequest:
			return llm.NewError(op, llm.ErrInvalidInput, "invalid request", err)
		case http.StatusUnauthorized:
			return llm.NewError(op, llm.ErrAPIError, "invalid API key", err)
		case http.StatusNotFound:
			return llm.NewError(op, llm.ErrModelNotAvailable, "model not available", err)
		case http.StatusTooManyRequests:
			return llm.NewError(op, llm.ErrRateLimitExceeded, "rate limit exceeded", err)
		}
		if apiErr.HTTPStatusCode >= 500 {
			return llm.NewError(op, llm.ErrAPIError, "OpenAI server error", err)
		}
	}

	return llm.NewError(op, llm.ErrInternal, "unexpected error", err)
}
