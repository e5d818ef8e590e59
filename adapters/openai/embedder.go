package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Abraxas-365/kbloader/embedding"
	"github.com/sashabaranov/go-openai"
)

type OpenAIEmbedder struct {
	client  *openai.Client
	options *embedding.EmbeddingOptions
}

// DefaultOptions returns the default options for OpenAI embeddings
func DefaultOptions() *embedding.EmbeddingOptions {
	return &embedding.EmbeddingOptions{
		Model:     string(openai.SmallEmbedding3),
		BatchSize: 100,
		Normalize: true,
	}
}

func NewOpenAIEmbedder(apiKey string, opts ...embedding.Option) *OpenAIEmbedder {
	return NewOpenAIEmbedderWithConfig(openai.DefaultConfig(apiKey), opts...)
}

func NewOpenAIEmbedderWithConfig(config openai.ClientConfig, opts ...embedding.Option) *OpenAIEmbedder {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	return &OpenAIEmbedder{
		client:  openai.NewClientWithConfig(config),
		options: options,
	}
}

// EmbedDocuments implements the Embedder interface
func (e *OpenAIEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, embedding.ErrEmptyInput("EmbedDocuments")
	}

	vectors := make([][]float32, 0, len(texts))
	for i, batch := range embedding.Batches(texts, e.options.BatchSize) {
		batchVectors, err := e.embed(ctx, "EmbedDocuments", batch)
		if err != nil {
			return nil, fmt.Errorf("batch %d: %w", i, err)
		}
		vectors = append(vectors, batchVectors...)
	}
	return vectors, nil
}

// EmbedQuery implements the Embedder interface
func (e *OpenAIEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, embedding.ErrEmptyInput("EmbedQuery")
	}
	vectors, err := e.embed(ctx, "EmbedQuery", []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (e *OpenAIEmbedder) embed(ctx context.Context, op string, texts []string) ([][]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      texts,
		Model:      openai.EmbeddingModel(e.options.Model),
		Dimensions: e.options.Dimensions,
	})
	if err != nil {
		return nil, handleEmbeddingError(op, err)
	}
	if len(resp.Data) != len(texts) {
		return nil, embedding.NewError(op, embedding.ErrCodeCountMismatch,
			fmt.Sprintf("expected %d embeddings, got %d", len(texts), len(resp.Data)), nil)
	}

	vectors := make([][]float32, len(texts))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(vectors) {
			return nil, embedding.NewError(op, embedding.ErrCodeAPIError,
				fmt.Sprintf("embedding index %d out of range", item.Index), nil)
		}
		if e.options.Normalize {
			embedding.Normalize(item.Embedding)
		}
		vectors[item.Index] = item.Embedding
	}
	return vectors, nil
}

func handleEmbeddingError(op string, err error) error {
	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) {
		return embedding.NewError(op, embedding.ErrCodeInternal, "unexpected error", err)
	}

	switch apiErr.HTTPStatusCode {
	case http.StatusBadRequest:
		return embedding.NewError(op, embedding.ErrCodeInvalidInput, apiErr.Message, err)
	case http.StatusNotFound:
		return embedding.NewError(op, embedding.ErrCodeModelNotAvailable, "embedding model not available", err)
	case http.StatusTooManyRequests:
		return embedding.NewError(op, embedding.ErrCodeRateLimitExceeded, "rate limit exceeded", err)
	default:
		return embedding.NewError(op, embedding.ErrCodeAPIError, fmt.Sprintf("OpenAI API error: %s", apiErr.Message), err)
	}
}
