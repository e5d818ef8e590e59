package openai

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/Abraxas-365/kbloader/embedding"
	"github.com/Abraxas-365/kbloader/llm"
	"github.com/bytedance/sonic"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/require"
)

func testConfig(url string) openai.ClientConfig {
	config := openai.DefaultConfig("test-key")
	config.BaseURL = url
	return config
}

func TestConvertMessagesWithImages(t *testing.T) {
	out := convertMessages([]llm.Message{
		{Role: llm.RoleSystem, Content: "describe images"},
		{Role: llm.RoleUser, Content: "what is this?", Images: []llm.ImageURL{
			{URL: "data:image/png;base64,AAAA", Detail: "low"},
		}},
	})

	require.Len(t, out, 2)
	require.Equal(t, "describe images", out[0].Content)
	require.Nil(t, out[0].MultiContent)

	require.Empty(t, out[1].Content)
	require.Equal(t, []openai.ChatMessagePart{
		{Type: openai.ChatMessagePartTypeText, Text: "what is this?"},
		{Type: openai.ChatMessagePartTypeImageURL, ImageURL: &openai.ChatMessageImageURL{
			URL:    "data:image/png;base64,AAAA",
			Detail: openai.ImageURLDetailLow,
		}},
	}, out[1].MultiContent)
}

func TestChatSendsImageParts(t *testing.T) {
	bodies := make(chan map[string]any, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			http.NotFound(w, r)
			return
		}
		var got map[string]any
		body, _ := io.ReadAll(r.Body)
		_ = sonic.Unmarshal(body, &got)
		bodies <- got
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "a cat"}}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 2, "total_tokens": 12}
		}`)
	}))
	defer srv.Close()

	model := NewOpenAILLMWithConfig(testConfig(srv.URL), openai.GPT4oMini)
	msg, err := model.Chat(context.Background(), []llm.Message{{
		Role:    llm.RoleUser,
		Content: "what is this?",
		Images:  []llm.ImageURL{{URL: "https://example.com/cat.png"}},
	}}, llm.WithMaxTokens(50))
	require.NoError(t, err)
	require.Equal(t, "a cat", msg.Content)
	require.Equal(t, &llm.Usage{PromptTokens: 10, CompletionTokens: 2, TotalTokens: 12}, msg.GetUsage())

	got := <-bodies
	require.Equal(t, openai.GPT4oMini, got["model"])
	messages := got["messages"].([]any)
	parts := messages[0].(map[string]any)["content"].([]any)
	require.Len(t, parts, 2)
	require.Equal(t, "image_url", parts[1].(map[string]any)["type"])
	require.Equal(t, "https://example.com/cat.png", parts[1].(map[string]any)["image_url"].(map[string]any)["url"])
}

func TestChatErrorMapping(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = io.WriteString(w, `{"error": {"message": "slow down", "type": "rate_limit"}}`)
	}))
	defer srv.Close()

	model := NewOpenAILLMWithConfig(testConfig(srv.URL), "")
	_, err := model.Complete(context.Background(), "hi")

	var llmErr *llm.LLMError
	require.ErrorAs(t, err, &llmErr)
	require.Equal(t, llm.ErrRateLimitExceeded, llmErr.Code)
}

func TestEmbedDocumentsBatchesAndOrders(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		var req struct {
			Input []string `json:"input"`
		}
		body, _ := io.ReadAll(r.Body)
		_ = sonic.Unmarshal(body, &req)

		// answer in reverse order so the adapter has to use the index
		type item struct {
			Object    string    `json:"object"`
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}
		data := make([]item, 0, len(req.Input))
		for i := len(req.Input) - 1; i >= 0; i-- {
			data = append(data, item{Object: "embedding", Embedding: []float32{float32(len(req.Input[i])), 0}, Index: i})
		}
		out, _ := sonic.Marshal(map[string]any{"object": "list", "data": data})
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(out)
	}))
	defer srv.Close()

	embedder := NewOpenAIEmbedderWithConfig(testConfig(srv.URL),
		embedding.WithBatchSize(2), embedding.WithNormalization(false))

	vectors, err := embedder.EmbedDocuments(context.Background(), []string{"a", "bb", "ccc"})
	require.NoError(t, err)
	require.EqualValues(t, 2, requests.Load())
	require.Equal(t, [][]float32{{1, 0}, {2, 0}, {3, 0}}, vectors)

	_, err = embedder.EmbedQuery(context.Background(), "")
	var embErr *embedding.EmbeddingError
	require.ErrorAs(t, err, &embErr)
	require.Equal(t, embedding.ErrCodeEmptyInput, embErr.Code)
}
