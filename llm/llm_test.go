package llm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDataURLRoundTrip(t *testing.T) {
	url := DataURL("image/png", []byte{0x89, 'P', 'N', 'G'})
	require.Equal(t, "data:image/png;base64,iVBORw==", url)

	mediaType, data, ok := ParseDataURL(url)
	require.True(t, ok)
	require.Equal(t, "image/png", mediaType)
	require.Equal(t, "iVBORw==", data)
}

func TestParseDataURLRejects(t *testing.T) {
	for _, url := range []string{
		"https://example.com/cat.png",
		"data:image/png,plain",
		"data:;base64,AAAA",
		"data:image/png;base64",
	} {
		_, _, ok := ParseDataURL(url)
		require.False(t, ok, url)
	}
}

func TestUsage(t *testing.T) {
	var m Message
	require.Nil(t, m.GetUsage())

	m.SetUsage(&Usage{PromptTokens: 3, CompletionTokens: 4, TotalTokens: 7})
	require.Equal(t, &Usage{PromptTokens: 3, CompletionTokens: 4, TotalTokens: 7}, m.GetUsage())
}

func TestMessagesToString(t *testing.T) {
	out := MessagesToString([]Message{
		{Role: RoleSystem, Content: "be nice"},
		{Role: RoleUser, Content: "what is this?", Images: []ImageURL{{URL: "https://example.com/a.png"}}},
		{Role: RoleAssistant, Content: "a cat"},
	})
	require.Equal(t, "user: what is this? [image]\nassistant: a cat\n", out)
}
