package prompt

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Abraxas-365/kbloader/llm"
	"github.com/stretchr/testify/require"
)

// 1x1 transparent PNG
var pngPixel = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89,
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestNewImagePromptTemplateRejectsReserved(t *testing.T) {
	_, err := NewImagePromptTemplate(nil, "name", "url", "detail", "url")
	require.Error(t, err)
	require.Contains(t, err.Error(), "found: detail, url")

	tmpl, err := NewImagePromptTemplate(nil, "name")
	require.NoError(t, err)
	require.Equal(t, "image-prompt", tmpl.PromptType())
}

func TestFormatFromTemplate(t *testing.T) {
	tmpl, err := NewImagePromptTemplate(map[string]any{
		"url":    "https://img.example.com/{animal}.png",
		"detail": "high",
		"width":  512,
	}, "animal")
	require.NoError(t, err)

	image, err := tmpl.Format(map[string]any{"animal": "cat"})
	require.NoError(t, err)
	require.Equal(t, llm.ImageURL{URL: "https://img.example.com/cat.png", Detail: "high"}, image)
}

func TestFormatVarsTakePrecedence(t *testing.T) {
	tmpl, err := NewImagePromptTemplate(map[string]any{"url": "https://a/{x}", "detail": "low"}, "x")
	require.NoError(t, err)

	image, err := tmpl.Format(map[string]any{"x": "1", "url": "https://b/2", "detail": "auto"})
	require.NoError(t, err)
	require.Equal(t, llm.ImageURL{URL: "https://b/2", Detail: "auto"}, image)
}

func TestFormatPathBecomesDataURL(t *testing.T) {
	path := writeFile(t, "pixel.png", pngPixel)
	tmpl, err := NewImagePromptTemplate(nil)
	require.NoError(t, err)

	value, err := tmpl.FormatPrompt(map[string]any{"path": path})
	require.NoError(t, err)
	require.Equal(t, llm.DataURL("image/png", pngPixel), value.String())
	require.Empty(t, value.ImageURL.Detail)

	msgs := value.Messages()
	require.Len(t, msgs, 1)
	require.Equal(t, llm.RoleUser, msgs[0].Role)
	require.Equal(t, []llm.ImageURL{value.ImageURL}, msgs[0].Images)
}

func TestFormatErrors(t *testing.T) {
	tmpl, err := NewImagePromptTemplate(map[string]any{"url": "https://a/{missing}"})
	require.NoError(t, err)
	_, err = tmpl.Format(nil)
	require.Error(t, err)

	empty, err := NewImagePromptTemplate(nil)
	require.NoError(t, err)
	_, err = empty.Format(map[string]any{})
	require.Error(t, err)
}

func TestImageToDataURL(t *testing.T) {
	sniffed := writeFile(t, "pixel.bin", pngPixel)
	url, err := ImageToDataURL(sniffed)
	require.NoError(t, err)
	mediaType, _, ok := llm.ParseDataURL(url)
	require.True(t, ok)
	require.Equal(t, "image/png", mediaType)

	_, err = ImageToDataURL(writeFile(t, "notes.txt", []byte("hello")))
	require.Error(t, err)

	_, err = ImageToDataURL(filepath.Join(t.TempDir(), "missing.png"))
	require.Error(t, err)
}

func TestFormatString(t *testing.T) {
	tests := []struct {
		in      string
		vars    map[string]any
		want    string
		wantErr bool
	}{
		{in: "plain", want: "plain"},
		{in: "{a}-{b}", vars: map[string]any{"a": "x", "b": 2}, want: "x-2"},
		{in: "{{literal}} {a}", vars: map[string]any{"a": "v"}, want: "{literal} v"},
		{in: "{a", vars: map[string]any{"a": "v"}, wantErr: true},
		{in: "a}", wantErr: true},
		{in: "{}", wantErr: true},
		{in: "{a:>10}", vars: map[string]any{"a": "v"}, wantErr: true},
		{in: "{missing}", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := FormatString(tt.in, tt.vars)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
