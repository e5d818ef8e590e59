package document

import (
	"strings"
	"testing"

	"github.com/Abraxas-365/kbloader/datasource"
	"github.com/stretchr/testify/require"
)

func TestNewCharacterSplitterValidation(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		errMsg  string
	}{
		{name: "zero size", size: 0, overlap: 0, errMsg: "chunk size must be positive"},
		{name: "negative overlap", size: 10, overlap: -1, errMsg: "chunk overlap must be non-negative"},
		{name: "overlap too large", size: 10, overlap: 10, errMsg: "chunk overlap must be less than chunk size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCharacterSplitter(tt.size, tt.overlap, "")
			var splitErr *SplitterError
			require.ErrorAs(t, err, &splitErr)
			require.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestCharacterSplitter(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		size    int
		overlap int
		sep     string
		want    []string
	}{
		{name: "empty", text: "", size: 5, want: nil},
		{name: "fits", text: "a b c", size: 5, want: []string{"a b c"}},
		{name: "no overlap", text: "a b c d e f", size: 5, want: []string{"a b c", "d e f"}},
		{name: "overlap", text: "a b c d e f", size: 5, overlap: 2, want: []string{"a b c", "c d e", "e f"}},
		{name: "long piece", text: "tiny enormousword x", size: 6, want: []string{"tiny", "enormousword", "x"}},
		{name: "custom separator", text: "one\n\ntwo\n\nthree", size: 8, sep: "\n\n", want: []string{"one\n\ntwo", "three"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			splitter, err := NewCharacterSplitter(tt.size, tt.overlap, tt.sep)
			require.NoError(t, err)

			chunks, err := splitter.SplitText(tt.text)
			require.NoError(t, err)
			require.Equal(t, tt.want, chunks)
		})
	}
}

func TestSplitDocuments(t *testing.T) {
	splitter, err := NewCharacterSplitter(5, 0, " ")
	require.NoError(t, err)

	metadata := map[string]interface{}{"source": "a.json", "seq_num": 1}
	chunks, err := SplitDocuments(splitter, []Document{
		{PageContent: "a b c d e f", Metadata: metadata},
		{PageContent: "", Metadata: map[string]interface{}{"source": "b.json"}},
	})
	require.NoError(t, err)
	require.Equal(t, []Document{
		{PageContent: "a b c", Metadata: map[string]interface{}{"source": "a.json", "seq_num": 1, ChunkKey: 0}},
		{PageContent: "d e f", Metadata: map[string]interface{}{"source": "a.json", "seq_num": 1, ChunkKey: 1}},
	}, chunks)

	require.NotContains(t, metadata, ChunkKey)
}

func TestFromDataSource(t *testing.T) {
	loaded := []datasource.Document{
		{Content: "value1", Metadata: map[string]interface{}{"source": "/data/test.json", "seq_num": 1}, Source: "/data/test.json"},
		{Content: "value2", Metadata: map[string]interface{}{"id": 7}, Source: "apify:dataset"},
	}

	docs := FromDataSource(loaded)
	require.Equal(t, []Document{
		{PageContent: "value1", Metadata: map[string]interface{}{"source": "/data/test.json", "seq_num": 1}},
		{PageContent: "value2", Metadata: map[string]interface{}{"id": 7, "source": "apify:dataset"}},
	}, docs)

	docs[0].Metadata["extra"] = true
	require.NotContains(t, loaded[0].Metadata, "extra")
}

func TestTiktokenSplitter(t *testing.T) {
	if testing.Short() {
		t.Skip("tiktoken downloads its vocabulary on first use")
	}

	_, err := NewTiktokenSplitter(10, 10, "gpt-4o")
	require.Error(t, err)

	splitter, err := NewTiktokenSplitter(50, 10, "not-a-real-model")
	require.NoError(t, err)

	chunks, err := splitter.SplitText("")
	require.NoError(t, err)
	require.Empty(t, chunks)

	short := "This is a short test sentence."
	chunks, err = splitter.SplitText(short)
	require.NoError(t, err)
	require.Equal(t, []string{short}, chunks)
	require.Less(t, splitter.CountTokens(short), 50)

	long := strings.Repeat("This is a test sentence. ", 100)
	chunks, err = splitter.SplitText(long)
	require.NoError(t, err)
	require.Greater(t, len(chunks), 10)
	for _, chunk := range chunks {
		require.NotEmpty(t, chunk)
		require.Contains(t, long, chunk)
	}
}
