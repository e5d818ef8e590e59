package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Abraxas-365/kbloader/document"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Setenv(DatabaseURLEnv, "")

	cfg, err := Parse([]byte(`
log_level: debug
loader:
  path: data.jsonl
  query: .text
  json_lines: true
  evaluator: gjson
  timeout: 5s
splitter:
  chunk_size: 200
  chunk_overlap: 20
`))
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, LoaderConfig{
		Path:        "data.jsonl",
		Query:       ".text",
		TextContent: true,
		JSONLines:   true,
		Evaluator:   "gjson",
		Timeout:     5 * time.Second,
	}, cfg.Loader)
	require.Equal(t, "character", cfg.Splitter.Type)
	require.Equal(t, 200, cfg.Splitter.ChunkSize)
	require.Equal(t, " ", cfg.Splitter.Separator)
	require.Equal(t, "documents", cfg.Store.Table)
}

func TestParseRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		msg  string
	}{
		{name: "unknown field", yaml: "loader:\n  path: a.json\n  qeury: .\n", msg: "qeury"},
		{name: "no source", yaml: "loader:\n  query: .\n", msg: "one of path or url"},
		{name: "both sources", yaml: "loader:\n  path: a.json\n  url: http://x\n", msg: "mutually exclusive"},
		{name: "evaluator", yaml: "loader:\n  path: a.json\n  evaluator: jmespath\n", msg: "unknown evaluator"},
		{name: "splitter", yaml: "loader:\n  path: a.json\nsplitter:\n  type: words\n", msg: "unknown type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestDatabaseURLFromEnv(t *testing.T) {
	t.Setenv(DatabaseURLEnv, "postgres://env/db")

	cfg, err := Parse([]byte("loader:\n  path: a.json\nstore:\n  database_url: postgres://file/db\n"))
	require.NoError(t, err)
	require.Equal(t, "postgres://env/db", cfg.Store.DatabaseURL)
}

func TestLoadAndBuild(t *testing.T) {
	dir := t.TempDir()
	data := filepath.Join(dir, "data.json")
	require.NoError(t, os.WriteFile(data, []byte(`[{"text": "value1"}, {"text": "value2"}]`), 0o644))

	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("loader:\n  path: "+data+"\n  query: .[]\n  content_key: text\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	loader, err := cfg.Loader.Build()
	require.NoError(t, err)

	docs, err := loader.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	require.Equal(t, "value2", docs[1].Content)
	require.Equal(t, data, docs[1].Metadata["source"])

	splitter, err := cfg.Splitter.Build()
	require.NoError(t, err)
	require.IsType(t, &document.CharacterSplitter{}, splitter)

	require.NotNil(t, cfg.Logger())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
