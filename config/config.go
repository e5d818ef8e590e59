// Package config reads YAML configuration for the loader programs.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/Abraxas-365/kbloader/adapters/gjson"
	"github.com/Abraxas-365/kbloader/adapters/jq"
	"github.com/Abraxas-365/kbloader/adapters/jsonloader"
	"github.com/Abraxas-365/kbloader/adapters/web/websource"
	"github.com/Abraxas-365/kbloader/document"
	"github.com/Abraxas-365/kbloader/log"
	"gopkg.in/yaml.v3"
)

// DatabaseURLEnv overrides Store.DatabaseURL when set.
const DatabaseURLEnv = "DATABASE_URL"

type Config struct {
	LogLevel string         `yaml:"log_level"`
	Loader   LoaderConfig   `yaml:"loader"`
	Splitter SplitterConfig `yaml:"splitter"`
	Store    StoreConfig    `yaml:"store"`
}

// LoaderConfig describes one JSON source. Exactly one of Path and URL is set.
type LoaderConfig struct {
	Path        string        `yaml:"path"`
	URL         string        `yaml:"url"`
	Query       string        `yaml:"query"`
	ContentKey  string        `yaml:"content_key"`
	TextContent bool          `yaml:"text_content"`
	JSONLines   bool          `yaml:"json_lines"`
	Evaluator   string        `yaml:"evaluator"`
	Timeout     time.Duration `yaml:"timeout"`
}

type SplitterConfig struct {
	Type         string `yaml:"type"`
	ChunkSize    int    `yaml:"chunk_size"`
	ChunkOverlap int    `yaml:"chunk_overlap"`
	Separator    string `yaml:"separator"`
	Model        string `yaml:"model"`
}

type StoreConfig struct {
	DatabaseURL string `yaml:"database_url"`
	Table       string `yaml:"table"`
	Dimension   int    `yaml:"dimension"`
}

func Default() *Config {
	return &Config{
		LogLevel: "warn",
		Loader: LoaderConfig{
			Query:       ".",
			TextContent: true,
			Evaluator:   "jq",
			Timeout:     30 * time.Second,
		},
		Splitter: SplitterConfig{
			Type:         "character",
			ChunkSize:    1000,
			ChunkOverlap: 100,
			Separator:    " ",
			Model:        "text-embedding-3-small",
		},
		Store: StoreConfig{
			Table:     "documents",
			Dimension: 1536,
		},
	}
}

// Load reads the YAML file at path over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults. Unknown fields are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: %w", err)
	}

	if url := os.Getenv(DatabaseURLEnv); url != "" {
		cfg.Store.DatabaseURL = url
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	l := c.Loader
	switch {
	case l.Path == "" && l.URL == "":
		errs = append(errs, errors.New("loader: one of path or url is required"))
	case l.Path != "" && l.URL != "":
		errs = append(errs, errors.New("loader: path and url are mutually exclusive"))
	}
	if l.Query == "" {
		errs = append(errs, errors.New("loader: query is required"))
	}
	if l.Evaluator != "jq" && l.Evaluator != "gjson" {
		errs = append(errs, fmt.Errorf("loader: unknown evaluator %q", l.Evaluator))
	}

	if s := c.Splitter.Type; s != "character" && s != "tiktoken" {
		errs = append(errs, fmt.Errorf("splitter: unknown type %q", s))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Logger returns a structured logger at the configured level.
func (c *Config) Logger() log.Logger {
	return log.New(log.LevelFromString(c.LogLevel))
}

// Options returns the jsonloader options described by the config.
func (l LoaderConfig) Options() []jsonloader.Option {
	opts := []jsonloader.Option{
		jsonloader.WithContentKey(l.ContentKey),
		jsonloader.WithTextContent(l.TextContent),
		jsonloader.WithJSONLines(l.JSONLines),
	}
	if strings.EqualFold(l.Evaluator, "gjson") {
		opts = append(opts, jsonloader.WithEvaluator(gjson.New()))
	} else {
		opts = append(opts, jsonloader.WithEvaluator(jq.New()))
	}
	return opts
}

// Build creates the loader for a local file or a remote URL.
func (l LoaderConfig) Build(extra ...jsonloader.Option) (*jsonloader.Loader, error) {
	opts := append(l.Options(), extra...)
	if l.URL != "" {
		client := &http.Client{Timeout: l.Timeout}
		return jsonloader.New(websource.NewURLSource(l.URL, client), l.Query, opts...)
	}
	return jsonloader.NewFromFile(l.Path, l.Query, opts...)
}

func (s SplitterConfig) Build() (document.Splitter, error) {
	if s.Type == "tiktoken" {
		return document.NewTiktokenSplitter(s.ChunkSize, s.ChunkOverlap, s.Model)
	}
	return document.NewCharacterSplitter(s.ChunkSize, s.ChunkOverlap, s.Separator)
}
