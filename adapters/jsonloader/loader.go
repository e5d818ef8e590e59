// Package jsonloader turns JSON and JSON-Lines sources into documents by
// running a query expression over each top-level value.
package jsonloader

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/Abraxas-365/kbloader/adapters/jq"
	"github.com/Abraxas-365/kbloader/datasource"
	"github.com/Abraxas-365/kbloader/jsonquery"
	"github.com/Abraxas-365/kbloader/log"
	"github.com/Abraxas-365/kbloader/metrics"
)

const loaderName = "json"

// Loader extracts documents from a JSON source. It holds no state between
// Load calls and is safe for concurrent use when its Evaluator is.
type Loader struct {
	source Source
	query  string
	opts   *Options
}

// New creates a Loader reading source and selecting records with query.
func New(source Source, query string, opts ...Option) (*Loader, error) {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	if source == nil {
		return nil, datasource.NewError(loaderName, "New", datasource.ErrCodeInvalidSource, "source is required", nil)
	}
	if query == "" {
		return nil, datasource.NewError(source.Name(), "New", datasource.ErrCodeInvalidQuery, "query expression is required", nil)
	}

	if options.Evaluator == nil {
		options.Evaluator = jq.New()
	}
	if v, ok := options.Evaluator.(jsonquery.Validator); ok {
		if err := v.Validate(query); err != nil {
			return nil, datasource.NewError(source.Name(), "New", datasource.ErrCodeInvalidQuery, "invalid query expression", err)
		}
	}

	return &Loader{
		source: source,
		query:  query,
		opts:   options,
	}, nil
}

// NewFromFile creates a Loader over a local file.
func NewFromFile(path, query string, opts ...Option) (*Loader, error) {
	return New(NewFileSource(path), query, opts...)
}

// Load reads the whole source and returns one document per matched record.
// Either every document is returned or an error is.
func (l *Loader) Load(ctx context.Context, opts ...datasource.Option) (docs []datasource.Document, err error) {
	start := time.Now()
	defer func() {
		metrics.ObserveLoad(loaderName, start, len(docs), err)
	}()

	logger := l.opts.Logger
	if logger == nil {
		logger = log.Ctx(ctx)
	}
	logger = logger.With("source", l.source.Name(), "json_lines", l.opts.JSONLines)

	rc, err := l.source.Open(ctx)
	if err != nil {
		return nil, l.accessError("failed to open source", err)
	}
	defer rc.Close()

	c := &collector{
		loader:  l,
		options: datasource.NewLoadOptions(opts...),
	}

	if l.opts.JSONLines {
		err = l.loadLines(ctx, rc, c)
	} else {
		err = l.loadDocument(ctx, rc, c)
	}
	if err != nil {
		logger.Debug("json load failed", "error", err)
		return nil, err
	}

	logger.Debug("json source loaded", "records", c.seq, "documents", len(c.docs))
	return c.docs, nil
}

func (l *Loader) loadDocument(ctx context.Context, r io.Reader, c *collector) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return l.accessError("failed to read source", err)
	}

	value, err := jsonquery.Decode(data)
	if err != nil {
		return datasource.NewError(l.source.Name(), "Load", datasource.ErrCodeParse, "malformed JSON", err)
	}

	_, err = c.collect(ctx, value)
	return err
}

func (l *Loader) loadLines(ctx context.Context, r io.Reader, c *collector) error {
	reader := bufio.NewReader(r)
	lineNo := 0

	for {
		line, readErr := reader.ReadBytes('\n')
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return l.accessError("failed to read source", readErr)
		}
		lineNo++

		if trimmed := bytes.TrimSpace(line); len(trimmed) > 0 {
			if err := ctx.Err(); err != nil {
				return err
			}

			value, err := jsonquery.Decode(trimmed)
			if err != nil {
				return datasource.NewError(l.source.Name(), "Load", datasource.ErrCodeParse,
					fmt.Sprintf("malformed JSON on line %d", lineNo), err)
			}

			done, err := c.collect(ctx, value)
			if err != nil || done {
				return err
			}
		}

		if readErr != nil {
			return nil
		}
	}
}

func (l *Loader) accessError(message string, err error) error {
	var dsErr *datasource.DataSourceError
	if errors.As(err, &dsErr) {
		return err
	}
	return datasource.NewError(l.source.Name(), "Load", datasource.ErrCodeFileAccess, message, err)
}

// collector numbers matched records across the whole load and applies the
// caller's LoadOptions.
type collector struct {
	loader  *Loader
	options *datasource.LoadOptions
	seq     int
	docs    []datasource.Document
}

// collect evaluates the query over one top-level value. It reports true once
// MaxItems is reached.
func (c *collector) collect(ctx context.Context, value any) (bool, error) {
	l := c.loader

	records, err := l.opts.Evaluator.Evaluate(ctx, l.query, value)
	if err != nil {
		return false, datasource.NewError(l.source.Name(), "Load", datasource.ErrCodeInvalidQuery, "query evaluation failed", err)
	}

	for _, record := range records {
		c.seq++
		doc, err := l.document(record, c.seq)
		if err != nil {
			return false, err
		}
		if !c.options.Keep(doc.Metadata) {
			continue
		}
		c.docs = append(c.docs, doc)
		if c.options.Full(len(c.docs)) {
			return true, nil
		}
	}
	return false, nil
}
