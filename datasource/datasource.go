package datasource

import "context"

// Document is a unit of loaded content. Loaders never mutate a Document after
// returning it.
type Document struct {
	Content  string
	Metadata map[string]interface{}
	Source   string
}

// DataSource represents a source of documents
type DataSource interface {
	// Load reads the source and returns its documents in encounter order
	Load(ctx context.Context, opts ...Option) ([]Document, error)
}
