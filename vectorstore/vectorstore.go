// Package vectorstore stores embedded chunks and searches them by similarity.
package vectorstore

import (
	"context"
	"maps"

	"github.com/Abraxas-365/kbloader/document"
	"github.com/Abraxas-365/kbloader/embedding"
)

// Filter matches documents whose metadata contains every key/value pair.
type Filter map[string]interface{}

// Document is a stored chunk with its similarity score.
type Document struct {
	PageContent string                 `json:"page_content"`
	Metadata    map[string]interface{} `json:"metadata"`
	Score       float32                `json:"score"`
}

func (d Document) ToDocument() document.Document {
	return document.Document{
		PageContent: d.PageContent,
		Metadata:    d.Metadata,
	}
}

func FromDocument(doc document.Document) Document {
	return Document{
		PageContent: doc.PageContent,
		Metadata:    doc.Metadata,
	}
}

// Store interface defines the operations that any vector database adapter must implement
type Store interface {
	// AddDocuments stores docs with their vectors; vectors[i] belongs to docs[i].
	AddDocuments(ctx context.Context, docs []Document, vectors [][]float32) error

	// SimilaritySearch returns up to limit documents closest to vector.
	SimilaritySearch(ctx context.Context, vector []float32, limit int, filter Filter) ([]Document, error)

	// Delete removes every document matching filter.
	Delete(ctx context.Context, filter Filter) error
}

// Initializer is implemented by stores that need a schema before use.
type Initializer interface {
	InitDB(ctx context.Context, forceRecreate bool) error
}

// VectorStore combines a Store with the Embedder that produces its vectors.
type VectorStore struct {
	store    Store
	embedder embedding.Embedder
	opts     *Options
}

func New(store Store, embedder embedding.Embedder, opts ...Option) *VectorStore {
	options := &Options{}
	for _, opt := range opts {
		opt(options)
	}

	return &VectorStore{
		store:    store,
		embedder: embedder,
		opts:     options,
	}
}

// AddDocuments embeds docs and stores them.
func (vs *VectorStore) AddDocuments(ctx context.Context, docs []document.Document) error {
	if len(docs) == 0 {
		return nil
	}
	vsDocs, vectors, err := vs.embed(ctx, docs)
	if err != nil {
		return err
	}
	return vs.store.AddDocuments(ctx, vsDocs, vectors)
}

// ReplaceDocuments deletes everything matching filter and stores docs in its
// place. Embedding happens first so a failing embedder leaves the store as is.
func (vs *VectorStore) ReplaceDocuments(ctx context.Context, filter Filter, docs []document.Document) error {
	if len(filter) == 0 {
		return NewInvalidFilterError(storeName(vs.store), "replace requires a non-empty filter")
	}

	var vsDocs []Document
	var vectors [][]float32
	if len(docs) > 0 {
		var err error
		vsDocs, vectors, err = vs.embed(ctx, docs)
		if err != nil {
			return err
		}
	}

	if err := vs.store.Delete(ctx, filter); err != nil {
		return err
	}
	if len(vsDocs) == 0 {
		return nil
	}
	return vs.store.AddDocuments(ctx, vsDocs, vectors)
}

func (vs *VectorStore) embed(ctx context.Context, docs []document.Document) ([]Document, [][]float32, error) {
	texts := make([]string, len(docs))
	vsDocs := make([]Document, len(docs))
	for i, doc := range docs {
		texts[i] = doc.PageContent
		vsDocs[i] = FromDocument(doc)
	}

	vectors, err := vs.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, nil, NewEmbeddingFailedError(storeName(vs.store), err)
	}
	if len(vectors) != len(docs) {
		return nil, nil, NewEmbeddingCountError(storeName(vs.store), len(docs), len(vectors))
	}
	return vsDocs, vectors, nil
}

// SimilaritySearch embeds query and returns the closest documents scoring at
// least the configured threshold. filter is merged over the default filters.
func (vs *VectorStore) SimilaritySearch(ctx context.Context, query string, limit int, filter Filter) ([]Document, error) {
	vector, err := vs.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, NewEmbeddingFailedError(storeName(vs.store), err)
	}

	merged := make(Filter, len(vs.opts.Filters)+len(filter))
	maps.Copy(merged, vs.opts.Filters)
	maps.Copy(merged, filter)

	found, err := vs.store.SimilaritySearch(ctx, vector, limit, merged)
	if err != nil {
		return nil, err
	}

	docs := make([]Document, 0, len(found))
	for _, doc := range found {
		if vs.opts.ScoreThreshold <= 0 || doc.Score >= vs.opts.ScoreThreshold {
			docs = append(docs, doc)
		}
	}
	return docs, nil
}

func (vs *VectorStore) Delete(ctx context.Context, filter Filter) error {
	return vs.store.Delete(ctx, filter)
}

// Init prepares the underlying store when it implements Initializer.
func (vs *VectorStore) Init(ctx context.Context, forceRecreate bool) error {
	if initializer, ok := vs.store.(Initializer); ok {
		return initializer.InitDB(ctx, forceRecreate)
	}
	return nil
}

type namer interface {
	Name() string
}

func storeName(store Store) string {
	if n, ok := store.(namer); ok {
		return n.Name()
	}
	return "vectorstore"
}
