// Package inmemory provides a process-local vector store for tests, examples
// and small corpora.
package inmemory

import (
	"context"
	"math"
	"reflect"
	"sort"
	"sync"

	"github.com/Abraxas-365/kbloader/vectorstore"
)

type entry struct {
	doc    vectorstore.Document
	vector []float32
}

// VectorStore keeps documents in memory and ranks them by cosine similarity.
type VectorStore struct {
	mu        sync.RWMutex
	entries   []entry
	dimension int
}

// NewVectorStore creates a store. A zero dimension is fixed by the first
// vector added.
func NewVectorStore(dimension int) *VectorStore {
	return &VectorStore{dimension: dimension}
}

func (s *VectorStore) Name() string { return "inmemory" }

func (s *VectorStore) AddDocuments(ctx context.Context, docs []vectorstore.Document, vectors [][]float32) error {
	if len(docs) != len(vectors) {
		return vectorstore.NewEmbeddingCountError(s.Name(), len(docs), len(vectors))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	dimension := s.dimension
	for _, v := range vectors {
		if dimension == 0 {
			dimension = len(v)
		}
		if len(v) != dimension {
			return vectorstore.NewInvalidDimensionsError(s.Name(), dimension, len(v))
		}
	}
	s.dimension = dimension

	for i, doc := range docs {
		doc.Metadata = copyMap(doc.Metadata)
		s.entries = append(s.entries, entry{doc: doc, vector: append([]float32(nil), vectors[i]...)})
	}
	return nil
}

func (s *VectorStore) SimilaritySearch(ctx context.Context, vector []float32, limit int, filter vectorstore.Filter) ([]vectorstore.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.dimension != 0 && len(vector) != s.dimension {
		return nil, vectorstore.NewInvalidDimensionsError(s.Name(), s.dimension, len(vector))
	}

	var results []vectorstore.Document
	for _, e := range s.entries {
		if !matches(e.doc.Metadata, filter) {
			continue
		}
		doc := e.doc
		doc.Metadata = copyMap(doc.Metadata)
		doc.Score = cosine(vector, e.vector)
		results = append(results, doc)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (s *VectorStore) Delete(ctx context.Context, filter vectorstore.Filter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0]
	for _, e := range s.entries {
		if !matches(e.doc.Metadata, filter) {
			kept = append(kept, e)
		}
	}
	clear(s.entries[len(kept):])
	s.entries = kept
	return nil
}

// Len returns the number of stored documents.
func (s *VectorStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Documents returns a snapshot of every stored document in insertion order.
func (s *VectorStore) Documents() []vectorstore.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	docs := make([]vectorstore.Document, len(s.entries))
	for i, e := range s.entries {
		docs[i] = e.doc
		docs[i].Metadata = copyMap(e.doc.Metadata)
	}
	return docs
}

func matches(metadata map[string]interface{}, filter vectorstore.Filter) bool {
	for k, want := range filter {
		got, ok := metadata[k]
		if !ok || !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

func cosine(a, b []float32) float32 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(na) * math.Sqrt(nb)))
}

func copyMap(m map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
