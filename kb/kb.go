// Package kb keeps a vector store in sync with a data source and answers
// questions from it.
package kb

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Abraxas-365/kbloader/datasource"
	"github.com/Abraxas-365/kbloader/document"
	"github.com/Abraxas-365/kbloader/embedding"
	"github.com/Abraxas-365/kbloader/llm"
	"github.com/Abraxas-365/kbloader/log"
	"github.com/Abraxas-365/kbloader/metrics"
	"github.com/Abraxas-365/kbloader/vectorstore"
	"github.com/google/uuid"
)

// SyncIDKey is the chunk metadata key holding the id of the sync that wrote it.
const SyncIDKey = "sync_id"

var ErrNoLLM = errors.New("kb: no LLM configured")

// KnowledgeBase represents the main knowledge base system
type KnowledgeBase struct {
	vStore   *vectorstore.VectorStore
	splitter document.Splitter
	opts     *Options
}

// SyncResult summarizes one Sync call.
type SyncResult struct {
	SyncID    string
	Documents int
	Sources   int
	Chunks    int
	Duration  time.Duration
}

func New(embedder embedding.Embedder, store vectorstore.Store, splitter document.Splitter, opts ...Option) (*KnowledgeBase, error) {
	if embedder == nil || store == nil || splitter == nil {
		return nil, errors.New("kb: embedder, store and splitter are required")
	}

	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}

	return &KnowledgeBase{
		vStore: vectorstore.New(
			store,
			embedder,
			vectorstore.WithScoreThreshold(options.ScoreThreshold),
			vectorstore.WithFilters(options.Filters),
		),
		splitter: splitter,
		opts:     options,
	}, nil
}

// GetOptions returns a copy of the current options
func (kb *KnowledgeBase) GetOptions() Options {
	return *kb.opts
}

func (kb *KnowledgeBase) HasLLM() bool {
	return kb.opts.LLM != nil
}

// InitStore prepares the store schema when the store needs one.
func (kb *KnowledgeBase) InitStore(ctx context.Context, forceRecreate bool) error {
	return kb.vStore.Init(ctx, forceRecreate)
}

func (kb *KnowledgeBase) logger(ctx context.Context) log.Logger {
	if kb.opts.Logger != nil {
		return kb.opts.Logger
	}
	return log.Ctx(ctx)
}

// Sync loads ds and replaces the stored chunks of every source it returned.
// Sources the data source no longer yields are left untouched. opts are
// passed to ds.Load.
func (kb *KnowledgeBase) Sync(ctx context.Context, ds datasource.DataSource, opts ...datasource.Option) (SyncResult, error) {
	start := time.Now()
	result := SyncResult{SyncID: uuid.NewString()}
	logger := kb.logger(ctx).With("sync_id", result.SyncID)

	docs, err := ds.Load(ctx, opts...)
	if err != nil {
		return result, fmt.Errorf("kb: load: %w", err)
	}
	result.Documents = len(docs)

	sources, bySource := groupBySource(docs)
	for _, source := range sources {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		chunks, err := kb.chunks(source, bySource[source], result.SyncID)
		if err != nil {
			return result, fmt.Errorf("kb: split %s: %w", source, err)
		}

		if err := kb.vStore.ReplaceDocuments(ctx, vectorstore.Filter{"source": source}, chunks); err != nil {
			return result, fmt.Errorf("kb: index %s: %w", source, err)
		}

		metrics.ChunksIndexed.Add(float64(len(chunks)))
		logger.Debug("source indexed", "source", source, "documents", len(bySource[source]), "chunks", len(chunks))
		result.Sources++
		result.Chunks += len(chunks)
	}

	result.Duration = time.Since(start)
	logger.Info("sync complete",
		"documents", result.Documents,
		"sources", result.Sources,
		"chunks", result.Chunks,
		"duration", result.Duration)
	return result, nil
}

// chunks splits the documents of one source. The "source" metadata is forced
// to the group key so the next sync can find and replace these chunks.
func (kb *KnowledgeBase) chunks(source string, docs []datasource.Document, syncID string) ([]document.Document, error) {
	chunks, err := document.SplitDocuments(kb.splitter, document.FromDataSource(docs))
	if err != nil {
		return nil, err
	}
	for _, chunk := range chunks {
		chunk.Metadata["source"] = source
		chunk.Metadata[SyncIDKey] = syncID
	}
	return chunks, nil
}

func groupBySource(docs []datasource.Document) ([]string, map[string][]datasource.Document) {
	var order []string
	groups := make(map[string][]datasource.Document)
	for _, doc := range docs {
		if _, seen := groups[doc.Source]; !seen {
			order = append(order, doc.Source)
		}
		groups[doc.Source] = append(groups[doc.Source], doc)
	}
	return order, groups
}

func (kb *KnowledgeBase) SimilaritySearch(ctx context.Context, query string, limit int, filter vectorstore.Filter) ([]vectorstore.Document, error) {
	if limit <= 0 {
		limit = kb.opts.TopK
	}
	return kb.vStore.SimilaritySearch(ctx, query, limit, filter)
}

const answerPrompt = `Answer the question using only the context below. If the context does not contain the answer, say you don't know.

Context:
%s`

// Ask retrieves the TopK chunks closest to question and has the LLM answer
// from them.
func (kb *KnowledgeBase) Ask(ctx context.Context, question string, opts ...llm.Option) (*llm.Message, []vectorstore.Document, error) {
	if kb.opts.LLM == nil {
		return nil, nil, ErrNoLLM
	}

	docs, err := kb.SimilaritySearch(ctx, question, kb.opts.TopK, nil)
	if err != nil {
		return nil, nil, err
	}

	var sb strings.Builder
	for i, doc := range docs {
		if i > 0 {
			sb.WriteString("\n---\n")
		}
		sb.WriteString(doc.PageContent)
	}

	answer, err := kb.opts.LLM.Chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: fmt.Sprintf(answerPrompt, sb.String())},
		{Role: llm.RoleUser, Content: question},
	}, opts...)
	if err != nil {
		return nil, docs, err
	}
	return answer, docs, nil
}
