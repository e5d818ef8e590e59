// Package pgvectore stores chunks in PostgreSQL with the pgvector extension.
package pgvectore

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Abraxas-365/kbloader/vectorstore"
	"github.com/bytedance/sonic"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

const storeName = "pgvector"

// Distance represents the distance calculation method
type Distance string

const (
	Cosine       Distance = "cosine"
	Euclidean    Distance = "euclidean"
	InnerProduct Distance = "inner_product"
)

func (d Distance) IsValid() bool {
	switch d {
	case Cosine, Euclidean, InnerProduct:
		return true
	default:
		return false
	}
}

// operator returns the pgvector distance operator and index operator class.
func (d Distance) operator() (string, string) {
	switch d {
	case Euclidean:
		return "<->", "vector_l2_ops"
	case InnerProduct:
		return "<#>", "vector_ip_ops"
	default:
		return "<=>", "vector_cosine_ops"
	}
}

// score converts the distance to a similarity where higher is closer.
func (d Distance) score() string {
	op, _ := d.operator()
	switch d {
	case InnerProduct:
		return fmt.Sprintf("(embedding %s $1::vector) * -1", op)
	case Euclidean:
		return fmt.Sprintf("1 / (1 + (embedding %s $1::vector))", op)
	default:
		return fmt.Sprintf("1 - (embedding %s $1::vector)", op)
	}
}

type Options struct {
	TableName string
	Dimension int
	Distance  Distance
}

type PGVectorStore struct {
	pool      *pgxpool.Pool
	table     string
	tableName string
	dimension int
	distance  Distance
}

func NewPGVectorStore(ctx context.Context, connString string, opts Options) (*PGVectorStore, error) {
	if opts.TableName == "" {
		opts.TableName = "documents"
	}
	if opts.Distance == "" {
		opts.Distance = Cosine
	}
	if !opts.Distance.IsValid() {
		return nil, vectorstore.NewInitFailedError(storeName, fmt.Errorf("invalid distance metric: %s", opts.Distance))
	}
	if opts.Dimension <= 0 {
		return nil, vectorstore.NewInitFailedError(storeName, fmt.Errorf("dimension must be positive, got %d", opts.Dimension))
	}

	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, vectorstore.NewInitFailedError(storeName, fmt.Errorf("parse connection string: %w", err))
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, vectorstore.NewInitFailedError(storeName, fmt.Errorf("create connection pool: %w", err))
	}

	return &PGVectorStore{
		pool:      pool,
		table:     pq.QuoteIdentifier(opts.TableName),
		tableName: opts.TableName,
		dimension: opts.Dimension,
		distance:  opts.Distance,
	}, nil
}

func (p *PGVectorStore) Name() string { return storeName }

// InitDB creates the vector extension, the table and its indexes.
func (p *PGVectorStore) InitDB(ctx context.Context, forceRecreate bool) error {
	_, opClass := p.distance.operator()

	statements := []string{"CREATE EXTENSION IF NOT EXISTS vector"}
	if forceRecreate {
		statements = append(statements, fmt.Sprintf("DROP TABLE IF EXISTS %s", p.table))
	}
	statements = append(statements,
		fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				id BIGSERIAL PRIMARY KEY,
				content TEXT NOT NULL,
				metadata JSONB NOT NULL DEFAULT '{}',
				embedding vector(%d),
				created_at TIMESTAMP WITH TIME ZONE DEFAULT CURRENT_TIMESTAMP
			)`, p.table, p.dimension),
		fmt.Sprintf(`
			CREATE INDEX IF NOT EXISTS %s
			ON %s
			USING ivfflat (embedding %s)
			WITH (lists = 100)`, pq.QuoteIdentifier(p.tableName+"_embedding_idx"), p.table, opClass),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s ON %s USING gin (metadata jsonb_path_ops)",
			pq.QuoteIdentifier(p.tableName+"_metadata_idx"), p.table),
	)

	for _, stmt := range statements {
		if _, err := p.pool.Exec(ctx, stmt); err != nil {
			return vectorstore.NewInitFailedError(storeName, err)
		}
	}
	return nil
}

func (p *PGVectorStore) AddDocuments(ctx context.Context, docs []vectorstore.Document, vectors [][]float32) error {
	if len(docs) != len(vectors) {
		return vectorstore.NewEmbeddingCountError(storeName, len(docs), len(vectors))
	}

	insertSQL := fmt.Sprintf(`
		INSERT INTO %s (content, metadata, embedding)
		VALUES ($1, $2::jsonb, $3::vector)
	`, p.table)

	batch := &pgx.Batch{}
	for i, doc := range docs {
		if len(vectors[i]) != p.dimension {
			return vectorstore.NewInvalidDimensionsError(storeName, p.dimension, len(vectors[i]))
		}
		metadata, err := encodeMetadata(doc.Metadata)
		if err != nil {
			return vectorstore.NewAddFailedError(storeName, err)
		}
		batch.Queue(insertSQL, doc.PageContent, metadata, formatVector(vectors[i]))
	}

	results := p.pool.SendBatch(ctx, batch)
	defer results.Close()

	for i := range docs {
		if _, err := results.Exec(); err != nil {
			return vectorstore.NewAddFailedError(storeName, fmt.Errorf("document %d: %w", i, err))
		}
	}
	return nil
}

func (p *PGVectorStore) SimilaritySearch(ctx context.Context, vector []float32, limit int, filter vectorstore.Filter) ([]vectorstore.Document, error) {
	if len(vector) != p.dimension {
		return nil, vectorstore.NewInvalidDimensionsError(storeName, p.dimension, len(vector))
	}

	where, filterArgs, err := whereClause(filter, 3)
	if err != nil {
		return nil, err
	}
	operator, _ := p.distance.operator()

	query := fmt.Sprintf(`
		SELECT content, metadata, %s AS similarity
		FROM %s
		%s
		ORDER BY embedding %s $1::vector
		LIMIT $2
	`, p.distance.score(), p.table, where, operator)

	args := append([]any{formatVector(vector), limit}, filterArgs...)
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, vectorstore.NewSearchFailedError(storeName, err)
	}
	defer rows.Close()

	var docs []vectorstore.Document
	for rows.Next() {
		var doc vectorstore.Document
		if err := rows.Scan(&doc.PageContent, &doc.Metadata, &doc.Score); err != nil {
			return nil, vectorstore.NewSearchFailedError(storeName, err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, vectorstore.NewSearchFailedError(storeName, err)
	}
	return docs, nil
}

// Delete removes documents matching filter. An empty filter is refused so a
// typo cannot truncate the table.
func (p *PGVectorStore) Delete(ctx context.Context, filter vectorstore.Filter) error {
	if len(filter) == 0 {
		return vectorstore.NewInvalidFilterError(storeName, "delete requires a non-empty filter")
	}
	where, args, err := whereClause(filter, 1)
	if err != nil {
		return err
	}

	if _, err := p.pool.Exec(ctx, fmt.Sprintf("DELETE FROM %s %s", p.table, where), args...); err != nil {
		return vectorstore.NewDeleteFailedError(storeName, err)
	}
	return nil
}

// DeleteSources removes every chunk whose source is in sources.
func (p *PGVectorStore) DeleteSources(ctx context.Context, sources []string) error {
	if len(sources) == 0 {
		return nil
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE metadata->>'source' = ANY($1::text[])", p.table)
	if _, err := p.pool.Exec(ctx, query, pq.StringArray(sources)); err != nil {
		return vectorstore.NewDeleteFailedError(storeName, err)
	}
	return nil
}

func (p *PGVectorStore) Close() {
	if p.pool != nil {
		p.pool.Close()
	}
}

// whereClause renders filter as a single JSONB containment test bound to
// placeholder $next.
func whereClause(filter vectorstore.Filter, next int) (string, []any, error) {
	if len(filter) == 0 {
		return "", nil, nil
	}
	encoded, err := sonic.ConfigStd.MarshalToString(map[string]interface{}(filter))
	if err != nil {
		return "", nil, vectorstore.NewInvalidFilterError(storeName, err.Error())
	}
	return fmt.Sprintf("WHERE metadata @> $%d::jsonb", next), []any{encoded}, nil
}

func encodeMetadata(metadata map[string]interface{}) (string, error) {
	if metadata == nil {
		return "{}", nil
	}
	return sonic.ConfigStd.MarshalToString(metadata)
}

// formatVector renders a vector in pgvector's text format.
func formatVector(vector []float32) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range vector {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(v), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}
