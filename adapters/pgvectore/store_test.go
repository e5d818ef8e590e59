package pgvectore

import (
	"context"
	"testing"

	"github.com/Abraxas-365/kbloader/vectorstore"
	"github.com/stretchr/testify/require"
)

func TestDistance(t *testing.T) {
	require.True(t, Cosine.IsValid())
	require.False(t, Distance("manhattan").IsValid())

	op, class := Euclidean.operator()
	require.Equal(t, "<->", op)
	require.Equal(t, "vector_l2_ops", class)

	require.Equal(t, "1 - (embedding <=> $1::vector)", Cosine.score())
	require.Equal(t, "(embedding <#> $1::vector) * -1", InnerProduct.score())
}

func TestWhereClause(t *testing.T) {
	where, args, err := whereClause(nil, 1)
	require.NoError(t, err)
	require.Empty(t, where)
	require.Empty(t, args)

	where, args, err = whereClause(vectorstore.Filter{"source": "/data/a.json", "seq_num": 2}, 3)
	require.NoError(t, err)
	require.Equal(t, "WHERE metadata @> $3::jsonb", where)
	require.Equal(t, []any{`{"seq_num":2,"source":"/data/a.json"}`}, args)
}

func TestFormatVector(t *testing.T) {
	require.Equal(t, "[]", formatVector(nil))
	require.Equal(t, "[0.5,-1,0.25]", formatVector([]float32{0.5, -1, 0.25}))
}

func TestEncodeMetadata(t *testing.T) {
	out, err := encodeMetadata(nil)
	require.NoError(t, err)
	require.Equal(t, "{}", out)

	out, err = encodeMetadata(map[string]interface{}{"chunk": 1, "source": "s3://b/k.json"})
	require.NoError(t, err)
	require.Equal(t, `{"chunk":1,"source":"s3://b/k.json"}`, out)
}

func TestNewPGVectorStoreValidation(t *testing.T) {
	ctx := context.Background()

	_, err := NewPGVectorStore(ctx, "postgres://localhost/db", Options{Dimension: 3, Distance: "manhattan"})
	var vsErr *vectorstore.VectorStoreError
	require.ErrorAs(t, err, &vsErr)
	require.Equal(t, vectorstore.ErrCodeInitFailed, vsErr.Code)

	_, err = NewPGVectorStore(ctx, "postgres://localhost/db", Options{})
	require.ErrorAs(t, err, &vsErr)
}
