package jsonquery

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDecodeNormalizesNumbers(t *testing.T) {
	v, err := Decode([]byte(`{"int": 99, "float": 99.5, "nested": [1, 2.25, {"n": -3}], "s": "x", "b": true, "z": null}`))
	require.NoError(t, err)

	m := v.(map[string]any)
	require.Equal(t, 99, m["int"])
	require.Equal(t, 99.5, m["float"])
	require.Equal(t, []any{1, 2.25, map[string]any{"n": -3}}, m["nested"])
	require.Equal(t, "x", m["s"])
	require.Equal(t, true, m["b"])
	require.Nil(t, m["z"])
}

func TestDecodeMalformed(t *testing.T) {
	_, err := Decode([]byte(`{"text": `))
	require.Error(t, err)
}

func TestEncodeSortsKeys(t *testing.T) {
	out, err := Encode(map[string]any{"b": 1, "a": "x"})
	require.NoError(t, err)
	require.Equal(t, `{"a":"x","b":1}`, out)
}

func TestEvaluatorFunc(t *testing.T) {
	var e Evaluator = EvaluatorFunc(func(ctx context.Context, expr string, value any) ([]any, error) {
		return []any{expr, value}, nil
	})
	out, err := e.Evaluate(context.Background(), ".", 1)
	require.NoError(t, err)
	require.Equal(t, []any{".", 1}, out)
}
