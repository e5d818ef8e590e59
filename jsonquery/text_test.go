package jsonquery

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeText(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  string
	}{
		{name: "object", value: map[string]any{"text": "value1"}, want: `{"text": "value1"}`},
		{name: "sorted keys", value: map[string]any{"text": "v", "lang": "en"}, want: `{"lang": "en", "text": "v"}`},
		{name: "array", value: []any{1, 2.5, true, nil, "s"}, want: `[1, 2.5, true, null, "s"]`},
		{name: "nested", value: map[string]any{"a": []any{map[string]any{}}}, want: `{"a": [{}]}`},
		{name: "whole float", value: []any{1.0, 1e20}, want: `[1.0, 1e+20]`},
		{name: "non finite", value: []any{math.NaN(), math.Inf(-1)}, want: `[NaN, -Infinity]`},
		{name: "escapes", value: "a\"b\\c\nd\x01", want: `"a\"b\\c\nd\u0001"`},
		{name: "non ascii", value: "caf\u00e9", want: `"caf\u00e9"`},
		{name: "astral", value: "\U0001F600", want: `"\ud83d\ude00"`},
		{name: "big int", value: []any{new(big.Int).Lsh(big.NewInt(1), 70)}, want: `[1180591620717411303424]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := EncodeText(tt.value)
			require.NoError(t, err)
			require.Equal(t, tt.want, out)
		})
	}
}

func TestEncodeTextUnsupported(t *testing.T) {
	_, err := EncodeText([]any{struct{}{}})
	require.Error(t, err)
}

func TestDecodeKeepsLargeIntegers(t *testing.T) {
	v, err := Decode([]byte(`[12345678901234567890, 1e3, 7]`))
	require.NoError(t, err)

	items := v.([]any)
	n, ok := items[0].(*big.Int)
	require.True(t, ok)
	require.Equal(t, "12345678901234567890", n.String())
	require.Equal(t, 1000.0, items[1])
	require.Equal(t, 7, items[2])
}
