package jsonquery

import (
	"encoding/json"
	"math"
	"math/big"

	"github.com/bytedance/sonic"
)

var api = sonic.Config{
	UseNumber:      true,
	SortMapKeys:    true,
	CopyString:     true,
	ValidateString: true,
}.Froze()

// Decode parses one JSON value. Integral numbers become int, or *big.Int
// when they overflow it, all other numbers float64.
func Decode(data []byte) (any, error) {
	var v any
	if err := api.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return Normalize(v), nil
}

// Encode renders v as compact JSON with sorted object keys.
func Encode(v any) (string, error) {
	return api.MarshalToString(v)
}

// Normalize rewrites json.Number leaves in place into int or float64.
func Normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, item := range t {
			t[k] = Normalize(item)
		}
		return t
	case []any:
		for i, item := range t {
			t[i] = Normalize(item)
		}
		return t
	case json.Number:
		if i, err := t.Int64(); err == nil && i >= math.MinInt && i <= math.MaxInt {
			return int(i)
		}
		if n, ok := new(big.Int).SetString(t.String(), 10); ok {
			return n
		}
		if f, err := t.Float64(); err == nil {
			return f
		}
		return t.String()
	default:
		return v
	}
}
