// Package gjson evaluates GJSON path expressions.
package gjson

import (
	"context"
	"fmt"
	"strings"

	"github.com/Abraxas-365/kbloader/jsonquery"
	"github.com/tidwall/gjson"
)

// Evaluator selects values with GJSON paths. A path using the # operator
// yields one match per element of the resulting array; any other path yields
// at most one match. "" and "." select the whole value.
type Evaluator struct{}

func New() *Evaluator {
	return &Evaluator{}
}

func (e *Evaluator) Evaluate(ctx context.Context, expr string, value any) ([]any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := jsonquery.Encode(value)
	if err != nil {
		return nil, fmt.Errorf("gjson %q: encode input: %w", expr, err)
	}

	path := strings.TrimSpace(expr)
	if path == "" || path == "." {
		path = "@this"
	}

	res := gjson.Get(raw, path)
	if !res.Exists() {
		return nil, nil
	}

	if strings.Contains(path, "#") && res.IsArray() {
		var results []any
		for _, item := range res.Array() {
			v, err := decode(item)
			if err != nil {
				return nil, fmt.Errorf("gjson %q: %w", expr, err)
			}
			results = append(results, v)
		}
		return results, nil
	}

	v, err := decode(res)
	if err != nil {
		return nil, fmt.Errorf("gjson %q: %w", expr, err)
	}
	return []any{v}, nil
}

func decode(res gjson.Result) (any, error) {
	return jsonquery.Decode([]byte(res.Raw))
}
