// Package jsonquery defines the capability loaders use to select values from
// decoded JSON, independent of the query language behind it.
package jsonquery

import "context"

// Evaluator applies a query expression to a decoded JSON value and returns
// every match in order. Values follow the shapes produced by Decode: nil,
// bool, int, float64, string, []any and map[string]any.
type Evaluator interface {
	Evaluate(ctx context.Context, expr string, value any) ([]any, error)
}

// Validator is implemented by evaluators that can reject an expression
// before any input is read.
type Validator interface {
	Validate(expr string) error
}

// EvaluatorFunc adapts a plain function to Evaluator.
type EvaluatorFunc func(ctx context.Context, expr string, value any) ([]any, error)

func (f EvaluatorFunc) Evaluate(ctx context.Context, expr string, value any) ([]any, error) {
	return f(ctx, expr, value)
}
