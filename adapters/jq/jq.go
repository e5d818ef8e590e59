// Package jq evaluates jq expressions with gojq.
package jq

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/itchyny/gojq"
)

// Evaluator runs jq programs. Compiled programs are kept per expression, so
// one Evaluator can be shared by many loaders.
type Evaluator struct {
	mu    sync.RWMutex
	codes map[string]*gojq.Code
}

func New() *Evaluator {
	return &Evaluator{codes: make(map[string]*gojq.Code)}
}

// Validate compiles expr and reports syntax or compile errors.
func (e *Evaluator) Validate(expr string) error {
	_, err := e.compile(expr)
	return err
}

// Evaluate runs expr against value and collects every emitted result.
func (e *Evaluator) Evaluate(ctx context.Context, expr string, value any) ([]any, error) {
	code, err := e.compile(expr)
	if err != nil {
		return nil, err
	}

	var results []any
	iter := code.RunWithContext(ctx, value)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, ok := v.(error); ok {
			var haltErr *gojq.HaltError
			if errors.As(err, &haltErr) && haltErr.Value() == nil {
				break
			}
			return nil, fmt.Errorf("jq %q: %w", expr, err)
		}
		results = append(results, v)
	}
	return results, nil
}

func (e *Evaluator) compile(expr string) (*gojq.Code, error) {
	e.mu.RLock()
	code, ok := e.codes[expr]
	e.mu.RUnlock()
	if ok {
		return code, nil
	}

	query, err := gojq.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("parse jq %q: %w", expr, err)
	}
	code, err = gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("compile jq %q: %w", expr, err)
	}

	e.mu.Lock()
	e.codes[expr] = code
	e.mu.Unlock()
	return code, nil
}
