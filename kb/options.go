package kb

import (
	"github.com/Abraxas-365/kbloader/llm"
	"github.com/Abraxas-365/kbloader/log"
	"github.com/Abraxas-365/kbloader/vectorstore"
)

// Options contains configuration for the knowledge base
type Options struct {
	ScoreThreshold float32
	Filters        vectorstore.Filter
	TopK           int
	LLM            llm.LLM // optional, needed by Ask
	Logger         log.Logger
}

// Option is a function type to modify Options
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		TopK: 4,
	}
}

// WithScoreThreshold sets the minimum similarity score threshold
func WithScoreThreshold(threshold float32) Option {
	return func(o *Options) {
		o.ScoreThreshold = threshold
	}
}

// WithFilters sets default filters for queries
func WithFilters(filters vectorstore.Filter) Option {
	return func(o *Options) {
		o.Filters = filters
	}
}

// WithTopK sets the number of similar documents to retrieve
func WithTopK(k int) Option {
	return func(o *Options) {
		o.TopK = k
	}
}

// WithLLM sets the LLM for the knowledge base
func WithLLM(model llm.LLM) Option {
	return func(o *Options) {
		o.LLM = model
	}
}

// WithLogger overrides the logger taken from the context.
func WithLogger(logger log.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}
