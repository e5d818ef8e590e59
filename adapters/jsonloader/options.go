package jsonloader

import (
	"github.com/Abraxas-365/kbloader/jsonquery"
	"github.com/Abraxas-365/kbloader/log"
)

// MetadataFunc builds the final metadata of a document from the matched
// record and the base metadata (which always holds "source" and "seq_num").
// The base map is fresh for every record; the returned map is used as is.
type MetadataFunc func(record any, metadata map[string]interface{}) map[string]interface{}

// Options configures a Loader
type Options struct {
	// ContentKey selects the content field when a matched record is an object
	ContentKey string
	// TextContent requires content to be a string, number or boolean
	TextContent bool
	// JSONLines parses the source as one JSON value per line
	JSONLines bool
	// MetadataFunc replaces the base metadata of each document
	MetadataFunc MetadataFunc
	// Evaluator runs the query expression, jq when nil
	Evaluator jsonquery.Evaluator
	// Logger overrides the logger carried by the Load context
	Logger log.Logger
}

// Option is a function type to modify Options
type Option func(*Options)

func defaultOptions() *Options {
	return &Options{
		TextContent: true,
	}
}

// WithContentKey sets the field holding document content
func WithContentKey(key string) Option {
	return func(o *Options) {
		o.ContentKey = key
	}
}

// WithTextContent sets whether content must be scalar
func WithTextContent(textContent bool) Option {
	return func(o *Options) {
		o.TextContent = textContent
	}
}

// WithJSONLines sets JSON-Lines framing
func WithJSONLines(jsonLines bool) Option {
	return func(o *Options) {
		o.JSONLines = jsonLines
	}
}

// WithMetadataFunc sets the metadata builder
func WithMetadataFunc(fn MetadataFunc) Option {
	return func(o *Options) {
		o.MetadataFunc = fn
	}
}

// WithEvaluator sets the query engine
func WithEvaluator(evaluator jsonquery.Evaluator) Option {
	return func(o *Options) {
		o.Evaluator = evaluator
	}
}

// WithLogger sets the logger
func WithLogger(logger log.Logger) Option {
	return func(o *Options) {
		o.Logger = logger
	}
}
