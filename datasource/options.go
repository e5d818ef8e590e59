package datasource

// LoadOptions represents options for loading documents
type LoadOptions struct {
	// Recursive indicates whether to recursively load from directories/prefixes
	Recursive bool
	// Filter decides from a document's metadata whether it is kept
	Filter func(metadata map[string]interface{}) bool
	// MaxItems caps the number of returned documents (0 for no limit)
	MaxItems int
}

// Option is a function type to modify LoadOptions
type Option func(*LoadOptions)

// NewLoadOptions applies opts over the zero LoadOptions.
func NewLoadOptions(opts ...Option) *LoadOptions {
	options := &LoadOptions{}
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// Full reports whether count documents already satisfy MaxItems.
func (o *LoadOptions) Full(count int) bool {
	return o.MaxItems > 0 && count >= o.MaxItems
}

// Keep reports whether a document with the given metadata passes Filter.
func (o *LoadOptions) Keep(metadata map[string]interface{}) bool {
	return o.Filter == nil || o.Filter(metadata)
}

// WithRecursive sets whether to load recursively
func WithRecursive(recursive bool) Option {
	return func(o *LoadOptions) {
		o.Recursive = recursive
	}
}

// WithFilter sets a filter function for documents
func WithFilter(filter func(metadata map[string]interface{}) bool) Option {
	return func(o *LoadOptions) {
		o.Filter = filter
	}
}

// WithMaxItems sets the maximum number of items to load
func WithMaxItems(max int) Option {
	return func(o *LoadOptions) {
		o.MaxItems = max
	}
}
