package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DocumentsLoaded counts documents returned by loaders.
	DocumentsLoaded = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kbloader_documents_loaded_total",
			Help: "Total number of documents produced by loaders",
		},
		[]string{"loader"},
	)

	// LoadErrors counts failed Load calls by error code.
	LoadErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kbloader_load_errors_total",
			Help: "Total number of failed loads",
		},
		[]string{"loader", "code"},
	)

	// LoadDuration measures Load calls, successful or not.
	LoadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kbloader_load_duration_seconds",
			Help:    "Duration of loader Load calls in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5, 30},
		},
		[]string{"loader"},
	)

	// ChunksIndexed counts chunks written to the vector store by a sync.
	ChunksIndexed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kbloader_chunks_indexed_total",
			Help: "Total number of chunks written by knowledge base syncs",
		},
	)
)
