package metrics

import "github.com/prometheus/client_golang/prometheus"

// Embedding and pipeline Prometheus metrics. Registered explicitly from
// main (no init()) so tests can construct services without double
// registration panics.
var (
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docbricks",
			Name:      "embedding_requests_total",
			Help:      "Total number of embedding requests",
		},
		[]string{"model", "status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "docbricks",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"model"},
	)

	EmbeddingTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docbricks",
			Name:      "embedding_tokens_total",
			Help:      "Total embedding tokens consumed",
		},
		[]string{"model", "type"},
	)

	IngestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docbricks",
			Name:      "ingest_total",
			Help:      "Total document ingestions",
		},
		[]string{"status"},
	)

	SearchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "docbricks",
			Name:      "search_total",
			Help:      "Total hybrid searches",
		},
		[]string{"status"},
	)

	SparseArtifactsLoaded = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "docbricks",
			Name:      "sparse_artifacts_loaded",
			Help:      "Artifacts seen by the last merged-encoder rebuild",
		},
		[]string{"result"}, // "merged" / "skipped"
	)
)

// RegisterPipelineMetrics registers all non-HTTP collectors.
func RegisterPipelineMetrics() {
	prometheus.MustRegister(
		EmbeddingRequestsTotal,
		EmbeddingRequestDuration,
		EmbeddingTokensTotal,
		IngestTotal,
		SearchTotal,
		SparseArtifactsLoaded,
	)
}
