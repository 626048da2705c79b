package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics definitions
var (
	NodesRegistered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docgraph_nodes_registered_total",
		Help: "Total number of graph nodes constructed in the registry.",
	}, []string{"kind"})

	GraphsBuilt = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docgraph_graphs_built_total",
		Help: "Total number of graphs constructed, per variant.",
	}, []string{"variant"})

	GraphsTruncated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docgraph_graphs_truncated_total",
		Help: "Total number of graphs truncated by the hop or node budget.",
	})

	GraphsSuppressed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docgraph_graphs_suppressed_total",
		Help: "Total number of graphs suppressed at render time, per reason.",
	}, []string{"reason"})

	RenderDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "docgraph_render_seconds",
		Help:    "Time spent in one external renderer invocation.",
		Buckets: prometheus.DefBuckets,
	})

	ExportDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "docgraph_export_seconds",
		Help:    "Time spent exporting one entity's bundle of graph images.",
		Buckets: prometheus.DefBuckets,
	})

	ExportFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docgraph_export_failures_total",
		Help: "Total number of export jobs that failed.",
	})

	RenderCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docgraph_render_cache_hits_total",
		Help: "Total number of rendered payloads served from the cache.",
	})
)
