package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metrics for the application
type Registry struct {
	// Schema registry metrics
	SchemaLoadsTotal *prometheus.CounterVec

	// Validation metrics
	ValidationsTotal *prometheus.CounterVec

	// Analysis metrics
	AnalysisScansTotal   *prometheus.CounterVec
	AnalysisScanDuration *prometheus.HistogramVec

	// Store metrics
	StoreQueriesTotal  *prometheus.CounterVec
	StoreQueryDuration *prometheus.HistogramVec

	// Merge resolver metrics
	MergesTotal                *prometheus.CounterVec
	RelationshipTransfersTotal *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewRegistry creates a registry with all metrics registered against a fresh
// prometheus registry
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}

	r.SchemaLoadsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "kgraph_schema_loads_total",
			Help: "Total number of schema load attempts",
		},
		[]string{"schema", "status"},
	)

	r.ValidationsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "kgraph_validations_total",
			Help: "Total number of entity and relationship validations",
		},
		[]string{"kind", "outcome"},
	)

	r.AnalysisScansTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "kgraph_analysis_scans_total",
			Help: "Total number of consistency analysis scans",
		},
		[]string{"scan", "status"},
	)

	r.AnalysisScanDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kgraph_analysis_scan_duration_seconds",
			Help:    "Consistency analysis scan duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 10.0},
		},
		[]string{"scan"},
	)

	r.StoreQueriesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "kgraph_store_queries_total",
			Help: "Total number of queries issued to the graph store",
		},
		[]string{"mode", "status"},
	)

	r.StoreQueryDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "kgraph_store_query_duration_seconds",
			Help:    "Graph store query duration in seconds",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
		},
		[]string{"mode"},
	)

	r.MergesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "kgraph_merges_total",
			Help: "Total number of duplicate-node merge operations",
		},
		[]string{"status"},
	)

	r.RelationshipTransfersTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "kgraph_relationship_transfers_total",
			Help: "Relationship transfers attempted during merges",
		},
		[]string{"status"},
	)

	return r
}

// Gatherer exposes the underlying prometheus registry for scraping
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

var (
	defaultRegistry *Registry
	once            sync.Once
)

// Default returns the process-wide metrics registry
func Default() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}
