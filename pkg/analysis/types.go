// Package analysis runs consistency scans over the backing graph store:
// near-duplicate detection, isolation detection, structural statistics and
// semantic search. Scans are read-only and advisory; nothing here mutates
// the graph.
package analysis

import (
	"github.com/dd0wney/cluso-kgraph/pkg/graph"
	"github.com/dd0wney/cluso-kgraph/pkg/logging"
)

// Analyzer runs scans through the generic query surface of the store
type Analyzer struct {
	store  graph.QueryExecutor
	logger logging.Logger
}

// NewAnalyzer builds an analyzer over one store
func NewAnalyzer(store graph.QueryExecutor, logger logging.Logger) *Analyzer {
	return &Analyzer{
		store:  store,
		logger: logging.OrNop(logger).With(logging.Component("analyzer")),
	}
}

// SimilarityOptions tunes the near-duplicate scan
type SimilarityOptions struct {
	// EntityType restricts candidates to one type label; empty means all nodes
	EntityType string
	// Property is the property compared across the pair, default "name"
	Property string
	// Threshold is the minimum score a pair must reach, default 0.8
	Threshold float64
	// Limit caps the number of returned pairs, default 50
	Limit int
}

func (o SimilarityOptions) withDefaults() SimilarityOptions {
	if o.Property == "" {
		o.Property = "name"
	}
	if o.Threshold == 0 {
		o.Threshold = 0.8
	}
	if o.Limit <= 0 {
		o.Limit = 50
	}
	return o
}

// SimilarPair is one candidate duplicate: two distinct nodes whose compared
// property values score at or above the threshold
type SimilarPair struct {
	Node1  graph.Node
	Node2  graph.Node
	Value1 string
	Value2 string
	Score  float64
}

// SimilarityReport is the outcome of one near-duplicate scan
type SimilarityReport struct {
	EntityType      string
	Property        string
	Threshold       float64
	Pairs           []SimilarPair
	TotalCandidates int
}

// IsolationOptions tunes the isolation scan
type IsolationOptions struct {
	// EntityType restricts the scan to one type label; empty means all nodes
	EntityType string
	// MaxDepth is the traversal horizon for limited connectivity, default 3
	MaxDepth int
	// SkipCompletelyIsolated turns off the zero-degree tier; by default
	// completely isolated nodes are included
	SkipCompletelyIsolated bool
	// Limit caps the combined result across both tiers, default 100
	Limit int
}

func (o IsolationOptions) withDefaults() IsolationOptions {
	if o.MaxDepth == 0 {
		o.MaxDepth = 3
	}
	if o.Limit <= 0 {
		o.Limit = 100
	}
	return o
}

// Isolation tiers. Completely isolated nodes have no relationships at all;
// limited connectivity nodes are connected but reach few peers within the
// traversal horizon.
const (
	CompletelyIsolated  = "completely_isolated"
	LimitedConnectivity = "limited_connectivity"
)

// IsolatedNode is one scan hit with its connectivity evidence
type IsolatedNode struct {
	Node                 graph.Node
	ConnectionCount      int64
	MaxReachableDistance int64
	IsolationType        string
}

// IsolationReport is the outcome of one isolation scan
type IsolationReport struct {
	EntityType               string
	MaxDepth                 int
	Nodes                    []IsolatedNode
	CompletelyIsolatedCount  int
	LimitedConnectivityCount int
}

// LabelCount is one row of a distribution, most frequent first
type LabelCount struct {
	Label string
	Count int64
}

// StructureReport summarizes the shape of the whole graph
type StructureReport struct {
	NodeCount                int64
	RelationshipCount        int64
	EntityDistribution       []LabelCount
	RelationshipDistribution []LabelCount
	AverageDegree            float64
}
