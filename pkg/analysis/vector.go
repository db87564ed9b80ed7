package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/dd0wney/cluso-kgraph/pkg/graph"
	"github.com/dd0wney/cluso-kgraph/pkg/logging"
	"github.com/dd0wney/cluso-kgraph/pkg/metrics"
)

// VectorIndexName is the store-side vector index over entity embeddings
const VectorIndexName = "entity_embedding_index"

// Embedder turns text into an embedding vector
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// SemanticOptions tunes a semantic search
type SemanticOptions struct {
	// EntityType restricts hits to one type label; empty means all nodes
	EntityType string
	// Threshold is the minimum vector similarity score, default 0.8
	Threshold float64
	// Limit caps the number of hits, default 10
	Limit int
}

func (o SemanticOptions) withDefaults() SemanticOptions {
	if o.Threshold == 0 {
		o.Threshold = 0.8
	}
	if o.Limit <= 0 {
		o.Limit = 10
	}
	return o
}

// SemanticHit is one vector-search result
type SemanticHit struct {
	Node  graph.Node
	Score float64
}

// SearchByText embeds the query text and runs a vector index lookup,
// returning hits ordered by similarity score descending
func (a *Analyzer) SearchByText(ctx context.Context, embedder Embedder, text string, opts SemanticOptions) ([]SemanticHit, error) {
	opts = opts.withDefaults()
	start := time.Now()

	vector, err := embedder.Embed(ctx, text)
	if err != nil {
		metrics.Default().AnalysisScansTotal.WithLabelValues("semantic", "error").Inc()
		return nil, fmt.Errorf("embed query text: %w", err)
	}

	typeFilter := ""
	if opts.EntityType != "" {
		label := graph.SanitizeLabel(opts.EntityType)
		if err := graph.CheckIdentifier(label); err != nil {
			metrics.Default().AnalysisScansTotal.WithLabelValues("semantic", "error").Inc()
			return nil, fmt.Errorf("entity type: %w", err)
		}
		typeFilter = fmt.Sprintf(" AND node:%s", label)
	}

	query := fmt.Sprintf(`
		CALL db.index.vector.queryNodes('%s', $limit, $query_vector)
		YIELD node, score
		WHERE score >= $threshold%s
		RETURN elementId(node) AS ref, labels(node) AS labels,
		       properties(node) AS props, score
		ORDER BY score DESC`, VectorIndexName, typeFilter)

	records, err := a.store.ReadQuery(ctx, query, map[string]any{
		"query_vector": vector,
		"limit":        opts.Limit,
		"threshold":    opts.Threshold,
	})
	if err != nil {
		metrics.Default().AnalysisScansTotal.WithLabelValues("semantic", "error").Inc()
		return nil, err
	}

	hits := make([]SemanticHit, 0, len(records))
	for _, rec := range records {
		hits = append(hits, SemanticHit{
			Node:  recordNode(rec),
			Score: floatField(rec, "score"),
		})
	}

	metrics.Default().AnalysisScansTotal.WithLabelValues("semantic", "ok").Inc()
	metrics.Default().AnalysisScanDuration.WithLabelValues("semantic").Observe(time.Since(start).Seconds())
	a.logger.Info("semantic search finished",
		logging.Count(len(hits)),
		logging.Latency(time.Since(start)))
	return hits, nil
}
