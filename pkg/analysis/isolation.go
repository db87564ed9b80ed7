package analysis

import (
	"context"
	"fmt"
	"time"

	"github.com/dd0wney/cluso-kgraph/pkg/graph"
	"github.com/dd0wney/cluso-kgraph/pkg/logging"
	"github.com/dd0wney/cluso-kgraph/pkg/metrics"
)

// FindIsolatedNodes scans for nodes that are disconnected or barely
// connected. Completely isolated nodes are fetched first and consume the
// limit; the limited-connectivity tier only runs with whatever budget
// remains. A node counts as limited when it reaches at most MaxDepth*2
// distinct peers within MaxDepth hops.
func (a *Analyzer) FindIsolatedNodes(ctx context.Context, opts IsolationOptions) (*IsolationReport, error) {
	opts = opts.withDefaults()
	start := time.Now()

	match, err := matchClause(opts.EntityType)
	if err != nil {
		metrics.Default().AnalysisScansTotal.WithLabelValues("isolation", "error").Inc()
		return nil, err
	}

	report := &IsolationReport{
		EntityType: opts.EntityType,
		MaxDepth:   opts.MaxDepth,
	}

	if !opts.SkipCompletelyIsolated {
		query := fmt.Sprintf(`%s
			WHERE NOT (n)--()
			RETURN elementId(n) AS ref, labels(n) AS labels, properties(n) AS props
			LIMIT $limit`, match)

		records, err := a.store.ReadQuery(ctx, query, map[string]any{"limit": opts.Limit})
		if err != nil {
			metrics.Default().AnalysisScansTotal.WithLabelValues("isolation", "error").Inc()
			return nil, err
		}
		for _, rec := range records {
			report.Nodes = append(report.Nodes, IsolatedNode{
				Node:          recordNode(rec),
				IsolationType: CompletelyIsolated,
			})
		}
		report.CompletelyIsolatedCount = len(records)
	}

	remaining := opts.Limit - len(report.Nodes)
	if remaining > 0 && opts.MaxDepth > 0 {
		// MaxDepth is a validated positive int; the variable-length bound
		// cannot be parametrized in Cypher
		query := fmt.Sprintf(`%s
			WHERE (n)--()
			WITH n
			CALL {
			  WITH n
			  MATCH path = (n)-[*1..%d]->(target)
			  RETURN count(DISTINCT target) AS reachable_nodes,
			         max(length(path)) AS max_distance
			}
			WITH n, reachable_nodes, max_distance
			WHERE reachable_nodes <= %d
			RETURN elementId(n) AS ref, labels(n) AS labels, properties(n) AS props,
			       COUNT { (n)--() } AS connection_count,
			       max_distance AS max_reachable_distance
			ORDER BY connection_count ASC, reachable_nodes ASC
			LIMIT $limit`, match, opts.MaxDepth, opts.MaxDepth*2)

		records, err := a.store.ReadQuery(ctx, query, map[string]any{"limit": remaining})
		if err != nil {
			metrics.Default().AnalysisScansTotal.WithLabelValues("isolation", "error").Inc()
			return nil, err
		}
		for _, rec := range records {
			report.Nodes = append(report.Nodes, IsolatedNode{
				Node:                 recordNode(rec),
				ConnectionCount:      intField(rec, "connection_count"),
				MaxReachableDistance: intField(rec, "max_reachable_distance"),
				IsolationType:        LimitedConnectivity,
			})
		}
		report.LimitedConnectivityCount = len(records)
	}

	metrics.Default().AnalysisScansTotal.WithLabelValues("isolation", "ok").Inc()
	metrics.Default().AnalysisScanDuration.WithLabelValues("isolation").Observe(time.Since(start).Seconds())
	a.logger.Info("isolation scan finished",
		logging.Int("completely_isolated", report.CompletelyIsolatedCount),
		logging.Int("limited_connectivity", report.LimitedConnectivityCount),
		logging.Latency(time.Since(start)))
	return report, nil
}

func matchClause(entityType string) (string, error) {
	if entityType == "" {
		return "MATCH (n)", nil
	}
	label := graph.SanitizeLabel(entityType)
	if err := graph.CheckIdentifier(label); err != nil {
		return "", fmt.Errorf("entity type: %w", err)
	}
	return fmt.Sprintf("MATCH (n:%s)", label), nil
}

func recordNode(rec graph.Record) graph.Node {
	return graph.Node{
		Ref:        graph.NodeRef(stringField(rec, "ref")),
		Labels:     stringSliceField(rec, "labels"),
		Properties: graph.ScrubProperties(mapField(rec, "props")),
	}
}
