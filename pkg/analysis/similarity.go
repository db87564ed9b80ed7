package analysis

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dd0wney/cluso-kgraph/pkg/graph"
	"github.com/dd0wney/cluso-kgraph/pkg/logging"
	"github.com/dd0wney/cluso-kgraph/pkg/metrics"
)

// SimilarityScore rates two property values. The ladder is deliberately
// coarse: exact match, case-insensitive match, then substring containment,
// which only counts when both values are long enough to make containment
// meaningful.
func SimilarityScore(a, b string) float64 {
	switch {
	case a == b:
		return 1.0
	case strings.EqualFold(a, b):
		return 0.95
	case utf8.RuneCountInString(a) > 3 && utf8.RuneCountInString(b) > 3 &&
		(strings.Contains(strings.ToLower(a), strings.ToLower(b)) ||
			strings.Contains(strings.ToLower(b), strings.ToLower(a))):
		return 0.8
	default:
		return 0.0
	}
}

// FindSimilarNodes scans for candidate duplicate pairs. Candidates carrying
// the comparison property are fetched in one query; pairing and scoring run
// locally so the ladder stays in one testable place. Pairs come back ordered
// by score descending, capped at the limit.
func (a *Analyzer) FindSimilarNodes(ctx context.Context, opts SimilarityOptions) (*SimilarityReport, error) {
	opts = opts.withDefaults()
	start := time.Now()

	query, params, err := buildCandidateQuery(opts)
	if err != nil {
		metrics.Default().AnalysisScansTotal.WithLabelValues("similarity", "error").Inc()
		return nil, err
	}

	records, err := a.store.ReadQuery(ctx, query, params)
	if err != nil {
		metrics.Default().AnalysisScansTotal.WithLabelValues("similarity", "error").Inc()
		return nil, err
	}

	type candidate struct {
		node  graph.Node
		value string
	}
	candidates := make([]candidate, 0, len(records))
	for _, rec := range records {
		value, ok := rec["value"].(string)
		if !ok {
			// non-string comparison values never pair
			continue
		}
		candidates = append(candidates, candidate{
			node: graph.Node{
				Ref:        graph.NodeRef(stringField(rec, "ref")),
				Labels:     stringSliceField(rec, "labels"),
				Properties: graph.ScrubProperties(mapField(rec, "props")),
			},
			value: value,
		})
	}

	report := &SimilarityReport{
		EntityType: opts.EntityType,
		Property:   opts.Property,
		Threshold:  opts.Threshold,
	}

	for i := 0; i < len(candidates); i++ {
		for j := i + 1; j < len(candidates); j++ {
			score := SimilarityScore(candidates[i].value, candidates[j].value)
			if score > 0 {
				report.TotalCandidates++
			}
			if score < opts.Threshold {
				continue
			}
			report.Pairs = append(report.Pairs, SimilarPair{
				Node1:  candidates[i].node,
				Node2:  candidates[j].node,
				Value1: candidates[i].value,
				Value2: candidates[j].value,
				Score:  score,
			})
		}
	}

	sort.SliceStable(report.Pairs, func(i, j int) bool {
		return report.Pairs[i].Score > report.Pairs[j].Score
	})
	if len(report.Pairs) > opts.Limit {
		report.Pairs = report.Pairs[:opts.Limit]
	}

	metrics.Default().AnalysisScansTotal.WithLabelValues("similarity", "ok").Inc()
	metrics.Default().AnalysisScanDuration.WithLabelValues("similarity").Observe(time.Since(start).Seconds())
	a.logger.Info("similarity scan finished",
		logging.String("property", opts.Property),
		logging.Count(len(report.Pairs)),
		logging.Latency(time.Since(start)))
	return report, nil
}

func buildCandidateQuery(opts SimilarityOptions) (string, map[string]any, error) {
	if err := graph.CheckIdentifier(opts.Property); err != nil {
		return "", nil, fmt.Errorf("comparison property: %w", err)
	}

	match := "MATCH (n)"
	if opts.EntityType != "" {
		label := graph.SanitizeLabel(opts.EntityType)
		if err := graph.CheckIdentifier(label); err != nil {
			return "", nil, fmt.Errorf("entity type: %w", err)
		}
		match = fmt.Sprintf("MATCH (n:%s)", label)
	}

	query := fmt.Sprintf(`%s
		WHERE n.%s IS NOT NULL
		RETURN elementId(n) AS ref, labels(n) AS labels,
		       toString(n.%s) AS value, properties(n) AS props`,
		match, opts.Property, opts.Property)
	return query, map[string]any{}, nil
}
