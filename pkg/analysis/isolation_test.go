package analysis

import (
	"context"
	"strings"
	"testing"

	"github.com/dd0wney/cluso-kgraph/pkg/graph"
)

func isolatedRecord(ref string) graph.Record {
	return graph.Record{
		"ref":    ref,
		"labels": []any{"Service"},
		"props":  map[string]any{"name": ref},
	}
}

func TestFindIsolatedNodesTwoTiers(t *testing.T) {
	store := &stubExecutor{read: func(cypher string, params map[string]any) ([]graph.Record, error) {
		if strings.Contains(cypher, "NOT (n)--()") {
			return []graph.Record{isolatedRecord("lonely")}, nil
		}
		rec := isolatedRecord("chain-end")
		rec["connection_count"] = int64(1)
		rec["max_reachable_distance"] = int64(2)
		return []graph.Record{rec}, nil
	}}

	a := NewAnalyzer(store, nil)
	report, err := a.FindIsolatedNodes(context.Background(), IsolationOptions{})
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}

	if report.CompletelyIsolatedCount != 1 || report.LimitedConnectivityCount != 1 {
		t.Fatalf("unexpected tier counts: %+v", report)
	}
	if len(report.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(report.Nodes))
	}
	if report.Nodes[0].IsolationType != CompletelyIsolated {
		t.Errorf("completely isolated tier must come first, got %s", report.Nodes[0].IsolationType)
	}
	if report.Nodes[1].ConnectionCount != 1 || report.Nodes[1].MaxReachableDistance != 2 {
		t.Errorf("connectivity evidence lost: %+v", report.Nodes[1])
	}
}

func TestFindIsolatedNodesBudget(t *testing.T) {
	var limitedQueried bool
	store := &stubExecutor{read: func(cypher string, params map[string]any) ([]graph.Record, error) {
		if strings.Contains(cypher, "NOT (n)--()") {
			out := make([]graph.Record, 0, 3)
			for _, ref := range []string{"a", "b", "c"} {
				out = append(out, isolatedRecord(ref))
			}
			return out, nil
		}
		limitedQueried = true
		return nil, nil
	}}

	a := NewAnalyzer(store, nil)
	report, err := a.FindIsolatedNodes(context.Background(), IsolationOptions{Limit: 3})
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if limitedQueried {
		t.Error("limited-connectivity tier must not run once the limit is spent")
	}
	if len(report.Nodes) != 3 {
		t.Errorf("expected 3 nodes, got %d", len(report.Nodes))
	}
}

func TestFindIsolatedNodesSkipCompletelyIsolated(t *testing.T) {
	store := &stubExecutor{read: func(cypher string, params map[string]any) ([]graph.Record, error) {
		if strings.Contains(cypher, "NOT (n)--()") {
			t.Error("zero-degree tier must be skipped")
		}
		return nil, nil
	}}

	a := NewAnalyzer(store, nil)
	report, err := a.FindIsolatedNodes(context.Background(), IsolationOptions{SkipCompletelyIsolated: true})
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if report.CompletelyIsolatedCount != 0 {
		t.Errorf("unexpected completely isolated count: %d", report.CompletelyIsolatedCount)
	}
}

func TestFindIsolatedNodesDepthInQuery(t *testing.T) {
	var captured string
	store := &stubExecutor{read: func(cypher string, params map[string]any) ([]graph.Record, error) {
		if !strings.Contains(cypher, "NOT (n)--()") {
			captured = cypher
		}
		return nil, nil
	}}

	a := NewAnalyzer(store, nil)
	if _, err := a.FindIsolatedNodes(context.Background(), IsolationOptions{MaxDepth: 4}); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if !strings.Contains(captured, "[*1..4]") {
		t.Errorf("traversal horizon missing: %s", captured)
	}
	if !strings.Contains(captured, "reachable_nodes <= 8") {
		t.Errorf("limited threshold must be twice the depth: %s", captured)
	}
}

func TestFindIsolatedNodesRejectsBadEntityType(t *testing.T) {
	a := NewAnalyzer(&stubExecutor{}, nil)

	if _, err := a.FindIsolatedNodes(context.Background(), IsolationOptions{EntityType: "x) DETACH DELETE (n"}); err == nil {
		t.Fatal("expected malicious entity type to be rejected")
	}
}
