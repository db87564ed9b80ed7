package analysis

import (
	"context"
	"strings"
	"testing"

	"github.com/dd0wney/cluso-kgraph/pkg/graph"
)

type stubEmbedder struct {
	vector []float32
	err    error
}

func (s *stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return s.vector, s.err
}

func TestSearchByText(t *testing.T) {
	var capturedParams map[string]any
	store := &stubExecutor{read: func(cypher string, params map[string]any) ([]graph.Record, error) {
		capturedParams = params
		if !strings.Contains(cypher, "db.index.vector.queryNodes") {
			t.Errorf("expected vector index query, got: %s", cypher)
		}
		return []graph.Record{
			{"ref": "n1", "labels": []any{"Service"}, "props": map[string]any{"name": "auth"}, "score": 0.91},
		}, nil
	}}

	a := NewAnalyzer(store, nil)
	hits, err := a.SearchByText(context.Background(), &stubEmbedder{vector: []float32{0.1, 0.2}}, "authentication", SemanticOptions{})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if len(hits) != 1 || hits[0].Score != 0.91 {
		t.Fatalf("unexpected hits: %+v", hits)
	}
	if hits[0].Node.Ref != "n1" {
		t.Errorf("node ref lost: %+v", hits[0].Node)
	}
	if capturedParams["threshold"] != 0.8 || capturedParams["limit"] != 10 {
		t.Errorf("defaults not applied: %+v", capturedParams)
	}
}

func TestSearchByTextEntityTypeFilter(t *testing.T) {
	var captured string
	store := &stubExecutor{read: func(cypher string, params map[string]any) ([]graph.Record, error) {
		captured = cypher
		return nil, nil
	}}

	a := NewAnalyzer(store, nil)
	if _, err := a.SearchByText(context.Background(), &stubEmbedder{vector: []float32{1}}, "x", SemanticOptions{EntityType: "Service"}); err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if !strings.Contains(captured, "AND node:Service") {
		t.Errorf("type filter missing: %s", captured)
	}
}
