package graph

import (
	"strings"
	"testing"
)

func TestSanitizeLabel(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Service", "Service"},
		{"Load Balancer", "LoadBalancer"},
		{"ci-pipeline", "ci_pipeline"},
		{"Data Store-v2", "DataStore_v2"},
	}
	for _, c := range cases {
		if got := SanitizeLabel(c.in); got != c.want {
			t.Errorf("SanitizeLabel(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSanitizeRelType(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"contains", "CONTAINS"},
		{"depends on", "DEPENDS_ON"},
		{"calls-into", "CALLS_INTO"},
	}
	for _, c := range cases {
		if got := SanitizeRelType(c.in); got != c.want {
			t.Errorf("SanitizeRelType(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestBuildFindNodesQuery(t *testing.T) {
	query, params, err := buildFindNodesQuery("Service", map[string]any{"name": "auth", "tier": 1}, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(query, "MATCH (n:Service)") {
		t.Errorf("label missing from query: %s", query)
	}
	if !strings.Contains(query, "n.name = $filter_name") || !strings.Contains(query, "n.tier = $filter_tier") {
		t.Errorf("filter conditions missing: %s", query)
	}
	if params["filter_name"] != "auth" || params["filter_tier"] != 1 || params["limit"] != 10 {
		t.Errorf("params wrong: %+v", params)
	}

	// filter values never appear in the query text
	if strings.Contains(query, "auth") {
		t.Errorf("filter value interpolated into query: %s", query)
	}
}

func TestBuildFindNodesQueryRejectsInjection(t *testing.T) {
	if _, _, err := buildFindNodesQuery("Service) DETACH DELETE (n", nil, 10); err == nil {
		t.Error("expected malicious label to be rejected")
	}
	if _, _, err := buildFindNodesQuery("", map[string]any{"name = '' OR 1=1 //": "x"}, 10); err == nil {
		t.Error("expected malicious property key to be rejected")
	}
}

func TestScrubProperties(t *testing.T) {
	props := map[string]any{"name": "a", EmbeddingProperty: []float64{1, 2}}
	scrubbed := ScrubProperties(props)
	if _, ok := scrubbed[EmbeddingProperty]; ok {
		t.Error("embedding not scrubbed")
	}
	if _, ok := props[EmbeddingProperty]; !ok {
		t.Error("scrub must not mutate the input")
	}
	if ScrubProperties(nil) != nil {
		t.Error("nil in, nil out")
	}
}

func TestAsInt64(t *testing.T) {
	if asInt64(int64(7)) != 7 || asInt64(7) != 7 || asInt64(float64(7)) != 7 || asInt64("x") != 0 {
		t.Error("asInt64 conversion broken")
	}
}
