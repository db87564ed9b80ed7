package analysis

import "github.com/dd0wney/cluso-kgraph/pkg/graph"

// Record field accessors tolerant of the loose typing coming back from the
// bolt protocol.

func stringField(rec graph.Record, key string) string {
	s, _ := rec[key].(string)
	return s
}

func stringSliceField(rec graph.Record, key string) []string {
	switch t := rec[key].(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, el := range t {
			if s, ok := el.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func mapField(rec graph.Record, key string) map[string]any {
	m, _ := rec[key].(map[string]any)
	return m
}

func intField(rec graph.Record, key string) int64 {
	switch t := rec[key].(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	default:
		return 0
	}
}

func floatField(rec graph.Record, key string) float64 {
	switch t := rec[key].(type) {
	case float64:
		return t
	case int64:
		return float64(t)
	case int:
		return float64(t)
	default:
		return 0
	}
}
