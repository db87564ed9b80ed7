package embedding

import (
	"sort"
	"strings"

	"github.com/dd0wney/cluso-kgraph/pkg/graph"
)

// ExtractText flattens an entity into the text that gets embedded: the
// entity type as a header, then each non-empty string property as a
// "key: value" line. Non-string and embedding properties are skipped.
// Keys are sorted so identical entities always embed identical text.
func ExtractText(entityType string, properties map[string]any) string {
	parts := []string{"Entity Type: " + entityType}

	embeddable := EmbeddableProperties(properties)
	keys := make([]string, 0, len(embeddable))
	for k := range embeddable {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		parts = append(parts, k+": "+embeddable[k])
	}
	return strings.Join(parts, "\n")
}

// EmbeddableProperties returns the non-empty string properties of an entity,
// excluding the stored embedding itself
func EmbeddableProperties(properties map[string]any) map[string]string {
	out := make(map[string]string)
	for k, v := range properties {
		if k == graph.EmbeddingProperty {
			continue
		}
		s, ok := v.(string)
		if !ok || strings.TrimSpace(s) == "" {
			continue
		}
		out[k] = s
	}
	return out
}
