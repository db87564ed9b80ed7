package graph

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// identPattern is the shape a label, relationship type or property name must
// have before it is interpolated into Cypher. Everything else stays
// parametrized.
var identPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// SanitizeLabel normalizes an entity type for use as a node label, the way
// the store writes them: spaces removed, hyphens replaced with underscores
func SanitizeLabel(entityType string) string {
	return strings.ReplaceAll(strings.ReplaceAll(entityType, " ", ""), "-", "_")
}

// SanitizeRelType normalizes a relationship label: upper-cased, spaces and
// hyphens replaced with underscores
func SanitizeRelType(label string) string {
	s := strings.ToUpper(label)
	s = strings.ReplaceAll(s, " ", "_")
	return strings.ReplaceAll(s, "-", "_")
}

// CheckIdentifier rejects strings unsafe to interpolate into Cypher
func CheckIdentifier(s string) error {
	if !identPattern.MatchString(s) {
		return fmt.Errorf("identifier %q contains invalid characters", s)
	}
	return nil
}

// buildFindNodesQuery assembles the node lookup query. Filter values stay
// parametrized; only validated identifiers are interpolated.
func buildFindNodesQuery(typeFilter string, filters map[string]any, limit int) (string, map[string]any, error) {
	match := "MATCH (n)"
	if typeFilter != "" {
		label := SanitizeLabel(typeFilter)
		if err := CheckIdentifier(label); err != nil {
			return "", nil, err
		}
		match = fmt.Sprintf("MATCH (n:%s)", label)
	}

	params := map[string]any{"limit": limit}

	keys := make([]string, 0, len(filters))
	for k := range filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	conditions := make([]string, 0, len(keys))
	for _, key := range keys {
		if err := CheckIdentifier(key); err != nil {
			return "", nil, err
		}
		paramName := "filter_" + key
		conditions = append(conditions, fmt.Sprintf("n.%s = $%s", key, paramName))
		params[paramName] = filters[key]
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	query := fmt.Sprintf(`%s%s
		RETURN elementId(n) AS ref, labels(n) AS labels, properties(n) AS props
		LIMIT $limit`, match, where)
	return query, params, nil
}

// FindNodes returns nodes matching the type label and property filters
func (s *Neo4jStore) FindNodes(ctx context.Context, typeFilter string, filters map[string]any, limit int) ([]Node, error) {
	if limit <= 0 {
		limit = 100
	}
	query, params, err := buildFindNodesQuery(typeFilter, filters, limit)
	if err != nil {
		return nil, err
	}

	records, err := s.ReadQuery(ctx, query, params)
	if err != nil {
		return nil, err
	}

	nodes := make([]Node, 0, len(records))
	for _, rec := range records {
		nodes = append(nodes, recordToNode(rec))
	}
	return nodes, nil
}

// FetchProperties returns the property set of one node, scrubbed of the
// embedding vector
func (s *Neo4jStore) FetchProperties(ctx context.Context, ref NodeRef) (map[string]any, error) {
	records, err := s.ReadQuery(ctx, `
		MATCH (n) WHERE elementId(n) = $ref
		RETURN properties(n) AS props`,
		map[string]any{"ref": string(ref)})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, NodeNotFoundError("FetchProperties", ref)
	}
	return ScrubProperties(asPropertyMap(records[0]["props"])), nil
}

// FetchTypeLabels returns the type labels of one node in declaration order
func (s *Neo4jStore) FetchTypeLabels(ctx context.Context, ref NodeRef) ([]string, error) {
	records, err := s.ReadQuery(ctx, `
		MATCH (n) WHERE elementId(n) = $ref
		RETURN labels(n) AS labels`,
		map[string]any{"ref": string(ref)})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, NodeNotFoundError("FetchTypeLabels", ref)
	}
	return asStringSlice(records[0]["labels"]), nil
}

// IncidentRelationships returns every relationship touching the node,
// direction preserved
func (s *Neo4jStore) IncidentRelationships(ctx context.Context, ref NodeRef) ([]Relationship, error) {
	records, err := s.ReadQuery(ctx, `
		MATCH (n)-[r]->(m) WHERE elementId(n) = $ref
		RETURN elementId(r) AS ref, elementId(n) AS from_ref, elementId(m) AS to_ref,
		       type(r) AS rel_type, properties(r) AS props
		UNION
		MATCH (m)-[r]->(n) WHERE elementId(n) = $ref
		RETURN elementId(r) AS ref, elementId(m) AS from_ref, elementId(n) AS to_ref,
		       type(r) AS rel_type, properties(r) AS props`,
		map[string]any{"ref": string(ref)})
	if err != nil {
		return nil, err
	}

	rels := make([]Relationship, 0, len(records))
	for _, rec := range records {
		rels = append(rels, Relationship{
			Ref:        RelationshipRef(asString(rec["ref"])),
			From:       NodeRef(asString(rec["from_ref"])),
			To:         NodeRef(asString(rec["to_ref"])),
			Type:       asString(rec["rel_type"]),
			Properties: asPropertyMap(rec["props"]),
		})
	}
	return rels, nil
}

// CreateRelationship creates a typed relationship between two existing nodes
func (s *Neo4jStore) CreateRelationship(ctx context.Context, from, to NodeRef, label string, properties map[string]any) (RelationshipRef, error) {
	relType := SanitizeRelType(label)
	if err := CheckIdentifier(relType); err != nil {
		return "", err
	}

	query := fmt.Sprintf(`
		MATCH (a), (b)
		WHERE elementId(a) = $from_ref AND elementId(b) = $to_ref
		CREATE (a)-[r:%s]->(b)
		SET r += $props
		RETURN elementId(r) AS ref`, relType)

	records, err := s.WriteQuery(ctx, query, map[string]any{
		"from_ref": string(from),
		"to_ref":   string(to),
		"props":    nonNilProps(properties),
	})
	if err != nil {
		return "", err
	}
	if len(records) == 0 {
		return "", &StoreError{Op: "CreateRelationship", Entity: "node", Ref: string(from), Cause: ErrNodeNotFound}
	}
	return RelationshipRef(asString(records[0]["ref"])), nil
}

// SetProperties merges the given properties onto a node
func (s *Neo4jStore) SetProperties(ctx context.Context, ref NodeRef, properties map[string]any) error {
	records, err := s.WriteQuery(ctx, `
		MATCH (n) WHERE elementId(n) = $ref
		SET n += $props
		RETURN elementId(n) AS ref`,
		map[string]any{"ref": string(ref), "props": nonNilProps(properties)})
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return NodeNotFoundError("SetProperties", ref)
	}
	return nil
}

// DeleteNode detach-deletes a node: the node and every incident relationship
func (s *Neo4jStore) DeleteNode(ctx context.Context, ref NodeRef) error {
	records, err := s.WriteQuery(ctx, `
		MATCH (n) WHERE elementId(n) = $ref
		DETACH DELETE n
		RETURN count(n) AS deleted`,
		map[string]any{"ref": string(ref)})
	if err != nil {
		return err
	}
	if len(records) == 0 || asInt64(records[0]["deleted"]) == 0 {
		return NodeNotFoundError("DeleteNode", ref)
	}
	return nil
}

// DeleteRelationship removes one relationship by reference
func (s *Neo4jStore) DeleteRelationship(ctx context.Context, ref RelationshipRef) error {
	records, err := s.WriteQuery(ctx, `
		MATCH ()-[r]->() WHERE elementId(r) = $ref
		DELETE r
		RETURN count(r) AS deleted`,
		map[string]any{"ref": string(ref)})
	if err != nil {
		return err
	}
	if len(records) == 0 || asInt64(records[0]["deleted"]) == 0 {
		return RelationshipNotFoundError("DeleteRelationship", ref)
	}
	return nil
}

// Record value conversions. The bolt protocol hands back interface values;
// these keep the assertions in one place.

func recordToNode(rec Record) Node {
	return Node{
		Ref:        NodeRef(asString(rec["ref"])),
		Labels:     asStringSlice(rec["labels"]),
		Properties: ScrubProperties(asPropertyMap(rec["props"])),
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asStringSlice(v any) []string {
	switch t := v.(type) {
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

func asPropertyMap(v any) map[string]any {
	m, _ := v.(map[string]any)
	return m
}

func asInt64(v any) int64 {
	switch t := v.(type) {
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

func nonNilProps(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}
