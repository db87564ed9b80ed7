package graph

import (
	"context"
)

// EmbeddingProperty is the node property holding the vector embedding. It is
// stripped from properties before they are echoed back to callers.
const EmbeddingProperty = "embedding_vector"

// NodeRef is an opaque node identifier resolvable against the store
type NodeRef string

// RelationshipRef is an opaque relationship identifier
type RelationshipRef string

// Node is a store node snapshot: its reference, type labels and properties
type Node struct {
	Ref        NodeRef
	Labels     []string
	Properties map[string]any
}

// PrimaryLabel returns the first-declared type label, or "" when the node
// carries none. With multiple labels the first one wins; callers that care
// should surface the ambiguity to their own callers.
func (n Node) PrimaryLabel() string {
	if len(n.Labels) == 0 {
		return ""
	}
	return n.Labels[0]
}

// Relationship is a store relationship snapshot
type Relationship struct {
	Ref        RelationshipRef
	From       NodeRef
	To         NodeRef
	Type       string
	Properties map[string]any
}

// Record is one row of a query result
type Record map[string]any

// Reader defines the read operations the validation and reconciliation
// layers need. The narrow interface keeps them testable without a live
// store.
type Reader interface {
	// FindNodes returns nodes carrying the type label (all nodes when
	// typeFilter is empty) whose properties equal every filter entry.
	// A limit <= 0 means no limit.
	FindNodes(ctx context.Context, typeFilter string, filters map[string]any, limit int) ([]Node, error)
	// FetchProperties returns the property set of one node
	FetchProperties(ctx context.Context, ref NodeRef) (map[string]any, error)
	// FetchTypeLabels returns the type labels of one node in declaration order
	FetchTypeLabels(ctx context.Context, ref NodeRef) ([]string, error)
	// IncidentRelationships returns every relationship touching the node,
	// incoming and outgoing, with original direction preserved
	IncidentRelationships(ctx context.Context, ref NodeRef) ([]Relationship, error)
}

// Writer defines the mutation operations the reconciliation layer needs
type Writer interface {
	CreateRelationship(ctx context.Context, from, to NodeRef, label string, properties map[string]any) (RelationshipRef, error)
	// SetProperties merges the given properties onto the node
	SetProperties(ctx context.Context, ref NodeRef, properties map[string]any) error
	// DeleteNode removes the node and all relationships incident to it
	DeleteNode(ctx context.Context, ref NodeRef) error
	DeleteRelationship(ctx context.Context, ref RelationshipRef) error
}

// QueryExecutor is the generic parametrized query primitive used by the
// consistency analyzer
type QueryExecutor interface {
	ReadQuery(ctx context.Context, cypher string, params map[string]any) ([]Record, error)
	WriteQuery(ctx context.Context, cypher string, params map[string]any) ([]Record, error)
}

// Store is the full surface of the external graph store
type Store interface {
	Reader
	Writer
	QueryExecutor
}

// ScrubProperties returns a copy of properties without the embedding vector.
// Embeddings are large and meaningless to callers, so every read path strips
// them before returning results.
func ScrubProperties(properties map[string]any) map[string]any {
	if properties == nil {
		return nil
	}
	scrubbed := make(map[string]any, len(properties))
	for k, v := range properties {
		if k == EmbeddingProperty {
			continue
		}
		scrubbed[k] = v
	}
	return scrubbed
}
