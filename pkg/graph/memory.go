package graph

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Reader/Writer used in tests and offline
// tooling. It is not a Cypher engine; QueryExecutor is deliberately absent.
type MemoryStore struct {
	mu        sync.RWMutex
	nodes     map[NodeRef]*memoryNode
	nodeOrder []NodeRef
	rels      map[RelationshipRef]*Relationship
	relOrder  []RelationshipRef
}

type memoryNode struct {
	labels     []string
	properties map[string]any
}

// NewMemoryStore returns an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nodes: make(map[NodeRef]*memoryNode),
		rels:  make(map[RelationshipRef]*Relationship),
	}
}

// AddNode inserts a node and returns its reference
func (m *MemoryStore) AddNode(labels []string, properties map[string]any) NodeRef {
	m.mu.Lock()
	defer m.mu.Unlock()

	ref := NodeRef(uuid.NewString())
	m.nodes[ref] = &memoryNode{
		labels:     append([]string(nil), labels...),
		properties: copyProps(properties),
	}
	m.nodeOrder = append(m.nodeOrder, ref)
	return ref
}

// FindNodes returns nodes in insertion order matching the type label and
// property filters
func (m *MemoryStore) FindNodes(ctx context.Context, typeFilter string, filters map[string]any, limit int) ([]Node, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Node
	for _, ref := range m.nodeOrder {
		n := m.nodes[ref]
		if typeFilter != "" && !hasLabel(n.labels, typeFilter) {
			continue
		}
		if !matchesFilters(n.properties, filters) {
			continue
		}
		out = append(out, Node{
			Ref:        ref,
			Labels:     append([]string(nil), n.labels...),
			Properties: ScrubProperties(n.properties),
		})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (m *MemoryStore) FetchProperties(ctx context.Context, ref NodeRef) (map[string]any, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n, ok := m.nodes[ref]
	if !ok {
		return nil, NodeNotFoundError("FetchProperties", ref)
	}
	return ScrubProperties(n.properties), nil
}

func (m *MemoryStore) FetchTypeLabels(ctx context.Context, ref NodeRef) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n, ok := m.nodes[ref]
	if !ok {
		return nil, NodeNotFoundError("FetchTypeLabels", ref)
	}
	return append([]string(nil), n.labels...), nil
}

func (m *MemoryStore) IncidentRelationships(ctx context.Context, ref NodeRef) ([]Relationship, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, ok := m.nodes[ref]; !ok {
		return nil, NodeNotFoundError("IncidentRelationships", ref)
	}

	var out []Relationship
	for _, relRef := range m.relOrder {
		r := m.rels[relRef]
		if r.From == ref || r.To == ref {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (m *MemoryStore) CreateRelationship(ctx context.Context, from, to NodeRef, label string, properties map[string]any) (RelationshipRef, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.nodes[from]; !ok {
		return "", NodeNotFoundError("CreateRelationship", from)
	}
	if _, ok := m.nodes[to]; !ok {
		return "", NodeNotFoundError("CreateRelationship", to)
	}

	ref := RelationshipRef(uuid.NewString())
	m.rels[ref] = &Relationship{
		Ref:        ref,
		From:       from,
		To:         to,
		Type:       SanitizeRelType(label),
		Properties: copyProps(properties),
	}
	m.relOrder = append(m.relOrder, ref)
	return ref, nil
}

func (m *MemoryStore) SetProperties(ctx context.Context, ref NodeRef, properties map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.nodes[ref]
	if !ok {
		return NodeNotFoundError("SetProperties", ref)
	}
	if n.properties == nil {
		n.properties = make(map[string]any, len(properties))
	}
	for k, v := range properties {
		n.properties[k] = v
	}
	return nil
}

// DeleteNode removes the node and every relationship incident to it
func (m *MemoryStore) DeleteNode(ctx context.Context, ref NodeRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.nodes[ref]; !ok {
		return NodeNotFoundError("DeleteNode", ref)
	}
	delete(m.nodes, ref)
	m.nodeOrder = removeNodeRef(m.nodeOrder, ref)

	kept := m.relOrder[:0]
	for _, relRef := range m.relOrder {
		r := m.rels[relRef]
		if r.From == ref || r.To == ref {
			delete(m.rels, relRef)
			continue
		}
		kept = append(kept, relRef)
	}
	m.relOrder = kept
	return nil
}

func (m *MemoryStore) DeleteRelationship(ctx context.Context, ref RelationshipRef) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.rels[ref]; !ok {
		return RelationshipNotFoundError("DeleteRelationship", ref)
	}
	delete(m.rels, ref)
	for i, r := range m.relOrder {
		if r == ref {
			m.relOrder = append(m.relOrder[:i], m.relOrder[i+1:]...)
			break
		}
	}
	return nil
}

// NodeCount returns the number of stored nodes
func (m *MemoryStore) NodeCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.nodes)
}

// RelationshipCount returns the number of stored relationships
func (m *MemoryStore) RelationshipCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rels)
}

func hasLabel(labels []string, want string) bool {
	sanitized := SanitizeLabel(want)
	for _, l := range labels {
		if l == want || l == sanitized {
			return true
		}
	}
	return false
}

func matchesFilters(properties, filters map[string]any) bool {
	for k, v := range filters {
		got, ok := properties[k]
		if !ok || got != v {
			return false
		}
	}
	return true
}

func copyProps(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func removeNodeRef(refs []NodeRef, ref NodeRef) []NodeRef {
	for i, r := range refs {
		if r == ref {
			return append(refs[:i], refs[i+1:]...)
		}
	}
	return refs
}
