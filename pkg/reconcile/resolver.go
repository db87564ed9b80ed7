// Package reconcile merges duplicate entities discovered by the analysis
// scans. A merge folds one node (the absorbed) into another (the survivor),
// transferring relationships and combining properties under a caller-chosen
// policy.
//
// The store is an external, non-transactional collaborator: relationship
// transfer is best-effort per relationship, and partial completion is a
// reported outcome, not a rolled-back failure.
package reconcile

import (
	"context"
	"fmt"

	"github.com/dd0wney/cluso-kgraph/pkg/graph"
	"github.com/dd0wney/cluso-kgraph/pkg/logging"
	"github.com/dd0wney/cluso-kgraph/pkg/metrics"
)

// Policy selects how the survivor's final property set is computed
type Policy string

const (
	// PolicyKeepSurvivor leaves the survivor's properties untouched
	PolicyKeepSurvivor Policy = "keep_survivor_properties"
	// PolicyPreferAbsorbed writes the absorbed node's properties over the
	// survivor's
	PolicyPreferAbsorbed Policy = "prefer_absorbed_properties"
	// PolicyUnionPreferAbsorbed unions both property sets, the absorbed
	// node winning on conflicts
	PolicyUnionPreferAbsorbed Policy = "union_prefer_absorbed"
)

// ParsePolicy converts a policy name to a Policy
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case PolicyKeepSurvivor, PolicyPreferAbsorbed, PolicyUnionPreferAbsorbed:
		return Policy(s), nil
	default:
		return "", fmt.Errorf("unknown merge policy %q", s)
	}
}

// Store is the slice of the graph store a merge needs
type Store interface {
	FetchProperties(ctx context.Context, ref graph.NodeRef) (map[string]any, error)
	IncidentRelationships(ctx context.Context, ref graph.NodeRef) ([]graph.Relationship, error)
	CreateRelationship(ctx context.Context, from, to graph.NodeRef, label string, properties map[string]any) (graph.RelationshipRef, error)
	SetProperties(ctx context.Context, ref graph.NodeRef, properties map[string]any) error
	DeleteNode(ctx context.Context, ref graph.NodeRef) error
}

// Outcome reports what one merge actually did. Attempted and Transferred
// diverge when individual relationship transfers fail; TransferErrors carries
// one message per failure.
type Outcome struct {
	Survivor                 graph.NodeRef
	Absorbed                 graph.NodeRef
	Policy                   Policy
	FinalProperties          map[string]any
	AttemptedRelationships   int
	TransferredRelationships int
	TransferErrors           []string
}

// Resolver performs duplicate-entity merges
type Resolver struct {
	store  Store
	logger logging.Logger
}

// NewResolver builds a resolver over one store
func NewResolver(store Store, logger logging.Logger) *Resolver {
	return &Resolver{
		store:  store,
		logger: logging.OrNop(logger).With(logging.Component("merge-resolver")),
	}
}

// Merge folds the absorbed node into the survivor: computes and writes the
// survivor's final properties per the policy, re-attaches the absorbed
// node's relationships to the survivor, then detach-deletes the absorbed
// node. Store faults on the property or delete phases abort the merge;
// individual relationship transfer failures are tolerated and reported.
func (r *Resolver) Merge(ctx context.Context, survivor, absorbed graph.NodeRef, policy Policy) (*Outcome, error) {
	if survivor == absorbed {
		metrics.Default().MergesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("survivor and absorbed must be different nodes")
	}
	if _, err := ParsePolicy(string(policy)); err != nil {
		metrics.Default().MergesTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	survivorProps, err := r.store.FetchProperties(ctx, survivor)
	if err != nil {
		metrics.Default().MergesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("fetch survivor: %w", err)
	}
	absorbedProps, err := r.store.FetchProperties(ctx, absorbed)
	if err != nil {
		metrics.Default().MergesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("fetch absorbed: %w", err)
	}

	outcome := &Outcome{
		Survivor: survivor,
		Absorbed: absorbed,
		Policy:   policy,
	}
	outcome.FinalProperties = finalProperties(policy, survivorProps, absorbedProps)

	if policy != PolicyKeepSurvivor {
		if err := r.store.SetProperties(ctx, survivor, outcome.FinalProperties); err != nil {
			metrics.Default().MergesTotal.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("write survivor properties: %w", err)
		}
	}

	rels, err := r.store.IncidentRelationships(ctx, absorbed)
	if err != nil {
		metrics.Default().MergesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("list absorbed relationships: %w", err)
	}

	for _, rel := range rels {
		outcome.AttemptedRelationships++

		from, to := rel.From, rel.To
		if from == absorbed {
			from = survivor
		}
		if to == absorbed {
			to = survivor
		}

		if _, err := r.store.CreateRelationship(ctx, from, to, rel.Type, rel.Properties); err != nil {
			metrics.Default().RelationshipTransfersTotal.WithLabelValues("error").Inc()
			outcome.TransferErrors = append(outcome.TransferErrors, err.Error())
			r.logger.Warn("relationship transfer failed",
				logging.RelationshipType(rel.Type),
				logging.Error(err))
			continue
		}
		metrics.Default().RelationshipTransfersTotal.WithLabelValues("ok").Inc()
		outcome.TransferredRelationships++
	}

	// Detach delete also removes the absorbed node's original relationships,
	// leaving only the transferred copies
	if err := r.store.DeleteNode(ctx, absorbed); err != nil {
		metrics.Default().MergesTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("delete absorbed node: %w", err)
	}

	metrics.Default().MergesTotal.WithLabelValues("ok").Inc()
	r.logger.Info("merge completed",
		logging.NodeRef(string(survivor)),
		logging.String("policy", string(policy)),
		logging.Int("transferred", outcome.TransferredRelationships),
		logging.Int("attempted", outcome.AttemptedRelationships))
	return outcome, nil
}

func finalProperties(policy Policy, survivor, absorbed map[string]any) map[string]any {
	switch policy {
	case PolicyPreferAbsorbed:
		return copyProps(absorbed)
	case PolicyUnionPreferAbsorbed:
		out := copyProps(survivor)
		for k, v := range absorbed {
			out[k] = v
		}
		return out
	default:
		return copyProps(survivor)
	}
}

func copyProps(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
