package validate

import (
	"context"
	"fmt"

	"github.com/dd0wney/cluso-kgraph/pkg/graph"
	"github.com/dd0wney/cluso-kgraph/pkg/logging"
	"github.com/dd0wney/cluso-kgraph/pkg/metrics"
	"github.com/dd0wney/cluso-kgraph/pkg/schema"
)

// LabelReader is the single store operation resolved validation needs
type LabelReader interface {
	FetchTypeLabels(ctx context.Context, ref graph.NodeRef) ([]string, error)
}

// RelationshipValidator checks relationships against the allowed triplets of
// one schema, either statically by type names or resolved against live nodes.
type RelationshipValidator struct {
	schema *schema.SchemaDefinition
	store  LabelReader
	logger logging.Logger
}

// NewRelationshipValidator builds a validator bound to one schema. The store
// may be nil if only static triplet validation is needed.
func NewRelationshipValidator(def *schema.SchemaDefinition, store LabelReader, logger logging.Logger) *RelationshipValidator {
	return &RelationshipValidator{
		schema: def,
		store:  store,
		logger: logging.OrNop(logger).With(logging.Component("relationship-validator")),
	}
}

// ValidateTriplet checks a (from type, label, to type) triplet without
// touching the store. Both endpoint types and the label are checked
// individually first; the triplet check only runs when all three exist, and
// a disallowed triplet always comes with the most specific suggestion the
// schema can offer.
func (v *RelationshipValidator) ValidateTriplet(fromType, toType, label string) Result {
	var res Result

	if !v.schema.HasEntityType(fromType) {
		res.addError(fmt.Sprintf("Unknown entity type: %s", fromType))
	}
	if !v.schema.HasEntityType(toType) {
		res.addError(fmt.Sprintf("Unknown entity type: %s", toType))
	}
	if !v.schema.HasRelationshipLabel(label) {
		res.addError(fmt.Sprintf("Unknown relationship type: %s", label))
		res.addError(fmt.Sprintf("Valid relationship types: %s", joinComma(v.schema.RelationshipLabels())))
	}
	if len(res.Errors) > 0 {
		metrics.Default().ValidationsTotal.WithLabelValues("relationship", "invalid").Inc()
		return res.finish()
	}

	v.checkTriplet(&res, fromType, toType, label)

	res = res.finish()
	outcome := "valid"
	if !res.Valid {
		outcome = "invalid"
	}
	metrics.Default().ValidationsTotal.WithLabelValues("relationship", outcome).Inc()
	return res
}

// ValidateExisting checks a relationship between two nodes already persisted
// in the store, discovering their entity types from their type labels. When a
// node carries several labels the first-declared one is used, with a warning.
// Store faults propagate as errors; missing nodes are a validation failure.
func (v *RelationshipValidator) ValidateExisting(ctx context.Context, from, to graph.NodeRef, label string) (Result, error) {
	var res Result

	if !v.schema.HasRelationshipLabel(label) {
		res.addError(fmt.Sprintf("Unknown relationship type: %s", label))
		res.addError(fmt.Sprintf("Valid relationship types: %s", joinComma(v.schema.RelationshipLabels())))
		metrics.Default().ValidationsTotal.WithLabelValues("relationship", "invalid").Inc()
		return res.finish(), nil
	}

	fromLabels, err := v.fetchLabels(ctx, from)
	if err != nil {
		return Result{}, err
	}
	toLabels, err := v.fetchLabels(ctx, to)
	if err != nil {
		return Result{}, err
	}

	if fromLabels == nil || toLabels == nil {
		res.addError("One or both nodes not found")
		metrics.Default().ValidationsTotal.WithLabelValues("relationship", "invalid").Inc()
		return res.finish(), nil
	}
	if len(fromLabels) == 0 || len(toLabels) == 0 {
		res.addError("One or both nodes have no labels (entity types)")
		metrics.Default().ValidationsTotal.WithLabelValues("relationship", "invalid").Inc()
		return res.finish(), nil
	}

	fromType := fromLabels[0]
	toType := toLabels[0]

	res.setContext("from_entity_type", fromType)
	res.setContext("to_entity_type", toType)
	res.setContext("from_labels", fromLabels)
	res.setContext("to_labels", toLabels)

	if len(fromLabels) > 1 {
		res.addWarning(fmt.Sprintf("From node has multiple labels: %s. Using %s for validation.", joinComma(fromLabels), fromType))
	}
	if len(toLabels) > 1 {
		res.addWarning(fmt.Sprintf("To node has multiple labels: %s. Using %s for validation.", joinComma(toLabels), toType))
	}

	v.checkTriplet(&res, fromType, toType, label)

	res = res.finish()
	outcome := "valid"
	if !res.Valid {
		outcome = "invalid"
		v.logger.Debug("relationship validation failed",
			logging.RelationshipType(label),
			logging.Count(len(res.Errors)))
	}
	metrics.Default().ValidationsTotal.WithLabelValues("relationship", outcome).Inc()
	return res, nil
}

// fetchLabels returns nil labels (no error) when the node does not exist
func (v *RelationshipValidator) fetchLabels(ctx context.Context, ref graph.NodeRef) ([]string, error) {
	labels, err := v.store.FetchTypeLabels(ctx, ref)
	if err != nil {
		if graph.IsNotFound(err) {
			return nil, nil
		}
		metrics.Default().ValidationsTotal.WithLabelValues("relationship", "error").Inc()
		return nil, err
	}
	if labels == nil {
		labels = []string{}
	}
	return labels, nil
}

// checkTriplet appends the disallowed-triplet error and the best available
// suggestion: labels that do connect the pair, or failing that, the valid
// targets for (fromType, label)
func (v *RelationshipValidator) checkTriplet(res *Result, fromType, toType, label string) {
	if v.schema.IsRelationshipAllowed(fromType, toType, label) {
		return
	}

	res.addError(fmt.Sprintf("Invalid relationship: %s %s %s", fromType, label, toType))

	if between := v.schema.LabelsBetween(fromType, toType); len(between) > 0 {
		res.addError(fmt.Sprintf("Valid relationship types between %s and %s: %s", fromType, toType, joinComma(between)))
		return
	}

	res.addError(fmt.Sprintf("No valid relationships defined between %s and %s in the schema", fromType, toType))
	if targets := v.schema.TargetsFor(fromType, label); len(targets) > 0 {
		res.addError(fmt.Sprintf("Valid target entity types for %s %s: %s", fromType, label, joinComma(targets)))
	}
}
