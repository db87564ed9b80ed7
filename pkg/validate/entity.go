package validate

import (
	"fmt"
	"sort"

	"github.com/dd0wney/cluso-kgraph/pkg/logging"
	"github.com/dd0wney/cluso-kgraph/pkg/metrics"
	"github.com/dd0wney/cluso-kgraph/pkg/schema"
)

// EntityValidator checks property sets against the entity type definitions of
// one schema.
type EntityValidator struct {
	schema *schema.SchemaDefinition
	logger logging.Logger
}

// NewEntityValidator builds a validator bound to one loaded schema
func NewEntityValidator(def *schema.SchemaDefinition, logger logging.Logger) *EntityValidator {
	return &EntityValidator{
		schema: def,
		logger: logging.OrNop(logger).With(logging.Component("entity-validator")),
	}
}

// Validate checks one property set against the named entity type. An unknown
// entity type short-circuits; otherwise every check runs and all errors are
// collected. Undeclared properties produce warnings, not errors, so documents
// written against a newer schema still validate.
func (v *EntityValidator) Validate(entityType string, properties map[string]any) Result {
	def, ok := v.schema.EntityType(entityType)
	if !ok {
		metrics.Default().ValidationsTotal.WithLabelValues("entity", "invalid").Inc()
		return invalid(fmt.Sprintf("Unknown entity type: %s", entityType))
	}

	var res Result

	for _, name := range def.RequiredProperties() {
		if _, present := properties[name]; !present {
			res.addError(fmt.Sprintf("Missing required property: %s", name))
		}
	}

	// Declared properties first, in declaration order, then extras sorted,
	// so error lists are deterministic
	for _, name := range orderedKeys(def, properties) {
		value := schema.FromAny(properties[name])
		res.ValidatedProperties = append(res.ValidatedProperties, name)

		propDef, declared := def.Property(name)
		if !declared {
			res.addWarning(fmt.Sprintf("Property %s is not defined in schema for %s", name, entityType))
			continue
		}
		checkPropertyType(&res, name, propDef, value)
	}

	res = res.finish()
	outcome := "valid"
	if !res.Valid {
		outcome = "invalid"
		v.logger.Debug("entity validation failed",
			logging.EntityType(entityType),
			logging.Count(len(res.Errors)))
	}
	metrics.Default().ValidationsTotal.WithLabelValues("entity", outcome).Inc()
	return res
}

// checkPropertyType enforces the declared type where a mismatch is
// unambiguous. String, object and datetime slots accept any value: the store
// coerces those on write, so presence is the only contract.
func checkPropertyType(res *Result, name string, def schema.PropertyDefinition, value schema.Value) {
	switch def.Type {
	case schema.TypeEnum:
		s, err := value.AsString()
		if err != nil || !def.AllowsEnumValue(s) {
			res.addError(fmt.Sprintf("Invalid value for %s. Must be one of: %s", name, joinComma(def.EnumValues)))
		}
	case schema.TypeInteger:
		if value.Kind() != schema.KindInt {
			res.addError(fmt.Sprintf("Property %s must be an integer", name))
		}
	case schema.TypeFloat:
		// Integers are acceptable wherever a float is declared
		if _, err := value.AsFloat(); err != nil {
			res.addError(fmt.Sprintf("Property %s must be a number", name))
		}
	case schema.TypeBoolean:
		if value.Kind() != schema.KindBool {
			res.addError(fmt.Sprintf("Property %s must be a boolean", name))
		}
	case schema.TypeArray:
		if value.Kind() != schema.KindList {
			res.addError(fmt.Sprintf("Property %s must be an array", name))
		}
	}
}

// orderedKeys returns the supplied property names, declared ones in schema
// declaration order followed by undeclared ones sorted
func orderedKeys(def schema.EntityTypeDefinition, properties map[string]any) []string {
	keys := make([]string, 0, len(properties))
	for _, name := range def.PropertyOrder {
		if _, present := properties[name]; present {
			keys = append(keys, name)
		}
	}
	var extras []string
	for name := range properties {
		if _, declared := def.Property(name); !declared {
			extras = append(extras, name)
		}
	}
	sort.Strings(extras)
	return append(keys, extras...)
}
