package schema

import (
	"sort"
)

// PropertyType is the declared type of an entity property.
type PropertyType string

const (
	TypeString   PropertyType = "string"
	TypeInteger  PropertyType = "integer"
	TypeFloat    PropertyType = "float"
	TypeBoolean  PropertyType = "boolean"
	TypeDatetime PropertyType = "datetime"
	TypeArray    PropertyType = "array"
	TypeObject   PropertyType = "object"
	TypeEnum     PropertyType = "enum"
)

// Valid reports whether t is one of the declared property types
func (t PropertyType) Valid() bool {
	switch t {
	case TypeString, TypeInteger, TypeFloat, TypeBoolean, TypeDatetime, TypeArray, TypeObject, TypeEnum:
		return true
	default:
		return false
	}
}

// PropertyDefinition describes one property of an entity type.
type PropertyDefinition struct {
	Type        PropertyType
	Description string
	Required    bool
	Unique      bool
	// EnumValues is set iff Type == TypeEnum
	EnumValues []string
	// Default, when non-nil, is a literal whose kind matches Type
	Default *Value
	// Sensitive marks the value as unsafe to echo back unredacted
	Sensitive bool
}

// AllowsEnumValue reports whether s is a member of the enum value set
func (p PropertyDefinition) AllowsEnumValue(s string) bool {
	for _, v := range p.EnumValues {
		if v == s {
			return true
		}
	}
	return false
}

// ConstraintType identifies a declarative entity-level constraint.
type ConstraintType string

const (
	ConstraintUnique ConstraintType = "unique"
)

// Constraint is a declarative constraint over one or more properties of an
// entity type. The validator does not enforce these; they describe what the
// backing store is expected to guarantee.
type Constraint struct {
	Type       ConstraintType
	Properties []string
}

// EntityTypeDefinition describes one permitted node type.
type EntityTypeDefinition struct {
	Name        string
	Description string
	// Category is a grouping label used for reporting only
	Category string
	// Properties maps property name to definition; PropertyOrder preserves
	// the declaration order from the source document
	Properties    map[string]PropertyDefinition
	PropertyOrder []string
	Constraints   []Constraint
	// Indexes lists properties expected to be indexed by the store
	Indexes []string
}

// Property looks up a property definition by name
func (e *EntityTypeDefinition) Property(name string) (PropertyDefinition, bool) {
	def, ok := e.Properties[name]
	return def, ok
}

// RequiredProperties returns required property names in declaration order
func (e *EntityTypeDefinition) RequiredProperties() []string {
	required := make([]string, 0)
	for _, name := range e.PropertyOrder {
		if e.Properties[name].Required {
			required = append(required, name)
		}
	}
	return required
}

// RelationshipRule is one allowed (source type, label, target type) triplet.
type RelationshipRule struct {
	FromType    string
	ToType      string
	Label       string
	Description string
}

// tripletKey is the identity of a rule for deduplication
type tripletKey struct {
	from, to, label string
}

func (r RelationshipRule) key() tripletKey {
	return tripletKey{from: r.FromType, to: r.ToType, label: r.Label}
}

// Metadata carries the identifying header of a schema.
type Metadata struct {
	Name        string
	Version     string
	Description string
	Categories  []string
}

// SchemaDefinition is the immutable in-memory model of one loaded schema.
// Construct via Parse or Registry.Load; do not mutate after construction.
type SchemaDefinition struct {
	Metadata Metadata
	// EntityTypes maps entity type name to definition; EntityOrder preserves
	// declaration order from the source document
	EntityTypes map[string]EntityTypeDefinition
	EntityOrder []string
	// Rules is the ordered sequence of allowed relationship triplets
	Rules []RelationshipRule
}

// EntityType looks up an entity type definition by name
func (s *SchemaDefinition) EntityType(name string) (EntityTypeDefinition, bool) {
	def, ok := s.EntityTypes[name]
	return def, ok
}

// HasEntityType reports whether name is a declared entity type
func (s *SchemaDefinition) HasEntityType(name string) bool {
	_, ok := s.EntityTypes[name]
	return ok
}

// EntityTypeNames returns entity type names in declaration order
func (s *SchemaDefinition) EntityTypeNames() []string {
	names := make([]string, len(s.EntityOrder))
	copy(names, s.EntityOrder)
	return names
}

// RelationshipsFor returns every rule in which the entity type participates
// as source or target, in source order.
func (s *SchemaDefinition) RelationshipsFor(entityType string) []RelationshipRule {
	rules := make([]RelationshipRule, 0)
	for _, rule := range s.Rules {
		if rule.FromType == entityType || rule.ToType == entityType {
			rules = append(rules, rule)
		}
	}
	return rules
}

// RelationshipLabels returns the deduplicated set of labels across all rules,
// sorted for stable output.
func (s *SchemaDefinition) RelationshipLabels() []string {
	seen := make(map[string]struct{}, len(s.Rules))
	labels := make([]string, 0, len(s.Rules))
	for _, rule := range s.Rules {
		if _, ok := seen[rule.Label]; ok {
			continue
		}
		seen[rule.Label] = struct{}{}
		labels = append(labels, rule.Label)
	}
	sort.Strings(labels)
	return labels
}

// HasRelationshipLabel reports whether label appears in any rule.
// Matching is case-sensitive.
func (s *SchemaDefinition) HasRelationshipLabel(label string) bool {
	for _, rule := range s.Rules {
		if rule.Label == label {
			return true
		}
	}
	return false
}

// IsRelationshipAllowed is an exact triplet membership test. There is no type
// hierarchy and no wildcard matching.
func (s *SchemaDefinition) IsRelationshipAllowed(fromType, toType, label string) bool {
	for _, rule := range s.Rules {
		if rule.FromType == fromType && rule.ToType == toType && rule.Label == label {
			return true
		}
	}
	return false
}

// LabelsBetween returns the labels of rules from fromType to toType, in
// source order.
func (s *SchemaDefinition) LabelsBetween(fromType, toType string) []string {
	labels := make([]string, 0)
	for _, rule := range s.Rules {
		if rule.FromType == fromType && rule.ToType == toType {
			labels = append(labels, rule.Label)
		}
	}
	return labels
}

// TargetsFor returns the deduplicated target types of rules matching
// (fromType, label), in source order.
func (s *SchemaDefinition) TargetsFor(fromType, label string) []string {
	seen := make(map[string]struct{})
	targets := make([]string, 0)
	for _, rule := range s.Rules {
		if rule.FromType == fromType && rule.Label == label {
			if _, ok := seen[rule.ToType]; ok {
				continue
			}
			seen[rule.ToType] = struct{}{}
			targets = append(targets, rule.ToType)
		}
	}
	return targets
}
