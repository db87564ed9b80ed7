package schema

import (
	"errors"
	"sort"
	"strings"
)

// Merge folds schema definitions left to right into a new definition. The
// inputs are not modified. On an entity type name collision the later
// definition wins, keeping the position of the earlier one. Relationship
// rules are appended in order with exact-triplet duplicates suppressed
// (matching label alone is not a duplicate). Categories are unioned.
func Merge(defs ...*SchemaDefinition) *SchemaDefinition {
	names := make([]string, len(defs))
	for i, def := range defs {
		names[i] = def.Metadata.Name
	}

	merged := &SchemaDefinition{
		Metadata: Metadata{
			Name:        "Merged Schema",
			Version:     defaultVersion,
			Description: "Merged schema from: " + strings.Join(names, ", "),
		},
		EntityTypes: make(map[string]EntityTypeDefinition),
		EntityOrder: make([]string, 0),
		Rules:       make([]RelationshipRule, 0),
	}

	seenRules := make(map[tripletKey]struct{})
	categories := make(map[string]struct{})

	for _, def := range defs {
		for _, name := range def.EntityOrder {
			if _, exists := merged.EntityTypes[name]; !exists {
				merged.EntityOrder = append(merged.EntityOrder, name)
			}
			merged.EntityTypes[name] = def.EntityTypes[name]
		}

		for _, rule := range def.Rules {
			if _, dup := seenRules[rule.key()]; dup {
				continue
			}
			seenRules[rule.key()] = struct{}{}
			merged.Rules = append(merged.Rules, rule)
		}

		for _, c := range def.Metadata.Categories {
			categories[c] = struct{}{}
		}
	}

	merged.Metadata.Categories = make([]string, 0, len(categories))
	for c := range categories {
		merged.Metadata.Categories = append(merged.Metadata.Categories, c)
	}
	sort.Strings(merged.Metadata.Categories)

	return merged
}

// Merge loads the named schemas and folds them left to right. At least one
// name is required.
func (r *Registry) Merge(names ...string) (*SchemaDefinition, error) {
	if len(names) == 0 {
		return nil, errors.New("merge requires at least one schema name")
	}

	defs := make([]*SchemaDefinition, len(names))
	for i, name := range names {
		def, err := r.Load(name)
		if err != nil {
			return nil, err
		}
		defs[i] = def
	}
	return Merge(defs...), nil
}
