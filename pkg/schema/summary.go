package schema

// UncategorizedBucket collects entity types that declare no category
const UncategorizedBucket = "Uncategorized"

// Summary holds aggregate statistics for one schema.
type Summary struct {
	Metadata Metadata

	EntityTypeCount   int
	RelationshipCount int
	UniqueLabelCount  int

	// EntityCategories groups entity type names by their category field,
	// in declaration order within each bucket
	EntityCategories map[string][]string

	// RelationshipLabels is the sorted deduplicated label set
	RelationshipLabels []string

	// ConstrainedEntityCount counts entity types declaring constraints;
	// IndexedEntityCount counts entity types declaring indexes
	ConstrainedEntityCount int
	IndexedEntityCount     int
}

// Summarize computes summary statistics over a schema definition.
func Summarize(def *SchemaDefinition) *Summary {
	labels := def.RelationshipLabels()

	s := &Summary{
		Metadata:           def.Metadata,
		EntityTypeCount:    len(def.EntityTypes),
		RelationshipCount:  len(def.Rules),
		UniqueLabelCount:   len(labels),
		EntityCategories:   make(map[string][]string),
		RelationshipLabels: labels,
	}

	for _, name := range def.EntityOrder {
		entity := def.EntityTypes[name]

		category := entity.Category
		if category == "" {
			category = UncategorizedBucket
		}
		s.EntityCategories[category] = append(s.EntityCategories[category], name)

		if len(entity.Constraints) > 0 {
			s.ConstrainedEntityCount++
		}
		if len(entity.Indexes) > 0 {
			s.IndexedEntityCount++
		}
	}

	return s
}
