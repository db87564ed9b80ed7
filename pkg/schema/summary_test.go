package schema

import (
	"testing"
)

func TestSummarize(t *testing.T) {
	def := mustParse(t, "sample", sampleYAML)
	s := Summarize(def)

	if s.EntityTypeCount != 3 {
		t.Errorf("entity count: %d", s.EntityTypeCount)
	}
	if s.RelationshipCount != 2 || s.UniqueLabelCount != 2 {
		t.Errorf("relationship counts: %d/%d", s.RelationshipCount, s.UniqueLabelCount)
	}
	if s.ConstrainedEntityCount != 1 || s.IndexedEntityCount != 1 {
		t.Errorf("constraint/index counts: %d/%d", s.ConstrainedEntityCount, s.IndexedEntityCount)
	}

	code := s.EntityCategories["code"]
	if len(code) != 2 || code[0] != "Service" || code[1] != "Module" {
		t.Errorf("code category wrong: %v", code)
	}
	if got := s.EntityCategories["infra"]; len(got) != 1 || got[0] != "Host" {
		t.Errorf("infra category wrong: %v", got)
	}
}

func TestSummarizeUncategorized(t *testing.T) {
	def := mustParse(t, "bare", "entity_types:\n  Thing:\n    properties:\n      name:\n        type: string\n")
	s := Summarize(def)

	if got := s.EntityCategories[UncategorizedBucket]; len(got) != 1 || got[0] != "Thing" {
		t.Errorf("uncategorized bucket wrong: %v", s.EntityCategories)
	}
}
