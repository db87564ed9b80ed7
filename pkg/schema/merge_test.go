package schema

import (
	"testing"
)

const codeYAML = `
metadata:
  name: code
  categories: [code]
entity_types:
  Service:
    category: code
    properties:
      name:
        type: string
        required: true
      language:
        type: string
  Module:
    properties:
      name:
        type: string
        required: true
relationships:
  - from: Service
    to: Module
    type: CONTAINS
`

func mustParse(t *testing.T, name, doc string) *SchemaDefinition {
	t.Helper()
	def, err := Parse(name, []byte(doc))
	if err != nil {
		t.Fatalf("parse %s: %v", name, err)
	}
	return def
}

func TestMergeLaterWinsKeepsPosition(t *testing.T) {
	code := mustParse(t, "code", codeYAML)
	infra := mustParse(t, "infra", `
metadata:
  name: infra
  categories: [infra]
entity_types:
  Service:
    category: infra
    properties:
      name:
        type: string
        required: true
      endpoint:
        type: string
  Host:
    properties:
      hostname:
        type: string
        required: true
relationships:
  - from: Service
    to: Host
    type: RUNS_ON
`)

	merged := Merge(code, infra)

	// Service collided: infra's definition wins but keeps code's position
	if got := merged.EntityTypeNames(); got[0] != "Service" || got[1] != "Module" || got[2] != "Host" {
		t.Fatalf("order wrong: %v", got)
	}
	svc, _ := merged.EntityType("Service")
	if _, ok := svc.Property("endpoint"); !ok {
		t.Error("later definition must win the collision")
	}
	if _, ok := svc.Property("language"); ok {
		t.Error("definitions replace wholesale, not per-property")
	}

	if len(merged.Rules) != 2 {
		t.Errorf("expected 2 rules, got %+v", merged.Rules)
	}

	if merged.Metadata.Name != "Merged Schema" {
		t.Errorf("merged name wrong: %q", merged.Metadata.Name)
	}
	if merged.Metadata.Description != "Merged schema from: code, infra" {
		t.Errorf("merged description wrong: %q", merged.Metadata.Description)
	}
	if got := merged.Metadata.Categories; len(got) != 2 || got[0] != "code" || got[1] != "infra" {
		t.Errorf("categories must be unioned and sorted: %v", got)
	}
}

func TestMergeDeduplicatesExactTriplets(t *testing.T) {
	a := mustParse(t, "a", codeYAML)
	b := mustParse(t, "b", codeYAML)

	merged := Merge(a, b)
	if len(merged.Rules) != 1 {
		t.Errorf("exact duplicate triplet must be suppressed, got %+v", merged.Rules)
	}
}

func TestMergeSingleIsIdentityOnContent(t *testing.T) {
	a := mustParse(t, "a", codeYAML)
	merged := Merge(a)

	if len(merged.EntityTypes) != len(a.EntityTypes) || len(merged.Rules) != len(a.Rules) {
		t.Errorf("single-input merge must carry all content")
	}
	// inputs are never mutated
	if a.Metadata.Name != "code" {
		t.Error("input metadata mutated")
	}
}

func TestRegistryMergeRequiresNames(t *testing.T) {
	r := NewRegistry(t.TempDir(), nil)
	if _, err := r.Merge(); err == nil {
		t.Fatal("merge with no names must fail")
	}
}
