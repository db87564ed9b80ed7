package schema

import (
	"strings"
	"testing"
)

const sampleYAML = `
metadata:
  name: sample
  version: 2.1.0
  description: Sample schema
  categories: [code, infra]
entity_types:
  Service:
    description: A deployable service
    category: code
    properties:
      name:
        type: string
        required: true
        unique: true
      status:
        type: enum
        enum: [active, inactive]
        default: active
      replicas:
        type: integer
        default: 1
    constraints:
      - type: unique
        properties: [name]
    indexes: [name]
  Module:
    category: code
    properties:
      name:
        type: string
        required: true
  Host:
    category: infra
    properties:
      hostname:
        type: string
        required: true
relationships:
  - from: Service
    to: Module
    type: CONTAINS
    description: structural ownership
  - from: Service
    to: Host
    type: RUNS_ON
`

func TestParseSample(t *testing.T) {
	def, err := Parse("sample", []byte(sampleYAML))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	if def.Metadata.Name != "sample" || def.Metadata.Version != "2.1.0" {
		t.Errorf("metadata wrong: %+v", def.Metadata)
	}
	if got := def.EntityTypeNames(); len(got) != 3 || got[0] != "Service" || got[2] != "Host" {
		t.Errorf("entity order not preserved: %v", got)
	}

	svc, ok := def.EntityType("Service")
	if !ok {
		t.Fatal("Service missing")
	}
	if got := svc.PropertyOrder; len(got) != 3 || got[0] != "name" || got[1] != "status" {
		t.Errorf("property order not preserved: %v", got)
	}
	if got := svc.RequiredProperties(); len(got) != 1 || got[0] != "name" {
		t.Errorf("required properties wrong: %v", got)
	}

	status, _ := svc.Property("status")
	if status.Type != TypeEnum || !status.AllowsEnumValue("active") || status.AllowsEnumValue("bogus") {
		t.Errorf("enum definition wrong: %+v", status)
	}
	if status.Default == nil || status.Default.String() != "active" {
		t.Errorf("enum default lost: %v", status.Default)
	}

	replicas, _ := svc.Property("replicas")
	if replicas.Default == nil {
		t.Fatal("integer default lost")
	}
	if n, err := replicas.Default.AsInt(); err != nil || n != 1 {
		t.Errorf("integer default wrong: %v", replicas.Default)
	}

	if len(svc.Constraints) != 1 || svc.Constraints[0].Type != ConstraintUnique {
		t.Errorf("constraints wrong: %+v", svc.Constraints)
	}
	if len(def.Rules) != 2 || def.Rules[0].Label != "CONTAINS" {
		t.Errorf("rules wrong: %+v", def.Rules)
	}
}

func TestParseMetadataDefaults(t *testing.T) {
	def, err := Parse("bare", []byte("entity_types:\n  Thing:\n    properties:\n      name:\n        type: string\n"))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if def.Metadata.Name != "bare" {
		t.Errorf("name must default to the schema name, got %q", def.Metadata.Name)
	}
	if def.Metadata.Version != "1.0.0" {
		t.Errorf("version must default to 1.0.0, got %q", def.Metadata.Version)
	}
}

func TestParseRejections(t *testing.T) {
	cases := []struct {
		name string
		yaml string
		want string
	}{
		{
			"unknown property type",
			"entity_types:\n  T:\n    properties:\n      p:\n        type: varchar\n",
			"unknown type",
		},
		{
			"enum without values",
			"entity_types:\n  T:\n    properties:\n      p:\n        type: enum\n",
			"enum type requires enum values",
		},
		{
			"enum values on non-enum",
			"entity_types:\n  T:\n    properties:\n      p:\n        type: string\n        enum: [a]\n",
			"only valid for enum type",
		},
		{
			"default kind mismatch",
			"entity_types:\n  T:\n    properties:\n      p:\n        type: integer\n        default: nope\n",
			"default must be an integer",
		},
		{
			"enum default outside members",
			"entity_types:\n  T:\n    properties:\n      p:\n        type: enum\n        enum: [a, b]\n        default: c\n",
			"not an enum member",
		},
		{
			"unknown constraint type",
			"entity_types:\n  T:\n    properties:\n      p:\n        type: string\n    constraints:\n      - type: exists\n        properties: [p]\n",
			"unknown constraint type",
		},
		{
			"constraint over undeclared property",
			"entity_types:\n  T:\n    properties:\n      p:\n        type: string\n    constraints:\n      - type: unique\n        properties: [q]\n",
			"undeclared property",
		},
		{
			"index over undeclared property",
			"entity_types:\n  T:\n    properties:\n      p:\n        type: string\n    indexes: [q]\n",
			"undeclared property",
		},
		{
			"relationship with unknown endpoint",
			"entity_types:\n  T:\n    properties:\n      p:\n        type: string\nrelationships:\n  - from: T\n    to: U\n    type: REL\n",
			"unknown target entity type",
		},
		{
			"duplicate triplet",
			"entity_types:\n  T:\n    properties:\n      p:\n        type: string\nrelationships:\n  - from: T\n    to: T\n    type: REL\n  - from: T\n    to: T\n    type: REL\n",
			"duplicate relationship",
		},
		{
			"not yaml at all",
			"{{{{",
			"",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Parse("bad", []byte(c.yaml))
			if err == nil {
				t.Fatal("expected parse failure")
			}
			if !IsParseError(err) {
				t.Fatalf("expected a ParseError, got %T", err)
			}
			if c.want != "" && !strings.Contains(err.Error(), c.want) {
				t.Errorf("error %q does not mention %q", err.Error(), c.want)
			}
		})
	}
}

func TestParseSameLabelDifferentPairsIsNotDuplicate(t *testing.T) {
	doc := `
entity_types:
  A:
    properties:
      name:
        type: string
  B:
    properties:
      name:
        type: string
relationships:
  - from: A
    to: B
    type: LINKS
  - from: B
    to: A
    type: LINKS
`
	def, err := Parse("pairs", []byte(doc))
	if err != nil {
		t.Fatalf("distinct triplets sharing a label must parse: %v", err)
	}
	if len(def.Rules) != 2 {
		t.Errorf("expected 2 rules, got %d", len(def.Rules))
	}
	if got := def.RelationshipLabels(); len(got) != 1 {
		t.Errorf("expected 1 deduplicated label, got %v", got)
	}
}
