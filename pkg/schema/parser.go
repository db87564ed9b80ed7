package schema

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// defaultVersion is used when the source omits a metadata version
const defaultVersion = "1.0.0"

type documentYAML struct {
	Metadata      metadataYAML       `yaml:"metadata"`
	EntityTypes   yaml.Node          `yaml:"entity_types"`
	Relationships []relationshipYAML `yaml:"relationships"`
}

type metadataYAML struct {
	Name        string   `yaml:"name"`
	Version     string   `yaml:"version"`
	Description string   `yaml:"description"`
	Categories  []string `yaml:"categories"`
}

type entityYAML struct {
	Description string           `yaml:"description"`
	Category    string           `yaml:"category"`
	Properties  yaml.Node        `yaml:"properties"`
	Constraints []constraintYAML `yaml:"constraints"`
	Indexes     []string         `yaml:"indexes"`
}

type constraintYAML struct {
	Type       string   `yaml:"type"`
	Properties []string `yaml:"properties"`
}

type propertyYAML struct {
	Type        string        `yaml:"type"`
	Description string        `yaml:"description"`
	Required    bool          `yaml:"required"`
	Unique      bool          `yaml:"unique"`
	Enum        []string      `yaml:"enum"`
	Default     *defaultValue `yaml:"default"`
	Sensitive   bool          `yaml:"sensitive"`
}

// defaultValue distinguishes an absent default from an explicit null one
type defaultValue struct {
	v any
}

func (d *defaultValue) UnmarshalYAML(node *yaml.Node) error {
	var v any
	if err := node.Decode(&v); err != nil {
		return err
	}
	d.v = v
	return nil
}

// Parse builds a strongly typed SchemaDefinition from a YAML document.
// Malformed documents are rejected here, before any validator sees them:
// unknown property types, enum misuse, mistyped defaults, indexes over
// undeclared properties, rules naming unknown entity types and duplicate
// relationship triplets are all load-time failures.
func Parse(name string, data []byte) (*SchemaDefinition, error) {
	var doc documentYAML
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Schema: name, Cause: err}
	}

	def := &SchemaDefinition{
		Metadata:    buildMetadata(name, doc.Metadata),
		EntityTypes: make(map[string]EntityTypeDefinition),
		EntityOrder: make([]string, 0),
		Rules:       make([]RelationshipRule, 0, len(doc.Relationships)),
	}

	if err := parseEntityTypes(name, &doc.EntityTypes, def); err != nil {
		return nil, err
	}
	if err := parseRelationships(name, doc.Relationships, def); err != nil {
		return nil, err
	}

	return def, nil
}

func buildMetadata(name string, m metadataYAML) Metadata {
	meta := Metadata{
		Name:        m.Name,
		Version:     m.Version,
		Description: m.Description,
		Categories:  m.Categories,
	}
	if meta.Name == "" {
		meta.Name = name
	}
	if meta.Version == "" {
		meta.Version = defaultVersion
	}
	if meta.Categories == nil {
		meta.Categories = []string{}
	}
	return meta
}

func parseEntityTypes(schemaName string, node *yaml.Node, def *SchemaDefinition) error {
	if node.Kind == 0 || node.IsZero() {
		return nil
	}
	if node.Kind != yaml.MappingNode {
		return parseError(schemaName, "entity_types must be a mapping")
	}

	// Mapping nodes store alternating key/value children; walking them
	// directly preserves declaration order, which a plain map would lose.
	for i := 0; i < len(node.Content)-1; i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]
		entityName := keyNode.Value

		if _, exists := def.EntityTypes[entityName]; exists {
			return parseError(schemaName, "duplicate entity type %q", entityName)
		}

		var raw entityYAML
		if err := valueNode.Decode(&raw); err != nil {
			return &ParseError{Schema: schemaName, Detail: fmt.Sprintf("entity type %q", entityName), Cause: err}
		}

		entity, err := buildEntityType(schemaName, entityName, raw)
		if err != nil {
			return err
		}

		def.EntityTypes[entityName] = entity
		def.EntityOrder = append(def.EntityOrder, entityName)
	}
	return nil
}

func buildEntityType(schemaName, entityName string, raw entityYAML) (EntityTypeDefinition, error) {
	entity := EntityTypeDefinition{
		Name:          entityName,
		Description:   raw.Description,
		Category:      raw.Category,
		Properties:    make(map[string]PropertyDefinition),
		PropertyOrder: make([]string, 0),
		Indexes:       raw.Indexes,
	}

	props := raw.Properties
	if props.Kind != 0 && !props.IsZero() {
		if props.Kind != yaml.MappingNode {
			return entity, parseError(schemaName, "entity type %q: properties must be a mapping", entityName)
		}
		for i := 0; i < len(props.Content)-1; i += 2 {
			propName := props.Content[i].Value

			var rawProp propertyYAML
			if err := props.Content[i+1].Decode(&rawProp); err != nil {
				return entity, &ParseError{
					Schema: schemaName,
					Detail: fmt.Sprintf("entity type %q property %q", entityName, propName),
					Cause:  err,
				}
			}

			prop, err := buildProperty(schemaName, entityName, propName, rawProp)
			if err != nil {
				return entity, err
			}

			if _, exists := entity.Properties[propName]; exists {
				return entity, parseError(schemaName, "entity type %q: duplicate property %q", entityName, propName)
			}
			entity.Properties[propName] = prop
			entity.PropertyOrder = append(entity.PropertyOrder, propName)
		}
	}

	for _, c := range raw.Constraints {
		if ConstraintType(c.Type) != ConstraintUnique {
			return entity, parseError(schemaName, "entity type %q: unknown constraint type %q", entityName, c.Type)
		}
		if len(c.Properties) == 0 {
			return entity, parseError(schemaName, "entity type %q: constraint declares no properties", entityName)
		}
		for _, p := range c.Properties {
			if _, ok := entity.Properties[p]; !ok {
				return entity, parseError(schemaName, "entity type %q: constraint references undeclared property %q", entityName, p)
			}
		}
		entity.Constraints = append(entity.Constraints, Constraint{
			Type:       ConstraintType(c.Type),
			Properties: c.Properties,
		})
	}

	for _, idx := range entity.Indexes {
		if _, ok := entity.Properties[idx]; !ok {
			return entity, parseError(schemaName, "entity type %q: index references undeclared property %q", entityName, idx)
		}
	}

	return entity, nil
}

func buildProperty(schemaName, entityName, propName string, raw propertyYAML) (PropertyDefinition, error) {
	propType := PropertyType(raw.Type)
	if !propType.Valid() {
		return PropertyDefinition{}, parseError(schemaName,
			"entity type %q property %q: unknown type %q", entityName, propName, raw.Type)
	}

	if propType == TypeEnum && len(raw.Enum) == 0 {
		return PropertyDefinition{}, parseError(schemaName,
			"entity type %q property %q: enum type requires enum values", entityName, propName)
	}
	if propType != TypeEnum && len(raw.Enum) > 0 {
		return PropertyDefinition{}, parseError(schemaName,
			"entity type %q property %q: enum values are only valid for enum type", entityName, propName)
	}

	prop := PropertyDefinition{
		Type:        propType,
		Description: raw.Description,
		Required:    raw.Required,
		Unique:      raw.Unique,
		EnumValues:  raw.Enum,
		Sensitive:   raw.Sensitive,
	}

	if raw.Default != nil {
		dv := FromAny(raw.Default.v)
		if err := checkDefaultKind(prop, dv); err != nil {
			return PropertyDefinition{}, parseError(schemaName,
				"entity type %q property %q: %v", entityName, propName, err)
		}
		prop.Default = &dv
	}

	return prop, nil
}

// checkDefaultKind verifies a default literal matches the declared type
func checkDefaultKind(prop PropertyDefinition, v Value) error {
	if v.IsNull() {
		return nil
	}
	switch prop.Type {
	case TypeString, TypeDatetime:
		if v.Kind() != KindString {
			return fmt.Errorf("default must be a string, got %s", v.Kind())
		}
	case TypeInteger:
		if v.Kind() != KindInt {
			return fmt.Errorf("default must be an integer, got %s", v.Kind())
		}
	case TypeFloat:
		if v.Kind() != KindFloat && v.Kind() != KindInt {
			return fmt.Errorf("default must be a number, got %s", v.Kind())
		}
	case TypeBoolean:
		if v.Kind() != KindBool {
			return fmt.Errorf("default must be a boolean, got %s", v.Kind())
		}
	case TypeArray:
		if v.Kind() != KindList {
			return fmt.Errorf("default must be an array, got %s", v.Kind())
		}
	case TypeObject:
		if v.Kind() != KindMap {
			return fmt.Errorf("default must be an object, got %s", v.Kind())
		}
	case TypeEnum:
		s, err := v.AsString()
		if err != nil {
			return fmt.Errorf("default must be a string enum member, got %s", v.Kind())
		}
		if !prop.AllowsEnumValue(s) {
			return fmt.Errorf("default %q is not an enum member", s)
		}
	}
	return nil
}

func parseRelationships(schemaName string, raw []relationshipYAML, def *SchemaDefinition) error {
	seen := make(map[tripletKey]struct{}, len(raw))
	for i, r := range raw {
		if r.From == "" || r.To == "" || r.Type == "" {
			return parseError(schemaName, "relationship %d: from, to and type are all required", i)
		}
		if !def.HasEntityType(r.From) {
			return parseError(schemaName, "relationship %d: unknown source entity type %q", i, r.From)
		}
		if !def.HasEntityType(r.To) {
			return parseError(schemaName, "relationship %d: unknown target entity type %q", i, r.To)
		}

		rule := RelationshipRule{
			FromType:    r.From,
			ToType:      r.To,
			Label:       r.Type,
			Description: r.Description,
		}
		if _, dup := seen[rule.key()]; dup {
			return parseError(schemaName, "duplicate relationship (%s)-[%s]->(%s)", r.From, r.Type, r.To)
		}
		seen[rule.key()] = struct{}{}
		def.Rules = append(def.Rules, rule)
	}
	return nil
}

type relationshipYAML struct {
	From        string `yaml:"from"`
	To          string `yaml:"to"`
	Type        string `yaml:"type"`
	Description string `yaml:"description"`
}
