package schema

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/dd0wney/cluso-kgraph/pkg/logging"
	"github.com/dd0wney/cluso-kgraph/pkg/metrics"
)

const schemaFileExt = ".yaml"

// Registry loads and owns schema definitions for the lifetime of a session.
// Loads are cached by name; cached definitions are immutable and safe for
// concurrent read access. Concurrent first-loads of the same name are
// coalesced. A failed load is never cached, and a ParseError on one schema
// does not affect previously cached ones.
type Registry struct {
	dir    string
	logger logging.Logger

	mu    sync.RWMutex
	cache map[string]*SchemaDefinition
	group singleflight.Group
}

// NewRegistry creates a registry reading schema sources from dir. A nil
// logger disables logging.
func NewRegistry(dir string, logger logging.Logger) *Registry {
	return &Registry{
		dir:    dir,
		logger: logging.OrNop(logger).With(logging.Component("schema-registry")),
		cache:  make(map[string]*SchemaDefinition),
	}
}

// Load returns the schema definition under name, reading and parsing the
// declarative source on first use. Returns ErrSchemaNotFound when no source
// exists and a ParseError when the source is malformed.
func (r *Registry) Load(name string) (*SchemaDefinition, error) {
	if err := checkSchemaName(name); err != nil {
		return nil, err
	}

	r.mu.RLock()
	def, ok := r.cache[name]
	r.mu.RUnlock()
	if ok {
		return def, nil
	}

	v, err, _ := r.group.Do(name, func() (any, error) {
		// Re-check under the flight: a concurrent loader may have won
		r.mu.RLock()
		def, ok := r.cache[name]
		r.mu.RUnlock()
		if ok {
			return def, nil
		}

		loaded, err := r.loadFromSource(name)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.cache[name] = loaded
		r.mu.Unlock()
		return loaded, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*SchemaDefinition), nil
}

func (r *Registry) loadFromSource(name string) (*SchemaDefinition, error) {
	path := filepath.Join(r.dir, name+schemaFileExt)

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			metrics.Default().SchemaLoadsTotal.WithLabelValues(name, "not_found").Inc()
			return nil, fmt.Errorf("schema %q: %w", name, ErrSchemaNotFound)
		}
		metrics.Default().SchemaLoadsTotal.WithLabelValues(name, "error").Inc()
		return nil, fmt.Errorf("read schema %q: %w", name, err)
	}

	def, err := Parse(name, data)
	if err != nil {
		metrics.Default().SchemaLoadsTotal.WithLabelValues(name, "parse_error").Inc()
		r.logger.Error("schema load failed", logging.Schema(name), logging.Error(err))
		return nil, err
	}

	metrics.Default().SchemaLoadsTotal.WithLabelValues(name, "ok").Inc()
	r.logger.Info("schema loaded",
		logging.Schema(name),
		logging.Int("entity_types", len(def.EntityTypes)),
		logging.Int("relationship_rules", len(def.Rules)))
	return def, nil
}

// ListAvailable enumerates loadable schema names. A missing schemas
// directory yields an empty list, not an error.
func (r *Registry) ListAvailable() []string {
	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return []string{}
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), schemaFileExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), schemaFileExt))
	}
	sort.Strings(names)
	return names
}

// Metadata returns the metadata of a schema, loading it if needed. Version
// defaults to "1.0.0" and description to the empty string when absent from
// the source.
func (r *Registry) Metadata(name string) (Metadata, error) {
	def, err := r.Load(name)
	if err != nil {
		return Metadata{}, err
	}
	return def.Metadata, nil
}

// EntityTypes returns the entity type definitions of a schema, loading it if
// needed. The returned map is shared and must be treated as read-only.
func (r *Registry) EntityTypes(name string) (map[string]EntityTypeDefinition, error) {
	def, err := r.Load(name)
	if err != nil {
		return nil, err
	}
	return def.EntityTypes, nil
}

// RelationshipRules returns the ordered relationship rules of a schema,
// loading it if needed.
func (r *Registry) RelationshipRules(name string) ([]RelationshipRule, error) {
	def, err := r.Load(name)
	if err != nil {
		return nil, err
	}
	return def.Rules, nil
}

// RelationshipsForEntity returns every rule in which entityType participates
// as source or target, order preserved from the source document.
func (r *Registry) RelationshipsForEntity(name, entityType string) ([]RelationshipRule, error) {
	def, err := r.Load(name)
	if err != nil {
		return nil, err
	}
	return def.RelationshipsFor(entityType), nil
}

// RelationshipLabels returns the deduplicated relationship labels across all
// rules of a schema.
func (r *Registry) RelationshipLabels(name string) ([]string, error) {
	def, err := r.Load(name)
	if err != nil {
		return nil, err
	}
	return def.RelationshipLabels(), nil
}

// IsRelationshipAllowed is an exact triplet membership test against the
// named schema.
func (r *Registry) IsRelationshipAllowed(name, fromType, toType, label string) (bool, error) {
	def, err := r.Load(name)
	if err != nil {
		return false, err
	}
	return def.IsRelationshipAllowed(fromType, toType, label), nil
}

// Summarize generates summary statistics for a schema.
func (r *Registry) Summarize(name string) (*Summary, error) {
	def, err := r.Load(name)
	if err != nil {
		return nil, err
	}
	return Summarize(def), nil
}

// checkSchemaName rejects names that would escape the schemas directory.
// Names come from callers (including the lint CLI) and are joined into file
// paths.
func checkSchemaName(name string) error {
	if name == "" {
		return errors.New("schema name cannot be empty")
	}
	if strings.ContainsAny(name, `/\`) || strings.Contains(name, "..") {
		return fmt.Errorf("invalid schema name %q", name)
	}
	return nil
}
