package graph

import (
	"context"
	"fmt"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/config"

	"github.com/dd0wney/cluso-kgraph/pkg/logging"
	"github.com/dd0wney/cluso-kgraph/pkg/metrics"
)

// Neo4jStore implements Store against a Neo4j server over bolt. Sessions are
// short-lived, one per call; the driver pools connections underneath.
type Neo4jStore struct {
	driver   neo4j.DriverWithContext
	database string
	logger   logging.Logger
}

// NewNeo4jStore connects to the configured server. Connectivity is not
// verified here; call VerifyConnectivity or HealthCheck for that.
func NewNeo4jStore(cfg Config, logger logging.Logger) (*Neo4jStore, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	driver, err := neo4j.NewDriverWithContext(
		cfg.URI,
		neo4j.BasicAuth(cfg.Username, cfg.Password, ""),
		func(c *config.Config) {
			c.MaxConnectionPoolSize = cfg.MaxConnectionPoolSize
			c.MaxConnectionLifetime = cfg.MaxConnectionLifetime
			c.ConnectionAcquisitionTimeout = cfg.AcquisitionTimeout
		},
	)
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}

	return &Neo4jStore{
		driver:   driver,
		database: cfg.Database,
		logger:   logging.OrNop(logger).With(logging.Component("neo4j-store")),
	}, nil
}

// Close releases the underlying driver and its connection pool
func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// VerifyConnectivity checks that the server is reachable
func (s *Neo4jStore) VerifyConnectivity(ctx context.Context) error {
	if err := s.driver.VerifyConnectivity(ctx); err != nil {
		return QueryError("VerifyConnectivity", err)
	}
	return nil
}

// ReadQuery executes a Cypher query inside a read transaction and returns
// the result rows
func (s *Neo4jStore) ReadQuery(ctx context.Context, cypher string, params map[string]any) ([]Record, error) {
	return s.execute(ctx, neo4j.AccessModeRead, cypher, params)
}

// WriteQuery executes a Cypher query inside a write transaction and returns
// the result rows
func (s *Neo4jStore) WriteQuery(ctx context.Context, cypher string, params map[string]any) ([]Record, error) {
	return s.execute(ctx, neo4j.AccessModeWrite, cypher, params)
}

func (s *Neo4jStore) execute(ctx context.Context, mode neo4j.AccessMode, cypher string, params map[string]any) ([]Record, error) {
	start := time.Now()
	label := "read"
	if mode == neo4j.AccessModeWrite {
		label = "write"
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{
		DatabaseName: s.database,
		AccessMode:   mode,
	})
	defer session.Close(ctx)

	work := func(tx neo4j.ManagedTransaction) (any, error) {
		result, err := tx.Run(ctx, cypher, params)
		if err != nil {
			return nil, err
		}
		raw, err := result.Collect(ctx)
		if err != nil {
			return nil, err
		}
		records := make([]Record, len(raw))
		for i, rec := range raw {
			records[i] = Record(rec.AsMap())
		}
		return records, nil
	}

	var (
		out any
		err error
	)
	if mode == neo4j.AccessModeWrite {
		out, err = session.ExecuteWrite(ctx, work)
	} else {
		out, err = session.ExecuteRead(ctx, work)
	}

	metrics.Default().StoreQueryDuration.WithLabelValues(label).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.Default().StoreQueriesTotal.WithLabelValues(label, "error").Inc()
		s.logger.Error("query failed", logging.Operation(label), logging.Error(err))
		return nil, QueryError(label, err)
	}
	metrics.Default().StoreQueriesTotal.WithLabelValues(label, "ok").Inc()

	records := out.([]Record)
	s.logger.Debug("query executed",
		logging.Operation(label),
		logging.Count(len(records)),
		logging.Latency(time.Since(start)))
	return records, nil
}

// Health reports store reachability and basic size statistics
type Health struct {
	Connected         bool
	Database          string
	NodeCount         int64
	RelationshipCount int64
}

// HealthCheck verifies connectivity and fetches node/relationship counts
func (s *Neo4jStore) HealthCheck(ctx context.Context) (Health, error) {
	if err := s.VerifyConnectivity(ctx); err != nil {
		return Health{Connected: false, Database: s.database}, err
	}

	records, err := s.ReadQuery(ctx, `
		MATCH (n)
		OPTIONAL MATCH ()-[r]->()
		RETURN count(DISTINCT n) AS node_count, count(DISTINCT r) AS relationship_count`, nil)
	if err != nil {
		return Health{Connected: true, Database: s.database}, err
	}

	h := Health{Connected: true, Database: s.database}
	if len(records) > 0 {
		h.NodeCount = asInt64(records[0]["node_count"])
		h.RelationshipCount = asInt64(records[0]["relationship_count"])
	}
	return h, nil
}

// EnsureVectorIndex creates the vector index for entity embeddings if it
// does not already exist
func (s *Neo4jStore) EnsureVectorIndex(ctx context.Context, indexName string, dimensions int, similarityFunction string) error {
	records, err := s.ReadQuery(ctx, `
		SHOW INDEXES YIELD name, type
		WHERE name = $index_name AND type = 'VECTOR'
		RETURN count(*) > 0 AS exists`,
		map[string]any{"index_name": indexName})
	if err != nil {
		return err
	}
	if len(records) > 0 {
		if exists, ok := records[0]["exists"].(bool); ok && exists {
			return nil
		}
	}

	// Index config options cannot be parametrized, so the dimensions are
	// interpolated after validation
	if dimensions <= 0 {
		return fmt.Errorf("vector index dimensions must be positive, got %d", dimensions)
	}
	if err := CheckIdentifier(indexName); err != nil {
		return err
	}
	if similarityFunction != "cosine" && similarityFunction != "euclidean" {
		return fmt.Errorf("unsupported similarity function %q", similarityFunction)
	}

	create := fmt.Sprintf(`
		CREATE VECTOR INDEX %s IF NOT EXISTS
		FOR (n:Entity) ON (n.embedding_vector)
		OPTIONS {
		  indexConfig: {
		    `+"`vector.dimensions`"+`: %d,
		    `+"`vector.similarity_function`"+`: '%s'
		  }
		}`, indexName, dimensions, similarityFunction)

	if _, err := s.WriteQuery(ctx, create, nil); err != nil {
		return err
	}

	s.logger.Info("vector index ensured", logging.String("index", indexName), logging.Int("dimensions", dimensions))
	return nil
}
