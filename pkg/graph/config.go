package graph

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Config holds connection settings for the backing Neo4j store
type Config struct {
	URI      string `validate:"required,uri"`
	Username string `validate:"required"`
	Password string `validate:"required"`
	// Database selects a named database; empty means the server default
	Database string

	MaxConnectionPoolSize int           `validate:"min=1"`
	MaxConnectionLifetime time.Duration `validate:"min=0"`
	AcquisitionTimeout    time.Duration `validate:"min=0"`
}

// DefaultConfig returns the connection defaults used by the development
// docker-compose setup
func DefaultConfig() Config {
	return Config{
		URI:                   "bolt://localhost:7688",
		Username:              "neo4j",
		Password:              "password",
		MaxConnectionPoolSize: 50,
		MaxConnectionLifetime: time.Hour,
		AcquisitionTimeout:    60 * time.Second,
	}
}

// ConfigFromEnv builds a Config from KGRAPH_NEO4J_* environment variables,
// falling back to DefaultConfig for anything unset
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("KGRAPH_NEO4J_URI"); v != "" {
		cfg.URI = v
	}
	if v := os.Getenv("KGRAPH_NEO4J_USER"); v != "" {
		cfg.Username = v
	}
	if v := os.Getenv("KGRAPH_NEO4J_PASSWORD"); v != "" {
		cfg.Password = v
	}
	if v := os.Getenv("KGRAPH_NEO4J_DATABASE"); v != "" {
		cfg.Database = v
	}
	if v := os.Getenv("KGRAPH_NEO4J_POOL_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxConnectionPoolSize = n
		}
	}

	return cfg
}

// Validate checks the config via struct tags
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid store config: %w", err)
	}
	return nil
}
