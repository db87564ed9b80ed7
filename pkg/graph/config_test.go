package graph

import (
	"testing"
	"time"
)

func TestDefaultConfigValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestConfigValidation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.URI = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected missing URI to fail validation")
	}

	cfg = DefaultConfig()
	cfg.Password = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected missing password to fail validation")
	}

	cfg = DefaultConfig()
	cfg.MaxConnectionPoolSize = 0
	if err := cfg.Validate(); err == nil {
		t.Error("expected zero pool size to fail validation")
	}
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("KGRAPH_NEO4J_URI", "bolt://graph.internal:7687")
	t.Setenv("KGRAPH_NEO4J_USER", "kgraph")
	t.Setenv("KGRAPH_NEO4J_PASSWORD", "secret")
	t.Setenv("KGRAPH_NEO4J_DATABASE", "knowledge")
	t.Setenv("KGRAPH_NEO4J_POOL_SIZE", "25")

	cfg := ConfigFromEnv()
	if cfg.URI != "bolt://graph.internal:7687" {
		t.Errorf("URI not picked up: %s", cfg.URI)
	}
	if cfg.Username != "kgraph" || cfg.Password != "secret" || cfg.Database != "knowledge" {
		t.Errorf("credentials not picked up: %+v", cfg)
	}
	if cfg.MaxConnectionPoolSize != 25 {
		t.Errorf("pool size not picked up: %d", cfg.MaxConnectionPoolSize)
	}
	if cfg.MaxConnectionLifetime != time.Hour {
		t.Errorf("expected default lifetime, got %v", cfg.MaxConnectionLifetime)
	}
}
