package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewRegistry_CountersStartAtZero(t *testing.T) {
	r := NewRegistry()

	if got := testutil.ToFloat64(r.SchemaLoadsTotal.WithLabelValues("software_engineering", "ok")); got != 0 {
		t.Errorf("expected fresh counter to be 0, got %f", got)
	}
}

func TestRegistry_Increment(t *testing.T) {
	r := NewRegistry()

	r.ValidationsTotal.WithLabelValues("entity", "valid").Inc()
	r.ValidationsTotal.WithLabelValues("entity", "valid").Inc()
	r.ValidationsTotal.WithLabelValues("entity", "invalid").Inc()

	if got := testutil.ToFloat64(r.ValidationsTotal.WithLabelValues("entity", "valid")); got != 2 {
		t.Errorf("expected 2 valid validations, got %f", got)
	}
	if got := testutil.ToFloat64(r.ValidationsTotal.WithLabelValues("entity", "invalid")); got != 1 {
		t.Errorf("expected 1 invalid validation, got %f", got)
	}
}

func TestDefault_Singleton(t *testing.T) {
	if Default() != Default() {
		t.Error("expected Default to return the same registry")
	}
}

func TestRegistry_Gatherer(t *testing.T) {
	r := NewRegistry()
	r.MergesTotal.WithLabelValues("ok").Inc()

	families, err := r.Gatherer().Gather()
	if err != nil {
		t.Fatalf("gather failed: %v", err)
	}
	if len(families) == 0 {
		t.Error("expected at least one metric family")
	}
}
