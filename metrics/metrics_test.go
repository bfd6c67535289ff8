package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRequestIncrementsCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := New(reg)

	obs.ObserveRequest("graphql", 200, 10*time.Millisecond)
	obs.ObserveRequest("graphql", 500, 5*time.Millisecond)

	if got := testutil.ToFloat64(obs.requests.WithLabelValues("graphql", "ok")); got != 1 {
		t.Errorf("ok count = %v, want 1", got)
	}
	if got := testutil.ToFloat64(obs.requests.WithLabelValues("graphql", "error")); got != 1 {
		t.Errorf("error count = %v, want 1", got)
	}
}

func TestObserveBreakerStateMapsToGauge(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := New(reg)

	obs.ObserveBreakerState("rest", "open")
	if got := testutil.ToFloat64(obs.breakerState.WithLabelValues("rest")); got != 2 {
		t.Errorf("state = %v, want 2", got)
	}
}
