package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordOutcome("prediction", "generative")
	m.RecordStoreQuery("memory", "list_rows", time.Millisecond, errors.New("boom"))
	m.RecordHTTPRequest("/health", "GET", 200, time.Millisecond)
}

func TestRecordOutcomeAndStoreErrors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics("insights_test", reg)

	m.RecordOutcome("prediction", "statistical_model")
	m.RecordOutcome("prediction", "statistical_model")
	m.RecordStoreQuery("postgres", "list_rows", time.Millisecond, nil)
	m.RecordStoreQuery("postgres", "list_rows", time.Millisecond, errors.New("timeout"))

	if got := testutil.ToFloat64(m.NormalizeOutcomes.WithLabelValues("prediction", "statistical_model")); got != 2 {
		t.Fatalf("outcomes = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.StoreErrors.WithLabelValues("postgres", "list_rows")); got != 1 {
		t.Fatalf("store errors = %v, want 1", got)
	}
}
