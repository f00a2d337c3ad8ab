package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveInteractionCountsByResult(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewRecorder(reg)

	rec.ObserveInteraction("probability-bay", "enter_code", true, 2*time.Millisecond)
	rec.ObserveInteraction("probability-bay", "enter_code", true, time.Millisecond)
	rec.ObserveInteraction("probability-bay", "enter_code", false, time.Millisecond)

	success := testutil.ToFloat64(rec.interactionsTotal.WithLabelValues("probability-bay", "enter_code", "success"))
	if success != 2 {
		t.Errorf("success count = %v, want 2", success)
	}
	failure := testutil.ToFloat64(rec.interactionsTotal.WithLabelValues("probability-bay", "enter_code", "failure"))
	if failure != 1 {
		t.Errorf("failure count = %v, want 1", failure)
	}
}

func TestObserveCompletionAndHint(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec := NewRecorder(reg)

	rec.ObserveCompletion("quantum-archive")
	rec.ObserveHint("quantum-archive", "gentle")
	rec.ObserveHint("quantum-archive", "gentle")
	rec.ObserveHint("quantum-archive", "conceptual")

	if got := testutil.ToFloat64(rec.completionsTotal.WithLabelValues("quantum-archive")); got != 1 {
		t.Errorf("completions = %v, want 1", got)
	}
	if got := testutil.ToFloat64(rec.hintsTotal.WithLabelValues("quantum-archive", "gentle")); got != 2 {
		t.Errorf("gentle hints = %v, want 2", got)
	}
}
