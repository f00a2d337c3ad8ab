// Package metrics provides Prometheus-based metrics recording for room
// interactions and completions.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder records gameplay metrics using Prometheus collectors.
type Recorder struct {
	interactionsTotal *prometheus.CounterVec
	completionsTotal  *prometheus.CounterVec
	hintsTotal        *prometheus.CounterVec
	actionDuration    *prometheus.HistogramVec
}

// NewRecorder registers the collectors against reg. Pass nil to use the
// default registerer.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Recorder{
		interactionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantum_quest_interactions_total",
				Help: "Total number of validated room actions by room, action, and result",
			},
			[]string{"room", "action", "result"},
		),
		completionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantum_quest_completions_total",
				Help: "Total number of room completions",
			},
			[]string{"room"},
		),
		hintsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quantum_quest_hints_total",
				Help: "Total number of hints served by room and tier",
			},
			[]string{"room", "tier"},
		),
		actionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "quantum_quest_action_duration_seconds",
				Help:    "Duration of action validation in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"room"},
		),
	}
}

// ObserveInteraction records one validated action.
func (m *Recorder) ObserveInteraction(room, action string, success bool, duration time.Duration) {
	result := "failure"
	if success {
		result = "success"
	}
	m.interactionsTotal.WithLabelValues(room, action, result).Inc()
	m.actionDuration.WithLabelValues(room).Observe(duration.Seconds())
}

// ObserveCompletion records a finished room.
func (m *Recorder) ObserveCompletion(room string) {
	m.completionsTotal.WithLabelValues(room).Inc()
}

// ObserveHint records a served hint.
func (m *Recorder) ObserveHint(room, tier string) {
	m.hintsTotal.WithLabelValues(room, tier).Inc()
}
