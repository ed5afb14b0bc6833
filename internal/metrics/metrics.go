// Package metrics provides Prometheus metrics for ratebot.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the chat core.
type Metrics struct {
	// Turn metrics
	TurnsTotal         *prometheus.CounterVec
	CompletionDuration prometheus.Histogram

	// Collaborator metrics
	RateFetchFailuresTotal prometheus.Counter

	// Session metrics
	SessionsCreatedTotal prometheus.Counter
	KnownUsers           prometheus.Gauge
}

// New creates and registers all metrics on reg. Tests pass their own
// prometheus.NewRegistry to avoid double registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{}

	m.TurnsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ratebot_turns_total",
			Help: "Total number of conversation turns",
		},
		[]string{"status"},
	)

	m.CompletionDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ratebot_completion_duration_seconds",
			Help:    "Duration of remote completion calls in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
	)

	m.RateFetchFailuresTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "ratebot_rate_fetch_failures_total",
			Help: "Total number of failed exchange-rate fetches",
		},
	)

	m.SessionsCreatedTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "ratebot_sessions_created_total",
			Help: "Total number of sessions created across all users",
		},
	)

	m.KnownUsers = factory.NewGauge(
		prometheus.GaugeOpts{
			Name: "ratebot_known_users",
			Help: "Number of users with a registry in the conversation cache",
		},
	)

	return m
}
