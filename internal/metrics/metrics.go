// Package metrics defines the prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Edit outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
)

type Manager struct {
	factory   promauto.Factory
	namespace string
	subsystem string

	// counters
	CounterRequests *prometheus.CounterVec
	CounterEdits    *prometheus.CounterVec

	// histograms
	HistRequestDuration prometheus.Histogram
	HistReportDuration  prometheus.Histogram
}

func NewTestManagerAndRegistry() (*Manager, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	return NewManager("rpplanner", "test", reg), reg
}

func NewManager(namespace, subsystem string, reg prometheus.Registerer) *Manager {
	factory := promauto.With(reg)

	return &Manager{
		factory:   factory,
		namespace: namespace,
		subsystem: subsystem,
		CounterRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "The total number of HTTP requests",
		}, []string{"method", "status"}),
		CounterEdits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "workout_edits_total",
			Help:      "Workout edits by operation and outcome",
		}, []string{"op", "outcome"}),
		HistRequestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency",
			Buckets:   prometheus.DefBuckets,
		}),
		HistReportDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "report_duration_seconds",
			Help:      "Time spent computing volume reports",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
		}),
	}
}

// TrackSessions exports fn as the live session gauge.
func (m *Manager) TrackSessions(fn func() int) {
	m.factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "live_sessions",
		Help:      "Planning sessions currently held in memory",
	}, func() float64 { return float64(fn()) })
}

// Edit counts one workout edit.
func (m *Manager) Edit(op string, err error) {
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeRejected
	}
	m.CounterEdits.WithLabelValues(op, outcome).Inc()
}
