package app

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const metricsNamespace = "quotation"

// Metrics holds the service's Prometheus collectors. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	operations     *prometheus.CounterVec
	duration       *prometheus.HistogramVec
	filterMatched  prometheus.Histogram
	unmatchedJoins prometheus.Counter
	created        *prometheus.CounterVec
}

// NewMetrics registers the collectors with reg. Pass
// prometheus.DefaultRegisterer in production and prometheus.NewRegistry()
// in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "operations_total",
			Help:      "Use case runs by operation and the step that failed (ok on success).",
		}, []string{"operation", "outcome"}),
		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "operation_duration_seconds",
			Help:      "Use case latency including backend calls.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		filterMatched: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "filter_matched_ratio",
			Help:      "Share of enriched quotations kept by a filter run.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}),
		unmatchedJoins: factory.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "unmatched_client_joins_total",
			Help:      "Quotations whose client_id had no client record.",
		}),
		created: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "created_total",
			Help:      "Quotations created through the service by currency.",
		}, []string{"currency"}),
	}
}

func (m *Metrics) observeOperation(name, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}

	m.operations.WithLabelValues(name, outcome).Inc()
	m.duration.WithLabelValues(name).Observe(elapsed.Seconds())
}

func (m *Metrics) observeFilter(total, matched, unmatched int) {
	if m == nil {
		return
	}

	if total > 0 {
		m.filterMatched.Observe(float64(matched) / float64(total))
	}

	m.unmatchedJoins.Add(float64(unmatched))
}

func (m *Metrics) observeCreated(currency string) {
	if m == nil {
		return
	}

	m.created.WithLabelValues(currency).Inc()
}
