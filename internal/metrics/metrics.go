package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "dealhawk"

// Metrics holds the collectors the monitor updates as cycles run. A nil
// *Metrics is a valid no-op receiver, so callers without a registry can
// pass nil instead of guarding every call site.
type Metrics struct {
	cyclesTotal    *prometheus.CounterVec
	cycleDuration  prometheus.Histogram
	listingsSeen   prometheus.Gauge
	changeEvents   *prometheus.CounterVec
	commitAttempts *prometheus.CounterVec
	storeErrors    prometheus.Counter
	notifyErrors   prometheus.Counter
}

// New builds the monitor's collectors and registers them with reg.
// A nil reg falls back to prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		cyclesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "The total number of monitoring cycles by final state.",
		}, []string{"state"}),
		cycleDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cycle_duration_seconds",
			Help:      "The number of seconds it takes to run one monitoring cycle.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
		}),
		listingsSeen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "listings_seen",
			Help:      "The number of listings in the most recent snapshot.",
		}),
		changeEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "change_events_total",
			Help:      "The total number of detected changes by kind.",
		}, []string{"kind"}),
		commitAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commit_attempts_total",
			Help:      "The total number of auto-commit attempts by outcome.",
		}, []string{"status"}),
		storeErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "The total number of deal store failures.",
		}),
		notifyErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notify_errors_total",
			Help:      "The total number of failed notification deliveries.",
		}),
	}

	reg.MustRegister(
		m.cyclesTotal,
		m.cycleDuration,
		m.listingsSeen,
		m.changeEvents,
		m.commitAttempts,
		m.storeErrors,
		m.notifyErrors,
	)
	return m
}

// ObserveCycle records one finished cycle with its final state and duration.
func (m *Metrics) ObserveCycle(state string, d time.Duration) {
	if m == nil {
		return
	}
	m.cyclesTotal.WithLabelValues(state).Inc()
	m.cycleDuration.Observe(d.Seconds())
}

// SetListingsSeen records the size of the latest snapshot.
func (m *Metrics) SetListingsSeen(n int) {
	if m == nil {
		return
	}
	m.listingsSeen.Set(float64(n))
}

// CountEvent records one detected change of the given kind.
func (m *Metrics) CountEvent(kind string) {
	if m == nil {
		return
	}
	m.changeEvents.WithLabelValues(kind).Inc()
}

// CountCommit records one auto-commit attempt with its outcome status.
func (m *Metrics) CountCommit(status string) {
	if m == nil {
		return
	}
	m.commitAttempts.WithLabelValues(status).Inc()
}

// CountStoreError records one deal store failure.
func (m *Metrics) CountStoreError() {
	if m == nil {
		return
	}
	m.storeErrors.Inc()
}

// CountNotifyError records one failed notification delivery.
func (m *Metrics) CountNotifyError() {
	if m == nil {
		return
	}
	m.notifyErrors.Inc()
}
