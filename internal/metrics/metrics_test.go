package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics(t *testing.T) {
	t.Run("records cycle outcomes", func(t *testing.T) {
		m := New(prometheus.NewRegistry())

		m.ObserveCycle("done", 2*time.Second)
		m.ObserveCycle("done", time.Second)
		m.ObserveCycle("failed", 500*time.Millisecond)

		if got := testutil.ToFloat64(m.cyclesTotal.WithLabelValues("done")); got != 2 {
			t.Errorf("cycles_total{state=done} = %v, want 2", got)
		}
		if got := testutil.ToFloat64(m.cyclesTotal.WithLabelValues("failed")); got != 1 {
			t.Errorf("cycles_total{state=failed} = %v, want 1", got)
		}
		if got := testutil.CollectAndCount(m.cycleDuration); got != 1 {
			t.Errorf("cycle_duration_seconds series count = %d, want 1", got)
		}
	})

	t.Run("records snapshot size", func(t *testing.T) {
		m := New(prometheus.NewRegistry())

		m.SetListingsSeen(42)
		if got := testutil.ToFloat64(m.listingsSeen); got != 42 {
			t.Errorf("listings_seen = %v, want 42", got)
		}

		m.SetListingsSeen(7)
		if got := testutil.ToFloat64(m.listingsSeen); got != 7 {
			t.Errorf("listings_seen after update = %v, want 7", got)
		}
	})

	t.Run("records events and commits by label", func(t *testing.T) {
		m := New(prometheus.NewRegistry())

		m.CountEvent("new_listing")
		m.CountEvent("new_listing")
		m.CountEvent("quantity_changed")
		m.CountCommit("committed")
		m.CountCommit("failed")

		if got := testutil.ToFloat64(m.changeEvents.WithLabelValues("new_listing")); got != 2 {
			t.Errorf("change_events_total{kind=new_listing} = %v, want 2", got)
		}
		if got := testutil.ToFloat64(m.changeEvents.WithLabelValues("quantity_changed")); got != 1 {
			t.Errorf("change_events_total{kind=quantity_changed} = %v, want 1", got)
		}
		if got := testutil.ToFloat64(m.commitAttempts.WithLabelValues("committed")); got != 1 {
			t.Errorf("commit_attempts_total{status=committed} = %v, want 1", got)
		}
	})

	t.Run("records error counters", func(t *testing.T) {
		m := New(prometheus.NewRegistry())

		m.CountStoreError()
		m.CountStoreError()
		m.CountNotifyError()

		if got := testutil.ToFloat64(m.storeErrors); got != 2 {
			t.Errorf("store_errors_total = %v, want 2", got)
		}
		if got := testutil.ToFloat64(m.notifyErrors); got != 1 {
			t.Errorf("notify_errors_total = %v, want 1", got)
		}
	})
}

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics

	m.ObserveCycle("done", time.Second)
	m.SetListingsSeen(3)
	m.CountEvent("new_listing")
	m.CountCommit("failed")
	m.CountStoreError()
	m.CountNotifyError()
}
