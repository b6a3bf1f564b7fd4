package authcore

import (
	"sync"
	"testing"
	"time"
)

func TestMetricsIncAndValue(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	m.Inc(MetricLoginSuccess)
	m.Inc(MetricLoginSuccess)
	m.Inc(MetricLogout)

	if got := m.Value(MetricLoginSuccess); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
	if got := m.Value(MetricLogout); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	if got := m.Value(MetricCheckFailure); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}

func TestMetricsDisabledNoop(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})

	m.Inc(MetricLoginSuccess)
	m.Observe(MetricCheckLatency, 10*time.Millisecond)

	if m.Value(MetricLoginSuccess) != 0 {
		t.Fatal("disabled metrics must not record")
	}
	snap := m.Snapshot()
	if len(snap.Counters) != 0 || len(snap.Histograms) != 0 {
		t.Fatal("disabled snapshot must be empty")
	}
}

func TestMetricsNilSafety(t *testing.T) {
	var m *Metrics

	m.Inc(MetricLoginSuccess)
	m.Observe(MetricCheckLatency, time.Millisecond)
	if m.Value(MetricLoginSuccess) != 0 {
		t.Fatal("nil metrics must report zero")
	}
	if m.Enabled() {
		t.Fatal("nil metrics must report disabled")
	}
	snap := m.Snapshot()
	if snap.Counters == nil || snap.Histograms == nil {
		t.Fatal("nil snapshot maps must be non-nil")
	}
}

func TestMetricsSnapshotIsolated(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(MetricCheckSuccess)

	snap := m.Snapshot()
	snap.Counters[MetricCheckSuccess] = 99

	if m.Value(MetricCheckSuccess) != 1 {
		t.Fatal("snapshot mutation leaked into live counters")
	}
}

func TestMetricsLatencyHistogram(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true, EnableLatencyHistograms: true})

	samples := []time.Duration{
		2 * time.Millisecond,   // bucket 0
		8 * time.Millisecond,   // bucket 1
		40 * time.Millisecond,  // bucket 3
		900 * time.Millisecond, // bucket 7
	}
	for _, d := range samples {
		m.Observe(MetricCheckLatency, d)
	}

	buckets := m.Snapshot().Histograms[MetricCheckLatency]
	if len(buckets) != histBucketCount {
		t.Fatalf("expected %d buckets, got %d", histBucketCount, len(buckets))
	}
	want := map[int]uint64{0: 1, 1: 1, 3: 1, 7: 1}
	for i, count := range buckets {
		if count != want[i] {
			t.Fatalf("bucket %d: expected %d, got %d", i, want[i], count)
		}
	}
}

func TestMetricsHistogramDisabledByDefault(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Observe(MetricCheckLatency, time.Millisecond)

	if len(m.Snapshot().Histograms) != 0 {
		t.Fatal("histograms must be opt-in")
	}
}

func TestMetricsConcurrentInc(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const goroutines = 16
	const perGoroutine = 1000

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				m.Inc(MetricCheckSuccess)
			}
		}()
	}
	wg.Wait()

	if got := m.Value(MetricCheckSuccess); got != goroutines*perGoroutine {
		t.Fatalf("expected %d, got %d", goroutines*perGoroutine, got)
	}
}
