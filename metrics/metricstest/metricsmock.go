// Package metricstest provides an in-memory metrics backend for tests.
package metricstest

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/zalando/vhosts/metrics"
)

// MockMetrics records every measurement under its key. The zero value is
// ready to use.
type MockMetrics struct {
	// Prefix is prepended to every recorded key.
	Prefix string

	// Now, when set, replaces the current time in the duration
	// measurements.
	Now time.Time

	mu       sync.Mutex
	counters map[string]int64
	gauges   map[string]float64
	timers   map[string][]time.Duration
}

var _ metrics.Metrics = (*MockMetrics)(nil)

func (m *MockMetrics) locked(f func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.counters == nil {
		m.counters = make(map[string]int64)
		m.gauges = make(map[string]float64)
		m.timers = make(map[string][]time.Duration)
	}

	f()
}

// WithCounters calls f with the recorded counters, under the lock.
func (m *MockMetrics) WithCounters(f func(map[string]int64)) {
	m.locked(func() { f(m.counters) })
}

// WithGauges calls f with the recorded gauges, under the lock.
func (m *MockMetrics) WithGauges(f func(map[string]float64)) {
	m.locked(func() { f(m.gauges) })
}

// WithMeasures calls f with the recorded durations, under the lock.
func (m *MockMetrics) WithMeasures(f func(map[string][]time.Duration)) {
	m.locked(func() { f(m.timers) })
}

func (m *MockMetrics) MeasureSince(key string, start time.Time) {
	now := m.Now
	if now.IsZero() {
		now = time.Now()
	}

	m.locked(func() {
		k := m.Prefix + key
		m.timers[k] = append(m.timers[k], now.Sub(start))
	})
}

func (m *MockMetrics) IncCounter(key string) {
	m.IncCounterBy(key, 1)
}

func (m *MockMetrics) IncCounterBy(key string, value int64) {
	m.locked(func() { m.counters[m.Prefix+key] += value })
}

func (m *MockMetrics) UpdateGauge(key string, value float64) {
	m.locked(func() { m.gauges[m.Prefix+key] = value })
}

func (m *MockMetrics) MeasureSearch(start time.Time) {
	m.MeasureSince(metrics.KeySearch, start)
}

func (m *MockMetrics) IncSearchMatch(environment string) {
	m.IncCounter(fmt.Sprintf(metrics.KeySearchMatch, environment))
}

func (m *MockMetrics) IncSearchMiss() {
	m.IncCounter(metrics.KeySearchMiss)
}

func (m *MockMetrics) IncSearchError(code string) {
	m.IncCounter(fmt.Sprintf(metrics.KeySearchError, code))
}

// RegisterHandler registers a handler that always responds 404.
func (*MockMetrics) RegisterHandler(path string, mux *http.ServeMux) {
	mux.Handle(path, http.NotFoundHandler())
}

func (*MockMetrics) Close() {}

// Counter returns the value of a counter, and whether it was recorded.
func (m *MockMetrics) Counter(key string) (v int64, ok bool) {
	m.locked(func() { v, ok = m.counters[key] })
	return
}

// Gauge returns the last value of a gauge, and whether it was recorded.
func (m *MockMetrics) Gauge(key string) (v float64, ok bool) {
	m.locked(func() { v, ok = m.gauges[key] })
	return
}

// Timer returns the recorded durations of a key, in the order they were
// measured.
func (m *MockMetrics) Timer(key string) (d []time.Duration, ok bool) {
	m.locked(func() {
		d, ok = m.timers[key]
		d = append([]time.Duration(nil), d...)
	})

	return
}
