package metrics

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultNamespace = "vhosts"

// Prometheus exposes the search metrics as dedicated series, and the
// custom metrics as series labeled by key.
type Prometheus struct {
	searchDuration prometheus.Histogram
	searchMatch    *prometheus.CounterVec
	searchMiss     prometheus.Counter
	searchError    *prometheus.CounterVec

	customDuration *prometheus.HistogramVec
	customCount    *prometheus.CounterVec
	customGauge    *prometheus.GaugeVec

	registry    *prometheus.Registry
	handlerOnce sync.Once
	handler     http.Handler
}

// NewPrometheus creates a Prometheus backend. The metrics are registered
// with o.PrometheusRegistry, or with a new registry when it is not set.
func NewPrometheus(o Options) *Prometheus {
	ns := defaultNamespace
	if o.Prefix != "" {
		ns = strings.TrimSuffix(o.Prefix, ".")
	}

	search := func(name, help string) prometheus.CounterOpts {
		return prometheus.CounterOpts{Namespace: ns, Subsystem: "search", Name: name, Help: help}
	}

	p := &Prometheus{
		searchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: ns,
			Subsystem: "search",
			Name:      "duration_seconds",
			Help:      "Duration in seconds of resolving a request to a virtual host.",
			Buckets:   o.HistogramBuckets,
		}),
		searchMatch: prometheus.NewCounterVec(
			search("match_total", "Total number of requests resolved to a virtual host."),
			[]string{"environment"},
		),
		searchMiss: prometheus.NewCounter(
			search("miss_total", "Total number of requests not matched by any pattern."),
		),
		searchError: prometheus.NewCounterVec(
			search("error_total", "Total number of requests that could not be resolved."),
			[]string{"code"},
		),
		customDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Subsystem: "custom",
			Name:      "duration_seconds",
			Help:      "Duration in seconds of custom measurements.",
			Buckets:   o.HistogramBuckets,
		}, []string{"key"}),
		customCount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "custom",
			Name:      "total",
			Help:      "Total of custom counters.",
		}, []string{"key"}),
		customGauge: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: ns,
			Subsystem: "custom",
			Name:      "gauges",
			Help:      "Custom gauges.",
		}, []string{"key"}),
		registry: o.PrometheusRegistry,
	}

	if p.registry == nil {
		p.registry = prometheus.NewRegistry()
	}

	p.registry.MustRegister(
		p.searchDuration,
		p.searchMatch,
		p.searchMiss,
		p.searchError,
		p.customDuration,
		p.customCount,
		p.customGauge,
	)

	if o.EnableRuntimeMetrics {
		p.registry.MustRegister(
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewGoCollector(),
		)
	}

	return p
}

func (p *Prometheus) getHandler() http.Handler {
	p.handlerOnce.Do(func() {
		p.handler = promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
	})

	return p.handler
}

func (p *Prometheus) RegisterHandler(path string, mux *http.ServeMux) {
	mux.Handle(path, p.getHandler())
}

func (p *Prometheus) MeasureSince(key string, start time.Time) {
	p.customDuration.WithLabelValues(key).Observe(time.Since(start).Seconds())
}

func (p *Prometheus) IncCounter(key string) {
	p.customCount.WithLabelValues(key).Inc()
}

func (p *Prometheus) IncCounterBy(key string, value int64) {
	p.customCount.WithLabelValues(key).Add(float64(value))
}

func (p *Prometheus) UpdateGauge(key string, v float64) {
	p.customGauge.WithLabelValues(key).Set(v)
}

func (p *Prometheus) MeasureSearch(start time.Time) {
	p.searchDuration.Observe(time.Since(start).Seconds())
}

func (p *Prometheus) IncSearchMatch(environment string) {
	p.searchMatch.WithLabelValues(environment).Inc()
}

func (p *Prometheus) IncSearchMiss() {
	p.searchMiss.Inc()
}

func (p *Prometheus) IncSearchError(code string) {
	p.searchError.WithLabelValues(code).Inc()
}

// Close is a no-op, the registry has nothing to release.
func (p *Prometheus) Close() {}
