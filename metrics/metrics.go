package metrics

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Kind is the bit set of the enabled metrics backends.
type Kind int

const (
	UnkownKind   Kind = 0
	CodaHaleKind Kind = 1 << iota
	PrometheusKind
	AllKind = CodaHaleKind | PrometheusKind
)

func (k Kind) String() string {
	switch k {
	case AllKind:
		return "all"
	case CodaHaleKind:
		return "codahale"
	case PrometheusKind:
		return "prometheus"
	default:
		return "unknown"
	}
}

// ParseMetricsKind parses a metrics flavour. It returns UnkownKind for
// unsupported values.
func ParseMetricsKind(t string) Kind {
	switch strings.ToLower(t) {
	case "codahale":
		return CodaHaleKind
	case "prometheus":
		return PrometheusKind
	case "all":
		return AllKind
	default:
		return UnkownKind
	}
}

// Metrics is the interface of the metrics backends.
type Metrics interface {
	// MeasureSince adds a custom timer measurement.
	MeasureSince(key string, start time.Time)

	// IncCounter increments a custom counter.
	IncCounter(key string)

	// IncCounterBy increments a custom counter by value.
	IncCounterBy(key string, value int64)

	// UpdateGauge sets a custom gauge.
	UpdateGauge(key string, v float64)

	// MeasureSearch measures the duration of resolving a request to a
	// virtual host.
	MeasureSearch(start time.Time)

	// IncSearchMatch counts a request resolved in environment.
	IncSearchMatch(environment string)

	// IncSearchMiss counts a request that no pattern matched.
	IncSearchMiss()

	// IncSearchError counts a request that could not be resolved, by
	// error code.
	IncSearchError(code string)

	// RegisterHandler exposes the metrics on the mux.
	RegisterHandler(path string, mux *http.ServeMux)

	Close()
}

// Options for initializing metrics collection.
type Options struct {
	// Format selects the backends. Defaults to CodaHale.
	Format Kind

	// Common prefix for the keys of the different collected metrics.
	// With Prometheus, it is used as the namespace, without the trailing
	// dot.
	Prefix string

	// If set, Go runtime metrics are collected in addition to the
	// search metrics.
	EnableRuntimeMetrics bool

	// If set, the CodaHale timers use an exponentially decaying
	// sample instead of a uniform one.
	UseExpDecaySample bool

	// HistogramBuckets of the Prometheus histograms. Defaults to the
	// Prometheus default buckets.
	HistogramBuckets []float64

	// PrometheusRegistry to register the metrics with. A new registry
	// is created when not set.
	PrometheusRegistry *prometheus.Registry
}

// Default is the metrics backend used when no other is configured. It
// discards every measurement.
var Default Metrics = NewVoid()

// NewDefault creates the backends selected by o.Format.
func NewDefault(o Options) Metrics {
	switch o.Format {
	case AllKind:
		return NewAll(o)
	case PrometheusKind:
		return NewPrometheus(o)
	default:
		return NewCodaHale(o)
	}
}
