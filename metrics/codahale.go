package metrics

import (
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/rcrowley/go-metrics"
)

const (
	KeySearch      = "search"
	KeySearchMatch = "search.match.%s"
	KeySearchMiss  = "search.miss"
	KeySearchError = "search.error.%s"

	memStatsInterval = 5 * time.Second

	uniformReservoirSize  = 1024
	expDecayReservoirSize = 1028
	expDecayAlpha         = 0.015
)

// CodaHale collects the metrics in a go-metrics registry, and exposes
// them as JSON grouped by metric family.
type CodaHale struct {
	reg     metrics.Registry
	prefix  string
	sample  func() metrics.Sample
	discard bool

	handlerOnce sync.Once
	handler     http.Handler

	closeOnce sync.Once
	quit      chan struct{}
}

// NewCodaHale creates a CodaHale backend. The timers use a uniform
// sample unless o.UseExpDecaySample is set.
func NewCodaHale(o Options) *CodaHale {
	c := &CodaHale{
		reg:    metrics.NewRegistry(),
		prefix: o.Prefix,
		sample: func() metrics.Sample { return metrics.NewUniformSample(uniformReservoirSize) },
		quit:   make(chan struct{}),
	}

	if o.UseExpDecaySample {
		c.sample = func() metrics.Sample { return metrics.NewExpDecaySample(expDecayReservoirSize, expDecayAlpha) }
	}

	if o.EnableRuntimeMetrics {
		metrics.RegisterRuntimeMemStats(c.reg)
		go c.pollMemStats()
	}

	return c
}

// NewVoid creates a CodaHale backend that registers only no-op metrics.
func NewVoid() *CodaHale {
	return &CodaHale{reg: metrics.NewRegistry(), discard: true, quit: make(chan struct{})}
}

func (c *CodaHale) pollMemStats() {
	t := time.NewTicker(memStatsInterval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			metrics.CaptureRuntimeMemStatsOnce(c.reg)
		case <-c.quit:
			return
		}
	}
}

// keyPart makes a label usable as a single segment of a dotted key.
func keyPart(s string) string {
	if s == "" {
		return "_empty_"
	}

	return strings.NewReplacer(".", "_", ":", "__").Replace(s)
}

func (c *CodaHale) getTimer(key string) metrics.Timer {
	return c.reg.GetOrRegister(key, func() metrics.Timer {
		if c.discard {
			return metrics.NilTimer{}
		}

		return metrics.NewCustomTimer(metrics.NewHistogram(c.sample()), metrics.NewMeter())
	}).(metrics.Timer)
}

func (c *CodaHale) getCounter(key string) metrics.Counter {
	return c.reg.GetOrRegister(key, func() metrics.Counter {
		if c.discard {
			return metrics.NilCounter{}
		}

		return metrics.NewCounter()
	}).(metrics.Counter)
}

func (c *CodaHale) getGauge(key string) metrics.GaugeFloat64 {
	return c.reg.GetOrRegister(key, func() metrics.GaugeFloat64 {
		if c.discard {
			return metrics.NilGaugeFloat64{}
		}

		return metrics.NewGaugeFloat64()
	}).(metrics.GaugeFloat64)
}

func (c *CodaHale) MeasureSince(key string, start time.Time) { c.getTimer(key).UpdateSince(start) }
func (c *CodaHale) IncCounter(key string)                    { c.getCounter(key).Inc(1) }
func (c *CodaHale) IncCounterBy(key string, value int64)     { c.getCounter(key).Inc(value) }
func (c *CodaHale) UpdateGauge(key string, v float64)        { c.getGauge(key).Update(v) }
func (c *CodaHale) MeasureSearch(start time.Time)            { c.MeasureSince(KeySearch, start) }
func (c *CodaHale) IncSearchMiss()                           { c.IncCounter(KeySearchMiss) }

func (c *CodaHale) IncSearchMatch(environment string) {
	c.IncCounter(fmt.Sprintf(KeySearchMatch, keyPart(environment)))
}

func (c *CodaHale) IncSearchError(code string) {
	c.IncCounter(fmt.Sprintf(KeySearchError, keyPart(code)))
}

// Close stops the runtime stats polling. It can be called more than
// once.
func (c *CodaHale) Close() {
	c.closeOnce.Do(func() { close(c.quit) })
}

// RegisterHandler serves the metrics under path. The rest of the request
// path after path selects a single metric by its full key, or the
// metrics whose key starts with it.
func (c *CodaHale) RegisterHandler(path string, mux *http.ServeMux) {
	mux.Handle(path, c.jsonHandler(path))
}

func (c *CodaHale) jsonHandler(path string) http.Handler {
	c.handlerOnce.Do(func() {
		c.handler = &jsonHandler{root: path, reg: c.reg, prefix: c.prefix}
	})

	return c.handler
}
