package metrics

import (
	"net/http"
	"time"
)

const codaHaleMediaType = "application/codahale+json"

// All feeds the Prometheus and the CodaHale backend at the same time.
// Its handler serves the CodaHale JSON when the scrape request accepts
// application/codahale+json, and the Prometheus text format otherwise.
type All struct {
	prometheus *Prometheus
	codaHale   *CodaHale
}

func NewAll(o Options) *All {
	return &All{prometheus: NewPrometheus(o), codaHale: NewCodaHale(o)}
}

func (a *All) each(f func(Metrics)) {
	f(a.prometheus)
	f(a.codaHale)
}

func (a *All) MeasureSince(key string, start time.Time) {
	a.each(func(m Metrics) { m.MeasureSince(key, start) })
}

func (a *All) IncCounter(key string) {
	a.each(func(m Metrics) { m.IncCounter(key) })
}

func (a *All) IncCounterBy(key string, value int64) {
	a.each(func(m Metrics) { m.IncCounterBy(key, value) })
}

func (a *All) UpdateGauge(key string, v float64) {
	a.each(func(m Metrics) { m.UpdateGauge(key, v) })
}

func (a *All) MeasureSearch(start time.Time) {
	a.each(func(m Metrics) { m.MeasureSearch(start) })
}

func (a *All) IncSearchMatch(environment string) {
	a.each(func(m Metrics) { m.IncSearchMatch(environment) })
}

func (a *All) IncSearchMiss() {
	a.each(Metrics.IncSearchMiss)
}

func (a *All) IncSearchError(code string) {
	a.each(func(m Metrics) { m.IncSearchError(code) })
}

func (a *All) Close() {
	a.each(Metrics.Close)
}

func (a *All) RegisterHandler(path string, mux *http.ServeMux) {
	ch := a.codaHale.jsonHandler(path)
	ph := a.prometheus.getHandler()
	mux.Handle(path, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") == codaHaleMediaType {
			ch.ServeHTTP(w, r)
			return
		}

		ph.ServeHTTP(w, r)
	}))
}
