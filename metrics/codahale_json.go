package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rcrowley/go-metrics"
	log "github.com/sirupsen/logrus"
)

var (
	percentiles     = []float64{0.5, 0.75, 0.95, 0.99, 0.999}
	percentileNames = []string{"median", "75%", "95%", "99%", "99.9%"}
)

// family -> prefixed key -> values
type jsonReport map[string]map[string]map[string]any

func (r jsonReport) add(key string, metric any) {
	family, values := snapshot(metric)
	if r[family] == nil {
		r[family] = make(map[string]map[string]any)
	}

	r[family][key] = values
}

func snapshot(metric any) (string, map[string]any) {
	switch m := metric.(type) {
	case metrics.Counter:
		return "counters", map[string]any{"count": m.Snapshot().Count()}
	case metrics.Gauge:
		return "gauges", map[string]any{"value": m.Snapshot().Value()}
	case metrics.GaugeFloat64:
		return "gauges", map[string]any{"value": m.Snapshot().Value()}
	case metrics.Timer:
		t := m.Snapshot()
		v := map[string]any{
			"count":     t.Count(),
			"min":       t.Min(),
			"max":       t.Max(),
			"mean":      t.Mean(),
			"stddev":    t.StdDev(),
			"1m.rate":   t.Rate1(),
			"5m.rate":   t.Rate5(),
			"15m.rate":  t.Rate15(),
			"mean.rate": t.RateMean(),
		}

		for i, p := range t.Percentiles(percentiles) {
			v[percentileNames[i]] = p
		}

		return "timers", v
	default:
		return "unknown", map[string]any{"error": fmt.Sprintf("unknown metric type %T", m)}
	}
}

type jsonHandler struct {
	root   string
	reg    metrics.Registry
	prefix string
}

func (h *jsonHandler) report(query string) jsonReport {
	key := strings.TrimPrefix(query, h.prefix)
	r := make(jsonReport)
	if m := h.reg.Get(key); m != nil {
		r.add(query, m)
		return r
	}

	h.reg.Each(func(name string, m any) {
		if strings.HasPrefix(name, key) {
			r.add(h.prefix+name, m)
		}
	})

	return r
}

func (h *jsonHandler) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet && req.Method != http.MethodHead {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	query := strings.TrimPrefix(strings.TrimPrefix(req.URL.Path, h.root), "/")
	r := h.report(query)
	if len(r) == 0 {
		http.NotFound(w, req)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(r); err != nil {
		log.Errorf("failed to write the metrics: %v", err)
	}
}
