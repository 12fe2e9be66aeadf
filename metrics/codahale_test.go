package metrics

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rcrowley/go-metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDiscards(t *testing.T) {
	c, ok := Default.(*CodaHale)
	require.True(t, ok, "default backend: %T", Default)

	assert.IsType(t, metrics.NilTimer{}, c.getTimer(KeySearch))
	assert.IsType(t, metrics.NilCounter{}, c.getCounter(KeySearchMiss))
	assert.IsType(t, metrics.NilGaugeFloat64{}, c.getGauge("virtualhosts"))

	c.IncSearchMiss()
	assert.Zero(t, c.getCounter(KeySearchMiss).Snapshot().Count())
}

func TestRuntimeStats(t *testing.T) {
	const key = "runtime.MemStats.Alloc"

	c := NewCodaHale(Options{})
	assert.Nil(t, c.reg.Get(key))
	c.Close()

	c = NewCodaHale(Options{EnableRuntimeMetrics: true})
	assert.NotNil(t, c.reg.Get(key))
	c.Close()
	c.Close()
}

func TestKeyPart(t *testing.T) {
	for in, out := range map[string]string{
		"":               "_empty_",
		"production":     "production",
		"dev.local":      "dev_local",
		"localhost:8080": "localhost__8080",
	} {
		assert.Equal(t, out, keyPart(in), in)
	}
}

func TestCodaHaleCustomMetrics(t *testing.T) {
	c := NewCodaHale(Options{})
	defer c.Close()

	c.UpdateGauge("virtualhosts", 1)
	c.UpdateGauge("virtualhosts", 4)
	c.IncCounter("reload")
	c.IncCounterBy("reload", 2)
	c.MeasureSince("load", time.Now().Add(-time.Millisecond))

	assert.Equal(t, float64(4), c.getGauge("virtualhosts").Snapshot().Value())
	assert.Equal(t, int64(3), c.getCounter("reload").Snapshot().Count())
	assert.Equal(t, int64(1), c.getTimer("load").Snapshot().Count())
}

func TestCodaHaleSearchMetrics(t *testing.T) {
	c := NewCodaHale(Options{UseExpDecaySample: true})
	defer c.Close()

	c.MeasureSearch(time.Now())
	c.MeasureSearch(time.Now())
	c.IncSearchMatch("prod")
	c.IncSearchMatch("prod")
	c.IncSearchMatch("dev.local")
	c.IncSearchMiss()
	c.IncSearchError("request_field")

	for key, expected := range map[string]int64{
		fmt.Sprintf(KeySearchMatch, "prod"):          2,
		fmt.Sprintf(KeySearchMatch, "dev_local"):     1,
		KeySearchMiss:                                1,
		fmt.Sprintf(KeySearchError, "request_field"): 1,
	} {
		assert.Equal(t, expected, c.getCounter(key).Snapshot().Count(), key)
	}

	assert.Equal(t, int64(2), c.getTimer(KeySearch).Snapshot().Count())
}

func TestCodaHaleHandler(t *testing.T) {
	c := NewCodaHale(Options{Prefix: "vhosts."})
	defer c.Close()

	c.IncSearchMiss()
	c.MeasureSearch(time.Now())
	c.UpdateGauge("registry.virtualhosts", 3)

	mux := http.NewServeMux()
	c.RegisterHandler("/metrics/", mux)

	for _, tt := range []struct {
		name   string
		method string
		path   string
		code   int
		keys   map[string][]string
	}{{
		name:   "all metrics",
		method: "GET",
		path:   "/metrics/",
		code:   http.StatusOK,
		keys: map[string][]string{
			"counters": {"vhosts.search.miss"},
			"timers":   {"vhosts.search"},
			"gauges":   {"vhosts.registry.virtualhosts"},
		},
	}, {
		name:   "single metric by full key",
		method: "GET",
		path:   "/metrics/vhosts.search.miss",
		code:   http.StatusOK,
		keys:   map[string][]string{"counters": {"vhosts.search.miss"}},
	}, {
		name:   "metrics by key prefix",
		method: "GET",
		path:   "/metrics/registry",
		code:   http.StatusOK,
		keys:   map[string][]string{"gauges": {"vhosts.registry.virtualhosts"}},
	}, {
		name:   "unknown metric",
		method: "GET",
		path:   "/metrics/unknown",
		code:   http.StatusNotFound,
	}, {
		name:   "post",
		method: "POST",
		path:   "/metrics/",
		code:   http.StatusMethodNotAllowed,
	}} {
		t.Run(tt.name, func(t *testing.T) {
			rsp := httptest.NewRecorder()
			mux.ServeHTTP(rsp, httptest.NewRequest(tt.method, tt.path, nil))
			require.Equal(t, tt.code, rsp.Code)
			if tt.code != http.StatusOK {
				return
			}

			var report map[string]map[string]map[string]any
			require.NoError(t, json.Unmarshal(rsp.Body.Bytes(), &report))
			require.Len(t, report, len(tt.keys))
			for family, keys := range tt.keys {
				require.Contains(t, report, family)
				for _, k := range keys {
					assert.Contains(t, report[family], k)
				}
			}
		})
	}
}

func TestTimerReport(t *testing.T) {
	c := NewCodaHale(Options{})
	defer c.Close()
	c.MeasureSearch(time.Now().Add(-2 * time.Millisecond))

	family, values := snapshot(c.getTimer(KeySearch))
	assert.Equal(t, "timers", family)
	for _, k := range []string{"count", "min", "max", "median", "99.9%", "1m.rate", "mean.rate"} {
		assert.Contains(t, values, k)
	}

	family, _ = snapshot(struct{}{})
	assert.Equal(t, "unknown", family)
}

func TestNewDefault(t *testing.T) {
	for _, tt := range []struct {
		kind Kind
		want Metrics
	}{
		{UnkownKind, &CodaHale{}},
		{CodaHaleKind, &CodaHale{}},
		{PrometheusKind, &Prometheus{}},
		{AllKind, &All{}},
	} {
		m := NewDefault(Options{Format: tt.kind})
		assert.IsType(t, tt.want, m, tt.kind.String())
		m.Close()
	}
}
