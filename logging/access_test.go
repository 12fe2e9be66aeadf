package logging

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testAccessEntry() *AccessEntry {
	r, _ := http.NewRequest("GET", "http://localhost:8080/www/index.html", nil)
	r.RequestURI = "/www/index.html"
	r.RemoteAddr = "127.0.0.1:41234"

	return &AccessEntry{
		Request:      r,
		StatusCode:   http.StatusTeapot,
		ResponseSize: 2326,
		RequestTime:  time.Date(2000, 10, 10, 13, 55, 36, 0, time.FixedZone("", -7*3600)),
		Duration:     42 * time.Millisecond,
		Resolution: Resolution{
			Environment: "development",
			VirtualPath: "www.example.com:/index.html",
		},
	}
}

func logAccess(t *testing.T, o Options, entry *AccessEntry) string {
	t.Helper()

	var buf bytes.Buffer
	o.AccessLogOutput = &buf
	require.NoError(t, Init(o))

	LogAccess(entry)
	return strings.TrimSuffix(buf.String(), "\n")
}

func TestAccessLog(t *testing.T) {
	for _, tt := range []struct {
		name     string
		modify   func(*AccessEntry)
		expected string
	}{{
		name:     "resolved",
		expected: `127.0.0.1 [10/Oct/2000:13:55:36 -0700] "GET /www/index.html HTTP/1.1" 418 2326 42ms localhost:8080 environment=development virtual-path=www.example.com:/index.html`,
	}, {
		name:     "not resolved",
		modify:   func(e *AccessEntry) { e.Resolution = Resolution{} },
		expected: `127.0.0.1 [10/Oct/2000:13:55:36 -0700] "GET /www/index.html HTTP/1.1" 418 2326 42ms localhost:8080 environment=- virtual-path=-`,
	}, {
		name:     "forwarded",
		modify:   func(e *AccessEntry) { e.Request.Header.Set("X-Forwarded-For", "192.168.3.3, 10.0.0.1") },
		expected: `192.168.3.3 [10/Oct/2000:13:55:36 -0700] "GET /www/index.html HTTP/1.1" 418 2326 42ms localhost:8080 environment=development virtual-path=www.example.com:/index.html`,
	}, {
		name:     "no remote address",
		modify:   func(e *AccessEntry) { e.Request.RemoteAddr = "" },
		expected: `- [10/Oct/2000:13:55:36 -0700] "GET /www/index.html HTTP/1.1" 418 2326 42ms localhost:8080 environment=development virtual-path=www.example.com:/index.html`,
	}, {
		name:     "no request",
		modify:   func(e *AccessEntry) { e.Request = nil },
		expected: `- [10/Oct/2000:13:55:36 -0700] "" 418 2326 42ms - environment=development virtual-path=www.example.com:/index.html`,
	}} {
		t.Run(tt.name, func(t *testing.T) {
			entry := testAccessEntry()
			if tt.modify != nil {
				tt.modify(entry)
			}

			assert.Equal(t, tt.expected, logAccess(t, Options{}, entry))
		})
	}
}

func TestAccessLogJSON(t *testing.T) {
	out := logAccess(t, Options{AccessLogJSONEnabled: true}, testAccessEntry())

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &fields))
	assert.Equal(t, "development", fields["environment"])
	assert.Equal(t, "www.example.com:/index.html", fields["virtual-path"])
	assert.Equal(t, float64(http.StatusTeapot), fields["status"])
}

func TestAccessLogIgnoresEmptyEntry(t *testing.T) {
	assert.Empty(t, logAccess(t, Options{}, nil))
}

func TestAccessLogDisabled(t *testing.T) {
	assert.Empty(t, logAccess(t, Options{AccessLogDisabled: true}, testAccessEntry()))
}
