package logging

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/zalando/vhosts/net"
)

const dateFormat = "02/Jan/2006:15:04:05 -0700"

// Resolution tells where a request was resolved to. The zero value means
// that it was not resolved.
type Resolution struct {
	Environment string

	// VirtualPath in the domain:path form.
	VirtualPath string
}

// AccessEntry is one request in the access log.
type AccessEntry struct {
	Request      *http.Request
	StatusCode   int
	ResponseSize int64

	// Duration of serving the request.
	Duration time.Duration

	// RequestTime is when the request was received.
	RequestTime time.Time

	Resolution Resolution
}

var accessLog *logrus.Logger

// the order of the fields in the text format
var accessKeys = []string{
	"client", "timestamp", "request", "status", "response-size",
	"duration", "requested-host", "environment", "virtual-path",
}

type accessLogFormatter struct{}

func orDash(s string) string {
	if s == "" {
		return "-"
	}

	return s
}

// client is the first address of X-Forwarded-For, or the peer address.
func client(r *http.Request) string {
	if ff := r.Header.Get("X-Forwarded-For"); ff != "" {
		first, _, _ := strings.Cut(ff, ",")
		return strings.TrimSpace(first)
	}

	if a := net.RemoteAddr(r); a.IsValid() {
		return a.String()
	}

	return ""
}

// Format writes the fields space separated, the request quoted, the
// timestamp in brackets, and the resolution as key=value pairs.
func (accessLogFormatter) Format(e *logrus.Entry) ([]byte, error) {
	var b strings.Builder
	for i, key := range accessKeys {
		if i > 0 {
			b.WriteByte(' ')
		}

		v := e.Data[key]
		switch key {
		case "timestamp":
			fmt.Fprintf(&b, "[%v]", v)
		case "request":
			fmt.Fprintf(&b, "%q", v)
		case "duration":
			fmt.Fprintf(&b, "%vms", v)
		case "environment", "virtual-path":
			fmt.Fprintf(&b, "%s=%v", key, v)
		default:
			fmt.Fprint(&b, v)
		}
	}

	b.WriteByte('\n')
	return []byte(b.String()), nil
}

func accessFields(entry *AccessEntry) logrus.Fields {
	f := logrus.Fields{
		"client":         "-",
		"timestamp":      entry.RequestTime.Format(dateFormat),
		"request":        "",
		"status":         entry.StatusCode,
		"response-size":  entry.ResponseSize,
		"duration":       entry.Duration.Milliseconds(),
		"requested-host": "-",
		"environment":    orDash(entry.Resolution.Environment),
		"virtual-path":   orDash(entry.Resolution.VirtualPath),
	}

	if r := entry.Request; r != nil {
		f["client"] = orDash(client(r))
		f["request"] = strings.Join([]string{r.Method, r.RequestURI, r.Proto}, " ")
		f["requested-host"] = orDash(r.Host)
	}

	return f
}

// LogAccess writes an entry to the access log, when it is enabled.
func LogAccess(entry *AccessEntry) {
	if accessLog == nil || entry == nil {
		return
	}

	accessLog.WithFields(accessFields(entry)).Infoln()
}
