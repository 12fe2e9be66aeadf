package logging

import (
	"net/http"
	"time"
)

// ResolveFunc returns where a request was resolved to. It is called
// after the wrapped handler returned.
type ResolveFunc func(*http.Request) Resolution

type loggingHandler struct {
	next    http.Handler
	resolve ResolveFunc
}

// NewHandler wraps next and logs every request to the access log. The
// resolve function is optional.
func NewHandler(next http.Handler, resolve ResolveFunc) http.Handler {
	return &loggingHandler{next: next, resolve: resolve}
}

func (lh *loggingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	lw := &loggingWriter{writer: w}
	lh.next.ServeHTTP(lw, r)

	entry := &AccessEntry{
		Request:      r,
		StatusCode:   lw.status(),
		ResponseSize: lw.bytes,
		Duration:     time.Since(start),
		RequestTime:  start,
	}

	if lh.resolve != nil {
		entry.Resolution = lh.resolve(r)
	}

	LogAccess(entry)
}
