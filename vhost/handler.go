package vhost

import (
	"net/http"
	"time"

	"github.com/zalando/vhosts/logging"
	"github.com/zalando/vhosts/metrics"
)

// HandlerOptions configure the resolving HTTP middleware.
type HandlerOptions struct {
	// Manager resolves the requests. Required.
	Manager *Manager

	// Fields control how the request fields are read.
	Fields FieldOptions

	// Metrics receives the search duration and outcome. Defaults to
	// metrics.Default.
	Metrics metrics.Metrics

	// Log defaults to the logrus standard logger.
	Log logging.Logger

	// NoMatch serves the requests that no pattern matches. Defaults to
	// 404 Not Found.
	NoMatch http.Handler

	// Next serves the resolved requests. The match is stored in the
	// request context.
	Next http.Handler
}

type handler struct {
	manager *Manager
	fields  FieldOptions
	metrics metrics.Metrics
	log     logging.Logger
	noMatch http.Handler
	next    http.Handler
}

// Handler returns a middleware that resolves every request with
// Manager.Search, stores the match in the request context and evaluates
// the rules of the matched virtual host.
//
// It responds with 400 when a request field is invalid, 403 when a rule
// does not match, and 500 when a rule fails or the request already has a
// match.
func Handler(o HandlerOptions) http.Handler {
	h := &handler{
		manager: o.Manager,
		fields:  o.Fields,
		metrics: o.Metrics,
		log:     o.Log,
		noMatch: o.NoMatch,
		next:    o.Next,
	}

	if h.metrics == nil {
		h.metrics = metrics.Default
	}

	if h.log == nil {
		h.log = logging.New()
	}

	if h.noMatch == nil {
		h.noMatch = http.NotFoundHandler()
	}

	if h.next == nil {
		h.next = http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	}

	return h
}

func status(w http.ResponseWriter, code int) {
	http.Error(w, http.StatusText(code), code)
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := NewContext(r.Context())
	if ctx != r.Context() {
		r = r.WithContext(ctx)
	}

	start := time.Now()
	m, err := h.manager.Search(RequestFields(r, h.fields))
	h.metrics.MeasureSearch(start)

	switch {
	case err != nil:
		h.metrics.IncSearchError(Code(err))
		h.log.Errorf("failed to resolve request %s %s%s: %v", r.Method, r.Host, r.URL.Path, err)
		status(w, http.StatusBadRequest)
		return
	case m == nil:
		h.metrics.IncSearchMiss()
		h.noMatch.ServeHTTP(w, r)
		return
	}

	h.metrics.IncSearchMatch(m.Environment.Name())
	if err := SetMatch(ctx, m); err != nil {
		h.log.Errorf("failed to store match %s: %v", m, err)
		status(w, http.StatusInternalServerError)
		return
	}

	ok, err := m.VirtualHost.Evaluate(r)
	if err != nil {
		h.log.Errorf("failed to evaluate the rules of %s: %v", m.VirtualHost, err)
		status(w, http.StatusInternalServerError)
		return
	}

	if !ok {
		h.log.Debugf("request to %s rejected by a rule", m.VirtualPath)
		status(w, http.StatusForbidden)
		return
	}

	h.next.ServeHTTP(w, r)
}
