package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/zalando/vhosts/config"
	"github.com/zalando/vhosts/logging"
	"github.com/zalando/vhosts/metrics"
	"github.com/zalando/vhosts/vhost"
)

const shutdownTimeout = 30 * time.Second

type matchResponse struct {
	Environment string `json:"environment"`
	Pattern     string `json:"pattern"`
	Completed   string `json:"completed"`
	Domain      string `json:"domain"`
	Path        string `json:"path"`
	Canonical   string `json:"canonical,omitempty"`
}

func respondMatch(fields vhost.FieldOptions) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m, err := vhost.MatchFromRequest(r)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}

		rsp := matchResponse{
			Environment: m.Environment.Name(),
			Pattern:     m.Pattern.String(),
			Completed:   m.Completed.String(),
			Domain:      m.VirtualPath.Domain.String(),
			Path:        m.VirtualPath.Path.String(),
		}

		if u, err := m.VirtualHost.CanonicalURL(vhost.RequestFields(r, fields)); err == nil {
			rsp.Canonical = u.String()
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(rsp); err != nil {
			log.Errorf("failed to write match response: %v", err)
		}
	})
}

// sameOrigin tells whether both sources have the same scheme, host and
// port.
func sameOrigin(a, b vhost.FieldSource) bool {
	as, err := a.Scheme()
	if err != nil {
		return false
	}

	bs, err := b.Scheme()
	if err != nil || as != bs {
		return false
	}

	ah, err := a.Host()
	if err != nil {
		return false
	}

	bh, err := b.Host()
	if err != nil || ah.Compare(bh) != 0 {
		return false
	}

	ap, err := a.Port()
	if err != nil {
		return false
	}

	bp, err := b.Port()
	return err == nil && ap.Compare(bp) == 0
}

// redirectDefault redirects to the canonical URL of the default virtual
// host, keeping the request path. A request that is already at the
// canonical origin gets 404.
func redirectDefault(vh *vhost.VirtualHost, fields vhost.FieldOptions) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		src := vhost.RequestFields(r, fields)
		u, err := vh.CanonicalURL(src)
		if err != nil {
			log.Errorf("failed to create the canonical URL of %s: %v", vh, err)
			http.NotFound(w, r)
			return
		}

		if sameOrigin(src, vhost.URLFields(u, "")) {
			log.Warnf("no environment maps the canonical URL of %s: %s", vh, u)
			http.NotFound(w, r)
			return
		}

		u = u.JoinPath(r.URL.Path)
		u.RawQuery = r.URL.RawQuery
		http.Redirect(w, r, u.String(), http.StatusMovedPermanently)
	})
}

func resolution(r *http.Request) logging.Resolution {
	m, err := vhost.MatchFromRequest(r)
	if err != nil {
		return logging.Resolution{}
	}

	return logging.Resolution{
		Environment: m.Environment.Name(),
		VirtualPath: m.VirtualPath.String(),
	}
}

func newHandler(cfg *config.Config, m *vhost.Manager, mtr metrics.Metrics) (http.Handler, error) {
	o := vhost.HandlerOptions{
		Manager: m,
		Fields:  cfg.FieldOptions(),
		Metrics: mtr,
		Next:    respondMatch(cfg.FieldOptions()),
	}

	if !cfg.DefaultDomainName.IsZero() {
		vh := m.VirtualHost(cfg.DefaultDomainName)
		if vh == nil {
			return nil, fmt.Errorf("%w: default domain %s", vhost.ErrUnknownVirtualHost, cfg.DefaultDomainName)
		}

		o.NoMatch = redirectDefault(vh, cfg.FieldOptions())
	}

	var h http.Handler = vhost.Handler(o)
	if !cfg.AccessLogDisabled {
		h = logging.NewHandler(h, resolution)
	}

	// the access log reads the match from the slot shared with the
	// vhost handler
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h.ServeHTTP(w, r.WithContext(vhost.NewContext(r.Context())))
	}), nil
}

func updateGauges(m *vhost.Manager, mtr metrics.Metrics) {
	mtr.UpdateGauge("virtualhosts", float64(len(m.VirtualHosts())))
	mtr.UpdateGauge("environments", float64(len(m.Environments())))
	mtr.UpdateGauge("patterns", float64(len(m.SearchOrder())))
}

// run serves until a signal is received on sigs, then shuts the servers
// down.
func run(cfg *config.Config, sigs <-chan os.Signal) error {
	if err := logging.Init(cfg.LoggingOptions()); err != nil {
		return err
	}

	m, _, err := loadManager(cfg)
	if err != nil {
		return err
	}

	mtr := metrics.NewDefault(cfg.MetricsOptions())
	defer mtr.Close()
	updateGauges(m, mtr)

	h, err := newHandler(cfg, m, mtr)
	if err != nil {
		return err
	}

	servers := []*http.Server{{Addr: cfg.Address, Handler: h, ReadHeaderTimeout: time.Minute}}
	if cfg.SupportListener != "" {
		mux := http.NewServeMux()
		mtr.RegisterHandler("/metrics", mux)
		servers = append(servers, &http.Server{Addr: cfg.SupportListener, Handler: mux, ReadHeaderTimeout: time.Minute})
	}

	g, ctx := errgroup.WithContext(context.Background())
	for _, s := range servers {
		g.Go(func() error {
			log.Infof("listening on %s", s.Addr)
			if err := s.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}

			return nil
		})
	}

	g.Go(func() error {
		select {
		case sig := <-sigs:
			log.Infof("got shutdown signal: %v", sig)
		case <-ctx.Done():
		}

		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		var errs []error
		for _, s := range servers {
			errs = append(errs, s.Shutdown(sctx))
		}

		return errors.Join(errs...)
	})

	return g.Wait()
}

func serveCmd(cfg *config.Config, _ io.Writer) error {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGTERM, syscall.SIGINT)
	return run(cfg, sigs)
}
