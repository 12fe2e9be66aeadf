package vhost

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go4.org/netipx"

	"github.com/zalando/vhosts/net"
	"github.com/zalando/vhosts/pattern"
)

// FieldSource provides the field values of a request.
type FieldSource = pattern.FieldSource

// FieldOptions control how the fields are read from an HTTP request.
type FieldOptions struct {
	// ContextPath is the path that the application is mounted at. The
	// empty string is the root context. Requests outside of the context
	// path fail.
	ContextPath string

	// HostPatch is applied to the Host header before parsing it.
	HostPatch net.HostPatch

	// TrustedProxies are the peers whose X-Forwarded-Proto,
	// X-Forwarded-Host and X-Forwarded-Port headers are used.
	TrustedProxies *netipx.IPSet
}

const (
	headerForwardedProto = "X-Forwarded-Proto"
	headerForwardedHost  = "X-Forwarded-Host"
	headerForwardedPort  = "X-Forwarded-Port"
)

type requestFields struct {
	r *http.Request
	o FieldOptions
}

// RequestFields returns the fields of an incoming HTTP request.
func RequestFields(r *http.Request, o FieldOptions) FieldSource {
	return &requestFields{r: r, o: o}
}

// URLFields returns the fields of an absolute URL, as if it was requested
// from an application mounted at contextPath.
func URLFields(u *url.URL, contextPath string) FieldSource {
	return &requestFields{
		r: &http.Request{URL: u, Host: u.Host},
		o: FieldOptions{ContextPath: contextPath},
	}
}

func (f *requestFields) trusted() bool {
	return f.o.TrustedProxies != nil && f.o.TrustedProxies.Contains(net.RemoteAddr(f.r))
}

// forwarded returns the first value of a comma separated X-Forwarded-*
// header from a trusted proxy.
func (f *requestFields) forwarded(name string) string {
	if !f.trusted() {
		return ""
	}

	v, _, _ := strings.Cut(f.r.Header.Get(name), ",")
	return strings.TrimSpace(v)
}

func (f *requestFields) Scheme() (string, error) {
	switch {
	case f.forwarded(headerForwardedProto) != "":
		return strings.ToLower(f.forwarded(headerForwardedProto)), nil
	case f.r.TLS != nil:
		return pattern.HTTPS, nil
	case f.r.URL != nil && f.r.URL.Scheme != "":
		return strings.ToLower(f.r.URL.Scheme), nil
	default:
		return pattern.HTTP, nil
	}
}

func (f *requestFields) hostport() string {
	if h := f.forwarded(headerForwardedHost); h != "" {
		return h
	}

	if f.r.Host != "" {
		return f.r.Host
	}

	if f.r.URL != nil {
		return f.r.URL.Host
	}

	return ""
}

func (f *requestFields) Host() (net.Address, error) {
	hostport := f.hostport()
	a, _, err := f.o.HostPatch.ParseHostPort(hostport)
	return a, err
}

func (f *requestFields) Port() (net.Port, error) {
	hostport := f.hostport()
	_, p, err := f.o.HostPatch.ParseHostPort(hostport)
	if err != nil {
		return net.Port{}, err
	}

	if !p.IsZero() {
		return p, nil
	}

	if fp := f.forwarded(headerForwardedPort); fp != "" {
		return net.ParsePort(fp, net.TCP)
	}

	scheme, err := f.Scheme()
	if err != nil {
		return net.Port{}, err
	}

	if p, ok := net.DefaultPort(scheme); ok {
		return p, nil
	}

	return net.Port{}, fmt.Errorf("no port in %q and no default port for scheme %s", hostport, scheme)
}

func (f *requestFields) urlPath() string {
	if f.r.URL == nil || f.r.URL.Path == "" {
		return net.SeparatorString
	}

	return f.r.URL.Path
}

func (f *requestFields) ContextPath() (string, error) {
	cp := f.o.ContextPath
	if cp == "" {
		return "", nil
	}

	p := f.urlPath()
	if p != cp && !strings.HasPrefix(p, cp+net.SeparatorString) {
		return "", fmt.Errorf("path %q is outside of the context path %q", p, cp)
	}

	return cp, nil
}

func (f *requestFields) Path() (string, error) {
	cp, err := f.ContextPath()
	if err != nil {
		return "", err
	}

	p := strings.TrimPrefix(f.urlPath(), cp)
	if p == "" {
		return net.SeparatorString, nil
	}

	return p, nil
}

const (
	haveScheme = 1 << iota
	haveHost
	havePort
	haveContextPath
	havePath
)

// cachedFields fetches every field of its source at most once. Errors
// are not cached, they abort the search.
type cachedFields struct {
	src  FieldSource
	have uint8

	scheme      string
	host        net.Address
	port        net.Port
	contextPath string
	path        string
}

func newCachedFields(src FieldSource) *cachedFields {
	if c, ok := src.(*cachedFields); ok {
		return c
	}

	return &cachedFields{src: src}
}

func wrapField(field string, err error) error {
	if errors.Is(err, ErrRequestField) {
		return err
	}

	return &RequestFieldError{Field: field, Err: err}
}

// requestFieldError converts an error of completing a pattern from the
// request fields.
func requestFieldError(err error) error {
	var verr *pattern.ValidationError
	switch {
	case errors.Is(err, ErrRequestField):
		return err
	case errors.As(err, &verr):
		return &RequestFieldError{Field: verr.Field, Err: err}
	default:
		return &RequestFieldError{Field: "unknown", Err: err}
	}
}

func (c *cachedFields) Scheme() (string, error) {
	if c.have&haveScheme == 0 {
		s, err := c.src.Scheme()
		if err != nil {
			return "", wrapField("scheme", err)
		}

		c.scheme = s
		c.have |= haveScheme
	}

	return c.scheme, nil
}

func (c *cachedFields) Host() (net.Address, error) {
	if c.have&haveHost == 0 {
		h, err := c.src.Host()
		if err != nil {
			return net.Address{}, wrapField("host", err)
		}

		c.host = h
		c.have |= haveHost
	}

	return c.host, nil
}

func (c *cachedFields) Port() (net.Port, error) {
	if c.have&havePort == 0 {
		p, err := c.src.Port()
		if err != nil {
			return net.Port{}, wrapField("port", err)
		}

		c.port = p
		c.have |= havePort
	}

	return c.port, nil
}

func (c *cachedFields) ContextPath() (string, error) {
	if c.have&haveContextPath == 0 {
		cp, err := c.src.ContextPath()
		if err != nil {
			return "", wrapField("context path", err)
		}

		c.contextPath = cp
		c.have |= haveContextPath
	}

	return c.contextPath, nil
}

// Path returns the request path. It must be a valid net.Path.
func (c *cachedFields) Path() (string, error) {
	if c.have&havePath == 0 {
		p, err := c.src.Path()
		if err != nil {
			return "", wrapField("path", err)
		}

		if _, err := net.ParsePath(p); err != nil {
			return "", wrapField("path", err)
		}

		c.path = p
		c.have |= havePath
	}

	return c.path, nil
}
