package vhost_test

import (
	"fmt"
	"net/url"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zalando/vhosts/net"
	"github.com/zalando/vhosts/pattern"
	"github.com/zalando/vhosts/vhost"
)

var (
	wwwDomain = net.MustParseDomainName("www.example.com")
	apiDomain = net.MustParseDomainName("api.example.com")
)

// newPattern creates a pattern, leaving the zero arguments unset.
func newPattern(scheme, host string, port int, contextPath, prefix string) *pattern.Pattern {
	f := pattern.Fields{Scheme: scheme}
	if host != "" {
		f.Host = net.MustParseAddress(host)
	}

	if port != 0 {
		f.Port = net.MustNewPort(port, net.TCP)
	}

	if contextPath != "" {
		f.ContextPath = net.MustParsePath(contextPath)
	}

	if prefix != "" {
		f.Prefix = net.MustParsePath(prefix)
	}

	return pattern.MustNew(f)
}

func mustParseURL(t testing.TB, rawURL string) *url.URL {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	return u
}

func urlFields(t testing.TB, rawURL, contextPath string) vhost.FieldSource {
	t.Helper()
	return vhost.URLFields(mustParseURL(t, rawURL), contextPath)
}

// countingFields counts the calls to every field.
type countingFields struct {
	src   vhost.FieldSource
	calls map[string]int
}

func newCountingFields(src vhost.FieldSource) *countingFields {
	return &countingFields{src: src, calls: make(map[string]int)}
}

func (c *countingFields) Scheme() (string, error) {
	c.calls["scheme"]++
	return c.src.Scheme()
}

func (c *countingFields) Host() (net.Address, error) {
	c.calls["host"]++
	return c.src.Host()
}

func (c *countingFields) Port() (net.Port, error) {
	c.calls["port"]++
	return c.src.Port()
}

func (c *countingFields) ContextPath() (string, error) {
	c.calls["contextPath"]++
	return c.src.ContextPath()
}

func (c *countingFields) Path() (string, error) {
	c.calls["path"]++
	return c.src.Path()
}

// newFixture creates the www and api hosts, and the environments:
//
//	production:  https://www.example.com, https://api.example.com
//	development: http://localhost:8080/*/www/, http://localhost:8080/*/api/
func newFixture(t testing.TB) *vhost.Manager {
	t.Helper()

	m := vhost.NewManager(vhost.Options{})
	_, err := m.NewVirtualHost(wwwDomain, nil)
	require.NoError(t, err)
	_, err = m.NewVirtualHost(apiDomain, nil)
	require.NoError(t, err)

	prod, err := m.NewEnvironment("production")
	require.NoError(t, err)
	require.NoError(t, prod.AddDomain(wwwDomain, newPattern("https", "www.example.com", 443, "/", "")))
	require.NoError(t, prod.AddDomain(apiDomain, newPattern("https", "api.example.com", 443, "/", "")))

	dev, err := m.NewEnvironment("development")
	require.NoError(t, err)
	require.NoError(t, dev.AddDomain(wwwDomain, newPattern("http", "localhost", 8080, "", "/www/")))
	require.NoError(t, dev.AddDomain(apiDomain, newPattern("http", "localhost", 8080, "", "/api/")))

	return m
}

// snapshot renders the complete observable state of a manager.
func snapshot(m *vhost.Manager) []string {
	var s []string
	for _, vh := range m.VirtualHosts() {
		s = append(s, fmt.Sprintf("host %s canonical %s rules %d", vh, vh.Canonical(), len(vh.Rules())))
	}

	for _, e := range m.Environments() {
		for _, mp := range e.Mappings() {
			s = append(s, fmt.Sprintf("env %s %s", e, mp))
		}
	}

	for _, se := range m.SearchOrder() {
		s = append(s, fmt.Sprintf("search %s %s -> %s", se.Environment, se.Pattern, se.Domain))
	}

	return s
}
