package vhost_test

import (
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zalando/vhosts/net"
	"github.com/zalando/vhosts/vhost"
)

func TestSearch(t *testing.T) {
	m := newFixture(t)

	mounted, err := m.NewEnvironment("mounted")
	require.NoError(t, err)
	require.NoError(t, mounted.AddDomain(wwwDomain, newPattern("https", "www.example.com", 443, "/app", "")))

	for _, tt := range []struct {
		name        string
		url         string
		contextPath string

		// empty when no match is expected
		environment string
		pattern     string
		completed   string
		virtualPath string
	}{{
		name:        "complete pattern",
		url:         "https://www.example.com/index.html",
		environment: "production",
		pattern:     "https://www.example.com",
		completed:   "https://www.example.com",
		virtualPath: "www.example.com:/index.html",
	}, {
		name:        "scheme is case insensitive",
		url:         "HTTPS://www.example.com/",
		environment: "production",
		pattern:     "https://www.example.com",
		completed:   "https://www.example.com",
		virtualPath: "www.example.com:/",
	}, {
		name:        "host is case insensitive",
		url:         "https://API.Example.COM/v1",
		environment: "production",
		pattern:     "https://api.example.com",
		completed:   "https://api.example.com",
		virtualPath: "api.example.com:/v1",
	}, {
		name: "explicit port differs",
		url:  "https://www.example.com:8443/",
	}, {
		name:        "prefix is removed from the virtual path",
		url:         "http://localhost:8080/api/v1/users",
		environment: "development",
		pattern:     "http://localhost:8080/*/api/",
		completed:   "http://localhost:8080/api/",
		virtualPath: "api.example.com:/v1/users",
	}, {
		name:        "prefix only",
		url:         "http://localhost:8080/www/",
		environment: "development",
		pattern:     "http://localhost:8080/*/www/",
		completed:   "http://localhost:8080/www/",
		virtualPath: "www.example.com:/",
	}, {
		name: "prefix without its trailing separator",
		url:  "http://localhost:8080/www",
	}, {
		name: "no prefix matches",
		url:  "http://localhost:8080/shop/",
	}, {
		name:        "root context does not match a mounted application",
		url:         "https://www.example.com/app/index.html",
		contextPath: "/app",
		environment: "mounted",
		pattern:     "https://www.example.com/app",
		completed:   "https://www.example.com/app",
		virtualPath: "www.example.com:/index.html",
	}, {
		name:        "unset context path is completed from the request",
		url:         "http://localhost:8080/app/api/x",
		contextPath: "/app",
		environment: "development",
		pattern:     "http://localhost:8080/*/api/",
		completed:   "http://localhost:8080/app/api/",
		virtualPath: "api.example.com:/x",
	}, {
		name:        "IP address host",
		url:         "http://[::1]:8080/",
		contextPath: "",
	}} {
		t.Run(tt.name, func(t *testing.T) {
			match, err := m.Search(urlFields(t, tt.url, tt.contextPath))
			require.NoError(t, err)

			if tt.environment == "" {
				assert.Nil(t, match)
				return
			}

			require.NotNil(t, match)
			assert.Equal(t, tt.environment, match.Environment.Name())
			assert.Equal(t, tt.pattern, match.Pattern.String())
			assert.Equal(t, tt.completed, match.Completed.String())
			assert.Equal(t, tt.virtualPath, match.VirtualPath.String())
			assert.Equal(t, match.VirtualPath.Domain, match.VirtualHost.Domain())
			assert.True(t, match.Completed.IsComplete())
			assert.NotSame(t, match.Pattern, match.Completed)
		})
	}
}

func TestSearchCatchAll(t *testing.T) {
	m := newFixture(t)

	catchAll, err := m.NewEnvironment("any")
	require.NoError(t, err)
	require.NoError(t, catchAll.AddDomain(wwwDomain, newPattern("", "", 0, "", "")))

	match, err := m.Search(urlFields(t, "http://[2001:db8::1]:9090/some/path", ""))
	require.NoError(t, err)
	require.NotNil(t, match)

	assert.Equal(t, "any", match.Environment.Name())
	assert.Equal(t, "//*:*/*", match.Pattern.String())
	assert.Equal(t, "http://[2001:db8::1]:9090", match.Completed.String())
	assert.Equal(t, "//*:*/* -> http://[2001:db8::1]:9090 -> www.example.com:/some/path", match.String())
}

func TestSearchEmpty(t *testing.T) {
	m := vhost.NewManager(vhost.Options{})
	match, err := m.Search(urlFields(t, "https://www.example.com/", ""))
	assert.NoError(t, err)
	assert.Nil(t, match)
}

func TestSearchReadsFieldsOnce(t *testing.T) {
	m := newFixture(t)

	catchAll, err := m.NewEnvironment("any")
	require.NoError(t, err)
	require.NoError(t, catchAll.AddDomain(wwwDomain, newPattern("", "", 0, "", "")))

	for _, u := range []string{
		"https://www.example.com/",
		"http://localhost:8080/api/",
		"http://localhost:9090/",
	} {
		t.Run(u, func(t *testing.T) {
			src := newCountingFields(urlFields(t, u, ""))
			match, err := m.Search(src)
			require.NoError(t, err)
			require.NotNil(t, match)

			for field, n := range src.calls {
				assert.LessOrEqual(t, n, 1, "field %s read %d times", field, n)
			}
		})
	}
}

func TestSearchReadsOnlyNeededFields(t *testing.T) {
	m := vhost.NewManager(vhost.Options{})
	_, err := m.NewVirtualHost(wwwDomain, nil)
	require.NoError(t, err)

	e, err := m.NewEnvironment("production")
	require.NoError(t, err)
	require.NoError(t, e.AddDomain(wwwDomain, newPattern("https", "www.example.com", 443, "/", "")))

	src := newCountingFields(urlFields(t, "http://www.example.com/", ""))
	match, err := m.Search(src)
	require.NoError(t, err)
	assert.Nil(t, match)
	assert.Equal(t, map[string]int{"scheme": 1}, src.calls)
}

func TestSearchRequestFieldError(t *testing.T) {
	m := newFixture(t)

	r := httptest.NewRequest("GET", "http://localhost/", nil)
	r.Host = "-invalid-.example.com"

	match, err := m.Search(vhost.RequestFields(r, vhost.FieldOptions{}))
	assert.Nil(t, match)
	require.ErrorIs(t, err, vhost.ErrRequestField)

	var ferr *vhost.RequestFieldError
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, "host", ferr.Field)
	assert.Equal(t, "request_field", vhost.Code(err))

	var perr *net.ParseError
	assert.True(t, errors.As(err, &perr))
}

func TestSearchContextPathError(t *testing.T) {
	m := newFixture(t)

	// the path of the request is outside of the context path
	match, err := m.Search(urlFields(t, "http://localhost:8080/www/", "/app"))
	assert.Nil(t, match)
	require.ErrorIs(t, err, vhost.ErrRequestField)

	var ferr *vhost.RequestFieldError
	require.True(t, errors.As(err, &ferr))
	assert.Equal(t, "path", ferr.Field)
}

func TestVirtualPathCompare(t *testing.T) {
	a := vhost.VirtualPath{Domain: apiDomain, Path: net.MustParsePath("/z")}
	b := vhost.VirtualPath{Domain: wwwDomain, Path: net.MustParsePath("/a")}
	c := vhost.VirtualPath{Domain: wwwDomain, Path: net.MustParsePath("/b")}

	assert.Negative(t, a.Compare(b))
	assert.Negative(t, b.Compare(c))
	assert.Positive(t, c.Compare(a))
	assert.Zero(t, b.Compare(b))
	assert.Equal(t, "www.example.com:/a", b.String())
}
