package vhost_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/zalando/vhosts/logging/loggingtest"
	"github.com/zalando/vhosts/net"
	"github.com/zalando/vhosts/vhost"
)

func TestNewVirtualHost(t *testing.T) {
	l := loggingtest.New()
	m := vhost.NewManager(vhost.Options{Log: l})

	vh, err := m.NewVirtualHost(wwwDomain, nil)
	require.NoError(t, err)
	assert.Equal(t, wwwDomain, vh.Domain())
	assert.Equal(t, "https://www.example.com", vh.Canonical().String())
	assert.Same(t, vh, m.VirtualHost(wwwDomain))
	assert.Equal(t, 1, l.Count("virtual host created: www.example.com"))

	t.Run("duplicate domain", func(t *testing.T) {
		_, err := m.NewVirtualHost(wwwDomain, newPattern("http", "other.example.com", 80, "/", ""))
		assert.ErrorIs(t, err, vhost.ErrAlreadyExists)
		assert.Equal(t, "https://www.example.com", m.VirtualHost(wwwDomain).Canonical().String())
	})

	t.Run("empty domain", func(t *testing.T) {
		_, err := m.NewVirtualHost(net.DomainName{}, nil)
		assert.ErrorIs(t, err, vhost.ErrInvalidArgument)
	})

	t.Run("custom canonical and rules", func(t *testing.T) {
		canonical := newPattern("http", "api.example.com", 8080, "/api", "")
		rule := vhost.RuleFunc(func(*http.Request) (bool, error) { return true, nil })
		vh, err := m.NewVirtualHost(apiDomain, canonical, rule)
		require.NoError(t, err)
		assert.Same(t, canonical, vh.Canonical())
		assert.Len(t, vh.Rules(), 1)
	})

	t.Run("unknown domain", func(t *testing.T) {
		assert.Nil(t, m.VirtualHost(net.MustParseDomainName("shop.example.com")))
	})

	var domains []string
	for _, vh := range m.VirtualHosts() {
		domains = append(domains, vh.String())
	}

	assert.Equal(t, []string{"www.example.com", "api.example.com"}, domains)
}

func TestNewEnvironment(t *testing.T) {
	m := vhost.NewManager(vhost.Options{Log: loggingtest.New()})

	prod, err := m.NewEnvironment("production")
	require.NoError(t, err)
	assert.Equal(t, "production", prod.Name())
	assert.Same(t, m, prod.Manager())
	assert.Same(t, prod, m.Environment("production"))

	_, err = m.NewEnvironment("production")
	assert.ErrorIs(t, err, vhost.ErrAlreadyExists)

	_, err = m.NewEnvironment("")
	assert.ErrorIs(t, err, vhost.ErrInvalidArgument)

	dev, err := m.NewEnvironment("development")
	require.NoError(t, err)

	assert.Equal(t, []*vhost.Environment{prod, dev}, m.Environments())
	assert.Nil(t, m.Environment("staging"))
}

func TestSearchOrderFirstClaimWins(t *testing.T) {
	m := newFixture(t)

	staging, err := m.NewEnvironment("staging")
	require.NoError(t, err)

	claimed := newPattern("https", "www.example.com", 443, "/", "")
	require.NoError(t, staging.AddDomain(apiDomain, claimed, newPattern("https", "staging.example.com", 443, "/", "")))

	// the environment keeps its own mapping
	d, ok := staging.Domain(claimed)
	require.True(t, ok)
	assert.Equal(t, apiDomain, d)

	var order []string
	for _, se := range m.SearchOrder() {
		order = append(order, fmt.Sprintf("%s %s -> %s", se.Environment, se.Pattern, se.Domain))
	}

	assert.Equal(t, []string{
		"production https://www.example.com -> www.example.com",
		"production https://api.example.com -> api.example.com",
		"development http://localhost:8080/*/www/ -> www.example.com",
		"development http://localhost:8080/*/api/ -> api.example.com",
		"staging https://staging.example.com -> api.example.com",
	}, order)

	match, err := m.Search(urlFields(t, "https://www.example.com/", ""))
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "production", match.Environment.Name())
	assert.Equal(t, wwwDomain, match.VirtualHost.Domain())
}

func TestSearchOrderIsACopy(t *testing.T) {
	m := newFixture(t)

	order := m.SearchOrder()
	order[0] = vhost.SearchEntry{}

	assert.NotNil(t, m.SearchOrder()[0].Pattern)
}

func TestConcurrentRegistrationAndSearch(t *testing.T) {
	const n = 32

	m := vhost.NewManager(vhost.Options{Log: loggingtest.New()})
	_, err := m.NewVirtualHost(wwwDomain, nil)
	require.NoError(t, err)

	shared := urlFields(t, "http://shared.example.com/", "")

	var g errgroup.Group
	for i := range n {
		g.Go(func() error {
			e, err := m.NewEnvironment(fmt.Sprintf("env%d", i))
			if err != nil {
				return err
			}

			return e.AddDomain(wwwDomain,
				newPattern("http", "localhost", 8000+i, "", ""),
				newPattern("http", "shared.example.com", 80, "/", ""),
			)
		})

		g.Go(func() error {
			match, err := m.Search(shared)
			if err != nil {
				return err
			}

			if match != nil && match.VirtualHost.Domain() != wwwDomain {
				return fmt.Errorf("unexpected match: %s", match)
			}

			return nil
		})
	}

	require.NoError(t, g.Wait())

	// every private pattern, and the shared one once
	assert.Len(t, m.SearchOrder(), n+1)
	assert.Len(t, m.Environments(), n)

	match, err := m.Search(shared)
	require.NoError(t, err)
	require.NotNil(t, match)

	var claims int
	for _, se := range m.SearchOrder() {
		if se.Pattern.Host().String() == "shared.example.com" {
			claims++
			assert.Same(t, se.Environment, match.Environment)
		}
	}

	assert.Equal(t, 1, claims)
}

func TestFailedRegistrationChangesNothing(t *testing.T) {
	m := newFixture(t)
	dev := m.Environment("development")
	before := snapshot(m)

	for _, tt := range []struct {
		name     string
		mappings []vhost.Mapping
		err      error
	}{{
		name: "unknown virtual host",
		mappings: []vhost.Mapping{
			{Pattern: newPattern("http", "localhost", 8081, "", ""), Domain: wwwDomain},
			{Pattern: newPattern("http", "localhost", 8082, "", ""), Domain: net.MustParseDomainName("shop.example.com")},
		},
		err: vhost.ErrUnknownVirtualHost,
	}, {
		name: "pattern mapped in the environment",
		mappings: []vhost.Mapping{
			{Pattern: newPattern("http", "localhost", 8081, "", ""), Domain: wwwDomain},
			{Pattern: newPattern("http", "localhost", 8080, "", "/www/"), Domain: apiDomain},
		},
		err: vhost.ErrDuplicatePattern,
	}, {
		name: "pattern twice in the batch",
		mappings: []vhost.Mapping{
			{Pattern: newPattern("http", "localhost", 8081, "", ""), Domain: wwwDomain},
			{Pattern: newPattern("http", "localhost", 8081, "", ""), Domain: apiDomain},
		},
		err: vhost.ErrDuplicatePattern,
	}, {
		name: "nil pattern",
		mappings: []vhost.Mapping{
			{Pattern: newPattern("http", "localhost", 8081, "", ""), Domain: wwwDomain},
			{Domain: apiDomain},
		},
		err: vhost.ErrInvalidArgument,
	}, {
		name: "empty domain",
		mappings: []vhost.Mapping{
			{Pattern: newPattern("http", "localhost", 8081, "", "")},
		},
		err: vhost.ErrInvalidArgument,
	}} {
		t.Run(tt.name, func(t *testing.T) {
			err := dev.Add(tt.mappings...)
			if !errors.Is(err, tt.err) {
				t.Fatalf("expected %v, got %v", tt.err, err)
			}

			if diff := cmp.Diff(before, snapshot(m)); diff != "" {
				t.Errorf("failed batch changed the manager (-before +after):\n%s", diff)
			}
		})
	}
}
