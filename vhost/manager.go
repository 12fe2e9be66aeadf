package vhost

import (
	"fmt"
	"slices"
	"sync"

	"github.com/zalando/vhosts/logging"
	"github.com/zalando/vhosts/net"
	"github.com/zalando/vhosts/pattern"
)

// Options to create a Manager.
type Options struct {
	// Log receives the registration events. Defaults to the logrus
	// standard logger.
	Log logging.Logger
}

// SearchEntry is one position of the search order.
type SearchEntry struct {
	Pattern     *pattern.Pattern
	Environment *Environment
	Domain      net.DomainName
}

// Manager is the registry of virtual hosts and environments. It owns the
// search order, the sequence of patterns consulted by Search.
//
// One read/write lock guards the manager and all of its environments.
// Registration takes the write lock, lookups and Search take the read
// lock.
type Manager struct {
	mu  sync.RWMutex
	log logging.Logger

	virtualHosts map[net.DomainName]*VirtualHost
	hostOrder    []*VirtualHost

	environments map[string]*Environment
	envOrder     []*Environment

	searchOrder []SearchEntry
	searchIndex map[pattern.Pattern]struct{}
}

// NewManager creates an empty registry.
func NewManager(o Options) *Manager {
	if o.Log == nil {
		o.Log = logging.New()
	}

	return &Manager{
		log:          o.Log,
		virtualHosts: make(map[net.DomainName]*VirtualHost),
		environments: make(map[string]*Environment),
		searchIndex:  make(map[pattern.Pattern]struct{}),
	}
}

// NewVirtualHost registers a virtual host for domain. When canonical is
// nil, DefaultCanonicalPattern(domain) is used. The initial rules are
// appended in order.
func (m *Manager) NewVirtualHost(domain net.DomainName, canonical *pattern.Pattern, rules ...Rule) (*VirtualHost, error) {
	if domain.IsZero() {
		return nil, fmt.Errorf("%w: empty domain", ErrInvalidArgument)
	}

	if canonical == nil {
		canonical = DefaultCanonicalPattern(domain)
	}

	vh := newVirtualHost(domain, canonical)
	vh.Append(rules...)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.virtualHosts[domain]; exists {
		return nil, fmt.Errorf("%w: virtual host %s", ErrAlreadyExists, domain)
	}

	m.virtualHosts[domain] = vh
	m.hostOrder = append(m.hostOrder, vh)
	m.log.Debugf("virtual host created: %s, canonical: %s", domain, canonical)
	return vh, nil
}

// VirtualHost returns the virtual host of domain, or nil.
func (m *Manager) VirtualHost(domain net.DomainName) *VirtualHost {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.virtualHosts[domain]
}

// VirtualHosts returns the virtual hosts in registration order.
func (m *Manager) VirtualHosts() []*VirtualHost {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.hostOrder)
}

// NewEnvironment registers an empty environment.
func (m *Manager) NewEnvironment(name string) (*Environment, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty environment name", ErrInvalidArgument)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.environments[name]; exists {
		return nil, fmt.Errorf("%w: environment %s", ErrAlreadyExists, name)
	}

	e := newEnvironment(m, name)
	m.environments[name] = e
	m.envOrder = append(m.envOrder, e)
	m.log.Debugf("environment created: %s", name)
	return e, nil
}

// Environment returns the environment registered with name, or nil.
func (m *Manager) Environment(name string) *Environment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.environments[name]
}

// Environments returns the environments in registration order.
func (m *Manager) Environments() []*Environment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.envOrder)
}

// SearchOrder returns a copy of the search order.
func (m *Manager) SearchOrder() []SearchEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.searchOrder)
}

// addSearchOrder appends the entry unless the pattern was already claimed
// by an earlier registration. Must be called with the write lock held.
func (m *Manager) addSearchOrder(p *pattern.Pattern, e *Environment, domain net.DomainName) bool {
	if _, claimed := m.searchIndex[*p]; claimed {
		return false
	}

	m.searchIndex[*p] = struct{}{}
	m.searchOrder = append(m.searchOrder, SearchEntry{Pattern: p, Environment: e, Domain: domain})
	return true
}
