package vhost

import (
	"fmt"
	"net/url"
	"slices"
	"sync"

	"github.com/zalando/vhosts/net"
	"github.com/zalando/vhosts/pattern"
)

// Mapping maps a pattern to the domain of a virtual host.
type Mapping struct {
	Pattern *pattern.Pattern
	Domain  net.DomainName
}

func (mp Mapping) String() string {
	return fmt.Sprintf("%s -> %s", mp.Pattern, mp.Domain)
}

// Environment is a named set of pattern mappings, e.g. the production
// DNS layout or a local development layout. Mappings can only be added.
//
// An environment uses the lock of its manager.
type Environment struct {
	manager *Manager
	lock    *sync.RWMutex
	name    string

	byPattern map[pattern.Pattern]net.DomainName
	mappings  []Mapping
	primary   map[net.DomainName]*pattern.Pattern

	// the slices are never modified after they were stored
	byDomain map[net.DomainName][]*pattern.Pattern
}

func newEnvironment(m *Manager, name string) *Environment {
	return &Environment{
		manager:   m,
		lock:      &m.mu,
		name:      name,
		byPattern: make(map[pattern.Pattern]net.DomainName),
		primary:   make(map[net.DomainName]*pattern.Pattern),
		byDomain:  make(map[net.DomainName][]*pattern.Pattern),
	}
}

func (e *Environment) Name() string { return e.name }

func (e *Environment) String() string { return e.name }

// Manager returns the manager that the environment was created by.
func (e *Environment) Manager() *Manager { return e.manager }

// Add registers a batch of mappings. The batch is applied completely or
// not at all: every mapping is validated before any of them is stored.
//
// It fails with ErrDuplicatePattern when a pattern is already mapped in
// this environment or appears twice in the batch, and with
// ErrUnknownVirtualHost when a domain has no virtual host. Patterns that
// were not claimed earlier, by this or another environment, are appended
// to the search order of the manager.
func (e *Environment) Add(mappings ...Mapping) error {
	e.lock.Lock()
	defer e.lock.Unlock()

	if err := e.validate(mappings); err != nil {
		return err
	}

	var claimed int
	for _, mp := range mappings {
		e.byPattern[*mp.Pattern] = mp.Domain
		e.mappings = append(e.mappings, mp)

		if _, ok := e.primary[mp.Domain]; !ok {
			e.primary[mp.Domain] = mp.Pattern
		}

		current := e.byDomain[mp.Domain]
		next := make([]*pattern.Pattern, len(current), len(current)+1)
		copy(next, current)
		e.byDomain[mp.Domain] = append(next, mp.Pattern)

		if e.manager.addSearchOrder(mp.Pattern, e, mp.Domain) {
			claimed++
		}
	}

	e.manager.log.Debugf("environment %s: %d mappings added, %d new in search order", e.name, len(mappings), claimed)
	return nil
}

// validate must be called with the lock held. It does not change any
// state.
func (e *Environment) validate(mappings []Mapping) error {
	batch := make(map[pattern.Pattern]struct{}, len(mappings))
	for i, mp := range mappings {
		if mp.Pattern == nil {
			return fmt.Errorf("%w: mapping %d has no pattern", ErrInvalidArgument, i)
		}

		if mp.Domain.IsZero() {
			return fmt.Errorf("%w: mapping %d has no domain", ErrInvalidArgument, i)
		}

		if d, exists := e.byPattern[*mp.Pattern]; exists {
			return fmt.Errorf("%w: %s already mapped to %s in environment %s", ErrDuplicatePattern, mp.Pattern, d, e.name)
		}

		if _, exists := batch[*mp.Pattern]; exists {
			return fmt.Errorf("%w: %s appears more than once in the batch", ErrDuplicatePattern, mp.Pattern)
		}

		batch[*mp.Pattern] = struct{}{}

		if _, exists := e.manager.virtualHosts[mp.Domain]; !exists {
			return fmt.Errorf("%w: %s", ErrUnknownVirtualHost, mp.Domain)
		}
	}

	return nil
}

// AddDomain maps every pattern to domain in a single batch. It fails
// with ErrInvalidArgument when no pattern is given, or when a pattern is
// given twice.
func (e *Environment) AddDomain(domain net.DomainName, patterns ...*pattern.Pattern) error {
	if len(patterns) == 0 {
		return fmt.Errorf("%w: no patterns for %s", ErrInvalidArgument, domain)
	}

	mappings := make([]Mapping, 0, len(patterns))
	seen := make(map[pattern.Pattern]struct{}, len(patterns))
	for _, p := range patterns {
		if p == nil {
			return fmt.Errorf("%w: nil pattern for %s", ErrInvalidArgument, domain)
		}

		if _, dup := seen[*p]; dup {
			return fmt.Errorf("%w: pattern %s given twice for %s", ErrInvalidArgument, p, domain)
		}

		seen[*p] = struct{}{}
		mappings = append(mappings, Mapping{Pattern: p, Domain: domain})
	}

	return e.Add(mappings...)
}

// Primary returns the first pattern mapped to domain, or nil.
func (e *Environment) Primary(domain net.DomainName) *pattern.Pattern {
	e.lock.RLock()
	defer e.lock.RUnlock()
	return e.primary[domain]
}

// Patterns returns every pattern mapped to domain in registration order.
// The first one is the primary pattern.
func (e *Environment) Patterns(domain net.DomainName) []*pattern.Pattern {
	e.lock.RLock()
	snapshot := e.byDomain[domain]
	e.lock.RUnlock()
	return slices.Clone(snapshot)
}

// Domain returns the domain that p is mapped to in this environment.
func (e *Environment) Domain(p *pattern.Pattern) (net.DomainName, bool) {
	e.lock.RLock()
	defer e.lock.RUnlock()
	d, ok := e.byPattern[*p]
	return d, ok
}

// Mappings returns every mapping of the environment in registration
// order.
func (e *Environment) Mappings() []Mapping {
	e.lock.RLock()
	defer e.lock.RUnlock()
	return slices.Clone(e.mappings)
}

// URL returns the URL of domain in this environment. It completes the
// primary pattern of the domain, or the canonical pattern of its virtual
// host when the environment has no mapping for it, from src.
func (e *Environment) URL(domain net.DomainName, src FieldSource) (*url.URL, error) {
	p := e.Primary(domain)
	if p == nil {
		vh := e.manager.VirtualHost(domain)
		if vh == nil {
			return nil, fmt.Errorf("%w: %s", ErrUnknownVirtualHost, domain)
		}

		p = vh.Canonical()
	}

	return completeURL(p, src)
}
