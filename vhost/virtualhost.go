package vhost

import (
	"fmt"
	"iter"
	"net/http"
	"net/url"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/zalando/vhosts/net"
	"github.com/zalando/vhosts/pattern"
)

// Rule is evaluated for requests that were resolved to a virtual host.
type Rule interface {
	Match(r *http.Request) (bool, error)
}

// RuleFunc adapts a function to a Rule.
type RuleFunc func(r *http.Request) (bool, error)

func (f RuleFunc) Match(r *http.Request) (bool, error) { return f(r) }

// VirtualHost is the destination of a resolved request, identified by
// its domain. Its rules can be extended at any time, and can be read
// concurrently. Readers get a snapshot that later changes do not affect.
type VirtualHost struct {
	domain    net.DomainName
	canonical *pattern.Pattern

	mu    sync.Mutex
	rules atomic.Pointer[[]Rule]
}

// DefaultCanonicalPattern returns https://domain:443 in the root context.
func DefaultCanonicalPattern(domain net.DomainName) *pattern.Pattern {
	return pattern.MustNew(pattern.Fields{
		Scheme:      pattern.HTTPS,
		Host:        net.AddressOf(domain),
		Port:        net.MustNewPort(443, net.TCP),
		ContextPath: net.Root,
	})
}

func newVirtualHost(domain net.DomainName, canonical *pattern.Pattern) *VirtualHost {
	vh := &VirtualHost{domain: domain, canonical: canonical}
	vh.rules.Store(&[]Rule{})
	return vh
}

func (vh *VirtualHost) Domain() net.DomainName { return vh.domain }

// Canonical returns the pattern used to build links to the host when no
// environment mapping applies.
func (vh *VirtualHost) Canonical() *pattern.Pattern { return vh.canonical }

func (vh *VirtualHost) String() string { return vh.domain.String() }

func (vh *VirtualHost) update(f func(current []Rule) []Rule) {
	vh.mu.Lock()
	defer vh.mu.Unlock()
	next := f(*vh.rules.Load())
	vh.rules.Store(&next)
}

// Prepend inserts rules before the existing ones.
func (vh *VirtualHost) Prepend(rules ...Rule) {
	if len(rules) == 0 {
		return
	}

	vh.update(func(current []Rule) []Rule {
		return slices.Concat(rules, current)
	})
}

// Append adds rules after the existing ones.
func (vh *VirtualHost) Append(rules ...Rule) {
	if len(rules) == 0 {
		return
	}

	vh.update(func(current []Rule) []Rule {
		return slices.Concat(current, rules)
	})
}

// Rules returns a copy of the current rules.
func (vh *VirtualHost) Rules() []Rule {
	return slices.Clone(*vh.rules.Load())
}

// AllRules iterates over the rules as they were when the iteration
// started.
func (vh *VirtualHost) AllRules() iter.Seq[Rule] {
	snapshot := *vh.rules.Load()
	return slices.Values(snapshot)
}

// Evaluate runs the rules in order and tells whether all of them match.
// It stops at the first rule that does not match or fails. A host
// without rules matches every request.
func (vh *VirtualHost) Evaluate(r *http.Request) (bool, error) {
	for rule := range vh.AllRules() {
		ok, err := rule.Match(r)
		if err != nil || !ok {
			return false, err
		}
	}

	return true, nil
}

// CanonicalURL completes the canonical pattern from src and returns its
// URL.
func (vh *VirtualHost) CanonicalURL(src FieldSource) (*url.URL, error) {
	return completeURL(vh.canonical, src)
}

func completeURL(p *pattern.Pattern, src FieldSource) (*url.URL, error) {
	if !p.IsComplete() {
		if src == nil {
			return nil, fmt.Errorf("%w: %s is not complete and no request fields were given", ErrInvalidArgument, p)
		}

		var err error
		if p, err = p.Complete(newCachedFields(src)); err != nil {
			return nil, requestFieldError(err)
		}
	}

	return p.URL()
}
