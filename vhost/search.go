package vhost

import (
	"cmp"
	"fmt"
	"strings"

	"github.com/zalando/vhosts/net"
	"github.com/zalando/vhosts/pattern"
)

// VirtualPath is a path inside the namespace of a virtual host.
type VirtualPath struct {
	Domain net.DomainName
	Path   net.Path
}

func (vp VirtualPath) String() string {
	return vp.Domain.String() + ":" + vp.Path.String()
}

// Compare orders virtual paths by domain, then by path.
func (vp VirtualPath) Compare(o VirtualPath) int {
	return cmp.Or(vp.Domain.Compare(o.Domain), vp.Path.Compare(o.Path))
}

// Match is the result of a successful Search.
type Match struct {
	// Environment that claimed the pattern first.
	Environment *Environment

	// Pattern is the pattern from the search order. It may be
	// incomplete.
	Pattern *pattern.Pattern

	// Completed has the unset fields of Pattern taken from the request.
	// It is a different pointer than Pattern, even when Pattern was
	// complete.
	Completed *pattern.Pattern

	VirtualHost *VirtualHost

	// VirtualPath is the request path without the matched prefix, except
	// its trailing separator. Its domain is the domain of VirtualHost.
	VirtualPath VirtualPath
}

func (m *Match) String() string {
	return fmt.Sprintf("%s -> %s -> %s", m.Pattern, m.Completed, m.VirtualPath)
}

// Search resolves the request fields to a virtual host. It scans the
// search order and returns the first pattern whose set fields equal the
// fields of the request. Each field is read from src at most once, and
// only when a pattern needs it.
//
// When no pattern matches, Search returns nil and no error. When a field
// of the request cannot be read, it returns a *RequestFieldError.
func (m *Manager) Search(src FieldSource) (*Match, error) {
	fields := newCachedFields(src)

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, e := range m.searchOrder {
		ok, err := matches(e.Pattern, fields)
		if err != nil {
			return nil, err
		}

		if !ok {
			continue
		}

		return m.newMatch(e, fields)
	}

	return nil, nil
}

// matches compares the fields in the order scheme, host, port, context
// path and prefix, and stops at the first difference.
func matches(p *pattern.Pattern, fields *cachedFields) (bool, error) {
	if s := p.Scheme(); s != "" {
		rs, err := fields.Scheme()
		if err != nil {
			return false, err
		}

		if !strings.EqualFold(s, rs) {
			return false, nil
		}
	}

	if h := p.Host(); !h.IsZero() {
		rh, err := fields.Host()
		if err != nil {
			return false, err
		}

		if h != rh {
			return false, nil
		}
	}

	if port := p.Port(); !port.IsZero() {
		rp, err := fields.Port()
		if err != nil {
			return false, err
		}

		if port != rp {
			return false, nil
		}
	}

	if cp := p.ContextPath(); !cp.IsZero() {
		rcp, err := fields.ContextPath()
		if err != nil {
			return false, err
		}

		// the root context is the empty request context path
		if cp.IsRoot() {
			if rcp != "" {
				return false, nil
			}
		} else if cp.String() != rcp {
			return false, nil
		}
	}

	if prefix := p.Prefix(); !prefix.IsZero() {
		path, err := fields.Path()
		if err != nil {
			return false, err
		}

		if !strings.HasPrefix(path, prefix.String()) {
			return false, nil
		}
	}

	return true, nil
}

// newMatch must be called with the read lock held.
func (m *Manager) newMatch(e SearchEntry, fields *cachedFields) (*Match, error) {
	completed, err := e.Pattern.Complete(fields)
	if err != nil {
		return nil, requestFieldError(err)
	}

	path, err := fields.Path()
	if err != nil {
		return nil, err
	}

	if prefix := e.Pattern.Prefix(); !prefix.IsZero() {
		path = path[prefix.Len()-1:]
	}

	vp, err := net.ParsePath(path)
	if err != nil {
		return nil, wrapField("path", err)
	}

	return &Match{
		Environment: e.Environment,
		Pattern:     e.Pattern,
		Completed:   completed,
		VirtualHost: m.virtualHosts[e.Domain],
		VirtualPath: VirtualPath{Domain: e.Domain, Path: vp},
	}, nil
}
