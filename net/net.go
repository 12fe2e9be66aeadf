/*
Package net provides the validated value types that virtual host patterns
are built from: domain names, host addresses, ports and paths. It also
contains helpers to read these values from incoming HTTP requests.

All types in this package are immutable, comparable values. Their zero
value means "unset", which patterns interpret as a wildcard.
*/
package net

import (
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"

	"go4.org/netipx"
)

// ParseError is returned when a raw value cannot be parsed into one of
// the validated types of this package.
type ParseError struct {
	// Kind names the type that was being parsed, e.g. "domain name".
	Kind string

	// Value is the rejected input.
	Value string

	// Reason describes why the value was rejected.
	Reason string

	// Err is the underlying error, when there is one.
	Err error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid %s %q: %s: %v", e.Kind, e.Value, e.Reason, e.Err)
	}

	return fmt.Sprintf("invalid %s %q: %s", e.Kind, e.Value, e.Reason)
}

func (e *ParseError) Unwrap() error { return e.Err }

func parseError(kind, value, reason string, err error) error {
	return &ParseError{Kind: kind, Value: value, Reason: reason, Err: err}
}

// strip port from addresses with hostname, ipv4 or ipv6
func stripPort(address string) string {
	if h, _, err := net.SplitHostPort(address); err == nil {
		return h
	}

	return address
}

// RemoteAddr returns the address of the peer that sent the request, not
// taking any X-Forwarded-For header into account.
func RemoteAddr(r *http.Request) netip.Addr {
	addr, _ := netip.ParseAddr(stripPort(r.RemoteAddr))
	return addr.Unmap()
}

// ParseIPCIDRs parses a list of addresses and CIDR prefixes into an IP
// set. It fails on the first invalid entry.
func ParseIPCIDRs(cidrs []string) (*netipx.IPSet, error) {
	var b netipx.IPSetBuilder
	for _, w := range cidrs {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}

		if strings.Contains(w, "/") {
			pref, err := netip.ParsePrefix(w)
			if err != nil {
				return nil, parseError("cidr", w, "not a prefix", err)
			}

			b.AddPrefix(pref)
			continue
		}

		addr, err := netip.ParseAddr(w)
		if err != nil {
			return nil, parseError("cidr", w, "not an address", err)
		}

		b.Add(addr)
	}

	return b.IPSet()
}
