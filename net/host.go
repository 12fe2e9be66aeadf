package net

import (
	"net"
	"strings"
)

// HostPatch normalizes the raw host[:port] value of a Host header
// before it is parsed into an Address.
type HostPatch struct {
	// Remove trailing dot if present
	RemoveTrailingDot bool

	// Convert to lowercase
	ToLower bool
}

// SplitHost splits a raw host[:port] value. IPv6 literals are returned
// without brackets when a port is present, and unchanged otherwise. The
// port is empty when the value has none.
func SplitHost(hostport string) (host, port string) {
	host = hostport

	// avoid net.SplitHostPort for value without port
	if strings.IndexByte(hostport, ':') != -1 && !strings.HasSuffix(hostport, "]") {
		if sh, sp, err := net.SplitHostPort(hostport); err == nil {
			host, port = sh, sp
		}
	}

	return host, port
}

// Apply splits the raw value and patches its host part.
func (h HostPatch) Apply(hostport string) (host, port string) {
	host, port = SplitHost(hostport)

	if h.RemoveTrailingDot {
		last := len(host) - 1
		if last >= 0 && host[last] == '.' {
			host = host[:last]
		}
	}

	if h.ToLower {
		host = strings.ToLower(host)
	}

	return host, port
}

// ParseHostPort parses a raw host[:port] value into its address and, when
// present, its TCP port.
func (h HostPatch) ParseHostPort(hostport string) (Address, Port, error) {
	host, port := h.Apply(hostport)
	if host == "" {
		return Address{}, Port{}, parseError("host", hostport, "empty", nil)
	}

	// a bare IPv6 literal without brackets and without port
	if strings.Count(host, ":") > 1 && !strings.HasPrefix(host, "[") && port == "" {
		return Address{}, Port{}, parseError("host", hostport, "IPv6 literal without brackets", nil)
	}

	a, err := ParseAddress(host)
	if err != nil {
		return Address{}, Port{}, err
	}

	if port == "" {
		return a, Port{}, nil
	}

	p, err := ParsePort(port, TCP)
	if err != nil {
		return Address{}, Port{}, err
	}

	return a, p, nil
}
