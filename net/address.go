package net

import (
	"net/netip"
	"strings"
)

// Address is the host part of a URL: either a domain name or an IP
// address. The zero Address is unset.
type Address struct {
	ip   netip.Addr
	name DomainName
}

// ParseAddress parses a host as found in a URL or in a Host header
// without port. IPv6 literals may be given with or without brackets.
// IPv4-mapped IPv6 addresses are unmapped.
func ParseAddress(s string) (Address, error) {
	const kind = "host address"

	if s == "" {
		return Address{}, parseError(kind, s, "empty", nil)
	}

	if strings.HasPrefix(s, "[") || strings.HasSuffix(s, "]") {
		if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
			return Address{}, parseError(kind, s, "unbalanced brackets", nil)
		}

		ip, err := netip.ParseAddr(s[1 : len(s)-1])
		if err != nil || !ip.Is6() {
			return Address{}, parseError(kind, s, "bracketed value is not an IPv6 address", err)
		}

		return Address{ip: ip.Unmap()}, nil
	}

	if ip, err := netip.ParseAddr(s); err == nil {
		return Address{ip: ip.Unmap()}, nil
	}

	d, err := ParseDomainName(s)
	if err != nil {
		return Address{}, parseError(kind, s, "neither an IP address nor a domain name", err)
	}

	return Address{name: d}, nil
}

// MustParseAddress is like ParseAddress but panics on invalid input.
func MustParseAddress(s string) Address {
	a, err := ParseAddress(s)
	if err != nil {
		panic(err)
	}

	return a
}

// AddressOf returns the address of a domain name.
func AddressOf(d DomainName) Address { return Address{name: d} }

// AddressOfIP returns the address of an IP.
func AddressOfIP(ip netip.Addr) Address { return Address{ip: ip.Unmap()} }

// IsZero tells whether the address is unset.
func (a Address) IsZero() bool { return !a.ip.IsValid() && a.name.IsZero() }

// IsIP tells whether the address is an IP literal.
func (a Address) IsIP() bool { return a.ip.IsValid() }

// IP returns the IP of the address, or the invalid netip.Addr for domain
// names.
func (a Address) IP() netip.Addr { return a.ip }

// DomainName returns the domain name of the address, or the unset name
// for IP literals.
func (a Address) DomainName() DomainName { return a.name }

// String returns the address without IPv6 brackets.
func (a Address) String() string {
	if a.ip.IsValid() {
		return a.ip.String()
	}

	return a.name.String()
}

// BracketedString returns the address as it appears in a URL, with
// brackets around IPv6 literals.
func (a Address) BracketedString() string {
	if a.ip.Is6() {
		return "[" + a.ip.String() + "]"
	}

	return a.String()
}

// Compare orders unset addresses first, then domain names, then IP
// addresses.
func (a Address) Compare(o Address) int {
	switch {
	case a.IsZero() || o.IsZero():
		return compareUnset(a.IsZero(), o.IsZero())
	case a.IsIP() != o.IsIP():
		if a.IsIP() {
			return 1
		}

		return -1
	case a.IsIP():
		return a.ip.Compare(o.ip)
	default:
		return a.name.Compare(o.name)
	}
}

// compareUnset orders unset values first. Only valid when at least one
// of the values is unset.
func compareUnset(aUnset, bUnset bool) int {
	switch {
	case aUnset && bUnset:
		return 0
	case aUnset:
		return -1
	default:
		return 1
	}
}
