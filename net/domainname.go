package net

import (
	"net/netip"
	"strings"

	"github.com/miekg/dns"
	"golang.org/x/net/idna"
)

const maxDomainNameLength = 253

// DomainName is a validated DNS name in its lower case ASCII form.
// Internationalized names are converted to punycode. A single trailing
// dot is accepted and removed.
type DomainName struct {
	name string
}

// ParseDomainName validates s and returns it as a DomainName.
func ParseDomainName(s string) (DomainName, error) {
	const kind = "domain name"

	if s == "" {
		return DomainName{}, parseError(kind, s, "empty", nil)
	}

	name := strings.TrimSuffix(s, ".")
	if name == "" {
		return DomainName{}, parseError(kind, s, "root domain is not allowed", nil)
	}

	if _, err := netip.ParseAddr(name); err == nil {
		return DomainName{}, parseError(kind, s, "is an IP address", nil)
	}

	ascii, err := idna.Lookup.ToASCII(name)
	if err != nil {
		return DomainName{}, parseError(kind, s, "not a valid IDN", err)
	}

	ascii = strings.ToLower(ascii)
	if len(ascii) > maxDomainNameLength {
		return DomainName{}, parseError(kind, s, "too long", nil)
	}

	if _, ok := dns.IsDomainName(ascii); !ok {
		return DomainName{}, parseError(kind, s, "not a valid DNS name", nil)
	}

	for _, label := range dns.SplitDomainName(ascii) {
		if strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return DomainName{}, parseError(kind, s, "label starts or ends with a hyphen", nil)
		}
	}

	return DomainName{name: ascii}, nil
}

// MustParseDomainName is like ParseDomainName but panics on invalid input.
// Meant for static tables and tests.
func MustParseDomainName(s string) DomainName {
	d, err := ParseDomainName(s)
	if err != nil {
		panic(err)
	}

	return d
}

func (d DomainName) String() string { return d.name }

// IsZero tells whether the domain name is unset.
func (d DomainName) IsZero() bool { return d.name == "" }

// Labels returns the number of labels in the name.
func (d DomainName) Labels() int {
	if d.name == "" {
		return 0
	}

	return dns.CountLabel(d.name)
}

// Compare orders domain names by their ASCII form. The unset name is
// ordered first.
func (d DomainName) Compare(o DomainName) int {
	return strings.Compare(d.name, o.name)
}

// MarshalText implements encoding.TextMarshaler.
func (d DomainName) MarshalText() ([]byte, error) {
	return []byte(d.name), nil
}
