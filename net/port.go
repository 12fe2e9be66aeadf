package net

import (
	"cmp"
	"strconv"
	"strings"
)

// Protocol is the transport protocol of a port.
type Protocol uint8

const (
	// TCP is assumed for all ports read from HTTP requests.
	TCP Protocol = iota + 1
	UDP
)

func (p Protocol) String() string {
	switch p {
	case TCP:
		return "TCP"
	case UDP:
		return "UDP"
	default:
		return "unknown"
	}
}

// Port is a port number together with its transport protocol. The zero
// Port is unset.
type Port struct {
	number   uint16
	protocol Protocol
}

const (
	minPort = 1
	maxPort = 65535
)

// NewPort validates the number and the protocol of a port.
func NewPort(number int, protocol Protocol) (Port, error) {
	const kind = "port"

	if number < minPort || number > maxPort {
		return Port{}, parseError(kind, strconv.Itoa(number), "out of range", nil)
	}

	if protocol != TCP && protocol != UDP {
		return Port{}, parseError(kind, strconv.Itoa(number), "unknown protocol", nil)
	}

	return Port{number: uint16(number), protocol: protocol}, nil
}

// ParsePort parses a decimal port number.
func ParsePort(s string, protocol Protocol) (Port, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return Port{}, parseError("port", s, "not a number", err)
	}

	return NewPort(n, protocol)
}

// MustNewPort is like NewPort but panics on invalid input.
func MustNewPort(number int, protocol Protocol) Port {
	p, err := NewPort(number, protocol)
	if err != nil {
		panic(err)
	}

	return p
}

// DefaultPort returns the well known TCP port of the http and https
// schemes. The scheme is matched case-insensitively.
func DefaultPort(scheme string) (Port, bool) {
	switch strings.ToLower(scheme) {
	case "http":
		return Port{number: 80, protocol: TCP}, true
	case "https":
		return Port{number: 443, protocol: TCP}, true
	default:
		return Port{}, false
	}
}

// IsDefaultFor tells whether the port is the default port of scheme.
func (p Port) IsDefaultFor(scheme string) bool {
	d, ok := DefaultPort(scheme)
	return ok && d == p
}

// IsZero tells whether the port is unset.
func (p Port) IsZero() bool { return p.number == 0 }

// Number returns the port number, 0 when unset.
func (p Port) Number() int { return int(p.number) }

// Protocol returns the transport protocol of the port.
func (p Port) Protocol() Protocol { return p.protocol }

func (p Port) String() string {
	if p.IsZero() {
		return ""
	}

	return strconv.Itoa(int(p.number)) + "/" + p.protocol.String()
}

// Compare orders unset ports first, then by number and protocol.
func (p Port) Compare(o Port) int {
	if p.IsZero() || o.IsZero() {
		return compareUnset(p.IsZero(), o.IsZero())
	}

	if c := cmp.Compare(p.number, o.number); c != 0 {
		return c
	}

	return cmp.Compare(p.protocol, o.protocol)
}
