/*
Package pattern implements partially specified URL patterns.

A Pattern has five optional fields: scheme, host, port, context path and
prefix. An unset field is a wildcard: it matches any request value, and
when a pattern is completed against a request, the request value is used
in its place.

The context path follows the servlet convention. The root context is the
path "/" on a pattern, and the empty string on a request. A non-root
context path never ends in a separator. A prefix, when set, always ends in
a separator.

Patterns are immutable and comparable. Two patterns with the same fields
are equal with ==, and the value, not the pointer, is used as a map key.
*/
package pattern

import (
	"cmp"
	"net/url"
	"strconv"
	"strings"

	"github.com/zalando/vhosts/net"
)

const (
	HTTP  = "http"
	HTTPS = "https"

	// Wildcard is rendered in place of unset fields.
	Wildcard = "*"

	// unsetContextPath renders an unset context path. It is not accepted
	// as a context path value.
	unsetContextPath = net.SeparatorString + Wildcard
)

// Fields is the input of New. The zero value of any field leaves it unset.
type Fields struct {
	Scheme      string
	Host        net.Address
	Port        net.Port
	ContextPath net.Path
	Prefix      net.Path
}

// Pattern is a partially specified URL. Use New to create one.
type Pattern struct {
	scheme      string
	host        net.Address
	port        net.Port
	contextPath net.Path
	prefix      net.Path
}

// New validates the fields and returns a new pattern. The scheme is
// stored in lower case.
func New(f Fields) (*Pattern, error) {
	if f.Scheme != "" && !validScheme(f.Scheme) {
		return nil, &ValidationError{Field: "scheme", Value: f.Scheme, Reason: "invalid scheme syntax"}
	}

	if !f.ContextPath.IsZero() && !f.ContextPath.IsRoot() {
		cp := f.ContextPath.String()
		if cp == unsetContextPath {
			return nil, &ValidationError{Field: "context path", Value: cp, Reason: "reserved for the unset context path"}
		}

		if f.ContextPath.HasTrailingSeparator() {
			return nil, &ValidationError{Field: "context path", Value: cp, Reason: "non-root context path ends in " + net.SeparatorString}
		}
	}

	if !f.Prefix.IsZero() && !f.Prefix.HasTrailingSeparator() {
		return nil, &ValidationError{Field: "prefix", Value: f.Prefix.String(), Reason: "does not end in " + net.SeparatorString}
	}

	return &Pattern{
		scheme:      strings.ToLower(f.Scheme),
		host:        f.Host,
		port:        f.Port,
		contextPath: f.ContextPath,
		prefix:      f.Prefix,
	}, nil
}

// MustNew is like New but panics when the fields are invalid.
func MustNew(f Fields) *Pattern {
	p, err := New(f)
	if err != nil {
		panic(err)
	}

	return p
}

// scheme = ALPHA *( ALPHA / DIGIT / "+" / "-" / "." )
func validScheme(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z':
		case i > 0 && ('0' <= c && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}

	return true
}

// Scheme returns the lower case scheme, or "" when unset.
func (p Pattern) Scheme() string { return p.scheme }

func (p Pattern) Host() net.Address { return p.host }

func (p Pattern) Port() net.Port { return p.port }

// ContextPath returns the context path. The root context is net.Root.
func (p Pattern) ContextPath() net.Path { return p.contextPath }

func (p Pattern) Prefix() net.Path { return p.prefix }

// Fields returns the fields of the pattern, e.g. to derive a new one.
func (p Pattern) Fields() Fields {
	return Fields{
		Scheme:      p.scheme,
		Host:        p.host,
		Port:        p.port,
		ContextPath: p.contextPath,
		Prefix:      p.prefix,
	}
}

// IsComplete tells whether every field except the prefix is set. An
// unset prefix stands for the whole path space.
func (p Pattern) IsComplete() bool {
	return p.scheme != "" &&
		!p.host.IsZero() &&
		!p.port.IsZero() &&
		!p.contextPath.IsZero()
}

// Equal tells whether both patterns have the same fields. Two nil
// patterns are equal. It has a pointer receiver, unlike the accessors,
// to accept nil patterns.
func (p *Pattern) Equal(o *Pattern) bool {
	if p == nil || o == nil {
		return p == o
	}

	return *p == *o
}

// Compare orders patterns by host, context path, prefix, port and scheme.
// Unset fields are ordered first. The result groups patterns by host,
// which is the order used in diagnostic listings.
func Compare(a, b *Pattern) int {
	if c := a.host.Compare(b.host); c != 0 {
		return c
	}

	if c := a.contextPath.Compare(b.contextPath); c != 0 {
		return c
	}

	if c := a.prefix.Compare(b.prefix); c != 0 {
		return c
	}

	if c := a.port.Compare(b.port); c != 0 {
		return c
	}

	return cmp.Compare(a.scheme, b.scheme)
}

// String renders the pattern in a URL like form. Unset fields render as
// "*", except an unset scheme, which leaves a scheme relative "//host"
// form, an unset context path, which renders as "/*", and an unset
// prefix, which renders as nothing. The default port of the scheme is
// omitted.
func (p Pattern) String() string {
	var b strings.Builder
	if p.scheme != "" {
		b.WriteString(p.scheme)
		b.WriteByte(':')
	}

	b.WriteString("//")
	if p.host.IsZero() {
		b.WriteString(Wildcard)
	} else {
		b.WriteString(p.host.BracketedString())
	}

	switch {
	case p.port.IsZero():
		b.WriteByte(':')
		b.WriteString(Wildcard)
	case p.scheme != "" && p.port.IsDefaultFor(p.scheme):
	default:
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(p.port.Number()))
	}

	switch {
	case p.contextPath.IsZero():
		b.WriteString(unsetContextPath)
	case p.contextPath.IsRoot():
	default:
		b.WriteString(p.contextPath.String())
	}

	b.WriteString(p.prefix.String())
	return b.String()
}

// Complete returns a new pattern with every unset field except the prefix
// taken from src. The result is always a new pointer, even when the
// pattern was already complete, so the receiver is a pointer like the
// result. Only the fields that are needed are
// requested from src.
func (p *Pattern) Complete(src FieldSource) (*Pattern, error) {
	c := *p

	if c.scheme == "" {
		s, err := src.Scheme()
		if err != nil {
			return nil, err
		}

		if s == "" || !validScheme(s) {
			return nil, &ValidationError{Field: "scheme", Value: s, Reason: "invalid request scheme"}
		}

		c.scheme = strings.ToLower(s)
	}

	if c.host.IsZero() {
		h, err := src.Host()
		if err != nil {
			return nil, err
		}

		if h.IsZero() {
			return nil, &ValidationError{Field: "host", Reason: "request host is unset"}
		}

		c.host = h
	}

	if c.port.IsZero() {
		port, err := src.Port()
		if err != nil {
			return nil, err
		}

		if port.IsZero() {
			return nil, &ValidationError{Field: "port", Reason: "request port is unset"}
		}

		c.port = port
	}

	if c.contextPath.IsZero() {
		cp, err := src.ContextPath()
		if err != nil {
			return nil, err
		}

		path, err := requestContextPath(cp)
		if err != nil {
			return nil, err
		}

		c.contextPath = path
	}

	return &c, nil
}

// requestContextPath converts a request context path, where the root
// context is "", into the pattern form.
func requestContextPath(cp string) (net.Path, error) {
	if cp == "" {
		return net.Root, nil
	}

	path, err := net.ParsePath(cp)
	if err != nil {
		return net.Path{}, &ValidationError{Field: "context path", Value: cp, Reason: "invalid request context path", Err: err}
	}

	if path.IsRoot() || path.HasTrailingSeparator() || cp == unsetContextPath {
		return net.Path{}, &ValidationError{Field: "context path", Value: cp, Reason: "invalid request context path"}
	}

	return path, nil
}

// URL returns the URL that the pattern stands for. It fails when the
// pattern is not complete. The default port of the scheme is omitted,
// and an unset prefix resolves to the root of the context.
func (p Pattern) URL() (*url.URL, error) {
	if !p.IsComplete() {
		return nil, &ValidationError{Field: "pattern", Value: p.String(), Reason: "not complete"}
	}

	host := p.host.BracketedString()
	if !p.port.IsDefaultFor(p.scheme) {
		host += ":" + strconv.Itoa(p.port.Number())
	}

	path := net.SeparatorString
	if !p.prefix.IsZero() {
		path = p.prefix.String()
	}

	if !p.contextPath.IsRoot() {
		path = p.contextPath.String() + path
	}

	return &url.URL{Scheme: p.scheme, Host: host, Path: path}, nil
}
