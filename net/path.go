package net

import "strings"

const (
	// Separator separates the segments of a path.
	Separator = '/'

	// SeparatorString is Separator as a string.
	SeparatorString = "/"
)

// Path is an absolute, slash separated path. It always starts with a
// separator and never contains "." or ".." segments or control
// characters. The zero Path is unset.
type Path struct {
	p string
}

// Root is the path "/".
var Root = Path{p: SeparatorString}

// ParsePath validates s as a path.
func ParsePath(s string) (Path, error) {
	const kind = "path"

	if s == "" {
		return Path{}, parseError(kind, s, "empty", nil)
	}

	if s[0] != Separator {
		return Path{}, parseError(kind, s, "does not start with "+SeparatorString, nil)
	}

	for i := 0; i < len(s); i++ {
		if c := s[i]; c < ' ' || c == 0x7f {
			return Path{}, parseError(kind, s, "contains a control character", nil)
		}
	}

	for seg := range strings.SplitSeq(s[1:], SeparatorString) {
		if seg == "." || seg == ".." {
			return Path{}, parseError(kind, s, "contains a relative segment", nil)
		}
	}

	return Path{p: s}, nil
}

// MustParsePath is like ParsePath but panics on invalid input.
func MustParsePath(s string) Path {
	p, err := ParsePath(s)
	if err != nil {
		panic(err)
	}

	return p
}

func (p Path) String() string { return p.p }

// IsZero tells whether the path is unset.
func (p Path) IsZero() bool { return p.p == "" }

// IsRoot tells whether the path is "/".
func (p Path) IsRoot() bool { return p.p == SeparatorString }

// HasTrailingSeparator tells whether the path ends in a separator.
func (p Path) HasTrailingSeparator() bool {
	return strings.HasSuffix(p.p, SeparatorString)
}

// Len returns the length of the path in bytes.
func (p Path) Len() int { return len(p.p) }

// Compare orders unset paths first, then lexically.
func (p Path) Compare(o Path) int {
	if p.IsZero() || o.IsZero() {
		return compareUnset(p.IsZero(), o.IsZero())
	}

	return strings.Compare(p.p, o.p)
}
