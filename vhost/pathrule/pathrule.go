/*
Package pathrule implements virtual host rules that match the virtual
path of the request, the path below the matched pattern prefix.

The rules read the match stored in the request context by vhost.Handler,
and fail with vhost.ErrMatchNotSet when there is none.

Every rule has a specification, that creates it from a name and a list of
arguments, e.g. in a definition file:

	rules:
	- name: StartsWith
	  args: ["/admin/"]
	- name: Not
	  rules:
	  - name: EndsWith
	    args: [".php"]
*/
package pathrule

import (
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/zalando/vhosts/net"
	"github.com/zalando/vhosts/vhost"
)

const (
	StartsWithName = "StartsWith"
	EndsWithName   = "EndsWith"
	ContainsName   = "Contains"
	EqualsName     = "Equals"
	RegexpName     = "Regexp"
	WildcardName   = "Wildcard"
	AllName        = "All"
	AnyName        = "Any"
	NotName        = "Not"
)

// ErrInvalidRuleParameters is returned when a rule cannot be created from
// its arguments.
var ErrInvalidRuleParameters = errors.New("invalid rule parameters")

type pathRule struct {
	name  string
	arg   string
	match func(path string) bool
}

func (r *pathRule) Match(req *http.Request) (bool, error) {
	m, err := vhost.MatchFromRequest(req)
	if err != nil {
		return false, err
	}

	return r.match(m.VirtualPath.Path.String()), nil
}

func (r *pathRule) String() string {
	return fmt.Sprintf("%s(%q)", r.name, r.arg)
}

// StartsWith matches virtual paths that start with prefix.
func StartsWith(prefix string) vhost.Rule {
	return &pathRule{
		name: StartsWithName,
		arg:  prefix,
		match: func(path string) bool {
			return strings.HasPrefix(path, prefix)
		},
	}
}

// EndsWith matches virtual paths that end with suffix.
func EndsWith(suffix string) vhost.Rule {
	return &pathRule{
		name: EndsWithName,
		arg:  suffix,
		match: func(path string) bool {
			return strings.HasSuffix(path, suffix)
		},
	}
}

// Contains matches virtual paths that contain substring.
func Contains(substring string) vhost.Rule {
	return &pathRule{
		name: ContainsName,
		arg:  substring,
		match: func(path string) bool {
			return strings.Contains(path, substring)
		},
	}
}

// Equals matches the virtual path target.
func Equals(target net.Path) vhost.Rule {
	return &pathRule{
		name: EqualsName,
		arg:  target.String(),
		match: func(path string) bool {
			return path == target.String()
		},
	}
}

// Regexp matches virtual paths that match expr completely.
func Regexp(expr string) (vhost.Rule, error) {
	rx, err := regexp.Compile(`^(?:` + expr + `)$`)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRuleParameters, err)
	}

	return &pathRule{name: RegexpName, arg: expr, match: rx.MatchString}, nil
}

// Wildcard matches virtual paths against a pattern where * stands for
// any sequence of characters, including the separator.
func Wildcard(pattern string) vhost.Rule {
	parts := strings.Split(pattern, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}

	rx := regexp.MustCompile(`^` + strings.Join(parts, `.*`) + `$`)
	return &pathRule{name: WildcardName, arg: pattern, match: rx.MatchString}
}

type allRule []vhost.Rule

// All matches when every rule matches. It stops at the first rule that
// does not match or fails.
func All(rules ...vhost.Rule) vhost.Rule { return allRule(rules) }

func (a allRule) Match(r *http.Request) (bool, error) {
	for _, rule := range a {
		if ok, err := rule.Match(r); err != nil || !ok {
			return false, err
		}
	}

	return true, nil
}

type anyRule []vhost.Rule

// Any matches when at least one rule matches. It stops at the first rule
// that matches or fails.
func Any(rules ...vhost.Rule) vhost.Rule { return anyRule(rules) }

func (a anyRule) Match(r *http.Request) (bool, error) {
	for _, rule := range a {
		ok, err := rule.Match(r)
		if err != nil {
			return false, err
		}

		if ok {
			return true, nil
		}
	}

	return false, nil
}

type notRule struct{ rule vhost.Rule }

// Not inverts rule. Errors are passed on.
func Not(rule vhost.Rule) vhost.Rule { return notRule{rule: rule} }

func (n notRule) Match(r *http.Request) (bool, error) {
	ok, err := n.rule.Match(r)
	if err != nil {
		return false, err
	}

	return !ok, nil
}
