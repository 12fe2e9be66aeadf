package pathrule

import (
	"fmt"

	"github.com/zalando/vhosts/net"
	"github.com/zalando/vhosts/vhost"
)

// Spec creates rules of one kind from their arguments.
type Spec interface {
	Name() string

	// Create a rule instance. The combinators All, Any and Not take
	// vhost.Rule arguments, the others take strings.
	Create(args []interface{}) (vhost.Rule, error)
}

type stringSpec struct {
	name   string
	create func(string) (vhost.Rule, error)
}

func (s *stringSpec) Name() string { return s.name }

func (s *stringSpec) Create(args []interface{}) (vhost.Rule, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("%w: %s expects one argument, got %d", ErrInvalidRuleParameters, s.name, len(args))
	}

	a, ok := args[0].(string)
	if !ok {
		return nil, fmt.Errorf("%w: %s expects a string, got %T", ErrInvalidRuleParameters, s.name, args[0])
	}

	return s.create(a)
}

type combinatorSpec struct {
	name   string
	min    int
	max    int
	create func([]vhost.Rule) vhost.Rule
}

func (s *combinatorSpec) Name() string { return s.name }

func (s *combinatorSpec) Create(args []interface{}) (vhost.Rule, error) {
	if len(args) < s.min || s.max > 0 && len(args) > s.max {
		return nil, fmt.Errorf("%w: %s got %d rules", ErrInvalidRuleParameters, s.name, len(args))
	}

	rules := make([]vhost.Rule, 0, len(args))
	for _, a := range args {
		r, ok := a.(vhost.Rule)
		if !ok {
			return nil, fmt.Errorf("%w: %s expects rules, got %T", ErrInvalidRuleParameters, s.name, a)
		}

		rules = append(rules, r)
	}

	return s.create(rules), nil
}

func NewStartsWith() Spec {
	return &stringSpec{name: StartsWithName, create: func(a string) (vhost.Rule, error) { return StartsWith(a), nil }}
}

func NewEndsWith() Spec {
	return &stringSpec{name: EndsWithName, create: func(a string) (vhost.Rule, error) { return EndsWith(a), nil }}
}

func NewContains() Spec {
	return &stringSpec{name: ContainsName, create: func(a string) (vhost.Rule, error) { return Contains(a), nil }}
}

// NewEquals creates a spec whose argument must be a valid path.
func NewEquals() Spec {
	return &stringSpec{name: EqualsName, create: func(a string) (vhost.Rule, error) {
		p, err := net.ParsePath(a)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidRuleParameters, err)
		}

		return Equals(p), nil
	}}
}

func NewRegexp() Spec {
	return &stringSpec{name: RegexpName, create: Regexp}
}

func NewWildcard() Spec {
	return &stringSpec{name: WildcardName, create: func(a string) (vhost.Rule, error) { return Wildcard(a), nil }}
}

func NewAll() Spec {
	return &combinatorSpec{name: AllName, min: 1, create: func(r []vhost.Rule) vhost.Rule { return All(r...) }}
}

func NewAny() Spec {
	return &combinatorSpec{name: AnyName, min: 1, create: func(r []vhost.Rule) vhost.Rule { return Any(r...) }}
}

func NewNot() Spec {
	return &combinatorSpec{name: NotName, min: 1, max: 1, create: func(r []vhost.Rule) vhost.Rule { return Not(r[0]) }}
}

// Registry maps rule names to their specs.
type Registry map[string]Spec

// NewRegistry creates a registry of the given specs.
func NewRegistry(specs ...Spec) Registry {
	r := make(Registry, len(specs))
	for _, s := range specs {
		r[s.Name()] = s
	}

	return r
}

// Default returns a registry of every rule in this package.
func Default() Registry {
	return NewRegistry(
		NewStartsWith(),
		NewEndsWith(),
		NewContains(),
		NewEquals(),
		NewRegexp(),
		NewWildcard(),
		NewAll(),
		NewAny(),
		NewNot(),
	)
}

// Create creates a rule with the spec registered as name.
func (r Registry) Create(name string, args []interface{}) (vhost.Rule, error) {
	s, ok := r[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown rule %s", ErrInvalidRuleParameters, name)
	}

	return s.Create(args)
}
