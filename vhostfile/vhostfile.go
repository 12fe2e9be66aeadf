package vhostfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	yaml "gopkg.in/yaml.v2"

	"github.com/zalando/vhosts/logging"
	"github.com/zalando/vhosts/net"
	"github.com/zalando/vhosts/pattern"
	"github.com/zalando/vhosts/vhost"
	"github.com/zalando/vhosts/vhost/pathrule"
)

// Format of a definition document.
type Format int

const (
	UnknownFormat Format = iota
	YAML
	TOML
)

func (f Format) String() string {
	switch f {
	case YAML:
		return "yaml"
	case TOML:
		return "toml"
	default:
		return "unknown"
	}
}

// FormatOf returns the format of a file by its extension.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	case ".toml":
		return TOML
	default:
		return UnknownFormat
	}
}

// ErrUnknownFormat is returned for files with an unsupported extension.
var ErrUnknownFormat = errors.New("unknown definition format")

// Definition describes virtual hosts and environments. The order of the
// entries is their registration order.
type Definition struct {
	VirtualHosts []VirtualHost `yaml:"virtualHosts" toml:"virtualHosts"`
	Environments []Environment `yaml:"environments" toml:"environments"`
}

type VirtualHost struct {
	Domain string `yaml:"domain" toml:"domain"`

	// Canonical defaults to https://domain:443 in the root context.
	Canonical *Pattern `yaml:"canonical,omitempty" toml:"canonical,omitempty"`

	Rules []Rule `yaml:"rules,omitempty" toml:"rules,omitempty"`
}

// Pattern fields left empty, or zero, are unset. The context path "/"
// is the root context.
type Pattern struct {
	Scheme      string `yaml:"scheme,omitempty" toml:"scheme,omitempty"`
	Host        string `yaml:"host,omitempty" toml:"host,omitempty"`
	Port        int    `yaml:"port,omitempty" toml:"port,omitempty"`
	ContextPath string `yaml:"contextPath,omitempty" toml:"contextPath,omitempty"`
	Prefix      string `yaml:"prefix,omitempty" toml:"prefix,omitempty"`
}

// Rule is created by the pathrule spec called Name. The nested rules are
// created first, and passed after Args.
type Rule struct {
	Name  string        `yaml:"name" toml:"name"`
	Args  []interface{} `yaml:"args,omitempty" toml:"args,omitempty"`
	Rules []Rule        `yaml:"rules,omitempty" toml:"rules,omitempty"`
}

type Environment struct {
	Name     string    `yaml:"name" toml:"name"`
	Mappings []Mapping `yaml:"mappings" toml:"mappings"`
}

// Mapping maps every pattern to Domain. The first pattern of the first
// mapping of a domain is its primary pattern in the environment.
type Mapping struct {
	Domain   string    `yaml:"domain" toml:"domain"`
	Patterns []Pattern `yaml:"patterns" toml:"patterns"`
}

// PositionError tells which entry of a definition failed.
type PositionError struct {
	Position string
	Err      error
}

func (e *PositionError) Error() string {
	return e.Position + ": " + e.Err.Error()
}

func (e *PositionError) Unwrap() error { return e.Err }

func positionError(err error, format string, args ...interface{}) error {
	return &PositionError{Position: fmt.Sprintf(format, args...), Err: err}
}

// Parse decodes a definition document. Unknown keys are rejected.
func Parse(data []byte, f Format) (*Definition, error) {
	var d Definition
	switch f {
	case YAML:
		if err := yaml.UnmarshalStrict(data, &d); err != nil {
			return nil, err
		}
	case TOML:
		md, err := toml.Decode(string(data), &d)
		if err != nil {
			return nil, err
		}

		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown keys: %v", undecoded)
		}
	default:
		return nil, ErrUnknownFormat
	}

	return &d, nil
}

// Load reads and parses the definition file at path. The format is
// chosen by the file extension.
func Load(path string) (*Definition, error) {
	f := FormatOf(path)
	if f == UnknownFormat {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	d, err := Parse(data, f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return d, nil
}

// Options for applying a definition.
type Options struct {
	// Rules used to create the rules of the virtual hosts. Defaults to
	// pathrule.Default().
	Rules pathrule.Registry

	// Log defaults to the logrus standard logger.
	Log logging.Logger
}

// Apply registers the definition in m with the default options.
func (d *Definition) Apply(m *vhost.Manager) error {
	return d.ApplyWithOptions(m, Options{})
}

// ApplyWithOptions registers the virtual hosts first, then the
// environments. Every mapping is registered as one batch. It stops at
// the first error. Entries applied before the error stay registered.
func (d *Definition) ApplyWithOptions(m *vhost.Manager, o Options) error {
	if o.Rules == nil {
		o.Rules = pathrule.Default()
	}

	if o.Log == nil {
		o.Log = logging.New()
	}

	for i, vh := range d.VirtualHosts {
		if err := applyVirtualHost(m, o.Rules, vh); err != nil {
			return positionError(err, "virtualHosts[%d] %s", i, vh.Domain)
		}
	}

	for i, ed := range d.Environments {
		e, err := m.NewEnvironment(ed.Name)
		if err != nil {
			return positionError(err, "environments[%d] %s", i, ed.Name)
		}

		for j, md := range ed.Mappings {
			if err := applyMapping(e, md); err != nil {
				o.Log.Warnf("environment %s: mapping of %s rejected: %v", ed.Name, md.Domain, err)
				return positionError(err, "environments[%d].mappings[%d] %s", i, j, md.Domain)
			}
		}
	}

	o.Log.Infof("definition applied: %d virtual hosts, %d environments", len(d.VirtualHosts), len(d.Environments))
	return nil
}

func applyVirtualHost(m *vhost.Manager, reg pathrule.Registry, vh VirtualHost) error {
	domain, err := net.ParseDomainName(vh.Domain)
	if err != nil {
		return fmt.Errorf("%w: %w", vhost.ErrInvalidArgument, err)
	}

	var canonical *pattern.Pattern
	if vh.Canonical != nil {
		if canonical, err = vh.Canonical.Pattern(); err != nil {
			return fmt.Errorf("canonical: %w", err)
		}
	}

	rules := make([]vhost.Rule, 0, len(vh.Rules))
	for i, rd := range vh.Rules {
		r, err := rd.create(reg)
		if err != nil {
			return fmt.Errorf("rules[%d]: %w", i, err)
		}

		rules = append(rules, r)
	}

	_, err = m.NewVirtualHost(domain, canonical, rules...)
	return err
}

func applyMapping(e *vhost.Environment, md Mapping) error {
	domain, err := net.ParseDomainName(md.Domain)
	if err != nil {
		return fmt.Errorf("%w: %w", vhost.ErrInvalidArgument, err)
	}

	patterns := make([]*pattern.Pattern, 0, len(md.Patterns))
	for i, pd := range md.Patterns {
		p, err := pd.Pattern()
		if err != nil {
			return fmt.Errorf("patterns[%d]: %w", i, err)
		}

		patterns = append(patterns, p)
	}

	return e.AddDomain(domain, patterns...)
}

// Pattern validates the fields and creates the pattern. Errors wrap
// vhost.ErrInvalidArgument.
func (pd Pattern) Pattern() (*pattern.Pattern, error) {
	var (
		f   = pattern.Fields{Scheme: pd.Scheme}
		err error
	)

	if pd.Host != "" {
		if f.Host, err = net.ParseAddress(pd.Host); err != nil {
			return nil, fmt.Errorf("%w: %w", vhost.ErrInvalidArgument, err)
		}
	}

	if pd.Port != 0 {
		if f.Port, err = net.NewPort(pd.Port, net.TCP); err != nil {
			return nil, fmt.Errorf("%w: %w", vhost.ErrInvalidArgument, err)
		}
	}

	if pd.ContextPath != "" {
		if f.ContextPath, err = net.ParsePath(pd.ContextPath); err != nil {
			return nil, fmt.Errorf("%w: %w", vhost.ErrInvalidArgument, err)
		}
	}

	if pd.Prefix != "" {
		if f.Prefix, err = net.ParsePath(pd.Prefix); err != nil {
			return nil, fmt.Errorf("%w: %w", vhost.ErrInvalidArgument, err)
		}
	}

	p, err := pattern.New(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", vhost.ErrInvalidArgument, err)
	}

	return p, nil
}

func (rd Rule) create(reg pathrule.Registry) (vhost.Rule, error) {
	args := append([]interface{}(nil), rd.Args...)
	for i, nested := range rd.Rules {
		r, err := nested.create(reg)
		if err != nil {
			return nil, fmt.Errorf("%s.rules[%d]: %w", rd.Name, i, err)
		}

		args = append(args, r)
	}

	return reg.Create(rd.Name, args)
}
