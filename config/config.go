package config

import (
	"flag"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"
	"go4.org/netipx"
	"gopkg.in/yaml.v2"

	"github.com/zalando/vhosts/logging"
	"github.com/zalando/vhosts/metrics"
	"github.com/zalando/vhosts/net"
	"github.com/zalando/vhosts/vhost"
)

type Config struct {
	ConfigFile string
	Flags      *flag.FlagSet

	// generic:
	Address         string `yaml:"address"`
	SupportListener string `yaml:"support-listener"`
	VhostsFile      string `yaml:"vhosts-file"`
	DefaultDomain   string `yaml:"default-domain"`

	// request fields:
	ContextPath    string    `yaml:"context-path"`
	NormalizeHost  bool      `yaml:"normalize-host"`
	TrustedProxies *listFlag `yaml:"trusted-proxies"`

	// logging:
	ApplicationLogLevel       log.Level `yaml:"-"`
	ApplicationLogLevelString string    `yaml:"application-log-level"`
	ApplicationLogPrefix      string    `yaml:"application-log-prefix"`
	ApplicationLogJSONEnabled bool      `yaml:"application-log-json-enabled"`
	AccessLogDisabled         bool      `yaml:"access-log-disabled"`
	AccessLogJSONEnabled      bool      `yaml:"access-log-json-enabled"`

	// metrics:
	MetricsFlavour       *listFlag `yaml:"metrics-flavour"`
	MetricsPrefix        string    `yaml:"metrics-prefix"`
	EnableRuntimeMetrics bool      `yaml:"runtime-metrics"`

	// parsed values:
	TrustedProxiesSet *netipx.IPSet  `yaml:"-"`
	DefaultDomainName net.DomainName `yaml:"-"`
}

const (
	defaultAddress         = ":9090"
	defaultSupportListener = ":9911"
	defaultMetricsPrefix   = "vhosts."
)

func NewConfig() *Config {
	cfg := new(Config)
	cfg.MetricsFlavour = commaListFlag("codahale", "prometheus")
	cfg.TrustedProxies = commaListFlag()

	flag := flag.NewFlagSet("", flag.ExitOnError)
	flag.StringVar(&cfg.ConfigFile, "config-file", "", "if provided the flags will be loaded/overwritten by the values on the file (yaml)")

	// generic:
	flag.StringVar(&cfg.Address, "address", defaultAddress, "network address that the virtual hosts are served on")
	flag.StringVar(&cfg.SupportListener, "support-listener", defaultSupportListener, "network address for the metrics endpoint")
	flag.StringVar(&cfg.VhostsFile, "vhosts-file", "", "YAML or TOML file defining the virtual hosts and the environments")
	flag.StringVar(&cfg.DefaultDomain, "default-domain", "", "requests not matching any pattern are redirected to the canonical URL of this virtual host")

	// request fields:
	flag.StringVar(&cfg.ContextPath, "context-path", "", "path the application is mounted at, empty for the root context")
	flag.BoolVar(&cfg.NormalizeHost, "normalize-host", false, "converts the request host to lower case and removes the trailing dot before matching")
	flag.Var(cfg.TrustedProxies, "trusted-proxies", "comma separated list of addresses or CIDR prefixes whose X-Forwarded-Proto, X-Forwarded-Host and X-Forwarded-Port headers are used")

	// logging:
	flag.StringVar(&cfg.ApplicationLogLevelString, "application-log-level", "INFO", "log level for application logs, possible values: PANIC, FATAL, ERROR, WARN, INFO, DEBUG")
	flag.StringVar(&cfg.ApplicationLogPrefix, "application-log-prefix", "[APP]", "prefix for each log entry")
	flag.BoolVar(&cfg.ApplicationLogJSONEnabled, "application-log-json-enabled", false, "when this flag is set, log in JSON format is used")
	flag.BoolVar(&cfg.AccessLogDisabled, "access-log-disabled", false, "when this flag is set, no access log is printed")
	flag.BoolVar(&cfg.AccessLogJSONEnabled, "access-log-json-enabled", false, "when this flag is set, log in JSON format is used")

	// metrics:
	flag.Var(cfg.MetricsFlavour, "metrics-flavour", "Metrics flavour is used to change the exposed metrics format. Supported metric formats: 'codahale' and 'prometheus', you can select both of them")
	flag.StringVar(&cfg.MetricsPrefix, "metrics-prefix", defaultMetricsPrefix, "allows setting a custom path prefix for metrics export")
	flag.BoolVar(&cfg.EnableRuntimeMetrics, "runtime-metrics", true, "enables Go runtime metrics")

	cfg.Flags = flag
	return cfg
}

func validate(c *Config) error {
	_, err := log.ParseLevel(c.ApplicationLogLevelString)
	if err != nil {
		return err
	}

	if c.ContextPath != "" {
		if _, err := parseContextPath(c.ContextPath); err != nil {
			return fmt.Errorf("invalid context path: %w", err)
		}
	}

	if _, err := net.ParseIPCIDRs(c.TrustedProxies.values); err != nil {
		return fmt.Errorf("invalid trusted proxies: %w", err)
	}

	if c.DefaultDomain != "" {
		if _, err := net.ParseDomainName(c.DefaultDomain); err != nil {
			return fmt.Errorf("invalid default domain: %w", err)
		}
	}

	return nil
}

// non-root context paths start with a separator and never end in one
func parseContextPath(s string) (net.Path, error) {
	p, err := net.ParsePath(s)
	if err != nil {
		return net.Path{}, err
	}

	if p.HasTrailingSeparator() {
		return net.Path{}, fmt.Errorf("%q ends in %s", s, net.SeparatorString)
	}

	return p, nil
}

func (c *Config) Parse() error {
	return c.ParseArgs(os.Args[0], os.Args[1:])
}

// ParseArgs parses the flags, and when a config file is given, loads it
// and parses the flags once more, so that the flags take precedence.
// The positional arguments are left in c.Flags.Args().
func (c *Config) ParseArgs(progname string, args []string) error {
	c.Flags.Init(progname, flag.ContinueOnError)
	err := c.Flags.Parse(args)
	if err != nil {
		return err
	}

	if c.ConfigFile != "" {
		yamlFile, err := os.ReadFile(c.ConfigFile)
		if err != nil {
			return fmt.Errorf("invalid config file: %w", err)
		}

		err = yaml.Unmarshal(yamlFile, c)
		if err != nil {
			return fmt.Errorf("unmarshalling config file error: %w", err)
		}

		err = c.Flags.Parse(args)
		if err != nil {
			return err
		}
	}

	if err := validate(c); err != nil {
		return err
	}

	c.ApplicationLogLevel, _ = log.ParseLevel(c.ApplicationLogLevelString)
	c.TrustedProxiesSet, _ = net.ParseIPCIDRs(c.TrustedProxies.values)
	if c.DefaultDomain != "" {
		c.DefaultDomainName, _ = net.ParseDomainName(c.DefaultDomain)
	}

	return nil
}

func (c *Config) LoggingOptions() logging.Options {
	return logging.Options{
		ApplicationLogLevel:       c.ApplicationLogLevel.String(),
		ApplicationLogPrefix:      c.ApplicationLogPrefix,
		ApplicationLogJSONEnabled: c.ApplicationLogJSONEnabled,
		AccessLogDisabled:         c.AccessLogDisabled,
		AccessLogJSONEnabled:      c.AccessLogJSONEnabled,
	}
}

func (c *Config) MetricsOptions() metrics.Options {
	var kind metrics.Kind
	for _, v := range c.MetricsFlavour.values {
		kind |= metrics.ParseMetricsKind(v)
	}

	if kind == metrics.UnkownKind {
		kind = metrics.CodaHaleKind
	}

	return metrics.Options{
		Format:               kind,
		Prefix:               c.MetricsPrefix,
		EnableRuntimeMetrics: c.EnableRuntimeMetrics,
	}
}

func (c *Config) FieldOptions() vhost.FieldOptions {
	o := vhost.FieldOptions{
		ContextPath:    c.ContextPath,
		TrustedProxies: c.TrustedProxiesSet,
	}

	if c.NormalizeHost {
		o.HostPatch = net.HostPatch{
			ToLower:           true,
			RemoveTrailingDot: true,
		}
	}

	return o
}
