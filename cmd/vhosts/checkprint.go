package main

import (
	"fmt"
	"io"
	"net/url"
	"slices"
	"text/tabwriter"

	"github.com/zalando/vhosts/config"
	"github.com/zalando/vhosts/logging"
	"github.com/zalando/vhosts/pattern"
	"github.com/zalando/vhosts/vhost"
	"github.com/zalando/vhosts/vhostfile"
)

// definitionFile returns the file to load, and the remaining positional
// arguments.
func definitionFile(cfg *config.Config) (string, []string, error) {
	args := cfg.Flags.Args()
	if cfg.VhostsFile != "" {
		return cfg.VhostsFile, args, nil
	}

	if len(args) == 0 {
		return "", nil, missingFile
	}

	return args[0], args[1:], nil
}

func loadManager(cfg *config.Config) (*vhost.Manager, []string, error) {
	path, args, err := definitionFile(cfg)
	if err != nil {
		return nil, nil, err
	}

	d, err := vhostfile.Load(path)
	if err != nil {
		return nil, nil, err
	}

	log := logging.New()
	m := vhost.NewManager(vhost.Options{Log: log})
	if err := d.ApplyWithOptions(m, vhostfile.Options{Log: log}); err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}

	return m, args, nil
}

func checkCmd(cfg *config.Config, _ io.Writer) error {
	_, _, err := loadManager(cfg)
	return err
}

func printManager(m *vhost.Manager, out io.Writer) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, e := range m.Environments() {
		fmt.Fprintf(w, "environment %s\n", e.Name())
		for _, vh := range m.VirtualHosts() {
			for i, p := range e.Patterns(vh.Domain()) {
				domain := vh.Domain().String()
				if i > 0 {
					domain = ""
				}

				fmt.Fprintf(w, "  %s\t%s\n", domain, p)
			}
		}
	}

	entries := m.SearchOrder()
	slices.SortStableFunc(entries, func(a, b vhost.SearchEntry) int {
		return pattern.Compare(a.Pattern, b.Pattern)
	})

	fmt.Fprintln(w, "patterns")
	for _, se := range entries {
		fmt.Fprintf(w, "  %s\t%s\t%s\n", se.Pattern, se.Environment, se.Domain)
	}

	return w.Flush()
}

func printCmd(cfg *config.Config, out io.Writer) error {
	m, _, err := loadManager(cfg)
	if err != nil {
		return err
	}

	return printManager(m, out)
}

func searchCmd(cfg *config.Config, out io.Writer) error {
	m, args, err := loadManager(cfg)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		return missingURL
	}

	for _, raw := range args {
		u, err := url.Parse(raw)
		if err != nil {
			return err
		}

		match, err := m.Search(vhost.URLFields(u, cfg.ContextPath))
		switch {
		case err != nil:
			fmt.Fprintf(out, "%s: %v\n", raw, err)
		case match == nil:
			fmt.Fprintf(out, "%s: no match\n", raw)
		default:
			fmt.Fprintf(out, "%s: %s %s\n", raw, match.Environment, match)
		}
	}

	return nil
}
