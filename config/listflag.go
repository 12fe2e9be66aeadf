package config

import (
	"fmt"
	"slices"
	"strings"
)

// listFlag is a separated list flag, that can be set from a YAML
// sequence, too. When allowed is not empty, it accepts only the listed
// values.
type listFlag struct {
	sep     string
	allowed []string
	value   string
	values  []string
}

func commaListFlag(allowed ...string) *listFlag {
	return &listFlag{sep: ",", allowed: allowed}
}

func (lf *listFlag) set(values []string) error {
	lf.values = lf.values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			lf.values = append(lf.values, v)
		}
	}

	lf.value = strings.Join(lf.values, lf.sep)
	if len(lf.allowed) == 0 {
		return nil
	}

	for _, v := range lf.values {
		if !slices.Contains(lf.allowed, v) {
			return fmt.Errorf("value not allowed: %s, allowed: %s", v, strings.Join(lf.allowed, lf.sep))
		}
	}

	return nil
}

// Set replaces the values. An empty string clears the list.
func (lf *listFlag) Set(value string) error {
	if lf == nil {
		return nil
	}

	return lf.set(strings.Split(value, lf.sep))
}

func (lf *listFlag) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var values []string
	if err := unmarshal(&values); err != nil {
		return err
	}

	return lf.set(values)
}

func (lf *listFlag) String() string {
	if lf == nil {
		return ""
	}

	return lf.value
}
