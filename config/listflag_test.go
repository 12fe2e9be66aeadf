package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v2"
)

func TestListFlagSet(t *testing.T) {
	for _, tt := range []struct {
		name    string
		flag    *listFlag
		input   string
		values  []string
		value   string
		invalid bool
	}{{
		name:   "comma separated",
		flag:   commaListFlag(),
		input:  "10.0.0.0/8,192.168.1.1/32",
		values: []string{"10.0.0.0/8", "192.168.1.1/32"},
		value:  "10.0.0.0/8,192.168.1.1/32",
	}, {
		name:   "spaces and empty items are dropped",
		flag:   commaListFlag(),
		input:  " 10.0.0.0/8 ,, 192.168.1.1/32",
		values: []string{"10.0.0.0/8", "192.168.1.1/32"},
		value:  "10.0.0.0/8,192.168.1.1/32",
	}, {
		name:  "empty clears",
		flag:  commaListFlag(),
		input: "",
	}, {
		name:   "custom separator",
		flag:   &listFlag{sep: ":"},
		input:  "foo:bar",
		values: []string{"foo", "bar"},
		value:  "foo:bar",
	}, {
		name:   "allowed values",
		flag:   commaListFlag("codahale", "prometheus"),
		input:  "prometheus,codahale",
		values: []string{"prometheus", "codahale"},
		value:  "prometheus,codahale",
	}, {
		name:    "value not allowed",
		flag:    commaListFlag("codahale", "prometheus"),
		input:   "codahale,statsd",
		invalid: true,
	}} {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.flag.Set(tt.input)
			if tt.invalid {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.value, tt.flag.String())
			assert.ElementsMatch(t, tt.values, tt.flag.values)
		})
	}
}

func TestListFlagResetOnSet(t *testing.T) {
	lf := commaListFlag()
	require.NoError(t, lf.Set("a,b"))
	require.NoError(t, lf.Set("c"))
	assert.Equal(t, []string{"c"}, lf.values)

	require.NoError(t, lf.Set(""))
	assert.Empty(t, lf.values)
	assert.Equal(t, "", lf.String())
}

func TestListFlagYAML(t *testing.T) {
	var v struct {
		Flavours *listFlag `yaml:"flavours"`
	}

	v.Flavours = commaListFlag("codahale", "prometheus")
	require.NoError(t, yaml.Unmarshal([]byte("flavours: [codahale, prometheus]"), &v))
	assert.Equal(t, "codahale,prometheus", v.Flavours.String())

	v.Flavours = commaListFlag("codahale", "prometheus")
	assert.Error(t, yaml.Unmarshal([]byte("flavours: [statsd]"), &v))

	assert.Error(t, yaml.Unmarshal([]byte("flavours: codahale"), &v))
}

func TestNilListFlag(t *testing.T) {
	var lf *listFlag
	assert.NoError(t, lf.Set("a"))
	assert.Equal(t, "", lf.String())
}
