// Package config loads INI-style configuration files and adds the list
// coercions the analysis code relies on: comma-separated lists and
// comma-separated ranges like "3500-4500,4500-5500".
package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-viper/encoding/ini"
	"github.com/spf13/viper"
)

// Errors returned by the option getters.
var (
	ErrNoOption = errors.New("no such option")
	ErrBadBool  = errors.New("not a boolean")
)

// booleanStates are the accepted boolean spellings.
var booleanStates = map[string]bool{
	"1": true, "yes": true, "true": true, "on": true,
	"0": false, "no": false, "false": false, "off": false,
}

// Config wraps a viper instance holding an INI configuration.
type Config struct {
	v *viper.Viper
}

// newViper builds a viper instance with the INI codec registered. Viper no
// longer ships INI support itself.
func newViper() (*viper.Viper, error) {
	registry := viper.NewCodecRegistry()
	if err := registry.RegisterCodec("ini", ini.Codec{}); err != nil {
		return nil, err
	}
	return viper.NewWithOptions(
		viper.WithEncoderRegistry(registry),
		viper.WithDecoderRegistry(registry),
	), nil
}

// Load reads the INI file at path.
func Load(path string) (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}
	v.SetConfigFile(path)
	v.SetConfigType("ini")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return &Config{v: v}, nil
}

// LoadString parses an INI configuration from a string.
func LoadString(content string) (*Config, error) {
	v, err := newViper()
	if err != nil {
		return nil, err
	}
	v.SetConfigType("ini")
	if err := v.ReadConfig(strings.NewReader(content)); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return &Config{v: v}, nil
}

// FromViper wraps an existing viper instance.
func FromViper(v *viper.Viper) *Config { return &Config{v: v} }

func key(section, option string) string { return section + "." + option }

// Has reports whether section.option is present.
func (c *Config) Has(section, option string) bool {
	return c.v.IsSet(key(section, option))
}

// Get returns the raw string value of section.option.
func (c *Config) Get(section, option string) (string, error) {
	k := key(section, option)
	if !c.v.IsSet(k) {
		return "", fmt.Errorf("%w: %s in section %s", ErrNoOption, option, section)
	}
	return c.v.GetString(k), nil
}

// Set overrides section.option with value.
func (c *Config) Set(section, option, value string) {
	c.v.Set(key(section, option), value)
}

// GetList coerces section.option from a comma-separated list to a string
// slice. An empty value yields an empty list. When useDefault is true a
// missing option yields an empty list instead of ErrNoOption.
func (c *Config) GetList(section, option string, useDefault bool) ([]string, error) {
	value, err := c.Get(section, option)
	if err != nil {
		if useDefault {
			return []string{}, nil
		}
		return nil, err
	}

	if strings.TrimSpace(value) == "" {
		return []string{}, nil
	}

	parts := strings.Split(value, ",")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out, nil
}

// GetIntList is GetList with each element converted to int.
func (c *Config) GetIntList(section, option string, useDefault bool) ([]int, error) {
	raw, err := c.GetList(section, option, useDefault)
	if err != nil {
		return nil, err
	}
	out := make([]int, len(raw))
	for i, s := range raw {
		v, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("option %s in section %s: %w", option, section, err)
		}
		out[i] = v
	}
	return out, nil
}

// GetFloatList is GetList with each element converted to float64.
func (c *Config) GetFloatList(section, option string, useDefault bool) ([]float64, error) {
	raw, err := c.GetList(section, option, useDefault)
	if err != nil {
		return nil, err
	}
	out := make([]float64, len(raw))
	for i, s := range raw {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("option %s in section %s: %w", option, section, err)
		}
		out[i] = v
	}
	return out, nil
}

// GetBoolList is GetList with each element converted using the standard
// boolean spellings (1/yes/true/on, 0/no/false/off).
func (c *Config) GetBoolList(section, option string, useDefault bool) ([]bool, error) {
	raw, err := c.GetList(section, option, useDefault)
	if err != nil {
		return nil, err
	}
	out := make([]bool, len(raw))
	for i, s := range raw {
		v, ok := booleanStates[strings.ToLower(s)]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrBadBool, s)
		}
		out[i] = v
	}
	return out, nil
}

// GetListOfList coerces section.option from a comma-separated list of
// dash-separated groups to a slice of string slices:
//
//	"3500-4500,4500-5500" -> [["3500" "4500"] ["4500" "5500"]]
//
// An empty value, or a missing option with useDefault set, yields nil.
func (c *Config) GetListOfList(section, option string, useDefault bool) ([][]string, error) {
	value, err := c.Get(section, option)
	if err != nil {
		if useDefault {
			return nil, nil
		}
		return nil, err
	}

	if strings.TrimSpace(value) == "" {
		return nil, nil
	}

	var out [][]string
	for _, group := range strings.Split(value, ",") {
		var inner []string
		for _, item := range strings.Split(group, "-") {
			inner = append(inner, strings.TrimSpace(item))
		}
		out = append(out, inner)
	}
	return out, nil
}

// GetFloatRanges is GetListOfList with every element converted to float64.
func (c *Config) GetFloatRanges(section, option string, useDefault bool) ([][]float64, error) {
	raw, err := c.GetListOfList(section, option, useDefault)
	if err != nil {
		return nil, err
	}
	out := make([][]float64, len(raw))
	for i, group := range raw {
		out[i] = make([]float64, len(group))
		for j, s := range group {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return nil, fmt.Errorf("option %s in section %s: %w", option, section, err)
			}
			out[i][j] = v
		}
	}
	return out, nil
}

// OverridePrefix and OverrideSep are the defaults used by Override to
// recognize override keys of the form setting__section__option.
const (
	OverridePrefix = "setting"
	OverrideSep    = "__"
)

// Override replaces options with the non-empty values of overrides whose keys
// have the form setting__section__option. Keys that do not match the pattern,
// empty values, and section/option pairs not already present are skipped.
func (c *Config) Override(overrides map[string]string) {
	prefix := OverridePrefix + OverrideSep
	for k, value := range overrides {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		parts := strings.Split(k, OverrideSep)
		if len(parts) != 3 {
			continue
		}
		section, option := parts[1], parts[2]
		if value == "" {
			continue
		}
		if !c.Has(section, option) {
			continue
		}
		c.Set(section, option, value)
	}
}
