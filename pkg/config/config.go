// Package config loads the embedls project configuration from yaml, toml or
// hcl files.
package config

import (
	"bytes"
	"path/filepath"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
	"gopkg.in/yaml.v3"

	"github.com/walteh/embedls/pkg/embedded"
	"github.com/walteh/embedls/pkg/sfc"
)

var ErrUnknownFormat = errors.Base("unknown config format")

// FileNames are looked up, in order, when no config path is given.
var FileNames = []string{"embedls.yaml", "embedls.yml", "embedls.toml", "embedls.hcl"}

type Config struct {
	Include         []string          `yaml:"include,omitempty" toml:"include" hcl:"include,optional"`
	Exclude         []string          `yaml:"exclude,omitempty" toml:"exclude" hcl:"exclude,optional"`
	ScriptLanguages []string          `yaml:"script_languages,omitempty" toml:"script_languages" hcl:"script_languages,optional"`
	Composers       []*ComposerConfig `yaml:"composers,omitempty" toml:"composer" hcl:"composer,block"`
}

type ComposerConfig struct {
	Name       string   `yaml:"name" toml:"name" hcl:"name,label"`
	Extensions []string `yaml:"extensions,omitempty" toml:"extensions" hcl:"extensions,optional"`
	Disabled   bool     `yaml:"disabled,omitempty" toml:"disabled" hcl:"disabled,optional"`
}

func Default() *Config {
	return &Config{
		Include:         []string{"**/*" + sfc.DefaultExtension, "**/*.ts", "**/*.js"},
		Exclude:         []string{"**/node_modules/**"},
		ScriptLanguages: []string{"typescript", "javascript"},
		Composers:       []*ComposerConfig{{Name: "sfc", Extensions: []string{sfc.DefaultExtension}}},
	}
}

// LoadConfig reads path from fs and picks the decoder from its extension.
// Fields left empty take their default value.
func LoadConfig(fs afero.Fs, path string) (*Config, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		decoder := yaml.NewDecoder(bytes.NewReader(data))
		decoder.KnownFields(true)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, errors.Errorf("parsing YAML: %w", err)
		}
	case ".toml":
		meta, err := toml.Decode(string(data), &cfg)
		if err != nil {
			return nil, errors.Errorf("parsing TOML: %w", err)
		}
		if undecoded := meta.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return nil, errors.Errorf("parsing TOML: unknown keys %s", strings.Join(keys, ", "))
		}
	case ".hcl":
		if err := decodeHCL(path, data, &cfg); err != nil {
			return nil, err
		}
	default:
		return nil, errors.Errorf("%s: %w", path, ErrUnknownFormat)
	}

	cfg.fill(Default())
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating %s: %w", path, err)
	}
	return &cfg, nil
}

func decodeHCL(path string, data []byte, cfg *Config) error {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(data, path)
	if diags.HasErrors() {
		return errors.Errorf("parsing HCL: %s", diags.Error())
	}

	ctx := &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"default_extension": cty.StringVal(sfc.DefaultExtension),
		},
	}
	if diags := gohcl.DecodeBody(file.Body, ctx, cfg); diags.HasErrors() {
		return errors.Errorf("decoding HCL: %s", diags.Error())
	}
	return nil
}

// Discover loads the first of FileNames found in dir. The default
// configuration is returned, with an empty path, when there is none.
func Discover(fs afero.Fs, dir string) (*Config, string, error) {
	for _, name := range FileNames {
		path := filepath.Join(dir, name)
		ok, err := afero.Exists(fs, path)
		if err != nil {
			return nil, "", errors.Errorf("looking for %s: %w", path, err)
		}
		if !ok {
			continue
		}
		cfg, err := LoadConfig(fs, path)
		if err != nil {
			return nil, "", err
		}
		return cfg, path, nil
	}
	return Default(), "", nil
}

func (c *Config) fill(def *Config) {
	if len(c.Include) == 0 {
		c.Include = def.Include
	}
	if len(c.Exclude) == 0 {
		c.Exclude = def.Exclude
	}
	if len(c.ScriptLanguages) == 0 {
		c.ScriptLanguages = def.ScriptLanguages
	}
	if len(c.Composers) == 0 {
		c.Composers = def.Composers
	}
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var result *multierror.Error

	check := func(field string, patterns []string) {
		for _, p := range patterns {
			if !doublestar.ValidatePattern(p) {
				result = multierror.Append(result, errors.Errorf("%s: invalid pattern %q", field, p))
			}
		}
	}
	check("include", c.Include)
	check("exclude", c.Exclude)

	seen := map[string]struct{}{}
	for _, comp := range c.Composers {
		if comp == nil {
			continue
		}
		if _, dup := seen[comp.Name]; dup {
			result = multierror.Append(result, errors.Errorf("composer %q: declared twice", comp.Name))
		}
		seen[comp.Name] = struct{}{}
		if comp.Name != "sfc" {
			result = multierror.Append(result, errors.Errorf("composer %q: unknown composer", comp.Name))
		}
		for _, ext := range comp.Extensions {
			if !strings.HasPrefix(ext, ".") {
				result = multierror.Append(result, errors.Errorf("composer %q: extension %q must start with a dot", comp.Name, ext))
			}
		}
	}

	return result.ErrorOrNil()
}

// BuildComposers returns the enabled composers in declaration order.
func (c *Config) BuildComposers() []embedded.Composer {
	var out []embedded.Composer
	for _, comp := range c.Composers {
		if comp == nil || comp.Disabled {
			continue
		}
		switch comp.Name {
		case "sfc":
			out = append(out, sfc.NewComposer(slices.Clone(comp.Extensions)...))
		}
	}
	return out
}
