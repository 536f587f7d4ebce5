// Package config loads and validates partials configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/phobologic/partials/internal/tags"
)

// FileName is the configuration file looked up in the root directory.
const FileName = ".partials.yaml"

// Options controls expansion of a single document.
type Options struct {
	Start       string `yaml:"start"`
	End         string `yaml:"end"`
	RemoveTags  bool   `yaml:"removeTags"`
	Quiet       bool   `yaml:"quiet"`
	Prefix      string `yaml:"prefix"`
	IgnoreError bool   `yaml:"ignoreError"`
}

// Template returns the tag templates of o.
func (o Options) Template() tags.Template {
	return tags.Template{Start: o.Start, End: o.End}
}

// Config is the full configuration of a run.
type Config struct {
	Options `yaml:",inline"`

	// Extensions selects which files under a directory root are documents.
	Extensions []string `yaml:"extensions"`
	// Exclude holds gitignore-style patterns of files that are never
	// treated as documents, typically the partials themselves.
	Exclude []string `yaml:"exclude"`
	// Out is the directory expanded documents are written to.
	Out string `yaml:"out"`
}

// DefaultOptions returns Options with every field set to its default.
func DefaultOptions() Options {
	return Options{
		Start:       tags.DefaultStart,
		End:         tags.DefaultEnd,
		RemoveTags:  false,
		Quiet:       false,
		Prefix:      "",
		IgnoreError: false,
	}
}

// Default returns the default Config.
func Default() Config {
	return Config{
		Options:    DefaultOptions(),
		Extensions: []string{".html"},
	}
}

// Load reads the YAML file at path over the defaults and validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML data over the defaults and validates the result.
// Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration and normalizes extensions to a leading dot.
func (c *Config) Validate() error {
	if err := c.Template().Validate(); err != nil {
		return err
	}
	if len(c.Extensions) == 0 {
		return errors.New("at least one document extension is required")
	}
	for i, ext := range c.Extensions {
		ext = strings.TrimSpace(ext)
		if ext == "" || ext == "." {
			return fmt.Errorf("invalid document extension %q", c.Extensions[i])
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Extensions[i] = strings.ToLower(ext)
	}
	return nil
}

// Marshal renders c as YAML.
func (c Config) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
