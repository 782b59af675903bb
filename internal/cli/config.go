package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/mboyd/etch/internal/compiler"
)

// ConfigFile is the optional per-directory configuration file name.
const ConfigFile = "etch.yaml"

// SpecExt is the spec file extension scanned by compile and validate.
const SpecExt = ".etch"

// DefaultOutputSuffix replaces SpecExt on generated files so the output
// is a sibling _test.go the Go toolchain picks up.
const DefaultOutputSuffix = "_gen_test.go"

// Config holds the generator settings for one spec directory.
// All fields are optional; zero values fall back to compiler defaults.
type Config struct {
	// Package is the package clause of generated files.
	Package string `yaml:"package"`
	// RuntimeImport is the import path of the replay runtime.
	RuntimeImport string `yaml:"runtime_import"`
	// Host names the host factory expression generated code calls.
	Host string `yaml:"host"`
	// CommandPrefix namespaces dot-commands.
	CommandPrefix string `yaml:"command_prefix"`
	// StaggerMS is the fixed type-stagger offset in milliseconds.
	StaggerMS int `yaml:"stagger_ms"`
	// OutputSuffix replaces the spec extension on generated file names.
	OutputSuffix string `yaml:"output_suffix"`
}

// LoadConfig reads etch.yaml from dir. A missing file yields the zero
// config; unknown keys are rejected so typos do not silently fall back
// to defaults.
func LoadConfig(dir string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(filepath.Join(dir, ConfigFile))
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", ConfigFile, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ConfigFile, err)
	}
	return cfg, nil
}

// Options maps the config onto compiler options.
func (c *Config) Options() compiler.Options {
	return compiler.Options{
		Package:       c.Package,
		RuntimeImport: c.RuntimeImport,
		HostExpr:      c.Host,
		CommandPrefix: c.CommandPrefix,
		StaggerMS:     c.StaggerMS,
	}
}

// outputPath derives the generated file path for a spec file.
func (c *Config) outputPath(specPath string) string {
	suffix := c.OutputSuffix
	if suffix == "" {
		suffix = DefaultOutputSuffix
	}
	base := specPath[:len(specPath)-len(SpecExt)]
	return base + suffix
}
