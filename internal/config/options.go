package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	semver "github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// Options represents the valang.yaml project configuration.
type Options struct {
	// Requires is a semver constraint the compiler version must satisfy (e.g. ">= 0.3, < 1.0").
	Requires string `yaml:"requires,omitempty"`

	// MaxErrors caps the number of diagnostics kept per unit. Zero means DefaultMaxErrors,
	// a negative value disables the cap.
	MaxErrors int `yaml:"max_errors,omitempty"`

	// WarningsAsErrors promotes every warning to an error, which suppresses lowering.
	WarningsAsErrors bool `yaml:"warnings_as_errors,omitempty"`

	// EmitTailCalls marks calls in tail-return position in the IR.
	// Defaults to true when omitted.
	EmitTailCalls *bool `yaml:"emit_tail_calls,omitempty"`

	// Entry is the function `valc run` calls when none is given.
	Entry string `yaml:"entry,omitempty"`
}

// Default returns the options used when no valang.yaml exists.
func Default() *Options {
	return &Options{MaxErrors: DefaultMaxErrors, Entry: DefaultEntry}
}

// TailCalls reports whether tail calls are flagged in lowered code.
func (o *Options) TailCalls() bool {
	if o == nil || o.EmitTailCalls == nil {
		return true
	}
	return *o.EmitTailCalls
}

// ErrorLimit returns the effective diagnostic cap; 0 means unlimited.
func (o *Options) ErrorLimit() int {
	if o == nil || o.MaxErrors == 0 {
		return DefaultMaxErrors
	}
	if o.MaxErrors < 0 {
		return 0
	}
	return o.MaxErrors
}

// Parse decodes and validates options from YAML.
func Parse(data []byte) (*Options, error) {
	opts := Default()
	if err := yaml.Unmarshal(data, opts); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ConfigFileName, err)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

// Load reads options from the given file.
func Load(path string) (*Options, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Find looks for valang.yaml in the directory of sourcePath.
// It returns the default options if the file does not exist.
func Find(sourcePath string) (*Options, error) {
	path := filepath.Join(filepath.Dir(sourcePath), ConfigFileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}
	return Load(path)
}

// Validate checks the options and the compiler version constraint.
func (o *Options) Validate() error {
	if o.Entry != "" && strings.ContainsAny(o.Entry, " \t\n") {
		return fmt.Errorf("%s: entry %q is not an identifier", ConfigFileName, o.Entry)
	}
	if o.Requires == "" {
		return nil
	}
	constraint, err := semver.NewConstraint(o.Requires)
	if err != nil {
		return fmt.Errorf("%s: requires: %w", ConfigFileName, err)
	}
	current, err := semver.NewVersion(Version)
	if err != nil {
		return fmt.Errorf("compiler version %q: %w", Version, err)
	}
	if ok, errs := constraint.Validate(current); !ok {
		msgs := make([]string, 0, len(errs))
		for _, e := range errs {
			msgs = append(msgs, e.Error())
		}
		return fmt.Errorf("%s: compiler %s does not satisfy %q: %s", ConfigFileName, Version, o.Requires, strings.Join(msgs, "; "))
	}
	return nil
}
