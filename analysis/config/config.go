// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"errors"
	"fmt"
	"os"
	"path"
	"regexp"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by all the errors returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// Config contains the entry points of the program to analyze and the options of the abstract interpretation.
// To add elements to a config file, add fields to this struct.
// If some field is not defined in the config file, it will be empty/zero in the struct.
// private fields are not populated from a yaml file, but computed after initialization
type Config struct {
	Options

	// EntryPoints lists the names (or regexes) of the procedures the analysis starts from
	EntryPoints []string `yaml:"entrypoints"`

	// compiled entry point regexes, when the entry point compiles to one
	entryPointRegexes []*regexp.Regexp

	// Analysis contains the settings of the fixpoint engine
	Analysis AnalysisOptions `yaml:"analysis"`
}

// Options are the general options of the tools.
type Options struct {
	// ReportsDir is the directory where the analysis reports will be stored. If the yaml config file this config
	// struct has been loaded from does not specify a ReportsDir but sets ReportResults to true, then ReportsDir will
	// be created next to the config file.
	ReportsDir string `yaml:"reports-dir"`

	// ReportResults can be set to true, in which case the per-context results of every procedure are written in a
	// yaml file in the reports directory
	ReportResults bool `yaml:"report-results"`

	// Loglevel controls the verbosity of the tool
	LogLevel int `yaml:"log-level"`

	// Suppress warnings
	SilenceWarn bool `yaml:"silence-warn"`
}

// AnalysisOptions are the options of the interprocedural fixpoint engine.
type AnalysisOptions struct {
	// ContextSensitivity selects the kind of context tokens (insensitive, k-call, recursion-free)
	ContextSensitivity ContextSensitivity `yaml:"context-sensitivity"`

	// ContextDepth is the k of k-call context sensitivity
	ContextDepth int `yaml:"context-depth"`

	// WorkingSet selects the working set of the intra-procedural fixpoint
	WorkingSet WorkingSetKind `yaml:"working-set"`

	// WideningThreshold is the number of lubs performed at each program point before widening
	WideningThreshold int `yaml:"widening-threshold"`

	// DescendingPhase selects the descending phase (none, narrowing, glb)
	DescendingPhase DescendingPhase `yaml:"descending-phase"`

	// DescendingGlbThreshold is the maximum number of descending iterations at each program point
	DescendingGlbThreshold int `yaml:"descending-glb-threshold"`

	// ValueDomain is the value domain of the ascending phase (sign, interval)
	ValueDomain string `yaml:"value-domain"`

	// DescendingDomain is the value domain the results are decoupled into before the descending phase. Empty means
	// the descending phase (if any) runs in the ValueDomain.
	DescendingDomain string `yaml:"descending-domain"`

	// ParameterAssignment is the strategy binding actual parameters to formal parameters
	ParameterAssignment string `yaml:"parameter-assignment"`

	// MaxFixpointIterations bounds the number of outer iterations of the interprocedural fixpoint. If it is <= 0, the
	// number of iterations is not bounded. Reaching the bound is an error.
	MaxFixpointIterations int `yaml:"max-fixpoint-iterations"`
}

// NewDefault returns an empty default config.
func NewDefault() *Config {
	return &Config{
		EntryPoints: []string{"main"},
		Options: Options{
			ReportsDir:    "",
			ReportResults: false,
			LogLevel:      int(InfoLevel),
			SilenceWarn:   false,
		},
		Analysis: AnalysisOptions{
			ContextSensitivity:     RecursionFreeContext,
			ContextDepth:           DefaultContextDepth,
			WorkingSet:             FIFOWorkingSet,
			WideningThreshold:      DefaultWideningThreshold,
			DescendingPhase:        NoDescending,
			DescendingGlbThreshold: DefaultDescendingGlbThreshold,
			ValueDomain:            IntervalDomain,
			DescendingDomain:       "",
			ParameterAssignment:    OrderPreservingAssignment,
			MaxFixpointIterations:  0,
		},
	}
}

// Load reads a configuration from a file
func Load(filename string) (*Config, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read config file: %w", err)
	}
	return LoadFromBytes(filename, b)
}

// LoadFromBytes reads a configuration from the contents b of the file filename. The file name is used to resolve
// relative paths.
func LoadFromBytes(filename string, b []byte) (*Config, error) {
	cfg := NewDefault()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("could not unmarshal config file: %w", err)
	}

	// If logLevel has not been specified (i.e. it is 0) set the default to Info
	if cfg.LogLevel == 0 {
		cfg.LogLevel = int(InfoLevel)
	}

	if cfg.ReportResults {
		if err := setReportsDir(cfg, filename); err != nil {
			return nil, err
		}
	}

	cfg.compileEntryPoints()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setReportsDir(c *Config, filename string) error {
	if c.ReportsDir == "" {
		tmpdir, err := os.MkdirTemp(path.Dir(filename), "*-report")
		if err != nil {
			return fmt.Errorf("could not create temp dir for reports")
		}
		c.ReportsDir = tmpdir
	} else {
		err := os.Mkdir(c.ReportsDir, 0750)
		if err != nil {
			if !os.IsExist(err) {
				return fmt.Errorf("could not create directory %s", c.ReportsDir)
			}
		}
	}
	return nil
}

func (c *Config) compileEntryPoints() {
	c.entryPointRegexes = make([]*regexp.Regexp, len(c.EntryPoints))
	for i, ep := range c.EntryPoints {
		if r, err := regexp.Compile("^(" + ep + ")$"); err == nil {
			c.entryPointRegexes[i] = r
		}
	}
}

// Validate returns an error wrapping ErrInvalidConfig if some option has an invalid value.
//
//gocyclo:ignore
func (c *Config) Validate() error {
	a := c.Analysis
	switch a.ContextSensitivity {
	case ContextInsensitive, RecursionFreeContext:
	case KCallContext:
		if a.ContextDepth <= 0 {
			return fmt.Errorf("%w: context-depth must be positive for k-call contexts, got %d",
				ErrInvalidConfig, a.ContextDepth)
		}
	default:
		return fmt.Errorf("%w: unknown context-sensitivity %q", ErrInvalidConfig, a.ContextSensitivity)
	}
	switch a.WorkingSet {
	case FIFOWorkingSet, LIFOWorkingSet, DuplicateFreeFIFOWorkingSet, DuplicateFreeLIFOWorkingSet:
	default:
		return fmt.Errorf("%w: unknown working-set %q", ErrInvalidConfig, a.WorkingSet)
	}
	if a.WideningThreshold < 0 {
		return fmt.Errorf("%w: widening-threshold must be non-negative, got %d", ErrInvalidConfig,
			a.WideningThreshold)
	}
	switch a.DescendingPhase {
	case NoDescending:
	case NarrowingDescending, GlbDescending:
		if a.DescendingGlbThreshold <= 0 {
			return fmt.Errorf("%w: descending-glb-threshold must be positive with a descending phase, got %d",
				ErrInvalidConfig, a.DescendingGlbThreshold)
		}
	default:
		return fmt.Errorf("%w: unknown descending-phase %q", ErrInvalidConfig, a.DescendingPhase)
	}
	switch a.ValueDomain {
	case SignDomain, IntervalDomain:
	default:
		return fmt.Errorf("%w: unknown value-domain %q", ErrInvalidConfig, a.ValueDomain)
	}
	if a.DescendingDomain != "" && a.DescendingDomain != a.ValueDomain {
		if a.ValueDomain != SignDomain || a.DescendingDomain != IntervalDomain {
			return fmt.Errorf("%w: cannot decouple %s results into %s", ErrInvalidConfig, a.ValueDomain,
				a.DescendingDomain)
		}
		if a.DescendingPhase == NoDescending {
			return fmt.Errorf("%w: descending-domain %s requires a descending phase", ErrInvalidConfig,
				a.DescendingDomain)
		}
	}
	switch a.ParameterAssignment {
	case OrderPreservingAssignment, LenientAssignment:
	default:
		return fmt.Errorf("%w: unknown parameter-assignment %q", ErrInvalidConfig, a.ParameterAssignment)
	}
	if len(c.EntryPoints) == 0 {
		return fmt.Errorf("%w: no entrypoints", ErrInvalidConfig)
	}
	return nil
}

// Decoupled returns true if the descending phase runs in a different domain than the ascending phase
func (c *Config) Decoupled() bool {
	return c.Analysis.DescendingDomain != "" && c.Analysis.DescendingDomain != c.Analysis.ValueDomain
}

// MatchEntryPoint returns true if the procedure name matches one of the entry points of the config. Entry points
// that compile to a regex must match the entire name; the others must be equal to the name.
func (c *Config) MatchEntryPoint(name string) bool {
	if len(c.entryPointRegexes) != len(c.EntryPoints) {
		c.compileEntryPoints()
	}
	for i, ep := range c.EntryPoints {
		if r := c.entryPointRegexes[i]; r != nil {
			if r.MatchString(name) {
				return true
			}
		} else if ep == name {
			return true
		}
	}
	return false
}
