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

// Package tools contains utility types and functions for the absint sub-commands.
package tools

import (
	"flag"
	"fmt"
	"go/build"
	"os"

	"github.com/awslabs/ar-go-absint/analysis"
	"github.com/awslabs/ar-go-absint/analysis/config"
	"github.com/awslabs/ar-go-absint/analysis/program"
	"golang.org/x/tools/go/buildutil"
	"golang.org/x/tools/go/ssa"
)

// UnparsedCommonFlags represents an unparsed CLI sub-command flags.
type UnparsedCommonFlags struct {
	FlagSet     *flag.FlagSet
	ConfigPath  *string
	ProgramPath *string
	Verbose     *bool
}

// NewUnparsedCommonFlags returns an unparsed flag set with a given name.
// This is useful for creating sub-commands that have the flags -config,
// -program, -verbose and -build-tags but need other flags in addition.
func NewUnparsedCommonFlags(name string) UnparsedCommonFlags {
	cmd := flag.NewFlagSet(name, flag.ExitOnError)
	configPath := cmd.String("config", "", "config file path for analysis")
	programPath := cmd.String("program", "", "yaml program to analyze instead of Go packages")
	verbose := cmd.Bool("verbose", false, "verbose printing on standard output")
	cmd.Var((*buildutil.TagsFlag)(&build.Default.BuildTags), "build-tags", buildutil.TagsFlagDoc)
	return UnparsedCommonFlags{
		FlagSet:     cmd,
		ConfigPath:  configPath,
		ProgramPath: programPath,
		Verbose:     verbose,
	}
}

// CommonFlags represents a parsed CLI sub-command flags.
// E.g., for the command `absint analyze ...`, "analyze" is the sub-command.
type CommonFlags struct {
	FlagSet     *flag.FlagSet
	ConfigPath  string
	ProgramPath string
	Verbose     bool
}

// Parse parses args and returns the parsed common flags
func (f UnparsedCommonFlags) Parse(args []string) (CommonFlags, error) {
	if err := f.FlagSet.Parse(args); err != nil {
		return CommonFlags{}, fmt.Errorf("failed to parse command %s with args %v: %v", f.FlagSet.Name(), args, err)
	}
	return CommonFlags{
		FlagSet:     f.FlagSet,
		ConfigPath:  *f.ConfigPath,
		ProgramPath: *f.ProgramPath,
		Verbose:     *f.Verbose,
	}, nil
}

// NewCommonFlags returns a parsed flag set with a given name.
// Returns an error if args are invalid.
// Prints cmdUsage along with flag docs as the --help message.
func NewCommonFlags(name string, args []string, cmdUsage string) (CommonFlags, error) {
	flags := NewUnparsedCommonFlags(name)
	SetUsage(flags.FlagSet, cmdUsage)
	return flags.Parse(args)
}

// SetUsage sets cmd's usage (for --help flag) to output the string cmdUsage
// followed by each flag's documentation.
func SetUsage(cmd *flag.FlagSet, cmdUsage string) {
	cmd.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s\n", cmdUsage)
		fmt.Fprintf(os.Stderr, "Options:\n")
		cmd.VisitAll(func(f *flag.Flag) {
			fmt.Fprintf(os.Stderr, "  %s: %s (default: %q)\n", f.Name, f.Usage, f.DefValue)
		})
	}
}

// LoadConfig loads the config file from configPath, or returns the default config if configPath is empty.
func LoadConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		return config.NewDefault(), nil
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file %s: %v", configPath, err)
	}
	return cfg, nil
}

// LoadApplication loads the application to analyze: the yaml program at the program path if there is one, and
// otherwise the Go packages named by the remaining arguments.
func LoadApplication(flags CommonFlags) (*program.Application, error) {
	if flags.ProgramPath != "" {
		app, err := program.LoadYAML(flags.ProgramPath)
		if err != nil {
			return nil, fmt.Errorf("could not load program: %w", err)
		}
		return app, nil
	}
	if flags.FlagSet.NArg() == 0 {
		return nil, fmt.Errorf("could not load program: no package or yaml program given")
	}
	loaded, err := analysis.LoadProgram(nil, "", ssa.InstantiateGenerics, flags.FlagSet.Args())
	if err != nil {
		return nil, fmt.Errorf("could not load program: %w", err)
	}
	return loaded.Application()
}
