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

// Package analyze implements the absint analyze sub-command.
package analyze

import (
	"fmt"
	"os"

	"github.com/awslabs/ar-go-absint/analysis"
	"github.com/awslabs/ar-go-absint/analysis/config"
	"github.com/awslabs/ar-go-absint/cmd/absint/tools"
	"github.com/awslabs/ar-go-absint/internal/formatutil"
)

// Flags represents the parsed flags for the analyze sub-command.
type Flags struct {
	tools.CommonFlags
	output string
}

// NewFlags creates parsed analyze sub-command flags for args.
func NewFlags(args []string) (Flags, error) {
	flags := tools.NewUnparsedCommonFlags("analyze")
	output := flags.FlagSet.String("output", "", "file the yaml report is written to (default: standard output)")
	tools.SetUsage(flags.FlagSet, Usage)
	common, err := flags.Parse(args)
	if err != nil {
		return Flags{}, err
	}
	return Flags{CommonFlags: common, output: *output}, nil
}

// Usage is the help message of the analyze sub-command
const Usage = `Run the abstract interpretation of a program and report the states at the entry and exit of every
procedure, in every calling context.

Usage:
  absint analyze [options] package...
  absint analyze [options] -program program.yaml

Use the -help flag to display the options.

Examples:
% absint analyze -config config.yaml ./cmd/server
% absint analyze -program loop.yaml -output report.yaml
`

// Run runs the analysis with flags.
func Run(flags Flags) error {
	cfg, err := tools.LoadConfig(flags.ConfigPath)
	if err != nil {
		return err
	}
	logger := config.NewLogGroup(cfg)
	if flags.Verbose {
		logger.SetLevel(config.DebugLevel)
	}

	fmt.Fprintln(os.Stderr, formatutil.Faint("Reading sources"))
	app, err := tools.LoadApplication(flags.CommonFlags)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr, formatutil.Faint("Analyzing"))
	report, err := analysis.Run(cfg, app, logger)
	if err != nil {
		return err
	}

	out := os.Stdout
	if flags.output != "" {
		f, err := os.Create(flags.output)
		if err != nil {
			return fmt.Errorf("could not create output file: %w", err)
		}
		defer f.Close()
		out = f
	}
	if err := report.WriteYAML(out); err != nil {
		return err
	}
	if cfg.ReportResults {
		name, err := report.Save(cfg)
		if err != nil {
			return err
		}
		logger.Infof("Report written in %s", name)
	}
	fmt.Fprintf(os.Stderr, "%s %d procedures analyzed in %d iterations\n", formatutil.Green("Done:"),
		len(report.Procedures), report.Iterations)
	return nil
}
