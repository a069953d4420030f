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

// Package callgraph implements the absint callgraph sub-command.
package callgraph

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/awslabs/ar-go-absint/analysis/callgraph"
	"github.com/awslabs/ar-go-absint/analysis/program"
	"github.com/awslabs/ar-go-absint/cmd/absint/tools"
	"github.com/awslabs/ar-go-absint/internal/formatutil"
	"github.com/awslabs/ar-go-absint/internal/funcutil"
)

// Usage is the help message of the callgraph sub-command
const Usage = `Print the static call graph of a program: its edges, the procedures that cannot be reached from the
entry points of the config, and the sets of mutually recursive procedures.

Usage:
  absint callgraph [options] package...
  absint callgraph [options] -program program.yaml

Use the -help flag to display the options.
`

// Run prints the call graph of the program loaded with flags.
func Run(flags tools.CommonFlags) error {
	cfg, err := tools.LoadConfig(flags.ConfigPath)
	if err != nil {
		return err
	}
	app, err := tools.LoadApplication(flags)
	if err != nil {
		return err
	}
	app.SetEntryPoints(cfg.MatchEntryPoint)
	Print(os.Stdout, app)
	return nil
}

// Print writes the static edges, the unreachable procedures and the recursive components of app to w
func Print(w io.Writer, app *program.Application) {
	cg := callgraph.New(app)
	fmt.Fprintln(w, formatutil.Bold("Calls:"))
	fmt.Fprint(w, cg.String())

	reachable := map[*program.Procedure]bool{}
	for _, p := range cg.Reachable(app.EntryPoints) {
		reachable[p] = true
	}
	unreachable := funcutil.Filter(app.Procedures, func(p *program.Procedure) bool { return !reachable[p] })
	fmt.Fprintf(w, "%s %d/%d\n", formatutil.Bold("Unreachable from the entry points:"), len(unreachable),
		len(app.Procedures))
	for _, p := range unreachable {
		fmt.Fprintf(w, "  %s\n", formatutil.Yellow(p.Name))
	}

	fmt.Fprintln(w, formatutil.Bold("Recursive components:"))
	for _, comp := range cg.RecursiveComponents() {
		names := funcutil.Map(comp, func(p *program.Procedure) string { return p.Name })
		fmt.Fprintf(w, "  {%s}\n", formatutil.Cyan(strings.Join(names, ", ")))
	}
}
