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

package frontend

import (
	_ "embed"
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"strings"
	"testing"

	"github.com/awslabs/ar-go-absint/analysis/callctx"
	"github.com/awslabs/ar-go-absint/analysis/callgraph"
	"github.com/awslabs/ar-go-absint/analysis/config"
	"github.com/awslabs/ar-go-absint/analysis/domains/env"
	"github.com/awslabs/ar-go-absint/analysis/domains/heap"
	"github.com/awslabs/ar-go-absint/analysis/domains/interval"
	"github.com/awslabs/ar-go-absint/analysis/domains/sign"
	"github.com/awslabs/ar-go-absint/analysis/domains/typeset"
	"github.com/awslabs/ar-go-absint/analysis/fixpoint"
	"github.com/awslabs/ar-go-absint/analysis/interproc"
	"github.com/awslabs/ar-go-absint/analysis/lattice"
	"github.com/awslabs/ar-go-absint/analysis/program"
	"github.com/awslabs/ar-go-absint/analysis/state"
	"golang.org/x/exp/slices"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

//go:embed testdata/p.go
var source string

func buildApplication(t *testing.T) *program.Application {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "p.go", source, 0)
	if err != nil {
		t.Fatalf("failed to parse test source: %v", err)
	}
	pkg := types.NewPackage("p", "")
	ssaPkg, _, err := ssautil.BuildPackage(&types.Config{Importer: importer.Default()}, fset, pkg,
		[]*ast.File{f}, ssa.BuilderMode(0))
	if err != nil {
		t.Fatalf("failed to build ssa: %v", err)
	}
	app, err := TranslateProgram(ssaPkg.Prog, func(f *ssa.Function) bool { return f.Pkg == ssaPkg })
	if err != nil {
		t.Fatalf("failed to translate: %v", err)
	}
	return app
}

func procedure(t *testing.T, app *program.Application, name string) *program.Procedure {
	t.Helper()
	p, ok := app.Procedure(name)
	if !ok {
		t.Fatalf("no procedure %s", name)
	}
	return p
}

// analyze runs the analysis from the entry procedure and returns the value returned by the procedure proc
func analyze[V env.Value[V]](t *testing.T, app *program.Application, entry string, proc string,
	opts fixpoint.Options) V {
	t.Helper()
	app.SetEntryPoints(func(name string) bool { return name == entry })
	a := interproc.NewContextBasedAnalysis[state.SimpleState[heap.Monolith, env.Environment[V],
		env.Environment[typeset.Types]]](callgraph.New(app), callctx.NewKCall(1), nil)
	st := state.NewAnalysisState(state.NewSimpleState(heap.Monolith{}, env.Top[V](), env.Top[typeset.Types]()),
		state.Aliasing{})
	if err := a.Fixpoint(st, opts); err != nil {
		t.Fatal(err)
	}
	results := a.AnalysisResultsOf(procedure(t, app, proc))
	if len(results) != 1 {
		t.Fatalf("expected a single result for %s, got %d", proc, len(results))
	}
	exit := results[0].Exit()
	var values []V
	for _, e := range exit.Computed.Elements() {
		v, err := exit.State.Value.Eval(e)
		if err != nil {
			t.Fatal(err)
		}
		values = append(values, v)
	}
	var bottom V
	return lattice.LubAll(bottom, values...)
}

func TestTranslate(t *testing.T) {
	app := buildApplication(t)
	for _, name := range []string{"p.inc", "p.run", "p.count", "p.swap", "p.dyn", "(p.One).Get"} {
		if err := procedure(t, app, name).Validate(); err != nil {
			t.Errorf("%s is invalid: %v", name, err)
		}
	}
	inc := procedure(t, app, "p.inc")
	if len(inc.Formals) != 1 || inc.Formals[0].Name != "x" {
		t.Errorf("formals of p.inc: got %v, want [x]", inc.Formals)
	}
	run := procedure(t, app, "p.run")
	calls := run.Calls()
	if len(calls) != 1 {
		t.Fatalf("expected one call in p.run, got %d", len(calls))
	}
	if calls[0].Site != "p.run:1" || !slices.Equal(calls[0].Targets, []string{"p.inc"}) {
		t.Errorf("unexpected call %s", calls[0])
	}
}

func TestDynamicCall(t *testing.T) {
	app := buildApplication(t)
	calls := procedure(t, app, "p.dyn").Calls()
	if len(calls) != 1 {
		t.Fatalf("expected one call in p.dyn, got %d", len(calls))
	}
	if !slices.Contains(calls[0].Targets, "(p.One).Get") {
		t.Errorf("targets of %s should contain (p.One).Get", calls[0])
	}
	// receiver
	if len(calls[0].Args) != 1 {
		t.Errorf("invoke should pass the receiver, got %d arguments", len(calls[0].Args))
	}
	if got := analyze[sign.Sign](t, app, "p.dyn", "p.dyn", fixpoint.DefaultOptions()); got != sign.Pos {
		t.Errorf("p.dyn returns %s, want +", got)
	}
}

func TestParallelPhis(t *testing.T) {
	app := buildApplication(t)
	swap := procedure(t, app, "p.swap")
	temporaries := 0
	for _, n := range swap.Nodes {
		if a, ok := n.(program.Assign); ok && strings.HasPrefix(a.Target.Name, "$") {
			temporaries++
		}
	}
	if temporaries == 0 {
		t.Errorf("loop head of p.swap has two phis, expected copies through temporaries:\n%s", swap)
	}
}

func TestSignOfCall(t *testing.T) {
	app := buildApplication(t)
	if got := analyze[sign.Sign](t, app, "p.run", "p.run", fixpoint.DefaultOptions()); got != sign.Pos {
		t.Errorf("p.run returns %s, want +", got)
	}
	if got := analyze[sign.Sign](t, app, "p.run", "p.inc", fixpoint.DefaultOptions()); got != sign.Pos {
		t.Errorf("p.inc returns %s, want +", got)
	}
}

func TestIntervalOfLoop(t *testing.T) {
	app := buildApplication(t)
	opts := fixpoint.DefaultOptions()
	opts.WideningThreshold = 1
	ten := interval.Singleton(10)

	got := analyze[interval.Interval](t, app, "p.count", "p.count", opts)
	if !ten.LessOrEqual(got) {
		t.Errorf("p.count returns %s, which should contain 10", got)
	}
	got = analyze[interval.Interval](t, app, "p.count", "p.count", opts.WithDescending(config.GlbDescending))
	if got != ten {
		t.Errorf("p.count returns %s after the descending phase, want %s", got, ten)
	}
}
