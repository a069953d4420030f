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

package interproc

import (
	"errors"
	"reflect"
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
	"github.com/awslabs/ar-go-absint/analysis/program"
	"github.com/awslabs/ar-go-absint/analysis/state"
	"github.com/awslabs/ar-go-absint/analysis/symbolic"
	"github.com/awslabs/ar-go-absint/internal/funcutil"
)

type signState = state.SimpleState[heap.Monolith, env.Environment[sign.Sign], env.Environment[typeset.Types]]

type intervalState = state.SimpleState[heap.Monolith, env.Environment[interval.Interval],
	env.Environment[typeset.Types]]

func signEntry() state.AnalysisState[signState] {
	return state.NewAnalysisState(
		state.NewSimpleState(heap.Monolith{}, env.Top[sign.Sign](), env.Top[typeset.Types]()),
		state.Aliasing{})
}

func intervalEntry() state.AnalysisState[intervalState] {
	return state.NewAnalysisState(
		state.NewSimpleState(heap.Monolith{}, env.Top[interval.Interval](), env.Top[typeset.Types]()),
		state.Aliasing{})
}

func newApp(t *testing.T, procs ...*program.Procedure) *program.Application {
	t.Helper()
	app, err := program.NewApplication(procs)
	if err != nil {
		t.Fatalf("failed to build application: %v", err)
	}
	app.SetEntryPoints(func(name string) bool { return name == "main" })
	return app
}

func newAnalysis[A state.Domain[A]](app *program.Application, tok callctx.Token) *ContextBasedAnalysis[A] {
	return NewContextBasedAnalysis[A](callgraph.New(app), tok, nil)
}

// count returns the number of ascending fixpoints computed for the procedure
func count[A state.Domain[A]](a *ContextBasedAnalysis[A], name string) int {
	n := 0
	for _, c := range a.Computations() {
		if c.Procedure == name && c.Phase == ascendingPhase {
			n++
		}
	}
	return n
}

func exitValue[A state.Domain[A], V any](t *testing.T, a *ContextBasedAnalysis[A], app *program.Application,
	proc string, get func(A) V) V {
	t.Helper()
	p, _ := app.Procedure(proc)
	results := a.AnalysisResultsOf(p)
	if len(results) != 1 {
		t.Fatalf("expected one result for %s, got %d", proc, len(results))
	}
	return get(results[0].Exit().State)
}

func signOf(name string) func(signState) sign.Sign {
	return func(s signState) sign.Sign { return s.Value.Get(symbolic.Var(name)) }
}

func intervalOf(name string) func(intervalState) interval.Interval {
	return func(s intervalState) interval.Interval { return s.Value.Get(symbolic.Var(name)) }
}

func TestMainCallsFoo(t *testing.T) {
	main := program.NewBuilder("main")
	main.Assign("x", "5")
	main.Call([]string{"foo"}, "r", "x")
	main.Return("r")
	foo := program.NewBuilder("foo", "x")
	foo.Return("x + 1")
	app := newApp(t, main.MustBuild(), foo.MustBuild())

	for _, tok := range []callctx.Token{callctx.Insensitive{}, callctx.NewKCall(2), callctx.RecursionFree{}} {
		t.Run(tok.String(), func(t *testing.T) {
			a := newAnalysis[signState](app, tok)
			if err := a.Fixpoint(signEntry(), fixpoint.DefaultOptions()); err != nil {
				t.Fatal(err)
			}
			if got := exitValue(t, a, app, "main", signOf("r")); got != sign.Pos {
				t.Errorf("r at the exit of main: got %s, want +", got)
			}
			if got := exitValue(t, a, app, "main", signOf("x")); got != sign.Pos {
				t.Errorf("x at the exit of main: got %s, want +", got)
			}
			if n := count(a, "foo"); n != 1 {
				t.Errorf("foo should be analyzed once, got %d", n)
			}
			if n := len(a.Iterations()); n != 1 {
				t.Errorf("expected a single iteration, got %d", n)
			}
			callee, _ := app.Procedure("foo")
			results := a.AnalysisResultsOf(callee)
			if len(results) != 1 {
				t.Fatalf("expected one context for foo, got %d", len(results))
			}
			if got := results[0].Entry().State.Value.Get(symbolic.Var("x")); got != sign.Pos {
				t.Errorf("x at the entry of foo: got %s, want +", got)
			}
		})
	}
}

func TestMemoizedReuse(t *testing.T) {
	callee := program.NewBuilder("A", "p")
	callee.Return("p + 1")

	t.Run("covered", func(t *testing.T) {
		main := program.NewBuilder("main")
		main.Call([]string{"A"}, "r1", "1")
		main.Call([]string{"A"}, "r2", "1")
		main.Return("r2")
		app := newApp(t, main.MustBuild(), callee.MustBuild())
		a := newAnalysis[signState](app, callctx.Insensitive{})
		if err := a.Fixpoint(signEntry(), fixpoint.DefaultOptions()); err != nil {
			t.Fatal(err)
		}
		if n := count(a, "A"); n != 1 {
			t.Errorf("the second call should reuse the result of A, got %d computations", n)
		}
		if got := exitValue(t, a, app, "main", signOf("r2")); got != sign.Pos {
			t.Errorf("r2 at the exit of main: got %s, want +", got)
		}
	})

	t.Run("merged", func(t *testing.T) {
		main := program.NewBuilder("main")
		main.Call([]string{"A"}, "r1", "1")
		main.Call([]string{"A"}, "r2", "-1")
		main.Return("r2")
		app := newApp(t, main.MustBuild(), callee.MustBuild())
		a := newAnalysis[signState](app, callctx.Insensitive{})
		if err := a.Fixpoint(signEntry(), fixpoint.DefaultOptions()); err != nil {
			t.Fatal(err)
		}
		A, _ := app.Procedure("A")
		results := a.AnalysisResultsOf(A)
		if len(results) != 1 {
			t.Fatalf("expected one context for A, got %d", len(results))
		}
		if got := results[0].Entry().State.Value.Get(symbolic.Var("p")); got != sign.Top {
			t.Errorf("the entry of A should be the lub of both calls, got p = %s", got)
		}
		its := a.Iterations()
		if len(its) != 2 {
			t.Fatalf("expected 2 iterations, got %d", len(its))
		}
		if !reflect.DeepEqual(its[0].Triggers, []string{"A"}) {
			t.Errorf("A should trigger in the first iteration, got %v", its[0].Triggers)
		}
		// the merged result covers both calls in the next iteration
		if n := count(a, "A"); n != 2 {
			t.Errorf("A should be computed twice in the first iteration only, got %d", n)
		}
	})
}

func TestTriggerPropagation(t *testing.T) {
	main := program.NewBuilder("main")
	main.Call([]string{"D"}, "d", "1")
	main.Call([]string{"B"}, "b", "1")
	main.Call([]string{"C"}, "c", "-1")
	main.Return("b")
	B := program.NewBuilder("B", "p")
	B.Call([]string{"C"}, "r", "p")
	B.Return("r")
	C := program.NewBuilder("C", "q")
	C.Return("q")
	D := program.NewBuilder("D", "p")
	D.Return("p")
	app := newApp(t, main.MustBuild(), B.MustBuild(), C.MustBuild(), D.MustBuild())

	a := newAnalysis[signState](app, callctx.Insensitive{})
	if err := a.Fixpoint(signEntry(), fixpoint.DefaultOptions()); err != nil {
		t.Fatal(err)
	}
	want := []Iteration{
		{Triggers: []string{"C"}, Forgotten: []string{"B", "main"}},
		{Triggers: []string{"B"}, Forgotten: []string{"main"}},
		{},
	}
	if got := a.Iterations(); !reflect.DeepEqual(got, want) {
		t.Errorf("iterations: got %+v, want %+v", got, want)
	}
	for _, it := range a.Iterations() {
		if funcutil.Contains(it.Forgotten, "D") {
			t.Errorf("D is not a caller of a trigger and should not be forgotten")
		}
	}
	if n := count(a, "D"); n != 1 {
		t.Errorf("D should be analyzed once, got %d", n)
	}
	if n := count(a, "C"); n != 2 {
		t.Errorf("C should only be analyzed in the first iteration, got %d", n)
	}
	if n := count(a, "B"); n != 2 {
		t.Errorf("B should be analyzed again after C triggered, got %d", n)
	}
	if got := exitValue(t, a, app, "main", signOf("b")); got != sign.Top {
		t.Errorf("b at the exit of main: got %s, want ⊤", got)
	}
	if got := exitValue(t, a, app, "main", signOf("d")); got != sign.Pos {
		t.Errorf("d at the exit of main: got %s, want +", got)
	}
}

func countdown() *program.Procedure {
	f := program.NewBuilder("f", "n")
	cond := f.Branch("n > 0")
	call := f.Call([]string{"f"}, "r", "n - 1")
	f.True(cond, call)
	f.Return("r + 1")
	base := f.Return("0")
	f.False(cond, base)
	return f.MustBuild()
}

func TestRecursionTerminates(t *testing.T) {
	main := program.NewBuilder("main")
	main.Call([]string{"f"}, "x", "10")
	main.Return("x")
	app := newApp(t, main.MustBuild(), countdown())

	for _, tok := range []callctx.Token{callctx.Insensitive{}, callctx.NewKCall(2), callctx.RecursionFree{}} {
		t.Run(tok.String(), func(t *testing.T) {
			a := newAnalysis[intervalState](app, tok)
			opts := fixpoint.DefaultOptions()
			opts.WideningThreshold = 2
			if err := a.Fixpoint(intervalEntry(), opts); err != nil {
				t.Fatal(err)
			}
			x := exitValue(t, a, app, "main", intervalOf("x"))
			if !interval.Singleton(10).LessOrEqual(x) {
				t.Errorf("x at the exit of main should contain 10, got %s", x)
			}
			if len(a.Iterations()) < 2 {
				t.Errorf("the recursion should need more than one iteration")
			}
		})
	}
}

func TestRecursionReachesBaseCase(t *testing.T) {
	main := program.NewBuilder("main")
	main.Call([]string{"f"}, "x", "10")
	main.Return("x")
	f := countdown()
	app := newApp(t, main.MustBuild(), f)

	a := newAnalysis[intervalState](app, callctx.Insensitive{})
	opts := fixpoint.DefaultOptions()
	opts.WideningThreshold = 2
	if err := a.Fixpoint(intervalEntry(), opts); err != nil {
		t.Fatal(err)
	}
	results := a.AnalysisResultsOf(f)
	if len(results) != 1 {
		t.Fatalf("expected one result for f, got %d", len(results))
	}
	res := results[0]
	n := res.Entry().State.Value.Get(symbolic.Var("n"))
	if !interval.Range(0, 10).LessOrEqual(n) {
		t.Errorf("n at the entry of f should cover every recursive call, got %s", n)
	}
	for _, exit := range f.Exits() {
		if res.Post(exit).IsBottom() {
			t.Errorf("the return at node %d of f is reachable, got bottom in %s", exit, res)
		}
	}
	mark, _ := a.Results().Watermark(f, callctx.Insensitive{})
	if !mark.LessOrEqual(res) || !res.LessOrEqual(mark) {
		t.Errorf("the result of f should be its largest result, got %s and %s", res, mark)
	}
}

func TestIterationLimit(t *testing.T) {
	main := program.NewBuilder("main")
	main.Call([]string{"f"}, "x", "10")
	main.Return("x")
	app := newApp(t, main.MustBuild(), countdown())
	a := newAnalysis[intervalState](app, callctx.Insensitive{})
	a.SetMaxIterations(1)
	err := a.Fixpoint(intervalEntry(), fixpoint.DefaultOptions())
	if !errors.Is(err, ErrIterationLimit) {
		t.Errorf("expected ErrIterationLimit, got %v", err)
	}
}

func TestNoEntryPoints(t *testing.T) {
	foo := program.NewBuilder("foo")
	foo.Return("")
	app, err := program.NewApplication([]*program.Procedure{foo.MustBuild()})
	if err != nil {
		t.Fatal(err)
	}
	a := newAnalysis[signState](app, callctx.Insensitive{})
	if err := a.Fixpoint(signEntry(), fixpoint.DefaultOptions()); !errors.Is(err, ErrNoEntryPoints) {
		t.Errorf("expected ErrNoEntryPoints, got %v", err)
	}
	if len(a.Computations()) != 0 {
		t.Errorf("no fixpoint should be computed without entry points")
	}
}

func TestSemanticErrorPropagation(t *testing.T) {
	main := program.NewBuilder("main")
	main.Call([]string{"foo"}, "r", "1")
	main.Return("r")
	foo := program.NewBuilder("foo", "x")
	foo.Assign("y", "x + true")
	foo.Return("y")
	app := newApp(t, main.MustBuild(), foo.MustBuild())

	a := newAnalysis[signState](app, callctx.NewKCall(1))
	err := a.Fixpoint(signEntry(), fixpoint.DefaultOptions())
	var exec *ExecutionError
	if !errors.As(err, &exec) {
		t.Fatalf("expected an execution error, got %v", err)
	}
	if exec.Procedure != "foo" || exec.Phase != ascendingPhase {
		t.Errorf("the error should identify foo in the ascending phase, got %s in %s", exec.Procedure, exec.Phase)
	}
	var sem *state.SemanticError
	if !errors.As(err, &sem) {
		t.Errorf("the semantic error should be wrapped, got %v", err)
	}
}

func TestSetupError(t *testing.T) {
	main := program.NewBuilder("main")
	main.Call([]string{"foo"}, "r", "1", "2")
	main.Return("r")
	foo := program.NewBuilder("foo", "x")
	foo.Return("x")
	app := newApp(t, main.MustBuild(), foo.MustBuild())

	a := newAnalysis[signState](app, callctx.Insensitive{})
	err := a.Fixpoint(signEntry(), fixpoint.DefaultOptions())
	var setup *SetupError
	if !errors.As(err, &setup) || setup.Procedure != "foo" {
		t.Fatalf("expected a setup error for foo, got %v", err)
	}

	a.SetAssigner(Lenient[signState]{})
	if err := a.Fixpoint(signEntry(), fixpoint.DefaultOptions()); err != nil {
		t.Fatalf("lenient assignment should ignore the extra actual: %v", err)
	}
	if got := exitValue(t, a, app, "main", signOf("r")); got != sign.Pos {
		t.Errorf("r at the exit of main: got %s, want +", got)
	}
}

func TestOpenCall(t *testing.T) {
	main := program.NewBuilder("main")
	main.Assign("r", "1")
	main.Call([]string{"unknown"}, "r")
	main.Return("r")
	app := newApp(t, main.MustBuild())
	cg := callgraph.New(app)
	a := NewContextBasedAnalysis[signState](cg, callctx.Insensitive{}, nil)
	if err := a.Fixpoint(signEntry(), fixpoint.DefaultOptions()); err != nil {
		t.Fatal(err)
	}
	if got := exitValue(t, a, app, "main", signOf("r")); got != sign.Top {
		t.Errorf("the result of an open call should be unknown, got %s", got)
	}
	if got := cg.RegisteredTargets("main:1"); len(got) != 0 {
		t.Errorf("an open call has no target, got %v", got)
	}
}

func loopProcedure() *program.Procedure {
	b := program.NewBuilder("L")
	b.Assign("i", "0")
	head := b.Branch("i < 10")
	body := b.Assign("i", "i + 1")
	b.True(head, body)
	b.Jump(head)
	exit := b.Return("i")
	b.False(head, exit)
	return b.MustBuild()
}

func TestDescendingPhase(t *testing.T) {
	main := program.NewBuilder("main")
	main.Call([]string{"L"}, "r")
	main.Return("r")
	app := newApp(t, main.MustBuild(), loopProcedure())

	opts := fixpoint.DefaultOptions()
	opts.WideningThreshold = 1
	a := newAnalysis[intervalState](app, callctx.NewKCall(1))
	if err := a.Fixpoint(intervalEntry(), opts); err != nil {
		t.Fatal(err)
	}
	ascending := exitValue(t, a, app, "main", intervalOf("r"))
	if want := interval.New(interval.Finite(10), interval.PlusInf); ascending != want {
		t.Errorf("r after the ascending phase: got %s, want %s", ascending, want)
	}

	for _, mode := range []config.DescendingPhase{config.GlbDescending, config.NarrowingDescending} {
		t.Run(string(mode), func(t *testing.T) {
			a := newAnalysis[intervalState](app, callctx.NewKCall(1))
			if err := a.Fixpoint(intervalEntry(), opts.WithDescending(mode)); err != nil {
				t.Fatal(err)
			}
			if got := exitValue(t, a, app, "L", intervalOf("i")); got != interval.Singleton(10) {
				t.Errorf("i at the exit of L: got %s, want [10, 10]", got)
			}
			if got := exitValue(t, a, app, "main", intervalOf("r")); got != interval.Singleton(10) {
				t.Errorf("r at the exit of main: got %s, want [10, 10]", got)
			}
		})
	}
}

func TestDescendingDisabled(t *testing.T) {
	main := program.NewBuilder("main")
	main.Return("")
	app := newApp(t, main.MustBuild())
	a := newAnalysis[signState](app, callctx.Insensitive{})
	err := a.DescendingPhase(map[*program.Procedure]funcutil.Optional[*ProcedureResults[signState]]{},
		fixpoint.DefaultOptions().WithDescending(config.NoDescending))
	if !errors.Is(err, ErrDescendingDisabled) {
		t.Errorf("expected ErrDescendingDisabled, got %v", err)
	}
}

// countingRoutine counts the procedure fixpoints computed by the worklist algorithm
type countingRoutine struct {
	*fixpoint.Worklist[signState]
	fixpoints map[string]int
}

func (r *countingRoutine) Fixpoint(p *program.Procedure, entry state.AnalysisState[signState],
	resolver fixpoint.CallResolver[signState], opts fixpoint.Options) (*fixpoint.Result[signState], error) {
	r.fixpoints[p.Name]++
	return r.Worklist.Fixpoint(p, entry, resolver, opts)
}

func TestCustomRoutine(t *testing.T) {
	main := program.NewBuilder("main")
	main.Call([]string{"foo"}, "a", "1")
	main.Call([]string{"foo"}, "b", "2")
	main.Return("a + b")
	foo := program.NewBuilder("foo", "x")
	foo.Return("x")
	app := newApp(t, main.MustBuild(), foo.MustBuild())

	r := &countingRoutine{Worklist: fixpoint.NewWorklist[signState](nil), fixpoints: map[string]int{}}
	a := newAnalysis[signState](app, callctx.NewKCall(1))
	a.SetRoutine(r)
	if err := a.Fixpoint(signEntry(), fixpoint.DefaultOptions()); err != nil {
		t.Fatal(err)
	}
	// one context per call site
	if want := map[string]int{"main": 1, "foo": 2}; !reflect.DeepEqual(r.fixpoints, want) {
		t.Errorf("fixpoints: got %v, want %v", r.fixpoints, want)
	}
	if got := exitValue(t, a, app, "main", signOf("b")); got != sign.Pos {
		t.Errorf("b at the exit of main: got %s, want +", got)
	}
}
