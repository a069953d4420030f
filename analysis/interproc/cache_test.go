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
	"testing"

	"github.com/awslabs/ar-go-absint/analysis/callctx"
	"github.com/awslabs/ar-go-absint/analysis/domains/interval"
	"github.com/awslabs/ar-go-absint/analysis/fixpoint"
	"github.com/awslabs/ar-go-absint/analysis/program"
	"github.com/awslabs/ar-go-absint/analysis/symbolic"
)

func resultWith(t *testing.T, p *program.Procedure, low, high int64) *fixpoint.Result[intervalState] {
	t.Helper()
	x := symbolic.Var("x")
	entry, err := intervalEntry().Assume(symbolic.Binary{Op: symbolic.Ge, Left: x, Right: symbolic.Const(low)})
	if err != nil {
		t.Fatal(err)
	}
	entry, err = entry.Assume(symbolic.Binary{Op: symbolic.Le, Left: x, Right: symbolic.Const(high)})
	if err != nil {
		t.Fatal(err)
	}
	return fixpoint.NewResult(p, entry.WithComputed())
}

func entryOf(r *fixpoint.Result[intervalState]) interval.Interval {
	return r.Entry().State.Value.Get(symbolic.Var("x"))
}

func TestPutResult(t *testing.T) {
	p := program.NewBuilder("p", "x")
	p.Return("x")
	proc := p.MustBuild()
	tok := callctx.NewKCall(1)
	c := NewResultCache[intervalState](2)

	if c.Contains(proc, tok) {
		t.Fatalf("empty cache should not contain p")
	}
	if _, ok := c.State(proc); ok {
		t.Fatalf("p has no state before the first result")
	}

	steps := []struct {
		low, high int64
		changed   bool
		want      interval.Interval
		// the value stored is a result of the cache
		contained bool
	}{
		{1, 2, false, interval.Range(1, 2), true},
		{1, 1, false, interval.Range(1, 2), true},
		{0, 3, true, interval.Range(0, 3), true},
		{0, 4, true, interval.Range(0, 4), true},
		// widened after 2 growths, past the entries computed
		{0, 5, true, interval.New(interval.Finite(0), interval.PlusInf), false},
		{0, 100, false, interval.New(interval.Finite(0), interval.PlusInf), false},
	}
	for i, step := range steps {
		changed, stored := c.PutResult(proc, tok, resultWith(t, proc, step.low, step.high))
		if changed != step.changed {
			t.Errorf("step %d: changed is %v, want %v", i, changed, step.changed)
		}
		if got := entryOf(stored); got != step.want {
			t.Errorf("step %d: stored entry %s, want %s", i, got, step.want)
		}
		if stored.ID != tok.String() {
			t.Errorf("step %d: result should be identified by its context, got %q", i, stored.ID)
		}
		if got := c.Contains(proc, tok); got != step.contained {
			t.Errorf("step %d: contains is %v, want %v", i, got, step.contained)
		}
	}

	c.Forget(proc)
	if c.Contains(proc, tok) {
		t.Errorf("p should be absent after forget")
	}
	mark, ok := c.Watermark(proc, tok)
	if !ok || entryOf(mark) != interval.New(interval.Finite(0), interval.PlusInf) {
		t.Errorf("the largest result stored should survive forget")
	}
	changed, stored := c.PutResult(proc, tok, resultWith(t, proc, 1, 1))
	if changed || entryOf(stored) != interval.New(interval.Finite(0), interval.PlusInf) {
		t.Errorf("storing a smaller result after forget should store the largest result without change")
	}
	if c.Contains(proc, tok) {
		t.Errorf("no result was computed from the widened entry")
	}
	changed, _ = c.PutResult(proc, tok, fixpoint.NewResult(proc, mark.Entry()))
	if changed || !c.Contains(proc, tok) {
		t.Errorf("p should be present again once a result is computed from the widened entry")
	}

	c.Clear()
	if _, ok := c.Watermark(proc, tok); ok {
		t.Errorf("clear should remove the history of results")
	}
}

func TestResultCacheContexts(t *testing.T) {
	p := program.NewBuilder("p", "x")
	p.Return("x")
	proc := p.MustBuild()
	c := NewResultCache[intervalState](5)
	empty := callctx.NewKCall(1)
	call := &program.Call{Site: "main:1", Targets: []string{"p"}}
	inner := empty.Push(call)

	c.PutResult(proc, empty, resultWith(t, proc, 0, 1))
	c.PutResult(proc, inner, resultWith(t, proc, 5, 6))
	pr, ok := c.State(proc)
	if !ok || pr.Len() != 2 {
		t.Fatalf("expected two contexts for p")
	}
	r, _ := pr.Get(inner)
	if entryOf(r) != interval.Range(5, 6) {
		t.Errorf("contexts should not be merged, got %s", entryOf(r))
	}
	copied := pr.Copy()
	c.Replace(proc, inner, resultWith(t, proc, 5, 5))
	if r, _ := copied.Get(inner); entryOf(r) != interval.Range(5, 6) {
		t.Errorf("a copy should not see results replaced in the cache")
	}
	if r, _ := c.Get(proc, inner); entryOf(r) != interval.Singleton(5) {
		t.Errorf("replace should not merge, got %s", entryOf(r))
	}
	mapped := MapResults(pr, func(r *fixpoint.Result[intervalState]) *fixpoint.Result[intervalState] {
		return fixpoint.NewResult(r.Procedure, r.Entry().Top())
	})
	if mapped.Len() != 2 {
		t.Errorf("mapping should keep every context, got %d", mapped.Len())
	}
	for _, r := range mapped.Results() {
		if !r.Entry().State.Value.IsTop() {
			t.Errorf("mapped results should be transformed")
		}
	}
}
