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

package state_test

import (
	"errors"
	"testing"

	"github.com/awslabs/ar-go-absint/analysis/domains/env"
	"github.com/awslabs/ar-go-absint/analysis/domains/heap"
	"github.com/awslabs/ar-go-absint/analysis/domains/interval"
	"github.com/awslabs/ar-go-absint/analysis/domains/typeset"
	"github.com/awslabs/ar-go-absint/analysis/lattice"
	"github.com/awslabs/ar-go-absint/analysis/state"
	"github.com/awslabs/ar-go-absint/analysis/symbolic"
)

type simple = state.SimpleState[heap.Monolith, env.Environment[interval.Interval], env.Environment[typeset.Types]]

func top() simple {
	return state.NewSimpleState(heap.Monolith{}, env.Top[interval.Interval](), env.Top[typeset.Types]())
}

func assign(t *testing.T, s simple, name string, src string) simple {
	t.Helper()
	res, err := s.Assign(symbolic.Var(name), symbolic.MustParse(src))
	if err != nil {
		t.Fatalf("%s = %s: %v", name, src, err)
	}
	return res
}

func TestSimpleStateAssign(t *testing.T) {
	s := assign(t, assign(t, top(), "x", "1"), "b", "x < 2")
	if got := s.Value.Get(symbolic.Var("x")); got != interval.Singleton(1) {
		t.Errorf("unexpected value of x: %s", got)
	}
	if got := s.Type.Get(symbolic.Var("b")); got != typeset.Bool {
		t.Errorf("unexpected type of b: %s", got)
	}
	if got := s.Value.Get(symbolic.Var("b")); got != interval.Singleton(1) {
		t.Errorf("x < 2 should be true, got %s", got)
	}
}

func TestSimpleStateSemanticError(t *testing.T) {
	s := assign(t, top(), "b", "true")
	as := state.NewAnalysisState(s, state.Aliasing{})
	_, err := as.Assign(symbolic.Var("y"), symbolic.MustParse("b + 1"))
	var semErr *state.SemanticError
	if !errors.As(err, &semErr) {
		t.Fatalf("expected a semantic error, got %v", err)
	}
	if semErr.Op != "assign" {
		t.Errorf("unexpected operation %q", semErr.Op)
	}
}

func TestSimpleStateBottom(t *testing.T) {
	s := assign(t, top(), "x", "5")
	res, err := s.Assume(symbolic.MustParse("x < 0"))
	if err != nil {
		t.Fatal(err)
	}
	if !res.IsBottom() || !res.Heap.IsBottom() || !res.Type.IsBottom() {
		t.Errorf("every component should be bottom, got %s", res)
	}
	if !res.LessOrEqual(s) || s.LessOrEqual(res) {
		t.Errorf("bottom should be the least element")
	}
}

func TestSimpleStateLaws(t *testing.T) {
	a := assign(t, top(), "x", "1")
	b := assign(t, top(), "x", "3")
	c := assign(t, a, "y", "true")
	elements := []simple{top().Bottom(), top(), a, b, c, a.Lub(b), a.Widening(b)}
	if err := lattice.CheckLaws(elements); err != nil {
		t.Fatal(err)
	}
	if got := a.Widening(b).Value.Get(symbolic.Var("x")); got != interval.New(interval.Finite(1), interval.PlusInf) {
		t.Errorf("unexpected widening %s", got)
	}
}

func TestAnalysisStateScopes(t *testing.T) {
	sc := symbolic.NewScope("main:2")
	as := state.NewAnalysisState(assign(t, top(), "x", "1"), state.Aliasing{})
	as = as.WithComputed(symbolic.Var("x"))
	pushed := as.PushScope(sc)
	if pushed.Computed.Contains(symbolic.Var("x")) {
		t.Errorf("computed expressions should be pushed")
	}
	local, err := pushed.Assign(symbolic.Var("r"), symbolic.Const(4))
	if err != nil {
		t.Fatal(err)
	}
	popped := local.PopScope(sc)
	if popped.Computed.Len() != 0 {
		t.Errorf("callee locals should be dropped from the computed expressions: %s", popped.Computed)
	}
	if got := popped.State.Value.Get(symbolic.Var("x")); got != interval.Singleton(1) {
		t.Errorf("x should be restored, got %s", got)
	}
}

func TestStatementStore(t *testing.T) {
	a := state.NewAnalysisState(assign(t, top(), "x", "1"), state.Aliasing{})
	b := state.NewAnalysisState(assign(t, top(), "x", "2"), state.Aliasing{})
	s1 := state.NewStatementStore[simple]()
	s1.Put(0, a)
	s2 := state.NewStatementStore[simple]()
	s2.Put(0, b)
	s2.Put(1, b)
	lub := s1.Lub(s2)
	if lub.Len() != 2 {
		t.Fatalf("expected 2 program points, got %d", lub.Len())
	}
	st, _ := lub.Get(0)
	if got := st.State.Value.Get(symbolic.Var("x")); got != interval.Range(1, 2) {
		t.Errorf("unexpected lub %s", got)
	}
	if !s1.LessOrEqual(lub) || lub.LessOrEqual(s1) {
		t.Errorf("unexpected order")
	}
}

func TestAliasing(t *testing.T) {
	a := state.NewAliasing(map[string][]string{"f": {"g", "h"}})
	b := state.NewAliasing(map[string][]string{"f": {"h"}, "k": {"l"}})
	if err := lattice.CheckLaws([]state.Aliasing{a, b, a.Bottom(), a.Top(), a.Lub(b), a.Glb(b)}); err != nil {
		t.Fatal(err)
	}
	if got := a.Glb(b).String(); got != "{f -> [h]}" {
		t.Errorf("unexpected glb %s", got)
	}
	if got := a.Lub(b).Resolve("f"); len(got) != 2 {
		t.Errorf("unexpected aliases %v", got)
	}
}
