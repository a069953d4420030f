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

package env_test

import (
	"testing"

	"github.com/awslabs/ar-go-absint/analysis/domains/env"
	"github.com/awslabs/ar-go-absint/analysis/domains/interval"
	"github.com/awslabs/ar-go-absint/analysis/domains/sign"
	"github.com/awslabs/ar-go-absint/analysis/lattice"
	"github.com/awslabs/ar-go-absint/analysis/symbolic"
)

type signs = env.Environment[sign.Sign]

var (
	x = symbolic.Var("x")
	y = symbolic.Var("y")
)

func mustAssign(t *testing.T, e signs, id symbolic.Identifier, src string) signs {
	t.Helper()
	res, err := e.Assign(id, symbolic.MustParse(src))
	if err != nil {
		t.Fatalf("assign %s = %s: %v", id, src, err)
	}
	return res
}

func TestAssign(t *testing.T) {
	e := env.Top[sign.Sign]()
	e = mustAssign(t, e, x, "3")
	e = mustAssign(t, e, y, "x * -2")
	if got := e.String(); got != "{x: +, y: -}" {
		t.Errorf("unexpected environment %s", got)
	}
	e = mustAssign(t, e, y, "x + y")
	if got := e.Get(y); got != sign.Top {
		t.Errorf("y should be top, got %s", got)
	}
	if got := e.String(); got != "{x: +}" {
		t.Errorf("top values should not be stored, got %s", got)
	}
	// division by zero has no result: the environment becomes unreachable
	if e = mustAssign(t, e, y, "x / 0"); !e.IsBottom() {
		t.Errorf("expected bottom, got %s", e)
	}
}

func TestAssume(t *testing.T) {
	tests := []struct {
		cond string
		want string
	}{
		{"x > 0", "{x: +}"},
		{"0 > x", "{x: -}"},
		{"x == 0 && y < 0", "{x: 0, y: -}"},
		{"x == 0 || x > 0", "{}"},
		{"!(x < 0)", "{}"},
		{"!(x <= 0)", "{x: +}"},
		{"x", "{}"},
		{"false", "⊥"},
	}
	for _, test := range tests {
		t.Run(test.cond, func(t *testing.T) {
			e, err := env.Top[sign.Sign]().Assume(symbolic.MustParse(test.cond))
			if err != nil {
				t.Fatal(err)
			}
			if e.String() != test.want {
				t.Errorf("got %s, want %s", e, test.want)
			}
		})
	}
	pos := mustAssign(t, env.Top[sign.Sign](), x, "1")
	if e, _ := pos.Assume(symbolic.MustParse("x < 0")); !e.IsBottom() {
		t.Errorf("x < 0 cannot hold when x is positive, got %s", e)
	}
}

func TestScopes(t *testing.T) {
	s := symbolic.NewScope("main:1")
	e := mustAssign(t, env.Top[sign.Sign](), x, "1")
	pushed := e.PushScope(s)
	if got := pushed.Get(x); got != sign.Top {
		t.Errorf("x should not be visible in the pushed environment, got %s", got)
	}
	// a callee local
	pushed = mustAssign(t, pushed, y, "-1")
	popped := pushed.PopScope(s)
	if popped.String() != "{x: +}" {
		t.Errorf("unexpected popped environment %s", popped)
	}
}

func TestLattice(t *testing.T) {
	a := mustAssign(t, mustAssign(t, env.Top[sign.Sign](), x, "1"), y, "0")
	b := mustAssign(t, env.Top[sign.Sign](), x, "2")
	c := mustAssign(t, env.Top[sign.Sign](), y, "-1")
	elements := []signs{env.Bottom[sign.Sign](), env.Top[sign.Sign](), a, b, c, a.Glb(c)}
	if err := lattice.CheckLaws(elements); err != nil {
		t.Fatal(err)
	}
	if got := a.Lub(b).String(); got != "{x: +}" {
		t.Errorf("lub: %s", got)
	}
	if !a.LessOrEqual(b) || b.LessOrEqual(a) {
		t.Errorf("unexpected order between %s and %s", a, b)
	}
	if !a.Glb(c).IsBottom() {
		t.Errorf("y cannot be both zero and negative")
	}
}

func TestMap(t *testing.T) {
	e := mustAssign(t, mustAssign(t, env.Top[sign.Sign](), x, "1"), y, "0")
	m := env.Map(e, func(s sign.Sign) interval.Interval {
		if s == sign.Zero {
			return interval.Singleton(0)
		}
		return interval.Interval{}.Top()
	})
	if m.String() != "{y: [0, 0]}" {
		t.Errorf("unexpected mapped environment %s", m)
	}
	if !env.Map(env.Bottom[sign.Sign](), func(sign.Sign) interval.Interval { return interval.Singleton(0) }).IsBottom() {
		t.Errorf("bottom must be mapped to bottom")
	}
}
