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

package state

import (
	"fmt"

	"github.com/awslabs/ar-go-absint/analysis/symbolic"
)

// AnalysisState is the information the analysis holds at a program point: the abstract state, the expressions
// computed by the last statement, and the aliases of the symbols.
type AnalysisState[A Domain[A]] struct {
	State    A
	Computed symbolic.ExpressionSet
	Aliasing Aliasing
}

// NewAnalysisState returns the analysis state wrapping st, with no computed expression
func NewAnalysisState[A Domain[A]](st A, aliasing Aliasing) AnalysisState[A] {
	return AnalysisState[A]{State: st, Computed: symbolic.NewExpressionSet(), Aliasing: aliasing}
}

// WithComputed returns the state where the computed expressions are exprs
func (s AnalysisState[A]) WithComputed(exprs ...symbolic.Expression) AnalysisState[A] {
	s.Computed = symbolic.NewExpressionSet(exprs...)
	return s
}

// WithState returns the analysis state where the abstract state is replaced by st
func (s AnalysisState[A]) WithState(st A) AnalysisState[A] {
	s.State = st
	return s
}

// Assign returns the state after id = e; the computed expression is id.
func (s AnalysisState[A]) Assign(id symbolic.Identifier, e symbolic.Expression) (AnalysisState[A], error) {
	st, err := s.State.Assign(id, e)
	if err != nil {
		return s, &SemanticError{Op: "assign", Expr: e, Err: err}
	}
	return s.WithState(st).WithComputed(id), nil
}

// Assume returns the state where cond holds; the computed expression is cond.
func (s AnalysisState[A]) Assume(cond symbolic.Expression) (AnalysisState[A], error) {
	st, err := s.State.Assume(cond)
	if err != nil {
		return s, &SemanticError{Op: "assume", Expr: cond, Err: err}
	}
	return s.WithState(st).WithComputed(cond), nil
}

// Forget returns the state where id is unconstrained
func (s AnalysisState[A]) Forget(id symbolic.Identifier) AnalysisState[A] {
	return s.WithState(s.State.Forget(id))
}

// PushScope pushes sc on the abstract state and the computed expressions
func (s AnalysisState[A]) PushScope(sc symbolic.Scope) AnalysisState[A] {
	return AnalysisState[A]{State: s.State.PushScope(sc), Computed: s.Computed.PushScope(sc), Aliasing: s.Aliasing}
}

// PopScope pops sc from the abstract state and the computed expressions
func (s AnalysisState[A]) PopScope(sc symbolic.Scope) AnalysisState[A] {
	return AnalysisState[A]{State: s.State.PopScope(sc), Computed: s.Computed.PopScope(sc), Aliasing: s.Aliasing}
}

func (s AnalysisState[A]) Bottom() AnalysisState[A] {
	return AnalysisState[A]{State: s.State.Bottom(), Computed: s.Computed.Bottom(), Aliasing: s.Aliasing.Bottom()}
}

func (s AnalysisState[A]) Top() AnalysisState[A] {
	return AnalysisState[A]{State: s.State.Top(), Computed: s.Computed.Top(), Aliasing: s.Aliasing.Top()}
}

// IsBottom returns true if the program point is unreachable, i.e. the abstract state is bottom
func (s AnalysisState[A]) IsBottom() bool {
	return s.State.IsBottom()
}

func (s AnalysisState[A]) IsTop() bool {
	return s.State.IsTop() && s.Computed.IsTop() && s.Aliasing.IsTop()
}

func (s AnalysisState[A]) Lub(o AnalysisState[A]) AnalysisState[A] {
	if s.IsBottom() {
		return o
	}
	if o.IsBottom() {
		return s
	}
	return AnalysisState[A]{
		State:    s.State.Lub(o.State),
		Computed: s.Computed.Lub(o.Computed),
		Aliasing: s.Aliasing.Lub(o.Aliasing),
	}
}

func (s AnalysisState[A]) Glb(o AnalysisState[A]) AnalysisState[A] {
	return AnalysisState[A]{
		State:    s.State.Glb(o.State),
		Computed: s.Computed.Glb(o.Computed),
		Aliasing: s.Aliasing.Glb(o.Aliasing),
	}
}

func (s AnalysisState[A]) Widening(o AnalysisState[A]) AnalysisState[A] {
	if s.IsBottom() {
		return o
	}
	if o.IsBottom() {
		return s
	}
	return AnalysisState[A]{
		State:    s.State.Widening(o.State),
		Computed: s.Computed.Widening(o.Computed),
		Aliasing: s.Aliasing.Widening(o.Aliasing),
	}
}

func (s AnalysisState[A]) Narrowing(o AnalysisState[A]) AnalysisState[A] {
	return AnalysisState[A]{
		State:    s.State.Narrowing(o.State),
		Computed: s.Computed.Narrowing(o.Computed),
		Aliasing: s.Aliasing.Narrowing(o.Aliasing),
	}
}

func (s AnalysisState[A]) LessOrEqual(o AnalysisState[A]) bool {
	if s.IsBottom() {
		return true
	}
	return s.State.LessOrEqual(o.State) && s.Computed.LessOrEqual(o.Computed) &&
		s.Aliasing.LessOrEqual(o.Aliasing)
}

func (s AnalysisState[A]) String() string {
	return fmt.Sprintf("%s [computed: %s]", s.State, s.Computed)
}
