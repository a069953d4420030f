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

// Package env implements non-relational environments: maps from identifiers to abstract values of a value domain.
//
// An environment is bottom when the program point it describes is unreachable. An identifier that is not in the
// environment is mapped to the top value. Environments never store top or bottom values: assigning a bottom value
// makes the whole environment bottom.
package env

import (
	"fmt"
	"strings"

	"github.com/awslabs/ar-go-absint/analysis/lattice"
	"github.com/awslabs/ar-go-absint/analysis/symbolic"
	"github.com/awslabs/ar-go-absint/internal/funcutil"
)

// Value is the set of operations a value domain must provide to be used in an environment. Bottom and Top must be
// callable on the zero value of V.
type Value[V any] interface {
	lattice.Lattice[V]

	// EvalConstant returns the abstraction of the constant c
	EvalConstant(c symbolic.Constant) (V, error)

	// EvalUnary returns the abstraction of op applied to arg
	EvalUnary(op symbolic.UnaryOp, arg V) (V, error)

	// EvalBinary returns the abstraction of l op r
	EvalBinary(op symbolic.BinaryOp, l V, r V) (V, error)

	// Satisfies returns whether the comparison l op r holds
	Satisfies(op symbolic.BinaryOp, l V, r V) lattice.Satisfiability

	// Refine returns the largest value below l containing all the values for which l op r may hold, for a
	// comparison op.
	Refine(op symbolic.BinaryOp, l V, r V) V
}

// Environment maps identifiers to values of V. The zero value is the top environment.
type Environment[V Value[V]] struct {
	values map[symbolic.Identifier]V
	bottom bool
}

// Top returns the environment mapping every identifier to the top value
func Top[V Value[V]]() Environment[V] {
	return Environment[V]{}
}

// Bottom returns the environment of unreachable program points
func Bottom[V Value[V]]() Environment[V] {
	return Environment[V]{bottom: true}
}

// Of returns the environment mapping each identifier in values to its value.
func Of[V Value[V]](values map[symbolic.Identifier]V) Environment[V] {
	e := Environment[V]{values: map[symbolic.Identifier]V{}}
	for id, v := range values {
		e = e.set(id, v)
	}
	return e
}

func (e Environment[V]) copyValues() map[symbolic.Identifier]V {
	m := make(map[symbolic.Identifier]V, len(e.values))
	for id, v := range e.values {
		m[id] = v
	}
	return m
}

// set returns e with id bound to v, maintaining the representation invariants.
func (e Environment[V]) set(id symbolic.Identifier, v V) Environment[V] {
	if e.bottom {
		return e
	}
	if v.IsBottom() {
		return Bottom[V]()
	}
	m := e.copyValues()
	if v.IsTop() {
		delete(m, id)
	} else {
		m[id] = v
	}
	return Environment[V]{values: m}
}

// Get returns the value of id in e. Missing identifiers are top, and every identifier is bottom in the bottom
// environment.
func (e Environment[V]) Get(id symbolic.Identifier) V {
	var zero V
	if e.bottom {
		return zero.Bottom()
	}
	if v, ok := e.values[id]; ok {
		return v
	}
	return zero.Top()
}

// Identifiers returns the identifiers bound to a value other than top, sorted by their string representation
func (e Environment[V]) Identifiers() []symbolic.Identifier {
	ids := make(map[symbolic.Identifier]bool, len(e.values))
	for id := range e.values {
		ids[id] = true
	}
	return funcutil.SortedBy(ids, symbolic.Identifier.String)
}

// Eval returns the abstraction of the expression in e.
func (e Environment[V]) Eval(x symbolic.Expression) (V, error) {
	var zero V
	if e.bottom {
		return zero.Bottom(), nil
	}
	switch x := x.(type) {
	case symbolic.Identifier:
		return e.Get(x), nil
	case symbolic.Constant:
		return zero.EvalConstant(x)
	case symbolic.Any:
		return zero.Top(), nil
	case symbolic.Unary:
		arg, err := e.Eval(x.Arg)
		if err != nil {
			return zero, err
		}
		return zero.EvalUnary(x.Op, arg)
	case symbolic.Binary:
		l, err := e.Eval(x.Left)
		if err != nil {
			return zero, err
		}
		r, err := e.Eval(x.Right)
		if err != nil {
			return zero, err
		}
		return zero.EvalBinary(x.Op, l, r)
	}
	return zero, fmt.Errorf("unsupported expression %v", x)
}

// Assign returns the environment where id is bound to the value of x
func (e Environment[V]) Assign(id symbolic.Identifier, x symbolic.Expression) (Environment[V], error) {
	if e.bottom {
		return e, nil
	}
	v, err := e.Eval(x)
	if err != nil {
		return e, err
	}
	return e.set(id, v), nil
}

// Assume returns the environment restricted to the states where cond may hold. It is bottom if cond never holds.
func (e Environment[V]) Assume(cond symbolic.Expression) (Environment[V], error) {
	if e.bottom {
		return e, nil
	}
	switch c := cond.(type) {
	case symbolic.Any:
		return e, nil
	case symbolic.Unary:
		if c.Op == symbolic.Not {
			negated := symbolic.Negate(c.Arg)
			if u, ok := negated.(symbolic.Unary); ok && u.Op == symbolic.Not {
				// no comparison to invert
				return e.Assume(symbolic.Binary{Op: symbolic.Eq, Left: c.Arg, Right: symbolic.Const(0)})
			}
			return e.Assume(negated)
		}
	case symbolic.Binary:
		switch {
		case c.Op == symbolic.And:
			l, err := e.Assume(c.Left)
			if err != nil {
				return e, err
			}
			return l.Assume(c.Right)
		case c.Op == symbolic.Or:
			l, err := e.Assume(c.Left)
			if err != nil {
				return e, err
			}
			r, err := e.Assume(c.Right)
			if err != nil {
				return e, err
			}
			return l.Lub(r), nil
		case c.Op.IsComparison():
			return e.assumeComparison(c)
		}
	}
	// any other expression is a condition when it is not zero
	return e.assumeComparison(symbolic.Binary{Op: symbolic.Ne, Left: cond, Right: symbolic.Const(0)})
}

func (e Environment[V]) assumeComparison(c symbolic.Binary) (Environment[V], error) {
	var zero V
	l, err := e.Eval(c.Left)
	if err != nil {
		return e, err
	}
	r, err := e.Eval(c.Right)
	if err != nil {
		return e, err
	}
	if zero.Satisfies(c.Op, l, r) == lattice.NotSatisfied {
		return Bottom[V](), nil
	}
	res := e
	if id, ok := c.Left.(symbolic.Identifier); ok {
		res = res.set(id, zero.Refine(c.Op, l, r))
	}
	if id, ok := c.Right.(symbolic.Identifier); ok {
		if mirror, ok := c.Op.Mirror(); ok {
			res = res.set(id, zero.Refine(mirror, res.Get(id), res.evalOrTop(c.Left)))
		}
	}
	return res, nil
}

func (e Environment[V]) evalOrTop(x symbolic.Expression) V {
	v, err := e.Eval(x)
	if err != nil {
		return v.Top()
	}
	return v
}

// Forget returns the environment where id is unconstrained
func (e Environment[V]) Forget(id symbolic.Identifier) Environment[V] {
	if e.bottom {
		return e
	}
	if _, ok := e.values[id]; !ok {
		return e
	}
	m := e.copyValues()
	delete(m, id)
	return Environment[V]{values: m}
}

// PushScope wraps every identifier of the environment in the scope s
func (e Environment[V]) PushScope(s symbolic.Scope) Environment[V] {
	if e.bottom {
		return e
	}
	m := make(map[symbolic.Identifier]V, len(e.values))
	for id, v := range e.values {
		m[id.PushIdentifier(s)] = v
	}
	return Environment[V]{values: m}
}

// PopScope unwraps the identifiers wrapped in the scope s and drops the identifiers local to the scope
func (e Environment[V]) PopScope(s symbolic.Scope) Environment[V] {
	if e.bottom {
		return e
	}
	m := make(map[symbolic.Identifier]V, len(e.values))
	for id, v := range e.values {
		if popped, ok := id.PopIdentifier(s); ok {
			m[popped] = v
		}
	}
	return Environment[V]{values: m}
}

func (e Environment[V]) Bottom() Environment[V] { return Bottom[V]() }
func (e Environment[V]) Top() Environment[V]    { return Top[V]() }
func (e Environment[V]) IsBottom() bool         { return e.bottom }
func (e Environment[V]) IsTop() bool            { return !e.bottom && len(e.values) == 0 }

// Lub is the point-wise least upper bound
func (e Environment[V]) Lub(o Environment[V]) Environment[V] {
	return e.combineCommon(o, func(a, b V) V { return a.Lub(b) })
}

// Widening is the point-wise widening
func (e Environment[V]) Widening(o Environment[V]) Environment[V] {
	return e.combineCommon(o, func(a, b V) V { return a.Widening(b) })
}

// combineCommon combines two environments with an upper bound operator: identifiers missing in either side are top.
func (e Environment[V]) combineCommon(o Environment[V], op func(V, V) V) Environment[V] {
	if e.bottom {
		return o
	}
	if o.bottom {
		return e
	}
	m := map[symbolic.Identifier]V{}
	for id, v := range e.values {
		if w, ok := o.values[id]; ok {
			if x := op(v, w); !x.IsTop() {
				m[id] = x
			}
		}
	}
	return Environment[V]{values: m}
}

// Glb is the point-wise greatest lower bound
func (e Environment[V]) Glb(o Environment[V]) Environment[V] {
	return e.combineAll(o, func(a, b V) V { return a.Glb(b) })
}

// Narrowing is the point-wise narrowing
func (e Environment[V]) Narrowing(o Environment[V]) Environment[V] {
	return e.combineAll(o, func(a, b V) V { return a.Narrowing(b) })
}

// combineAll combines two environments with a lower bound operator, over the identifiers of both sides.
func (e Environment[V]) combineAll(o Environment[V], op func(V, V) V) Environment[V] {
	if e.bottom || o.bottom {
		return Bottom[V]()
	}
	res := Environment[V]{values: map[symbolic.Identifier]V{}}
	for id := range e.values {
		res = res.set(id, op(e.Get(id), o.Get(id)))
	}
	for id := range o.values {
		if _, done := e.values[id]; !done {
			res = res.set(id, op(e.Get(id), o.Get(id)))
		}
	}
	return res
}

// LessOrEqual is the point-wise order
func (e Environment[V]) LessOrEqual(o Environment[V]) bool {
	if e.bottom {
		return true
	}
	if o.bottom {
		return false
	}
	for id, w := range o.values {
		if !e.Get(id).LessOrEqual(w) {
			return false
		}
	}
	return true
}

func (e Environment[V]) String() string {
	if e.bottom {
		return "⊥"
	}
	var entries []string
	for _, id := range e.Identifiers() {
		entries = append(entries, fmt.Sprintf("%s: %s", id, e.values[id]))
	}
	return "{" + strings.Join(entries, ", ") + "}"
}

// Map returns the environment of W where every value v of e is replaced by f(v). The bottom environment is mapped to
// the bottom environment.
func Map[V Value[V], W Value[W]](e Environment[V], f func(V) W) Environment[W] {
	if e.bottom {
		return Bottom[W]()
	}
	res := Environment[W]{values: map[symbolic.Identifier]W{}}
	for id, v := range e.values {
		res = res.set(id, f(v))
	}
	return res
}
