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

package symbolic

import (
	"strings"

	"github.com/awslabs/ar-go-absint/internal/funcutil"
)

// ExpressionSet is a set of expressions, ordered by inclusion. Expressions are identified by their string
// representation. The top element is the set of all expressions.
type ExpressionSet struct {
	elems map[string]Expression
	top   bool
}

// NewExpressionSet returns the set containing exprs
func NewExpressionSet(exprs ...Expression) ExpressionSet {
	s := ExpressionSet{elems: make(map[string]Expression, len(exprs))}
	for _, e := range exprs {
		s.elems[e.String()] = e
	}
	return s
}

// Elements returns the expressions in the set, sorted by their string representation. Returns nil for top.
func (s ExpressionSet) Elements() []Expression {
	var res []Expression
	for _, k := range funcutil.SortedKeys(s.elems) {
		res = append(res, s.elems[k])
	}
	return res
}

// Len returns the number of expressions in the set
func (s ExpressionSet) Len() int {
	return len(s.elems)
}

// Contains returns true if e is in the set
func (s ExpressionSet) Contains(e Expression) bool {
	if s.top {
		return true
	}
	_, ok := s.elems[e.String()]
	return ok
}

// Add returns the set s ∪ {e}
func (s ExpressionSet) Add(e Expression) ExpressionSet {
	if s.top {
		return s
	}
	res := NewExpressionSet(e)
	for k, x := range s.elems {
		res.elems[k] = x
	}
	return res
}

// PushScope pushes s on every expression
func (s ExpressionSet) PushScope(scope Scope) ExpressionSet {
	if s.top {
		return s
	}
	res := NewExpressionSet()
	for _, e := range s.elems {
		pushed := e.PushScope(scope)
		res.elems[pushed.String()] = pushed
	}
	return res
}

// PopScope pops s from every expression, dropping expressions that cannot be expressed outside the scope.
func (s ExpressionSet) PopScope(scope Scope) ExpressionSet {
	if s.top {
		return s
	}
	res := NewExpressionSet()
	for _, e := range s.elems {
		if popped, ok := e.PopScope(scope); ok {
			res.elems[popped.String()] = popped
		}
	}
	return res
}

func (s ExpressionSet) Bottom() ExpressionSet { return NewExpressionSet() }
func (s ExpressionSet) Top() ExpressionSet    { return ExpressionSet{top: true} }
func (s ExpressionSet) IsBottom() bool        { return !s.top && len(s.elems) == 0 }
func (s ExpressionSet) IsTop() bool           { return s.top }

// Lub is the union
func (s ExpressionSet) Lub(o ExpressionSet) ExpressionSet {
	if s.top || o.top {
		return s.Top()
	}
	res := NewExpressionSet()
	for k, e := range s.elems {
		res.elems[k] = e
	}
	for k, e := range o.elems {
		res.elems[k] = e
	}
	return res
}

// Glb is the intersection
func (s ExpressionSet) Glb(o ExpressionSet) ExpressionSet {
	if s.top {
		return o
	}
	if o.top {
		return s
	}
	res := NewExpressionSet()
	for k, e := range s.elems {
		if _, ok := o.elems[k]; ok {
			res.elems[k] = e
		}
	}
	return res
}

// Widening is the union: sets of expressions of a program are finite
func (s ExpressionSet) Widening(o ExpressionSet) ExpressionSet { return s.Lub(o) }

// Narrowing is the intersection
func (s ExpressionSet) Narrowing(o ExpressionSet) ExpressionSet { return s.Glb(o) }

// LessOrEqual is inclusion
func (s ExpressionSet) LessOrEqual(o ExpressionSet) bool {
	if o.top {
		return true
	}
	if s.top {
		return false
	}
	for k := range s.elems {
		if _, ok := o.elems[k]; !ok {
			return false
		}
	}
	return true
}

func (s ExpressionSet) String() string {
	if s.top {
		return "{*}"
	}
	return "{" + strings.Join(funcutil.SortedKeys(s.elems), ", ") + "}"
}
