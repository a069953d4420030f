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

// Package sign implements the sign abstraction of integers: ⊥, negative, zero, positive, ⊤.
//
// Booleans are encoded as integers: 0 is false and any other value is true.
package sign

import (
	"github.com/awslabs/ar-go-absint/analysis/lattice"
	"github.com/awslabs/ar-go-absint/analysis/symbolic"
)

// Sign is an element of the sign lattice. The lattice is flat: Bot < Neg, Zero, Pos < Top.
type Sign int

const (
	Bot Sign = iota
	Neg
	Zero
	Pos
	Top
)

// concrete are the signs that abstract at least one integer and no other sign
var concrete = [...]Sign{Neg, Zero, Pos}

// Of returns the sign of n
func Of(n int64) Sign {
	switch {
	case n < 0:
		return Neg
	case n == 0:
		return Zero
	default:
		return Pos
	}
}

func (s Sign) String() string {
	switch s {
	case Bot:
		return "⊥"
	case Neg:
		return "-"
	case Zero:
		return "0"
	case Pos:
		return "+"
	default:
		return "⊤"
	}
}

func (Sign) Bottom() Sign            { return Bot }
func (Sign) Top() Sign               { return Top }
func (s Sign) IsBottom() bool        { return s == Bot }
func (s Sign) IsTop() bool           { return s == Top }
func (s Sign) Widening(o Sign) Sign  { return s.Lub(o) }
func (s Sign) Narrowing(o Sign) Sign { return s.Glb(o) }

func (s Sign) Lub(o Sign) Sign {
	switch {
	case s == o || o == Bot:
		return s
	case s == Bot:
		return o
	default:
		return Top
	}
}

func (s Sign) Glb(o Sign) Sign {
	switch {
	case s == o || o == Top:
		return s
	case s == Top:
		return o
	default:
		return Bot
	}
}

func (s Sign) LessOrEqual(o Sign) bool {
	return s == o || s == Bot || o == Top
}

// Negate returns the sign of -x for x abstracted by s
func (s Sign) Negate() Sign {
	switch s {
	case Neg:
		return Pos
	case Pos:
		return Neg
	default:
		return s
	}
}

// EvalConstant returns the sign of the constant
func (Sign) EvalConstant(c symbolic.Constant) (Sign, error) {
	return Of(c.Value), nil
}

// EvalUnary computes the sign of -arg and !arg
func (Sign) EvalUnary(op symbolic.UnaryOp, arg Sign) (Sign, error) {
	if arg == Bot {
		return Bot, nil
	}
	switch op {
	case symbolic.Neg:
		return arg.Negate(), nil
	default:
		return fromTruth(truth(arg).Negate()), nil
	}
}

// EvalBinary computes the sign of l op r
func (Sign) EvalBinary(op symbolic.BinaryOp, l Sign, r Sign) (Sign, error) {
	if l == Bot || r == Bot {
		return Bot, nil
	}
	switch op {
	case symbolic.Add:
		return add(l, r), nil
	case symbolic.Sub:
		return add(l, r.Negate()), nil
	case symbolic.Mul:
		return mul(l, r), nil
	case symbolic.Div, symbolic.Mod:
		switch {
		case r == Zero:
			// division by zero has no result
			return Bot, nil
		case l == Zero:
			return Zero, nil
		default:
			return Top, nil
		}
	case symbolic.And:
		return fromTruth(truth(l).And(truth(r))), nil
	case symbolic.Or:
		return fromTruth(truth(l).Or(truth(r))), nil
	default:
		return fromTruth(satisfies(op, l, r)), nil
	}
}

func add(l, r Sign) Sign {
	switch {
	case l == Zero:
		return r
	case r == Zero:
		return l
	case l == r && l != Top:
		return l
	default:
		return Top
	}
}

func mul(l, r Sign) Sign {
	switch {
	case l == Zero || r == Zero:
		return Zero
	case l == Top || r == Top:
		return Top
	case l == r:
		return Pos
	default:
		return Neg
	}
}

func truth(s Sign) lattice.Satisfiability {
	switch s {
	case Zero:
		return lattice.NotSatisfied
	case Neg, Pos:
		return lattice.Satisfied
	default:
		return lattice.Unknown
	}
}

func fromTruth(s lattice.Satisfiability) Sign {
	switch s {
	case lattice.Satisfied:
		return Pos
	case lattice.NotSatisfied:
		return Zero
	default:
		return Top
	}
}

// Satisfies decides the comparison l op r from the sign of l - r
func (Sign) Satisfies(op symbolic.BinaryOp, l Sign, r Sign) lattice.Satisfiability {
	return satisfies(op, l, r)
}

func satisfies(op symbolic.BinaryOp, l Sign, r Sign) lattice.Satisfiability {
	if l == Bot || r == Bot {
		return lattice.NotSatisfied
	}
	d := add(l, r.Negate())
	switch op {
	case symbolic.Lt:
		return decide(d == Neg, d == Zero || d == Pos)
	case symbolic.Le:
		return decide(d == Neg || d == Zero, d == Pos)
	case symbolic.Gt:
		return decide(d == Pos, d == Zero || d == Neg)
	case symbolic.Ge:
		return decide(d == Pos || d == Zero, d == Neg)
	case symbolic.Eq:
		return decide(d == Zero, d == Neg || d == Pos)
	case symbolic.Ne:
		return decide(d == Neg || d == Pos, d == Zero)
	}
	return lattice.Unknown
}

func decide(always bool, never bool) lattice.Satisfiability {
	switch {
	case always:
		return lattice.Satisfied
	case never:
		return lattice.NotSatisfied
	default:
		return lattice.Unknown
	}
}

// Refine keeps the concrete signs below l for which l op r may hold
func (Sign) Refine(op symbolic.BinaryOp, l Sign, r Sign) Sign {
	res := Bot
	for _, s := range concrete {
		if s.LessOrEqual(l) && satisfies(op, s, r) != lattice.NotSatisfied {
			res = res.Lub(s)
		}
	}
	return res
}
