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

// Package typeset implements the inference of the runtime types of values, as sets of types.
package typeset

import (
	"fmt"
	"strings"

	"github.com/awslabs/ar-go-absint/analysis/lattice"
	"github.com/awslabs/ar-go-absint/analysis/symbolic"
)

// Types is a set of types, ordered by inclusion.
type Types uint8

const (
	// Int is the set {int}
	Int Types = 1 << iota
	// Bool is the set {bool}
	Bool

	// None is the empty set (bottom)
	None Types = 0
	// Any is the set of all types (top)
	Any = Int | Bool
)

func (t Types) String() string {
	switch t {
	case None:
		return "⊥"
	case Any:
		return "⊤"
	}
	var names []string
	if t&Int != 0 {
		names = append(names, "int")
	}
	if t&Bool != 0 {
		names = append(names, "bool")
	}
	return "{" + strings.Join(names, ", ") + "}"
}

func (Types) Bottom() Types              { return None }
func (Types) Top() Types                 { return Any }
func (t Types) IsBottom() bool           { return t == None }
func (t Types) IsTop() bool              { return t == Any }
func (t Types) Lub(o Types) Types        { return t | o }
func (t Types) Glb(o Types) Types        { return t & o }
func (t Types) Widening(o Types) Types   { return t | o }
func (t Types) Narrowing(o Types) Types  { return t & o }
func (t Types) LessOrEqual(o Types) bool { return t&^o == 0 }

// EvalConstant returns the type of the constant
func (Types) EvalConstant(c symbolic.Constant) (Types, error) {
	if c.IsBool {
		return Bool, nil
	}
	return Int, nil
}

// check returns an error if t may contain a value that is not of type want
func check(op fmt.Stringer, t Types, want Types) error {
	if t&^want != 0 {
		return fmt.Errorf("operator %s applied to an operand of type %s", op, t)
	}
	return nil
}

// EvalUnary returns the type of the operation, or an error if the operand may have the wrong type
func (Types) EvalUnary(op symbolic.UnaryOp, arg Types) (Types, error) {
	if arg == None {
		return None, nil
	}
	if op == symbolic.Neg {
		return Int, check(op, arg, Int)
	}
	return Bool, check(op, arg, Bool)
}

// EvalBinary returns the type of the operation, or an error if an operand may have the wrong type
func (Types) EvalBinary(op symbolic.BinaryOp, l Types, r Types) (Types, error) {
	if l == None || r == None {
		return None, nil
	}
	var want, res Types
	switch {
	case op.IsArithmetic():
		want, res = Int, Int
	case op.IsLogical():
		want, res = Bool, Bool
	case op == symbolic.Eq || op == symbolic.Ne:
		want, res = Any, Bool
	default:
		want, res = Int, Bool
	}
	if err := check(op, l, want); err != nil {
		return None, err
	}
	if err := check(op, r, want); err != nil {
		return None, err
	}
	return res, nil
}

// Satisfies is unknown: types do not decide conditions
func (Types) Satisfies(op symbolic.BinaryOp, l Types, r Types) lattice.Satisfiability {
	if l == None || r == None {
		return lattice.NotSatisfied
	}
	return lattice.Unknown
}

// Refine does not restrict the types
func (Types) Refine(_ symbolic.BinaryOp, l Types, _ Types) Types {
	return l
}
