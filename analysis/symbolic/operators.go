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

// UnaryOp is a unary operator
type UnaryOp int

const (
	// Neg is the arithmetic negation
	Neg UnaryOp = iota
	// Not is the boolean negation
	Not
)

func (op UnaryOp) String() string {
	switch op {
	case Neg:
		return "-"
	case Not:
		return "!"
	default:
		return "?"
	}
}

// BinaryOp is a binary operator
type BinaryOp int

const (
	Add BinaryOp = iota
	Sub
	Mul
	Div
	Mod
	Lt
	Le
	Gt
	Ge
	Eq
	Ne
	And
	Or
)

var binaryOpStrings = [...]string{
	Add: "+",
	Sub: "-",
	Mul: "*",
	Div: "/",
	Mod: "%",
	Lt:  "<",
	Le:  "<=",
	Gt:  ">",
	Ge:  ">=",
	Eq:  "==",
	Ne:  "!=",
	And: "&&",
	Or:  "||",
}

func (op BinaryOp) String() string {
	if int(op) < len(binaryOpStrings) {
		return binaryOpStrings[op]
	}
	return "?"
}

// IsArithmetic returns true for +, -, *, / and %
func (op BinaryOp) IsArithmetic() bool {
	return op <= Mod
}

// IsComparison returns true for <, <=, >, >=, == and !=
func (op BinaryOp) IsComparison() bool {
	return op >= Lt && op <= Ne
}

// IsLogical returns true for && and ||
func (op BinaryOp) IsLogical() bool {
	return op == And || op == Or
}

// Inverse returns the comparison that holds exactly when op does not hold.
func (op BinaryOp) Inverse() (BinaryOp, bool) {
	switch op {
	case Lt:
		return Ge, true
	case Le:
		return Gt, true
	case Gt:
		return Le, true
	case Ge:
		return Lt, true
	case Eq:
		return Ne, true
	case Ne:
		return Eq, true
	default:
		return op, false
	}
}

// Mirror returns the comparison op' such that a op b iff b op' a.
func (op BinaryOp) Mirror() (BinaryOp, bool) {
	switch op {
	case Lt:
		return Gt, true
	case Le:
		return Ge, true
	case Gt:
		return Lt, true
	case Ge:
		return Le, true
	case Eq, Ne:
		return op, true
	default:
		return op, false
	}
}
