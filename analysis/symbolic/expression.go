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

// Package symbolic contains the symbolic expressions the abstract domains evaluate: identifiers, constants, unknown
// values, unary and binary operations.
//
// Identifiers carry the stack of call-site scopes pushed on them. When a call is analyzed, every identifier of the
// caller is wrapped with the scope of the call (PushScope), so that the callee cannot refer to it by name. When the
// call returns, identifiers wrapped by the call's scope are unwrapped and the identifiers local to the callee are
// dropped (PopScope).
package symbolic

import (
	"fmt"
	"strings"
)

// Scope is the scope introduced by a call site.
type Scope struct {
	// Site uniquely identifies the call site in the program
	Site string
}

// NewScope returns the scope of the call site.
func NewScope(site string) Scope {
	return Scope{Site: site}
}

func (s Scope) String() string {
	return s.Site
}

// scopeSeparator separates the scopes in the outer scopes of identifiers. Call site names cannot contain it.
const scopeSeparator = "\x1f"

// Expression is a symbolic expression.
type Expression interface {
	fmt.Stringer

	// PushScope returns the expression where every identifier is wrapped with the scope s
	PushScope(s Scope) Expression

	// PopScope returns the expression where every identifier wrapped with s is unwrapped. The boolean is false if
	// the expression mentions an identifier that does not belong to any scope (a local identifier of the callee),
	// in which case the expression cannot be expressed outside of the scope.
	PopScope(s Scope) (Expression, bool)

	isExpression()
}

// Identifier is a variable. Identifiers are comparable and can be used as map keys.
type Identifier struct {
	// Name is the name of the variable in the source
	Name string

	// outer is the sequence of scopes pushed on the identifier, most recent first, each followed by scopeSeparator
	outer string
}

// Var returns the identifier with the given name, outside of any pushed scope
func Var(name string) Identifier {
	return Identifier{Name: name}
}

func (Identifier) isExpression() {}

// IsZero returns true if the identifier is the zero identifier (no name).
func (id Identifier) IsZero() bool {
	return id.Name == "" && id.outer == ""
}

// IsScoped returns true if at least one scope has been pushed on the identifier
func (id Identifier) IsScoped() bool {
	return id.outer != ""
}

// Scopes returns the scopes pushed on the identifier, most recent first
func (id Identifier) Scopes() []Scope {
	if id.outer == "" {
		return nil
	}
	var scopes []Scope
	for _, site := range strings.Split(strings.TrimSuffix(id.outer, scopeSeparator), scopeSeparator) {
		scopes = append(scopes, Scope{Site: site})
	}
	return scopes
}

// PushScope returns the identifier wrapped in scope s
func (id Identifier) PushScope(s Scope) Expression {
	return id.PushIdentifier(s)
}

// PushIdentifier is PushScope returning an Identifier
func (id Identifier) PushIdentifier(s Scope) Identifier {
	return Identifier{Name: id.Name, outer: s.Site + scopeSeparator + id.outer}
}

// PopScope returns the identifier unwrapped from s. Identifiers without scope are local to the scope being popped:
// they are dropped.
func (id Identifier) PopScope(s Scope) (Expression, bool) {
	x, ok := id.PopIdentifier(s)
	return x, ok
}

// PopIdentifier is PopScope returning an Identifier
func (id Identifier) PopIdentifier(s Scope) (Identifier, bool) {
	if id.outer == "" {
		return Identifier{}, false
	}
	prefix := s.Site + scopeSeparator
	if strings.HasPrefix(id.outer, prefix) {
		return Identifier{Name: id.Name, outer: strings.TrimPrefix(id.outer, prefix)}, true
	}
	// wrapped by another scope: it is not affected
	return id, true
}

func (id Identifier) String() string {
	if id.outer == "" {
		return id.Name
	}
	var b strings.Builder
	b.WriteString(id.Name)
	for _, s := range id.Scopes() {
		b.WriteString("@")
		b.WriteString(s.Site)
	}
	return b.String()
}

// Constant is an integer or boolean constant. Boolean constants have value 1 (true) or 0 (false).
type Constant struct {
	Value  int64
	IsBool bool
}

// Const returns the integer constant expression with value v
func Const(v int64) Constant {
	return Constant{Value: v}
}

// BoolConst returns the boolean constant b
func BoolConst(b bool) Constant {
	if b {
		return Constant{Value: 1, IsBool: true}
	}
	return Constant{Value: 0, IsBool: true}
}

func (Constant) isExpression() {}

func (c Constant) PushScope(Scope) Expression        { return c }
func (c Constant) PopScope(Scope) (Expression, bool) { return c, true }

func (c Constant) String() string {
	if c.IsBool {
		return fmt.Sprintf("%t", c.Value != 0)
	}
	return fmt.Sprintf("%d", c.Value)
}

// Any is an unknown value, e.g. the result of an operation the analysis does not model.
type Any struct{}

func (Any) isExpression() {}

func (a Any) PushScope(Scope) Expression        { return a }
func (a Any) PopScope(Scope) (Expression, bool) { return a, true }
func (a Any) String() string                    { return "?" }

// Unary is a unary operation
type Unary struct {
	Op  UnaryOp
	Arg Expression
}

func (Unary) isExpression() {}

// PushScope pushes the scope on the argument
func (u Unary) PushScope(s Scope) Expression {
	return Unary{Op: u.Op, Arg: u.Arg.PushScope(s)}
}

// PopScope pops the scope from the argument
func (u Unary) PopScope(s Scope) (Expression, bool) {
	arg, ok := u.Arg.PopScope(s)
	if !ok {
		return nil, false
	}
	return Unary{Op: u.Op, Arg: arg}, true
}

func (u Unary) String() string {
	return fmt.Sprintf("%s(%s)", u.Op, u.Arg)
}

// Binary is a binary operation
type Binary struct {
	Op    BinaryOp
	Left  Expression
	Right Expression
}

func (Binary) isExpression() {}

// PushScope pushes the scope on both operands
func (b Binary) PushScope(s Scope) Expression {
	return Binary{Op: b.Op, Left: b.Left.PushScope(s), Right: b.Right.PushScope(s)}
}

// PopScope pops the scope from both operands
func (b Binary) PopScope(s Scope) (Expression, bool) {
	l, ok := b.Left.PopScope(s)
	if !ok {
		return nil, false
	}
	r, ok := b.Right.PopScope(s)
	if !ok {
		return nil, false
	}
	return Binary{Op: b.Op, Left: l, Right: r}, true
}

func (b Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Left, b.Op, b.Right)
}

// Identifiers returns the identifiers occurring in e.
func Identifiers(e Expression) []Identifier {
	switch x := e.(type) {
	case Identifier:
		return []Identifier{x}
	case Unary:
		return Identifiers(x.Arg)
	case Binary:
		return append(Identifiers(x.Left), Identifiers(x.Right)...)
	default:
		return nil
	}
}

// Negate returns the negation of the condition e, pushing the negation inside comparisons and boolean connectives.
func Negate(e Expression) Expression {
	switch x := e.(type) {
	case Unary:
		if x.Op == Not {
			return x.Arg
		}
	case Binary:
		if inv, ok := x.Op.Inverse(); ok {
			return Binary{Op: inv, Left: x.Left, Right: x.Right}
		}
		switch x.Op {
		case And:
			return Binary{Op: Or, Left: Negate(x.Left), Right: Negate(x.Right)}
		case Or:
			return Binary{Op: And, Left: Negate(x.Left), Right: Negate(x.Right)}
		}
	}
	return Unary{Op: Not, Arg: e}
}
