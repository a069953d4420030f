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
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"strconv"
)

// Parse parses an expression in Go syntax. Identifiers "true" and "false" are boolean constants and the blank
// identifier "_" denotes an unknown value.
func Parse(src string) (Expression, error) {
	e, err := parser.ParseExpr(src)
	if err != nil {
		return nil, fmt.Errorf("invalid expression %q: %w", src, err)
	}
	res, err := fromAst(e)
	if err != nil {
		return nil, fmt.Errorf("invalid expression %q: %w", src, err)
	}
	return res, nil
}

// MustParse is Parse but panics on errors. For tests and static tables only.
func MustParse(src string) Expression {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return e
}

var binaryTokens = map[token.Token]BinaryOp{
	token.ADD:  Add,
	token.SUB:  Sub,
	token.MUL:  Mul,
	token.QUO:  Div,
	token.REM:  Mod,
	token.LSS:  Lt,
	token.LEQ:  Le,
	token.GTR:  Gt,
	token.GEQ:  Ge,
	token.EQL:  Eq,
	token.NEQ:  Ne,
	token.LAND: And,
	token.LOR:  Or,
}

// BinaryOpOfToken returns the operator corresponding to the Go token
func BinaryOpOfToken(t token.Token) (BinaryOp, bool) {
	op, ok := binaryTokens[t]
	return op, ok
}

func fromAst(e ast.Expr) (Expression, error) {
	switch x := e.(type) {
	case *ast.ParenExpr:
		return fromAst(x.X)
	case *ast.Ident:
		switch x.Name {
		case "true":
			return BoolConst(true), nil
		case "false":
			return BoolConst(false), nil
		case "_":
			return Any{}, nil
		}
		return Var(x.Name), nil
	case *ast.BasicLit:
		if x.Kind != token.INT {
			return nil, fmt.Errorf("unsupported literal %s", x.Value)
		}
		v, err := strconv.ParseInt(x.Value, 0, 64)
		if err != nil {
			return nil, err
		}
		return Const(v), nil
	case *ast.UnaryExpr:
		arg, err := fromAst(x.X)
		if err != nil {
			return nil, err
		}
		switch x.Op {
		case token.ADD:
			return arg, nil
		case token.SUB:
			if c, ok := arg.(Constant); ok && !c.IsBool {
				return Const(-c.Value), nil
			}
			return Unary{Op: Neg, Arg: arg}, nil
		case token.NOT:
			return Unary{Op: Not, Arg: arg}, nil
		}
		return nil, fmt.Errorf("unsupported unary operator %s", x.Op)
	case *ast.BinaryExpr:
		op, ok := binaryTokens[x.Op]
		if !ok {
			return nil, fmt.Errorf("unsupported binary operator %s", x.Op)
		}
		l, err := fromAst(x.X)
		if err != nil {
			return nil, err
		}
		r, err := fromAst(x.Y)
		if err != nil {
			return nil, err
		}
		return Binary{Op: op, Left: l, Right: r}, nil
	}
	return nil, fmt.Errorf("unsupported expression %T", e)
}
