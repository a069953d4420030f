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

// Package program contains the representation of the programs analyzed: procedures are control flow graphs of
// statements over symbolic expressions, and an application is a set of procedures with entry points.
package program

import (
	"fmt"
	"strings"

	"github.com/awslabs/ar-go-absint/analysis/symbolic"
	"github.com/awslabs/ar-go-absint/internal/funcutil"
)

// Statement is a node of a control flow graph
type Statement interface {
	fmt.Stringer
	isStatement()
}

// Assign is the statement Target = Expr
type Assign struct {
	Target symbolic.Identifier
	Expr   symbolic.Expression
}

// Branch is a conditional jump: its successors are reached through True and False edges
type Branch struct {
	Cond symbolic.Expression
}

// Call is a call to one of the procedures in Targets. The call site identifies the call in the whole application.
// Result is the zero identifier when the result of the call is discarded.
type Call struct {
	Site    string
	Targets []string
	Args    []symbolic.Expression
	Result  symbolic.Identifier
}

// Return returns Expr from the procedure, or nothing when Expr is nil
type Return struct {
	Expr symbolic.Expression
}

// Skip does nothing
type Skip struct{}

func (Assign) isStatement() {}
func (Branch) isStatement() {}
func (*Call) isStatement()  {}
func (Return) isStatement() {}
func (Skip) isStatement()   {}

func (a Assign) String() string { return fmt.Sprintf("%s = %s", a.Target, a.Expr) }
func (b Branch) String() string { return fmt.Sprintf("if %s", b.Cond) }
func (Skip) String() string     { return "skip" }

func (r Return) String() string {
	if r.Expr == nil {
		return "return"
	}
	return fmt.Sprintf("return %s", r.Expr)
}

func (c *Call) String() string {
	args := strings.Join(funcutil.Map(c.Args, symbolic.Expression.String), ", ")
	call := fmt.Sprintf("call [%s](%s) @%s", strings.Join(c.Targets, " | "), args, c.Site)
	if c.Result.IsZero() {
		return call
	}
	return fmt.Sprintf("%s = %s", c.Result, call)
}

// Scope returns the scope introduced by the call
func (c *Call) Scope() symbolic.Scope {
	return symbolic.NewScope(c.Site)
}

// MetaVariable returns the variable holding the value returned by the call: the result identifier if the call has
// one, or a synthetic identifier unique to the call site.
func (c *Call) MetaVariable() symbolic.Identifier {
	if !c.Result.IsZero() {
		return c.Result
	}
	return symbolic.Var("$" + c.Site)
}

// HasResult returns true if the value returned by the call is assigned to a variable of the caller
func (c *Call) HasResult() bool {
	return !c.Result.IsZero()
}
