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

package program

import (
	"fmt"

	"github.com/awslabs/ar-go-absint/analysis/symbolic"
)

// Builder builds procedures incrementally. Each statement added is linked by a sequential edge to the previous one,
// unless the previous one is a branch or a return, or Jump was called.
//
// Expressions are given in Go syntax (see symbolic.Parse). The first parsing error is returned by Build.
type Builder struct {
	proc   *Procedure
	last   int
	link   bool
	nCalls int
	err    error
}

// NewBuilder starts the construction of the procedure name with the given formal parameters
func NewBuilder(name string, formals ...string) *Builder {
	p := &Procedure{Name: name}
	for _, f := range formals {
		p.Formals = append(p.Formals, symbolic.Var(f))
	}
	return &Builder{proc: p, last: -1}
}

func (b *Builder) parse(src string) symbolic.Expression {
	e, err := symbolic.Parse(src)
	if err != nil {
		if b.err == nil {
			b.err = err
		}
		return symbolic.Any{}
	}
	return e
}

// Add adds the statement and returns its node
func (b *Builder) Add(st Statement) int {
	n := len(b.proc.Nodes)
	b.proc.Nodes = append(b.proc.Nodes, st)
	if b.link && b.last >= 0 {
		b.Seq(b.last, n)
	}
	b.last = n
	switch st.(type) {
	case Branch, Return:
		b.link = false
	default:
		b.link = true
	}
	return n
}

// Assign adds target = expr
func (b *Builder) Assign(target string, expr string) int {
	return b.Add(Assign{Target: symbolic.Var(target), Expr: b.parse(expr)})
}

// Branch adds a conditional jump on cond. Its successors must be set with True and False.
func (b *Builder) Branch(cond string) int {
	return b.Add(Branch{Cond: b.parse(cond)})
}

// Call adds result = call targets(args...). The call site is the name of the procedure followed by the number of
// calls added before. An empty result discards the returned value.
func (b *Builder) Call(targets []string, result string, args ...string) int {
	b.nCalls++
	return b.CallAt(fmt.Sprintf("%s:%d", b.proc.Name, b.nCalls), targets, result, args...)
}

// CallAt is Call with an explicit call site
func (b *Builder) CallAt(site string, targets []string, result string, args ...string) int {
	c := &Call{Site: site, Targets: targets}
	if result != "" {
		c.Result = symbolic.Var(result)
	}
	for _, a := range args {
		c.Args = append(c.Args, b.parse(a))
	}
	return b.Add(c)
}

// Return adds a return statement. An empty expression returns nothing.
func (b *Builder) Return(expr string) int {
	if expr == "" {
		return b.Add(Return{})
	}
	return b.Add(Return{Expr: b.parse(expr)})
}

// Skip adds a statement that does nothing
func (b *Builder) Skip() int {
	return b.Add(Skip{})
}

// Seq adds a sequential edge
func (b *Builder) Seq(from, to int) {
	b.proc.Edges = append(b.proc.Edges, Edge{From: from, To: to, Kind: Sequential})
}

// True adds the edge taken when the condition of the branch from holds
func (b *Builder) True(from, to int) {
	b.proc.Edges = append(b.proc.Edges, Edge{From: from, To: to, Kind: TrueEdge})
}

// False adds the edge taken when the condition of the branch from does not hold
func (b *Builder) False(from, to int) {
	b.proc.Edges = append(b.proc.Edges, Edge{From: from, To: to, Kind: FalseEdge})
}

// Jump links the last statement added to the node to, and does not link it to the next statement added
func (b *Builder) Jump(to int) {
	b.Seq(b.last, to)
	b.link = false
}

// Build returns the procedure, or an error if an expression could not be parsed or the procedure is malformed
func (b *Builder) Build() (*Procedure, error) {
	if b.err != nil {
		return nil, fmt.Errorf("procedure %s: %w", b.proc.Name, b.err)
	}
	if err := b.proc.Validate(); err != nil {
		return nil, err
	}
	return b.proc, nil
}

// MustBuild is Build but panics on errors. For tests only.
func (b *Builder) MustBuild() *Procedure {
	p, err := b.Build()
	if err != nil {
		panic(err)
	}
	return p
}
