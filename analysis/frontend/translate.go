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

// Package frontend translates Go functions in SSA form to the procedures analyzed by the abstract interpreter.
//
// Only integer and boolean values are tracked: instructions computing other values, or integers with operations
// the expressions do not model, assign an unknown value. Phi nodes become copies on the edges of the control flow
// graph, and conditional jumps on comparisons refine the compared values.
package frontend

import (
	"fmt"
	"go/constant"
	"go/token"
	"go/types"

	"github.com/awslabs/ar-go-absint/analysis/program"
	"github.com/awslabs/ar-go-absint/analysis/symbolic"
	"github.com/awslabs/ar-go-absint/internal/funcutil"
	"golang.org/x/exp/slices"
	"golang.org/x/tools/go/callgraph"
	"golang.org/x/tools/go/callgraph/cha"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

// ProcedureName returns the name of the procedure translated from f
func ProcedureName(f *ssa.Function) string {
	return f.String()
}

// IsExternal returns true if f has no body (in ssa, when Blocks is nil)
func IsExternal(f *ssa.Function) bool {
	return f.Blocks == nil
}

// TranslateProgram translates the functions of prog for which keep returns true, or all the functions with a body
// if keep is nil. Dynamic calls are resolved with the class hierarchy analysis of prog.
func TranslateProgram(prog *ssa.Program, keep func(*ssa.Function) bool) (*program.Application, error) {
	var fns []*ssa.Function
	for f := range ssautil.AllFunctions(prog) {
		if !IsExternal(f) && (keep == nil || keep(f)) {
			fns = append(fns, f)
		}
	}
	return Translate(fns, cha.CallGraph(prog))
}

// Translate translates the functions, in the order of their names. The targets of dynamic calls are the callees
// of the call site in cg; cg may be nil, in which case dynamic calls are open.
func Translate(fns []*ssa.Function, cg *callgraph.Graph) (*program.Application, error) {
	fns = slices.Clone(fns)
	slices.SortFunc(fns, func(a, b *ssa.Function) bool { return ProcedureName(a) < ProcedureName(b) })
	var procs []*program.Procedure
	for _, f := range fns {
		if IsExternal(f) {
			continue
		}
		t := &translator{
			fn:    f,
			cg:    cg,
			proc:  &program.Procedure{Name: ProcedureName(f)},
			first: map[*ssa.BasicBlock]int{},
			last:  map[*ssa.BasicBlock]int{},
		}
		p, err := t.translate()
		if err != nil {
			return nil, fmt.Errorf("failed to translate %s: %w", f, err)
		}
		procs = append(procs, p)
	}
	return program.NewApplication(procs)
}

type translator struct {
	fn   *ssa.Function
	cg   *callgraph.Graph
	proc *program.Procedure

	// first and last are the first and last nodes of each block
	first map[*ssa.BasicBlock]int
	last  map[*ssa.BasicBlock]int

	nCalls int
}

func (t *translator) add(st program.Statement) int {
	t.proc.Nodes = append(t.proc.Nodes, st)
	return len(t.proc.Nodes) - 1
}

func (t *translator) edge(from, to int, kind program.EdgeKind) {
	t.proc.Edges = append(t.proc.Edges, program.Edge{From: from, To: to, Kind: kind})
}

func (t *translator) translate() (*program.Procedure, error) {
	for i, param := range t.fn.Params {
		name := param.Name()
		if name == "" || name == "_" {
			name = fmt.Sprintf("$param%d", i)
		}
		t.proc.Formals = append(t.proc.Formals, symbolic.Var(name))
	}
	for _, b := range t.fn.Blocks {
		prev := -1
		for _, instr := range b.Instrs {
			if _, isPhi := instr.(*ssa.Phi); isPhi {
				continue
			}
			n := t.add(t.statement(instr))
			if prev < 0 {
				t.first[b] = n
			} else {
				t.edge(prev, n, program.Sequential)
			}
			prev = n
		}
		if prev < 0 {
			return nil, fmt.Errorf("block %d has no instruction", b.Index)
		}
		t.last[b] = prev
	}
	for _, b := range t.fn.Blocks {
		switch b.Instrs[len(b.Instrs)-1].(type) {
		case *ssa.If:
			t.link(b, b.Succs[0], program.TrueEdge)
			t.link(b, b.Succs[1], program.FalseEdge)
		case *ssa.Jump:
			t.link(b, b.Succs[0], program.Sequential)
		}
	}
	t.proc.Entry = t.first[t.fn.Blocks[0]]
	return t.proc, nil
}

// link adds the edge from b to succ, through the copies of the phi nodes of succ
func (t *translator) link(b, succ *ssa.BasicBlock, kind program.EdgeKind) {
	from := t.last[b]
	for _, copied := range phiCopies(b, succ) {
		n := t.add(copied)
		t.edge(from, n, kind)
		from = n
		kind = program.Sequential
	}
	t.edge(from, t.first[succ], kind)
}

// phiCopies returns the assignments of the phi nodes of succ when entering from b. The copies are parallel: when
// succ has several phis, values are first copied to temporaries.
func phiCopies(b, succ *ssa.BasicBlock) []program.Statement {
	i := slices.Index(succ.Preds, b)
	var phis []*ssa.Phi
	for _, instr := range succ.Instrs {
		if phi, ok := instr.(*ssa.Phi); ok && i >= 0 && i < len(phi.Edges) {
			phis = append(phis, phi)
		}
	}
	if len(phis) == 1 {
		return []program.Statement{assign(phis[0], value(phis[0].Edges[i]))}
	}
	var copies, moves []program.Statement
	for _, phi := range phis {
		tmp := symbolic.Var("$" + phi.Name())
		copies = append(copies, program.Assign{Target: tmp, Expr: value(phi.Edges[i])})
		moves = append(moves, assign(phi, tmp))
	}
	return append(copies, moves...)
}

// statement translates an instruction that is not a phi
//
//gocyclo:ignore
func (t *translator) statement(instr ssa.Instruction) program.Statement {
	switch i := instr.(type) {
	case *ssa.BinOp:
		if op, ok := symbolic.BinaryOpOfToken(i.Op); ok && isTracked(i.X.Type()) && isTracked(i.Y.Type()) {
			return assign(i, symbolic.Binary{Op: op, Left: value(i.X), Right: value(i.Y)})
		}
	case *ssa.UnOp:
		switch {
		case i.Op == token.SUB && isTracked(i.X.Type()):
			return assign(i, symbolic.Unary{Op: symbolic.Neg, Arg: value(i.X)})
		case i.Op == token.NOT:
			return assign(i, symbolic.Unary{Op: symbolic.Not, Arg: value(i.X)})
		}
	case *ssa.Convert:
		if isTracked(i.X.Type()) && isTracked(i.Type()) {
			return assign(i, value(i.X))
		}
	case *ssa.ChangeType:
		if isTracked(i.X.Type()) && isTracked(i.Type()) {
			return assign(i, value(i.X))
		}
	case *ssa.Call:
		if _, isBuiltin := i.Call.Value.(*ssa.Builtin); !isBuiltin {
			return t.call(i)
		}
	case *ssa.If:
		return program.Branch{Cond: condition(i.Cond)}
	case *ssa.Return:
		switch len(i.Results) {
		case 0:
			return program.Return{}
		case 1:
			return program.Return{Expr: value(i.Results[0])}
		default:
			return program.Return{Expr: symbolic.Any{}}
		}
	}
	if v, ok := instr.(ssa.Value); ok && isTracked(v.Type()) {
		return assign(v, symbolic.Any{})
	}
	return program.Skip{}
}

func assign(v ssa.Value, e symbolic.Expression) program.Statement {
	return program.Assign{Target: symbolic.Var(v.Name()), Expr: e}
}

// call translates a call to a function that is not a builtin
func (t *translator) call(i *ssa.Call) *program.Call {
	t.nCalls++
	c := &program.Call{Site: fmt.Sprintf("%s:%d", t.proc.Name, t.nCalls)}
	common := i.Common()
	if callee := common.StaticCallee(); callee != nil {
		c.Targets = []string{ProcedureName(callee)}
	} else if t.cg != nil {
		if node := t.cg.Nodes[t.fn]; node != nil {
			targets := map[string]bool{}
			for _, e := range node.Out {
				if e.Site == i {
					targets[ProcedureName(e.Callee.Func)] = true
				}
			}
			c.Targets = funcutil.SetToOrderedSlice(targets)
		}
	}
	if common.IsInvoke() {
		// the receiver is the first parameter of the methods invoked
		c.Args = append(c.Args, symbolic.Any{})
	}
	for _, arg := range common.Args {
		c.Args = append(c.Args, value(arg))
	}
	if isTracked(i.Type()) {
		c.Result = symbolic.Var(i.Name())
	}
	return c
}

// condition returns the condition of a jump on v: comparisons are inlined so that the branches refine their operands
func condition(v ssa.Value) symbolic.Expression {
	if b, ok := v.(*ssa.BinOp); ok {
		op, ok := symbolic.BinaryOpOfToken(b.Op)
		if ok && op.IsComparison() && isTracked(b.X.Type()) && isTracked(b.Y.Type()) {
			return symbolic.Binary{Op: op, Left: value(b.X), Right: value(b.Y)}
		}
	}
	return value(v)
}

// value returns the expression of an operand
func value(v ssa.Value) symbolic.Expression {
	if !isTracked(v.Type()) {
		return symbolic.Any{}
	}
	switch v := v.(type) {
	case *ssa.Const:
		return constantValue(v)
	case *ssa.Function, *ssa.Global, *ssa.Builtin:
		return symbolic.Any{}
	}
	return symbolic.Var(v.Name())
}

func constantValue(c *ssa.Const) symbolic.Expression {
	if c.Value == nil {
		return symbolic.Const(0)
	}
	switch c.Value.Kind() {
	case constant.Bool:
		return symbolic.BoolConst(constant.BoolVal(c.Value))
	case constant.Int:
		if n, exact := constant.Int64Val(c.Value); exact {
			return symbolic.Const(n)
		}
	}
	return symbolic.Any{}
}

// isTracked returns true if values of type t are integers or booleans
func isTracked(t types.Type) bool {
	b, ok := t.Underlying().(*types.Basic)
	return ok && b.Info()&(types.IsInteger|types.IsBoolean) != 0
}
