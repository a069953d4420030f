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

package fixpoint

import (
	"fmt"

	"github.com/awslabs/ar-go-absint/analysis/config"
	"github.com/awslabs/ar-go-absint/analysis/lattice"
	"github.com/awslabs/ar-go-absint/analysis/program"
	"github.com/awslabs/ar-go-absint/analysis/state"
	"github.com/awslabs/ar-go-absint/analysis/symbolic"
	"github.com/awslabs/ar-go-absint/analysis/workset"
)

// CallResolver computes the abstract result of the calls met during a fixpoint.
type CallResolver[A state.Domain[A]] interface {
	// AbstractResultOf returns the state after call in caller, given the state before the call, the expressions
	// computed for each actual parameter, and the states computed so far in the caller.
	AbstractResultOf(caller *program.Procedure, call *program.Call, entry state.AnalysisState[A],
		actuals []symbolic.ExpressionSet, store state.StatementStore[A]) (state.AnalysisState[A], error)
}

// Routine is an intraprocedural fixpoint algorithm.
type Routine[A state.Domain[A]] interface {
	// Fixpoint computes the ascending fixpoint of p starting from entry.
	Fixpoint(p *program.Procedure, entry state.AnalysisState[A], resolver CallResolver[A],
		opts Options) (*Result[A], error)

	// Descend refines a post-fixpoint of p with the descending phase of opts.
	Descend(start *Result[A], resolver CallResolver[A], opts Options) (*Result[A], error)
}

// Worklist is the worklist fixpoint algorithm over the nodes of a procedure: the nodes whose predecessors changed are
// scheduled in a working set until no state changes.
//
// The state after a node is updated with the least upper bound of its previous and new values for the first
// WideningThreshold updates, and with the widening afterwards.
type Worklist[A state.Domain[A]] struct {
	logger *config.LogGroup
}

// NewWorklist returns the worklist algorithm, logging to logger. A nil logger discards all messages.
func NewWorklist[A state.Domain[A]](logger *config.LogGroup) *Worklist[A] {
	if logger == nil {
		logger = config.NewDiscardLogGroup()
	}
	return &Worklist[A]{logger: logger}
}

// run is the state of one fixpoint computation
type run[A state.Domain[A]] struct {
	proc *program.Procedure

	// entry is the state at the entry of proc
	entry state.AnalysisState[A]

	// posts are the states after each node; nodes not in posts have not been reached
	posts state.StatementStore[A]

	// updates counts the updates of each node
	updates map[int]int

	resolver CallResolver[A]
	ws       workset.WorkingSet[int]
}

func newRun[A state.Domain[A]](p *program.Procedure, entry state.AnalysisState[A], posts state.StatementStore[A],
	resolver CallResolver[A], opts Options) (*run[A], error) {
	ws, err := workset.New[int](opts.WorkingSet)
	if err != nil {
		return nil, err
	}
	return &run[A]{
		proc:     p,
		entry:    entry,
		posts:    posts,
		updates:  map[int]int{},
		resolver: resolver,
		ws:       ws,
	}, nil
}

// Fixpoint computes the ascending fixpoint of p starting from entry.
func (w *Worklist[A]) Fixpoint(p *program.Procedure, entry state.AnalysisState[A], resolver CallResolver[A],
	opts Options) (*Result[A], error) {
	r, err := newRun(p, entry, state.NewStatementStore[A](), resolver, opts)
	if err != nil {
		return nil, err
	}
	r.ws.Push(p.Entry)
	for !r.ws.IsEmpty() {
		n := r.ws.Pop()
		pre, err := r.pre(n)
		if err != nil {
			return nil, err
		}
		post, err := r.semantics(n, pre)
		if err != nil {
			return nil, err
		}
		old, visited := r.posts.Get(n)
		if visited {
			post = lattice.Join(old, post, r.updates[n], opts.WideningThreshold)
			if post.LessOrEqual(old) {
				continue
			}
		}
		r.updates[n]++
		r.posts.Put(n, post)
		if post.IsBottom() {
			continue
		}
		for _, e := range p.Successors(n) {
			r.ws.Push(e.To)
		}
	}
	w.logger.Tracef("Fixpoint of %s reached after %d updates", p.Name, sum(r.updates))
	res := NewResult(p, entry)
	res.Posts = r.posts
	return res, nil
}

// Descend refines the result with the greatest lower bound or the narrowing of the new and old states of each node,
// at most GlbThreshold times per node. Unreachable nodes stay unreachable.
func (w *Worklist[A]) Descend(start *Result[A], resolver CallResolver[A], opts Options) (*Result[A], error) {
	var refine func(old, new state.AnalysisState[A]) state.AnalysisState[A]
	switch opts.Descending {
	case config.GlbDescending:
		refine = func(old, new state.AnalysisState[A]) state.AnalysisState[A] { return old.Glb(new) }
	case config.NarrowingDescending:
		refine = func(old, new state.AnalysisState[A]) state.AnalysisState[A] { return old.Narrowing(new) }
	default:
		return nil, fmt.Errorf("no descending phase in %s", opts)
	}
	p := start.Procedure
	r, err := newRun(p, start.Entry(), start.Posts.Copy(), resolver, opts)
	if err != nil {
		return nil, err
	}
	for _, n := range r.posts.Nodes() {
		r.ws.Push(n)
	}
	for !r.ws.IsEmpty() {
		n := r.ws.Pop()
		old, visited := r.posts.Get(n)
		if !visited || r.updates[n] >= opts.GlbThreshold {
			continue
		}
		pre, err := r.pre(n)
		if err != nil {
			return nil, err
		}
		post, err := r.semantics(n, pre)
		if err != nil {
			return nil, err
		}
		post = refine(old, post)
		if old.LessOrEqual(post) {
			continue
		}
		r.updates[n]++
		r.posts.Put(n, post)
		for _, e := range p.Successors(n) {
			r.ws.Push(e.To)
		}
	}
	w.logger.Tracef("Descending phase of %s done after %d updates", p.Name, sum(r.updates))
	res := NewResult(p, r.entry)
	res.ID = start.ID
	res.Posts = r.posts
	return res, nil
}

// pre returns the state before n: the entry state for the entry node, joined with the states flowing from the
// predecessors of n.
func (r *run[A]) pre(n int) (state.AnalysisState[A], error) {
	res := r.entry.Bottom()
	if n == r.proc.Entry {
		res = r.entry
	}
	for _, e := range r.proc.Predecessors(n) {
		post, ok := r.posts.Get(e.From)
		if !ok || post.IsBottom() {
			continue
		}
		flowing, err := r.traverse(e, post)
		if err != nil {
			return res, err
		}
		res = res.Lub(flowing)
	}
	return res, nil
}

// traverse returns the state flowing through the edge e: conditional edges assume the condition of their branch, or
// its negation.
func (r *run[A]) traverse(e program.Edge, post state.AnalysisState[A]) (state.AnalysisState[A], error) {
	if e.Kind == program.Sequential {
		return post, nil
	}
	cond := r.proc.Nodes[e.From].(program.Branch).Cond
	if e.Kind == program.FalseEdge {
		cond = symbolic.Negate(cond)
	}
	return post.Assume(cond)
}

// semantics returns the state after the statement of n, executed in pre
func (r *run[A]) semantics(n int, pre state.AnalysisState[A]) (state.AnalysisState[A], error) {
	if pre.IsBottom() {
		return pre, nil
	}
	switch st := r.proc.Nodes[n].(type) {
	case program.Assign:
		return pre.Assign(st.Target, st.Expr)
	case program.Branch:
		return pre.WithComputed(st.Cond), nil
	case *program.Call:
		actuals := make([]symbolic.ExpressionSet, len(st.Args))
		for i, arg := range st.Args {
			actuals[i] = symbolic.NewExpressionSet(arg)
		}
		return r.resolver.AbstractResultOf(r.proc, st, pre, actuals, r.posts)
	case program.Return:
		if st.Expr == nil {
			return pre.WithComputed(), nil
		}
		return pre.WithComputed(st.Expr), nil
	case program.Skip:
		return pre, nil
	}
	return pre, fmt.Errorf("unsupported statement %v in %s", r.proc.Nodes[n], r.proc.Name)
}

func sum(m map[int]int) int {
	s := 0
	for _, x := range m {
		s += x
	}
	return s
}
