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

	"github.com/awslabs/ar-go-absint/analysis/program"
	"github.com/awslabs/ar-go-absint/analysis/state"
)

// Result is the result of the fixpoint of a procedure: the state at its entry, and the state after every reachable
// program point. Program points that are not in Posts are unreachable.
type Result[A state.Domain[A]] struct {
	Procedure *program.Procedure

	// ID identifies the context the result was computed in
	ID string

	// EntryStates holds the state at the entry of the procedure
	EntryStates state.StatementStore[A]

	// Posts holds the state after each program point
	Posts state.StatementStore[A]
}

// NewResult returns the result of p whose entry state is entry, with no program point analyzed
func NewResult[A state.Domain[A]](p *program.Procedure, entry state.AnalysisState[A]) *Result[A] {
	r := &Result[A]{
		Procedure:   p,
		EntryStates: state.NewStatementStore[A](),
		Posts:       state.NewStatementStore[A](),
	}
	r.EntryStates.Put(p.Entry, entry)
	return r
}

// Entry returns the state at the entry of the procedure
func (r *Result[A]) Entry() state.AnalysisState[A] {
	st, _ := r.EntryStates.Get(r.Procedure.Entry)
	return st
}

// Exit returns the least upper bound of the states after the exit points of the procedure. It is bottom when no
// exit is reachable.
func (r *Result[A]) Exit() state.AnalysisState[A] {
	res := r.Entry().Bottom()
	for _, n := range r.Procedure.Exits() {
		if st, ok := r.Posts.Get(n); ok {
			res = res.Lub(st)
		}
	}
	return res
}

// Post returns the state after the program point n; unreachable points are bottom
func (r *Result[A]) Post(n int) state.AnalysisState[A] {
	if st, ok := r.Posts.Get(n); ok {
		return st
	}
	return r.Entry().Bottom()
}

// LessOrEqual compares the entry states and the states at every program point
func (r *Result[A]) LessOrEqual(o *Result[A]) bool {
	return r.EntryStates.LessOrEqual(o.EntryStates) && r.Posts.LessOrEqual(o.Posts)
}

// Lub returns the point-wise least upper bound of both results
func (r *Result[A]) Lub(o *Result[A]) *Result[A] {
	return &Result[A]{
		Procedure:   r.Procedure,
		ID:          r.ID,
		EntryStates: r.EntryStates.Lub(o.EntryStates),
		Posts:       r.Posts.Lub(o.Posts),
	}
}

// Widening returns the point-wise widening of both results: program points analyzed in only one of them are kept.
func (r *Result[A]) Widening(o *Result[A]) *Result[A] {
	widen := func(a, b state.AnalysisState[A]) state.AnalysisState[A] { return a.Widening(b) }
	return &Result[A]{
		Procedure:   r.Procedure,
		ID:          r.ID,
		EntryStates: r.EntryStates.Merge(o.EntryStates, widen),
		Posts:       r.Posts.Merge(o.Posts, widen),
	}
}

// WithID returns a copy of the result with the given ID
func (r *Result[A]) WithID(id string) *Result[A] {
	c := *r
	c.ID = id
	return &c
}

func (r *Result[A]) String() string {
	return fmt.Sprintf("%s%s: %s -> %s", r.Procedure.Name, r.ID, r.Entry(), r.Exit())
}
