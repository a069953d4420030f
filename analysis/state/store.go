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

package state

import (
	"fmt"
	"strings"

	"github.com/awslabs/ar-go-absint/internal/funcutil"
)

// StatementStore maps the program points of a procedure, identified by their node index, to analysis states.
// Program points missing from the store are unreachable. A StatementStore must be created with NewStatementStore.
type StatementStore[A Domain[A]] struct {
	states map[int]AnalysisState[A]
}

// NewStatementStore returns an empty store
func NewStatementStore[A Domain[A]]() StatementStore[A] {
	return StatementStore[A]{states: map[int]AnalysisState[A]{}}
}

// Put binds the program point to st, in place
func (s StatementStore[A]) Put(node int, st AnalysisState[A]) {
	s.states[node] = st
}

// Get returns the state at the program point
func (s StatementStore[A]) Get(node int) (AnalysisState[A], bool) {
	st, ok := s.states[node]
	return st, ok
}

// Nodes returns the program points of the store, sorted
func (s StatementStore[A]) Nodes() []int {
	return funcutil.SortedKeys(s.states)
}

// Len returns the number of program points in the store
func (s StatementStore[A]) Len() int {
	return len(s.states)
}

// Lub returns the least upper bound of the states of both stores, point-wise
func (s StatementStore[A]) Lub(o StatementStore[A]) StatementStore[A] {
	return s.Merge(o, func(a, b AnalysisState[A]) AnalysisState[A] { return a.Lub(b) })
}

// Merge returns the store where the states present in both stores are combined with op, and the states present in
// only one of them are kept.
func (s StatementStore[A]) Merge(o StatementStore[A],
	op func(AnalysisState[A], AnalysisState[A]) AnalysisState[A]) StatementStore[A] {
	res := s.Copy()
	funcutil.Merge(res.states, o.states, op)
	return res
}

// Copy returns a copy of the store
func (s StatementStore[A]) Copy() StatementStore[A] {
	res := NewStatementStore[A]()
	for n, st := range s.states {
		res.states[n] = st
	}
	return res
}

// LessOrEqual returns true if every state of s is less or equal to the state of o at the same point
func (s StatementStore[A]) LessOrEqual(o StatementStore[A]) bool {
	for n, st := range s.states {
		ost, ok := o.states[n]
		if !ok {
			if !st.IsBottom() {
				return false
			}
			continue
		}
		if !st.LessOrEqual(ost) {
			return false
		}
	}
	return true
}

func (s StatementStore[A]) String() string {
	var b strings.Builder
	for _, n := range s.Nodes() {
		b.WriteString(fmt.Sprintf("%d: %s\n", n, s.states[n]))
	}
	return b.String()
}

// MapStore returns the store where every state of s is transformed by f
func MapStore[A Domain[A], B Domain[B]](s StatementStore[A],
	f func(AnalysisState[A]) AnalysisState[B]) StatementStore[B] {
	res := NewStatementStore[B]()
	for n, st := range s.states {
		res.states[n] = f(st)
	}
	return res
}
