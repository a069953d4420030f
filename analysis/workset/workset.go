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

// Package workset implements the working sets used by the fixpoint algorithms to schedule the elements left to
// process.
package workset

import (
	"fmt"

	"github.com/awslabs/ar-go-absint/analysis/config"
	"golang.org/x/exp/slices"
)

// WorkingSet is a collection of elements waiting to be processed. Pop and Peek panic on an empty working set.
type WorkingSet[T comparable] interface {
	Push(x T)
	Pop() T
	Peek() T
	Size() int
	IsEmpty() bool
}

// New returns an empty working set of the given kind
func New[T comparable](kind config.WorkingSetKind) (WorkingSet[T], error) {
	switch kind {
	case config.FIFOWorkingSet:
		return NewFIFO[T](), nil
	case config.LIFOWorkingSet:
		return NewLIFO[T](), nil
	case config.DuplicateFreeFIFOWorkingSet:
		return NewDuplicateFree[T](NewFIFO[T]()), nil
	case config.DuplicateFreeLIFOWorkingSet:
		return NewDuplicateFree[T](NewLIFO[T]()), nil
	}
	return nil, fmt.Errorf("unknown working set %q", kind)
}

// FIFO returns elements in insertion order
type FIFO[T comparable] struct {
	elems []T
	head  int
}

// NewFIFO returns an empty queue
func NewFIFO[T comparable]() *FIFO[T] {
	return &FIFO[T]{}
}

func (q *FIFO[T]) Push(x T) {
	q.elems = append(q.elems, x)
}

func (q *FIFO[T]) Pop() T {
	x := q.Peek()
	var zero T
	q.elems[q.head] = zero
	q.head++
	// reclaim the consumed prefix once it dominates the slice
	if q.head > 32 && q.head*2 > len(q.elems) {
		q.elems = append([]T(nil), q.elems[q.head:]...)
		q.head = 0
	}
	return x
}

func (q *FIFO[T]) Peek() T {
	if q.IsEmpty() {
		panic("peek on an empty working set")
	}
	return q.elems[q.head]
}

func (q *FIFO[T]) Size() int     { return len(q.elems) - q.head }
func (q *FIFO[T]) IsEmpty() bool { return q.Size() == 0 }

// LIFO returns the most recently inserted element first
type LIFO[T comparable] struct {
	elems []T
}

// NewLIFO returns an empty stack
func NewLIFO[T comparable]() *LIFO[T] {
	return &LIFO[T]{}
}

func (s *LIFO[T]) Push(x T) {
	s.elems = append(s.elems, x)
}

func (s *LIFO[T]) Pop() T {
	x := s.Peek()
	s.elems = s.elems[:len(s.elems)-1]
	return x
}

func (s *LIFO[T]) Peek() T {
	if s.IsEmpty() {
		panic("peek on an empty working set")
	}
	return s.elems[len(s.elems)-1]
}

func (s *LIFO[T]) Size() int     { return len(s.elems) }
func (s *LIFO[T]) IsEmpty() bool { return len(s.elems) == 0 }

// Ordered returns the least element first, according to a custom ordering. Equivalent elements are returned in
// insertion order.
type Ordered[T comparable] struct {
	elems []T
	less  func(a, b T) bool
}

// NewOrdered returns an empty working set ordered by less
func NewOrdered[T comparable](less func(a, b T) bool) *Ordered[T] {
	return &Ordered[T]{less: less}
}

func (o *Ordered[T]) Push(x T) {
	i := slices.IndexFunc(o.elems, func(y T) bool { return o.less(x, y) })
	if i < 0 {
		i = len(o.elems)
	}
	o.elems = slices.Insert(o.elems, i, x)
}

func (o *Ordered[T]) Pop() T {
	x := o.Peek()
	o.elems = slices.Delete(o.elems, 0, 1)
	return x
}

func (o *Ordered[T]) Peek() T {
	if o.IsEmpty() {
		panic("peek on an empty working set")
	}
	return o.elems[0]
}

func (o *Ordered[T]) Size() int     { return len(o.elems) }
func (o *Ordered[T]) IsEmpty() bool { return len(o.elems) == 0 }

// DuplicateFree ignores the insertion of elements that are already in the working set
type DuplicateFree[T comparable] struct {
	WorkingSet[T]
	contained map[T]bool
}

// NewDuplicateFree wraps ws
func NewDuplicateFree[T comparable](ws WorkingSet[T]) *DuplicateFree[T] {
	return &DuplicateFree[T]{WorkingSet: ws, contained: map[T]bool{}}
}

func (d *DuplicateFree[T]) Push(x T) {
	if d.contained[x] {
		return
	}
	d.contained[x] = true
	d.WorkingSet.Push(x)
}

func (d *DuplicateFree[T]) Pop() T {
	x := d.WorkingSet.Pop()
	delete(d.contained, x)
	return x
}

// VisitOnce ignores the insertion of elements that have ever been inserted
type VisitOnce[T comparable] struct {
	WorkingSet[T]
	seen map[T]bool
}

// NewVisitOnce wraps ws
func NewVisitOnce[T comparable](ws WorkingSet[T]) *VisitOnce[T] {
	return &VisitOnce[T]{WorkingSet: ws, seen: map[T]bool{}}
}

func (v *VisitOnce[T]) Push(x T) {
	if v.seen[x] {
		return
	}
	v.seen[x] = true
	v.WorkingSet.Push(x)
}

// Seen returns the set of elements ever inserted
func (v *VisitOnce[T]) Seen() map[T]bool {
	return v.seen
}
