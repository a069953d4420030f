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

	"github.com/awslabs/ar-go-absint/analysis/symbolic"
)

// SimpleState is the product of a heap domain H, a value domain V and a type domain T. Operations are applied
// component-wise; a state where any component is bottom is bottom.
type SimpleState[H Domain[H], V Domain[V], T Domain[T]] struct {
	Heap  H
	Value V
	Type  T
}

// NewSimpleState returns the state with the given components
func NewSimpleState[H Domain[H], V Domain[V], T Domain[T]](h H, v V, t T) SimpleState[H, V, T] {
	return SimpleState[H, V, T]{Heap: h, Value: v, Type: t}.normalize()
}

func (s SimpleState[H, V, T]) normalize() SimpleState[H, V, T] {
	if s.Heap.IsBottom() || s.Value.IsBottom() || s.Type.IsBottom() {
		return s.Bottom()
	}
	return s
}

func (s SimpleState[H, V, T]) Bottom() SimpleState[H, V, T] {
	return SimpleState[H, V, T]{Heap: s.Heap.Bottom(), Value: s.Value.Bottom(), Type: s.Type.Bottom()}
}

func (s SimpleState[H, V, T]) Top() SimpleState[H, V, T] {
	return SimpleState[H, V, T]{Heap: s.Heap.Top(), Value: s.Value.Top(), Type: s.Type.Top()}
}

func (s SimpleState[H, V, T]) IsBottom() bool {
	return s.Heap.IsBottom() || s.Value.IsBottom() || s.Type.IsBottom()
}

func (s SimpleState[H, V, T]) IsTop() bool {
	return s.Heap.IsTop() && s.Value.IsTop() && s.Type.IsTop()
}

func (s SimpleState[H, V, T]) Lub(o SimpleState[H, V, T]) SimpleState[H, V, T] {
	if s.IsBottom() {
		return o
	}
	if o.IsBottom() {
		return s
	}
	return SimpleState[H, V, T]{Heap: s.Heap.Lub(o.Heap), Value: s.Value.Lub(o.Value), Type: s.Type.Lub(o.Type)}
}

func (s SimpleState[H, V, T]) Glb(o SimpleState[H, V, T]) SimpleState[H, V, T] {
	return SimpleState[H, V, T]{Heap: s.Heap.Glb(o.Heap), Value: s.Value.Glb(o.Value), Type: s.Type.Glb(o.Type)}.
		normalize()
}

func (s SimpleState[H, V, T]) Widening(o SimpleState[H, V, T]) SimpleState[H, V, T] {
	if s.IsBottom() {
		return o
	}
	if o.IsBottom() {
		return s
	}
	return SimpleState[H, V, T]{
		Heap:  s.Heap.Widening(o.Heap),
		Value: s.Value.Widening(o.Value),
		Type:  s.Type.Widening(o.Type),
	}
}

func (s SimpleState[H, V, T]) Narrowing(o SimpleState[H, V, T]) SimpleState[H, V, T] {
	return SimpleState[H, V, T]{
		Heap:  s.Heap.Narrowing(o.Heap),
		Value: s.Value.Narrowing(o.Value),
		Type:  s.Type.Narrowing(o.Type),
	}.normalize()
}

func (s SimpleState[H, V, T]) LessOrEqual(o SimpleState[H, V, T]) bool {
	if s.IsBottom() {
		return true
	}
	if o.IsBottom() {
		return false
	}
	return s.Heap.LessOrEqual(o.Heap) && s.Value.LessOrEqual(o.Value) && s.Type.LessOrEqual(o.Type)
}

// Assign assigns e to id in every component. The first error returned by a component is returned.
func (s SimpleState[H, V, T]) Assign(id symbolic.Identifier, e symbolic.Expression) (SimpleState[H, V, T], error) {
	if s.IsBottom() {
		return s, nil
	}
	h, err := s.Heap.Assign(id, e)
	if err != nil {
		return s, err
	}
	t, err := s.Type.Assign(id, e)
	if err != nil {
		return s, err
	}
	v, err := s.Value.Assign(id, e)
	if err != nil {
		return s, err
	}
	return SimpleState[H, V, T]{Heap: h, Value: v, Type: t}.normalize(), nil
}

// Assume assumes cond in every component
func (s SimpleState[H, V, T]) Assume(cond symbolic.Expression) (SimpleState[H, V, T], error) {
	if s.IsBottom() {
		return s, nil
	}
	h, err := s.Heap.Assume(cond)
	if err != nil {
		return s, err
	}
	t, err := s.Type.Assume(cond)
	if err != nil {
		return s, err
	}
	v, err := s.Value.Assume(cond)
	if err != nil {
		return s, err
	}
	return SimpleState[H, V, T]{Heap: h, Value: v, Type: t}.normalize(), nil
}

func (s SimpleState[H, V, T]) Forget(id symbolic.Identifier) SimpleState[H, V, T] {
	return SimpleState[H, V, T]{Heap: s.Heap.Forget(id), Value: s.Value.Forget(id), Type: s.Type.Forget(id)}
}

func (s SimpleState[H, V, T]) PushScope(sc symbolic.Scope) SimpleState[H, V, T] {
	return SimpleState[H, V, T]{Heap: s.Heap.PushScope(sc), Value: s.Value.PushScope(sc), Type: s.Type.PushScope(sc)}
}

func (s SimpleState[H, V, T]) PopScope(sc symbolic.Scope) SimpleState[H, V, T] {
	return SimpleState[H, V, T]{Heap: s.Heap.PopScope(sc), Value: s.Value.PopScope(sc), Type: s.Type.PopScope(sc)}
}

func (s SimpleState[H, V, T]) String() string {
	if s.IsBottom() {
		return "⊥"
	}
	return fmt.Sprintf("heap: %s, values: %s, types: %s", s.Heap, s.Value, s.Type)
}
