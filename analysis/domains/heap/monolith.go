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

// Package heap contains heap abstractions.
package heap

import "github.com/awslabs/ar-go-absint/analysis/symbolic"

// Monolith abstracts the whole heap with a single element: the heap is either unreachable (bottom) or anything
// (top). The zero value is top.
type Monolith struct {
	unreachable bool
}

func (Monolith) Bottom() Monolith                      { return Monolith{unreachable: true} }
func (Monolith) Top() Monolith                         { return Monolith{} }
func (m Monolith) IsBottom() bool                      { return m.unreachable }
func (m Monolith) IsTop() bool                         { return !m.unreachable }
func (m Monolith) Lub(o Monolith) Monolith             { return Monolith{unreachable: m.unreachable && o.unreachable} }
func (m Monolith) Glb(o Monolith) Monolith             { return Monolith{unreachable: m.unreachable || o.unreachable} }
func (m Monolith) Widening(o Monolith) Monolith        { return m.Lub(o) }
func (m Monolith) Narrowing(o Monolith) Monolith       { return m.Glb(o) }
func (m Monolith) LessOrEqual(o Monolith) bool         { return m.unreachable || !o.unreachable }
func (m Monolith) Forget(symbolic.Identifier) Monolith { return m }
func (m Monolith) PushScope(symbolic.Scope) Monolith   { return m }
func (m Monolith) PopScope(symbolic.Scope) Monolith    { return m }

// Assign does not change the heap: expressions are side-effect free
func (m Monolith) Assign(symbolic.Identifier, symbolic.Expression) (Monolith, error) {
	return m, nil
}

// Assume does not change the heap
func (m Monolith) Assume(symbolic.Expression) (Monolith, error) {
	return m, nil
}

func (m Monolith) String() string {
	if m.unreachable {
		return "⊥"
	}
	return "monolith"
}
