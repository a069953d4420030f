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

// Package lattice defines the capabilities every abstract domain of the analysis must provide.
//
// A lattice element is a value of some type T that implements Lattice[T]. Operations never mutate their receiver;
// they return new elements. Bottom and Top can be called on any element of the type, including its zero value when
// the documentation of the domain says so.
package lattice

import "fmt"

// Lattice is the set of operations of a complete lattice with widening and narrowing.
type Lattice[T any] interface {
	fmt.Stringer

	// Bottom returns the least element of the lattice
	Bottom() T

	// Top returns the greatest element of the lattice
	Top() T

	// IsBottom returns true if the receiver is the least element
	IsBottom() bool

	// IsTop returns true if the receiver is the greatest element
	IsTop() bool

	// Lub returns the least upper bound of the receiver and other
	Lub(other T) T

	// Glb returns the greatest lower bound of the receiver and other
	Glb(other T) T

	// Widening returns an upper bound of the receiver and other such that any sequence x0, x1 = x0.Widening(y0),
	// x2 = x1.Widening(y1), ... stabilizes after a finite number of steps.
	Widening(other T) T

	// Narrowing returns an element between receiver.Glb(other) and the receiver, such that any descending sequence
	// obtained by narrowing stabilizes after a finite number of steps.
	Narrowing(other T) T

	// LessOrEqual returns true if the receiver is less or equal to other in the lattice order
	LessOrEqual(other T) bool
}

// Equal returns true if a and b are equal in the lattice order.
func Equal[T Lattice[T]](a, b T) bool {
	return a.LessOrEqual(b) && b.LessOrEqual(a)
}

// Join returns old.Lub(new) if visits is below the widening threshold, and old.Widening(new) otherwise. A
// threshold of zero means the widening is always used.
func Join[T Lattice[T]](old, new T, visits, threshold int) T {
	if visits < threshold {
		return old.Lub(new)
	}
	return old.Widening(new)
}

// LubAll returns the least upper bound of all the elements, or bottom if there are no elements. bottom is used as the
// receiver of Bottom().
func LubAll[T Lattice[T]](bottom T, elements ...T) T {
	res := bottom.Bottom()
	for _, e := range elements {
		res = res.Lub(e)
	}
	return res
}
