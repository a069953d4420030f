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

package lattice

import "fmt"

// CheckLaws verifies the lattice laws on every pair of the elements provided, and returns the first violation found.
// Domains use it in their tests:
//   - LessOrEqual is reflexive, antisymmetric modulo Equal, and transitive,
//   - bottom <= x <= top,
//   - x <= x.Lub(y), y <= x.Lub(y), x.Glb(y) <= x, x.Glb(y) <= y,
//   - x <= x.Widening(y), y <= x.Widening(y),
//   - x.Glb(y) <= x.Narrowing(y) <= x when y <= x.
func CheckLaws[T Lattice[T]](elements []T) error {
	for _, x := range elements {
		if !x.LessOrEqual(x) {
			return fmt.Errorf("%v is not less or equal to itself", x)
		}
		if !x.Bottom().LessOrEqual(x) {
			return fmt.Errorf("bottom %v is not less or equal to %v", x.Bottom(), x)
		}
		if !x.LessOrEqual(x.Top()) {
			return fmt.Errorf("%v is not less or equal to top %v", x, x.Top())
		}
		if !x.Bottom().IsBottom() || !x.Top().IsTop() {
			return fmt.Errorf("bottom/top of %v are not recognized", x)
		}
		for _, y := range elements {
			lub := x.Lub(y)
			if !x.LessOrEqual(lub) || !y.LessOrEqual(lub) {
				return fmt.Errorf("lub(%v, %v) = %v is not an upper bound", x, y, lub)
			}
			glb := x.Glb(y)
			if !glb.LessOrEqual(x) || !glb.LessOrEqual(y) {
				return fmt.Errorf("glb(%v, %v) = %v is not a lower bound", x, y, glb)
			}
			w := x.Widening(y)
			if !x.LessOrEqual(w) || !y.LessOrEqual(w) {
				return fmt.Errorf("widening(%v, %v) = %v is not an upper bound", x, y, w)
			}
			if y.LessOrEqual(x) {
				n := x.Narrowing(y)
				if !glb.LessOrEqual(n) || !n.LessOrEqual(x) {
					return fmt.Errorf("narrowing(%v, %v) = %v is not between glb and %v", x, y, n, x)
				}
			}
			if x.LessOrEqual(y) && y.LessOrEqual(x) && !Equal(lub, x) {
				return fmt.Errorf("%v and %v are equal but their lub is %v", x, y, lub)
			}
			for _, z := range elements {
				if x.LessOrEqual(y) && y.LessOrEqual(z) && !x.LessOrEqual(z) {
					return fmt.Errorf("order is not transitive on %v, %v, %v", x, y, z)
				}
			}
		}
	}
	return nil
}

// CheckWideningConvergence applies the widening of the increasing sequence of elements returned by next, starting
// from start, and returns the number of steps after which the sequence of estimates stabilizes. It returns an error
// if the estimates have not stabilized after maxSteps steps.
func CheckWideningConvergence[T Lattice[T]](start T, next func(i int) T, threshold int, maxSteps int) (int, error) {
	cur := start
	for i := 0; i < maxSteps; i++ {
		nxt := Join(cur, cur.Lub(next(i)), i, threshold)
		if nxt.LessOrEqual(cur) {
			return i, nil
		}
		cur = nxt
	}
	return maxSteps, fmt.Errorf("no stabilization after %d steps, last estimate %v", maxSteps, cur)
}
