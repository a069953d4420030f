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

// Package interval implements the interval abstraction of integers, with infinite bounds.
//
// Booleans are encoded as integers: comparisons evaluate to [0, 0] (false), [1, 1] (true) or [0, 1] (unknown).
package interval

import (
	"fmt"
	"math"

	"github.com/awslabs/ar-go-absint/analysis/lattice"
	"github.com/awslabs/ar-go-absint/analysis/symbolic"
)

// Interval is a possibly unbounded range of integers [Low, High], or the empty interval ⊥. The zero value is [0, 0].
type Interval struct {
	low   Bound
	high  Bound
	empty bool
}

// New returns the interval [low, high], or bottom if low > high
func New(low, high Bound) Interval {
	if low.Cmp(high) > 0 || low == PlusInf || high == MinusInf {
		return Interval{empty: true}
	}
	return Interval{low: low, high: high}
}

// Range returns the interval [low, high] with finite bounds
func Range(low, high int64) Interval {
	return New(Finite(low), Finite(high))
}

// Singleton returns [v, v]
func Singleton(v int64) Interval {
	return Range(v, v)
}

var (
	bottom = Interval{empty: true}
	top    = Interval{low: MinusInf, high: PlusInf}
	falsy  = Singleton(0)
	truthy = Singleton(1)
	bools  = Range(0, 1)
)

// Low returns the lower bound of a non-empty interval
func (i Interval) Low() Bound { return i.low }

// High returns the upper bound of a non-empty interval
func (i Interval) High() Bound { return i.high }

func (i Interval) String() string {
	if i.empty {
		return "⊥"
	}
	return fmt.Sprintf("[%s, %s]", i.low, i.high)
}

func (Interval) Bottom() Interval { return bottom }
func (Interval) Top() Interval    { return top }
func (i Interval) IsBottom() bool { return i.empty }
func (i Interval) IsTop() bool    { return !i.empty && i.low == MinusInf && i.high == PlusInf }

// isSingleton returns true if the interval contains a single integer
func (i Interval) isSingleton() bool {
	return !i.empty && i.low.IsFinite() && i.low == i.high
}

// Contains returns true if v is in the interval
func (i Interval) Contains(v int64) bool {
	return !i.empty && i.low.Cmp(Finite(v)) <= 0 && Finite(v).Cmp(i.high) <= 0
}

func (i Interval) Lub(o Interval) Interval {
	if i.empty {
		return o
	}
	if o.empty {
		return i
	}
	return Interval{low: minBound(i.low, o.low), high: maxBound(i.high, o.high)}
}

func (i Interval) Glb(o Interval) Interval {
	if i.empty || o.empty {
		return bottom
	}
	return New(maxBound(i.low, o.low), minBound(i.high, o.high))
}

// Widening sends the unstable bounds to infinity
func (i Interval) Widening(o Interval) Interval {
	if i.empty {
		return o
	}
	if o.empty {
		return i
	}
	res := i
	if o.low.Cmp(i.low) < 0 {
		res.low = MinusInf
	}
	if o.high.Cmp(i.high) > 0 {
		res.high = PlusInf
	}
	return res
}

// Narrowing refines the infinite bounds only
func (i Interval) Narrowing(o Interval) Interval {
	if i.empty || o.empty {
		return bottom
	}
	res := i
	if i.low == MinusInf {
		res.low = o.low
	}
	if i.high == PlusInf {
		res.high = o.high
	}
	return New(res.low, res.high)
}

func (i Interval) LessOrEqual(o Interval) bool {
	if i.empty {
		return true
	}
	if o.empty {
		return false
	}
	return o.low.Cmp(i.low) <= 0 && i.high.Cmp(o.high) <= 0
}

// EvalConstant returns [c, c]
func (Interval) EvalConstant(c symbolic.Constant) (Interval, error) {
	return Singleton(c.Value), nil
}

// EvalUnary computes -arg and !arg
func (Interval) EvalUnary(op symbolic.UnaryOp, arg Interval) (Interval, error) {
	if arg.empty {
		return bottom, nil
	}
	if op == symbolic.Neg {
		return span(arg.high.neg(), arg.low.neg()), nil
	}
	return fromTruth(truth(arg).Negate()), nil
}

// EvalBinary computes l op r
func (Interval) EvalBinary(op symbolic.BinaryOp, l Interval, r Interval) (Interval, error) {
	if l.empty || r.empty {
		return bottom, nil
	}
	switch op {
	case symbolic.Add:
		return span(l.low.add(r.low), l.high.add(r.high)), nil
	case symbolic.Sub:
		return span(l.low.add(r.high.neg()), l.high.add(r.low.neg())), nil
	case symbolic.Mul:
		return corners(l, r, Bound.mul), nil
	case symbolic.Div:
		return divide(l, r), nil
	case symbolic.Mod:
		return remainder(l, r), nil
	case symbolic.And:
		return fromTruth(truth(l).And(truth(r))), nil
	case symbolic.Or:
		return fromTruth(truth(l).Or(truth(r))), nil
	}
	return fromTruth(satisfies(op, l, r)), nil
}

// span returns [low, high] for bounds computed with saturating arithmetic: a lower bound that overflowed to +∞ is
// the largest integer, and an upper bound that overflowed to -∞ is the smallest.
func span(low, high Bound) Interval {
	if low == PlusInf {
		low = Finite(math.MaxInt64)
	}
	if high == MinusInf {
		high = Finite(math.MinInt64)
	}
	return New(low, high)
}

// corners returns the smallest interval containing f applied to every pair of bounds of l and r
func corners(l, r Interval, f func(Bound, Bound) Bound) Interval {
	c := []Bound{f(l.low, r.low), f(l.low, r.high), f(l.high, r.low), f(l.high, r.high)}
	low, high := c[0], c[0]
	for _, b := range c[1:] {
		low = minBound(low, b)
		high = maxBound(high, b)
	}
	return span(low, high)
}

// divide splits the divisor around zero: there is no result for a zero divisor
func divide(l, r Interval) Interval {
	res := bottom
	if neg := r.Glb(New(MinusInf, Finite(-1))); !neg.empty {
		res = res.Lub(corners(l, neg, Bound.div))
	}
	if pos := r.Glb(New(Finite(1), PlusInf)); !pos.empty {
		res = res.Lub(corners(l, pos, Bound.div))
	}
	return res
}

// remainder bounds the remainder by the magnitude of the divisor; its sign is the sign of the dividend
func remainder(l, r Interval) Interval {
	if r.isSingleton() && r.low.Value() == 0 {
		return bottom
	}
	m := maxBound(r.low.neg(), r.high)
	if m.IsFinite() {
		m = Finite(m.Value() - 1)
	}
	switch {
	case l.low.sign() >= 0:
		return Interval{low: Finite(0), high: minBound(m, l.high)}
	case l.high.sign() <= 0:
		return Interval{low: maxBound(m.neg(), l.low), high: Finite(0)}
	default:
		return Interval{low: m.neg(), high: m}
	}
}

func truth(i Interval) lattice.Satisfiability {
	return satisfies(symbolic.Ne, i, falsy)
}

func fromTruth(s lattice.Satisfiability) Interval {
	switch s {
	case lattice.Satisfied:
		return truthy
	case lattice.NotSatisfied:
		return falsy
	default:
		return bools
	}
}

// Satisfies decides the comparison l op r
func (Interval) Satisfies(op symbolic.BinaryOp, l Interval, r Interval) lattice.Satisfiability {
	return satisfies(op, l, r)
}

func satisfies(op symbolic.BinaryOp, l Interval, r Interval) lattice.Satisfiability {
	if l.empty || r.empty {
		return lattice.NotSatisfied
	}
	switch op {
	case symbolic.Lt:
		return decide(l.high.Cmp(r.low) < 0, l.low.Cmp(r.high) >= 0)
	case symbolic.Le:
		return decide(l.high.Cmp(r.low) <= 0, l.low.Cmp(r.high) > 0)
	case symbolic.Gt:
		return satisfies(symbolic.Lt, r, l)
	case symbolic.Ge:
		return satisfies(symbolic.Le, r, l)
	case symbolic.Eq:
		return decide(l.isSingleton() && l == r, l.Glb(r).empty)
	case symbolic.Ne:
		return satisfies(symbolic.Eq, l, r).Negate()
	}
	return lattice.Unknown
}

func decide(always bool, never bool) lattice.Satisfiability {
	switch {
	case always:
		return lattice.Satisfied
	case never:
		return lattice.NotSatisfied
	default:
		return lattice.Unknown
	}
}

// Refine restricts l to the values for which l op r may hold
func (Interval) Refine(op symbolic.BinaryOp, l Interval, r Interval) Interval {
	if l.empty || r.empty {
		return bottom
	}
	switch op {
	case symbolic.Lt:
		return l.Glb(New(MinusInf, r.high.add(Finite(-1))))
	case symbolic.Le:
		return l.Glb(New(MinusInf, r.high))
	case symbolic.Gt:
		return l.Glb(New(r.low.add(Finite(1)), PlusInf))
	case symbolic.Ge:
		return l.Glb(New(r.low, PlusInf))
	case symbolic.Eq:
		return l.Glb(r)
	case symbolic.Ne:
		if !r.isSingleton() {
			return l
		}
		c := r.low
		switch {
		case l.isSingleton() && l.low == c:
			return bottom
		case l.low == c:
			return New(c.add(Finite(1)), l.high)
		case l.high == c:
			return New(l.low, c.add(Finite(-1)))
		}
	}
	return l
}
