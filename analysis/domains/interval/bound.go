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

package interval

import (
	"math"
	"math/bits"
	"strconv"
)

// Bound is an integer or an infinity.
type Bound struct {
	v int64
	// inf is -1 for -∞, +1 for +∞ and 0 for finite bounds
	inf int8
}

var (
	// MinusInf is -∞
	MinusInf = Bound{inf: -1}
	// PlusInf is +∞
	PlusInf = Bound{inf: 1}
)

// Finite returns the finite bound v
func Finite(v int64) Bound {
	return Bound{v: v}
}

// IsFinite returns true if b is not an infinity
func (b Bound) IsFinite() bool {
	return b.inf == 0
}

// Value returns the value of a finite bound
func (b Bound) Value() int64 {
	return b.v
}

func (b Bound) String() string {
	switch b.inf {
	case -1:
		return "-inf"
	case 1:
		return "+inf"
	default:
		return strconv.FormatInt(b.v, 10)
	}
}

// Cmp returns -1, 0 or 1 when b is respectively lower, equal or greater than o
func (b Bound) Cmp(o Bound) int {
	if b.inf != o.inf {
		if b.inf < o.inf {
			return -1
		}
		return 1
	}
	switch {
	case b.inf != 0 || b.v == o.v:
		return 0
	case b.v < o.v:
		return -1
	default:
		return 1
	}
}

func (b Bound) sign() int {
	switch {
	case b.inf != 0:
		return int(b.inf)
	case b.v < 0:
		return -1
	case b.v > 0:
		return 1
	default:
		return 0
	}
}

func minBound(a, b Bound) Bound {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}

func maxBound(a, b Bound) Bound {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}

// saturate returns the bound for a mathematical result that overflowed int64 towards the sign s
func saturate(s int) Bound {
	if s < 0 {
		return MinusInf
	}
	return PlusInf
}

// neg returns -b
func (b Bound) neg() Bound {
	switch {
	case b.inf != 0:
		return Bound{inf: -b.inf}
	case b.v == math.MinInt64:
		return PlusInf
	default:
		return Finite(-b.v)
	}
}

// add returns b + o. Opposite infinities are not added by the interval operations.
func (b Bound) add(o Bound) Bound {
	if b.inf != 0 {
		return b
	}
	if o.inf != 0 {
		return o
	}
	s := b.v + o.v
	// overflow iff both operands have the same sign and the result has a different one
	if (b.v >= 0) == (o.v >= 0) && (s >= 0) != (b.v >= 0) {
		return saturate(b.sign())
	}
	return Finite(s)
}

// mul returns b * o, where 0 * ∞ = 0
func (b Bound) mul(o Bound) Bound {
	s := b.sign() * o.sign()
	if s == 0 {
		return Finite(0)
	}
	if b.inf != 0 || o.inf != 0 {
		return saturate(s)
	}
	hi, lo := bits.Mul64(abs(b.v), abs(o.v))
	if hi != 0 || lo > math.MaxInt64 {
		if s < 0 && hi == 0 && lo == 1<<63 {
			return Finite(math.MinInt64)
		}
		return saturate(s)
	}
	if s < 0 {
		return Finite(-int64(lo))
	}
	return Finite(int64(lo))
}

// div returns the truncated quotient b / o for o != 0, where x / ∞ = 0 and ∞ / ∞ = 0
func (b Bound) div(o Bound) Bound {
	if o.inf != 0 {
		return Finite(0)
	}
	if b.inf != 0 {
		return saturate(b.sign() * o.sign())
	}
	if b.v == math.MinInt64 && o.v == -1 {
		return PlusInf
	}
	return Finite(b.v / o.v)
}

func abs(v int64) uint64 {
	if v < 0 {
		return uint64(-(v + 1)) + 1
	}
	return uint64(v)
}
