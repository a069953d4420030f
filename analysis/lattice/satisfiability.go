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

// Satisfiability is the result of checking whether a condition holds on abstract values.
type Satisfiability int

const (
	// Unknown means the condition may or may not hold
	Unknown Satisfiability = iota
	// Satisfied means the condition holds for every concrete value
	Satisfied
	// NotSatisfied means the condition does not hold for any concrete value
	NotSatisfied
)

// Negate returns the satisfiability of the negated condition
func (s Satisfiability) Negate() Satisfiability {
	switch s {
	case Satisfied:
		return NotSatisfied
	case NotSatisfied:
		return Satisfied
	default:
		return Unknown
	}
}

// And returns the satisfiability of the conjunction of two conditions
func (s Satisfiability) And(o Satisfiability) Satisfiability {
	if s == NotSatisfied || o == NotSatisfied {
		return NotSatisfied
	}
	if s == Satisfied && o == Satisfied {
		return Satisfied
	}
	return Unknown
}

// Or returns the satisfiability of the disjunction of two conditions
func (s Satisfiability) Or(o Satisfiability) Satisfiability {
	if s == Satisfied || o == Satisfied {
		return Satisfied
	}
	if s == NotSatisfied && o == NotSatisfied {
		return NotSatisfied
	}
	return Unknown
}

func (s Satisfiability) String() string {
	switch s {
	case Satisfied:
		return "satisfied"
	case NotSatisfied:
		return "not satisfied"
	default:
		return "unknown"
	}
}
