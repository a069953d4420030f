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

// Package state defines the abstract states manipulated by the fixpoint engine.
//
// An abstract state is any type satisfying Domain. The engine wraps it in an AnalysisState, which adds the
// expressions computed at a program point and the aliases of the procedure names. SimpleState composes a heap, a
// value and a type domain into an abstract state.
package state

import (
	"fmt"

	"github.com/awslabs/ar-go-absint/analysis/lattice"
	"github.com/awslabs/ar-go-absint/analysis/symbolic"
)

// Semantics is the set of transfer functions of an abstract domain.
type Semantics[D any] interface {
	// Assign returns the state after the assignment id = e
	Assign(id symbolic.Identifier, e symbolic.Expression) (D, error)

	// Assume returns the state restricted to the executions where cond holds
	Assume(cond symbolic.Expression) (D, error)

	// Forget returns the state where nothing is known about id
	Forget(id symbolic.Identifier) D
}

// Scoping is the set of operations used to enter and exit calls.
type Scoping[D any] interface {
	// PushScope hides the identifiers of the state behind the scope s
	PushScope(s symbolic.Scope) D

	// PopScope restores the identifiers hidden behind s and drops the identifiers that were defined in the scope
	PopScope(s symbolic.Scope) D
}

// Domain is an abstract domain usable by the fixpoint engine.
type Domain[D any] interface {
	lattice.Lattice[D]
	Semantics[D]
	Scoping[D]
}

// SemanticError is raised when an abstract domain fails to compute the semantics of an expression.
type SemanticError struct {
	// Op is the operation that failed (assign, assume)
	Op string

	// Expr is the expression whose semantics failed
	Expr symbolic.Expression

	// Err is the error returned by the domain
	Err error
}

func (e *SemanticError) Error() string {
	return fmt.Sprintf("semantic error in %s of %s: %v", e.Op, e.Expr, e.Err)
}

func (e *SemanticError) Unwrap() error {
	return e.Err
}
