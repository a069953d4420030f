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

package interproc

import (
	"fmt"

	"github.com/awslabs/ar-go-absint/analysis/config"
	"github.com/awslabs/ar-go-absint/analysis/program"
	"github.com/awslabs/ar-go-absint/analysis/state"
	"github.com/awslabs/ar-go-absint/analysis/symbolic"
)

// ParameterAssigner binds the actual parameters of a call to the formal parameters of a target.
type ParameterAssigner[A state.Domain[A]] interface {
	// Prepare returns the entry state of the target, and the actuals bound to each formal. The entry state and the
	// actuals are already in the scope of the call.
	Prepare(call *program.Call, entry state.AnalysisState[A], formals []symbolic.Identifier,
		actuals []symbolic.ExpressionSet) (state.AnalysisState[A], []symbolic.ExpressionSet, error)
}

// NewParameterAssigner returns the parameter assigner named in the configuration
func NewParameterAssigner[A state.Domain[A]](name string) (ParameterAssigner[A], error) {
	switch name {
	case config.OrderPreservingAssignment, "":
		return OrderPreserving[A]{}, nil
	case config.LenientAssignment:
		return Lenient[A]{}, nil
	default:
		return nil, fmt.Errorf("unknown parameter assignment %q", name)
	}
}

// OrderPreserving binds the i-th actual to the i-th formal. The call must have as many actuals as formals.
type OrderPreserving[A state.Domain[A]] struct{}

func (OrderPreserving[A]) Prepare(call *program.Call, entry state.AnalysisState[A], formals []symbolic.Identifier,
	actuals []symbolic.ExpressionSet) (state.AnalysisState[A], []symbolic.ExpressionSet, error) {
	if len(formals) != len(actuals) {
		return entry, nil, fmt.Errorf("call %s has %d actuals for %d formals", call.Site, len(actuals), len(formals))
	}
	return bind(entry, formals, actuals)
}

// Lenient binds actuals to formals in order. Formals without an actual are unknown, and extra actuals are ignored.
type Lenient[A state.Domain[A]] struct{}

func (Lenient[A]) Prepare(call *program.Call, entry state.AnalysisState[A], formals []symbolic.Identifier,
	actuals []symbolic.ExpressionSet) (state.AnalysisState[A], []symbolic.ExpressionSet, error) {
	bound := make([]symbolic.ExpressionSet, len(formals))
	for i := range formals {
		if i < len(actuals) {
			bound[i] = actuals[i]
		} else {
			bound[i] = symbolic.NewExpressionSet(symbolic.Any{})
		}
	}
	return bind(entry, formals, bound)
}

// bind assigns each formal the least upper bound of the values of its actual expressions
func bind[A state.Domain[A]](entry state.AnalysisState[A], formals []symbolic.Identifier,
	actuals []symbolic.ExpressionSet) (state.AnalysisState[A], []symbolic.ExpressionSet, error) {
	st := entry
	for i, formal := range formals {
		exprs := actuals[i].Elements()
		if actuals[i].IsTop() || len(exprs) == 0 {
			exprs = []symbolic.Expression{symbolic.Any{}}
		}
		next := st.Bottom()
		for _, e := range exprs {
			assigned, err := st.Assign(formal, e)
			if err != nil {
				return entry, nil, fmt.Errorf("binding %s: %w", formal, err)
			}
			next = next.Lub(assigned)
		}
		st = next
	}
	return st.WithComputed(), actuals, nil
}
