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

// Package decouple transforms the results of an analysis in one abstract domain into results in another domain,
// so that the descending phase can run in a different domain than the ascending phase.
package decouple

import (
	"github.com/awslabs/ar-go-absint/analysis/domains/env"
	"github.com/awslabs/ar-go-absint/analysis/domains/interval"
	"github.com/awslabs/ar-go-absint/analysis/domains/sign"
	"github.com/awslabs/ar-go-absint/analysis/fixpoint"
	"github.com/awslabs/ar-go-absint/analysis/interproc"
	"github.com/awslabs/ar-go-absint/analysis/program"
	"github.com/awslabs/ar-go-absint/analysis/state"
	"github.com/awslabs/ar-go-absint/internal/funcutil"
)

// Decoupler maps the states of domain A to states of domain D.
// Implementations must map bottom to bottom and top to top, and be monotone.
type Decoupler[A state.Domain[A], D state.Domain[D]] interface {
	Decouple(st state.AnalysisState[A]) state.AnalysisState[D]
}

// ValueDecoupler maps the value environments of simple states with Morphism, and keeps the heap and type
// components unchanged.
type ValueDecoupler[H state.Domain[H], V env.Value[V], W env.Value[W], T state.Domain[T]] struct {
	Morphism func(V) W
}

func (d ValueDecoupler[H, V, W, T]) Decouple(
	st state.AnalysisState[state.SimpleState[H, env.Environment[V], T]],
) state.AnalysisState[state.SimpleState[H, env.Environment[W], T]] {
	s := st.State
	return state.AnalysisState[state.SimpleState[H, env.Environment[W], T]]{
		State:    state.NewSimpleState(s.Heap, env.Map(s.Value, d.Morphism), s.Type),
		Computed: st.Computed,
		Aliasing: st.Aliasing,
	}
}

// SignToInterval maps a sign to the smallest interval containing the integers of that sign
func SignToInterval(s sign.Sign) interval.Interval {
	switch s {
	case sign.Bot:
		return interval.Interval{}.Bottom()
	case sign.Neg:
		return interval.New(interval.MinusInf, interval.Finite(-1))
	case sign.Zero:
		return interval.Singleton(0)
	case sign.Pos:
		return interval.New(interval.Finite(1), interval.PlusInf)
	default:
		return interval.Interval{}.Top()
	}
}

// NewSignToInterval returns the decoupler of simple states from signs to intervals
func NewSignToInterval[H state.Domain[H], T state.Domain[T]]() ValueDecoupler[H, sign.Sign, interval.Interval, T] {
	return ValueDecoupler[H, sign.Sign, interval.Interval, T]{Morphism: SignToInterval}
}

// DecoupleResult maps every state of r with d
func DecoupleResult[A state.Domain[A], D state.Domain[D]](r *fixpoint.Result[A],
	d Decoupler[A, D]) *fixpoint.Result[D] {
	return &fixpoint.Result[D]{
		Procedure:   r.Procedure,
		ID:          r.ID,
		EntryStates: state.MapStore(r.EntryStates, d.Decouple),
		Posts:       state.MapStore(r.Posts, d.Decouple),
	}
}

// DecoupleAll maps the results of every procedure with d. Procedures without results stay without results.
func DecoupleAll[A state.Domain[A], D state.Domain[D]](
	results map[*program.Procedure]funcutil.Optional[*interproc.ProcedureResults[A]],
	d Decoupler[A, D]) map[*program.Procedure]funcutil.Optional[*interproc.ProcedureResults[D]] {
	res := make(map[*program.Procedure]funcutil.Optional[*interproc.ProcedureResults[D]], len(results))
	for p, opt := range results {
		res[p] = funcutil.MapOption(opt, func(pr *interproc.ProcedureResults[A]) *interproc.ProcedureResults[D] {
			return interproc.MapResults(pr, func(r *fixpoint.Result[A]) *fixpoint.Result[D] {
				return DecoupleResult(r, d)
			})
		})
	}
	return res
}
