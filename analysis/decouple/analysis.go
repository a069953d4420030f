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

package decouple

import (
	"github.com/awslabs/ar-go-absint/analysis/callctx"
	"github.com/awslabs/ar-go-absint/analysis/callgraph"
	"github.com/awslabs/ar-go-absint/analysis/config"
	"github.com/awslabs/ar-go-absint/analysis/fixpoint"
	"github.com/awslabs/ar-go-absint/analysis/interproc"
	"github.com/awslabs/ar-go-absint/analysis/state"
)

// Analysis runs the ascending phase in the domain A, and the descending phase in the domain D on the results of
// the ascending phase decoupled into D.
type Analysis[A state.Domain[A], D state.Domain[D]] struct {
	Ascending  *interproc.ContextBasedAnalysis[A]
	Descending *interproc.ContextBasedAnalysis[D]

	decoupler Decoupler[A, D]
	logger    *config.LogGroup
}

// NewAnalysis returns the decoupled analysis of the application of cg. Both phases share the call graph, so that
// the descending phase orders procedures with the calls registered by the ascending phase.
func NewAnalysis[A state.Domain[A], D state.Domain[D]](cg *callgraph.CallGraph, token callctx.Token,
	d Decoupler[A, D], logger *config.LogGroup) *Analysis[A, D] {
	if logger == nil {
		logger = config.NewDiscardLogGroup()
	}
	return &Analysis[A, D]{
		Ascending:  interproc.NewContextBasedAnalysis[A](cg, token, logger),
		Descending: interproc.NewContextBasedAnalysis[D](cg, token, logger),
		decoupler:  d,
		logger:     logger,
	}
}

// Fixpoint runs the ascending phase from entry without descending, decouples its results, and refines them with
// the descending mode of opts, which must not be none.
func (a *Analysis[A, D]) Fixpoint(entry state.AnalysisState[A], opts fixpoint.Options) error {
	if opts.Descending == config.NoDescending || opts.Descending == "" {
		return interproc.ErrDescendingDisabled
	}
	if err := a.Ascending.Fixpoint(entry, opts.WithDescending(config.NoDescending)); err != nil {
		return err
	}
	a.logger.Infof("Decoupling the results of %d procedures", len(a.Ascending.Results().Procedures()))
	return a.Descending.DescendingPhase(DecoupleAll(a.Ascending.Seeds(), a.decoupler), opts)
}

// Results returns the results of the descending phase
func (a *Analysis[A, D]) Results() *interproc.ResultCache[D] {
	return a.Descending.Results()
}
