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

package analysis

import (
	"fmt"
	"time"

	"github.com/awslabs/ar-go-absint/analysis/callctx"
	"github.com/awslabs/ar-go-absint/analysis/callgraph"
	"github.com/awslabs/ar-go-absint/analysis/config"
	"github.com/awslabs/ar-go-absint/analysis/decouple"
	"github.com/awslabs/ar-go-absint/analysis/domains/env"
	"github.com/awslabs/ar-go-absint/analysis/domains/heap"
	"github.com/awslabs/ar-go-absint/analysis/domains/interval"
	"github.com/awslabs/ar-go-absint/analysis/domains/sign"
	"github.com/awslabs/ar-go-absint/analysis/domains/typeset"
	"github.com/awslabs/ar-go-absint/analysis/fixpoint"
	"github.com/awslabs/ar-go-absint/analysis/interproc"
	"github.com/awslabs/ar-go-absint/analysis/program"
	"github.com/awslabs/ar-go-absint/analysis/state"
)

type (
	signState     = state.SimpleState[heap.Monolith, env.Environment[sign.Sign], env.Environment[typeset.Types]]
	intervalState = state.SimpleState[heap.Monolith, env.Environment[interval.Interval],
		env.Environment[typeset.Types]]
)

// Run runs the analysis of app configured by cfg, from the procedures matching the entry points of cfg. The
// value domain, the context sensitivity and the descending phase are selected by the analysis options of cfg.
// If logger is nil, a logger is built from cfg.
func Run(cfg *config.Config, app *program.Application, logger *config.LogGroup) (*Report, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = config.NewLogGroup(cfg)
	}
	token, err := callctx.New(cfg.Analysis.ContextSensitivity, cfg.Analysis.ContextDepth)
	if err != nil {
		return nil, err
	}
	n := app.SetEntryPoints(cfg.MatchEntryPoint)
	logger.Infof("%d entry points, %d procedures", n, len(app.Procedures))

	r := runner{cfg: cfg, app: app, cg: callgraph.New(app), token: token, logger: logger}
	start := time.Now()
	var report *Report
	switch {
	case cfg.Decoupled():
		report, err = runDecoupled(r)
	case cfg.Analysis.ValueDomain == config.SignDomain:
		report, err = runContextBased[sign.Sign](r)
	default:
		report, err = runContextBased[interval.Interval](r)
	}
	if err != nil {
		return nil, err
	}
	logger.Infof("Analysis terminated in %.2f s", time.Since(start).Seconds())
	return report, nil
}

type runner struct {
	cfg    *config.Config
	app    *program.Application
	cg     *callgraph.CallGraph
	token  callctx.Token
	logger *config.LogGroup
}

func entryState[V env.Value[V]](app *program.Application) state.AnalysisState[state.SimpleState[heap.Monolith,
	env.Environment[V], env.Environment[typeset.Types]]] {
	return state.NewAnalysisState(state.NewSimpleState(heap.Monolith{}, env.Top[V](), env.Top[typeset.Types]()),
		state.NewAliasing(app.Aliases))
}

func configure[A state.Domain[A]](r runner, a *interproc.ContextBasedAnalysis[A]) error {
	pa, err := interproc.NewParameterAssigner[A](r.cfg.Analysis.ParameterAssignment)
	if err != nil {
		return err
	}
	a.SetAssigner(pa)
	a.SetMaxIterations(r.cfg.Analysis.MaxFixpointIterations)
	return nil
}

func runContextBased[V env.Value[V]](r runner) (*Report, error) {
	a := interproc.NewContextBasedAnalysis[state.SimpleState[heap.Monolith, env.Environment[V],
		env.Environment[typeset.Types]]](r.cg, r.token, r.logger)
	if err := configure(r, a); err != nil {
		return nil, err
	}
	if err := a.Fixpoint(entryState[V](r.app), fixpoint.OptionsFromConfig(r.cfg)); err != nil {
		return nil, fmt.Errorf("analysis failed: %w", err)
	}
	return NewReport(r.cfg, a.Results(), len(a.Iterations())), nil
}

func runDecoupled(r runner) (*Report, error) {
	a := decouple.NewAnalysis[signState, intervalState](r.cg, r.token,
		decouple.NewSignToInterval[heap.Monolith, env.Environment[typeset.Types]](), r.logger)
	if err := configure(r, a.Ascending); err != nil {
		return nil, err
	}
	if err := configure(r, a.Descending); err != nil {
		return nil, err
	}
	if err := a.Fixpoint(entryState[sign.Sign](r.app), fixpoint.OptionsFromConfig(r.cfg)); err != nil {
		return nil, fmt.Errorf("decoupled analysis failed: %w", err)
	}
	return NewReport(r.cfg, a.Results(), len(a.Ascending.Iterations())), nil
}
