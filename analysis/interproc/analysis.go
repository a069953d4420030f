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

// Package interproc implements the context-sensitive interprocedural analysis: the fixpoint of a whole
// application, where calls are analyzed in the context of their call sites.
//
// The ascending phase iterates over the entry points of the application. The intraprocedural fixpoint of each
// entry point calls back the analysis to resolve calls; the callees are analyzed in the context of the call, and
// their results are cached per context. When the cached result of a procedure grows, the procedure is a trigger: the
// procedures that called it, transitively, are forgotten and computed again in the next iteration, until no
// procedure triggers.
package interproc

import (
	"fmt"
	"time"

	"github.com/awslabs/ar-go-absint/analysis/callctx"
	"github.com/awslabs/ar-go-absint/analysis/callgraph"
	"github.com/awslabs/ar-go-absint/analysis/config"
	"github.com/awslabs/ar-go-absint/analysis/fixpoint"
	"github.com/awslabs/ar-go-absint/analysis/program"
	"github.com/awslabs/ar-go-absint/analysis/state"
	"github.com/awslabs/ar-go-absint/analysis/symbolic"
	"github.com/awslabs/ar-go-absint/analysis/workset"
	"github.com/awslabs/ar-go-absint/internal/formatutil"
	"github.com/awslabs/ar-go-absint/internal/funcutil"
	"github.com/awslabs/ar-go-absint/internal/graphutil"
)

const (
	ascendingPhase  = "ascending"
	descendingPhase = "descending"
)

// Computation records one intraprocedural fixpoint computed by the analysis
type Computation struct {
	Procedure string
	Context   string
	Phase     string
	Iteration int
}

// Iteration records the outcome of one iteration of the ascending phase
type Iteration struct {
	// Triggers are the procedures whose result grew during the iteration
	Triggers []string
	// Forgotten are the procedures forgotten at the end of the iteration
	Forgotten []string
}

// key identifies a procedure in a context
type key struct {
	proc *program.Procedure
	ctx  string
}

// ContextBasedAnalysis is the interprocedural analysis of an application, in the abstract domain A.
// It is not safe for concurrent use.
type ContextBasedAnalysis[A state.Domain[A]] struct {
	app      *program.Application
	cg       *callgraph.CallGraph
	logger   *config.LogGroup
	routine  fixpoint.Routine[A]
	assigner ParameterAssigner[A]

	// token is the context of the procedure being analyzed
	token callctx.Token

	results *ResultCache[A]
	opts    fixpoint.Options
	phase   string

	// maxIterations bounds the iterations of the ascending phase; 0 is unbounded
	maxIterations int
	iteration     int

	triggers   map[*program.Procedure]bool
	inProgress map[key]bool

	// seeds are the entry states of recursive calls that were not covered by the result of the procedure when
	// they were met
	seeds map[key]state.AnalysisState[A]

	computations []Computation
	iterations   []Iteration
}

// NewContextBasedAnalysis returns the analysis of the application whose calls are resolved by cg, with contexts
// of the kind of token. Procedures are analyzed with the worklist algorithm, and parameters are assigned in order.
func NewContextBasedAnalysis[A state.Domain[A]](cg *callgraph.CallGraph, token callctx.Token,
	logger *config.LogGroup) *ContextBasedAnalysis[A] {
	if logger == nil {
		logger = config.NewDiscardLogGroup()
	}
	return &ContextBasedAnalysis[A]{
		app:      cg.Application(),
		cg:       cg,
		logger:   logger,
		routine:  fixpoint.NewWorklist[A](logger),
		assigner: OrderPreserving[A]{},
		token:    token.Empty(),
		results:  NewResultCache[A](config.DefaultWideningThreshold),
	}
}

// SetRoutine sets the intraprocedural fixpoint algorithm
func (a *ContextBasedAnalysis[A]) SetRoutine(r fixpoint.Routine[A]) {
	a.routine = r
}

// SetAssigner sets the parameter assignment strategy
func (a *ContextBasedAnalysis[A]) SetAssigner(pa ParameterAssigner[A]) {
	a.assigner = pa
}

// SetMaxIterations bounds the number of iterations of the ascending phase; n = 0 means unbounded
func (a *ContextBasedAnalysis[A]) SetMaxIterations(n int) {
	a.maxIterations = n
}

// Results returns the cache of results of the last fixpoint
func (a *ContextBasedAnalysis[A]) Results() *ResultCache[A] {
	return a.results
}

// AnalysisResultsOf returns the results of p in every context it has been analyzed in. The result is empty if p
// has not been analyzed.
func (a *ContextBasedAnalysis[A]) AnalysisResultsOf(p *program.Procedure) []*fixpoint.Result[A] {
	pr, ok := a.results.State(p)
	if !ok {
		return nil
	}
	return pr.Results()
}

// Computations returns the intraprocedural fixpoints computed by the last fixpoint, in order
func (a *ContextBasedAnalysis[A]) Computations() []Computation {
	return a.computations
}

// Iterations returns the iterations of the ascending phase of the last fixpoint
func (a *ContextBasedAnalysis[A]) Iterations() []Iteration {
	return a.iterations
}

// reset clears all the information of previous fixpoints
func (a *ContextBasedAnalysis[A]) reset(opts fixpoint.Options) {
	a.opts = opts
	a.token = a.token.Empty()
	a.results = NewResultCache[A](opts.WideningThreshold)
	a.cg.ResetRegistered()
	a.iteration = 0
	a.triggers = map[*program.Procedure]bool{}
	a.inProgress = map[key]bool{}
	a.seeds = map[key]state.AnalysisState[A]{}
	a.computations = nil
	a.iterations = nil
}

// Fixpoint computes the results of all the procedures reachable from the entry points of the application, each
// entry point starting in the state entry. If the options have a descending mode, the descending phase refines the
// results of the ascending phase.
func (a *ContextBasedAnalysis[A]) Fixpoint(entry state.AnalysisState[A], opts fixpoint.Options) error {
	if len(a.app.EntryPoints) == 0 {
		return ErrNoEntryPoints
	}
	a.reset(opts)
	start := time.Now()
	if err := a.ascend(entry); err != nil {
		return err
	}
	a.logger.Infof("Ascending phase done in %d iterations (%.2f s)", a.iteration, time.Since(start).Seconds())
	if opts.Descending == config.NoDescending {
		return nil
	}
	return a.DescendingPhase(a.Seeds(), opts)
}

// Seeds returns a snapshot of the results of every procedure of the application, none for the procedures that
// have not been analyzed
func (a *ContextBasedAnalysis[A]) Seeds() map[*program.Procedure]funcutil.Optional[*ProcedureResults[A]] {
	seeds := make(map[*program.Procedure]funcutil.Optional[*ProcedureResults[A]], len(a.app.Procedures))
	for _, p := range a.app.Procedures {
		if pr, ok := a.results.State(p); ok {
			seeds[p] = funcutil.Some(pr.Copy())
		} else {
			seeds[p] = funcutil.None[*ProcedureResults[A]]()
		}
	}
	return seeds
}

func (a *ContextBasedAnalysis[A]) ascend(entry state.AnalysisState[A]) error {
	a.phase = ascendingPhase
	for {
		a.iteration++
		a.triggers = map[*program.Procedure]bool{}
		a.logger.Infof("Performing %s fixpoint iteration", formatutil.Ordinal(a.iteration))
		for _, ep := range a.app.EntryPoints {
			a.token = a.token.Empty()
			res, err := a.compute(ep, entry.WithComputed())
			if err != nil {
				return err
			}
			a.results.PutResult(ep, a.token, res)
		}
		it := Iteration{}
		if len(a.triggers) > 0 {
			it.Triggers = funcutil.Map(a.sortedTriggers(), procName)
			it.Forgotten = funcutil.Map(a.forgetCallerClosure(), procName)
			a.logger.Debugf("Triggers %v, forgetting %v", it.Triggers, it.Forgotten)
		}
		a.iterations = append(a.iterations, it)
		if len(a.triggers) == 0 {
			return nil
		}
		if a.maxIterations > 0 && a.iteration >= a.maxIterations {
			return fmt.Errorf("after %d iterations: %w", a.iteration, ErrIterationLimit)
		}
	}
}

// forgetCallerClosure forgets all the procedures that transitively called one of the triggers, and returns the
// procedures forgotten, ordered by name. A trigger is forgotten only if it is recursive.
func (a *ContextBasedAnalysis[A]) forgetCallerClosure() []*program.Procedure {
	ws := workset.NewVisitOnce[*program.Procedure](workset.NewFIFO[*program.Procedure]())
	for _, p := range a.sortedTriggers() {
		for _, caller := range a.cg.Callers(p) {
			ws.Push(caller)
		}
	}
	for !ws.IsEmpty() {
		for _, caller := range a.cg.Callers(ws.Pop()) {
			ws.Push(caller)
		}
	}
	forgotten := funcutil.SortedBy(ws.Seen(), procName)
	for _, p := range forgotten {
		a.results.Forget(p)
	}
	return forgotten
}

func (a *ContextBasedAnalysis[A]) sortedTriggers() []*program.Procedure {
	return funcutil.SortedBy(a.triggers, procName)
}

func procName(p *program.Procedure) string {
	return p.Name
}

// compute runs the fixpoint of p from entry in the current context
func (a *ContextBasedAnalysis[A]) compute(p *program.Procedure, entry state.AnalysisState[A]) (*fixpoint.Result[A],
	error) {
	k := key{p, a.token.Key()}
	a.inProgress[k] = true
	defer delete(a.inProgress, k)
	a.computations = append(a.computations, Computation{
		Procedure: p.Name,
		Context:   a.token.String(),
		Phase:     a.phase,
		Iteration: a.iteration,
	})
	a.logger.Tracef("Computing fixpoint of %s in %s", p.Name, a.token)
	res, err := a.routine.Fixpoint(p, entry, a, a.opts.WithDescending(config.NoDescending))
	if err != nil {
		return nil, wrapExecution(err, p.Name, a.token.String(), a.phase)
	}
	return res.WithID(a.token.String()), nil
}

// AbstractResultOf returns the state after call in caller. Each target is analyzed in the context of the call,
// with the caller's state and the actuals moved in the scope of the call; the value returned is assigned to the
// meta variable of the call and the states returned by the targets are joined.
//
// A call without target is open: its result is unknown.
func (a *ContextBasedAnalysis[A]) AbstractResultOf(caller *program.Procedure, call *program.Call,
	entry state.AnalysisState[A], actuals []symbolic.ExpressionSet,
	_ state.StatementStore[A]) (state.AnalysisState[A], error) {
	targets := a.cg.Targets(call, nil)
	a.cg.RegisterCall(caller, call, targets)
	meta := call.MetaVariable()
	if len(targets) == 0 {
		a.logger.Debugf("Open call %s in %s", call, caller.Name)
		return entry.Assign(meta, symbolic.Any{})
	}

	scope := call.Scope()
	a.token = a.token.Push(call)
	defer func() {
		// tokens pushed are always popped
		a.token, _ = a.token.Pop()
	}()

	callState := entry.PushScope(scope)
	scoped := funcutil.Map(actuals, func(s symbolic.ExpressionSet) symbolic.ExpressionSet { return s.PushScope(scope) })
	result := entry.Bottom()
	for _, target := range targets {
		prepared, _, err := a.assigner.Prepare(call, callState, target.Formals, scoped)
		if err != nil {
			return entry, &SetupError{Procedure: target.Name, Call: call.Site, Err: err}
		}
		res, err := a.resultOf(target, prepared)
		if err != nil {
			return entry, err
		}
		returned, err := returnedState(res, meta.PushIdentifier(scope))
		if err != nil {
			return entry, wrapExecution(err, target.Name, a.token.String(), a.phase)
		}
		result = result.Lub(returned.PopScope(scope))
	}
	if result.IsBottom() {
		return result, nil
	}
	// the targets cannot change the variables of the caller: the values they return for them only lose precision
	// when results of different callers are merged
	return result.Glb(entry.Forget(meta)).WithComputed(meta), nil
}

// resultOf returns the result of p from the entry state prepared, in the current context
func (a *ContextBasedAnalysis[A]) resultOf(p *program.Procedure, prepared state.AnalysisState[A]) (
	*fixpoint.Result[A], error) {
	k := key{p, a.token.Key()}
	if a.inProgress[k] {
		return a.recursiveResultOf(p, k, prepared), nil
	}
	if cached, ok := a.results.Get(p, a.token); ok && prepared.LessOrEqual(cached.Entry()) {
		a.logger.Tracef("Reusing result of %s in %s", p.Name, a.token)
		return cached, nil
	}
	if a.phase == descendingPhase {
		// results met in the descending phase are not stored: they would not be refined
		return a.compute(p, prepared)
	}
	// the fixpoint starts from every entry state the watermark of p claims to cover
	entry := prepared
	if seed, ok := a.seeds[k]; ok {
		entry = entry.Lub(seed)
	}
	if approx, ok := a.results.Watermark(p, a.token); ok {
		entry = entry.Lub(approx.Entry())
	}
	res, err := a.compute(p, entry)
	if err != nil {
		return nil, err
	}
	changed, stored := a.results.PutResult(p, a.token, res)
	if changed {
		a.logger.Debugf("Result of %s in %s grew", p.Name, a.token)
		a.triggers[p] = true
	}
	return stored, nil
}

// recursiveResultOf returns the approximation of the result of p when p is called while its fixpoint is being
// computed in the same context: the largest result stored for p if its entry covers prepared. Otherwise, prepared
// is recorded for the next iteration and p is a trigger.
func (a *ContextBasedAnalysis[A]) recursiveResultOf(p *program.Procedure, k key,
	prepared state.AnalysisState[A]) *fixpoint.Result[A] {
	if a.phase == descendingPhase {
		if cached, ok := a.results.Get(p, a.token); ok && prepared.LessOrEqual(cached.Entry()) {
			return cached
		}
		return unknownResult(p, prepared)
	}
	approx, ok := a.results.Watermark(p, a.token)
	if ok && prepared.LessOrEqual(approx.Entry()) {
		return approx
	}
	a.logger.Debugf("Recursive call of %s in %s not covered", p.Name, a.token)
	if seed, seen := a.seeds[k]; seen {
		prepared = seed.Lub(prepared)
	}
	a.seeds[k] = prepared
	a.triggers[p] = true
	if ok {
		return approx
	}
	return fixpoint.NewResult(p, prepared.Bottom())
}

// unknownResult is the result of p where every exit is reached in the top state
func unknownResult[A state.Domain[A]](p *program.Procedure, entry state.AnalysisState[A]) *fixpoint.Result[A] {
	res := fixpoint.NewResult(p, entry)
	for _, n := range p.Exits() {
		res.Posts.Put(n, entry.Top())
	}
	return res
}

// returnedState returns the state at the exit of res, where meta holds the value returned
func returnedState[A state.Domain[A]](res *fixpoint.Result[A], meta symbolic.Identifier) (state.AnalysisState[A],
	error) {
	out := res.Entry().Bottom()
	for _, n := range res.Procedure.Exits() {
		post, ok := res.Posts.Get(n)
		if !ok || post.IsBottom() {
			continue
		}
		var exprs []symbolic.Expression
		if _, isReturn := res.Procedure.Nodes[n].(program.Return); isReturn {
			exprs = post.Computed.Elements()
			if post.Computed.IsTop() {
				exprs = []symbolic.Expression{symbolic.Any{}}
			}
		}
		if len(exprs) == 0 {
			out = out.Lub(post.Forget(meta))
			continue
		}
		for _, e := range exprs {
			st, err := post.Assign(meta, e)
			if err != nil {
				return out, err
			}
			out = out.Lub(st)
		}
	}
	return out, nil
}

// DescendingPhase refines the results in seeds with the descending mode of opts. Procedures whose seed is none
// have no result. Procedures are refined callees first, so that calls use the refined results of their targets.
func (a *ContextBasedAnalysis[A]) DescendingPhase(seeds map[*program.Procedure]funcutil.Optional[*ProcedureResults[A]],
	opts fixpoint.Options) error {
	if opts.Descending == config.NoDescending || opts.Descending == "" {
		return ErrDescendingDisabled
	}
	a.opts = opts
	a.phase = descendingPhase
	a.inProgress = map[key]bool{}
	a.results = NewResultCache[A](opts.WideningThreshold)
	var reached []*program.Procedure
	for _, p := range a.app.Procedures {
		seed, present := seeds[p]
		if !present {
			continue
		}
		pr, ok := seed.Get()
		if !ok {
			continue
		}
		for _, tok := range pr.Tokens() {
			res, _ := pr.Get(tok)
			a.results.Replace(p, tok, res)
		}
		reached = append(reached, p)
	}
	start := time.Now()
	for _, scc := range graphutil.StronglyConnectedComponents(reached, a.cg.Callees) {
		if graphutil.IsRecursive(scc, a.cg.Callees) {
			a.logger.Debugf("Descending recursive procedures %v", funcutil.Map(scc, procName))
		}
		for _, p := range scc {
			pr, ok := a.results.State(p)
			if !ok {
				continue
			}
			for _, tok := range pr.Tokens() {
				if err := a.descend(p, tok); err != nil {
					return err
				}
			}
		}
	}
	a.logger.Infof("Descending phase (%s) done in %.2f s", opts.Descending, time.Since(start).Seconds())
	return nil
}

func (a *ContextBasedAnalysis[A]) descend(p *program.Procedure, tok callctx.Token) error {
	start, _ := a.results.Get(p, tok)
	a.token = tok
	k := key{p, tok.Key()}
	a.inProgress[k] = true
	defer delete(a.inProgress, k)
	a.computations = append(a.computations, Computation{
		Procedure: p.Name,
		Context:   tok.String(),
		Phase:     descendingPhase,
		Iteration: a.iteration,
	})
	refined, err := a.routine.Descend(start, a, a.opts)
	if err != nil {
		return wrapExecution(err, p.Name, tok.String(), descendingPhase)
	}
	a.results.Replace(p, tok, refined)
	return nil
}
