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
	"strings"

	"github.com/awslabs/ar-go-absint/analysis/callctx"
	"github.com/awslabs/ar-go-absint/analysis/fixpoint"
	"github.com/awslabs/ar-go-absint/analysis/program"
	"github.com/awslabs/ar-go-absint/analysis/state"
	"github.com/awslabs/ar-go-absint/internal/funcutil"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// ProcedureResults holds the results of a procedure, one per context it has been analyzed in
type ProcedureResults[A state.Domain[A]] struct {
	Procedure *program.Procedure

	results map[string]*fixpoint.Result[A]
	tokens  map[string]callctx.Token
}

func newProcedureResults[A state.Domain[A]](p *program.Procedure) *ProcedureResults[A] {
	return &ProcedureResults[A]{
		Procedure: p,
		results:   map[string]*fixpoint.Result[A]{},
		tokens:    map[string]callctx.Token{},
	}
}

func (pr *ProcedureResults[A]) put(tok callctx.Token, res *fixpoint.Result[A]) {
	pr.results[tok.Key()] = res
	pr.tokens[tok.Key()] = tok
}

func (pr *ProcedureResults[A]) remove(tok callctx.Token) {
	delete(pr.results, tok.Key())
	delete(pr.tokens, tok.Key())
}

// Get returns the result of the procedure in the context tok
func (pr *ProcedureResults[A]) Get(tok callctx.Token) (*fixpoint.Result[A], bool) {
	res, ok := pr.results[tok.Key()]
	return res, ok
}

// Tokens returns the contexts the procedure has a result for, ordered by key
func (pr *ProcedureResults[A]) Tokens() []callctx.Token {
	return funcutil.Map(funcutil.SortedKeys(pr.tokens), func(k string) callctx.Token { return pr.tokens[k] })
}

// Results returns the results of the procedure, ordered by context key
func (pr *ProcedureResults[A]) Results() []*fixpoint.Result[A] {
	return funcutil.Map(funcutil.SortedKeys(pr.results), func(k string) *fixpoint.Result[A] { return pr.results[k] })
}

// Len returns the number of contexts the procedure has a result for
func (pr *ProcedureResults[A]) Len() int {
	return len(pr.results)
}

// Copy returns a shallow copy: results are shared, but adding results to the copy does not change pr
func (pr *ProcedureResults[A]) Copy() *ProcedureResults[A] {
	c := newProcedureResults[A](pr.Procedure)
	maps.Copy(c.results, pr.results)
	maps.Copy(c.tokens, pr.tokens)
	return c
}

// MapResults applies f to every result of pr, and returns the procedure results in the target domain
func MapResults[A state.Domain[A], B state.Domain[B]](pr *ProcedureResults[A],
	f func(*fixpoint.Result[A]) *fixpoint.Result[B]) *ProcedureResults[B] {
	res := newProcedureResults[B](pr.Procedure)
	for k, r := range pr.results {
		res.put(pr.tokens[k], f(r))
	}
	return res
}

// mark is the largest result stored for a procedure in one context, and the number of times it grew.
// A mark is exact when a fixpoint was computed from an entry state at least as large as the entry of the mark: its
// posts then hold for every state its entry covers. Widening can make the entry of a mark grow past the entries
// computed so far.
type mark[A state.Domain[A]] struct {
	result  *fixpoint.Result[A]
	growths int
	exact   bool
}

// ResultCache holds the results of the procedures analyzed, per context.
//
// The value stored for a procedure in a context only increases: a new result is merged with the largest result
// stored before in the same context, with the least upper bound for the first WideningThreshold growths and with
// the widening afterwards. Forgetting a procedure removes its results from the cache, so that they are computed
// again, but the merge keeps starting from the largest results stored.
//
// The largest result of a context is a result of the cache only while it is exact. A widened value whose entry no
// fixpoint started from is kept as the watermark of the context, and becomes a result again once a result computed
// from its entry is stored.
type ResultCache[A state.Domain[A]] struct {
	wideningThreshold int
	procs             map[*program.Procedure]*ProcedureResults[A]
	marks             map[*program.Procedure]map[string]*mark[A]
}

// NewResultCache returns an empty cache whose values are widened after wideningThreshold growths
func NewResultCache[A state.Domain[A]](wideningThreshold int) *ResultCache[A] {
	return &ResultCache[A]{
		wideningThreshold: wideningThreshold,
		procs:             map[*program.Procedure]*ProcedureResults[A]{},
		marks:             map[*program.Procedure]map[string]*mark[A]{},
	}
}

// PutResult merges res into the result of p in the context tok. It returns true if the value stored strictly
// increased, and the value stored. Storing the first result of a context is not an increase. The value stored is
// the watermark of the context; it is the result of p in tok if it is exact.
func (c *ResultCache[A]) PutResult(p *program.Procedure, tok callctx.Token, res *fixpoint.Result[A]) (bool,
	*fixpoint.Result[A]) {
	res = res.WithID(tok.String())
	if c.marks[p] == nil {
		c.marks[p] = map[string]*mark[A]{}
	}
	m, seen := c.marks[p][tok.Key()]
	changed := false
	switch {
	case !seen:
		m = &mark[A]{result: res, exact: true}
		c.marks[p][tok.Key()] = m
	case res.LessOrEqual(m.result):
		m.exact = m.exact || m.result.EntryStates.LessOrEqual(res.EntryStates)
	default:
		if m.growths < c.wideningThreshold {
			m.result = m.result.Lub(res)
		} else {
			m.result = m.result.Widening(res)
		}
		m.growths++
		m.exact = m.result.EntryStates.LessOrEqual(res.EntryStates)
		changed = true
	}
	if m.exact {
		c.slot(p).put(tok, m.result)
	} else {
		c.drop(p, tok)
	}
	return changed, m.result
}

// drop removes the result of p in the context tok
func (c *ResultCache[A]) drop(p *program.Procedure, tok callctx.Token) {
	pr, ok := c.procs[p]
	if !ok {
		return
	}
	pr.remove(tok)
	if pr.Len() == 0 {
		delete(c.procs, p)
	}
}

// Replace sets the result of p in the context tok, without merging it. The descending phase uses it to store
// refined results.
func (c *ResultCache[A]) Replace(p *program.Procedure, tok callctx.Token, res *fixpoint.Result[A]) {
	c.slot(p).put(tok, res.WithID(tok.String()))
}

func (c *ResultCache[A]) slot(p *program.Procedure) *ProcedureResults[A] {
	pr, ok := c.procs[p]
	if !ok {
		pr = newProcedureResults[A](p)
		c.procs[p] = pr
	}
	return pr
}

// State returns the results of p; false if p has no result
func (c *ResultCache[A]) State(p *program.Procedure) (*ProcedureResults[A], bool) {
	pr, ok := c.procs[p]
	return pr, ok
}

// Contains returns true if p has a result in the context tok
func (c *ResultCache[A]) Contains(p *program.Procedure, tok callctx.Token) bool {
	_, ok := c.Get(p, tok)
	return ok
}

// Get returns the result of p in the context tok
func (c *ResultCache[A]) Get(p *program.Procedure, tok callctx.Token) (*fixpoint.Result[A], bool) {
	pr, ok := c.procs[p]
	if !ok {
		return nil, false
	}
	return pr.Get(tok)
}

// Watermark returns the largest result stored for p in the context tok, even if p has been forgotten since
func (c *ResultCache[A]) Watermark(p *program.Procedure, tok callctx.Token) (*fixpoint.Result[A], bool) {
	m, ok := c.marks[p][tok.Key()]
	if !ok {
		return nil, false
	}
	return m.result, true
}

// Forget removes all the results of p
func (c *ResultCache[A]) Forget(p *program.Procedure) {
	delete(c.procs, p)
}

// Clear removes all the results and their history
func (c *ResultCache[A]) Clear() {
	c.procs = map[*program.Procedure]*ProcedureResults[A]{}
	c.marks = map[*program.Procedure]map[string]*mark[A]{}
}

// Procedures returns the procedures that have a result, ordered by name
func (c *ResultCache[A]) Procedures() []*program.Procedure {
	procs := maps.Keys(c.procs)
	slices.SortFunc(procs, func(a, b *program.Procedure) bool { return a.Name < b.Name })
	return procs
}

func (c *ResultCache[A]) String() string {
	var b strings.Builder
	for _, p := range c.Procedures() {
		for _, r := range c.procs[p].Results() {
			b.WriteString(r.String())
			b.WriteByte('\n')
		}
	}
	return b.String()
}
