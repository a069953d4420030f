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

// Package callgraph implements the call graph adapter of the interprocedural analysis.
//
// The adapter has two views of the calls of an application. The static view is built from the targets named by the
// call statements, and answers reachability and recursion queries. The registered view records the calls actually
// resolved by the analysis, and answers which procedures call a given procedure: this is what the analysis uses to
// find the callers whose results must be recomputed.
package callgraph

import (
	"fmt"

	"github.com/awslabs/ar-go-absint/analysis/program"
	"github.com/awslabs/ar-go-absint/internal/funcutil"
	ybgraph "github.com/yourbasic/graph"
	"gonum.org/v1/gonum/graph/simple"
)

// CallGraph is the call graph adapter of an application
type CallGraph struct {
	app *program.Application

	// ids maps procedures to node ids in both graphs; ids are indexes in app.Procedures
	ids map[*program.Procedure]int64

	// static is the graph of the calls named in the program
	static *ybgraph.Mutable

	// registered is the graph of the calls resolved during the analysis, without self loops
	registered *simple.DirectedGraph

	// selfCalls records the procedures that registered a call to themselves
	selfCalls map[int64]bool

	// sites maps call sites to the procedures registered as their targets
	sites map[string]map[int64]bool
}

// New builds the call graph adapter of the application.
func New(app *program.Application) *CallGraph {
	cg := &CallGraph{
		app:    app,
		ids:    make(map[*program.Procedure]int64, len(app.Procedures)),
		static: ybgraph.New(len(app.Procedures)),
	}
	for i, p := range app.Procedures {
		cg.ids[p] = int64(i)
	}
	for _, p := range app.Procedures {
		for _, c := range p.Calls() {
			for _, target := range cg.Targets(c, nil) {
				cg.static.Add(int(cg.ids[p]), int(cg.ids[target]))
			}
		}
	}
	cg.ResetRegistered()
	return cg
}

// Application returns the application of the call graph
func (cg *CallGraph) Application() *program.Application {
	return cg.app
}

func (cg *CallGraph) procedure(id int64) *program.Procedure {
	return cg.app.Procedures[id]
}

// Targets returns the procedures the call may invoke. A target name that is not the name of a procedure is resolved
// through the aliases of the application, and through aliases if it is not nil. The result is empty for open calls,
// whose targets are all unknown.
func (cg *CallGraph) Targets(c *program.Call, aliases func(name string) []string) []*program.Procedure {
	var res []*program.Procedure
	seen := map[*program.Procedure]bool{}
	add := func(name string) {
		if p, ok := cg.app.Procedure(name); ok && !seen[p] {
			seen[p] = true
			res = append(res, p)
		}
	}
	for _, name := range c.Targets {
		if _, ok := cg.app.Procedure(name); ok {
			add(name)
			continue
		}
		for _, alias := range cg.app.Aliases[name] {
			add(alias)
		}
		if aliases != nil {
			for _, alias := range aliases(name) {
				add(alias)
			}
		}
	}
	return res
}

// RegisterCall records that the call in caller has been resolved to targets
func (cg *CallGraph) RegisterCall(caller *program.Procedure, c *program.Call, targets []*program.Procedure) {
	from := cg.ids[caller]
	if cg.sites[c.Site] == nil {
		cg.sites[c.Site] = map[int64]bool{}
	}
	if cg.registered.Node(from) == nil {
		cg.registered.AddNode(simple.Node(from))
	}
	for _, t := range targets {
		to := cg.ids[t]
		cg.sites[c.Site][to] = true
		if from == to {
			cg.selfCalls[from] = true
			continue
		}
		cg.registered.SetEdge(cg.registered.NewEdge(simple.Node(from), simple.Node(to)))
	}
}

// ResetRegistered forgets all the calls registered
func (cg *CallGraph) ResetRegistered() {
	cg.registered = simple.NewDirectedGraph()
	cg.selfCalls = map[int64]bool{}
	cg.sites = map[string]map[int64]bool{}
}

// Callers returns the procedures that registered a call to p, in the order of the application
func (cg *CallGraph) Callers(p *program.Procedure) []*program.Procedure {
	id, ok := cg.ids[p]
	if !ok {
		return nil
	}
	ids := map[int64]bool{}
	if cg.selfCalls[id] {
		ids[id] = true
	}
	if cg.registered.Node(id) != nil {
		for it := cg.registered.To(id); it.Next(); {
			ids[it.Node().ID()] = true
		}
	}
	return cg.sorted(ids)
}

// Callees returns the procedures p registered a call to, in the order of the application
func (cg *CallGraph) Callees(p *program.Procedure) []*program.Procedure {
	id, ok := cg.ids[p]
	if !ok {
		return nil
	}
	ids := map[int64]bool{}
	if cg.selfCalls[id] {
		ids[id] = true
	}
	if cg.registered.Node(id) != nil {
		for it := cg.registered.From(id); it.Next(); {
			ids[it.Node().ID()] = true
		}
	}
	return cg.sorted(ids)
}

// RegisteredTargets returns the procedures registered as targets of the call site
func (cg *CallGraph) RegisteredTargets(site string) []*program.Procedure {
	return cg.sorted(cg.sites[site])
}

func (cg *CallGraph) sorted(ids map[int64]bool) []*program.Procedure {
	return funcutil.Map(funcutil.SetToOrderedSlice(ids), cg.procedure)
}

// StaticCallees returns the procedures named by the calls of p, in the order of the application
func (cg *CallGraph) StaticCallees(p *program.Procedure) []*program.Procedure {
	ids := map[int64]bool{}
	cg.static.Visit(int(cg.ids[p]), func(w int, _ int64) bool {
		ids[int64(w)] = true
		return false
	})
	return cg.sorted(ids)
}

// Reachable returns the procedures reachable from the roots in the static call graph, roots included
func (cg *CallGraph) Reachable(roots []*program.Procedure) []*program.Procedure {
	ids := map[int64]bool{}
	for _, r := range roots {
		id := cg.ids[r]
		ids[id] = true
		ybgraph.BFS(cg.static, int(id), func(_, w int, _ int64) {
			ids[int64(w)] = true
		})
	}
	return cg.sorted(ids)
}

// RecursiveComponents returns the sets of mutually recursive procedures of the static call graph. A procedure
// calling itself is a component of size one.
func (cg *CallGraph) RecursiveComponents() [][]*program.Procedure {
	var res [][]*program.Procedure
	for _, comp := range ybgraph.StrongComponents(cg.static) {
		if len(comp) == 1 && !cg.static.Edge(comp[0], comp[0]) {
			continue
		}
		ids := map[int64]bool{}
		for _, v := range comp {
			ids[int64(v)] = true
		}
		res = append(res, cg.sorted(ids))
	}
	return res
}

// String prints the static edges of the call graph, one per line
func (cg *CallGraph) String() string {
	s := ""
	for _, p := range cg.app.Procedures {
		for _, callee := range cg.StaticCallees(p) {
			s += fmt.Sprintf("%s -> %s\n", p.Name, callee.Name)
		}
	}
	return s
}
