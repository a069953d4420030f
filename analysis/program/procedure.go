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

package program

import (
	"fmt"
	"strings"

	"github.com/awslabs/ar-go-absint/analysis/symbolic"
)

// EdgeKind is the kind of a control flow edge
type EdgeKind int

const (
	// Sequential edges are always taken
	Sequential EdgeKind = iota
	// TrueEdge is taken when the condition of the branch holds
	TrueEdge
	// FalseEdge is taken when the condition of the branch does not hold
	FalseEdge
)

func (k EdgeKind) String() string {
	switch k {
	case TrueEdge:
		return "true"
	case FalseEdge:
		return "false"
	default:
		return "seq"
	}
}

// Edge is a control flow edge between two nodes of a procedure
type Edge struct {
	From int
	To   int
	Kind EdgeKind
}

// Procedure is a control flow graph. Nodes are identified by their index in Nodes.
type Procedure struct {
	Name    string
	Formals []symbolic.Identifier
	Nodes   []Statement
	Entry   int
	Edges   []Edge

	succs map[int][]Edge
	preds map[int][]Edge
}

func (p *Procedure) String() string {
	return p.Name
}

// index computes the adjacency lists, once
func (p *Procedure) index() {
	if p.succs != nil {
		return
	}
	p.succs = map[int][]Edge{}
	p.preds = map[int][]Edge{}
	for _, e := range p.Edges {
		p.succs[e.From] = append(p.succs[e.From], e)
		p.preds[e.To] = append(p.preds[e.To], e)
	}
}

// Successors returns the edges leaving node n
func (p *Procedure) Successors(n int) []Edge {
	p.index()
	return p.succs[n]
}

// Predecessors returns the edges entering node n
func (p *Procedure) Predecessors(n int) []Edge {
	p.index()
	return p.preds[n]
}

// Exits returns the nodes where the execution of the procedure ends: returns, and nodes without successors
func (p *Procedure) Exits() []int {
	var exits []int
	for i, st := range p.Nodes {
		if _, isReturn := st.(Return); isReturn || len(p.Successors(i)) == 0 {
			exits = append(exits, i)
		}
	}
	return exits
}

// Calls returns the call statements of the procedure, in node order
func (p *Procedure) Calls() []*Call {
	var calls []*Call
	for _, st := range p.Nodes {
		if c, ok := st.(*Call); ok {
			calls = append(calls, c)
		}
	}
	return calls
}

// ValidationError is returned for malformed procedures
type ValidationError struct {
	Procedure string
	Reason    string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid procedure %s: %s", e.Procedure, e.Reason)
}

// Validate checks that the control flow graph is well-formed: the entry and edges refer to existing nodes, branches
// have true and false successors only, and call sites are well-formed.
func (p *Procedure) Validate() error {
	invalid := func(format string, args ...any) error {
		return &ValidationError{Procedure: p.Name, Reason: fmt.Sprintf(format, args...)}
	}
	if p.Name == "" {
		return invalid("empty name")
	}
	if len(p.Nodes) == 0 {
		return invalid("no nodes")
	}
	if p.Entry < 0 || p.Entry >= len(p.Nodes) {
		return invalid("entry node %d does not exist", p.Entry)
	}
	for _, e := range p.Edges {
		if e.From < 0 || e.From >= len(p.Nodes) || e.To < 0 || e.To >= len(p.Nodes) {
			return invalid("edge %d -> %d refers to a missing node", e.From, e.To)
		}
		_, isBranch := p.Nodes[e.From].(Branch)
		if isBranch != (e.Kind != Sequential) {
			return invalid("edge %d -> %d of kind %s does not match statement %q", e.From, e.To, e.Kind,
				p.Nodes[e.From])
		}
		if _, isReturn := p.Nodes[e.From].(Return); isReturn {
			return invalid("return statement %d has a successor", e.From)
		}
	}
	for i, st := range p.Nodes {
		switch st := st.(type) {
		case nil:
			return invalid("node %d has no statement", i)
		case *Call:
			if st.Site == "" || strings.Contains(st.Site, "\x1f") {
				return invalid("invalid call site %q at node %d", st.Site, i)
			}
		}
	}
	return nil
}
