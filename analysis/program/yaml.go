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
	"os"

	"gopkg.in/yaml.v3"
)

// The yaml program format:
//
//	aliases:
//	  f: [g, h]
//	procedures:
//	  - name: main
//	    params: [a]
//	    nodes:
//	      - {op: assign, target: x, expr: "a + 1"}
//	      - {op: call, targets: [foo], args: [x], result: y}
//	      - {op: return, expr: y}
//
// Node operations are assign, branch (cond), call (site, targets, args, result), return (expr) and skip. When a
// procedure has no edges, consecutive nodes are linked as by a Builder. Otherwise, edges list the control flow
// explicitly with their kind (seq, true or false).
type yamlProgram struct {
	Aliases    map[string][]string `yaml:"aliases"`
	Procedures []yamlProcedure     `yaml:"procedures"`
}

type yamlProcedure struct {
	Name   string     `yaml:"name"`
	Params []string   `yaml:"params"`
	Entry  int        `yaml:"entry"`
	Nodes  []yamlNode `yaml:"nodes"`
	Edges  []yamlEdge `yaml:"edges"`
}

type yamlNode struct {
	Op      string   `yaml:"op"`
	Target  string   `yaml:"target"`
	Expr    string   `yaml:"expr"`
	Cond    string   `yaml:"cond"`
	Site    string   `yaml:"site"`
	Targets []string `yaml:"targets"`
	Args    []string `yaml:"args"`
	Result  string   `yaml:"result"`
}

type yamlEdge struct {
	From int    `yaml:"from"`
	To   int    `yaml:"to"`
	Kind string `yaml:"kind"`
}

// LoadYAML reads the program in the yaml file filename
func LoadYAML(filename string) (*Application, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("could not read program file %s: %w", filename, err)
	}
	return ParseYAML(b)
}

// ParseYAML parses a program in the yaml format
func ParseYAML(b []byte) (*Application, error) {
	var prog yamlProgram
	if err := yaml.Unmarshal(b, &prog); err != nil {
		return nil, fmt.Errorf("could not parse program: %w", err)
	}
	var procs []*Procedure
	for _, yp := range prog.Procedures {
		p, err := yp.build()
		if err != nil {
			return nil, err
		}
		procs = append(procs, p)
	}
	app, err := NewApplication(procs)
	if err != nil {
		return nil, err
	}
	for name, aliases := range prog.Aliases {
		app.Aliases[name] = aliases
	}
	return app, nil
}

func (yp yamlProcedure) build() (*Procedure, error) {
	b := NewBuilder(yp.Name, yp.Params...)
	for i, n := range yp.Nodes {
		switch n.Op {
		case "assign":
			b.Assign(n.Target, n.Expr)
		case "branch":
			b.Branch(n.Cond)
		case "call":
			if n.Site == "" {
				b.Call(n.Targets, n.Result, n.Args...)
			} else {
				b.CallAt(n.Site, n.Targets, n.Result, n.Args...)
			}
		case "return":
			b.Return(n.Expr)
		case "skip", "":
			b.Skip()
		default:
			return nil, &ValidationError{Procedure: yp.Name,
				Reason: fmt.Sprintf("unknown operation %q at node %d", n.Op, i)}
		}
	}
	b.proc.Entry = yp.Entry
	if len(yp.Edges) > 0 {
		b.proc.Edges = nil
		for _, e := range yp.Edges {
			switch e.Kind {
			case "", "seq":
				b.Seq(e.From, e.To)
			case "true":
				b.True(e.From, e.To)
			case "false":
				b.False(e.From, e.To)
			default:
				return nil, &ValidationError{Procedure: yp.Name, Reason: fmt.Sprintf("unknown edge kind %q", e.Kind)}
			}
		}
	}
	return b.Build()
}

