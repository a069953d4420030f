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

// Package graphutil contains graph algorithms used by the analyses.
package graphutil

// StronglyConnectedComponents returns the strongly connected components of the graph whose nodes are nodes and whose
// edges are given by successors. The components are returned in reverse topological order: if a node of a component
// A reaches a node of a component B, then B appears before A in the result. In particular, for a call graph, callees
// appear before their callers.
//
// This is Tarjan's algorithm with an explicit stack of frames instead of recursion, so that it can run on graphs
// with very long paths (e.g. deep recursion chains in programs).
func StronglyConnectedComponents[T comparable](nodes []T, successors func(T) []T) (sccs [][]T) {
	type frame struct {
		node  T
		succs []T
		next  int
	}
	var (
		stack     []T
		onStack   = map[T]bool{}
		index     = map[T]int{}
		lowlink   = map[T]int{}
		nextIndex = 0
		frames    []frame
	)
	enter := func(v T) {
		index[v] = nextIndex
		lowlink[v] = nextIndex
		nextIndex++
		stack = append(stack, v)
		onStack[v] = true
		frames = append(frames, frame{node: v, succs: successors(v)})
	}

	for _, root := range nodes {
		if _, visited := index[root]; visited {
			continue
		}
		enter(root)
		for len(frames) > 0 {
			top := &frames[len(frames)-1]
			if top.next < len(top.succs) {
				w := top.succs[top.next]
				top.next++
				if _, visited := index[w]; !visited {
					enter(w)
				} else if onStack[w] && index[w] < lowlink[top.node] {
					lowlink[top.node] = index[w]
				}
				continue
			}
			v := top.node
			frames = frames[:len(frames)-1]
			if lowlink[v] == index[v] {
				var scc []T
				for {
					w := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[w] = false
					scc = append(scc, w)
					if w == v {
						break
					}
				}
				sccs = append(sccs, scc)
			}
			if len(frames) > 0 {
				parent := frames[len(frames)-1].node
				if lowlink[v] < lowlink[parent] {
					lowlink[parent] = lowlink[v]
				}
			}
		}
	}
	return sccs
}

// IsRecursive returns true if the component is a cycle: either it has more than one node, or its single node is its
// own successor.
func IsRecursive[T comparable](scc []T, successors func(T) []T) bool {
	if len(scc) > 1 {
		return true
	}
	if len(scc) == 0 {
		return false
	}
	for _, s := range successors(scc[0]) {
		if s == scc[0] {
			return true
		}
	}
	return false
}
