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

package state

import (
	"fmt"
	"strings"

	"github.com/awslabs/ar-go-absint/internal/funcutil"
)

// Aliasing records the alternative names of symbols, typically the procedures a name may designate when a call
// refers to it. Aliases are ordered by inclusion; the zero value is empty.
type Aliasing struct {
	names map[string]map[string]bool
	top   bool
}

// NewAliasing returns the aliasing where each key of aliases has the given aliases
func NewAliasing(aliases map[string][]string) Aliasing {
	a := Aliasing{names: map[string]map[string]bool{}}
	for name, as := range aliases {
		set := map[string]bool{}
		for _, x := range as {
			set[x] = true
		}
		if len(set) > 0 {
			a.names[name] = set
		}
	}
	return a
}

// Resolve returns the aliases of name, sorted, or nil if there are none
func (a Aliasing) Resolve(name string) []string {
	return funcutil.SetToOrderedSlice(a.names[name])
}

// Names returns the symbols that have aliases, sorted
func (a Aliasing) Names() []string {
	return funcutil.SortedKeys(a.names)
}

func (a Aliasing) Bottom() Aliasing { return Aliasing{} }
func (a Aliasing) Top() Aliasing    { return Aliasing{top: true} }
func (a Aliasing) IsBottom() bool   { return !a.top && len(a.names) == 0 }
func (a Aliasing) IsTop() bool      { return a.top }

func (a Aliasing) Lub(o Aliasing) Aliasing {
	if a.top || o.top {
		return a.Top()
	}
	res := Aliasing{names: map[string]map[string]bool{}}
	for _, m := range []map[string]map[string]bool{a.names, o.names} {
		for name, set := range m {
			if res.names[name] == nil {
				res.names[name] = map[string]bool{}
			}
			res.names[name] = funcutil.Union(res.names[name], set)
		}
	}
	return res
}

func (a Aliasing) Glb(o Aliasing) Aliasing {
	if a.top {
		return o
	}
	if o.top {
		return a
	}
	res := Aliasing{names: map[string]map[string]bool{}}
	for name, set := range a.names {
		inter := map[string]bool{}
		for x := range set {
			if o.names[name][x] {
				inter[x] = true
			}
		}
		if len(inter) > 0 {
			res.names[name] = inter
		}
	}
	return res
}

func (a Aliasing) Widening(o Aliasing) Aliasing  { return a.Lub(o) }
func (a Aliasing) Narrowing(o Aliasing) Aliasing { return a.Glb(o) }

func (a Aliasing) LessOrEqual(o Aliasing) bool {
	if o.top {
		return true
	}
	if a.top {
		return false
	}
	for name, set := range a.names {
		for x := range set {
			if !o.names[name][x] {
				return false
			}
		}
	}
	return true
}

func (a Aliasing) String() string {
	if a.top {
		return "{*}"
	}
	var entries []string
	for _, name := range a.Names() {
		entries = append(entries, fmt.Sprintf("%s -> [%s]", name, strings.Join(a.Resolve(name), ", ")))
	}
	return "{" + strings.Join(entries, "; ") + "}"
}
