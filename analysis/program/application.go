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

	"github.com/awslabs/ar-go-absint/internal/funcutil"
)

// Application is the set of procedures of the program analyzed, and the procedures where the analysis starts.
type Application struct {
	Procedures  []*Procedure
	EntryPoints []*Procedure

	// Aliases maps names used in calls to the names of the procedures they designate
	Aliases map[string][]string

	byName map[string]*Procedure
}

// NewApplication returns the application with the given procedures. Procedure names must be unique, and call
// sites must be unique across the application.
func NewApplication(procedures []*Procedure) (*Application, error) {
	app := &Application{byName: map[string]*Procedure{}, Aliases: map[string][]string{}}
	sites := map[string]string{}
	for _, p := range procedures {
		if err := p.Validate(); err != nil {
			return nil, err
		}
		if _, dup := app.byName[p.Name]; dup {
			return nil, fmt.Errorf("duplicate procedure %s", p.Name)
		}
		for _, c := range p.Calls() {
			if other, dup := sites[c.Site]; dup {
				return nil, fmt.Errorf("call site %s appears in %s and %s", c.Site, other, p.Name)
			}
			sites[c.Site] = p.Name
		}
		app.byName[p.Name] = p
		app.Procedures = append(app.Procedures, p)
	}
	return app, nil
}

// Procedure returns the procedure with the given name
func (app *Application) Procedure(name string) (*Procedure, bool) {
	p, ok := app.byName[name]
	return p, ok
}

// SetEntryPoints sets the entry points to the procedures whose name matches, in the order of the procedures.
// Returns the number of entry points.
func (app *Application) SetEntryPoints(match func(name string) bool) int {
	app.EntryPoints = funcutil.Filter(app.Procedures, func(p *Procedure) bool { return match(p.Name) })
	return len(app.EntryPoints)
}
