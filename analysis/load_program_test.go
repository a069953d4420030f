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
	"testing"

	"github.com/awslabs/ar-go-absint/analysis/config"
	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

func loadTestProgram(t *testing.T) LoadedProgram {
	t.Helper()
	cfg := &packages.Config{Mode: PkgLoadMode, Dir: "testdata/loop"}
	loaded, err := LoadProgram(cfg, "", ssa.BuilderMode(0), []string{"."})
	if err != nil {
		t.Fatalf("error loading packages: %s", err)
	}
	return loaded
}

func TestLoadProgram(t *testing.T) {
	loaded := loadTestProgram(t)
	if len(loaded.Packages) != 1 {
		t.Fatalf("expected one package, got %d", len(loaded.Packages))
	}
	found := false
	for _, pkg := range AllPackages(ssautil.AllFunctions(loaded.Program)) {
		t.Logf("%s loaded\n", pkg.String())
		found = found || pkg == loaded.Packages[0]
	}
	if !found {
		t.Errorf("the loaded package should be among the packages of the program functions")
	}

	app, err := loaded.Application()
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"loop.main", "loop.count", "loop.next"} {
		if _, ok := app.Procedure(name); !ok {
			t.Errorf("missing procedure %s", name)
		}
	}
	if _, ok := app.Procedure("loop.unknown"); ok {
		t.Errorf("loop.unknown is ignored and should not be translated")
	}
	if _, ok := app.Procedure("fmt.Println"); ok {
		t.Errorf("functions of dependencies should not be translated")
	}
}

func TestRunLoadedProgram(t *testing.T) {
	app, err := loadTestProgram(t).Application()
	if err != nil {
		t.Fatal(err)
	}
	cfg := config.NewDefault()
	cfg.EntryPoints = []string{"loop.main"}
	report, err := Run(cfg, app, config.NewDiscardLogGroup())
	if err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"loop.main", "loop.count", "loop.next"} {
		if _, ok := report.Procedure(name); !ok {
			t.Errorf("no results for %s", name)
		}
	}
}
