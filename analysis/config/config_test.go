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

package config

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

//go:embed testdata
var testfsys embed.FS

func loadFromTestDir(filename string) (string, *Config, error) {
	filename = filepath.Join("testdata", filename)
	b, err := testfsys.ReadFile(filename)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read file %v: %v", filename, err)
	}
	config, err := LoadFromBytes(filename, b)
	if err != nil {
		return filename, nil, fmt.Errorf("failed to load file %v: %w", filename, err)
	}
	return filename, config, err
}

func testLoadOneFile(t *testing.T, filename string, expected Config) {
	// set default log level that may not be specified
	if expected.LogLevel == 0 {
		expected.LogLevel = int(InfoLevel)
	}
	configFileName, config, err := loadFromTestDir(filename)
	if err != nil {
		t.Fatalf("Error loading %q: %v", configFileName, err)
	}
	c1, err1 := yaml.Marshal(config)
	c2, err2 := yaml.Marshal(expected)
	if err1 != nil {
		t.Errorf("Error marshalling %v", config)
	}
	if err2 != nil {
		t.Errorf("Error marshalling %v", expected)
	}
	if string(c1) != string(c2) {
		t.Errorf("Error in %q:\n%s\nis not\n%s\n", filename, c1, c2)
	}
}

func TestLoadFull(t *testing.T) {
	expected := NewDefault()
	expected.LogLevel = int(DebugLevel)
	expected.EntryPoints = []string{"main", "init.*"}
	expected.Analysis = AnalysisOptions{
		ContextSensitivity:     KCallContext,
		ContextDepth:           3,
		WorkingSet:             LIFOWorkingSet,
		WideningThreshold:      2,
		DescendingPhase:        GlbDescending,
		DescendingGlbThreshold: 4,
		ValueDomain:            SignDomain,
		DescendingDomain:       IntervalDomain,
		ParameterAssignment:    LenientAssignment,
		MaxFixpointIterations:  50,
	}
	testLoadOneFile(t, "full.yaml", *expected)
}

func TestLoadMinimal(t *testing.T) {
	expected := NewDefault()
	expected.EntryPoints = []string{"run"}
	testLoadOneFile(t, "minimal.yaml", *expected)
}

func TestLoadInvalid(t *testing.T) {
	for _, file := range []string{"bad-domain.yaml", "bad-decoupling.yaml", "bad-descending.yaml"} {
		t.Run(file, func(t *testing.T) {
			_, _, err := loadFromTestDir(file)
			if err == nil {
				t.Fatalf("expected an error when loading %s", file)
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error should wrap ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"default", func(c *Config) {}, false},
		{"k-call without depth", func(c *Config) {
			c.Analysis.ContextSensitivity = KCallContext
			c.Analysis.ContextDepth = 0
		}, true},
		{"negative widening", func(c *Config) { c.Analysis.WideningThreshold = -1 }, true},
		{"glb without threshold", func(c *Config) {
			c.Analysis.DescendingPhase = GlbDescending
			c.Analysis.DescendingGlbThreshold = 0
		}, true},
		{"unknown working set", func(c *Config) { c.Analysis.WorkingSet = "random" }, true},
		{"no entrypoints", func(c *Config) { c.EntryPoints = nil }, true},
		{"same descending domain", func(c *Config) { c.Analysis.DescendingDomain = IntervalDomain }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewDefault()
			tt.mutate(c)
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestMatchEntryPoint(t *testing.T) {
	_, c, err := loadFromTestDir("full.yaml")
	if err != nil {
		t.Fatal(err)
	}
	for name, want := range map[string]bool{
		"main":     true,
		"mainly":   false,
		"initAll":  true,
		"pkg.main": false,
	} {
		if got := c.MatchEntryPoint(name); got != want {
			t.Errorf("MatchEntryPoint(%q) = %v, want %v", name, got, want)
		}
	}
	if !c.Decoupled() {
		t.Errorf("full.yaml decouples sign into interval")
	}
}

func TestLogGroup(t *testing.T) {
	c := NewDefault()
	c.LogLevel = int(WarnLevel)
	l := NewLogGroup(c)
	var buf bytes.Buffer
	l.SetAllOutput(&buf)
	l.SetAllFlags(0)
	l.Infof("hidden")
	l.Warnf("shown %d", 1)
	l.Errorf("error")
	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message should not be printed at warn level")
	}
	if !strings.Contains(out, "[WARN] shown 1") || !strings.Contains(out, "[ERROR] error") {
		t.Errorf("unexpected output %q", out)
	}
}
