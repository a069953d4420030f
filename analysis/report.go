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
	"fmt"
	"io"
	"os"

	"github.com/awslabs/ar-go-absint/analysis/config"
	"github.com/awslabs/ar-go-absint/analysis/interproc"
	"github.com/awslabs/ar-go-absint/analysis/state"
	"gopkg.in/yaml.v3"
)

// Report holds the per-context results of every analyzed procedure
type Report struct {
	Version            string                    `yaml:"version"`
	Domain             string                    `yaml:"domain"`
	ContextSensitivity config.ContextSensitivity `yaml:"context-sensitivity"`
	Descending         config.DescendingPhase    `yaml:"descending-phase"`
	Iterations         int                       `yaml:"iterations"`
	Procedures         []ProcedureReport         `yaml:"procedures"`
}

// ProcedureReport holds the results of a procedure, one per context
type ProcedureReport struct {
	Name     string          `yaml:"name"`
	Contexts []ContextReport `yaml:"contexts"`
}

// ContextReport holds the states at the entry and the exit of a procedure in one context
type ContextReport struct {
	Context string `yaml:"context"`
	Entry   string `yaml:"entry"`
	Exit    string `yaml:"exit"`
}

// NewReport builds the report of the results, in the order of the procedure names
func NewReport[A state.Domain[A]](cfg *config.Config, results *interproc.ResultCache[A], iterations int) *Report {
	r := &Report{
		Version:            Version,
		Domain:             cfg.Analysis.ValueDomain,
		ContextSensitivity: cfg.Analysis.ContextSensitivity,
		Descending:         cfg.Analysis.DescendingPhase,
		Iterations:         iterations,
	}
	if cfg.Decoupled() {
		r.Domain = cfg.Analysis.ValueDomain + " -> " + cfg.Analysis.DescendingDomain
	}
	for _, p := range results.Procedures() {
		pr, ok := results.State(p)
		if !ok {
			continue
		}
		proc := ProcedureReport{Name: p.Name}
		for _, res := range pr.Results() {
			proc.Contexts = append(proc.Contexts, ContextReport{
				Context: res.ID,
				Entry:   res.Entry().String(),
				Exit:    res.Exit().String(),
			})
		}
		r.Procedures = append(r.Procedures, proc)
	}
	return r
}

// Procedure returns the report of the procedure with the given name
func (r *Report) Procedure(name string) (ProcedureReport, bool) {
	for _, p := range r.Procedures {
		if p.Name == name {
			return p, true
		}
	}
	return ProcedureReport{}, false
}

// WriteYAML writes the report as yaml to w
func (r *Report) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return enc.Close()
}

// Save writes the report in a new file of the reports directory of cfg, and returns the name of the file
func (r *Report) Save(cfg *config.Config) (string, error) {
	f, err := os.CreateTemp(cfg.ReportsDir, "absint-report-*.yaml")
	if err != nil {
		return "", fmt.Errorf("could not create report file: %w", err)
	}
	defer f.Close()
	if err := r.WriteYAML(f); err != nil {
		return "", err
	}
	return f.Name(), nil
}

// LoadReport reads a report written by WriteYAML
func LoadReport(b []byte) (*Report, error) {
	r := &Report{}
	if err := yaml.Unmarshal(b, r); err != nil {
		return nil, fmt.Errorf("could not unmarshal report: %w", err)
	}
	return r, nil
}
