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

// Package fixpoint implements the intraprocedural fixpoint of the abstract interpretation: the computation of the
// abstract state at every program point of a procedure, given the state at its entry.
//
// Calls are not analyzed by this package: their abstract result is delegated to a CallResolver, typically the
// interprocedural analysis.
package fixpoint

import (
	"fmt"

	"github.com/awslabs/ar-go-absint/analysis/config"
)

// Options are the parameters of the intraprocedural fixpoint.
type Options struct {
	// WorkingSet is the kind of working set scheduling the program points
	WorkingSet config.WorkingSetKind

	// WideningThreshold is the number of updates of a program point computed with the lub, before the widening is used
	WideningThreshold int

	// Descending is the descending phase performed by Descend
	Descending config.DescendingPhase

	// GlbThreshold is the maximum number of descending updates of each program point
	GlbThreshold int
}

// OptionsFromConfig returns the fixpoint options of the configuration
func OptionsFromConfig(c *config.Config) Options {
	return Options{
		WorkingSet:        c.Analysis.WorkingSet,
		WideningThreshold: c.Analysis.WideningThreshold,
		Descending:        c.Analysis.DescendingPhase,
		GlbThreshold:      c.Analysis.DescendingGlbThreshold,
	}
}

// DefaultOptions are the options of the default configuration
func DefaultOptions() Options {
	return OptionsFromConfig(config.NewDefault())
}

// WithDescending returns the options with the descending phase replaced
func (o Options) WithDescending(mode config.DescendingPhase) Options {
	o.Descending = mode
	return o
}

func (o Options) String() string {
	return fmt.Sprintf("working set %s, widening after %d, descending %s (%d)", o.WorkingSet, o.WideningThreshold,
		o.Descending, o.GlbThreshold)
}
