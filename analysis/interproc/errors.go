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

package interproc

import (
	"errors"
	"fmt"
)

var (
	// ErrNoEntryPoints is returned when the application analyzed has no entry point
	ErrNoEntryPoints = errors.New("the application has no entry point")

	// ErrDescendingDisabled is returned when a descending phase is requested without a descending mode
	ErrDescendingDisabled = errors.New("descending phase requested but disabled in the options")

	// ErrIterationLimit is returned when the ascending phase did not converge within the maximum number of
	// iterations configured
	ErrIterationLimit = errors.New("maximum number of fixpoint iterations reached")
)

// ExecutionError is an error raised while computing the fixpoint of a procedure. Procedure is the innermost
// procedure whose computation failed.
type ExecutionError struct {
	Procedure string
	Context   string
	Phase     string
	Err       error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s phase failed in %s (context %s): %v", e.Phase, e.Procedure, e.Context, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// SetupError is an error raised when the entry state of a procedure cannot be built
type SetupError struct {
	Procedure string
	Call      string
	Err       error
}

func (e *SetupError) Error() string {
	return fmt.Sprintf("cannot build the entry state of %s at %s: %v", e.Procedure, e.Call, e.Err)
}

func (e *SetupError) Unwrap() error {
	return e.Err
}

// wrapExecution wraps err with the procedure p, unless it already identifies a failing procedure
func wrapExecution(err error, proc string, ctx string, phase string) error {
	var exec *ExecutionError
	if errors.As(err, &exec) {
		return err
	}
	return &ExecutionError{Procedure: proc, Context: ctx, Phase: phase, Err: err}
}
