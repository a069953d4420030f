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

package tools

import "regexp"

// Captures errors happening before any analysis starts (program could not load)
var regexCouldNotLoad = regexp.MustCompile("could not load program")

// Captures the kind of error that happen when you put a flag at the end instead of go files
var namedFilesMustBeGoFiles = regexp.MustCompile("-: named files must be .go files: -(\\w)")

// Captures analyses that did not start because no procedure matched the entry points
var noEntryPoints = regexp.MustCompile("no entry point")

// Captures analyses stopped by the max-fixpoint-iterations option
var iterationLimit = regexp.MustCompile("maximum number of fixpoint iterations")

// HintForErrorMessage looks for specific error message and returns some other message that might help the user
// resolve the problem.
func HintForErrorMessage(errMsg string) string {
	if regexCouldNotLoad.MatchString(errMsg) {
		if namedFilesMustBeGoFiles.MatchString(errMsg) {
			return "all command line flags should be before the path to the Go files to analyze"
		}
		return "make sure you have provided either a yaml program with -program or Go packages to load"
	}
	if noEntryPoints.MatchString(errMsg) {
		return "the entrypoints of the config must match procedure names, e.g. main.main for the main package"
	}
	if iterationLimit.MatchString(errMsg) {
		return "increase max-fixpoint-iterations in the config, or set it to 0 to remove the bound"
	}
	return ""
}
