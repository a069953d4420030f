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

package main

import (
	"fmt"
	"os"

	"github.com/awslabs/ar-go-absint/analysis"
	"github.com/awslabs/ar-go-absint/cmd/absint/analyze"
	"github.com/awslabs/ar-go-absint/cmd/absint/callgraph"
	"github.com/awslabs/ar-go-absint/cmd/absint/tools"
)

const usage = `Absint: context-sensitive abstract interpretation of Go programs
Usage:
  absint [tool] [options] <Go package(s)>
  absint [tool] [options] -program <program.yaml>
Tools:
  - analyze: runs the interprocedural analysis and prints the per-context results of every procedure
  - callgraph: prints the static call graph, the unreachable procedures and the recursive components
Examples:
  Analyze a package: absint analyze -config config.yaml ./cmd/server
  Analyze a yaml program: absint analyze -program loop.yaml`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "error: expected subcommand\n%s\n", usage)
		os.Exit(2)
	}

	// hardcode help flag
	if snd := os.Args[1]; snd == "-help" || snd == "--help" {
		fmt.Println(usage)
		return
	}

	// hardcode version flag
	if snd := os.Args[1]; snd == "-version" || snd == "--version" {
		fmt.Println(analysis.Version)
		return
	}

	args := os.Args[2:]
	switch cmd := os.Args[1]; cmd {
	case "analyze":
		flags, err := analyze.NewFlags(args)
		if err != nil {
			errExit(err)
		}
		if err := analyze.Run(flags); err != nil {
			errExit(err)
		}
	case "callgraph":
		flags, err := tools.NewCommonFlags("callgraph", args, callgraph.Usage)
		if err != nil {
			errExit(err)
		}
		if err := callgraph.Run(flags); err != nil {
			errExit(err)
		}
	default:
		fmt.Fprintf(os.Stderr, "error: unexpected command: %v\n", cmd)
		fmt.Fprintf(os.Stderr, "usage:\n%s\n", usage)
		os.Exit(2)
	}
}

func errExit(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	hint := tools.HintForErrorMessage(err.Error())
	if hint != "" {
		fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
	}
	os.Exit(2)
}
