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

/*
Package config provides a simple way to manage configuration files.

Use [Load](filename) to load a configuration from a specific filename.

Use [LoadFromBytes](filename, contents) when the contents of the file are already in memory.

A config file should be in yaml format. The top-level fields can be any of the fields defined in the Config
struct type. The analysis options are grouped under the `analysis` key.
For example, a valid config file is as follows:

	options:
	  log-level: 4
	entrypoints:
	  - main
	analysis:
	  context-sensitivity: k-call
	  context-depth: 2
	  working-set: fifo
	  widening-threshold: 5
	  descending-phase: glb
	  descending-glb-threshold: 3
	  value-domain: sign
	  descending-domain: interval

# Entry points

Entry points are identified by name. A name is used as a regular expression matching the entire procedure name if it
compiles to one, otherwise it must be equal to the procedure name.

# Validation

[Config.Validate] reports configuration errors (unknown domains, negative thresholds, ...). A configuration error is
fatal: the analysis does not start.
*/
package config
