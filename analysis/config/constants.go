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

const (
	// DefaultWideningThreshold is the number of lubs performed at a program point before the widening operator is
	// used instead.
	DefaultWideningThreshold = 5

	// DefaultDescendingGlbThreshold is the maximum number of descending steps at a program point.
	DefaultDescendingGlbThreshold = 5

	// DefaultContextDepth is the length of the call strings kept by k-call context sensitivity.
	DefaultContextDepth = 2
)

// ContextSensitivity names a kind of context-sensitivity token.
type ContextSensitivity string

const (
	// ContextInsensitive merges all the calling contexts of a procedure.
	ContextInsensitive ContextSensitivity = "insensitive"
	// KCallContext distinguishes calling contexts by their last k call sites.
	KCallContext ContextSensitivity = "k-call"
	// RecursionFreeContext distinguishes calling contexts by their full call string, collapsing recursive calls.
	RecursionFreeContext ContextSensitivity = "recursion-free"
)

// WorkingSetKind names a kind of working set for the intra-procedural fixpoint.
type WorkingSetKind string

const (
	FIFOWorkingSet              WorkingSetKind = "fifo"
	LIFOWorkingSet              WorkingSetKind = "lifo"
	DuplicateFreeFIFOWorkingSet WorkingSetKind = "duplicate-free-fifo"
	DuplicateFreeLIFOWorkingSet WorkingSetKind = "duplicate-free-lifo"
)

// DescendingPhase names a kind of descending phase.
type DescendingPhase string

const (
	// NoDescending disables the descending phase.
	NoDescending DescendingPhase = "none"
	// NarrowingDescending uses the narrowing operator of the domain, at most descending-glb-threshold times per
	// program point.
	NarrowingDescending DescendingPhase = "narrowing"
	// GlbDescending uses the greatest lower bound, at most descending-glb-threshold times per program point.
	GlbDescending DescendingPhase = "glb"
)

// Domain names for the value-domain and descending-domain options.
const (
	SignDomain     = "sign"
	IntervalDomain = "interval"
)

// Parameter assignment strategies.
const (
	// OrderPreservingAssignment binds actuals to formals by position, and requires the same number of both.
	OrderPreservingAssignment = "order-preserving"
	// LenientAssignment binds actuals to formals by position, ignoring extra actuals and leaving missing ones unknown.
	LenientAssignment = "lenient"
)
