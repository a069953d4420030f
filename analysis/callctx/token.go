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

// Package callctx implements the context tokens that distinguish the analyses of a procedure in different calling
// contexts.
//
// A token abstracts the stack of call sites that led to the procedure being analyzed. Tokens are immutable: Push and
// Pop return new tokens. Two tokens are the same context when their keys are equal; the key is what the result cache
// uses to separate results.
package callctx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/awslabs/ar-go-absint/analysis/config"
	"github.com/awslabs/ar-go-absint/analysis/program"
)

// ErrEmptyToken is returned when popping a token that has no call site
var ErrEmptyToken = errors.New("cannot pop an empty context token")

// Token is a calling context
type Token interface {
	fmt.Stringer

	// Empty returns the token of the same kind without any call site
	Empty() Token

	// Push returns the token after entering the call c
	Push(c *program.Call) Token

	// Pop returns the token after returning from the last call pushed, or ErrEmptyToken
	Pop() (Token, error)

	// Key identifies the context: tokens with the same key are the same context
	Key() string
}

// Equal returns true if the tokens denote the same context
func Equal(a, b Token) bool {
	return a.Key() == b.Key()
}

// New returns the empty token of the kind of context sensitivity. depth is used only for k-call sensitivity.
func New(sensitivity config.ContextSensitivity, depth int) (Token, error) {
	switch sensitivity {
	case config.ContextInsensitive:
		return Insensitive{}, nil
	case config.KCallContext:
		if depth < 0 {
			return nil, fmt.Errorf("invalid context depth %d", depth)
		}
		return KCall{k: depth}, nil
	case config.RecursionFreeContext:
		return RecursionFree{}, nil
	default:
		return nil, fmt.Errorf("unknown context sensitivity %q", sensitivity)
	}
}

// Insensitive tokens use a single context for all the calls of a procedure. The token still counts the calls
// pushed, so that pushes and pops remain balanced.
type Insensitive struct {
	depth int
}

func (t Insensitive) Empty() Token             { return Insensitive{} }
func (t Insensitive) Push(*program.Call) Token { return Insensitive{depth: t.depth + 1} }
func (t Insensitive) Key() string              { return "*" }
func (t Insensitive) String() string           { return "<insensitive>" }

func (t Insensitive) Pop() (Token, error) {
	if t.depth == 0 {
		return nil, ErrEmptyToken
	}
	return Insensitive{depth: t.depth - 1}, nil
}

// KCall tokens distinguish contexts by the last k call sites (k-limited call strings). The whole stack is kept so
// that popping restores the sites that were beyond the limit.
type KCall struct {
	k     int
	stack []string
}

// NewKCall returns the empty k-limited call string token
func NewKCall(k int) KCall {
	return KCall{k: k}
}

func (t KCall) Empty() Token {
	return KCall{k: t.k}
}

func (t KCall) Push(c *program.Call) Token {
	return KCall{k: t.k, stack: push(t.stack, c.Site)}
}

func (t KCall) Pop() (Token, error) {
	if len(t.stack) == 0 {
		return nil, ErrEmptyToken
	}
	return KCall{k: t.k, stack: t.stack[:len(t.stack)-1]}, nil
}

func (t KCall) visible() []string {
	if len(t.stack) <= t.k {
		return t.stack
	}
	return t.stack[len(t.stack)-t.k:]
}

func (t KCall) Key() string {
	return fmt.Sprintf("%d-call[%s]", t.k, strings.Join(t.visible(), ","))
}

func (t KCall) String() string {
	return "[" + strings.Join(t.visible(), ", ") + "]"
}

// RecursionFree tokens distinguish contexts by the full call string, where recursive calls are collapsed: pushing a
// call site that is already in the context does not change the context.
type RecursionFree struct {
	// stack holds every call site pushed, and collapsed whether pushing it left the context unchanged
	stack     []string
	collapsed []bool
}

func (t RecursionFree) Empty() Token {
	return RecursionFree{}
}

func (t RecursionFree) Push(c *program.Call) Token {
	seen := false
	for i, s := range t.stack {
		if s == c.Site && !t.collapsed[i] {
			seen = true
			break
		}
	}
	return RecursionFree{stack: push(t.stack, c.Site), collapsed: push(t.collapsed, seen)}
}

func (t RecursionFree) Pop() (Token, error) {
	if len(t.stack) == 0 {
		return nil, ErrEmptyToken
	}
	n := len(t.stack) - 1
	return RecursionFree{stack: t.stack[:n], collapsed: t.collapsed[:n]}, nil
}

func (t RecursionFree) context() []string {
	var ctx []string
	for i, s := range t.stack {
		if !t.collapsed[i] {
			ctx = append(ctx, s)
		}
	}
	return ctx
}

func (t RecursionFree) Key() string {
	return "rf[" + strings.Join(t.context(), ",") + "]"
}

func (t RecursionFree) String() string {
	return "[" + strings.Join(t.context(), ", ") + "]"
}

// push returns a copy of s with x appended. Tokens share prefixes of their stacks, so they must never be appended to
// in place.
func push[T any](s []T, x T) []T {
	res := make([]T, len(s), len(s)+1)
	copy(res, s)
	return append(res, x)
}
