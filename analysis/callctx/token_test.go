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

package callctx

import (
	"errors"
	"testing"

	"github.com/awslabs/ar-go-absint/analysis/config"
	"github.com/awslabs/ar-go-absint/analysis/program"
)

func call(site string) *program.Call {
	return &program.Call{Site: site, Targets: []string{"f"}}
}

func TestEmptyPop(t *testing.T) {
	for _, s := range []config.ContextSensitivity{config.ContextInsensitive, config.KCallContext,
		config.RecursionFreeContext} {
		t.Run(string(s), func(t *testing.T) {
			tok, err := New(s, 1)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := tok.Pop(); !errors.Is(err, ErrEmptyToken) {
				t.Errorf("expected ErrEmptyToken, got %v", err)
			}
			pushed := tok.Push(call("a"))
			popped, err := pushed.Pop()
			if err != nil {
				t.Fatal(err)
			}
			if !Equal(popped, tok) || !Equal(popped, tok.Empty()) {
				t.Errorf("push then pop should give back %s, got %s", tok, popped)
			}
		})
	}
	if _, err := New("whatever", 0); err == nil {
		t.Errorf("expected an error for an unknown sensitivity")
	}
}

func TestInsensitive(t *testing.T) {
	tok := Insensitive{}
	if !Equal(tok, tok.Push(call("a")).Push(call("b"))) {
		t.Errorf("insensitive tokens should all be equal")
	}
}

func TestKCall(t *testing.T) {
	tok := NewKCall(2)
	abc := tok.Push(call("a")).Push(call("b")).Push(call("c"))
	xbc := tok.Push(call("x")).Push(call("b")).Push(call("c"))
	if !Equal(abc, xbc) {
		t.Errorf("only the last 2 call sites should matter: %s vs %s", abc.Key(), xbc.Key())
	}
	ab, _ := abc.Pop()
	xb, _ := xbc.Pop()
	if Equal(ab, xb) {
		t.Errorf("popping should restore the call sites beyond the limit: %s", ab.Key())
	}
	if got := abc.String(); got != "[b, c]" {
		t.Errorf("unexpected string %s", got)
	}
	if Equal(tok, Insensitive{}) {
		t.Errorf("tokens of different kinds should differ")
	}
}

func TestRecursionFree(t *testing.T) {
	tok := RecursionFree{}
	a := tok.Push(call("a"))
	ab := a.Push(call("b"))
	aba := ab.Push(call("a"))
	if !Equal(ab, aba) {
		t.Errorf("recursive call should not change the context: %s vs %s", ab.Key(), aba.Key())
	}
	abab := aba.Push(call("b"))
	if !Equal(ab, abab) {
		t.Errorf("recursive calls should collapse: %s", abab.Key())
	}
	back, _ := aba.Pop()
	if !Equal(back, ab) {
		t.Errorf("unexpected pop %s", back.Key())
	}
	back, _ = back.Pop()
	if !Equal(back, a) {
		t.Errorf("unexpected pop %s", back.Key())
	}
	if Equal(a, tok.Push(call("b"))) {
		t.Errorf("different call strings should differ")
	}
	// shared prefixes are not modified by pushes
	a.Push(call("c"))
	if !Equal(ab, a.Push(call("b"))) {
		t.Errorf("pushing on a token should not affect other tokens")
	}
}
