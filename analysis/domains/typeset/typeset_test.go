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

package typeset

import (
	"testing"

	"github.com/awslabs/ar-go-absint/analysis/lattice"
	"github.com/awslabs/ar-go-absint/analysis/symbolic"
)

func TestLaws(t *testing.T) {
	if err := lattice.CheckLaws([]Types{None, Int, Bool, Any}); err != nil {
		t.Fatal(err)
	}
}

func TestEval(t *testing.T) {
	tests := []struct {
		op      symbolic.BinaryOp
		l, r    Types
		want    Types
		wantErr bool
	}{
		{symbolic.Add, Int, Int, Int, false},
		{symbolic.Add, Int, Bool, None, true},
		{symbolic.Add, Any, Int, None, true},
		{symbolic.Lt, Int, Int, Bool, false},
		{symbolic.Eq, Bool, Int, Bool, false},
		{symbolic.And, Bool, Bool, Bool, false},
		{symbolic.Or, Int, Bool, None, true},
		{symbolic.Mul, None, Bool, None, false},
	}
	for _, test := range tests {
		got, err := Any.EvalBinary(test.op, test.l, test.r)
		if (err != nil) != test.wantErr {
			t.Errorf("%s %s %s: error %v, want error: %v", test.l, test.op, test.r, err, test.wantErr)
		}
		if err == nil && got != test.want {
			t.Errorf("%s %s %s = %s, want %s", test.l, test.op, test.r, got, test.want)
		}
	}
	if _, err := Any.EvalUnary(symbolic.Neg, Bool); err == nil {
		t.Errorf("expected an error negating a boolean")
	}
	if c, _ := Any.EvalConstant(symbolic.BoolConst(true)); c != Bool {
		t.Errorf("unexpected type of true: %s", c)
	}
}
