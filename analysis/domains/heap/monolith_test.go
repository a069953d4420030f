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

package heap

import (
	"testing"

	"github.com/awslabs/ar-go-absint/analysis/lattice"
)

func TestLaws(t *testing.T) {
	var m Monolith
	if err := lattice.CheckLaws([]Monolith{m.Bottom(), m.Top()}); err != nil {
		t.Fatal(err)
	}
	if !m.IsTop() {
		t.Errorf("the zero value should be top")
	}
}
