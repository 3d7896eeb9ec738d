/*
   Copyright 2025 The DIRPX Authors.

   Licensed under the Apache License, Version 2.0 (the "License");
   you may not use this file except in compliance with the License.
   You may obtain a copy of the License at

       http://www.apache.org/licenses/LICENSE-2.0

   Unless required by applicable law or agreed to in writing, software
   distributed under the License is distributed on an "AS IS" BASIS,
   WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
   See the License for the specific language governing permissions and
   limitations under the License.
*/

package typeset_test

import (
	"slices"
	"testing"

	"dirpx.dev/rsx/utils/typeset"
)

func TestSet(t *testing.T) {
	var s typeset.Set
	if s.Has("int32") || s.Len() != 0 {
		t.Fatalf("zero set should be empty")
	}
	if !s.Add("int32") {
		t.Fatalf("first Add should report true")
	}
	if s.Add("int32") {
		t.Fatalf("second Add should report false")
	}
	s.Add("bool")
	if got, want := s.Keys(), []string{"bool", "int32"}; !slices.Equal(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}

	var nilSet *typeset.Set
	if nilSet.Has("x") || nilSet.Len() != 0 || nilSet.Keys() != nil {
		t.Fatalf("nil set should behave as empty")
	}
	if typeset.New("a", "b", "a").Len() != 2 {
		t.Fatalf("New should deduplicate")
	}
}
