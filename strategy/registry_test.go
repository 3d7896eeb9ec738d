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

package strategy_test

import (
	"testing"

	"dirpx.dev/rsx/apis"
	"dirpx.dev/rsx/registry"
	"dirpx.dev/rsx/strategy"
)

func routine(name string) *apis.Routine {
	return &apis.Routine{
		Name:   name,
		Owner:  &apis.TypeRef{Namespace: "wire", Name: "Reader", Kind: apis.KindClass},
		Return: apis.Basic("int32"),
	}
}

func TestRegistryStrategy_SidesAreIndependent(t *testing.T) {
	reg := registry.New()
	st := routine("ReadInt32Static")
	in := routine("ReadInt32")
	if err := reg.Add("int32", st, false, false); err != nil {
		t.Fatalf("Add(static): %v", err)
	}
	if err := reg.Add("int32", in, true, false); err != nil {
		t.Fatalf("Add(instanced): %v", err)
	}
	_ = reg.Add("bool", routine("ReadBool"), true, false)

	cases := []struct {
		name    string
		s       apis.Strategy
		id      string
		want    *apis.Routine
		handled bool
	}{
		{"static hit", strategy.NewStatic(reg), "int32", st, true},
		{"instanced hit", strategy.NewInstanced(reg), "int32", in, true},
		{"static miss", strategy.NewStatic(reg), "bool", nil, false},
		{"empty id", strategy.NewInstanced(reg), "", nil, false},
		{"nil registry", strategy.NewStatic(nil), "int32", nil, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tc.s.TryResolve(tc.id)
			if ok != tc.handled || got != tc.want {
				t.Fatalf("TryResolve(%q) = (%v,%v), want (%v,%v)", tc.id, got, ok, tc.want, tc.handled)
			}
		})
	}
}
