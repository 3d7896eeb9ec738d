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

package typeid_test

import (
	"errors"
	"testing"

	"dirpx.dev/rsx/apis"
	"dirpx.dev/rsx/utils/typeid"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"int32", "int32"},
		{"List<int>", "List"},
		{"List<T>", "List"},
		{"sys.Dictionary<string,sys.List<int>>", "sys.Dictionary"},
		{"List<int>[]", "List[]"},
		{"int32[]", "int32[]"},
		{"*game.Box<T>", "*game.Box"},
		{"game.Pair[int,string]", "game.Pair"},
		{"  game.Widget ", "game.Widget"},
	}
	for _, tc := range cases {
		if got := typeid.Normalize(tc.in); got != tc.want {
			t.Fatalf("Normalize(%q): got %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestOf_SubstitutedGenericSharesIdentity(t *testing.T) {
	def := typeid.MustParse("List<T>", "T")
	inst := def.Substitute(map[string]*apis.TypeRef{"T": apis.Basic("int")})

	if got := inst.FullName(); got != "List<int>" {
		t.Fatalf("substituted name: got %q, want %q", got, "List<int>")
	}
	if typeid.Of(def) != typeid.Of(inst) {
		t.Fatalf("identities differ: %q vs %q", typeid.Of(def), typeid.Of(inst))
	}
	if got := typeid.Of(typeid.MustParse("List<int>")); got != typeid.Of(def) {
		t.Fatalf("got %q, want %q", got, typeid.Of(def))
	}
	if typeid.Of(nil) != "" {
		t.Fatalf("Of(nil) should be empty")
	}
}

func TestParse(t *testing.T) {
	cases := []struct {
		expr   string
		params []string
		full   string
		kind   apis.Kind
	}{
		{"int32", nil, "int32", apis.KindBasic},
		{"wire.AutoPackType", nil, "wire.AutoPackType", apis.KindClass},
		{"T", []string{"T"}, "T", apis.KindGenericParam},
		{"T[]", []string{"T"}, "T[]", apis.KindArray},
		{"*game.Widget", nil, "*game.Widget", apis.KindPointer},
		{"game.Box< game.Widget >", nil, "game.Box<game.Widget>", apis.KindClass},
		{"sys.Dict<string, sys.List<int32>>", nil, "sys.Dict<string,sys.List<int32>>", apis.KindClass},
	}
	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			got, err := typeid.Parse(tc.expr, tc.params...)
			if err != nil {
				t.Fatalf("Parse(%q) returned error: %v", tc.expr, err)
			}
			if got.FullName() != tc.full {
				t.Fatalf("got %q, want %q", got.FullName(), tc.full)
			}
			if got.Kind != tc.kind {
				t.Fatalf("kind: got %v, want %v", got.Kind, tc.kind)
			}
		})
	}
}

func TestParse_Errors(t *testing.T) {
	for _, expr := range []string{"", "game.", "List<int", "List<int>>", "int32<T>", "<int>"} {
		if _, err := typeid.Parse(expr); !errors.Is(err, typeid.ErrSyntax) {
			t.Fatalf("Parse(%q): got %v, want ErrSyntax", expr, err)
		}
	}
}
