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

package extension_test

import (
	"slices"
	"testing"

	"dirpx.dev/rsx/apis"
	"dirpx.dev/rsx/config"
	"dirpx.dev/rsx/container"
	"dirpx.dev/rsx/emit"
	"dirpx.dev/rsx/extension"
	"dirpx.dev/rsx/registry"
	"dirpx.dev/rsx/utils/typeid"
)

var reader = typeid.MustParse("wire.Reader")

func instanced(name, ret string, typeParams []string, params ...apis.Param) *apis.Routine {
	return &apis.Routine{
		Name:       name,
		Owner:      reader,
		Receiver:   reader,
		Params:     params,
		Return:     typeid.MustParse(ret, typeParams...),
		TypeParams: typeParams,
	}
}

func ops(b *emit.Body) []emit.Op {
	out := make([]emit.Op, 0, b.Len())
	for _, in := range b.Insts {
		out = append(out, in.Op)
	}
	return out
}

func TestSynthesize(t *testing.T) {
	cfg := config.DefaultConfig()
	reg := registry.New()
	c := container.New(cfg)

	pack := apis.Param{Name: "packType", Type: typeid.MustParse("wire.AutoPackType")}
	readInt := instanced("ReadInt32", "int32", nil, pack)
	handWritten := &apis.Routine{Name: "ReadBoolFast", Owner: typeid.MustParse("game.Readers"), Extension: true,
		Params: []apis.Param{{Name: "reader", Type: reader}}, Return: apis.Basic("bool")}

	_ = reg.Add("int32", readInt, true, false)
	_ = reg.Add("bool", instanced("ReadBool", "bool", nil), true, false)
	_ = reg.Add("bool", handWritten, false, false)
	_ = reg.Add("T[]", instanced("ReadList", "T[]", []string{"T"}), true, false)

	s := extension.New(cfg, reg, c, reader)
	made, err := s.Synthesize()
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if len(made) != 1 || made[0].Name != "InstancedExtension___ReadInt32" {
		t.Fatalf("made = %v, want only InstancedExtension___ReadInt32", made)
	}

	ext := made[0]
	if !ext.Extension || ext.IsInstanced() || ext.Owner != c.Type() {
		t.Fatalf("extension routine has wrong shape: %s", ext)
	}
	if len(ext.Params) != 2 || ext.Params[0].Type != reader || ext.Params[1].Type != pack.Type {
		t.Fatalf("params = %v, want (reader, packType)", ext.Params)
	}
	if got, _ := reg.Lookup("int32", false); got != ext {
		t.Fatalf("static int32 entry = %v, want the extension", got)
	}
	if got, _ := reg.Lookup("bool", false); got != handWritten {
		t.Fatalf("covered static entry was replaced: %v", got)
	}

	m, ok := c.Lookup(ext.Name)
	if !ok {
		t.Fatalf("extension method not added to container")
	}
	want := []emit.Op{emit.OpLoadArg, emit.OpLoadArg, emit.OpCallVirt, emit.OpReturn}
	if got := ops(m.Body); !slices.Equal(got, want) {
		t.Fatalf("body ops = %v, want %v", got, want)
	}
	if m.Body.Insts[1].Int != 1 || m.Body.Insts[2].Routine != readInt {
		t.Fatalf("body does not forward arguments to the instanced routine")
	}

	// A second run finds every identity covered.
	again, err := s.Synthesize()
	if err != nil || len(again) != 0 {
		t.Fatalf("second Synthesize = (%v,%v), want nothing new", again, err)
	}
}

func TestWrap_RejectsStatic(t *testing.T) {
	cfg := config.DefaultConfig()
	s := extension.New(cfg, registry.New(), container.New(cfg), reader)
	if _, err := s.Wrap(&apis.Routine{Name: "ReadX", Return: apis.Basic("bool")}); err == nil {
		t.Fatalf("Wrap(static) should fail")
	}
}
