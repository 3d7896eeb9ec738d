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

package dispatch_test

import (
	"errors"
	"slices"
	"testing"

	"dirpx.dev/rsx/apis"
	"dirpx.dev/rsx/config"
	"dirpx.dev/rsx/container"
	"dirpx.dev/rsx/dispatch"
	"dirpx.dev/rsx/emit"
	"dirpx.dev/rsx/registry"
	"dirpx.dev/rsx/utils/typeid"
	"dirpx.dev/rsx/utils/typeset"
)

var (
	reader  = typeid.MustParse("wire.Reader")
	packing = typeid.MustParse("wire.AutoPackType")
)

func static(name, ret string) *apis.Routine {
	return &apis.Routine{
		Name:      name,
		Owner:     typeid.MustParse("gen.Readers"),
		Extension: true,
		Params:    []apis.Param{{Name: "reader", Type: reader}},
		Return:    typeid.MustParse(ret),
	}
}

func setup() (*dispatch.Emitter, *container.Container) {
	cfg := config.DefaultConfig()
	c := container.New(cfg)
	return dispatch.New(cfg, c, typeset.New("int32"), reader, packing), c
}

func ops(b *emit.Body) []emit.Op {
	out := make([]emit.Op, 0, b.Len())
	for _, in := range b.Insts {
		out = append(out, in.Op)
	}
	return out
}

func TestInstall_ExactlyOnce(t *testing.T) {
	e, c := setup()
	r := static("ReadBool", "bool")

	if err := e.Install(r, true); err != nil {
		t.Fatalf("Install: %v", err)
	}
	if err := e.Install(static("ReadBoolAgain", "bool"), true); !errors.Is(err, dispatch.ErrDuplicateInstallation) {
		t.Fatalf("second Install: got %v, want ErrDuplicateInstallation", err)
	}
	if err := e.Install(static("ReadString", "string"), true); err != nil {
		t.Fatalf("Install(string): %v", err)
	}

	if !e.Delegated(apis.Basic("bool")) || !e.Delegated(apis.Basic("string")) || e.Count() != 2 {
		t.Fatalf("both types must be delegated, count=%d", e.Count())
	}

	want := []emit.Op{
		emit.OpLoadNull, emit.OpLoadFunc, emit.OpNewCallable, emit.OpCall,
		emit.OpLoadNull, emit.OpLoadFunc, emit.OpNewCallable, emit.OpCall,
		emit.OpReturn,
	}
	if got := ops(c.Init().Body); !slices.Equal(got, want) {
		t.Fatalf("init ops = %v, want %v", got, want)
	}
	if !c.Sealed() {
		t.Fatalf("container must be sealed after Install")
	}
}

func TestInstall_CallableShape(t *testing.T) {
	e, c := setup()
	if err := e.Install(static("ReadInt32", "int32"), true); err != nil {
		t.Fatalf("Install(int32): %v", err)
	}
	if err := e.Install(static("ReadBool", "bool"), true); err != nil {
		t.Fatalf("Install(bool): %v", err)
	}

	insts := c.Init().Body.Insts
	packed, plain := insts[2], insts[6]
	if got := packed.Type.FullName(); got != "Func<wire.Reader,wire.AutoPackType,int32>" {
		t.Fatalf("autopacked callable = %q", got)
	}
	if got := plain.Type.FullName(); got != "Func<wire.Reader,bool>" {
		t.Fatalf("plain callable = %q", got)
	}
	if got := insts[3].Routine.Key(); got != "wire.GenericReader::SetReadAutoPack" {
		t.Fatalf("autopacked setter = %q", got)
	}
	if got := insts[7].Routine.Owner.FullName(); got != "wire.GenericReader<bool>" {
		t.Fatalf("setter owner = %q", got)
	}
	if insts[1].Routine.Name != "ReadInt32" {
		t.Fatalf("load.func does not reference the routine")
	}
}

func TestInstall_SkipsGenericInstanced(t *testing.T) {
	e, c := setup()
	generic := &apis.Routine{Name: "ReadArray", Owner: reader, Receiver: reader,
		Return: typeid.MustParse("T[]", "T"), TypeParams: []string{"T"}}

	if err := e.Install(generic, false); err != nil {
		t.Fatalf("Install(generic instanced): %v", err)
	}
	if e.Count() != 0 || c.Init().Body.Len() != 0 {
		t.Fatalf("generic instanced routine must be skipped")
	}
	if err := e.Install(&apis.Routine{Name: "ReadNothing"}, true); !errors.Is(err, dispatch.ErrNoDataType) {
		t.Fatalf("got %v, want ErrNoDataType", err)
	}
}

func TestInstallAll_Idempotent(t *testing.T) {
	e, c := setup()
	reg := registry.New()
	_ = reg.Add("bool", static("ReadBool", "bool"), false, false)
	_ = reg.Add("int32", static("ReadInt32", "int32"), false, false)
	_ = reg.Add("string", static("ReadString", "string"), true, false)

	if err := e.InstallAll(reg); err != nil {
		t.Fatalf("InstallAll: %v", err)
	}
	n := c.Init().Body.Len()
	if err := e.InstallAll(reg); err != nil {
		t.Fatalf("second InstallAll: %v", err)
	}
	if c.Init().Body.Len() != n || e.Count() != 2 {
		t.Fatalf("second InstallAll changed the init body (%d -> %d)", n, c.Init().Body.Len())
	}
	if e.Delegated(apis.Basic("string")) {
		t.Fatalf("instanced entries must not be installed by InstallAll")
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}
