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

package vm_test

import (
	"errors"
	"testing"

	"dirpx.dev/rsx/apis"
	"dirpx.dev/rsx/catalog"
	"dirpx.dev/rsx/config"
	"dirpx.dev/rsx/container"
	"dirpx.dev/rsx/dispatch"
	"dirpx.dev/rsx/emit"
	"dirpx.dev/rsx/utils/typeid"
	"dirpx.dev/rsx/utils/typeset"
	"dirpx.dev/rsx/vm"
	"dirpx.dev/rsx/wire"
)

func primitive(t *testing.T, name string) *apis.Routine {
	t.Helper()
	cat, err := catalog.Default()
	if err != nil {
		t.Fatalf("catalog.Default: %v", err)
	}
	r, ok := cat.Lookup(name)
	if !ok {
		t.Fatalf("catalog has no %s", name)
	}
	return r
}

func TestInvokeHostPrimitive(t *testing.T) {
	m := vm.New(config.DefaultConfig())

	var w wire.Writer
	w.WriteInt32(-5, apis.Packed)

	got, err := m.Invoke(primitive(t, "ReadInt32"), wire.NewReader(w.Bytes()), int64(apis.Packed))
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if got != int32(-5) {
		t.Fatalf("got %v, want -5", got)
	}
}

func TestInvokeUnknownRoutine(t *testing.T) {
	m := vm.New(config.DefaultConfig())
	r := &apis.Routine{Name: "ReadNothing", Owner: typeid.MustParse("wire.Reader")}
	if _, err := m.Invoke(r); !errors.Is(err, vm.ErrUnknownRoutine) {
		t.Fatalf("got %v, want ErrUnknownRoutine", err)
	}
}

// pointReader emits a reader for a value type with one packed int32 field.
func pointReader(t *testing.T, c *container.Container, point *apis.TypeRef) *emit.Method {
	t.Helper()
	reader := typeid.MustParse("wire.Reader")
	meth, err := c.NewMethod("Read___game_Point", []apis.Param{{Name: "reader", Type: reader}}, point)
	if err != nil {
		t.Fatalf("NewMethod: %v", err)
	}
	obj := meth.Body.NewLocal(point)
	meth.Body.Emit(
		emit.NewObject(point),
		emit.StoreLocal(obj),
		emit.LoadLocalAddr(obj),
		emit.LoadArg(0),
		emit.LoadInt(int64(apis.Packed)),
		emit.CallVirt(primitive(t, "ReadInt32")),
		emit.StoreField(point.Fields[0]),
		emit.LoadLocal(obj),
		emit.Return(),
	)
	return meth
}

func TestLoadRunsInitAndDecodes(t *testing.T) {
	cfg := config.DefaultConfig()
	point := typeid.MustParse("game.Point")
	point.Kind, point.ValueType = apis.KindStruct, true
	point.Fields = []*apis.Field{{Name: "X", Type: apis.Basic("int32")}}

	c := container.New(cfg)
	meth := pointReader(t, c, point)
	d := dispatch.New(cfg, c, typeset.New(), typeid.MustParse("wire.Reader"), typeid.MustParse("wire.AutoPackType"))
	if err := d.Install(meth.Ref, true); err != nil {
		t.Fatalf("Install: %v", err)
	}

	m := vm.New(cfg)
	if err := m.Load(c); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !m.Installed(point) {
		t.Fatalf("init did not install a reader for %s", point)
	}

	var w wire.Writer
	w.WriteInt32(42, apis.Packed)
	v, err := m.Decode(point, w.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	obj, ok := v.(*vm.Object)
	if !ok {
		t.Fatalf("got %T, want *vm.Object", v)
	}
	if obj.Fields["X"] != int32(42) {
		t.Fatalf("X = %v, want 42", obj.Fields["X"])
	}
}

func TestDecodeWithoutReader(t *testing.T) {
	m := vm.New(config.DefaultConfig())
	if _, err := m.Decode(typeid.MustParse("game.Missing"), nil); !errors.Is(err, vm.ErrNoReader) {
		t.Fatalf("got %v, want ErrNoReader", err)
	}
}

// guarded emits a reader returning null when the guard says absent and the
// string "present" otherwise.
func guarded(t *testing.T, useBool bool) (*container.Container, *emit.Method) {
	t.Helper()
	cfg := config.DefaultConfig()
	c := container.New(cfg)
	reader := typeid.MustParse("wire.Reader")
	meth, err := c.NewMethod("Read___guarded", []apis.Param{{Name: "reader", Type: reader}}, apis.Basic("string"))
	if err != nil {
		t.Fatalf("NewMethod: %v", err)
	}
	end := emit.Nop()
	if useBool {
		flag := meth.Body.NewLocal(apis.Basic("bool"))
		meth.Body.Emit(
			emit.LoadArg(0), emit.CallVirt(primitive(t, "ReadBool")), emit.StoreLocal(flag),
			emit.LoadLocal(flag), emit.BranchTrue(end),
		)
	} else {
		flag := meth.Body.NewLocal(apis.Basic("int32"))
		meth.Body.Emit(
			emit.LoadArg(0), emit.CallVirt(primitive(t, "ReadPackedWhole")), emit.ConvInt32(), emit.StoreLocal(flag),
			emit.LoadLocal(flag), emit.LoadInt(-1), emit.BranchNotEqual(end),
		)
	}
	meth.Body.Emit(emit.LoadNull(), emit.Return(), end, emit.LoadArg(0), emit.CallVirt(primitive(t, "ReadString")), emit.Return())
	c.Seal()
	return c, meth
}

func TestNullGuards(t *testing.T) {
	cases := []struct {
		name    string
		useBool bool
		write   func(w *wire.Writer)
		want    any
	}{
		{"bool false is null", true, func(w *wire.Writer) { w.WriteBool(false) }, nil},
		{"bool true reads on", true, func(w *wire.Writer) { w.WriteBool(true); w.WriteString("present") }, "present"},
		{"packed -1 is null", false, func(w *wire.Writer) { w.WriteAbsent() }, nil},
		{"packed 0 reads on", false, func(w *wire.Writer) { w.WritePackedWhole(0); w.WriteString("present") }, "present"},
		{"packed 3 reads on", false, func(w *wire.Writer) { w.WritePackedWhole(3); w.WriteString("present") }, "present"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, meth := guarded(t, tc.useBool)
			m := vm.New(config.DefaultConfig())
			if err := m.Load(c); err != nil {
				t.Fatalf("Load: %v", err)
			}
			var w wire.Writer
			tc.write(&w)
			got, err := m.Invoke(meth.Ref, wire.NewReader(w.Bytes()))
			if err != nil {
				t.Fatalf("Invoke: %v", err)
			}
			if got != tc.want {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestStackUnderflow(t *testing.T) {
	cfg := config.DefaultConfig()
	c := container.New(cfg)
	meth, err := c.NewMethod("Broken", nil, apis.Basic("int32"))
	if err != nil {
		t.Fatalf("NewMethod: %v", err)
	}
	meth.Body.Emit(emit.ConvInt32(), emit.Return())
	c.Seal()

	m := vm.New(cfg)
	if err := m.Load(c); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := m.Invoke(meth.Ref); !errors.Is(err, vm.ErrStackUnderflow) {
		t.Fatalf("got %v, want ErrStackUnderflow", err)
	}
}

func TestCallDepth(t *testing.T) {
	cfg := config.DefaultConfig()
	c := container.New(cfg)
	meth, err := c.NewMethod("Loop", nil, nil)
	if err != nil {
		t.Fatalf("NewMethod: %v", err)
	}
	meth.Body.Emit(emit.Call(meth.Ref), emit.Return())
	c.Seal()

	m := vm.New(cfg, vm.WithMaxDepth(8))
	if err := m.Load(c); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := m.Invoke(meth.Ref); !errors.Is(err, vm.ErrCallDepth) {
		t.Fatalf("got %v, want ErrCallDepth", err)
	}
}

func TestPropertySetter(t *testing.T) {
	m := vm.New(config.DefaultConfig())
	owner := typeid.MustParse("game.Widget")
	setter := &apis.Routine{Name: "set_Name", Owner: owner, Receiver: owner,
		Params: []apis.Param{{Name: "value", Type: apis.Basic("string")}}}
	m.Bind(setter.Key(), vm.PropertySetter("Name"))

	obj := vm.NewObject(owner)
	if _, err := m.Invoke(setter, obj, "gear"); err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if obj.Fields["Name"] != "gear" {
		t.Fatalf("Name = %v, want gear", obj.Fields["Name"])
	}
}
