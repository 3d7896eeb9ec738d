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

// Package readers emits the instruction sequences that invoke a reader
// routine and store its result into a local, a field or a property, plus
// the null guard used by nullable reference types.
//
// Every builder shares one call-preparation step: single-slot generic
// substitution with the target's first type argument and injection of the
// default packing-mode argument for auto-packed types.
package readers

import (
	"errors"
	"fmt"

	"dirpx.dev/rsx/apis"
	"dirpx.dev/rsx/config"
	"dirpx.dev/rsx/emit"
	"dirpx.dev/rsx/utils/typeid"
	"dirpx.dev/rsx/utils/typeset"
)

var (
	// ErrUnresolvedDeserializer is returned when no routine reads a type.
	ErrUnresolvedDeserializer = errors.New("rsx(readers): no deserializer")
	// ErrUnsupportedGenericShape is returned when reading a type would need
	// more generic slots than supported.
	ErrUnsupportedGenericShape = errors.New("rsx(readers): unsupported generic shape")
)

// Builder emits read instructions. It is owned by one session.
type Builder struct {
	cfg      apis.Config
	res      apis.Resolver
	autopack *typeset.Set
	specials map[string]*apis.Routine
}

// New returns a Builder resolving routines through res. autopack and
// specials are consulted, never modified.
func New(cfg apis.Config, res apis.Resolver, autopack *typeset.Set, specials map[string]*apis.Routine) *Builder {
	return &Builder{cfg: cfg, res: res, autopack: autopack, specials: specials}
}

// Unresolved returns ErrUnresolvedDeserializer annotated with t.
func Unresolved(t *apis.TypeRef) error {
	return fmt.Errorf("%w for %s", ErrUnresolvedDeserializer, t.FullName())
}

// Bind returns r specialized for reading t. A generic routine has its single
// type parameter bound to t's first type argument. A non-generic routine is
// returned as is, unless it was generated for a different instance of the
// same generic definition.
func Bind(cfg apis.Config, r *apis.Routine, t *apis.TypeRef) (*apis.Routine, error) {
	if !r.HasGenericParameters() {
		if t.IsGenericInstance() && r.Return.IsGenericInstance() && r.Return.FullName() != t.FullName() {
			return nil, fmt.Errorf("%w: %s is bound to %s", ErrUnsupportedGenericShape, typeid.Of(t), r.Return.FullName())
		}
		return r, nil
	}
	if !t.IsGenericInstance() {
		return nil, fmt.Errorf("%w: generic %s cannot read %s", ErrUnsupportedGenericShape, r.Name, t.FullName())
	}
	slots := config.GenericArity(cfg)
	if slots < 1 || len(r.TypeParams) != 1 || len(t.Args) != 1 {
		return nil, fmt.Errorf("%w: %s needs %d generic slots", ErrUnsupportedGenericShape, t.FullName(), max(len(r.TypeParams), len(t.Args)))
	}
	return r.MakeGenericInstance(t.Args[0])
}

// prepared is the outcome of the shared call preparation.
type prepared struct {
	call *emit.Inst
	pack *emit.Inst
}

func (b *Builder) prepare(r *apis.Routine, t *apis.TypeRef) (prepared, error) {
	if r == nil {
		return prepared{}, Unresolved(t)
	}
	bound, err := Bind(b.cfg, r, t)
	if err != nil {
		return prepared{}, err
	}
	p := prepared{call: invoke(bound)}
	if id := typeid.Of(t); b.autopack.Has(id) {
		p.pack = emit.LoadInt(int64(config.DefaultPackMode(b.cfg, id)))
	}
	return p, nil
}

// args returns the reader load, the optional packing argument and the call.
func (p prepared) args(readerArg int) []*emit.Inst {
	out := []*emit.Inst{emit.LoadArg(readerArg)}
	if p.pack != nil {
		out = append(out, p.pack)
	}
	return append(out, p.call)
}

// invoke calls r through the reader when it is instanced.
func invoke(r *apis.Routine) *emit.Inst {
	if r.IsInstanced() {
		return emit.CallVirt(r)
	}
	return emit.Call(r)
}

// loadObject loads obj by address for value types and by value otherwise.
func loadObject(obj *emit.Local) *emit.Inst {
	if obj.Type.ValueType {
		return emit.LoadLocalAddr(obj)
	}
	return emit.LoadLocal(obj)
}

// BuildReadIntoLocal resolves the reader for t and returns the instructions
// that read a value into a freshly declared local of m. The instructions are
// not appended; the caller places them.
func (b *Builder) BuildReadIntoLocal(m *emit.Method, readerArg int, t *apis.TypeRef) ([]*emit.Inst, *emit.Local, error) {
	r, _ := b.res.Resolve(typeid.Of(t))
	p, err := b.prepare(r, t)
	if err != nil {
		return nil, nil, err
	}
	l := m.Body.NewLocal(t)
	return append(p.args(readerArg), emit.StoreLocal(l)), l, nil
}

// BuildReadIntoField appends the instructions that read a value with r and
// store it into field f of obj.
func (b *Builder) BuildReadIntoField(m *emit.Method, readerArg int, r *apis.Routine, obj *emit.Local, f *apis.Field) error {
	p, err := b.prepare(r, f.Type)
	if err != nil {
		return fmt.Errorf("field %s: %w", f.Name, err)
	}
	m.Body.Emit(loadObject(obj))
	m.Body.Emit(p.args(readerArg)...)
	m.Body.Emit(emit.StoreField(f))
	return nil
}

// BuildReadIntoProperty appends the instructions that read a value of type
// t with r and pass it to setter on obj.
func (b *Builder) BuildReadIntoProperty(m *emit.Method, readerArg int, r *apis.Routine, obj *emit.Local, setter *apis.Routine, t *apis.TypeRef) error {
	p, err := b.prepare(r, t)
	if err != nil {
		return fmt.Errorf("property %s: %w", setter.Name, err)
	}
	m.Body.Emit(loadObject(obj))
	m.Body.Emit(p.args(readerArg)...)
	m.Body.Emit(invoke(setter))
	return nil
}

// BuildReadBool appends a boolean read into l.
func (b *Builder) BuildReadBool(m *emit.Method, readerArg int, l *emit.Local) error {
	boolType := apis.Basic("bool")
	r, _ := b.res.Resolve(typeid.Of(boolType))
	p, err := b.prepare(r, boolType)
	if err != nil {
		return err
	}
	m.Body.Emit(p.args(readerArg)...)
	m.Body.Emit(emit.StoreLocal(l))
	return nil
}

// BuildReadPackedWhole appends a packed whole-number read, narrowed to
// int32, into l.
func (b *Builder) BuildReadPackedWhole(m *emit.Method, readerArg int, l *emit.Local) error {
	r, ok := b.specials[b.cfg.PackedWholeRoutine]
	if !ok {
		return fmt.Errorf("%w: special %s", ErrUnresolvedDeserializer, b.cfg.PackedWholeRoutine)
	}
	m.Body.Emit(emit.LoadArg(readerArg), invoke(r), emit.ConvInt32(), emit.StoreLocal(l))
	return nil
}

// BuildNullGuard appends a conditional early return of null. With useBool a
// boolean flag is read and false means absent; otherwise a packed whole
// number is read and -1 means absent. When flag is nil a local of the
// matching type is declared. The flag local is returned.
func (b *Builder) BuildNullGuard(m *emit.Method, readerArg int, flag *emit.Local, useBool bool) (*emit.Local, error) {
	end := emit.Nop()
	if useBool {
		if flag == nil {
			flag = m.Body.NewLocal(apis.Basic("bool"))
		}
		if err := b.BuildReadBool(m, readerArg, flag); err != nil {
			return nil, err
		}
		// Present values skip the early return.
		m.Body.Emit(emit.LoadLocal(flag), emit.BranchTrue(end))
	} else {
		if flag == nil {
			flag = m.Body.NewLocal(apis.Basic("int32"))
		}
		if err := b.BuildReadPackedWhole(m, readerArg, flag); err != nil {
			return nil, err
		}
		m.Body.Emit(emit.LoadLocal(flag), emit.LoadInt(-1), emit.BranchNotEqual(end))
	}
	m.Body.Emit(emit.LoadNull(), emit.Return(), end)
	return flag, nil
}
