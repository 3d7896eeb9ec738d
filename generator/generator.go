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

// Package generator synthesizes reader methods for composite types: structs
// and classes read member by member, pointers through their element reader
// and arrays through the array primitive.
//
// # Registration
//
// A method is registered before its body is built, so a type that refers
// to itself resolves to the method being built. Every method created while
// an outermost CreateReader call is running is journaled; if any of them
// fails, the journal is rolled back from that point so no method that
// refers to a removed one survives. Dispatch entries are installed only
// once the outermost call succeeds.
package generator

import (
	"fmt"
	"log/slog"
	"strings"

	"dirpx.dev/rsx/apis"
	"dirpx.dev/rsx/config"
	"dirpx.dev/rsx/container"
	"dirpx.dev/rsx/dispatch"
	"dirpx.dev/rsx/emit"
	"dirpx.dev/rsx/readers"
	"dirpx.dev/rsx/utils/typeid"
)

// Engine resolves member types, creating readers on demand.
type Engine interface {
	GetOrCreateReadMethodReference(t *apis.TypeRef) (*apis.Routine, error)
}

// Deps are the session components a Generator works with.
type Deps struct {
	Engine    Engine
	Registry  apis.Registry
	Container *container.Container
	Readers   *readers.Builder
	Dispatch  *dispatch.Emitter
	// Reader is the primitive reader type, the single parameter of every
	// generated method.
	Reader *apis.TypeRef
	// Specials are the multi-purpose primitives by name.
	Specials map[string]*apis.Routine
	Logger   *slog.Logger
}

type entry struct {
	id string
	r  *apis.Routine
}

// Generator implements apis.Generator. It is owned by one session.
type Generator struct {
	cfg     apis.Config
	d       Deps
	depth   int
	journal []entry
	created int
}

var _ apis.Generator = (*Generator)(nil)

// New returns a Generator.
func New(cfg apis.Config, d Deps) *Generator {
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	return &Generator{cfg: cfg, d: d}
}

// Created returns the number of readers generated and kept.
func (g *Generator) Created() int { return g.created }

// MethodName returns the name of the generated reader for t.
func (g *Generator) MethodName(t *apis.TypeRef) string {
	return g.cfg.GeneratedPrefix + mangle(t.FullName())
}

// mangle maps a full type name onto an identifier.
func mangle(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r == '[' || r == ']':
			return 'A'
		case r == '*':
			return 'P'
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		}
		return '_'
	}, name)
}

// CreateReader generates a reader for t. It returns (nil, nil) for types
// it does not generate: builtins, open generic types and types marked with
// the non-serialized attribute.
func (g *Generator) CreateReader(t *apis.TypeRef) (*apis.Routine, error) {
	switch {
	case t == nil, t.Kind == apis.KindBasic, t.ContainsGenericParameter():
		return nil, nil
	case t.HasAttribute(g.cfg.NonSerializedAttribute):
		return nil, nil
	case t.Kind == apis.KindMap, len(t.Args) > config.GenericArity(g.cfg):
		return nil, fmt.Errorf("%w: %s", readers.ErrUnsupportedGenericShape, t.FullName())
	}

	m, err := g.d.Container.NewMethod(g.MethodName(t), []apis.Param{{Name: "reader", Type: g.d.Reader}}, t)
	if err != nil {
		return nil, err
	}
	m.Ref.Extension = true
	id := typeid.Of(t)
	if err := g.d.Registry.Add(id, m.Ref, false, false); err != nil {
		g.d.Container.Remove(m.Ref.Name)
		return nil, err
	}

	start := len(g.journal)
	g.journal = append(g.journal, entry{id: id, r: m.Ref})
	g.depth++
	err = g.build(m, t)
	g.depth--
	if err != nil {
		g.rollback(start)
		return nil, fmt.Errorf("generate %s: %w", t.FullName(), err)
	}
	g.d.Logger.Debug("reader generated", "type", t.FullName(), "method", m.Ref.Name)
	if g.depth == 0 {
		if err := g.commit(); err != nil {
			return nil, err
		}
	}
	return m.Ref, nil
}

// rollback removes every journaled method from start on.
func (g *Generator) rollback(start int) {
	for _, e := range g.journal[start:] {
		if cur, ok := g.d.Registry.Lookup(e.id, false); ok && cur == e.r {
			g.d.Registry.Remove(e.id, false)
		}
		g.d.Container.Remove(e.r.Name)
		g.d.Logger.Debug("reader discarded", "type", e.r.Return.FullName(), "method", e.r.Name)
	}
	g.journal = g.journal[:start]
}

// commit installs the dispatch entries of the journal and clears it.
func (g *Generator) commit() error {
	defer func() { g.journal = g.journal[:0] }()
	for _, e := range g.journal {
		g.created++
		if g.d.Dispatch.Delegated(e.r.Return) {
			continue
		}
		if err := g.d.Dispatch.Install(e.r, true); err != nil {
			return err
		}
	}
	g.d.Container.Seal()
	return nil
}

func (g *Generator) build(m *emit.Method, t *apis.TypeRef) error {
	switch t.Kind {
	case apis.KindPointer:
		return g.buildPointer(m, t)
	case apis.KindArray:
		return g.buildArray(m, t)
	case apis.KindStruct, apis.KindClass:
		return g.buildComposite(m, t)
	}
	return fmt.Errorf("%w: %s kind %s", readers.ErrUnresolvedDeserializer, t.FullName(), t.Kind)
}

// buildPointer guards on a presence flag, then reads the element into a
// local and returns its address.
func (g *Generator) buildPointer(m *emit.Method, t *apis.TypeRef) error {
	if _, err := g.d.Engine.GetOrCreateReadMethodReference(t.Elem); err != nil {
		return err
	}
	if _, err := g.d.Readers.BuildNullGuard(m, 0, nil, true); err != nil {
		return err
	}
	insts, l, err := g.d.Readers.BuildReadIntoLocal(m, 0, t.Elem)
	if err != nil {
		return err
	}
	m.Body.Emit(insts...)
	m.Body.Emit(emit.LoadLocalAddr(l), emit.Return())
	return nil
}

// buildArray hands the whole sequence to the array primitive, which reads
// the length (-1 for null) and each element through its dispatch entry.
func (g *Generator) buildArray(m *emit.Method, t *apis.TypeRef) error {
	if _, err := g.d.Engine.GetOrCreateReadMethodReference(t.Elem); err != nil {
		return err
	}
	arr, ok := g.d.Specials[g.cfg.ArrayRoutine]
	if !ok {
		return fmt.Errorf("%w: special %s", readers.ErrUnresolvedDeserializer, g.cfg.ArrayRoutine)
	}
	bound, err := arr.MakeGenericInstance(t.Elem)
	if err != nil {
		return err
	}
	call := emit.Call(bound)
	if bound.IsInstanced() {
		call = emit.CallVirt(bound)
	}
	m.Body.Emit(emit.LoadArg(0), call, emit.Return())
	return nil
}

// buildComposite reads every field and settable property into a new
// instance. Classes are preceded by a presence flag.
func (g *Generator) buildComposite(m *emit.Method, t *apis.TypeRef) error {
	if t.Kind == apis.KindClass {
		if _, err := g.d.Readers.BuildNullGuard(m, 0, nil, true); err != nil {
			return err
		}
	}
	obj := m.Body.NewLocal(t)
	m.Body.Emit(emit.NewObject(t), emit.StoreLocal(obj))

	for _, f := range t.Fields {
		r, err := g.d.Engine.GetOrCreateReadMethodReference(f.Type)
		if err != nil {
			return fmt.Errorf("field %s: %w", f.Name, err)
		}
		if err := g.d.Readers.BuildReadIntoField(m, 0, r, obj, f); err != nil {
			return err
		}
	}
	for _, p := range t.Properties {
		if p.Setter == nil {
			continue
		}
		r, err := g.d.Engine.GetOrCreateReadMethodReference(p.Type)
		if err != nil {
			return fmt.Errorf("property %s: %w", p.Name, err)
		}
		if err := g.d.Readers.BuildReadIntoProperty(m, 0, r, obj, p.Setter, p.Type); err != nil {
			return err
		}
	}
	m.Body.Emit(emit.LoadLocal(obj), emit.Return())
	return nil
}
