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

package apis

import (
	"slices"
	"strings"
)

// Kind classifies a TypeRef for code generation purposes.
type Kind int

const (
	// KindBasic is a builtin scalar such as bool, int32 or string.
	KindBasic Kind = iota
	// KindStruct is a composite value type.
	KindStruct
	// KindClass is a composite reference type (nullable).
	KindClass
	// KindPointer is a nullable reference to Elem.
	KindPointer
	// KindArray is a sequence of Elem.
	KindArray
	// KindMap is a keyed collection; Args holds key and value.
	KindMap
	// KindGenericParam is an unresolved generic parameter such as T.
	KindGenericParam
)

// String returns a short, stable name for the kind.
func (k Kind) String() string {
	switch k {
	case KindBasic:
		return "basic"
	case KindStruct:
		return "struct"
	case KindClass:
		return "class"
	case KindPointer:
		return "pointer"
	case KindArray:
		return "array"
	case KindMap:
		return "map"
	case KindGenericParam:
		return "generic-param"
	default:
		return "unknown"
	}
}

// TypeRef describes a type of the compile-time type universe.
// A TypeRef is treated as immutable once handed to the engine; helpers that
// "change" a type (Instantiate, Substitute) return a new value.
type TypeRef struct {
	// Namespace is the declaring namespace or package ("" for builtins).
	Namespace string
	// Name is the unqualified name without generic arguments.
	Name string
	// Kind classifies the type.
	Kind Kind
	// ValueType reports copy semantics. Value-type instances are loaded by
	// address when a member is stored into them.
	ValueType bool
	// Args are the generic arguments of an instantiated generic type.
	Args []*TypeRef
	// Params are the generic parameter names of a generic definition.
	Params []string
	// Elem is the element type of pointers and arrays.
	Elem *TypeRef
	// Fields are the serializable fields of a composite type, in order.
	Fields []*Field
	// Properties are the settable properties of a composite type, in order.
	Properties []*Property
	// Attributes are free-form markers (e.g. "NonSerialized").
	Attributes []string
}

// Field is a data member of a composite type.
type Field struct {
	// Name is the field name.
	Name string
	// Type is the declared field type.
	Type *TypeRef
}

// Property is a member assigned through a setter routine.
type Property struct {
	// Name is the property name.
	Name string
	// Type is the property type.
	Type *TypeRef
	// Setter is the routine assigning the property; nil for read-only ones.
	Setter *Routine
}

// FullName renders the fully qualified name including generic arguments,
// e.g. "game.Box<game.Widget>", "int32[]" or "*game.Widget".
func (t *TypeRef) FullName() string {
	if t == nil {
		return ""
	}
	var b strings.Builder
	t.writeName(&b)
	return b.String()
}

// String implements fmt.Stringer.
func (t *TypeRef) String() string { return t.FullName() }

func (t *TypeRef) writeName(b *strings.Builder) {
	switch t.Kind {
	case KindPointer:
		b.WriteByte('*')
		t.Elem.writeName(b)
		return
	case KindArray:
		t.Elem.writeName(b)
		b.WriteString("[]")
		return
	}
	if t.Namespace != "" {
		b.WriteString(t.Namespace)
		b.WriteByte('.')
	}
	b.WriteString(t.Name)
	switch {
	case len(t.Args) > 0:
		b.WriteByte('<')
		for i, a := range t.Args {
			if i > 0 {
				b.WriteByte(',')
			}
			a.writeName(b)
		}
		b.WriteByte('>')
	case len(t.Params) > 0:
		b.WriteByte('<')
		b.WriteString(strings.Join(t.Params, ","))
		b.WriteByte('>')
	}
}

// IsGenericInstance reports whether t is an instantiated generic type.
func (t *TypeRef) IsGenericInstance() bool {
	return t != nil && len(t.Args) > 0
}

// HasGenericParameters reports whether t is an uninstantiated generic definition.
func (t *TypeRef) HasGenericParameters() bool {
	return t != nil && len(t.Params) > 0 && len(t.Args) == 0
}

// ContainsGenericParameter reports whether t mentions an unresolved generic
// parameter anywhere in its structure.
func (t *TypeRef) ContainsGenericParameter() bool {
	if t == nil {
		return false
	}
	if t.Kind == KindGenericParam || t.HasGenericParameters() {
		return true
	}
	if t.Elem.ContainsGenericParameter() {
		return true
	}
	for _, a := range t.Args {
		if a.ContainsGenericParameter() {
			return true
		}
	}
	return false
}

// IsNullable reports whether values of t can be absent.
func (t *TypeRef) IsNullable() bool {
	if t == nil {
		return false
	}
	switch t.Kind {
	case KindClass, KindPointer, KindArray, KindMap:
		return true
	}
	return false
}

// HasAttribute reports whether t carries the given attribute.
func (t *TypeRef) HasAttribute(name string) bool {
	return t != nil && slices.Contains(t.Attributes, name)
}

// Instantiate returns a generic instance of the definition t bound to args.
// Field, property and element types mentioning the parameters are substituted.
func (t *TypeRef) Instantiate(args ...*TypeRef) *TypeRef {
	bind := make(map[string]*TypeRef, len(t.Params))
	for i, p := range t.Params {
		if i < len(args) {
			bind[p] = args[i]
		}
	}
	out := t.Substitute(bind)
	if out == t {
		cp := *t
		out = &cp
	}
	out.Params = nil
	out.Args = slices.Clone(args)
	return out
}

// Substitute replaces generic parameters named in bind. It returns t itself
// when nothing changed.
func (t *TypeRef) Substitute(bind map[string]*TypeRef) *TypeRef {
	if t == nil || len(bind) == 0 {
		return t
	}
	if t.Kind == KindGenericParam {
		if r, ok := bind[t.Name]; ok {
			return r
		}
		return t
	}

	changed := false
	elem := t.Elem.Substitute(bind)
	if elem != t.Elem {
		changed = true
	}
	args := make([]*TypeRef, len(t.Args))
	for i, a := range t.Args {
		args[i] = a.Substitute(bind)
		if args[i] != a {
			changed = true
		}
	}
	fields := make([]*Field, len(t.Fields))
	for i, f := range t.Fields {
		ft := f.Type.Substitute(bind)
		fields[i] = f
		if ft != f.Type {
			fields[i] = &Field{Name: f.Name, Type: ft}
			changed = true
		}
	}
	props := make([]*Property, len(t.Properties))
	for i, p := range t.Properties {
		pt := p.Type.Substitute(bind)
		props[i] = p
		if pt != p.Type {
			props[i] = &Property{Name: p.Name, Type: pt, Setter: p.Setter}
			changed = true
		}
	}
	if !changed {
		return t
	}

	cp := *t
	cp.Elem = elem
	if len(t.Args) > 0 {
		cp.Args = args
	}
	if len(t.Fields) > 0 {
		cp.Fields = fields
	}
	if len(t.Properties) > 0 {
		cp.Properties = props
	}
	return &cp
}

// Basic returns a builtin scalar TypeRef.
func Basic(name string) *TypeRef {
	return &TypeRef{Name: name, Kind: KindBasic, ValueType: true}
}

// GenericParam returns an unresolved generic parameter TypeRef.
func GenericParam(name string) *TypeRef {
	return &TypeRef{Name: name, Kind: KindGenericParam}
}

// PointerTo returns a pointer TypeRef to elem.
func PointerTo(elem *TypeRef) *TypeRef {
	return &TypeRef{Kind: KindPointer, Elem: elem}
}

// ArrayOf returns an array TypeRef of elem.
func ArrayOf(elem *TypeRef) *TypeRef {
	return &TypeRef{Kind: KindArray, Elem: elem}
}
