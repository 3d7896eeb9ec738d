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
	"errors"
	"slices"
	"strings"
)

// ErrGenericArity is returned when a routine is instantiated with the wrong
// number of type arguments.
var ErrGenericArity = errors.New("apis: generic argument count mismatch")

// Param is a single routine parameter.
type Param struct {
	// Name is the parameter name.
	Name string
	// Type is the parameter type.
	Type *TypeRef
}

// Routine is an opaque reference to a callable unit: a free function, an
// extension function whose first parameter is the reader, or a method bound
// to a receiver. Routines are never mutated after registration.
type Routine struct {
	// Name is the routine name, e.g. "ReadInt32".
	Name string
	// Owner is the declaring type.
	Owner *TypeRef
	// Receiver is non-nil for instanced routines.
	Receiver *TypeRef
	// Extension marks a static routine whose first parameter is the reader.
	Extension bool
	// Params are the declared parameters (excluding the receiver).
	Params []Param
	// Return is the produced type.
	Return *TypeRef
	// TypeParams are the generic parameter names of a generic routine.
	TypeParams []string
	// TypeArgs are the bound arguments of a generic routine instance.
	TypeArgs []*TypeRef
	// Attributes are free-form markers (e.g. "CodegenExclude").
	Attributes []string
}

// IsInstanced reports whether r is invoked through a receiver.
func (r *Routine) IsInstanced() bool { return r != nil && r.Receiver != nil }

// IsGenericInstance reports whether r is a bound generic routine.
func (r *Routine) IsGenericInstance() bool { return r != nil && len(r.TypeArgs) > 0 }

// HasGenericParameters reports whether r is an unbound generic routine.
func (r *Routine) HasGenericParameters() bool {
	return r != nil && len(r.TypeParams) > 0 && len(r.TypeArgs) == 0
}

// ContainsGenericParameter reports whether r still has unresolved generic
// parameters in its own definition, its return type or its parameters.
func (r *Routine) ContainsGenericParameter() bool {
	if r == nil {
		return false
	}
	if r.HasGenericParameters() || r.Return.ContainsGenericParameter() {
		return true
	}
	for _, p := range r.Params {
		if p.Type.ContainsGenericParameter() {
			return true
		}
	}
	return false
}

// OperandParams returns the parameters a caller supplies besides the reader.
// For extension routines the leading reader parameter is skipped.
func (r *Routine) OperandParams() []Param {
	if r.Extension && len(r.Params) > 0 {
		return r.Params[1:]
	}
	return r.Params
}

// HasAttribute reports whether r carries the given attribute.
func (r *Routine) HasAttribute(name string) bool {
	return r != nil && slices.Contains(r.Attributes, name)
}

// Key identifies the routine definition independent of generic arguments,
// e.g. "wire.Reader::ReadInt32". Backends bind implementations by Key.
func (r *Routine) Key() string {
	if r == nil {
		return ""
	}
	owner := r.Owner
	if owner != nil && owner.IsGenericInstance() {
		def := *owner
		def.Args = nil
		owner = &def
	}
	return owner.FullName() + "::" + r.Name
}

// FullName renders the routine with its generic arguments and parameters.
func (r *Routine) FullName() string {
	if r == nil {
		return ""
	}
	var b strings.Builder
	if r.Return == nil {
		b.WriteString("void")
	} else {
		b.WriteString(r.Return.FullName())
	}
	b.WriteByte(' ')
	b.WriteString(r.Owner.FullName())
	b.WriteString("::")
	b.WriteString(r.Name)
	switch {
	case len(r.TypeArgs) > 0:
		b.WriteByte('<')
		for i, a := range r.TypeArgs {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(a.FullName())
		}
		b.WriteByte('>')
	case len(r.TypeParams) > 0:
		b.WriteByte('<')
		b.WriteString(strings.Join(r.TypeParams, ","))
		b.WriteByte('>')
	}
	b.WriteByte('(')
	for i, p := range r.Params {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p.Type.FullName())
	}
	b.WriteByte(')')
	return b.String()
}

// String implements fmt.Stringer.
func (r *Routine) String() string { return r.FullName() }

// MakeGenericInstance binds the generic parameters of r to args and returns
// the resulting routine. The receiver, return and parameter types are
// substituted; r itself is left untouched.
func (r *Routine) MakeGenericInstance(args ...*TypeRef) (*Routine, error) {
	if len(args) != len(r.TypeParams) || r.IsGenericInstance() {
		return nil, ErrGenericArity
	}
	bind := make(map[string]*TypeRef, len(args))
	for i, p := range r.TypeParams {
		bind[p] = args[i]
	}
	out := *r
	out.TypeArgs = slices.Clone(args)
	out.Return = r.Return.Substitute(bind)
	out.Params = make([]Param, len(r.Params))
	for i, p := range r.Params {
		out.Params[i] = Param{Name: p.Name, Type: p.Type.Substitute(bind)}
	}
	return &out, nil
}
