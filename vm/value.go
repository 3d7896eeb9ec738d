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

package vm

import (
	"fmt"
	"maps"
	"reflect"

	"dirpx.dev/rsx/apis"
)

// Object is an instance created by a NewObject instruction.
type Object struct {
	Type   *apis.TypeRef
	Fields map[string]any
}

// NewObject returns an empty instance of t.
func NewObject(t *apis.TypeRef) *Object {
	return &Object{Type: t, Fields: make(map[string]any, len(t.Fields))}
}

// clone copies value-type instances so a load never aliases the local.
func (o *Object) clone() *Object {
	return &Object{Type: o.Type, Fields: maps.Clone(o.Fields)}
}

// Ref is the address of a local slot.
type Ref struct {
	slot *any
}

// Deref returns the value stored in the slot.
func (r Ref) Deref() any { return *r.slot }

// Callable is a late-bound read routine handed to a dispatch slot.
type Callable struct {
	// Type is the callable type, e.g. Func<wire.Reader,int32>.
	Type *apis.TypeRef
	// Target is the bound receiver; nil for open calls.
	Target any
	// Routine is the routine invoked.
	Routine *apis.Routine
}

// AutoPack reports whether the callable takes a packing-mode argument.
func (c *Callable) AutoPack() bool { return len(c.Type.Args) == 3 }

// Call is the context a host function receives.
type Call struct {
	// Machine is the calling machine.
	Machine *Machine
	// Routine is the routine being invoked, with any generic arguments bound.
	Routine *apis.Routine
	// Args are the call arguments; for instanced routines Args[0] is the
	// receiver.
	Args []any
}

// Arg returns argument i or an error when it is missing.
func (c *Call) Arg(i int) (any, error) {
	if i < 0 || i >= len(c.Args) {
		return nil, fmt.Errorf("%w: %s wants argument %d of %d", ErrBadOperand, c.Routine.Name, i, len(c.Args))
	}
	return c.Args[i], nil
}

// HostFunc implements a routine outside the container.
type HostFunc func(c *Call) (any, error)

// deref unwraps local addresses.
func deref(v any) any {
	if r, ok := v.(Ref); ok {
		return r.Deref()
	}
	return v
}

// toInt64 widens every integer representation the machine produces.
func toInt64(v any) (int64, bool) {
	switch n := deref(v).(type) {
	case int:
		return int64(n), true
	case int8:
		return int64(n), true
	case int16:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case uint8:
		return int64(n), true
	case uint16:
		return int64(n), true
	case uint32:
		return int64(n), true
	case uint64:
		return int64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

// truthy reports the branch condition for v. Null and zero are false.
func truthy(v any) bool {
	v = deref(v)
	if v == nil {
		return false
	}
	if n, ok := toInt64(v); ok {
		return n != 0
	}
	return true
}

// equal compares two operands. Integers compare by value regardless of
// width.
func equal(a, b any) bool {
	a, b = deref(a), deref(b)
	x, okA := toInt64(a)
	y, okB := toInt64(b)
	if okA && okB {
		return x == y
	}
	if okA != okB || reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	if a != nil && !reflect.TypeOf(a).Comparable() {
		return false
	}
	return a == b
}
