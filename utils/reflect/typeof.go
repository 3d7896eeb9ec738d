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

// Package reflect converts runtime reflect.Type values into the type
// universe, for tests and embedders that describe their payload types with
// ordinary Go declarations.
package reflect

import (
	"errors"
	"fmt"
	"path"
	"reflect"
	"strings"

	"dirpx.dev/rsx/apis"
	"dirpx.dev/rsx/config"
)

var (
	// ErrReflectNilType is returned when a nil reflect.Type is provided.
	ErrReflectNilType = errors.New("reflect: nil reflect.Type provided")
	// ErrReflectTypeNotNamed indicates that the provided type (after unwrapping containers)
	// is neither a builtin nor a named struct (e.g., anonymous struct, func, interface{}).
	ErrReflectTypeNotNamed = errors.New("reflect: type has no usable name")
	// ErrReflectTooDeep is returned when containers nest deeper than MaxUnwrap.
	ErrReflectTooDeep = errors.New("reflect: container nesting exceeds MaxUnwrap")
	// ErrReflectTypeArgument is returned when a type argument of a generic
	// instance cannot be traced back to a reflect.Type.
	ErrReflectTypeArgument = errors.New("reflect: unresolvable type argument")
)

// TagName is the struct tag consulted for field options. `rsx:"-"` skips a
// field; `rsx:"name"` renames it.
const TagName = "rsx"

// TypeOf converts t into a TypeRef.
//
// Conversion policy:
//   - bool, integers, floats, string -> basic types named after their kind
//   - ptr            -> pointer to Elem()
//   - slice/array    -> array of Elem()
//   - map[K]V        -> map with arguments K and V
//   - named struct   -> value type with its exported fields, in order
//   - generic struct -> as above, named without brackets, with Args
//   - anything else  -> ErrReflectTypeNotNamed
//
// Containers may nest at most cfg.MaxUnwrap levels (DefaultMaxUnwrap when
// not positive). Recursive structs yield a cyclic TypeRef.
func TypeOf(t reflect.Type, cfg apis.Config) (*apis.TypeRef, error) {
	if t == nil {
		return nil, ErrReflectNilType
	}
	maxUnwrap := cfg.MaxUnwrap
	if maxUnwrap <= 0 {
		maxUnwrap = config.DefaultMaxUnwrap
	}
	c := &converter{max: maxUnwrap, seen: make(map[reflect.Type]*apis.TypeRef)}
	return c.convert(t, 0)
}

type converter struct {
	max  int
	seen map[reflect.Type]*apis.TypeRef
}

func (c *converter) convert(t reflect.Type, depth int) (*apis.TypeRef, error) {
	if done, ok := c.seen[t]; ok {
		return done, nil
	}
	switch t.Kind() {
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return apis.Basic(t.Kind().String()), nil

	case reflect.Ptr, reflect.Slice, reflect.Array:
		if depth >= c.max {
			return nil, fmt.Errorf("%w: %s", ErrReflectTooDeep, t)
		}
		elem, err := c.convert(t.Elem(), depth+1)
		if err != nil {
			return nil, err
		}
		if t.Kind() == reflect.Ptr {
			return apis.PointerTo(elem), nil
		}
		return apis.ArrayOf(elem), nil

	case reflect.Map:
		if depth >= c.max {
			return nil, fmt.Errorf("%w: %s", ErrReflectTooDeep, t)
		}
		key, err := c.convert(t.Key(), depth+1)
		if err != nil {
			return nil, err
		}
		val, err := c.convert(t.Elem(), depth+1)
		if err != nil {
			return nil, err
		}
		return &apis.TypeRef{Name: "map", Kind: apis.KindMap, Args: []*apis.TypeRef{key, val}}, nil

	case reflect.Struct:
		if t.Name() == "" {
			return nil, fmt.Errorf("%w: %s", ErrReflectTypeNotNamed, t)
		}
		name, targs, generic := splitTypeArgs(t.Name())
		out := &apis.TypeRef{
			Namespace: path.Base(t.PkgPath()),
			Name:      name,
			Kind:      apis.KindStruct,
			ValueType: true,
		}
		c.seen[t] = out
		if generic {
			known := make(map[string]reflect.Type)
			for i := 0; i < t.NumField(); i++ {
				collectNamed(t.Field(i).Type, known, c.max)
			}
			for _, expr := range targs {
				a, err := c.typeArg(expr, known, depth)
				if err != nil {
					delete(c.seen, t)
					return nil, fmt.Errorf("%s: %w", t, err)
				}
				out.Args = append(out.Args, a)
			}
		}
		for i := 0; i < t.NumField(); i++ {
			sf := t.Field(i)
			name, skip := fieldName(sf)
			if skip {
				continue
			}
			ft, err := c.convert(sf.Type, 0)
			if err != nil {
				return nil, fmt.Errorf("%s.%s: %w", t.Name(), sf.Name, err)
			}
			out.Fields = append(out.Fields, &apis.Field{Name: name, Type: ft})
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrReflectTypeNotNamed, t)
}

// splitTypeArgs splits an instantiated name such as "G[int32,pkg.A]" into
// "G" and its top-level arguments.
func splitTypeArgs(name string) (string, []string, bool) {
	open := strings.IndexByte(name, '[')
	if open < 0 || !strings.HasSuffix(name, "]") {
		return name, nil, false
	}
	inner := name[open+1 : len(name)-1]
	var args []string
	depth, start := 0, 0
	for i, r := range inner {
		switch r {
		case '[':
			depth++
		case ']':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, strings.TrimSpace(inner[start:i]))
				start = i + 1
			}
		}
	}
	args = append(args, strings.TrimSpace(inner[start:]))
	return name[:open], args, true
}

// collectNamed records the named types reachable from t through containers,
// keyed by "importpath.Name" and "pkg.Name".
func collectNamed(t reflect.Type, known map[string]reflect.Type, limit int) {
	for range limit {
		switch t.Kind() {
		case reflect.Ptr, reflect.Slice, reflect.Array:
			t = t.Elem()
			continue
		case reflect.Map:
			collectNamed(t.Key(), known, limit-1)
			t = t.Elem()
			continue
		}
		break
	}
	if t.Name() == "" || t.PkgPath() == "" {
		return
	}
	known[t.PkgPath()+"."+t.Name()] = t
	known[path.Base(t.PkgPath())+"."+t.Name()] = t
}

// basicKinds are the builtin names a type argument may carry.
var basicKinds = map[string]bool{
	"bool": true, "string": true,
	"int": true, "int8": true, "int16": true, "int32": true, "int64": true,
	"uint": true, "uint8": true, "uint16": true, "uint32": true, "uint64": true,
	"float32": true, "float64": true,
}

// typeArg converts one type argument of an instantiated name. Named
// arguments must appear among the fields of the instance.
func (c *converter) typeArg(expr string, known map[string]reflect.Type, depth int) (*apis.TypeRef, error) {
	if depth >= c.max {
		return nil, fmt.Errorf("%w: %s", ErrReflectTooDeep, expr)
	}
	switch {
	case strings.HasPrefix(expr, "*"):
		elem, err := c.typeArg(expr[1:], known, depth+1)
		if err != nil {
			return nil, err
		}
		return apis.PointerTo(elem), nil
	case strings.HasPrefix(expr, "[]"):
		elem, err := c.typeArg(expr[2:], known, depth+1)
		if err != nil {
			return nil, err
		}
		return apis.ArrayOf(elem), nil
	}
	if basicKinds[expr] {
		return apis.Basic(expr), nil
	}
	if rt, ok := known[expr]; ok {
		return c.convert(rt, depth+1)
	}
	return nil, fmt.Errorf("%w: %s", ErrReflectTypeArgument, expr)
}

// fieldName applies the struct tag to sf. Unexported fields are skipped.
func fieldName(sf reflect.StructField) (string, bool) {
	if !sf.IsExported() {
		return "", true
	}
	tag, _, _ := strings.Cut(sf.Tag.Get(TagName), ",")
	switch tag {
	case "-":
		return "", true
	case "":
		return sf.Name, false
	}
	return tag, false
}
