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

// Package typesrc discovers the target type universe in Go source. It loads
// packages with golang.org/x/tools/go/packages and converts their named
// types into apis.TypeRef values the session can generate readers for.
//
// Struct tags use the key "rsx": `rsx:"-"` skips a field, `rsx:"name"`
// renames it. A blank field tagged `rsx:"nonserialized"` marks the whole
// type as never generated.
package typesrc

import (
	"context"
	"errors"
	"fmt"
	"go/types"
	"reflect"
	"slices"
	"strings"

	"golang.org/x/tools/go/packages"
	"golang.org/x/tools/go/types/typeutil"

	"dirpx.dev/rsx/apis"
	"dirpx.dev/rsx/config"
)

var (
	// ErrLoad is returned when packages fail to load or type-check.
	ErrLoad = errors.New("rsx(typesrc): loading packages")
	// ErrNotFound is returned when a named type does not exist.
	ErrNotFound = errors.New("rsx(typesrc): type not found")
	// ErrUnsupportedType is returned for types with no reader shape, such as
	// interfaces, channels and functions.
	ErrUnsupportedType = errors.New("rsx(typesrc): unsupported type")
	// ErrTooDeep is returned when containers nest deeper than MaxUnwrap.
	ErrTooDeep = errors.New("rsx(typesrc): container nesting exceeds MaxUnwrap")
)

// TagName is the struct tag key.
const TagName = "rsx"

const nonSerializedTag = "nonserialized"

// Source holds loaded packages and the types converted so far.
type Source struct {
	cfg  apis.Config
	pkgs []*packages.Package
	memo typeutil.Map
}

// Load loads the packages matching patterns, relative to dir.
func Load(ctx context.Context, cfg apis.Config, dir string, patterns ...string) (*Source, error) {
	pc := &packages.Config{
		Context: ctx,
		Mode:    packages.NeedName | packages.NeedTypes | packages.NeedImports | packages.NeedDeps,
		Dir:     dir,
	}
	pkgs, err := packages.Load(pc, patterns...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}

	var errs []string
	for _, pkg := range pkgs {
		for _, e := range pkg.Errors {
			errs = append(errs, fmt.Sprintf("%s: %s", pkg.PkgPath, e.Msg))
		}
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("%w:\n  %s", ErrLoad, strings.Join(errs, "\n  "))
	}
	if cfg.MaxUnwrap <= 0 {
		cfg.MaxUnwrap = config.DefaultMaxUnwrap
	}
	return &Source{cfg: cfg, pkgs: pkgs}, nil
}

// Packages returns the import paths of the loaded packages.
func (s *Source) Packages() []string {
	out := make([]string, len(s.pkgs))
	for i, p := range s.pkgs {
		out[i] = p.PkgPath
	}
	return out
}

// Lookup converts the named type "pkg.Name", where pkg is either the
// package name or its import path.
func (s *Source) Lookup(name string) (*apis.TypeRef, error) {
	dot := strings.LastIndexByte(name, '.')
	if dot <= 0 {
		return nil, fmt.Errorf("%w: %q is not qualified", ErrNotFound, name)
	}
	pkgName, typeName := name[:dot], name[dot+1:]
	for _, p := range s.pkgs {
		if p.Types == nil || (p.PkgPath != pkgName && p.Name != pkgName) {
			continue
		}
		obj, ok := p.Types.Scope().Lookup(typeName).(*types.TypeName)
		if !ok {
			continue
		}
		return s.Convert(obj.Type())
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Types converts every exported, non-generic named struct type of the
// loaded packages, ordered by full name. Types that fail to convert are
// skipped and their errors joined.
func (s *Source) Types() ([]*apis.TypeRef, error) {
	var (
		out  []*apis.TypeRef
		errs []error
	)
	for _, p := range s.pkgs {
		if p.Types == nil {
			continue
		}
		scope := p.Types.Scope()
		for _, name := range scope.Names() {
			obj, ok := scope.Lookup(name).(*types.TypeName)
			if !ok || !obj.Exported() || obj.IsAlias() {
				continue
			}
			named, ok := obj.Type().(*types.Named)
			if !ok || named.TypeParams().Len() > 0 {
				continue
			}
			if _, ok := named.Underlying().(*types.Struct); !ok {
				continue
			}
			t, err := s.Convert(named)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b *apis.TypeRef) int { return strings.Compare(a.FullName(), b.FullName()) })
	return out, errors.Join(errs...)
}

// Convert converts t into a TypeRef. Conversions are memoized, so a
// recursive type yields a cyclic TypeRef.
func (s *Source) Convert(t types.Type) (*apis.TypeRef, error) {
	return s.convert(t, 0)
}

func (s *Source) convert(t types.Type, depth int) (*apis.TypeRef, error) {
	t = types.Unalias(t)
	if done, ok := s.memo.At(t).(*apis.TypeRef); ok {
		return done, nil
	}

	switch tt := t.(type) {
	case *types.Basic:
		name, ok := basicName(tt)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, tt)
		}
		return apis.Basic(name), nil

	case *types.TypeParam:
		return apis.GenericParam(tt.Obj().Name()), nil

	case *types.Pointer, *types.Slice, *types.Array, *types.Map:
		if depth >= s.cfg.MaxUnwrap {
			return nil, fmt.Errorf("%w: %s", ErrTooDeep, tt)
		}
		return s.container(tt, depth+1)

	case *types.Named:
		return s.named(tt)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
}

func (s *Source) container(t types.Type, depth int) (*apis.TypeRef, error) {
	switch tt := t.(type) {
	case *types.Pointer:
		elem, err := s.convert(tt.Elem(), depth)
		if err != nil {
			return nil, err
		}
		return apis.PointerTo(elem), nil
	case *types.Slice:
		elem, err := s.convert(tt.Elem(), depth)
		if err != nil {
			return nil, err
		}
		return apis.ArrayOf(elem), nil
	case *types.Array:
		elem, err := s.convert(tt.Elem(), depth)
		if err != nil {
			return nil, err
		}
		return apis.ArrayOf(elem), nil
	}
	m := t.(*types.Map)
	key, err := s.convert(m.Key(), depth)
	if err != nil {
		return nil, err
	}
	val, err := s.convert(m.Elem(), depth)
	if err != nil {
		return nil, err
	}
	return &apis.TypeRef{Name: "map", Kind: apis.KindMap, Args: []*apis.TypeRef{key, val}}, nil
}

func (s *Source) named(t *types.Named) (*apis.TypeRef, error) {
	obj := t.Obj()
	st, ok := t.Underlying().(*types.Struct)
	if !ok {
		// Named scalars such as `type Score int32` read as their underlying type.
		if b, ok := t.Underlying().(*types.Basic); ok {
			return s.convert(b, 0)
		}
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, t)
	}

	out := &apis.TypeRef{Name: obj.Name(), Kind: apis.KindStruct, ValueType: true}
	if obj.Pkg() != nil {
		out.Namespace = obj.Pkg().Name()
	}
	s.memo.Set(t, out)

	if args := t.TypeArgs(); args.Len() > 0 {
		for i := 0; i < args.Len(); i++ {
			a, err := s.convert(args.At(i), 0)
			if err != nil {
				return nil, fmt.Errorf("%s type argument %d: %w", obj.Name(), i, err)
			}
			out.Args = append(out.Args, a)
		}
	} else if params := t.TypeParams(); params.Len() > 0 {
		for i := 0; i < params.Len(); i++ {
			out.Params = append(out.Params, params.At(i).Obj().Name())
		}
	}

	for i := 0; i < st.NumFields(); i++ {
		f := st.Field(i)
		tag, _, _ := strings.Cut(fieldTag(st.Tag(i)), ",")
		if f.Name() == "_" {
			if tag == nonSerializedTag {
				out.Attributes = append(out.Attributes, s.cfg.NonSerializedAttribute)
			}
			continue
		}
		if !f.Exported() || tag == "-" {
			continue
		}
		name := f.Name()
		if tag != "" {
			name = tag
		}
		ft, err := s.convert(f.Type(), 0)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", obj.Name(), f.Name(), err)
		}
		out.Fields = append(out.Fields, &apis.Field{Name: name, Type: ft})
	}
	return out, nil
}

func fieldTag(tag string) string {
	return reflect.StructTag(tag).Get(TagName)
}

func basicName(b *types.Basic) (string, bool) {
	switch b.Kind() {
	case types.Bool:
		return "bool", true
	case types.Int:
		return "int", true
	case types.Int8:
		return "int8", true
	case types.Int16:
		return "int16", true
	case types.Int32:
		return "int32", true
	case types.Int64:
		return "int64", true
	case types.Uint:
		return "uint", true
	case types.Uint8:
		return "uint8", true
	case types.Uint16:
		return "uint16", true
	case types.Uint32:
		return "uint32", true
	case types.Uint64:
		return "uint64", true
	case types.Float32:
		return "float32", true
	case types.Float64:
		return "float64", true
	case types.String:
		return "string", true
	}
	return "", false
}
