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

package typeid

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"dirpx.dev/rsx/apis"
)

// ErrSyntax is returned when a type expression cannot be parsed.
var ErrSyntax = errors.New("rsx(typeid): malformed type expression")

// builtins are the scalar names recognized without a namespace.
var builtins = []string{
	"bool", "byte", "char",
	"int8", "int16", "int32", "int64", "int",
	"uint8", "uint16", "uint32", "uint64", "uint",
	"float32", "float64",
	"string",
}

// IsBuiltin reports whether name is a recognized scalar type name.
func IsBuiltin(name string) bool { return slices.Contains(builtins, name) }

// Parse converts a type expression into a TypeRef.
//
// Grammar:
//
//	type  := "*" type | base { "[]" }
//	base  := ident { "." ident } [ "<" type { "," type } ">" ]
//
// Names listed in typeParams parse as generic parameters. Unqualified
// builtin names parse as value-type scalars; every other name parses as a
// class in the namespace preceding its last dot.
func Parse(expr string, typeParams ...string) (*apis.TypeRef, error) {
	p := &parser{src: strings.TrimSpace(expr), params: typeParams}
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected %q", p.src[p.pos:])
	}
	return t, nil
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level tables.
func MustParse(expr string, typeParams ...string) *apis.TypeRef {
	t, err := Parse(expr, typeParams...)
	if err != nil {
		panic(err)
	}
	return t
}

type parser struct {
	src    string
	pos    int
	params []string
}

func (p *parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w: %s at %d in %q", ErrSyntax, fmt.Sprintf(format, args...), p.pos, p.src)
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func (p *parser) accept(tok string) bool {
	p.skipSpace()
	if strings.HasPrefix(p.src[p.pos:], tok) {
		p.pos += len(tok)
		return true
	}
	return false
}

func (p *parser) parseType() (*apis.TypeRef, error) {
	if p.accept("*") {
		elem, err := p.parseType()
		if err != nil {
			return nil, err
		}
		return apis.PointerTo(elem), nil
	}
	t, err := p.parseBase()
	if err != nil {
		return nil, err
	}
	for p.accept("[]") {
		t = apis.ArrayOf(t)
	}
	return t, nil
}

func (p *parser) parseBase() (*apis.TypeRef, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && isNameByte(p.src[p.pos]) {
		p.pos++
	}
	qualified := p.src[start:p.pos]
	if qualified == "" || strings.HasPrefix(qualified, ".") || strings.HasSuffix(qualified, ".") {
		return nil, p.errorf("expected type name")
	}

	var t *apis.TypeRef
	ns, name := split(qualified)
	switch {
	case ns == "" && slices.Contains(p.params, name):
		t = apis.GenericParam(name)
	case ns == "" && IsBuiltin(name):
		t = apis.Basic(name)
	default:
		t = &apis.TypeRef{Namespace: ns, Name: name, Kind: apis.KindClass}
	}

	if !p.accept("<") {
		return t, nil
	}
	if t.Kind != apis.KindClass {
		return nil, p.errorf("%s takes no type arguments", name)
	}
	for {
		arg, err := p.parseType()
		if err != nil {
			return nil, err
		}
		t.Args = append(t.Args, arg)
		if p.accept(">") {
			return t, nil
		}
		if !p.accept(",") {
			return nil, p.errorf("expected ',' or '>'")
		}
	}
}

func split(qualified string) (ns, name string) {
	if i := strings.LastIndexByte(qualified, '.'); i >= 0 {
		return qualified[:i], qualified[i+1:]
	}
	return "", qualified
}

func isNameByte(c byte) bool {
	return c == '_' || c == '.' ||
		'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}
