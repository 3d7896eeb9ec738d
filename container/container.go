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

// Package container holds the generated code unit of one compilation pass:
// every synthesized reader method plus the run-once initialization method
// that fills the runtime dispatch table.
package container

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"dirpx.dev/rsx/apis"
	"dirpx.dev/rsx/emit"
)

var (
	// ErrDuplicateMethod is returned when a method name is already taken.
	ErrDuplicateMethod = errors.New("rsx(container): duplicate method")
	// ErrNilMethod is returned when a nil method is added.
	ErrNilMethod = errors.New("rsx(container): nil method provided")
)

// Container is the synthetic code unit. It is not safe for concurrent use.
type Container struct {
	typ     *apis.TypeRef
	methods map[string]*emit.Method
	init    *emit.Method
	sealed  bool
}

// New creates an empty container named after cfg and declares its
// initialization method.
func New(cfg apis.Config) *Container {
	typ := &apis.TypeRef{Namespace: cfg.Namespace, Name: cfg.ContainerName, Kind: apis.KindClass}
	init := emit.NewMethod(&apis.Routine{
		Name:  cfg.InitRoutineName,
		Owner: typ,
	})
	return &Container{
		typ:     typ,
		methods: make(map[string]*emit.Method),
		init:    init,
	}
}

// Type returns the container type, the owner of every method it holds.
func (c *Container) Type() *apis.TypeRef { return c.typ }

// Init returns the initialization method.
func (c *Container) Init() *emit.Method { return c.init }

// NewMethod declares a static method named name on the container and adds it.
func (c *Container) NewMethod(name string, params []apis.Param, ret *apis.TypeRef) (*emit.Method, error) {
	m := emit.NewMethod(&apis.Routine{
		Name:   name,
		Owner:  c.typ,
		Params: params,
		Return: ret,
	})
	if err := c.Add(m); err != nil {
		return nil, err
	}
	return m, nil
}

// Add stores m under its routine name.
func (c *Container) Add(m *emit.Method) error {
	if m == nil || m.Ref == nil {
		return ErrNilMethod
	}
	name := m.Ref.Name
	if _, ok := c.methods[name]; ok || name == c.init.Ref.Name {
		return fmt.Errorf("%w: %s", ErrDuplicateMethod, name)
	}
	c.methods[name] = m
	c.sealed = false
	return nil
}

// Remove deletes the method named name. Missing names are ignored.
func (c *Container) Remove(name string) {
	delete(c.methods, name)
}

// Lookup returns the method named name.
func (c *Container) Lookup(name string) (*emit.Method, bool) {
	if name == c.init.Ref.Name {
		return c.init, true
	}
	m, ok := c.methods[name]
	return m, ok
}

// Methods returns the synthesized methods ordered by name. The
// initialization method is not included.
func (c *Container) Methods() []*emit.Method {
	out := make([]*emit.Method, 0, len(c.methods))
	for _, m := range c.methods {
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b *emit.Method) int { return strings.Compare(a.Ref.Name, b.Ref.Name) })
	return out
}

// Len returns the number of synthesized methods.
func (c *Container) Len() int { return len(c.methods) }

// Seal terminates the initialization method with a single return. It may be
// called repeatedly; later installations reopen and re-seal the body.
func (c *Container) Seal() {
	c.init.Body.Seal()
	c.sealed = true
}

// Unseal reopens the initialization method for appending.
func (c *Container) Unseal() {
	c.init.Body.TrimReturn()
	c.sealed = false
}

// Sealed reports whether the container was sealed and not reopened since.
func (c *Container) Sealed() bool { return c.sealed }

// Validate checks every method body, including the initialization method.
func (c *Container) Validate() error {
	var errs []error
	for _, m := range append([]*emit.Method{c.init}, c.Methods()...) {
		if err := m.Body.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", m.Ref.Name, err))
		}
	}
	return errors.Join(errs...)
}

// Dump renders every method, initialization method first.
func (c *Container) Dump() string {
	var sb strings.Builder
	sb.WriteString(emit.Disassemble(c.init))
	for _, m := range c.Methods() {
		sb.WriteByte('\n')
		sb.WriteString(emit.Disassemble(m))
	}
	return sb.String()
}
