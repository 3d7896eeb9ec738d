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

// Package vm executes the container a session produces. It is a small
// stack interpreter over emit bodies: host functions implement the
// primitive routines, container methods are interpreted, and running the
// initialization method fills the runtime dispatch table that maps each
// data type to its reader.
package vm

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"dirpx.dev/rsx/apis"
	"dirpx.dev/rsx/config"
	"dirpx.dev/rsx/container"
	"dirpx.dev/rsx/emit"
	"dirpx.dev/rsx/utils/typeid"
	"dirpx.dev/rsx/wire"
)

var (
	// ErrUnknownRoutine is returned when a call has no implementation.
	ErrUnknownRoutine = errors.New("rsx(vm): no implementation for routine")
	// ErrNoReader is returned when no dispatch entry exists for a type.
	ErrNoReader = errors.New("rsx(vm): no reader installed for type")
	// ErrStackUnderflow is returned when an instruction pops an empty stack.
	ErrStackUnderflow = errors.New("rsx(vm): stack underflow")
	// ErrBadOperand is returned when an operand has the wrong shape.
	ErrBadOperand = errors.New("rsx(vm): bad operand")
	// ErrNullReference is returned when a member of null is accessed.
	ErrNullReference = errors.New("rsx(vm): null reference")
	// ErrCallDepth is returned when calls nest deeper than the limit.
	ErrCallDepth = errors.New("rsx(vm): call depth exceeded")
)

// DefaultMaxDepth bounds nested calls.
const DefaultMaxDepth = 256

// Option configures a Machine.
type Option func(*Machine)

// WithMaxDepth bounds nested calls. Non-positive values are ignored.
func WithMaxDepth(n int) Option {
	return func(m *Machine) {
		if n > 0 {
			m.maxDepth = n
		}
	}
}

// WithLogger sets the machine logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) {
		if l != nil {
			m.log = l
		}
	}
}

// Machine interprets one container. It is not safe for concurrent use.
type Machine struct {
	cfg         apis.Config
	log         *slog.Logger
	host        map[string]HostFunc
	methods     map[string]*emit.Method
	dispatch    map[string]*Callable
	initialized bool
	depth       int
	maxDepth    int
}

// New returns a Machine with the runtime dispatch routines and the wire
// primitives bound under cfg's type names.
func New(cfg apis.Config, opts ...Option) *Machine {
	m := &Machine{
		cfg:      cfg,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		host:     make(map[string]HostFunc),
		methods:  make(map[string]*emit.Method),
		dispatch: make(map[string]*Callable),
		maxDepth: DefaultMaxDepth,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.bindRuntime()
	m.bindWire()
	return m
}

// Bind implements the routine identified by key (see apis.Routine.Key).
// A later binding replaces an earlier one.
func (m *Machine) Bind(key string, fn HostFunc) {
	m.host[key] = fn
}

// Load makes every method of c callable and runs its initialization method.
// The initialization method runs at most once per machine.
func (m *Machine) Load(c *container.Container) error {
	if err := c.Validate(); err != nil {
		return err
	}
	for _, meth := range c.Methods() {
		m.methods[meth.Ref.Key()] = meth
	}
	m.methods[c.Init().Ref.Key()] = c.Init()
	if m.initialized {
		return nil
	}
	if _, err := m.Invoke(c.Init().Ref); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	m.initialized = true
	m.log.Debug("container loaded", "methods", c.Len(), "readers", len(m.dispatch))
	return nil
}

// Installed reports whether a reader is installed for t.
func (m *Machine) Installed(t *apis.TypeRef) bool {
	_, ok := m.dispatch[t.FullName()]
	return ok
}

// Read reads one value of type t through its installed reader.
func (m *Machine) Read(t *apis.TypeRef, r *wire.Reader) (any, error) {
	cb, ok := m.dispatch[t.FullName()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoReader, t.FullName())
	}
	args := []any{r}
	if cb.AutoPack() {
		args = append(args, int64(config.DefaultPackMode(m.cfg, typeid.Of(t))))
	}
	return m.Invoke(cb.Routine, args...)
}

// Decode reads one value of type t from data.
func (m *Machine) Decode(t *apis.TypeRef, data []byte) (any, error) {
	return m.Read(t, wire.NewReader(data))
}

// Invoke calls r with args. Container methods are interpreted; everything
// else must have a host binding.
func (m *Machine) Invoke(r *apis.Routine, args ...any) (any, error) {
	if m.depth >= m.maxDepth {
		return nil, fmt.Errorf("%w: %s", ErrCallDepth, r.Name)
	}
	m.depth++
	defer func() { m.depth-- }()

	key := r.Key()
	if meth, ok := m.methods[key]; ok {
		return m.exec(meth, args)
	}
	if fn, ok := m.host[key]; ok {
		return fn(&Call{Machine: m, Routine: r, Args: args})
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownRoutine, r.FullName())
}
