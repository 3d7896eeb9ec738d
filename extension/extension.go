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

// Package extension wraps instanced (receiver-bound) primitive readers as
// static routines taking the reader as their first parameter, so generated
// code can call every primitive the same way.
package extension

import (
	"fmt"
	"slices"

	"dirpx.dev/rsx/apis"
	"dirpx.dev/rsx/container"
	"dirpx.dev/rsx/emit"
)

// Synthesizer derives static extension routines from instanced ones.
type Synthesizer struct {
	cfg    apis.Config
	reg    apis.Registry
	out    *container.Container
	reader *apis.TypeRef
}

// New returns a Synthesizer that reads instanced entries from reg, adds
// extension methods to out and registers them in reg's static mapping.
func New(cfg apis.Config, reg apis.Registry, out *container.Container, reader *apis.TypeRef) *Synthesizer {
	return &Synthesizer{cfg: cfg, reg: reg, out: out, reader: reader}
}

// Synthesize wraps every instanced reader that has no unresolved generic
// parameter and whose identity has no static entry yet. It returns the new
// routines in identity order.
func (s *Synthesizer) Synthesize() ([]*apis.Routine, error) {
	var made []*apis.Routine
	for _, e := range s.reg.Entries(true) {
		if e.Routine.ContainsGenericParameter() {
			continue
		}
		if _, covered := s.reg.Lookup(e.ID, false); covered {
			continue
		}
		m, err := s.Wrap(e.Routine)
		if err != nil {
			return made, err
		}
		if err := s.reg.Add(e.ID, m.Ref, false, false); err != nil {
			s.out.Remove(m.Ref.Name)
			return made, err
		}
		made = append(made, m.Ref)
	}
	return made, nil
}

// Wrap emits the extension method for the instanced routine r and adds it
// to the container. The body loads the reader and every argument, calls r
// through the reader and returns its result.
func (s *Synthesizer) Wrap(r *apis.Routine) (*emit.Method, error) {
	if !r.IsInstanced() {
		return nil, fmt.Errorf("rsx(extension): %s is not instanced", r.FullName())
	}
	params := append([]apis.Param{{Name: "reader", Type: s.reader}}, slices.Clone(r.Params)...)
	m, err := s.out.NewMethod(s.cfg.ExtensionPrefix+r.Name, params, r.Return)
	if err != nil {
		return nil, err
	}
	m.Ref.Extension = true
	m.Ref.Attributes = slices.Clone(r.Attributes)

	for i := range params {
		m.Body.Emit(emit.LoadArg(i))
	}
	m.Body.Emit(emit.CallVirt(r), emit.Return())
	return m, nil
}
