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

// Package dispatch splices runtime dispatch entries into the initialization
// method of the generated container. Each entry wraps a reader routine in a
// late-bound callable and hands it to the per-type slot of the generic
// reader, exactly once per data type.
package dispatch

import (
	"errors"
	"fmt"

	"dirpx.dev/rsx/apis"
	"dirpx.dev/rsx/config"
	"dirpx.dev/rsx/container"
	"dirpx.dev/rsx/emit"
	"dirpx.dev/rsx/utils/typeid"
	"dirpx.dev/rsx/utils/typeset"
)

var (
	// ErrDuplicateInstallation is returned when a data type already has a
	// dispatch entry.
	ErrDuplicateInstallation = errors.New("rsx(dispatch): duplicate delegate installation")
	// ErrNoDataType is returned for routines that produce nothing.
	ErrNoDataType = errors.New("rsx(dispatch): routine has no return type")
)

// CallableName is the name of the late-bound callable type.
const CallableName = "Func"

// Emitter installs dispatch entries. It is owned by one session.
type Emitter struct {
	cfg       apis.Config
	out       *container.Container
	autopack  *typeset.Set
	delegated *typeset.Set
	reader    *apis.TypeRef
	packing   *apis.TypeRef
	generic   *apis.TypeRef
}

// New returns an Emitter appending to out's initialization method.
// autopack is consulted (never modified) to choose the callable shape.
func New(cfg apis.Config, out *container.Container, autopack *typeset.Set, reader, packing *apis.TypeRef) *Emitter {
	generic, err := typeid.Parse(cfg.GenericReaderType)
	if err != nil {
		generic = &apis.TypeRef{Name: cfg.GenericReaderType, Kind: apis.KindClass}
	}
	return &Emitter{
		cfg:       cfg,
		out:       out,
		autopack:  autopack,
		delegated: &typeset.Set{},
		reader:    reader,
		packing:   packing,
		generic:   generic,
	}
}

// Delegated reports whether t already has a dispatch entry.
func (e *Emitter) Delegated(t *apis.TypeRef) bool {
	return e.delegated.Has(t.FullName())
}

// Count returns the number of installed entries.
func (e *Emitter) Count() int { return e.delegated.Len() }

// Install appends the dispatch entry for r. Instanced routines that are
// generic are skipped without error. A second installation for the same
// data type fails with ErrDuplicateInstallation.
func (e *Emitter) Install(r *apis.Routine, isStatic bool) error {
	if !isStatic && (r.IsGenericInstance() || r.HasGenericParameters()) {
		return nil
	}
	data := r.Return
	if data == nil {
		return fmt.Errorf("%w: %s", ErrNoDataType, r.FullName())
	}
	if !e.delegated.Add(data.FullName()) {
		return fmt.Errorf("%w: %s", ErrDuplicateInstallation, data.FullName())
	}

	packed := e.autopack.Has(typeid.Of(data))
	callable := &apis.TypeRef{Name: CallableName, Kind: apis.KindClass}
	setter := config.SetReadName
	if packed {
		callable.Args = []*apis.TypeRef{e.reader, e.packing, data}
		setter = config.SetReadAutoPackName
	} else {
		callable.Args = []*apis.TypeRef{e.reader, data}
	}

	body := e.out.Init().Body
	e.out.Unseal()
	body.Emit(
		emit.LoadNull(),
		emit.LoadFunc(r),
		emit.NewCallable(callable),
		emit.Call(e.setRoutine(setter, data, callable)),
	)
	e.out.Seal()
	return nil
}

// InstallAll installs an entry for every static entry of reg in identity
// order. Data types that already have an entry are skipped, so a repeated
// call within one session adds nothing.
func (e *Emitter) InstallAll(reg apis.Registry) error {
	var errs []error
	for _, entry := range reg.Entries(false) {
		if entry.Routine.Return != nil && e.Delegated(entry.Routine.Return) {
			continue
		}
		if err := e.Install(entry.Routine, true); err != nil {
			errs = append(errs, err)
		}
	}
	e.out.Seal()
	return errors.Join(errs...)
}

// setRoutine returns GenericReader<data>.<name>(callable).
func (e *Emitter) setRoutine(name string, data, callable *apis.TypeRef) *apis.Routine {
	owner := *e.generic
	owner.Params = nil
	owner.Args = []*apis.TypeRef{data}
	return &apis.Routine{
		Name:   name,
		Owner:  &owner,
		Params: []apis.Param{{Name: "read", Type: callable}},
	}
}
