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

package registry

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"dirpx.dev/rsx/apis"
	"dirpx.dev/rsx/utils/typeid"
)

var (
	// ErrEmptyID is returned when an empty type identity is provided.
	ErrEmptyID = errors.New("rsx(registry): empty type identity provided")
	// ErrNilRoutine is returned when a nil routine is provided.
	ErrNilRoutine = errors.New("rsx(registry): nil routine provided")
	// ErrDuplicateRegistration indicates an attempt to register a different
	// routine under an existing identity without allowing overwrite.
	ErrDuplicateRegistration = errors.New("rsx(registry): duplicate registration")
)

// New constructs an empty Registry.
func New() apis.Registry {
	return &registry{
		instanced: make(map[string]*apis.Routine),
		static:    make(map[string]*apis.Routine),
	}
}

// registry is a Registry backed by two plain maps. All access happens on
// the single goroutine driving a compilation session, so there is no locking.
type registry struct {
	instanced map[string]*apis.Routine
	static    map[string]*apis.Routine
}

func (r *registry) side(instanced bool) map[string]*apis.Routine {
	if instanced {
		return r.instanced
	}
	return r.static
}

// Add associates the identity of id with routine in one mapping.
// It is idempotent for the same (identity, routine) pair.
func (r *registry) Add(id string, routine *apis.Routine, instanced, allowOverwrite bool) error {
	// Validate inputs early.
	key := typeid.Normalize(id)
	if key == "" {
		return ErrEmptyID
	}
	if routine == nil {
		return ErrNilRoutine
	}

	m := r.side(instanced)
	if old, ok := m[key]; ok && !allowOverwrite {
		if old == routine || old.FullName() == routine.FullName() {
			return nil // idempotent re-registration
		}
		return fmt.Errorf("%w: %s already maps to %s", ErrDuplicateRegistration, key, old.FullName())
	}
	m[key] = routine
	return nil
}

// Remove deletes the entry for id. Missing entries are ignored.
func (r *registry) Remove(id string, instanced bool) {
	delete(r.side(instanced), typeid.Normalize(id))
}

// Lookup returns the routine registered for id in one mapping.
func (r *registry) Lookup(id string, instanced bool) (*apis.Routine, bool) {
	routine, ok := r.side(instanced)[typeid.Normalize(id)]
	return routine, ok
}

// Entries returns a snapshot of one mapping ordered by identity.
func (r *registry) Entries(instanced bool) []apis.Entry {
	m := r.side(instanced)
	entries := make([]apis.Entry, 0, len(m))
	for id, routine := range m {
		entries = append(entries, apis.Entry{ID: id, Routine: routine})
	}
	slices.SortFunc(entries, func(a, b apis.Entry) int { return strings.Compare(a.ID, b.ID) })
	return entries
}

// Count returns the number of entries in one mapping.
func (r *registry) Count(instanced bool) int {
	return len(r.side(instanced))
}

// Reset clears both mappings.
func (r *registry) Reset() {
	clear(r.instanced)
	clear(r.static)
}
