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

// Registry holds the two routine mappings (instanced and static) keyed by
// type identity. It is owned by a single compilation session and is not
// safe for concurrent use.
type Registry interface {
	// Add associates id with r in the instanced or static mapping.
	// Re-adding the identical routine is a no-op; any other existing entry
	// fails unless allowOverwrite is set.
	Add(id string, r *Routine, instanced, allowOverwrite bool) error
	// Remove deletes the entry for id. Removing an absent id is a no-op.
	Remove(id string, instanced bool)
	// Lookup returns the routine registered for id, if present.
	Lookup(id string, instanced bool) (r *Routine, ok bool)
	// Entries returns a snapshot of one mapping ordered by identity.
	Entries(instanced bool) []Entry
	// Count returns the number of entries in one mapping.
	Count(instanced bool) int
	// Reset clears both mappings.
	Reset()
}

// Entry is a single (identity, routine) association in a Registry snapshot.
type Entry struct {
	// ID is the type identity.
	ID string
	// Routine is the registered routine.
	Routine *Routine
}
