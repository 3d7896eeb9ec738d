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

// Package rsx synthesizes deserializer routines at build time.
//
// Given a fixed library of primitive read routines and a target type from
// the compile-time type universe, rsx either finds an existing routine
// that reads the type or synthesizes one, recursively resolving member
// types and single-slot generic arguments. Every routine is registered
// under the normalized identity of the type it reads, and a dispatch entry
// is spliced into one shared initialization method so the runtime can find
// the reader of any type.
//
// # Design
//
// All state of one compilation pass lives in a Session:
//
//   - Registry: two mappings from type identity to routine, one for
//     instanced (receiver-bound) readers and one for static readers.
//     Resolve consults the static mapping first.
//
//   - Auto-pack set: identities whose reader takes a packing-mode
//     argument. Generated calls pass the per-type default mode.
//
//   - Container: the synthetic code unit. It holds every synthesized
//     method plus the initialization method that fills the runtime
//     dispatch table.
//
//   - Delegated set: data types that already own a dispatch entry. Each
//     type is installed exactly once.
//
// Sessions never share anything. A second pass starts from a fresh
// NewSession, so nothing a previous pass marked as done can leak into it.
//
// # Pass
//
//	s, err := rsx.NewSession(rsx.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	if err := s.Process(); err != nil {
//		return err
//	}
//	r, err := s.GetOrCreateReadMethodReference(widget)
//
// Process classifies the catalog (see package classifier), registers every
// reader, wraps instanced readers as static extension methods, installs a
// dispatch entry for every static reader and seals the container. Calling
// it again within the same session is a no-op.
//
// GetOrCreateReadMethodReference resolves the type arguments of t first,
// then t itself, and falls back to the generator on a miss. A failure
// anywhere leaves nothing registered for t.
//
// # Limits
//
// Only the first generic argument of a parametrized type is substituted
// into a reader. Types needing more slots fail with
// readers.ErrUnsupportedGenericShape instead of producing wrong code. A
// reader generated for one instance of a generic type is registered under
// the identity shared by all instances; other instances are declined with
// the same error.
//
// # Backend
//
// The container is backend-free. Package vm interprets it against the
// primitives of package wire, which is enough to decode real payloads:
//
//	m, err := s.Machine()
//	v, err := m.Decode(widget, payload)
//
// # Concurrency model
//
// A pass is single-threaded and synchronous. Nothing in rsx takes a lock;
// use one Session per goroutine.
package rsx
