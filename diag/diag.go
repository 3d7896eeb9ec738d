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

// Package diag collects pass-fatal diagnostics. Each distinct (kind, type)
// pair is recorded and logged once; the pass keeps going for other types.
package diag

import (
	"errors"
	"fmt"
	"log/slog"

	"dirpx.dev/rsx/dispatch"
	"dirpx.dev/rsx/readers"
	"dirpx.dev/rsx/registry"
)

// Kind classifies a diagnostic.
type Kind int

const (
	// Other is any failure without a dedicated kind.
	Other Kind = iota
	// DuplicateRegistration reports a registry key clash.
	DuplicateRegistration
	// DuplicateInstallation reports a second dispatch entry for a type.
	DuplicateInstallation
	// UnresolvedDeserializer reports a type nothing can read.
	UnresolvedDeserializer
	// UnsupportedGenericShape reports a type needing too many generic slots.
	UnsupportedGenericShape
)

// String returns a short, stable name for the kind.
func (k Kind) String() string {
	switch k {
	case DuplicateRegistration:
		return "DuplicateRegistration"
	case DuplicateInstallation:
		return "DuplicateDelegateInstallation"
	case UnresolvedDeserializer:
		return "UnresolvedDeserializer"
	case UnsupportedGenericShape:
		return "UnsupportedGenericShape"
	default:
		return "Other"
	}
}

// KindOf maps err onto a Kind by its sentinel. When several sentinels are
// wrapped the most specific one wins.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, readers.ErrUnsupportedGenericShape):
		return UnsupportedGenericShape
	case errors.Is(err, dispatch.ErrDuplicateInstallation):
		return DuplicateInstallation
	case errors.Is(err, registry.ErrDuplicateRegistration):
		return DuplicateRegistration
	case errors.Is(err, readers.ErrUnresolvedDeserializer):
		return UnresolvedDeserializer
	default:
		return Other
	}
}

// Diagnostic is one recorded failure.
type Diagnostic struct {
	Kind Kind
	// Type is the full name of the offending type.
	Type string
	Err  error
}

// Error implements error.
func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s %s: %v", d.Kind, d.Type, d.Err)
}

// Unwrap returns the underlying error.
func (d Diagnostic) Unwrap() error { return d.Err }

type key struct {
	kind Kind
	typ  string
}

// Reporter records diagnostics. It is owned by one session.
type Reporter struct {
	log  *slog.Logger
	seen map[key]struct{}
	list []Diagnostic
}

// NewReporter returns a Reporter logging through log.
func NewReporter(log *slog.Logger) *Reporter {
	return &Reporter{log: log, seen: make(map[key]struct{})}
}

// Report records err for typ unless the same kind was already reported for
// it. It reports whether the diagnostic was new.
func (r *Reporter) Report(typ string, err error) bool {
	if err == nil {
		return false
	}
	k := key{kind: KindOf(err), typ: typ}
	if _, dup := r.seen[k]; dup {
		return false
	}
	r.seen[k] = struct{}{}
	d := Diagnostic{Kind: k.kind, Type: typ, Err: err}
	r.list = append(r.list, d)
	r.log.Error("diagnostic", "kind", d.Kind.String(), "type", typ, "err", err)
	return true
}

// Len returns the number of recorded diagnostics.
func (r *Reporter) Len() int { return len(r.list) }

// All returns the diagnostics in report order.
func (r *Reporter) All() []Diagnostic {
	return append([]Diagnostic(nil), r.list...)
}

// Err joins every diagnostic, or returns nil when there are none.
func (r *Reporter) Err() error {
	errs := make([]error, len(r.list))
	for i, d := range r.list {
		errs[i] = d
	}
	return errors.Join(errs...)
}
