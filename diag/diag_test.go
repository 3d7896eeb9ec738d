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

package diag_test

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"dirpx.dev/rsx/diag"
	"dirpx.dev/rsx/dispatch"
	"dirpx.dev/rsx/readers"
	"dirpx.dev/rsx/registry"
)

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestKindOf(t *testing.T) {
	cases := []struct {
		err  error
		want diag.Kind
	}{
		{fmt.Errorf("x: %w", registry.ErrDuplicateRegistration), diag.DuplicateRegistration},
		{fmt.Errorf("x: %w", dispatch.ErrDuplicateInstallation), diag.DuplicateInstallation},
		{fmt.Errorf("x: %w", readers.ErrUnresolvedDeserializer), diag.UnresolvedDeserializer},
		{fmt.Errorf("x: %w", readers.ErrUnsupportedGenericShape), diag.UnsupportedGenericShape},
		{errors.Join(readers.ErrUnresolvedDeserializer, readers.ErrUnsupportedGenericShape), diag.UnsupportedGenericShape},
		{errors.New("boom"), diag.Other},
	}
	for _, tc := range cases {
		if got := diag.KindOf(tc.err); got != tc.want {
			t.Fatalf("KindOf(%v) = %s, want %s", tc.err, got, tc.want)
		}
	}
}

func TestReportOncePerKindAndType(t *testing.T) {
	r := diag.NewReporter(quiet())
	err := fmt.Errorf("%w for game.Widget", readers.ErrUnresolvedDeserializer)

	if !r.Report("game.Widget", err) {
		t.Fatalf("first report must be recorded")
	}
	if r.Report("game.Widget", err) {
		t.Fatalf("second report of the same pair must be dropped")
	}
	if !r.Report("game.Gadget", err) {
		t.Fatalf("another type must be recorded")
	}
	if r.Report("game.Gadget", nil) {
		t.Fatalf("nil errors are not diagnostics")
	}
	if r.Len() != 2 {
		t.Fatalf("got %d diagnostics, want 2", r.Len())
	}
	if !errors.Is(r.Err(), readers.ErrUnresolvedDeserializer) {
		t.Fatalf("Err() = %v, want it to wrap ErrUnresolvedDeserializer", r.Err())
	}
}

func TestEmptyReporter(t *testing.T) {
	r := diag.NewReporter(quiet())
	if r.Err() != nil || len(r.All()) != 0 {
		t.Fatalf("empty reporter must have no error")
	}
}
