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

// Package classifier decides what role a catalog routine plays in reader
// synthesis. Classification is pure: callers perform any registration.
package classifier

import (
	"fmt"
	"strings"

	"dirpx.dev/rsx/apis"
	"dirpx.dev/rsx/utils/typeid"
)

// Class is the role of a routine.
type Class int

const (
	// Ignored routines are not readers.
	Ignored Class = iota
	// Primitive routines are registered under their return type identity.
	Primitive
	// Special routines are multi-purpose primitives invoked directly by the
	// read-instruction builder.
	Special
	// AutoPacked routines are primitives taking one packing-mode argument.
	AutoPacked
)

// String returns a short, stable name for the class.
func (c Class) String() string {
	switch c {
	case Ignored:
		return "Ignored"
	case Primitive:
		return "Primitive"
	case Special:
		return "Special"
	case AutoPacked:
		return "AutoPacked"
	default:
		return fmt.Sprintf("Unknown(%d)", int(c))
	}
}

// IsReader reports whether routines of class c are registered generically.
func (c Class) IsReader() bool { return c == Primitive || c == AutoPacked }

// Classify returns the class of r under cfg.
func Classify(cfg apis.Config, r *apis.Routine) Class {
	c, _ := Explain(cfg, r)
	return c
}

// Explain is Classify plus a short human-readable reason for Ignored and
// Special outcomes. The reason is empty for readers.
func Explain(cfg apis.Config, r *apis.Routine) (Class, string) {
	if r == nil {
		return Ignored, "nil routine"
	}
	if cfg.IsSpecial(r.Name) {
		return Special, "multi-purpose primitive"
	}
	if cfg.ExcludeAttribute != "" && r.HasAttribute(cfg.ExcludeAttribute) {
		return Ignored, "excluded by " + cfg.ExcludeAttribute
	}
	if len(r.Name) < len(cfg.ReadPrefix) {
		return Ignored, "name shorter than prefix " + cfg.ReadPrefix
	}
	if !strings.HasPrefix(r.Name, cfg.ReadPrefix) {
		return Ignored, "name lacks prefix " + cfg.ReadPrefix
	}

	params := r.OperandParams()
	switch len(params) {
	case 0:
		return Primitive, ""
	case 1:
		if typeid.Of(params[0].Type) == typeid.Normalize(cfg.PackingType) {
			return AutoPacked, ""
		}
		return Ignored, fmt.Sprintf("parameter %s is not %s", params[0].Type.FullName(), cfg.PackingType)
	default:
		return Ignored, fmt.Sprintf("declares %d parameters", len(params))
	}
}
