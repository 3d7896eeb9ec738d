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

import (
	"fmt"
	"strings"
)

// PackMode selects the compact encoding strategy an auto-packed read
// routine uses.
//
// # Values
//
//   - Unpacked:   fixed-width encoding.
//   - Packed:     variable-length encoding.
//   - PackedLess: variable-length encoding tuned for small magnitudes.
//
// The numeric values are emitted into generated code as integer arguments
// and MUST NOT change.
type PackMode int

const (
	// Unpacked selects fixed-width encoding.
	Unpacked PackMode = iota
	// Packed selects variable-length encoding.
	Packed
	// PackedLess selects variable-length encoding for small magnitudes.
	PackedLess
)

// String returns a short, stable name for the mode. Unknown values render as
// "Unknown(<n>)" rather than panicking.
func (m PackMode) String() string {
	switch m {
	case Unpacked:
		return "Unpacked"
	case Packed:
		return "Packed"
	case PackedLess:
		return "PackedLess"
	default:
		return fmt.Sprintf("Unknown(%d)", int(m))
	}
}

// ParsePackMode is the inverse of String (case-insensitive).
func ParsePackMode(s string) (PackMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "unpacked":
		return Unpacked, nil
	case "packed":
		return Packed, nil
	case "packedless":
		return PackedLess, nil
	default:
		return 0, fmt.Errorf("apis: unknown pack mode %q", s)
	}
}
