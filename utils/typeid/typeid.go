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

// Package typeid derives registry keys from type names and parses the small
// type-expression language used by routine manifests.
//
// A type identity is the fully qualified name with every generic argument
// group removed, so "List<int>", "List<T>" and "List[int]" all collapse to
// "List". Array and pointer shapes are kept: "List<int>[]" becomes "List[]"
// and "*game.Box<T>" becomes "*game.Box".
package typeid

import (
	"strings"

	"dirpx.dev/rsx/apis"
)

// Normalize strips every generic argument group from a qualified name.
// Both angle-bracket groups ("<...>") and non-empty square-bracket groups
// ("[...]") are removed, including nested ones; the empty array suffix "[]"
// is preserved.
func Normalize(name string) string {
	if strings.IndexByte(name, '<') < 0 && !strings.Contains(name, "[") {
		return strings.TrimSpace(name)
	}

	var b strings.Builder
	b.Grow(len(name))
	depth := 0
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c == '<':
			depth++
		case c == '>' && depth > 0:
			depth--
		case c == '[' && depth == 0 && i+1 < len(name) && name[i+1] == ']':
			b.WriteString("[]")
			i++
		case c == '[':
			depth++
		case c == ']' && depth > 0:
			depth--
		case depth == 0 && c != ' ':
			b.WriteByte(c)
		}
	}
	return b.String()
}

// Of returns the type identity of t, or "" for nil.
func Of(t *apis.TypeRef) string {
	if t == nil {
		return ""
	}
	return Normalize(t.FullName())
}

// Same reports whether a and b share one type identity.
func Same(a, b *apis.TypeRef) bool {
	return a != nil && b != nil && Of(a) == Of(b)
}
