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

// Config carries read-only knobs that drive classification, resolution and
// emission. It is passed by value and should be treated as immutable by
// implementations.
type Config struct {
	// ReadPrefix is the prefix every discoverable read routine starts with.
	ReadPrefix string

	// PackedWholeRoutine, ArrayRoutine and DictionaryRoutine name the
	// multi-purpose primitives that are invoked directly instead of being
	// registered generically.
	PackedWholeRoutine string
	ArrayRoutine       string
	DictionaryRoutine  string

	// PackingType is the type identity of the packing-mode parameter.
	PackingType string

	// UnpackedTypes lists type identities whose default packing mode is
	// Unpacked. Every other auto-packed type defaults to Packed.
	UnpackedTypes []string

	// ExcludeAttribute marks routines that must never be discovered.
	ExcludeAttribute string

	// NonSerializedAttribute marks types that must never be generated.
	NonSerializedAttribute string

	// ReaderType is the full name of the primitive reader type.
	ReaderType string

	// GenericReaderType is the full name of the runtime dispatch holder
	// whose per-type slots the init routine fills.
	GenericReaderType string

	// Namespace and ContainerName identify the generated container.
	Namespace     string
	ContainerName string

	// InitRoutineName is the name of the run-once initialization routine.
	InitRoutineName string

	// ExtensionPrefix prefixes synthesized extension routines.
	ExtensionPrefix string

	// GeneratedPrefix prefixes readers created by the generator.
	GeneratedPrefix string

	// SynthesizeExtensions enables wrapping instanced readers as static ones.
	SynthesizeExtensions bool

	// FavorInstanced flips resolution precedence to instanced-first.
	// Static-first (false) is the only precedence exercised by the engine.
	FavorInstanced bool

	// MaxGenericArity is the number of generic argument slots the engine
	// substitutes. Anything beyond it is declined.
	MaxGenericArity int

	// MaxUnwrap limits nesting depth when converting host types into the
	// type universe (ptr/slice/array/map).
	MaxUnwrap int
}

// IsSpecial reports whether name is one of the multi-purpose primitives.
func (c Config) IsSpecial(name string) bool {
	return name != "" && (name == c.PackedWholeRoutine || name == c.ArrayRoutine || name == c.DictionaryRoutine)
}
