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

package config

import (
	"slices"

	"dirpx.dev/rsx/apis"
)

const (
	// DefaultReadPrefix is the prefix discoverable read routines start with.
	DefaultReadPrefix = "Read"
	// DefaultPackedWholeRoutine reads a variable-length whole number and
	// doubles as the null sentinel reader.
	DefaultPackedWholeRoutine = "ReadPackedWhole"
	// DefaultArrayRoutine reads a length-prefixed array of any element type.
	DefaultArrayRoutine = "ReadArray"
	// DefaultDictionaryRoutine reads a length-prefixed map.
	DefaultDictionaryRoutine = "ReadDictionary"
	// DefaultPackingType is the identity of the packing-mode parameter type.
	DefaultPackingType = "wire.AutoPackType"
	// DefaultReaderType is the primitive reader type.
	DefaultReaderType = "wire.Reader"
	// DefaultGenericReaderType holds the per-type dispatch slots.
	DefaultGenericReaderType = "wire.GenericReader"
	// DefaultExcludeAttribute excludes a routine from discovery.
	DefaultExcludeAttribute = "CodegenExclude"
	// DefaultNonSerializedAttribute excludes a type from generation.
	DefaultNonSerializedAttribute = "NonSerialized"
	// DefaultNamespace is the namespace of the generated container.
	DefaultNamespace = "rsx.generated"
	// DefaultContainerName is the name of the generated container.
	DefaultContainerName = "GeneratedReaders___Internal"
	// DefaultInitRoutineName is the run-once initialization routine.
	DefaultInitRoutineName = "InitializeOnce"
	// DefaultExtensionPrefix prefixes synthesized extension routines.
	DefaultExtensionPrefix = "InstancedExtension___"
	// DefaultGeneratedPrefix prefixes generator-created readers.
	DefaultGeneratedPrefix = "Read___"
	// DefaultSynthesizeExtensions enables the extension synthesizer.
	DefaultSynthesizeExtensions = true
	// DefaultFavorInstanced keeps static-first resolution.
	DefaultFavorInstanced = false
	// DefaultMaxGenericArity is the single supported generic slot.
	DefaultMaxGenericArity = 1
	// SupportedGenericArity caps MaxGenericArity. Readers substitute one
	// type argument; wider shapes are always declined.
	SupportedGenericArity = 1
	// DefaultMaxUnwrap represents the default for MaxUnwrap.
	// A value of 8 should be sufficient for all practical purposes.
	DefaultMaxUnwrap = 8
)

// Dispatch setter names on the generic reader type.
const (
	SetReadName         = "SetRead"
	SetReadAutoPackName = "SetReadAutoPack"
)

// DefaultUnpackedTypes are the types whose default packing mode is Unpacked.
func DefaultUnpackedTypes() []string { return []string{"float32", "float64"} }

// NewConfig constructs an apis.Config from the given options.
func NewConfig(opts ...Option) apis.Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	// Ensure MaxUnwrap and MaxGenericArity are valid.
	if cfg.MaxUnwrap < 0 {
		cfg.MaxUnwrap = DefaultMaxUnwrap
	}
	if cfg.MaxGenericArity < 0 {
		cfg.MaxGenericArity = DefaultMaxGenericArity
	}
	cfg.MaxGenericArity = GenericArity(cfg)
	return cfg
}

// GenericArity returns the number of generic arguments a type may carry
// under cfg: MaxGenericArity, never more than SupportedGenericArity.
func GenericArity(cfg apis.Config) int {
	return min(max(cfg.MaxGenericArity, 0), SupportedGenericArity)
}

// DefaultConfig is the default configuration used when none is provided.
func DefaultConfig() apis.Config {
	return apis.Config{
		ReadPrefix:             DefaultReadPrefix,
		PackedWholeRoutine:     DefaultPackedWholeRoutine,
		ArrayRoutine:           DefaultArrayRoutine,
		DictionaryRoutine:      DefaultDictionaryRoutine,
		PackingType:            DefaultPackingType,
		UnpackedTypes:          DefaultUnpackedTypes(),
		ExcludeAttribute:       DefaultExcludeAttribute,
		NonSerializedAttribute: DefaultNonSerializedAttribute,
		ReaderType:             DefaultReaderType,
		GenericReaderType:      DefaultGenericReaderType,
		Namespace:              DefaultNamespace,
		ContainerName:          DefaultContainerName,
		InitRoutineName:        DefaultInitRoutineName,
		ExtensionPrefix:        DefaultExtensionPrefix,
		GeneratedPrefix:        DefaultGeneratedPrefix,
		SynthesizeExtensions:   DefaultSynthesizeExtensions,
		FavorInstanced:         DefaultFavorInstanced,
		MaxGenericArity:        DefaultMaxGenericArity,
		MaxUnwrap:              DefaultMaxUnwrap,
	}
}

// DefaultPackMode returns the packing mode used when a caller does not pick
// one: Unpacked for the configured floating point types, Packed otherwise.
func DefaultPackMode(cfg apis.Config, id string) apis.PackMode {
	if slices.Contains(cfg.UnpackedTypes, id) {
		return apis.Unpacked
	}
	return apis.Packed
}

// Option is a functional option that mutates an apis.Config during construction.
type Option func(*apis.Config)

// WithReadPrefix sets the discovery prefix. An empty prefix is ignored.
func WithReadPrefix(prefix string) Option {
	return func(c *apis.Config) {
		if prefix != "" {
			c.ReadPrefix = prefix
		}
	}
}

// WithFavorInstanced sets the FavorInstanced option.
func WithFavorInstanced(favor bool) Option {
	return func(c *apis.Config) {
		c.FavorInstanced = favor
	}
}

// WithSynthesizeExtensions sets the SynthesizeExtensions option.
func WithSynthesizeExtensions(enabled bool) Option {
	return func(c *apis.Config) {
		c.SynthesizeExtensions = enabled
	}
}

// WithMaxGenericArity sets the MaxGenericArity option.
// A negative value resets to the default; values above
// SupportedGenericArity are capped.
func WithMaxGenericArity(n int) Option {
	return func(c *apis.Config) {
		if n < 0 {
			c.MaxGenericArity = DefaultMaxGenericArity
			return
		}
		c.MaxGenericArity = min(n, SupportedGenericArity)
	}
}

// WithMaxUnwrap sets the MaxUnwrap option.
// A negative value resets to the default.
func WithMaxUnwrap(max int) Option {
	return func(c *apis.Config) {
		if max < 0 {
			c.MaxUnwrap = DefaultMaxUnwrap
			return
		}
		c.MaxUnwrap = max
	}
}

// WithContainer sets the namespace and name of the generated container.
func WithContainer(namespace, name string) Option {
	return func(c *apis.Config) {
		c.Namespace = namespace
		if name != "" {
			c.ContainerName = name
		}
	}
}

// WithUnpackedTypes replaces the set of types defaulting to Unpacked.
func WithUnpackedTypes(ids ...string) Option {
	return func(c *apis.Config) {
		c.UnpackedTypes = slices.Clone(ids)
	}
}

// WithRuntime sets the reader and generic reader type names.
func WithRuntime(readerType, genericReaderType, packingType string) Option {
	return func(c *apis.Config) {
		if readerType != "" {
			c.ReaderType = readerType
		}
		if genericReaderType != "" {
			c.GenericReaderType = genericReaderType
		}
		if packingType != "" {
			c.PackingType = packingType
		}
	}
}
