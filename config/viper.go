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
	"github.com/spf13/viper"

	"dirpx.dev/rsx/apis"
)

// Keys understood by FromViper. They double as CLI flag names; with an
// env prefix of "rsx" and a "-" to "_" replacer they map to RSX_READ_PREFIX
// and so on.
const (
	KeyReadPrefix           = "read-prefix"
	KeyNamespace            = "namespace"
	KeyContainer            = "container"
	KeyInitRoutine          = "init-routine"
	KeyFavorInstanced       = "favor-instanced"
	KeySynthesizeExtensions = "synthesize-extensions"
	KeyMaxGenericArity      = "max-generic-arity"
	KeyMaxUnwrap            = "max-unwrap"
	KeyUnpackedTypes        = "unpacked-types"
)

// FromViper builds a Config from v, starting at DefaultConfig and applying
// every key that is set. A nil v yields DefaultConfig.
func FromViper(v *viper.Viper) apis.Config {
	if v == nil {
		return DefaultConfig()
	}
	var opts []Option
	if v.IsSet(KeyReadPrefix) {
		opts = append(opts, WithReadPrefix(v.GetString(KeyReadPrefix)))
	}
	if v.IsSet(KeyNamespace) || v.IsSet(KeyContainer) {
		ns, name := DefaultNamespace, DefaultContainerName
		if v.IsSet(KeyNamespace) {
			ns = v.GetString(KeyNamespace)
		}
		if v.IsSet(KeyContainer) {
			name = v.GetString(KeyContainer)
		}
		opts = append(opts, WithContainer(ns, name))
	}
	if v.IsSet(KeyInitRoutine) {
		name := v.GetString(KeyInitRoutine)
		opts = append(opts, func(c *apis.Config) {
			if name != "" {
				c.InitRoutineName = name
			}
		})
	}
	if v.IsSet(KeyFavorInstanced) {
		opts = append(opts, WithFavorInstanced(v.GetBool(KeyFavorInstanced)))
	}
	if v.IsSet(KeySynthesizeExtensions) {
		opts = append(opts, WithSynthesizeExtensions(v.GetBool(KeySynthesizeExtensions)))
	}
	if v.IsSet(KeyMaxGenericArity) {
		opts = append(opts, WithMaxGenericArity(v.GetInt(KeyMaxGenericArity)))
	}
	if v.IsSet(KeyMaxUnwrap) {
		opts = append(opts, WithMaxUnwrap(v.GetInt(KeyMaxUnwrap)))
	}
	if v.IsSet(KeyUnpackedTypes) {
		opts = append(opts, WithUnpackedTypes(v.GetStringSlice(KeyUnpackedTypes)...))
	}
	return NewConfig(opts...)
}
