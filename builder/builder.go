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

package builder

import (
	"dirpx.dev/rsx/apis"
	"dirpx.dev/rsx/registry"
	"dirpx.dev/rsx/resolver"
	"dirpx.dev/rsx/strategy"
)

// New creates and returns a new instance of an apis.Builder.
func New() apis.Builder {
	return &builder{}
}

// builder is an empty struct to be used as a receiver for builder methods.
type builder struct{}

// BuildRegistry builds and returns a new apis.Registry. If a pre-existing
// registry is provided, the entries of both mappings are copied into the new
// one.
func (b *builder) BuildRegistry(_ apis.Config, prev apis.Registry) apis.Registry {
	nreg := registry.New()
	if prev != nil {
		for _, instanced := range []bool{true, false} {
			for _, e := range prev.Entries(instanced) {
				_ = nreg.Add(e.ID, e.Routine, instanced, false)
			}
		}
	}
	return nreg
}

// BuildResolver builds the resolution chain over reg. Static entries are
// consulted before instanced ones unless cfg.FavorInstanced is set.
func (b *builder) BuildResolver(cfg apis.Config, reg apis.Registry) apis.Resolver {
	static, instanced := strategy.NewStatic(reg), strategy.NewInstanced(reg)
	if cfg.FavorInstanced {
		return resolver.New(instanced, static)
	}
	return resolver.New(static, instanced)
}
