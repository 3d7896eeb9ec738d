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

package strategy

import (
	"dirpx.dev/rsx/apis"
)

// NewStatic creates an apis.Strategy that consults the static mapping of reg.
func NewStatic(reg apis.Registry) apis.Strategy {
	return &registryStrategy{reg: reg}
}

// NewInstanced creates an apis.Strategy that consults the instanced mapping of reg.
func NewInstanced(reg apis.Registry) apis.Strategy {
	return &registryStrategy{reg: reg, instanced: true}
}

// registryStrategy consults one side of a provided apis.Registry.
type registryStrategy struct {
	reg       apis.Registry
	instanced bool
}

// Ensure registryStrategy implements apis.Strategy.
var _ apis.Strategy = (*registryStrategy)(nil)

// TryResolve looks up id in the registry.
func (s *registryStrategy) TryResolve(id string) (*apis.Routine, bool) {
	if id == "" || s.reg == nil {
		return nil, false
	}
	return s.reg.Lookup(id, s.instanced)
}
