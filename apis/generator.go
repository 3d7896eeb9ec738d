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

// Generator synthesizes a reader for a type that has none registered.
//
// CreateReader returns (nil, nil) when the type is simply not generatable
// (e.g. marked NonSerialized) and a non-nil error when generation started but
// a member could not be resolved. Implementations call back into the
// read-instruction builders while constructing the composite routine.
type Generator interface {
	CreateReader(t *TypeRef) (*Routine, error)
}
