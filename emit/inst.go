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

package emit

import (
	"dirpx.dev/rsx/apis"
)

// Inst is one instruction. Only the operand fields relevant to Op are set.
type Inst struct {
	Op      Op
	Int     int64
	Local   *Local
	Routine *apis.Routine
	Field   *apis.Field
	Type    *apis.TypeRef
	// Target is the instruction a branch jumps to. It must belong to the
	// same Body.
	Target *Inst
}

// Local is a method-scoped variable slot.
type Local struct {
	Index int
	Type  *apis.TypeRef
}

// Nop returns a label instruction.
func Nop() *Inst { return &Inst{Op: OpNop} }

// LoadArg loads argument i.
func LoadArg(i int) *Inst { return &Inst{Op: OpLoadArg, Int: int64(i)} }

// LoadLocal loads the value of l.
func LoadLocal(l *Local) *Inst { return &Inst{Op: OpLoadLocal, Local: l} }

// LoadLocalAddr loads a reference to l.
func LoadLocalAddr(l *Local) *Inst { return &Inst{Op: OpLoadLocalAddr, Local: l} }

// LoadInt loads an integer constant.
func LoadInt(n int64) *Inst { return &Inst{Op: OpLoadInt, Int: n} }

// LoadNull loads the null reference.
func LoadNull() *Inst { return &Inst{Op: OpLoadNull} }

// LoadFunc loads a function handle for r.
func LoadFunc(r *apis.Routine) *Inst { return &Inst{Op: OpLoadFunc, Routine: r} }

// NewCallable constructs a callable of type t from a target and a handle.
func NewCallable(t *apis.TypeRef) *Inst { return &Inst{Op: OpNewCallable, Type: t} }

// NewObject constructs an instance of t.
func NewObject(t *apis.TypeRef) *Inst { return &Inst{Op: OpNewObject, Type: t} }

// Call calls r directly.
func Call(r *apis.Routine) *Inst { return &Inst{Op: OpCall, Routine: r} }

// CallVirt calls r through its receiver.
func CallVirt(r *apis.Routine) *Inst { return &Inst{Op: OpCallVirt, Routine: r} }

// ConvInt32 converts the top of stack to int32.
func ConvInt32() *Inst { return &Inst{Op: OpConvInt32} }

// StoreLocal stores into l.
func StoreLocal(l *Local) *Inst { return &Inst{Op: OpStoreLocal, Local: l} }

// StoreField stores into field f of the object below the value.
func StoreField(f *apis.Field) *Inst { return &Inst{Op: OpStoreField, Field: f} }

// BranchFalse jumps to target when the popped value is false.
func BranchFalse(target *Inst) *Inst { return &Inst{Op: OpBranchFalse, Target: target} }

// BranchTrue jumps to target when the popped value is true.
func BranchTrue(target *Inst) *Inst { return &Inst{Op: OpBranchTrue, Target: target} }

// BranchNotEqual jumps to target when the two popped values differ.
func BranchNotEqual(target *Inst) *Inst { return &Inst{Op: OpBranchNotEqual, Target: target} }

// Return returns from the method.
func Return() *Inst { return &Inst{Op: OpReturn} }
