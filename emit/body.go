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
	"errors"
	"fmt"
	"slices"
	"strings"

	"dirpx.dev/rsx/apis"
)

var (
	// ErrUnterminated is returned when a body does not end in a return.
	ErrUnterminated = errors.New("rsx(emit): body does not end with return")
	// ErrDanglingBranch is returned when a branch targets an instruction
	// outside its body.
	ErrDanglingBranch = errors.New("rsx(emit): branch target outside body")
)

// Body is the instruction sequence of one method together with the slots
// it declares.
type Body struct {
	Params []apis.Param
	Locals []*Local
	Insts  []*Inst
}

// NewLocal declares a fresh local of type t.
func (b *Body) NewLocal(t *apis.TypeRef) *Local {
	l := &Local{Index: len(b.Locals), Type: t}
	b.Locals = append(b.Locals, l)
	return l
}

// Emit appends insts in order.
func (b *Body) Emit(insts ...*Inst) {
	b.Insts = append(b.Insts, insts...)
}

// Len returns the number of instructions.
func (b *Body) Len() int { return len(b.Insts) }

// Last returns the final instruction, or nil for an empty body.
func (b *Body) Last() *Inst {
	if len(b.Insts) == 0 {
		return nil
	}
	return b.Insts[len(b.Insts)-1]
}

// IndexOf returns the position of inst, or -1.
func (b *Body) IndexOf(inst *Inst) int {
	return slices.Index(b.Insts, inst)
}

// RemoveAt deletes the instruction at i.
func (b *Body) RemoveAt(i int) {
	b.Insts = slices.Delete(b.Insts, i, i+1)
}

// TrimReturn removes every trailing return instruction that is not a branch
// target, so more instructions can be appended to an already sealed body.
func (b *Body) TrimReturn() {
	for n := len(b.Insts); n > 0; n = len(b.Insts) {
		last := b.Insts[n-1]
		if last.Op != OpReturn || b.isTarget(last) {
			return
		}
		b.RemoveAt(n - 1)
	}
}

// Seal makes the body end in exactly one return. It is idempotent.
func (b *Body) Seal() {
	b.TrimReturn()
	b.Emit(Return())
}

func (b *Body) isTarget(inst *Inst) bool {
	for _, in := range b.Insts {
		if in.Target == inst {
			return true
		}
	}
	return false
}

// Validate checks that the body ends in a return and that every branch
// targets an instruction of the body.
func (b *Body) Validate() error {
	if last := b.Last(); last == nil || last.Op != OpReturn {
		return ErrUnterminated
	}
	for i, in := range b.Insts {
		if in.Op.IsBranch() && b.IndexOf(in.Target) < 0 {
			return fmt.Errorf("%w: instruction %04d", ErrDanglingBranch, i)
		}
	}
	return nil
}

// Method pairs a routine reference with the body implementing it.
type Method struct {
	Ref  *apis.Routine
	Body *Body
}

// NewMethod returns a method for ref whose body declares ref's parameters.
func NewMethod(ref *apis.Routine) *Method {
	return &Method{Ref: ref, Body: &Body{Params: slices.Clone(ref.Params)}}
}

// Disassemble renders m as text, one instruction per line.
func Disassemble(m *Method) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("== %s ==\n", m.Ref.FullName()))
	for _, l := range m.Body.Locals {
		sb.WriteString(fmt.Sprintf("     local %d %s\n", l.Index, l.Type.FullName()))
	}
	for i, in := range m.Body.Insts {
		operand := ""
		switch in.Op {
		case OpLoadArg, OpLoadInt:
			operand = fmt.Sprint(in.Int)
		case OpLoadLocal, OpLoadLocalAddr, OpStoreLocal:
			operand = fmt.Sprint(in.Local.Index)
		case OpLoadFunc, OpCall, OpCallVirt:
			operand = in.Routine.FullName()
		case OpNewCallable, OpNewObject:
			operand = in.Type.FullName()
		case OpStoreField:
			operand = in.Field.Name
		case OpBranchFalse, OpBranchTrue, OpBranchNotEqual:
			operand = fmt.Sprintf("-> %04d", m.Body.IndexOf(in.Target))
		}
		line := fmt.Sprintf("%04d %-16s %s", i, in.Op, operand)
		sb.WriteString(strings.TrimRight(line, " "))
		sb.WriteByte('\n')
	}
	return sb.String()
}
