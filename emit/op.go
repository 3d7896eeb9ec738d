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

// Package emit is a small, backend-neutral instruction-sequence builder.
//
// A Body is an ordered list of typed operations over an evaluation stack:
// loading arguments, locals and constants, calling routines, storing results
// and branching. Backends (see package vm) lower a Body into their own
// execution format; nothing here knows about any particular bytecode.
package emit

import "fmt"

// Op is a single instruction kind.
type Op int

const (
	// OpNop does nothing. It is used as a branch target label.
	OpNop Op = iota
	// OpLoadArg pushes argument Int.
	OpLoadArg
	// OpLoadLocal pushes the value of Local.
	OpLoadLocal
	// OpLoadLocalAddr pushes a reference to Local (value-type member stores).
	OpLoadLocalAddr
	// OpLoadInt pushes the integer constant Int.
	OpLoadInt
	// OpLoadNull pushes the null reference.
	OpLoadNull
	// OpLoadFunc pushes a function handle for Routine.
	OpLoadFunc
	// OpNewCallable pops a function handle and a bound target and pushes a
	// callable of type Type.
	OpNewCallable
	// OpNewObject pushes a fresh instance of Type.
	OpNewObject
	// OpCall pops the parameters of Routine, calls it and pushes its result
	// unless it returns nothing.
	OpCall
	// OpCallVirt is OpCall through the receiver found below the parameters.
	OpCallVirt
	// OpConvInt32 converts the top of stack to int32.
	OpConvInt32
	// OpStoreLocal pops into Local.
	OpStoreLocal
	// OpStoreField pops a value and an object reference and assigns Field.
	OpStoreField
	// OpBranchFalse pops a value and jumps to Target when it is false, zero
	// or null.
	OpBranchFalse
	// OpBranchTrue pops a value and jumps to Target when it is true, non-zero
	// or non-null.
	OpBranchTrue
	// OpBranchNotEqual pops two values and jumps to Target when they differ.
	OpBranchNotEqual
	// OpReturn returns the top of stack, or nothing when the stack is empty.
	OpReturn
)

var opNames = [...]string{
	OpNop:            "nop",
	OpLoadArg:        "load.arg",
	OpLoadLocal:      "load.local",
	OpLoadLocalAddr:  "load.local.addr",
	OpLoadInt:        "load.int",
	OpLoadNull:       "load.null",
	OpLoadFunc:       "load.func",
	OpNewCallable:    "new.callable",
	OpNewObject:      "new.object",
	OpCall:           "call",
	OpCallVirt:       "call.virt",
	OpConvInt32:      "conv.int32",
	OpStoreLocal:     "store.local",
	OpStoreField:     "store.field",
	OpBranchFalse:    "branch.false",
	OpBranchTrue:     "branch.true",
	OpBranchNotEqual: "branch.ne",
	OpReturn:         "return",
}

// String returns a short, stable mnemonic. Unknown values render as
// "Unknown(<n>)".
func (op Op) String() string {
	if op >= 0 && int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("Unknown(%d)", int(op))
}

// IsBranch reports whether op transfers control to a Target.
func (op Op) IsBranch() bool {
	return op == OpBranchFalse || op == OpBranchTrue || op == OpBranchNotEqual
}
