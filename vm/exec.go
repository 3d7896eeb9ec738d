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

package vm

import (
	"errors"
	"fmt"

	"dirpx.dev/rsx/apis"
	"dirpx.dev/rsx/emit"
)

// frame is the activation of one interpreted method.
type frame struct {
	args   []any
	locals []any
	stack  []any
}

func (f *frame) push(v any) { f.stack = append(f.stack, v) }

func (f *frame) pop() any {
	n := len(f.stack)
	if n == 0 {
		panic(ErrStackUnderflow)
	}
	v := f.stack[n-1]
	f.stack = f.stack[:n-1]
	return v
}

// popN pops n values and returns them in push order.
func (f *frame) popN(n int) []any {
	if len(f.stack) < n {
		panic(ErrStackUnderflow)
	}
	out := make([]any, n)
	copy(out, f.stack[len(f.stack)-n:])
	f.stack = f.stack[:len(f.stack)-n]
	return out
}

// exec interprets meth. Stack underflow panics inside the loop and is
// turned into an error here.
func (m *Machine) exec(meth *emit.Method, args []any) (result any, err error) {
	body := meth.Body
	f := &frame{args: args, locals: make([]any, len(body.Locals))}

	defer func() {
		if rec := recover(); rec != nil {
			e, ok := rec.(error)
			if !ok || !errors.Is(e, ErrStackUnderflow) {
				panic(rec)
			}
			result, err = nil, fmt.Errorf("%s: %w", meth.Ref.Name, e)
		}
	}()

	targets := make(map[*emit.Inst]int, len(body.Insts))
	for i, in := range body.Insts {
		targets[in] = i
	}
	jump := func(in *emit.Inst) (int, error) {
		pc, ok := targets[in.Target]
		if !ok {
			return 0, fmt.Errorf("%s: %w", meth.Ref.Name, emit.ErrDanglingBranch)
		}
		// The loop increments past the label.
		return pc - 1, nil
	}

	for pc := 0; pc < len(body.Insts); pc++ {
		in := body.Insts[pc]
		switch in.Op {
		case emit.OpNop:

		case emit.OpLoadArg:
			i := int(in.Int)
			if i < 0 || i >= len(f.args) {
				return nil, fmt.Errorf("%w: %s has no argument %d", ErrBadOperand, meth.Ref.Name, i)
			}
			f.push(f.args[i])

		case emit.OpLoadLocal:
			v := f.locals[in.Local.Index]
			if o, ok := v.(*Object); ok && o.Type.ValueType {
				v = o.clone()
			}
			f.push(v)

		case emit.OpLoadLocalAddr:
			f.push(Ref{slot: &f.locals[in.Local.Index]})

		case emit.OpLoadInt:
			f.push(in.Int)

		case emit.OpLoadNull:
			f.push(nil)

		case emit.OpLoadFunc:
			f.push(in.Routine)

		case emit.OpNewCallable:
			handle := f.pop()
			target := f.pop()
			r, ok := handle.(*apis.Routine)
			if !ok {
				return nil, fmt.Errorf("%w: callable handle is %T", ErrBadOperand, handle)
			}
			f.push(&Callable{Type: in.Type, Target: target, Routine: r})

		case emit.OpNewObject:
			f.push(NewObject(in.Type))

		case emit.OpCall, emit.OpCallVirt:
			n := len(in.Routine.Params)
			if in.Routine.IsInstanced() {
				n++
			}
			callArgs := f.popN(n)
			if in.Op == emit.OpCallVirt && (n == 0 || deref(callArgs[0]) == nil) {
				return nil, fmt.Errorf("%w: receiver of %s", ErrNullReference, in.Routine.Name)
			}
			res, err := m.Invoke(in.Routine, callArgs...)
			if err != nil {
				return nil, err
			}
			if in.Routine.Return != nil {
				f.push(res)
			}

		case emit.OpConvInt32:
			v := f.pop()
			n, ok := toInt64(v)
			if !ok {
				return nil, fmt.Errorf("%w: cannot convert %T to int32", ErrBadOperand, v)
			}
			f.push(int32(n))

		case emit.OpStoreLocal:
			f.locals[in.Local.Index] = f.pop()

		case emit.OpStoreField:
			v := f.pop()
			target := deref(f.pop())
			if target == nil {
				return nil, fmt.Errorf("%w: store %s", ErrNullReference, in.Field.Name)
			}
			o, ok := target.(*Object)
			if !ok {
				return nil, fmt.Errorf("%w: store %s into %T", ErrBadOperand, in.Field.Name, target)
			}
			o.Fields[in.Field.Name] = v

		case emit.OpBranchFalse, emit.OpBranchTrue:
			cond := truthy(f.pop())
			if cond == (in.Op == emit.OpBranchTrue) {
				if pc, err = jump(in); err != nil {
					return nil, err
				}
			}

		case emit.OpBranchNotEqual:
			b := f.pop()
			a := f.pop()
			if !equal(a, b) {
				if pc, err = jump(in); err != nil {
					return nil, err
				}
			}

		case emit.OpReturn:
			if meth.Ref.Return == nil || len(f.stack) == 0 {
				return nil, nil
			}
			return f.pop(), nil

		default:
			return nil, fmt.Errorf("%w: opcode %s", ErrBadOperand, in.Op)
		}
	}
	return nil, fmt.Errorf("%s: %w", meth.Ref.Name, emit.ErrUnterminated)
}
