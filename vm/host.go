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
	"fmt"
	"reflect"

	"dirpx.dev/rsx/apis"
	"dirpx.dev/rsx/config"
	"dirpx.dev/rsx/wire"
)

// bindRuntime implements the per-type dispatch slots of the generic reader.
func (m *Machine) bindRuntime() {
	owner := m.cfg.GenericReaderType
	m.Bind(owner+"::"+config.SetReadName, m.setRead)
	m.Bind(owner+"::"+config.SetReadAutoPackName, m.setRead)
}

func (m *Machine) setRead(c *Call) (any, error) {
	owner := c.Routine.Owner
	if owner == nil || len(owner.Args) != 1 {
		return nil, fmt.Errorf("%w: %s needs one data type", ErrBadOperand, c.Routine.Name)
	}
	v, err := c.Arg(len(c.Args) - 1)
	if err != nil {
		return nil, err
	}
	cb, ok := v.(*Callable)
	if !ok {
		return nil, fmt.Errorf("%w: %s wants a callable, got %T", ErrBadOperand, c.Routine.Name, v)
	}
	id := owner.Args[0].FullName()
	m.dispatch[id] = cb
	m.log.Debug("reader installed", "type", id, "routine", cb.Routine.Name, "autopack", cb.AutoPack())
	return nil, nil
}

// bindWire implements the primitive routines of the reader type.
func (m *Machine) bindWire() {
	key := func(name string) string { return m.cfg.ReaderType + "::" + name }

	m.Bind(key("ReadBool"), plain((*wire.Reader).ReadBool))
	m.Bind(key("ReadUInt8"), plain((*wire.Reader).ReadUInt8))
	m.Bind(key("ReadPackedWhole"), plain((*wire.Reader).ReadPackedWhole))
	m.Bind(key("ReadInt16"), packed((*wire.Reader).ReadInt16))
	m.Bind(key("ReadInt32"), packed((*wire.Reader).ReadInt32))
	m.Bind(key("ReadInt64"), packed((*wire.Reader).ReadInt64))
	m.Bind(key("ReadUInt32"), packed((*wire.Reader).ReadUInt32))
	m.Bind(key("ReadUInt64"), packed((*wire.Reader).ReadUInt64))
	m.Bind(key("ReadSingle"), packed((*wire.Reader).ReadSingle))
	m.Bind(key("ReadDouble"), packed((*wire.Reader).ReadDouble))
	m.Bind(key("ReadString"), readString)
	m.Bind(key("ReadBytes"), readBytes)
	m.Bind(key("ReadRemaining"), readRemaining)
	m.Bind(key("Skip"), skip)
	m.Bind(key(m.cfg.ArrayRoutine), m.readArray)
	m.Bind(key(m.cfg.DictionaryRoutine), m.readDictionary)
}

// readerOf returns the reader passed as receiver or leading argument.
func readerOf(c *Call) (*wire.Reader, error) {
	v, err := c.Arg(0)
	if err != nil {
		return nil, err
	}
	r, ok := deref(v).(*wire.Reader)
	if !ok || r == nil {
		return nil, fmt.Errorf("%w: %s wants a reader, got %T", ErrBadOperand, c.Routine.Name, v)
	}
	return r, nil
}

func intArg(c *Call, i int) (int64, error) {
	v, err := c.Arg(i)
	if err != nil {
		return 0, err
	}
	n, ok := toInt64(v)
	if !ok {
		return 0, fmt.Errorf("%w: %s argument %d is %T", ErrBadOperand, c.Routine.Name, i, v)
	}
	return n, nil
}

func plain[T any](read func(*wire.Reader) (T, error)) HostFunc {
	return func(c *Call) (any, error) {
		r, err := readerOf(c)
		if err != nil {
			return nil, err
		}
		return read(r)
	}
}

func packed[T any](read func(*wire.Reader, apis.PackMode) (T, error)) HostFunc {
	return func(c *Call) (any, error) {
		r, err := readerOf(c)
		if err != nil {
			return nil, err
		}
		mode, err := intArg(c, 1)
		if err != nil {
			return nil, err
		}
		return read(r, apis.PackMode(mode))
	}
}

// readString yields nil for an absent string.
func readString(c *Call) (any, error) {
	r, err := readerOf(c)
	if err != nil {
		return nil, err
	}
	s, ok, err := r.ReadString()
	if err != nil || !ok {
		return nil, err
	}
	return s, nil
}

func readBytes(c *Call) (any, error) {
	r, err := readerOf(c)
	if err != nil {
		return nil, err
	}
	n, err := intArg(c, 1)
	if err != nil {
		return nil, err
	}
	return r.ReadBytes(int32(n))
}

func readRemaining(c *Call) (any, error) {
	r, err := readerOf(c)
	if err != nil {
		return nil, err
	}
	return r.ReadBytes(int32(r.Remaining()))
}

func skip(c *Call) (any, error) {
	r, err := readerOf(c)
	if err != nil {
		return nil, err
	}
	n, err := intArg(c, 1)
	if err != nil {
		return nil, err
	}
	if _, err := r.ReadBytes(int32(n)); err != nil {
		return false, err
	}
	return true, nil
}

// length reads a collection length. -1 marks an absent collection.
func length(r *wire.Reader) (n int, present bool, err error) {
	l, err := r.ReadLength()
	switch {
	case err != nil:
		return 0, false, err
	case l == -1:
		return 0, false, nil
	case l < 0 || int(l) > r.Remaining():
		return 0, false, fmt.Errorf("%w: collection length %d", wire.ErrShortBuffer, l)
	}
	return int(l), true, nil
}

func typeArgs(c *Call, n int) ([]*apis.TypeRef, error) {
	if len(c.Routine.TypeArgs) != n {
		return nil, fmt.Errorf("%w: %s needs %d type arguments", ErrBadOperand, c.Routine.Name, n)
	}
	return c.Routine.TypeArgs, nil
}

// readArray reads a length-prefixed sequence, each element through the
// reader installed for the element type.
func (m *Machine) readArray(c *Call) (any, error) {
	r, err := readerOf(c)
	if err != nil {
		return nil, err
	}
	ta, err := typeArgs(c, 1)
	if err != nil {
		return nil, err
	}
	n, ok, err := length(r)
	if err != nil || !ok {
		return nil, err
	}
	out := make([]any, n)
	for i := range out {
		if out[i], err = m.Read(ta[0], r); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
	}
	return out, nil
}

// readDictionary reads a length-prefixed run of key/value pairs.
func (m *Machine) readDictionary(c *Call) (any, error) {
	r, err := readerOf(c)
	if err != nil {
		return nil, err
	}
	ta, err := typeArgs(c, 2)
	if err != nil {
		return nil, err
	}
	n, ok, err := length(r)
	if err != nil || !ok {
		return nil, err
	}
	out := make(map[any]any, n)
	for i := 0; i < n; i++ {
		k, err := m.Read(ta[0], r)
		if err != nil {
			return nil, fmt.Errorf("key %d: %w", i, err)
		}
		if k == nil || !reflect.TypeOf(k).Comparable() {
			return nil, fmt.Errorf("%w: key %d is not hashable", ErrBadOperand, i)
		}
		if out[k], err = m.Read(ta[1], r); err != nil {
			return nil, fmt.Errorf("value %d: %w", i, err)
		}
	}
	return out, nil
}

// PropertySetter returns a host function that stores its argument into the
// named field of the receiver. It implements plain property setters.
func PropertySetter(field string) HostFunc {
	return func(c *Call) (any, error) {
		if len(c.Args) != 2 {
			return nil, fmt.Errorf("%w: setter %s wants receiver and value", ErrBadOperand, c.Routine.Name)
		}
		target := deref(c.Args[0])
		o, ok := target.(*Object)
		if !ok || o == nil {
			return nil, fmt.Errorf("%w: setter %s on %T", ErrNullReference, c.Routine.Name, target)
		}
		o.Fields[field] = c.Args[1]
		return nil, nil
	}
}
