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

// Package wire is a minimal primitive reader/writer pair. It stands in for
// the primitive routine library that generated readers call into: its
// method set matches the bundled catalog manifest.
//
// Layout:
//   - Unpacked integers and floats are fixed-width little endian.
//   - Packed and PackedLess integers are varints; signed values are
//     zigzag encoded. Packed floats use the varint of their bit pattern.
//   - Strings and byte runs are prefixed by their packed whole length;
//     a length of -1 marks an absent value.
//   - Booleans are one byte.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"dirpx.dev/rsx/apis"
)

var (
	// ErrShortBuffer is returned when the input ends inside a value.
	ErrShortBuffer = errors.New("rsx(wire): unexpected end of input")
	// ErrOverflow is returned for varints wider than 64 bits.
	ErrOverflow = errors.New("rsx(wire): varint overflows 64 bits")
)

// Absent is the packed whole number marking a missing value.
const Absent = ^uint64(0)

// Reader decodes primitives from an in-memory buffer.
type Reader struct {
	buf []byte
	pos int
}

// NewReader returns a Reader over data.
func NewReader(data []byte) *Reader { return &Reader{buf: data} }

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int { return len(r.buf) - r.pos }

func (r *Reader) take(n int) ([]byte, error) {
	if n < 0 || r.pos+n > len(r.buf) {
		return nil, fmt.Errorf("%w: need %d bytes at %d", ErrShortBuffer, n, r.pos)
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadBool reads one byte; any non-zero value is true.
func (r *Reader) ReadBool() (bool, error) {
	b, err := r.ReadUInt8()
	return b != 0, err
}

// ReadUInt8 reads one byte.
func (r *Reader) ReadUInt8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadPackedWhole reads an unsigned varint.
func (r *Reader) ReadPackedWhole() (uint64, error) {
	v, n := binary.Uvarint(r.buf[r.pos:])
	switch {
	case n == 0:
		return 0, fmt.Errorf("%w: varint at %d", ErrShortBuffer, r.pos)
	case n < 0:
		return 0, fmt.Errorf("%w: at %d", ErrOverflow, r.pos)
	}
	r.pos += n
	return v, nil
}

// ReadLength reads a packed whole length. Absent and the 32-bit pattern of
// -1 decode to -1; any other value above math.MaxInt32 fails with
// ErrOverflow.
func (r *Reader) ReadLength() (int32, error) {
	at := r.pos
	v, err := r.ReadPackedWhole()
	switch {
	case err != nil:
		return 0, err
	case v == Absent, v == math.MaxUint32:
		return -1, nil
	case v > math.MaxInt32:
		return 0, fmt.Errorf("%w: length %d at %d", ErrOverflow, v, at)
	}
	return int32(v), nil
}

func (r *Reader) fixed(size int) (uint64, error) {
	b, err := r.take(size)
	if err != nil {
		return 0, err
	}
	switch size {
	case 2:
		return uint64(binary.LittleEndian.Uint16(b)), nil
	case 4:
		return uint64(binary.LittleEndian.Uint32(b)), nil
	default:
		return binary.LittleEndian.Uint64(b), nil
	}
}

func (r *Reader) unsigned(mode apis.PackMode, size int) (uint64, error) {
	if mode == apis.Unpacked {
		return r.fixed(size)
	}
	return r.ReadPackedWhole()
}

func (r *Reader) signed(mode apis.PackMode, size int) (int64, error) {
	if mode == apis.Unpacked {
		v, err := r.fixed(size)
		switch size {
		case 2:
			return int64(int16(v)), err
		case 4:
			return int64(int32(v)), err
		default:
			return int64(v), err
		}
	}
	v, err := r.ReadPackedWhole()
	return int64(v>>1) ^ -int64(v&1), err
}

// ReadInt16 reads an int16 in the given mode.
func (r *Reader) ReadInt16(mode apis.PackMode) (int16, error) {
	v, err := r.signed(mode, 2)
	return int16(v), err
}

// ReadInt32 reads an int32 in the given mode.
func (r *Reader) ReadInt32(mode apis.PackMode) (int32, error) {
	v, err := r.signed(mode, 4)
	return int32(v), err
}

// ReadInt64 reads an int64 in the given mode.
func (r *Reader) ReadInt64(mode apis.PackMode) (int64, error) {
	return r.signed(mode, 8)
}

// ReadUInt32 reads a uint32 in the given mode.
func (r *Reader) ReadUInt32(mode apis.PackMode) (uint32, error) {
	v, err := r.unsigned(mode, 4)
	return uint32(v), err
}

// ReadUInt64 reads a uint64 in the given mode.
func (r *Reader) ReadUInt64(mode apis.PackMode) (uint64, error) {
	return r.unsigned(mode, 8)
}

// ReadSingle reads a float32 in the given mode.
func (r *Reader) ReadSingle(mode apis.PackMode) (float32, error) {
	v, err := r.unsigned(mode, 4)
	return math.Float32frombits(uint32(v)), err
}

// ReadDouble reads a float64 in the given mode.
func (r *Reader) ReadDouble(mode apis.PackMode) (float64, error) {
	v, err := r.unsigned(mode, 8)
	return math.Float64frombits(v), err
}

// ReadBytes reads exactly count bytes.
func (r *Reader) ReadBytes(count int32) ([]byte, error) {
	b, err := r.take(int(count))
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), b...), nil
}

// ReadString reads a length-prefixed UTF-8 string. An absent string reads
// as "" with present=false.
func (r *Reader) ReadString() (s string, present bool, err error) {
	n, err := r.ReadLength()
	if err != nil || n == -1 {
		return "", false, err
	}
	b, err := r.take(int(n))
	if err != nil {
		return "", false, err
	}
	return string(b), true, nil
}
