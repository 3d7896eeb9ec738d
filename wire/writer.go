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

package wire

import (
	"encoding/binary"
	"math"

	"dirpx.dev/rsx/apis"
)

// Writer encodes primitives in the layout Reader expects. The zero value is
// ready to use.
type Writer struct {
	buf []byte
}

// Bytes returns the encoded bytes.
func (w *Writer) Bytes() []byte { return w.buf }

// WriteBool writes one byte.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteUInt8(1)
		return
	}
	w.WriteUInt8(0)
}

// WriteUInt8 writes one byte.
func (w *Writer) WriteUInt8(v uint8) { w.buf = append(w.buf, v) }

// WritePackedWhole writes an unsigned varint.
func (w *Writer) WritePackedWhole(v uint64) { w.buf = binary.AppendUvarint(w.buf, v) }

// WriteAbsent writes the packed whole marker for a missing value.
func (w *Writer) WriteAbsent() { w.WritePackedWhole(Absent) }

// WriteLength writes a length prefix; negative lengths write the absent marker.
func (w *Writer) WriteLength(n int) {
	if n < 0 {
		w.WriteAbsent()
		return
	}
	w.WritePackedWhole(uint64(n))
}

func (w *Writer) fixed(v uint64, size int) {
	switch size {
	case 2:
		w.buf = binary.LittleEndian.AppendUint16(w.buf, uint16(v))
	case 4:
		w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(v))
	default:
		w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
	}
}

func (w *Writer) unsigned(v uint64, mode apis.PackMode, size int) {
	if mode == apis.Unpacked {
		w.fixed(v, size)
		return
	}
	w.WritePackedWhole(v)
}

func (w *Writer) signed(v int64, mode apis.PackMode, size int) {
	if mode == apis.Unpacked {
		w.fixed(uint64(v), size)
		return
	}
	w.WritePackedWhole(uint64(v<<1) ^ uint64(v>>63))
}

// WriteInt16 writes an int16 in the given mode.
func (w *Writer) WriteInt16(v int16, mode apis.PackMode) { w.signed(int64(v), mode, 2) }

// WriteInt32 writes an int32 in the given mode.
func (w *Writer) WriteInt32(v int32, mode apis.PackMode) { w.signed(int64(v), mode, 4) }

// WriteInt64 writes an int64 in the given mode.
func (w *Writer) WriteInt64(v int64, mode apis.PackMode) { w.signed(v, mode, 8) }

// WriteUInt32 writes a uint32 in the given mode.
func (w *Writer) WriteUInt32(v uint32, mode apis.PackMode) { w.unsigned(uint64(v), mode, 4) }

// WriteUInt64 writes a uint64 in the given mode.
func (w *Writer) WriteUInt64(v uint64, mode apis.PackMode) { w.unsigned(v, mode, 8) }

// WriteSingle writes a float32 in the given mode.
func (w *Writer) WriteSingle(v float32, mode apis.PackMode) {
	w.unsigned(uint64(math.Float32bits(v)), mode, 4)
}

// WriteDouble writes a float64 in the given mode.
func (w *Writer) WriteDouble(v float64, mode apis.PackMode) {
	w.unsigned(math.Float64bits(v), mode, 8)
}

// WriteBytes writes raw bytes without a prefix.
func (w *Writer) WriteBytes(b []byte) { w.buf = append(w.buf, b...) }

// WriteString writes a length-prefixed string.
func (w *Writer) WriteString(s string) {
	w.WriteLength(len(s))
	w.buf = append(w.buf, s...)
}
