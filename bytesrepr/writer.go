// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package bytesrepr

import (
	"encoding/binary"
)

// Writer accumulates encoded values into a byte buffer
type Writer struct {
	buf []byte
}

// NewWriter returns a Writer with initial bytes of preallocated capacity
func NewWriter(initial int) *Writer {
	return &Writer{
		buf: make([]byte, 0, initial),
	}
}

// Bytes returns the encoded contents. The returned slice aliases the Writer's buffer.
func (w *Writer) Bytes() []byte {
	return w.buf
}

func (w *Writer) Len() int {
	return len(w.buf)
}

func (w *Writer) PackBool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
		return
	}
	w.buf = append(w.buf, 0)
}

func (w *Writer) PackU8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *Writer) PackU32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *Writer) PackU64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

// PackI32 writes the two's-complement little-endian form of v
func (w *Writer) PackI32(v int32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, uint32(v)) // #nosec G115
}

func (w *Writer) PackI64(v int64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, uint64(v)) // #nosec G115
}

// PackLen writes a u32 length or element-count prefix
func (w *Writer) PackLen(n int) {
	w.PackU32(uint32(n)) // #nosec G115
}

// PackString writes the UTF-8 byte length as a u32 followed by the raw bytes
func (w *Writer) PackString(s string) {
	w.PackLen(len(s))
	w.buf = append(w.buf, s...)
}

// PackBytes writes a u8 vector: a u32 length prefix followed by the raw bytes
func (w *Writer) PackBytes(b []byte) {
	w.PackLen(len(b))
	w.buf = append(w.buf, b...)
}

// PackFixedBytes writes raw bytes with no prefix. The length must be implied by the
// surrounding type.
func (w *Writer) PackFixedBytes(b []byte) {
	w.buf = append(w.buf, b...)
}
