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
	"fmt"
	"unicode/utf8"
)

// Reader decodes values from a byte slice. The first failure is recorded and every
// subsequent read becomes a no-op returning a zero value.
type Reader struct {
	data   []byte
	offset int
	err    error
}

func NewReader(data []byte) *Reader {
	return &Reader{
		data: data,
	}
}

// Offset returns the number of bytes consumed so far
func (r *Reader) Offset() int {
	return r.offset
}

// Remaining returns the number of bytes not yet consumed
func (r *Reader) Remaining() int {
	return len(r.data) - r.offset
}

func (r *Reader) Empty() bool {
	return r.Remaining() == 0
}

// Err returns the first error encountered while decoding
func (r *Reader) Err() error {
	return r.err
}

// Done returns the first decoding error, or an error if any input was left unconsumed
func (r *Reader) Done() error {
	if r.err != nil {
		return r.err
	}
	if r.Remaining() != 0 {
		return &DecodingError{
			Offset: r.offset,
			Reason: fmt.Sprintf("%d trailing bytes", r.Remaining()),
			Err:    ErrLeftoverBytes,
		}
	}
	return nil
}

// AddError records err unless an earlier error was already recorded
func (r *Reader) AddError(err error) {
	if r.err == nil {
		r.err = err
	}
}

// InvalidTag records an ErrInvalidTag decoding error for the tag byte just consumed
func (r *Reader) InvalidTag(kind string, tag uint8) {
	r.AddError(&DecodingError{
		Offset: r.offset - 1,
		Reason: fmt.Sprintf("%s tag %d", kind, tag),
		Err:    ErrInvalidTag,
	})
}

func (r *Reader) next(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || n > r.Remaining() {
		r.AddError(&DecodingError{
			Offset: r.offset,
			Reason: fmt.Sprintf("need %d bytes, have %d", n, r.Remaining()),
			Err:    ErrInsufficientBytes,
		})
		return nil
	}
	ret := r.data[r.offset : r.offset+n]
	r.offset += n
	return ret
}

func (r *Reader) UnpackBool() bool {
	b := r.next(BoolLen)
	if b == nil {
		return false
	}
	switch b[0] {
	case 0:
		return false
	case 1:
		return true
	default:
		r.AddError(&DecodingError{
			Offset: r.offset - 1,
			Reason: fmt.Sprintf("bool byte %d", b[0]),
			Err:    ErrInvalidBool,
		})
		return false
	}
}

func (r *Reader) UnpackU8() uint8 {
	b := r.next(U8Len)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *Reader) UnpackU32() uint32 {
	b := r.next(U32Len)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *Reader) UnpackU64() uint64 {
	b := r.next(U64Len)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint64(b)
}

func (r *Reader) UnpackI32() int32 {
	return int32(r.UnpackU32()) // #nosec G115
}

func (r *Reader) UnpackI64() int64 {
	return int64(r.UnpackU64()) // #nosec G115
}

// UnpackLen reads a u32 length or element-count prefix. Each counted item must occupy
// at least minItemSize bytes, which bounds the count by the remaining input.
func (r *Reader) UnpackLen(minItemSize int) int {
	n := int(r.UnpackU32())
	if r.err != nil {
		return 0
	}
	if minItemSize > 0 && n > r.Remaining()/minItemSize {
		r.AddError(&DecodingError{
			Offset: r.offset - U32Len,
			Reason: fmt.Sprintf("count %d exceeds remaining %d bytes", n, r.Remaining()),
			Err:    ErrInsufficientBytes,
		})
		return 0
	}
	return n
}

// UnpackString reads a u32 length prefix and that many bytes of UTF-8
func (r *Reader) UnpackString() string {
	start := r.offset
	b := r.next(r.UnpackLen(1))
	if r.err != nil {
		return ""
	}
	if !utf8.Valid(b) {
		r.AddError(&DecodingError{
			Offset: start,
			Err:    ErrInvalidUTF8,
		})
		return ""
	}
	return string(b)
}

// UnpackBytes reads a u8 vector and returns a copy of its contents
func (r *Reader) UnpackBytes() []byte {
	return r.UnpackFixedBytes(r.UnpackLen(1))
}

// UnpackFixedBytes reads exactly n bytes with no prefix and returns a copy
func (r *Reader) UnpackFixedBytes(n int) []byte {
	b := r.next(n)
	if r.err != nil {
		return nil
	}
	ret := make([]byte, n)
	copy(ret, b)
	return ret
}
