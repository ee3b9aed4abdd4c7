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

// Package bytesrepr implements the binary value representation shared by every
// on-chain value.
//
// Fixed-width integers are little-endian. Strings and variable-length byte
// sequences carry a u32 length prefix, vectors a u32 element count. Big
// integers (U128, U256, U512) use a one-byte length prefix followed by the
// minimal little-endian magnitude.
//
// Writer appends encodings to a growing buffer. Reader consumes them and
// records the first failure, which is reported by Err() or Done():
//
//	r := bytesrepr.NewReader(data)
//	count := r.UnpackU32()
//	name := r.UnpackString()
//	if err := r.Done(); err != nil {
//	    return err
//	}
package bytesrepr

import (
	"fmt"
	"math"
	"math/big"
)

const (
	BoolLen = 1
	U8Len   = 1
	U32Len  = 4
	U64Len  = 8
	I32Len  = 4
	I64Len  = 8
)

// Integer is the set of Go integer types accepted by the range-checking helpers
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64
}

// CheckUnsigned returns an EncodingRangeError if v is negative or larger than maxValue
func CheckUnsigned[T Integer](typeName string, v T, maxValue uint64) error {
	if v < 0 || uint64(v) > maxValue {
		return &EncodingRangeError{Type: typeName, Value: fmt.Sprint(v)}
	}
	return nil
}

// CheckSigned returns an EncodingRangeError if v falls outside [minValue, maxValue]
func CheckSigned[T Integer](typeName string, v T, minValue, maxValue int64) error {
	if v >= 0 {
		if uint64(v) > uint64(maxValue) {
			return &EncodingRangeError{Type: typeName, Value: fmt.Sprint(v)}
		}
		return nil
	}
	if int64(v) < minValue {
		return &EncodingRangeError{Type: typeName, Value: fmt.Sprint(v)}
	}
	return nil
}

// ToBytesU8 returns the encoding of a u8 after checking that v fits in 8 bits
func ToBytesU8[T Integer](v T) ([]byte, error) {
	if err := CheckUnsigned("u8", v, math.MaxUint8); err != nil {
		return nil, err
	}
	w := NewWriter(U8Len)
	w.PackU8(uint8(v)) // #nosec G115
	return w.Bytes(), nil
}

func ToBytesU32(v uint32) []byte {
	w := NewWriter(U32Len)
	w.PackU32(v)
	return w.Bytes()
}

func ToBytesU64(v uint64) []byte {
	w := NewWriter(U64Len)
	w.PackU64(v)
	return w.Bytes()
}

func ToBytesI32(v int32) []byte {
	w := NewWriter(I32Len)
	w.PackI32(v)
	return w.Bytes()
}

func ToBytesI64(v int64) []byte {
	w := NewWriter(I64Len)
	w.PackI64(v)
	return w.Bytes()
}

func ToBytesString(s string) []byte {
	w := NewWriter(U32Len + len(s))
	w.PackString(s)
	return w.Bytes()
}

// ToBytesBigUint returns the minimal-length encoding of v after checking that it fits
// in width bytes
func ToBytesBigUint(typeName string, v *big.Int, width int) ([]byte, error) {
	if err := CheckBigUint(typeName, v, width); err != nil {
		return nil, err
	}
	w := NewWriter(1 + width)
	w.PackBigUint(v)
	return w.Bytes(), nil
}

// FromBytesU8 decodes a u8 from data, which must contain exactly one byte
func FromBytesU8(data []byte) (uint8, error) {
	r := NewReader(data)
	v := r.UnpackU8()
	return v, r.Done()
}

func FromBytesU32(data []byte) (uint32, error) {
	r := NewReader(data)
	v := r.UnpackU32()
	return v, r.Done()
}

func FromBytesU64(data []byte) (uint64, error) {
	r := NewReader(data)
	v := r.UnpackU64()
	return v, r.Done()
}

func FromBytesI32(data []byte) (int32, error) {
	r := NewReader(data)
	v := r.UnpackI32()
	return v, r.Done()
}

func FromBytesI64(data []byte) (int64, error) {
	r := NewReader(data)
	v := r.UnpackI64()
	return v, r.Done()
}

func FromBytesString(data []byte) (string, error) {
	r := NewReader(data)
	v := r.UnpackString()
	return v, r.Done()
}

func FromBytesBigUint(data []byte, width int) (*big.Int, error) {
	r := NewReader(data)
	v := r.UnpackBigUint(width)
	return v, r.Done()
}
