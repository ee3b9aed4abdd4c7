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
	"fmt"
	"math/big"
	"slices"
)

// Maximum magnitude widths, in bytes, of the network's big unsigned integer types
const (
	U128Width = 16
	U256Width = 32
	U512Width = 64
)

// CheckBigUint returns an EncodingRangeError if v is nil, negative, or does not fit in
// width bytes
func CheckBigUint(typeName string, v *big.Int, width int) error {
	if v == nil {
		return &EncodingRangeError{Type: typeName, Value: "<nil>"}
	}
	if v.Sign() < 0 || v.BitLen() > width*8 {
		return &EncodingRangeError{Type: typeName, Value: v.String()}
	}
	return nil
}

// PackBigUint writes v as a one-byte length prefix followed by its minimal little-endian
// magnitude. Zero is written as a single 0 prefix with no magnitude bytes. The caller is
// responsible for range-checking v with CheckBigUint.
func (w *Writer) PackBigUint(v *big.Int) {
	if v == nil || v.Sign() == 0 {
		w.PackU8(0)
		return
	}
	// big.Int.Bytes() is the big-endian magnitude with no leading zeros
	mag := v.Bytes()
	slices.Reverse(mag)
	w.PackU8(uint8(len(mag))) // #nosec G115
	w.PackFixedBytes(mag)
}

// UnpackBigUint reads a big integer whose magnitude occupies at most width bytes.
// Encodings with redundant high-order zero bytes are accepted.
func (r *Reader) UnpackBigUint(width int) *big.Int {
	start := r.offset
	n := int(r.UnpackU8())
	if r.err != nil {
		return new(big.Int)
	}
	if n > width {
		r.AddError(&BigIntegerOverflowError{
			Offset:   start,
			Width:    width,
			Declared: n,
		})
		return new(big.Int)
	}
	mag := r.UnpackFixedBytes(n)
	if r.err != nil {
		return new(big.Int)
	}
	slices.Reverse(mag)
	return new(big.Int).SetBytes(mag)
}

// BigUintTypeName returns the conventional type name for a big integer width
func BigUintTypeName(width int) string {
	return fmt.Sprintf("u%d", width*8)
}
