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
	"errors"
	"fmt"
)

var (
	ErrDecoding           = errors.New("decoding error")
	ErrEncodingRange      = errors.New("value out of range")
	ErrBigIntegerOverflow = errors.New("big integer overflow")

	ErrInsufficientBytes = errors.New("insufficient bytes")
	ErrLeftoverBytes     = errors.New("leftover bytes")
	ErrInvalidTag        = errors.New("invalid tag")
	ErrInvalidBool       = errors.New("invalid bool")
	ErrInvalidUTF8       = errors.New("invalid utf-8 string")
	ErrTooManyItems      = errors.New("too many items")
)

// DecodingError describes a failure to decode a value at a particular offset of the input
type DecodingError struct {
	Offset int
	Reason string
	Err    error
}

func (e *DecodingError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf(
			"decoding error at offset %d: %s: %v",
			e.Offset,
			e.Reason,
			e.Err,
		)
	}
	return fmt.Sprintf("decoding error at offset %d: %v", e.Offset, e.Err)
}

func (e *DecodingError) Unwrap() error { return e.Err }

func (e *DecodingError) Is(target error) bool {
	return target == ErrDecoding
}

// BigIntegerOverflowError indicates a big integer length prefix wider than the type allows
type BigIntegerOverflowError struct {
	Offset   int
	Width    int
	Declared int
}

func (e *BigIntegerOverflowError) Error() string {
	return fmt.Sprintf(
		"big integer at offset %d declares %d bytes, maximum is %d",
		e.Offset,
		e.Declared,
		e.Width,
	)
}

// A big integer overflow is also a decoding failure
func (e *BigIntegerOverflowError) Is(target error) bool {
	return target == ErrBigIntegerOverflow || target == ErrDecoding
}

// EncodingRangeError indicates a value that does not fit the declared width of its type
type EncodingRangeError struct {
	Type  string
	Value string
}

func (e *EncodingRangeError) Error() string {
	return fmt.Sprintf("value %s out of range for %s", e.Value, e.Type)
}

func (e *EncodingRangeError) Is(target error) bool {
	return target == ErrEncodingRange
}
