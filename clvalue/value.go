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

package clvalue

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/blinklabs-io/gocasper/bytesrepr"
	"github.com/blinklabs-io/gocasper/keys"
)

// Value is a structured CL value. Every implementation knows its own CLType and how to
// append its value bytes (without length prefix or type tag) to a Writer.
type Value interface {
	Type() CLType
	Append(w *bytesrepr.Writer)
}

// ValueToBytes returns the raw value bytes of v
func ValueToBytes(v Value) []byte {
	w := bytesrepr.NewWriter(0)
	v.Append(w)
	return w.Bytes()
}

// ValuesEqual compares two values by type and raw bytes
func ValuesEqual(a, b Value) bool {
	return TypesEqual(a.Type(), b.Type()) &&
		bytes.Equal(ValueToBytes(a), ValueToBytes(b))
}

type Bool bool

func (v Bool) Type() CLType               { return TypeBool }
func (v Bool) Append(w *bytesrepr.Writer) { w.PackBool(bool(v)) }

type I32 int32

func NewI32[T bytesrepr.Integer](v T) (I32, error) {
	if err := bytesrepr.CheckSigned("i32", v, math.MinInt32, math.MaxInt32); err != nil {
		return 0, err
	}
	return I32(v), nil
}

func (v I32) Type() CLType               { return TypeI32 }
func (v I32) Append(w *bytesrepr.Writer) { w.PackI32(int32(v)) }

type I64 int64

func NewI64[T bytesrepr.Integer](v T) (I64, error) {
	if err := bytesrepr.CheckSigned("i64", v, math.MinInt64, math.MaxInt64); err != nil {
		return 0, err
	}
	return I64(v), nil
}

func (v I64) Type() CLType               { return TypeI64 }
func (v I64) Append(w *bytesrepr.Writer) { w.PackI64(int64(v)) }

type U8 uint8

// NewU8 returns an EncodingRangeError if v does not fit in 8 bits
func NewU8[T bytesrepr.Integer](v T) (U8, error) {
	if err := bytesrepr.CheckUnsigned("u8", v, math.MaxUint8); err != nil {
		return 0, err
	}
	return U8(v), nil
}

func (v U8) Type() CLType               { return TypeU8 }
func (v U8) Append(w *bytesrepr.Writer) { w.PackU8(uint8(v)) }

type U32 uint32

func NewU32[T bytesrepr.Integer](v T) (U32, error) {
	if err := bytesrepr.CheckUnsigned("u32", v, math.MaxUint32); err != nil {
		return 0, err
	}
	return U32(v), nil
}

func (v U32) Type() CLType               { return TypeU32 }
func (v U32) Append(w *bytesrepr.Writer) { w.PackU32(uint32(v)) }

type U64 uint64

func NewU64[T bytesrepr.Integer](v T) (U64, error) {
	if err := bytesrepr.CheckUnsigned("u64", v, math.MaxUint64); err != nil {
		return 0, err
	}
	return U64(v), nil
}

func (v U64) Type() CLType               { return TypeU64 }
func (v U64) Append(w *bytesrepr.Writer) { w.PackU64(uint64(v)) }

type String string

func (v String) Type() CLType               { return TypeString }
func (v String) Append(w *bytesrepr.Writer) { w.PackString(string(v)) }

type Unit struct{}

func (v Unit) Type() CLType             { return TypeUnit }
func (v Unit) Append(*bytesrepr.Writer) {}

// bigUint holds an immutable non-negative magnitude. A nil magnitude is zero.
type bigUint struct {
	v *big.Int
}

func newBigUint(typeName string, v *big.Int, width int) (bigUint, error) {
	if err := bytesrepr.CheckBigUint(typeName, v, width); err != nil {
		return bigUint{}, err
	}
	return bigUint{v: new(big.Int).Set(v)}, nil
}

func parseBigUint(typeName string, s string, width int) (bigUint, error) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return bigUint{}, fmt.Errorf("invalid %s decimal string: %q", typeName, s)
	}
	return newBigUint(typeName, v, width)
}

// BigInt returns a copy of the magnitude
func (b bigUint) BigInt() *big.Int {
	if b.v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(b.v)
}

func (b bigUint) String() string {
	return b.BigInt().String()
}

func (b bigUint) Append(w *bytesrepr.Writer) {
	w.PackBigUint(b.v)
}

// MarshalText renders the value as a decimal string
func (b bigUint) MarshalText() ([]byte, error) {
	return []byte(b.String()), nil
}

type U128 struct{ bigUint }

func NewU128(v *big.Int) (U128, error) {
	b, err := newBigUint("u128", v, bytesrepr.U128Width)
	return U128{b}, err
}

func ParseU128(s string) (U128, error) {
	b, err := parseBigUint("u128", s, bytesrepr.U128Width)
	return U128{b}, err
}

func U128FromUint64(v uint64) U128 {
	return U128{bigUint{v: new(big.Int).SetUint64(v)}}
}

func (v U128) Type() CLType { return TypeU128 }

func (v *U128) UnmarshalText(text []byte) error {
	parsed, err := ParseU128(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

type U256 struct{ bigUint }

func NewU256(v *big.Int) (U256, error) {
	b, err := newBigUint("u256", v, bytesrepr.U256Width)
	return U256{b}, err
}

func ParseU256(s string) (U256, error) {
	b, err := parseBigUint("u256", s, bytesrepr.U256Width)
	return U256{b}, err
}

func U256FromUint64(v uint64) U256 {
	return U256{bigUint{v: new(big.Int).SetUint64(v)}}
}

func (v U256) Type() CLType { return TypeU256 }

func (v *U256) UnmarshalText(text []byte) error {
	parsed, err := ParseU256(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

type U512 struct{ bigUint }

func NewU512(v *big.Int) (U512, error) {
	b, err := newBigUint("u512", v, bytesrepr.U512Width)
	return U512{b}, err
}

func ParseU512(s string) (U512, error) {
	b, err := parseBigUint("u512", s, bytesrepr.U512Width)
	return U512{b}, err
}

func U512FromUint64(v uint64) U512 {
	return U512{bigUint{v: new(big.Int).SetUint64(v)}}
}

func (v U512) Type() CLType { return TypeU512 }

func (v *U512) UnmarshalText(text []byte) error {
	parsed, err := ParseU512(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ByteArray is a fixed-length byte array. Its length is carried by its type.
type ByteArray []byte

func (v ByteArray) Type() CLType {
	return ByteArrayType{Size: uint32(len(v))} // #nosec G115
}

func (v ByteArray) Append(w *bytesrepr.Writer) { w.PackFixedBytes(v) }

// PublicKey wraps keys.PublicKey as a CL value
type PublicKey struct {
	keys.PublicKey
}

func NewPublicKey(pk keys.PublicKey) PublicKey {
	return PublicKey{PublicKey: pk}
}

func (v PublicKey) Type() CLType { return TypePublicKey }

// Option is either Some (Value set) or None (Value nil) of the Inner type
type Option struct {
	Inner CLType
	Value Value
}

func NewSome(v Value) Option {
	return Option{Inner: v.Type(), Value: v}
}

func NewNone(inner CLType) Option {
	return Option{Inner: inner}
}

func (v Option) IsSome() bool {
	return v.Value != nil
}

func (v Option) Type() CLType {
	return OptionType{Inner: v.Inner}
}

func (v Option) Append(w *bytesrepr.Writer) {
	if v.Value == nil {
		w.PackU8(0)
		return
	}
	w.PackU8(1)
	v.Value.Append(w)
}

// List is a homogeneous sequence of values
type List struct {
	Elem  CLType
	Items []Value
}

func NewList(elem CLType, items ...Value) (List, error) {
	for i, item := range items {
		if !TypesEqual(elem, item.Type()) {
			return List{}, fmt.Errorf(
				"list item %d has type %s, expected %s",
				i,
				item.Type(),
				elem,
			)
		}
	}
	return List{Elem: elem, Items: items}, nil
}

func (v List) Type() CLType {
	return ListType{Elem: v.Elem}
}

func (v List) Append(w *bytesrepr.Writer) {
	w.PackLen(len(v.Items))
	for _, item := range v.Items {
		item.Append(w)
	}
}

type MapEntry struct {
	Key   Value
	Value Value
}

var ErrDuplicateMapKey = errors.New("duplicate map key")

// Map is an ordered association. Entries encode in insertion order.
type Map struct {
	KeyType   CLType
	ValueType CLType
	Entries   []MapEntry
}

func NewMap(keyType, valueType CLType, entries ...MapEntry) (Map, error) {
	seen := make(map[string]struct{}, len(entries))
	for i, entry := range entries {
		if !TypesEqual(keyType, entry.Key.Type()) {
			return Map{}, fmt.Errorf("map key %d has type %s, expected %s", i, entry.Key.Type(), keyType)
		}
		if !TypesEqual(valueType, entry.Value.Type()) {
			return Map{}, fmt.Errorf("map value %d has type %s, expected %s", i, entry.Value.Type(), valueType)
		}
		keyBytes := string(ValueToBytes(entry.Key))
		if _, ok := seen[keyBytes]; ok {
			return Map{}, fmt.Errorf("%w at entry %d", ErrDuplicateMapKey, i)
		}
		seen[keyBytes] = struct{}{}
	}
	return Map{KeyType: keyType, ValueType: valueType, Entries: entries}, nil
}

func (v Map) Type() CLType {
	return MapType{Key: v.KeyType, Value: v.ValueType}
}

func (v Map) Append(w *bytesrepr.Writer) {
	w.PackLen(len(v.Entries))
	for _, entry := range v.Entries {
		entry.Key.Append(w)
		entry.Value.Append(w)
	}
}

var ErrTupleSize = errors.New("tuples must have between 1 and 3 items")

type Tuple struct {
	Items []Value
}

func NewTuple(items ...Value) (Tuple, error) {
	if len(items) < 1 || len(items) > 3 {
		return Tuple{}, ErrTupleSize
	}
	return Tuple{Items: items}, nil
}

func (v Tuple) Type() CLType {
	types := make([]CLType, len(v.Items))
	for i, item := range v.Items {
		types[i] = item.Type()
	}
	return TupleType{Items: types}
}

func (v Tuple) Append(w *bytesrepr.Writer) {
	for _, item := range v.Items {
		item.Append(w)
	}
}

const (
	resultErrTag uint8 = 0
	resultOkTag  uint8 = 1
)

// Result holds either an Ok or an Err value
type Result struct {
	OkType  CLType
	ErrType CLType
	IsOk    bool
	Value   Value
}

func NewOk(v Value, errType CLType) Result {
	return Result{OkType: v.Type(), ErrType: errType, IsOk: true, Value: v}
}

func NewErr(okType CLType, v Value) Result {
	return Result{OkType: okType, ErrType: v.Type(), Value: v}
}

func (v Result) Type() CLType {
	return ResultType{Ok: v.OkType, Err: v.ErrType}
}

func (v Result) Append(w *bytesrepr.Writer) {
	if v.IsOk {
		w.PackU8(resultOkTag)
	} else {
		w.PackU8(resultErrTag)
	}
	v.Value.Append(w)
}
