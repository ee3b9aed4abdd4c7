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
	"fmt"
	"strings"

	"github.com/blinklabs-io/gocasper/bytesrepr"
)

// Tag is the one-byte discriminant of a CLType
type Tag uint8

const (
	TagBool      Tag = 0
	TagI32       Tag = 1
	TagI64       Tag = 2
	TagU8        Tag = 3
	TagU32       Tag = 4
	TagU64       Tag = 5
	TagU128      Tag = 6
	TagU256      Tag = 7
	TagU512      Tag = 8
	TagUnit      Tag = 9
	TagString    Tag = 10
	TagKey       Tag = 11
	TagURef      Tag = 12
	TagOption    Tag = 13
	TagList      Tag = 14
	TagByteArray Tag = 15
	TagResult    Tag = 16
	TagMap       Tag = 17
	TagTuple1    Tag = 18
	TagTuple2    Tag = 19
	TagTuple3    Tag = 20
	TagAny       Tag = 21
	TagPublicKey Tag = 22
)

// Nested types deeper than this are rejected when decoding
const MaxTypeDepth = 50

// CLType describes the shape of a CLValue. It is implemented by SimpleType and the
// composite types OptionType, ListType, ByteArrayType, ResultType, MapType and TupleType.
type CLType interface {
	Tag() Tag
	Append(w *bytesrepr.Writer)
	String() string
}

// SimpleType is a CLType with no parameters
type SimpleType Tag

var (
	TypeBool      CLType = SimpleType(TagBool)
	TypeI32       CLType = SimpleType(TagI32)
	TypeI64       CLType = SimpleType(TagI64)
	TypeU8        CLType = SimpleType(TagU8)
	TypeU32       CLType = SimpleType(TagU32)
	TypeU64       CLType = SimpleType(TagU64)
	TypeU128      CLType = SimpleType(TagU128)
	TypeU256      CLType = SimpleType(TagU256)
	TypeU512      CLType = SimpleType(TagU512)
	TypeUnit      CLType = SimpleType(TagUnit)
	TypeString    CLType = SimpleType(TagString)
	TypeKey       CLType = SimpleType(TagKey)
	TypeURef      CLType = SimpleType(TagURef)
	TypePublicKey CLType = SimpleType(TagPublicKey)
)

var simpleTypeNames = map[SimpleType]string{
	SimpleType(TagBool):      "Bool",
	SimpleType(TagI32):       "I32",
	SimpleType(TagI64):       "I64",
	SimpleType(TagU8):        "U8",
	SimpleType(TagU32):       "U32",
	SimpleType(TagU64):       "U64",
	SimpleType(TagU128):      "U128",
	SimpleType(TagU256):      "U256",
	SimpleType(TagU512):      "U512",
	SimpleType(TagUnit):      "Unit",
	SimpleType(TagString):    "String",
	SimpleType(TagKey):       "Key",
	SimpleType(TagURef):      "URef",
	SimpleType(TagPublicKey): "PublicKey",
}

func (t SimpleType) Tag() Tag {
	return Tag(t)
}

func (t SimpleType) Append(w *bytesrepr.Writer) {
	w.PackU8(uint8(t))
}

func (t SimpleType) String() string {
	if name, ok := simpleTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", uint8(t))
}

type OptionType struct {
	Inner CLType
}

func (t OptionType) Tag() Tag {
	return TagOption
}

func (t OptionType) Append(w *bytesrepr.Writer) {
	w.PackU8(uint8(TagOption))
	t.Inner.Append(w)
}

func (t OptionType) String() string {
	return fmt.Sprintf("Option<%s>", t.Inner)
}

type ListType struct {
	Elem CLType
}

func (t ListType) Tag() Tag {
	return TagList
}

func (t ListType) Append(w *bytesrepr.Writer) {
	w.PackU8(uint8(TagList))
	t.Elem.Append(w)
}

func (t ListType) String() string {
	return fmt.Sprintf("List<%s>", t.Elem)
}

// ByteArrayType is a fixed-length byte array. The length is part of the type, so the
// value bytes carry no prefix.
type ByteArrayType struct {
	Size uint32
}

func (t ByteArrayType) Tag() Tag {
	return TagByteArray
}

func (t ByteArrayType) Append(w *bytesrepr.Writer) {
	w.PackU8(uint8(TagByteArray))
	w.PackU32(t.Size)
}

func (t ByteArrayType) String() string {
	return fmt.Sprintf("ByteArray(%d)", t.Size)
}

type ResultType struct {
	Ok  CLType
	Err CLType
}

func (t ResultType) Tag() Tag {
	return TagResult
}

func (t ResultType) Append(w *bytesrepr.Writer) {
	w.PackU8(uint8(TagResult))
	t.Ok.Append(w)
	t.Err.Append(w)
}

func (t ResultType) String() string {
	return fmt.Sprintf("Result<%s, %s>", t.Ok, t.Err)
}

type MapType struct {
	Key   CLType
	Value CLType
}

func (t MapType) Tag() Tag {
	return TagMap
}

func (t MapType) Append(w *bytesrepr.Writer) {
	w.PackU8(uint8(TagMap))
	t.Key.Append(w)
	t.Value.Append(w)
}

func (t MapType) String() string {
	return fmt.Sprintf("Map<%s, %s>", t.Key, t.Value)
}

// TupleType has between one and three members
type TupleType struct {
	Items []CLType
}

func (t TupleType) Tag() Tag {
	return TagTuple1 + Tag(len(t.Items)-1) // #nosec G115
}

func (t TupleType) Append(w *bytesrepr.Writer) {
	w.PackU8(uint8(t.Tag()))
	for _, item := range t.Items {
		item.Append(w)
	}
}

func (t TupleType) String() string {
	names := make([]string, len(t.Items))
	for i, item := range t.Items {
		names[i] = item.String()
	}
	return fmt.Sprintf("Tuple%d<%s>", len(t.Items), strings.Join(names, ", "))
}

// TypeToBytes returns the type tag encoding of t
func TypeToBytes(t CLType) []byte {
	w := bytesrepr.NewWriter(1)
	t.Append(w)
	return w.Bytes()
}

// TypesEqual compares two types by their canonical encoding
func TypesEqual(a, b CLType) bool {
	if a == nil || b == nil {
		return a == b
	}
	return bytes.Equal(TypeToBytes(a), TypeToBytes(b))
}

// UnpackType decodes a type tag encoding
func UnpackType(r *bytesrepr.Reader) CLType {
	return unpackType(r, 0)
}

func TypeFromBytes(data []byte) (CLType, error) {
	r := bytesrepr.NewReader(data)
	t := UnpackType(r)
	if err := r.Done(); err != nil {
		return nil, err
	}
	return t, nil
}

func unpackType(r *bytesrepr.Reader, depth int) CLType {
	if depth > MaxTypeDepth {
		r.AddError(&bytesrepr.DecodingError{
			Offset: r.Offset(),
			Reason: fmt.Sprintf("type nesting exceeds %d levels", MaxTypeDepth),
			Err:    bytesrepr.ErrInvalidTag,
		})
		return nil
	}
	tag := r.UnpackU8()
	if r.Err() != nil {
		return nil
	}
	var ret CLType
	switch Tag(tag) {
	case TagBool, TagI32, TagI64, TagU8, TagU32, TagU64, TagU128, TagU256,
		TagU512, TagUnit, TagString, TagKey, TagURef, TagPublicKey:
		ret = SimpleType(tag)
	case TagOption:
		ret = OptionType{Inner: unpackType(r, depth+1)}
	case TagList:
		ret = ListType{Elem: unpackType(r, depth+1)}
	case TagByteArray:
		ret = ByteArrayType{Size: r.UnpackU32()}
	case TagResult:
		ok := unpackType(r, depth+1)
		ret = ResultType{Ok: ok, Err: unpackType(r, depth+1)}
	case TagMap:
		key := unpackType(r, depth+1)
		ret = MapType{Key: key, Value: unpackType(r, depth+1)}
	case TagTuple1, TagTuple2, TagTuple3:
		items := make([]CLType, int(tag-uint8(TagTuple1))+1)
		for i := range items {
			items[i] = unpackType(r, depth+1)
		}
		ret = TupleType{Items: items}
	default:
		// Any has no value representation, so it is rejected along with unknown tags
		r.InvalidTag("cl type", tag)
		return nil
	}
	if r.Err() != nil {
		return nil
	}
	return ret
}
