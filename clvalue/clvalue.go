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
	"math/big"

	"github.com/blinklabs-io/gocasper/bytesrepr"
	"github.com/blinklabs-io/gocasper/keys"
)

// Collections of zero-sized elements cannot be bounded by the input length
const maxZeroSizedItems = 1 << 16

// CLValue is a serialized value paired with its type. Bytes holds the value
// encoding without a length prefix.
type CLValue struct {
	Type  CLType
	Bytes []byte
}

// New serializes v into a CLValue
func New(v Value) CLValue {
	return CLValue{
		Type:  v.Type(),
		Bytes: ValueToBytes(v),
	}
}

// NewFromRaw builds a CLValue from pre-serialized bytes, which must parse as t
func NewFromRaw(t CLType, data []byte) (CLValue, error) {
	ret := CLValue{
		Type:  t,
		Bytes: bytes.Clone(data),
	}
	if _, err := ret.Parse(); err != nil {
		return CLValue{}, err
	}
	return ret, nil
}

// Append writes the u32-prefixed value bytes followed by the type tag encoding
func (c CLValue) Append(w *bytesrepr.Writer) {
	w.PackBytes(c.Bytes)
	c.Type.Append(w)
}

func (c CLValue) ToBytes() []byte {
	w := bytesrepr.NewWriter(bytesrepr.U32Len + len(c.Bytes) + 1)
	c.Append(w)
	return w.Bytes()
}

func (c CLValue) Equal(other CLValue) bool {
	return TypesEqual(c.Type, other.Type) && bytes.Equal(c.Bytes, other.Bytes)
}

func (c CLValue) String() string {
	return fmt.Sprintf("CLValue(%s, %x)", c.Type, c.Bytes)
}

// Parse decodes the value bytes according to the type
func (c CLValue) Parse() (Value, error) {
	if c.Type == nil {
		return nil, &bytesrepr.DecodingError{
			Reason: "missing cl type",
			Err:    bytesrepr.ErrInvalidTag,
		}
	}
	r := bytesrepr.NewReader(c.Bytes)
	v := UnpackValue(r, c.Type)
	if err := r.Done(); err != nil {
		return nil, err
	}
	return v, nil
}

// UnpackCLValue decodes a CLValue and checks that its bytes parse as its type
func UnpackCLValue(r *bytesrepr.Reader) CLValue {
	start := r.Offset()
	data := r.UnpackBytes()
	t := UnpackType(r)
	if r.Err() != nil {
		return CLValue{}
	}
	ret := CLValue{Type: t, Bytes: data}
	if _, err := ret.Parse(); err != nil {
		r.AddError(&bytesrepr.DecodingError{
			Offset: start,
			Reason: fmt.Sprintf("value does not match type %s", t),
			Err:    err,
		})
		return CLValue{}
	}
	return ret
}

func FromBytes(data []byte) (CLValue, error) {
	r := bytesrepr.NewReader(data)
	ret := UnpackCLValue(r)
	if err := r.Done(); err != nil {
		return CLValue{}, err
	}
	return ret, nil
}

// AppendCLValues writes a u32 count followed by each CLValue
func AppendCLValues(w *bytesrepr.Writer, values []CLValue) {
	w.PackLen(len(values))
	for _, v := range values {
		v.Append(w)
	}
}

func CLValuesToBytes(values []CLValue) []byte {
	w := bytesrepr.NewWriter(0)
	AppendCLValues(w, values)
	return w.Bytes()
}

func CLValuesFromBytes(data []byte) ([]CLValue, error) {
	r := bytesrepr.NewReader(data)
	// Smallest CLValue is an empty byte vector plus a one-byte type tag
	n := r.UnpackLen(bytesrepr.U32Len + 1)
	ret := make([]CLValue, 0, n)
	for range n {
		ret = append(ret, UnpackCLValue(r))
	}
	if err := r.Done(); err != nil {
		return nil, err
	}
	return ret, nil
}

// UnpackValue decodes value bytes of type t
func UnpackValue(r *bytesrepr.Reader, t CLType) Value {
	if r.Err() != nil {
		return nil
	}
	var ret Value
	switch typ := t.(type) {
	case SimpleType:
		ret = unpackSimpleValue(r, typ)
	case OptionType:
		switch tag := r.UnpackU8(); tag {
		case 0:
			ret = NewNone(typ.Inner)
		case 1:
			ret = Option{Inner: typ.Inner, Value: UnpackValue(r, typ.Inner)}
		default:
			r.InvalidTag("option", tag)
		}
	case ListType:
		n := r.UnpackLen(minValueSize(typ.Elem))
		if !checkZeroSized(r, typ.Elem, n) {
			return nil
		}
		items := make([]Value, 0, n)
		for range n {
			items = append(items, UnpackValue(r, typ.Elem))
		}
		ret = List{Elem: typ.Elem, Items: items}
	case ByteArrayType:
		ret = ByteArray(r.UnpackFixedBytes(int(typ.Size)))
	case ResultType:
		switch tag := r.UnpackU8(); tag {
		case resultOkTag:
			ret = Result{OkType: typ.Ok, ErrType: typ.Err, IsOk: true, Value: UnpackValue(r, typ.Ok)}
		case resultErrTag:
			ret = Result{OkType: typ.Ok, ErrType: typ.Err, Value: UnpackValue(r, typ.Err)}
		default:
			r.InvalidTag("result", tag)
		}
	case MapType:
		n := r.UnpackLen(minValueSize(typ.Key) + minValueSize(typ.Value))
		pair := TupleType{Items: []CLType{typ.Key, typ.Value}}
		if !checkZeroSized(r, pair, n) {
			return nil
		}
		entries := make([]MapEntry, 0, n)
		seen := make(map[string]struct{}, n)
		for range n {
			offset := r.Offset()
			key := UnpackValue(r, typ.Key)
			value := UnpackValue(r, typ.Value)
			if r.Err() != nil {
				return nil
			}
			keyBytes := string(ValueToBytes(key))
			if _, ok := seen[keyBytes]; ok {
				r.AddError(&bytesrepr.DecodingError{
					Offset: offset,
					Reason: "map entry",
					Err:    ErrDuplicateMapKey,
				})
				return nil
			}
			seen[keyBytes] = struct{}{}
			entries = append(entries, MapEntry{Key: key, Value: value})
		}
		ret = Map{KeyType: typ.Key, ValueType: typ.Value, Entries: entries}
	case TupleType:
		items := make([]Value, len(typ.Items))
		for i, item := range typ.Items {
			items[i] = UnpackValue(r, item)
		}
		ret = Tuple{Items: items}
	default:
		r.AddError(&bytesrepr.DecodingError{
			Offset: r.Offset(),
			Reason: fmt.Sprintf("unsupported cl type %v", t),
			Err:    bytesrepr.ErrInvalidTag,
		})
	}
	if r.Err() != nil {
		return nil
	}
	return ret
}

func unpackSimpleValue(r *bytesrepr.Reader, t SimpleType) Value {
	switch Tag(t) {
	case TagBool:
		return Bool(r.UnpackBool())
	case TagI32:
		return I32(r.UnpackI32())
	case TagI64:
		return I64(r.UnpackI64())
	case TagU8:
		return U8(r.UnpackU8())
	case TagU32:
		return U32(r.UnpackU32())
	case TagU64:
		return U64(r.UnpackU64())
	case TagU128:
		return U128{bigUint{v: r.UnpackBigUint(bytesrepr.U128Width)}}
	case TagU256:
		return U256{bigUint{v: r.UnpackBigUint(bytesrepr.U256Width)}}
	case TagU512:
		return U512{bigUint{v: r.UnpackBigUint(bytesrepr.U512Width)}}
	case TagUnit:
		return Unit{}
	case TagString:
		return String(r.UnpackString())
	case TagKey:
		return UnpackKey(r)
	case TagURef:
		return UnpackURef(r)
	case TagPublicKey:
		return PublicKey{PublicKey: keys.UnpackPublicKey(r)}
	default:
		r.AddError(&bytesrepr.DecodingError{
			Offset: r.Offset(),
			Reason: fmt.Sprintf("unsupported cl type %s", t),
			Err:    bytesrepr.ErrInvalidTag,
		})
		return nil
	}
}

// minValueSize returns the smallest possible encoding size of a value of type t
func minValueSize(t CLType) int {
	switch typ := t.(type) {
	case SimpleType:
		switch Tag(typ) {
		case TagBool, TagU8:
			return 1
		case TagI32, TagU32, TagString:
			return 4
		case TagI64, TagU64:
			return 8
		case TagU128, TagU256, TagU512:
			return 1
		case TagKey, TagURef:
			return 1 + KeyHashLen
		case TagPublicKey:
			return 1 + keys.Ed25519PublicKeyLen
		}
		return 0
	case OptionType, ResultType:
		return 1
	case ListType, MapType:
		return bytesrepr.U32Len
	case ByteArrayType:
		return int(typ.Size)
	case TupleType:
		ret := 0
		for _, item := range typ.Items {
			ret += minValueSize(item)
		}
		return ret
	}
	return 0
}

func checkZeroSized(r *bytesrepr.Reader, elem CLType, n int) bool {
	if r.Err() != nil {
		return false
	}
	if minValueSize(elem) == 0 && n > maxZeroSizedItems {
		r.AddError(&bytesrepr.DecodingError{
			Offset: r.Offset() - bytesrepr.U32Len,
			Reason: fmt.Sprintf("%d zero-sized items", n),
			Err:    bytesrepr.ErrTooManyItems,
		})
		return false
	}
	return true
}

// BigIntOf returns the magnitude of a U128, U256 or U512 value
func BigIntOf(v Value) (*big.Int, bool) {
	switch typ := v.(type) {
	case U128:
		return typ.BigInt(), true
	case U256:
		return typ.BigInt(), true
	case U512:
		return typ.BigInt(), true
	}
	return nil, false
}
