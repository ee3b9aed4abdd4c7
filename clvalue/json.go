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
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

var jsonTypeNames = func() map[string]SimpleType {
	ret := make(map[string]SimpleType, len(simpleTypeNames))
	for t, name := range simpleTypeNames {
		ret[name] = t
	}
	return ret
}()

// TypeToJSON returns the JSON form of a type: simple types are bare names and composite
// types are single-key objects such as {"List":"U8"} or {"ByteArray":32}
func TypeToJSON(t CLType) any {
	switch typ := t.(type) {
	case SimpleType:
		return typ.String()
	case OptionType:
		return map[string]any{"Option": TypeToJSON(typ.Inner)}
	case ListType:
		return map[string]any{"List": TypeToJSON(typ.Elem)}
	case ByteArrayType:
		return map[string]any{"ByteArray": typ.Size}
	case ResultType:
		return map[string]any{
			"Result": map[string]any{
				"ok":  TypeToJSON(typ.Ok),
				"err": TypeToJSON(typ.Err),
			},
		}
	case MapType:
		return map[string]any{
			"Map": map[string]any{
				"key":   TypeToJSON(typ.Key),
				"value": TypeToJSON(typ.Value),
			},
		}
	case TupleType:
		items := make([]any, len(typ.Items))
		for i, item := range typ.Items {
			items[i] = TypeToJSON(item)
		}
		return map[string]any{fmt.Sprintf("Tuple%d", len(items)): items}
	}
	return nil
}

func MarshalTypeJSON(t CLType) ([]byte, error) {
	if t == nil {
		return nil, errors.New("missing cl type")
	}
	return json.Marshal(TypeToJSON(t))
}

func UnmarshalTypeJSON(data []byte) (CLType, error) {
	var tmp any
	if err := json.Unmarshal(data, &tmp); err != nil {
		return nil, err
	}
	return typeFromJSON(tmp, 0)
}

func typeFromJSON(v any, depth int) (CLType, error) {
	if depth > MaxTypeDepth {
		return nil, fmt.Errorf("type nesting exceeds %d levels", MaxTypeDepth)
	}
	switch val := v.(type) {
	case string:
		t, ok := jsonTypeNames[val]
		if !ok {
			return nil, fmt.Errorf("unknown cl type %q", val)
		}
		return t, nil
	case map[string]any:
		if len(val) != 1 {
			return nil, fmt.Errorf("cl type object must have exactly one key, got %d", len(val))
		}
		for name, inner := range val {
			return compositeTypeFromJSON(name, inner, depth)
		}
	}
	return nil, fmt.Errorf("invalid cl type JSON: %v", v)
}

func compositeTypeFromJSON(name string, inner any, depth int) (CLType, error) {
	switch name {
	case "Option":
		t, err := typeFromJSON(inner, depth+1)
		if err != nil {
			return nil, err
		}
		return OptionType{Inner: t}, nil
	case "List":
		t, err := typeFromJSON(inner, depth+1)
		if err != nil {
			return nil, err
		}
		return ListType{Elem: t}, nil
	case "ByteArray":
		size, ok := inner.(float64)
		if !ok || size < 0 || size > math.MaxUint32 || size != math.Trunc(size) {
			return nil, fmt.Errorf("invalid byte array size: %v", inner)
		}
		return ByteArrayType{Size: uint32(size)}, nil
	case "Result":
		fields, err := typePairFromJSON(inner, "ok", "err", depth)
		if err != nil {
			return nil, err
		}
		return ResultType{Ok: fields[0], Err: fields[1]}, nil
	case "Map":
		fields, err := typePairFromJSON(inner, "key", "value", depth)
		if err != nil {
			return nil, err
		}
		return MapType{Key: fields[0], Value: fields[1]}, nil
	case "Tuple1", "Tuple2", "Tuple3":
		list, ok := inner.([]any)
		want := int(name[len(name)-1] - '0')
		if !ok || len(list) != want {
			return nil, fmt.Errorf("%s requires %d member types", name, want)
		}
		items := make([]CLType, len(list))
		for i, item := range list {
			t, err := typeFromJSON(item, depth+1)
			if err != nil {
				return nil, err
			}
			items[i] = t
		}
		return TupleType{Items: items}, nil
	}
	return nil, fmt.Errorf("unknown cl type %q", name)
}

func typePairFromJSON(v any, first, second string, depth int) ([2]CLType, error) {
	var ret [2]CLType
	obj, ok := v.(map[string]any)
	if !ok {
		return ret, fmt.Errorf("expected object with %q and %q", first, second)
	}
	for i, name := range []string{first, second} {
		field, ok := obj[name]
		if !ok {
			return ret, fmt.Errorf("missing %q", name)
		}
		t, err := typeFromJSON(field, depth+1)
		if err != nil {
			return ret, err
		}
		ret[i] = t
	}
	return ret, nil
}

type clValueJSON struct {
	CLType json.RawMessage `json:"cl_type"`
	Bytes  string          `json:"bytes"`
	Parsed any             `json:"parsed,omitempty"`
}

func (c CLValue) MarshalJSON() ([]byte, error) {
	clType, err := MarshalTypeJSON(c.Type)
	if err != nil {
		return nil, err
	}
	tmp := clValueJSON{
		CLType: clType,
		Bytes:  hex.EncodeToString(c.Bytes),
	}
	if v, err := c.Parse(); err == nil {
		tmp.Parsed = parsedJSON(v)
	}
	return json.Marshal(tmp)
}

func (c *CLValue) UnmarshalJSON(data []byte) error {
	var tmp clValueJSON
	if err := json.Unmarshal(data, &tmp); err != nil {
		return err
	}
	t, err := UnmarshalTypeJSON(tmp.CLType)
	if err != nil {
		return err
	}
	raw, err := hex.DecodeString(tmp.Bytes)
	if err != nil {
		return fmt.Errorf("invalid cl value bytes: %w", err)
	}
	ret, err := NewFromRaw(t, raw)
	if err != nil {
		return err
	}
	*c = ret
	return nil
}

// parsedJSON renders the human-readable form of simple values. Composite values
// are omitted.
func parsedJSON(v Value) any {
	switch val := v.(type) {
	case Bool, I32, I64, U8, U32, U64, String:
		return val
	case U128, U256, U512:
		n, _ := BigIntOf(val)
		return n.String()
	case Unit:
		return nil
	case Key:
		return val.String()
	case URef:
		return val.String()
	case PublicKey:
		return val.Hex()
	case ByteArray:
		return hex.EncodeToString(val)
	}
	return nil
}

// TypeFromName parses the short type names used on command lines, such as "u512",
// "string" or "public_key". Names are matched case-insensitively.
func TypeFromName(name string) (CLType, error) {
	normalized := strings.ReplaceAll(strings.ToLower(name), "_", "")
	for t, typeName := range simpleTypeNames {
		if strings.ToLower(typeName) == normalized {
			return t, nil
		}
	}
	return nil, fmt.Errorf("unknown cl type name %q", name)
}
