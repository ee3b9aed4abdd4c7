// Copyright 2024 Blink Labs Software
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

package cbor

import (
	"bytes"
	"errors"
	"reflect"
	"sync"

	_cbor "github.com/fxamacker/cbor/v2"
	"github.com/jinzhu/copier"
)

var (
	cachedEncMode     _cbor.EncMode
	cachedEncModeErr  error
	cachedEncModeOnce sync.Once
)

func getEncMode() (_cbor.EncMode, error) {
	cachedEncModeOnce.Do(func() {
		opts := _cbor.EncOptions{
			// Make sure that maps have ordered keys
			Sort: _cbor.SortCoreDeterministic,
		}
		cachedEncMode, cachedEncModeErr = opts.EncMode()
	})
	return cachedEncMode, cachedEncModeErr
}

func Encode(data any) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	em, err := getEncMode()
	if err != nil {
		return nil, err
	}
	enc := em.NewEncoder(buf)
	err = enc.Encode(data)
	return buf.Bytes(), err
}

// genericTypeCache maps a struct type to a copy of it containing only the exported
// fields, which drops any custom (un)marshal functions
type genericTypeCache struct {
	sync.RWMutex
	types map[reflect.Type]reflect.Type
}

var (
	encodeGenericTypeCache = &genericTypeCache{types: map[reflect.Type]reflect.Type{}}
	decodeGenericTypeCache = &genericTypeCache{types: map[reflect.Type]reflect.Type{}}
)

func genericType(typeOrig reflect.Type, cache *genericTypeCache) reflect.Type {
	cache.RLock()
	ret, ok := cache.types[typeOrig]
	cache.RUnlock()
	if ok {
		return ret
	}
	fields := []reflect.StructField{}
	for i := range typeOrig.NumField() {
		tmpField := typeOrig.Field(i)
		if tmpField.IsExported() && tmpField.Name != "DecodeStoreCbor" {
			fields = append(fields, tmpField)
		}
	}
	ret = reflect.StructOf(fields)
	cache.Lock()
	cache.types[typeOrig] = ret
	cache.Unlock()
	return ret
}

// EncodeGeneric encodes the specified object to CBOR without using the source object's
// MarshalCBOR() function
func EncodeGeneric(src any) ([]byte, error) {
	valueSrc := reflect.ValueOf(src)
	if valueSrc.Kind() != reflect.Pointer ||
		valueSrc.Elem().Kind() != reflect.Struct {
		return nil, errors.New("source must be a pointer to a struct")
	}
	// Create temporary object with only the exported fields of the source
	tmpSrc := reflect.New(genericType(valueSrc.Elem().Type(), encodeGenericTypeCache))
	// Copy values from source object into temporary object
	if err := copier.Copy(tmpSrc.Interface(), src); err != nil {
		return nil, err
	}
	return Encode(tmpSrc.Interface())
}
