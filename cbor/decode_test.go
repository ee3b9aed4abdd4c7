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

package cbor_test

import (
	"encoding/hex"
	"testing"

	"github.com/blinklabs-io/gocasper/cbor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type decodeTestDefinition struct {
	CborHex   string
	Object    any
	BytesRead int
}

var decodeTests = []decodeTestDefinition{
	// Simple list of numbers
	{
		CborHex:   "83010203",
		Object:    []any{uint64(1), uint64(2), uint64(3)},
		BytesRead: 4,
	},
	// Multiple CBOR objects
	{
		CborHex:   "81018102",
		Object:    []any{uint64(1)},
		BytesRead: 2,
	},
}

func TestDecode(t *testing.T) {
	for _, test := range decodeTests {
		cborData, err := hex.DecodeString(test.CborHex)
		require.NoError(t, err)
		var dest any
		bytesRead, err := cbor.Decode(cborData, &dest)
		require.NoError(t, err)
		assert.Equal(t, test.BytesRead, bytesRead)
		assert.Equal(t, test.Object, dest)
	}
}

func TestListLen(t *testing.T) {
	testDefs := []struct {
		CborHex string
		Length  int
	}{
		// [1]
		{CborHex: "8101", Length: 1},
		// [1, 3]
		{CborHex: "820103", Length: 2},
		// 24 items, which needs a length byte
		{CborHex: "9818" + "000000000000000000000000000000000000000000000000", Length: 24},
	}
	for _, test := range testDefs {
		cborData, err := hex.DecodeString(test.CborHex)
		require.NoError(t, err)
		listLen, err := cbor.ListLength(cborData)
		require.NoError(t, err)
		assert.Equal(t, test.Length, listLen)
	}
	_, err := cbor.ListLength(nil)
	assert.Error(t, err)
	// Not a list
	_, err = cbor.ListLength([]byte{0x01})
	assert.Error(t, err)
}

func TestDecodeIdFromList(t *testing.T) {
	testDefs := []struct {
		CborHex string
		Id      int
	}{
		// [1]
		{CborHex: "8101", Id: 1},
		// [4, 1]
		{CborHex: "820401", Id: 4},
		// [25]
		{CborHex: "811819", Id: 25},
	}
	for _, test := range testDefs {
		cborData, err := hex.DecodeString(test.CborHex)
		require.NoError(t, err)
		id, err := cbor.DecodeIdFromList(cborData)
		require.NoError(t, err)
		assert.Equal(t, test.Id, id)
	}
	// [true]
	_, err := cbor.DecodeIdFromList([]byte{0x81, 0xf5})
	assert.Error(t, err)
	// []
	_, err = cbor.DecodeIdFromList([]byte{0x80})
	assert.Error(t, err)
}

func TestDecodeById(t *testing.T) {
	var one, two []uint64
	idMap := map[int]any{
		1: &one,
		2: &two,
	}
	ret, err := cbor.DecodeById([]byte{0x82, 0x02, 0x07}, idMap)
	require.NoError(t, err)
	assert.Equal(t, &two, ret)
	assert.Equal(t, []uint64{2, 7}, two)
	_, err = cbor.DecodeById([]byte{0x81, 0x03}, idMap)
	assert.Error(t, err)
}

func TestDecodeGeneric(t *testing.T) {
	var dest testCustomStruct
	require.NoError(t, cbor.DecodeGeneric([]byte{0x82, 0x05, 0x61, 0x62}, &dest))
	assert.Equal(t, uint(5), dest.Id)
	assert.Equal(t, "b", dest.Name)
	// DecodeGeneric does not record the original CBOR
	assert.Nil(t, dest.Cbor())
}

func TestDecodeStoreCbor(t *testing.T) {
	cborData := []byte{0x82, 0x05, 0x61, 0x62}
	var dest testCustomStruct
	_, err := cbor.Decode(cborData, &dest)
	require.NoError(t, err)
	assert.Equal(t, uint(5), dest.Id)
	assert.Equal(t, cborData, dest.Cbor())
}

func TestDecodeUnknownField(t *testing.T) {
	var dest testArrayStruct
	// Too many array items for the struct
	_, err := cbor.Decode([]byte{0x83, 0x05, 0x61, 0x62, 0x01}, &dest)
	assert.Error(t, err)
}
